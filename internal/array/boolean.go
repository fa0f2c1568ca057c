package array

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/paveg/columnar/internal/bitmap"
)

// Boolean is an array of bit-packed booleans.
type Boolean struct {
	validity
	dataType arrow.DataType
	values   *bitmap.Bitmap
}

// NewBoolean creates a Boolean array. It panics if the validity length does
// not match the number of values.
func NewBoolean(dt arrow.DataType, values *bitmap.Bitmap, valid *bitmap.Bitmap) *Boolean {
	if dt.ID() != arrow.BOOL {
		panic(fmt.Sprintf("array: boolean array requires a boolean data type, got %s", dt))
	}
	return &Boolean{
		validity: newValidity(valid, values.Len()),
		dataType: dt,
		values:   values,
	}
}

// BooleanFrom builds a Boolean array from values. A nil valid slice means
// every element is valid; otherwise valid must have the same length as values.
func BooleanFrom(values []bool, valid []bool) *Boolean {
	return NewBoolean(arrow.FixedWidthTypes.Boolean, bitmap.FromBools(values), validityFrom(valid, len(values)))
}

func (a *Boolean) DataType() arrow.DataType { return a.dataType }
func (a *Boolean) Len() int                 { return a.values.Len() }

// Values returns the bitmap holding the boolean values.
func (a *Boolean) Values() *bitmap.Bitmap { return a.values }

// Value returns element i, ignoring validity.
func (a *Boolean) Value(i int) bool { return a.values.Get(i) }

func (a *Boolean) Slice(offset, length int) Array {
	checkSlice(offset, length, a.Len())
	return &Boolean{
		validity: a.validity.slice(offset, length),
		dataType: a.dataType,
		values:   a.values.Slice(offset, length),
	}
}

// validityFrom converts an optional []bool mask into a validity bitmap,
// collapsing all-valid masks to nil.
func validityFrom(valid []bool, length int) *bitmap.Bitmap {
	if valid == nil {
		return nil
	}
	if len(valid) != length {
		panic(fmt.Sprintf("array: validity has %d entries, expected %d", len(valid), length))
	}
	return bitmap.FromBoolsMutable(valid).FreezeOptional()
}
