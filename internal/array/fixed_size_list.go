package array

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/paveg/columnar/internal/bitmap"
)

// FixedSizeList is an array of lists that all have the same number of
// elements. The child array holds Len()*Size() values; element i is the child
// slice [i*size, (i+1)*size).
//
// A null element may still cover arbitrary child values; only the outer
// validity says whether it is null.
type FixedSizeList struct {
	validity
	dataType arrow.DataType
	size     int
	values   Array
}

// NewFixedSizeList creates a FixedSizeList array. It panics if dt is not a
// fixed-size list type matching the child, if the list size is not positive,
// or if the child length is not a multiple of the size.
func NewFixedSizeList(dt arrow.DataType, values Array, valid *bitmap.Bitmap) *FixedSizeList {
	fsl, ok := dt.(*arrow.FixedSizeListType)
	if !ok {
		panic(fmt.Sprintf("array: fixed-size list array requires a fixed-size list type, got %s", dt))
	}
	if !arrow.TypeEqual(fsl.Elem(), values.DataType()) {
		panic(fmt.Sprintf("array: %s cannot hold child of type %s", dt, values.DataType()))
	}
	size := int(fsl.Len())
	if size <= 0 {
		panic(fmt.Sprintf("array: fixed-size list size must be positive, got %d", size))
	}
	if values.Len()%size != 0 {
		panic(fmt.Sprintf("array: child length %d is not a multiple of list size %d", values.Len(), size))
	}
	return &FixedSizeList{
		validity: newValidity(valid, values.Len()/size),
		dataType: dt,
		size:     size,
		values:   values,
	}
}

func (a *FixedSizeList) DataType() arrow.DataType { return a.dataType }
func (a *FixedSizeList) Len() int                 { return a.values.Len() / a.size }

// Size returns the number of child values per element.
func (a *FixedSizeList) Size() int { return a.size }

// Values returns the child array, already windowed to this array's elements.
func (a *FixedSizeList) Values() Array { return a.values }

// Value returns element i as a slice of the child array, ignoring validity.
func (a *FixedSizeList) Value(i int) Array {
	return a.values.Slice(i*a.size, a.size)
}

func (a *FixedSizeList) Slice(offset, length int) Array {
	checkSlice(offset, length, a.Len())
	return &FixedSizeList{
		validity: a.validity.slice(offset, length),
		dataType: a.dataType,
		size:     a.size,
		values:   a.values.Slice(offset*a.size, length*a.size),
	}
}
