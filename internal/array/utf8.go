package array

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/paveg/columnar/internal/bitmap"
	"github.com/paveg/columnar/internal/buffer"
)

// Offset is the integer type of variable-length offsets: int32 for Utf8 and
// List, int64 for LargeUtf8 and LargeList.
type Offset interface {
	int32 | int64
}

// Utf8 is an array of variable-length strings. Element i is
// values[offsets[i]:offsets[i+1]].
type Utf8[O Offset] struct {
	validity
	dataType arrow.DataType
	offsets  buffer.Buffer[O]
	values   []byte
}

// NewUtf8 creates a Utf8 array from len+1 offsets into values. It panics if
// dt does not match O or the validity length does not match. Offset
// monotonicity and UTF-8 validity are checked by Validate.
func NewUtf8[O Offset](dt arrow.DataType, offsets buffer.Buffer[O], values []byte, valid *bitmap.Bitmap) *Utf8[O] {
	if want := utf8TypeID[O](); dt.ID() != want {
		panic(fmt.Sprintf("array: utf8 array with %T offsets requires %s, got %s", O(0), want, dt))
	}
	if offsets.Len() == 0 {
		panic("array: utf8 offsets must hold at least one entry")
	}
	return &Utf8[O]{
		validity: newValidity(valid, offsets.Len()-1),
		dataType: dt,
		offsets:  offsets,
		values:   values,
	}
}

// Utf8From builds a Utf8 array from strings. A nil valid slice means every
// element is valid.
func Utf8From[O Offset](values []string, valid []bool) *Utf8[O] {
	offsets := buffer.WithCapacity[O](len(values) + 1)
	offsets.Push(0)
	size := 0
	for _, v := range values {
		size += len(v)
	}
	data := make([]byte, 0, size)
	for _, v := range values {
		data = append(data, v...)
		offsets.Push(O(len(data)))
	}
	return NewUtf8(Utf8Type[O](), offsets.Freeze(), data, validityFrom(valid, len(values)))
}

// Utf8Type returns the logical type matching offset width O.
func Utf8Type[O Offset]() arrow.DataType {
	if utf8TypeID[O]() == arrow.LARGE_STRING {
		return arrow.BinaryTypes.LargeString
	}
	return arrow.BinaryTypes.String
}

func utf8TypeID[O Offset]() arrow.Type {
	var zero O
	if _, ok := any(zero).(int64); ok {
		return arrow.LARGE_STRING
	}
	return arrow.STRING
}

func (a *Utf8[O]) DataType() arrow.DataType { return a.dataType }
func (a *Utf8[O]) Len() int                 { return a.offsets.Len() - 1 }

// Offsets returns the len+1 offsets of the array.
func (a *Utf8[O]) Offsets() buffer.Buffer[O] { return a.offsets }

// Values returns the concatenated bytes of all elements.
func (a *Utf8[O]) Values() []byte { return a.values }

// ValueBytes returns the bytes of element i without copying.
func (a *Utf8[O]) ValueBytes(i int) []byte {
	return a.values[a.offsets.Value(i):a.offsets.Value(i+1)]
}

// Value returns element i, ignoring validity.
func (a *Utf8[O]) Value(i int) string {
	return string(a.ValueBytes(i))
}

func (a *Utf8[O]) Slice(offset, length int) Array {
	checkSlice(offset, length, a.Len())
	return &Utf8[O]{
		validity: a.validity.slice(offset, length),
		dataType: a.dataType,
		offsets:  a.offsets.Slice(offset, length+1),
		values:   a.values,
	}
}
