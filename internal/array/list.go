package array

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/paveg/columnar/internal/bitmap"
	"github.com/paveg/columnar/internal/buffer"
)

// List is an array of variable-length lists. Element i is the child slice
// values[offsets[i]:offsets[i+1]].
type List[O Offset] struct {
	validity
	dataType arrow.DataType
	offsets  buffer.Buffer[O]
	values   Array
}

// NewList creates a List (int32 offsets) or LargeList (int64 offsets) array.
// It panics if dt does not match O or the child type, or if the validity
// length does not match.
func NewList[O Offset](dt arrow.DataType, offsets buffer.Buffer[O], values Array, valid *bitmap.Bitmap) *List[O] {
	elem := listElem[O](dt)
	if !arrow.TypeEqual(elem, values.DataType()) {
		panic(fmt.Sprintf("array: list of %s cannot hold child of type %s", elem, values.DataType()))
	}
	if offsets.Len() == 0 {
		panic("array: list offsets must hold at least one entry")
	}
	return &List[O]{
		validity: newValidity(valid, offsets.Len()-1),
		dataType: dt,
		offsets:  offsets,
		values:   values,
	}
}

// ListOf returns the logical list type with offset width O over elem.
func ListOf[O Offset](elem arrow.DataType) arrow.DataType {
	var zero O
	if _, ok := any(zero).(int64); ok {
		return arrow.LargeListOf(elem)
	}
	return arrow.ListOf(elem)
}

func listElem[O Offset](dt arrow.DataType) arrow.DataType {
	var zero O
	switch t := dt.(type) {
	case *arrow.LargeListType:
		if _, ok := any(zero).(int64); ok {
			return t.Elem()
		}
	case *arrow.ListType:
		if _, ok := any(zero).(int32); ok {
			return t.Elem()
		}
	}
	panic(fmt.Sprintf("array: list array with %T offsets cannot have data type %s", zero, dt))
}

func (a *List[O]) DataType() arrow.DataType { return a.dataType }
func (a *List[O]) Len() int                 { return a.offsets.Len() - 1 }

// Offsets returns the len+1 offsets of the array.
func (a *List[O]) Offsets() buffer.Buffer[O] { return a.offsets }

// Values returns the child array shared by every element.
func (a *List[O]) Values() Array { return a.values }

// ValueBounds returns the child range [start, end) of element i.
func (a *List[O]) ValueBounds(i int) (start, end int) {
	return int(a.offsets.Value(i)), int(a.offsets.Value(i + 1))
}

// Value returns element i as a slice of the child array, ignoring validity.
func (a *List[O]) Value(i int) Array {
	start, end := a.ValueBounds(i)
	return a.values.Slice(start, end-start)
}

func (a *List[O]) Slice(offset, length int) Array {
	checkSlice(offset, length, a.Len())
	return &List[O]{
		validity: a.validity.slice(offset, length),
		dataType: a.dataType,
		offsets:  a.offsets.Slice(offset, length+1),
		values:   a.values,
	}
}
