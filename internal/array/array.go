// Package array provides immutable, null-aware columnar arrays.
//
// Every variant wraps shared storage (a buffer, a bitmap or a child array)
// plus an optional validity bitmap. Slicing an array produces a new view
// onto the same storage and never copies values or validity bits.
package array

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/paveg/columnar/internal/bitmap"
	"github.com/paveg/columnar/internal/buffer"
)

// Array is the capability shared by every array variant.
type Array interface {
	// DataType returns the logical type of the array.
	DataType() arrow.DataType
	// Len returns the number of elements.
	Len() int
	// Validity returns the validity bitmap, or nil when every element is valid.
	Validity() *bitmap.Bitmap
	// NullCount returns the number of null elements.
	NullCount() int
	// IsNull reports whether element i is null.
	IsNull(i int) bool
	// IsValid reports whether element i is not null.
	IsValid(i int) bool
	// Slice returns a view of length elements starting at offset.
	Slice(offset, length int) Array
}

// validity implements the null-related part of Array for variants whose
// nullness is described by an optional bitmap.
type validity struct {
	bitmap *bitmap.Bitmap
}

func newValidity(bm *bitmap.Bitmap, length int) validity {
	if bm != nil && bm.Len() != length {
		panic(fmt.Sprintf("array: validity has %d bits, expected %d", bm.Len(), length))
	}
	return validity{bitmap: bm}
}

func (v validity) Validity() *bitmap.Bitmap { return v.bitmap }

func (v validity) NullCount() int {
	if v.bitmap == nil {
		return 0
	}
	return v.bitmap.NullCount()
}

func (v validity) IsValid(i int) bool {
	return v.bitmap == nil || v.bitmap.Get(i)
}

func (v validity) IsNull(i int) bool {
	return !v.IsValid(i)
}

func (v validity) slice(offset, length int) validity {
	if v.bitmap == nil {
		return v
	}
	return validity{bitmap: v.bitmap.Slice(offset, length)}
}

func checkSlice(offset, length, total int) {
	if offset < 0 || length < 0 || offset+length > total {
		panic(fmt.Sprintf("array: slice [%d, %d) out of range for length %d", offset, offset+length, total))
	}
}

// NewEmpty returns a zero-length array of the given type.
func NewEmpty(dt arrow.DataType) Array {
	return NewNull(dt, 0)
}

// NewNull returns an array of length null elements of the given type.
//
// Types without a dedicated layout in this package are represented by a Null
// array carrying dt, so kernels can still dispatch on the logical type.
func NewNull(dt arrow.DataType, length int) Array {
	var nulls *bitmap.Bitmap
	if length > 0 {
		nulls = bitmap.NewBitmapZeroed(length)
	}

	switch dt.ID() {
	case arrow.BOOL:
		return NewBoolean(dt, bitmap.NewBitmapZeroed(length), nulls)
	case arrow.INT8:
		return newNullPrimitive[int8](dt, length, nulls)
	case arrow.INT16:
		return newNullPrimitive[int16](dt, length, nulls)
	case arrow.INT32, arrow.DATE32, arrow.TIME32, arrow.INTERVAL_MONTHS:
		return newNullPrimitive[int32](dt, length, nulls)
	case arrow.INT64, arrow.DATE64, arrow.TIME64, arrow.TIMESTAMP, arrow.DURATION:
		return newNullPrimitive[int64](dt, length, nulls)
	case arrow.UINT8:
		return newNullPrimitive[uint8](dt, length, nulls)
	case arrow.UINT16:
		return newNullPrimitive[uint16](dt, length, nulls)
	case arrow.UINT32:
		return newNullPrimitive[uint32](dt, length, nulls)
	case arrow.UINT64:
		return newNullPrimitive[uint64](dt, length, nulls)
	case arrow.FLOAT32:
		return newNullPrimitive[float32](dt, length, nulls)
	case arrow.FLOAT64:
		return newNullPrimitive[float64](dt, length, nulls)
	case arrow.INTERVAL_DAY_TIME:
		return newNullPrimitive[arrow.DayTimeInterval](dt, length, nulls)
	case arrow.INTERVAL_MONTH_DAY_NANO:
		return newNullPrimitive[arrow.MonthDayNanoInterval](dt, length, nulls)
	case arrow.STRING:
		return NewUtf8(dt, buffer.New(make([]int32, length+1)), nil, nulls)
	case arrow.LARGE_STRING:
		return NewUtf8(dt, buffer.New(make([]int64, length+1)), nil, nulls)
	case arrow.LIST:
		child := NewEmpty(dt.(*arrow.ListType).Elem())
		return NewList(dt, buffer.New(make([]int32, length+1)), child, nulls)
	case arrow.LARGE_LIST:
		child := NewEmpty(dt.(*arrow.LargeListType).Elem())
		return NewList(dt, buffer.New(make([]int64, length+1)), child, nulls)
	case arrow.FIXED_SIZE_LIST:
		fsl := dt.(*arrow.FixedSizeListType)
		child := NewNull(fsl.Elem(), length*int(fsl.Len()))
		return NewFixedSizeList(dt, child, nulls)
	case arrow.DICTIONARY:
		return newNullDictionary(dt.(*arrow.DictionaryType), length, nulls)
	default:
		return NewNullArray(dt, length)
	}
}

func newNullPrimitive[T Native](dt arrow.DataType, length int, nulls *bitmap.Bitmap) *Primitive[T] {
	return NewPrimitive(dt, buffer.New(make([]T, length)), nulls)
}

func newNullDictionary(dt *arrow.DictionaryType, length int, nulls *bitmap.Bitmap) Array {
	values := NewEmpty(dt.ValueType)
	switch dt.IndexType.ID() {
	case arrow.INT8:
		return NewDictionary(dt, newNullPrimitive[int8](dt.IndexType, length, nulls), values)
	case arrow.INT16:
		return NewDictionary(dt, newNullPrimitive[int16](dt.IndexType, length, nulls), values)
	case arrow.INT32:
		return NewDictionary(dt, newNullPrimitive[int32](dt.IndexType, length, nulls), values)
	case arrow.INT64:
		return NewDictionary(dt, newNullPrimitive[int64](dt.IndexType, length, nulls), values)
	case arrow.UINT8:
		return NewDictionary(dt, newNullPrimitive[uint8](dt.IndexType, length, nulls), values)
	case arrow.UINT16:
		return NewDictionary(dt, newNullPrimitive[uint16](dt.IndexType, length, nulls), values)
	case arrow.UINT32:
		return NewDictionary(dt, newNullPrimitive[uint32](dt.IndexType, length, nulls), values)
	case arrow.UINT64:
		return NewDictionary(dt, newNullPrimitive[uint64](dt.IndexType, length, nulls), values)
	default:
		panic(fmt.Sprintf("array: invalid dictionary index type %s", dt.IndexType))
	}
}
