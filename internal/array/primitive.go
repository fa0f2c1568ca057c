package array

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/paveg/columnar/internal/bitmap"
	"github.com/paveg/columnar/internal/buffer"
)

// Native is the set of element types a Primitive array can hold.
type Native = buffer.Native

// Primitive is an array of fixed-width native values. Temporal and interval
// logical types are stored in the Primitive of their physical type, e.g. a
// Date32 array is a *Primitive[int32].
type Primitive[T Native] struct {
	validity
	dataType arrow.DataType
	values   buffer.Buffer[T]
}

// NewPrimitive creates a Primitive array. It panics if dt is not stored as T
// or if the validity length does not match.
func NewPrimitive[T Native](dt arrow.DataType, values buffer.Buffer[T], valid *bitmap.Bitmap) *Primitive[T] {
	if !NativeMatches[T](dt) {
		var zero T
		panic(fmt.Sprintf("array: data type %s is not stored as %T", dt, zero))
	}
	return &Primitive[T]{
		validity: newValidity(valid, values.Len()),
		dataType: dt,
		values:   values,
	}
}

// PrimitiveFrom builds a Primitive array from values. A nil valid slice means
// every element is valid.
func PrimitiveFrom[T Native](dt arrow.DataType, values []T, valid []bool) *Primitive[T] {
	return NewPrimitive(dt, buffer.New(values), validityFrom(valid, len(values)))
}

func (a *Primitive[T]) DataType() arrow.DataType { return a.dataType }
func (a *Primitive[T]) Len() int                 { return a.values.Len() }

// Values returns the value buffer.
func (a *Primitive[T]) Values() buffer.Buffer[T] { return a.values }

// Value returns element i, ignoring validity.
func (a *Primitive[T]) Value(i int) T { return a.values.Value(i) }

func (a *Primitive[T]) Slice(offset, length int) Array {
	return a.SlicePrimitive(offset, length)
}

// SlicePrimitive is Slice without the interface conversion.
func (a *Primitive[T]) SlicePrimitive(offset, length int) *Primitive[T] {
	checkSlice(offset, length, a.Len())
	return &Primitive[T]{
		validity: a.validity.slice(offset, length),
		dataType: a.dataType,
		values:   a.values.Slice(offset, length),
	}
}

// NativeMatches reports whether values of logical type dt are stored as T.
func NativeMatches[T Native](dt arrow.DataType) bool {
	var zero T
	switch id := dt.ID(); any(zero).(type) {
	case int8:
		return id == arrow.INT8
	case int16:
		return id == arrow.INT16
	case int32:
		return id == arrow.INT32 || id == arrow.DATE32 || id == arrow.TIME32 || id == arrow.INTERVAL_MONTHS
	case int64:
		return id == arrow.INT64 || id == arrow.DATE64 || id == arrow.TIME64 ||
			id == arrow.TIMESTAMP || id == arrow.DURATION
	case uint8:
		return id == arrow.UINT8
	case uint16:
		return id == arrow.UINT16
	case uint32:
		return id == arrow.UINT32
	case uint64:
		return id == arrow.UINT64
	case float32:
		return id == arrow.FLOAT32
	case float64:
		return id == arrow.FLOAT64
	case arrow.DayTimeInterval:
		return id == arrow.INTERVAL_DAY_TIME
	case arrow.MonthDayNanoInterval:
		return id == arrow.INTERVAL_MONTH_DAY_NANO
	default:
		return false
	}
}
