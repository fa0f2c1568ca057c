// Package growable builds new arrays by copying ranges out of existing ones.
//
// A Growable is created over one or more source arrays of the same logical
// type. Callers feed it Extend and ExtendValidity instructions and call Finish
// once to obtain the output array. Concatenation, take and filter are all
// expressed as sequences of these instructions.
package growable

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/paveg/columnar/internal/array"
	"github.com/paveg/columnar/internal/bitmap"
	"github.com/paveg/columnar/internal/errors"
)

// Growable accumulates one output array from ranges of its source arrays.
// A Growable is owned by a single goroutine and is finished exactly once.
type Growable interface {
	// Extend copies elements [start, start+length) of source index into the
	// output, together with their validity.
	Extend(index, start, length int)
	// ExtendValidity appends additional null elements.
	ExtendValidity(additional int)
	// Len returns the number of elements written so far.
	Len() int
	// Finish moves the accumulated data into a new array and resets the
	// Growable to empty.
	Finish() array.Array
}

// New returns the Growable matching the variant of arrays. All arrays must
// share one logical type; a mismatch is a programming error and panics.
//
// useValidity requests validity tracking even when no source has nulls; it is
// switched on automatically whenever any source has nulls. capacity is a hint
// for the number of output elements.
//
// New returns a not-yet-implemented error for logical types without a
// dedicated array layout.
func New(arrays []array.Array, useValidity bool, capacity int) (Growable, error) {
	if len(arrays) == 0 {
		panic("growable: at least one source array is required")
	}
	dt := arrays[0].DataType()
	for _, a := range arrays[1:] {
		if !arrow.TypeEqual(dt, a.DataType()) {
			panic(fmt.Sprintf("growable: mixed source types %s and %s", dt, a.DataType()))
		}
	}
	if capacity < 0 {
		capacity = 0
	}

	switch arrays[0].(type) {
	case *array.Null:
		if dt.ID() != arrow.NULL {
			return nil, errors.NewNotYetImplementedError("growable", dt)
		}
		return newNull(dt), nil
	case *array.Boolean:
		return newBoolean(cast[*array.Boolean](arrays), useValidity, capacity), nil
	case *array.Primitive[int8]:
		return newPrimitive(cast[*array.Primitive[int8]](arrays), useValidity, capacity), nil
	case *array.Primitive[int16]:
		return newPrimitive(cast[*array.Primitive[int16]](arrays), useValidity, capacity), nil
	case *array.Primitive[int32]:
		return newPrimitive(cast[*array.Primitive[int32]](arrays), useValidity, capacity), nil
	case *array.Primitive[int64]:
		return newPrimitive(cast[*array.Primitive[int64]](arrays), useValidity, capacity), nil
	case *array.Primitive[uint8]:
		return newPrimitive(cast[*array.Primitive[uint8]](arrays), useValidity, capacity), nil
	case *array.Primitive[uint16]:
		return newPrimitive(cast[*array.Primitive[uint16]](arrays), useValidity, capacity), nil
	case *array.Primitive[uint32]:
		return newPrimitive(cast[*array.Primitive[uint32]](arrays), useValidity, capacity), nil
	case *array.Primitive[uint64]:
		return newPrimitive(cast[*array.Primitive[uint64]](arrays), useValidity, capacity), nil
	case *array.Primitive[float32]:
		return newPrimitive(cast[*array.Primitive[float32]](arrays), useValidity, capacity), nil
	case *array.Primitive[float64]:
		return newPrimitive(cast[*array.Primitive[float64]](arrays), useValidity, capacity), nil
	case *array.Primitive[arrow.DayTimeInterval]:
		return newPrimitive(cast[*array.Primitive[arrow.DayTimeInterval]](arrays), useValidity, capacity), nil
	case *array.Primitive[arrow.MonthDayNanoInterval]:
		return newPrimitive(cast[*array.Primitive[arrow.MonthDayNanoInterval]](arrays), useValidity, capacity), nil
	case *array.Utf8[int32]:
		return newUtf8(cast[*array.Utf8[int32]](arrays), useValidity, capacity), nil
	case *array.Utf8[int64]:
		return newUtf8(cast[*array.Utf8[int64]](arrays), useValidity, capacity), nil
	case *array.List[int32]:
		return newList(cast[*array.List[int32]](arrays), useValidity, capacity)
	case *array.List[int64]:
		return newList(cast[*array.List[int64]](arrays), useValidity, capacity)
	case *array.FixedSizeList:
		return newFixedSizeList(cast[*array.FixedSizeList](arrays), useValidity, capacity)
	case *array.Dictionary[int8]:
		return newDictionary(cast[*array.Dictionary[int8]](arrays), useValidity, capacity)
	case *array.Dictionary[int16]:
		return newDictionary(cast[*array.Dictionary[int16]](arrays), useValidity, capacity)
	case *array.Dictionary[int32]:
		return newDictionary(cast[*array.Dictionary[int32]](arrays), useValidity, capacity)
	case *array.Dictionary[int64]:
		return newDictionary(cast[*array.Dictionary[int64]](arrays), useValidity, capacity)
	case *array.Dictionary[uint8]:
		return newDictionary(cast[*array.Dictionary[uint8]](arrays), useValidity, capacity)
	case *array.Dictionary[uint16]:
		return newDictionary(cast[*array.Dictionary[uint16]](arrays), useValidity, capacity)
	case *array.Dictionary[uint32]:
		return newDictionary(cast[*array.Dictionary[uint32]](arrays), useValidity, capacity)
	case *array.Dictionary[uint64]:
		return newDictionary(cast[*array.Dictionary[uint64]](arrays), useValidity, capacity)
	default:
		return nil, errors.NewNotYetImplementedError("growable", dt)
	}
}

// cast converts arrays to their shared concrete variant.
func cast[A array.Array](arrays []array.Array) []A {
	out := make([]A, len(arrays))
	for i, a := range arrays {
		concrete, ok := a.(A)
		if !ok {
			panic(fmt.Sprintf("growable: source %d is %T, expected %T", i, a, out[0]))
		}
		out[i] = concrete
	}
	return out
}

// validityBuilder tracks the output validity shared by every Growable.
type validityBuilder struct {
	validities  []*bitmap.Bitmap
	useValidity bool
	validity    *bitmap.MutableBitmap
	length      int
}

func newValidityBuilder[A array.Array](arrays []A, useValidity bool, capacity int) validityBuilder {
	validities := make([]*bitmap.Bitmap, len(arrays))
	for i, a := range arrays {
		validities[i] = a.Validity()
		// any source with nulls forces validity tracking for every source
		if a.NullCount() > 0 {
			useValidity = true
		}
	}
	return validityBuilder{
		validities:  validities,
		useValidity: useValidity,
		validity:    bitmap.NewMutableBitmapWithCapacity(capacity),
	}
}

func (v *validityBuilder) extend(index, start, length int) {
	extendValidity(v.validity, v.validities[index], start, length, v.useValidity)
	v.length += length
}

func (v *validityBuilder) extendNulls(additional int) {
	if !v.useValidity {
		v.validity.ExtendConstant(v.length, true)
		v.useValidity = true
	}
	v.validity.ExtendConstant(additional, false)
	v.length += additional
}

// finish returns the output validity, nil when every element is valid.
func (v *validityBuilder) finish() *bitmap.Bitmap {
	v.length = 0
	if !v.useValidity {
		return nil
	}
	return v.validity.FreezeOptional()
}

// extendValidity appends the validity of src[start:start+length] to mb, or
// length valid bits when src is nil. Nothing is written unless useValidity is
// set.
func extendValidity(mb *bitmap.MutableBitmap, src *bitmap.Bitmap, start, length int, useValidity bool) {
	if !useValidity {
		return
	}
	if src == nil {
		mb.ExtendConstant(length, true)
		return
	}
	mb.ExtendFromSlice(src.Bytes(), src.Offset()+start, length)
}
