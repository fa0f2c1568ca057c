// Package buffer provides typed, contiguous value storage for columnar arrays.
//
// A MutableBuffer is an exclusively owned, growable store that is frozen into
// an immutable Buffer once construction is complete. Buffers are cheap to
// share and slice: slicing produces a new view onto the same backing memory
// and never copies values.
package buffer

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"golang.org/x/exp/constraints"
)

// Native is the set of fixed-width element types that can be stored directly
// in a flat buffer.
type Native interface {
	arrow.IntType | arrow.UintType | constraints.Float |
		arrow.DayTimeInterval | arrow.MonthDayNanoInterval
}

// Buffer is an immutable, shareable view over a contiguous run of values.
// The zero value is an empty buffer.
type Buffer[T Native] struct {
	values []T
}

// New wraps values in a Buffer. The caller must not mutate values afterwards.
func New[T Native](values []T) Buffer[T] {
	return Buffer[T]{values: values[:len(values):len(values)]}
}

// FromBytes reinterprets a little-endian byte slice as a Buffer. The length of
// data must be a multiple of the element size.
func FromBytes[T Native](data []byte) Buffer[T] {
	values := arrow.GetData[T](data)
	if len(arrow.GetBytes(values)) != len(data) {
		panic(fmt.Sprintf("buffer: %d bytes is not a multiple of the element size", len(data)))
	}
	return New(values)
}

// Len returns the number of values in the buffer.
func (b Buffer[T]) Len() int { return len(b.values) }

// Values returns the values of the buffer. The returned slice must be treated
// as read-only.
func (b Buffer[T]) Values() []T { return b.values }

// Value returns the value at index i. Value panics if i is out of range.
func (b Buffer[T]) Value(i int) T { return b.values[i] }

// Bytes returns the raw little-endian bytes backing the buffer.
func (b Buffer[T]) Bytes() []byte { return arrow.GetBytes(b.values) }

// Slice returns a view of length values starting at offset. The view shares
// memory with b.
func (b Buffer[T]) Slice(offset, length int) Buffer[T] {
	if offset < 0 || length < 0 || offset+length > len(b.values) {
		panic(fmt.Sprintf("buffer: slice [%d, %d) out of range for length %d", offset, offset+length, len(b.values)))
	}
	return Buffer[T]{values: b.values[offset : offset+length : offset+length]}
}
