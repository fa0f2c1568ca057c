package buffer

import "fmt"

// MutableBuffer is a growable buffer of values, exclusively owned by its
// builder until it is frozen.
type MutableBuffer[T Native] struct {
	values []T
}

// NewMutable returns an empty MutableBuffer.
func NewMutable[T Native]() *MutableBuffer[T] {
	return &MutableBuffer[T]{}
}

// WithCapacity returns an empty MutableBuffer with room for at least capacity
// values.
func WithCapacity[T Native](capacity int) *MutableBuffer[T] {
	return &MutableBuffer[T]{values: make([]T, 0, capacity)}
}

// FromLenZeroed returns a MutableBuffer holding length zero values.
func FromLenZeroed[T Native](length int) *MutableBuffer[T] {
	return &MutableBuffer[T]{values: make([]T, length)}
}

// FromSlice takes ownership of values.
func FromSlice[T Native](values []T) *MutableBuffer[T] {
	return &MutableBuffer[T]{values: values}
}

// Len returns the number of values pushed so far.
func (b *MutableBuffer[T]) Len() int { return len(b.values) }

// Cap returns the number of values the buffer can hold without reallocating.
func (b *MutableBuffer[T]) Cap() int { return cap(b.values) }

// Reserve makes room for at least additional more values.
func (b *MutableBuffer[T]) Reserve(additional int) {
	if additional <= cap(b.values)-len(b.values) {
		return
	}
	grown := make([]T, len(b.values), growCapacity(cap(b.values), len(b.values)+additional))
	copy(grown, b.values)
	b.values = grown
}

// Push appends v, growing the buffer if required.
func (b *MutableBuffer[T]) Push(v T) {
	b.values = append(b.values, v)
}

// PushUnchecked appends v without checking capacity. The caller must have
// reserved room for v beforehand; PushUnchecked panics otherwise.
func (b *MutableBuffer[T]) PushUnchecked(v T) {
	n := len(b.values)
	b.values = b.values[:n+1]
	b.values[n] = v
}

// ExtendFromSlice appends all of values.
func (b *MutableBuffer[T]) ExtendFromSlice(values []T) {
	b.values = append(b.values, values...)
}

// ExtendConstant appends additional copies of v.
func (b *MutableBuffer[T]) ExtendConstant(additional int, v T) {
	b.Resize(len(b.values)+additional, v)
}

// Resize sets the length of the buffer to length. New slots are filled with
// fill; a shorter length truncates.
func (b *MutableBuffer[T]) Resize(length int, fill T) {
	if length < 0 {
		panic(fmt.Sprintf("buffer: negative length %d", length))
	}
	n := len(b.values)
	if length <= n {
		b.values = b.values[:length]
		return
	}
	b.Reserve(length - n)
	b.values = b.values[:length]
	for i := n; i < length; i++ {
		b.values[i] = fill
	}
}

// Truncate shortens the buffer to length values. It is a no-op if the buffer
// is already shorter.
func (b *MutableBuffer[T]) Truncate(length int) {
	if length < len(b.values) {
		b.values = b.values[:length]
	}
}

// Get returns the value at index i.
func (b *MutableBuffer[T]) Get(i int) T { return b.values[i] }

// Set overwrites the value at index i.
func (b *MutableBuffer[T]) Set(i int, v T) { b.values[i] = v }

// Last returns a pointer to the last value. Last panics on an empty buffer.
func (b *MutableBuffer[T]) Last() *T { return &b.values[len(b.values)-1] }

// Values returns the values written so far. The slice is only valid until the
// next mutation.
func (b *MutableBuffer[T]) Values() []T { return b.values }

// Freeze moves the contents into an immutable Buffer and resets b to empty.
func (b *MutableBuffer[T]) Freeze() Buffer[T] {
	out := New(b.values)
	b.values = nil
	return out
}

func growCapacity(current, needed int) int {
	next := current * 2
	if next < 8 {
		next = 8
	}
	if next < needed {
		next = needed
	}
	return next
}
