package bitmap

import (
	"fmt"
	"iter"
	"slices"

	"github.com/apache/arrow-go/v18/arrow/bitutil"

	"github.com/paveg/columnar/internal/buffer"
)

// MutableBitmap is a growable bitmap backed by a MutableBuffer of bytes.
//
// Bits past Len in the last byte are kept cleared, so appending never has to
// mask stale data.
type MutableBitmap struct {
	buffer *buffer.MutableBuffer[uint8]
	length int
}

// NewMutableBitmap returns an empty MutableBitmap.
func NewMutableBitmap() *MutableBitmap {
	return &MutableBitmap{buffer: buffer.NewMutable[uint8]()}
}

// NewMutableBitmapWithCapacity returns an empty MutableBitmap with room for at
// least capacity bits.
func NewMutableBitmapWithCapacity(capacity int) *MutableBitmap {
	return &MutableBitmap{buffer: buffer.WithCapacity[uint8](BytesFor(capacity))}
}

// NewMutableBitmapZeroed returns a MutableBitmap of length unset bits.
func NewMutableBitmapZeroed(length int) *MutableBitmap {
	return &MutableBitmap{buffer: buffer.FromLenZeroed[uint8](BytesFor(length)), length: length}
}

// MutableFromBytes takes ownership of data and interprets its first length
// bits as a MutableBitmap. It panics if data cannot hold length bits.
func MutableFromBytes(data []byte, length int) *MutableBitmap {
	if length < 0 || length > len(data)*8 {
		panic(fmt.Sprintf("bitmap: length %d exceeds buffer capacity of %d bits", length, len(data)*8))
	}
	b := &MutableBitmap{buffer: buffer.FromSlice(data[:BytesFor(length)]), length: length}
	b.clearTrailingBits()
	return b
}

// FromBoolsMutable builds a MutableBitmap from a slice of booleans.
func FromBoolsMutable(values []bool) *MutableBitmap {
	b := NewMutableBitmapWithCapacity(len(values))
	b.ExtendFromTrustedLenIter(len(values), slices.Values(values))
	return b
}

// Len returns the number of bits.
func (b *MutableBitmap) Len() int { return b.length }

// IsEmpty reports whether the bitmap holds no bits.
func (b *MutableBitmap) IsEmpty() bool { return b.length == 0 }

// Capacity returns the number of bits the bitmap can hold without
// reallocating.
func (b *MutableBitmap) Capacity() int { return b.buffer.Cap() * 8 }

// Reserve makes room for at least additional more bits.
func (b *MutableBitmap) Reserve(additional int) {
	b.buffer.Reserve(BytesFor(b.length+additional) - b.buffer.Len())
}

// Push appends a single bit.
func (b *MutableBitmap) Push(value bool) {
	if b.length%8 == 0 {
		b.buffer.Push(0)
	}
	if value {
		*b.buffer.Last() |= bitutil.BitMask[b.length%8]
	}
	b.length++
}

// PushUnchecked appends a single bit without growing the backing buffer. The
// caller must have reserved room beforehand.
func (b *MutableBitmap) PushUnchecked(value bool) {
	if b.length%8 == 0 {
		b.buffer.PushUnchecked(0)
	}
	if value {
		*b.buffer.Last() |= bitutil.BitMask[b.length%8]
	}
	b.length++
}

// Get reports whether bit i is set. Get panics if i is out of range.
func (b *MutableBitmap) Get(i int) bool {
	b.checkIndex(i)
	return bitutil.BitIsSet(b.buffer.Values(), i)
}

// Set overwrites bit i. Set panics if i is out of range.
func (b *MutableBitmap) Set(i int, value bool) {
	b.checkIndex(i)
	bitutil.SetBitTo(b.buffer.Values(), i, value)
}

// NullCount returns the number of unset bits.
func (b *MutableBitmap) NullCount() int {
	return b.length - bitutil.CountSetBits(b.buffer.Values(), 0, b.length)
}

// ExtendConstant appends additional copies of value.
func (b *MutableBitmap) ExtendConstant(additional int, value bool) {
	if additional <= 0 {
		return
	}
	if !value {
		// trailing bits are already clear, so growing with zero bytes is enough
		b.length += additional
		b.buffer.Resize(BytesFor(b.length), 0)
		return
	}
	b.ExtendFromTrustedLenIter(additional, repeat(true))
}

// ExtendFromSlice appends length bits of data starting at bit offset. It
// panics if the range exceeds data.
func (b *MutableBitmap) ExtendFromSlice(data []byte, offset, length int) {
	if offset < 0 || length < 0 || offset+length > len(data)*8 {
		panic(fmt.Sprintf("bitmap: range [%d, %d) out of bounds for %d bits", offset, offset+length, len(data)*8))
	}
	if length == 0 {
		return
	}
	if b.length%8 == 0 && offset%8 == 0 {
		start := offset / 8
		b.buffer.ExtendFromSlice(data[start : start+BytesFor(length)])
		b.length += length
		b.clearTrailingBits()
		return
	}
	b.ExtendFromTrustedLenIter(length, iterBits(data, offset, length))
}

// ExtendFromBitmap appends every bit of other.
func (b *MutableBitmap) ExtendFromBitmap(other *Bitmap) {
	b.ExtendFromSlice(other.bytes, other.offset, other.length)
}

// ExtendFromTrustedLenIter appends exactly length values drawn from values.
//
// The partially filled last byte is completed bit by bit; the remaining
// values are then packed eight at a time into bytes pushed without capacity
// checks. ExtendFromTrustedLenIter panics if values yields fewer than length
// items. Extra items are ignored.
func (b *MutableBitmap) ExtendFromTrustedLenIter(length int, values iter.Seq[bool]) {
	if length <= 0 {
		return
	}
	b.Reserve(length)

	var (
		bitOffset = b.length % 8
		written   = 0
		acc       byte
		accBits   = 0
	)
	for v := range values {
		if written == length {
			break
		}
		switch {
		case bitOffset != 0:
			// completing the last partially filled byte
			if v {
				*b.buffer.Last() |= bitutil.BitMask[bitOffset]
			}
			bitOffset = (bitOffset + 1) % 8
		default:
			if v {
				acc |= bitutil.BitMask[accBits]
			}
			accBits++
			if accBits == 8 {
				b.buffer.PushUnchecked(acc)
				acc, accBits = 0, 0
			}
		}
		written++
	}
	if written != length {
		panic(fmt.Sprintf("bitmap: iterator yielded %d values, expected %d", written, length))
	}
	if accBits > 0 {
		b.buffer.PushUnchecked(acc)
	}
	b.length += length
}

// Freeze moves the bits into an immutable Bitmap and resets b to empty.
func (b *MutableBitmap) Freeze() *Bitmap {
	length := b.length
	data := b.buffer.Freeze().Values()
	b.length = 0
	return NewBitmapFromBytes(data, length)
}

// FreezeOptional is like Freeze but returns nil when no bit is unset. It is
// used to finish validity masks, where nil means "all valid".
func (b *MutableBitmap) FreezeOptional() *Bitmap {
	if b.NullCount() == 0 {
		b.buffer.Freeze()
		b.length = 0
		return nil
	}
	return b.Freeze()
}

// Bytes returns the packed bytes written so far. The slice is only valid
// until the next mutation.
func (b *MutableBitmap) Bytes() []byte { return b.buffer.Values() }

func (b *MutableBitmap) checkIndex(i int) {
	if i < 0 || i >= b.length {
		panic(fmt.Sprintf("bitmap: index %d out of range [0, %d)", i, b.length))
	}
}

func (b *MutableBitmap) clearTrailingBits() {
	if rem := b.length % 8; rem != 0 {
		*b.buffer.Last() &= bitutil.PrecedingBitmask[rem]
	}
}

func repeat(value bool) iter.Seq[bool] {
	return func(yield func(bool) bool) {
		for yield(value) {
		}
	}
}
