// Package bitmap provides bit-packed boolean storage used for validity masks
// and boolean values.
//
// A Bitmap is immutable and cheap to share: it references a byte slice plus a
// bit offset and length, so slicing never copies. Bitmaps are built with a
// MutableBitmap, which is exclusively owned by its builder and frozen exactly
// once.
//
// Bits are stored least-significant-bit first, matching the Arrow columnar
// format. A set bit means "valid" when a Bitmap is used as a validity mask.
package bitmap

import (
	"fmt"
	"iter"
	"sync/atomic"

	"github.com/apache/arrow-go/v18/arrow/bitutil"
)

const unknownNulls = -1

// Bitmap is an immutable sequence of bits.
//
// Bitmaps are always handled through a pointer; a nil *Bitmap used as a
// validity mask means that every element is valid.
type Bitmap struct {
	bytes  []byte
	offset int
	length int

	// nulls caches the number of unset bits in [offset, offset+length). It is
	// computed eagerly on construction and lazily for slices.
	nulls atomic.Int64
}

// NewBitmapFromBytes creates a Bitmap of length bits backed by data. The
// Bitmap takes ownership of data. NewBitmapFromBytes panics if data is too
// short to hold length bits.
func NewBitmapFromBytes(data []byte, length int) *Bitmap {
	if length < 0 || length > len(data)*8 {
		panic(fmt.Sprintf("bitmap: length %d exceeds buffer capacity of %d bits", length, len(data)*8))
	}
	b := &Bitmap{bytes: data, length: length}
	b.nulls.Store(int64(length - bitutil.CountSetBits(data, 0, length)))
	return b
}

// NewBitmapZeroed returns a Bitmap of length unset bits.
func NewBitmapZeroed(length int) *Bitmap {
	return NewBitmapFromBytes(make([]byte, BytesFor(length)), length)
}

// FromBools builds a Bitmap from a slice of booleans.
func FromBools(values []bool) *Bitmap {
	return FromBoolsMutable(values).Freeze()
}

// Len returns the number of bits in the bitmap.
func (b *Bitmap) Len() int { return b.length }

// Offset returns the bit offset of the bitmap into Bytes.
func (b *Bitmap) Offset() int { return b.offset }

// Bytes returns the full backing byte slice. Bit i of the bitmap is bit
// Offset()+i of the returned slice.
func (b *Bitmap) Bytes() []byte { return b.bytes }

// Get reports whether bit i is set. Get panics if i is out of range.
func (b *Bitmap) Get(i int) bool {
	if i < 0 || i >= b.length {
		panic(fmt.Sprintf("bitmap: index %d out of range [0, %d)", i, b.length))
	}
	return bitutil.BitIsSet(b.bytes, b.offset+i)
}

// NullCount returns the number of unset bits.
func (b *Bitmap) NullCount() int {
	if n := b.nulls.Load(); n != unknownNulls {
		return int(n)
	}
	n := b.length - bitutil.CountSetBits(b.bytes, b.offset, b.length)
	b.nulls.Store(int64(n))
	return n
}

// Slice returns a view of length bits starting at offset. The view shares the
// backing bytes with b. Slice panics if the range is out of bounds.
func (b *Bitmap) Slice(offset, length int) *Bitmap {
	if offset < 0 || length < 0 || offset+length > b.length {
		panic(fmt.Sprintf("bitmap: slice [%d, %d) out of range for length %d", offset, offset+length, b.length))
	}
	out := &Bitmap{bytes: b.bytes, offset: b.offset + offset, length: length}

	switch parent := b.nulls.Load(); {
	case length == b.length:
		out.nulls.Store(parent)
	case parent == 0:
		out.nulls.Store(0)
	case parent == int64(b.length):
		out.nulls.Store(int64(length))
	default:
		out.nulls.Store(unknownNulls)
	}
	return out
}

// Values returns an iterator over every bit in the bitmap.
func (b *Bitmap) Values() iter.Seq[bool] {
	return iterBits(b.bytes, b.offset, b.length)
}

// IterValues returns an iterator over the indices whose bit equals value.
func (b *Bitmap) IterValues(value bool) iter.Seq[int] {
	return func(yield func(int) bool) {
		i := 0
		for bit := range b.Values() {
			if bit == value && !yield(i) {
				return
			}
			i++
		}
	}
}

// Equal reports whether b and other hold the same sequence of bits.
func (b *Bitmap) Equal(other *Bitmap) bool {
	if b.length != other.length {
		return false
	}
	if b.length == 0 {
		return true
	}
	return bitutil.BitmapEquals(b.bytes, other.bytes, int64(b.offset), int64(other.offset), int64(b.length))
}

// String implements fmt.Stringer.
func (b *Bitmap) String() string {
	buf := make([]byte, 0, b.length+2)
	buf = append(buf, '[')
	for v := range b.Values() {
		if v {
			buf = append(buf, '1')
		} else {
			buf = append(buf, '0')
		}
	}
	return string(append(buf, ']'))
}

// BytesFor returns the number of bytes needed to store bits bits.
func BytesFor(bits int) int {
	return int(bitutil.BytesForBits(int64(bits)))
}

// iterBits yields length bits of data starting at bit offset.
func iterBits(data []byte, offset, length int) iter.Seq[bool] {
	return func(yield func(bool) bool) {
		rdr := bitutil.NewBitmapReader(data, offset, length)
		for range length {
			if !yield(rdr.Set()) {
				return
			}
			rdr.Next()
		}
	}
}
