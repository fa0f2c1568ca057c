package bitmap

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutableBitmap_Push(t *testing.T) {
	b := NewMutableBitmap()
	assert.True(t, b.IsEmpty())

	// 20 pushes cross two byte boundaries
	for i := range 20 {
		b.Push(i%3 == 0)
		require.Equal(t, i+1, b.Len())
	}
	for i := range 20 {
		assert.Equal(t, i%3 == 0, b.Get(i), "unexpected value at index %d", i)
	}
	assert.Equal(t, 13, b.NullCount())
	assert.Len(t, b.Bytes(), 3)
}

func TestMutableBitmap_PushUnchecked(t *testing.T) {
	b := NewMutableBitmapWithCapacity(8)
	assert.GreaterOrEqual(t, b.Capacity(), 8)
	for range 8 {
		b.PushUnchecked(true)
	}
	assert.Equal(t, []byte{0xff}, b.Bytes())
	require.Panics(t, func() { b.PushUnchecked(true) }, "crossing into an unreserved byte must panic")
}

func TestMutableBitmap_SetAndGet(t *testing.T) {
	b := NewMutableBitmapZeroed(12)
	b.Set(3, true)
	b.Set(9, true)
	b.Set(3, false)

	assert.False(t, b.Get(3))
	assert.True(t, b.Get(9))
	assert.Equal(t, 11, b.NullCount())

	require.Panics(t, func() { b.Set(12, true) })
	require.Panics(t, func() { b.Get(-1) })
}

func TestMutableBitmap_ExtendConstant(t *testing.T) {
	tests := []struct {
		name   string
		prefix []bool
		count  int
		value  bool
	}{
		{"empty false", nil, 10, false},
		{"empty true", nil, 10, true},
		{"unaligned false", []bool{true, true, true}, 11, false},
		{"unaligned true", []bool{false}, 17, true},
		{"zero count", []bool{true}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := FromBoolsMutable(tt.prefix)
			b.ExtendConstant(tt.count, tt.value)

			expected := append(slices.Clone(tt.prefix), slices.Repeat([]bool{tt.value}, tt.count)...)
			assert.Equal(t, expected, collect(b.Freeze()))
		})
	}
}

func TestMutableBitmap_ExtendConstantKeepsLaterPushesClean(t *testing.T) {
	b := NewMutableBitmap()
	b.ExtendConstant(3, false)
	b.Push(true)
	b.ExtendConstant(2, false)

	assert.Equal(t, []bool{false, false, false, true, false, false}, collect(b.Freeze()))
}

func TestMutableBitmap_ExtendFromSlice(t *testing.T) {
	src := []byte{0b10110101, 0b01101011, 0b11110000}

	t.Run("aligned", func(t *testing.T) {
		b := NewMutableBitmap()
		b.ExtendFromSlice(src, 8, 5)
		assert.Equal(t, []bool{true, true, false, true, false}, collect(b.Freeze()))
	})

	t.Run("aligned trailing bits are masked", func(t *testing.T) {
		b := NewMutableBitmap()
		b.ExtendFromSlice(src, 0, 3) // 101 of 0b10110101
		b.Push(false)
		b.Push(false)
		assert.Equal(t, []bool{true, false, true, false, false}, collect(b.Freeze()))
	})

	t.Run("unaligned source", func(t *testing.T) {
		b := NewMutableBitmap()
		b.ExtendFromSlice(src, 6, 6)
		assert.Equal(t, []bool{false, true, true, true, false, true}, collect(b.Freeze()))
	})

	t.Run("unaligned destination", func(t *testing.T) {
		b := FromBoolsMutable([]bool{false, false, false})
		b.ExtendFromSlice(src, 0, 16)

		expected := []bool{false, false, false}
		expected = append(expected, collect(NewBitmapFromBytes(src, 16))...)
		assert.Equal(t, expected, collect(b.Freeze()))
	})

	t.Run("out of bounds", func(t *testing.T) {
		b := NewMutableBitmap()
		require.Panics(t, func() { b.ExtendFromSlice(src, 20, 5) })
	})
}

func TestMutableBitmap_ExtendFromSliceAlignedMatchesUnaligned(t *testing.T) {
	pattern := func(n int) []bool {
		values := make([]bool, n)
		for i := range values {
			values[i] = i%3 == 0 || i%11 == 4
		}
		return values
	}

	tests := []struct {
		name   string
		length int
		shift  int // source bit offset
		prefix int // destination bits already present
	}{
		{"single bit source shift", 1, 3, 0},
		{"partial byte destination shift", 7, 0, 5},
		{"two bytes both shifted", 16, 1, 7},
		{"many bytes both shifted", 61, 6, 3},
		{"byte multiple prefix", 40, 2, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := pattern(tt.length)

			aligned := NewMutableBitmap()
			aligned.ExtendFromSlice(FromBools(values).Bytes(), 0, tt.length)
			expected := aligned.Freeze()

			shifted := FromBools(append(make([]bool, tt.shift), values...))
			unaligned := NewMutableBitmapZeroed(tt.prefix)
			unaligned.ExtendFromSlice(shifted.Bytes(), tt.shift, tt.length)
			got := unaligned.Freeze()

			require.Equal(t, tt.prefix+tt.length, got.Len())
			assert.True(t, expected.Equal(got.Slice(tt.prefix, tt.length)), "expected %s, got %s", expected, got.Slice(tt.prefix, tt.length))
			assert.Equal(t, expected.NullCount(), got.Slice(tt.prefix, tt.length).NullCount())
		})
	}
}

func TestMutableBitmap_ExtendFromBitmap(t *testing.T) {
	src := FromBools([]bool{true, false, true, true, false, true, true, false, false, true})
	b := FromBoolsMutable([]bool{true})
	b.ExtendFromBitmap(src.Slice(2, 7))

	assert.Equal(t, []bool{true, true, true, false, true, true, false, false}, collect(b.Freeze()))
}

func TestMutableBitmap_ExtendFromTrustedLenIter(t *testing.T) {
	values := make([]bool, 37)
	for i := range values {
		values[i] = i%5 == 1 || i%7 == 0
	}

	for _, prefix := range []int{0, 1, 5, 8, 13} {
		b := NewMutableBitmapZeroed(prefix)
		b.ExtendFromTrustedLenIter(len(values), slices.Values(values))

		expected := append(make([]bool, prefix), values...)
		assert.Equal(t, expected, collect(b.Freeze()), "prefix %d", prefix)
	}
}

func TestMutableBitmap_PushMatchesTrustedLenIter(t *testing.T) {
	tests := []struct {
		name   string
		prefix []bool
		values []bool
	}{
		{"empty", nil, nil},
		{"single", nil, []bool{true}},
		{"one byte", nil, []bool{true, false, true, true, false, false, true, false}},
		{"partial prefix", []bool{true, true, false}, []bool{false, true, true, true, false, true, false, false, true, true}},
		{"all set across bytes", []bool{false}, slices.Repeat([]bool{true}, 23)},
		{"all unset after full byte", slices.Repeat([]bool{true}, 8), make([]bool, 17)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pushed := FromBoolsMutable(tt.prefix)
			for _, v := range tt.values {
				pushed.Push(v)
			}

			extended := FromBoolsMutable(tt.prefix)
			extended.ExtendFromTrustedLenIter(len(tt.values), slices.Values(tt.values))

			a, b := pushed.Freeze(), extended.Freeze()
			assert.True(t, a.Equal(b), "push %s, extend %s", a, b)
			assert.Equal(t, a.NullCount(), b.NullCount())
			assert.Equal(t, a.Bytes(), b.Bytes())
		})
	}
}

func TestMutableBitmap_ExtendFromTrustedLenIterShort(t *testing.T) {
	b := NewMutableBitmap()
	require.Panics(t, func() {
		b.ExtendFromTrustedLenIter(4, slices.Values([]bool{true, false}))
	})
}

func TestMutableBitmap_MutableFromBytes(t *testing.T) {
	b := MutableFromBytes([]byte{0xff, 0xff}, 10)
	b.Push(false)
	assert.Equal(t, 11, b.Len())
	assert.False(t, b.Get(10), "bits beyond the length must not leak into later pushes")

	require.Panics(t, func() { MutableFromBytes([]byte{0}, 9) })
}

func TestMutableBitmap_Freeze(t *testing.T) {
	b := FromBoolsMutable([]bool{true, false, true})
	frozen := b.Freeze()

	assert.Equal(t, 3, frozen.Len())
	assert.Equal(t, 1, frozen.NullCount())
	assert.Equal(t, 0, b.Len(), "freeze should leave the builder empty")
}

func TestMutableBitmap_FreezeOptional(t *testing.T) {
	allValid := FromBoolsMutable([]bool{true, true, true})
	assert.Nil(t, allValid.FreezeOptional())

	empty := NewMutableBitmap()
	assert.Nil(t, empty.FreezeOptional())

	withNulls := FromBoolsMutable([]bool{true, false})
	frozen := withNulls.FreezeOptional()
	require.NotNil(t, frozen)
	assert.Equal(t, 1, frozen.NullCount())
}

func BenchmarkMutableBitmap_Push(b *testing.B) {
	for range b.N {
		bmap := NewMutableBitmapWithCapacity(4096)
		for i := range 4096 {
			bmap.Push(i%2 == 0)
		}
	}
}

func BenchmarkMutableBitmap_ExtendFromSliceUnaligned(b *testing.B) {
	src := make([]byte, 512)
	for i := range src {
		src[i] = byte(i)
	}

	b.ResetTimer()
	for range b.N {
		bmap := NewMutableBitmap()
		bmap.Push(true)
		bmap.ExtendFromSlice(src, 3, 4000)
	}
}
