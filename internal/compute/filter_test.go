package compute

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/columnar/internal/array"
	"github.com/paveg/columnar/internal/errors"
)

func TestBuildFilter(t *testing.T) {
	mask := array.BooleanFrom(
		[]bool{true, true, false, true, true, true, false, true},
		[]bool{true, true, true, false, true, true, true, true},
	)

	f, err := BuildFilter(mask)
	require.NoError(t, err)
	assert.Equal(t, 8, f.Len())
	assert.Equal(t, 5, f.SelectedCount())
	assert.Equal(t, []selectionRun{{0, 2}, {4, 6}, {7, 8}}, f.runs)

	assert.True(t, f.Selected(0))
	assert.False(t, f.Selected(2))
	assert.False(t, f.Selected(3), "null mask entries are not selected")
	assert.True(t, f.Selected(7))
}

func TestBuildFilterSlicedMask(t *testing.T) {
	mask := array.BooleanFrom(
		[]bool{false, false, false, true, true, false, true, true, true, false, true},
		[]bool{true, true, true, true, false, true, true, true, true, true, true},
	).Slice(3, 8).(*array.Boolean)

	f, err := BuildFilter(mask)
	require.NoError(t, err)
	assert.Equal(t, 8, f.Len())
	assert.Equal(t, []selectionRun{{0, 1}, {3, 6}, {7, 8}}, f.runs)
}

func TestBuildFilterEmpty(t *testing.T) {
	f, err := BuildFilter(array.BooleanFrom(nil, nil))
	require.NoError(t, err)
	assert.Equal(t, 0, f.SelectedCount())
	assert.Empty(t, f.runs)
}

func TestFilterApply(t *testing.T) {
	mask := array.BooleanFrom([]bool{true, false, true, true}, []bool{true, true, false, true})
	f, err := BuildFilter(mask)
	require.NoError(t, err)

	t.Run("primitive", func(t *testing.T) {
		values := primitiveOf(arrow.PrimitiveTypes.Float32, []*float32{ptr[float32](1), ptr[float32](2), ptr[float32](3), nil})
		got, err := f.Apply(values)
		require.NoError(t, err)
		assert.Equal(t, []*float32{ptr[float32](1), nil}, primitives[float32](t, got))
	})

	t.Run("strings", func(t *testing.T) {
		values := utf8Of[int32]([]*string{str("a"), str("b"), str("c"), str("d")})
		got, err := f.Apply(values)
		require.NoError(t, err)
		assert.Equal(t, []*string{str("a"), str("d")}, utf8Values[int32](t, got))
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := f.Apply(array.PrimitiveFrom(arrow.PrimitiveTypes.Int8, []int8{1}, nil))
		assert.ErrorIs(t, err, errors.ErrLengthMismatch)
	})
}

func TestFilterArray(t *testing.T) {
	values := listOf[int64]([][]*int32{i32s(1), i32s(2, 3), nil, i32s(4)}, []bool{true, true, false, true})
	mask := array.BooleanFrom([]bool{false, true, true, true}, nil)

	got, err := FilterArray(values, mask)
	require.NoError(t, err)
	assert.Equal(t, [][]*int32{i32s(2, 3), nil, i32s(4)}, lists(t, got))
}
