package compute

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/columnar/internal/array"
	"github.com/paveg/columnar/internal/errors"
)

func TestSortToIndicesMulti(t *testing.T) {
	ints := primitiveOf(arrow.PrimitiveTypes.Int64, []*int64{nil, ptr[int64](-1), ptr[int64](2), ptr[int64](-1), nil})
	names := utf8Of[int32]([]*string{str("foo"), str("world"), str("hello"), str("xyz"), str("bar")})

	t.Run("single column", func(t *testing.T) {
		got, err := SortToIndicesMulti[uint32]([]SortColumn{{Values: names}}, NoLimit)
		require.NoError(t, err)
		assert.Equal(t, []uint32{4, 0, 2, 1, 3}, got.Values().Values())
	})

	t.Run("second column breaks ties", func(t *testing.T) {
		got, err := SortToIndicesMulti[uint32]([]SortColumn{{Values: ints}, {Values: names}}, NoLimit)
		require.NoError(t, err)
		assert.Equal(t, []uint32{4, 0, 1, 3, 2}, got.Values().Values())
	})

	t.Run("per column options", func(t *testing.T) {
		got, err := SortToIndicesMulti[int64]([]SortColumn{
			{Values: ints, Options: &descNullsLast},
			{Values: names, Options: &descNullsFirst},
		}, NoLimit)
		require.NoError(t, err)
		assert.Equal(t, []int64{2, 3, 1, 0, 4}, got.Values().Values())
	})

	t.Run("limit", func(t *testing.T) {
		got, err := SortToIndicesMulti[uint64]([]SortColumn{{Values: ints}, {Values: names}}, 2)
		require.NoError(t, err)
		assert.Equal(t, []uint64{4, 0}, got.Values().Values())
	})

	t.Run("equal rows keep their order", func(t *testing.T) {
		flags := array.BooleanFrom([]bool{true, false, true, false}, nil)
		got, err := SortToIndicesMulti[uint32]([]SortColumn{{Values: flags}}, NoLimit)
		require.NoError(t, err)
		assert.Equal(t, []uint32{1, 3, 0, 2}, got.Values().Values())
	})

	t.Run("list column", func(t *testing.T) {
		l := listOf[int32]([][]*int32{i32s(2), i32s(1, 5), i32s(1), i32s(2), i32s(0)}, nil)
		got, err := SortToIndicesMulti[uint32]([]SortColumn{{Values: l}, {Values: names}}, NoLimit)
		require.NoError(t, err)
		assert.Equal(t, []uint32{4, 2, 1, 0, 3}, got.Values().Values())
	})

	t.Run("no columns", func(t *testing.T) {
		_, err := SortToIndicesMulti[uint32](nil, NoLimit)
		assert.ErrorIs(t, err, errors.ErrInvalidArgument)
	})

	t.Run("length mismatch", func(t *testing.T) {
		short := array.PrimitiveFrom(arrow.PrimitiveTypes.Int8, []int8{1}, nil)
		_, err := SortToIndicesMulti[uint32]([]SortColumn{{Values: ints}, {Values: short}}, NoLimit)
		assert.ErrorIs(t, err, errors.ErrLengthMismatch)
	})

	t.Run("unsupported column", func(t *testing.T) {
		binary := array.NewNull(arrow.BinaryTypes.Binary, ints.Len())
		_, err := SortToIndicesMulti[uint32]([]SortColumn{{Values: ints}, {Values: binary}}, NoLimit)
		assert.ErrorIs(t, err, errors.ErrNotYetImplemented)
	})
}

func TestLexsort(t *testing.T) {
	ints := array.PrimitiveFrom(arrow.PrimitiveTypes.Int32, []int32{2, 1, 2, 1}, nil)
	names := utf8Of[int32]([]*string{str("b"), str("z"), str("a"), nil})

	got, err := Lexsort([]SortColumn{{Values: ints}, {Values: names}}, NoLimit)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []*int32{ptr[int32](1), ptr[int32](1), ptr[int32](2), ptr[int32](2)}, primitives[int32](t, got[0]))
	assert.Equal(t, []*string{nil, str("z"), str("a"), str("b")}, utf8Values[int32](t, got[1]))
}
