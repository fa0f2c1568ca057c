package parallel_test

import (
	"context"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/columnar/internal/array"
	"github.com/paveg/columnar/internal/compute"
	"github.com/paveg/columnar/internal/errors"
	"github.com/paveg/columnar/internal/parallel"
)

func randomInt64s(seed uint64, n int) *array.Primitive[int64] {
	r := rand.New(rand.NewPCG(seed, seed+1))
	values := make([]int64, n)
	valid := make([]bool, n)
	for i := range values {
		values[i] = r.Int64N(100)
		valid[i] = r.IntN(8) != 0
	}
	return array.PrimitiveFrom(arrow.PrimitiveTypes.Int64, values, valid)
}

// sortedValues reads a sorted primitive array back, with nil for nulls.
func sortedValues(t *testing.T, a array.Array) []*int64 {
	t.Helper()
	p, ok := a.(*array.Primitive[int64])
	require.True(t, ok)
	out := make([]*int64, p.Len())
	for i := range out {
		if p.IsValid(i) {
			v := p.Value(i)
			out[i] = &v
		}
	}
	return out
}

func TestSortMatchesSequential(t *testing.T) {
	values := randomInt64s(3, 1013)
	pool := parallel.NewWorkerPool(4, parallel.WithThreshold(0))

	for _, opts := range []compute.SortOptions{
		{Descending: false, NullsFirst: true},
		{Descending: true, NullsFirst: false},
	} {
		for _, limit := range []int{compute.NoLimit, 0, 7, 500} {
			want, err := compute.Sort(values, opts, limit)
			require.NoError(t, err)
			got, err := parallel.Sort(context.Background(), pool, values, opts, limit)
			require.NoError(t, err)
			assert.Equal(t, sortedValues(t, want), sortedValues(t, got), "opts %+v limit %d", opts, limit)
		}
	}
}

func TestSortToIndicesNullBlockOrder(t *testing.T) {
	values := randomInt64s(9, 400)
	pool := parallel.NewWorkerPool(5, parallel.WithThreshold(0))

	indices, err := parallel.SortToIndices[uint32](context.Background(), pool, values, compute.SortOptions{NullsFirst: true}, compute.NoLimit)
	require.NoError(t, err)

	got := indices.Values().Values()
	nulls := got[:values.NullCount()]
	for _, idx := range nulls {
		assert.True(t, values.IsNull(int(idx)))
	}
	assert.True(t, slices.IsSorted(nulls))

	seen := make(map[uint32]bool, len(got))
	for _, idx := range got {
		seen[idx] = true
	}
	assert.Len(t, seen, values.Len())
}

func TestSortToIndicesStableBoolean(t *testing.T) {
	flags := make([]bool, 300)
	for i := range flags {
		flags[i] = i%3 == 0
	}
	values := array.BooleanFrom(flags, nil)
	pool := parallel.NewWorkerPool(4, parallel.WithThreshold(0))

	got, err := parallel.SortToIndices[int64](context.Background(), pool, values, compute.DefaultSortOptions(), compute.NoLimit)
	require.NoError(t, err)
	want, err := compute.SortToIndices[int64](values, compute.DefaultSortOptions(), compute.NoLimit)
	require.NoError(t, err)
	assert.Equal(t, want.Values().Values(), got.Values().Values())
}

func TestSortToIndicesSmallInputRunsSequentially(t *testing.T) {
	values := array.PrimitiveFrom(arrow.PrimitiveTypes.Int8, []int8{3, 1, 2}, nil)
	pool := parallel.NewWorkerPool(4)

	got, err := parallel.SortToIndices[uint64](context.Background(), pool, values, compute.DefaultSortOptions(), compute.NoLimit)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 0}, got.Values().Values())
}

func TestSortToIndicesUnsupportedType(t *testing.T) {
	values := array.NewNull(arrow.BinaryTypes.Binary, 100)
	pool := parallel.NewWorkerPool(4, parallel.WithThreshold(0))

	_, err := parallel.SortToIndices[uint64](context.Background(), pool, values, compute.DefaultSortOptions(), compute.NoLimit)
	assert.ErrorIs(t, err, errors.ErrNotYetImplemented)
}

func TestSortChunks(t *testing.T) {
	chunks := []array.Array{
		array.Utf8From[int32]([]string{"b", "a", "c"}, nil),
		array.Utf8From[int32]([]string{"z", "", "y"}, []bool{true, false, true}),
	}
	pool := parallel.NewWorkerPool(2, parallel.WithThreshold(0))

	perms, err := parallel.SortChunks[uint32](context.Background(), pool, chunks, compute.DefaultSortOptions(), compute.NoLimit)
	require.NoError(t, err)
	require.Len(t, perms, 2)
	assert.Equal(t, []uint32{1, 0, 2}, perms[0].Values().Values())
	assert.Equal(t, []uint32{1, 2, 0}, perms[1].Values().Values())
}

func BenchmarkParallelSort(b *testing.B) {
	values := randomInt64s(1, 1<<18)
	pool := parallel.NewWorkerPool(0, parallel.WithThreshold(0))
	ctx := context.Background()
	b.ResetTimer()
	for range b.N {
		_, _ = parallel.SortToIndices[uint32](ctx, pool, values, compute.DefaultSortOptions(), compute.NoLimit)
	}
}
