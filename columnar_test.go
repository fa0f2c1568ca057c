package columnar

import (
	"bytes"
	"context"
	"log/slog"
	"math/rand/v2"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/columnar/internal/array"
	"github.com/paveg/columnar/internal/compute"
	"github.com/paveg/columnar/internal/config"
	"github.com/paveg/columnar/internal/errors"
	"github.com/paveg/columnar/internal/monitoring"
	"github.com/paveg/columnar/internal/testutil"
)

// resetGlobals restores the package-level state after a test.
func resetGlobals(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		config.SetGlobalConfig(config.NewConfig())
		monitoring.Disable()
		monitoring.Reset()
		SetLogger(nil)
	})
}

func int64s(values []int64, valid []bool) Array {
	return array.PrimitiveFrom(arrow.PrimitiveTypes.Int64, values, valid)
}

func TestSort(t *testing.T) {
	values := int64s([]int64{3, 0, 1, 2}, []bool{true, false, true, true})

	sorted, err := Sort(values, DefaultSortOptions(), NoLimit)
	require.NoError(t, err)
	testutil.AssertArraysEqual(t, int64s([]int64{0, 1, 2, 3}, []bool{false, true, true, true}), sorted)

	indices, err := SortToIndices[uint32](values, SortOptions{Descending: true}, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 3}, indices.Values().Values())
}

func TestKernels(t *testing.T) {
	values := int64s([]int64{10, 20, 30}, nil)

	t.Run("take", func(t *testing.T) {
		indices := array.PrimitiveFrom(arrow.PrimitiveTypes.Int32, []int32{2, 0}, nil)
		taken, err := Take(values, indices)
		require.NoError(t, err)
		testutil.AssertArraysEqual(t, int64s([]int64{30, 10}, nil), taken)
	})

	t.Run("concat", func(t *testing.T) {
		joined, err := Concat(values, int64s([]int64{40}, nil))
		require.NoError(t, err)
		testutil.AssertArraysEqual(t, int64s([]int64{10, 20, 30, 40}, nil), joined)
	})

	t.Run("filter", func(t *testing.T) {
		mask := array.BooleanFrom([]bool{true, false, true}, nil)
		filtered, err := Filter(values, mask)
		require.NoError(t, err)
		testutil.AssertArraysEqual(t, int64s([]int64{10, 30}, nil), filtered)
	})

	t.Run("dictionary encode", func(t *testing.T) {
		dict, err := DictionaryEncode(array.Utf8From[int32]([]string{"x", "y", "x"}, nil))
		require.NoError(t, err)
		assert.Equal(t, 3, dict.Len())
		assert.Equal(t, dict.Key(0), dict.Key(2))
		assert.NotEqual(t, dict.Key(0), dict.Key(1))
	})

	t.Run("lexsort", func(t *testing.T) {
		desc := SortOptions{Descending: true}
		out, err := Lexsort([]SortColumn{{Values: values, Options: &desc}}, NoLimit)
		require.NoError(t, err)
		require.Len(t, out, 1)
		testutil.AssertArraysEqual(t, int64s([]int64{30, 20, 10}, nil), out[0])
	})

	t.Run("unsupported type", func(t *testing.T) {
		_, err := Sort(array.NewNull(arrow.BinaryTypes.Binary, 2), DefaultSortOptions(), NoLimit)
		assert.ErrorIs(t, err, errors.ErrNotYetImplemented)
	})
}

func TestConfigure(t *testing.T) {
	resetGlobals(t)

	t.Run("sort defaults follow the configuration", func(t *testing.T) {
		cfg := config.NewConfig()
		cfg.DefaultDescending = true
		cfg.DefaultNullsFirst = false
		require.NoError(t, Configure(cfg))

		assert.Equal(t, SortOptions{Descending: true, NullsFirst: false}, DefaultSortOptions())
		assert.True(t, Desc("x").Options.Descending)
		assert.False(t, Asc("x").Options.Descending)
		assert.False(t, Asc("x").Options.NullsFirst)
	})

	t.Run("invalid configuration is rejected", func(t *testing.T) {
		before := config.GetGlobalConfig()
		cfg := config.NewConfig()
		cfg.WorkerPoolSize = -1
		err := Configure(cfg)
		assert.ErrorIs(t, err, errors.ErrInvalidConfiguration)
		assert.Equal(t, before, config.GetGlobalConfig())
	})

	t.Run("metrics collection", func(t *testing.T) {
		cfg := config.NewConfig()
		cfg.MetricsCollection = true
		require.NoError(t, Configure(cfg))

		_, err := Sort(int64s([]int64{2, 1}, nil), DefaultSortOptions(), NoLimit)
		require.NoError(t, err)

		metrics := Metrics()
		require.Len(t, metrics, 1)
		assert.Equal(t, "sort", metrics[0].Kernel)
		assert.Equal(t, "int64", metrics[0].DataType)
		assert.Equal(t, int64(2), metrics[0].Elements)
		assert.False(t, metrics[0].Failed)
		assert.Len(t, Metrics("sort"), 1)
		assert.Empty(t, Metrics("take"))
		assert.Equal(t, 1, MetricsSummary().Kernels["sort"].Calls)

		require.NoError(t, Configure(config.NewConfig()))
		_, err = Sort(int64s([]int64{2, 1}, nil), DefaultSortOptions(), NoLimit)
		require.NoError(t, err)
		assert.Len(t, Metrics(), 1)
	})

	t.Run("questionable settings are logged", func(t *testing.T) {
		var buf bytes.Buffer
		SetLogger(NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
		t.Cleanup(func() { SetLogger(nil) })

		cfg := config.NewConfig()
		cfg.WorkerPoolSize = 1 << 20
		cfg.ParallelThreshold = 1 << 22
		require.NoError(t, Configure(cfg))

		out := buf.String()
		assert.Contains(t, out, "msg=configured")
		assert.Contains(t, out, "workers=1048576")
		assert.Contains(t, out, "level=WARN")
		assert.Contains(t, out, "exceeds 2x CPU count")
	})

	t.Run("verbose logging installs a logger", func(t *testing.T) {
		SetLogger(nil)
		cfg := config.NewConfig()
		cfg.VerboseLogging = true
		require.NoError(t, Configure(cfg))
		assert.NotSame(t, noopLogger, GetLogger())
	})
}

func TestNewGrowable(t *testing.T) {
	resetGlobals(t)
	cfg := config.NewConfig()
	cfg.GrowableCapacityHint = 16
	require.NoError(t, Configure(cfg))

	g, err := NewGrowable([]Array{int64s([]int64{1, 2, 3}, nil)}, false, 0)
	require.NoError(t, err)
	g.Extend(0, 1, 2)
	g.ExtendValidity(1)
	testutil.AssertArraysEqual(t, int64s([]int64{2, 3, 0}, []bool{true, true, false}), g.Finish())
}

func TestParallelSortMatchesSequential(t *testing.T) {
	resetGlobals(t)
	cfg := config.NewConfig()
	cfg.WorkerPoolSize = 4
	cfg.ParallelThreshold = 1
	require.NoError(t, Configure(cfg))

	rng := rand.New(rand.NewPCG(1, 2))
	values := make([]int64, 1000)
	valid := make([]bool, len(values))
	for i := range values {
		values[i] = rng.Int64N(50)
		valid[i] = i%7 != 0
	}
	input := int64s(values, valid)

	for _, opts := range []SortOptions{
		{Descending: false, NullsFirst: true},
		{Descending: true, NullsFirst: false},
	} {
		for _, limit := range []int{NoLimit, 10} {
			expected, err := compute.Sort(input, opts, limit)
			require.NoError(t, err)
			actual, err := ParallelSort(context.Background(), input, opts, limit)
			require.NoError(t, err)
			testutil.AssertArraysEqual(t, expected, actual)
		}
	}

	indices, err := ParallelSortToIndices[int64](context.Background(), input, DefaultSortOptions(), NoLimit)
	require.NoError(t, err)
	assert.Equal(t, len(values), indices.Len())
}

func TestSortTable(t *testing.T) {
	table, err := NewTable(
		Column{Name: "name", Values: array.Utf8From[int32]([]string{"a", "b", "c", "d"}, nil)},
		Column{Name: "price", Values: int64s([]int64{2, 0, 5, 2}, []bool{true, false, true, true})},
	)
	require.NoError(t, err)

	names := func(t *testing.T, tbl *Table) []string {
		t.Helper()
		col, ok := tbl.Column("name")
		require.True(t, ok)
		var out []string
		for _, v := range testutil.Strings[int32](t, col) {
			out = append(out, *v)
		}
		return out
	}

	t.Run("multiple keys", func(t *testing.T) {
		sorted, err := SortTable(context.Background(), table, NoLimit, Desc("price"), Asc("name"))
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "c", "a", "d"}, names(t, sorted))

		price, _ := sorted.Column("price")
		testutil.AssertArraysEqual(t, int64s([]int64{0, 5, 2, 2}, []bool{false, true, true, true}), price)
	})

	t.Run("limit", func(t *testing.T) {
		sorted, err := SortTable(context.Background(), table, 2, SortKey{Column: "price", Options: SortOptions{NullsFirst: false}})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "d"}, names(t, sorted))
	})

	t.Run("missing column", func(t *testing.T) {
		_, err := SortTable(context.Background(), table, NoLimit, Asc("missing"))
		assert.ErrorIs(t, err, errors.ErrInvalidArgument)
		assert.ErrorContains(t, err, "column 'missing' not found")
	})

	t.Run("no keys", func(t *testing.T) {
		_, err := SortTable(context.Background(), table, NoLimit)
		assert.ErrorIs(t, err, errors.ErrInvalidArgument)
	})

	t.Run("table without columns", func(t *testing.T) {
		empty, err := NewTable()
		require.NoError(t, err)
		_, err = SortTable(context.Background(), empty, NoLimit, Asc("name"))
		assert.ErrorIs(t, err, errors.ErrInvalidArgument)
		assert.ErrorContains(t, err, "table without columns")
	})

	t.Run("unsortable column", func(t *testing.T) {
		raw, err := NewTable(Column{Name: "raw", Values: array.NewNull(arrow.BinaryTypes.Binary, 4)})
		require.NoError(t, err)
		_, err = SortTable(context.Background(), raw, NoLimit, Asc("raw"))
		assert.ErrorIs(t, err, errors.ErrNotYetImplemented)
	})
}

func TestVersion(t *testing.T) {
	assert.Contains(t, Version(), "columnar/")
}
