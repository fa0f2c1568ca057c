// Package columnar provides Arrow-compatible columnar arrays and the compute
// kernels that operate on them. This package is the public API for the library.
//
// Arrays are immutable. Every kernel returns new arrays and leaves its inputs
// untouched, so arrays can be shared freely between goroutines.
package columnar

import (
	"context"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/paveg/columnar/internal/array"
	"github.com/paveg/columnar/internal/bitmap"
	"github.com/paveg/columnar/internal/compute"
	"github.com/paveg/columnar/internal/config"
	"github.com/paveg/columnar/internal/errors"
	"github.com/paveg/columnar/internal/growable"
	"github.com/paveg/columnar/internal/interop"
	"github.com/paveg/columnar/internal/monitoring"
	"github.com/paveg/columnar/internal/parallel"
	"github.com/paveg/columnar/internal/validation"
	"github.com/paveg/columnar/internal/version"
)

type (
	// Array is the type-erased interface every array implements.
	Array = array.Array
	// Bitmap is an immutable packed sequence of bits.
	Bitmap = bitmap.Bitmap
	// MutableBitmap is an append-only bitmap that can be frozen.
	MutableBitmap = bitmap.MutableBitmap
	// SortOptions controls direction and null placement of a sort.
	SortOptions = compute.SortOptions
	// SortColumn is one key of a multi-column sort.
	SortColumn = compute.SortColumn
	// Growable builds an array by copying ranges out of existing arrays.
	Growable = growable.Growable
	// Config holds the library-wide defaults.
	Config = config.Config
)

// NoLimit requests every element from a sort.
const NoLimit = compute.NoLimit

// DefaultSortOptions returns the sort options of the global configuration.
func DefaultSortOptions() SortOptions {
	cfg := config.GetGlobalConfig()
	return SortOptions{Descending: cfg.DefaultDescending, NullsFirst: cfg.DefaultNullsFirst}
}

// Configure validates cfg and installs it as the global configuration.
// MetricsCollection toggles kernel metrics and VerboseLogging installs a
// debug text logger when no logger has been set. Settings that are valid but
// work against the parallel kernels are logged as warnings.
func Configure(cfg Config) error {
	validator := config.NewConfigValidator()
	warnings, err := validator.Validate(cfg)
	if err != nil {
		return err
	}
	config.SetGlobalConfig(cfg)

	if cfg.MetricsCollection {
		monitoring.Enable()
	} else {
		monitoring.Disable()
	}

	if cfg.VerboseLogging && GetLogger() == noopLogger {
		SetLogger(NewTextLogger(slog.LevelDebug))
	}

	logger := GetLogger()
	ctx := context.Background()
	sys := config.GetSystemInfo()
	logger.DebugContext(ctx, "configured",
		"workers", cfg.Workers(),
		"parallel_threshold", cfg.ParallelThreshold,
		"cpus", sys.CPUCount,
		"arch", sys.Architecture,
		"os", sys.OSType,
	)
	for _, w := range warnings {
		logger.WarnContext(ctx, "configuration warning", "warning", w)
	}
	return nil
}

// Metrics returns the recorded invocations of the named kernels, or of every
// kernel when no names are given.
func Metrics(kernels ...string) []monitoring.KernelMetrics {
	return monitoring.Metrics(kernels...)
}

// MetricsSummary aggregates the recorded kernel metrics.
func MetricsSummary() monitoring.MetricsSummary {
	return monitoring.Summary()
}

// Version returns the short version string of the library.
func Version() string {
	return version.Short()
}

// run executes a kernel under the global metrics collector and logs the outcome.
func run(kernel string, input Array, fanOut bool, fn func() error) error {
	op := monitoring.Operation{Kernel: kernel, Parallel: fanOut}
	if input != nil {
		op.DataType = input.DataType().String()
		op.Elements = input.Len()
	}
	err := monitoring.Record(op, fn)
	GetLogger().LogKernel(context.Background(), kernel, op.Elements, err)
	return err
}

// Sort returns a sorted copy of a. A non-negative limit keeps only the
// first limit elements of the result.
func Sort(a Array, opts SortOptions, limit int) (Array, error) {
	var out Array
	err := run("sort", a, false, func() (err error) {
		out, err = compute.Sort(a, opts, limit)
		return err
	})
	return out, err
}

// SortToIndices returns the permutation that sorts a.
func SortToIndices[I compute.Index](a Array, opts SortOptions, limit int) (*array.Primitive[I], error) {
	var out *array.Primitive[I]
	err := run("sort_to_indices", a, false, func() (err error) {
		out, err = compute.SortToIndices[I](a, opts, limit)
		return err
	})
	return out, err
}

// Lexsort sorts every column by the lexicographic order of all of them.
func Lexsort(columns []SortColumn, limit int) ([]Array, error) {
	var first Array
	if len(columns) > 0 {
		first = columns[0].Values
	}
	var out []Array
	err := run("lexsort", first, false, func() (err error) {
		out, err = compute.Lexsort(columns, limit)
		return err
	})
	return out, err
}

// Take gathers the elements of a at indices. Null indices produce nulls.
func Take[I compute.Index](a Array, indices *array.Primitive[I]) (Array, error) {
	var out Array
	err := run("take", a, false, func() (err error) {
		out, err = compute.Take(a, indices)
		return err
	})
	return out, err
}

// Concat appends arrays of the same type into one array.
func Concat(arrays ...Array) (Array, error) {
	var first Array
	if len(arrays) > 0 {
		first = arrays[0]
	}
	var out Array
	err := run("concat", first, false, func() (err error) {
		out, err = compute.Concat(arrays...)
		return err
	})
	return out, err
}

// Filter keeps the elements of a whose mask slot is true and valid.
func Filter(a Array, mask *array.Boolean) (Array, error) {
	var out Array
	err := run("filter", a, false, func() (err error) {
		out, err = compute.FilterArray(a, mask)
		return err
	})
	return out, err
}

// DictionaryEncode replaces a with int32 keys into its distinct values.
func DictionaryEncode(a Array) (*array.Dictionary[int32], error) {
	var out *array.Dictionary[int32]
	err := run("dictionary_encode", a, false, func() (err error) {
		out, err = compute.DictionaryEncode(a)
		return err
	})
	return out, err
}

// NewGrowable returns a Growable over arrays. A zero capacity falls back to
// the configured GrowableCapacityHint.
func NewGrowable(arrays []Array, useValidity bool, capacity int) (Growable, error) {
	if capacity == 0 {
		capacity = config.GetGlobalConfig().GrowableCapacityHint
	}
	return growable.New(arrays, useValidity, capacity)
}

// newWorkerPool sizes a pool from the global configuration.
func newWorkerPool() *parallel.WorkerPool {
	cfg := config.GetGlobalConfig()
	return parallel.NewWorkerPool(cfg.Workers(),
		parallel.WithThreshold(cfg.ParallelThreshold),
		parallel.WithLogger(GetLogger().Logger),
	)
}

// ParallelSort sorts a by sorting chunks on separate workers and merging them.
// Small inputs run on the calling goroutine.
func ParallelSort(ctx context.Context, a Array, opts SortOptions, limit int) (Array, error) {
	var out Array
	err := run("parallel_sort", a, true, func() (err error) {
		out, err = parallel.Sort(ctx, newWorkerPool(), a, opts, limit)
		return err
	})
	return out, err
}

// ParallelSortToIndices is the parallel counterpart of SortToIndices.
func ParallelSortToIndices[I compute.Index](ctx context.Context, a Array, opts SortOptions, limit int) (*array.Primitive[I], error) {
	var out *array.Primitive[I]
	err := run("parallel_sort_to_indices", a, true, func() (err error) {
		out, err = parallel.SortToIndices[I](ctx, newWorkerPool(), a, opts, limit)
		return err
	})
	return out, err
}

// SortKey names a table column to sort by.
type SortKey struct {
	Column  string
	Options SortOptions
}

// Asc sorts column ascending with the configured null placement.
func Asc(column string) SortKey {
	opts := DefaultSortOptions()
	opts.Descending = false
	return SortKey{Column: column, Options: opts}
}

// Desc sorts column descending with the configured null placement.
func Desc(column string) SortKey {
	opts := DefaultSortOptions()
	opts.Descending = true
	return SortKey{Column: column, Options: opts}
}

// SortTable reorders the rows of t by keys. Later keys break ties of
// earlier ones and rows equal on every key keep their order. Columns are
// gathered on the configured worker pool.
func SortTable(ctx context.Context, t *Table, limit int, keys ...SortKey) (*Table, error) {
	const op = "sort table"
	if len(keys) == 0 {
		return nil, errors.NewInvalidInputError(op, "at least one sort key is required")
	}

	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.Column
	}
	columns := make([]SortColumn, len(keys))
	validator := validation.NewCompoundValidator(
		validation.NewEmptyTableValidator(t, op),
		validation.NewColumnValidator(t, op, names...),
		validation.ValidatorFunc(func() error {
			for i, k := range keys {
				values, _ := t.Column(k.Column)
				if err := validation.ValidateType(values.DataType(), op, compute.CanSort); err != nil {
					return err
				}
				opts := k.Options
				columns[i] = SortColumn{Values: values, Options: &opts}
			}
			return nil
		}),
	)
	if err := validator.Validate(); err != nil {
		return nil, err
	}

	var sorted *Table
	err := run("sort_table", columns[0].Values, true, func() error {
		indices, err := compute.SortToIndicesMulti[uint64](columns, limit)
		if err != nil {
			return err
		}
		all := make([]Column, t.Width())
		for i := range all {
			all[i] = t.ColumnAt(i)
		}
		taken, err := parallel.Map(ctx, newWorkerPool(), all, func(_ context.Context, _ int, c Column) (Column, error) {
			values, err := compute.Take(c.Values, indices)
			return Column{Name: c.Name, Values: values}, err
		})
		if err != nil {
			return err
		}
		sorted, err = NewTable(taken...)
		return err
	})
	return sorted, err
}

// ToArrow exposes a as an arrow-go array without copying its buffers.
// The caller must Release the result.
func ToArrow(a Array) (arrow.Array, error) {
	return interop.ToArrow(a)
}

// FromArrow copies an arrow-go array into an Array.
func FromArrow(a arrow.Array) (Array, error) {
	return interop.FromArrow(a)
}
