package compute

import (
	"slices"

	"github.com/paveg/columnar/internal/array"
	"github.com/paveg/columnar/internal/buffer"
	"github.com/paveg/columnar/internal/errors"
)

// SortColumn is one key of a multi-column sort.
type SortColumn struct {
	Values array.Array
	// Options defaults to DefaultSortOptions when nil.
	Options *SortOptions
}

// SortToIndicesMulti returns the permutation that sorts rows lexicographically
// by columns: later columns only break ties of earlier ones. Each column
// applies its own null placement and direction. Rows equal on every column
// keep their original order.
func SortToIndicesMulti[I Index](columns []SortColumn, limit int) (*array.Primitive[I], error) {
	if len(columns) == 0 {
		return nil, errors.NewInvalidInputError("lexsort", "at least one sort column is required")
	}
	n := columns[0].Values.Len()
	if !FitsIndex[I](n) {
		return nil, errors.NewInvalidInputError("lexsort", "columns are too long for the requested index type")
	}

	comparators := make([]DynComparator, len(columns))
	for c, col := range columns {
		if col.Values.Len() != n {
			return nil, errors.NewLengthMismatchError("lexsort", n, col.Values.Len())
		}
		opts := DefaultSortOptions()
		if col.Options != nil {
			opts = *col.Options
		}
		cmp, err := SortComparator(col.Values, opts)
		if err != nil {
			return nil, err
		}
		comparators[c] = cmp
	}

	indices := identity[I](n)
	slices.SortStableFunc(indices, func(x, y I) int {
		for _, cmp := range comparators {
			if c := cmp(int(x), int(y)); c != 0 {
				return c
			}
		}
		return 0
	})
	if limit >= 0 && limit < n {
		indices = indices[:limit:limit]
	}
	return array.NewPrimitive(IndexType[I](), buffer.New(indices), nil), nil
}

// Lexsort reorders every column by the multi-column permutation of columns.
func Lexsort(columns []SortColumn, limit int) ([]array.Array, error) {
	indices, err := SortToIndicesMulti[uint64](columns, limit)
	if err != nil {
		return nil, err
	}
	out := make([]array.Array, len(columns))
	for i, col := range columns {
		if out[i], err = Take(col.Values, indices); err != nil {
			return nil, err
		}
	}
	return out, nil
}
