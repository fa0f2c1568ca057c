package compute

import (
	"cmp"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/paveg/columnar/internal/array"
	"github.com/paveg/columnar/internal/errors"
)

// isSortableListChild reports whether lists of dt can be sorted.
func isSortableListChild(dt arrow.DataType) bool {
	return arrow.IsInteger(dt.ID())
}

// listComparator orders the elements of a list array by comparing their
// children position by position over the shorter length; when one element is
// a prefix of the other, the shorter one is less. Null children order before
// values.
func listComparator(a array.Array) (DynComparator, error) {
	var (
		child  array.Array
		bounds func(i int) (start, end int)
	)
	switch l := a.(type) {
	case *array.List[int32]:
		child, bounds = l.Values(), l.ValueBounds
	case *array.List[int64]:
		child, bounds = l.Values(), l.ValueBounds
	case *array.FixedSizeList:
		size := l.Size()
		child = l.Values()
		bounds = func(i int) (int, int) { return i * size, (i + 1) * size }
	default:
		return nil, errors.NewNotYetImplementedError("sort", a.DataType())
	}

	if !isSortableListChild(child.DataType()) {
		return nil, errors.NewNotYetImplementedError("sort", a.DataType())
	}
	values, err := valueComparator("sort", child, child)
	if err != nil {
		return nil, err
	}
	elems := withNulls(child, child, values, true)

	return func(i, j int) int {
		si, ei := bounds(i)
		sj, ej := bounds(j)
		n := min(ei-si, ej-sj)
		for k := range n {
			if c := elems(si+k, sj+k); c != 0 {
				return c
			}
		}
		return cmp.Compare(ei-si, ej-sj)
	}, nil
}
