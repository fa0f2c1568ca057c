// Package compute implements kernels over columnar arrays: sorting, take,
// concatenation, filtering and dictionary encoding.
//
// Kernels are pure functions of their inputs. Unsupported logical types are
// reported as errors matching errors.ErrNotYetImplemented; malformed inputs
// (such as out-of-range indices) are programming errors and panic.
package compute

import (
	"bytes"
	"slices"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/paveg/columnar/internal/array"
	"github.com/paveg/columnar/internal/buffer"
	"github.com/paveg/columnar/internal/errors"
)

// NoLimit requests every index from a sort.
const NoLimit = -1

// SortOptions controls the order produced by the sort kernels.
type SortOptions struct {
	// Descending reverses the order of valid elements. It does not move nulls.
	Descending bool `json:"descending" yaml:"descending"`
	// NullsFirst places nulls before valid elements.
	NullsFirst bool `json:"nulls_first" yaml:"nulls_first"`
}

// DefaultSortOptions returns ascending order with nulls first.
func DefaultSortOptions() SortOptions {
	return SortOptions{Descending: false, NullsFirst: true}
}

// Index is the set of integer types a permutation can be expressed in.
type Index interface {
	int32 | int64 | uint32 | uint64
}

// IndexType returns the logical type of an index array of I.
func IndexType[I Index]() arrow.DataType {
	var zero I
	switch any(zero).(type) {
	case int32:
		return arrow.PrimitiveTypes.Int32
	case int64:
		return arrow.PrimitiveTypes.Int64
	case uint32:
		return arrow.PrimitiveTypes.Uint32
	default:
		return arrow.PrimitiveTypes.Uint64
	}
}

// Sort returns a copy of a reordered according to opts. A non-negative limit
// truncates the result to its first limit elements.
func Sort(a array.Array, opts SortOptions, limit int) (array.Array, error) {
	indices, err := SortToIndices[uint64](a, opts, limit)
	if err != nil {
		return nil, err
	}
	return Take(a, indices)
}

// SortToIndices returns the permutation that sorts a according to opts. Valid
// elements are ordered by the total order of their type; nulls form one
// contiguous block at the front or back, in ascending index order. A
// non-negative limit keeps only the first limit indices.
func SortToIndices[I Index](a array.Array, opts SortOptions, limit int) (*array.Primitive[I], error) {
	if !FitsIndex[I](a.Len()) {
		return nil, errors.NewInvalidInputError("sort", "array is too long for the requested index type")
	}

	dt := a.DataType()
	var indices []I
	switch dt.ID() {
	case arrow.NULL:
		indices = sortNull[I](a, limit)
	case arrow.BOOL:
		indices = sortBoolean[I](a.(*array.Boolean), opts, limit)
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64,
		arrow.FLOAT32, arrow.FLOAT64,
		arrow.DATE32, arrow.DATE64, arrow.TIME32, arrow.TIME64,
		arrow.TIMESTAMP, arrow.DURATION,
		arrow.INTERVAL_MONTHS, arrow.INTERVAL_DAY_TIME, arrow.INTERVAL_MONTH_DAY_NANO:
		cmp, err := valueComparator("sort", a, a)
		if err != nil {
			return nil, err
		}
		indices = sortByComparator[I](a, cmp, opts, limit, false)
	case arrow.STRING:
		indices = sortUtf8[I, int32](a.(*array.Utf8[int32]), opts, limit)
	case arrow.LARGE_STRING:
		indices = sortUtf8[I, int64](a.(*array.Utf8[int64]), opts, limit)
	case arrow.DICTIONARY:
		cmp, err := dictionaryComparator("sort", a, a)
		if err != nil {
			return nil, err
		}
		indices = sortByComparator[I](a, cmp, opts, limit, false)
	case arrow.LIST, arrow.LARGE_LIST, arrow.FIXED_SIZE_LIST:
		cmp, err := listComparator(a)
		if err != nil {
			return nil, err
		}
		indices = sortByComparator[I](a, cmp, opts, limit, true)
	default:
		return nil, errors.NewNotYetImplementedError("sort", dt)
	}

	return array.NewPrimitive(IndexType[I](), buffer.New(indices), nil), nil
}

// CanSort reports whether Sort and SortToIndices support dt.
func CanSort(dt arrow.DataType) bool {
	switch dt.ID() {
	case arrow.NULL, arrow.BOOL,
		arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64,
		arrow.FLOAT32, arrow.FLOAT64,
		arrow.DATE32, arrow.DATE64, arrow.TIME32, arrow.TIME64,
		arrow.TIMESTAMP, arrow.DURATION,
		arrow.INTERVAL_MONTHS, arrow.INTERVAL_DAY_TIME, arrow.INTERVAL_MONTH_DAY_NANO,
		arrow.STRING, arrow.LARGE_STRING:
		return true
	case arrow.LIST, arrow.LARGE_LIST, arrow.FIXED_SIZE_LIST:
		return isSortableListChild(dt.(arrow.ListLikeType).Elem())
	case arrow.DICTIONARY:
		dict := dt.(*arrow.DictionaryType)
		return arrow.IsInteger(dict.IndexType.ID()) &&
			(dict.ValueType.ID() == arrow.STRING || dict.ValueType.ID() == arrow.LARGE_STRING)
	default:
		return false
	}
}

// SortComparator returns a comparator over the elements of a that orders them
// the way SortToIndices does under opts, including null placement. Elements
// it reports as equal may appear in either order in an unstable sort.
func SortComparator(a array.Array, opts SortOptions) (DynComparator, error) {
	var (
		values DynComparator
		err    error
	)
	switch a.DataType().ID() {
	case arrow.NULL:
		values = func(int, int) int { return 0 }
	case arrow.LIST, arrow.LARGE_LIST, arrow.FIXED_SIZE_LIST:
		values, err = listComparator(a)
	default:
		values, err = valueComparator("sort", a, a)
	}
	if err != nil {
		return nil, err
	}
	if opts.Descending {
		asc := values
		values = func(i, j int) int { return asc(j, i) }
	}
	return withNulls(a, a, values, opts.NullsFirst), nil
}

// sortByComparator partitions the positions of a into valid and null sets,
// orders the valid set with cmp and merges both according to opts.
func sortByComparator[I Index](a array.Array, cmp DynComparator, opts SortOptions, limit int, stable bool) []I {
	valids, nulls := partitionValidity[I](a)

	// when nulls come first and already fill the limit, valid order is moot
	if !(opts.NullsFirst && limit >= 0 && limit <= len(nulls)) {
		less := func(x, y I) int { return cmp(int(x), int(y)) }
		if opts.Descending {
			less = func(x, y I) int { return cmp(int(y), int(x)) }
		}
		if stable {
			slices.SortStableFunc(valids, less)
		} else {
			slices.SortFunc(valids, less)
		}
	}
	return mergePartitions(valids, nulls, opts, limit)
}

// partitionValidity splits 0..a.Len() into valid and null positions.
func partitionValidity[I Index](a array.Array) (valids, nulls []I) {
	n := a.Len()
	nullCount := a.NullCount()
	valids = make([]I, 0, n-nullCount)
	nulls = make([]I, 0, nullCount)

	validity := a.Validity()
	if validity == nil && nullCount == 0 {
		for i := range n {
			valids = append(valids, I(i))
		}
		return valids, nulls
	}
	for i := range n {
		if a.IsValid(i) {
			valids = append(valids, I(i))
		} else {
			nulls = append(nulls, I(i))
		}
	}
	return valids, nulls
}

// mergePartitions concatenates the two sets in the order opts asks for and
// applies limit.
func mergePartitions[I Index](valids, nulls []I, opts SortOptions, limit int) []I {
	first, second := valids, nulls
	if opts.NullsFirst {
		first, second = nulls, valids
	}
	out := make([]I, 0, len(first)+len(second))
	out = append(out, first...)
	out = append(out, second...)
	if limit >= 0 && limit < len(out) {
		out = out[:limit:limit]
	}
	return out
}

func sortNull[I Index](a array.Array, limit int) []I {
	return mergePartitions(nil, identity[I](a.Len()), SortOptions{NullsFirst: true}, limit)
}

// sortBoolean keeps equal valid elements in index order.
func sortBoolean[I Index](a *array.Boolean, opts SortOptions, limit int) []I {
	cmp := func(i, j int) int { return boolCompare(a.Value(i), a.Value(j)) }
	return sortByComparator[I](a, cmp, opts, limit, true)
}

func sortUtf8[I Index, O array.Offset](a *array.Utf8[O], opts SortOptions, limit int) []I {
	cmp := func(i, j int) int { return bytes.Compare(a.ValueBytes(i), a.ValueBytes(j)) }
	return sortByComparator[I](a, cmp, opts, limit, false)
}

func identity[I Index](n int) []I {
	out := make([]I, n)
	for i := range out {
		out[i] = I(i)
	}
	return out
}

// FitsIndex reports whether every position of an array of length n can be
// expressed as an I.
func FitsIndex[I Index](n int) bool {
	return n >= 0 && uint64(n) <= maxIndex[I]()
}

func maxIndex[I Index]() uint64 {
	var zero I
	switch any(zero).(type) {
	case int32:
		return 1<<31 - 1
	case int64:
		return 1<<63 - 1
	case uint32:
		return 1<<32 - 1
	default:
		return 1<<64 - 1
	}
}
