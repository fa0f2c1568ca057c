package compute

import (
	"fmt"

	"github.com/paveg/columnar/internal/array"
	"github.com/paveg/columnar/internal/growable"
)

// Take gathers the elements of a at the given indices. A null index produces
// a null output element. Take panics if a valid index is out of range.
func Take[I Index](a array.Array, indices *array.Primitive[I]) (array.Array, error) {
	n := indices.Len()
	g, err := growable.New([]array.Array{a}, indices.NullCount() > 0, n)
	if err != nil {
		return nil, err
	}

	idx := indices.Values().Values()
	length := a.Len()
	for i := 0; i < n; {
		if indices.IsNull(i) {
			g.ExtendValidity(1)
			i++
			continue
		}
		if v := idx[i]; v < 0 || uint64(v) >= uint64(length) {
			panic(fmt.Sprintf("compute: take index %d out of range for length %d", v, length))
		}
		start := int(idx[i])
		// coalesce runs of consecutive indices into one range copy
		run := 1
		for i+run < n && indices.IsValid(i+run) && int(idx[i+run]) == start+run && start+run < length {
			run++
		}
		g.Extend(0, start, run)
		i += run
	}
	return g.Finish(), nil
}
