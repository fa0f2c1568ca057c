package compute

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/paveg/columnar/internal/array"
	"github.com/paveg/columnar/internal/errors"
	"github.com/paveg/columnar/internal/growable"
)

// Concat appends arrays of one logical type into a single new array.
func Concat(arrays ...array.Array) (array.Array, error) {
	if len(arrays) == 0 {
		return nil, errors.NewInvalidInputError("concat", "at least one array is required")
	}
	dt := arrays[0].DataType()
	total := 0
	for _, a := range arrays {
		if !arrow.TypeEqual(dt, a.DataType()) {
			return nil, errors.NewTypeMismatchError("concat", dt, a.DataType())
		}
		total += a.Len()
	}

	g, err := growable.New(arrays, false, total)
	if err != nil {
		return nil, err
	}
	for i, a := range arrays {
		g.Extend(i, 0, a.Len())
	}
	return g.Finish(), nil
}
