package growable

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/paveg/columnar/internal/array"
)

// FixedSizeList is the Growable for FixedSizeList arrays.
type FixedSizeList struct {
	validityBuilder
	dataType arrow.DataType
	size     int
	values   Growable
}

func newFixedSizeList(arrays []*array.FixedSizeList, useValidity bool, capacity int) (*FixedSizeList, error) {
	children := make([]array.Array, len(arrays))
	for i, a := range arrays {
		children[i] = a.Values()
	}
	size := arrays[0].Size()
	values, err := New(children, false, capacity*size)
	if err != nil {
		return nil, err
	}
	return &FixedSizeList{
		validityBuilder: newValidityBuilder(arrays, useValidity, capacity),
		dataType:        arrays[0].DataType(),
		size:            size,
		values:          values,
	}, nil
}

func (g *FixedSizeList) Extend(index, start, length int) {
	g.validityBuilder.extend(index, start, length)
	g.values.Extend(index, start*g.size, length*g.size)
}

func (g *FixedSizeList) ExtendValidity(additional int) {
	g.values.ExtendValidity(additional * g.size)
	g.validityBuilder.extendNulls(additional)
}

func (g *FixedSizeList) Len() int { return g.values.Len() / g.size }

func (g *FixedSizeList) Finish() array.Array {
	validity := g.validityBuilder.finish()
	return array.NewFixedSizeList(g.dataType, g.values.Finish(), validity)
}
