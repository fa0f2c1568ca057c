package growable

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/paveg/columnar/internal/array"
	"github.com/paveg/columnar/internal/buffer"
)

// List is the Growable for List and LargeList arrays. Child ranges are
// copied through a nested Growable over the source children.
type List[O array.Offset] struct {
	validityBuilder
	dataType arrow.DataType
	arrays   []*array.List[O]
	offsets  *buffer.MutableBuffer[O]
	values   Growable
}

func newList[O array.Offset](arrays []*array.List[O], useValidity bool, capacity int) (*List[O], error) {
	children := make([]array.Array, len(arrays))
	for i, a := range arrays {
		children[i] = a.Values()
	}
	values, err := New(children, false, capacity)
	if err != nil {
		return nil, err
	}

	offsets := buffer.WithCapacity[O](capacity + 1)
	offsets.Push(0)
	return &List[O]{
		validityBuilder: newValidityBuilder(arrays, useValidity, capacity),
		dataType:        arrays[0].DataType(),
		arrays:          arrays,
		offsets:         offsets,
		values:          values,
	}, nil
}

func (g *List[O]) Extend(index, start, length int) {
	g.validityBuilder.extend(index, start, length)

	offsets := g.arrays[index].Offsets().Values()[start : start+length+1]
	childStart := int(offsets[0])
	g.values.Extend(index, childStart, int(offsets[length])-childStart)
	extendOffsets(g.offsets, offsets)
}

func (g *List[O]) ExtendValidity(additional int) {
	g.offsets.ExtendConstant(additional, *g.offsets.Last())
	g.validityBuilder.extendNulls(additional)
}

func (g *List[O]) Len() int { return g.offsets.Len() - 1 }

func (g *List[O]) Finish() array.Array {
	validity := g.validityBuilder.finish()
	out := array.NewList(g.dataType, g.offsets.Freeze(), g.values.Finish(), validity)

	g.offsets.Push(0)
	return out
}
