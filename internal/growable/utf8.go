package growable

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/paveg/columnar/internal/array"
	"github.com/paveg/columnar/internal/buffer"
)

// Utf8 is the Growable for Utf8 and LargeUtf8 arrays.
type Utf8[O array.Offset] struct {
	validityBuilder
	dataType arrow.DataType
	arrays   []*array.Utf8[O]
	offsets  *buffer.MutableBuffer[O]
	values   []byte
}

func newUtf8[O array.Offset](arrays []*array.Utf8[O], useValidity bool, capacity int) *Utf8[O] {
	offsets := buffer.WithCapacity[O](capacity + 1)
	offsets.Push(0)
	return &Utf8[O]{
		validityBuilder: newValidityBuilder(arrays, useValidity, capacity),
		dataType:        arrays[0].DataType(),
		arrays:          arrays,
		offsets:         offsets,
	}
}

func (g *Utf8[O]) Extend(index, start, length int) {
	g.validityBuilder.extend(index, start, length)

	src := g.arrays[index]
	offsets := src.Offsets().Values()[start : start+length+1]
	g.values = append(g.values, src.Values()[offsets[0]:offsets[length]]...)
	extendOffsets(g.offsets, offsets)
}

func (g *Utf8[O]) ExtendValidity(additional int) {
	g.offsets.ExtendConstant(additional, *g.offsets.Last())
	g.validityBuilder.extendNulls(additional)
}

func (g *Utf8[O]) Len() int { return g.offsets.Len() - 1 }

func (g *Utf8[O]) Finish() array.Array {
	validity := g.validityBuilder.finish()
	out := array.NewUtf8(g.dataType, g.offsets.Freeze(), g.values, validity)

	g.values = nil
	g.offsets.Push(0)
	return out
}

// extendOffsets appends src[1:] to dst, rebased so that src[0] maps onto the
// last offset already in dst.
func extendOffsets[O array.Offset](dst *buffer.MutableBuffer[O], src []O) {
	last := *dst.Last()
	base := src[0]
	dst.Reserve(len(src) - 1)
	for _, o := range src[1:] {
		dst.PushUnchecked(last + o - base)
	}
}
