package growable

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/paveg/columnar/internal/array"
	"github.com/paveg/columnar/internal/buffer"
)

// Primitive is the Growable for Primitive arrays.
type Primitive[T array.Native] struct {
	validityBuilder
	dataType arrow.DataType
	arrays   [][]T
	values   *buffer.MutableBuffer[T]
}

func newPrimitive[T array.Native](arrays []*array.Primitive[T], useValidity bool, capacity int) *Primitive[T] {
	values := make([][]T, len(arrays))
	for i, a := range arrays {
		values[i] = a.Values().Values()
	}
	return &Primitive[T]{
		validityBuilder: newValidityBuilder(arrays, useValidity, capacity),
		dataType:        arrays[0].DataType(),
		arrays:          values,
		values:          buffer.WithCapacity[T](capacity),
	}
}

func (g *Primitive[T]) Extend(index, start, length int) {
	g.validityBuilder.extend(index, start, length)
	g.values.ExtendFromSlice(g.arrays[index][start : start+length])
}

func (g *Primitive[T]) ExtendValidity(additional int) {
	var zero T
	g.values.ExtendConstant(additional, zero)
	g.validityBuilder.extendNulls(additional)
}

func (g *Primitive[T]) Len() int { return g.values.Len() }

func (g *Primitive[T]) Finish() array.Array {
	return g.finish()
}

func (g *Primitive[T]) finish() *array.Primitive[T] {
	validity := g.validityBuilder.finish()
	return array.NewPrimitive(g.dataType, g.values.Freeze(), validity)
}
