package growable

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/paveg/columnar/internal/array"
	"github.com/paveg/columnar/internal/bitmap"
)

// Boolean is the Growable for Boolean arrays.
type Boolean struct {
	validityBuilder
	dataType arrow.DataType
	arrays   []*bitmap.Bitmap
	values   *bitmap.MutableBitmap
}

func newBoolean(arrays []*array.Boolean, useValidity bool, capacity int) *Boolean {
	values := make([]*bitmap.Bitmap, len(arrays))
	for i, a := range arrays {
		values[i] = a.Values()
	}
	return &Boolean{
		validityBuilder: newValidityBuilder(arrays, useValidity, capacity),
		dataType:        arrays[0].DataType(),
		arrays:          values,
		values:          bitmap.NewMutableBitmapWithCapacity(capacity),
	}
}

func (g *Boolean) Extend(index, start, length int) {
	g.validityBuilder.extend(index, start, length)
	src := g.arrays[index]
	if start < 0 || start+length > src.Len() {
		panic("growable: boolean range out of bounds")
	}
	g.values.ExtendFromSlice(src.Bytes(), src.Offset()+start, length)
}

func (g *Boolean) ExtendValidity(additional int) {
	g.values.ExtendConstant(additional, false)
	g.validityBuilder.extendNulls(additional)
}

func (g *Boolean) Len() int { return g.values.Len() }

func (g *Boolean) Finish() array.Array {
	validity := g.validityBuilder.finish()
	return array.NewBoolean(g.dataType, g.values.Freeze(), validity)
}
