package growable

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/paveg/columnar/internal/array"
)

// Null is the Growable for Null arrays. It only counts elements.
type Null struct {
	dataType arrow.DataType
	length   int
}

func newNull(dt arrow.DataType) *Null {
	return &Null{dataType: dt}
}

func (g *Null) Extend(_, _, length int)       { g.length += length }
func (g *Null) ExtendValidity(additional int) { g.length += additional }
func (g *Null) Len() int                      { return g.length }

func (g *Null) Finish() array.Array {
	out := array.NewNullArray(g.dataType, g.length)
	g.length = 0
	return out
}
