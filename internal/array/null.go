package array

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/paveg/columnar/internal/bitmap"
)

// Null is an array whose every element is null. It stores no buffers.
type Null struct {
	dataType arrow.DataType
	length   int
}

// NewNullArray returns a Null array of length elements. dt is usually
// arrow.Null.
func NewNullArray(dt arrow.DataType, length int) *Null {
	return &Null{dataType: dt, length: length}
}

func (a *Null) DataType() arrow.DataType { return a.dataType }
func (a *Null) Len() int                 { return a.length }

// Validity returns nil; a Null array reports its nullness through NullCount
// and IsNull instead of an allocated bitmap.
func (a *Null) Validity() *bitmap.Bitmap { return nil }
func (a *Null) NullCount() int           { return a.length }
func (a *Null) IsNull(int) bool          { return true }
func (a *Null) IsValid(int) bool         { return false }

func (a *Null) Slice(offset, length int) Array {
	checkSlice(offset, length, a.length)
	return &Null{dataType: a.dataType, length: length}
}
