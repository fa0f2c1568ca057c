package array

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"golang.org/x/exp/constraints"

	"github.com/paveg/columnar/internal/bitmap"
)

// DictionaryKey is the set of integer key types of a Dictionary array.
type DictionaryKey interface {
	constraints.Integer
	Native
}

// Dictionary is a dictionary-encoded array: element i is values[keys[i]].
// The validity of the array is the validity of its keys.
type Dictionary[K DictionaryKey] struct {
	dataType arrow.DataType
	keys     *Primitive[K]
	values   Array
}

// NewDictionary creates a Dictionary array. It panics if the key or value
// types disagree with dt. Key bounds are checked by Validate.
func NewDictionary[K DictionaryKey](dt arrow.DataType, keys *Primitive[K], values Array) *Dictionary[K] {
	dict, ok := dt.(*arrow.DictionaryType)
	if !ok {
		panic(fmt.Sprintf("array: dictionary array requires a dictionary type, got %s", dt))
	}
	if !arrow.TypeEqual(dict.IndexType, keys.DataType()) || !arrow.TypeEqual(dict.ValueType, values.DataType()) {
		panic(fmt.Sprintf("array: %s cannot hold keys %s and values %s", dt, keys.DataType(), values.DataType()))
	}
	return &Dictionary[K]{dataType: dt, keys: keys, values: values}
}

// DictionaryOf returns the dictionary type with keys of type index over values.
func DictionaryOf(index, values arrow.DataType) *arrow.DictionaryType {
	return &arrow.DictionaryType{IndexType: index, ValueType: values}
}

func (a *Dictionary[K]) DataType() arrow.DataType { return a.dataType }
func (a *Dictionary[K]) Len() int                 { return a.keys.Len() }
func (a *Dictionary[K]) Validity() *bitmap.Bitmap { return a.keys.Validity() }
func (a *Dictionary[K]) NullCount() int           { return a.keys.NullCount() }
func (a *Dictionary[K]) IsNull(i int) bool        { return a.keys.IsNull(i) }
func (a *Dictionary[K]) IsValid(i int) bool       { return a.keys.IsValid(i) }

// Keys returns the key array.
func (a *Dictionary[K]) Keys() *Primitive[K] { return a.keys }

// Values returns the dictionary values.
func (a *Dictionary[K]) Values() Array { return a.values }

// Key returns the dictionary position of element i, ignoring validity.
func (a *Dictionary[K]) Key(i int) int { return int(a.keys.Value(i)) }

func (a *Dictionary[K]) Slice(offset, length int) Array {
	return &Dictionary[K]{
		dataType: a.dataType,
		keys:     a.keys.SlicePrimitive(offset, length),
		values:   a.values,
	}
}
