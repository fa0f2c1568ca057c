package growable

import (
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/paveg/columnar/internal/array"
	"github.com/paveg/columnar/internal/buffer"
	"github.com/paveg/columnar/internal/errors"
)

// Dictionary is the Growable for Dictionary arrays. The output dictionary is
// the concatenation of every source dictionary, and keys copied from source i
// are shifted by the number of values preceding source i's dictionary.
type Dictionary[K array.DictionaryKey] struct {
	validityBuilder
	dataType   arrow.DataType
	keys       [][]K
	keyOffsets []K
	values     array.Array
	out        *buffer.MutableBuffer[K]
}

func newDictionary[K array.DictionaryKey](arrays []*array.Dictionary[K], useValidity bool, capacity int) (*Dictionary[K], error) {
	dicts := make([]array.Array, len(arrays))
	keys := make([][]K, len(arrays))
	keyOffsets := make([]K, len(arrays))

	total := 0
	for i, a := range arrays {
		dicts[i] = a.Values()
		keys[i] = a.Keys().Values().Values()
		keyOffsets[i] = K(total)
		total += a.Values().Len()
	}
	if total > 0 && uint64(total-1) > maxKey[K]() {
		return nil, errors.NewInvalidInputError("growable",
			fmt.Sprintf("combined dictionary of %d values overflows %s keys", total, arrays[0].Keys().DataType()))
	}

	values, err := New(dicts, false, total)
	if err != nil {
		return nil, err
	}
	for i, d := range dicts {
		values.Extend(i, 0, d.Len())
	}

	return &Dictionary[K]{
		validityBuilder: newValidityBuilder(arrays, useValidity, capacity),
		dataType:        arrays[0].DataType(),
		keys:            keys,
		keyOffsets:      keyOffsets,
		values:          values.Finish(),
		out:             buffer.WithCapacity[K](capacity),
	}, nil
}

func (g *Dictionary[K]) Extend(index, start, length int) {
	validity := g.validities[index]
	g.validityBuilder.extend(index, start, length)

	shift := g.keyOffsets[index]
	g.out.Reserve(length)
	for i, k := range g.keys[index][start : start+length] {
		if validity != nil && !validity.Get(start+i) {
			// null keys may hold garbage that must not be shifted out of range
			g.out.PushUnchecked(0)
			continue
		}
		g.out.PushUnchecked(k + shift)
	}
}

func (g *Dictionary[K]) ExtendValidity(additional int) {
	g.out.ExtendConstant(additional, 0)
	g.validityBuilder.extendNulls(additional)
}

func (g *Dictionary[K]) Len() int { return g.out.Len() }

func (g *Dictionary[K]) Finish() array.Array {
	dt := g.dataType.(*arrow.DictionaryType)
	validity := g.validityBuilder.finish()
	keys := array.NewPrimitive(dt.IndexType, g.out.Freeze(), validity)
	return array.NewDictionary(dt, keys, g.values)
}

func maxKey[K array.DictionaryKey]() uint64 {
	var zero K
	switch any(zero).(type) {
	case int8:
		return math.MaxInt8
	case int16:
		return math.MaxInt16
	case int32:
		return math.MaxInt32
	case int64:
		return math.MaxInt64
	case uint8:
		return math.MaxUint8
	case uint16:
		return math.MaxUint16
	case uint32:
		return math.MaxUint32
	default:
		return math.MaxUint64
	}
}
