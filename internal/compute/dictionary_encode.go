package compute

import (
	"bytes"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/cespare/xxhash/v2"

	"github.com/paveg/columnar/internal/array"
	"github.com/paveg/columnar/internal/buffer"
	"github.com/paveg/columnar/internal/errors"
)

// DictionaryEncode encodes a string array as a dictionary with int32 keys.
// Dictionary values appear in order of first occurrence; nulls become null
// keys and are not added to the dictionary.
func DictionaryEncode(a array.Array) (*array.Dictionary[int32], error) {
	switch s := a.(type) {
	case *array.Utf8[int32]:
		return dictionaryEncode(s)
	case *array.Utf8[int64]:
		return dictionaryEncode(s)
	default:
		return nil, errors.NewNotYetImplementedError("dictionary encode", a.DataType())
	}
}

func dictionaryEncode[O array.Offset](a *array.Utf8[O]) (*array.Dictionary[int32], error) {
	n := a.Len()
	keys := buffer.WithCapacity[int32](n)
	offsets := buffer.WithCapacity[O](n + 1)
	offsets.Push(0)
	var data []byte

	// buckets maps a value hash to the dictionary positions sharing it
	buckets := make(map[uint64][]int32)
	lookup := func(v []byte, h uint64) (int32, bool) {
		for _, k := range buckets[h] {
			start, end := offsets.Get(int(k)), offsets.Get(int(k)+1)
			if bytes.Equal(data[start:end], v) {
				return k, true
			}
		}
		return 0, false
	}

	for i := range n {
		if a.IsNull(i) {
			keys.Push(0)
			continue
		}
		v := a.ValueBytes(i)
		h := xxhash.Sum64(v)
		k, ok := lookup(v, h)
		if !ok {
			if offsets.Len()-1 >= math.MaxInt32 {
				return nil, errors.NewInvalidInputError("dictionary encode", "too many distinct values for int32 keys")
			}
			k = int32(offsets.Len() - 1)
			data = append(data, v...)
			offsets.Push(O(len(data)))
			buckets[h] = append(buckets[h], k)
		}
		keys.Push(k)
	}

	values := array.NewUtf8(a.DataType(), offsets.Freeze(), data, nil)
	dt := array.DictionaryOf(arrow.PrimitiveTypes.Int32, a.DataType())
	return array.NewDictionary(dt, array.NewPrimitive(arrow.PrimitiveTypes.Int32, keys.Freeze(), a.Validity()), values), nil
}
