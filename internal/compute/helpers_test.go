package compute

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/require"

	"github.com/paveg/columnar/internal/array"
	"github.com/paveg/columnar/internal/bitmap"
	"github.com/paveg/columnar/internal/buffer"
)

func str(v string) *string { return &v }

// utf8Of builds a string array where nil entries are null.
func utf8Of[O array.Offset](values []*string) *array.Utf8[O] {
	plain := make([]string, len(values))
	valid := make([]bool, len(values))
	for i, v := range values {
		if v != nil {
			plain[i], valid[i] = *v, true
		}
	}
	return array.Utf8From[O](plain, valid)
}

// utf8Values reads a string array back, with nil for nulls.
func utf8Values[O array.Offset](t *testing.T, a array.Array) []*string {
	t.Helper()
	s, ok := a.(*array.Utf8[O])
	require.True(t, ok, "expected a utf8 array, got %T", a)
	out := make([]*string, s.Len())
	for i := range out {
		if s.IsValid(i) {
			out[i] = str(s.Value(i))
		}
	}
	return out
}

// dictOf dictionary-encodes values with keys of type K.
func dictOf[K array.DictionaryKey](t *testing.T, keyType arrow.DataType, values []*string) *array.Dictionary[K] {
	t.Helper()
	enc, err := DictionaryEncode(utf8Of[int32](values))
	require.NoError(t, err)

	keys := enc.Keys().Values().Values()
	converted := make([]K, len(keys))
	for i, k := range keys {
		converted[i] = K(k)
	}
	return array.NewDictionary(
		array.DictionaryOf(keyType, arrow.BinaryTypes.String),
		array.NewPrimitive(keyType, buffer.New(converted), enc.Validity()),
		enc.Values(),
	)
}

// decodeDict resolves every element of a string dictionary, with nil for
// nulls.
func decodeDict[K array.DictionaryKey](t *testing.T, a array.Array) []*string {
	t.Helper()
	d, ok := a.(*array.Dictionary[K])
	require.True(t, ok, "expected a dictionary array, got %T", a)
	values := d.Values().(*array.Utf8[int32])
	out := make([]*string, d.Len())
	for i := range out {
		if d.IsValid(i) {
			out[i] = str(values.Value(d.Key(i)))
		}
	}
	return out
}

// primitives reads a primitive array back, with nil for nulls.
func primitives[T array.Native](t *testing.T, a array.Array) []*T {
	t.Helper()
	p, ok := a.(*array.Primitive[T])
	require.True(t, ok, "expected a primitive array, got %T", a)
	out := make([]*T, p.Len())
	for i := range out {
		if p.IsValid(i) {
			v := p.Value(i)
			out[i] = &v
		}
	}
	return out
}

func ptr[T any](v T) *T { return &v }

// primitiveOf builds a primitive array where nil entries are null.
func primitiveOf[T array.Native](dt arrow.DataType, values []*T) *array.Primitive[T] {
	plain := make([]T, len(values))
	valid := make([]bool, len(values))
	for i, v := range values {
		if v != nil {
			plain[i], valid[i] = *v, true
		}
	}
	return array.PrimitiveFrom(dt, plain, valid)
}

// listOf builds a List (int32 offsets) or LargeList (int64 offsets) array of
// int32 children from nested optional values.
func listOf[O array.Offset](data [][]*int32, valid []bool) *array.List[O] {
	offsets := []O{0}
	var children []*int32
	for _, elem := range data {
		children = append(children, elem...)
		offsets = append(offsets, O(len(children)))
	}
	child := primitiveOf(arrow.PrimitiveTypes.Int32, children)
	var validity *bitmap.Bitmap
	if valid != nil {
		validity = bitmap.FromBools(valid)
	}
	return array.NewList(array.ListOf[O](arrow.PrimitiveTypes.Int32), buffer.New(offsets), child, validity)
}

// lists reads a list array of int32 children back; null lists are nil.
func lists(t *testing.T, a array.Array) [][]*int32 {
	t.Helper()
	var (
		n     = a.Len()
		value func(i int) array.Array
	)
	switch l := a.(type) {
	case *array.List[int32]:
		value = l.Value
	case *array.List[int64]:
		value = l.Value
	case *array.FixedSizeList:
		value = l.Value
	default:
		require.Failf(t, "unexpected array", "expected a list array, got %T", a)
	}
	out := make([][]*int32, n)
	for i := range out {
		if a.IsValid(i) {
			out[i] = primitives[int32](t, value(i))
		}
	}
	return out
}
