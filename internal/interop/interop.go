// Package interop converts arrays between this module's layout and the
// arrow-go in-memory format.
//
// ToArrow wraps the existing buffers without copying values; validity and
// boolean bitmaps are re-packed only when they start at a bit offset that is
// not byte aligned. FromArrow copies everything it reads so the result stays
// usable after the source array is released.
package interop

import (
	"slices"

	"github.com/apache/arrow-go/v18/arrow"
	arrowarray "github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/paveg/columnar/internal/array"
	"github.com/paveg/columnar/internal/bitmap"
	"github.com/paveg/columnar/internal/buffer"
	"github.com/paveg/columnar/internal/errors"
)

// ToArrow converts a to an arrow-go array. The caller owns the result and
// must Release it.
func ToArrow(a array.Array) (arrow.Array, error) {
	data, err := toData(a)
	if err != nil {
		return nil, err
	}
	defer data.Release()
	return arrowarray.MakeFromData(data), nil
}

// FromArrow converts an arrow-go array, honoring its offset. Types without a
// layout in this module return a not-yet-implemented error.
func FromArrow(arr arrow.Array) (array.Array, error) {
	out, err := fromData(arr.Data())
	if err != nil {
		return nil, err
	}
	if err := array.Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

func toData(a array.Array) (*arrowarray.Data, error) {
	dt := a.DataType()
	switch dt.ID() {
	case arrow.NULL:
		return arrowarray.NewData(dt, a.Len(), []*memory.Buffer{nil}, nil, a.Len(), 0), nil
	case arrow.BOOL:
		b := a.(*array.Boolean)
		buffers := []*memory.Buffer{bitmapBuffer(b.Validity()), bitmapBuffer(b.Values())}
		return arrowarray.NewData(dt, b.Len(), buffers, nil, b.NullCount(), 0), nil
	case arrow.INT8:
		return primitiveData[int8](a)
	case arrow.INT16:
		return primitiveData[int16](a)
	case arrow.INT32, arrow.DATE32, arrow.TIME32, arrow.INTERVAL_MONTHS:
		return primitiveData[int32](a)
	case arrow.INT64, arrow.DATE64, arrow.TIME64, arrow.TIMESTAMP, arrow.DURATION:
		return primitiveData[int64](a)
	case arrow.UINT8:
		return primitiveData[uint8](a)
	case arrow.UINT16:
		return primitiveData[uint16](a)
	case arrow.UINT32:
		return primitiveData[uint32](a)
	case arrow.UINT64:
		return primitiveData[uint64](a)
	case arrow.FLOAT32:
		return primitiveData[float32](a)
	case arrow.FLOAT64:
		return primitiveData[float64](a)
	case arrow.INTERVAL_DAY_TIME:
		return primitiveData[arrow.DayTimeInterval](a)
	case arrow.INTERVAL_MONTH_DAY_NANO:
		return primitiveData[arrow.MonthDayNanoInterval](a)
	case arrow.STRING:
		return utf8Data[int32](a)
	case arrow.LARGE_STRING:
		return utf8Data[int64](a)
	case arrow.LIST:
		return listData[int32](a)
	case arrow.LARGE_LIST:
		return listData[int64](a)
	case arrow.FIXED_SIZE_LIST:
		return fixedSizeListData(a)
	case arrow.DICTIONARY:
		return dictionaryToData(a)
	default:
		return nil, errors.NewNotYetImplementedError("ToArrow", dt)
	}
}

// asLayout asserts the concrete layout of a. Types without a layout are
// carried by *array.Null and fail here.
func asLayout[L array.Array](a array.Array) (L, error) {
	l, ok := a.(L)
	if !ok {
		return l, errors.NewNotYetImplementedError("ToArrow", a.DataType())
	}
	return l, nil
}

func primitiveData[T array.Native](a array.Array) (*arrowarray.Data, error) {
	p, err := asLayout[*array.Primitive[T]](a)
	if err != nil {
		return nil, err
	}
	buffers := []*memory.Buffer{bitmapBuffer(p.Validity()), memory.NewBufferBytes(p.Values().Bytes())}
	return arrowarray.NewData(p.DataType(), p.Len(), buffers, nil, p.NullCount(), 0), nil
}

func utf8Data[O array.Offset](a array.Array) (*arrowarray.Data, error) {
	s, err := asLayout[*array.Utf8[O]](a)
	if err != nil {
		return nil, err
	}
	buffers := []*memory.Buffer{
		bitmapBuffer(s.Validity()),
		memory.NewBufferBytes(s.Offsets().Bytes()),
		memory.NewBufferBytes(s.Values()),
	}
	return arrowarray.NewData(s.DataType(), s.Len(), buffers, nil, s.NullCount(), 0), nil
}

func listData[O array.Offset](a array.Array) (*arrowarray.Data, error) {
	l, err := asLayout[*array.List[O]](a)
	if err != nil {
		return nil, err
	}
	child, err := toData(l.Values())
	if err != nil {
		return nil, err
	}
	defer child.Release()

	buffers := []*memory.Buffer{bitmapBuffer(l.Validity()), memory.NewBufferBytes(l.Offsets().Bytes())}
	return arrowarray.NewData(l.DataType(), l.Len(), buffers, []arrow.ArrayData{child}, l.NullCount(), 0), nil
}

func fixedSizeListData(a array.Array) (*arrowarray.Data, error) {
	l, err := asLayout[*array.FixedSizeList](a)
	if err != nil {
		return nil, err
	}
	child, err := toData(l.Values())
	if err != nil {
		return nil, err
	}
	defer child.Release()

	buffers := []*memory.Buffer{bitmapBuffer(l.Validity())}
	return arrowarray.NewData(l.DataType(), l.Len(), buffers, []arrow.ArrayData{child}, l.NullCount(), 0), nil
}

func dictionaryToData(a array.Array) (*arrowarray.Data, error) {
	switch d := a.(type) {
	case *array.Dictionary[int8]:
		return dictionaryData(d)
	case *array.Dictionary[int16]:
		return dictionaryData(d)
	case *array.Dictionary[int32]:
		return dictionaryData(d)
	case *array.Dictionary[int64]:
		return dictionaryData(d)
	case *array.Dictionary[uint8]:
		return dictionaryData(d)
	case *array.Dictionary[uint16]:
		return dictionaryData(d)
	case *array.Dictionary[uint32]:
		return dictionaryData(d)
	case *array.Dictionary[uint64]:
		return dictionaryData(d)
	default:
		return nil, errors.NewNotYetImplementedError("ToArrow", a.DataType())
	}
}

func dictionaryData[K array.DictionaryKey](d *array.Dictionary[K]) (*arrowarray.Data, error) {
	values, err := toData(d.Values())
	if err != nil {
		return nil, err
	}
	defer values.Release()

	keys := d.Keys()
	buffers := []*memory.Buffer{bitmapBuffer(keys.Validity()), memory.NewBufferBytes(keys.Values().Bytes())}
	return arrowarray.NewDataWithDictionary(d.DataType(), d.Len(), buffers, d.NullCount(), 0, values), nil
}

// bitmapBuffer exposes bm as an arrow bitmap starting at bit zero. A nil
// bitmap stays nil.
func bitmapBuffer(bm *bitmap.Bitmap) *memory.Buffer {
	if bm == nil {
		return nil
	}
	if bm.Offset()%8 == 0 {
		start := bm.Offset() / 8
		return memory.NewBufferBytes(bm.Bytes()[start : start+bitmap.BytesFor(bm.Len())])
	}
	packed := bitmap.NewMutableBitmapWithCapacity(bm.Len())
	packed.ExtendFromBitmap(bm)
	return memory.NewBufferBytes(packed.Freeze().Bytes())
}

func fromData(data arrow.ArrayData) (array.Array, error) {
	dt := data.DataType()
	switch dt.ID() {
	case arrow.NULL:
		return array.NewNullArray(dt, data.Len()), nil
	case arrow.BOOL:
		values := readBitmap(data.Buffers()[1], data.Offset(), data.Len())
		return array.NewBoolean(dt, values, readValidity(data)), nil
	case arrow.INT8:
		return readPrimitive[int8](dt, data), nil
	case arrow.INT16:
		return readPrimitive[int16](dt, data), nil
	case arrow.INT32, arrow.DATE32, arrow.TIME32, arrow.INTERVAL_MONTHS:
		return readPrimitive[int32](dt, data), nil
	case arrow.INT64, arrow.DATE64, arrow.TIME64, arrow.TIMESTAMP, arrow.DURATION:
		return readPrimitive[int64](dt, data), nil
	case arrow.UINT8:
		return readPrimitive[uint8](dt, data), nil
	case arrow.UINT16:
		return readPrimitive[uint16](dt, data), nil
	case arrow.UINT32:
		return readPrimitive[uint32](dt, data), nil
	case arrow.UINT64:
		return readPrimitive[uint64](dt, data), nil
	case arrow.FLOAT32:
		return readPrimitive[float32](dt, data), nil
	case arrow.FLOAT64:
		return readPrimitive[float64](dt, data), nil
	case arrow.INTERVAL_DAY_TIME:
		return readPrimitive[arrow.DayTimeInterval](dt, data), nil
	case arrow.INTERVAL_MONTH_DAY_NANO:
		return readPrimitive[arrow.MonthDayNanoInterval](dt, data), nil
	case arrow.STRING:
		return readUtf8[int32](data), nil
	case arrow.LARGE_STRING:
		return readUtf8[int64](data), nil
	case arrow.LIST:
		return readList[int32](data)
	case arrow.LARGE_LIST:
		return readList[int64](data)
	case arrow.FIXED_SIZE_LIST:
		return readFixedSizeList(data)
	case arrow.DICTIONARY:
		return readDictionary(data)
	default:
		return nil, errors.NewNotYetImplementedError("FromArrow", dt)
	}
}

// readValues copies length values starting at offset out of buf. A missing
// buffer reads as zeros.
func readValues[T array.Native](buf *memory.Buffer, offset, length int) []T {
	if buf == nil || buf.Len() == 0 {
		return make([]T, length)
	}
	return slices.Clone(arrow.GetData[T](buf.Bytes())[offset : offset+length])
}

func readBitmap(buf *memory.Buffer, offset, length int) *bitmap.Bitmap {
	if buf == nil || buf.Len() == 0 {
		return bitmap.NewBitmapZeroed(length)
	}
	bits := bitmap.NewMutableBitmapWithCapacity(length)
	bits.ExtendFromSlice(buf.Bytes(), offset, length)
	return bits.Freeze()
}

func readValidity(data arrow.ArrayData) *bitmap.Bitmap {
	buffers := data.Buffers()
	if data.NullN() == 0 || len(buffers) == 0 || buffers[0] == nil {
		return nil
	}
	return readBitmap(buffers[0], data.Offset(), data.Len())
}

func readPrimitive[T array.Native](dt arrow.DataType, data arrow.ArrayData) *array.Primitive[T] {
	values := readValues[T](data.Buffers()[1], data.Offset(), data.Len())
	return array.NewPrimitive(dt, buffer.New(values), readValidity(data))
}

// readOffsets copies the length+1 offsets of data rebased to start at zero,
// and returns the original first and last offsets.
func readOffsets[O array.Offset](data arrow.ArrayData) (offsets []O, start, end int) {
	offsets = readValues[O](data.Buffers()[1], data.Offset(), data.Len()+1)
	start, end = int(offsets[0]), int(offsets[len(offsets)-1])
	for i := range offsets {
		offsets[i] -= O(start)
	}
	return offsets, start, end
}

func readUtf8[O array.Offset](data arrow.ArrayData) *array.Utf8[O] {
	offsets, start, end := readOffsets[O](data)
	var values []byte
	if buf := data.Buffers()[2]; buf != nil && end > start {
		values = slices.Clone(buf.Bytes()[start:end])
	}
	return array.NewUtf8(data.DataType(), buffer.New(offsets), values, readValidity(data))
}

func readList[O array.Offset](data arrow.ArrayData) (array.Array, error) {
	offsets, start, end := readOffsets[O](data)
	child, err := readChild(data.Children()[0], start, end)
	if err != nil {
		return nil, err
	}
	return array.NewList(data.DataType(), buffer.New(offsets), child, readValidity(data)), nil
}

func readFixedSizeList(data arrow.ArrayData) (array.Array, error) {
	size := int(data.DataType().(*arrow.FixedSizeListType).Len())
	start := data.Offset() * size
	child, err := readChild(data.Children()[0], start, start+data.Len()*size)
	if err != nil {
		return nil, err
	}
	return array.NewFixedSizeList(data.DataType(), child, readValidity(data)), nil
}

// readChild converts child elements [start, end).
func readChild(child arrow.ArrayData, start, end int) (array.Array, error) {
	sliced := arrowarray.NewSliceData(child, int64(start), int64(end))
	defer sliced.Release()
	return fromData(sliced)
}

func readDictionary(data arrow.ArrayData) (array.Array, error) {
	dt := data.DataType().(*arrow.DictionaryType)
	dict, ok := data.Dictionary().(*arrowarray.Data)
	if !ok || dict == nil {
		return nil, errors.NewInvalidInputError("FromArrow", "dictionary array has no dictionary")
	}
	values, err := fromData(dict)
	if err != nil {
		return nil, err
	}

	switch dt.IndexType.ID() {
	case arrow.INT8:
		return readDictionaryKeys[int8](dt, data, values), nil
	case arrow.INT16:
		return readDictionaryKeys[int16](dt, data, values), nil
	case arrow.INT32:
		return readDictionaryKeys[int32](dt, data, values), nil
	case arrow.INT64:
		return readDictionaryKeys[int64](dt, data, values), nil
	case arrow.UINT8:
		return readDictionaryKeys[uint8](dt, data, values), nil
	case arrow.UINT16:
		return readDictionaryKeys[uint16](dt, data, values), nil
	case arrow.UINT32:
		return readDictionaryKeys[uint32](dt, data, values), nil
	case arrow.UINT64:
		return readDictionaryKeys[uint64](dt, data, values), nil
	default:
		return nil, errors.NewNotYetImplementedError("FromArrow", dt)
	}
}

func readDictionaryKeys[K array.DictionaryKey](dt *arrow.DictionaryType, data arrow.ArrayData, values array.Array) array.Array {
	keys := readPrimitive[K](dt.IndexType, data)
	return array.NewDictionary(dt, keys, values)
}
