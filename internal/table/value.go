package table

import (
	"strconv"
	"time"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/paveg/columnar/internal/array"
	"github.com/paveg/columnar/internal/errors"
)

// dictionaryArray is implemented by every Dictionary key width.
type dictionaryArray interface {
	array.Array
	Key(i int) int
	Values() array.Array
}

// ValueAt returns element i of a as a plain Go value, or nil when it is null.
// Temporal values are rendered as text.
func ValueAt(a array.Array, i int) (any, error) {
	if a.IsNull(i) {
		return nil, nil
	}
	switch dt := a.DataType(); dt.ID() {
	case arrow.BOOL:
		return a.(*array.Boolean).Value(i), nil
	case arrow.INT8:
		return int64(a.(*array.Primitive[int8]).Value(i)), nil
	case arrow.INT16:
		return int64(a.(*array.Primitive[int16]).Value(i)), nil
	case arrow.INT32:
		return int64(a.(*array.Primitive[int32]).Value(i)), nil
	case arrow.INT64:
		return a.(*array.Primitive[int64]).Value(i), nil
	case arrow.UINT8:
		return uint64(a.(*array.Primitive[uint8]).Value(i)), nil
	case arrow.UINT16:
		return uint64(a.(*array.Primitive[uint16]).Value(i)), nil
	case arrow.UINT32:
		return uint64(a.(*array.Primitive[uint32]).Value(i)), nil
	case arrow.UINT64:
		return a.(*array.Primitive[uint64]).Value(i), nil
	case arrow.FLOAT32:
		return a.(*array.Primitive[float32]).Value(i), nil
	case arrow.FLOAT64:
		return a.(*array.Primitive[float64]).Value(i), nil
	case arrow.DATE32:
		return arrow.Date32(a.(*array.Primitive[int32]).Value(i)).FormattedString(), nil
	case arrow.DATE64:
		return arrow.Date64(a.(*array.Primitive[int64]).Value(i)).FormattedString(), nil
	case arrow.TIMESTAMP:
		unit := dt.(*arrow.TimestampType).Unit
		ts := arrow.Timestamp(a.(*array.Primitive[int64]).Value(i))
		return ts.ToTime(unit).Format(time.RFC3339Nano), nil
	case arrow.STRING:
		return a.(*array.Utf8[int32]).Value(i), nil
	case arrow.LARGE_STRING:
		return a.(*array.Utf8[int64]).Value(i), nil
	case arrow.DICTIONARY:
		d, ok := a.(dictionaryArray)
		if !ok {
			return nil, errors.NewNotYetImplementedError("format", dt)
		}
		return ValueAt(d.Values(), d.Key(i))
	default:
		return nil, errors.NewNotYetImplementedError("format", dt)
	}
}

// FormatValue renders element i of a as text. Nulls render as "null".
func FormatValue(a array.Array, i int) (string, error) {
	v, err := ValueAt(a, i)
	if err != nil {
		return "", err
	}
	switch v := v.(type) {
	case nil:
		return "null", nil
	case bool:
		return strconv.FormatBool(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case string:
		return v, nil
	default:
		return "", errors.NewNotYetImplementedError("format", a.DataType())
	}
}
