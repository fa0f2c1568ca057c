package compute

import (
	"bytes"
	"cmp"
	"math"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/paveg/columnar/internal/array"
	"github.com/paveg/columnar/internal/errors"
)

// DynComparator compares element i of one array with element j of another,
// returning a negative number, zero or a positive number.
type DynComparator func(i, j int) int

// Compare builds a total-order comparator between elements of a and b, which
// must share a logical type. Nulls order before every value and equal to each
// other. Floats follow the IEEE 754 totalOrder predicate.
func Compare(a, b array.Array) (DynComparator, error) {
	if !arrow.TypeEqual(a.DataType(), b.DataType()) {
		return nil, errors.NewTypeMismatchError("compare", a.DataType(), b.DataType())
	}
	values, err := valueComparator("compare", a, b)
	if err != nil {
		return nil, err
	}
	return withNulls(a, b, values, true), nil
}

// withNulls wraps a comparator over values with the null policy: nulls are
// equal to each other and order before values when nullsFirst is set, after
// them otherwise.
func withNulls(a, b array.Array, values DynComparator, nullsFirst bool) DynComparator {
	if a.NullCount() == 0 && b.NullCount() == 0 {
		return values
	}
	nullOrder := 1
	if nullsFirst {
		nullOrder = -1
	}
	return func(i, j int) int {
		switch vi, vj := a.IsValid(i), b.IsValid(j); {
		case vi && vj:
			return values(i, j)
		case !vi && !vj:
			return 0
		case !vi:
			return nullOrder
		default:
			return -nullOrder
		}
	}
}

// valueComparator compares the values of a and b, ignoring validity.
func valueComparator(op string, a, b array.Array) (DynComparator, error) {
	dt := a.DataType()
	switch dt.ID() {
	case arrow.BOOL:
		l, r := a.(*array.Boolean), b.(*array.Boolean)
		return func(i, j int) int {
			return boolCompare(l.Value(i), r.Value(j))
		}, nil
	case arrow.INT8:
		return orderedComparator[int8](a, b), nil
	case arrow.INT16:
		return orderedComparator[int16](a, b), nil
	case arrow.INT32, arrow.DATE32, arrow.TIME32, arrow.INTERVAL_MONTHS:
		return orderedComparator[int32](a, b), nil
	case arrow.INT64, arrow.DATE64, arrow.TIME64, arrow.TIMESTAMP, arrow.DURATION:
		return orderedComparator[int64](a, b), nil
	case arrow.UINT8:
		return orderedComparator[uint8](a, b), nil
	case arrow.UINT16:
		return orderedComparator[uint16](a, b), nil
	case arrow.UINT32:
		return orderedComparator[uint32](a, b), nil
	case arrow.UINT64:
		return orderedComparator[uint64](a, b), nil
	case arrow.FLOAT32:
		return floatComparator[float32](a, b), nil
	case arrow.FLOAT64:
		return floatComparator[float64](a, b), nil
	case arrow.INTERVAL_DAY_TIME:
		l := a.(*array.Primitive[arrow.DayTimeInterval]).Values().Values()
		r := b.(*array.Primitive[arrow.DayTimeInterval]).Values().Values()
		return func(i, j int) int { return compareDayTime(l[i], r[j]) }, nil
	case arrow.INTERVAL_MONTH_DAY_NANO:
		l := a.(*array.Primitive[arrow.MonthDayNanoInterval]).Values().Values()
		r := b.(*array.Primitive[arrow.MonthDayNanoInterval]).Values().Values()
		return func(i, j int) int { return compareMonthDayNano(l[i], r[j]) }, nil
	case arrow.STRING:
		return utf8Comparator[int32](a, b), nil
	case arrow.LARGE_STRING:
		return utf8Comparator[int64](a, b), nil
	case arrow.DICTIONARY:
		return dictionaryComparator(op, a, b)
	default:
		return nil, errors.NewNotYetImplementedError(op, dt)
	}
}

func orderedComparator[T interface {
	array.Native
	cmp.Ordered
}](a, b array.Array) DynComparator {
	l := a.(*array.Primitive[T]).Values().Values()
	r := b.(*array.Primitive[T]).Values().Values()
	return func(i, j int) int { return cmp.Compare(l[i], r[j]) }
}

func floatComparator[T float32 | float64](a, b array.Array) DynComparator {
	l := a.(*array.Primitive[T]).Values().Values()
	r := b.(*array.Primitive[T]).Values().Values()
	return func(i, j int) int { return totalCompare(l[i], r[j]) }
}

func utf8Comparator[O array.Offset](a, b array.Array) DynComparator {
	l, r := a.(*array.Utf8[O]), b.(*array.Utf8[O])
	return func(i, j int) int { return bytes.Compare(l.ValueBytes(i), r.ValueBytes(j)) }
}

// dictionaryComparator compares dictionary elements by the values their keys
// point to, so different keys mapping to equal values compare equal.
func dictionaryComparator(op string, a, b array.Array) (DynComparator, error) {
	la, lerr := dictionaryLookup(op, a)
	if lerr != nil {
		return nil, lerr
	}
	lb, _ := dictionaryLookup(op, b)

	values, err := valueComparator(op, la.values, lb.values)
	if err != nil {
		return nil, err
	}
	values = withNulls(la.values, lb.values, values, true)
	return func(i, j int) int { return values(la.key(i), lb.key(j)) }, nil
}

type dictionaryView struct {
	key    func(i int) int
	values array.Array
}

func dictionaryLookup(op string, a array.Array) (dictionaryView, error) {
	dt := a.DataType().(*arrow.DictionaryType)
	if id := dt.ValueType.ID(); id != arrow.STRING && id != arrow.LARGE_STRING {
		return dictionaryView{}, errors.NewNotYetImplementedError(op, dt)
	}
	switch d := a.(type) {
	case *array.Dictionary[int8]:
		return dictionaryView{key: d.Key, values: d.Values()}, nil
	case *array.Dictionary[int16]:
		return dictionaryView{key: d.Key, values: d.Values()}, nil
	case *array.Dictionary[int32]:
		return dictionaryView{key: d.Key, values: d.Values()}, nil
	case *array.Dictionary[int64]:
		return dictionaryView{key: d.Key, values: d.Values()}, nil
	case *array.Dictionary[uint8]:
		return dictionaryView{key: d.Key, values: d.Values()}, nil
	case *array.Dictionary[uint16]:
		return dictionaryView{key: d.Key, values: d.Values()}, nil
	case *array.Dictionary[uint32]:
		return dictionaryView{key: d.Key, values: d.Values()}, nil
	case *array.Dictionary[uint64]:
		return dictionaryView{key: d.Key, values: d.Values()}, nil
	default:
		return dictionaryView{}, errors.NewNotYetImplementedError(op, dt)
	}
}

// totalCompare orders floats by the IEEE 754 totalOrder predicate:
// -NaN < -Inf < ... < -0 < +0 < ... < +Inf < +NaN.
func totalCompare[T float32 | float64](a, b T) int {
	switch x := any(a).(type) {
	case float32:
		return cmp.Compare(totalOrderKey32(x), totalOrderKey32(float32(b)))
	default:
		return cmp.Compare(totalOrderKey64(float64(a)), totalOrderKey64(float64(b)))
	}
}

// totalOrderKey64 maps a float64 to an int64 whose natural order is the
// totalOrder of the float. Negative floats have every bit but the sign
// flipped.
func totalOrderKey64(f float64) int64 {
	bits := int64(math.Float64bits(f))
	return bits ^ int64(uint64(bits>>63)>>1)
}

func totalOrderKey32(f float32) int32 {
	bits := int32(math.Float32bits(f))
	return bits ^ int32(uint32(bits>>31)>>1)
}

func boolCompare(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}

func compareDayTime(a, b arrow.DayTimeInterval) int {
	if c := cmp.Compare(a.Days, b.Days); c != 0 {
		return c
	}
	return cmp.Compare(a.Milliseconds, b.Milliseconds)
}

func compareMonthDayNano(a, b arrow.MonthDayNanoInterval) int {
	if c := cmp.Compare(a.Months, b.Months); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Days, b.Days); c != 0 {
		return c
	}
	return cmp.Compare(a.Nanoseconds, b.Nanoseconds)
}
