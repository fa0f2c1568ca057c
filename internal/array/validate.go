package array

import (
	"fmt"
	"unicode/utf8"

	"github.com/paveg/columnar/internal/errors"
)

// Validate performs the full O(n) invariant check of a, recursing into child
// arrays. Constructors only check O(1) invariants, so arrays assembled from
// untrusted buffers should be validated before use.
func Validate(a Array) error {
	switch arr := a.(type) {
	case *Null, *Boolean:
		return nil
	case *Utf8[int32]:
		return validateUtf8(arr)
	case *Utf8[int64]:
		return validateUtf8(arr)
	case *List[int32]:
		return validateList(arr)
	case *List[int64]:
		return validateList(arr)
	case *FixedSizeList:
		return Validate(arr.values)
	case *Dictionary[int8]:
		return validateDictionary(arr)
	case *Dictionary[int16]:
		return validateDictionary(arr)
	case *Dictionary[int32]:
		return validateDictionary(arr)
	case *Dictionary[int64]:
		return validateDictionary(arr)
	case *Dictionary[uint8]:
		return validateDictionary(arr)
	case *Dictionary[uint16]:
		return validateDictionary(arr)
	case *Dictionary[uint32]:
		return validateDictionary(arr)
	case *Dictionary[uint64]:
		return validateDictionary(arr)
	default:
		// primitive arrays carry no invariant beyond their constructor checks
		return nil
	}
}

func validateOffsets[O Offset](op string, offsets []O, limit int) error {
	if offsets[0] < 0 {
		return errors.NewInvalidInputError(op, fmt.Sprintf("negative first offset %d", offsets[0]))
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return errors.NewInvalidInputError(op, fmt.Sprintf("offsets decrease at position %d", i))
		}
	}
	if last := int(offsets[len(offsets)-1]); last > limit {
		return errors.NewInvalidInputError(op, fmt.Sprintf("last offset %d exceeds values length %d", last, limit))
	}
	return nil
}

func validateUtf8[O Offset](a *Utf8[O]) error {
	if err := validateOffsets("validate utf8", a.offsets.Values(), len(a.values)); err != nil {
		return err
	}
	for i := range a.Len() {
		if !utf8.Valid(a.ValueBytes(i)) {
			return errors.NewInvalidInputError("validate utf8", fmt.Sprintf("element %d is not valid UTF-8", i))
		}
	}
	return nil
}

func validateList[O Offset](a *List[O]) error {
	if err := validateOffsets("validate list", a.offsets.Values(), a.values.Len()); err != nil {
		return err
	}
	return Validate(a.values)
}

func validateDictionary[K DictionaryKey](a *Dictionary[K]) error {
	n := a.values.Len()
	for i := range a.Len() {
		if a.IsNull(i) {
			continue
		}
		if k := a.keys.Value(i); k < 0 || uint64(k) >= uint64(n) {
			return errors.NewInvalidInputError("validate dictionary", fmt.Sprintf("key %d at position %d is out of range for %d values", k, i, n))
		}
	}
	return Validate(a.values)
}
