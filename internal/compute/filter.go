package compute

import (
	"iter"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/apache/arrow-go/v18/arrow/bitutil"

	"github.com/paveg/columnar/internal/array"
	"github.com/paveg/columnar/internal/bitmap"
	"github.com/paveg/columnar/internal/errors"
	"github.com/paveg/columnar/internal/growable"
)

// Filter is a compiled boolean mask that can be applied to many arrays of the
// same length. A position is selected when the mask is valid and true.
type Filter struct {
	length   int
	selected *roaring.Bitmap
	runs     []selectionRun
}

// selectionRun is a contiguous range [start, end) of selected positions.
type selectionRun struct {
	start, end int
}

// BuildFilter compiles mask into a reusable Filter.
func BuildFilter(mask *array.Boolean) (*Filter, error) {
	n := mask.Len()
	if uint64(n) > math.MaxUint32 {
		return nil, errors.NewInvalidInputError("filter", "mask is too long to compile")
	}

	selection := mask.Values()
	if validity := mask.Validity(); validity != nil && n > 0 {
		// null mask entries are not selected
		merged := make([]byte, bitmap.BytesFor(n))
		bitutil.BitmapAnd(selection.Bytes(), validity.Bytes(),
			int64(selection.Offset()), int64(validity.Offset()), merged, 0, int64(n))
		selection = bitmap.NewBitmapFromBytes(merged, n)
	}

	selected := roaring.New()
	runStart := -1
	for i, set := range enumerate(selection) {
		switch {
		case set && runStart < 0:
			runStart = i
		case !set && runStart >= 0:
			selected.AddRange(uint64(runStart), uint64(i))
			runStart = -1
		}
	}
	if runStart >= 0 {
		selected.AddRange(uint64(runStart), uint64(n))
	}

	return &Filter{length: n, selected: selected, runs: runsOf(selected)}, nil
}

// runsOf derives the contiguous ranges of a selection.
func runsOf(selected *roaring.Bitmap) []selectionRun {
	var runs []selectionRun
	it := selected.Iterator()
	for it.HasNext() {
		pos := int(it.Next())
		if last := len(runs) - 1; last >= 0 && runs[last].end == pos {
			runs[last].end++
			continue
		}
		runs = append(runs, selectionRun{start: pos, end: pos + 1})
	}
	return runs
}

// Len returns the length of arrays the filter applies to.
func (f *Filter) Len() int { return f.length }

// SelectedCount returns the number of selected positions.
func (f *Filter) SelectedCount() int { return int(f.selected.GetCardinality()) }

// Selected reports whether position i is selected.
func (f *Filter) Selected(i int) bool { return f.selected.Contains(uint32(i)) }

// Apply returns the selected elements of a.
func (f *Filter) Apply(a array.Array) (array.Array, error) {
	if a.Len() != f.length {
		return nil, errors.NewLengthMismatchError("filter", f.length, a.Len())
	}
	g, err := growable.New([]array.Array{a}, false, f.SelectedCount())
	if err != nil {
		return nil, err
	}
	for _, r := range f.runs {
		g.Extend(0, r.start, r.end-r.start)
	}
	return g.Finish(), nil
}

// FilterArray returns the elements of a where mask is valid and true.
func FilterArray(a array.Array, mask *array.Boolean) (array.Array, error) {
	f, err := BuildFilter(mask)
	if err != nil {
		return nil, err
	}
	return f.Apply(a)
}

// enumerate yields each bit of b with its position.
func enumerate(b *bitmap.Bitmap) iter.Seq2[int, bool] {
	return func(yield func(int, bool) bool) {
		i := 0
		for v := range b.Values() {
			if !yield(i, v) {
				return
			}
			i++
		}
	}
}
