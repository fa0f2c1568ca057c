package parallel

import (
	"container/heap"
	"context"

	"github.com/paveg/columnar/internal/array"
	"github.com/paveg/columnar/internal/buffer"
	"github.com/paveg/columnar/internal/compute"
)

// SortChunks sorts every chunk independently and returns one permutation per
// chunk, each relative to its own chunk.
func SortChunks[I compute.Index](
	ctx context.Context,
	wp *WorkerPool,
	chunks []array.Array,
	opts compute.SortOptions,
	limit int,
) ([]*array.Primitive[I], error) {
	total := 0
	for _, c := range chunks {
		total += c.Len()
	}
	return mapSized(ctx, wp, chunks, total, func(_ context.Context, _ int, chunk array.Array) (*array.Primitive[I], error) {
		return compute.SortToIndices[I](chunk, opts, limit)
	})
}

// SortToIndices computes the same permutation as compute.SortToIndices, up
// to the order of equal elements, by sorting contiguous chunks of a on
// separate workers and merging them. Equal elements keep chunk order, so
// stable orderings stay stable.
func SortToIndices[I compute.Index](
	ctx context.Context,
	wp *WorkerPool,
	a array.Array,
	opts compute.SortOptions,
	limit int,
) (*array.Primitive[I], error) {
	n := a.Len()
	if !compute.FitsIndex[I](n) || !wp.shouldParallelize(wp.numWorkers, n) || n < 2*wp.numWorkers {
		return compute.SortToIndices[I](a, opts, limit)
	}
	cmp, err := compute.SortComparator(a, opts)
	if err != nil {
		return nil, err
	}

	chunkSize := (n + wp.numWorkers - 1) / wp.numWorkers
	var (
		chunks  []array.Array
		offsets []int
	)
	for off := 0; off < n; off += chunkSize {
		chunks = append(chunks, a.Slice(off, min(chunkSize, n-off)))
		offsets = append(offsets, off)
	}

	perms, err := SortChunks[I](ctx, wp, chunks, opts, limit)
	if err != nil {
		return nil, err
	}

	want := n
	if limit >= 0 && limit < n {
		want = limit
	}
	merged := mergeRuns(perms, offsets, cmp, want)
	return array.NewPrimitive(compute.IndexType[I](), buffer.New(merged), nil), nil
}

// Sort returns a reordered copy of a, sorting chunks in parallel.
func Sort(ctx context.Context, wp *WorkerPool, a array.Array, opts compute.SortOptions, limit int) (array.Array, error) {
	indices, err := SortToIndices[uint64](ctx, wp, a, opts, limit)
	if err != nil {
		return nil, err
	}
	return compute.Take(a, indices)
}

// mergeRuns k-way merges sorted per-chunk permutations into global indices,
// stopping after want elements.
func mergeRuns[I compute.Index](perms []*array.Primitive[I], offsets []int, cmp compute.DynComparator, want int) []I {
	h := &runHeap[I]{cmp: cmp}
	for c, p := range perms {
		if values := p.Values().Values(); len(values) > 0 {
			h.runs = append(h.runs, run[I]{chunk: c, offset: offsets[c], values: values})
		}
	}
	heap.Init(h)

	out := make([]I, 0, want)
	for len(out) < want && h.Len() > 0 {
		top := &h.runs[0]
		out = append(out, I(top.head()))
		top.values = top.values[1:]
		if len(top.values) == 0 {
			heap.Pop(h)
		} else {
			heap.Fix(h, 0)
		}
	}
	return out
}

// run is the unconsumed tail of one chunk's permutation.
type run[I compute.Index] struct {
	chunk  int
	offset int
	values []I
}

func (r run[I]) head() int { return r.offset + int(r.values[0]) }

type runHeap[I compute.Index] struct {
	runs []run[I]
	cmp  compute.DynComparator
}

func (h *runHeap[I]) Len() int { return len(h.runs) }

func (h *runHeap[I]) Less(i, j int) bool {
	if c := h.cmp(h.runs[i].head(), h.runs[j].head()); c != 0 {
		return c < 0
	}
	return h.runs[i].chunk < h.runs[j].chunk
}

func (h *runHeap[I]) Swap(i, j int) { h.runs[i], h.runs[j] = h.runs[j], h.runs[i] }

func (h *runHeap[I]) Push(x any) { h.runs = append(h.runs, x.(run[I])) }

func (h *runHeap[I]) Pop() any {
	last := h.runs[len(h.runs)-1]
	h.runs = h.runs[:len(h.runs)-1]
	return last
}
