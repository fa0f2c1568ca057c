// Package parallel provides parallel processing infrastructure for compute kernels.
//
// Kernels are single-threaded and pure; this package composes them across
// independent chunks of data. Work is fanned out with a bounded errgroup,
// results keep the order of their inputs, and the first failure cancels the
// remaining work.
//
// Key features:
//   - Worker pool sizing from configuration, defaulting to runtime.NumCPU()
//   - Order-preserving fan-out/fan-in over a slice of work items
//   - Context cancellation on the first error
//   - Sequential execution below a configurable element threshold
package parallel

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// WorkerPool bounds the number of goroutines used by a fan-out
type WorkerPool struct {
	numWorkers int
	threshold  int
	logger     *slog.Logger
}

// Option configures a WorkerPool
type Option func(*WorkerPool)

// WithThreshold sets the minimum total element count that triggers parallel
// execution. Smaller workloads run on the calling goroutine.
func WithThreshold(elements int) Option {
	return func(wp *WorkerPool) { wp.threshold = elements }
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(wp *WorkerPool) {
		if logger != nil {
			wp.logger = logger
		}
	}
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(numWorkers int, opts ...Option) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	wp := &WorkerPool{
		numWorkers: numWorkers,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(wp)
	}
	return wp
}

// Workers returns the maximum number of concurrent workers
func (wp *WorkerPool) Workers() int { return wp.numWorkers }

// shouldParallelize reports whether a workload of the given size and item
// count is worth fanning out.
func (wp *WorkerPool) shouldParallelize(items, elements int) bool {
	return wp.numWorkers > 1 && items > 1 && elements >= wp.threshold
}

// Map applies fn to every item and returns the results in input order. The
// first error cancels the context passed to the remaining calls and is
// returned.
func Map[T, R any](
	ctx context.Context,
	wp *WorkerPool,
	items []T,
	fn func(context.Context, int, T) (R, error),
) ([]R, error) {
	return mapSized(ctx, wp, items, len(items), fn)
}

// mapSized is Map with an explicit workload size for the threshold check.
func mapSized[T, R any](
	ctx context.Context,
	wp *WorkerPool,
	items []T,
	elements int,
	fn func(context.Context, int, T) (R, error),
) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}

	results := make([]R, len(items))

	if !wp.shouldParallelize(len(items), elements) {
		wp.logger.Debug("running sequentially", "items", len(items), "elements", elements)
		for i, item := range items {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			r, err := fn(ctx, i, item)
			if err != nil {
				return nil, err
			}
			results[i] = r
		}
		return results, nil
	}

	wp.logger.Debug("fanning out", "items", len(items), "elements", elements, "workers", wp.numWorkers)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(wp.numWorkers)
	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := fn(gctx, i, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		wp.logger.Debug("fan-out failed", "error", err)
		return nil, err
	}
	return results, nil
}
