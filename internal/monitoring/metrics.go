// Package monitoring provides performance monitoring and metrics collection for compute kernels.
package monitoring

import (
	"runtime"
	"slices"
	"sync"
	"time"
)

// Operation identifies a single kernel invocation.
type Operation struct {
	Kernel   string // Kernel name (e.g., "sort", "take")
	DataType string // Logical type of the primary input
	Elements int    // Number of input elements
	Parallel bool   // Whether the kernel ran across workers
}

// KernelMetrics represents performance metrics for a single kernel invocation.
type KernelMetrics struct {
	Kernel     string        `json:"kernel"`
	DataType   string        `json:"data_type"`
	Elements   int64         `json:"elements"`
	Duration   time.Duration `json:"duration"`
	MemoryUsed int64         `json:"memory_used"`
	Parallel   bool          `json:"parallel"`
	Failed     bool          `json:"failed"`
}

// MetricsCollector collects and stores performance metrics for kernel invocations.
type MetricsCollector struct {
	mu      sync.RWMutex
	metrics []KernelMetrics
	enabled bool
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector(enabled bool) *MetricsCollector {
	return &MetricsCollector{
		metrics: make([]KernelMetrics, 0),
		enabled: enabled,
	}
}

// IsEnabled returns whether metrics collection is enabled.
func (mc *MetricsCollector) IsEnabled() bool {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.enabled
}

// RecordOperation executes the given function and records performance metrics.
func (mc *MetricsCollector) RecordOperation(op Operation, fn func() error) error {
	if !mc.IsEnabled() {
		return fn()
	}

	var memBefore runtime.MemStats
	runtime.ReadMemStats(&memBefore)

	start := time.Now()
	err := fn()
	duration := time.Since(start)

	var memAfter runtime.MemStats
	runtime.ReadMemStats(&memAfter)

	// TotalAlloc is monotonic, so the difference is never negative
	memoryUsed := int64(memAfter.TotalAlloc - memBefore.TotalAlloc) //nolint:gosec // bounded by process allocations

	mc.mu.Lock()
	mc.metrics = append(mc.metrics, KernelMetrics{
		Kernel:     op.Kernel,
		DataType:   op.DataType,
		Elements:   int64(op.Elements),
		Duration:   duration,
		MemoryUsed: memoryUsed,
		Parallel:   op.Parallel,
		Failed:     err != nil,
	})
	mc.mu.Unlock()

	return err
}

// GetMetrics returns a copy of all collected metrics.
func (mc *MetricsCollector) GetMetrics() []KernelMetrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	result := make([]KernelMetrics, len(mc.metrics))
	copy(result, mc.metrics)
	return result
}

// MetricsFor returns the collected metrics of the named kernels in recording
// order. No names returns every metric.
func (mc *MetricsCollector) MetricsFor(kernels ...string) []KernelMetrics {
	if len(kernels) == 0 {
		return mc.GetMetrics()
	}

	mc.mu.RLock()
	defer mc.mu.RUnlock()

	result := make([]KernelMetrics, 0, len(mc.metrics))
	for _, m := range mc.metrics {
		if slices.Contains(kernels, m.Kernel) {
			result = append(result, m)
		}
	}
	return result
}

// Clear removes all collected metrics.
func (mc *MetricsCollector) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.metrics = mc.metrics[:0]
}

// SetEnabled enables or disables metrics collection.
func (mc *MetricsCollector) SetEnabled(enabled bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.enabled = enabled
}

// GetSummary returns a summary of collected metrics.
func (mc *MetricsCollector) GetSummary() MetricsSummary {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	if len(mc.metrics) == 0 {
		return MetricsSummary{}
	}

	var (
		totalDuration time.Duration
		totalMemory   int64
		totalElements int64
		failures      int
	)
	kernels := make(map[string]KernelSummary)

	for _, metric := range mc.metrics {
		totalDuration += metric.Duration
		totalMemory += metric.MemoryUsed
		totalElements += metric.Elements
		if metric.Failed {
			failures++
		}

		k := kernels[metric.Kernel]
		k.Calls++
		k.Elements += metric.Elements
		k.Duration += metric.Duration
		if metric.Failed {
			k.Failures++
		}
		if metric.Parallel {
			k.ParallelCalls++
		}
		kernels[metric.Kernel] = k
	}

	return MetricsSummary{
		TotalOperations: len(mc.metrics),
		TotalDuration:   totalDuration,
		TotalMemory:     totalMemory,
		TotalElements:   totalElements,
		Failures:        failures,
		Kernels:         kernels,
		AverageDuration: totalDuration / time.Duration(len(mc.metrics)),
	}
}

// MetricsSummary provides aggregate statistics for collected metrics.
type MetricsSummary struct {
	TotalOperations int                      `json:"total_operations"`
	TotalDuration   time.Duration            `json:"total_duration"`
	TotalMemory     int64                    `json:"total_memory"`
	TotalElements   int64                    `json:"total_elements"`
	Failures        int                      `json:"failures"`
	AverageDuration time.Duration            `json:"average_duration"`
	Kernels         map[string]KernelSummary `json:"kernels"`
}

// KernelSummary aggregates the invocations of one kernel.
type KernelSummary struct {
	Calls         int           `json:"calls"`
	Failures      int           `json:"failures"`
	ParallelCalls int           `json:"parallel_calls"`
	Elements      int64         `json:"elements"`
	Duration      time.Duration `json:"duration"`
}
