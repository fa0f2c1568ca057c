package monitoring

import "sync/atomic"

// kernels is the process-wide collector fed by the kernel entry points.
// A nil collector means monitoring was never enabled.
var kernels atomic.Pointer[MetricsCollector]

// Enable starts recording kernel invocations. Metrics recorded before a
// previous Disable are kept.
func Enable() {
	if c := kernels.Load(); c != nil {
		c.SetEnabled(true)
		return
	}
	kernels.CompareAndSwap(nil, NewMetricsCollector(true))
}

// Disable stops recording. Collected metrics stay readable.
func Disable() {
	if c := kernels.Load(); c != nil {
		c.SetEnabled(false)
	}
}

// Enabled reports whether kernel invocations are being recorded.
func Enabled() bool {
	c := kernels.Load()
	return c != nil && c.IsEnabled()
}

// Reset drops every recorded kernel invocation.
func Reset() {
	if c := kernels.Load(); c != nil {
		c.Clear()
	}
}

// Record runs fn as the kernel invocation op. Without an enabled collector
// fn runs unrecorded.
func Record(op Operation, fn func() error) error {
	c := kernels.Load()
	if c == nil {
		return fn()
	}
	return c.RecordOperation(op, fn)
}

// Metrics returns the recorded invocations of the named kernels, or of every
// kernel when no names are given.
func Metrics(kernelNames ...string) []KernelMetrics {
	c := kernels.Load()
	if c == nil {
		return []KernelMetrics{}
	}
	return c.MetricsFor(kernelNames...)
}

// Summary aggregates the recorded invocations overall and per kernel.
func Summary() MetricsSummary {
	c := kernels.Load()
	if c == nil {
		return MetricsSummary{}
	}
	return c.GetSummary()
}
