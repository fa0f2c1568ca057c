package monitoring_test

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/columnar/internal/array"
	"github.com/paveg/columnar/internal/compute"
	"github.com/paveg/columnar/internal/errors"
	"github.com/paveg/columnar/internal/monitoring"
)

func resetMonitoring(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		monitoring.Disable()
		monitoring.Reset()
	})
}

// sortKernel runs compute.Sort the way the kernel entry points record it.
func sortKernel(t *testing.T, a array.Array) error {
	t.Helper()
	op := monitoring.Operation{Kernel: "sort", DataType: a.DataType().String(), Elements: a.Len()}
	return monitoring.Record(op, func() error {
		_, err := compute.Sort(a, compute.SortOptions{NullsFirst: true}, compute.NoLimit)
		return err
	})
}

func TestRecordKernelInvocations(t *testing.T) {
	resetMonitoring(t)
	monitoring.Enable()
	require.True(t, monitoring.Enabled())

	ints := array.PrimitiveFrom(arrow.PrimitiveTypes.Int64, []int64{3, 1, 2}, nil)
	require.NoError(t, sortKernel(t, ints))

	unsortable := array.NewNull(arrow.BinaryTypes.Binary, 4)
	require.ErrorIs(t, sortKernel(t, unsortable), errors.ErrNotYetImplemented)

	mask := array.BooleanFrom([]bool{true, false, true}, nil)
	require.NoError(t, monitoring.Record(monitoring.Operation{Kernel: "filter", DataType: "int64", Elements: 3, Parallel: true}, func() error {
		_, err := compute.FilterArray(ints, mask)
		return err
	}))

	sorts := monitoring.Metrics("sort")
	require.Len(t, sorts, 2)
	assert.Equal(t, "int64", sorts[0].DataType)
	assert.Equal(t, int64(3), sorts[0].Elements)
	assert.False(t, sorts[0].Failed)
	assert.Equal(t, "binary", sorts[1].DataType)
	assert.True(t, sorts[1].Failed)
	assert.Len(t, monitoring.Metrics(), 3)

	summary := monitoring.Summary()
	assert.Equal(t, 3, summary.TotalOperations)
	assert.Equal(t, 1, summary.Failures)
	assert.Equal(t, monitoring.KernelSummary{
		Calls:    2,
		Failures: 1,
		Elements: 7,
		Duration: sorts[0].Duration + sorts[1].Duration,
	}, summary.Kernels["sort"])
	assert.Equal(t, 1, summary.Kernels["filter"].ParallelCalls)
}

func TestDisableKeepsRecordedKernels(t *testing.T) {
	resetMonitoring(t)
	monitoring.Enable()

	ints := array.PrimitiveFrom(arrow.PrimitiveTypes.Int32, []int32{2, 1}, nil)
	require.NoError(t, sortKernel(t, ints))

	monitoring.Disable()
	assert.False(t, monitoring.Enabled())
	require.NoError(t, sortKernel(t, ints))
	assert.Len(t, monitoring.Metrics("sort"), 1)

	monitoring.Enable()
	require.NoError(t, sortKernel(t, ints))
	assert.Len(t, monitoring.Metrics("sort"), 2)

	monitoring.Reset()
	assert.Empty(t, monitoring.Metrics())
	assert.Equal(t, monitoring.MetricsSummary{}, monitoring.Summary())
}

func TestRecordWhileDisabledRunsKernel(t *testing.T) {
	resetMonitoring(t)
	monitoring.Disable()

	ran := false
	require.NoError(t, monitoring.Record(monitoring.Operation{Kernel: "concat"}, func() error {
		ran = true
		return nil
	}))
	assert.True(t, ran)
	assert.Empty(t, monitoring.Metrics("concat"))
}
