package columnar

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return NewLogger(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestLoggerKernelEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)
	ctx := context.Background()

	logger.LogKernel(ctx, "sort", 10, nil)
	logger.LogKernel(ctx, "take", 3, errors.New("boom"))

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "kernel completed", entries[0]["msg"])
	assert.Equal(t, "sort", entries[0]["kernel"])
	assert.InDelta(t, 10, entries[0]["elements"], 0)
	assert.Equal(t, "ERROR", entries[1]["level"])
	assert.Equal(t, "boom", entries[1]["error"])
}

func TestLoggerWithKernel(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf).WithKernel("concat")

	logger.Info("chunk merged", "chunks", 2)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "concat", entries[0]["kernel"])
	assert.InDelta(t, 2, entries[0]["chunks"], 0)
}

func TestSetLogger(t *testing.T) {
	resetGlobals(t)
	var buf bytes.Buffer
	SetLogger(newBufferLogger(&buf))

	_, err := Sort(int64s([]int64{2, 1}, nil), DefaultSortOptions(), NoLimit)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"kernel":"sort"`)

	SetLogger(nil)
	assert.Same(t, noopLogger, GetLogger())
}

func TestNoopLogger(t *testing.T) {
	logger := NoopLogger()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
	assert.NotPanics(t, func() { logger.LogKernel(context.Background(), "sort", 1, nil) })
}
