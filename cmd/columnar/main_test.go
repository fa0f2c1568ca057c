package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/columnar"
	"github.com/paveg/columnar/internal/config"
	"github.com/paveg/columnar/internal/errors"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Cleanup(func() {
		require.NoError(t, columnar.Configure(config.NewConfig()))
		columnar.SetLogger(nil)
	})
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestRunDemo(t *testing.T) {
	out, _, err := runCLI(t, "--demo", "--rows", "20", "--limit", "3")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "Table[20x4]\n  name: utf8\n"))
	assert.Contains(t, out, "Employees older than 35: 8\n")
	assert.True(t, strings.HasSuffix(out,
		"Sorted by department,salary:desc:\n\n"+
			"name         age  salary  department\n"+
			"Employee_16  40   55000   Engineering\n"+
			"Employee_20  44   59000   Finance\n"+
			"Employee_15  39   54000   Finance\n"), out)
}

func TestRunDemoConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "columnar.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_nulls_first: false\nworker_pool_size: 2\n"), 0o600))

	out, _, err := runCLI(t, "--demo", "--rows", "20", "--config", path, "--sort", "age", "--limit", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Employee_12  36")
	assert.Contains(t, out, "Employee_13  37")
	assert.NotContains(t, out, "Employee_15  39")
	assert.False(t, config.GetGlobalConfig().DefaultNullsFirst)
}

func TestRunDemoEnvironment(t *testing.T) {
	t.Setenv("COLUMNAR_DEFAULT_NULLS_FIRST", "false")
	t.Setenv("COLUMNAR_WORKER_POOL_SIZE", "3")

	_, _, err := runCLI(t, "--demo", "--rows", "20")
	require.NoError(t, err)
	cfg := config.GetGlobalConfig()
	assert.False(t, cfg.DefaultNullsFirst)
	assert.Equal(t, 3, cfg.WorkerPoolSize)
}

func TestRunConfigFileOverridesEnvironment(t *testing.T) {
	t.Setenv("COLUMNAR_WORKER_POOL_SIZE", "3")
	path := filepath.Join(t.TempDir(), "columnar.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"worker_pool_size": 2}`), 0o600))

	_, _, err := runCLI(t, "--demo", "--rows", "20", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, 2, config.GetGlobalConfig().WorkerPoolSize)
}

func TestRunMetrics(t *testing.T) {
	_, stderr, err := runCLI(t, "--demo", "--rows", "50", "--metrics")
	require.NoError(t, err)
	assert.Contains(t, stderr, "operations:")
	assert.Contains(t, stderr, "dictionary_encode")
	assert.Contains(t, stderr, "filter")
	assert.Contains(t, stderr, "sort_table")
	assert.Contains(t, stderr, "calls=1 failed=0 parallel=1")
}

func TestRunVersion(t *testing.T) {
	out, _, err := runCLI(t, "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "columnar")
	assert.Contains(t, out, "Channel: development")
}

func TestRunBenchmark(t *testing.T) {
	out, _, err := runCLI(t, "--benchmark", "--rows", "1000")
	require.NoError(t, err)
	assert.Contains(t, out, "Parallel sort")
}

func TestRunErrors(t *testing.T) {
	t.Run("no mode prints usage", func(t *testing.T) {
		_, stderr, err := runCLI(t)
		require.ErrorIs(t, err, errUsage)
		assert.Contains(t, stderr, "Usage: columnar")
	})

	t.Run("help", func(t *testing.T) {
		_, _, err := runCLI(t, "-h")
		assert.ErrorIs(t, err, flag.ErrHelp)
	})

	t.Run("invalid configuration", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "columnar.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"worker_pool_size": -1}`), 0o600))
		_, _, err := runCLI(t, "--demo", "--config", path)
		assert.ErrorIs(t, err, errors.ErrInvalidConfiguration)
	})

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown column", args: []string{"--demo", "--sort", "bonus"}},
		{name: "bad direction", args: []string{"--demo", "--sort", "age:sideways"}},
		{name: "empty key", args: []string{"--demo", "--sort", "age,"}},
		{name: "missing config", args: []string{"--demo", "--config", filepath.Join(os.TempDir(), "does-not-exist.yaml")}},
		{name: "positional argument", args: []string{"--demo", "data.csv"}},
		{name: "unknown flag", args: []string{"--nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestParseSortKeys(t *testing.T) {
	keys, err := parseSortKeys("a, b:DESC ,c:asc")
	require.NoError(t, err)
	require.Len(t, keys, 3)
	assert.Equal(t, "a", keys[0].Column)
	assert.False(t, keys[0].Options.Descending)
	assert.Equal(t, "b", keys[1].Column)
	assert.True(t, keys[1].Options.Descending)
	assert.False(t, keys[2].Options.Descending)
}
