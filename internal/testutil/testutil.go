// Package testutil provides common testing utilities to reduce code duplication
// across test files in the columnar library.
//
// This package consolidates common patterns:
// - Checked allocator setup for code that hands out Arrow arrays
// - Standard test table creation
// - Nullable array construction and read-back
// - Array and table assertions
package testutil

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	arrowarray "github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/columnar/internal/array"
	"github.com/paveg/columnar/internal/interop"
	"github.com/paveg/columnar/internal/table"
)

const (
	// defaultRowCount is the default number of rows in test tables.
	defaultRowCount = 4
)

// SetupMemoryTest returns a checked allocator and asserts that every byte
// allocated through it has been released when the test ends.
//
// Example usage:
//
//	mem := testutil.SetupMemoryTest(t)
//	builder := arrowarray.NewInt64Builder(mem)
//	defer builder.Release()
func SetupMemoryTest(tb testing.TB) *memory.CheckedAllocator {
	tb.Helper()
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	tb.Cleanup(func() { mem.AssertSize(tb, 0) })
	return mem
}

// TestTableOption configures test table creation.
type TestTableOption func(*testTableConfig)

type testTableConfig struct {
	includeNulls bool
	rowCount     int
	withActive   bool
}

// WithNulls makes every third age and every fourth department null.
func WithNulls() TestTableOption {
	return func(cfg *testTableConfig) {
		cfg.includeNulls = true
	}
}

// WithRowCount sets the number of rows in test data.
func WithRowCount(count int) TestTableOption {
	return func(cfg *testTableConfig) {
		cfg.rowCount = count
	}
}

// WithActiveColumn includes an 'active' boolean column.
func WithActiveColumn() TestTableOption {
	return func(cfg *testTableConfig) {
		cfg.withActive = true
	}
}

// CreateTestTable creates a standard test table with employee data.
//
// Default table includes:
// - name (string): ["Alice", "Bob", "Charlie", "David"]
// - age (int64): [25, 30, 35, 28]
// - department (string): ["Engineering", "Sales", "Engineering", "Marketing"]
// - salary (int64): [100000, 80000, 120000, 75000]
func CreateTestTable(tb testing.TB, opts ...TestTableOption) *table.Table {
	tb.Helper()
	cfg := &testTableConfig{
		rowCount: defaultRowCount,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	ageValid := make([]bool, cfg.rowCount)
	deptValid := make([]bool, cfg.rowCount)
	for i := range cfg.rowCount {
		ageValid[i] = !cfg.includeNulls || i%3 != 1
		deptValid[i] = !cfg.includeNulls || i%4 != 3
	}

	columns := []table.Column{
		{Name: "name", Values: array.Utf8From[int32](generateNames(cfg.rowCount), nil)},
		{Name: "age", Values: array.PrimitiveFrom(arrow.PrimitiveTypes.Int64, generateAges(cfg.rowCount), ageValid)},
		{Name: "department", Values: array.Utf8From[int32](generateDepartments(cfg.rowCount), deptValid)},
		{Name: "salary", Values: array.PrimitiveFrom(arrow.PrimitiveTypes.Int64, generateSalaries(cfg.rowCount), nil)},
	}
	if cfg.withActive {
		columns = append(columns, table.Column{
			Name:   "active",
			Values: array.BooleanFrom(generateActiveFlags(cfg.rowCount), nil),
		})
	}

	tbl, err := table.New(columns...)
	require.NoError(tb, err)
	return tbl
}

// CreateSimpleTestTable creates a simple 2-column table for basic testing.
func CreateSimpleTestTable(tb testing.TB) *table.Table {
	tb.Helper()
	tbl, err := table.New(
		table.Column{Name: "name", Values: array.Utf8From[int32]([]string{"Alice", "Bob"}, nil)},
		table.Column{Name: "age", Values: array.PrimitiveFrom(arrow.PrimitiveTypes.Int64, []int64{25, 30}, nil)},
	)
	require.NoError(tb, err)
	return tbl
}

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T { return &v }

// NullablePrimitive builds a primitive array where nil entries are null.
func NullablePrimitive[T array.Native](dt arrow.DataType, values []*T) *array.Primitive[T] {
	plain := make([]T, len(values))
	valid := make([]bool, len(values))
	for i, v := range values {
		if v != nil {
			plain[i], valid[i] = *v, true
		}
	}
	return array.PrimitiveFrom(dt, plain, valid)
}

// NullableUtf8 builds a string array where nil entries are null.
func NullableUtf8[O array.Offset](values []*string) *array.Utf8[O] {
	plain := make([]string, len(values))
	valid := make([]bool, len(values))
	for i, v := range values {
		if v != nil {
			plain[i], valid[i] = *v, true
		}
	}
	return array.Utf8From[O](plain, valid)
}

// Primitives reads a primitive array back, with nil for nulls.
func Primitives[T array.Native](tb testing.TB, a array.Array) []*T {
	tb.Helper()
	p, ok := a.(*array.Primitive[T])
	require.True(tb, ok, "expected a primitive array, got %T", a)
	out := make([]*T, p.Len())
	for i := range out {
		if p.IsValid(i) {
			out[i] = Ptr(p.Value(i))
		}
	}
	return out
}

// Strings reads a string array back, with nil for nulls.
func Strings[O array.Offset](tb testing.TB, a array.Array) []*string {
	tb.Helper()
	s, ok := a.(*array.Utf8[O])
	require.True(tb, ok, "expected a utf8 array, got %T", a)
	out := make([]*string, s.Len())
	for i := range out {
		if s.IsValid(i) {
			out[i] = Ptr(s.Value(i))
		}
	}
	return out
}

// AssertArraysEqual compares two arrays by logical type and by the values
// of their valid elements. Values behind nulls are ignored.
func AssertArraysEqual(tb testing.TB, expected, actual array.Array) {
	tb.Helper()

	require.NotNil(tb, expected, "expected array should not be nil")
	require.NotNil(tb, actual, "actual array should not be nil")

	e, err := interop.ToArrow(expected)
	require.NoError(tb, err)
	defer e.Release()
	a, err := interop.ToArrow(actual)
	require.NoError(tb, err)
	defer a.Release()

	assert.True(tb, arrowarray.Equal(e, a), "arrays differ:\nexpected: %s\nactual:   %s", e, a)
}

// AssertTableEqual performs deep equality comparison of tables.
func AssertTableEqual(tb testing.TB, expected, actual *table.Table) {
	tb.Helper()

	require.NotNil(tb, expected, "expected table should not be nil")
	require.NotNil(tb, actual, "actual table should not be nil")

	assert.Equal(tb, expected.Len(), actual.Len(), "table lengths should match")
	require.Equal(tb, expected.Columns(), actual.Columns(), "table columns should match")

	for i := range expected.Width() {
		AssertArraysEqual(tb, expected.ColumnAt(i).Values, actual.ColumnAt(i).Values)
	}
}

// AssertTableHasColumns verifies that a table has the expected columns.
func AssertTableHasColumns(tb testing.TB, tbl *table.Table, expectedColumns []string) {
	tb.Helper()

	require.NotNil(tb, tbl, "table should not be nil")
	assert.Len(tb, tbl.Columns(), len(expectedColumns), "column count should match")

	for _, col := range expectedColumns {
		assert.True(tb, tbl.HasColumn(col), "table should have column %s", col)
	}
}

// AssertTableNotEmpty verifies that a table is not empty.
func AssertTableNotEmpty(tb testing.TB, tbl *table.Table) {
	tb.Helper()

	require.NotNil(tb, tbl, "table should not be nil")
	assert.Positive(tb, tbl.Len(), "table should not be empty")
	assert.Positive(tb, tbl.Width(), "table should have columns")
}

// Helper functions for generating test data

func generateNames(count int) []string {
	baseNames := []string{"Alice", "Bob", "Charlie", "David", "Eve", "Frank", "Grace", "Henry"}
	names := make([]string, count)
	for i := range count {
		names[i] = baseNames[i%len(baseNames)]
	}
	return names
}

func generateAges(count int) []int64 {
	baseAges := []int64{25, 30, 35, 28, 32, 45, 29, 38}
	ages := make([]int64, count)
	for i := range count {
		ages[i] = baseAges[i%len(baseAges)]
	}
	return ages
}

func generateDepartments(count int) []string {
	baseDepts := []string{"Engineering", "Sales", "Engineering", "Marketing", "HR", "Finance", "Engineering", "Sales"}
	departments := make([]string, count)
	for i := range count {
		departments[i] = baseDepts[i%len(baseDepts)]
	}
	return departments
}

func generateSalaries(count int) []int64 {
	baseSalaries := []int64{100000, 80000, 120000, 75000, 90000, 110000, 95000, 85000}
	salaries := make([]int64, count)
	for i := range count {
		salaries[i] = baseSalaries[i%len(baseSalaries)]
	}
	return salaries
}

func generateActiveFlags(count int) []bool {
	baseFlags := []bool{true, true, false, true, true, false, true, false}
	flags := make([]bool, count)
	for i := range count {
		flags[i] = baseFlags[i%len(baseFlags)]
	}
	return flags
}
