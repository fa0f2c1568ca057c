// Package table groups equal-length named arrays into a Table and moves
// tables in and out of arrow-go records.
//
// Key components:
//   - Table, an ordered set of equal-length named columns
//   - ToRecord/FromRecord/FromArrowTable for exchange with arrow-go
//   - String and Format for human-readable rendering
//
// Tables are immutable. Slicing shares the column buffers.
package table

import (
	"github.com/paveg/columnar/internal/array"
	"github.com/paveg/columnar/internal/validation"
)

// Column is a named array.
type Column struct {
	Name   string
	Values array.Array
}

// Table is an ordered set of columns of equal length.
type Table struct {
	columns []Column
	index   map[string]int
	length  int
}

// New creates a table. Column names must be unique and every column must
// have the same length.
func New(columns ...Column) (*Table, error) {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	validators := []validation.Validator{validation.NewUniqueNamesValidator("new table", names...)}
	for _, c := range columns[min(1, len(columns)):] {
		validators = append(validators, validation.NewLengthValidator(columns[0].Values.Len(), c.Values.Len(), "new table"))
	}
	if err := validation.NewCompoundValidator(validators...).Validate(); err != nil {
		return nil, err
	}

	t := &Table{
		columns: columns,
		index:   make(map[string]int, len(columns)),
	}
	if len(columns) > 0 {
		t.length = columns[0].Values.Len()
	}
	for i, c := range columns {
		t.index[c.Name] = i
	}
	return t, nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return t.length }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.columns) }

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether the table has a column called name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the values of the named column.
func (t *Table) Column(name string) (array.Array, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i].Values, true
}

// ColumnAt returns column i.
func (t *Table) ColumnAt(i int) Column { return t.columns[i] }

// Select returns a table with only the named columns, in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	if err := validation.ValidateColumns(t, "select", names...); err != nil {
		return nil, err
	}
	columns := make([]Column, len(names))
	for i, name := range names {
		columns[i] = t.columns[t.index[name]]
	}
	return New(columns...)
}

// Slice returns rows [offset, offset+length) of every column without copying.
func (t *Table) Slice(offset, length int) *Table {
	columns := make([]Column, len(t.columns))
	for i, c := range t.columns {
		columns[i] = Column{Name: c.Name, Values: c.Values.Slice(offset, length)}
	}
	return &Table{columns: columns, index: t.index, length: length}
}
