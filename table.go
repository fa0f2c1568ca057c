package columnar

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/paveg/columnar/internal/table"
)

type (
	// Table is an ordered set of equal-length named columns.
	Table = table.Table
	// Column is a named array.
	Column = table.Column
)

// NewTable creates a Table. Column names must be unique and all columns
// must have the same length.
func NewTable(columns ...Column) (*Table, error) {
	return table.New(columns...)
}

// TableFromRecord copies an arrow-go record batch into a Table.
func TableFromRecord(rec arrow.Record) (*Table, error) {
	return table.FromRecord(rec)
}

// TableFromArrow copies an arrow-go table into a Table, concatenating the
// chunks of every column.
func TableFromArrow(tbl arrow.Table) (*Table, error) {
	return table.FromArrowTable(tbl)
}
