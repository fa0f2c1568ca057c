package table

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	arrowarray "github.com/apache/arrow-go/v18/arrow/array"

	"github.com/paveg/columnar/internal/array"
	"github.com/paveg/columnar/internal/compute"
	"github.com/paveg/columnar/internal/interop"
)

// ToRecord exposes t as an arrow-go record batch without copying column
// buffers. Every field is nullable. The caller must Release the record.
func (t *Table) ToRecord() (arrow.Record, error) {
	fields := make([]arrow.Field, len(t.columns))
	cols := make([]arrow.Array, len(t.columns))
	defer func() {
		// the record holds its own references
		for _, c := range cols {
			if c != nil {
				c.Release()
			}
		}
	}()
	for i, column := range t.columns {
		arr, err := interop.ToArrow(column.Values)
		if err != nil {
			return nil, fmt.Errorf("converting column %s: %w", column.Name, err)
		}
		cols[i] = arr
		fields[i] = arrow.Field{Name: column.Name, Type: arr.DataType(), Nullable: true}
	}

	schema := arrow.NewSchema(fields, nil)
	return arrowarray.NewRecord(schema, cols, int64(t.length)), nil
}

// FromRecord copies an arrow-go record batch into a table.
func FromRecord(rec arrow.Record) (*Table, error) {
	columns := make([]Column, rec.NumCols())
	for i := range columns {
		name := rec.ColumnName(i)
		values, err := interop.FromArrow(rec.Column(i))
		if err != nil {
			return nil, fmt.Errorf("converting column %s: %w", name, err)
		}
		columns[i] = Column{Name: name, Values: values}
	}
	return New(columns...)
}

// FromArrowTable copies an arrow-go table into a table, concatenating the
// chunks of every column.
func FromArrowTable(tbl arrow.Table) (*Table, error) {
	columns := make([]Column, tbl.NumCols())
	for i := range columns {
		field := tbl.Schema().Field(i)
		values, err := fromChunked(field.Type, tbl.Column(i).Data().Chunks())
		if err != nil {
			return nil, fmt.Errorf("converting column %s: %w", field.Name, err)
		}
		columns[i] = Column{Name: field.Name, Values: values}
	}
	return New(columns...)
}

// fromChunked converts and concatenates the chunks of one column.
func fromChunked(dt arrow.DataType, chunks []arrow.Array) (array.Array, error) {
	if len(chunks) == 0 {
		return array.NewEmpty(dt), nil
	}
	parts := make([]array.Array, len(chunks))
	for i, chunk := range chunks {
		part, err := interop.FromArrow(chunk)
		if err != nil {
			return nil, err
		}
		parts[i] = part
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return compute.Concat(parts...)
}
