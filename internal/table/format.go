package table

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// String returns the shape and schema of the table.
func (t *Table) String() string {
	if len(t.columns) == 0 {
		return "Table[empty]"
	}

	parts := []string{fmt.Sprintf("Table[%dx%d]", t.Len(), t.Width())}
	for _, c := range t.columns {
		parts = append(parts, fmt.Sprintf("  %s: %s", c.Name, c.Values.DataType()))
	}
	return strings.Join(parts, "\n")
}

// Format writes up to maxRows rows of t as aligned text with a header line.
// A negative maxRows writes every row.
func (t *Table) Format(w io.Writer, maxRows int) error {
	rows := t.Len()
	if maxRows >= 0 && maxRows < rows {
		rows = maxRows
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Columns(), "\t"))

	cells := make([]string, len(t.columns))
	for r := range rows {
		for c, col := range t.columns {
			s, err := FormatValue(col.Values, r)
			if err != nil {
				return fmt.Errorf("formatting column %s: %w", col.Name, err)
			}
			cells[c] = s
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if rows < t.Len() {
		fmt.Fprintf(tw, "... %d more rows\n", t.Len()-rows)
	}
	return tw.Flush()
}
