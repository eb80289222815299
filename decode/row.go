package decode

import (
	"database/sql"
	"fmt"
)

// Row is a single result row addressed by column name.
type Row interface {
	// Columns returns every column name in result order.
	Columns() []string
	// Value returns the value of the named column and whether the column exists.
	Value(column string) (any, bool)
}

type row struct {
	columns []string
	values  map[string]any
}

// NewRow builds a Row from parallel column and value slices. Columns without a matching
// value are reported as present with a nil value.
func NewRow(columns []string, values []any) Row {
	r := &row{
		columns: append([]string(nil), columns...),
		values:  make(map[string]any, len(columns)),
	}
	for i, col := range columns {
		var v any
		if i < len(values) {
			v = values[i]
		}
		r.values[col] = v
	}
	return r
}

func (r *row) Columns() []string {
	return r.columns
}

func (r *row) Value(column string) (any, bool) {
	v, ok := r.values[column]
	return v, ok
}

// ScanRow reads the current row of rows. Byte slices are copied since the driver may reuse
// them on the next call to Next.
func ScanRow(rows *sql.Rows) (Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	for i, v := range values {
		if b, ok := v.([]byte); ok {
			values[i] = append([]byte(nil), b...)
		}
	}
	return NewRow(columns, values), nil
}

// ScanAll reads every remaining row and closes rows.
func ScanAll(rows *sql.Rows) ([]Row, error) {
	defer rows.Close()

	var out []Row
	for rows.Next() {
		r, err := ScanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}
	return out, nil
}
