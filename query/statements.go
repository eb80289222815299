package query

import (
	"strings"

	"github.com/satishbabariya/ormcore/dialect"
	"github.com/satishbabariya/ormcore/ormerr"
)

// InsertBuilder builds an INSERT statement.
type InsertBuilder struct {
	dialect   dialect.Dialect
	table     string
	columns   []string
	rows      [][]any
	ignore    bool
	key       string
	returning []string
}

// Insert starts an INSERT into table.
func Insert(d dialect.Dialect, table string) *InsertBuilder {
	return &InsertBuilder{dialect: d, table: table}
}

// Columns sets the inserted columns.
func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append(b.columns, columns...)
	return b
}

// Values appends one row of values, in column order.
func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, values)
	return b
}

// OnConflictIgnore makes the insert skip rows that violate a unique constraint. Other
// failures still raise. key names the table's primary key; MySQL needs it for its clause.
func (b *InsertBuilder) OnConflictIgnore(key string) *InsertBuilder {
	b.ignore = true
	b.key = key
	return b
}

// Returning adds a RETURNING clause; "*" returns every column.
func (b *InsertBuilder) Returning(columns ...string) *InsertBuilder {
	b.returning = append(b.returning, columns...)
	return b
}

// Render assembles the statement and its arguments.
func (b *InsertBuilder) Render() (string, []any, error) {
	d := b.dialect
	if len(b.columns) == 0 {
		return "", nil, ormerr.NewConfigurationError("insert into %s: no columns", b.table)
	}
	if len(b.rows) == 0 {
		return "", nil, ormerr.NewConfigurationError("insert into %s: no values", b.table)
	}
	if len(b.returning) > 0 && !d.SupportsReturning() {
		return "", nil, ormerr.NewConfigurationError("insert into %s: %s does not support RETURNING", b.table, d)
	}

	var suffix string
	if b.ignore {
		clause, err := d.IgnoreDuplicates(b.key)
		if err != nil {
			return "", nil, ormerr.NewConfigurationError("insert into %s: %v", b.table, err)
		}
		suffix = clause
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(d.Quote(b.table))
	sb.WriteString(" (")
	sb.WriteString(quoteAll(d, b.columns))
	sb.WriteString(") VALUES ")

	markers := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(b.columns)), ", ") + ")"
	var args []any
	for i, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, ormerr.NewConfigurationError("insert into %s: row %d has %d values for %d columns",
				b.table, i, len(row), len(b.columns))
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(markers)
		args = append(args, row...)
	}

	if suffix != "" {
		sb.WriteString(" ")
		sb.WriteString(suffix)
	}
	if len(b.returning) > 0 {
		sb.WriteString(" RETURNING ")
		sb.WriteString(returningList(d, b.returning))
	}
	return finalize(d, sb.String(), args)
}

type assignment struct {
	column string
	value  any
}

// UpdateBuilder builds an UPDATE statement.
type UpdateBuilder struct {
	dialect   dialect.Dialect
	table     string
	set       []assignment
	where     []string
	whereArgs []any
}

// Update starts an UPDATE of table.
func Update(d dialect.Dialect, table string) *UpdateBuilder {
	return &UpdateBuilder{dialect: d, table: table}
}

// Set assigns value to column.
func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.set = append(b.set, assignment{column: column, value: value})
	return b
}

// Where adds a predicate; at least one is required.
func (b *UpdateBuilder) Where(predicate string, args ...any) *UpdateBuilder {
	b.where = append(b.where, predicate)
	b.whereArgs = append(b.whereArgs, args...)
	return b
}

// Render assembles the statement and its arguments.
func (b *UpdateBuilder) Render() (string, []any, error) {
	d := b.dialect
	if len(b.set) == 0 {
		return "", nil, ormerr.NewConfigurationError("update %s: nothing to set", b.table)
	}
	if len(b.where) == 0 {
		return "", nil, ormerr.NewConfigurationError("update %s: refusing to update without a predicate", b.table)
	}

	sets := make([]string, len(b.set))
	args := make([]any, 0, len(b.set)+len(b.whereArgs))
	for i, a := range b.set {
		sets[i] = d.Quote(a.column) + " = ?"
		args = append(args, a.value)
	}
	args = append(args, b.whereArgs...)

	sql := "UPDATE " + d.Quote(b.table) + " SET " + strings.Join(sets, ", ") + " WHERE " + conjunction(b.where)
	return finalize(d, sql, args)
}

// DeleteBuilder builds a DELETE statement.
type DeleteBuilder struct {
	dialect dialect.Dialect
	table   string
	where   []string
	args    []any
}

// Delete starts a DELETE from table.
func Delete(d dialect.Dialect, table string) *DeleteBuilder {
	return &DeleteBuilder{dialect: d, table: table}
}

// Where adds a predicate; at least one is required.
func (b *DeleteBuilder) Where(predicate string, args ...any) *DeleteBuilder {
	b.where = append(b.where, predicate)
	b.args = append(b.args, args...)
	return b
}

// Render assembles the statement and its arguments.
func (b *DeleteBuilder) Render() (string, []any, error) {
	if len(b.where) == 0 {
		return "", nil, ormerr.NewConfigurationError("delete from %s: refusing to delete without a predicate", b.table)
	}
	sql := "DELETE FROM " + b.dialect.Quote(b.table) + " WHERE " + conjunction(b.where)
	return finalize(b.dialect, sql, b.args)
}

func quoteAll(d dialect.Dialect, columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.Quote(c)
	}
	return strings.Join(quoted, ", ")
}

func returningList(d dialect.Dialect, columns []string) string {
	if len(columns) == 1 && columns[0] == "*" {
		return "*"
	}
	return quoteAll(d, columns)
}
