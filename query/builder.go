// Package query assembles dialect-correct SQL from composable clause fragments and validates
// that the bound arguments match the placeholders the final text declares.
package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/satishbabariya/ormcore/decode"
	"github.com/satishbabariya/ormcore/dialect"
	"github.com/satishbabariya/ormcore/internal/debug"
	"github.com/satishbabariya/ormcore/ormerr"
	"github.com/satishbabariya/ormcore/schema"
)

// Direction is an ORDER BY direction.
type Direction string

const (
	// Asc sorts ascending.
	Asc Direction = "ASC"
	// Desc sorts descending.
	Desc Direction = "DESC"
)

// group is a clause group in canonical render order. Arguments are kept per group so that
// the final argument list follows placeholder order no matter which order clauses were added.
type group int

const (
	groupWith group = iota
	groupSelect
	groupJoin
	groupWhere
	groupGroupBy
	groupOrderBy
	groupHaving
	numGroups
)

type cte struct {
	name string
	body string
}

type ordering struct {
	clause    string
	direction Direction
}

// Builder accumulates the clauses of one SELECT statement. Columns, predicates and join
// fragments are opaque text; only their placeholders are interpreted, at Render time.
type Builder struct {
	dialect dialect.Dialect
	table   string

	ctes       []cte
	columns    []string
	relColumns []string
	joins      []string
	joined     map[string]bool
	where      []string
	groupBy    []string
	orderBy    []ordering
	having     []string
	limit      *int
	offset     *int

	args [numGroups][]any
	last group
	err  error
}

// Select starts a SELECT over table.
func Select(d dialect.Dialect, table string) *Builder {
	return &Builder{
		dialect: d,
		table:   table,
		last:    groupWhere,
	}
}

// Table returns the table the query selects from.
func (b *Builder) Table() string {
	return b.table
}

// Dialect returns the dialect the query renders for.
func (b *Builder) Dialect() dialect.Dialect {
	return b.dialect
}

// With adds a named common table expression.
func (b *Builder) With(name, body string, args ...any) *Builder {
	b.ctes = append(b.ctes, cte{name: name, body: body})
	return b.bind(groupWith, args)
}

// Columns appends to the select list. Without any columns the query selects "table".*.
func (b *Builder) Columns(columns ...string) *Builder {
	b.columns = append(b.columns, columns...)
	return b.bind(groupSelect, nil)
}

// Join appends a raw join fragment, e.g. `INNER JOIN "team" ON "team"."id" = "person"."team_id"`.
func (b *Builder) Join(fragment string, args ...any) *Builder {
	b.joins = append(b.joins, fragment)
	return b.bind(groupJoin, args)
}

// JoinRelation eagerly joins a many-to-one relation. The LEFT JOIN fragment and the aliased
// related columns (__rel__col) are added together.
func (b *Builder) JoinRelation(rel schema.Relation) *Builder {
	if rel.Kind != schema.ManyToOne {
		return b.fail(ormerr.NewConfigurationError("relation %s is %s; only many-to-one relations can be eagerly joined", rel.Name, rel.Kind))
	}
	if len(rel.Columns) == 0 {
		return b.fail(ormerr.NewConfigurationError("relation %s has no columns to select", rel.Name))
	}
	if b.joined[rel.Name] {
		return b.fail(ormerr.NewConfigurationError("relation %s is already joined", rel.Name))
	}

	d := b.dialect
	cols := make([]string, len(rel.Columns))
	for i, col := range rel.Columns {
		cols[i] = d.QuoteQualified(rel.Name, col) + " AS " + d.Quote(decode.Alias(rel.Name, col))
	}
	join := fmt.Sprintf("LEFT JOIN %s AS %s ON %s = %s",
		d.Quote(rel.Table), d.Quote(rel.Name),
		d.QuoteQualified(b.table, rel.LocalKey), d.QuoteQualified(rel.Name, rel.ForeignKey))

	if b.joined == nil {
		b.joined = make(map[string]bool)
	}
	b.joined[rel.Name] = true
	b.joins = append(b.joins, join)
	b.relColumns = append(b.relColumns, cols...)
	b.last = groupJoin
	return b
}

// Where adds a predicate. Predicates are AND-ed and each is parenthesized.
func (b *Builder) Where(predicate string, args ...any) *Builder {
	b.where = append(b.where, predicate)
	return b.bind(groupWhere, args)
}

// GroupBy appends GROUP BY expressions.
func (b *Builder) GroupBy(columns ...string) *Builder {
	b.groupBy = append(b.groupBy, columns...)
	return b.bind(groupGroupBy, nil)
}

// OrderBy appends an ORDER BY clause.
func (b *Builder) OrderBy(clause string, direction Direction) *Builder {
	b.orderBy = append(b.orderBy, ordering{clause: clause, direction: direction})
	return b.bind(groupOrderBy, nil)
}

// Having adds a HAVING predicate. Predicates are AND-ed and each is parenthesized.
func (b *Builder) Having(predicate string, args ...any) *Builder {
	b.having = append(b.having, predicate)
	return b.bind(groupHaving, args)
}

// Limit sets the LIMIT.
func (b *Builder) Limit(n int) *Builder {
	if n < 0 {
		return b.fail(ormerr.NewConfigurationError("negative limit %d", n))
	}
	b.limit = &n
	return b
}

// Offset sets the OFFSET.
func (b *Builder) Offset(n int) *Builder {
	if n < 0 {
		return b.fail(ormerr.NewConfigurationError("negative offset %d", n))
	}
	b.offset = &n
	return b
}

// Bind appends arguments for the placeholders of the most recently added clause
// (WHERE when nothing has been added yet). Columns counts as a clause, so arguments for
// markers in the select list are bound right after Columns.
//
// Render checks only the total number of arguments against the placeholders. Arguments
// bound to the wrong clause still render when the totals agree, and then fill the markers
// in render order.
func (b *Builder) Bind(args ...any) *Builder {
	b.args[b.last] = append(b.args[b.last], args...)
	return b
}

// Err returns the first configuration error recorded while building.
func (b *Builder) Err() error {
	return b.err
}

// Clone returns a deep copy of the builder.
func (b *Builder) Clone() *Builder {
	c := *b
	c.ctes = append([]cte(nil), b.ctes...)
	c.columns = append([]string(nil), b.columns...)
	c.relColumns = append([]string(nil), b.relColumns...)
	c.joins = append([]string(nil), b.joins...)
	c.where = append([]string(nil), b.where...)
	c.groupBy = append([]string(nil), b.groupBy...)
	c.orderBy = append([]ordering(nil), b.orderBy...)
	c.having = append([]string(nil), b.having...)
	if b.joined != nil {
		c.joined = make(map[string]bool, len(b.joined))
		for k, v := range b.joined {
			c.joined[k] = v
		}
	}
	for i := range b.args {
		c.args[i] = append([]any(nil), b.args[i]...)
	}
	return &c
}

// Render assembles the statement and the matching argument list. A mismatch between the
// placeholders in the text and the bound arguments is an *ormerr.ConfigurationError.
func (b *Builder) Render() (string, []any, error) {
	if b.err != nil {
		return "", nil, b.err
	}

	d := b.dialect
	var parts []string

	if len(b.ctes) > 0 {
		defs := make([]string, len(b.ctes))
		for i, c := range b.ctes {
			defs[i] = fmt.Sprintf("%s AS (%s)", d.Quote(c.name), c.body)
		}
		parts = append(parts, "WITH "+strings.Join(defs, ", "))
	}

	selectList := b.columns
	if len(selectList) == 0 {
		selectList = []string{d.Quote(b.table) + ".*"}
	}
	selectList = append(append([]string(nil), selectList...), b.relColumns...)
	parts = append(parts, "SELECT "+strings.Join(selectList, ", "))
	parts = append(parts, "FROM "+d.Quote(b.table))

	parts = append(parts, b.joins...)
	if len(b.where) > 0 {
		parts = append(parts, "WHERE "+conjunction(b.where))
	}
	if len(b.groupBy) > 0 {
		parts = append(parts, "GROUP BY "+strings.Join(b.groupBy, ", "))
	}
	if len(b.orderBy) > 0 {
		clauses := make([]string, len(b.orderBy))
		for i, o := range b.orderBy {
			clauses[i] = o.clause + " " + string(o.direction)
		}
		parts = append(parts, "ORDER BY "+strings.Join(clauses, ", "))
	}
	if len(b.having) > 0 {
		parts = append(parts, "HAVING "+conjunction(b.having))
	}
	parts = append(parts, b.limitOffset()...)

	var args []any
	for _, g := range b.args {
		args = append(args, g...)
	}
	return finalize(d, strings.Join(parts, " "), args)
}

func (b *Builder) limitOffset() []string {
	var parts []string
	switch {
	case b.limit != nil:
		parts = append(parts, "LIMIT "+strconv.Itoa(*b.limit))
	case b.offset != nil && b.dialect.Name() == dialect.MySQL:
		parts = append(parts, "LIMIT 18446744073709551615")
	case b.offset != nil && b.dialect.Name() == dialect.SQLite:
		parts = append(parts, "LIMIT -1")
	}
	if b.offset != nil {
		parts = append(parts, "OFFSET "+strconv.Itoa(*b.offset))
	}
	return parts
}

func (b *Builder) bind(g group, args []any) *Builder {
	b.last = g
	b.args[g] = append(b.args[g], args...)
	return b
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

func conjunction(predicates []string) string {
	wrapped := make([]string, len(predicates))
	for i, p := range predicates {
		wrapped[i] = "(" + p + ")"
	}
	return strings.Join(wrapped, " AND ")
}

// finalize rewrites placeholders for the dialect and checks the argument count.
func finalize(d dialect.Dialect, sql string, args []any) (string, []any, error) {
	out, placeholders, err := lexerFor(d).rewrite(d, sql)
	if err != nil {
		return "", nil, ormerr.NewConfigurationError("%v", err)
	}
	if placeholders != len(args) {
		return "", nil, &ormerr.ConfigurationError{Placeholders: placeholders, Arguments: len(args)}
	}

	debug.Debug("rendered query", "dialect", d.String(), "sql", out, "args", len(args))
	return out, args, nil
}
