// Package executor runs rendered statements on a caller-supplied database handle and maps the
// results to records. It never opens transactions and never retries: every statement of one
// operation runs sequentially on the handle it was given.
package executor

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"

	"github.com/satishbabariya/ormcore/decode"
	"github.com/satishbabariya/ormcore/dialect"
	"github.com/satishbabariya/ormcore/internal/debug"
	"github.com/satishbabariya/ormcore/ormerr"
	"github.com/satishbabariya/ormcore/query"
	"github.com/satishbabariya/ormcore/schema"
)

// Executor is the database handle statements run on. *sql.DB, *sql.Tx and *sql.Conn satisfy it.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Model is implemented by records that are written through the executor.
type Model interface {
	TableName() string
}

// Session binds an Executor to a dialect and the table metadata of the records it handles.
type Session struct {
	ex      Executor
	dialect dialect.Dialect
	schema  *schema.Schema
}

// New creates a session.
func New(ex Executor, d dialect.Dialect, s *schema.Schema) *Session {
	return &Session{ex: ex, dialect: d, schema: s}
}

// WithExecutor returns a copy of the session that runs on ex, typically a transaction.
func (s *Session) WithExecutor(ex Executor) *Session {
	c := *s
	c.ex = ex
	return &c
}

// Dialect returns the session dialect.
func (s *Session) Dialect() dialect.Dialect {
	return s.dialect
}

// Schema returns the session table metadata.
func (s *Session) Schema() *schema.Schema {
	return s.schema
}

// Select starts a query on table in the session dialect.
func (s *Session) Select(table string) *query.Builder {
	return query.Select(s.dialect, table)
}

// Query renders b, runs it and returns every row.
func Query(ctx context.Context, s *Session, b *query.Builder) ([]decode.Row, error) {
	sqlText, args, err := b.Render()
	if err != nil {
		return nil, err
	}
	return s.query(ctx, "query", b.Table(), sqlText, args)
}

func (s *Session) query(ctx context.Context, op, table, sqlText string, args []any) ([]decode.Row, error) {
	rows, err := s.ex.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, ormerr.NewQueryError(op, table, sqlText, err)
	}
	out, err := decode.ScanAll(rows)
	if err != nil {
		return nil, ormerr.NewQueryError(op, table, sqlText, err)
	}
	debug.Debug("query executed", "op", op, "table", table, "rows", len(out))
	return out, nil
}

func (s *Session) exec(ctx context.Context, op, table, sqlText string, args []any) (sql.Result, error) {
	res, err := s.ex.ExecContext(ctx, sqlText, args...)
	if err != nil {
		return nil, ormerr.NewQueryError(op, table, sqlText, err)
	}
	return res, nil
}

func (s *Session) table(name string) (*schema.Table, error) {
	if s.schema == nil {
		return nil, ormerr.NewConfigurationError("no schema loaded for table %s", name)
	}
	t, ok := s.schema.Table(name)
	if !ok {
		return nil, ormerr.NewConfigurationError("unknown table %s", name)
	}
	return t, nil
}

// tableFor resolves the table of an addressable record value.
func (s *Session) tableFor(v reflect.Value) (*schema.Table, error) {
	m, ok := v.Interface().(Model)
	if !ok {
		if v.CanAddr() {
			m, ok = v.Addr().Interface().(Model)
		}
		if !ok {
			return nil, ormerr.NewConfigurationError("%s does not implement TableName", v.Type())
		}
	}
	return s.table(m.TableName())
}

func record[T any](v *T) (reflect.Value, error) {
	if v == nil {
		return reflect.Value{}, fmt.Errorf("nil %T", v)
	}
	rv := reflect.ValueOf(v).Elem()
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("record must be a struct, got %s", rv.Type())
	}
	return rv, nil
}
