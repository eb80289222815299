package executor

import (
	"context"
	"reflect"

	"github.com/satishbabariya/ormcore/decode"
	"github.com/satishbabariya/ormcore/ormerr"
	"github.com/satishbabariya/ormcore/query"
)

// FetchAll runs b and decodes every row, materializing eager-joined relations.
func FetchAll[T any](ctx context.Context, s *Session, b *query.Builder) ([]*T, error) {
	rows, err := Query(ctx, s, b)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(rows))
	for _, row := range rows {
		v, err := decode.DecodeWithJoins[T](row)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// FetchOne runs b and decodes the first row. Zero rows is an *ormerr.NotFoundError.
func FetchOne[T any](ctx context.Context, s *Session, b *query.Builder) (*T, error) {
	v, err := FetchOptional[T](ctx, s, b)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, &ormerr.NotFoundError{Table: b.Table()}
	}
	return v, nil
}

// FetchOptional runs b and decodes the first row, or returns nil when there is none.
func FetchOptional[T any](ctx context.Context, s *Session, b *query.Builder) (*T, error) {
	rows, err := Query(ctx, s, b.Clone().Limit(1))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return decode.DecodeWithJoins[T](rows[0])
}

// FetchByID loads the record of T whose primary key is id.
func FetchByID[T Model](ctx context.Context, s *Session, id any) (*T, error) {
	var zero T
	t, err := s.table(zero.TableName())
	if err != nil {
		return nil, err
	}
	return FetchOne[T](ctx, s, s.byKey(t.Name, t.PrimaryKey, id))
}

func (s *Session) byKey(table, column string, key any) *query.Builder {
	return s.Select(table).Where(s.dialect.QuoteQualified(table, column)+" = ?", key)
}

// fetchInto loads the row of table where column = key into the addressable record v.
func (s *Session) fetchInto(ctx context.Context, v reflect.Value, table, column string, key any) error {
	rows, err := Query(ctx, s, s.byKey(table, column, key).Limit(1))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return &ormerr.NotFoundError{Table: table}
	}
	return decode.IntoWithJoins(rows[0], v.Addr().Interface())
}
