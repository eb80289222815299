package executor

import (
	"context"

	"github.com/satishbabariya/ormcore/decode"
	"github.com/satishbabariya/ormcore/ormerr"
	"github.com/satishbabariya/ormcore/query"
	"github.com/satishbabariya/ormcore/relation"
)

// Update writes every non-key column of v by primary key. Relation cells contribute their
// identifier; pending relation values are not written.
func Update[T Model](ctx context.Context, s *Session, v *T) error {
	rv, err := record(v)
	if err != nil {
		return err
	}
	t, err := s.tableFor(rv)
	if err != nil {
		return err
	}
	pk, ok, err := keyField(rv, t)
	if err != nil {
		return err
	}
	if !ok {
		return ormerr.NewConfigurationError("%s has no field for primary key %s", rv.Type(), t.PrimaryKey)
	}

	fields, err := decode.Fields(rv.Type())
	if err != nil {
		return err
	}
	b := query.Update(s.dialect, t.Name)
	for _, f := range fields {
		if f.Column == t.PrimaryKey {
			continue
		}
		if _, ok := t.Column(f.Column); !ok {
			continue
		}
		fv := rv.FieldByIndex(f.Index)
		if f.IsRelation() {
			slot, _ := relation.AsSlot(fv)
			b.Set(f.Column, slot.IDValue())
			continue
		}
		b.Set(f.Column, fv.Interface())
	}
	b.Where(s.dialect.Quote(t.PrimaryKey)+" = ?", pk.Interface())

	return s.writeOne(ctx, "update", t.Name, b)
}

// Delete removes v by primary key.
func Delete[T Model](ctx context.Context, s *Session, v *T) error {
	rv, err := record(v)
	if err != nil {
		return err
	}
	t, err := s.tableFor(rv)
	if err != nil {
		return err
	}
	pk, ok, err := keyField(rv, t)
	if err != nil {
		return err
	}
	if !ok {
		return ormerr.NewConfigurationError("%s has no field for primary key %s", rv.Type(), t.PrimaryKey)
	}

	b := query.Delete(s.dialect, t.Name).Where(s.dialect.Quote(t.PrimaryKey)+" = ?", pk.Interface())
	return s.writeOne(ctx, "delete", t.Name, b)
}

type renderer interface {
	Render() (string, []any, error)
}

// writeOne runs a statement that must affect a row; zero affected rows is an
// *ormerr.NotFoundError.
func (s *Session) writeOne(ctx context.Context, op, table string, b renderer) error {
	sqlText, args, err := b.Render()
	if err != nil {
		return err
	}
	res, err := s.exec(ctx, op, table, sqlText, args)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return ormerr.NewQueryError(op, table, sqlText, err)
	}
	if n == 0 {
		return &ormerr.NotFoundError{Table: table}
	}
	return nil
}
