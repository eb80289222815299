package executor

import (
	"context"
	"database/sql"
	"reflect"

	"github.com/satishbabariya/ormcore/decode"
	"github.com/satishbabariya/ormcore/dialect"
	"github.com/satishbabariya/ormcore/internal/convert"
	"github.com/satishbabariya/ormcore/internal/debug"
	"github.com/satishbabariya/ormcore/ormerr"
	"github.com/satishbabariya/ormcore/query"
	"github.com/satishbabariya/ormcore/relation"
	"github.com/satishbabariya/ormcore/schema"
)

// Insert writes v after cascading its pending many-to-one relations. Columns the database
// fills in (defaults, generated keys) are read back into v.
//
// When the dialect skips duplicates with savepoints (PostgreSQL before 9.5, SQLite before
// 3.24) a cascade must run on a *sql.Tx or *sql.Conn; a pooled *sql.DB is rejected.
func Insert[T Model](ctx context.Context, s *Session, v *T) error {
	rv, err := record(v)
	if err != nil {
		return err
	}
	t, err := s.tableFor(rv)
	if err != nil {
		return err
	}
	if err := s.cascade(ctx, rv, t); err != nil {
		return err
	}
	_, err = s.insertRow(ctx, rv, t, false)
	return err
}

// Cascade writes the pending many-to-one relations of v without writing v itself.
//
// For every Pending cell the related record is inserted, ignoring a duplicate key. When it is
// inserted the cell becomes Loaded with the stored row. On a duplicate key the stored row is
// fetched by the cell's identifier and adopted instead; the local value is discarded. Any
// other failure puts the value back, leaves the cell Pending and aborts. Loaded and Unloaded
// cells are left alone, so running Cascade twice writes nothing the second time.
func Cascade[T Model](ctx context.Context, s *Session, v *T) error {
	rv, err := record(v)
	if err != nil {
		return err
	}
	t, err := s.tableFor(rv)
	if err != nil {
		return err
	}
	return s.cascade(ctx, rv, t)
}

func (s *Session) cascade(ctx context.Context, v reflect.Value, t *schema.Table) error {
	fields, err := decode.Fields(v.Type())
	if err != nil {
		return err
	}

	for _, f := range fields {
		if !f.IsRelation() {
			continue
		}
		slot, _ := relation.AsSlot(v.FieldByIndex(f.Index))
		if slot.State() != relation.StatePending {
			debug.Debug("cascade skipped", "table", t.Name, "relation", f.Relation, "state", slot.State().String())
			continue
		}

		rel, ok := t.Relation(f.Relation)
		if !ok {
			return ormerr.NewConfigurationError("table %s has no relation %s", t.Name, f.Relation)
		}
		if rel.Kind != schema.ManyToOne {
			return ormerr.NewConfigurationError("relation %s is %s; only many-to-one relations cascade", rel.Name, rel.Kind)
		}
		related, err := s.table(rel.Table)
		if err != nil {
			return err
		}

		if err := s.cascadeOne(ctx, slot, rel, related); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) cascadeOne(ctx context.Context, slot relation.Slot, rel schema.Relation, related *schema.Table) error {
	value, _ := slot.TakePending()
	restore := func(err error) error {
		if rerr := slot.RestorePending(value); rerr != nil {
			return rerr
		}
		return err
	}

	if err := s.cascade(ctx, value, related); err != nil {
		return restore(err)
	}

	inserted, err := s.insertRow(ctx, value, related, true)
	if err != nil {
		return restore(err)
	}
	if inserted {
		debug.Debug("cascade inserted", "relation", rel.Name, "table", related.Name)
		return slot.LoadValue(value)
	}

	key := slot.IDValue()
	existing := reflect.New(value.Type()).Elem()
	if err := s.fetchInto(ctx, existing, related.Name, rel.ForeignKey, key); err != nil {
		return restore(&ormerr.ConflictError{Table: related.Name, Cause: err})
	}
	debug.Debug("cascade adopted existing row", "relation", rel.Name, "table", related.Name, "key", key)
	return slot.LoadValue(existing)
}

// insertRow inserts the record v into t and reads generated columns back into v. With
// ignoreConflict a duplicate key is not an error and insertRow reports false instead.
func (s *Session) insertRow(ctx context.Context, v reflect.Value, t *schema.Table, ignoreConflict bool) (bool, error) {
	columns, values, err := insertValues(v, t)
	if err != nil {
		return false, err
	}

	if ignoreConflict && s.dialect.ConflictStrategy() == dialect.ConflictSavepoint {
		return s.insertWithSavepoint(ctx, v, t, columns, values)
	}

	b := query.Insert(s.dialect, t.Name).Columns(columns...).Values(values...)
	if ignoreConflict {
		b.OnConflictIgnore(t.PrimaryKey)
	}
	return s.runInsert(ctx, v, t, b)
}

func (s *Session) runInsert(ctx context.Context, v reflect.Value, t *schema.Table, b *query.InsertBuilder) (bool, error) {
	if s.dialect.SupportsReturning() {
		sqlText, args, err := b.Returning("*").Render()
		if err != nil {
			return false, err
		}
		rows, err := s.query(ctx, "insert", t.Name, sqlText, args)
		if err != nil {
			return false, err
		}
		if len(rows) == 0 {
			return false, nil
		}
		return true, refresh(v, rows[0])
	}

	sqlText, args, err := b.Render()
	if err != nil {
		return false, err
	}
	res, err := s.exec(ctx, "insert", t.Name, sqlText, args)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, ormerr.NewQueryError("insert", t.Name, sqlText, err)
	}
	if affected == 0 {
		return false, nil
	}
	return true, s.reload(ctx, v, t, res)
}

// reload reads a row written without RETURNING back into v, taking a generated key from
// LastInsertId when v has none.
func (s *Session) reload(ctx context.Context, v reflect.Value, t *schema.Table, res sql.Result) error {
	pk, ok, err := keyField(v, t)
	if err != nil || !ok {
		return err
	}
	if pk.IsZero() {
		id, err := res.LastInsertId()
		if err != nil {
			return ormerr.NewQueryError("insert", t.Name, "", err)
		}
		if err := convert.Assign(pk, id); err != nil {
			return err
		}
	}

	fresh := reflect.New(v.Type()).Elem()
	if err := s.fetchInto(ctx, fresh, t.Name, t.PrimaryKey, pk.Interface()); err != nil {
		return err
	}
	return copyColumns(v, fresh)
}

// insertValues lists the columns of t held by v. Columns with a database default are omitted
// while v holds the zero value for them.
func insertValues(v reflect.Value, t *schema.Table) ([]string, []any, error) {
	fields, err := decode.Fields(v.Type())
	if err != nil {
		return nil, nil, err
	}

	var (
		columns []string
		values  []any
	)
	for _, f := range fields {
		col, ok := t.Column(f.Column)
		if !ok {
			continue
		}
		fv := v.FieldByIndex(f.Index)
		if f.IsRelation() {
			slot, _ := relation.AsSlot(fv)
			columns = append(columns, col.Name)
			values = append(values, slot.IDValue())
			continue
		}
		if col.HasDefault && fv.IsZero() {
			continue
		}
		columns = append(columns, col.Name)
		values = append(values, fv.Interface())
	}
	if len(columns) == 0 {
		return nil, nil, ormerr.NewConfigurationError("%s maps no columns of table %s", v.Type(), t.Name)
	}
	return columns, values, nil
}

// refresh copies the plain columns of a returned row into v. Relation cells keep their state.
func refresh(v reflect.Value, row decode.Row) error {
	fields, err := decode.Fields(v.Type())
	if err != nil {
		return err
	}
	for _, f := range fields {
		if f.IsRelation() {
			continue
		}
		val, ok := row.Value(f.Column)
		if !ok {
			continue
		}
		if err := convert.Assign(v.FieldByIndex(f.Index), val); err != nil {
			return err
		}
	}
	return nil
}

// copyColumns copies the plain fields of src into dst.
func copyColumns(dst, src reflect.Value) error {
	fields, err := decode.Fields(dst.Type())
	if err != nil {
		return err
	}
	for _, f := range fields {
		if f.IsRelation() {
			continue
		}
		dst.FieldByIndex(f.Index).Set(src.FieldByIndex(f.Index))
	}
	return nil
}

// keyField returns the field of v holding the primary key of t.
func keyField(v reflect.Value, t *schema.Table) (reflect.Value, bool, error) {
	fields, err := decode.Fields(v.Type())
	if err != nil {
		return reflect.Value{}, false, err
	}
	for _, f := range fields {
		if f.Column == t.PrimaryKey && !f.IsRelation() {
			return v.FieldByIndex(f.Index), true, nil
		}
	}
	return reflect.Value{}, false, nil
}
