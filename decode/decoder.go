// Package decode turns result rows into records, including relation cells populated from
// eager-joined columns that follow the __relation__column alias protocol.
package decode

import (
	"fmt"
	"reflect"

	"github.com/satishbabariya/ormcore/internal/convert"
	"github.com/satishbabariya/ormcore/internal/debug"
	"github.com/satishbabariya/ormcore/ormerr"
	"github.com/satishbabariya/ormcore/relation"
)

// Decode reads the listed columns of row into a new T. A relation cell field reads only its
// foreign-key column and is left Unloaded. Every listed column must exist on the row and map
// to a field. A nil column list means every non-aliased column of the row.
func Decode[T any](row Row, columns []string) (*T, error) {
	v := new(T)
	if err := Into(row, columns, v); err != nil {
		return nil, err
	}
	return v, nil
}

// DecodeWithJoins reads every non-aliased column of row into a new T, then materializes each
// eager-joined relation from its aliased columns and sets the matching cell Loaded.
func DecodeWithJoins[T any](row Row) (*T, error) {
	v := new(T)
	if err := IntoWithJoins(row, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Into is Decode for an existing struct pointer.
func Into(row Row, columns []string, dst any) error {
	target, p, err := prepare(dst)
	if err != nil {
		return err
	}
	if columns == nil {
		columns = plainColumns(row)
	}

	for _, col := range columns {
		val, ok := row.Value(col)
		if !ok {
			return fmt.Errorf("column %q is missing from the row", col)
		}
		i, ok := p.byColumn[col]
		if !ok {
			return fmt.Errorf("column %q has no field on %s", col, target.Type())
		}
		if err := assign(target, p.fields[i], val); err != nil {
			return err
		}
	}
	return nil
}

// IntoWithJoins is DecodeWithJoins for an existing struct pointer. Non-aliased row columns
// without a field are ignored. An alias that matches no relation cell is an
// *ormerr.ProtocolError. A relation whose joined columns are all NULL stays Unloaded.
func IntoWithJoins(row Row, dst any) error {
	target, p, err := prepare(dst)
	if err != nil {
		return err
	}

	type group struct {
		columns []string
		values  []any
		null    bool
	}
	groups := make(map[string]*group)
	var order []string

	for _, col := range row.Columns() {
		val, _ := row.Value(col)

		rel, field, ok := SplitAlias(col)
		if !ok {
			if i, known := p.byColumn[col]; known {
				if err := assign(target, p.fields[i], val); err != nil {
					return err
				}
			}
			continue
		}

		if _, known := p.byRelation[rel]; !known {
			debug.Warn("eager-joined column matches no relation", "column", col, "alias", rel, "type", target.Type().String())
			return &ormerr.ProtocolError{Alias: rel, Column: col}
		}
		g, seen := groups[rel]
		if !seen {
			g = &group{null: true}
			groups[rel] = g
			order = append(order, rel)
		}
		g.columns = append(g.columns, field)
		g.values = append(g.values, val)
		if val != nil {
			g.null = false
		}
	}

	for _, rel := range order {
		g := groups[rel]
		if g.null {
			continue
		}
		f := p.fields[p.byRelation[rel]]
		slot, _ := relation.AsSlot(target.FieldByIndex(f.Index))

		related := reflect.New(slot.RelatedType())
		if err := IntoWithJoins(NewRow(g.columns, g.values), related.Interface()); err != nil {
			return fmt.Errorf("relation %s: %w", rel, err)
		}
		if err := slot.LoadValue(related); err != nil {
			return fmt.Errorf("relation %s: %w", rel, err)
		}
	}
	return nil
}

func prepare(dst any) (reflect.Value, *plan, error) {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return reflect.Value{}, nil, fmt.Errorf("decode target must be a non-nil pointer, got %T", dst)
	}
	target := v.Elem()
	p, err := planFor(target.Type())
	if err != nil {
		return reflect.Value{}, nil, err
	}
	return target, p, nil
}

func assign(target reflect.Value, f Field, val any) error {
	fv := target.FieldByIndex(f.Index)
	if f.IsRelation() {
		slot, _ := relation.AsSlot(fv)
		if err := slot.SetID(val); err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
		return nil
	}
	if err := convert.Assign(fv, val); err != nil {
		return fmt.Errorf("field %s (column %s): %w", f.Name, f.Column, err)
	}
	return nil
}

func plainColumns(row Row) []string {
	var cols []string
	for _, col := range row.Columns() {
		if !IsAlias(col) {
			cols = append(cols, col)
		}
	}
	return cols
}
