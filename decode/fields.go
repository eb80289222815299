package decode

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/satishbabariya/ormcore/relation"
)

// Field maps one struct field to a column.
type Field struct {
	// Name is the Go field name.
	Name string
	// Column is the column the field reads. For a relation cell it is the foreign key.
	Column string
	// Relation is the relation alias of a relation cell field, empty otherwise.
	Relation string
	// Index is the field index path, for reflect.Value.FieldByIndex.
	Index []int
}

// IsRelation reports whether the field is a relation cell.
func (f Field) IsRelation() bool {
	return f.Relation != ""
}

type plan struct {
	fields     []Field
	byColumn   map[string]int
	byRelation map[string]int
}

var plans sync.Map // reflect.Type -> *plan

// Fields returns the column mapping of struct type t. Columns come from the `db` tag, or the
// lowercased field name when untagged; `db:"-"` skips a field. Relation cells carry the
// relation alias in a `rel` tag and default to the lowercased field name.
func Fields(t reflect.Type) ([]Field, error) {
	p, err := planFor(t)
	if err != nil {
		return nil, err
	}
	return p.fields, nil
}

func planFor(t reflect.Type) (*plan, error) {
	if cached, ok := plans.Load(t); ok {
		return cached.(*plan), nil
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("decode target must be a struct, got %s", t)
	}

	p := &plan{
		byColumn:   make(map[string]int),
		byRelation: make(map[string]int),
	}
	if err := p.collect(t, nil); err != nil {
		return nil, err
	}

	actual, _ := plans.LoadOrStore(t, p)
	return actual.(*plan), nil
}

func (p *plan) collect(t reflect.Type, parent []int) error {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		index := append(append([]int(nil), parent...), i)

		tag := sf.Tag.Get("db")
		if tag == "-" {
			continue
		}
		if sf.Anonymous && tag == "" && sf.Type.Kind() == reflect.Struct && !relation.IsSlot(sf.Type) {
			if err := p.collect(sf.Type, index); err != nil {
				return err
			}
			continue
		}
		if !sf.IsExported() {
			continue
		}

		column := tag
		if column == "" {
			column = strings.ToLower(sf.Name)
		}
		f := Field{Name: sf.Name, Column: column, Index: index}

		if relation.IsSlot(sf.Type) {
			f.Relation = sf.Tag.Get("rel")
			if f.Relation == "" {
				f.Relation = strings.ToLower(sf.Name)
			}
			if _, dup := p.byRelation[f.Relation]; dup {
				return fmt.Errorf("%s: relation %q is mapped twice", t, f.Relation)
			}
			p.byRelation[f.Relation] = len(p.fields)
		}
		if _, dup := p.byColumn[column]; dup {
			return fmt.Errorf("%s: column %q is mapped twice", t, column)
		}
		p.byColumn[column] = len(p.fields)
		p.fields = append(p.fields, f)
	}
	return nil
}
