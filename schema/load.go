package schema

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Schema is a set of tables keyed by name.
type Schema struct {
	Tables map[string]*Table
}

type document struct {
	Tables []*Table `yaml:"tables"`
}

// Load reads a YAML schema description:
//
//	tables:
//	  - name: person
//	    primary_key: id
//	    columns:
//	      - {name: id, type: integer, default: true}
//	      - {name: org_id, type: integer}
//	    relations:
//	      - {name: org, table: organization, local_key: org_id, foreign_key: id, kind: many-to-one}
//
// Relations without an explicit column list select every column of the related table.
func Load(r io.Reader) (*Schema, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	return New(doc.Tables...)
}

// New builds a schema from tables, filling in eager-join column lists and validating
// every relation target.
func New(tables ...*Table) (*Schema, error) {
	s := &Schema{Tables: make(map[string]*Table, len(tables))}
	for _, t := range tables {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, dup := s.Tables[t.Name]; dup {
			return nil, fmt.Errorf("duplicate table %s", t.Name)
		}
		s.Tables[t.Name] = t
	}

	for _, t := range tables {
		for i := range t.Relations {
			rel := &t.Relations[i]
			target, ok := s.Tables[rel.Table]
			if !ok {
				return nil, fmt.Errorf("table %s: relation %s targets unknown table %s", t.Name, rel.Name, rel.Table)
			}
			if _, ok := target.Column(rel.ForeignKey); !ok {
				return nil, fmt.Errorf("table %s: relation %s foreign key %s is not a column of %s",
					t.Name, rel.Name, rel.ForeignKey, target.Name)
			}
			if len(rel.Columns) == 0 {
				rel.Columns = target.ColumnNames()
			}
		}
	}
	return s, nil
}

// Table returns the named table.
func (s *Schema) Table(name string) (*Table, bool) {
	t, ok := s.Tables[name]
	return t, ok
}
