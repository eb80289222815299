// Package queryfile reads YAML query descriptions used by the ormcore CLI.
//
//	table: person
//	columns: [id, name]
//	include: [org]
//	where:
//	  - sql: age > ?
//	    args: [50]
//	order_by:
//	  - {clause: name, desc: true}
//	limit: 10
package queryfile

import (
	"fmt"
	"io"

	"github.com/satishbabariya/ormcore/dialect"
	"github.com/satishbabariya/ormcore/query"
	"github.com/satishbabariya/ormcore/schema"
	"gopkg.in/yaml.v3"
)

// Fragment is a clause with its bound arguments.
type Fragment struct {
	SQL  string `yaml:"sql"`
	Args []any  `yaml:"args"`
}

// CTE is a named common table expression.
type CTE struct {
	Name string `yaml:"name"`
	Fragment `yaml:",inline"`
}

// Order is one ORDER BY entry.
type Order struct {
	Clause string `yaml:"clause"`
	Desc   bool   `yaml:"desc"`
}

// File is a query description.
type File struct {
	Dialect string     `yaml:"dialect"`
	Table   string     `yaml:"table"`
	With    []CTE      `yaml:"with"`
	Columns []string   `yaml:"columns"`
	Joins   []Fragment `yaml:"joins"`
	Include []string   `yaml:"include"`
	Where   []Fragment `yaml:"where"`
	GroupBy []string   `yaml:"group_by"`
	OrderBy []Order    `yaml:"order_by"`
	Having  []Fragment `yaml:"having"`
	Limit   *int       `yaml:"limit"`
	Offset  *int       `yaml:"offset"`
}

// Load parses a query description.
func Load(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse query file: %w", err)
	}
	if f.Table == "" {
		return nil, fmt.Errorf("query file: table is required")
	}
	return &f, nil
}

// Build assembles the query for d. Included relations are looked up on the query's table in
// s, which may be nil when nothing is included.
func (f *File) Build(d dialect.Dialect, s *schema.Schema) (*query.Builder, error) {
	b := query.Select(d, f.Table)

	for _, c := range f.With {
		b.With(c.Name, c.SQL, c.Args...)
	}
	if len(f.Columns) > 0 {
		b.Columns(f.Columns...)
	}
	for _, j := range f.Joins {
		b.Join(j.SQL, j.Args...)
	}

	if len(f.Include) > 0 {
		if s == nil {
			return nil, fmt.Errorf("include needs a schema")
		}
		t, ok := s.Table(f.Table)
		if !ok {
			return nil, fmt.Errorf("table %s is not in the schema", f.Table)
		}
		for _, name := range f.Include {
			rel, ok := t.Relation(name)
			if !ok {
				return nil, fmt.Errorf("table %s has no relation %s", f.Table, name)
			}
			b.JoinRelation(rel)
		}
	}

	for _, w := range f.Where {
		b.Where(w.SQL, w.Args...)
	}
	if len(f.GroupBy) > 0 {
		b.GroupBy(f.GroupBy...)
	}
	for _, o := range f.OrderBy {
		dir := query.Asc
		if o.Desc {
			dir = query.Desc
		}
		b.OrderBy(o.Clause, dir)
	}
	for _, h := range f.Having {
		b.Having(h.SQL, h.Args...)
	}
	if f.Limit != nil {
		b.Limit(*f.Limit)
	}
	if f.Offset != nil {
		b.Offset(*f.Offset)
	}
	return b, b.Err()
}
