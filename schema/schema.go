// Package schema holds the static table metadata the engine consumes: columns, primary key and
// relation descriptors. The facts are produced ahead of time (by code generation or a YAML
// description) and are never inferred at runtime.
package schema

import (
	"fmt"
)

// RelationKind tags the cardinality of a relation.
type RelationKind string

const (
	// ManyToOne is a to-one relation whose foreign key lives on the owner's table.
	ManyToOne RelationKind = "many-to-one"
	// OneToMany is the inverse side of a many-to-one relation.
	OneToMany RelationKind = "one-to-many"
	// ManyToMany goes through a junction table.
	ManyToMany RelationKind = "many-to-many"
)

// Valid reports whether k is a known relation kind.
func (k RelationKind) Valid() bool {
	switch k {
	case ManyToOne, OneToMany, ManyToMany:
		return true
	}
	return false
}

// Column describes one column of a table.
type Column struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	HasDefault bool   `yaml:"default"`
}

// Relation is the static descriptor of a relation from an owner table to a related table.
type Relation struct {
	// Name is the relation alias; eager-joined columns are exposed as __Name__column.
	Name string `yaml:"name"`
	// Table is the related table.
	Table string `yaml:"table"`
	// LocalKey is the column on the owner table (the foreign key for many-to-one).
	LocalKey string `yaml:"local_key"`
	// ForeignKey is the column on the related table LocalKey points at.
	ForeignKey string `yaml:"foreign_key"`
	// Kind is the relation cardinality.
	Kind RelationKind `yaml:"kind"`
	// Columns are the related table's columns selected by an eager join.
	Columns []string `yaml:"columns"`
}

// Table describes a table and its relations.
type Table struct {
	Name       string     `yaml:"name"`
	PrimaryKey string     `yaml:"primary_key"`
	Columns    []Column   `yaml:"columns"`
	Relations  []Relation `yaml:"relations"`
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column looks up a column by name.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Relation looks up a relation by its alias.
func (t *Table) Relation(name string) (Relation, bool) {
	for _, r := range t.Relations {
		if r.Name == name {
			return r, true
		}
	}
	return Relation{}, false
}

// Validate checks the table is internally consistent.
func (t *Table) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("table name is required")
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %s: no columns", t.Name)
	}

	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if c.Name == "" {
			return fmt.Errorf("table %s: column with empty name", t.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("table %s: duplicate column %s", t.Name, c.Name)
		}
		seen[c.Name] = true
	}

	if t.PrimaryKey == "" {
		return fmt.Errorf("table %s: primary key is required", t.Name)
	}
	if !seen[t.PrimaryKey] {
		return fmt.Errorf("table %s: primary key %s is not a column", t.Name, t.PrimaryKey)
	}

	names := make(map[string]bool, len(t.Relations))
	for _, r := range t.Relations {
		if err := r.validate(); err != nil {
			return fmt.Errorf("table %s: %w", t.Name, err)
		}
		if names[r.Name] {
			return fmt.Errorf("table %s: duplicate relation %s", t.Name, r.Name)
		}
		names[r.Name] = true
		if r.Kind == ManyToOne && !seen[r.LocalKey] {
			return fmt.Errorf("table %s: relation %s local key %s is not a column", t.Name, r.Name, r.LocalKey)
		}
	}
	return nil
}

func (r Relation) validate() error {
	switch {
	case r.Name == "":
		return fmt.Errorf("relation with empty name")
	case r.Table == "":
		return fmt.Errorf("relation %s: related table is required", r.Name)
	case r.LocalKey == "" || r.ForeignKey == "":
		return fmt.Errorf("relation %s: local and foreign key are required", r.Name)
	case !r.Kind.Valid():
		return fmt.Errorf("relation %s: unknown kind %q", r.Name, r.Kind)
	}
	return nil
}
