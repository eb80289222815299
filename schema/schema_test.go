package schema_test

import (
	"strings"
	"testing"

	"github.com/satishbabariya/ormcore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const peopleYAML = `
tables:
  - name: organization
    primary_key: id
    columns:
      - {name: id, type: integer}
      - {name: name, type: text}
  - name: person
    primary_key: id
    columns:
      - {name: id, type: integer, default: true}
      - {name: name, type: text}
      - {name: age, type: integer}
      - {name: org_id, type: integer}
    relations:
      - {name: org, table: organization, local_key: org_id, foreign_key: id, kind: many-to-one}
`

func TestLoad(t *testing.T) {
	s, err := schema.Load(strings.NewReader(peopleYAML))
	require.NoError(t, err)

	person, ok := s.Table("person")
	require.True(t, ok)
	assert.Equal(t, []string{"id", "name", "age", "org_id"}, person.ColumnNames())

	id, ok := person.Column("id")
	require.True(t, ok)
	assert.True(t, id.HasDefault)

	org, ok := person.Relation("org")
	require.True(t, ok)
	assert.Equal(t, schema.ManyToOne, org.Kind)
	assert.Equal(t, "organization", org.Table)
	assert.Equal(t, []string{"id", "name"}, org.Columns, "eager-join columns default to the target's columns")

	_, ok = person.Relation("team")
	assert.False(t, ok)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing primary key",
			yaml: "tables:\n  - name: t\n    columns: [{name: a}]\n",
			want: "primary key is required",
		},
		{
			name: "primary key not a column",
			yaml: "tables:\n  - name: t\n    primary_key: id\n    columns: [{name: a}]\n",
			want: "primary key id is not a column",
		},
		{
			name: "duplicate column",
			yaml: "tables:\n  - name: t\n    primary_key: a\n    columns: [{name: a}, {name: a}]\n",
			want: "duplicate column a",
		},
		{
			name: "unknown target",
			yaml: `tables:
  - name: t
    primary_key: id
    columns: [{name: id}, {name: x_id}]
    relations: [{name: x, table: missing, local_key: x_id, foreign_key: id, kind: many-to-one}]
`,
			want: "targets unknown table missing",
		},
		{
			name: "bad kind",
			yaml: `tables:
  - name: t
    primary_key: id
    columns: [{name: id}]
    relations: [{name: x, table: t, local_key: id, foreign_key: id, kind: one-to-one}]
`,
			want: `unknown kind "one-to-one"`,
		},
		{
			name: "not yaml",
			yaml: "tables: [",
			want: "failed to parse schema",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.Load(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
