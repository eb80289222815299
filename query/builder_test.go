package query_test

import (
	"errors"
	"testing"

	"github.com/satishbabariya/ormcore/dialect"
	"github.com/satishbabariya/ormcore/ormerr"
	"github.com/satishbabariya/ormcore/query"
	"github.com/satishbabariya/ormcore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pg   = dialect.New(dialect.Postgres)
	my   = dialect.New(dialect.MySQL)
	lite = dialect.New(dialect.SQLite)
)

var orgRelation = schema.Relation{
	Name:       "org",
	Table:      "organization",
	LocalKey:   "org_id",
	ForeignKey: "id",
	Kind:       schema.ManyToOne,
	Columns:    []string{"id", "name"},
}

func TestSelect_Render(t *testing.T) {
	sql, args, err := query.Select(pg, "person").
		Columns("id", "name").
		Where("age > ?", 50).
		Render()
	require.NoError(t, err)
	assert.Equal(t, `SELECT id, name FROM "person" WHERE (age > $1)`, sql)
	assert.Equal(t, []any{50}, args)
}

func TestSelect_PlaceholderMismatch(t *testing.T) {
	_, _, err := query.Select(pg, "person").
		Columns("id", "name").
		Where("age > ?").
		Render()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ormerr.ErrConfiguration))
	assert.Equal(t, "1 placeholder found, 0 arguments provided", err.Error())

	var cfg *ormerr.ConfigurationError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, 1, cfg.Placeholders)
	assert.Equal(t, 0, cfg.Arguments)

	_, _, err = query.Select(pg, "person").Where("age > 1", 50).Render()
	assert.EqualError(t, err, "0 placeholders found, 1 argument provided")
}

func TestSelect_DefaultColumns(t *testing.T) {
	sql, args, err := query.Select(lite, "person").Render()
	require.NoError(t, err)
	assert.Equal(t, `SELECT "person".* FROM "person"`, sql)
	assert.Empty(t, args)
}

func TestSelect_ArgumentsFollowClauseOrder(t *testing.T) {
	// Clauses are added out of render order; arguments must still follow placeholder order.
	sql, args, err := query.Select(pg, "person").
		Having("count(*) > ?", 3).
		Where("age > ?", 18).
		With("adults", `SELECT id FROM "person" WHERE age >= ?`, 21).
		GroupBy("team_id").
		Columns("team_id", "count(*)").
		Render()
	require.NoError(t, err)
	assert.Equal(t,
		`WITH "adults" AS (SELECT id FROM "person" WHERE age >= $1) `+
			`SELECT team_id, count(*) FROM "person" WHERE (age > $2) GROUP BY team_id HAVING (count(*) > $3)`,
		sql)
	assert.Equal(t, []any{21, 18, 3}, args)
}

func TestSelect_Bind(t *testing.T) {
	sql, args, err := query.Select(pg, "person").
		Where("name = ?").
		Bind("ann").
		Join(`INNER JOIN "team" ON "team"."id" = "person"."team_id" AND "team"."kind" = ?`).
		Bind("core").
		Where("age > ?").
		Bind(30).
		Render()
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "person".* FROM "person" INNER JOIN "team" ON "team"."id" = "person"."team_id" AND "team"."kind" = $1 `+
			`WHERE (name = $2) AND (age > $3)`,
		sql)
	assert.Equal(t, []any{"core", "ann", 30}, args)
}

func TestSelect_BindDefaultsToWhere(t *testing.T) {
	sql, args, err := query.Select(my, "person").
		Bind(7).
		Where("id = ?").
		Render()
	require.NoError(t, err)
	assert.Equal(t, "SELECT `person`.* FROM `person` WHERE (id = ?)", sql)
	assert.Equal(t, []any{7}, args)
}

func TestSelect_BindFollowsSelectColumns(t *testing.T) {
	sql, args, err := query.Select(pg, "person").
		Columns("x + ?").
		Bind(2).
		Where("a = ?", 1).
		Render()
	require.NoError(t, err)
	assert.Equal(t, `SELECT x + $1 FROM "person" WHERE (a = $2)`, sql)
	assert.Equal(t, []any{2, 1}, args)
}

func TestSelect_BindChecksTotalCountOnly(t *testing.T) {
	// The WHERE group is over-bound and the select list under-bound; the totals agree.
	sql, args, err := query.Select(pg, "person").
		Columns("x + ?").
		Where("a = ?", 1).
		Bind(2).
		Render()
	require.NoError(t, err)
	assert.Equal(t, `SELECT x + $1 FROM "person" WHERE (a = $2)`, sql)
	assert.Equal(t, []any{1, 2}, args)
}

func TestSelect_PostgresLiteralForms(t *testing.T) {
	sql, args, err := query.Select(pg, "person").
		Columns(`E'it\'s ?' AS note`, "id").
		Where("age > ?", 50).
		Render()
	require.NoError(t, err)
	assert.Equal(t, `SELECT E'it\'s ?' AS note, id FROM "person" WHERE (age > $1)`, sql)
	assert.Equal(t, []any{50}, args)

	sql, args, err = query.Select(pg, "person").
		Columns("$q$ what? $q$ AS note").
		Where("age > ?", 50).
		Render()
	require.NoError(t, err)
	assert.Equal(t, `SELECT $q$ what? $q$ AS note FROM "person" WHERE (age > $1)`, sql)
	assert.Equal(t, []any{50}, args)
}

func TestSelect_Dialects(t *testing.T) {
	tests := []struct {
		d    dialect.Dialect
		want string
	}{
		{d: pg, want: `SELECT "person".* FROM "person" WHERE (a = $1) AND (b = $2) ORDER BY name DESC LIMIT 10 OFFSET 5`},
		{d: my, want: "SELECT `person`.* FROM `person` WHERE (a = ?) AND (b = ?) ORDER BY name DESC LIMIT 10 OFFSET 5"},
		{d: lite, want: `SELECT "person".* FROM "person" WHERE (a = ?) AND (b = ?) ORDER BY name DESC LIMIT 10 OFFSET 5`},
	}

	for _, tt := range tests {
		t.Run(tt.d.String(), func(t *testing.T) {
			sql, args, err := query.Select(tt.d, "person").
				Where("a = ?", 1).
				Where("b = ?", 2).
				OrderBy("name", query.Desc).
				Limit(10).
				Offset(5).
				Render()
			require.NoError(t, err)
			assert.Equal(t, tt.want, sql)
			assert.Equal(t, []any{1, 2}, args)
		})
	}
}

func TestSelect_OffsetOnly(t *testing.T) {
	tests := []struct {
		d    dialect.Dialect
		want string
	}{
		{d: pg, want: `SELECT "person".* FROM "person" OFFSET 20`},
		{d: my, want: "SELECT `person`.* FROM `person` LIMIT 18446744073709551615 OFFSET 20"},
		{d: lite, want: `SELECT "person".* FROM "person" LIMIT -1 OFFSET 20`},
	}

	for _, tt := range tests {
		t.Run(tt.d.String(), func(t *testing.T) {
			sql, _, err := query.Select(tt.d, "person").Offset(20).Render()
			require.NoError(t, err)
			assert.Equal(t, tt.want, sql)
		})
	}
}

func TestSelect_NegativeLimit(t *testing.T) {
	b := query.Select(pg, "person").Limit(-1)
	require.Error(t, b.Err())

	_, _, err := b.Render()
	assert.True(t, errors.Is(err, ormerr.ErrConfiguration))
}

func TestSelect_JoinRelation(t *testing.T) {
	sql, args, err := query.Select(pg, "person").
		JoinRelation(orgRelation).
		Where(`"person"."age" > ?`, 50).
		Render()
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "person".*, "org"."id" AS "__org__id", "org"."name" AS "__org__name" FROM "person" `+
			`LEFT JOIN "organization" AS "org" ON "person"."org_id" = "org"."id" WHERE ("person"."age" > $1)`,
		sql)
	assert.Equal(t, []any{50}, args)
}

func TestSelect_JoinRelationMySQL(t *testing.T) {
	sql, _, err := query.Select(my, "person").
		Columns("`person`.`id`").
		JoinRelation(orgRelation).
		Render()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT `person`.`id`, `org`.`id` AS `__org__id`, `org`.`name` AS `__org__name` FROM `person` "+
			"LEFT JOIN `organization` AS `org` ON `person`.`org_id` = `org`.`id`",
		sql)
}

func TestSelect_JoinRelationErrors(t *testing.T) {
	toMany := orgRelation
	toMany.Kind = schema.OneToMany

	noColumns := orgRelation
	noColumns.Columns = nil

	tests := []struct {
		name  string
		build func() *query.Builder
	}{
		{
			name:  "to-many",
			build: func() *query.Builder { return query.Select(pg, "person").JoinRelation(toMany) },
		},
		{
			name:  "no columns",
			build: func() *query.Builder { return query.Select(pg, "person").JoinRelation(noColumns) },
		},
		{
			name: "joined twice",
			build: func() *query.Builder {
				return query.Select(pg, "person").JoinRelation(orgRelation).JoinRelation(orgRelation)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.build().Render()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ormerr.ErrConfiguration))
		})
	}
}

func TestSelect_Clone(t *testing.T) {
	base := query.Select(pg, "person").Where("age > ?", 18)
	clone := base.Clone().Where("name = ?", "ann").JoinRelation(orgRelation)

	sql, args, err := base.Render()
	require.NoError(t, err)
	assert.Equal(t, `SELECT "person".* FROM "person" WHERE (age > $1)`, sql)
	assert.Equal(t, []any{18}, args)

	sql, args, err = clone.Render()
	require.NoError(t, err)
	assert.Contains(t, sql, `WHERE (age > $1) AND (name = $2)`)
	assert.Contains(t, sql, `LEFT JOIN "organization"`)
	assert.Equal(t, []any{18, "ann"}, args)

	// Joining on the original is still allowed.
	_, _, err = base.JoinRelation(orgRelation).Render()
	assert.NoError(t, err)
}

func TestSelect_NativeMarkers(t *testing.T) {
	sql, args, err := query.Select(pg, "person").
		Where("a = $1 OR b = $1", 5).
		Render()
	require.NoError(t, err)
	assert.Equal(t, `SELECT "person".* FROM "person" WHERE (a = $1 OR b = $1)`, sql)
	assert.Equal(t, []any{5}, args)

	_, _, err = query.Select(pg, "person").Where("a = $2", 5).Render()
	assert.EqualError(t, err, "2 placeholders found, 1 argument provided")
}
