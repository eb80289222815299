package query_test

import (
	"errors"
	"testing"

	"github.com/satishbabariya/ormcore/dialect"
	"github.com/satishbabariya/ormcore/ormerr"
	"github.com/satishbabariya/ormcore/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsert_Render(t *testing.T) {
	sql, args, err := query.Insert(pg, "person").
		Columns("name", "org_id").
		Values("ann", 1).
		Returning("*").
		Render()
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "person" ("name", "org_id") VALUES ($1, $2) RETURNING *`, sql)
	assert.Equal(t, []any{"ann", 1}, args)
}

func TestInsert_MultipleRows(t *testing.T) {
	sql, args, err := query.Insert(lite, "tag").
		Columns("name").
		Values("a").
		Values("b").
		Returning("id", "name").
		Render()
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "tag" ("name") VALUES (?), (?) RETURNING "id", "name"`, sql)
	assert.Equal(t, []any{"a", "b"}, args)
}

func TestInsert_OnConflictIgnore(t *testing.T) {
	tests := []struct {
		d    dialect.Dialect
		want string
	}{
		{d: pg, want: `INSERT INTO "org" ("name") VALUES ($1) ON CONFLICT DO NOTHING`},
		{d: my, want: "INSERT INTO `org` (`name`) VALUES (?) ON DUPLICATE KEY UPDATE `id` = `id`"},
		{d: lite, want: `INSERT INTO "org" ("name") VALUES (?) ON CONFLICT DO NOTHING`},
	}

	for _, tt := range tests {
		t.Run(tt.d.String(), func(t *testing.T) {
			sql, _, err := query.Insert(tt.d, "org").
				Columns("name").
				Values("acme").
				OnConflictIgnore("id").
				Render()
			require.NoError(t, err)
			assert.Equal(t, tt.want, sql)
		})
	}
}

func TestInsert_OnConflictIgnoreNeedsSavepoint(t *testing.T) {
	oldLite, err := dialect.Parse("sqlite", "3.22.0")
	require.NoError(t, err)
	oldPG, err := dialect.Parse("postgres", "9.4")
	require.NoError(t, err)

	for _, d := range []dialect.Dialect{oldLite, oldPG} {
		_, _, err := query.Insert(d, "org").Columns("name").Values("acme").OnConflictIgnore("id").Render()
		require.Error(t, err, d.String())
		assert.True(t, ormerr.IsConfiguration(err))
		assert.Contains(t, err.Error(), "savepoint")
	}

	_, _, err = query.Insert(my, "org").Columns("name").Values("acme").OnConflictIgnore("").Render()
	require.Error(t, err)
	assert.True(t, ormerr.IsConfiguration(err))
}

func TestInsert_Errors(t *testing.T) {
	tests := []struct {
		name string
		b    *query.InsertBuilder
	}{
		{name: "no columns", b: query.Insert(pg, "person").Values(1)},
		{name: "no values", b: query.Insert(pg, "person").Columns("name")},
		{name: "short row", b: query.Insert(pg, "person").Columns("name", "age").Values("ann")},
		{name: "returning on mysql", b: query.Insert(my, "person").Columns("name").Values("ann").Returning("*")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.b.Render()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ormerr.ErrConfiguration))
		})
	}
}

func TestUpdate_Render(t *testing.T) {
	sql, args, err := query.Update(pg, "person").
		Set("name", "bob").
		Set("age", 41).
		Where(`"id" = ?`, 7).
		Render()
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "person" SET "name" = $1, "age" = $2 WHERE ("id" = $3)`, sql)
	assert.Equal(t, []any{"bob", 41, 7}, args)

	_, _, err = query.Update(pg, "person").Set("name", "bob").Render()
	assert.True(t, errors.Is(err, ormerr.ErrConfiguration))

	_, _, err = query.Update(pg, "person").Where("id = ?", 1).Render()
	assert.True(t, errors.Is(err, ormerr.ErrConfiguration))
}

func TestDelete_Render(t *testing.T) {
	sql, args, err := query.Delete(my, "person").Where("id = ?", 3).Render()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM `person` WHERE (id = ?)", sql)
	assert.Equal(t, []any{3}, args)

	_, _, err = query.Delete(my, "person").Render()
	assert.True(t, errors.Is(err, ormerr.ErrConfiguration))

	_, _, err = query.Delete(my, "person").Where("id = ?").Render()
	assert.EqualError(t, err, "1 placeholder found, 0 arguments provided")
}
