package query

import (
	"testing"

	"github.com/satishbabariya/ormcore/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewrite(t *testing.T) {
	tests := []struct {
		name  string
		d     dialect.Name
		in    string
		want  string
		slots int
	}{
		{
			name:  "postgres agnostic markers",
			d:     dialect.Postgres,
			in:    "a = ? AND b = ?",
			want:  "a = $1 AND b = $2",
			slots: 2,
		},
		{
			name:  "postgres literals and identifiers",
			d:     dialect.Postgres,
			in:    `name = '?' AND "we?rd" = ? AND note = 'it''s ?'`,
			want:  `name = '?' AND "we?rd" = $1 AND note = 'it''s ?'`,
			slots: 1,
		},
		{
			name:  "postgres comments",
			d:     dialect.Postgres,
			in:    "a = ? -- b = ?\nAND c = ? /* ? */",
			want:  "a = $1 -- b = ?\nAND c = $2 /* ? */",
			slots: 2,
		},
		{
			name:  "postgres dollar quoted body",
			d:     dialect.Postgres,
			in:    "x = $$ ? $$ AND y = ?",
			want:  "x = $$ ? $$ AND y = $1",
			slots: 1,
		},
		{
			name:  "postgres escape string",
			d:     dialect.Postgres,
			in:    `note = E'it\'s ?' AND age > ?`,
			want:  `note = E'it\'s ?' AND age > $1`,
			slots: 1,
		},
		{
			name:  "postgres standard string keeps backslash",
			d:     dialect.Postgres,
			in:    `type = 'a\' AND b = ?`,
			want:  `type = 'a\' AND b = $1`,
			slots: 1,
		},
		{
			name:  "postgres tagged dollar quote",
			d:     dialect.Postgres,
			in:    "x = $q$ what? it's $q$ AND y = ?",
			want:  "x = $q$ what? it's $q$ AND y = $1",
			slots: 1,
		},
		{
			name:  "postgres nested dollar quotes",
			d:     dialect.Postgres,
			in:    "f($body$ SELECT $$ ? $$ $body$, ?)",
			want:  "f($body$ SELECT $$ ? $$ $body$, $1)",
			slots: 1,
		},
		{
			name:  "postgres unterminated dollar quote",
			d:     dialect.Postgres,
			in:    "a = ? AND b = $q$ ? ",
			want:  "a = $1 AND b = $q$ ? ",
			slots: 1,
		},
		{
			name:  "postgres dollar in identifier",
			d:     dialect.Postgres,
			in:    "a$1 = ?",
			want:  "a$1 = $1",
			slots: 1,
		},
		{
			name:  "postgres native marker raises counter",
			d:     dialect.Postgres,
			in:    "a = $2 AND b = ?",
			want:  "a = $2 AND b = $3",
			slots: 3,
		},
		{
			name:  "postgres arithmetic",
			d:     dialect.Postgres,
			in:    "a - ? / 2",
			want:  "a - $1 / 2",
			slots: 1,
		},
		{
			name:  "postgres unterminated literal",
			d:     dialect.Postgres,
			in:    "a = ? AND b = 'oops ?",
			want:  "a = $1 AND b = 'oops ?",
			slots: 1,
		},
		{
			name:  "mysql backslash escapes",
			d:     dialect.MySQL,
			in:    `a = 'it\'s ?' AND b = ? # ?`,
			want:  `a = 'it\'s ?' AND b = ? # ?`,
			slots: 1,
		},
		{
			name:  "mysql backtick identifiers",
			d:     dialect.MySQL,
			in:    "`we?rd` = ? AND `x` = ?",
			want:  "`we?rd` = ? AND `x` = ?",
			slots: 2,
		},
		{
			name:  "sqlite native index",
			d:     dialect.SQLite,
			in:    "a = ?1 AND b = ?",
			want:  "a = ?1 AND b = ?",
			slots: 2,
		},
		{
			name:  "sqlite dollar index",
			d:     dialect.SQLite,
			in:    "a = $2 AND b = ?",
			want:  "a = $2 AND b = ?",
			slots: 3,
		},
		{
			name:  "sqlite bracket identifier",
			d:     dialect.SQLite,
			in:    "[we?rd] = ?",
			want:  "[we?rd] = ?",
			slots: 1,
		},
		{
			name:  "no markers",
			d:     dialect.SQLite,
			in:    "SELECT 1",
			want:  "SELECT 1",
			slots: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := dialect.New(tt.d)
			out, slots, err := lexerFor(d).rewrite(d, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
			assert.Equal(t, tt.slots, slots)
		})
	}
}

func TestRewrite_DollarSignOutsideMarker(t *testing.T) {
	d := dialect.New(dialect.Postgres)
	out, slots, err := lexerFor(d).rewrite(d, "price > ? AND currency = 'US$'")
	require.NoError(t, err)
	assert.Equal(t, "price > $1 AND currency = 'US$'", out)
	assert.Equal(t, 1, slots)
}
