// Package dialect describes the SQL variants the engine renders for: placeholder style,
// identifier quoting and the insert-conflict capabilities of a server version.
package dialect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-version"
)

// Name identifies a SQL dialect.
type Name string

const (
	// Postgres is PostgreSQL ($1, $2 placeholders, "double quoted" identifiers).
	Postgres Name = "postgres"
	// MySQL is MySQL/MariaDB (? placeholders, `backtick` identifiers).
	MySQL Name = "mysql"
	// SQLite is SQLite (? placeholders, "double quoted" identifiers).
	SQLite Name = "sqlite"
)

// ConflictStrategy is how an ignore-on-duplicate-key insert is performed.
type ConflictStrategy int

const (
	// ConflictIgnore skips duplicates in the statement itself
	// (ON CONFLICT DO NOTHING, ON DUPLICATE KEY UPDATE of the key to itself).
	ConflictIgnore ConflictStrategy = iota
	// ConflictSavepoint wraps a plain insert in a savepoint and rolls back to it when the
	// driver reports a unique violation.
	ConflictSavepoint
)

func (s ConflictStrategy) String() string {
	switch s {
	case ConflictIgnore:
		return "ignore"
	case ConflictSavepoint:
		return "savepoint"
	default:
		return "unknown"
	}
}

var (
	pgOnConflict       = version.Must(version.NewVersion("9.5"))
	sqliteOnConflict   = version.Must(version.NewVersion("3.24.0"))
	sqliteReturning    = version.Must(version.NewVersion("3.35.0"))
	defaultDriverNames = map[Name]string{
		Postgres: "postgres",
		MySQL:    "mysql",
		SQLite:   "sqlite3",
	}
)

// Dialect is a SQL dialect pinned to an optional server version. The zero version means
// "current", i.e. every capability the dialect has is assumed available.
type Dialect struct {
	name    Name
	driver  string
	version *version.Version
}

// New returns the dialect with the default driver and no version pin.
func New(name Name) Dialect {
	return Dialect{name: name, driver: defaultDriverNames[name]}
}

// Parse resolves a provider name (postgres, postgresql, pgx, mysql, sqlite, sqlite3) and an
// optional server version string.
func Parse(provider, serverVersion string) (Dialect, error) {
	var d Dialect
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "postgres", "postgresql", "pg":
		d = New(Postgres)
	case "pgx":
		d = New(Postgres)
		d.driver = "pgx"
	case "mysql", "mariadb":
		d = New(MySQL)
	case "sqlite", "sqlite3":
		d = New(SQLite)
	default:
		return Dialect{}, fmt.Errorf("unsupported dialect: %q", provider)
	}

	if serverVersion != "" {
		v, err := version.NewVersion(serverVersion)
		if err != nil {
			return Dialect{}, fmt.Errorf("invalid server version %q: %w", serverVersion, err)
		}
		d.version = v
	}
	return d, nil
}

// Name returns the dialect name.
func (d Dialect) Name() Name {
	return d.name
}

// DriverName returns the database/sql driver name registered for this dialect.
func (d Dialect) DriverName() string {
	return d.driver
}

// Version returns the pinned server version, or "" when unpinned.
func (d Dialect) Version() string {
	if d.version == nil {
		return ""
	}
	return d.version.Original()
}

func (d Dialect) String() string {
	if d.version == nil {
		return string(d.name)
	}
	return string(d.name) + "@" + d.version.Original()
}

// Quote quotes an identifier, doubling any embedded quote character.
func (d Dialect) Quote(ident string) string {
	q := `"`
	if d.name == MySQL {
		q = "`"
	}
	return q + strings.ReplaceAll(ident, q, q+q) + q
}

// QuoteQualified quotes "table"."column".
func (d Dialect) QuoteQualified(table, column string) string {
	return d.Quote(table) + "." + d.Quote(column)
}

// Placeholder returns the positional marker for the n-th argument (1-based).
func (d Dialect) Placeholder(n int) string {
	if d.name == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// SupportsReturning reports whether INSERT ... RETURNING is available.
func (d Dialect) SupportsReturning() bool {
	switch d.name {
	case Postgres:
		return true
	case SQLite:
		return d.atLeast(sqliteReturning)
	default:
		return false
	}
}

// ConflictStrategy reports how ignore-on-conflict inserts are issued. Servers whose only
// native form also swallows NOT NULL or CHECK failures (SQLite before 3.24) use savepoints.
func (d Dialect) ConflictStrategy() ConflictStrategy {
	switch {
	case d.name == Postgres && !d.atLeast(pgOnConflict):
		return ConflictSavepoint
	case d.name == SQLite && !d.atLeast(sqliteOnConflict):
		return ConflictSavepoint
	}
	return ConflictIgnore
}

// IgnoreDuplicates returns the clause appended to an INSERT so that a row violating a unique
// key is skipped while every other failure is still raised. MySQL has no such clause, so a
// no-op ON DUPLICATE KEY UPDATE of key is used; it reports zero affected rows on a duplicate.
func (d Dialect) IgnoreDuplicates(key string) (string, error) {
	if d.ConflictStrategy() == ConflictSavepoint {
		return "", fmt.Errorf("%s cannot skip duplicate keys in the statement; use a savepoint", d)
	}
	if d.name == MySQL {
		if key == "" {
			return "", fmt.Errorf("%s needs a key column to skip duplicate keys", d)
		}
		q := d.Quote(key)
		return "ON DUPLICATE KEY UPDATE " + q + " = " + q, nil
	}
	return "ON CONFLICT DO NOTHING", nil
}

func (d Dialect) atLeast(min *version.Version) bool {
	if d.version == nil {
		return true
	}
	return d.version.GreaterThanOrEqual(min)
}
