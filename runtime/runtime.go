// Package runtime opens database handles for the configured dialect and runs engine
// operations inside caller-scoped transactions.
package runtime

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver (pgx)
	_ "github.com/lib/pq"              // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver
	"github.com/satishbabariya/ormcore/config"
	"github.com/satishbabariya/ormcore/dialect"
	"github.com/satishbabariya/ormcore/executor"
	"github.com/satishbabariya/ormcore/internal/debug"
	"github.com/satishbabariya/ormcore/schema"
)

// Client is an open database handle with its dialect and table metadata.
type Client struct {
	DB      *sql.DB
	Dialect dialect.Dialect
	Schema  *schema.Schema
}

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, cfg *config.Config) (*Client, error) {
	if cfg.Debug {
		debug.Init(true)
	}

	d, err := cfg.ResolveDialect()
	if err != nil {
		return nil, err
	}
	dsn, err := DataSourceName(d, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	debug.Info("database connected", "dialect", d.String(), "driver", d.DriverName())
	return &Client{DB: db, Dialect: d}, nil
}

// New wraps an existing handle.
func New(db *sql.DB, d dialect.Dialect, s *schema.Schema) *Client {
	return &Client{DB: db, Dialect: d, Schema: s}
}

// LoadSchema reads the YAML table metadata at path.
func (c *Client) LoadSchema(path string) error {
	f, err := config.AppFs.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open schema: %w", err)
	}
	defer f.Close()

	s, err := schema.Load(f)
	if err != nil {
		return err
	}
	c.Schema = s
	return nil
}

// Session returns an executor session on the pooled handle.
func (c *Client) Session() *executor.Session {
	return executor.New(c.DB, c.Dialect, c.Schema)
}

// WithTx runs fn inside a transaction. The transaction commits when fn returns nil and rolls
// back when fn fails or panics.
func (c *Client) WithTx(ctx context.Context, fn func(ctx context.Context, s *executor.Session) error) (err error) {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				debug.Warn("rollback failed", "error", rerr)
			}
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", cerr)
		}
	}()

	return fn(ctx, c.Session().WithExecutor(tx))
}

// Close closes the database handle.
func (c *Client) Close() error {
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}

// DataSourceName converts a database URL into the DSN the dialect's driver expects.
// PostgreSQL URLs are passed through. mysql:// URLs become go-sql-driver DSNs and sqlite://
// or sqlite: prefixes are stripped.
func DataSourceName(d dialect.Dialect, databaseURL string) (string, error) {
	if databaseURL == "" {
		return "", fmt.Errorf("database url is required")
	}

	switch d.Name() {
	case dialect.MySQL:
		if !strings.HasPrefix(databaseURL, "mysql://") {
			return databaseURL, nil
		}
		u, err := url.Parse(databaseURL)
		if err != nil {
			return "", fmt.Errorf("invalid database url: %w", err)
		}
		mc := mysql.NewConfig()
		mc.Net = "tcp"
		mc.Addr = u.Host
		mc.DBName = strings.TrimPrefix(u.Path, "/")
		if u.User != nil {
			mc.User = u.User.Username()
			mc.Passwd, _ = u.User.Password()
		}
		mc.ParseTime = true
		for k, vs := range u.Query() {
			if len(vs) == 0 {
				continue
			}
			if mc.Params == nil {
				mc.Params = make(map[string]string)
			}
			mc.Params[k] = vs[len(vs)-1]
		}
		return mc.FormatDSN(), nil

	case dialect.SQLite:
		for _, prefix := range []string{"sqlite3://", "sqlite://", "sqlite3:", "sqlite:"} {
			if strings.HasPrefix(databaseURL, prefix) {
				return strings.TrimPrefix(databaseURL, prefix), nil
			}
		}
		return databaseURL, nil

	default:
		return databaseURL, nil
	}
}
