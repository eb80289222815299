package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/satishbabariya/ormcore/dialect"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useMemFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	prev := AppFs
	AppFs = fs
	t.Cleanup(func() { AppFs = prev })

	homedir.DisableCache = true
	t.Setenv("HOME", "/home/tester")
	t.Setenv("DATABASE_URL", "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	useMemFs(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "schema.yaml", cfg.SchemaPath)
	assert.Equal(t, 2, cfg.MaxIdleConns)
	assert.False(t, cfg.Debug)
	assert.Empty(t, cfg.Dialect)
}

func TestLoad_FileAndEnv(t *testing.T) {
	fs := useMemFs(t)

	require.NoError(t, afero.WriteFile(fs, "/home/tester/.ormcore.yaml", []byte(`
dialect: postgres
server_version: "9.4"
debug: true
max_open_conns: 10
conn_max_idle_time: 30s
`), 0o644))
	t.Setenv("ORMCORE_MAX_OPEN_CONNS", "20")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Dialect)
	assert.Equal(t, "9.4", cfg.ServerVersion)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 20, cfg.MaxOpenConns)
	assert.Equal(t, 30*time.Second, cfg.ConnMaxIdleTime)
}

func TestLoad_Dotenv(t *testing.T) {
	fs := useMemFs(t)
	t.Setenv("ORMCORE_DIALECT", "")

	require.NoError(t, afero.WriteFile(fs, ".env", []byte("DATABASE_URL=postgres://localhost/app\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, ".env.local", []byte("ORMCORE_DIALECT=pgx\n"), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/app", cfg.DatabaseURL)
	assert.Equal(t, "pgx", cfg.Dialect)
}

func TestSave(t *testing.T) {
	fs := useMemFs(t)

	path, err := Save(&Config{Dialect: "sqlite", SchemaPath: "db/schema.yaml", MaxIdleConns: 4})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/tester", ".config", "ormcore", ".ormcore.yaml"), path)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "dialect: sqlite")
	assert.Contains(t, string(data), "schema_path: db/schema.yaml")
}

func TestResolveDialect(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want dialect.Name
	}{
		{name: "explicit", cfg: Config{Dialect: "mysql"}, want: dialect.MySQL},
		{name: "postgres url", cfg: Config{DatabaseURL: "postgres://u@localhost/db"}, want: dialect.Postgres},
		{name: "sqlite file", cfg: Config{DatabaseURL: "file:test.db?cache=shared"}, want: dialect.SQLite},
		{name: "sqlite path", cfg: Config{DatabaseURL: "/tmp/app.db"}, want: dialect.SQLite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := tt.cfg.ResolveDialect()
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Name())
		})
	}

	_, err := (&Config{}).ResolveDialect()
	assert.Error(t, err)
}
