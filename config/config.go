// Package config resolves connection settings from .ormcore.yaml, ORMCORE_* environment
// variables and .env files.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/satishbabariya/ormcore/dialect"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// AppFs is the filesystem configuration files are read from and written to.
var AppFs = afero.NewOsFs()

const (
	configName = ".ormcore"
	envPrefix  = "ORMCORE"
)

// Config holds the engine configuration
type Config struct {
	Dialect         string        `mapstructure:"dialect" yaml:"dialect"`
	DatabaseURL     string        `mapstructure:"database_url" yaml:"database_url"`
	ServerVersion   string        `mapstructure:"server_version" yaml:"server_version"`
	SchemaPath      string        `mapstructure:"schema_path" yaml:"schema_path"`
	Debug           bool          `mapstructure:"debug" yaml:"debug"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" yaml:"conn_max_idle_time"`
}

func newViper() (*viper.Viper, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetFs(AppFs)
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(home)
	v.AddConfigPath(filepath.Join(home, ".config", "ormcore"))

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("dialect", "")
	v.SetDefault("database_url", "")
	v.SetDefault("server_version", "")
	v.SetDefault("schema_path", "schema.yaml")
	v.SetDefault("debug", false)
	v.SetDefault("max_open_conns", 0)
	v.SetDefault("max_idle_conns", 2)
	v.SetDefault("conn_max_idle_time", "0s")
	return v, nil
}

// Load loads configuration. Values come, from lowest to highest precedence, from defaults,
// the config file, .env, .env.local and ORMCORE_* variables. DATABASE_URL is used when
// database_url is unset.
func Load() (*Config, error) {
	if err := loadDotenv(".env", false); err != nil {
		return nil, err
	}
	if err := loadDotenv(".env.local", true); err != nil {
		return nil, err
	}

	v, err := newViper()
	if err != nil {
		return nil, err
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	return cfg, nil
}

// loadDotenv reads a dotenv file from AppFs into the process environment. Non-empty
// variables are kept unless override is set.
func loadDotenv(name string, override bool) error {
	f, err := AppFs.Open(name)
	if err != nil {
		return nil
	}
	defer f.Close()

	vars, err := godotenv.Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	for k, val := range vars {
		if cur, set := os.LookupEnv(k); set && cur != "" && !override {
			continue
		}
		if err := os.Setenv(k, val); err != nil {
			return err
		}
	}
	return nil
}

// Save writes cfg to $HOME/.config/ormcore/.ormcore.yaml and returns the path written.
func Save(cfg *Config) (string, error) {
	v, err := newViper()
	if err != nil {
		return "", err
	}
	v.Set("dialect", cfg.Dialect)
	v.Set("server_version", cfg.ServerVersion)
	v.Set("schema_path", cfg.SchemaPath)
	v.Set("debug", cfg.Debug)
	v.Set("max_open_conns", cfg.MaxOpenConns)
	v.Set("max_idle_conns", cfg.MaxIdleConns)
	v.Set("conn_max_idle_time", cfg.ConnMaxIdleTime.String())

	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".config", "ormcore")
	if err := AppFs.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, configName+".yaml")
	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}

// ResolveDialect returns the configured dialect, inferring it from the database URL scheme
// when no dialect is set.
func (c *Config) ResolveDialect() (dialect.Dialect, error) {
	name := c.Dialect
	if name == "" {
		name = schemeOf(c.DatabaseURL)
	}
	if name == "" {
		return dialect.Dialect{}, fmt.Errorf("no dialect configured and none can be inferred from the database url")
	}
	return dialect.Parse(name, c.ServerVersion)
}

func schemeOf(dsn string) string {
	switch {
	case dsn == "":
		return ""
	case strings.HasPrefix(dsn, "file:"), strings.HasSuffix(dsn, ".db"), strings.HasSuffix(dsn, ".sqlite"):
		return "sqlite"
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return ""
	}
	return u.Scheme
}
