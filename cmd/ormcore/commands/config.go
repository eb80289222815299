package commands

import (
	"net/url"
	"strconv"

	"github.com/satishbabariya/ormcore/config"
	"github.com/satishbabariya/ormcore/internal/cli/ui"
	"github.com/spf13/cobra"
)

// NewConfigCommand creates the config command.
func NewConfigCommand() *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration",
		Long:  "Show the configuration resolved from .ormcore.yaml, .env files and ORMCORE_* variables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := ui.PrintTable([]string{"key", "value"}, configRows(cfg)); err != nil {
				return err
			}
			if !save {
				return nil
			}
			path, err := config.Save(cfg)
			if err != nil {
				return err
			}
			ui.PrintSuccess("configuration written to %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Write the resolved configuration, without the database url, to the user config file")
	return cmd
}

func configRows(cfg *config.Config) [][]string {
	return [][]string{
		{"dialect", cfg.Dialect},
		{"database_url", redact(cfg.DatabaseURL)},
		{"server_version", cfg.ServerVersion},
		{"schema_path", cfg.SchemaPath},
		{"debug", strconv.FormatBool(cfg.Debug)},
		{"max_open_conns", strconv.Itoa(cfg.MaxOpenConns)},
		{"max_idle_conns", strconv.Itoa(cfg.MaxIdleConns)},
		{"conn_max_idle_time", cfg.ConnMaxIdleTime.String()},
	}
}

// redact hides the password of a URL-style DSN.
func redact(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
