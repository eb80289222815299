package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/satishbabariya/ormcore/config"
	"github.com/satishbabariya/ormcore/dialect"
	"github.com/satishbabariya/ormcore/internal/cli/queryfile"
	"github.com/satishbabariya/ormcore/internal/cli/ui"
	"github.com/satishbabariya/ormcore/internal/cli/watch"
	"github.com/satishbabariya/ormcore/schema"
	"github.com/spf13/cobra"
)

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	var (
		dialectName string
		schemaPath  string
		watchFile   bool
	)

	cmd := &cobra.Command{
		Use:   "render <query.yaml>",
		Short: "Render a query description to SQL",
		Long:  "Render a YAML query description to SQL for a dialect and print the statement with its arguments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			run := func() error {
				r, err := renderFile(file, dialectName, schemaPath)
				if err != nil {
					return err
				}
				ui.PrintSQL(fmt.Sprintf("%s (%s)", file, r.dialect), r.sql, r.args)
				return nil
			}
			if !watchFile {
				return run()
			}

			files := []string{file}
			if schemaPath != "" {
				files = append(files, schemaPath)
			}
			w, err := watch.New(func() error {
				if err := run(); err != nil {
					ui.PrintError("%v", err)
				}
				return nil
			}, watch.DefaultDebounce, files...)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			return w.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&dialectName, "dialect", "", "Dialect to render for (postgres, mysql, sqlite); defaults to the query file, then the config")
	cmd.Flags().StringVar(&schemaPath, "schema", "", "Schema file used to resolve included relations")
	cmd.Flags().BoolVarP(&watchFile, "watch", "w", false, "Re-render when the query or schema file changes")
	return cmd
}

type rendered struct {
	dialect dialect.Dialect
	sql     string
	args    []any
}

func renderFile(file, dialectName, schemaPath string) (*rendered, error) {
	f, err := openQuery(file)
	if err != nil {
		return nil, err
	}
	d, err := resolveDialect(f, dialectName)
	if err != nil {
		return nil, err
	}
	var s *schema.Schema
	if len(f.Include) > 0 {
		if s, err = openSchema(schemaPath); err != nil {
			return nil, err
		}
	}

	b, err := f.Build(d, s)
	if err != nil {
		return nil, err
	}
	sql, args, err := b.Render()
	if err != nil {
		return nil, err
	}
	return &rendered{dialect: d, sql: sql, args: args}, nil
}

func openQuery(path string) (*queryfile.File, error) {
	r, err := config.AppFs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open query file: %w", err)
	}
	defer r.Close()
	return queryfile.Load(r)
}

func openSchema(path string) (*schema.Schema, error) {
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		path = cfg.SchemaPath
	}
	r, err := config.AppFs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schema: %w", err)
	}
	defer r.Close()
	return schema.Load(r)
}

// resolveDialect picks the flag, then the query file, then the configuration.
func resolveDialect(f *queryfile.File, flag string) (dialect.Dialect, error) {
	switch {
	case flag != "":
		return dialect.Parse(flag, "")
	case f.Dialect != "":
		return dialect.Parse(f.Dialect, "")
	}
	cfg, err := loadConfig()
	if err != nil {
		return dialect.Dialect{}, err
	}
	return cfg.ResolveDialect()
}
