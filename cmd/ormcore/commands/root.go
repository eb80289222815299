// Package commands implements CLI commands.
package commands

import (
	"fmt"

	"github.com/satishbabariya/ormcore/config"
	"github.com/satishbabariya/ormcore/internal/debug"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// NewRootCommand builds the ormcore command tree.
func NewRootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "ormcore",
		Short:         "Render and run ormcore queries",
		Long:          "ormcore renders query descriptions to dialect-specific SQL and runs them against the configured database",
		Version:       fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				debug.Init(true)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log rendered queries and cascade decisions")

	root.AddCommand(NewRenderCommand())
	root.AddCommand(NewExecCommand())
	root.AddCommand(NewVersionCommand())
	root.AddCommand(NewConfigCommand())
	return root
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Debug {
		debug.Init(true)
	}
	return cfg, nil
}
