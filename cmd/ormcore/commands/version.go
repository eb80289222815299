package commands

import (
	"fmt"
	goruntime "runtime"

	"github.com/hashicorp/go-version"
	"github.com/satishbabariya/ormcore/dialect"
	"github.com/satishbabariya/ormcore/internal/cli/ui"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	var (
		check   bool
		require string
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print version information; with --check, report what the configured database server supports",
		RunE: func(cmd *cobra.Command, args []string) error {
			printVersionInfo()
			if !check {
				return nil
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			d, err := cfg.ResolveDialect()
			if err != nil {
				return err
			}
			return checkServer(d, require)
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Report the capabilities of the configured server version")
	cmd.Flags().StringVar(&require, "require", "", `Version constraint the server must satisfy, e.g. ">= 12"`)
	return cmd
}

func printVersionInfo() {
	fmt.Fprintf(ui.Output, "ormcore version %s\n", Version)
	fmt.Fprintf(ui.Output, "  Git Commit: %s\n", GitCommit)
	fmt.Fprintf(ui.Output, "  Go Version: %s\n", goruntime.Version())
	fmt.Fprintf(ui.Output, "  OS/Arch: %s/%s\n", goruntime.GOOS, goruntime.GOARCH)
}

func checkServer(d dialect.Dialect, require string) error {
	server := d.Version()
	if server == "" {
		server = "unpinned"
	}
	returning := "no"
	if d.SupportsReturning() {
		returning = "yes"
	}
	ignore := "savepoint emulation"
	if d.ConflictStrategy() == dialect.ConflictIgnore {
		clause, err := d.IgnoreDuplicates("id")
		if err != nil {
			return err
		}
		ignore = clause
	}

	if err := ui.PrintTable([]string{"dialect", "server", "driver", "RETURNING", "skip duplicate keys"},
		[][]string{{string(d.Name()), server, d.DriverName(), returning, ignore}}); err != nil {
		return err
	}

	if require == "" {
		return nil
	}
	ok, err := satisfies(d.Version(), require)
	if err != nil {
		return err
	}
	if !ok {
		ui.PrintWarning("server version %s does not satisfy %s", server, require)
		return fmt.Errorf("server version check failed")
	}
	ui.PrintSuccess("server version %s satisfies %s", server, require)
	return nil
}

// satisfies reports whether server meets constraint. An unpinned server is assumed current.
func satisfies(server, constraint string) (bool, error) {
	c, err := version.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}
	if server == "" {
		return true, nil
	}
	v, err := version.NewVersion(server)
	if err != nil {
		return false, fmt.Errorf("invalid server version %q: %w", server, err)
	}
	return c.Check(v), nil
}
