package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/satishbabariya/ormcore/decode"
	"github.com/satishbabariya/ormcore/executor"
	"github.com/satishbabariya/ormcore/internal/cli/ui"
	"github.com/satishbabariya/ormcore/runtime"
	"github.com/spf13/cobra"
)

// NewExecCommand creates the exec command.
func NewExecCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec <query.yaml>",
		Short: "Run a query description against the configured database",
		Long:  "Render a YAML query description for the configured database, run it and print the rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd.Context(), args[0])
		},
	}
	return cmd
}

func runExec(ctx context.Context, file string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := runtime.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.LoadSchema(cfg.SchemaPath); err != nil {
		return err
	}

	f, err := openQuery(file)
	if err != nil {
		return err
	}
	b, err := f.Build(client.Dialect, client.Schema)
	if err != nil {
		return err
	}

	rows, err := executor.Query(ctx, client.Session(), b)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		ui.PrintWarning("no rows")
		return nil
	}

	headers, cells := rowTable(rows)
	if err := ui.PrintTable(headers, cells); err != nil {
		return err
	}
	ui.PrintSuccess("%d row(s)", len(rows))
	return nil
}

// rowTable lays rows out with plain columns first and eager-joined columns after them,
// labelled relation.column and grouped by relation.
func rowTable(rows []decode.Row) ([]string, [][]string) {
	columns := rows[0].Columns()

	var plain, joined []string
	for _, col := range columns {
		if decode.IsAlias(col) {
			joined = append(joined, col)
		} else {
			plain = append(plain, col)
		}
	}
	sort.SliceStable(joined, func(i, j int) bool {
		ri, _, _ := decode.SplitAlias(joined[i])
		rj, _, _ := decode.SplitAlias(joined[j])
		return ri < rj
	})
	ordered := append(plain, joined...)

	headers := make([]string, len(ordered))
	for i, col := range ordered {
		if rel, field, ok := decode.SplitAlias(col); ok {
			headers[i] = rel + "." + field
		} else {
			headers[i] = col
		}
	}

	cells := make([][]string, len(rows))
	for i, row := range rows {
		line := make([]string, len(ordered))
		for j, col := range ordered {
			v, _ := row.Value(col)
			line[j] = formatCell(v)
		}
		cells[i] = line
	}
	return headers, cells
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	case string:
		return strings.ReplaceAll(x, "\n", `\n`)
	default:
		return fmt.Sprint(x)
	}
}
