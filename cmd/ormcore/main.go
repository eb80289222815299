// Package main is the entry point for the ormcore CLI.
package main

import (
	"os"

	"github.com/satishbabariya/ormcore/cmd/ormcore/commands"
	"github.com/satishbabariya/ormcore/internal/cli/ui"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		ui.PrintError("%v", err)
		os.Exit(1)
	}
}
