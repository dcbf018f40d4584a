// Package main is the entry point for the spacemake-config CLI.
package main

import (
	"os"

	"github.com/J-81/spacemake/cmd/spacemake-config/commands"
	"github.com/J-81/spacemake/internal/errors"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(errors.ExitCode(err))
	}
}
