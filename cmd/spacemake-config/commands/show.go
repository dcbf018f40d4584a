package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/J-81/spacemake/internal/configstore"
	"github.com/J-81/spacemake/internal/document"
	"github.com/J-81/spacemake/internal/errors"
)

var showFormat string

func init() {
	showCmd.Flags().StringVar(&showFormat, "format", "yaml",
		"output format: yaml, json")
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <category> [name]",
	Short: "List or print resolved entries",
	Long: `Without a name, list the entry names of a category one per line.
With a name, print that entry fully resolved: run modes include every field
inherited from their parents and barcode flavors every field taken from the
default flavor.

Categories: pucks, run_modes, adapters, barcode_flavors.`,
	Example: `  # List run modes
  spacemake-config show run_modes

  # Print one puck as JSON
  spacemake-config show pucks visium --format json

  See Also: spacemake-config run-mode`,
	Args: cobra.RangeArgs(1, 2),
	ValidArgs: []string{
		string(configstore.CategoryPucks),
		string(configstore.CategoryRunModes),
		string(configstore.CategoryAdapters),
		string(configstore.CategoryBarcodeFlavors),
	},
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	format, err := parseFormatFlag(showFormat, document.FormatYAML, document.FormatJSON)
	if err != nil {
		return err
	}
	category, err := configstore.ParseCategory(args[0])
	if err != nil {
		return errors.NewUserError(err, "Categories: pucks, run_modes, adapters, barcode_flavors")
	}

	snap, err := loadSnapshot(cmd.Context(), nil)
	if err != nil {
		return loadFailed(err)
	}

	if len(args) == 1 {
		for _, name := range snap.Names(category) {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	}
	return printEntry(cmd, snap, category, args[1], format)
}

func printEntry(cmd *cobra.Command, snap *configstore.Snapshot, category configstore.Category, name string, format document.Format) error {
	doc, err := entityDocument(snap, category, name)
	if err != nil {
		return errors.NewUserError(err, fmt.Sprintf("Run: spacemake-config show %s", category))
	}
	return writeEncoded(cmd.OutOrStdout(), doc, format)
}

// loadFailed turns a validation failure into a user error pointing at validate.
func loadFailed(err error) error {
	var loadErr *configstore.LoadError
	if errors.As(err, &loadErr) {
		return errors.NewConfigError(err)
	}
	return err
}
