package commands

import (
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/J-81/spacemake/internal/document"
	"github.com/J-81/spacemake/internal/errors"
	"github.com/J-81/spacemake/internal/logging"
	"github.com/J-81/spacemake/pkg/fileutil"
)

var (
	exportFormat string
	exportOutput string
)

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "",
		"output format: yaml, json, toml (default: from --output extension, else yaml)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "",
		"write to this file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the resolved configuration",
	Long: `Write the merged and resolved configuration as a single document.

Inheritance is flattened: every run mode carries all of its fields and every
barcode flavor the fields it took from the default flavor. Loading the export
on its own with --no-defaults yields the same configuration digest.

Files are written atomically.`,
	Example: `  # Print as YAML
  spacemake-config export -f project_config.yaml

  # Write TOML
  spacemake-config export -o resolved.toml

  See Also: spacemake-config archive save`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, _ []string) error {
	name := exportFormat
	if name == "" {
		name = string(document.FormatFromName(exportOutput))
	}
	format, err := parseFormatFlag(name, document.FormatYAML, document.FormatJSON, document.FormatTOML)
	if err != nil {
		return err
	}

	snap, err := loadSnapshot(cmd.Context(), nil)
	if err != nil {
		return loadFailed(err)
	}

	data, err := encode(snap.Export(), format)
	if err != nil {
		return err
	}

	if exportOutput == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return errors.Wrap(err, "writing output")
	}

	path, err := filepath.Abs(exportOutput)
	if err != nil {
		return errors.Wrap(err, "resolving output path")
	}
	if err := fileutil.AtomicWriteFile(path, data, 0o644); err != nil {
		return errors.NewSystemError(err, "Check that the output directory exists and is writable")
	}
	logging.FromContext(cmd.Context()).Info("exported configuration",
		slog.String("path", path),
		slog.String("format", string(format)),
		slog.String("digest", snap.Digest()),
	)
	return nil
}
