package commands

import (
	"github.com/spf13/cobra"

	"github.com/J-81/spacemake/internal/configstore"
	"github.com/J-81/spacemake/internal/errors"
	"github.com/J-81/spacemake/internal/validator"
)

var (
	validateJSON   bool
	validateStrict bool
)

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false,
		"output results as JSON")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false,
		"treat lint warnings as errors")
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate [document...]",
	Short: "Validate the layered configuration",
	Long: `Load the built-in defaults, the settings overlays, the -f overlays and the
given documents, in that order, and validate the result.

Validation runs in stages: schema, duplicate names, references (parents,
inheritance cycles, placeholders) and ranges. The first stage that finds
problems reports all of them and stops. A valid configuration is also linted
for legal but suspicious settings.

Exit codes:
  0 - Configuration is valid
  1 - Validation failed`,
	Example: `  # Validate the defaults and the project configuration
  spacemake-config validate project_config.yaml

  # Machine-readable report
  spacemake-config validate project_config.yaml --json

  # Validate only the given document
  spacemake-config validate --no-defaults full_config.yaml

  See Also:
    spacemake-config show    - Inspect resolved entries
    spacemake-config export  - Write the resolved configuration`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	snap, err := loadSnapshot(cmd.Context(), args)

	var loadErr *configstore.LoadError
	if err != nil && !errors.As(err, &loadErr) {
		return err
	}

	result := validator.FromError(err)
	if snap != nil {
		result.Issues = append(result.Issues, validator.Lint(snap).Issues...)
	}

	format := validator.FormatText
	if validateJSON {
		format = validator.FormatJSON
	}
	if err := validator.NewReporter(cmd.OutOrStdout(), format).Report(result); err != nil {
		return err
	}

	if result.HasErrors() || (validateStrict && result.HasWarnings()) {
		return errValidationFailed
	}
	return nil
}
