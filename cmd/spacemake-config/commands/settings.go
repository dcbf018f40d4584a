package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/J-81/spacemake/internal/config"
	"github.com/J-81/spacemake/internal/document"
	"github.com/J-81/spacemake/internal/editor"
	"github.com/J-81/spacemake/internal/errors"
	"github.com/J-81/spacemake/internal/logging"
)

func init() {
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsListCmd)
	settingsCmd.AddCommand(settingsEditCmd)
	rootCmd.AddCommand(settingsCmd)
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage spacemake-config settings",
	Long: `Manage the tool settings stored in ~/.config/spacemake/settings.yaml.

Without a subcommand, lists all settings. Every setting can be overridden
from the environment, e.g. SPACEMAKE_S3_ENDPOINT for s3.endpoint.`,
	Example: `  # List all settings
  spacemake-config settings

  # Get a specific value
  spacemake-config settings get overlays

  # Set a value
  spacemake-config settings set overlays /data/lab.yaml,s3://lab/site.yaml

See Also: spacemake-config validate`,
	RunE: runSettingsList,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a settings value",
	Long: `Get a single settings value by key.

Supports dot notation for nested keys. List values are printed one per line.`,
	Example: `  spacemake-config settings get s3.region`,
	Args:    cobra.ExactArgs(1),
	RunE:    runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a settings value",
	Long: `Set a settings value and write the settings file.

For overlays, use comma-separated values. The file is validated before it is
written.`,
	Example: `  spacemake-config settings set s3.path_style true`,
	Args:    cobra.ExactArgs(2),
	RunE:    runSettingsSet,
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all settings",
	Long:  `List all settings values in YAML format. Credentials are masked.`,
	Args:  cobra.NoArgs,
	RunE:  runSettingsList,
}

var settingsEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the settings file in an editor",
	Long: `Open the settings file in your editor and validate it once the editor exits.

A missing file is first written with the current settings. The editor is
taken from SPACEMAKE_EDITOR, VISUAL or EDITOR, falling back to nano or vi.`,
	Example: `  spacemake-config settings edit

  # Use a specific editor
  SPACEMAKE_EDITOR="code --wait" spacemake-config settings edit`,
	Args: cobra.NoArgs,
	RunE: runSettingsEdit,
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	out := cmd.OutOrStdout()

	if !viper.IsSet(key) {
		fmt.Fprintln(out, "not set")
		return nil
	}

	switch v := viper.Get(key).(type) {
	case []any:
		for _, item := range v {
			fmt.Fprintln(out, item)
		}
	case []string:
		for _, item := range v {
			fmt.Fprintln(out, item)
		}
	default:
		val := viper.GetString(key)
		if logging.ShouldMask(key) {
			val = logging.MaskValue(val)
		}
		fmt.Fprintln(out, val)
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	if err := config.Set(key, value); err != nil {
		return errors.NewUserError(err, "Run: spacemake-config settings list")
	}
	path, err := config.Save(settingsPath)
	if err != nil {
		return errors.NewUserError(err, "The value was not saved")
	}

	shown := value
	if logging.ShouldMask(key) {
		shown = logging.MaskValue(value)
	}
	logging.FromContext(cmd.Context()).Info("saved settings", "path", path)
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, shown)
	return nil
}

func runSettingsList(cmd *cobra.Command, _ []string) error {
	s, err := config.Current()
	if err != nil {
		return err
	}
	if s.S3.AccessKeyID != "" {
		s.S3.AccessKeyID = logging.MaskValue(s.S3.AccessKeyID)
	}
	if s.S3.SecretAccessKey != "" {
		s.S3.SecretAccessKey = logging.MaskValue(s.S3.SecretAccessKey)
	}
	return writeEncoded(cmd.OutOrStdout(), s, document.FormatYAML)
}

func runSettingsEdit(cmd *cobra.Command, _ []string) error {
	path := config.Path(settingsPath)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if _, err := config.Save(path); err != nil {
			return errors.NewUserError(err, "Fix the settings from the environment first")
		}
	}

	streams := editor.Streams{In: cmd.InOrStdin(), Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}
	if err := editor.Open(cmd.Context(), path, streams, os.Getenv); err != nil {
		return errors.NewSystemError(err, "Set SPACEMAKE_EDITOR or EDITOR to an installed editor")
	}

	config.Init()
	if _, err := config.Load(path); err != nil {
		return errors.NewUserError(err, "Run: spacemake-config settings edit")
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Settings in %s are valid\n", path)
	return nil
}
