// Package commands implements the CLI commands for spacemake-config.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/J-81/spacemake/internal/config"
	"github.com/J-81/spacemake/internal/errors"
	"github.com/J-81/spacemake/internal/logging"
)

// Persistent flag values, shared by every subcommand.
var (
	settingsPath    string
	overlayFlags    []string // -f/--overlay, in order
	noDefaults      bool
	metricsTextfile string
	verbosity       int
	quiet           bool
	logFormat       string
	logFile         string
)

// settings is loaded before any command runs. It is nil, and settingsErr
// explains why, when the file is broken.
var (
	settings    *config.Settings
	settingsErr error
)

func init() {
	cobra.OnInitialize(initSettings)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&settingsPath, "settings", "",
		"settings file (default: ./settings.yaml or ~/.config/spacemake/settings.yaml)")
	pf.StringArrayVarP(&overlayFlags, "overlay", "f", nil,
		"configuration document applied after the settings overlays (repeatable, path or s3://bucket/key)")
	pf.BoolVar(&noDefaults, "no-defaults", false,
		"do not start from the built-in defaults")
	pf.StringVar(&metricsTextfile, "metrics-textfile", "",
		"write load metrics in Prometheus text format to this file (or spacemake_config.prom in this directory)")
	pf.CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	pf.BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	pf.StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	pf.StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")

	// Execute prints errors itself.
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initSettings() {
	config.Init()
	settings, settingsErr = config.Load(settingsPath)
}

var rootCmd = &cobra.Command{
	Use:   "spacemake-config",
	Short: "Resolve and validate spacemake configuration",
	Long: `spacemake-config resolves the layered configuration of the spacemake
spatial transcriptomics pipeline: pucks, run modes, adapters and barcode
flavors.

The built-in defaults are merged with the overlays named in the settings
file and on the command line, then checked for schema errors, duplicate
names, broken inheritance and out-of-range values. Every problem of the
first failing check is reported at once.`,
	Example: `  # Validate the defaults plus a project overlay
  spacemake-config validate -f project_config.yaml

  # Show a resolved run mode
  spacemake-config show run_modes visium

  # Export the merged configuration as TOML
  spacemake-config export --format toml -o resolved.toml

  See Also: spacemake-config settings, spacemake-config archive`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return checkSettings(cmd)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// logLevel maps -q, -v and SPACEMAKE_DEBUG to a level. Flags win over the
// environment.
func logLevel() slog.Level {
	if quiet {
		return slog.LevelError
	}
	v := verbosity
	if v == 0 {
		switch os.Getenv("SPACEMAKE_DEBUG") {
		case "1", "true":
			v = 2
		case "2":
			v = 3
		}
	}
	return logging.LevelFromVerbosity(v)
}

// setupLogging installs the logger on cmd's context and as slog default.
// Logs go to stderr as text or JSON, and to --log-file as JSON.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(errors.New("conflicting flags"), "cannot use --quiet and --verbose together")
	}

	level := logLevel()
	handler, err := logging.Config{Level: level, Format: logging.Format(logFormat), Output: cmd.ErrOrStderr()}.Handler()
	if err != nil {
		return errors.NewUserError(err, "Use --log-format text or --log-format json")
	}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return errors.NewSystemError(err, "Check that the --log-file directory exists and is writable")
		}
		fileHandler, _ := logging.Config{Level: level, Format: logging.FormatJSON, Output: f}.Handler()
		handler = logging.NewMultiHandler(handler, fileHandler)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))
	return nil
}

// checkSettings reports a broken settings file. The settings commands are
// exempt so a broken file can be repaired, and doctor reports it itself.
func checkSettings(cmd *cobra.Command) error {
	if cmd.Name() == "help" || cmd == versionCmd || cmd == doctorCmd {
		return nil
	}
	for c := cmd; c != nil; c = c.Parent() {
		if c == settingsCmd {
			return nil
		}
	}
	if settingsErr != nil {
		return errors.NewUserError(settingsErr, "Fix the file or run: spacemake-config settings list")
	}
	return nil
}

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

// printError writes err and its suggestion, if any. Validation and doctor
// failures have already been reported in full.
func printError(w io.Writer, err error) {
	for _, reported := range []error{errValidationFailed, errDoctorWarnings, errDoctorErrors} {
		if errors.Is(err, reported) {
			return
		}
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) && exitErr.Suggestion != "" {
		fmt.Fprintf(w, "  %s\n", exitErr.Suggestion)
	}
}
