package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/J-81/spacemake/internal/config"
	"github.com/J-81/spacemake/internal/configstore"
	"github.com/J-81/spacemake/internal/doctor"
	"github.com/J-81/spacemake/internal/errors"
)

var (
	doctorJSON bool
	doctorAll  bool
	doctorFix  bool
)

// Exit codes follow the report: 1 for warnings, 2 for errors.
var (
	errDoctorWarnings = errors.NewExitError(errors.New("doctor found warnings"), errors.ExitUser)
	errDoctorErrors   = errors.NewExitError(errors.New("doctor found errors"), errors.ExitSystem)
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorAll, "all", false,
		"show passed and informational checks too")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false,
		"repair fixable issues, then check again")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the spacemake installation",
	Long: `Run diagnostic checks on the settings file, the layered configuration,
the snapshot archive and the metrics textfile.

Doctor runs even when the settings file is broken and reports the problem
as one of its checks.

Exit codes:
  0 - No errors or warnings
  1 - Warnings present, no errors
  2 - Errors present`,
	Example: `  # Show problems only
  spacemake-config doctor

  # Tighten settings file permissions
  spacemake-config doctor --fix`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		if doctorJSON && doctorAll {
			return errors.NewUserError(errors.New("flags --json and --all are mutually exclusive"), "")
		}
		return nil
	},
	RunE: runDoctor,
}

func newDoctorRunner() (*doctor.Runner, error) {
	archiveFile, err := archivePath()
	if err != nil {
		return nil, err
	}
	return doctor.NewRunner(
		doctor.NewSettingsFileCheck(config.Path(settingsPath)),
		doctor.NewSettingsCheck(settingsErr),
		doctor.NewConfigurationCheck(func(ctx context.Context) (*configstore.Snapshot, error) {
			return loadSnapshot(ctx, nil)
		}),
		doctor.NewArchiveCheck(archiveFile),
		doctor.NewMetricsTextfileCheck(metricsPath()),
	), nil
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	runner, err := newDoctorRunner()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	report := runner.Run(cmd.Context())
	if doctorFix {
		fixes := runner.Fix()
		for _, f := range fixes {
			if f.Fixed {
				fmt.Fprintf(cmd.ErrOrStderr(), "fixed %s: %s\n", f.Path, f.Description)
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "could not fix %s: %s\n", f.Path, f.Description)
			}
		}
		if len(fixes) > 0 {
			report = runner.Run(cmd.Context())
		}
	}

	if doctorJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return errors.Wrap(err, "encoding JSON")
		}
	} else {
		writeDoctorText(out, report, doctorAll)
	}

	if report.HasErrors() {
		return errDoctorErrors
	}
	if report.HasWarnings() {
		return errDoctorWarnings
	}
	return nil
}

func writeDoctorText(w io.Writer, report *doctor.Report, all bool) {
	shown := 0
	for _, r := range report.Results {
		problem := r.Status == doctor.SeverityError || r.Status == doctor.SeverityWarning
		if !all && !problem {
			continue
		}
		shown++
		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(r.Status), r.Category, r.Name, r.Message)
		if problem && r.FixHint != "" {
			fmt.Fprintf(w, "  hint: %s\n", r.FixHint)
		}
	}
	if shown > 0 {
		fmt.Fprintln(w)
	}
	s := report.Summary
	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		s.Passed, s.Info, s.Warnings, s.Errors)
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return color.GreenString("✓")
	case doctor.SeverityInfo:
		return color.CyanString("ℹ")
	case doctor.SeverityWarning:
		return color.YellowString("⚠")
	case doctor.SeverityError:
		return color.RedString("✗")
	default:
		return "?"
	}
}
