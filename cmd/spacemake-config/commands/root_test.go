package commands

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/J-81/spacemake/internal/document"
	"github.com/J-81/spacemake/internal/errors"
	"github.com/J-81/spacemake/internal/logging"
	"github.com/J-81/spacemake/internal/paths"
)

// resetFlags restores every package-level flag variable. Cobra keeps flag
// values between Execute calls on the shared rootCmd.
func resetFlags() {
	settingsPath = ""
	overlayFlags = nil
	noDefaults = false
	metricsTextfile = ""
	verbosity = 0
	quiet = false
	logFormat = "text"
	logFile = ""
	settings = nil
	settingsErr = nil
	s3Opener = nil

	validateJSON = false
	validateStrict = false
	showFormat = "yaml"
	runModeFormat = "yaml"
	sliceR1, sliceR2 = "", ""
	tagsFields, tagsValues = nil, nil
	exportFormat, exportOutput = "", ""
	archiveSaveLabel = ""
	archiveListJSON = false
	archiveShowFormat = "yaml"
	archiveShowVerify = false
	doctorJSON, doctorAll, doctorFix = false, false, false
}

// isolate points settings and data directories into a temp dir and makes it
// the working directory. It returns the temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(paths.EnvConfigDir, filepath.Join(dir, "config"))
	t.Setenv(paths.EnvDataDir, filepath.Join(dir, "data"))
	t.Setenv("SPACEMAKE_DEBUG", "0")
	t.Chdir(dir)
	return dir
}

// execute runs the CLI with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeDoc writes a configuration document into dir.
func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// parseFile reads a document written by writeDoc.
func parseFile(t *testing.T, dir, name string) *document.Document {
	t.Helper()
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := document.Parse(path, data, document.FormatFromName(path))
	require.NoError(t, err)
	return doc
}

func TestSetupLogging_VerbosityFlags(t *testing.T) {
	isolate(t)
	resetFlags()
	t.Cleanup(resetFlags)

	tests := []struct {
		name      string
		verbosity int
		wantLevel slog.Level
	}{
		{"default (0)", 0, slog.LevelWarn},
		{"verbose (1)", 1, slog.LevelInfo},
		{"debug (2)", 2, slog.LevelDebug},
		{"trace (3)", 3, logging.LevelTrace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verbosity = tt.verbosity
			require.NoError(t, setupLogging(rootCmd))

			logger := slog.Default()
			assert.True(t, logger.Enabled(t.Context(), tt.wantLevel), "level %v should be enabled", tt.wantLevel)
			if tt.wantLevel > logging.LevelTrace {
				assert.False(t, logger.Enabled(t.Context(), tt.wantLevel-4), "level %v should be disabled", tt.wantLevel-4)
			}
		})
	}
}

func TestSetupLogging_EnvVar(t *testing.T) {
	isolate(t)
	resetFlags()
	t.Cleanup(resetFlags)

	tests := []struct {
		name      string
		envVal    string
		wantLevel slog.Level
	}{
		{"SPACEMAKE_DEBUG=1", "1", slog.LevelDebug},
		{"SPACEMAKE_DEBUG=true", "true", slog.LevelDebug},
		{"SPACEMAKE_DEBUG=2", "2", logging.LevelTrace},
		{"SPACEMAKE_DEBUG=0", "0", slog.LevelWarn},
		{"SPACEMAKE_DEBUG=unknown", "foo", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verbosity = 0
			t.Setenv("SPACEMAKE_DEBUG", tt.envVal)
			require.NoError(t, setupLogging(rootCmd))

			logger := slog.Default()
			assert.True(t, logger.Enabled(t.Context(), tt.wantLevel))
			if tt.wantLevel == slog.LevelDebug {
				assert.False(t, logger.Enabled(t.Context(), logging.LevelTrace))
			}
		})
	}
}

func TestSetupLogging_QuietAndVerbose(t *testing.T) {
	isolate(t)
	_, stderr, err := execute(t, "-q", "-v", "slice", "r1[0:4]")
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
	assert.Empty(t, stderr, "errors are printed by Execute, not by cobra")
}

func TestSetupLogging_UnknownFormat(t *testing.T) {
	isolate(t)
	_, _, err := execute(t, "--log-format", "xml", "slice", "r1[0:4]")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown log format "xml"`)
}

func TestSetupLogging_LogFile(t *testing.T) {
	dir := isolate(t)
	logPath := filepath.Join(dir, "spacemake.log")

	_, stderr, err := execute(t, "-vv", "--log-file", logPath, "validate")
	require.NoError(t, err)
	assert.Contains(t, stderr, "configuration loaded")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"configuration loaded"`)
	assert.Contains(t, string(data), `"level":"DEBUG"`)
}

func TestCheckSettings_BrokenFile(t *testing.T) {
	dir := isolate(t)
	bad := writeDoc(t, dir, "bad-settings.yaml", "version: 9\n")

	_, _, err := execute(t, "--settings", bad, "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config version: 9")

	// The settings commands still run so the file can be repaired.
	_, _, err = execute(t, "--settings", bad, "settings", "list")
	require.NoError(t, err)
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, errors.NewUserError(errors.New("boom"), "Try again"))
	assert.Equal(t, "Error: boom\n  Try again\n", buf.String())

	buf.Reset()
	printError(&buf, errValidationFailed)
	assert.Empty(t, buf.String())

	buf.Reset()
	printError(&buf, errors.New("plain"))
	assert.True(t, strings.HasPrefix(buf.String(), "Error: plain"))
}
