package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/J-81/spacemake/internal/errors"
)

func TestDoctor_Clean(t *testing.T) {
	isolate(t)

	stdout, _, err := execute(t, "doctor")
	require.NoError(t, err)
	assert.Equal(t, "Summary: 2 passed, 3 info, 0 warnings, 0 errors\n", stdout)
}

func TestDoctor_All(t *testing.T) {
	isolate(t)

	stdout, _, err := execute(t, "doctor", "--all")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[configuration] configuration: resolved 6 run modes")
	assert.Contains(t, stdout, "[archive] archive: no archive yet")
	assert.Contains(t, stdout, "[metrics] metrics-textfile: metrics textfile not configured")
}

func TestDoctor_InvalidOverlay(t *testing.T) {
	dir := isolate(t)
	overlay := writeDoc(t, dir, "bad.yaml", `
run_modes:
  custom:
    parent: missing
`)

	stdout, _, err := execute(t, "doctor", "-f", overlay)
	require.ErrorIs(t, err, errDoctorErrors)
	assert.Equal(t, errors.ExitSystem, errors.ExitCode(err))
	assert.Contains(t, stdout, "[configuration] configuration: reference stage failed with 1 error(s)")
	assert.Contains(t, stdout, "  hint: spacemake-config validate")
}

func TestDoctor_BrokenSettings(t *testing.T) {
	dir := isolate(t)
	bad := writeDoc(t, dir, "bad-settings.yaml", "version: 9\n")

	stdout, _, err := execute(t, "--settings", bad, "doctor")
	require.ErrorIs(t, err, errDoctorErrors)
	assert.Contains(t, stdout, "[settings] settings-valid:")
	assert.Contains(t, stdout, "unsupported config version: 9")
}

func TestDoctor_FixSettingsPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	dir := isolate(t)
	configDir := filepath.Join(dir, "config")
	require.NoError(t, os.MkdirAll(configDir, 0o700))
	path := writeDoc(t, configDir, "settings.yaml", "version: 1\n")
	require.NoError(t, os.Chmod(path, 0o644))

	stdout, _, err := execute(t, "doctor")
	require.ErrorIs(t, err, errDoctorWarnings)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
	assert.Contains(t, stdout, "settings file is accessible by other users")
	assert.Contains(t, stdout, "  hint: chmod 600 "+path)

	stdout, stderr, err := execute(t, "doctor", "--fix")
	require.NoError(t, err)
	assert.Contains(t, stderr, "fixed "+path+": chmod 0600")
	assert.Contains(t, stdout, "0 warnings")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestDoctor_JSON(t *testing.T) {
	isolate(t)

	stdout, _, err := execute(t, "doctor", "--json")
	require.NoError(t, err)

	var report struct {
		Results []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"results"`
		Summary struct {
			Passed int `json:"passed"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))

	names := make([]string, len(report.Results))
	for i, r := range report.Results {
		names[i] = r.Name
	}
	assert.Equal(t, []string{"settings-file", "settings-valid", "configuration", "archive", "metrics-textfile"}, names)
	assert.Equal(t, "pass", report.Results[2].Status)
	assert.Equal(t, 2, report.Summary.Passed)
}

func TestDoctor_ExclusiveFlags(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "doctor", "--json", "--all")
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
}
