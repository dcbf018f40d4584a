package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/J-81/spacemake/internal/errors"
	"github.com/J-81/spacemake/internal/paths"
	"github.com/J-81/spacemake/internal/validator"
)

func TestValidate_Defaults(t *testing.T) {
	isolate(t)

	stdout, _, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Validation passed")
}

func TestValidate_Overlay(t *testing.T) {
	dir := isolate(t)
	overlay := writeDoc(t, dir, "project.yaml", `
run_modes:
  my_visium:
    parent: visium
    umi_cutoff: [2000]
`)

	stdout, _, err := execute(t, "validate", overlay)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Validation passed")
}

func TestValidate_ReportsAllErrorsOfStage(t *testing.T) {
	dir := isolate(t)
	overlay := writeDoc(t, dir, "broken.yaml", `
run_modes:
  a:
    parent: b
  b:
    parent: a
  c:
    parent: missing
`)

	stdout, _, err := execute(t, "validate", "--json", overlay)
	require.ErrorIs(t, err, errValidationFailed)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))

	var result validator.Result
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	require.Len(t, result.Issues, 2)

	kinds := map[string]string{}
	for _, i := range result.Issues {
		assert.Equal(t, validator.SeverityError, i.Severity)
		assert.Equal(t, "reference", i.Context["stage"])
		kinds[i.Field] = i.Context["kind"]
	}
	assert.Equal(t, map[string]string{
		"run_modes.a.parent": "cyclic_inheritance",
		"run_modes.c.parent": "not_found",
	}, kinds)
}

func TestValidate_OverlayFlagsAndSettingsOrder(t *testing.T) {
	dir := isolate(t)
	writeDoc(t, dir, "site.yaml", "pucks:\n  lab:\n    width_um: 100\n    spot_diameter_um: 5\n")
	flag := writeDoc(t, dir, "flag.yaml", "pucks:\n  lab:\n    spot_diameter_um: 500\n")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o700))
	writeDoc(t, filepath.Join(dir, "config"), "settings.yaml", "overlays: [site.yaml]\n")

	// The -f overlay comes after the settings overlay, so the puck ends up
	// with a spot wider than the puck.
	stdout, _, err := execute(t, "validate", "-f", flag)
	require.ErrorIs(t, err, errValidationFailed)
	assert.Contains(t, stdout, "pucks.lab.spot_diameter_um")
	assert.Contains(t, stdout, "stage=range")
}

func TestValidate_MissingDocument(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "validate", "does-not-exist.yaml")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errValidationFailed)
	assert.Contains(t, err.Error(), "does-not-exist.yaml")
}

func TestValidate_NoDefaultsNeedsDocuments(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "validate", "--no-defaults")
	require.ErrorIs(t, err, errNoDocuments)
}

func TestValidate_StrictLint(t *testing.T) {
	dir := isolate(t)
	overlay := writeDoc(t, dir, "overlap.yaml", `
barcode_flavors:
  overlapping:
    cell: "r1[0:12]"
    UMI: "r1[8:16]"
`)

	stdout, _, err := execute(t, "validate", overlay)
	require.NoError(t, err)
	assert.Contains(t, stdout, "warning")

	_, _, err = execute(t, "validate", "--strict", overlay)
	require.ErrorIs(t, err, errValidationFailed)
}

func TestValidate_WritesMetrics(t *testing.T) {
	dir := isolate(t)
	prom := filepath.Join(dir, "config.prom")

	_, _, err := execute(t, "validate", "--metrics-textfile", prom)
	require.NoError(t, err)

	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(data), `spacemake_config_loads_total{result="ok"`)
	assert.Contains(t, string(data), `spacemake_config_entries{category="run_modes"} 6`)
}

func TestValidate_WritesMetricsIntoDirectory(t *testing.T) {
	dir := isolate(t)
	collector := filepath.Join(dir, "textfile_collector")
	require.NoError(t, os.Mkdir(collector, 0o755))

	_, _, err := execute(t, "validate", "--metrics-textfile", collector)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(collector, paths.MetricsFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "spacemake_config_loads_total")
}
