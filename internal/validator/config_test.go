package validator

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/J-81/spacemake/internal/configstore"
	"github.com/J-81/spacemake/internal/document"
	"github.com/J-81/spacemake/internal/errors"
)

func loadWith(t *testing.T, overlay string) (*configstore.Snapshot, error) {
	t.Helper()
	doc, err := document.Parse("overlay.yaml", []byte(overlay), document.FormatYAML)
	require.NoError(t, err)
	return configstore.LoadDefaults(doc)
}

func TestFromError_LoadError(t *testing.T) {
	_, err := loadWith(t, "run_modes:\n  visium:\n    umi_cutoff: []\n")
	require.Error(t, err)

	r := FromError(err)
	require.Len(t, r.Issues, 1)
	i := r.Issues[0]
	assert.Equal(t, SeverityError, i.Severity)
	assert.Equal(t, "run_modes.visium.umi_cutoff", i.Field)
	assert.Equal(t, "must not be empty", i.Message)
	assert.Equal(t, map[string]string{"stage": "range", "kind": "range", "source": "overlay.yaml"}, i.Context)
}

func TestFromError_Other(t *testing.T) {
	r := FromError(errors.New("disk on fire"))
	require.Len(t, r.Issues, 1)
	assert.Empty(t, r.Issues[0].Field)
	assert.True(t, r.HasErrors())

	assert.False(t, FromError(nil).HasErrors())
}

func TestLint_Defaults(t *testing.T) {
	snap, err := configstore.LoadDefaults()
	require.NoError(t, err)

	r := Lint(snap)
	assert.False(t, r.HasErrors())
	assert.False(t, r.HasWarnings())

	// smart and TSO_SMART share a sequence
	var fields []string
	for _, i := range r.Infos() {
		fields = append(fields, i.Field)
	}
	assert.Equal(t, []string{"adapters.smart"}, fields)
}

func TestLint_Warnings(t *testing.T) {
	snap, err := loadWith(t, `
barcode_flavors:
  overlapping:
    cell: "r1[0:12]"
    UMI: "r1[8:16]"
    bam_tags: "CB:{cell},MI:{UMI}"
run_modes:
  dense:
    mesh_data: true
    mesh_spot_diameter_um: 20
    mesh_spot_distance_um: 10
`)
	require.NoError(t, err)

	r := Lint(snap)
	var warned []string
	for _, i := range r.Warnings() {
		warned = append(warned, i.Field)
	}
	assert.Equal(t, []string{"barcode_flavors.overlapping", "run_modes.dense"}, warned)

	var noted []string
	for _, i := range r.Infos() {
		noted = append(noted, i.Field)
	}
	assert.Contains(t, noted, "barcode_flavors.overlapping.bam_tags")
}

func TestReporter_ConfigIssues(t *testing.T) {
	_, err := loadWith(t, "pucks:\n  visium:\n    width_um: -3\n")
	require.Error(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewReporter(&buf, FormatText).Report(FromError(err)))

	out := buf.String()
	assert.Contains(t, out, "1 error(s)")
	assert.Contains(t, out, "pucks.visium.width_um: must be positive, got -3")
	assert.Contains(t, out, "source=overlay.yaml")
}

func TestReporter_NotesOnly(t *testing.T) {
	r := &Result{}
	r.AddInfo("adapters.smart", "same sequence as TSO_SMART", nil)

	var buf bytes.Buffer
	require.NoError(t, NewReporter(&buf, FormatText).Report(r))
	assert.Contains(t, buf.String(), "Validation passed")
	assert.Contains(t, buf.String(), "Notes:")
}
