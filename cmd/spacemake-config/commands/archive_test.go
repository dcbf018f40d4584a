package commands

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/J-81/spacemake/internal/configstore"
)

func TestArchive_SaveListShow(t *testing.T) {
	dir := isolate(t)
	overlay := writeDoc(t, dir, "project.yaml", "run_modes:\n  mine:\n    parent: visium\n")

	stdout, _, err := execute(t, "archive", "save", "--label", "first", overlay)
	require.NoError(t, err)
	fields := strings.Fields(stdout)
	require.Len(t, fields, 2)
	id, digest := fields[0], fields[1]
	assert.Len(t, digest, 64)

	// An unchanged configuration gets a new record with the same digest.
	stdout, _, err = execute(t, "archive", "save", "-l", "second", overlay)
	require.NoError(t, err)
	assert.Equal(t, digest, strings.Fields(stdout)[1])

	stdout, _, err = execute(t, "archive", "list", "--json")
	require.NoError(t, err)
	var recs []archiveRecord
	require.NoError(t, json.Unmarshal([]byte(stdout), &recs))
	require.Len(t, recs, 2)
	assert.Equal(t, "second", recs[0].Label)
	assert.Equal(t, id, recs[1].ID)
	assert.Equal(t, []string{"builtin:config.yaml", overlay}, recs[1].Sources)

	stdout, _, err = execute(t, "archive", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, digest[:12])
	assert.Contains(t, stdout, "first")

	stdout, stderr, err := execute(t, "archive", "show", "--verify", digest[:10])
	require.NoError(t, err)
	assert.Contains(t, stderr, "digest "+digest+" verified")
	assert.Contains(t, stdout, "mine:")
}

func TestArchive_InvalidConfigurationNotSaved(t *testing.T) {
	dir := isolate(t)
	overlay := writeDoc(t, dir, "bad.yaml", "run_modes:\n  mine:\n    parent: nowhere\n")

	_, _, err := execute(t, "archive", "save", overlay)
	var loadErr *configstore.LoadError
	require.ErrorAs(t, err, &loadErr)

	stdout, _, err := execute(t, "archive", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No snapshots recorded.")
}

func TestArchive_ShowUnknown(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "archive", "show", "deadbeefdeadbeef")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
