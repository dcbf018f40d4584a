package archive

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/J-81/spacemake/internal/configstore"
	"github.com/J-81/spacemake/internal/document"
	"github.com/J-81/spacemake/internal/errors"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(t.Context(), filepath.Join(t.TempDir(), "nested", "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	tick := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	a.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	n := 0
	a.newID = func() string {
		n++
		return fmt.Sprintf("rec-%d", n)
	}
	return a
}

func loadSnapshot(t *testing.T, overlay string) *configstore.Snapshot {
	t.Helper()
	var docs []*document.Document
	if overlay != "" {
		doc, err := document.Parse("overlay.yaml", []byte(overlay), document.FormatYAML)
		require.NoError(t, err)
		docs = append(docs, doc)
	}
	snap, err := configstore.LoadDefaults(docs...)
	require.NoError(t, err)
	return snap
}

func TestArchive_SaveAndList(t *testing.T) {
	a := openTestArchive(t)
	base := loadSnapshot(t, "")
	tuned := loadSnapshot(t, "run_modes:\n  visium:\n    n_beads: 2000\n")

	first, err := a.Save(t.Context(), base, "baseline")
	require.NoError(t, err)
	assert.Equal(t, "rec-1", first.ID)
	assert.Equal(t, base.Digest(), first.Digest)

	_, err = a.Save(t.Context(), tuned, "")
	require.NoError(t, err)
	_, err = a.Save(t.Context(), base, "again")
	require.NoError(t, err)

	recs, err := a.List(t.Context())
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"rec-3", "rec-2", "rec-1"}, []string{recs[0].ID, recs[1].ID, recs[2].ID})
	assert.Equal(t, "baseline", recs[2].Label)
	assert.Equal(t, []string{"builtin:config.yaml", "overlay.yaml"}, recs[1].Sources)
	assert.Equal(t, first.SavedAt, recs[2].SavedAt)

	var payloads int
	require.NoError(t, a.db.QueryRowContext(t.Context(), `SELECT COUNT(*) FROM payloads`).Scan(&payloads))
	assert.Equal(t, 2, payloads, "identical snapshots share one payload")
}

func TestArchive_Get(t *testing.T) {
	a := openTestArchive(t)
	snap := loadSnapshot(t, "")
	_, err := a.Save(t.Context(), snap, "old")
	require.NoError(t, err)
	newest, err := a.Save(t.Context(), snap, "new")
	require.NoError(t, err)

	byID, err := a.Get(t.Context(), "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "old", byID.Label)

	byDigest, err := a.Get(t.Context(), snap.Digest())
	require.NoError(t, err)
	assert.Equal(t, newest.ID, byDigest.ID)

	byPrefix, err := a.Get(t.Context(), snap.Digest()[:10])
	require.NoError(t, err)
	assert.Equal(t, newest.ID, byPrefix.ID)
}

func TestArchive_GetNotFound(t *testing.T) {
	a := openTestArchive(t)

	for _, ref := range []string{"nope", "0000000000", "abc%"} {
		_, err := a.Get(t.Context(), ref)
		require.Error(t, err, ref)
		assert.True(t, errors.Is(err, errors.ErrNotFound), ref)
	}
}

func TestArchive_DocumentReproducesSnapshot(t *testing.T) {
	a := openTestArchive(t)
	snap := loadSnapshot(t, "run_modes:\n  custom:\n    parent: seq_scope\n    n_beads: 77\n")
	rec, err := a.Save(t.Context(), snap, "")
	require.NoError(t, err)

	doc, err := a.Document(t.Context(), rec.Digest)
	require.NoError(t, err)
	assert.Equal(t, "archive:"+rec.Digest, doc.Source)

	restored, err := configstore.Load(doc)
	require.NoError(t, err)
	assert.Equal(t, snap.Digest(), restored.Digest())

	rm, err := restored.RunMode("custom")
	require.NoError(t, err)
	assert.Equal(t, 77, rm.NBeads)
	assert.Equal(t, configstore.MeshHexagon, rm.MeshType)
}

func TestArchive_DocumentNotFound(t *testing.T) {
	a := openTestArchive(t)
	_, err := a.Document(t.Context(), "deadbeef")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestArchive_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	a, err := Open(t.Context(), path)
	require.NoError(t, err)
	_, err = a.Save(t.Context(), loadSnapshot(t, ""), "kept")
	require.NoError(t, err)
	require.NoError(t, a.Close())

	b, err := Open(t.Context(), path)
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	recs, err := b.List(t.Context())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "kept", recs[0].Label)
}
