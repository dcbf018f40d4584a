package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/J-81/spacemake/internal/configstore"
	"github.com/J-81/spacemake/internal/document"
	"github.com/J-81/spacemake/internal/errors"
	"github.com/J-81/spacemake/internal/logging"
)

func newStore(t *testing.T, c *Collector) *configstore.Store {
	t.Helper()
	return configstore.NewStore(configstore.WithLogger(logging.ForTest(t)), configstore.WithObserver(c))
}

func TestCollector_SuccessfulLoad(t *testing.T) {
	c := New()
	_, err := newStore(t, c).LoadDefaults()
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.loads.WithLabelValues("ok", "")))
	assert.Equal(t, 6.0, testutil.ToFloat64(c.entries.WithLabelValues("run_modes")))
	assert.Equal(t, 11.0, testutil.ToFloat64(c.entries.WithLabelValues("adapters")))
	assert.Positive(t, testutil.ToFloat64(c.lastSuccess))
	assert.Equal(t, 1, testutil.CollectAndCount(c.loadDuration))
}

func TestCollector_InvalidLoad(t *testing.T) {
	c := New()
	overlay, err := document.Parse("overlay.yaml", []byte(`
run_modes:
  visium:
    n_beads: 0
    umi_cutoff: [5, 1]
`), document.FormatYAML)
	require.NoError(t, err)

	_, err = newStore(t, c).LoadDefaults(overlay)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.loads.WithLabelValues("invalid", "range")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.validationErrors.WithLabelValues("range", "range")))
	assert.Equal(t, 0, testutil.CollectAndCount(c.entries))
}

func TestCollector_OtherError(t *testing.T) {
	c := New()
	c.ObserveLoad(configstore.LoadStats{Err: errors.New("boom"), Duration: time.Millisecond})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.loads.WithLabelValues("error", "")))
}

func TestCollector_WriteTextfile(t *testing.T) {
	c := New()
	_, err := newStore(t, c).LoadDefaults()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "spacemake.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.True(t, strings.Contains(out, `spacemake_config_loads_total{result="ok"`), out)
	assert.Contains(t, out, `spacemake_config_entries{category="barcode_flavors"} 7`)
}

func TestCollector_WriteTextfile_BadDir(t *testing.T) {
	c := New()
	err := c.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))
	assert.Error(t, err)
}
