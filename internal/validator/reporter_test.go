package validator

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporter_Report(t *testing.T) {
	result := &Result{}
	result.AddError("run_modes.visium.umi_cutoff", "must not be empty", nil)
	result.AddWarning("barcode_flavors.custom", "cell and UMI overlap", strings.Repeat("r1[0:12]", 10))
	result.Issues[0].Context = map[string]string{"source": "project_config.yaml", "kind": "range"}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewReporter(&buf, FormatText).Report(result))

		out := buf.String()
		assert.Contains(t, out, "Validation failed: 1 error(s), 1 warning(s)")
		assert.Contains(t, out, "run_modes.visium.umi_cutoff: must not be empty")
		assert.Contains(t, out, "(kind=range, source=project_config.yaml)")
		assert.Contains(t, out, "...]", "long values are truncated")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewReporter(&buf, FormatJSON).Report(result))

		var decoded Result
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		require.Len(t, decoded.Issues, 2)
		assert.Equal(t, SeverityError, decoded.Issues[0].Severity)
		assert.Equal(t, "range", decoded.Issues[0].Context["kind"])
	})

	t.Run("passed", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewReporter(&buf, FormatText).Report(&Result{}))
		assert.Contains(t, buf.String(), "Validation passed")
	})

	t.Run("nil result", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewReporter(&buf, FormatText).Report(nil))
		assert.Empty(t, buf.String())
	})
}
