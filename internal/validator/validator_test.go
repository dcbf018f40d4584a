package validator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverity_Text(t *testing.T) {
	for _, s := range []Severity{SeverityError, SeverityWarning, SeverityInfo} {
		b, err := s.MarshalText()
		require.NoError(t, err)

		var back Severity
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, s, back)
	}

	assert.Equal(t, "unknown", Severity(99).String())
	var s Severity
	assert.Error(t, s.UnmarshalText([]byte("fatal")))
}

func TestIssue_Error(t *testing.T) {
	tests := []struct {
		name string
		i    Issue
		want string
	}{
		{
			name: "field and value",
			i:    Issue{Severity: SeverityError, Field: "run_modes.visium.n_beads", Message: "must be positive", Value: -1},
			want: `error: field "run_modes.visium.n_beads": must be positive (got -1)`,
		},
		{
			name: "no field",
			i:    Issue{Severity: SeverityWarning, Message: "cell r1[0:12] and UMI r1[8:16] overlap"},
			want: "warning: cell r1[0:12] and UMI r1[8:16] overlap",
		},
		{
			name: "empty value is still shown",
			i:    Issue{Severity: SeverityInfo, Field: "adapters.smart", Message: "same sequence as polyA", Value: ""},
			want: `info: field "adapters.smart": same sequence as polyA (got )`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.i.Error())
		})
	}
}

func TestResult_Helpers(t *testing.T) {
	r := &Result{}
	assert.False(t, r.HasErrors())
	assert.False(t, r.HasWarnings())

	r.AddInfo("barcode_flavors.visium.bam_tags", "template does not record {assigned}", nil)
	r.AddWarning("run_modes.seq_scope", "mesh spots overlap", nil)
	r.AddError("pucks.visium.width_um", "must be positive", 0)
	r.AddWarning("barcode_flavors.sc_10x_v2", "cell and UMI overlap", nil)

	assert.True(t, r.HasErrors())
	assert.True(t, r.HasWarnings())
	assert.Len(t, r.Errors(), 1)
	assert.Len(t, r.Infos(), 1)
	require.Len(t, r.Warnings(), 2)
	assert.Equal(t, "run_modes.seq_scope", r.Warnings()[0].Field, "insertion order is kept")
}

func TestResult_NilSafety(t *testing.T) {
	var r *Result
	assert.False(t, r.HasErrors())
	assert.False(t, r.HasWarnings())
	assert.Nil(t, r.Errors())
	assert.Nil(t, r.Warnings())
	assert.Nil(t, r.Infos())
}

func TestResult_JSON(t *testing.T) {
	r := &Result{}
	r.AddError("run_modes.a.parent", "a -> b -> a", nil)
	r.Issues[0].Context = map[string]string{"kind": "cyclic_inheritance"}

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"issues":[{"severity":"error","field":"run_modes.a.parent","message":"a -> b -> a","context":{"kind":"cyclic_inheritance"}}]}`, string(data))
}
