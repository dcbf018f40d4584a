package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldMask(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"secret_access_key", true},
		{"AWS_SECRET_ACCESS_KEY", true},
		{"access_key_id", true},
		{"session_token", true},
		{"password", true},
		{"key", false},
		{"bucket", false},
		{"source", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ShouldMask(tt.key), tt.key)
	}
}

func TestMaskValue(t *testing.T) {
	assert.Equal(t, "********", MaskValue("abcd"))
	assert.Equal(t, "********", MaskValue(""))
	assert.Equal(t, "****cdef", MaskValue("abcdef"))
}

func TestNew_JSONRedacts(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: FormatJSON, Output: &buf})

	logger.Info("s3", "secret_access_key", "topsecretvalue", "region", "eu-central-1")

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, "****alue", parsed["secret_access_key"])
	assert.Equal(t, "eu-central-1", parsed["region"])
}

func TestFromContext(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(t.Context()))

	logger := NewDiscard()
	ctx := NewContext(t.Context(), logger)
	assert.Same(t, logger, FromContext(ctx))
}
