package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorEnabled(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		isTTY bool
		want  bool
	}{
		{name: "terminal", isTTY: true, want: true},
		{name: "pipe", isTTY: false, want: false},
		{name: "NO_COLOR wins over terminal", env: map[string]string{"NO_COLOR": ""}, isTTY: true, want: false},
		{name: "NO_COLOR wins over force", env: map[string]string{"NO_COLOR": "1", "CLICOLOR_FORCE": "1"}, isTTY: true, want: false},
		{name: "dumb terminal", env: map[string]string{"TERM": "dumb"}, isTTY: true, want: false},
		{name: "forced on a pipe", env: map[string]string{"CLICOLOR_FORCE": "1"}, isTTY: false, want: true},
		{name: "force disabled", env: map[string]string{"CLICOLOR_FORCE": "0"}, isTTY: false, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := func(k string) (string, bool) {
				v, ok := tt.env[k]
				return v, ok
			}
			assert.Equal(t, tt.want, colorEnabled(tt.isTTY, lookup))
		})
	}
}

func TestIsTTY_Buffer(t *testing.T) {
	assert.False(t, IsTTY(&bytes.Buffer{}))
}
