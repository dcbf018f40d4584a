package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/J-81/spacemake/internal/errors"
)

// Format specifies the output format for log messages.
type Format string

const (
	// FormatText produces human-readable text output.
	FormatText Format = "text"
	// FormatJSON produces machine-readable JSON output.
	FormatJSON Format = "json"
)

// LevelTrace is more verbose than slog.LevelDebug. It is used for
// per-field merge tracing.
const LevelTrace = slog.Level(-8)

// LevelFromVerbosity maps the count of -v flags to a level: none logs
// warnings, -v info, -vv debug and -vvv or more trace.
func LevelFromVerbosity(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelWarn
	case v == 1:
		return slog.LevelInfo
	case v == 2:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

// Config describes one log destination.
type Config struct {
	Level  slog.Level
	Format Format
	// Output defaults to os.Stderr.
	Output io.Writer
}

// Handler returns the handler for c. Attributes are redacted in both
// formats.
func (c Config) Handler() (slog.Handler, error) {
	out := c.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: c.Level, ReplaceAttr: RedactAttr}
	switch c.Format {
	case FormatJSON:
		return slog.NewJSONHandler(out, opts), nil
	case FormatText, "":
		return NewHandler(out, opts), nil
	default:
		return nil, errors.Newf("unknown log format %q", c.Format)
	}
}

// New returns a logger for cfg, falling back to text for unknown formats.
func New(cfg Config) *slog.Logger {
	h, err := cfg.Handler()
	if err != nil {
		cfg.Format = FormatText
		h, _ = cfg.Handler()
	}
	return slog.New(h)
}

// NewDiscard returns a logger that drops everything.
func NewDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testWriter sends each record to t.Log.
type testWriter struct {
	t testing.TB
}

func (w *testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

// ForTest returns a trace level logger writing to the test log, so merge
// tracing of a failing test is visible with -v.
func ForTest(t testing.TB) *slog.Logger {
	t.Helper()
	return New(Config{
		Level:  LevelTrace,
		Format: FormatText,
		Output: &testWriter{t: t},
	})
}
