package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ExitError
		want string
	}{
		{
			name: "with underlying error",
			err:  NewExitError(ErrNotFound, ExitUser),
			want: "resource not found",
		},
		{
			name: "with wrapped error",
			err:  NewExitError(fmt.Errorf("loading overlay: %w", ErrInvalidConfig), ExitUser),
			want: "loading overlay: invalid configuration",
		},
		{
			name: "nil underlying error",
			err:  NewExitError(nil, ExitSystem),
			want: "exit code 2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("ExitError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExitError_Unwrap(t *testing.T) {
	err := NewUserError(Wrap(ErrUnsupportedFormat, "reading overlay.ini"), "use yaml, json or toml")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Error("errors.Is() should find ErrUnsupportedFormat through ExitError")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("errors.Is() matched an unrelated sentinel")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain error", errors.New("boom"), ExitUser},
		{"user error", NewUserError(ErrInvalidConfig, ""), ExitUser},
		{"system error", NewSystemError(ErrNotFound, ""), ExitSystem},
		{"wrapped system error", fmt.Errorf("cmd: %w", NewSystemError(ErrNotFound, "")), ExitSystem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewConfigError(t *testing.T) {
	e := NewConfigError(errors.New("bad settings"))
	if e.Code != ExitUser {
		t.Errorf("Code = %d, want %d", e.Code, ExitUser)
	}
	if e.Suggestion != "Run: spacemake-config validate" {
		t.Errorf("Suggestion = %q", e.Suggestion)
	}
}

func TestWrapKeepsSentinel(t *testing.T) {
	wrapped := Wrapf(ErrInvalidLocation, "parsing %q", "ftp://x")
	if !Is(wrapped, ErrInvalidLocation) {
		t.Error("Is() should find sentinel through Wrapf")
	}
	want := `parsing "ftp://x": invalid document location`
	if got := wrapped.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
