// Package editor launches the user's text editor on a settings or
// configuration document.
package editor

import (
	"context"
	"io"
	"os/exec"
	"strings"

	"github.com/J-81/spacemake/internal/errors"
)

// Streams are the terminal the editor runs on.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Open runs the editor on path and waits for it to exit. The editor
// command comes from SPACEMAKE_EDITOR, $VISUAL or $EDITOR and may carry
// arguments, e.g. "code --wait".
func Open(ctx context.Context, path string, s Streams, getenv func(string) string) error {
	args := strings.Fields(detect(getenv))
	args = append(args, path)

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdin = s.In
	cmd.Stdout = s.Out
	cmd.Stderr = s.Err
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running editor %s", args[0])
	}
	return nil
}

// detect returns the editor command line. Fallback chain:
// SPACEMAKE_EDITOR, VISUAL, EDITOR, nano, vi.
func detect(getenv func(string) string) string {
	for _, key := range []string{"SPACEMAKE_EDITOR", "VISUAL", "EDITOR"} {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
	}
	if _, err := exec.LookPath("nano"); err == nil {
		return "nano"
	}
	return "vi"
}
