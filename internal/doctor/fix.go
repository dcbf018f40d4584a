package doctor

import (
	"fmt"
	"os"

	"github.com/J-81/spacemake/internal/errors"
)

// Fixer is implemented by checks that can repair what they detect.
type Fixer interface {
	// CanFix reports whether the last Run found something fixable.
	CanFix() bool

	// Fix repairs the issues found by the last Run.
	Fix() []FixResult
}

// FixResult describes the outcome of an attempted fix.
type FixResult struct {
	Path        string `json:"path"`
	Fixed       bool   `json:"fixed"`
	Description string `json:"description"`
	Error       error  `json:"-"`
}

// chmodFix sets path to perm.
func chmodFix(path string, perm os.FileMode) FixResult {
	if err := os.Chmod(path, perm); err != nil {
		return FixResult{
			Path:        path,
			Description: fmt.Sprintf("failed to chmod %04o: %v", perm, err),
			Error:       errors.Wrapf(err, "chmod %04o %s", perm, path),
		}
	}
	return FixResult{Path: path, Fixed: true, Description: fmt.Sprintf("chmod %04o", perm)}
}
