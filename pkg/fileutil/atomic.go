// Package fileutil provides file system utilities for exported configuration
// and settings files: atomic writes and size-bounded reads.
package fileutil

import (
	"os"
	"path/filepath"

	"github.com/J-81/spacemake/internal/errors"
)

// AtomicWriteFile replaces path with data so that readers see either the old
// or the new content, never a partial write. The parent directory must
// exist.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	// The temp file lives next to path so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".spacemake-atomic-*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return errors.Wrap(err, "writing temp file")
	}
	if err := tmp.Chmod(perm); err != nil {
		return errors.Wrap(err, "setting file permissions")
	}
	if err := tmp.Sync(); err != nil {
		return errors.Wrap(err, "syncing temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "replacing %s", path)
	}
	committed = true
	return nil
}
