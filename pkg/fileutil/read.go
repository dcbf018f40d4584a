package fileutil

import (
	"io"
	"os"

	"github.com/J-81/spacemake/internal/errors"
)

// MaxFileSize bounds configuration documents and settings files (1 MiB).
const MaxFileSize = 1 << 20

// ErrFileTooLarge is returned when input exceeds MaxFileSize.
var ErrFileTooLarge = errors.Newf("file exceeds maximum size of %d bytes", MaxFileSize)

// ReadFileWithLimit reads path, refusing files larger than MaxFileSize.
func ReadFileWithLimit(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Size() > MaxFileSize {
		return nil, ErrFileTooLarge
	}
	return ReadAllWithLimit(f)
}

// ReadAllWithLimit reads r to EOF, failing with ErrFileTooLarge once more
// than MaxFileSize bytes arrive. Used for stdin and S3 object bodies.
func ReadAllWithLimit(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading input")
	}
	if len(data) > MaxFileSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
