package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/J-81/spacemake/internal/document"
)

// Validation errors for settings fields.
var (
	// ErrUnsupportedVersion indicates a settings version this build cannot read.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")

	// ErrInvalidLocation indicates an overlay location cannot be read.
	ErrInvalidLocation = errors.New("invalid document location")

	// ErrInvalidEndpoint indicates the S3 endpoint is not an http(s) URL.
	ErrInvalidEndpoint = errors.New("invalid endpoint")

	// ErrIncompleteCredentials indicates only one half of an S3 key pair is set.
	ErrIncompleteCredentials = errors.New("access_key_id and secret_access_key must be set together")
)

// Validate checks Settings for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(s *Settings) []error {
	if s == nil {
		return []error{errors.New("settings are nil")}
	}

	var errs []error

	if s.Version != CurrentVersion {
		errs = append(errs, fmt.Errorf("%w: %d", ErrUnsupportedVersion, s.Version))
	}

	for i, loc := range s.Overlays {
		field := fmt.Sprintf("overlays[%d]", i)
		if strings.HasPrefix(loc, "s3://") {
			if _, _, err := document.ParseS3Location(loc); err != nil {
				errs = append(errs, &PathError{Field: field, Path: loc, Err: ErrInvalidLocation})
			}
			continue
		}
		if loc == "" {
			errs = append(errs, &PathError{Field: field, Path: loc, Err: ErrInvalidPath})
			continue
		}
		if err := validatePath(loc); err != nil {
			errs = append(errs, &PathError{Field: field, Path: loc, Err: err})
		}
	}

	for _, p := range []struct{ field, path string }{
		{KeyArchivePath, s.ArchivePath},
		{KeyMetricsTextfile, s.MetricsTextfile},
	} {
		if err := validatePath(p.path); err != nil {
			errs = append(errs, &PathError{Field: p.field, Path: p.path, Err: err})
		}
	}

	if s.S3.Endpoint != "" {
		u, err := url.Parse(s.S3.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, &PathError{Field: KeyS3Endpoint, Path: s.S3.Endpoint, Err: ErrInvalidEndpoint})
		}
	}
	if (s.S3.AccessKeyID == "") != (s.S3.SecretAccessKey == "") {
		errs = append(errs, ErrIncompleteCredentials)
	}

	return errs
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	// Empty paths are valid (they mean "use default")
	if path == "" {
		return nil
	}

	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}

	return nil
}

func joinErrors(errs []error) error {
	return errors.Join(errs...)
}

// PathError represents an error for a specific path-like field.
type PathError struct {
	Field string
	Path  string
	Err   error
}

func (e *PathError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Path
}

func (e *PathError) Unwrap() error {
	return e.Err
}
