package errors

import (
	"strconv"

	crdb "github.com/cockroachdb/errors"
)

// Process exit codes of spacemake-config.
const (
	ExitSuccess = 0
	// ExitUser covers invalid documents, failed validation and bad flags.
	ExitUser = 1
	// ExitSystem covers I/O, network and permission failures.
	ExitSystem = 2
)

// Helpers from github.com/cockroachdb/errors, so callers import a single
// errors package.
var (
	New   = crdb.New
	Newf  = crdb.Newf
	Wrap  = crdb.Wrap
	Wrapf = crdb.Wrapf
	Is    = crdb.Is
	As    = crdb.As
	Mark  = crdb.Mark
)

var (
	// ErrNotFound marks a missing entry, document or archived snapshot.
	ErrNotFound = New("resource not found")
	// ErrInvalidConfig marks settings or documents that fail validation.
	ErrInvalidConfig = New("invalid configuration")
	// ErrUnsupportedFormat marks an unknown document or export format.
	ErrUnsupportedFormat = New("unsupported format")
	// ErrInvalidLocation marks a document location that is neither a path,
	// "-" nor an s3:// URL.
	ErrInvalidLocation = New("invalid document location")
)

// ExitError attaches a process exit code, and optionally a hint for the
// user, to an error.
type ExitError struct {
	Err        error
	Code       int
	Suggestion string
}

// NewExitError returns err with exit code code. err may be nil.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{Err: err, Code: code}
}

// NewUserError returns err with ExitUser and a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{Err: err, Code: ExitUser, Suggestion: suggestion}
}

// NewSystemError returns err with ExitSystem and a suggestion.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{Err: err, Code: ExitSystem, Suggestion: suggestion}
}

// NewConfigError is a user error pointing at the validate command.
func NewConfigError(err error) *ExitError {
	return NewUserError(err, "Run: spacemake-config validate")
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return "exit code " + strconv.Itoa(e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode maps err to a process exit code: ExitSuccess for nil, the code
// of the outermost *ExitError, or ExitUser otherwise.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitUser
}
