// Package errors provides error handling conventions for spacemake-config.
//
// It re-exports the wrapping helpers of github.com/cockroachdb/errors,
// defines sentinel errors for common failure conditions, an ExitError type
// for CLI exit code handling, and exit code constants.
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): Invalid document, flag, or settings
//   - ExitSystem (2): I/O, network, or permission failure
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion:
//
//	err := errors.NewUserError(loadErr, "Fix the overlay and re-run validate")
//	os.Exit(errors.ExitCode(err))
package errors
