// Package validator turns configuration validation outcomes into reports.
//
// It defines the shared types for validation issues (errors, warnings,
// info), converts a failed configuration load into a [Result] with one
// issue per offending value, and lints valid snapshots for suspicious but
// legal settings.
//
// # Core Concepts
//
//   - [Severity]: Distinguishes between blocking errors and non-blocking warnings.
//   - [Issue]: Represents a single validation problem with field context.
//   - [Result]: Aggregates multiple issues and provides helper methods.
//   - [Reporter]: Writes a Result as colored text or JSON.
//
// # Basic Usage
//
//	snap, err := configstore.LoadDefaults(overlay)
//	result := validator.FromError(err)
//	if err == nil {
//		result = validator.Lint(snap)
//	}
//	_ = validator.NewReporter(os.Stdout, validator.FormatText).Report(result)
package validator
