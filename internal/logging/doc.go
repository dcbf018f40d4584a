// Package logging wires log/slog for spacemake-config.
//
// A [Config] selects a level, a format and a destination. The text format
// uses [Handler], a compact colorized line writer; the JSON format uses
// slog's own handler. Both mask credentials through [RedactAttr], so S3 keys
// from the settings file never reach a log.
//
//	logger := logging.New(logging.Config{Level: slog.LevelInfo, Format: logging.FormatJSON})
//	logger.Info("configuration loaded", "digest", snap.Digest())
//
// Commands find their logger with [FromContext]. Tests use [ForTest], which
// routes records to t.Log at trace level, or [NewDiscard].
package logging
