// Package document reads raw configuration documents.
//
// A [Document] is the untyped nested mapping parsed from one YAML, JSON or
// TOML file, tagged with its source so validation errors can name it.
// Duplicate mapping keys are not resolved silently: they are recorded on
// the document and reported by the configuration store.
//
// Documents are read from local paths or s3://bucket/key locations through
// a [Loader]:
//
//	loader := document.NewLoader(document.WithS3Config(cfg))
//	doc, err := loader.Load(ctx, "s3://runs/overlay.yaml")
package document
