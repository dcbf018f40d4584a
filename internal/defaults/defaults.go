// Package defaults holds the built-in base configuration document shipped
// with spacemake: puck presets, run modes, adapters and barcode flavors.
package defaults

import (
	_ "embed"

	"github.com/J-81/spacemake/internal/document"
)

// Source is the document source name used in validation errors.
const Source = "builtin:config.yaml"

//go:embed config.yaml
var raw []byte

// Raw returns a copy of the embedded YAML.
func Raw() []byte {
	out := make([]byte, len(raw))
	copy(out, raw)
	return out
}

// Document parses the embedded defaults. Each call returns an independent
// document.
func Document() (*document.Document, error) {
	return document.Parse(Source, raw, document.FormatYAML)
}
