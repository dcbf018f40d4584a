package commands

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/J-81/spacemake/internal/configstore"
	"github.com/J-81/spacemake/internal/document"
	"github.com/J-81/spacemake/internal/errors"
)

// errValidationFailed is returned after a failed validation has been reported.
var errValidationFailed = errors.NewExitError(errors.New("validation failed"), errors.ExitUser)

// encode serializes v in format. Map keys come out sorted in every format.
func encode(v any, format document.Format) ([]byte, error) {
	switch format {
	case document.FormatJSON:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "encoding JSON")
		}
		return append(b, '\n'), nil
	case document.FormatTOML:
		var buf bytes.Buffer
		enc := toml.NewEncoder(&buf)
		enc.SetIndentTables(true)
		if err := enc.Encode(v); err != nil {
			return nil, errors.Wrap(err, "encoding TOML")
		}
		return buf.Bytes(), nil
	case document.FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, errors.Wrap(err, "encoding YAML")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(err, "encoding YAML")
		}
		return buf.Bytes(), nil
	default:
		return nil, errors.Wrapf(errors.ErrUnsupportedFormat, "%q", format)
	}
}

func writeEncoded(w io.Writer, v any, format document.Format) error {
	b, err := encode(v, format)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return errors.Wrap(err, "writing output")
}

// entityDocument returns one resolved entry wrapped as
// {category: {name: value}}, which is itself a valid overlay document.
func entityDocument(snap *configstore.Snapshot, category configstore.Category, name string) (map[string]any, error) {
	if _, err := snap.Get(category, name); err != nil {
		return nil, err
	}
	entries, _ := snap.Export()[string(category)].(map[string]any)
	return map[string]any{
		string(category): map[string]any{name: entries[name]},
	}, nil
}

// parseFormatFlag validates a --format value against allowed.
func parseFormatFlag(s string, allowed ...document.Format) (document.Format, error) {
	f, err := document.ParseFormat(s)
	if err != nil {
		return "", errors.NewUserError(err, "Supported formats: "+formatList(allowed))
	}
	for _, a := range allowed {
		if f == a {
			return f, nil
		}
	}
	return "", errors.NewUserError(errors.Wrapf(errors.ErrUnsupportedFormat, "%q", s), "Supported formats: "+formatList(allowed))
}

func formatList(fs []document.Format) string {
	var buf bytes.Buffer
	for i, f := range fs {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(string(f))
	}
	return buf.String()
}
