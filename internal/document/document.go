package document

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/J-81/spacemake/internal/errors"
)

// Format identifies the serialization of a document.
type Format string

const (
	// FormatYAML is the default document format.
	FormatYAML Format = "yaml"
	// FormatJSON is parsed with the YAML parser, which accepts JSON.
	FormatJSON Format = "json"
	// FormatTOML documents are decoded with go-toml.
	FormatTOML Format = "toml"
)

// FormatFromName infers the format from a file extension, defaulting to YAML.
func FormatFromName(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON
	case ".toml":
		return FormatTOML
	default:
		return FormatYAML
	}
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatYAML, FormatJSON, FormatTOML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", errors.Wrapf(errors.ErrUnsupportedFormat, "%q", s)
	}
}

// Duplicate records a mapping key that appeared more than once.
type Duplicate struct {
	// Path is the key path, e.g. ["run_modes", "visium"].
	Path []string
	// Line is the 1-based line of the repeated key, 0 if unknown.
	Line int
}

func (d Duplicate) String() string {
	return strings.Join(d.Path, ".")
}

// Document is one raw configuration layer.
type Document struct {
	// Source names where the document came from (path, URI, or label).
	Source string
	// Root is the top-level mapping. Values are map[string]any, []any,
	// string, bool, int/int64/uint64, float64, or nil.
	Root map[string]any
	// Duplicates lists repeated keys in document order. The first
	// occurrence is kept in Root.
	Duplicates []Duplicate
}

// FromMap wraps an already-decoded mapping as a document.
func FromMap(source string, root map[string]any) *Document {
	if root == nil {
		root = map[string]any{}
	}
	return &Document{Source: source, Root: root}
}

// ParseError reports a document that could not be decoded.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing document %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse decodes data in the given format.
func Parse(source string, data []byte, format Format) (*Document, error) {
	switch format {
	case FormatTOML:
		var root map[string]any
		if err := toml.Unmarshal(data, &root); err != nil {
			// TOML forbids repeated keys, so go-toml stops at the first one.
			if strings.Contains(err.Error(), "already") {
				err = errors.Mark(err, ErrDuplicateKey)
			}
			return nil, &ParseError{Source: source, Err: err}
		}
		return FromMap(source, root), nil
	case FormatYAML, FormatJSON, "":
		return parseYAML(source, data)
	default:
		return nil, &ParseError{Source: source, Err: errors.Wrapf(errors.ErrUnsupportedFormat, "%q", format)}
	}
}

// ErrDuplicateKey marks a TOML document that repeats a key or table. YAML
// and JSON duplicates are reported as Duplicates instead.
var ErrDuplicateKey = errors.New("duplicate key")

// ErrExcessiveAliasing is returned for YAML documents whose aliases expand
// far beyond the size of the document itself.
var ErrExcessiveAliasing = errors.New("document contains excessive aliasing")

// Alias expansion may add at most aliasFactor nodes per node of the
// document, and always at least minAliasBudget.
const (
	aliasFactor    = 10
	minAliasBudget = 10_000
)

func parseYAML(source string, data []byte) (*Document, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}

	doc := &Document{Source: source, Root: map[string]any{}}
	// Empty input decodes to a zero node
	if node.Kind == 0 || len(node.Content) == 0 {
		return doc, nil
	}

	w := &walker{doc: doc, budget: max(minAliasBudget, aliasFactor*countNodes(&node))}
	v, err := w.value(node.Content[0], nil)
	if err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	switch root := v.(type) {
	case map[string]any:
		doc.Root = root
	case nil:
	default:
		return nil, &ParseError{Source: source, Err: errors.Newf("top level must be a mapping, got %T", v)}
	}
	return doc, nil
}

// countNodes counts the nodes written in the document, without following
// aliases.
func countNodes(n *yaml.Node) int {
	c := 1
	for _, child := range n.Content {
		c += countNodes(child)
	}
	return c
}

// walker converts a node tree into plain values, recording duplicate keys.
// Nodes reached through an alias are charged against budget.
type walker struct {
	doc *Document

	budget   int
	aliasing int // depth of alias expansion
}

func (w *walker) value(n *yaml.Node, path []string) (any, error) {
	if w.aliasing > 0 {
		if w.budget--; w.budget < 0 {
			return nil, errors.Wrapf(ErrExcessiveAliasing, "line %d", n.Line)
		}
	}
	switch n.Kind {
	case yaml.AliasNode:
		w.aliasing++
		defer func() { w.aliasing-- }()
		return w.value(n.Alias, path)
	case yaml.MappingNode:
		return w.mapping(n, path)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := w.value(c, append(slices.Clone(path), fmt.Sprint(i)))
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, errors.Wrapf(err, "line %d", n.Line)
		}
		return v, nil
	default:
		return nil, errors.Newf("line %d: unsupported node kind %d", n.Line, n.Kind)
	}
}

func isMergeKey(k *yaml.Node) bool {
	return k.Kind == yaml.ScalarNode && k.Value == "<<" &&
		(k.Tag == "" || k.Tag == "!" || k.ShortTag() == "!!merge")
}

// mapping decodes n. Keys written in n win over keys pulled in with "<<";
// among several merged mappings the first one listed wins.
func (w *walker) mapping(n *yaml.Node, path []string) (map[string]any, error) {
	out := make(map[string]any, len(n.Content)/2)
	var merges []*yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, vn := n.Content[i], n.Content[i+1]
		if isMergeKey(k) {
			merges = append(merges, vn)
			continue
		}
		if k.Kind != yaml.ScalarNode {
			return nil, errors.Newf("line %d: mapping keys must be scalars", k.Line)
		}
		key := k.Value
		keyPath := append(slices.Clone(path), key)
		if _, seen := out[key]; seen {
			if w.aliasing == 0 {
				w.doc.Duplicates = append(w.doc.Duplicates, Duplicate{Path: keyPath, Line: k.Line})
			}
			continue
		}
		v, err := w.value(vn, keyPath)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}

	for _, m := range merges {
		if err := w.merge(out, m, path); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// merge adds the keys of a "<<" value that out does not have yet. The value
// is a mapping or a sequence of mappings, usually given as aliases.
func (w *walker) merge(out map[string]any, n *yaml.Node, path []string) error {
	target := n
	if target.Kind == yaml.AliasNode {
		target = target.Alias
	}
	sources := []*yaml.Node{n}
	if target.Kind == yaml.SequenceNode {
		sources = target.Content
	}
	for _, src := range sources {
		resolved := src
		if resolved.Kind == yaml.AliasNode {
			resolved = resolved.Alias
		}
		if resolved.Kind != yaml.MappingNode {
			return errors.Newf("line %d: merge value must be a mapping or a sequence of mappings", src.Line)
		}
		v, err := w.value(src, path)
		if err != nil {
			return err
		}
		for key, val := range v.(map[string]any) {
			if _, ok := out[key]; !ok {
				out[key] = val
			}
		}
	}
	return nil
}
