package barcode

import (
	"fmt"
	"slices"
	"strings"
)

// AssignedField is provided by the pipeline for every read and may be used
// in any template.
const AssignedField = "assigned"

// TagTemplate is a parsed bam_tags template.
type TagTemplate struct {
	raw          string
	segments     []segment
	placeholders []string
}

type segment struct {
	literal     string
	placeholder string
}

// Raw returns the template as written.
func (t TagTemplate) Raw() string {
	return t.raw
}

// String implements fmt.Stringer.
func (t TagTemplate) String() string {
	return t.raw
}

// Placeholders returns the distinct placeholder names in order of first use.
func (t TagTemplate) Placeholders() []string {
	return slices.Clone(t.placeholders)
}

// Render substitutes every placeholder with its value.
func (t TagTemplate) Render(values map[string]string) (string, error) {
	var sb strings.Builder
	for _, seg := range t.segments {
		if seg.placeholder == "" {
			sb.WriteString(seg.literal)
			continue
		}
		v, ok := values[seg.placeholder]
		if !ok {
			return "", fmt.Errorf("rendering %q: no value for {%s}", t.raw, seg.placeholder)
		}
		sb.WriteString(v)
	}
	return sb.String(), nil
}

// ParseTagTemplate extracts every {name} placeholder from raw and checks it
// against known plus AssignedField.
func ParseTagTemplate(raw string, known []string) (TagTemplate, error) {
	t, err := ScanTagTemplate(raw)
	if err != nil {
		return TagTemplate{}, err
	}
	if err := t.CheckPlaceholders(known); err != nil {
		return TagTemplate{}, err
	}
	return t, nil
}

// ScanTagTemplate checks only the placeholder grammar of raw.
func ScanTagTemplate(raw string) (TagTemplate, error) {
	t := TagTemplate{raw: raw}
	var lit strings.Builder

	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '}':
			return TagTemplate{}, &TemplateError{Raw: raw, Pos: i, Message: "unmatched '}'", Err: ErrTemplateSyntax}
		case '{':
			end := strings.IndexByte(raw[i+1:], '}')
			if end < 0 {
				return TagTemplate{}, &TemplateError{Raw: raw, Pos: i, Message: "unclosed '{'", Err: ErrTemplateSyntax}
			}
			name := raw[i+1 : i+1+end]
			if !validPlaceholder(name) {
				return TagTemplate{}, &TemplateError{Raw: raw, Pos: i, Message: fmt.Sprintf("invalid placeholder name %q", name), Err: ErrTemplateSyntax}
			}
			if lit.Len() > 0 {
				t.segments = append(t.segments, segment{literal: lit.String()})
				lit.Reset()
			}
			t.segments = append(t.segments, segment{placeholder: name})
			if !slices.Contains(t.placeholders, name) {
				t.placeholders = append(t.placeholders, name)
			}
			i += end + 1
		default:
			lit.WriteByte(raw[i])
		}
	}
	if lit.Len() > 0 {
		t.segments = append(t.segments, segment{literal: lit.String()})
	}
	return t, nil
}

// CheckPlaceholders reports the first placeholder that is neither in known
// nor AssignedField.
func (t TagTemplate) CheckPlaceholders(known []string) error {
	pos := 0
	for _, seg := range t.segments {
		if seg.placeholder == "" {
			pos += len(seg.literal)
			continue
		}
		if seg.placeholder != AssignedField && !slices.Contains(known, seg.placeholder) {
			return &TemplateError{
				Raw:     t.raw,
				Pos:     pos,
				Name:    seg.placeholder,
				Message: "unknown placeholder",
				Err:     ErrUnknownPlaceholder,
			}
		}
		pos += len(seg.placeholder) + 2
	}
	return nil
}

func validPlaceholder(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
