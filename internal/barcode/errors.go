package barcode

import (
	"fmt"

	"github.com/J-81/spacemake/internal/errors"
)

// Sentinel errors for barcode grammars.
var (
	// ErrSliceSyntax indicates a slice expression does not match r(1|2)[<int>:<int>].
	ErrSliceSyntax = errors.New("invalid slice expression")

	// ErrSliceRange indicates a syntactically valid slice with start >= end or a negative bound.
	ErrSliceRange = errors.New("invalid slice range")

	// ErrTemplateSyntax indicates unbalanced or malformed placeholders in a tag template.
	ErrTemplateSyntax = errors.New("invalid tag template")

	// ErrUnknownPlaceholder indicates a template placeholder that names no known field.
	ErrUnknownPlaceholder = errors.New("unknown placeholder")

	// ErrReadTooShort indicates a read is shorter than the end of a slice.
	ErrReadTooShort = errors.New("read too short for slice")
)

// SliceError reports a slice expression failure at a byte position.
type SliceError struct {
	Raw     string // The expression as written
	Pos     int    // Byte offset of the offending character
	Message string // What was expected
	Err     error  // ErrSliceSyntax or ErrSliceRange
}

func (e *SliceError) Error() string {
	return fmt.Sprintf("slice expression %q at position %d: %s", e.Raw, e.Pos, e.Message)
}

func (e *SliceError) Unwrap() error {
	return e.Err
}

// TemplateError reports a tag template failure at a byte position.
type TemplateError struct {
	Raw     string
	Pos     int
	Name    string // Placeholder name, empty for syntax errors
	Message string
	Err     error // ErrTemplateSyntax or ErrUnknownPlaceholder
}

func (e *TemplateError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("tag template %q at position %d: %s {%s}", e.Raw, e.Pos, e.Message, e.Name)
	}
	return fmt.Sprintf("tag template %q at position %d: %s", e.Raw, e.Pos, e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}
