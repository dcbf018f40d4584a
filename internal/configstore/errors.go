package configstore

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/J-81/spacemake/internal/barcode"
	"github.com/J-81/spacemake/internal/errors"
)

// Error kinds. Every *ValidationError unwraps to exactly one of these.
var (
	// ErrSchema indicates a missing, unknown, or mistyped key.
	ErrSchema = errors.New("schema error")

	// ErrDuplicateName indicates a name or key repeated within one document.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrCyclicInheritance indicates a parent chain that returns to itself.
	ErrCyclicInheritance = errors.New("cyclic inheritance")

	// ErrUnresolvedField indicates a field still unset after the full inheritance walk.
	ErrUnresolvedField = errors.New("unresolved field")

	// ErrSliceExpression indicates a cell or UMI value outside the slice grammar.
	ErrSliceExpression = barcode.ErrSliceSyntax

	// ErrUnknownPlaceholder indicates a bam_tags placeholder naming no known field.
	ErrUnknownPlaceholder = barcode.ErrUnknownPlaceholder

	// ErrRange indicates a numeric or value invariant was violated.
	ErrRange = errors.New("value out of range")

	// ErrNotFound indicates a lookup of an undefined name.
	ErrNotFound = errors.ErrNotFound
)

// Stage is one step of snapshot validation.
type Stage int

// Validation stages in evaluation order.
const (
	StageSchema Stage = iota + 1
	StageUniqueness
	StageReference
	StageRange
)

func (s Stage) String() string {
	switch s {
	case StageSchema:
		return "schema"
	case StageUniqueness:
		return "uniqueness"
	case StageReference:
		return "reference"
	case StageRange:
		return "range"
	default:
		return "unknown"
	}
}

// ValidationError identifies one offending value.
type ValidationError struct {
	Stage    Stage
	Source   string // Document the value came from, empty if not tied to one
	Category string
	Entry    string
	Field    string
	Message  string
	Err      error // Error kind sentinel
	Cause    error // Optional underlying parser error
}

// Location returns category.entry.field with empty parts omitted.
func (e *ValidationError) Location() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{e.Category, e.Entry, e.Field} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	if e.Source != "" {
		sb.WriteString(e.Source)
		sb.WriteString(": ")
	}
	if loc := e.Location(); loc != "" {
		sb.WriteString(loc)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Err.Error())
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	return sb.String()
}

// Kind returns a short stable name of the error kind, e.g. "cyclic_inheritance".
func (e *ValidationError) Kind() string {
	switch e.Err {
	case ErrSchema:
		return "schema"
	case ErrDuplicateName:
		return "duplicate_name"
	case ErrCyclicInheritance:
		return "cyclic_inheritance"
	case ErrUnresolvedField:
		return "unresolved_field"
	case ErrSliceExpression:
		return "slice_expression"
	case ErrUnknownPlaceholder:
		return "unknown_placeholder"
	case ErrRange:
		return "range"
	case ErrNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

func (e *ValidationError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// LoadError aggregates every failure of the first stage that failed.
type LoadError struct {
	Stage  Stage
	Errors []*ValidationError
}

func (e *LoadError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("%s (%s stage, %d error(s)): %s",
		errors.ErrInvalidConfig, e.Stage, len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap exposes ErrInvalidConfig and each validation error.
func (e *LoadError) Unwrap() []error {
	out := make([]error, 0, len(e.Errors)+1)
	out = append(out, errors.ErrInvalidConfig)
	for _, ve := range e.Errors {
		out = append(out, ve)
	}
	return out
}

// NotFoundError reports a lookup of an undefined entry.
type NotFoundError struct {
	Category Category
	Name     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Category, e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// issues collects validation errors for one stage.
type issues struct {
	stage Stage
	errs  []*ValidationError
}

func (is *issues) add(ve *ValidationError) {
	ve.Stage = is.stage
	is.errs = append(is.errs, ve)
}

func (is *issues) schema(src, cat, entry, field, format string, args ...any) {
	is.add(&ValidationError{Source: src, Category: cat, Entry: entry, Field: field, Message: fmt.Sprintf(format, args...), Err: ErrSchema})
}

func (is *issues) err() error {
	if len(is.errs) == 0 {
		return nil
	}
	sortIssues(is.errs)
	return &LoadError{Stage: is.stage, Errors: is.errs}
}

func sortIssues(errs []*ValidationError) {
	slices.SortStableFunc(errs, func(a, b *ValidationError) int {
		return cmp.Or(
			cmp.Compare(a.Category, b.Category),
			cmp.Compare(a.Entry, b.Entry),
			cmp.Compare(a.Field, b.Field),
			cmp.Compare(a.Message, b.Message),
		)
	})
}
