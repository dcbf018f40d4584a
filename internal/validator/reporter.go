package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/fatih/color"

	"github.com/J-81/spacemake/internal/errors"
)

// Format specifies the output format for validation reports.
type Format string

const (
	// FormatText produces human-readable text output.
	FormatText Format = "text"
	// FormatJSON produces machine-readable JSON output.
	FormatJSON Format = "json"
)

// maxValueLen bounds the rendered value of an issue.
const maxValueLen = 50

// Reporter formats and writes validation results.
type Reporter struct {
	out    io.Writer
	format Format
}

// NewReporter creates a new Reporter.
func NewReporter(out io.Writer, format Format) *Reporter {
	return &Reporter{
		out:    out,
		format: format,
	}
}

// Report writes the validation result to the output.
func (r *Reporter) Report(result *Result) error {
	if result == nil {
		return nil
	}

	switch r.format {
	case FormatJSON:
		return r.reportJSON(result)
	default:
		return r.reportText(result)
	}
}

func (r *Reporter) reportJSON(result *Result) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(result), "encoding JSON report")
}

func (r *Reporter) reportText(result *Result) error {
	errs := result.Errors()
	warnings := result.Warnings()
	infos := result.Infos()

	switch {
	case len(errs) > 0:
		summary := []string{color.RedString("%d error(s)", len(errs))}
		if len(warnings) > 0 {
			summary = append(summary, color.YellowString("%d warning(s)", len(warnings)))
		}
		fmt.Fprintf(r.out, "Validation failed: %s\n\n", strings.Join(summary, ", "))
	case len(warnings) > 0:
		fmt.Fprintf(r.out, "%s: %s\n\n", color.GreenString("✓ Validation passed"), color.YellowString("%d warning(s)", len(warnings)))
	default:
		fmt.Fprintln(r.out, color.GreenString("✓ Validation passed"))
		if len(infos) == 0 {
			return nil
		}
		fmt.Fprintln(r.out)
	}

	r.printSection("Errors:", errs, color.FgRed)
	r.printSection("Warnings:", warnings, color.FgYellow)
	r.printSection("Notes:", infos, color.FgBlue)
	return nil
}

func (r *Reporter) printSection(title string, issues []Issue, c color.Attribute) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintln(r.out, title)
	for _, i := range issues {
		r.printIssue(i, c)
	}
	fmt.Fprintln(r.out)
}

func (r *Reporter) printIssue(i Issue, c color.Attribute) {
	dim := color.New(color.FgHiBlack)

	var sb strings.Builder
	sb.WriteString("  • ")
	if i.Field != "" {
		sb.WriteString(color.New(c).Sprint(i.Field))
		sb.WriteString(": ")
	}
	sb.WriteString(i.Message)

	if len(i.Context) > 0 {
		pairs := make([]string, 0, len(i.Context))
		for _, k := range slices.Sorted(maps.Keys(i.Context)) {
			pairs = append(pairs, k+"="+i.Context[k])
		}
		sb.WriteString(" ")
		sb.WriteString(dim.Sprintf("(%s)", strings.Join(pairs, ", ")))
	}

	if i.Value != nil {
		v := fmt.Sprint(i.Value)
		if len(v) > maxValueLen {
			v = v[:maxValueLen-3] + "..."
		}
		sb.WriteString(dim.Sprintf(" [%s]", v))
	}

	fmt.Fprintln(r.out, sb.String())
}
