package validator

import (
	"fmt"
	"slices"

	"github.com/J-81/spacemake/internal/barcode"
	"github.com/J-81/spacemake/internal/configstore"
	"github.com/J-81/spacemake/internal/errors"
)

// FromError converts the error of configstore.Load into a Result. A nil error
// gives an empty result; an error that is not a *configstore.LoadError
// becomes a single issue without a field.
func FromError(err error) *Result {
	r := &Result{}
	if err == nil {
		return r
	}
	var loadErr *configstore.LoadError
	if !errors.As(err, &loadErr) {
		r.AddError("", err.Error(), nil)
		return r
	}
	for _, ve := range loadErr.Errors {
		ctx := map[string]string{
			"stage": ve.Stage.String(),
			"kind":  ve.Kind(),
		}
		if ve.Source != "" {
			ctx["source"] = ve.Source
		}
		r.Issues = append(r.Issues, Issue{
			Severity: SeverityError,
			Field:    ve.Location(),
			Message:  ve.Message,
			Context:  ctx,
		})
	}
	return r
}

// Lint reports legal settings in snap that are likely mistakes.
func Lint(snap *configstore.Snapshot) *Result {
	r := &Result{}
	lintFlavors(snap, r)
	lintAdapters(snap, r)
	lintRunModes(snap, r)
	return r
}

func lintFlavors(snap *configstore.Snapshot, r *Result) {
	for _, name := range snap.Names(configstore.CategoryBarcodeFlavors) {
		f, err := snap.BarcodeFlavor(name)
		if err != nil {
			continue
		}
		if f.Cell.Read == f.UMI.Read && f.Cell.Start < f.UMI.End && f.UMI.Start < f.Cell.End {
			r.AddWarning("barcode_flavors."+name,
				fmt.Sprintf("cell %s and UMI %s overlap", f.Cell, f.UMI), nil)
		}
		if !slices.Contains(f.BamTags.Placeholders(), barcode.AssignedField) {
			r.AddInfo("barcode_flavors."+name+".bam_tags",
				fmt.Sprintf("template does not record {%s}", barcode.AssignedField), f.BamTags.Raw())
		}
	}
}

func lintAdapters(snap *configstore.Snapshot, r *Result) {
	seen := map[string]string{}
	for _, name := range snap.Names(configstore.CategoryAdapters) {
		a, err := snap.Adapter(name)
		if err != nil {
			continue
		}
		if first, ok := seen[a.Sequence]; ok {
			r.AddInfo("adapters."+name, fmt.Sprintf("same sequence as %s", first), nil)
			continue
		}
		seen[a.Sequence] = name
	}
}

func lintRunModes(snap *configstore.Snapshot, r *Result) {
	for _, name := range snap.Names(configstore.CategoryRunModes) {
		rm, err := snap.RunMode(name)
		if err != nil || !rm.MeshData {
			continue
		}
		if rm.MeshSpotDistanceUM < rm.MeshSpotDiameterUM {
			r.AddWarning("run_modes."+name,
				fmt.Sprintf("mesh spots of %gµm placed %gµm apart overlap", rm.MeshSpotDiameterUM, rm.MeshSpotDistanceUM), nil)
		}
	}
}
