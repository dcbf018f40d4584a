package configstore

import (
	"fmt"
	"maps"
	"slices"

	"github.com/J-81/spacemake/internal/barcode"
)

func rangeError(src string, cat Category, entry, key, format string, args ...any) *ValidationError {
	return &ValidationError{
		Source: src, Category: string(cat), Entry: entry, Field: key,
		Message: fmt.Sprintf(format, args...), Err: ErrRange,
	}
}

func checkPuckRanges(pucks map[string]*puckFields, is *issues) {
	for _, name := range slices.Sorted(maps.Keys(pucks)) {
		p := pucks[name]
		if p.width.val <= 0 {
			is.add(rangeError(p.width.source, CategoryPucks, name, keyWidth, "must be positive, got %g", p.width.val))
		}
		if p.spotDiameter.val <= 0 {
			is.add(rangeError(p.spotDiameter.source, CategoryPucks, name, keySpotDiameter, "must be positive, got %g", p.spotDiameter.val))
		} else if p.spotDiameter.val > p.width.val && p.width.val > 0 {
			is.add(rangeError(p.spotDiameter.source, CategoryPucks, name, keySpotDiameter,
				"%g exceeds %s %g", p.spotDiameter.val, keyWidth, p.width.val))
		}
	}
}

func checkRunModeRanges(modes map[string]*runModeFields, is *issues) {
	for _, name := range slices.Sorted(maps.Keys(modes)) {
		r := modes[name]
		if r.nBeads.val <= 0 {
			is.add(rangeError(r.nBeads.source, CategoryRunModes, name, keyNBeads, "must be positive, got %d", r.nBeads.val))
		}
		checkCutoffs(name, r.umiCutoff, is)

		if !r.meshData.val {
			continue
		}
		switch MeshType(r.meshType.val) {
		case MeshCircle, MeshHexagon:
		default:
			is.add(rangeError(r.meshType.source, CategoryRunModes, name, keyMeshType,
				"must be %q or %q, got %q", MeshCircle, MeshHexagon, r.meshType.val))
		}
		if r.meshDiameter.val <= 0 {
			is.add(rangeError(r.meshDiameter.source, CategoryRunModes, name, keyMeshDiameter, "must be positive, got %g", r.meshDiameter.val))
		}
		if r.meshDistance.val <= 0 {
			is.add(rangeError(r.meshDistance.source, CategoryRunModes, name, keyMeshDistance, "must be positive, got %g", r.meshDistance.val))
		}
	}
}

func checkCutoffs(name string, f field[[]int], is *issues) {
	if len(f.val) == 0 {
		is.add(rangeError(f.source, CategoryRunModes, name, keyUMICutoff, "must not be empty"))
		return
	}
	for i, c := range f.val {
		if c <= 0 {
			is.add(rangeError(f.source, CategoryRunModes, name, keyUMICutoff, "item %d must be positive, got %d", i, c))
			return
		}
		if i > 0 && c <= f.val[i-1] {
			is.add(rangeError(f.source, CategoryRunModes, name, keyUMICutoff,
				"must be strictly ascending, item %d (%d) follows %d", i, c, f.val[i-1]))
			return
		}
	}
}

func checkFlavorRanges(flavors map[string]*flavorFields, is *issues) {
	for _, name := range slices.Sorted(maps.Keys(flavors)) {
		f := flavors[name]
		for _, s := range []struct {
			key  string
			raw  string
			expr field[barcode.SliceExpression]
		}{{keyCell, f.cellRaw, f.cell}, {keyUMI, f.umiRaw, f.umi}} {
			if err := barcode.CheckRange(s.raw, s.expr.val); err != nil {
				is.add(&ValidationError{
					Source: s.expr.source, Category: string(CategoryBarcodeFlavors), Entry: name, Field: s.key,
					Message: err.Error(), Err: ErrRange, Cause: err,
				})
			}
		}
	}
}
