package configstore

import (
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/J-81/spacemake/internal/barcode"
)

// field is an optionally set value with provenance.
type field[T any] struct {
	val    T
	set    bool
	source string
}

func (f *field[T]) assign(v T, src string) {
	f.val, f.set, f.source = v, true, src
}

type puckFields struct {
	width            field[float64]
	spotDiameter     field[float64]
	barcodes         field[string]
	coordinateSystem field[string]
}

type runModeFields struct {
	parent        field[string]
	nBeads        field[int]
	umiCutoff     field[[]int]
	cleanDGE      field[bool]
	detectTissue  field[bool]
	polyATrimming field[bool]
	countIntronic field[bool]
	countMM       field[bool]
	meshData      field[bool]
	meshType      field[string]
	meshDiameter  field[float64]
	meshDistance  field[float64]
}

type flavorFields struct {
	cell    field[barcode.SliceExpression]
	umi     field[barcode.SliceExpression]
	bamTags field[barcode.TagTemplate]
	// raw strings, for range error messages
	cellRaw, umiRaw string
}

// typed holds the schema-checked but not yet resolved entries.
type typed struct {
	pucks    map[string]*puckFields
	runModes map[string]*runModeFields
	flavors  map[string]*flavorFields
	adapters map[string]field[string]
	puckData PuckData
}

// Field keys as they appear in documents.
const (
	keyWidth            = "width_um"
	keySpotDiameter     = "spot_diameter_um"
	keyBarcodes         = "barcodes"
	keyCoordinateSystem = "coordinate_system"

	keyParent        = "parent"
	keyNBeads        = "n_beads"
	keyUMICutoff     = "umi_cutoff"
	keyCleanDGE      = "clean_dge"
	keyDetectTissue  = "detect_tissue"
	keyPolyATrimming = "polyA_adapter_trimming"
	keyCountIntronic = "count_intronic_reads"
	keyCountMM       = "count_mm_reads"
	keyMeshData      = "mesh_data"
	keyMeshType      = "mesh_type"
	keyMeshDiameter  = "mesh_spot_diameter_um"
	keyMeshDistance  = "mesh_spot_distance_um"

	keyCell    = "cell"
	keyUMI     = "UMI"
	keyBamTags = "bam_tags"

	keyRoot        = "root"
	keyBarcodeFile = "barcode_file"
)

// checkSchema types every merged field. Unknown keys, wrong types and
// grammar violations are schema-stage failures.
func checkSchema(l *layers, is *issues) *typed {
	t := &typed{
		pucks:    map[string]*puckFields{},
		runModes: map[string]*runModeFields{},
		flavors:  map[string]*flavorFields{},
		adapters: map[string]field[string]{},
	}

	for name, e := range l.entries[CategoryPucks] {
		t.pucks[name] = typePuck(name, e, is)
	}
	for name, e := range l.entries[CategoryRunModes] {
		t.runModes[name] = typeRunMode(name, e, is)
	}
	for name, e := range l.entries[CategoryBarcodeFlavors] {
		t.flavors[name] = typeFlavor(name, e, is)
	}
	for name, rv := range l.adapters {
		seq, ok := rv.val.(string)
		switch {
		case !ok:
			is.schema(rv.source, string(CategoryAdapters), name, "", "want string, got %s", typeName(rv.val))
		case seq == "":
			is.schema(rv.source, string(CategoryAdapters), name, "", "sequence must not be empty")
		case strings.Trim(seq, "ACGT") != "":
			is.schema(rv.source, string(CategoryAdapters), name, "", "sequence must contain only A, C, G, T")
		default:
			var f field[string]
			f.assign(seq, rv.source)
			t.adapters[name] = f
		}
	}
	for _, k := range slices.Sorted(maps.Keys(l.puckData)) {
		rv := l.puckData[k]
		var dst *string
		switch k {
		case keyRoot:
			dst = &t.puckData.Root
		case keyBarcodeFile:
			dst = &t.puckData.BarcodeFile
		default:
			is.schema(rv.source, keyPuckData, "", k, "unknown key")
			continue
		}
		if s, ok := rv.val.(string); ok {
			*dst = s
		} else {
			is.schema(rv.source, keyPuckData, "", k, "want string, got %s", typeName(rv.val))
		}
	}
	return t
}

func typePuck(name string, e *rawEntry, is *issues) *puckFields {
	p := &puckFields{}
	fc := fieldChecker{is: is, cat: string(CategoryPucks), entry: name}
	for _, k := range slices.Sorted(maps.Keys(e.fields)) {
		rv := e.fields[k]
		switch k {
		case keyWidth:
			fc.number(k, rv, &p.width)
		case keySpotDiameter:
			fc.number(k, rv, &p.spotDiameter)
		case keyBarcodes:
			fc.path(k, rv, &p.barcodes)
		case keyCoordinateSystem:
			fc.path(k, rv, &p.coordinateSystem)
		default:
			fc.unknown(k, rv)
		}
	}
	if !p.width.set {
		fc.missing(keyWidth)
	}
	if !p.spotDiameter.set {
		fc.missing(keySpotDiameter)
	}
	return p
}

func typeRunMode(name string, e *rawEntry, is *issues) *runModeFields {
	r := &runModeFields{}
	fc := fieldChecker{is: is, cat: string(CategoryRunModes), entry: name}
	for _, k := range slices.Sorted(maps.Keys(e.fields)) {
		rv := e.fields[k]
		switch k {
		case keyParent:
			fc.name(k, rv, &r.parent)
		case keyNBeads:
			fc.integer(k, rv, &r.nBeads)
		case keyUMICutoff:
			fc.intList(k, rv, &r.umiCutoff)
		case keyCleanDGE:
			fc.boolean(k, rv, &r.cleanDGE)
		case keyDetectTissue:
			fc.boolean(k, rv, &r.detectTissue)
		case keyPolyATrimming:
			fc.boolean(k, rv, &r.polyATrimming)
		case keyCountIntronic:
			fc.boolean(k, rv, &r.countIntronic)
		case keyCountMM:
			fc.boolean(k, rv, &r.countMM)
		case keyMeshData:
			fc.boolean(k, rv, &r.meshData)
		case keyMeshType:
			fc.str(k, rv, &r.meshType)
		case keyMeshDiameter:
			fc.number(k, rv, &r.meshDiameter)
		case keyMeshDistance:
			fc.number(k, rv, &r.meshDistance)
		default:
			fc.unknown(k, rv)
		}
	}
	return r
}

func typeFlavor(name string, e *rawEntry, is *issues) *flavorFields {
	f := &flavorFields{}
	fc := fieldChecker{is: is, cat: string(CategoryBarcodeFlavors), entry: name}
	for _, k := range slices.Sorted(maps.Keys(e.fields)) {
		rv := e.fields[k]
		switch k {
		case keyCell:
			f.cellRaw, _ = rv.val.(string)
			fc.slice(k, rv, &f.cell)
		case keyUMI:
			f.umiRaw, _ = rv.val.(string)
			fc.slice(k, rv, &f.umi)
		case keyBamTags:
			fc.template(k, rv, &f.bamTags)
		default:
			fc.unknown(k, rv)
		}
	}
	return f
}

// fieldChecker converts raw values and records schema failures for one entry.
type fieldChecker struct {
	is    *issues
	cat   string
	entry string
}

func (fc fieldChecker) fail(rv rawValue, key, format string, args ...any) {
	fc.is.schema(rv.source, fc.cat, fc.entry, key, format, args...)
}

func (fc fieldChecker) unknown(key string, rv rawValue) {
	fc.fail(rv, key, "unknown key")
}

func (fc fieldChecker) missing(key string) {
	fc.is.schema("", fc.cat, fc.entry, key, "required key missing")
}

func (fc fieldChecker) str(key string, rv rawValue, dst *field[string]) bool {
	s, ok := rv.val.(string)
	if !ok {
		fc.fail(rv, key, "want string, got %s", typeName(rv.val))
		return false
	}
	dst.assign(s, rv.source)
	return true
}

func (fc fieldChecker) name(key string, rv rawValue, dst *field[string]) {
	if fc.str(key, rv, dst) && dst.val == "" {
		dst.set = false
		fc.fail(rv, key, "must not be empty")
	}
}

func (fc fieldChecker) path(key string, rv rawValue, dst *field[string]) {
	fc.name(key, rv, dst)
}

func (fc fieldChecker) boolean(key string, rv rawValue, dst *field[bool]) {
	b, ok := asBool(rv.val)
	if !ok {
		fc.fail(rv, key, "want boolean, got %s", typeName(rv.val))
		return
	}
	dst.assign(b, rv.source)
}

func (fc fieldChecker) integer(key string, rv rawValue, dst *field[int]) {
	n, ok := asInt(rv.val)
	if !ok {
		fc.fail(rv, key, "want integer, got %s", typeName(rv.val))
		return
	}
	dst.assign(n, rv.source)
}

func (fc fieldChecker) number(key string, rv rawValue, dst *field[float64]) {
	x, ok := asNumber(rv.val)
	if !ok {
		fc.fail(rv, key, "want number, got %s", typeName(rv.val))
		return
	}
	dst.assign(x, rv.source)
}

func (fc fieldChecker) intList(key string, rv rawValue, dst *field[[]int]) {
	list, ok := rv.val.([]any)
	if !ok {
		fc.fail(rv, key, "want list of integers, got %s", typeName(rv.val))
		return
	}
	out := make([]int, 0, len(list))
	for i, item := range list {
		n, ok := asInt(item)
		if !ok {
			fc.fail(rv, key, "item %d: want integer, got %s", i, typeName(item))
			return
		}
		out = append(out, n)
	}
	dst.assign(out, rv.source)
}

func (fc fieldChecker) slice(key string, rv rawValue, dst *field[barcode.SliceExpression]) {
	s, ok := rv.val.(string)
	if !ok {
		fc.fail(rv, key, "want slice expression string, got %s", typeName(rv.val))
		return
	}
	expr, err := barcode.ScanSlice(s)
	if err != nil {
		fc.is.add(&ValidationError{
			Source: rv.source, Category: fc.cat, Entry: fc.entry, Field: key,
			Message: err.Error(), Err: ErrSliceExpression, Cause: err,
		})
		return
	}
	dst.assign(expr, rv.source)
}

func (fc fieldChecker) template(key string, rv rawValue, dst *field[barcode.TagTemplate]) {
	s, ok := rv.val.(string)
	if !ok {
		fc.fail(rv, key, "want template string, got %s", typeName(rv.val))
		return
	}
	tmpl, err := barcode.ScanTagTemplate(s)
	if err != nil {
		fc.is.add(&ValidationError{
			Source: rv.source, Category: fc.cat, Entry: fc.entry, Field: key,
			Message: err.Error(), Err: ErrSchema, Cause: err,
		})
		return
	}
	dst.assign(tmpl, rv.source)
}

func asBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch {
		case strings.EqualFold(b, "true"):
			return true, true
		case strings.EqualFold(b, "false"):
			return false, true
		}
	}
	return false, false
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		if n < math.MinInt || n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.Abs(n) > 1<<53 {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
