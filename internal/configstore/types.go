package configstore

import (
	"slices"

	"github.com/J-81/spacemake/internal/barcode"
	"github.com/J-81/spacemake/internal/errors"
)

// Category is a top-level section of a configuration document.
type Category string

// Categories holding named entries.
const (
	CategoryPucks          Category = "pucks"
	CategoryRunModes       Category = "run_modes"
	CategoryAdapters       Category = "adapters"
	CategoryBarcodeFlavors Category = "barcode_flavors"
)

// keyPuckData is the supporting top-level mapping for puck barcode files.
const keyPuckData = "puck_data"

// DefaultName is the entry every run mode and barcode flavor falls back to.
const DefaultName = "default"

// Categories returns the named-entry categories in document order.
func Categories() []Category {
	return []Category{CategoryPucks, CategoryRunModes, CategoryAdapters, CategoryBarcodeFlavors}
}

// ParseCategory accepts a category name, also in its singular or dashed form.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "pucks", "puck":
		return CategoryPucks, nil
	case "run_modes", "run-modes", "run_mode", "run-mode":
		return CategoryRunModes, nil
	case "adapters", "adapter":
		return CategoryAdapters, nil
	case "barcode_flavors", "barcode-flavors", "barcode_flavor", "barcode-flavor":
		return CategoryBarcodeFlavors, nil
	default:
		return "", errors.Wrapf(ErrNotFound, "category %q", s)
	}
}

// MeshType is the tiling used when spot data is meshed.
type MeshType string

// Supported mesh tilings.
const (
	MeshCircle  MeshType = "circle"
	MeshHexagon MeshType = "hexagon"
)

// Puck describes the geometry of a spatial capture array.
type Puck struct {
	Name           string
	WidthUM        float64
	SpotDiameterUM float64
	// Barcodes is the barcode position file; empty means positions are
	// computed rather than read.
	Barcodes         string
	CoordinateSystem string
}

// RunMode is a fully resolved bundle of processing parameters.
type RunMode struct {
	Name string
	// Parent is the entry this mode inherited from, empty for the root.
	Parent               string
	NBeads               int
	UMICutoff            []int
	CleanDGE             bool
	DetectTissue         bool
	PolyAAdapterTrimming bool
	CountIntronicReads   bool
	CountMMReads         bool
	MeshData             bool
	MeshType             MeshType
	MeshSpotDiameterUM   float64
	MeshSpotDistanceUM   float64
}

func (r RunMode) clone() RunMode {
	r.UMICutoff = slices.Clone(r.UMICutoff)
	return r
}

// Adapter is a named sequencing adapter.
type Adapter struct {
	Name     string
	Sequence string
}

// BarcodeFlavor describes how cell barcode and UMI are cut from the reads.
type BarcodeFlavor struct {
	Name    string
	Cell    barcode.SliceExpression
	UMI     barcode.SliceExpression
	BamTags barcode.TagTemplate
}

// PuckData locates per-puck barcode files on disk.
type PuckData struct {
	Root        string
	BarcodeFile string
}
