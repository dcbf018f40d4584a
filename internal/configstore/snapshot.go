package configstore

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"path/filepath"
	"slices"

	"github.com/J-81/spacemake/internal/errors"
)

// Snapshot is a validated, fully resolved configuration.
type Snapshot struct {
	pucks    map[string]Puck
	runModes map[string]RunMode
	adapters map[string]Adapter
	flavors  map[string]BarcodeFlavor
	puckData PuckData
	names    map[Category][]string
	sources  []string
	digest   string
}

// Puck returns the named puck.
func (s *Snapshot) Puck(name string) (Puck, error) {
	p, ok := s.pucks[name]
	if !ok {
		return Puck{}, &NotFoundError{Category: CategoryPucks, Name: name}
	}
	return p, nil
}

// RunMode returns the named run mode with all inherited fields filled in.
func (s *Snapshot) RunMode(name string) (RunMode, error) {
	r, ok := s.runModes[name]
	if !ok {
		return RunMode{}, &NotFoundError{Category: CategoryRunModes, Name: name}
	}
	return r.clone(), nil
}

// Adapter returns the named adapter.
func (s *Snapshot) Adapter(name string) (Adapter, error) {
	a, ok := s.adapters[name]
	if !ok {
		return Adapter{}, &NotFoundError{Category: CategoryAdapters, Name: name}
	}
	return a, nil
}

// BarcodeFlavor returns the named flavor, with unset fields taken from the
// default flavor.
func (s *Snapshot) BarcodeFlavor(name string) (BarcodeFlavor, error) {
	f, ok := s.flavors[name]
	if !ok {
		return BarcodeFlavor{}, &NotFoundError{Category: CategoryBarcodeFlavors, Name: name}
	}
	return f, nil
}

// Get returns the named entry of category as a Puck, RunMode, Adapter or
// BarcodeFlavor value.
func (s *Snapshot) Get(category Category, name string) (any, error) {
	switch category {
	case CategoryPucks:
		return s.Puck(name)
	case CategoryRunModes:
		return s.RunMode(name)
	case CategoryAdapters:
		return s.Adapter(name)
	case CategoryBarcodeFlavors:
		return s.BarcodeFlavor(name)
	default:
		return nil, errors.Wrapf(ErrNotFound, "category %q", category)
	}
}

// Names returns the sorted entry names of category.
func (s *Snapshot) Names(category Category) []string {
	return slices.Clone(s.names[category])
}

// PuckData returns the puck barcode file layout.
func (s *Snapshot) PuckData() PuckData {
	return s.puckData
}

// Sources lists the documents the snapshot was built from, base first.
func (s *Snapshot) Sources() []string {
	return slices.Clone(s.sources)
}

// Digest is the hex SHA-256 of the canonical JSON export. Snapshots with
// equal resolved content have equal digests regardless of document layout.
func (s *Snapshot) Digest() string {
	return s.digest
}

// PuckBarcodeFile locates the barcode file of one physical puck. An explicit
// barcodes path on the puck type wins; otherwise the file is
// <puck_data.root>/<id>/<puck_data.barcode_file>.
func (s *Snapshot) PuckBarcodeFile(puck, id string) (string, error) {
	p, err := s.Puck(puck)
	if err != nil {
		return "", err
	}
	if p.Barcodes != "" {
		return p.Barcodes, nil
	}
	if id == "" {
		return "", errors.Newf("puck %q has no barcodes file and no puck id was given", puck)
	}
	if s.puckData.Root == "" || s.puckData.BarcodeFile == "" {
		return "", errors.Wrapf(ErrNotFound, "puck_data root and barcode_file must both be set to locate barcodes of %q", id)
	}
	return filepath.Join(s.puckData.Root, id, s.puckData.BarcodeFile), nil
}

// Export returns the resolved configuration as a nested mapping using the
// document keys. Parents are flattened away, so loading the export as a
// single document yields a snapshot with the same digest.
func (s *Snapshot) Export() map[string]any {
	pucks := make(map[string]any, len(s.pucks))
	for name, p := range s.pucks {
		m := map[string]any{
			keyWidth:        p.WidthUM,
			keySpotDiameter: p.SpotDiameterUM,
		}
		if p.Barcodes != "" {
			m[keyBarcodes] = p.Barcodes
		}
		if p.CoordinateSystem != "" {
			m[keyCoordinateSystem] = p.CoordinateSystem
		}
		pucks[name] = m
	}

	modes := make(map[string]any, len(s.runModes))
	for name, r := range s.runModes {
		m := map[string]any{
			keyNBeads:        r.NBeads,
			keyUMICutoff:     slices.Clone(r.UMICutoff),
			keyCleanDGE:      r.CleanDGE,
			keyDetectTissue:  r.DetectTissue,
			keyPolyATrimming: r.PolyAAdapterTrimming,
			keyCountIntronic: r.CountIntronicReads,
			keyCountMM:       r.CountMMReads,
			keyMeshData:      r.MeshData,
		}
		// Mesh geometry is optional unless mesh_data is on.
		if r.MeshType != "" {
			m[keyMeshType] = string(r.MeshType)
		}
		if r.MeshSpotDiameterUM != 0 {
			m[keyMeshDiameter] = r.MeshSpotDiameterUM
		}
		if r.MeshSpotDistanceUM != 0 {
			m[keyMeshDistance] = r.MeshSpotDistanceUM
		}
		modes[name] = m
	}

	adapters := make(map[string]any, len(s.adapters))
	for name, a := range s.adapters {
		adapters[name] = a.Sequence
	}

	flavors := make(map[string]any, len(s.flavors))
	for name, f := range s.flavors {
		flavors[name] = map[string]any{
			keyCell:    f.Cell.String(),
			keyUMI:     f.UMI.String(),
			keyBamTags: f.BamTags.Raw(),
		}
	}

	out := map[string]any{
		string(CategoryPucks):          pucks,
		string(CategoryRunModes):       modes,
		string(CategoryAdapters):       adapters,
		string(CategoryBarcodeFlavors): flavors,
	}
	if s.puckData != (PuckData{}) {
		pd := map[string]any{}
		if s.puckData.Root != "" {
			pd[keyRoot] = s.puckData.Root
		}
		if s.puckData.BarcodeFile != "" {
			pd[keyBarcodeFile] = s.puckData.BarcodeFile
		}
		out[keyPuckData] = pd
	}
	return out
}

func digest(export map[string]any) string {
	// encoding/json sorts map keys, which makes the encoding canonical.
	b, err := json.Marshal(export)
	if err != nil {
		panic(err) // export holds only JSON-safe values
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
