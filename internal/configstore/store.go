package configstore

import (
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/J-81/spacemake/internal/defaults"
	"github.com/J-81/spacemake/internal/document"
	"github.com/J-81/spacemake/internal/errors"
)

// LoadStats summarizes one Load call for observers.
type LoadStats struct {
	Documents int
	Duration  time.Duration
	// Snapshot is nil when the load failed.
	Snapshot *Snapshot
	// Err is the *LoadError (or nil).
	Err error
}

// Observer is notified after every Load.
type Observer interface {
	ObserveLoad(LoadStats)
}

// Store builds snapshots. It holds no configuration state of its own, so one
// Store may be used for any number of independent loads.
type Store struct {
	logger    *slog.Logger
	observers []Observer
	now       func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithObserver registers o to receive LoadStats.
func WithObserver(o Observer) Option {
	return func(s *Store) { s.observers = append(s.observers, o) }
}

// NewStore creates a Store.
func NewStore(opts ...Option) *Store {
	s := &Store{logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load merges docs in order and validates the result. The first document is
// the base; each following one is an overlay. On failure the returned error
// is a *LoadError holding every problem of the first failing stage.
func (s *Store) Load(docs ...*document.Document) (*Snapshot, error) {
	start := s.now()
	snap, err := s.load(docs)
	stats := LoadStats{Documents: len(docs), Duration: s.now().Sub(start), Snapshot: snap, Err: err}
	for _, o := range s.observers {
		o.ObserveLoad(stats)
	}
	return snap, err
}

func (s *Store) load(docs []*document.Document) (*Snapshot, error) {
	docs = slices.DeleteFunc(slices.Clone(docs), func(d *document.Document) bool { return d == nil })
	sources := make([]string, len(docs))
	for i, d := range docs {
		sources[i] = d.Source
	}
	s.logger.Debug("loading configuration", "documents", sources)

	is := &issues{stage: StageSchema}
	l := merge(docs, is)
	t := checkSchema(l, is)
	if err := s.fail(is); err != nil {
		return nil, err
	}

	is = &issues{stage: StageUniqueness}
	checkUnique(docs, is)
	if err := s.fail(is); err != nil {
		return nil, err
	}

	is = &issues{stage: StageReference}
	modes := resolveRunModes(t.runModes, is)
	flavors := resolveFlavors(t.flavors, is)
	if err := s.fail(is); err != nil {
		return nil, err
	}

	is = &issues{stage: StageRange}
	checkPuckRanges(t.pucks, is)
	checkRunModeRanges(modes, is)
	checkFlavorRanges(flavors, is)
	if err := s.fail(is); err != nil {
		return nil, err
	}

	snap := freeze(t, modes, flavors, sources)
	s.logger.Debug("configuration loaded",
		"digest", snap.Digest(),
		"pucks", len(snap.pucks),
		"run_modes", len(snap.runModes),
		"adapters", len(snap.adapters),
		"barcode_flavors", len(snap.flavors),
	)
	return snap, nil
}

func (s *Store) fail(is *issues) error {
	err := is.err()
	if err != nil {
		s.logger.Debug("configuration invalid", "stage", is.stage.String(), "errors", len(is.errs))
	}
	return err
}

// LoadDefaults loads the built-in defaults followed by overlays.
func (s *Store) LoadDefaults(overlays ...*document.Document) (*Snapshot, error) {
	base, err := defaults.Document()
	if err != nil {
		return nil, errors.Wrap(err, "parsing built-in defaults")
	}
	return s.Load(append([]*document.Document{base}, overlays...)...)
}

// Load is a convenience for NewStore().Load.
func Load(docs ...*document.Document) (*Snapshot, error) {
	return NewStore().Load(docs...)
}

// LoadDefaults is a convenience for NewStore().LoadDefaults.
func LoadDefaults(overlays ...*document.Document) (*Snapshot, error) {
	return NewStore().LoadDefaults(overlays...)
}

// freeze converts resolved fields into the immutable snapshot.
func freeze(t *typed, modes map[string]*runModeFields, flavors map[string]*flavorFields, sources []string) *Snapshot {
	snap := &Snapshot{
		pucks:    make(map[string]Puck, len(t.pucks)),
		runModes: make(map[string]RunMode, len(modes)),
		adapters: make(map[string]Adapter, len(t.adapters)),
		flavors:  make(map[string]BarcodeFlavor, len(flavors)),
		puckData: t.puckData,
		sources:  sources,
	}
	for name, p := range t.pucks {
		snap.pucks[name] = Puck{
			Name:             name,
			WidthUM:          p.width.val,
			SpotDiameterUM:   p.spotDiameter.val,
			Barcodes:         p.barcodes.val,
			CoordinateSystem: p.coordinateSystem.val,
		}
	}
	for name, r := range modes {
		snap.runModes[name] = RunMode{
			Name:                 name,
			Parent:               r.parent.val,
			NBeads:               r.nBeads.val,
			UMICutoff:            slices.Clone(r.umiCutoff.val),
			CleanDGE:             r.cleanDGE.val,
			DetectTissue:         r.detectTissue.val,
			PolyAAdapterTrimming: r.polyATrimming.val,
			CountIntronicReads:   r.countIntronic.val,
			CountMMReads:         r.countMM.val,
			MeshData:             r.meshData.val,
			MeshType:             MeshType(r.meshType.val),
			MeshSpotDiameterUM:   r.meshDiameter.val,
			MeshSpotDistanceUM:   r.meshDistance.val,
		}
	}
	for name, a := range t.adapters {
		snap.adapters[name] = Adapter{Name: name, Sequence: a.val}
	}
	for name, f := range flavors {
		snap.flavors[name] = BarcodeFlavor{Name: name, Cell: f.cell.val, UMI: f.umi.val, BamTags: f.bamTags.val}
	}
	snap.names = map[Category][]string{
		CategoryPucks:          slices.Sorted(maps.Keys(snap.pucks)),
		CategoryRunModes:       slices.Sorted(maps.Keys(snap.runModes)),
		CategoryAdapters:       slices.Sorted(maps.Keys(snap.adapters)),
		CategoryBarcodeFlavors: slices.Sorted(maps.Keys(snap.flavors)),
	}
	snap.digest = digest(snap.Export())
	return snap
}
