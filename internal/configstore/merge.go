package configstore

import (
	"maps"
	"slices"

	"github.com/J-81/spacemake/internal/document"
)

// rawValue is one field value and the document that last set it.
type rawValue struct {
	val    any
	source string
}

type rawEntry struct {
	fields map[string]rawValue
}

// layers is the field-level merge of all documents, before typing.
type layers struct {
	entries  map[Category]map[string]*rawEntry
	adapters map[string]rawValue
	puckData map[string]rawValue
}

func newLayers() *layers {
	return &layers{
		entries: map[Category]map[string]*rawEntry{
			CategoryPucks:          {},
			CategoryRunModes:       {},
			CategoryBarcodeFlavors: {},
		},
		adapters: map[string]rawValue{},
		puckData: map[string]rawValue{},
	}
}

// merge applies docs in order. Structural problems are recorded on is and
// the offending subtree is skipped.
func merge(docs []*document.Document, is *issues) *layers {
	l := newLayers()
	for _, doc := range docs {
		for _, key := range slices.Sorted(maps.Keys(doc.Root)) {
			v := doc.Root[key]
			switch cat := Category(key); cat {
			case CategoryPucks, CategoryRunModes, CategoryBarcodeFlavors:
				l.mergeEntries(doc.Source, cat, v, is)
			case CategoryAdapters:
				l.mergeAdapters(doc.Source, v, is)
			default:
				if key == keyPuckData {
					l.mergePuckData(doc.Source, v, is)
					continue
				}
				is.schema(doc.Source, key, "", "", "unknown top-level key")
			}
		}
	}
	return l
}

func (l *layers) mergeEntries(src string, cat Category, v any, is *issues) {
	if v == nil {
		return
	}
	m, ok := v.(map[string]any)
	if !ok {
		is.schema(src, string(cat), "", "", "want mapping, got %s", typeName(v))
		return
	}
	for _, name := range slices.Sorted(maps.Keys(m)) {
		entry := l.entries[cat][name]
		if entry == nil {
			entry = &rawEntry{fields: map[string]rawValue{}}
			l.entries[cat][name] = entry
		}
		ev := m[name]
		if ev == nil {
			continue
		}
		fields, ok := ev.(map[string]any)
		if !ok {
			is.schema(src, string(cat), name, "", "entry must be a mapping, got %s", typeName(ev))
			continue
		}
		mergeFields(src, string(cat), name, entry.fields, fields, is)
	}
}

func (l *layers) mergeAdapters(src string, v any, is *issues) {
	if v == nil {
		return
	}
	m, ok := v.(map[string]any)
	if !ok {
		is.schema(src, string(CategoryAdapters), "", "", "want mapping, got %s", typeName(v))
		return
	}
	mergeFields(src, string(CategoryAdapters), "", l.adapters, m, is)
}

func (l *layers) mergePuckData(src string, v any, is *issues) {
	if v == nil {
		return
	}
	m, ok := v.(map[string]any)
	if !ok {
		is.schema(src, keyPuckData, "", "", "want mapping, got %s", typeName(v))
		return
	}
	mergeFields(src, keyPuckData, "", l.puckData, m, is)
}

// mergeFields overwrites dst with every field of src. Null values are
// rejected since overlays cannot unset a field.
func mergeFields(src, cat, entry string, dst map[string]rawValue, fields map[string]any, is *issues) {
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		v := fields[k]
		if v == nil {
			if entry == "" {
				// adapters are keyed directly by name
				is.schema(src, cat, k, "", "null value; overlays cannot remove entries")
			} else {
				is.schema(src, cat, entry, k, "null value; overlays cannot unset fields")
			}
			continue
		}
		dst[k] = rawValue{val: v, source: src}
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64, uint64, int32, uint32:
		return "integer"
	case float64, float32:
		return "number"
	case []any:
		return "list"
	case map[string]any:
		return "mapping"
	default:
		return "value"
	}
}
