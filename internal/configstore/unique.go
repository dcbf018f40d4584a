package configstore

import (
	"fmt"

	"github.com/J-81/spacemake/internal/document"
)

// checkUnique reports every key the parser saw twice within one document.
// Repeating a name across documents is how overlays work and is not an error.
func checkUnique(docs []*document.Document, is *issues) {
	for _, doc := range docs {
		for _, dup := range doc.Duplicates {
			ve := &ValidationError{Source: doc.Source, Err: ErrDuplicateName}
			p := dup.Path
			switch {
			case len(p) == 1:
				ve.Category = p[0]
				ve.Message = "top-level key repeated"
			case len(p) == 2:
				ve.Category, ve.Entry = p[0], p[1]
				ve.Message = "name repeated"
				if p[0] == string(CategoryAdapters) || p[0] == keyPuckData {
					ve.Message = "key repeated"
				}
			default:
				ve.Category, ve.Entry, ve.Field = p[0], p[1], p[2]
				ve.Message = "key repeated"
				if len(p) > 3 {
					ve.Message = fmt.Sprintf("key %s repeated", dup)
				}
			}
			if dup.Line > 0 {
				ve.Message = fmt.Sprintf("%s (line %d)", ve.Message, dup.Line)
			}
			is.add(ve)
		}
	}
}
