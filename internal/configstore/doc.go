// Package configstore resolves layered spacemake configuration documents
// into an immutable, typed [Snapshot].
//
// # Layering
//
// The first document is the base (normally the built-in defaults); every
// following document is an overlay. Within each category (pucks, run_modes,
// adapters, barcode_flavors) entries merge by name and, inside an entry,
// overlay fields replace base fields. Nothing is ever deleted.
//
//	snap, err := configstore.LoadDefaults(overlay)
//	if err != nil {
//	    var loadErr *configstore.LoadError
//	    if errors.As(err, &loadErr) { ... }
//	}
//	rm, err := snap.RunMode("visium")
//
// # Validation
//
// Loading runs four stages and stops after the first one that fails:
//
//  1. schema: known keys, value types, slice/template grammar
//  2. uniqueness: no repeated names or keys inside one document
//  3. reference: run-mode inheritance, field resolution, template placeholders
//  4. range: positivity, umi_cutoff ordering, slice bounds, mesh settings
//
// Every failure is a [*ValidationError] naming the document source,
// category, entry and field. Run modes without an explicit parent inherit
// from "default", which terminates every chain.
//
// # Concurrency
//
// A Snapshot is never mutated after Load and may be shared by any number of
// goroutines. Accessors return copies of slice fields.
package configstore
