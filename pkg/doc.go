// Package pkg provides the libraries behind gdivelog2uddf.
//
// # Overview
//
// gdivelog2uddf exports the dive log of gdivelog, a GNOME logbook, to UDDF,
// the Universal Dive Data Format. The log is a bzip2-compressed SQLite
// database; the export is one or more self-contained XML documents.
//
// # Architecture
//
// Data flows one way:
//
//	gdivelog log (.glg)
//	         ↓
//	    [store] package (decompress, read-only SQL access)
//	         ↓
//	    [segment] package (repetition groups, trips, document splits)
//	         ↓
//	    [uddf] / [udcf] packages (per-dive enrichment: [gas], [units])
//	         ↓
//	    [xmltree] package (document tree + serializer)
//	         ↓
//	    one file per document, or stdout
//
// [export] wires these stages together for the CLI.
//
// # Main Packages
//
// ## Domain
//
// [divelog] - Record types of a gdivelog database and the read contract the
// assemblers depend on.
//
// [segment] - Pull-based generator that partitions the time-ordered dive
// stream into repetition groups, trips and bounded-size documents.
//
// [gas] - Gas mix naming and per-document registry, plus the mix switch
// timeline reconstructed from tank-usage intervals.
//
// [units] - Unit selectors and conversions into the SI units UDDF expects.
//
// ## Output
//
// [uddf] - UDDF 3.0.0 assembler.
//
// [udcf] - Legacy UDCF assembler.
//
// [outline] - Structure-only assembler and Graphviz rendering of the plan.
//
// [xmltree] - Ordered element tree, notes markup parsing and rendering.
//
// ## Infrastructure
//
// [store] - gdivelog SQLite access through sqlx.
//
// [cache] - Content-addressed cache of decompressed logs.
//
// [prefs] - gdivelog's binary preferences file and the TOML configuration.
//
// [export] - Runner used by the CLI: preferences, store, segmenter, sinks.
//
// [errors] - Coded errors shared by all packages.
//
// [observability] - Optional hooks for conversion and cache events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/segment/...    # Specific package
//
// [divelog]: https://pkg.go.dev/github.com/matzehuels/gdivelog2uddf/pkg/divelog
// [segment]: https://pkg.go.dev/github.com/matzehuels/gdivelog2uddf/pkg/segment
// [gas]: https://pkg.go.dev/github.com/matzehuels/gdivelog2uddf/pkg/gas
// [units]: https://pkg.go.dev/github.com/matzehuels/gdivelog2uddf/pkg/units
// [uddf]: https://pkg.go.dev/github.com/matzehuels/gdivelog2uddf/pkg/uddf
// [udcf]: https://pkg.go.dev/github.com/matzehuels/gdivelog2uddf/pkg/udcf
// [outline]: https://pkg.go.dev/github.com/matzehuels/gdivelog2uddf/pkg/outline
// [xmltree]: https://pkg.go.dev/github.com/matzehuels/gdivelog2uddf/pkg/xmltree
// [store]: https://pkg.go.dev/github.com/matzehuels/gdivelog2uddf/pkg/store
// [cache]: https://pkg.go.dev/github.com/matzehuels/gdivelog2uddf/pkg/cache
// [prefs]: https://pkg.go.dev/github.com/matzehuels/gdivelog2uddf/pkg/prefs
// [export]: https://pkg.go.dev/github.com/matzehuels/gdivelog2uddf/pkg/export
// [errors]: https://pkg.go.dev/github.com/matzehuels/gdivelog2uddf/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/gdivelog2uddf/pkg/observability
package pkg
