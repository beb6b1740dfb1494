// Package diag defines the diagnostic model shared by the checker, the
// front-end and the reporting layer.
//
// # Data model
//
// Diagnostic is a flat record: Kind, Severity, Path, Line and Message. Kind
// is a closed enum (codes.go) with a stable camelCase key that configuration
// files use. Severity is not chosen by the producer: a Sink looks it up in
// a Levels table, and kinds mapped to SevSuppress are dropped before they
// are stored. A kind missing from the table is a programming error and
// panics.
//
// # Emitting diagnostics
//
// Checks report through the Reporter interface, normally backed by a Sink
// bound to one file. Bag stores the results and supports sorting,
// deduplication and merging across files.
//
// Package diag performs no IO and no formatting beyond the golden/short
// form used by tests; renderers live in internal/report.
package diag
