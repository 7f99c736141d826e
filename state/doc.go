// Package state holds the shared program state that compiled operations act
// on, the process-wide parameter table, and the partitioner used by grouping
// operations.
//
// A [State] is an ordered collection of [Item] values. Each item carries a
// kind, optional cross-reference identifiers, item-level [Metadata], and
// optionally a list of per-element metadata maps (for example the slices of
// an image series). The dispatcher treats the contents as opaque; it only
// needs to clone, merge, and partition them.
package state
