// Package graph holds the immutable dependency graph handed to the
// downstream build-plan generator.
//
// A Graph is created once by New and never modified afterwards. Nodes and
// edges are stored in canonical order (path, then name, then kind) so two
// graphs built from identical inputs iterate identically and produce the
// same Fingerprint. Direct dependencies, dependents and transitive closures
// are computed during construction; queries only read precomputed maps and
// are safe for concurrent use.
//
// Mappers that need a different graph take a Snapshot, change the copy and
// build a new Graph from it.
package graph
