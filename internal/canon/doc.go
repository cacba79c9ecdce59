// Package canon assigns canonical identifiers and computes the canonical
// fingerprint of a core.
//
// Identifiers are dense and 1-based within each kind. They are assigned only
// after every reachable entity has been collected into a deduplicated set,
// then numbered in a stable order:
//   - assemblies by location label
//   - sections by equivalence method and name
//   - materials by name
//
// Ties keep arena order, so identical input always yields identical IDs.
//
// The fingerprint hashes a canonical JSON manifest of the assigned IDs and
// the global mesh. Two builds with the same fingerprint serialize to the
// same decks.
package canon
