// Package model provides the in-memory representation of a hexagonal core.
//
// This package contains the data model only. All other internal packages
// import model; model imports nothing internal.
//
// Entities live in an arena owned by Core and are referenced by integer
// handles (MaterialRef, SectionRef, AssemblyRef). Deduplication anywhere in
// the compiler is by handle, never by value equality: two sections with the
// same name are still two sections.
//
// Key design constraints:
//   - Section definitions are shared and immutable after placement. Axial
//     bounds live on the per-assembly Placement, so snapping one assembly's
//     stack never moves another assembly's copy.
//   - A supercell partner is a one-way annotation used for identifier
//     lookup and serialization, not an ownership edge.
//   - Canonical IDs and the global mesh are derived state. Any lattice edit
//     resets them; they must be recomputed before serialization.
package model
