// Package store provides a SQLite-backed ledger of compiled builds.
//
// Every recorded build keeps:
//   - Builds: case name, core fingerprint, deck hashes and the canonical manifest
//   - Canonical IDs: the (kind, id, key) rows assigned to assemblies, sections and materials
//   - Diagnostics: the consistency warnings raised while compiling
//
// # Ordering
//
// Builds are ordered by seq, a logical counter assigned on insert. Wall-clock
// timestamps are never stored, so two ledgers fed the same builds are
// identical apart from build IDs.
//
// Build IDs are UUIDv7.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
