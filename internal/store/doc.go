// Package store provides SQLite-backed storage for shapegate graph data.
//
// The store holds one quad table (subject, predicate, object, graph) with
// terms serialized in their canonical text form. The validation engine
// never talks to SQLite directly; it reads through Connection values:
//
//   - the base connection sees the current transactional state (committed
//     quads plus the open transaction's staged changes)
//   - the previous-state connection sees only committed quads, and is used
//     to skip data known to be unchanged
//
// # Critical Patterns
//
// Deterministic Query Results:
//   - Every read query includes ORDER BY over the full term key so results
//     are identical across runs. Operators downstream (grouping, merging)
//     rely on same-target rows arriving contiguously.
//
// Batched Path Queries:
//   - QueryPath binds a whole batch of targets into a single IN (...)
//     round trip. The fragment (the parsed form of the query) is built
//     once per plan node and reused across batches.
//
// Ownership:
//   - Connections are read views; the engine closes the row iterators it
//     opens but never the connections themselves.
//
// # Database Configuration
//
//   - WAL mode: an open write transaction stays invisible to other
//     connections until commit, which is exactly the previous-state
//     semantics the engine needs
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package store
