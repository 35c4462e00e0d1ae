// Package plan implements the lazy, pull-based operator trees that
// evaluate shape constraints against the store.
//
// A plan tree is built bottom-up by the constraint compiler: target
// resolution leaves feed joins, filters, and set operators; the caller
// pulls tuples from the root. Every tuple surfacing at the root of a
// validation plan is a constraint violation.
//
// ARCHITECTURE:
//
// Single-threaded demand-driven iteration:
// There is no operator-level parallelism inside one tree. Pulling from
// the root cascades down; blocking happens only where a node issues a
// query against a store connection.
//
// One-shot trees:
// A tree is constructed fresh per (shape, scope, transaction) evaluation
// and iterated at most once - nodes close over connection state that does
// not outlive the transaction.
//
// Close discipline:
// Closing an iterator closes every child iterator it opened, exactly
// once, idempotently, on every exit path (exhaustion, early stop, error).
// When one child's close fails the siblings are still closed and the
// errors are joined.
//
// Ordering:
// Within one batch of the bulk join, same-target tuples are contiguous;
// across batches there is no global order. GroupByCountFilter relies on
// that contiguity and must not be placed behind an operator that can
// interleave batches.
package plan
