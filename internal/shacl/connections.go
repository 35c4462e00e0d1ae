package shacl

import (
	"github.com/roach88/shapegate/internal/store"
)

// ConnectionsGroup is the pair of read connections one validation run
// uses. Base sees the state being validated; Previous, when set, sees the
// state before the current transaction and gates the bulk join's
// skip-if-unchanged optimization.
//
// Both connections are shared read-only across every node of a plan tree
// and are never closed by the engine. Ownership stays with the caller.
type ConnectionsGroup struct {
	Base     *store.Connection
	Previous *store.Connection
}

// ValidationSettings carries the caller's run configuration.
type ValidationSettings struct {
	// DataGraphs restricts validation to the named graphs; empty means
	// every graph.
	DataGraphs []string
}
