package plan

import (
	"context"
	"fmt"

	"github.com/roach88/shapegate/internal/rdf"
	"github.com/roach88/shapegate/internal/store"
	"github.com/roach88/shapegate/internal/tuple"
)

// ExternalTypeFilter routes tuples by whether their innermost target is
// an instance of a class in the external connection. With keepMatching
// set it passes instances through; otherwise it passes the rest - the
// form a nested class check uses to surface invalid values.
//
// The membership probe is one point lookup per distinct target; results
// are memoized for the life of the iterator.
type ExternalTypeFilter struct {
	node
	ctx          context.Context
	child        Node
	conn         *store.Connection
	class        rdf.IRI
	keepMatching bool
	contexts     []string
}

// NewExternalTypeFilter wires the filter.
func NewExternalTypeFilter(arena *IDArena, ctx context.Context, child Node, conn *store.Connection, class rdf.IRI, keepMatching bool, contexts []string) *ExternalTypeFilter {
	return &ExternalTypeFilter{
		node:         newNode(arena, child),
		ctx:          ctx,
		child:        child,
		conn:         conn,
		class:        class,
		keepMatching: keepMatching,
		contexts:     contexts,
	}
}

// Iterate implements Node.
func (f *ExternalTypeFilter) Iterate() Iterator {
	return &typeFilterIterator{f: f, childIt: f.child.Iterate(), memo: make(map[string]bool)}
}

// Label implements Node.
func (f *ExternalTypeFilter) Label() string {
	return fmt.Sprintf("ExternalTypeFilter{class=%s, keepMatching=%t}", f.class.String(), f.keepMatching)
}

// Children implements Node.
func (f *ExternalTypeFilter) Children() []Node { return []Node{f.child} }

// Describe implements Node.
func (f *ExternalTypeFilter) Describe(d *DotBuilder) {
	if d.Seen(f) {
		return
	}
	d.WriteNode(f)
	f.child.Describe(d)
	d.WriteEdge(f.child, f, "")
	d.WriteExternalEdge("base connection", f, "type lookup")
}

type typeFilterIterator struct {
	f       *ExternalTypeFilter
	childIt Iterator
	memo    map[string]bool

	cur    tuple.ValidationTuple
	err    error
	closed bool
}

func (it *typeFilterIterator) Next() bool {
	if it.closed || it.err != nil {
		return false
	}
	for it.childIt.Next() {
		t := it.childIt.Tuple()
		probe := t.Target()
		if t.HasValue() {
			probe = t.Value()
		}

		isInstance, ok := it.memo[probe.String()]
		if !ok {
			var err error
			isInstance, err = it.f.conn.HasStatement(it.f.ctx, probe, rdf.RDFType, it.f.class, it.f.contexts)
			if err != nil {
				it.err = err
				return false
			}
			it.memo[probe.String()] = isInstance
		}

		if isInstance == it.f.keepMatching {
			it.cur = t
			return true
		}
	}
	it.err = it.childIt.Err()
	return false
}

func (it *typeFilterIterator) Tuple() tuple.ValidationTuple { return it.cur }

func (it *typeFilterIterator) Err() error { return it.err }

func (it *typeFilterIterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	return it.childIt.Close()
}
