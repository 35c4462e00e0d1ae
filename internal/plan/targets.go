package plan

import (
	"context"
	"fmt"

	"github.com/roach88/shapegate/internal/rdf"
	"github.com/roach88/shapegate/internal/store"
	"github.com/roach88/shapegate/internal/tuple"
)

// AllTargets is a leaf enumerating every subject typed as the target
// class, in ascending term order.
type AllTargets struct {
	node
	ctx      context.Context
	conn     *store.Connection
	class    rdf.IRI
	scope    tuple.Scope
	contexts []string
}

// NewAllTargets creates the target resolution leaf for a class target.
// The connection is shared and never closed by this node.
func NewAllTargets(arena *IDArena, ctx context.Context, conn *store.Connection, class rdf.IRI, scope tuple.Scope, contexts []string) *AllTargets {
	return &AllTargets{
		node:     newNode(arena),
		ctx:      ctx,
		conn:     conn,
		class:    class,
		scope:    scope,
		contexts: contexts,
	}
}

// Iterate implements Node. The store query is issued on the first pull.
func (a *AllTargets) Iterate() Iterator {
	return &allTargetsIterator{n: a}
}

// Label implements Node.
func (a *AllTargets) Label() string {
	return fmt.Sprintf("AllTargets{class=%s, scope=%s}", a.class.String(), a.scope)
}

// Children implements Node.
func (a *AllTargets) Children() []Node { return nil }

// Describe implements Node.
func (a *AllTargets) Describe(d *DotBuilder) {
	if d.Seen(a) {
		return
	}
	d.WriteNode(a)
	d.WriteExternalEdge("base connection", a, "targets")
}

type allTargetsIterator struct {
	n      *AllTargets
	rows   *store.RowIter
	cur    tuple.ValidationTuple
	err    error
	closed bool
}

func (it *allTargetsIterator) Next() bool {
	if it.err != nil || it.closed {
		return false
	}
	if it.rows == nil {
		rows, err := it.n.conn.QueryTargets(it.n.ctx, it.n.class, it.n.contexts)
		if err != nil {
			it.err = err
			return false
		}
		it.rows = rows
	}
	if !it.rows.Next() {
		it.err = it.rows.Err()
		return false
	}
	it.cur = tuple.New(it.n.scope, it.n.contexts, it.rows.Row().Target)
	return true
}

func (it *allTargetsIterator) Tuple() tuple.ValidationTuple { return it.cur }

func (it *allTargetsIterator) Err() error { return it.err }

func (it *allTargetsIterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	if it.rows == nil {
		return nil
	}
	return it.rows.Close()
}

// OverrideTargets is a leaf emitting a fixed, caller-supplied tuple set.
// Used when the caller narrows validation to specific target nodes.
type OverrideTargets struct {
	node
	tuples []tuple.ValidationTuple
}

// NewOverrideTargets creates the override leaf. The slice is copied.
func NewOverrideTargets(arena *IDArena, tuples []tuple.ValidationTuple) *OverrideTargets {
	own := make([]tuple.ValidationTuple, len(tuples))
	copy(own, tuples)
	return &OverrideTargets{node: newNode(arena), tuples: own}
}

// Iterate implements Node.
func (o *OverrideTargets) Iterate() Iterator {
	return &sliceIterator{tuples: o.tuples}
}

// Label implements Node.
func (o *OverrideTargets) Label() string {
	return fmt.Sprintf("OverrideTargets{n=%d}", len(o.tuples))
}

// Children implements Node.
func (o *OverrideTargets) Children() []Node { return nil }

// Describe implements Node.
func (o *OverrideTargets) Describe(d *DotBuilder) { d.DescribeLeaf(o) }

// sliceIterator pulls from an in-memory tuple slice.
type sliceIterator struct {
	tuples []tuple.ValidationTuple
	pos    int
	closed bool
}

func (it *sliceIterator) Next() bool {
	if it.closed || it.pos >= len(it.tuples) {
		return false
	}
	it.pos++
	return true
}

func (it *sliceIterator) Tuple() tuple.ValidationTuple { return it.tuples[it.pos-1] }

func (it *sliceIterator) Err() error { return nil }

func (it *sliceIterator) Close() error {
	it.closed = true
	return nil
}
