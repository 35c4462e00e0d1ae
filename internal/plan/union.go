package plan

import (
	"github.com/roach88/shapegate/internal/tuple"
)

// UnionDedupe concatenates two streams, dropping duplicates across both
// with the same full structural equality Unique uses.
type UnionDedupe struct {
	node
	left  Node
	right Node
}

// NewUnionDedupe wires the union. An Empty side collapses to the other
// side wrapped in Unique, preserving the dedup contract.
func NewUnionDedupe(arena *IDArena, left, right Node) Node {
	if _, ok := left.(*Empty); ok {
		return NewUnique(arena, right, false)
	}
	if _, ok := right.(*Empty); ok {
		return NewUnique(arena, left, false)
	}
	return &UnionDedupe{node: newNode(arena, left, right), left: left, right: right}
}

// Iterate implements Node.
func (u *UnionDedupe) Iterate() Iterator {
	return &unionIterator{
		u:      u,
		leftIt: u.left.Iterate(),
		seen:   make(map[string]struct{}),
	}
}

// Label implements Node.
func (u *UnionDedupe) Label() string { return "UnionDedupe" }

// Children implements Node.
func (u *UnionDedupe) Children() []Node { return []Node{u.left, u.right} }

// Describe implements Node.
func (u *UnionDedupe) Describe(d *DotBuilder) {
	if d.Seen(u) {
		return
	}
	d.WriteNode(u)
	u.left.Describe(d)
	u.right.Describe(d)
	d.WriteEdge(u.left, u, "left")
	d.WriteEdge(u.right, u, "right")
}

type unionIterator struct {
	u       *UnionDedupe
	leftIt  Iterator
	rightIt Iterator // opened once the left side is exhausted
	seen    map[string]struct{}

	cur    tuple.ValidationTuple
	err    error
	closed bool
}

func (it *unionIterator) Next() bool {
	if it.closed || it.err != nil {
		return false
	}

	if it.rightIt == nil {
		for it.leftIt.Next() {
			if it.admit(it.leftIt.Tuple()) {
				return true
			}
		}
		if err := it.leftIt.Err(); err != nil {
			it.err = err
			return false
		}
		it.rightIt = it.u.right.Iterate()
	}

	for it.rightIt.Next() {
		if it.admit(it.rightIt.Tuple()) {
			return true
		}
	}
	it.err = it.rightIt.Err()
	return false
}

func (it *unionIterator) admit(t tuple.ValidationTuple) bool {
	key := t.Key()
	if _, dup := it.seen[key]; dup {
		return false
	}
	it.seen[key] = struct{}{}
	it.cur = t
	return true
}

func (it *unionIterator) Tuple() tuple.ValidationTuple { return it.cur }

func (it *unionIterator) Err() error { return it.err }

// Close closes both sides, attempting each even if one fails.
func (it *unionIterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	return closeAll(it.leftIt, it.rightIt)
}
