package plan

import (
	"fmt"

	"github.com/roach88/shapegate/internal/tuple"
)

// Unique drops duplicate tuples. Deduplication is by full structural
// equality, or by target prefix only when targetOnly is set. The resident
// set is bounded by the number of distinct keys seen, not stream length.
type Unique struct {
	node
	child      Node
	targetOnly bool
}

// NewUnique wires the dedup operator. Nesting a Unique directly inside
// another Unique with the same mode is collapsed.
func NewUnique(arena *IDArena, child Node, targetOnly bool) *Unique {
	if inner, ok := child.(*Unique); ok && inner.targetOnly == targetOnly {
		return inner
	}
	return &Unique{node: newNode(arena, child), child: child, targetOnly: targetOnly}
}

// Iterate implements Node.
func (u *Unique) Iterate() Iterator {
	return &uniqueIterator{u: u, childIt: u.child.Iterate(), seen: make(map[string]struct{})}
}

// Label implements Node.
func (u *Unique) Label() string {
	return fmt.Sprintf("Unique{targetOnly=%t}", u.targetOnly)
}

// Children implements Node.
func (u *Unique) Children() []Node { return []Node{u.child} }

// Describe implements Node.
func (u *Unique) Describe(d *DotBuilder) { d.DescribeUnary(u, u.child) }

func (u *Unique) key(t tuple.ValidationTuple) string {
	if u.targetOnly {
		return t.Scope().String() + "|" + t.TargetKey()
	}
	return t.Key()
}

type uniqueIterator struct {
	u       *Unique
	childIt Iterator
	seen    map[string]struct{}

	cur    tuple.ValidationTuple
	err    error
	closed bool
}

func (it *uniqueIterator) Next() bool {
	if it.closed || it.err != nil {
		return false
	}
	for it.childIt.Next() {
		t := it.childIt.Tuple()
		key := it.u.key(t)
		if _, dup := it.seen[key]; dup {
			continue
		}
		it.seen[key] = struct{}{}
		it.cur = t
		return true
	}
	it.err = it.childIt.Err()
	return false
}

func (it *uniqueIterator) Tuple() tuple.ValidationTuple { return it.cur }

func (it *uniqueIterator) Err() error { return it.err }

func (it *uniqueIterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	return it.childIt.Close()
}
