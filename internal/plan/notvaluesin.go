package plan

import (
	"strings"

	"github.com/roach88/shapegate/internal/tuple"
)

// NotValuesIn is the anti-join: it emits left tuples whose value chain is
// absent from the fully materialized right-hand set. The compiler uses it
// to invert a nested shape's violations into the valid set.
//
// Membership is by the full chain including a trailing value, so a
// value-carrying tuple and its folded (value-in-chain) form compare
// equal.
type NotValuesIn struct {
	node
	left  Node
	right Node
}

// NewNotValuesIn wires the anti-join.
func NewNotValuesIn(arena *IDArena, left, right Node) *NotValuesIn {
	return &NotValuesIn{node: newNode(arena, left, right), left: left, right: right}
}

// Iterate implements Node.
func (n *NotValuesIn) Iterate() Iterator {
	return &notValuesInIterator{n: n, leftIt: n.left.Iterate()}
}

// Label implements Node.
func (n *NotValuesIn) Label() string { return "NotValuesIn" }

// Children implements Node.
func (n *NotValuesIn) Children() []Node { return []Node{n.left, n.right} }

// Describe implements Node.
func (n *NotValuesIn) Describe(d *DotBuilder) {
	if d.Seen(n) {
		return
	}
	d.WriteNode(n)
	n.left.Describe(d)
	n.right.Describe(d)
	d.WriteEdge(n.left, n, "left")
	d.WriteEdge(n.right, n, "exclude")
}

// chainKey renders the full chain, value included, scope-independent.
func chainKey(t tuple.ValidationTuple) string {
	var b strings.Builder
	for _, v := range t.TargetChain(true) {
		b.WriteString(v.String())
		b.WriteByte(' ')
	}
	return b.String()
}

type notValuesInIterator struct {
	n      *NotValuesIn
	leftIt Iterator

	exclude map[string]struct{}

	cur    tuple.ValidationTuple
	err    error
	closed bool
}

// build materializes the right-hand exclusion set, closing its iterator
// before any left tuple is pulled.
func (it *notValuesInIterator) build() {
	rightIt := it.n.right.Iterate()
	defer rightIt.Close()

	it.exclude = make(map[string]struct{})
	for rightIt.Next() {
		it.exclude[chainKey(rightIt.Tuple())] = struct{}{}
	}
	if err := rightIt.Err(); err != nil {
		it.err = err
		return
	}
	if err := rightIt.Close(); err != nil {
		it.err = err
	}
}

func (it *notValuesInIterator) Next() bool {
	if it.closed || it.err != nil {
		return false
	}
	if it.exclude == nil {
		it.build()
		if it.err != nil {
			return false
		}
	}
	for it.leftIt.Next() {
		t := it.leftIt.Tuple()
		if _, excluded := it.exclude[chainKey(t)]; excluded {
			continue
		}
		it.cur = t
		return true
	}
	it.err = it.leftIt.Err()
	return false
}

func (it *notValuesInIterator) Tuple() tuple.ValidationTuple { return it.cur }

func (it *notValuesInIterator) Err() error { return it.err }

func (it *notValuesInIterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	return it.leftIt.Close()
}
