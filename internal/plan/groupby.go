package plan

import (
	"github.com/roach88/shapegate/internal/tuple"
)

// CountPredicate decides whether a group's joined-value count makes the
// group's target surface (e.g. count < minimum for a cardinality rule).
type CountPredicate func(count int64) bool

// GroupByCountFilter groups consecutive same-target tuples, counts how
// many carried a joined value, and emits one representative tuple per
// group whose count satisfies the predicate.
//
// PRECONDITION: same-target tuples arrive contiguously. The join
// operators guarantee that; placing this node behind anything that can
// interleave batches breaks it silently. This is not hash grouping.
type GroupByCountFilter struct {
	node
	child Node
	pred  CountPredicate
}

// NewGroupByCountFilter wires the grouping filter.
func NewGroupByCountFilter(arena *IDArena, child Node, pred CountPredicate) *GroupByCountFilter {
	return &GroupByCountFilter{node: newNode(arena, child), child: child, pred: pred}
}

// Iterate implements Node.
func (g *GroupByCountFilter) Iterate() Iterator {
	return &groupByCountIterator{g: g, childIt: g.child.Iterate()}
}

// Label implements Node.
func (g *GroupByCountFilter) Label() string { return "GroupByCountFilter" }

// Children implements Node.
func (g *GroupByCountFilter) Children() []Node { return []Node{g.child} }

// Describe implements Node.
func (g *GroupByCountFilter) Describe(d *DotBuilder) { d.DescribeUnary(g, g.child) }

type groupByCountIterator struct {
	g       *GroupByCountFilter
	childIt Iterator

	// lookahead holds the first tuple of the next group.
	lookahead    tuple.ValidationTuple
	hasLookahead bool

	cur    tuple.ValidationTuple
	err    error
	closed bool
}

func (it *groupByCountIterator) Next() bool {
	if it.closed || it.err != nil {
		return false
	}

	for {
		var first tuple.ValidationTuple
		if it.hasLookahead {
			first = it.lookahead
			it.hasLookahead = false
		} else {
			if !it.childIt.Next() {
				it.err = it.childIt.Err()
				return false
			}
			first = it.childIt.Tuple()
		}

		// Consume the rest of the group, counting joined values.
		var count int64
		if first.HasValue() {
			count = 1
		}
		for it.childIt.Next() {
			t := it.childIt.Tuple()
			if !t.SameTarget(first) {
				it.lookahead = t
				it.hasLookahead = true
				break
			}
			if t.HasValue() {
				count++
			}
		}
		if !it.hasLookahead {
			if err := it.childIt.Err(); err != nil {
				it.err = err
				return false
			}
		}

		if it.g.pred(count) {
			it.cur = first
			return true
		}
		// Group filtered out; move on to the next one.
		if !it.hasLookahead {
			return false
		}
	}
}

func (it *groupByCountIterator) Tuple() tuple.ValidationTuple { return it.cur }

func (it *groupByCountIterator) Err() error { return it.err }

func (it *groupByCountIterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	return it.childIt.Close()
}
