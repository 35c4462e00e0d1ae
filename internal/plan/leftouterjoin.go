package plan

import (
	"github.com/roach88/shapegate/internal/tuple"
)

// LeftOuterJoin merges a left tuple stream against a fully materialized
// right side held in memory. Every left tuple produces at least one
// output: joined once per matching right tuple, or unmatched as-is.
//
// Same-target output tuples are contiguous whenever the left input's
// same-target tuples are contiguous; the join adds no interleaving.
type LeftOuterJoin struct {
	node
	left  Node
	right Node
}

// NewLeftOuterJoin wires the in-memory join.
func NewLeftOuterJoin(arena *IDArena, left, right Node) *LeftOuterJoin {
	return &LeftOuterJoin{node: newNode(arena, left, right), left: left, right: right}
}

// Iterate implements Node.
func (j *LeftOuterJoin) Iterate() Iterator {
	return &leftOuterJoinIterator{j: j, leftIt: j.left.Iterate()}
}

// Label implements Node.
func (j *LeftOuterJoin) Label() string { return "LeftOuterJoin" }

// Children implements Node.
func (j *LeftOuterJoin) Children() []Node { return []Node{j.left, j.right} }

// Describe implements Node.
func (j *LeftOuterJoin) Describe(d *DotBuilder) {
	if d.Seen(j) {
		return
	}
	d.WriteNode(j)
	j.left.Describe(d)
	j.right.Describe(d)
	d.WriteEdge(j.left, j, "left")
	d.WriteEdge(j.right, j, "right")
}

type leftOuterJoinIterator struct {
	j      *LeftOuterJoin
	leftIt Iterator

	// byTarget holds the materialized right side, matches in arrival
	// order per target. Built on the first pull.
	byTarget map[string][]tuple.ValidationTuple
	built    bool

	// pending are the remaining matches for the current left tuple.
	pending []tuple.ValidationTuple
	current tuple.ValidationTuple

	cur    tuple.ValidationTuple
	err    error
	closed bool
}

// build materializes the right side. The right iterator is closed before
// the first left pull happens.
func (it *leftOuterJoinIterator) build() {
	it.built = true
	rightIt := it.j.right.Iterate()
	defer rightIt.Close()

	it.byTarget = make(map[string][]tuple.ValidationTuple)
	for rightIt.Next() {
		t := rightIt.Tuple()
		key := t.TargetKey()
		it.byTarget[key] = append(it.byTarget[key], t)
	}
	if err := rightIt.Err(); err != nil {
		it.err = err
		return
	}
	if err := rightIt.Close(); err != nil {
		it.err = err
	}
}

func (it *leftOuterJoinIterator) Next() bool {
	if it.closed || it.err != nil {
		return false
	}
	if !it.built {
		it.build()
		if it.err != nil {
			return false
		}
	}

	// Fan out remaining matches for the current left tuple.
	if len(it.pending) > 0 {
		it.cur = it.joinOne(it.pending[0])
		it.pending = it.pending[1:]
		return true
	}

	if !it.leftIt.Next() {
		it.err = it.leftIt.Err()
		return false
	}
	it.current = it.leftIt.Tuple()

	matches := it.byTarget[it.current.TargetKey()]
	if len(matches) == 0 {
		it.cur = it.current
		return true
	}
	it.cur = it.joinOne(matches[0])
	it.pending = matches[1:]
	return true
}

// joinOne joins the current left tuple with one match. A valueless match
// carries nothing to append, so the left tuple passes through unchanged.
func (it *leftOuterJoinIterator) joinOne(match tuple.ValidationTuple) tuple.ValidationTuple {
	if !match.HasValue() {
		return it.current
	}
	return it.current.Join(match)
}

func (it *leftOuterJoinIterator) Tuple() tuple.ValidationTuple { return it.cur }

func (it *leftOuterJoinIterator) Err() error { return it.err }

func (it *leftOuterJoinIterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	return it.leftIt.Close()
}
