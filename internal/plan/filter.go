package plan

import (
	"github.com/roach88/shapegate/internal/tuple"
)

// KeepFunc decides whether a tuple stays in the stream.
type KeepFunc func(tuple.ValidationTuple) bool

// Filter drops tuples failing a caller-supplied predicate. The compiler
// uses it to narrow a join's output to value-carrying tuples before a
// per-value check.
type Filter struct {
	node
	child Node
	keep  KeepFunc
}

// NewFilter wires the predicate filter.
func NewFilter(arena *IDArena, child Node, keep KeepFunc) *Filter {
	return &Filter{node: newNode(arena, child), child: child, keep: keep}
}

// Iterate implements Node.
func (f *Filter) Iterate() Iterator {
	return &filterIterator{f: f, childIt: f.child.Iterate()}
}

// Label implements Node.
func (f *Filter) Label() string { return "Filter" }

// Children implements Node.
func (f *Filter) Children() []Node { return []Node{f.child} }

// Describe implements Node.
func (f *Filter) Describe(d *DotBuilder) { d.DescribeUnary(f, f.child) }

type filterIterator struct {
	f       *Filter
	childIt Iterator

	cur    tuple.ValidationTuple
	err    error
	closed bool
}

func (it *filterIterator) Next() bool {
	if it.closed || it.err != nil {
		return false
	}
	for it.childIt.Next() {
		if t := it.childIt.Tuple(); it.f.keep(t) {
			it.cur = t
			return true
		}
	}
	it.err = it.childIt.Err()
	return false
}

func (it *filterIterator) Tuple() tuple.ValidationTuple { return it.cur }

func (it *filterIterator) Err() error { return it.err }

func (it *filterIterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	return it.childIt.Close()
}
