package plan

import (
	"github.com/roach88/shapegate/internal/tuple"
)

// TrimToTarget drops a tuple's trailing value, re-shaping the stream to
// target-only tuples. Tuples without a value pass through unchanged.
type TrimToTarget struct {
	node
	child Node
}

// NewTrimToTarget wires the trim.
func NewTrimToTarget(arena *IDArena, child Node) *TrimToTarget {
	return &TrimToTarget{node: newNode(arena, child), child: child}
}

// Iterate implements Node.
func (t *TrimToTarget) Iterate() Iterator {
	return &mapIterator{childIt: t.child.Iterate(), fn: trim}
}

// Label implements Node.
func (t *TrimToTarget) Label() string { return "TrimToTarget" }

// Children implements Node.
func (t *TrimToTarget) Children() []Node { return []Node{t.child} }

// Describe implements Node.
func (t *TrimToTarget) Describe(d *DotBuilder) { d.DescribeUnary(t, t.child) }

func trim(in tuple.ValidationTuple) tuple.ValidationTuple {
	if !in.HasValue() {
		return in
	}
	return tuple.New(in.Scope(), in.Contexts(), in.TargetChain(false)...)
}

// ShiftToPropertyShape re-scopes node-shape tuples to property-shape
// scope, turning the trailing chain element into the bound value. Used to
// hand a node-scoped stream to a property-scoped consumer.
//
// Requires chains of length >= 2; a single-element chain has no target
// left once its element becomes the value, which is a compiler bug.
type ShiftToPropertyShape struct {
	node
	child Node
}

// NewShiftToPropertyShape wires the scope shift.
func NewShiftToPropertyShape(arena *IDArena, child Node) *ShiftToPropertyShape {
	return &ShiftToPropertyShape{node: newNode(arena, child), child: child}
}

// Iterate implements Node.
func (s *ShiftToPropertyShape) Iterate() Iterator {
	return &mapIterator{childIt: s.child.Iterate(), fn: shift}
}

// Label implements Node.
func (s *ShiftToPropertyShape) Label() string { return "ShiftToPropertyShape" }

// Children implements Node.
func (s *ShiftToPropertyShape) Children() []Node { return []Node{s.child} }

// Describe implements Node.
func (s *ShiftToPropertyShape) Describe(d *DotBuilder) { d.DescribeUnary(s, s.child) }

func shift(in tuple.ValidationTuple) tuple.ValidationTuple {
	return tuple.NewWithValue(tuple.PropertyShape, in.Contexts(), in.TargetChain(true)...)
}

// MapFunc transforms one tuple into another.
type MapFunc func(tuple.ValidationTuple) tuple.ValidationTuple

// TupleMapper applies a caller-supplied transform to every tuple. The
// compiler uses it to fold a joined value into the target chain when
// adapting a stream from one rule's scope to another's.
type TupleMapper struct {
	node
	child Node
	fn    MapFunc
}

// NewTupleMapper wires the transform.
func NewTupleMapper(arena *IDArena, child Node, fn MapFunc) *TupleMapper {
	return &TupleMapper{node: newNode(arena, child), child: child, fn: fn}
}

// Iterate implements Node.
func (m *TupleMapper) Iterate() Iterator {
	return &mapIterator{childIt: m.child.Iterate(), fn: m.fn}
}

// Label implements Node.
func (m *TupleMapper) Label() string { return "TupleMapper" }

// Children implements Node.
func (m *TupleMapper) Children() []Node { return []Node{m.child} }

// Describe implements Node.
func (m *TupleMapper) Describe(d *DotBuilder) { d.DescribeUnary(m, m.child) }

// mapIterator is the shared per-tuple transform iterator.
type mapIterator struct {
	childIt Iterator
	fn      MapFunc

	cur    tuple.ValidationTuple
	err    error
	closed bool
}

func (it *mapIterator) Next() bool {
	if it.closed || it.err != nil {
		return false
	}
	if !it.childIt.Next() {
		it.err = it.childIt.Err()
		return false
	}
	it.cur = it.fn(it.childIt.Tuple())
	return true
}

func (it *mapIterator) Tuple() tuple.ValidationTuple { return it.cur }

func (it *mapIterator) Err() error { return it.err }

func (it *mapIterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	return it.childIt.Close()
}
