package plan

import (
	"errors"
	"fmt"
	"io"

	"github.com/roach88/shapegate/internal/tuple"
)

// Node is one stage of a validation plan tree.
//
// A node owns its children exclusively (the tree may intentionally share
// a sub-plan between two branches for cost reasons; execution still
// treats each wiring as a separate pull path). Nodes are immutable after
// construction.
type Node interface {
	// Iterate starts evaluation and returns a finite, non-restartable
	// tuple stream. A fresh run requires a fresh tree.
	Iterate() Iterator

	// Depth is the distance to the deepest leaf (0 for leaves).
	// Diagnostics only, never correctness.
	Depth() int

	// ID is the stable debug identity assigned at construction.
	ID() string

	// Label names the operator and its parameters for diagnostics.
	Label() string

	// Children returns the child nodes in wiring order.
	Children() []Node

	// Describe writes this node and its incoming edges in dot form.
	// Already-described nodes are skipped via the builder's visited set.
	Describe(d *DotBuilder)
}

// Iterator is the lazy pull contract all operators implement. Follows
// the database/sql rows shape: Next, Tuple, Err, Close.
//
// Close is idempotent and cascades to every child iterator that was
// opened, on every exit path.
type Iterator interface {
	Next() bool
	Tuple() tuple.ValidationTuple
	Err() error
	Close() error
}

// IDArena hands out sequential debug identities at tree construction
// time, so diagnostics output is reproducible across runs.
type IDArena struct {
	next int
}

// NewIDArena creates an arena starting at n1.
func NewIDArena() *IDArena {
	return &IDArena{}
}

// Next returns the next identity.
func (a *IDArena) Next() string {
	a.next++
	return fmt.Sprintf("n%d", a.next)
}

// node carries the identity and cached depth every operator embeds.
type node struct {
	id    string
	depth int
}

func (n *node) ID() string { return n.id }
func (n *node) Depth() int { return n.depth }

// newNode assigns an identity and caches depth as max(children)+1.
func newNode(arena *IDArena, children ...Node) node {
	depth := 0
	for _, c := range children {
		if d := c.Depth() + 1; d > depth {
			depth = d
		}
	}
	return node{id: arena.Next(), depth: depth}
}

// Equal reports structural plan-shape equality: same operator, same
// parameters (via Label), same children. Used for plan comparison in
// tests and logging, never to deduplicate execution.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Label() != b.Label() {
		return false
	}
	ac, bc := a.Children(), b.Children()
	if len(ac) != len(bc) {
		return false
	}
	for i := range ac {
		if !Equal(ac[i], bc[i]) {
			return false
		}
	}
	return true
}

// Drain pulls every tuple from a node, closing the iterator on all exit
// paths. This is how callers consume a plan root.
func Drain(n Node) ([]tuple.ValidationTuple, error) {
	it := n.Iterate()
	defer it.Close()

	var out []tuple.ValidationTuple
	for it.Next() {
		out = append(out, it.Tuple())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	if err := it.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

// closeAll closes every iterator, attempting each even when an earlier
// one fails, and joins the failures.
func closeAll(iters ...io.Closer) error {
	var errs []error
	for _, it := range iters {
		if it == nil {
			continue
		}
		if err := it.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Empty is a leaf that emits nothing; used where the compiler can prove
// a branch has no input.
type Empty struct {
	node
}

// NewEmpty creates an empty leaf.
func NewEmpty(arena *IDArena) *Empty {
	return &Empty{node: newNode(arena)}
}

// Iterate implements Node.
func (e *Empty) Iterate() Iterator { return emptyIterator{} }

// Label implements Node.
func (e *Empty) Label() string { return "Empty" }

// Children implements Node.
func (e *Empty) Children() []Node { return nil }

// Describe implements Node.
func (e *Empty) Describe(d *DotBuilder) { d.DescribeLeaf(e) }

type emptyIterator struct{}

func (emptyIterator) Next() bool                   { return false }
func (emptyIterator) Tuple() tuple.ValidationTuple { panic("plan: Tuple before Next") }
func (emptyIterator) Err() error                   { return nil }
func (emptyIterator) Close() error                 { return nil }
