package plan

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/shapegate/internal/rdf"
	"github.com/roach88/shapegate/internal/store"
	"github.com/roach88/shapegate/internal/tuple"
)

func iri(s string) rdf.IRI { return rdf.IRI("http://example.com/" + s) }

func target(name string) tuple.ValidationTuple {
	return tuple.New(tuple.PropertyShape, nil, iri(name))
}

func withValue(name, val string) tuple.ValidationTuple {
	return tuple.NewWithValue(tuple.PropertyShape, nil, iri(name), iri(val))
}

// testNode is an in-memory leaf with close tracking and optional error
// injection, used to exercise operator close/error discipline.
type testNode struct {
	node
	tuples []tuple.ValidationTuple
	failAt int // inject an error before emitting tuple failAt (-1 = never)

	closes int
}

func newTestNode(arena *IDArena, tuples ...tuple.ValidationTuple) *testNode {
	return &testNode{node: newNode(arena), tuples: tuples, failAt: -1}
}

func (n *testNode) Iterate() Iterator      { return &testNodeIterator{n: n} }
func (n *testNode) Label() string          { return "testNode" }
func (n *testNode) Children() []Node       { return nil }
func (n *testNode) Describe(d *DotBuilder) { d.DescribeLeaf(n) }

var errInjected = errors.New("injected failure")

type testNodeIterator struct {
	n      *testNode
	pos    int
	err    error
	closed bool
}

func (it *testNodeIterator) Next() bool {
	if it.closed || it.err != nil {
		return false
	}
	if it.n.failAt >= 0 && it.pos == it.n.failAt {
		it.err = errInjected
		return false
	}
	if it.pos >= len(it.n.tuples) {
		return false
	}
	it.pos++
	return true
}

func (it *testNodeIterator) Tuple() tuple.ValidationTuple { return it.n.tuples[it.pos-1] }
func (it *testNodeIterator) Err() error                   { return it.err }

func (it *testNodeIterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	it.n.closes++
	return nil
}

// mustDrain drains a node, failing the test on error.
func mustDrain(t *testing.T, n Node) []tuple.ValidationTuple {
	t.Helper()
	out, err := Drain(n)
	require.NoError(t, err)
	return out
}

// keys renders tuples as chain keys for order-insensitive comparison.
func keys(tuples []tuple.ValidationTuple) map[string]int {
	out := make(map[string]int)
	for _, t := range tuples {
		out[t.Key()]++
	}
	return out
}

// openTestStore opens a throwaway store preloaded with statements.
func openTestStore(t *testing.T, statements ...rdf.Statement) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "plan.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	for _, st := range statements {
		require.NoError(t, s.Add(context.Background(), st))
	}
	return s
}

func knows(subject, object string) rdf.Statement {
	return rdf.Statement{Subject: iri(subject), Predicate: iri("knows"), Object: iri(object)}
}

func typed(subject, class string) rdf.Statement {
	return rdf.Statement{Subject: iri(subject), Predicate: rdf.RDFType, Object: iri(class)}
}
