package tuple

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shapegate/internal/rdf"
)

var (
	nodeA = rdf.IRI("http://example.com/A")
	nodeB = rdf.IRI("http://example.com/B")
	val1  = rdf.NewLiteral("v1")
	val2  = rdf.NewLiteral("v2")
)

func TestNewRejectsEmptyChain(t *testing.T) {
	assert.Panics(t, func() { New(NodeShape, nil) })
}

func TestNewWithValueNeedsTargetAndValue(t *testing.T) {
	assert.Panics(t, func() { NewWithValue(PropertyShape, nil, nodeA) })
}

func TestTargetAndValue(t *testing.T) {
	plain := New(NodeShape, nil, nodeA)
	assert.Equal(t, rdf.Value(nodeA), plain.Target())
	assert.Nil(t, plain.Value())
	assert.False(t, plain.HasValue())

	withVal := NewWithValue(PropertyShape, nil, nodeA, val1)
	assert.Equal(t, rdf.Value(nodeA), withVal.Target())
	assert.Equal(t, rdf.Value(val1), withVal.Value())
	assert.True(t, withVal.HasValue())
}

func TestTargetChainValueHandling(t *testing.T) {
	withVal := NewWithValue(PropertyShape, nil, nodeA, val1)

	assert.Equal(t, []rdf.Value{nodeA, val1}, withVal.TargetChain(true))
	assert.Equal(t, []rdf.Value{nodeA}, withVal.TargetChain(false))

	// Without a value, includeValue is irrelevant.
	plain := New(NodeShape, nil, nodeA)
	assert.Equal(t, []rdf.Value{nodeA}, plain.TargetChain(false))
	assert.Equal(t, []rdf.Value{nodeA}, plain.TargetChain(true))
}

func TestSameTarget(t *testing.T) {
	a := New(PropertyShape, nil, nodeA)
	aWithV1 := NewWithValue(PropertyShape, nil, nodeA, val1)
	aWithV2 := NewWithValue(PropertyShape, nil, nodeA, val2)
	b := New(PropertyShape, nil, nodeB)

	assert.True(t, a.SameTarget(aWithV1), "value-only trailing element ignored")
	assert.True(t, aWithV1.SameTarget(aWithV2))
	assert.True(t, aWithV1.SameTarget(a))
	assert.False(t, a.SameTarget(b))
	assert.False(t, aWithV1.SameTarget(b))
}

func TestJoinAppendsRightValue(t *testing.T) {
	left := New(PropertyShape, nil, nodeA)
	right := NewWithValue(PropertyShape, nil, nodeA, val1)

	joined := left.Join(right)

	assert.Equal(t, []rdf.Value{nodeA, val1}, joined.TargetChain(true))
	assert.True(t, joined.HasValue())
	assert.Equal(t, PropertyShape, joined.Scope())
}

func TestJoinDefinedOnlyForSameTarget(t *testing.T) {
	left := New(PropertyShape, nil, nodeA)
	right := NewWithValue(PropertyShape, nil, nodeB, val1)

	assert.Panics(t, func() { left.Join(right) })
}

func TestJoinRequiresRightValue(t *testing.T) {
	left := New(PropertyShape, nil, nodeA)
	right := New(PropertyShape, nil, nodeA)

	assert.Panics(t, func() { left.Join(right) })
}

func TestJoinDoesNotMutateInputs(t *testing.T) {
	left := New(PropertyShape, nil, nodeA)
	right := NewWithValue(PropertyShape, nil, nodeA, val1)

	_ = left.Join(right)

	require.Equal(t, 1, left.Len())
	require.Equal(t, 2, right.Len())
}

func TestEqualAndKey(t *testing.T) {
	a1 := NewWithValue(PropertyShape, []string{"g1"}, nodeA, val1)
	a2 := NewWithValue(PropertyShape, []string{"g1"}, nodeA, val1)
	a3 := NewWithValue(PropertyShape, []string{"g2"}, nodeA, val1)

	assert.True(t, a1.Equal(a2))
	assert.False(t, a1.Equal(a3), "contexts participate in equality")
	assert.NotEqual(t, a1.Key(),
		New(PropertyShape, []string{"g1"}, nodeA, val1).Key(),
		"value flag participates in equality")
}

func TestTargetKeyMatchesSameTarget(t *testing.T) {
	aWithV1 := NewWithValue(PropertyShape, nil, nodeA, val1)
	aWithV2 := NewWithValue(PropertyShape, nil, nodeA, val2)
	b := New(PropertyShape, nil, nodeB)

	assert.Equal(t, aWithV1.TargetKey(), aWithV2.TargetKey())
	assert.NotEqual(t, aWithV1.TargetKey(), b.TargetKey())
}

func TestCompareTarget(t *testing.T) {
	a := New(PropertyShape, nil, nodeA)
	b := New(PropertyShape, nil, nodeB)
	long := NewWithValue(PropertyShape, nil, nodeA, nodeB, val1)

	assert.Negative(t, CompareTarget(a, b))
	assert.Positive(t, CompareTarget(b, a))
	assert.Zero(t, CompareTarget(a, NewWithValue(PropertyShape, nil, nodeA, val1)))
	assert.Negative(t, CompareTarget(a, long), "shorter prefix sorts first")
}

func TestContextsCopied(t *testing.T) {
	ctxs := []string{"g1"}
	tup := New(NodeShape, ctxs, nodeA)
	ctxs[0] = "mutated"

	assert.Equal(t, []string{"g1"}, tup.Contexts())

	got := tup.Contexts()
	got[0] = "mutated-again"
	assert.Equal(t, []string{"g1"}, tup.Contexts())
}
