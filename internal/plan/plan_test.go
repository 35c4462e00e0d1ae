package plan

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shapegate/internal/tuple"
)

func TestIDArenaSequential(t *testing.T) {
	arena := NewIDArena()
	assert.Equal(t, "n1", arena.Next())
	assert.Equal(t, "n2", arena.Next())
	assert.Equal(t, "n3", arena.Next())
}

func TestDepthCachedAtConstruction(t *testing.T) {
	arena := NewIDArena()
	leaf := newTestNode(arena)
	one := NewUnique(arena, leaf, false)
	two := NewTrimToTarget(arena, one)

	assert.Equal(t, 0, leaf.Depth())
	assert.Equal(t, 1, one.Depth())
	assert.Equal(t, 2, two.Depth())
}

func TestDepthTakesDeepestChild(t *testing.T) {
	arena := NewIDArena()
	shallow := newTestNode(arena)
	deep := NewUnique(arena, newTestNode(arena), false)
	union := NewUnionDedupe(arena, shallow, deep)

	assert.Equal(t, 2, union.Depth())
}

func TestEqualByShape(t *testing.T) {
	a1 := NewIDArena()
	p1 := NewUnique(a1, NewTrimToTarget(a1, NewEmpty(a1)), false)

	a2 := NewIDArena()
	p2 := NewUnique(a2, NewTrimToTarget(a2, NewEmpty(a2)), false)

	assert.True(t, Equal(p1, p2), "same shape, different arenas")

	p3 := NewUnique(a2, NewEmpty(a2), false)
	assert.False(t, Equal(p1, p3))

	p4 := NewUnique(a2, NewTrimToTarget(a2, NewEmpty(a2)), true)
	assert.False(t, Equal(p1, p4), "parameter difference shows in Label")

	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(p1, nil))
}

func TestDrainClosesOnError(t *testing.T) {
	arena := NewIDArena()
	child := newTestNode(arena, target("a"), target("b"))
	child.failAt = 1

	_, err := Drain(NewUnique(arena, child, false))
	require.ErrorIs(t, err, errInjected)
	assert.Equal(t, 1, child.closes)
}

func TestEmptyYieldsNothing(t *testing.T) {
	arena := NewIDArena()
	out := mustDrain(t, NewEmpty(arena))
	assert.Empty(t, out)
}

func TestDebugPlanRendersTree(t *testing.T) {
	arena := NewIDArena()
	leaf := NewOverrideTargets(arena, []tuple.ValidationTuple{target("a")})
	root := NewUnique(arena, leaf, false)

	dot := DebugPlan(root)
	assert.True(t, strings.HasPrefix(dot, "digraph plan {\n"))
	assert.True(t, strings.HasSuffix(dot, "}\n"))
	assert.Contains(t, dot, `n2 [label="Unique{targetOnly=false}"];`)
	assert.Contains(t, dot, `n1 [label="OverrideTargets{n=1}"];`)
	assert.Contains(t, dot, "n1 -> n2;")
}

func TestDebugPlanSharedSubplanRenderedOnce(t *testing.T) {
	arena := NewIDArena()
	shared := NewOverrideTargets(arena, []tuple.ValidationTuple{target("a")})
	left := NewUnique(arena, shared, false)
	right := NewTrimToTarget(arena, shared)
	root := NewNotValuesIn(arena, left, right)

	dot := DebugPlan(root)
	assert.Equal(t, 1, strings.Count(dot, `[label="OverrideTargets{n=1}"]`),
		"a node wired into two branches appears once")
	assert.Contains(t, dot, `n2 -> n4 [label="left"];`)
	assert.Contains(t, dot, `n3 -> n4 [label="exclude"];`)
}
