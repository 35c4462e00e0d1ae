package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shapegate/internal/tuple"
)

func TestLeftOuterJoinFansOut(t *testing.T) {
	arena := NewIDArena()
	left := newTestNode(arena, target("a"), target("b"))
	right := newTestNode(arena,
		withValue("a", "v1"),
		withValue("a", "v2"),
	)

	out := mustDrain(t, NewLeftOuterJoin(arena, left, right))

	want := keys([]tuple.ValidationTuple{
		withValue("a", "v1"),
		withValue("a", "v2"),
		target("b"),
	})
	assert.Equal(t, want, keys(out))
	assert.Equal(t, 1, right.closes, "right side closed after materialization")
}

func TestLeftOuterJoinUnmatchedPassThrough(t *testing.T) {
	arena := NewIDArena()
	left := newTestNode(arena, target("a"))
	right := newTestNode(arena, withValue("b", "v1"))

	out := mustDrain(t, NewLeftOuterJoin(arena, left, right))

	require.Len(t, out, 1)
	assert.Equal(t, target("a").Key(), out[0].Key())
}

func TestLeftOuterJoinValuelessMatchPassThrough(t *testing.T) {
	arena := NewIDArena()
	left := newTestNode(arena, target("a"))
	// A valueless right tuple for the same target has nothing to append.
	right := newTestNode(arena, target("a"))

	out := mustDrain(t, NewLeftOuterJoin(arena, left, right))

	require.Len(t, out, 1)
	assert.Equal(t, target("a").Key(), out[0].Key())
}

func TestLeftOuterJoinKeepsLeftContiguity(t *testing.T) {
	arena := NewIDArena()
	left := newTestNode(arena, target("a"), target("b"), target("a"))
	right := newTestNode(arena,
		withValue("a", "v1"),
		withValue("a", "v2"),
	)

	out := mustDrain(t, NewLeftOuterJoin(arena, left, right))

	require.Len(t, out, 5)
	wantTargets := []string{"a", "a", "b", "a", "a"}
	for i, tp := range out {
		assert.Equal(t, target(wantTargets[i]).TargetKey(), tp.TargetKey())
	}
}

func TestLeftOuterJoinRightErrorPropagates(t *testing.T) {
	arena := NewIDArena()
	left := newTestNode(arena, target("a"))
	right := newTestNode(arena, withValue("a", "v1"))
	right.failAt = 0

	_, err := Drain(NewLeftOuterJoin(arena, left, right))
	require.ErrorIs(t, err, errInjected)
	assert.Equal(t, 1, left.closes)
	assert.Equal(t, 1, right.closes)
}

func TestLeftOuterJoinCloseIdempotent(t *testing.T) {
	arena := NewIDArena()
	left := newTestNode(arena, target("a"))
	right := newTestNode(arena)

	it := NewLeftOuterJoin(arena, left, right).Iterate()
	require.True(t, it.Next())
	require.NoError(t, it.Close())
	require.NoError(t, it.Close())
	assert.False(t, it.Next())
	assert.Equal(t, 1, left.closes)
}
