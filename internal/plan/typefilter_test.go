package plan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shapegate/internal/tuple"
)

func TestExternalTypeFilterKeepMatching(t *testing.T) {
	s := openTestStore(t, typed("v1", "Person"))
	arena := NewIDArena()
	ctx := context.Background()

	child := newTestNode(arena, withValue("a", "v1"), withValue("a", "v2"))
	f := NewExternalTypeFilter(arena, ctx, child, s.Snapshot(), iri("Person"), true, nil)

	out := mustDrain(t, f)
	require.Len(t, out, 1)
	assert.Equal(t, withValue("a", "v1").Key(), out[0].Key())
}

func TestExternalTypeFilterKeepNonMatching(t *testing.T) {
	s := openTestStore(t, typed("v1", "Person"))
	arena := NewIDArena()
	ctx := context.Background()

	child := newTestNode(arena, withValue("a", "v1"), withValue("a", "v2"))
	f := NewExternalTypeFilter(arena, ctx, child, s.Snapshot(), iri("Person"), false, nil)

	out := mustDrain(t, f)
	require.Len(t, out, 1)
	assert.Equal(t, withValue("a", "v2").Key(), out[0].Key())
}

func TestExternalTypeFilterProbesTargetWithoutValue(t *testing.T) {
	s := openTestStore(t, typed("a", "Person"))
	arena := NewIDArena()
	ctx := context.Background()

	child := newTestNode(arena, target("a"), target("b"))
	f := NewExternalTypeFilter(arena, ctx, child, s.Snapshot(), iri("Person"), true, nil)

	out := mustDrain(t, f)
	require.Len(t, out, 1)
	assert.Equal(t, target("a").Key(), out[0].Key())
}

func TestExternalTypeFilterMemoizesProbes(t *testing.T) {
	s := openTestStore(t, typed("v1", "Person"))
	arena := NewIDArena()
	ctx := context.Background()

	// Repeated values hit the memo, not the store. Observable only as
	// correct output here; the memo keyed per iterator keeps reruns
	// independent.
	dup := []tuple.ValidationTuple{
		withValue("a", "v1"), withValue("b", "v1"), withValue("c", "v1"),
	}
	child := newTestNode(arena, dup...)
	f := NewExternalTypeFilter(arena, ctx, child, s.Snapshot(), iri("Person"), true, nil)

	out := mustDrain(t, f)
	assert.Len(t, out, 3)
}
