package plan

import (
	"context"
	"fmt"
	"sort"

	"github.com/roach88/shapegate/internal/rdf"
	"github.com/roach88/shapegate/internal/store"
	"github.com/roach88/shapegate/internal/tuple"
)

// BulkSize is the number of left tuples bound into one external query.
const BulkSize = 200

// RowMapper converts one external query row into a tuple.
type RowMapper func(store.Row) tuple.ValidationTuple

// BulkedExternalLeftOuterJoin left-outer-joins a tuple stream against
// rows from a store query, batching left tuples so n tuples cost n/200
// round trips instead of n.
//
// Both buffers are consumed as stacks. The left batch is sorted by target
// before the query runs, so within one batch same-target output tuples
// are contiguous; across batches there is no global order. Within a batch
// the emission order is the sorted target order, not the order the left
// child produced - kept from the original behavior, see the package doc.
type BulkedExternalLeftOuterJoin struct {
	node
	ctx      context.Context
	left     Node
	conn     *store.Connection
	frag     *store.PathFragment
	mapper   RowMapper
	contexts []string

	// When set, targets absent from the previous-state connection are not
	// bound into the query; their left tuples still surface unmatched.
	skipIfNotInPrevious bool
	previous            *store.Connection

	// Overridable in tests; 0 means BulkSize.
	batchSize int
}

// NewBulkedExternalLeftOuterJoin wires the batched join. The fragment is
// the query's compiled form, built once by the caller and reused for
// every batch this node issues.
func NewBulkedExternalLeftOuterJoin(
	arena *IDArena,
	ctx context.Context,
	left Node,
	conn *store.Connection,
	frag *store.PathFragment,
	skipIfNotInPrevious bool,
	previous *store.Connection,
	mapper RowMapper,
	contexts []string,
) *BulkedExternalLeftOuterJoin {
	if skipIfNotInPrevious && previous == nil {
		panic("plan: skipIfNotInPrevious requires a previous-state connection")
	}
	return &BulkedExternalLeftOuterJoin{
		node:                newNode(arena, left),
		ctx:                 ctx,
		left:                left,
		conn:                conn,
		frag:                frag,
		mapper:              mapper,
		contexts:            contexts,
		skipIfNotInPrevious: skipIfNotInPrevious,
		previous:            previous,
	}
}

// Iterate implements Node.
func (j *BulkedExternalLeftOuterJoin) Iterate() Iterator {
	size := j.batchSize
	if size <= 0 {
		size = BulkSize
	}
	return &bulkJoinIterator{j: j, batchSize: size, leftIt: j.left.Iterate()}
}

// Label implements Node.
func (j *BulkedExternalLeftOuterJoin) Label() string {
	return fmt.Sprintf("BulkedExternalLeftOuterJoin{path=%s}", j.frag.Predicate())
}

// Children implements Node.
func (j *BulkedExternalLeftOuterJoin) Children() []Node { return []Node{j.left} }

// Describe implements Node.
func (j *BulkedExternalLeftOuterJoin) Describe(d *DotBuilder) {
	if d.Seen(j) {
		return
	}
	d.WriteNode(j)
	j.left.Describe(d)
	d.WriteEdge(j.left, j, "left")
	d.WriteExternalEdge("base connection", j, "right")
	if j.skipIfNotInPrevious {
		d.WriteExternalEdge("previous state connection", j, "skip if not present")
	}
}

type bulkJoinIterator struct {
	j         *BulkedExternalLeftOuterJoin
	batchSize int
	leftIt    Iterator

	// Stacks: the last element is the next to merge (smallest target).
	left  []tuple.ValidationTuple
	right []tuple.ValidationTuple

	cur    tuple.ValidationTuple
	err    error
	closed bool
}

// calculateNext refills the left buffer and runs the batched query.
func (it *bulkJoinIterator) calculateNext() {
	if len(it.left) > 0 || it.err != nil {
		return
	}

	batch := make([]tuple.ValidationTuple, 0, it.batchSize)
	for len(batch) < it.batchSize && it.leftIt.Next() {
		batch = append(batch, it.leftIt.Tuple())
	}
	if err := it.leftIt.Err(); err != nil {
		it.err = err
		return
	}
	if len(batch) == 0 {
		return
	}

	// Sort ascending by target (stable: same-target arrival order kept),
	// then push onto the stack in reverse so pops come out ascending.
	sort.SliceStable(batch, func(a, b int) bool {
		return tuple.CompareTarget(batch[a], batch[b]) < 0
	})
	for i := len(batch) - 1; i >= 0; i-- {
		it.left = append(it.left, batch[i])
	}

	if err := it.runQuery(batch); err != nil {
		it.err = err
	}
}

// runQuery binds the whole batch into one query and materializes the
// right buffer. Query failure aborts the join; no partial retry.
func (it *bulkJoinIterator) runQuery(batch []tuple.ValidationTuple) error {
	targets, err := it.bindableTargets(batch)
	if err != nil {
		return err
	}

	rows, err := it.j.conn.QueryPath(it.j.ctx, it.j.frag, targets, it.j.contexts)
	if err != nil {
		return err
	}
	defer rows.Close()

	// Rows arrive target-descending; appended in order the stack pops
	// them ascending, aligned with the left stack.
	for rows.Next() {
		it.right = append(it.right, it.j.mapper(rows.Row()))
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return rows.Close()
}

// bindableTargets extracts the batch's distinct targets in ascending
// order, applying the previous-state skip when configured.
func (it *bulkJoinIterator) bindableTargets(batch []tuple.ValidationTuple) ([]rdf.Value, error) {
	targets := make([]rdf.Value, 0, len(batch))
	var last rdf.Value
	for _, t := range batch {
		target := t.Target()
		if last != nil && rdf.Equal(target, last) {
			continue
		}
		last = target

		if it.j.skipIfNotInPrevious {
			known, err := it.j.previous.HasStatement(it.j.ctx, target, nil, nil, it.j.contexts)
			if err != nil {
				return nil, err
			}
			if !known {
				continue
			}
		}
		targets = append(targets, target)
	}
	return targets, nil
}

func (it *bulkJoinIterator) Next() bool {
	if it.closed || it.err != nil {
		return false
	}
	it.calculateNext()
	if it.err != nil || len(it.left) == 0 {
		return false
	}

	leftPeek := it.left[len(it.left)-1]

	if len(it.right) > 0 {
		rightPeek := it.right[len(it.right)-1]
		if rightPeek.SameTarget(leftPeek) {
			// A join. Pop the left tuple only once no further right
			// tuples share its target, so it fans out over all matches.
			it.cur = leftPeek.Join(rightPeek)
			it.right = it.right[:len(it.right)-1]
			if len(it.right) == 0 || !it.right[len(it.right)-1].SameTarget(leftPeek) {
				it.left = it.left[:len(it.left)-1]
			}
			return true
		}
	}

	// Outer-join semantics: no match still produces the left tuple.
	it.left = it.left[:len(it.left)-1]
	it.cur = leftPeek
	return true
}

func (it *bulkJoinIterator) Tuple() tuple.ValidationTuple { return it.cur }

func (it *bulkJoinIterator) Err() error { return it.err }

// Close closes the left child exactly once, even when no query ever ran.
func (it *bulkJoinIterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	return it.leftIt.Close()
}
