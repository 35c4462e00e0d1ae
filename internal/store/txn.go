package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/shapegate/internal/rdf"
)

// Txn is an open write transaction: the unit of change that validation
// runs against before commit.
//
// Reads through Base() see committed quads plus this transaction's staged
// changes. Reads through the store's Snapshot() see committed quads only;
// together they form the connections group a validation run needs.
type Txn struct {
	store *Store
	tx    *sql.Tx
	done  bool

	// changedPredicates accumulates the predicates touched by staged
	// adds/removes. Shapes whose paths and targets miss this set can skip
	// plan construction entirely.
	changedPredicates map[rdf.IRI]struct{}
}

// Begin opens a write transaction.
func (s *Store) Begin(ctx context.Context) (*Txn, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &Txn{
		store:             s,
		tx:                tx,
		changedPredicates: make(map[rdf.IRI]struct{}),
	}, nil
}

// Add stages a statement insertion. Duplicate statements are silently
// ignored (set semantics).
func (t *Txn) Add(ctx context.Context, st rdf.Statement) error {
	if t.done {
		return &QueryError{Code: ErrCodeTxnClosed, Message: "add on closed transaction"}
	}
	sub, pred, obj, err := marshalStatement(st)
	if err != nil {
		return fmt.Errorf("txn add: %w", err)
	}
	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO quads (subject, predicate, object, graph)
		VALUES (?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, sub, pred, obj, st.Graph)
	if err != nil {
		return &QueryError{Code: ErrCodeQueryFailed, Message: "txn add", Err: err}
	}
	t.changedPredicates[st.Predicate.(rdf.IRI)] = struct{}{}
	return nil
}

// Remove stages a statement removal. Removing an absent statement is a
// no-op.
func (t *Txn) Remove(ctx context.Context, st rdf.Statement) error {
	if t.done {
		return &QueryError{Code: ErrCodeTxnClosed, Message: "remove on closed transaction"}
	}
	sub, pred, obj, err := marshalStatement(st)
	if err != nil {
		return fmt.Errorf("txn remove: %w", err)
	}
	_, err = t.tx.ExecContext(ctx, `
		DELETE FROM quads
		WHERE subject = ? AND predicate = ? AND object = ? AND graph = ?
	`, sub, pred, obj, st.Graph)
	if err != nil {
		return &QueryError{Code: ErrCodeQueryFailed, Message: "txn remove", Err: err}
	}
	t.changedPredicates[st.Predicate.(rdf.IRI)] = struct{}{}
	return nil
}

// Base returns the transactional read view: committed quads plus staged
// changes. The returned connection is only valid until Commit/Rollback.
func (t *Txn) Base() *Connection {
	return &Connection{q: t.tx}
}

// ChangedPredicates reports which predicates the staged changes touch.
func (t *Txn) ChangedPredicates() map[rdf.IRI]struct{} {
	out := make(map[rdf.IRI]struct{}, len(t.changedPredicates))
	for p := range t.changedPredicates {
		out[p] = struct{}{}
	}
	return out
}

// Commit makes the staged changes durable.
func (t *Txn) Commit() error {
	if t.done {
		return &QueryError{Code: ErrCodeTxnClosed, Message: "commit on closed transaction"}
	}
	t.done = true
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Rollback discards the staged changes. Safe to call after Commit.
func (t *Txn) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	if err := t.tx.Rollback(); err != nil {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}
