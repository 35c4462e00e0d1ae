package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/roach88/shapegate/internal/rdf"
)

// querier abstracts *sql.DB and *sql.Tx so a Connection can read either
// committed state or an open transaction's view.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Connection is a read view over the quad table. The validation engine
// shares one connection across every node of a plan tree and never closes
// it; it closes only the row iterators it opens.
type Connection struct {
	q querier
}

// Row is one result row of a path query: a target and the value reached
// from it.
type Row struct {
	Target rdf.Value
	Value  rdf.Value
}

// PathFragment is the compiled, reusable form of a path query. Plan nodes
// build a fragment once and execute it against many batches.
type PathFragment struct {
	predicate string // canonical text form
}

// NewPathFragment compiles a predicate path into a reusable query fragment.
func NewPathFragment(predicate rdf.IRI) *PathFragment {
	return &PathFragment{predicate: predicate.String()}
}

// Predicate returns the path predicate in canonical text form.
// Used for diagnostics output.
func (f *PathFragment) Predicate() string {
	return f.predicate
}

// sql renders the batched SELECT for n targets and m context filters.
//
// Results are ordered subject DESC, object DESC so that, consumed as a
// stack (pop from the end), rows come out ascending with same-subject
// rows contiguous - the order the bulk join's merge relies on.
func (f *PathFragment) sql(n, m int) string {
	var b strings.Builder
	b.WriteString("SELECT subject, object FROM quads WHERE predicate = ? AND subject IN (")
	b.WriteString(placeholders(n))
	b.WriteString(")")
	if m > 0 {
		b.WriteString(" AND graph IN (")
		b.WriteString(placeholders(m))
		b.WriteString(")")
	}
	b.WriteString(" ORDER BY subject DESC, object DESC")
	return b.String()
}

// QueryPath runs one batched path query: for every target in batch, fetch
// the values reached over the fragment's predicate. One SQL round trip
// per call regardless of batch size.
//
// The returned iterator must be closed; a query failure is fatal to the
// caller's validation run.
func (c *Connection) QueryPath(ctx context.Context, frag *PathFragment, batch []rdf.Value, contexts []string) (*RowIter, error) {
	if len(batch) == 0 {
		return emptyRowIter(), nil
	}
	args := make([]any, 0, 1+len(batch)+len(contexts))
	args = append(args, frag.predicate)
	for _, target := range batch {
		args = append(args, target.String())
	}
	for _, g := range contexts {
		args = append(args, g)
	}

	query := frag.sql(len(batch), len(contexts))
	rows, err := c.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &QueryError{Code: ErrCodeQueryFailed, Message: "path query", Query: query, Err: err}
	}
	return &RowIter{rows: rows}, nil
}

// QueryTargets enumerates subjects typed as the given class, ascending.
func (c *Connection) QueryTargets(ctx context.Context, class rdf.IRI, contexts []string) (*RowIter, error) {
	var b strings.Builder
	b.WriteString("SELECT DISTINCT subject FROM quads WHERE predicate = ? AND object = ?")
	args := []any{rdf.RDFType.String(), class.String()}
	if len(contexts) > 0 {
		b.WriteString(" AND graph IN (")
		b.WriteString(placeholders(len(contexts)))
		b.WriteString(")")
		for _, g := range contexts {
			args = append(args, g)
		}
	}
	b.WriteString(" ORDER BY subject ASC")

	query := b.String()
	rows, err := c.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &QueryError{Code: ErrCodeQueryFailed, Message: "target query", Query: query, Err: err}
	}
	return &RowIter{rows: rows, subjectOnly: true}, nil
}

// HasStatement reports whether any quad matches the given terms. Nil
// terms act as wildcards.
func (c *Connection) HasStatement(ctx context.Context, subject, predicate, object rdf.Value, contexts []string) (bool, error) {
	var b strings.Builder
	b.WriteString("SELECT 1 FROM quads WHERE 1=1")
	var args []any
	if subject != nil {
		b.WriteString(" AND subject = ?")
		args = append(args, subject.String())
	}
	if predicate != nil {
		b.WriteString(" AND predicate = ?")
		args = append(args, predicate.String())
	}
	if object != nil {
		b.WriteString(" AND object = ?")
		args = append(args, object.String())
	}
	if len(contexts) > 0 {
		b.WriteString(" AND graph IN (")
		b.WriteString(placeholders(len(contexts)))
		b.WriteString(")")
		for _, g := range contexts {
			args = append(args, g)
		}
	}
	b.WriteString(" LIMIT 1")

	query := b.String()
	var one int
	err := c.q.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, &QueryError{Code: ErrCodeQueryFailed, Message: "has statement", Query: query, Err: err}
	}
	return true, nil
}

// RowIter streams path query results. Follows the database/sql rows
// contract: Next, Row, Err, Close. Close is idempotent.
type RowIter struct {
	rows        *sql.Rows
	subjectOnly bool

	cur    Row
	err    error
	closed bool
}

// Next advances to the next row. Returns false on exhaustion or error;
// check Err afterwards.
func (it *RowIter) Next() bool {
	if it.rows == nil || it.err != nil {
		return false
	}
	if !it.rows.Next() {
		it.err = it.rows.Err()
		return false
	}

	var subjText, objText string
	if it.subjectOnly {
		if err := it.rows.Scan(&subjText); err != nil {
			it.err = &QueryError{Code: ErrCodeQueryFailed, Message: "scan row", Err: err}
			return false
		}
	} else {
		if err := it.rows.Scan(&subjText, &objText); err != nil {
			it.err = &QueryError{Code: ErrCodeQueryFailed, Message: "scan row", Err: err}
			return false
		}
	}

	target, err := parseTerm(subjText)
	if err != nil {
		it.err = err
		return false
	}
	it.cur = Row{Target: target}
	if !it.subjectOnly {
		value, err := parseTerm(objText)
		if err != nil {
			it.err = err
			return false
		}
		it.cur.Value = value
	}
	return true
}

// Row returns the current row. Valid only after Next returned true.
func (it *RowIter) Row() Row {
	return it.cur
}

// Err returns the first error hit during iteration, if any.
func (it *RowIter) Err() error {
	return it.err
}

// Close releases the underlying rows. Idempotent.
func (it *RowIter) Close() error {
	if it.closed || it.rows == nil {
		return nil
	}
	it.closed = true
	return it.rows.Close()
}

// emptyRowIter returns an exhausted iterator; used for empty batches so
// callers keep a uniform close discipline.
func emptyRowIter() *RowIter {
	return &RowIter{closed: true}
}

// placeholders renders n comma-separated SQL placeholders.
func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
