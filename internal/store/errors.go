package store

import "fmt"

// QueryError represents a failure in the store's read or write path.
//
// Store errors are fatal to the validation run that hit them: the engine
// never retries a failed query, it propagates the error so the caller can
// abort the commit.
type QueryError struct {
	// Code identifies the error category.
	Code QueryErrorCode

	// Message is a human-readable description.
	Message string

	// Query is the SQL text, when the failure came from execution.
	Query string

	// Err is the underlying driver error, if any.
	Err error
}

// QueryErrorCode categorizes store errors.
type QueryErrorCode string

const (
	// ErrCodeQueryFailed indicates SQL execution failed.
	ErrCodeQueryFailed QueryErrorCode = "QUERY_FAILED"

	// ErrCodeBadTerm indicates a stored term could not be parsed back.
	ErrCodeBadTerm QueryErrorCode = "BAD_TERM"

	// ErrCodeMalformedStatement indicates a write with invalid terms.
	ErrCodeMalformedStatement QueryErrorCode = "MALFORMED_STATEMENT"

	// ErrCodeTxnClosed indicates use of a committed or rolled back transaction.
	ErrCodeTxnClosed QueryErrorCode = "TXN_CLOSED"
)

// Error implements the error interface.
func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying driver error for errors.Is/As.
func (e *QueryError) Unwrap() error {
	return e.Err
}
