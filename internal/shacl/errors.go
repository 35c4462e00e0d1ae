package shacl

import (
	"fmt"
)

// CompileError is an unsupported-construct failure raised before any
// iteration begins. It is fatal for the rule being compiled; no partial
// plan exists when it is returned.
type CompileError struct {
	Code    CompileErrorCode
	ShapeID string
	Message string
}

// CompileErrorCode identifies the unsupported construct.
type CompileErrorCode string

const (
	// ErrUnsupportedScope: the requested scope does not fit the shape's
	// form, e.g. a path cardinality compiled at node scope.
	ErrUnsupportedScope CompileErrorCode = "UNSUPPORTED_SCOPE"
	// ErrUnsupportedComponent: the component cannot be expressed in the
	// operator set in this position.
	ErrUnsupportedComponent CompileErrorCode = "UNSUPPORTED_COMPONENT"
	// ErrMissingPath: a path-dependent component on a shape with no path.
	ErrMissingPath CompileErrorCode = "MISSING_PATH"
	// ErrMissingTarget: the shape declares no target and no override
	// targets were supplied.
	ErrMissingTarget CompileErrorCode = "MISSING_TARGET"
)

// Error implements error.
func (e *CompileError) Error() string {
	if e.ShapeID != "" {
		return fmt.Sprintf("shacl: compile %s [%s]: %s", e.ShapeID, e.Code, e.Message)
	}
	return fmt.Sprintf("shacl: compile [%s]: %s", e.Code, e.Message)
}
