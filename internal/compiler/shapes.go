package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/shapegate/internal/rdf"
	"github.com/roach88/shapegate/internal/shacl"
)

// CompileShapes parses a CUE shapes document into shape values.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The value should be the document root, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`shapes: PersonShape: { ... }`)
//	shapes, err := CompileShapes(v)
//
// Document form:
//
//	shapes: <Name>: {
//		id?:          string   // defaults to the field name
//		targetClass:  string
//		path?:        string
//		minCount?:    int
//		class?:       string
//		qualified?: {
//			minCount:  int
//			disjoint?: bool
//			shape: { class: string, path?: string }
//		}
//	}
func CompileShapes(v cue.Value) ([]*shacl.Shape, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	shapesVal := v.LookupPath(cue.ParsePath("shapes"))
	if !shapesVal.Exists() {
		return nil, &CompileError{
			Field:   "shapes",
			Message: "shapes struct is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := shapesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []*shacl.Shape
	for iter.Next() {
		shape, err := compileShape(iter.Selector().String(), iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, shape)
	}
	if len(out) == 0 {
		return nil, &CompileError{
			Field:   "shapes",
			Message: "at least one shape is required",
			Pos:     shapesVal.Pos(),
		}
	}
	return out, nil
}

func compileShape(name string, v cue.Value) (*shacl.Shape, error) {
	shape := &shacl.Shape{ID: rdf.IRI(name)}

	if idVal := v.LookupPath(cue.ParsePath("id")); idVal.Exists() {
		id, err := idVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		shape.ID = rdf.IRI(id)
	}

	// Parse targetClass (required on top-level shapes)
	targetVal := v.LookupPath(cue.ParsePath("targetClass"))
	if !targetVal.Exists() {
		return nil, &CompileError{
			Field:   "targetClass",
			Message: fmt.Sprintf("shape %s: targetClass is required", name),
			Pos:     v.Pos(),
		}
	}
	target, err := targetVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	shape.TargetClass = rdf.IRI(target)

	if err := compileShapeBody(name, v, shape); err != nil {
		return nil, err
	}
	if len(shape.Components) == 0 {
		return nil, &CompileError{
			Field:   name,
			Message: "shape declares no constraint components",
			Pos:     v.Pos(),
		}
	}
	return shape, nil
}

// compileShapeBody fills path and components, shared between top-level
// and nested shapes.
func compileShapeBody(name string, v cue.Value, shape *shacl.Shape) error {
	if pathVal := v.LookupPath(cue.ParsePath("path")); pathVal.Exists() {
		path, err := pathVal.String()
		if err != nil {
			return formatCUEError(err)
		}
		shape.Path = rdf.IRI(path)
	}

	// Component order is fixed so compilation output is deterministic
	// regardless of CUE field order.
	if minVal := v.LookupPath(cue.ParsePath("minCount")); minVal.Exists() {
		min, err := minVal.Int64()
		if err != nil {
			return formatCUEError(err)
		}
		if min < 1 {
			return &CompileError{
				Field:   "minCount",
				Message: fmt.Sprintf("shape %s: minCount must be at least 1, got %d", name, min),
				Pos:     minVal.Pos(),
			}
		}
		shape.Components = append(shape.Components, shacl.MinCount{Min: min})
	}

	if classVal := v.LookupPath(cue.ParsePath("class")); classVal.Exists() {
		class, err := classVal.String()
		if err != nil {
			return formatCUEError(err)
		}
		shape.Components = append(shape.Components, shacl.Class{ClassIRI: rdf.IRI(class)})
	}

	if qualVal := v.LookupPath(cue.ParsePath("qualified")); qualVal.Exists() {
		q, err := compileQualified(name, qualVal)
		if err != nil {
			return err
		}
		shape.Components = append(shape.Components, q)
	}

	return nil
}

func compileQualified(name string, v cue.Value) (shacl.QualifiedMinCount, error) {
	var q shacl.QualifiedMinCount

	minVal := v.LookupPath(cue.ParsePath("minCount"))
	if !minVal.Exists() {
		return q, &CompileError{
			Field:   "qualified.minCount",
			Message: fmt.Sprintf("shape %s: qualified requires minCount", name),
			Pos:     v.Pos(),
		}
	}
	min, err := minVal.Int64()
	if err != nil {
		return q, formatCUEError(err)
	}
	q.MinCount = min

	if disjointVal := v.LookupPath(cue.ParsePath("disjoint")); disjointVal.Exists() {
		disjoint, err := disjointVal.Bool()
		if err != nil {
			return q, formatCUEError(err)
		}
		q.Disjoint = disjoint
	}

	nestedVal := v.LookupPath(cue.ParsePath("shape"))
	if !nestedVal.Exists() {
		return q, &CompileError{
			Field:   "qualified.shape",
			Message: fmt.Sprintf("shape %s: qualified requires a nested shape", name),
			Pos:     v.Pos(),
		}
	}
	nested := &shacl.Shape{}
	if err := compileShapeBody(name+".qualified.shape", nestedVal, nested); err != nil {
		return q, err
	}
	if len(nested.Components) == 0 {
		return q, &CompileError{
			Field:   "qualified.shape",
			Message: fmt.Sprintf("shape %s: nested shape declares no constraint components", name),
			Pos:     nestedVal.Pos(),
		}
	}
	q.Nested = nested

	return q, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
