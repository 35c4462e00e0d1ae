package shacl

import (
	"github.com/roach88/shapegate/internal/rdf"
	"github.com/roach88/shapegate/internal/store"
)

// Shape is one validation shape: immutable rule data (target, path,
// components) plus per-compilation scratch.
//
// The zero Path means a node shape whose components apply to the target
// itself; a non-zero Path means a property shape whose components apply
// to the values reached through that predicate.
type Shape struct {
	// ID names the shape in reports. Optional for nested shapes.
	ID rdf.IRI

	// TargetClass selects the target set: every subject typed as this
	// class. Nested shapes receive their inputs from the enclosing plan
	// and may leave it empty.
	TargetClass rdf.IRI

	// Path is the predicate reaching the constrained values.
	Path rdf.IRI

	Components []ConstraintComponent

	scratch *compileScratch
}

// compileScratch is the mutable per-compilation state: the compiled form
// of the shape's path query, built once and reused for every batch each
// join node issues. Never shared between concurrent compilations.
type compileScratch struct {
	frag *store.PathFragment
}

// CloneForCompilation produces an independent shape for one compilation.
// Rule data is copied by value; nested shapes are cloned recursively so
// each gets its own scratch. Required when one shape object is compiled
// into multiple concurrently evaluated plans.
func (s *Shape) CloneForCompilation() *Shape {
	out := &Shape{
		ID:          s.ID,
		TargetClass: s.TargetClass,
		Path:        s.Path,
		Components:  make([]ConstraintComponent, len(s.Components)),
	}
	for i, c := range s.Components {
		if q, ok := c.(QualifiedMinCount); ok {
			q.Nested = q.Nested.CloneForCompilation()
			out.Components[i] = q
			continue
		}
		out.Components[i] = c
	}
	return out
}

// shapeID renders the shape's id for error messages; anonymous shapes
// render empty.
func (s *Shape) shapeID() string {
	if s.ID == "" {
		return ""
	}
	return s.ID.String()
}

// pathFragment returns the shape's compiled path query, building it on
// first use.
func (s *Shape) pathFragment() *store.PathFragment {
	if s.scratch == nil {
		s.scratch = &compileScratch{}
	}
	if s.scratch.frag == nil {
		s.scratch.frag = store.NewPathFragment(s.Path)
	}
	return s.scratch.frag
}

// RequiresEvaluation reports whether a transaction touching the given
// predicates can affect this shape. A nil set means a full validation
// and always evaluates.
func (s *Shape) RequiresEvaluation(changed map[rdf.IRI]struct{}) bool {
	if changed == nil {
		return true
	}
	for _, p := range s.relevantPredicates(nil) {
		if _, ok := changed[p]; ok {
			return true
		}
	}
	return false
}

// relevantPredicates accumulates every predicate whose statements feed
// this shape's plan: rdf:type for target and class checks, the path, and
// everything nested shapes reach.
func (s *Shape) relevantPredicates(acc []rdf.IRI) []rdf.IRI {
	if s.TargetClass != "" {
		acc = append(acc, rdf.RDFType)
	}
	if s.Path != "" {
		acc = append(acc, s.Path)
	}
	for _, c := range s.Components {
		switch c := c.(type) {
		case Class:
			acc = append(acc, rdf.RDFType)
		case QualifiedMinCount:
			acc = c.Nested.relevantPredicates(acc)
		case MinCount:
		}
	}
	return acc
}
