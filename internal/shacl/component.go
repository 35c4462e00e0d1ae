package shacl

import (
	"github.com/roach88/shapegate/internal/rdf"
)

// ComponentKind tags the closed set of constraint component types. Every
// switch over it handles all kinds; adding a kind is a compile-checked
// change at each switch site.
type ComponentKind int

const (
	// KindMinCount requires at least Min values on the shape's path.
	KindMinCount ComponentKind = iota
	// KindClass requires every path value to be an instance of a class.
	KindClass
	// KindQualifiedMinCount requires at least MinCount path values to
	// conform to a nested shape.
	KindQualifiedMinCount
)

// String implements fmt.Stringer.
func (k ComponentKind) String() string {
	switch k {
	case KindMinCount:
		return "minCount"
	case KindClass:
		return "class"
	case KindQualifiedMinCount:
		return "qualifiedMinCount"
	default:
		return "unknown"
	}
}

// ConstraintComponent is one rule attached to a shape. The interface is
// closed: only the types in this file implement it.
type ConstraintComponent interface {
	Kind() ComponentKind

	component()
}

// MinCount is the plain cardinality component. It compiles the positive
// strategy: count each target's path values and flag counts below Min.
type MinCount struct {
	Min int64
}

// Kind implements ConstraintComponent.
func (MinCount) Kind() ComponentKind { return KindMinCount }

func (MinCount) component() {}

// Class requires every value reached by the shape's path (or, on a node
// shape, the target itself) to carry rdf:type ClassIRI.
type Class struct {
	ClassIRI rdf.IRI
}

// Kind implements ConstraintComponent.
func (Class) Kind() ComponentKind { return KindClass }

func (Class) component() {}

// QualifiedMinCount is the qualified cardinality component: at least
// MinCount of the target's path values must conform to Nested.
//
// It compiles the negated strategy. The nested shape's own plan finds
// the values that fail it; the anti-join inverts that into the valid
// set, which is then counted per target against MinCount.
type QualifiedMinCount struct {
	Nested   *Shape
	MinCount int64

	// Disjoint demands values counted here not be claimed by sibling
	// qualified shapes. Sibling tracking is not modeled, so compilation
	// rejects it.
	Disjoint bool
}

// Kind implements ConstraintComponent.
func (QualifiedMinCount) Kind() ComponentKind { return KindQualifiedMinCount }

func (QualifiedMinCount) component() {}
