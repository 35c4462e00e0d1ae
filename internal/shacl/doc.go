// Package shacl holds the shape model and the constraint compiler that
// turns a shape's components into validation plan trees.
//
// A Shape is immutable rule data plus per-compilation scratch. Compiling
// twice concurrently requires CloneForCompilation so each plan gets its
// own scratch. Plans read through a ConnectionsGroup and emit violating
// tuples; an empty stream means the shape holds.
package shacl
