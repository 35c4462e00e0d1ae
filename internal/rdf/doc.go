// Package rdf provides the graph value model for shapegate.
//
// This package contains value and statement types only. All other internal
// packages import rdf; rdf imports nothing internal. This ensures the value
// model remains the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Value is a sealed interface: only IRI, Literal, and BNode implement it
//   - Literal lexical forms are NFC normalized at construction
//   - Compare provides a total, deterministic order over all values, used
//     everywhere results must be reproducible across runs
//   - Blank node identifiers are UUIDv7 (time-ordered, collision free)
package rdf
