package rdf

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// ValueKind discriminates the sealed Value interface.
type ValueKind int

const (
	KindIRI ValueKind = iota
	KindBNode
	KindLiteral
)

// String returns the kind name for diagnostics.
func (k ValueKind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindBNode:
		return "bnode"
	case KindLiteral:
		return "literal"
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

// Value is a sealed interface over the three RDF term kinds.
// Only IRI, BNode, and Literal implement it.
type Value interface {
	value() // Sealed - only these types implement it

	// Kind returns the term kind for exhaustive dispatch.
	Kind() ValueKind

	// String returns the canonical N-Triples-like text form. Two values are
	// equal iff their String forms are equal, so the text form doubles as a
	// map key.
	String() string
}

// IRI is an absolute IRI reference.
type IRI string

func (IRI) value() {}

// Kind implements Value.
func (IRI) Kind() ValueKind { return KindIRI }

// String returns the angle-bracketed form, e.g. <http://example.com/a>.
func (v IRI) String() string { return "<" + string(v) + ">" }

// BNode is a blank node identifier.
type BNode string

func (BNode) value() {}

// Kind implements Value.
func (BNode) Kind() ValueKind { return KindBNode }

// String returns the _:label form.
func (v BNode) String() string { return "_:" + string(v) }

// NewBNode mints a fresh blank node with a UUIDv7 identifier.
// UUIDv7 is time-ordered, so freshly minted nodes sort in creation order.
func NewBNode() BNode {
	return BNode(uuid.Must(uuid.NewV7()).String())
}

// Literal is a typed or language-tagged literal.
//
// The lexical form is NFC normalized at construction so that two literals
// differing only in Unicode normalization compare equal. Datatype defaults
// to xsd:string when empty and no language tag is present.
type Literal struct {
	Lexical  string
	Datatype IRI
	Lang     string
}

func (Literal) value() {}

// Kind implements Value.
func (Literal) Kind() ValueKind { return KindLiteral }

// String returns the quoted form with datatype or language suffix.
func (v Literal) String() string {
	var b strings.Builder
	b.WriteByte('"')
	b.WriteString(escapeLexical(v.Lexical))
	b.WriteByte('"')
	if v.Lang != "" {
		b.WriteByte('@')
		b.WriteString(v.Lang)
	} else if v.Datatype != "" && v.Datatype != XSDString {
		b.WriteString("^^")
		b.WriteString(v.Datatype.String())
	}
	return b.String()
}

// NewLiteral creates an xsd:string literal with an NFC-normalized lexical form.
func NewLiteral(lexical string) Literal {
	return Literal{Lexical: norm.NFC.String(lexical), Datatype: XSDString}
}

// NewTypedLiteral creates a literal with an explicit datatype.
func NewTypedLiteral(lexical string, datatype IRI) Literal {
	return Literal{Lexical: norm.NFC.String(lexical), Datatype: datatype}
}

// NewLangLiteral creates a language-tagged literal (datatype rdf:langString).
// Language tags are compared case-insensitively, so the tag is lowercased.
func NewLangLiteral(lexical, lang string) Literal {
	return Literal{
		Lexical:  norm.NFC.String(lexical),
		Datatype: RDFLangString,
		Lang:     strings.ToLower(lang),
	}
}

// NewIntLiteral creates an xsd:integer literal.
func NewIntLiteral(n int64) Literal {
	return Literal{Lexical: fmt.Sprintf("%d", n), Datatype: XSDInteger}
}

// Equal reports whether two values are the same term.
// Nil arguments are never equal to anything, including each other.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Kind() == b.Kind() && a.String() == b.String()
}

// Compare provides a total order over values: IRIs before blank nodes
// before literals, then by canonical text form. Nil sorts first.
//
// The order is arbitrary but stable; it exists so query results and
// reports can be emitted deterministically.
func Compare(a, b Value) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	if ka, kb := a.Kind(), b.Kind(); ka != kb {
		return int(ka) - int(kb)
	}
	return strings.Compare(a.String(), b.String())
}

// escapeLexical escapes the characters N-Triples requires inside quotes.
func escapeLexical(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	)
	return r.Replace(s)
}
