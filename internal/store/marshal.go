package store

import (
	"fmt"
	"strings"

	"github.com/roach88/shapegate/internal/rdf"
)

// Terms are stored in their canonical text form (rdf.Value.String). The
// form is injective - <iri>, _:bnode, "literal"[@lang|^^<dt>] - so text
// equality in SQL is term equality, and ORDER BY over the text column is
// the same deterministic order rdf.Compare gives within a kind.

// marshalStatement validates and serializes a statement's terms.
func marshalStatement(st rdf.Statement) (subject, predicate, object string, err error) {
	if st.Subject == nil || st.Predicate == nil || st.Object == nil {
		return "", "", "", &QueryError{
			Code:    ErrCodeMalformedStatement,
			Message: "statement has nil term",
		}
	}
	if st.Subject.Kind() == rdf.KindLiteral {
		return "", "", "", &QueryError{
			Code:    ErrCodeMalformedStatement,
			Message: fmt.Sprintf("literal subject %s", st.Subject),
		}
	}
	if st.Predicate.Kind() != rdf.KindIRI {
		return "", "", "", &QueryError{
			Code:    ErrCodeMalformedStatement,
			Message: fmt.Sprintf("non-IRI predicate %s", st.Predicate),
		}
	}
	return st.Subject.String(), st.Predicate.String(), st.Object.String(), nil
}

// parseTerm converts a stored canonical text form back into a value.
func parseTerm(text string) (rdf.Value, error) {
	switch {
	case strings.HasPrefix(text, "<") && strings.HasSuffix(text, ">"):
		return rdf.IRI(text[1 : len(text)-1]), nil
	case strings.HasPrefix(text, "_:"):
		return rdf.BNode(text[2:]), nil
	case strings.HasPrefix(text, `"`):
		return parseLiteral(text)
	default:
		return nil, &QueryError{
			Code:    ErrCodeBadTerm,
			Message: fmt.Sprintf("unparseable term %q", text),
		}
	}
}

// parseLiteral handles "lexical", "lexical"@lang and "lexical"^^<dt>.
func parseLiteral(text string) (rdf.Value, error) {
	end := closingQuote(text)
	if end < 0 {
		return nil, &QueryError{
			Code:    ErrCodeBadTerm,
			Message: fmt.Sprintf("unterminated literal %q", text),
		}
	}
	lexical := unescapeLexical(text[1:end])
	rest := text[end+1:]

	switch {
	case rest == "":
		return rdf.Literal{Lexical: lexical, Datatype: rdf.XSDString}, nil
	case strings.HasPrefix(rest, "@"):
		return rdf.Literal{Lexical: lexical, Datatype: rdf.RDFLangString, Lang: rest[1:]}, nil
	case strings.HasPrefix(rest, "^^<") && strings.HasSuffix(rest, ">"):
		return rdf.Literal{Lexical: lexical, Datatype: rdf.IRI(rest[3 : len(rest)-1])}, nil
	default:
		return nil, &QueryError{
			Code:    ErrCodeBadTerm,
			Message: fmt.Sprintf("bad literal suffix in %q", text),
		}
	}
}

// closingQuote finds the index of the unescaped closing quote, or -1.
func closingQuote(text string) int {
	for i := 1; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++ // skip escaped char
		case '"':
			return i
		}
	}
	return -1
}

func unescapeLexical(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
