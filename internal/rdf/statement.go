package rdf

// Well-known vocabulary IRIs.
const (
	RDFType       IRI = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	RDFLangString IRI = "http://www.w3.org/1999/02/22-rdf-syntax-ns#langString"
	XSDString     IRI = "http://www.w3.org/2001/XMLSchema#string"
	XSDInteger    IRI = "http://www.w3.org/2001/XMLSchema#integer"
	XSDBoolean    IRI = "http://www.w3.org/2001/XMLSchema#boolean"
)

// DefaultGraph is the graph name of statements asserted outside any named graph.
const DefaultGraph = ""

// Statement is one quad: subject, predicate, object in a (possibly default)
// named graph. Subjects are IRIs or blank nodes; predicates are IRIs;
// objects are any value. Construction does not enforce this - the store
// rejects malformed statements at write time.
type Statement struct {
	Subject   Value
	Predicate Value
	Object    Value
	Graph     string
}

// Equal reports term-wise statement equality, including the graph name.
func (s Statement) Equal(o Statement) bool {
	return s.Graph == o.Graph &&
		Equal(s.Subject, o.Subject) &&
		Equal(s.Predicate, o.Predicate) &&
		Equal(s.Object, o.Object)
}

// String returns the statement in an N-Quads-like form for diagnostics.
func (s Statement) String() string {
	out := s.Subject.String() + " " + s.Predicate.String() + " " + s.Object.String()
	if s.Graph != DefaultGraph {
		out += " " + IRI(s.Graph).String()
	}
	return out + " ."
}
