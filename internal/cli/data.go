package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/shapegate/internal/rdf"
)

// dataDocument is the YAML form of a statement batch:
//
//	statements:
//	  - subject: {iri: "http://example.com/A"}
//	    predicate: "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
//	    object: {iri: "http://example.com/Person"}
//	    graph: "http://example.com/g1"
//	  - subject: {bnode: "b1"}
//	    predicate: "http://example.com/name"
//	    object: {literal: "Ada", lang: "en"}
type dataDocument struct {
	Statements []statementDoc `yaml:"statements"`
}

type statementDoc struct {
	Subject   termDoc `yaml:"subject"`
	Predicate string  `yaml:"predicate"`
	Object    termDoc `yaml:"object"`
	Graph     string  `yaml:"graph"`
}

// termDoc is a tagged term: exactly one of iri, bnode, literal is set.
type termDoc struct {
	IRI      string  `yaml:"iri"`
	BNode    string  `yaml:"bnode"`
	Literal  *string `yaml:"literal"`
	Datatype string  `yaml:"datatype"`
	Lang     string  `yaml:"lang"`
}

// LoadData parses a YAML data document into statements.
func LoadData(path string) ([]rdf.Statement, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading data file: %v", err)}
	}

	var doc dataDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, &LoadError{Code: ErrCodeData, Message: fmt.Sprintf("parsing data file: %v", err)}
	}
	if len(doc.Statements) == 0 {
		return nil, &LoadError{Code: ErrCodeData, Message: "data file contains no statements"}
	}

	out := make([]rdf.Statement, 0, len(doc.Statements))
	for i, sd := range doc.Statements {
		st, err := sd.toStatement()
		if err != nil {
			return nil, &LoadError{Code: ErrCodeData, Message: fmt.Sprintf("statement %d: %v", i, err)}
		}
		out = append(out, st)
	}
	return out, nil
}

func (sd statementDoc) toStatement() (rdf.Statement, error) {
	subject, err := sd.Subject.toValue()
	if err != nil {
		return rdf.Statement{}, fmt.Errorf("subject: %w", err)
	}
	if subject.Kind() == rdf.KindLiteral {
		return rdf.Statement{}, fmt.Errorf("subject must not be a literal")
	}
	if sd.Predicate == "" {
		return rdf.Statement{}, fmt.Errorf("predicate is required")
	}
	object, err := sd.Object.toValue()
	if err != nil {
		return rdf.Statement{}, fmt.Errorf("object: %w", err)
	}
	return rdf.Statement{
		Subject:   subject,
		Predicate: rdf.IRI(sd.Predicate),
		Object:    object,
		Graph:     sd.Graph,
	}, nil
}

func (td termDoc) toValue() (rdf.Value, error) {
	set := 0
	if td.IRI != "" {
		set++
	}
	if td.BNode != "" {
		set++
	}
	if td.Literal != nil {
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("exactly one of iri, bnode, literal is required")
	}

	switch {
	case td.IRI != "":
		return rdf.IRI(td.IRI), nil
	case td.BNode != "":
		return rdf.BNode(td.BNode), nil
	case td.Lang != "":
		return rdf.NewLangLiteral(*td.Literal, td.Lang), nil
	case td.Datatype != "":
		return rdf.NewTypedLiteral(*td.Literal, rdf.IRI(td.Datatype)), nil
	default:
		return rdf.NewLiteral(*td.Literal), nil
	}
}
