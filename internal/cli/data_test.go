package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shapegate/internal/rdf"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadData(t *testing.T) {
	path := writeFile(t, "data.yaml", `
statements:
  - subject: {iri: "http://example.com/A"}
    predicate: "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
    object: {iri: "http://example.com/Person"}
  - subject: {bnode: "b1"}
    predicate: "http://example.com/name"
    object: {literal: "Ada", lang: "en"}
    graph: "http://example.com/g1"
  - subject: {iri: "http://example.com/A"}
    predicate: "http://example.com/age"
    object: {literal: "41", datatype: "http://www.w3.org/2001/XMLSchema#integer"}
`)

	statements, err := LoadData(path)
	require.NoError(t, err)
	require.Len(t, statements, 3)

	assert.Equal(t, rdf.IRI("http://example.com/A"), statements[0].Subject)
	assert.Equal(t, rdf.RDFType, statements[0].Predicate)

	assert.Equal(t, rdf.BNode("b1"), statements[1].Subject)
	lit, ok := statements[1].Object.(rdf.Literal)
	require.True(t, ok)
	assert.Equal(t, "Ada", lit.Lexical)
	assert.Equal(t, "en", lit.Lang)
	assert.Equal(t, "http://example.com/g1", statements[1].Graph)

	lit, ok = statements[2].Object.(rdf.Literal)
	require.True(t, ok)
	assert.Equal(t, rdf.XSDInteger, lit.Datatype)
}

func TestLoadDataLiteralSubjectRejected(t *testing.T) {
	path := writeFile(t, "bad.yaml", `
statements:
  - subject: {literal: "nope"}
    predicate: "http://example.com/p"
    object: {iri: "http://example.com/o"}
`)

	_, err := LoadData(path)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeData, loadErr.Code)
	assert.Contains(t, loadErr.Message, "literal")
}

func TestLoadDataAmbiguousTermRejected(t *testing.T) {
	path := writeFile(t, "bad.yaml", `
statements:
  - subject: {iri: "http://example.com/A", bnode: "b1"}
    predicate: "http://example.com/p"
    object: {iri: "http://example.com/o"}
`)

	_, err := LoadData(path)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.Message, "exactly one")
}

func TestLoadDataEmptyRejected(t *testing.T) {
	path := writeFile(t, "empty.yaml", `statements: []`)

	_, err := LoadData(path)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.Message, "no statements")
}

func TestLoadDataMissingFile(t *testing.T) {
	_, err := LoadData(filepath.Join(t.TempDir(), "absent.yaml"))
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
}
