package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shapegate/internal/store"
)

const personDataDoc = `
statements:
  - subject: {iri: "http://example.com/A"}
    predicate: "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
    object: {iri: "http://example.com/Person"}
  - subject: {iri: "http://example.com/A"}
    predicate: "http://example.com/knows"
    object: {iri: "http://example.com/B"}
`

func TestLoadCommitsStatements(t *testing.T) {
	db := seedStore(t)
	data := writeFile(t, "data.yaml", personDataDoc)

	out, err := execute(t, "load", "--db", db, "--data", data)
	require.NoError(t, err)
	assert.Contains(t, out, "Loaded 2 statement(s)")

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	found, err := st.Snapshot().HasStatement(context.Background(), iri("A"), iri("knows"), iri("B"), nil)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestLoadJSONOutput(t *testing.T) {
	db := seedStore(t)
	data := writeFile(t, "data.yaml", personDataDoc)

	out, err := execute(t, "--format", "json", "load", "--db", db, "--data", data)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	payload, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var result LoadResult
	require.NoError(t, json.Unmarshal(payload, &result))
	assert.Equal(t, 2, result.Loaded)
}

func TestLoadMissingDataFile(t *testing.T) {
	db := seedStore(t)

	out, err := execute(t, "load", "--db", db, "--data", "does/not/exist.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNotFound)
}
