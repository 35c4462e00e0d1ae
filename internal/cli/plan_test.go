package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanPrintsDot(t *testing.T) {
	shapes := writeShapesDir(t, personShapesDoc)
	db := seedStore(t)

	out, err := execute(t, "plan", "--shapes", shapes, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "// <PersonShape>")
	assert.Contains(t, out, "digraph plan {")
	assert.Contains(t, out, "GroupByCountFilter")
}

func TestPlanJSONOutput(t *testing.T) {
	shapes := writeShapesDir(t, personShapesDoc)
	db := seedStore(t)

	out, err := execute(t, "--format", "json", "plan", "--shapes", shapes, "--db", db)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	payload, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var plans []PlanOutput
	require.NoError(t, json.Unmarshal(payload, &plans))
	require.Len(t, plans, 1)
	assert.Equal(t, "<PersonShape>", plans[0].Shape)
	assert.Greater(t, plans[0].Depth, 0)
	assert.Contains(t, plans[0].Dot, "BulkedExternalLeftOuterJoin")
}

func TestPlanCompileErrorSurfaces(t *testing.T) {
	shapes := writeShapesDir(t, `
shapes: Bad: {
	targetClass: "http://example.com/Person"
	path:        "http://example.com/knows"
	qualified: {
		minCount: 1
		disjoint: true
		shape: class: "http://example.com/Expert"
	}
}
`)
	db := seedStore(t)

	out, err := execute(t, "plan", "--shapes", shapes, "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "disjoint")
}
