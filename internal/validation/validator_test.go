package validation

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shapegate/internal/rdf"
	"github.com/roach88/shapegate/internal/shacl"
	"github.com/roach88/shapegate/internal/store"
)

func iri(s string) rdf.IRI { return rdf.IRI("http://example.com/" + s) }

func openStore(t *testing.T, statements ...rdf.Statement) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "validation.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	for _, st := range statements {
		require.NoError(t, s.Add(context.Background(), st))
	}
	return s
}

func knows(subject, object string) rdf.Statement {
	return rdf.Statement{Subject: iri(subject), Predicate: iri("knows"), Object: iri(object)}
}

func typed(subject, class string) rdf.Statement {
	return rdf.Statement{Subject: iri(subject), Predicate: rdf.RDFType, Object: iri(class)}
}

func minCountShape(min int64) *shacl.Shape {
	return &shacl.Shape{
		ID:          iri("PersonShape"),
		TargetClass: iri("Person"),
		Path:        iri("knows"),
		Components:  []shacl.ConstraintComponent{shacl.MinCount{Min: min}},
	}
}

func TestValidateConforming(t *testing.T) {
	st := openStore(t,
		typed("A", "Person"),
		knows("A", "v1"),
	)
	v := &Validator{
		Shapes: []*shacl.Shape{minCountShape(1)},
		Conns:  &shacl.ConnectionsGroup{Base: st.Snapshot()},
	}

	report, err := v.Validate(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Conforms())

	id, err := uuid.Parse(report.RunID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestValidateCollectsViolationsAcrossShapes(t *testing.T) {
	st := openStore(t,
		typed("A", "Person"),
		knows("A", "v1"),
	)
	classShape := &shacl.Shape{
		ID:          iri("KnowsExperts"),
		TargetClass: iri("Person"),
		Path:        iri("knows"),
		Components:  []shacl.ConstraintComponent{shacl.Class{ClassIRI: iri("Expert")}},
	}
	v := &Validator{
		Shapes: []*shacl.Shape{minCountShape(2), classShape},
		Conns:  &shacl.ConnectionsGroup{Base: st.Snapshot()},
	}

	report, err := v.Validate(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Violations, 2)
	assert.False(t, report.Conforms())

	byShape := map[string]shacl.ComponentKind{}
	for _, viol := range report.Violations {
		byShape[string(viol.ShapeID)] = viol.Component
	}
	assert.Equal(t, shacl.KindMinCount, byShape[string(iri("PersonShape"))])
	assert.Equal(t, shacl.KindClass, byShape[string(iri("KnowsExperts"))])
}

func TestValidateSkipsUnaffectedShapes(t *testing.T) {
	st := openStore(t, typed("A", "Person"))
	v := &Validator{
		Shapes:  []*shacl.Shape{minCountShape(1)},
		Conns:   &shacl.ConnectionsGroup{Base: st.Snapshot()},
		Changed: map[rdf.IRI]struct{}{iri("unrelated"): {}},
	}

	report, err := v.Validate(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Conforms(), "shape skipped, violation not discovered")
}

func TestValidateEvaluatesAffectedShapes(t *testing.T) {
	st := openStore(t, typed("A", "Person"))
	v := &Validator{
		Shapes:  []*shacl.Shape{minCountShape(1)},
		Conns:   &shacl.ConnectionsGroup{Base: st.Snapshot()},
		Changed: map[rdf.IRI]struct{}{iri("knows"): {}},
	}

	report, err := v.Validate(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Violations, 1)
}

func TestValidateTransactionStaging(t *testing.T) {
	ctx := context.Background()
	st := openStore(t,
		typed("A", "Person"),
		knows("A", "v1"),
	)

	txn, err := st.Begin(ctx)
	require.NoError(t, err)
	defer txn.Rollback()
	require.NoError(t, txn.Add(ctx, typed("B", "Person")))

	v := &Validator{
		Shapes: []*shacl.Shape{minCountShape(1)},
		Conns: &shacl.ConnectionsGroup{
			Base:     txn.Base(),
			Previous: st.Snapshot(),
		},
		Changed: txn.ChangedPredicates(),
	}

	report, err := v.Validate(ctx)
	require.NoError(t, err)
	require.Len(t, report.Violations, 1, "staged target B has no knows values")
	assert.True(t, rdf.Equal(report.Violations[0].Tuple.Target(), iri("B")))
}

func TestValidateCompileErrorAbortsRun(t *testing.T) {
	st := openStore(t)
	broken := &shacl.Shape{
		ID:          iri("Broken"),
		TargetClass: iri("Person"),
		Path:        iri("knows"),
		Components: []shacl.ConstraintComponent{
			shacl.QualifiedMinCount{
				Nested:   &shacl.Shape{Components: []shacl.ConstraintComponent{shacl.Class{ClassIRI: iri("Expert")}}},
				MinCount: 1,
				Disjoint: true,
			},
		},
	}
	v := &Validator{
		Shapes: []*shacl.Shape{broken},
		Conns:  &shacl.ConnectionsGroup{Base: st.Snapshot()},
	}

	_, err := v.Validate(context.Background())
	var cerr *shacl.CompileError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, shacl.ErrUnsupportedComponent, cerr.Code)
}
