package validation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/roach88/shapegate/internal/plan"
	"github.com/roach88/shapegate/internal/rdf"
	"github.com/roach88/shapegate/internal/shacl"
	"github.com/roach88/shapegate/internal/tuple"
)

// Violation is one tuple emitted by a shape's plan root: the normal,
// successful product of a failing constraint, not an error.
type Violation struct {
	ShapeID   rdf.IRI
	Component shacl.ComponentKind
	Tuple     tuple.ValidationTuple
}

// Report is the outcome of one validation run.
type Report struct {
	// RunID is a UUIDv7, so report ids sort by creation time.
	RunID      string
	Violations []Violation
}

// Conforms reports whether the run found no violations.
func (r *Report) Conforms() bool {
	return len(r.Violations) == 0
}

// Validator evaluates a set of shapes against one connections group.
type Validator struct {
	Shapes   []*shacl.Shape
	Conns    *shacl.ConnectionsGroup
	Settings shacl.ValidationSettings

	// Changed, when non-nil, holds the predicates the transaction under
	// validation touched. Shapes unaffected by them are skipped. Nil
	// means full validation.
	Changed map[rdf.IRI]struct{}
}

// Validate compiles and drains one plan per shape. Violations accumulate
// across shapes; a store or compile failure aborts the run and the
// caller rejects the transaction with that error instead.
func (v *Validator) Validate(ctx context.Context) (*Report, error) {
	report := &Report{RunID: uuid.Must(uuid.NewV7()).String()}

	for _, shape := range v.Shapes {
		if !shape.RequiresEvaluation(v.Changed) {
			slog.Debug("shape skipped, no relevant changes", "shape", shape.ID.String())
			continue
		}

		scope := tuple.NodeShape
		if shape.Path != "" {
			scope = tuple.PropertyShape
		}

		plans, err := shape.CompileComponentPlans(ctx, v.Conns, v.Settings, nil, scope)
		if err != nil {
			return nil, fmt.Errorf("validation run %s: %w", report.RunID, err)
		}

		found := 0
		for _, p := range plans {
			tuples, err := plan.Drain(p.Root)
			if err != nil {
				return nil, fmt.Errorf("validation run %s: shape %s: %w", report.RunID, shape.ID.String(), err)
			}
			for _, t := range tuples {
				report.Violations = append(report.Violations, Violation{
					ShapeID:   shape.ID,
					Component: p.Kind,
					Tuple:     t,
				})
			}
			found += len(tuples)
		}
		slog.Debug("shape evaluated",
			"shape", shape.ID.String(),
			"violations", found)
	}

	slog.Info("validation finished",
		"run_id", report.RunID,
		"violations", len(report.Violations))
	return report, nil
}
