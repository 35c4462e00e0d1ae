package shacl

import (
	"context"
	"fmt"

	"github.com/roach88/shapegate/internal/plan"
	"github.com/roach88/shapegate/internal/store"
	"github.com/roach88/shapegate/internal/tuple"
)

// CompileValidationPlan builds the plan tree whose output is this
// shape's violation stream. Each component compiles to its own sub-plan;
// the root is their deduplicated union. Unsupported constructs fail here
// with a CompileError, before any iteration begins.
//
// Override tuples, when supplied, replace target resolution; the caller
// narrows validation to those targets. Debug ids restart at n1 for every
// compilation so diagnostics output is reproducible.
func (s *Shape) CompileValidationPlan(ctx context.Context, conns *ConnectionsGroup, settings ValidationSettings, override []tuple.ValidationTuple, scope tuple.Scope) (plan.Node, error) {
	if err := s.checkScope(scope); err != nil {
		return nil, err
	}

	// Compile against a private clone so concurrent compilations of the
	// same shape object never share scratch.
	s = s.CloneForCompilation()

	arena := plan.NewIDArena()
	plans, err := s.compilePlans(ctx, arena, conns, settings, override, scope)
	if err != nil {
		return nil, err
	}
	var root plan.Node = plan.NewEmpty(arena)
	for _, p := range plans {
		root = plan.NewUnionDedupe(arena, root, p.Root)
	}
	return root, nil
}

// ComponentPlan pairs one component's compiled plan with its kind, so
// callers draining per component can attribute violations.
type ComponentPlan struct {
	Kind ComponentKind
	Root plan.Node
}

// CompileComponentPlans compiles one plan per component instead of the
// fused union root. Same error behavior as CompileValidationPlan.
func (s *Shape) CompileComponentPlans(ctx context.Context, conns *ConnectionsGroup, settings ValidationSettings, override []tuple.ValidationTuple, scope tuple.Scope) ([]ComponentPlan, error) {
	if err := s.checkScope(scope); err != nil {
		return nil, err
	}
	s = s.CloneForCompilation()
	return s.compilePlans(ctx, plan.NewIDArena(), conns, settings, override, scope)
}

func (s *Shape) compilePlans(ctx context.Context, arena *plan.IDArena, conns *ConnectionsGroup, settings ValidationSettings, override []tuple.ValidationTuple, scope tuple.Scope) ([]ComponentPlan, error) {
	var out []ComponentPlan
	for _, c := range s.Components {
		sub, err := s.compileComponent(ctx, arena, conns, settings, override, scope, c)
		if err != nil {
			return nil, err
		}
		out = append(out, ComponentPlan{Kind: c.Kind(), Root: sub})
	}
	return out, nil
}

func (s *Shape) checkScope(scope tuple.Scope) error {
	want := tuple.NodeShape
	if s.Path != "" {
		want = tuple.PropertyShape
	}
	if scope != want {
		return &CompileError{
			Code:    ErrUnsupportedScope,
			ShapeID: s.shapeID(),
			Message: fmt.Sprintf("shape compiles at %s scope, requested %s", want, scope),
		}
	}
	return nil
}

func (s *Shape) compileComponent(ctx context.Context, arena *plan.IDArena, conns *ConnectionsGroup, settings ValidationSettings, override []tuple.ValidationTuple, scope tuple.Scope, c ConstraintComponent) (plan.Node, error) {
	switch c := c.(type) {
	case MinCount:
		return s.compileMinCount(ctx, arena, conns, settings, override, c)
	case Class:
		return s.compileClass(ctx, arena, conns, settings, override, scope, c)
	case QualifiedMinCount:
		return s.compileQualifiedMinCount(ctx, arena, conns, settings, override, c)
	default:
		return nil, &CompileError{
			Code:    ErrUnsupportedComponent,
			ShapeID: s.shapeID(),
			Message: fmt.Sprintf("no compilation strategy for %s", c.Kind()),
		}
	}
}

// compileMinCount is the positive strategy: targets left-outer-joined
// with their path values, counted per target, counts below the minimum
// surfaced as violations.
func (s *Shape) compileMinCount(ctx context.Context, arena *plan.IDArena, conns *ConnectionsGroup, settings ValidationSettings, override []tuple.ValidationTuple, c MinCount) (plan.Node, error) {
	if s.Path == "" {
		return nil, s.missingPath(c)
	}
	targets, err := s.targetsNode(ctx, arena, conns, settings, override, tuple.PropertyShape)
	if err != nil {
		return nil, err
	}
	joined := s.pathJoin(ctx, arena, conns, settings, targets)
	counted := plan.NewGroupByCountFilter(arena, joined, func(n int64) bool { return n < c.Min })
	return plan.NewUnique(arena, plan.NewTrimToTarget(arena, counted), false), nil
}

// compileClass is the positive strategy for the class check: values
// lacking an rdf:type statement for the class become violations. On a
// node shape the target itself is checked.
func (s *Shape) compileClass(ctx context.Context, arena *plan.IDArena, conns *ConnectionsGroup, settings ValidationSettings, override []tuple.ValidationTuple, scope tuple.Scope, c Class) (plan.Node, error) {
	targets, err := s.targetsNode(ctx, arena, conns, settings, override, scope)
	if err != nil {
		return nil, err
	}
	checked := targets
	if s.Path != "" {
		joined := s.pathJoin(ctx, arena, conns, settings, targets)
		// A target with no values has nothing to check.
		checked = plan.NewFilter(arena, joined, tuple.ValidationTuple.HasValue)
	}
	invalid := plan.NewExternalTypeFilter(arena, ctx, checked, conns.Base, c.ClassIRI, false, settings.DataGraphs)
	return plan.NewUnique(arena, invalid, false), nil
}

// compileQualifiedMinCount is the negated strategy. The nested shape's
// own plan finds the path values that fail it; the anti-join inverts
// that into the per-target valid set, which is then counted against the
// minimum. Targets whose every value is invalid, and targets with no
// values at all, come out of the left outer join with count zero.
func (s *Shape) compileQualifiedMinCount(ctx context.Context, arena *plan.IDArena, conns *ConnectionsGroup, settings ValidationSettings, override []tuple.ValidationTuple, c QualifiedMinCount) (plan.Node, error) {
	if s.Path == "" {
		return nil, s.missingPath(c)
	}
	if c.Disjoint {
		return nil, &CompileError{
			Code:    ErrUnsupportedComponent,
			ShapeID: s.shapeID(),
			Message: "disjoint qualified shapes require sibling tracking",
		}
	}

	nested := c.Nested.CloneForCompilation()

	// Nested checks consume the path-extended targets with the value
	// folded into the chain. Each check gets a fresh stream.
	foldedInput := func() (plan.Node, error) {
		targets, err := s.targetsNode(ctx, arena, conns, settings, override, tuple.PropertyShape)
		if err != nil {
			return nil, err
		}
		joined := s.pathJoin(ctx, arena, conns, settings, targets)
		valued := plan.NewFilter(arena, joined, tuple.ValidationTuple.HasValue)
		return plan.NewTupleMapper(arena, valued, foldValue), nil
	}

	invalid, err := nested.invalidValues(ctx, arena, conns, settings, foldedInput)
	if err != nil {
		return nil, err
	}

	allExtended, err := s.targetsNode(ctx, arena, conns, settings, override, tuple.PropertyShape)
	if err != nil {
		return nil, err
	}
	allExtendedJoined := s.pathJoin(ctx, arena, conns, settings, allExtended)
	valid := plan.NewNotValuesIn(arena, allExtendedJoined, plan.NewUnique(arena, invalid, false))

	countTargets, err := s.targetsNode(ctx, arena, conns, settings, override, tuple.PropertyShape)
	if err != nil {
		return nil, err
	}
	counted := plan.NewGroupByCountFilter(arena,
		plan.NewLeftOuterJoin(arena, countTargets, valid),
		func(n int64) bool { return n < c.MinCount })
	return plan.NewUnique(arena, plan.NewTrimToTarget(arena, counted), false), nil
}

// invalidValues builds the plan finding inputs that fail this shape,
// used when the shape is nested under a qualified cardinality rule. The
// input factory yields a fresh stream per component; the innermost chain
// element of each input tuple is the value under test.
func (s *Shape) invalidValues(ctx context.Context, arena *plan.IDArena, conns *ConnectionsGroup, settings ValidationSettings, input func() (plan.Node, error)) (plan.Node, error) {
	var root plan.Node = plan.NewEmpty(arena)
	for _, c := range s.Components {
		cls, ok := c.(Class)
		if !ok {
			return nil, &CompileError{
				Code:    ErrUnsupportedComponent,
				ShapeID: s.shapeID(),
				Message: fmt.Sprintf("nested shapes support class checks, got %s", c.Kind()),
			}
		}
		in, err := input()
		if err != nil {
			return nil, err
		}
		failed := plan.NewExternalTypeFilter(arena, ctx, in, conns.Base, cls.ClassIRI, false, settings.DataGraphs)
		root = plan.NewUnionDedupe(arena, root, failed)
	}
	return root, nil
}

// targetsNode resolves the shape's target set, or wires the caller's
// override tuples.
func (s *Shape) targetsNode(ctx context.Context, arena *plan.IDArena, conns *ConnectionsGroup, settings ValidationSettings, override []tuple.ValidationTuple, scope tuple.Scope) (plan.Node, error) {
	if len(override) > 0 {
		return plan.NewUnique(arena, plan.NewOverrideTargets(arena, override), false), nil
	}
	if s.TargetClass == "" {
		return nil, &CompileError{
			Code:    ErrMissingTarget,
			ShapeID: s.shapeID(),
			Message: "shape declares no target class and no override targets were supplied",
		}
	}
	return plan.NewAllTargets(arena, ctx, conns.Base, s.TargetClass, scope, settings.DataGraphs), nil
}

// pathJoin wires the batched join from a target stream to the shape's
// path values on the base connection.
func (s *Shape) pathJoin(ctx context.Context, arena *plan.IDArena, conns *ConnectionsGroup, settings ValidationSettings, targets plan.Node) plan.Node {
	return plan.NewBulkedExternalLeftOuterJoin(
		arena, ctx, targets, conns.Base, s.pathFragment(),
		false, nil,
		pathRowMapper(settings.DataGraphs), settings.DataGraphs)
}

// pathRowMapper turns path query rows into property-scope value tuples.
func pathRowMapper(contexts []string) plan.RowMapper {
	return func(r store.Row) tuple.ValidationTuple {
		return tuple.NewWithValue(tuple.PropertyShape, contexts, r.Target, r.Value)
	}
}

// foldValue moves a tuple's trailing value into its target chain, the
// form nested checks consume.
func foldValue(in tuple.ValidationTuple) tuple.ValidationTuple {
	return tuple.New(in.Scope(), in.Contexts(), in.TargetChain(true)...)
}

func (s *Shape) missingPath(c ConstraintComponent) error {
	return &CompileError{
		Code:    ErrMissingPath,
		ShapeID: s.shapeID(),
		Message: fmt.Sprintf("%s requires a path", c.Kind()),
	}
}
