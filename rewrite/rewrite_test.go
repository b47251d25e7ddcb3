package rewrite

import (
	"errors"
	"testing"

	"github.com/esolver/cegis"
	"github.com/esolver/theory"
)

func TestDoOrdinaryShapeBuildsConstraint(t *testing.T) {
	eb := theory.NewExprBuilder()
	x := eb.BVS("x", 32)

	spec := Spec{
		EB:           eb,
		Width:        32,
		NumTargets:   1,
		RelevantVars: []string{"x"},
		Build: func(eb *theory.ExprBuilder, targets []*theory.BVExprPtr) (*theory.BoolExprPtr, error) {
			return eb.Eq(x, targets[0])
		},
	}

	r, err := Do(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.IsPBE {
		t.Fatal("expected the ordinary CEG shape, not PBE")
	}
	if r.Constraint == nil {
		t.Fatal("expected a ground constraint")
	}
	if r.ConcreteJudge == nil {
		t.Fatal("expected a concrete judge alongside the ground constraint")
	}

	ground := r.Constraint.Instantiate([]cegis.Candidate{nil})
	_ = ground // Instantiate itself never evaluates Build; CheckValidity does.
}

// TestDoConcreteJudgeMatchesBuild guards against the concrete pre-check
// silently accepting everything: ConcreteJudge must agree with Build's own
// symbolic formula when evaluated at the same point and output.
func TestDoConcreteJudgeMatchesBuild(t *testing.T) {
	eb := theory.NewExprBuilder()
	x := eb.BVS("x", 32)

	spec := Spec{
		EB:           eb,
		Width:        32,
		NumTargets:   1,
		RelevantVars: []string{"x"},
		Build: func(eb *theory.ExprBuilder, targets []*theory.BVExprPtr) (*theory.BoolExprPtr, error) {
			return eb.Eq(x, targets[0])
		},
	}

	r, err := Do(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if holds, defined := r.ConcreteJudge(cegis.Point{"x": 7}, map[int]int64{0: 7}); !defined || !holds {
		t.Errorf("expected the judge to hold when the target equals x, got holds=%v defined=%v", holds, defined)
	}
	if holds, defined := r.ConcreteJudge(cegis.Point{"x": 7}, map[int]int64{0: 8}); !defined || holds {
		t.Errorf("expected the judge to reject a target that disagrees with x, got holds=%v defined=%v", holds, defined)
	}
	if _, defined := r.ConcreteJudge(cegis.Point{"x": 7}, map[int]int64{}); defined {
		t.Error("expected an undefined verdict when a target's output is missing")
	}
}

func TestDoPBEShapeDetected(t *testing.T) {
	examples := []cegis.PBEExampleSpec{
		{Point: cegis.Point{"x": 0}, Expected: 1},
		{Point: cegis.Point{"x": 1}, Expected: 2},
	}
	spec := Spec{
		NumTargets:        1,
		RelevantVars:      []string{"x"},
		ConstRelevantVars: []string{"x"},
		Examples:          examples,
	}

	r, err := Do(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.IsPBE {
		t.Fatal("expected the PBE shape to be detected")
	}
	if len(r.Examples) != 2 {
		t.Fatalf("expected both examples carried through, got %d", len(r.Examples))
	}
}

func TestDoMismatchedRelevantVarsIsNotPBE(t *testing.T) {
	spec := Spec{
		NumTargets:        1,
		RelevantVars:      []string{"x", "y"},
		ConstRelevantVars: []string{"x"},
		Examples:          []cegis.PBEExampleSpec{{Point: cegis.Point{"x": 0}, Expected: 1}},
	}

	r, err := Do(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.IsPBE {
		t.Fatal("expected the mismatched-variable-count shape to fall back to the ordinary path")
	}
}

func TestCheckLetBindingsRejectsDuplicatePosition(t *testing.T) {
	f := cegis.NewSynthTarget("f", nil, "int", 1, 0)
	g := cegis.NewSynthTarget("g", nil, "int", 1, 0)
	f.SetPosition(0)
	g.SetPosition(0)

	if err := CheckLetBindings([]*cegis.SynthTarget{f, g}); !errors.Is(err, ErrSpecShape) {
		t.Errorf("expected ErrSpecShape, got %v", err)
	}
}

func TestCheckLetBindingsAcceptsDistinctPositions(t *testing.T) {
	f := cegis.NewSynthTarget("f", nil, "int", 1, 0)
	g := cegis.NewSynthTarget("g", nil, "int", 1, 0)
	f.SetPosition(0)
	g.SetPosition(1)

	if err := CheckLetBindings([]*cegis.SynthTarget{f, g}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
