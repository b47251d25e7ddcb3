package cegis

import "testing"

func TestSolveSingleTarget(t *testing.T) {
	enum := &fakeEnumerator{byCost: map[int][]Candidate{
		0: {&fnCandidate{cost: 0, fn: func(Point) int64 { return 0 }}},
	}}
	oracle := &propertyOracle{}
	constraint := &propertyConstraint{check: func(bound []Candidate) (Verdict, Point) { return Valid, nil }}

	host := Host{
		Enumerator:    enum,
		Oracle:        oracle,
		Constraint:    constraint,
		Targets:       []*SynthTarget{NewSynthTarget("f", nil, "int", 1, 0)},
		ToUserExpr:    func(c Candidate) UserExpr { return stringExpr("0") },
		ConcreteJudge: trivialJudge,
	}

	sol, stats, err := Solve(host, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.Empty() {
		t.Fatal("expected a solution")
	}
	if stats.ExpressionsTried == 0 {
		t.Error("expected at least one expression to have been tried")
	}
}

// fakeTupleEnumerator plays back a fixed cost->tuples table for the
// multi-function joint-synthesis path.
type fakeTupleEnumerator struct {
	byCost map[int][][]Candidate
}

func (e *fakeTupleEnumerator) EnumerateTuplesOfCost(cost int, cb TupleCallback) error {
	for _, tup := range e.byCost[cost] {
		if cb(tup) == StatusStopEnumeration {
			return nil
		}
	}
	return nil
}

func (e *fakeTupleEnumerator) Reset() {}

func TestSolveMultiTargetNoRestartOnInvalid(t *testing.T) {
	badF := &fnCandidate{cost: 0, fn: func(p Point) int64 { return 0 }}
	badG := &fnCandidate{cost: 0, fn: func(p Point) int64 { return 0 }}
	goodF := &fnCandidate{cost: 1, fn: func(p Point) int64 { return 1 }}
	goodG := &fnCandidate{cost: 1, fn: func(p Point) int64 { return 2 }}

	tupleEnum := &fakeTupleEnumerator{byCost: map[int][][]Candidate{
		0: {{badF, badG}},
		1: {{goodF, goodG}},
	}}

	oracle := &propertyOracle{}
	constraint := &propertyConstraint{check: func(bound []Candidate) (Verdict, Point) {
		f, _ := bound[0].Eval(Point{})
		g, _ := bound[1].Eval(Point{})
		if f == 1 && g == 2 {
			return Valid, nil
		}
		return Invalid, Point{"x": 0}
	}}

	host := Host{
		TupleEnumerator: tupleEnum,
		Oracle:          oracle,
		Constraint:      constraint,
		Targets:         []*SynthTarget{NewSynthTarget("f", nil, "int", 0, 0), NewSynthTarget("g", nil, "int", 0, 0)},
		ToUserExpr:      func(c Candidate) UserExpr { return stringExpr("expr") },
		ConcreteJudge:   trivialJudge,
	}

	sol, stats, err := Solve(host, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.Empty() {
		t.Fatal("expected a solution")
	}
	if len(sol[0]) != 2 {
		t.Fatalf("expected bindings for both targets, got %d", len(sol[0]))
	}
	if stats.Restarts == 0 {
		t.Error("expected the bad tuple at cost 0 to register as a counter-example")
	}
}
