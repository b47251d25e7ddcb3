package cegis

import (
	"errors"
	"testing"
)

// fnCandidate is a Candidate backed by an arbitrary evaluation closure,
// used to stand in for grammar-produced expressions in loop tests.
type fnCandidate struct {
	cost int
	fn   func(p Point) int64
}

func (c *fnCandidate) ID() uintptr        { return uintptr(c.cost) + 1 }
func (c *fnCandidate) Cost() int          { return c.cost }
func (c *fnCandidate) ExpansionType() int { return 0 }
func (c *fnCandidate) Type() SemanticType { return "int" }
func (c *fnCandidate) Eval(p Point) (int64, bool) { return c.fn(p), true }

// fakeEnumerator plays back a fixed cost->candidates table, the way a real
// grammar enumerator would walk productions, without any grammar machinery.
type fakeEnumerator struct {
	byCost map[int][]Candidate
}

func (e *fakeEnumerator) EnumerateOfCost(cost int, exprCb ExprCallback, subCb SubExprCallback) error {
	for _, c := range e.byCost[cost] {
		if exprCb(c) == StatusStopEnumeration {
			return nil
		}
	}
	return nil
}

func (e *fakeEnumerator) Reset() {}

// propertyConstraint carries a validity checker across Instantiate, playing
// the role a rewrite.Rewritten constraint would for the real oracle.
type propertyConstraint struct {
	bound []Candidate
	check func(bound []Candidate) (Verdict, Point)
}

func (c *propertyConstraint) Instantiate(exprs []Candidate) Constraint {
	return &propertyConstraint{bound: exprs, check: c.check}
}

type propertyOracle struct{ queries int }

func (o *propertyOracle) CheckValidity(c Constraint) (Verdict, Point, error) {
	o.queries++
	pc := c.(*propertyConstraint)
	v, p := pc.check(pc.bound)
	return v, p, nil
}

type unknownOracle struct{}

func (unknownOracle) CheckValidity(Constraint) (Verdict, Point, error) {
	return Unknown, nil, nil
}

func trivialJudge(p Point, outputs map[int]int64) (bool, bool) { return true, true }

func TestCEGLoopTrivialConstant(t *testing.T) {
	enum := &fakeEnumerator{byCost: map[int][]Candidate{
		0: {&fnCandidate{cost: 0, fn: func(Point) int64 { return 0 }}},
		1: {&fnCandidate{cost: 1, fn: func(Point) int64 { return 1 }}},
	}}
	oracle := &propertyOracle{}
	constraint := &propertyConstraint{check: func(bound []Candidate) (Verdict, Point) {
		return Valid, nil
	}}

	sig := NewSigStore()
	eval := NewConcreteEvaluator(0, sig, trivialJudge)
	target := NewSynthTarget("f", nil, "int", 1, 0)
	stats := &Stats{}
	guard := newResourceGuard(DefaultConfig())
	loop := NewCEGLoop(sig, eval, enum, oracle, constraint, target, func(c Candidate) UserExpr { return stringExpr("const") }, DefaultConfig(), guard, NopLogger{}, stats)

	bindings, err := loop.Solve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bindings) != 1 {
		t.Fatalf("expected a single binding, got %d", len(bindings))
	}
	if oracle.queries != 1 {
		t.Errorf("expected exactly one oracle query, got %d", oracle.queries)
	}
	if stats.Restarts != 0 {
		t.Errorf("expected zero restarts, got %d", stats.Restarts)
	}
}

type stringExpr string

func (s stringExpr) String() string { return string(s) }

func TestCEGLoopMax2(t *testing.T) {
	xCand := &fnCandidate{cost: 0, fn: func(p Point) int64 { return p["x"] }}
	yCand := &fnCandidate{cost: 1, fn: func(p Point) int64 { return p["y"] }}
	maxCand := &fnCandidate{cost: 2, fn: func(p Point) int64 {
		if p["x"] <= p["y"] {
			return p["y"]
		}
		return p["x"]
	}}
	enum := &fakeEnumerator{byCost: map[int][]Candidate{
		0: {xCand},
		1: {yCand},
		2: {maxCand},
	}}

	domain := []int64{-2, -1, 0, 1, 2}
	checkMax := func(bound []Candidate) (Verdict, Point) {
		c := bound[0]
		for _, x := range domain {
			for _, y := range domain {
				p := Point{"x": x, "y": y}
				v, _ := c.Eval(p)
				if v < x || v < y || (v != x && v != y) {
					return Invalid, p
				}
			}
		}
		return Valid, nil
	}
	constraint := &propertyConstraint{check: checkMax}
	oracle := &propertyOracle{}

	judge := func(p Point, outputs map[int]int64) (bool, bool) {
		v := outputs[0]
		return v >= p["x"] && v >= p["y"] && (v == p["x"] || v == p["y"]), true
	}

	sig := NewSigStore()
	eval := NewConcreteEvaluator(0, sig, judge)
	target := NewSynthTarget("f", nil, "int", 2, 0)
	stats := &Stats{}
	guard := newResourceGuard(DefaultConfig())
	loop := NewCEGLoop(sig, eval, enum, oracle, constraint, target, func(c Candidate) UserExpr { return stringExpr("expr") }, DefaultConfig(), guard, NopLogger{}, stats)

	bindings, err := loop.Solve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bindings) != 1 {
		t.Fatalf("expected a solution")
	}
	if stats.Restarts == 0 {
		t.Error("expected at least one restart before finding max")
	}
}

func TestCEGLoopUnsatUnderBudget(t *testing.T) {
	// No candidate up to cost 1 can ever agree with outputs[0] == x+100, so
	// every restart produces a fresh, previously unseen counterexample and
	// the budget exhausts without a solution.
	enum := &fakeEnumerator{byCost: map[int][]Candidate{
		0: {&fnCandidate{cost: 0, fn: func(Point) int64 { return 0 }}},
		1: {&fnCandidate{cost: 1, fn: func(Point) int64 { return 1 }}},
	}}
	oracle := &propertyOracle{}
	constraint := &propertyConstraint{check: func(bound []Candidate) (Verdict, Point) {
		return Invalid, Point{"x": int64(oracle.queries)}
	}}
	judge := func(p Point, outputs map[int]int64) (bool, bool) {
		return outputs[0] == p["x"]+100, true
	}

	sig := NewSigStore()
	eval := NewConcreteEvaluator(0, sig, judge)
	target := NewSynthTarget("f", nil, "int", 1, 0)
	stats := &Stats{}
	cfg := DefaultConfig()
	cfg.CostBudget = 1
	guard := newResourceGuard(cfg)
	loop := NewCEGLoop(sig, eval, enum, oracle, constraint, target, func(c Candidate) UserExpr { return stringExpr("expr") }, cfg, guard, NopLogger{}, stats)

	bindings, err := loop.Solve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bindings != nil {
		t.Error("expected an unsolvable result (nil bindings) within the cost budget")
	}
	if stats.Restarts > 2 {
		t.Errorf("expected restarts bounded by point-set growth, got %d", stats.Restarts)
	}
}

func TestCEGLoopOracleUnknown(t *testing.T) {
	enum := &fakeEnumerator{byCost: map[int][]Candidate{
		0: {&fnCandidate{cost: 0, fn: func(Point) int64 { return 0 }}},
	}}
	constraint := &propertyConstraint{}

	sig := NewSigStore()
	eval := NewConcreteEvaluator(0, sig, trivialJudge)
	target := NewSynthTarget("f", nil, "int", 1, 0)
	stats := &Stats{}
	guard := newResourceGuard(DefaultConfig())
	loop := NewCEGLoop(sig, eval, enum, unknownOracle{}, constraint, target, func(c Candidate) UserExpr { return stringExpr("expr") }, DefaultConfig(), guard, NopLogger{}, stats)

	_, err := loop.Solve()
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, ErrOracleUnknown) {
		t.Errorf("expected ErrOracleUnknown, got %v", err)
	}
}
