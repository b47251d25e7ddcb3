package cegis

import "testing"

// pbeEnumerator plays back a fixed cost->candidates table and also answers
// EnumerateOfCost calls used during both the term-expression search and the
// decision-tree predicate search, the way the real grammar enumerator would
// serve both phases of PBEController.
type pbeEnumerator struct {
	byCost map[int][]Candidate
}

func (e *pbeEnumerator) EnumerateOfCost(cost int, exprCb ExprCallback, subCb SubExprCallback) error {
	for _, c := range e.byCost[cost] {
		if exprCb(c) == StatusStopEnumeration {
			return nil
		}
	}
	return nil
}

func (e *pbeEnumerator) Reset() {}

// evalCandidate is a Candidate whose own Eval is also usable, after the
// fact, as the semantics of a materialized UserExpr — letting PBE tests
// check what a synthesized tree computes rather than how it is printed.
type evalCandidate struct {
	cost int
	name string
	eval func(p Point) int64
}

func (c *evalCandidate) ID() uintptr               { return uintptr(len(c.name)) + uintptr(c.cost) + 1 }
func (c *evalCandidate) Cost() int                 { return c.cost }
func (c *evalCandidate) ExpansionType() int        { return 0 }
func (c *evalCandidate) Type() SemanticType        { return "int" }
func (c *evalCandidate) Eval(p Point) (int64, bool) { return c.eval(p), true }

// pbeUserExpr is the UserExpr materialized from a chosen candidate or from
// an assembled if-then-else: it remembers both a display name and how to
// evaluate itself, so GetTreeExpr's output can be exercised directly.
type pbeUserExpr struct {
	name string
	eval func(p Point) int64
}

func (e pbeUserExpr) String() string { return e.name }

func pbeHooksForTest() PBEHooks {
	return PBEHooks{
		ExampleJudge: func(expected int64) Judge {
			return func(p Point, outputs map[int]int64) (bool, bool) {
				return outputs[0] == expected, true
			}
		},
		ToUserExpr: func(c Candidate) UserExpr {
			ec := c.(*evalCandidate)
			return pbeUserExpr{name: ec.name, eval: ec.eval}
		},
		BuildITE: func(pred, then, els UserExpr) UserExpr {
			p, t, e := pred.(pbeUserExpr), then.(pbeUserExpr), els.(pbeUserExpr)
			return pbeUserExpr{
				name: "if " + p.name + " then " + t.name + " else " + e.name,
				eval: func(pt Point) int64 {
					if (DefaultBranchSemantics{}).Taken(p.eval(pt)) {
						return t.eval(pt)
					}
					return e.eval(pt)
				},
			}
		},
	}
}

func TestSolvePBEDegeneratesToSingleTerm(t *testing.T) {
	examples := []PBEExampleSpec{
		{Point: Point{"x": 0}, Expected: 42},
		{Point: Point{"x": 1}, Expected: 42},
		{Point: Point{"x": 2}, Expected: 42},
	}
	constCand := &evalCandidate{cost: 0, name: "42", eval: func(Point) int64 { return 42 }}
	enum := &pbeEnumerator{byCost: map[int][]Candidate{0: {constCand}}}

	host := Host{PBE: &PBEHost{
		Target:     NewSynthTarget("f", nil, "int", 1, 0),
		Examples:   examples,
		Enumerator: enum,
		Hooks:      pbeHooksForTest(),
	}}

	sol, _, err := Solve(host, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.Empty() {
		t.Fatal("expected a solution")
	}
	if sol[0][0].Expr.String() != "42" {
		t.Errorf("got %q", sol[0][0].Expr.String())
	}
}

func TestSolvePBEParityDecisionTree(t *testing.T) {
	examples := []PBEExampleSpec{
		{Point: Point{"x": 0}, Expected: 0},
		{Point: Point{"x": 1}, Expected: 1},
		{Point: Point{"x": 2}, Expected: 0},
		{Point: Point{"x": 3}, Expected: 1},
	}
	zero := &evalCandidate{cost: 0, name: "0", eval: func(Point) int64 { return 0 }}
	one := &evalCandidate{cost: 1, name: "1", eval: func(Point) int64 { return 1 }}
	isOdd := &evalCandidate{cost: 2, name: "x%2", eval: func(p Point) int64 { return p["x"] % 2 }}

	enum := &pbeEnumerator{byCost: map[int][]Candidate{
		0: {zero},
		1: {one},
		2: {isOdd},
	}}

	host := Host{PBE: &PBEHost{
		Target:     NewSynthTarget("f", nil, "int", 1, 0),
		Examples:   examples,
		Enumerator: enum,
		Hooks:      pbeHooksForTest(),
	}}

	sol, _, err := Solve(host, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.Empty() {
		t.Fatal("expected a decision-tree solution")
	}

	tree := sol[0][0].Expr.(pbeUserExpr)
	for _, ex := range examples {
		if got := tree.eval(ex.Point); got != ex.Expected {
			t.Errorf("at %v: got %d, want %d", ex.Point, got, ex.Expected)
		}
	}
}
