package main

import (
	"github.com/cockroachdb/errors"

	"github.com/esolver/cegis"
	"github.com/esolver/grammar"
	"github.com/esolver/oracle"
	"github.com/esolver/rewrite"
	"github.com/esolver/theory"
)

const bitWidth = 32

// scenario is one of the six named benchmark specs from §8: a
// self-contained constraint plus grammar this binary constructs
// programmatically (this module parses no external specification
// language, per the Non-goals §9).
type scenario struct {
	name string
	run  func(log cegis.Logger) (cegis.Solution, cegis.Stats, error)
}

var scenarios = []scenario{
	{"S1-trivial-constant", s1TrivialConstant},
	{"S2-max2", s2Max2},
	{"S3-pbe-parity", s3PBEParity},
	{"S4-pbe-single-term", s4PBESingleTerm},
	{"S5-unsat-under-budget", s5UnsatUnderBudget},
	{"S6-oracle-unknown", s6OracleUnknown},
}

func findScenario(name string) (scenario, bool) {
	for _, s := range scenarios {
		if s.name == name {
			return s, true
		}
	}
	return scenario{}, false
}

// logCacheStats reports the ExprBuilder's hash-consing cache counters at the
// most verbose logging level (6), through the same cegis.Logger the CEG loop
// uses for restart tracing (level 3, cegis/loop.go).
func logCacheStats(log cegis.Logger, eb *theory.ExprBuilder) {
	s := eb.CacheSnapshot()
	log.Logf(6, "theory: %d cache hits / %d lookups, %d bvs + %d bools cached",
		s.CacheHits, s.CacheLookups, s.CachedBVs, s.CachedBools)
}

// s1TrivialConstant is S1: f(x) = f(x), trivially valid for any candidate,
// so the smallest-cost one (the constant 0) wins with a single oracle
// query.
func s1TrivialConstant(log cegis.Logger) (cegis.Solution, cegis.Stats, error) {
	eb := theory.NewExprBuilder()
	target := cegis.NewSynthTarget("f", nil, "bv32", 1, 0)
	target.SetPosition(0)

	g := grammar.NewBitvectorGrammar(eb, bitWidth, []string{"x"}, []int64{0, 1})
	enum := grammar.NewEnumerator(g)
	client := oracle.NewClient(eb, []string{"x"})

	rw, err := rewrite.Do(rewrite.Spec{
		EB:           eb,
		Width:        bitWidth,
		NumTargets:   1,
		RelevantVars: []string{"x"},
		Build: func(eb *theory.ExprBuilder, bound []*theory.BVExprPtr) (*theory.BoolExprPtr, error) {
			return eb.Eq(bound[0], bound[0])
		},
	})
	if err != nil {
		return nil, cegis.Stats{}, err
	}

	host := cegis.Host{
		Enumerator:    enum,
		Oracle:        client,
		Constraint:    rw.Constraint,
		Targets:       []*cegis.SynthTarget{target},
		ToUserExpr:    grammar.ToUserExpr,
		Logger:        log,
		ConcreteJudge: rw.ConcreteJudge,
	}
	sol, stats, err := cegis.Solve(host, cegis.DefaultConfig())
	logCacheStats(log, eb)
	return sol, stats, err
}

// s2Max2 is S2: f(x,y) >= x && f(x,y) >= y && (f(x,y) == x || f(x,y) == y).
func s2Max2(log cegis.Logger) (cegis.Solution, cegis.Stats, error) {
	eb := theory.NewExprBuilder()
	target := cegis.NewSynthTarget("f", nil, "bv32", 2, 0)
	target.SetPosition(0)

	g := grammar.NewBitvectorGrammar(eb, bitWidth, []string{"x", "y"}, nil)
	enum := grammar.NewEnumerator(g)
	client := oracle.NewClient(eb, []string{"x", "y"})

	x := eb.BVS("x", bitWidth)
	y := eb.BVS("y", bitWidth)
	rw, err := rewrite.Do(rewrite.Spec{
		EB:           eb,
		Width:        bitWidth,
		NumTargets:   1,
		RelevantVars: []string{"x", "y"},
		Build: func(eb *theory.ExprBuilder, bound []*theory.BVExprPtr) (*theory.BoolExprPtr, error) {
			f := bound[0]
			geX, err := eb.SGe(f, x)
			if err != nil {
				return nil, err
			}
			geY, err := eb.SGe(f, y)
			if err != nil {
				return nil, err
			}
			eqX, err := eb.Eq(f, x)
			if err != nil {
				return nil, err
			}
			eqY, err := eb.Eq(f, y)
			if err != nil {
				return nil, err
			}
			either, err := eb.BoolOr(eqX, eqY)
			if err != nil {
				return nil, err
			}
			bounds, err := eb.BoolAnd(geX, geY)
			if err != nil {
				return nil, err
			}
			return eb.BoolAnd(bounds, either)
		},
	})
	if err != nil {
		return nil, cegis.Stats{}, err
	}

	host := cegis.Host{
		Enumerator:    enum,
		Oracle:        client,
		Constraint:    rw.Constraint,
		Targets:       []*cegis.SynthTarget{target},
		ToUserExpr:    grammar.ToUserExpr,
		Logger:        log,
		ConcreteJudge: rw.ConcreteJudge,
	}
	sol, stats, err := cegis.Solve(host, cegis.DefaultConfig())
	logCacheStats(log, eb)
	return sol, stats, err
}

// pbeScenario shares the wiring S3 and S4 need: a grammar enumerator and
// grammar-backed hooks over a fixed set of examples.
func pbeScenario(target *cegis.SynthTarget, examples []cegis.PBEExampleSpec, log cegis.Logger) (cegis.Solution, cegis.Stats, error) {
	eb := theory.NewExprBuilder()
	scratch := grammar.NewScratch(bitWidth)
	g := grammar.NewBitvectorGrammar(eb, bitWidth, []string{"x"}, []int64{0, 1})
	enum := grammar.NewEnumerator(g)

	hooks := cegis.PBEHooks{
		ExampleJudge: func(expected int64) cegis.Judge {
			return func(p cegis.Point, outputs map[int]int64) (bool, bool) {
				return outputs[0] == expected, true
			}
		},
		ToUserExpr: grammar.ToUserExpr,
		BuildITE:   grammar.NewITEBuilder(eb, scratch),
	}

	host := cegis.Host{
		Logger: log,
		PBE: &cegis.PBEHost{
			Target:     target,
			Examples:   examples,
			Enumerator: enum,
			Hooks:      hooks,
			Branch:     cegis.DefaultBranchSemantics{},
		},
	}
	sol, stats, err := cegis.Solve(host, cegis.DefaultConfig())
	logCacheStats(log, eb)
	return sol, stats, err
}

// s3PBEParity is S3: examples separating even from odd inputs.
func s3PBEParity(log cegis.Logger) (cegis.Solution, cegis.Stats, error) {
	target := cegis.NewSynthTarget("f", nil, "bv32", 1, 0)
	target.SetPosition(0)
	examples := []cegis.PBEExampleSpec{
		{Point: cegis.Point{"x": 0}, Expected: 0},
		{Point: cegis.Point{"x": 1}, Expected: 1},
		{Point: cegis.Point{"x": 2}, Expected: 0},
		{Point: cegis.Point{"x": 3}, Expected: 1},
	}
	rw, err := rewrite.Do(rewrite.Spec{
		NumTargets:        1,
		RelevantVars:      []string{"x"},
		ConstRelevantVars: []string{"x"},
		Examples:          examples,
	})
	if err != nil {
		return nil, cegis.Stats{}, err
	}
	if !rw.IsPBE {
		return nil, cegis.Stats{}, errors.Newf("esolver: S3 was expected to rewrite to a PBE shape")
	}
	return pbeScenario(target, rw.Examples, log)
}

// s4PBESingleTerm is S4: every example wants the same constant output.
func s4PBESingleTerm(log cegis.Logger) (cegis.Solution, cegis.Stats, error) {
	target := cegis.NewSynthTarget("f", nil, "bv32", 1, 0)
	target.SetPosition(0)
	examples := []cegis.PBEExampleSpec{
		{Point: cegis.Point{"x": 0}, Expected: 1},
		{Point: cegis.Point{"x": 1}, Expected: 1},
		{Point: cegis.Point{"x": 2}, Expected: 1},
	}
	return pbeScenario(target, examples, log)
}

// s5UnsatUnderBudget is S5: a cost budget of 2 against a constraint no
// cost-2 (or cheaper) expression can satisfy.
func s5UnsatUnderBudget(log cegis.Logger) (cegis.Solution, cegis.Stats, error) {
	eb := theory.NewExprBuilder()
	target := cegis.NewSynthTarget("g", nil, "bv32", 1, 0)
	target.SetPosition(0)

	g := grammar.NewBitvectorGrammar(eb, bitWidth, []string{"x"}, []int64{1})
	enum := grammar.NewEnumerator(g)
	client := oracle.NewClient(eb, []string{"x"})

	x := eb.BVS("x", bitWidth)
	rw, err := rewrite.Do(rewrite.Spec{
		EB:           eb,
		Width:        bitWidth,
		NumTargets:   1,
		RelevantVars: []string{"x"},
		Build: func(eb *theory.ExprBuilder, bound []*theory.BVExprPtr) (*theory.BoolExprPtr, error) {
			// The grammar's only constant is 1, so the factor 5 has to be
			// built up out of 1s and x; no candidate of cost 2 or less
			// equals x*5 + 1 for every x.
			five, err := eb.Mul(x, eb.BVV(5, bitWidth))
			if err != nil {
				return nil, err
			}
			target, err := eb.Add(five, eb.BVV(1, bitWidth))
			if err != nil {
				return nil, err
			}
			return eb.Eq(bound[0], target)
		},
	})
	if err != nil {
		return nil, cegis.Stats{}, err
	}

	cfg := cegis.DefaultConfig()
	cfg.CostBudget = 2
	host := cegis.Host{
		Enumerator:    enum,
		Oracle:        client,
		Constraint:    rw.Constraint,
		Targets:       []*cegis.SynthTarget{target},
		ToUserExpr:    grammar.ToUserExpr,
		Logger:        log,
		ConcreteJudge: rw.ConcreteJudge,
	}
	sol, stats, err := cegis.Solve(host, cfg)
	logCacheStats(log, eb)
	return sol, stats, err
}

// stubUnknownOracle always reports Unknown, standing in for a decision
// procedure that gave up (§8 S6).
type stubUnknownOracle struct{}

func (stubUnknownOracle) CheckValidity(cegis.Constraint) (cegis.Verdict, cegis.Point, error) {
	return cegis.Unknown, nil, nil
}

// s6OracleUnknown is S6: the oracle itself cannot decide, so the solve must
// abort with ErrOracleUnknown rather than loop forever.
func s6OracleUnknown(log cegis.Logger) (cegis.Solution, cegis.Stats, error) {
	eb := theory.NewExprBuilder()
	target := cegis.NewSynthTarget("f", nil, "bv32", 1, 0)
	target.SetPosition(0)

	g := grammar.NewBitvectorGrammar(eb, bitWidth, []string{"x"}, []int64{0})
	enum := grammar.NewEnumerator(g)

	rw, err := rewrite.Do(rewrite.Spec{
		EB:           eb,
		Width:        bitWidth,
		NumTargets:   1,
		RelevantVars: []string{"x"},
		Build: func(eb *theory.ExprBuilder, bound []*theory.BVExprPtr) (*theory.BoolExprPtr, error) {
			return eb.Eq(bound[0], bound[0])
		},
	})
	if err != nil {
		return nil, cegis.Stats{}, err
	}

	host := cegis.Host{
		Enumerator:    enum,
		Oracle:        stubUnknownOracle{},
		Constraint:    rw.Constraint,
		Targets:       []*cegis.SynthTarget{target},
		ToUserExpr:    grammar.ToUserExpr,
		Logger:        log,
		ConcreteJudge: rw.ConcreteJudge,
	}
	sol, stats, err := cegis.Solve(host, cegis.DefaultConfig())
	logCacheStats(log, eb)
	return sol, stats, err
}
