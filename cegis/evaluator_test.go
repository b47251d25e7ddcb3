package cegis

import "testing"

// constCandidate is a minimal Candidate test double: a fixed value at every
// point, with an optional set of points where evaluation is undefined.
type constCandidate struct {
	value     int64
	cost      int
	undefined map[string]bool
}

func (c *constCandidate) ID() uintptr        { return uintptr(c.value) + 1 }
func (c *constCandidate) Cost() int          { return c.cost }
func (c *constCandidate) ExpansionType() int { return 0 }
func (c *constCandidate) Type() SemanticType { return "int" }
func (c *constCandidate) Eval(p Point) (int64, bool) {
	if c.undefined != nil {
		for k := range p {
			if c.undefined[k] {
				return 0, false
			}
		}
	}
	return c.value, true
}

func eqJudge(expected int64) Judge {
	return func(p Point, outputs map[int]int64) (bool, bool) {
		return outputs[0] == expected, true
	}
}

func TestConcreteEvaluatorValidOnAllPoints(t *testing.T) {
	sig := NewSigStore()
	e := NewConcreteEvaluator(1, sig, eqJudge(5))
	e.AddPoint(Point{"x": 1})
	e.AddPoint(Point{"x": 2})

	valid, flags := e.CheckConcreteValidity([]Candidate{&constCandidate{value: 5}})
	if !valid {
		t.Error("expected validity to hold on every point")
	}
	if flags&FlagDist == 0 {
		t.Error("a never-before-seen signature should be distinguishable")
	}
	if flags&FlagPart != 0 {
		t.Error("a fully valid signature should not be marked partial")
	}
}

func TestConcreteEvaluatorShortCircuitsOnFailure(t *testing.T) {
	sig := NewSigStore()
	e := NewConcreteEvaluator(1, sig, eqJudge(5))
	e.AddPoint(Point{"x": 1})
	e.AddPoint(Point{"x": 2})
	e.AddPoint(Point{"x": 3})

	valid, flags := e.CheckConcreteValidity([]Candidate{&constCandidate{value: 6}})
	if valid {
		t.Error("expected validity to fail")
	}
	if flags&FlagPart == 0 {
		t.Error("a short-circuited signature should be marked partial")
	}
}

func TestConcreteEvaluatorAddPointIdempotent(t *testing.T) {
	sig := NewSigStore()
	e := NewConcreteEvaluator(1, sig, eqJudge(5))
	e.AddPoint(Point{"x": 1})
	e.AddPoint(Point{"x": 1})
	if e.NumPoints() != 1 {
		t.Errorf("expected 1 point, got %d", e.NumPoints())
	}
}

func TestConcreteEvaluatorDuplicateSignatureNotDistinguishable(t *testing.T) {
	sig := NewSigStore()
	e := NewConcreteEvaluator(1, sig, eqJudge(5))
	e.AddPoint(Point{"x": 1})

	_, flags1 := e.CheckConcreteValidity([]Candidate{&constCandidate{value: 5}})
	_, flags2 := e.CheckConcreteValidity([]Candidate{&constCandidate{value: 5, cost: 9}})
	if flags1&FlagDist == 0 {
		t.Error("first candidate with this signature should be distinguishable")
	}
	if flags2&FlagDist != 0 {
		t.Error("second candidate with the same concrete signature should not be distinguishable")
	}
}

// TestConcreteEvaluatorSignatureReflectsValues guards against a signature
// built from the judge's pass/fail verdict rather than the candidates' own
// evaluated values: two distinct valid candidates must not collapse into
// the same signature just because both satisfy the judge.
func TestConcreteEvaluatorSignatureReflectsValues(t *testing.T) {
	sig := NewSigStore()
	alwaysHolds := func(Point, map[int]int64) (bool, bool) { return true, true }
	e := NewConcreteEvaluator(1, sig, alwaysHolds)
	e.AddPoint(Point{"x": 1})

	_, flags1 := e.CheckConcreteValidity([]Candidate{&constCandidate{value: 5}})
	_, flags2 := e.CheckConcreteValidity([]Candidate{&constCandidate{value: 9}})
	if flags1&FlagDist == 0 {
		t.Error("first candidate should be distinguishable")
	}
	if flags2&FlagDist == 0 {
		t.Error("a differently-valued candidate must not collapse into the first one's signature")
	}
}

func TestConcreteEvaluatorCheckExampleValidity(t *testing.T) {
	sig := NewSigStore()
	e := NewConcreteEvaluator(1, sig, nil)
	e.judge = func(p Point, outputs map[int]int64) (bool, bool) {
		return outputs[0] == p["expected"], true
	}
	e.AddPoint(Point{"expected": 7})

	if !e.CheckExampleValidity(&constCandidate{value: 7}) {
		t.Error("expected example validity to hold")
	}
	if e.CheckExampleValidity(&constCandidate{value: 8}) {
		t.Error("expected example validity to fail")
	}
}
