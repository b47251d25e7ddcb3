package cegis

// ConcreteEvaluator evaluates candidates against an accumulated point set
// and reports validity and distinguishability (§4.2). It owns no knowledge
// of the background theory or the grammar: it drives Candidate.Eval and a
// host-supplied Judge, and only touches a shared SigStore for interning.
type ConcreteEvaluator struct {
	id     EvaluatorID
	sig    *SigStore
	points []Point
	judge  Judge

	lastSubValue    int64
	hasLastSubValue bool
}

// NewConcreteEvaluator constructs an evaluator with zero points. judge
// decides, for a point and the concrete outputs of the candidates under
// test, whether the rewritten constraint holds.
func NewConcreteEvaluator(id EvaluatorID, sig *SigStore, judge Judge) *ConcreteEvaluator {
	return &ConcreteEvaluator{id: id, sig: sig, judge: judge}
}

func (e *ConcreteEvaluator) ID() EvaluatorID { return e.id }

func (e *ConcreteEvaluator) NumPoints() int { return len(e.points) }

// AddPoint appends p to the point set. Adding a point equal to one already
// present is a no-op: duplicate counter-examples are idempotent (§8
// property 6).
func (e *ConcreteEvaluator) AddPoint(p Point) {
	for _, q := range e.points {
		if pointEqual(p, q) {
			return
		}
	}
	e.points = append(e.points, p)
}

func pointEqual(a, b Point) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// CheckConcreteValidity evaluates candidates (one per SynthTarget position,
// in position order) on every point, short-circuiting at the first failing
// or undefined point per §4.2's "lazy per-point evaluation" policy.
func (e *ConcreteEvaluator) CheckConcreteValidity(candidates []Candidate) (valid bool, flags EvalFlags) {
	sig := make(Signature, 0, len(e.points))
	partial := false
	valid = true

	for _, p := range e.points {
		outputs := make(map[int]int64, len(candidates))
		defined := true
		for i, c := range candidates {
			v, ok := c.Eval(p)
			if !ok {
				defined = false
				break
			}
			outputs[i] = v
			sig = append(sig, v)
		}

		var holds bool
		if defined {
			holds, defined = e.judge(p, outputs)
		}
		if !defined || !holds {
			partial = true
			valid = false
			break
		}
	}

	class := e.sig.Classify(e.id, sig, partial)
	if class == Fresh {
		flags |= FlagDist
	}
	if partial {
		flags |= FlagPart
	}
	return valid, flags
}

// CheckSubExpression classifies a sub-expression by its own concrete value
// vector over the point set, used by PBE predicate search and general
// sub-expression pruning. It also records the last evaluated value,
// retrievable via LastSubExprValue — the "sub-expression evaluation point"
// of §4.2.
func (e *ConcreteEvaluator) CheckSubExpression(candidate Candidate) (distinguishable bool, flags EvalFlags) {
	sig := make(Signature, 0, len(e.points))
	partial := false

	for _, p := range e.points {
		v, ok := candidate.Eval(p)
		if !ok {
			partial = true
			break
		}
		sig = append(sig, v)
		e.lastSubValue = v
		e.hasLastSubValue = true
	}

	class := e.sig.Classify(e.id, sig, partial)
	if partial {
		flags |= FlagPart
	}
	if class == Fresh {
		flags |= FlagDist
		return true, flags
	}
	return false, flags
}

// LastSubExprValue returns the most recent value recorded by
// CheckSubExpression for this evaluator.
func (e *ConcreteEvaluator) LastSubExprValue() (int64, bool) {
	return e.lastSubValue, e.hasLastSubValue
}

// CheckExampleValidity is the PBE-only advisory check: does candidate
// satisfy every point this evaluator holds under judge? It never touches
// the SigStore — validation against examples is advisory, not part of the
// pruning discipline (§4.7 Failure semantics).
func (e *ConcreteEvaluator) CheckExampleValidity(candidate Candidate) bool {
	for _, p := range e.points {
		v, ok := candidate.Eval(p)
		if !ok {
			return false
		}
		holds, ok := e.judge(p, map[int]int64{0: v})
		if !ok || !holds {
			return false
		}
	}
	return true
}
