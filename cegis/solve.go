package cegis

// Host bundles every collaborator the core needs from the grammar, spec
// rewriting, and oracle packages (§6 Inputs). The core type-asserts nothing
// here; it only calls the interfaces.
type Host struct {
	Enumerator      EnumeratorDriver
	TupleEnumerator TupleEnumeratorDriver
	Oracle          OracleClient
	Constraint      Constraint
	Targets         []*SynthTarget
	ToUserExpr      func(Candidate) UserExpr
	Logger          Logger

	// ConcreteJudge decides, for a point and the concrete outputs of the
	// candidates currently bound to Targets, whether Constraint itself
	// holds (§4.2): the CEG loop's pre-oracle pruning pass. Required
	// whenever PBE is nil — Solve rejects a Host that leaves it unset with
	// ErrInternalInvariant before any enumeration starts.
	ConcreteJudge Judge

	// PBE is non-nil when the host wants example-driven synthesis instead
	// of the CEG loop (§4.6). Mutually exclusive with driving Solve's
	// ordinary path: a Host either carries PBE or the enumerator/oracle
	// pair above, never both meaningfully.
	PBE *PBEHost
}

// PBEHost bundles the collaborators PBEController needs plus the grammar
// enumerator used to search both term expressions and separating
// predicates.
type PBEHost struct {
	Target     *SynthTarget
	Examples   []PBEExampleSpec
	Enumerator EnumeratorDriver
	Hooks      PBEHooks
	Branch     BranchSemantics
}

// Solve is the single entry point (§6 External Interfaces). It wires a
// SigStore, one or more ConcreteEvaluators, and either a CEGLoop or a
// PBEController, then tears every piece down on every exit path — solved,
// unsolvable, or error — so a long-lived process driving many solves never
// leaks interned signatures across them.
func Solve(host Host, cfg Config) (Solution, Stats, error) {
	logger := host.Logger
	if logger == nil {
		logger = NopLogger{}
	}

	sig := NewSigStore()
	guard := newResourceGuard(cfg)
	stats := &Stats{}

	sol, err := solveInner(host, cfg, sig, guard, logger, stats)

	stats.WallTime = guard.elapsed()
	stats.PeakMemoryMB = guard.peakMemoryMB()
	return sol, *stats, err
}

func solveInner(host Host, cfg Config, sig *SigStore, guard *resourceGuard, logger Logger, stats *Stats) (Solution, error) {
	if host.PBE != nil {
		return solvePBE(sig, guard, logger, stats, cfg, host.PBE)
	}

	if host.ConcreteJudge == nil {
		return nil, wrapf(ErrInternalInvariant, "Host.ConcreteJudge must be set for the CEG loop path")
	}

	eval := NewConcreteEvaluator(0, sig, host.ConcreteJudge)
	defer sig.Forget(eval.ID())

	var loop *CEGLoop
	if len(host.Targets) > 1 {
		loop = NewTupleCEGLoop(sig, eval, host.TupleEnumerator, host.Oracle, host.Constraint, host.Targets, host.ToUserExpr, cfg, guard, logger, stats)
	} else {
		loop = NewCEGLoop(sig, eval, host.Enumerator, host.Oracle, host.Constraint, host.Targets[0], host.ToUserExpr, cfg, guard, logger, stats)
	}

	bindings, err := loop.Solve()
	if err != nil {
		return nil, err
	}
	if bindings == nil {
		return nil, nil
	}
	return Solution{bindings}, nil
}

func solvePBE(sig *SigStore, guard *resourceGuard, logger Logger, stats *Stats, cfg Config, h *PBEHost) (Solution, error) {
	ctl := NewPBEController(1000, sig, h.Examples, h.Hooks, h.Branch)
	defer func() {
		for i := 0; i < ctl.NumExamples(); i++ {
			sig.Forget(ctl.evals[i].ID())
		}
	}()

	for cost := 0; cfg.CostBudget <= 0 || cost <= cfg.CostBudget; cost++ {
		if err := guard.check(); err != nil {
			return nil, err
		}
		if ctl.TermExprsDone() {
			break
		}

		stop := false
		var cbErr error
		walkErr := h.Enumerator.EnumerateOfCost(cost, func(candidate Candidate) CallbackStatus {
			if cbErr = guard.check(); cbErr != nil {
				return StatusStopEnumeration
			}
			stats.ExpressionsTried++
			if ctl.ConsiderTermExpr(candidate) {
				stop = true
				return StatusStopEnumeration
			}
			return StatusNone
		}, func(Candidate) CallbackStatus { return StatusNone })
		if walkErr != nil {
			return nil, walkErr
		}
		if cbErr != nil {
			return nil, cbErr
		}
		if stop {
			ctl.AdvanceTermExpr()
			h.Enumerator.Reset()
			cost = -1 // restart the per-terminal search at cost 0 for the next example
		}
	}
	if !ctl.TermExprsDone() {
		return nil, nil
	}

	if sole, ok := ctl.SingleTermSolution(); ok {
		stats.SolutionSize = 0
		return Solution{{{Target: h.Target, Expr: sole}}}, nil
	}

	ctl.BeginDecisionTree()
	for cost := 0; cfg.CostBudget <= 0 || cost <= cfg.CostBudget; cost++ {
		if err := guard.check(); err != nil {
			return nil, err
		}
		if ctl.DecisionTreeDone() {
			break
		}

		open, next, ok := ctl.PendingPredicatePair()
		if !ok {
			break
		}

		found := false
		var cbErr error
		walkErr := h.Enumerator.EnumerateOfCost(cost, func(candidate Candidate) CallbackStatus {
			if cbErr = guard.check(); cbErr != nil {
				return StatusStopEnumeration
			}
			stats.ExpressionsTried++
			ov, ook := candidate.Eval(onlyPoint(open))
			nv, nok := candidate.Eval(onlyPoint(next))
			if !ook || !nok {
				return StatusNone
			}
			if ctl.ConsiderPredicate(candidate, ov, nv) {
				found = true
				return StatusStopEnumeration
			}
			return StatusNone
		}, func(Candidate) CallbackStatus { return StatusNone })
		if walkErr != nil {
			return nil, walkErr
		}
		if cbErr != nil {
			return nil, cbErr
		}
		if found {
			h.Enumerator.Reset()
			cost = -1
		}
	}
	if !ctl.DecisionTreeDone() {
		return nil, nil
	}

	tree, err := ctl.TreeSolution()
	if err != nil {
		return nil, err
	}
	_ = logger
	stats.SolutionSize = 0
	return Solution{{{Target: h.Target, Expr: tree}}}, nil
}

// onlyPoint extracts the single point a PBE per-example evaluator holds,
// panicking if the invariant that every PBE evaluator carries exactly one
// point (§4.6) was violated by construction elsewhere.
func onlyPoint(e *ConcreteEvaluator) Point {
	if e.NumPoints() != 1 {
		panic("cegis: PBE evaluator must carry exactly one point")
	}
	return e.points[0]
}
