package cegis

// CEGLoop is the counter-example guided loop itself (§4.5), the only
// component this module exists to specify. It owns one ConcreteEvaluator
// keyed to the constraint's free variables, drives a host-supplied
// enumerator by increasing cost, and consults an OracleClient every time a
// candidate (or tuple of candidates, for joint multi-function synthesis)
// survives concrete validity against every point gathered so far.
//
// A single CEGLoop instance is single-shot: construct one per Solve call.
type CEGLoop struct {
	sig        *SigStore
	eval       *ConcreteEvaluator
	enum       EnumeratorDriver
	tupleEnum  TupleEnumeratorDriver
	oracle     OracleClient
	constraint Constraint
	targets    []*SynthTarget
	toUser     func(Candidate) UserExpr
	cfg        Config
	guard      *resourceGuard
	logger     Logger
	stats      *Stats

	// solution/restart/err are set by callbacks and read once
	// EnumerateOfCost/EnumerateTuplesOfCost returns.
	solution []TargetBinding
	solved   bool
	restart  bool
	err      error
}

// NewCEGLoop constructs a single-function loop (§4.5's ordinary variant).
func NewCEGLoop(sig *SigStore, eval *ConcreteEvaluator, enum EnumeratorDriver, oracle OracleClient, constraint Constraint, target *SynthTarget, toUser func(Candidate) UserExpr, cfg Config, guard *resourceGuard, logger Logger, stats *Stats) *CEGLoop {
	return &CEGLoop{
		sig:        sig,
		eval:       eval,
		enum:       enum,
		oracle:     oracle,
		constraint: constraint,
		targets:    []*SynthTarget{target},
		toUser:     toUser,
		cfg:        cfg,
		guard:      guard,
		logger:     logger,
		stats:      stats,
	}
}

// NewTupleCEGLoop constructs the multi-function variant, which jointly
// enumerates one candidate per target and never restarts enumeration on a
// counter-example: the tuple walk simply keeps going with the enlarged
// point set (§4.5 "Multi-function variant").
func NewTupleCEGLoop(sig *SigStore, eval *ConcreteEvaluator, tupleEnum TupleEnumeratorDriver, oracle OracleClient, constraint Constraint, targets []*SynthTarget, toUser func(Candidate) UserExpr, cfg Config, guard *resourceGuard, logger Logger, stats *Stats) *CEGLoop {
	return &CEGLoop{
		sig:        sig,
		eval:       eval,
		tupleEnum:  tupleEnum,
		oracle:     oracle,
		constraint: constraint,
		targets:    targets,
		toUser:     toUser,
		cfg:        cfg,
		guard:      guard,
		logger:     logger,
		stats:      stats,
	}
}

// Solve drives the loop to completion: a solution, an explicit Unsolvable
// (empty Solution, nil error) once the cost budget is exhausted, or a fatal
// error (§7).
func (l *CEGLoop) Solve() ([]TargetBinding, error) {
	multi := len(l.targets) > 1

	for cost := 0; l.cfg.CostBudget <= 0 || cost <= l.cfg.CostBudget; {
		if err := l.guard.check(); err != nil {
			return nil, err
		}

		l.solved, l.restart, l.err = false, false, nil

		var walkErr error
		if multi {
			walkErr = l.tupleEnum.EnumerateTuplesOfCost(cost, l.tupleCallback)
		} else {
			walkErr = l.enum.EnumerateOfCost(cost, l.exprCallback, l.subCallback)
		}
		if walkErr != nil {
			return nil, walkErr
		}
		if l.err != nil {
			return nil, l.err
		}
		if l.solved {
			l.stats.SolutionSize = cost
			return l.solution, nil
		}
		if l.restart {
			l.logger.Logf(3, "cegis: counter-example found at cost %d, restarting enumeration", cost)
			if !multi {
				l.enum.Reset()
				cost = 0
				continue
			}
			// multi-function: keep walking the same cost rather than
			// restarting from scratch.
		}
		cost++
	}
	return nil, nil
}

func (l *CEGLoop) exprCallback(candidate Candidate) CallbackStatus {
	if err := l.guard.check(); err != nil {
		l.err = err
		return StatusStopEnumeration
	}
	l.stats.ExpressionsTried++

	valid, flags := l.eval.CheckConcreteValidity([]Candidate{candidate})
	if flags&FlagDist != 0 {
		l.stats.DistinguishableCnt++
	}
	if !valid {
		// Only an indistinguishable-and-invalid candidate is dead weight:
		// it can neither solve the constraint itself nor help build a
		// larger expression the store hasn't already seen the shape of
		// (§4.5 step 3). A distinguishable-but-invalid candidate is kept
		// as a building block.
		if !l.cfg.NoDist && flags&FlagDist == 0 {
			return StatusDeleteExpression
		}
		return StatusNone
	}

	return l.checkOracleTuple([]Candidate{candidate})
}

func (l *CEGLoop) subCallback(candidate Candidate) CallbackStatus {
	if err := l.guard.check(); err != nil {
		l.err = err
		return StatusStopEnumeration
	}
	if l.cfg.NoDist {
		return StatusNone
	}
	distinguishable, _ := l.eval.CheckSubExpression(candidate)
	if !distinguishable {
		return StatusDeleteExpression
	}
	return StatusNone
}

func (l *CEGLoop) tupleCallback(candidates []Candidate) CallbackStatus {
	if err := l.guard.check(); err != nil {
		l.err = err
		return StatusStopEnumeration
	}
	l.stats.ExpressionsTried++

	valid, flags := l.eval.CheckConcreteValidity(candidates)
	if flags&FlagDist != 0 {
		l.stats.DistinguishableCnt++
	}
	if !valid {
		if !l.cfg.NoDist && flags&FlagDist == 0 {
			return StatusDeleteExpression
		}
		return StatusNone
	}

	return l.checkOracleTuple(candidates)
}

func (l *CEGLoop) checkOracleTuple(candidates []Candidate) CallbackStatus {
	ground := l.constraint.Instantiate(candidates)
	verdict, cex, err := l.oracle.CheckValidity(ground)
	if err != nil {
		l.err = err
		return StatusStopEnumeration
	}

	switch verdict {
	case Valid:
		l.solution = make([]TargetBinding, len(l.targets))
		for i, t := range l.targets {
			l.solution[i] = TargetBinding{Target: t, Expr: l.toUser(candidates[i])}
		}
		l.solved = true
		return StatusStopEnumeration

	case Invalid:
		l.eval.AddPoint(cex)
		l.sig.Reset(l.eval.ID())
		if l.cfg.NoDist && len(l.targets) == 1 {
			// NoDist: absorb the counter-example and keep walking this
			// cost without restarting enumeration.
			return StatusNone
		}
		l.restart = true
		l.stats.Restarts++
		if len(l.targets) > 1 {
			// multi-function: absorb the counter-example and keep walking
			// this cost instead of stopping the tuple enumeration.
			return StatusNone
		}
		return StatusStopEnumeration

	default:
		l.err = wrapf(ErrOracleUnknown, "oracle could not decide validity")
		return StatusStopEnumeration
	}
}
