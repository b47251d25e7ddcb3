package cegis

// PBEExampleSpec is one input/output example the host has already rewritten
// into a Point and an expected output value (§4.6). Examples are plain data
// here; the core never inspects how they were parsed out of a constraint.
type PBEExampleSpec struct {
	Point    Point
	Expected int64
}

// PBEHooks are the host-supplied operations PBEController cannot perform
// itself: building a Judge closure for a single example, turning a Candidate
// into an owned UserExpr, and assembling an if-then-else UserExpr for a
// decision node.
type PBEHooks struct {
	// ExampleJudge returns a Judge that compares a single candidate's
	// output against expected, used to seed a per-example
	// ConcreteEvaluator.
	ExampleJudge func(expected int64) Judge
	ToUserExpr   func(c Candidate) UserExpr
	BuildITE     func(pred, then, els UserExpr) UserExpr
}

// PBEController implements the programming-by-example sibling of the CEG
// loop (§4.6): find one term expression per maximal group of examples it
// satisfies, then — if more than one terminal is needed — hand the
// per-example evaluators to a DecisionTreeBuilder to assemble a predicate
// tree distinguishing them.
type PBEController struct {
	evalID EvaluatorID
	sig    *SigStore
	hooks  PBEHooks
	branch BranchSemantics

	evals     []*ConcreteEvaluator
	termIdx   []int // -1 until resolved, parallel to evals
	termExprs []UserExpr

	// current is the index of the evaluator BuildTermExprs is currently
	// searching a terminal for.
	current int

	dtree *DecisionTreeBuilder
}

// NewPBEController builds a controller over examples, each becoming its own
// ConcreteEvaluator with a single point. evalID is the base id; evaluators
// are assigned evalID, evalID+1, ... so the host can still address them
// individually for diagnostics.
func NewPBEController(evalID EvaluatorID, sig *SigStore, examples []PBEExampleSpec, hooks PBEHooks, branch BranchSemantics) *PBEController {
	evals := make([]*ConcreteEvaluator, len(examples))
	termIdx := make([]int, len(examples))
	for i, ex := range examples {
		id := evalID + EvaluatorID(i)
		e := NewConcreteEvaluator(id, sig, hooks.ExampleJudge(ex.Expected))
		e.AddPoint(ex.Point)
		evals[i] = e
		termIdx[i] = -1
	}
	return &PBEController{
		evalID:  evalID,
		sig:     sig,
		hooks:   hooks,
		branch:  branch,
		evals:   evals,
		termIdx: termIdx,
		current: 0,
		dtree:   NewDecisionTreeBuilder(branch),
	}
}

func (c *PBEController) NumExamples() int { return len(c.evals) }

// TermExprsDone reports whether every example has a resolved terminal.
func (c *PBEController) TermExprsDone() bool { return c.current >= len(c.evals) }

// CurrentEvaluator is the evaluator BuildTermExprs is currently resolving.
func (c *PBEController) CurrentEvaluator() *ConcreteEvaluator {
	if c.TermExprsDone() {
		return nil
	}
	return c.evals[c.current]
}

// ConsiderTermExpr is the BuildTermExprs-phase callback (§4.6 step 1): the
// host offers a full candidate for the current evaluator's target. If it
// satisfies the current evaluator, it becomes the new terminal and every
// later still-unresolved example is probed against it too (duplicates).
// Returns true once a terminal was accepted, at which point the caller
// should stop enumerating this cost and call AdvanceTermExpr.
func (c *PBEController) ConsiderTermExpr(candidate Candidate) bool {
	if c.TermExprsDone() {
		return false
	}
	cur := c.evals[c.current]
	if !cur.CheckExampleValidity(candidate) {
		return false
	}

	idx := len(c.termExprs)
	c.termExprs = append(c.termExprs, c.hooks.ToUserExpr(candidate))
	c.termIdx[c.current] = idx

	for j := c.current + 1; j < len(c.evals); j++ {
		if c.termIdx[j] != -1 {
			continue
		}
		if c.evals[j].CheckExampleValidity(candidate) {
			c.termIdx[j] = idx
		}
	}
	return true
}

// AdvanceTermExpr moves current to the next still-unresolved example,
// called once ConsiderTermExpr accepts a terminal. It returns false when
// every example is resolved.
func (c *PBEController) AdvanceTermExpr() bool {
	for c.current < len(c.evals) && c.termIdx[c.current] != -1 {
		c.current++
	}
	return !c.TermExprsDone()
}

// DistinctTermCount is the number of distinct terminals discovered so far.
func (c *PBEController) DistinctTermCount() int { return len(c.termExprs) }

// SingleTermSolution returns the lone terminal once BuildTermExprs resolved
// every example to the same expression — the §4.6 fast path that skips
// decision-tree assembly entirely.
func (c *PBEController) SingleTermSolution() (UserExpr, bool) {
	if !c.TermExprsDone() || len(c.termExprs) != 1 {
		return nil, false
	}
	return c.termExprs[0], true
}

// BeginDecisionTree seeds the tree builder once BuildTermExprs has resolved
// every example to one of possibly several terminals.
func (c *PBEController) BeginDecisionTree() {
	leaves := make([]PBELeaf, len(c.evals))
	for i, e := range c.evals {
		leaves[i] = PBELeaf{Eval: e, TermIdx: c.termIdx[i], TermExpr: c.termExprs[c.termIdx[i]]}
	}
	c.dtree.Reset(leaves)
}

func (c *PBEController) DecisionTreeDone() bool { return c.dtree.IsComplete() }

// PendingPredicatePair returns the two evaluators the predicate search
// should currently distinguish. Pending pairs whose leaves share a terminal
// are collapsed into shared leaves on the way; ok=false once the tree is
// complete.
func (c *PBEController) PendingPredicatePair() (open, next *ConcreteEvaluator, ok bool) {
	open, next, ok = c.dtree.LocateNextEvalNode()
	if !ok {
		return nil, nil, false
	}
	o, n, _ := c.dtree.CurrentPair()
	if o.TermIdx == n.TermIdx {
		_ = c.dtree.InsertSharedDecisionNode()
		return c.PendingPredicatePair()
	}
	return open, next, true
}

// ConsiderPredicate is the BuildDecisionTree-phase callback (§4.7): the host
// offers a candidate predicate for the current pending pair. openVal and
// nextVal must be the predicate's value at the "open" evaluator's point and
// at the "next" evaluator's point respectively — exactly one must equal the taken
// value, otherwise the predicate does not separate this pair and is
// rejected.
func (c *PBEController) ConsiderPredicate(predicate Candidate, openVal, nextVal int64) bool {
	openTaken := c.branch.Taken(openVal)
	nextTaken := c.branch.Taken(nextVal)
	if openTaken == nextTaken {
		return false
	}

	open, next, ok := c.dtree.CurrentPair()
	if !ok {
		return false
	}

	predUser := c.hooks.ToUserExpr(predicate)
	var thenUser, elseUser UserExpr
	if openTaken {
		thenUser, elseUser = open.TermExpr, next.TermExpr
	} else {
		thenUser, elseUser = next.TermExpr, open.TermExpr
	}
	return c.dtree.InsertDecisionNode(predUser, thenUser, elseUser) == nil
}

// TreeSolution materializes the finished decision tree, once
// DecisionTreeDone reports true.
func (c *PBEController) TreeSolution() (UserExpr, error) {
	return c.dtree.GetTreeExpr(c.hooks.BuildITE)
}
