package cegis

import "reflect"

// BranchSemantics abstracts the "taken branch" convention a grammar's if
// expression uses (§9 design note: "Taken branch = 1"). The default is the
// original's hard-coded convention; a host with boolean-valued predicates
// can substitute its own.
type BranchSemantics interface {
	Taken(v int64) bool
}

// DefaultBranchSemantics implements the historical convention: a branch is
// taken when its guard evaluates to the integer 1.
type DefaultBranchSemantics struct{}

func (DefaultBranchSemantics) Taken(v int64) bool { return v == 1 }

// PBELeaf is one PBE example's resolved terminal, in original example
// order.
type PBELeaf struct {
	Eval     *ConcreteEvaluator
	TermIdx  int
	TermExpr UserExpr
}

// DecisionTreeBuilder maintains a partial decision tree over a sequence of
// per-example evaluators (§4.7). Internally it folds the examples
// left-to-right into a chain of if-then-else nodes: at every step exactly
// one leaf is finalized into a branch and the other continues to be
// compared against the next example, which keeps "leaves-first,
// left-before-right" traversal a simple index walk instead of a general
// tree cursor.
type DecisionTreeBuilder struct {
	branch BranchSemantics
	leaves []PBELeaf

	openIdx int
	idx     int
	chain   []chainStep
}

type chainStep struct {
	pred UserExpr
	// fixedSide is 0 when the open leaf at the time of this step was
	// finalized into the "then" branch (so the chain continues in else),
	// 1 when it was finalized into "else" (chain continues in then).
	fixedSide int
	fixedTerm UserExpr
}

func NewDecisionTreeBuilder(branch BranchSemantics) *DecisionTreeBuilder {
	if branch == nil {
		branch = DefaultBranchSemantics{}
	}
	return &DecisionTreeBuilder{branch: branch}
}

func (d *DecisionTreeBuilder) Branch() BranchSemantics { return d.branch }

// Reset re-seeds the builder for a fresh tree, discarding any partial
// progress — called once at PBE mode entry (§3 Lifecycles).
func (d *DecisionTreeBuilder) Reset(leaves []PBELeaf) {
	d.leaves = leaves
	d.openIdx = 0
	d.idx = 1
	d.chain = d.chain[:0]
}

// IsComplete reports whether every leaf has been folded into the tree.
func (d *DecisionTreeBuilder) IsComplete() bool {
	return len(d.leaves) <= 1 || d.idx >= len(d.leaves)
}

// LocateNextEvalNode returns the next pending (E_open, E_next) pair needing
// either a separating predicate or a shared-leaf collapse, or ok=false when
// the tree is complete.
func (d *DecisionTreeBuilder) LocateNextEvalNode() (open, next *ConcreteEvaluator, ok bool) {
	if d.IsComplete() {
		return nil, nil, false
	}
	return d.leaves[d.openIdx].Eval, d.leaves[d.idx].Eval, true
}

// CurrentPair exposes the terminal bookkeeping (term index and expression)
// for the pending pair, used by the caller to decide whether it is a shared
// leaf and to orient a found predicate.
func (d *DecisionTreeBuilder) CurrentPair() (open, next PBELeaf, ok bool) {
	if d.IsComplete() {
		return PBELeaf{}, PBELeaf{}, false
	}
	return d.leaves[d.openIdx], d.leaves[d.idx], true
}

// InsertSharedDecisionNode collapses a pending pair whose terminals already
// coincide into a shared leaf, without enumerator assistance.
func (d *DecisionTreeBuilder) InsertSharedDecisionNode() error {
	if d.IsComplete() {
		return wrapf(ErrInternalInvariant, "InsertSharedDecisionNode: no pending pair")
	}
	d.idx++
	return nil
}

// InsertDecisionNode replaces the pending slot with a decision node.
// thenExpr/elseExpr must each be the term expression of one of the two
// leaves in the current pending pair, already oriented by the caller
// according to which evaluator's sub-expression value equals the canonical
// taken value.
func (d *DecisionTreeBuilder) InsertDecisionNode(pred, thenExpr, elseExpr UserExpr) error {
	open, _, ok := d.CurrentPair()
	if !ok {
		return wrapf(ErrInternalInvariant, "InsertDecisionNode: no pending pair")
	}

	step := chainStep{pred: pred}
	switch {
	case sameUserExpr(thenExpr, open.TermExpr):
		step.fixedSide = 0
		step.fixedTerm = thenExpr
	case sameUserExpr(elseExpr, open.TermExpr):
		step.fixedSide = 1
		step.fixedTerm = elseExpr
	default:
		return wrapf(ErrInternalInvariant, "InsertDecisionNode: neither branch matches the open leaf")
	}

	d.chain = append(d.chain, step)
	d.openIdx = d.idx
	d.idx++
	return nil
}

// sameUserExpr reports whether a and b denote the same expression. Values of
// a comparable dynamic type are compared with ==; values of an uncomparable
// one, on which == would panic, are compared by their String form.
func sameUserExpr(a, b UserExpr) bool {
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return false
	}
	if ta != nil && !ta.Comparable() {
		return a.String() == b.String()
	}
	return a == b
}

// GetTreeExpr materializes the user-facing if-then-else expression. build
// constructs one ITE node from a predicate and its then/else branches; it
// is supplied by the host since the core does not know how to build a
// grammar-level if expression. Defined only when no pending slots remain.
func (d *DecisionTreeBuilder) GetTreeExpr(build func(pred, then, els UserExpr) UserExpr) (UserExpr, error) {
	if !d.IsComplete() {
		return nil, wrapf(ErrInternalInvariant, "GetTreeExpr: pending slots remain")
	}
	if len(d.leaves) == 0 {
		return nil, wrapf(ErrInternalInvariant, "GetTreeExpr: no examples")
	}

	current := d.leaves[d.openIdx].TermExpr
	for i := len(d.chain) - 1; i >= 0; i-- {
		step := d.chain[i]
		if step.fixedSide == 0 {
			current = build(step.pred, step.fixedTerm, current)
		} else {
			current = build(step.pred, current, step.fixedTerm)
		}
	}
	return current, nil
}
