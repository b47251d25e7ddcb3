package grammar

import (
	"fmt"

	"github.com/esolver/cegis"
	"github.com/esolver/theory"
)

// ToUserExpr boxes a Candidate into its owned UserExpr form (§3
// "UserExpression"). Every Candidate this package produces is already an
// immutable, hash-consed *Expr, so boxing is just an identity assertion —
// there is nothing to copy.
func ToUserExpr(c cegis.Candidate) cegis.UserExpr {
	return c.(*Expr)
}

// NewITEBuilder returns a PBEHooks.BuildITE closure over eb/scratch: the
// decision-tree assembler DecisionTreeBuilder.GetTreeExpr folds predicate
// and terminal UserExprs with, each node built as a new hash-consed
// grammar term using the grammar's own if-then-else convention (guard == 1
// takes the then branch, matching the "ite" production in grammar.go).
func NewITEBuilder(eb *theory.ExprBuilder, scratch *Scratch) func(pred, then, els cegis.UserExpr) cegis.UserExpr {
	return func(pred, then, els cegis.UserExpr) cegis.UserExpr {
		p, ok1 := pred.(*Expr)
		t, ok2 := then.(*Expr)
		e, ok3 := els.(*Expr)
		if !ok1 || !ok2 || !ok3 {
			panic(fmt.Sprintf("grammar: BuildITE given non-grammar UserExprs (%T, %T, %T)", pred, then, els))
		}
		cond, err := eb.Eq(p.term, eb.BVV(1, p.term.Size()))
		if err != nil {
			panic(fmt.Sprintf("grammar: BuildITE could not form its guard: %v", err))
		}
		term, err := eb.ITE(cond, t.term, e.term)
		if err != nil {
			panic(fmt.Sprintf("grammar: BuildITE could not assemble its branches: %v", err))
		}
		return newExpr(eb, scratch, term, 1+p.cost+t.cost+e.cost, -1)
	}
}
