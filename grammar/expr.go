package grammar

import (
	"fmt"

	"github.com/esolver/cegis"
	"github.com/esolver/theory"
)

// Expr is a grammar-produced candidate: a hash-consed bitvector term plus
// the cost-stratification metadata cegis.Candidate needs. Structural
// equality of two Exprs coincides with pointer equality of their
// underlying theory.BVExprPtr, since ExprBuilder interns every node it
// builds — so Expr.ID can be the term's own interned identity.
type Expr struct {
	term          *theory.BVExprPtr
	cost          int
	expansionType int

	eb      *theory.ExprBuilder
	scratch *Scratch
}

func newExpr(eb *theory.ExprBuilder, scratch *Scratch, term *theory.BVExprPtr, cost, expansionType int) *Expr {
	return &Expr{term: term, cost: cost, expansionType: expansionType, eb: eb, scratch: scratch}
}

func (e *Expr) ID() uintptr                { return e.term.Id() }
func (e *Expr) Cost() int                  { return e.cost }
func (e *Expr) ExpansionType() int         { return e.expansionType }
func (e *Expr) Type() cegis.SemanticType   { return fmt.Sprintf("bv%d", e.term.Size()) }
func (e *Expr) BVTerm() *theory.BVExprPtr  { return e.term }
func (e *Expr) String() string             { return e.term.String() }

// Eval evaluates the term at p via theory's own substitution-based
// evaluator, reusing a pooled interpretation map instead of allocating one
// per call (§5/§9 "process-wide expression evaluation scratch").
func (e *Expr) Eval(p cegis.Point) (int64, bool) {
	interpr := e.scratch.bind(p)
	c, err := e.eb.EvalConst(e.term, interpr)
	if err != nil {
		return 0, false
	}
	return c.AsLong(), true
}

// Size reports an expression's size for the "Solution Size" line
// CEGSolver::Solve prints via ExpressionSizeCounter::Do. It returns the
// expression's cost: 1 per production application plus its children's
// costs, with terminals costing 0, so it counts operator nodes only and not
// the variable and constant leaves.
func Size(e *Expr) int { return e.cost }

// Scratch is a reusable interpretation buffer shared by every Expr an
// Enumerator produces, so a cost-k walk over N candidates and M points
// evaluates without allocating N*M fresh maps.
type Scratch struct {
	width   uint
	interpr map[string]*theory.BVConst
}

// NewScratch allocates scratch space for a grammar's fixed bit-width.
func NewScratch(width uint) *Scratch {
	return &Scratch{width: width, interpr: make(map[string]*theory.BVConst)}
}

func (s *Scratch) bind(p cegis.Point) map[string]*theory.BVConst {
	for name, v := range p {
		s.interpr[name] = theory.MakeBVConst(v, s.width)
	}
	return s.interpr
}
