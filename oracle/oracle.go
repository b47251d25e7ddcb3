// Package oracle wires cegis.OracleClient to the theory package's Z3-backed
// Solver: a validity query becomes an UNSAT check of the negated formula
// (§4.3), and a SAT model for the negation becomes the counter-example
// point the CEGIS loop folds back into its evaluator.
package oracle

import (
	"github.com/cockroachdb/errors"

	"github.com/esolver/cegis"
	"github.com/esolver/theory"
)

// Term is implemented by any cegis.Candidate whose grammar-level value is a
// theory bitvector expression. Every grammar.Expr in this module satisfies
// it; the oracle package never otherwise depends on how a candidate was
// produced.
type Term interface {
	BVTerm() *theory.BVExprPtr
}

// bvTermOf recovers the theory term underlying a candidate bound to a synth
// target, failing loudly if the host wired in a candidate of a shape the
// oracle cannot assemble into a formula.
func bvTermOf(c cegis.Candidate) (*theory.BVExprPtr, error) {
	t, ok := c.(Term)
	if !ok {
		return nil, errors.Newf("oracle: candidate %T does not expose a bitvector term", c)
	}
	return t.BVTerm(), nil
}

// Assembler builds the ground validity formula once every synth target has
// a concrete candidate bound to it, in SynthTarget.Position order. It is
// the rewrite package's hand-off to the oracle: the rewritten
// antecedent/consequent closed over everything except the synthesized
// functions themselves.
type Assembler func(bound []*theory.BVExprPtr) (*theory.BoolExprPtr, error)

// Constraint is the theory-backed cegis.Constraint: Instantiate binds the
// chosen candidates, Assemble (deferred to CheckValidity) turns them into a
// formula.
type Constraint struct {
	assemble Assembler
	bound    []cegis.Candidate
}

// NewConstraint wraps an Assembler produced by the rewrite package into a
// cegis.Constraint with no targets bound yet.
func NewConstraint(assemble Assembler) *Constraint {
	return &Constraint{assemble: assemble}
}

func (c *Constraint) Instantiate(exprs []cegis.Candidate) cegis.Constraint {
	return &Constraint{assemble: c.assemble, bound: exprs}
}

func (c *Constraint) formula() (*theory.BoolExprPtr, error) {
	terms := make([]*theory.BVExprPtr, len(c.bound))
	for i, cand := range c.bound {
		t, err := bvTermOf(cand)
		if err != nil {
			return nil, err
		}
		terms[i] = t
	}
	return c.assemble(terms)
}

// EvalConcrete checks whether the constraint holds at p once every synth
// target is bound to a concrete output value, by handing the Assembler the
// same kind of terms CheckValidity would (here, constants rather than the
// candidates' own hash-consed terms) and evaluating the resulting formula
// with theory's own concrete evaluator. This is the CEG loop's concrete
// pre-check (§4.2): it reuses the oracle's own formula construction instead
// of re-deriving the predicate a second time in plain Go, so the concrete
// check and the oracle's symbolic check can never disagree about what the
// constraint means.
func (c *Constraint) EvalConcrete(eb *theory.ExprBuilder, width uint, outputs []int64, p cegis.Point) (holds bool, defined bool) {
	terms := make([]*theory.BVExprPtr, len(outputs))
	for i, v := range outputs {
		terms[i] = eb.BVV(v, width)
	}
	formula, err := c.assemble(terms)
	if err != nil {
		return false, false
	}

	interpr := make(map[string]*theory.BVConst, len(p))
	for name, v := range p {
		interpr[name] = theory.MakeBVConst(v, width)
	}
	val, err := eb.EvalBoolConst(formula, interpr)
	if err != nil {
		return false, false
	}
	return val, true
}

// Client is the cegis.OracleClient backed by a single theory.Solver. The
// solver is never given path constraints of its own (no Add calls): each
// CheckValidity call decides validity of exactly the formula handed to it,
// the way CEGSolver's decision procedure calls are stateless across CEGIS
// iterations.
type Client struct {
	solver *theory.Solver
	// vars lists the free variables a counter-example point must cover, in
	// the order rewrite.Rewritten reports them (§4.3's "relevant vars").
	vars []string
}

// NewClient builds an oracle.Client around a fresh Z3-backed solver. vars
// is the set of free variable names CheckValidity should read back from a
// SAT model into a cegis.Point; names absent from the model (because the
// solver left them unconstrained) default to zero.
func NewClient(eb *theory.ExprBuilder, vars []string) *Client {
	return &Client{solver: theory.NewZ3Solver(eb), vars: vars}
}

func (cl *Client) CheckValidity(constraint cegis.Constraint) (cegis.Verdict, cegis.Point, error) {
	c, ok := constraint.(*Constraint)
	if !ok {
		return cegis.Unknown, nil, errors.Newf("oracle: constraint is not an *oracle.Constraint")
	}
	formula, err := c.formula()
	if err != nil {
		return cegis.Unknown, nil, err
	}

	result, model := cl.solver.CheckValidity(formula)
	switch result {
	case theory.ValidityValid:
		return cegis.Valid, nil, nil
	case theory.ValidityInvalid:
		return cegis.Invalid, cl.pointFromModel(model), nil
	default:
		return cegis.Unknown, nil, nil
	}
}

func (cl *Client) pointFromModel(model map[string]*theory.BVConst) cegis.Point {
	p := make(cegis.Point, len(cl.vars))
	for _, name := range cl.vars {
		c, ok := model[name]
		if !ok {
			p[name] = 0
			continue
		}
		p[name] = c.AsLong()
	}
	return p
}
