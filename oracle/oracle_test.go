package oracle

import (
	"testing"

	"github.com/esolver/cegis"
	"github.com/esolver/theory"
)

// bvCandidate is a minimal cegis.Candidate/Term double wrapping a theory
// expression directly, standing in for grammar.Expr.
type bvCandidate struct {
	term *theory.BVExprPtr
}

func (c *bvCandidate) ID() uintptr                        { return c.term.Id() }
func (c *bvCandidate) Cost() int                           { return 0 }
func (c *bvCandidate) ExpansionType() int                  { return 0 }
func (c *bvCandidate) Type() cegis.SemanticType            { return "bv32" }
func (c *bvCandidate) Eval(cegis.Point) (int64, bool)      { return 0, false }
func (c *bvCandidate) BVTerm() *theory.BVExprPtr           { return c.term }

func TestClientValidIdentity(t *testing.T) {
	eb := theory.NewExprBuilder()
	cl := NewClient(eb, []string{"x"})

	// f(x) = x is trivially reflexive: x == x holds for every x.
	x := eb.BVS("x", 32)
	assemble := func(bound []*theory.BVExprPtr) (*theory.BoolExprPtr, error) {
		return eb.Eq(x, bound[0])
	}
	constraint := NewConstraint(assemble).Instantiate([]cegis.Candidate{&bvCandidate{term: x}})

	verdict, point, err := cl.CheckValidity(constraint)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict != cegis.Valid {
		t.Fatalf("expected Valid, got %v (point %v)", verdict, point)
	}
}

func TestClientInvalidCandidateYieldsCounterExample(t *testing.T) {
	eb := theory.NewExprBuilder()
	cl := NewClient(eb, []string{"x"})

	// f(x) = 0 does not satisfy x == f(x) for every x.
	x := eb.BVS("x", 32)
	assemble := func(bound []*theory.BVExprPtr) (*theory.BoolExprPtr, error) {
		return eb.Eq(x, bound[0])
	}
	zero := eb.BVV(0, 32)
	constraint := NewConstraint(assemble).Instantiate([]cegis.Candidate{&bvCandidate{term: zero}})

	verdict, point, err := cl.CheckValidity(constraint)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict != cegis.Invalid {
		t.Fatalf("expected Invalid, got %v", verdict)
	}
	if point["x"] == 0 {
		t.Errorf("expected a counter-example with x != 0, got %v", point)
	}
}

func TestClientUnknownOnMalformedCandidate(t *testing.T) {
	eb := theory.NewExprBuilder()
	cl := NewClient(eb, nil)

	assemble := func(bound []*theory.BVExprPtr) (*theory.BoolExprPtr, error) {
		return eb.Eq(bound[0], bound[0])
	}
	constraint := NewConstraint(assemble).Instantiate([]cegis.Candidate{notATerm{}})

	verdict, _, err := cl.CheckValidity(constraint)
	if err == nil {
		t.Fatal("expected an error for a candidate with no bitvector term")
	}
	if verdict != cegis.Unknown {
		t.Errorf("expected Unknown, got %v", verdict)
	}
}

type notATerm struct{}

func (notATerm) ID() uintptr                   { return 0 }
func (notATerm) Cost() int                     { return 0 }
func (notATerm) ExpansionType() int            { return 0 }
func (notATerm) Type() cegis.SemanticType      { return "int" }
func (notATerm) Eval(cegis.Point) (int64, bool) { return 0, false }
