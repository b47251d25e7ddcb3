package theory

import (
	"testing"
)

func TestEval1(t *testing.T) {
	eb := NewExprBuilder()
	a := eb.BVS("a", 32)
	b := eb.BVS("b", 32)

	interpr := make(map[string]*BVConst)
	interpr["a"] = MakeBVConst(42, 32)

	e, _ := eb.Add(a, b)
	evaluated := eb.eval(e, interpr)
	if evaluated.getInternal().String() != "b + 0x2a" {
		t.Error("invalid eval")
	}
}

func TestEvalConst(t *testing.T) {
	eb := NewExprBuilder()
	a := eb.BVS("a", 32)
	b := eb.BVS("b", 32)

	interpr := map[string]*BVConst{
		"a": MakeBVConst(10, 32),
		"b": MakeBVConst(32, 32),
	}

	e, _ := eb.Add(a, b)
	c, err := eb.EvalConst(e, interpr)
	if err != nil {
		t.Error(err)
		return
	}
	if c.AsLong() != 42 {
		t.Error("invalid eval const")
	}
}

func TestEvalConstPartial(t *testing.T) {
	eb := NewExprBuilder()
	a := eb.BVS("a", 32)
	b := eb.BVS("b", 32)

	e, _ := eb.Add(a, b)
	if _, err := eb.EvalConst(e, map[string]*BVConst{"a": MakeBVConst(10, 32)}); err == nil {
		t.Error("expected an error evaluating with an unbound symbol")
	}
}
