package cegis

import "testing"

func mkLeaf(id EvaluatorID, termIdx int, term UserExpr) PBELeaf {
	sig := NewSigStore()
	e := NewConcreteEvaluator(id, sig, nil)
	return PBELeaf{Eval: e, TermIdx: termIdx, TermExpr: term}
}

func TestDecisionTreeBuilderSingleLeaf(t *testing.T) {
	d := NewDecisionTreeBuilder(nil)
	d.Reset([]PBELeaf{mkLeaf(0, 0, stringExpr("0"))})

	if !d.IsComplete() {
		t.Fatal("a single leaf needs no predicate")
	}
	got, err := d.GetTreeExpr(func(pred, then, els UserExpr) UserExpr { return stringExpr("ite") })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "0" {
		t.Errorf("expected the lone terminal, got %q", got.String())
	}
}

func TestDecisionTreeBuilderTwoLeaves(t *testing.T) {
	d := NewDecisionTreeBuilder(nil)
	leaves := []PBELeaf{
		mkLeaf(0, 0, stringExpr("0")),
		mkLeaf(1, 1, stringExpr("1")),
	}
	d.Reset(leaves)

	open, next, ok := d.LocateNextEvalNode()
	if !ok || open == nil || next == nil {
		t.Fatal("expected a pending pair")
	}

	if err := d.InsertDecisionNode(stringExpr("even(x)"), stringExpr("0"), stringExpr("1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.IsComplete() {
		t.Fatal("expected the tree to be complete after resolving the only pair")
	}

	build := func(pred, then, els UserExpr) UserExpr {
		return stringExpr("if " + pred.String() + " then " + then.String() + " else " + els.String())
	}
	got, err := d.GetTreeExpr(build)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "if even(x) then 0 else 1"
	if got.String() != want {
		t.Errorf("got %q, want %q", got.String(), want)
	}
}

func TestDecisionTreeBuilderSharedLeafCollapses(t *testing.T) {
	d := NewDecisionTreeBuilder(nil)
	leaves := []PBELeaf{
		mkLeaf(0, 0, stringExpr("X")),
		mkLeaf(1, 1, stringExpr("Y")),
		mkLeaf(2, 1, stringExpr("Y")),
	}
	d.Reset(leaves)

	open, next, ok := d.CurrentPair()
	if !ok || open.TermIdx == next.TermIdx {
		t.Fatal("expected the first pair to need a real predicate")
	}
	if err := d.InsertDecisionNode(stringExpr("p"), stringExpr("X"), stringExpr("Y")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	open, next, ok = d.CurrentPair()
	if !ok {
		t.Fatal("expected another pending pair")
	}
	if open.TermIdx != next.TermIdx {
		t.Fatal("expected the second pair to share a terminal")
	}
	if err := d.InsertSharedDecisionNode(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.IsComplete() {
		t.Fatal("expected the tree to be complete")
	}

	build := func(pred, then, els UserExpr) UserExpr {
		return stringExpr("if " + pred.String() + " then " + then.String() + " else " + els.String())
	}
	got, err := d.GetTreeExpr(build)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "if p then X else Y" {
		t.Errorf("got %q", got.String())
	}
}

func TestDecisionTreeBuilderOrientationFlip(t *testing.T) {
	d := NewDecisionTreeBuilder(nil)
	leaves := []PBELeaf{
		mkLeaf(0, 0, stringExpr("A")),
		mkLeaf(1, 1, stringExpr("B")),
	}
	d.Reset(leaves)

	// thenExpr/elseExpr swapped relative to leaf order: B is then, A is
	// else, since the predicate happened to take B's side.
	if err := d.InsertDecisionNode(stringExpr("q"), stringExpr("B"), stringExpr("A")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	build := func(pred, then, els UserExpr) UserExpr {
		return stringExpr("if " + pred.String() + " then " + then.String() + " else " + els.String())
	}
	got, err := d.GetTreeExpr(build)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "if q then B else A" {
		t.Errorf("got %q", got.String())
	}
}
