package grammar

import (
	"testing"

	"github.com/esolver/cegis"
	"github.com/esolver/theory"
)

func TestTupleEnumeratorSplitsCostAcrossTargets(t *testing.T) {
	eb := theory.NewExprBuilder()
	gf := NewBitvectorGrammar(eb, 32, []string{"x"}, []int64{1})
	gg := NewBitvectorGrammar(eb, 32, []string{"x"}, []int64{1})
	tup := NewTupleEnumerator(NewEnumerator(gf), NewEnumerator(gg))

	var tuples [][]cegis.Candidate
	err := tup.EnumerateTuplesOfCost(0, func(exprs []cegis.Candidate) cegis.CallbackStatus {
		cp := append([]cegis.Candidate{}, exprs...)
		tuples = append(tuples, cp)
		return cegis.StatusNone
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tuples) == 0 {
		t.Fatal("expected at least one tuple at cost 0 (both terminals)")
	}
	for _, tup := range tuples {
		if len(tup) != 2 {
			t.Fatalf("expected 2-element tuples, got %d", len(tup))
		}
		if tup[0].Cost()+tup[1].Cost() != 0 {
			t.Errorf("expected total cost 0, got %d+%d", tup[0].Cost(), tup[1].Cost())
		}
	}
}

func TestTupleEnumeratorStopsOnRequest(t *testing.T) {
	eb := theory.NewExprBuilder()
	gf := NewBitvectorGrammar(eb, 32, []string{"x"}, []int64{0, 1})
	gg := NewBitvectorGrammar(eb, 32, []string{"x"}, []int64{0, 1})
	tup := NewTupleEnumerator(NewEnumerator(gf), NewEnumerator(gg))

	calls := 0
	err := tup.EnumerateTuplesOfCost(0, func(exprs []cegis.Candidate) cegis.CallbackStatus {
		calls++
		return cegis.StatusStopEnumeration
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected exactly one callback invocation before stopping, got %d", calls)
	}
}
