package grammar

import (
	"github.com/esolver/cegis"
	"github.com/esolver/theory"
)

// Enumerator implements cegis.EnumeratorDriver over a Grammar: cost-0
// terminals are the grammar's variables and constants, and cost-k
// candidates are built by applying every Production to children already
// cached at lower costs, so each cost level is only ever built once
// (§4.4's cost-stratified walk).
type Enumerator struct {
	g       *Grammar
	scratch *Scratch
	cache   map[int][]*Expr
}

// NewEnumerator builds an Enumerator over g. Every Expr it produces shares
// g's ExprBuilder (so candidates stay hash-consed against each other) and a
// single Scratch (so concrete evaluation never reallocates its
// interpretation map).
func NewEnumerator(g *Grammar) *Enumerator {
	return &Enumerator{g: g, scratch: NewScratch(g.Width)}
}

// Reset discards every cached cost level, the grammar-side half of a CEGIS
// restart (§4.2): the next EnumerateOfCost(0, ...) rebuilds terminals from
// scratch, and every subsequent cost rebuilds from them.
func (en *Enumerator) Reset() { en.cache = nil }

func (en *Enumerator) ensureTerminals() {
	if en.cache == nil {
		en.cache = make(map[int][]*Expr)
	}
	if _, ok := en.cache[0]; ok {
		return
	}
	// Constants are enumerated before variables at cost 0, so that when a
	// constraint admits both (e.g. S1's reflexive f(x) = f(x)), the
	// smallest-cost solution found first is the constant, matching the
	// teacher's own grammars listing literals ahead of formal parameters.
	var terms []*Expr
	expansionType := 0
	for _, c := range en.g.Constants {
		terms = append(terms, newExpr(en.g.EB, en.scratch, en.g.EB.BVV(c, en.g.Width), 0, expansionType))
		expansionType++
	}
	for _, v := range en.g.Vars {
		terms = append(terms, newExpr(en.g.EB, en.scratch, en.g.EB.BVS(v.Name, v.Width), 0, expansionType))
		expansionType++
	}
	en.cache[0] = terms
}

func (en *Enumerator) EnumerateOfCost(cost int, exprCb cegis.ExprCallback, subCb cegis.SubExprCallback) error {
	en.ensureTerminals()
	if cost == 0 {
		for _, e := range en.cache[0] {
			if subCb(e) == cegis.StatusStopEnumeration {
				return nil
			}
			if exprCb(e) == cegis.StatusStopEnumeration {
				return nil
			}
		}
		return nil
	}

	var produced []*Expr
	expansionType := 0
	childCost := cost - 1
	for _, prod := range en.g.Productions {
		for _, parts := range compositions(childCost, prod.Arity) {
			pools, ok := en.childPools(parts)
			if !ok {
				continue
			}
			stop, err := en.combine(prod, pools, &expansionType, &produced, exprCb, subCb)
			if err != nil {
				return err
			}
			if stop {
				en.cache[cost] = produced
				return nil
			}
		}
	}
	en.cache[cost] = produced
	return nil
}

func (en *Enumerator) childPools(parts []int) ([][]*Expr, bool) {
	pools := make([][]*Expr, len(parts))
	for i, part := range parts {
		pool, ok := en.cache[part]
		if !ok || len(pool) == 0 {
			return nil, false
		}
		pools[i] = pool
	}
	return pools, true
}

func (en *Enumerator) combine(prod Production, pools [][]*Expr, expansionType *int, produced *[]*Expr, exprCb cegis.ExprCallback, subCb cegis.SubExprCallback) (bool, error) {
	children := make([]*theory.BVExprPtr, len(pools))
	childExprs := make([]*Expr, len(pools))

	var rec func(i int) (bool, error)
	rec = func(i int) (bool, error) {
		if i == len(pools) {
			term, err := prod.Build(en.g.EB, children)
			if err != nil {
				// Ill-typed combination for this production (e.g. a
				// degenerate shift amount); not every production applies
				// to every children shape, so skip rather than fail the walk.
				return false, nil
			}
			cost := 1
			for _, c := range childExprs {
				cost += c.Cost()
			}
			e := newExpr(en.g.EB, en.scratch, term, cost, *expansionType)
			*expansionType++

			for _, c := range childExprs {
				if subCb(c) == cegis.StatusStopEnumeration {
					return true, nil
				}
			}
			status := exprCb(e)
			if status != cegis.StatusDeleteExpression {
				*produced = append(*produced, e)
			}
			return status == cegis.StatusStopEnumeration, nil
		}
		for _, c := range pools[i] {
			children[i] = c.term
			childExprs[i] = c
			stop, err := rec(i + 1)
			if err != nil || stop {
				return stop, err
			}
		}
		return false, nil
	}
	return rec(0)
}

// compositions enumerates every ordered k-tuple of non-negative ints
// summing to n (the ways a production's arity can split a target cost
// among its children).
func compositions(n, k int) [][]int {
	if k == 0 {
		if n == 0 {
			return [][]int{{}}
		}
		return nil
	}
	if k == 1 {
		return [][]int{{n}}
	}
	var out [][]int
	for first := 0; first <= n; first++ {
		for _, rest := range compositions(n-first, k-1) {
			out = append(out, append([]int{first}, rest...))
		}
	}
	return out
}

// TupleEnumerator is the multi-function counterpart used when more than one
// SynthTarget is synthesized jointly (§4.5): one Enumerator per target, each
// still cost-stratified on its own, joined by splitting the tuple's total
// cost across targets the same way a single Production splits its own cost
// among children.
type TupleEnumerator struct {
	enums []*Enumerator
}

// NewTupleEnumerator joins per-target Enumerators, ordered by SynthTarget
// position.
func NewTupleEnumerator(enums ...*Enumerator) *TupleEnumerator {
	return &TupleEnumerator{enums: enums}
}

func (t *TupleEnumerator) Reset() {
	for _, e := range t.enums {
		e.Reset()
	}
}

func (t *TupleEnumerator) EnumerateTuplesOfCost(cost int, cb cegis.TupleCallback) error {
	for _, e := range t.enums {
		for k := 0; k <= cost; k++ {
			e.ensureTerminals()
			if _, ok := e.cache[k]; ok {
				continue
			}
			if err := e.EnumerateOfCost(k, func(cegis.Candidate) cegis.CallbackStatus { return cegis.StatusNone }, func(cegis.Candidate) cegis.CallbackStatus { return cegis.StatusNone }); err != nil {
				return err
			}
		}
	}

	for _, parts := range compositions(cost, len(t.enums)) {
		pools := make([][]*Expr, len(t.enums))
		ok := true
		for i, part := range parts {
			pool := t.enums[i].cache[part]
			if len(pool) == 0 {
				ok = false
				break
			}
			pools[i] = pool
		}
		if !ok {
			continue
		}
		stop, err := cartesianTuples(pools, cb)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
	return nil
}

func cartesianTuples(pools [][]*Expr, cb cegis.TupleCallback) (bool, error) {
	tuple := make([]cegis.Candidate, len(pools))
	var rec func(i int) (bool, error)
	rec = func(i int) (bool, error) {
		if i == len(pools) {
			return cb(tuple) == cegis.StatusStopEnumeration, nil
		}
		for _, e := range pools[i] {
			tuple[i] = e
			stop, err := rec(i + 1)
			if err != nil || stop {
				return stop, err
			}
		}
		return false, nil
	}
	return rec(0)
}
