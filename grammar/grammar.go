// Package grammar implements the CFG-directed expression grammar CEGIS
// enumerates over: a fixed bitvector signature (variables, constants, and a
// production set closed under the teacher's own ExprBuilder combinators),
// walked cost-stratified by Enumerator and TupleEnumerator (§4.4, §4.5).
package grammar

import (
	"fmt"

	"github.com/esolver/theory"
)

// VarSpec names one free variable of the grammar's signature and its
// bit-width, matching a rewrite.Rewritten relevant variable.
type VarSpec struct {
	Name  string
	Width uint
}

// Production builds one cost-1-plus-children grammar rule out of Arity
// already-built bitvector terms. Build is handed the grammar's ExprBuilder
// so every produced term is hash-consed the same way theory's own
// combinators intern constants and symbols (§9 "structural interning").
type Production struct {
	Name  string
	Arity int
	Build func(eb *theory.ExprBuilder, children []*theory.BVExprPtr) (*theory.BVExprPtr, error)
}

// Grammar is the signature an Enumerator walks: a bit-width, a set of free
// variables and constants (the cost-0 terminals), and a production set.
type Grammar struct {
	EB          *theory.ExprBuilder
	Width       uint
	Vars        []VarSpec
	Constants   []int64
	Productions []Production
}

// NewBitvectorGrammar builds the default bitvector grammar used throughout
// this module: arithmetic, bitwise, shift, remainder, three comparisons
// surfaced as 0/1 values, and a predicate-gated if-then-else, over varNames
// and a small constant pool, all at a single fixed width (§4.4 assumes one
// semantic type per SynthTarget; multi-width grammars are a REDESIGN FLAG
// left for a future grammar, not this one).
func NewBitvectorGrammar(eb *theory.ExprBuilder, width uint, varNames []string, constants []int64) *Grammar {
	vars := make([]VarSpec, len(varNames))
	for i, n := range varNames {
		vars[i] = VarSpec{Name: n, Width: width}
	}
	return &Grammar{
		EB:          eb,
		Width:       width,
		Vars:        vars,
		Constants:   constants,
		Productions: defaultProductions(),
	}
}

func defaultProductions() []Production {
	bin := func(name string, f func(eb *theory.ExprBuilder, a, b *theory.BVExprPtr) (*theory.BVExprPtr, error)) Production {
		return Production{Name: name, Arity: 2, Build: func(eb *theory.ExprBuilder, c []*theory.BVExprPtr) (*theory.BVExprPtr, error) {
			return f(eb, c[0], c[1])
		}}
	}
	un := func(name string, f func(eb *theory.ExprBuilder, a *theory.BVExprPtr) *theory.BVExprPtr) Production {
		return Production{Name: name, Arity: 1, Build: func(eb *theory.ExprBuilder, c []*theory.BVExprPtr) (*theory.BVExprPtr, error) {
			return f(eb, c[0]), nil
		}}
	}
	cmp01 := func(name string, f func(eb *theory.ExprBuilder, a, b *theory.BVExprPtr) (*theory.BoolExprPtr, error)) Production {
		return Production{Name: name, Arity: 2, Build: func(eb *theory.ExprBuilder, c []*theory.BVExprPtr) (*theory.BVExprPtr, error) {
			cond, err := f(eb, c[0], c[1])
			if err != nil {
				return nil, err
			}
			return eb.ITE(cond, eb.BVV(1, c[0].Size()), eb.BVV(0, c[0].Size()))
		}}
	}

	return []Production{
		bin("add", func(eb *theory.ExprBuilder, a, b *theory.BVExprPtr) (*theory.BVExprPtr, error) { return eb.Add(a, b) }),
		bin("sub", func(eb *theory.ExprBuilder, a, b *theory.BVExprPtr) (*theory.BVExprPtr, error) {
			return eb.Add(a, eb.Neg(b))
		}),
		bin("mul", func(eb *theory.ExprBuilder, a, b *theory.BVExprPtr) (*theory.BVExprPtr, error) { return eb.Mul(a, b) }),
		bin("and", func(eb *theory.ExprBuilder, a, b *theory.BVExprPtr) (*theory.BVExprPtr, error) { return eb.And(a, b) }),
		bin("or", func(eb *theory.ExprBuilder, a, b *theory.BVExprPtr) (*theory.BVExprPtr, error) { return eb.Or(a, b) }),
		bin("xor", func(eb *theory.ExprBuilder, a, b *theory.BVExprPtr) (*theory.BVExprPtr, error) { return eb.Xor(a, b) }),
		bin("shl", func(eb *theory.ExprBuilder, a, b *theory.BVExprPtr) (*theory.BVExprPtr, error) { return eb.Shl(a, b) }),
		bin("lshr", func(eb *theory.ExprBuilder, a, b *theory.BVExprPtr) (*theory.BVExprPtr, error) { return eb.LShr(a, b) }),
		bin("ashr", func(eb *theory.ExprBuilder, a, b *theory.BVExprPtr) (*theory.BVExprPtr, error) { return eb.AShr(a, b) }),
		bin("urem", func(eb *theory.ExprBuilder, a, b *theory.BVExprPtr) (*theory.BVExprPtr, error) { return eb.URem(a, b) }),
		un("neg", func(eb *theory.ExprBuilder, a *theory.BVExprPtr) *theory.BVExprPtr { return eb.Neg(a) }),
		un("not", func(eb *theory.ExprBuilder, a *theory.BVExprPtr) *theory.BVExprPtr { return eb.Not(a) }),
		cmp01("ult01", func(eb *theory.ExprBuilder, a, b *theory.BVExprPtr) (*theory.BoolExprPtr, error) { return eb.Ult(a, b) }),
		cmp01("ule01", func(eb *theory.ExprBuilder, a, b *theory.BVExprPtr) (*theory.BoolExprPtr, error) { return eb.Ule(a, b) }),
		cmp01("eq01", func(eb *theory.ExprBuilder, a, b *theory.BVExprPtr) (*theory.BoolExprPtr, error) { return eb.Eq(a, b) }),
		{
			Name:  "ite",
			Arity: 3,
			Build: func(eb *theory.ExprBuilder, c []*theory.BVExprPtr) (*theory.BVExprPtr, error) {
				// §4.7's branch-taken convention (v == 1) doubles as the
				// grammar's own if-then-else gate, so a synthesized
				// predicate and a synthesized condition read the same way.
				cond, err := eb.Eq(c[0], eb.BVV(1, c[0].Size()))
				if err != nil {
					return nil, err
				}
				return eb.ITE(cond, c[1], c[2])
			},
		},
	}
}

func (g *Grammar) String() string {
	return fmt.Sprintf("grammar(width=%d, vars=%d, consts=%d, productions=%d)", g.Width, len(g.Vars), len(g.Constants), len(g.Productions))
}
