// Package cegis implements the counter-example guided enumerative synthesis
// loop and its programming-by-example sibling: the orchestration that turns
// a grammar-directed expression enumerator and a validity oracle into a
// synthesized expression satisfying a first-order constraint.
//
// The package never imports a concrete grammar, SMT backend, or spec
// rewriter. Those are host-supplied collaborators described by the
// EnumeratorDriver, OracleClient, Judge, and Constraint types below.
package cegis

// EvaluatorID namespaces signature interning and queue membership. Assigned
// by the host at construction time; the core only ever compares IDs.
type EvaluatorID int

// Point is a concrete assignment to the relevant variables of a solve. It is
// intentionally a plain map of int64s rather than a background-theory value:
// the core never interprets a point's entries, it only threads them through
// to Candidate.Eval and Judge.
type Point map[string]int64

// Signature is the sequence of concrete outcomes produced by evaluating a
// candidate (or a constraint instantiated with a candidate) at every point
// currently held by a ConcreteEvaluator.
type Signature []int64

// SemanticType is an opaque token identifying a candidate's result type
// (e.g. "32-bit bitvector", "bool"). The core never inspects it; it only
// threads it through to collaborators and diagnostics.
type SemanticType any

// Candidate is a borrowed handle to a grammar-produced expression, matching
// §3's "Expression (candidate)": a structural identity, a cost, an
// expansion-type id, and a fixed semantic type. The core never outlives a
// callback with a Candidate unless it is first boxed into a UserExpr via the
// host's conversion (passed to cegis as Host.ToUserExpr, or PBEHooks.ToUserExpr
// in PBE mode).
type Candidate interface {
	ID() uintptr
	Cost() int
	ExpansionType() int
	Type() SemanticType
	// Eval evaluates the candidate at p. The second return is false when
	// evaluation is undefined at p (e.g. division by zero in the grammar's
	// own semantics), which the core treats as a short-circuiting partial
	// evaluation per §4.2.
	Eval(p Point) (value int64, defined bool)
}

// UserExpr is an owned expression, materialized from a Candidate once it
// must outlive a callback: a solution, a PBE terminal, or a decision
// predicate (§9 "Expression ownership").
type UserExpr interface {
	String() string
}

// Judge evaluates a rewritten constraint at a point, given the concrete
// outputs (keyed by SynthTarget position) of the candidates currently under
// consideration. The second return is false when the constraint's truth
// value is undefined at this point (e.g. an antecedent that itself fails to
// evaluate), which ConcreteEvaluator treats the same as an undefined
// candidate evaluation.
type Judge func(p Point, outputs map[int]int64) (holds bool, defined bool)

// SynthTarget is a function symbol to synthesize (§3 SynthTarget): a
// grammar handle (opaque to the core), a semantic type, a parameter count,
// a let-bound variable count, and a position stable for the duration of a
// solve.
type SynthTarget struct {
	Name       string
	Grammar    any
	SemType    SemanticType
	NumParams  int
	NumLetVars int

	position int
}

func NewSynthTarget(name string, grammar any, semType SemanticType, numParams, numLetVars int) *SynthTarget {
	return &SynthTarget{Name: name, Grammar: grammar, SemType: semType, NumParams: numParams, NumLetVars: numLetVars}
}

func (t *SynthTarget) Position() int     { return t.position }
func (t *SynthTarget) SetPosition(i int) { t.position = i }

// TargetBinding pairs one SynthTarget with the expression chosen for it.
type TargetBinding struct {
	Target *SynthTarget
	Expr   UserExpr
}

// Solution is a list of solutions (normally a singleton), each a tuple of
// per-SynthTarget bindings — the shape §6 calls "list-of-lists to admit
// future enumeration of multiple solutions."
type Solution [][]TargetBinding

// Empty reports whether no solution was found within the cost budget.
func (s Solution) Empty() bool { return len(s) == 0 }

// Classification is SigStore's verdict for a freshly evaluated signature.
type Classification int

const (
	Fresh Classification = iota
	Duplicate
)

// CallbackStatus is the three-variant tagged outcome of an enumeration
// callback (§9 "Callback polymorphism").
type CallbackStatus int

const (
	StatusNone CallbackStatus = iota
	StatusDeleteExpression
	StatusStopEnumeration
)

// EvalFlags annotates a ConcreteEvaluator verdict.
type EvalFlags int

const (
	FlagNone EvalFlags = 0
	// FlagDist marks a signature that was Fresh for its evaluator.
	FlagDist EvalFlags = 1 << 0
	// FlagPart marks a signature that is partial because evaluation
	// short-circuited on a failing or undefined point.
	FlagPart EvalFlags = 1 << 1
)
