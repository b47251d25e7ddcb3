// Package rewrite turns a host-described constraint — the original
// spec's synth-function application sites plus its free variables — into
// the ground collaborators cegis.Solve needs: an oracle.Constraint for the
// ordinary CEG path, or a PBE example table when the constraint's shape
// reduces to one (§4.6, grounded on CEGSolver::Solve's PBE-mode check and
// PBEConsequentsInitializer).
package rewrite

import (
	"github.com/esolver/cegis"
	"github.com/esolver/oracle"
	"github.com/esolver/theory"
)

// AppSite is one synth-function application the original constraint makes
// (§3's "Per-app argument maps"): which target is called, and at which
// position among that target's call sites. This module only supports one
// call site per target — see DESIGN.md for why general multi-site argument
// substitution was dropped rather than adapted.
type AppSite struct {
	TargetPosition int
	AppIndex       int
}

// Spec is what a host (typically cmd/esolver, or a benchmark harness)
// supplies to Do: the constraint expressed as a combinator over
// the synth targets' eventual terms, rather than as an AST with holes to
// substitute into — theory's public API only substitutes concrete
// constants, not symbolic subterms, so the rewritten constraint is built
// fresh per candidate tuple instead (§9 design note).
type Spec struct {
	EB *theory.ExprBuilder

	// Width is the bit width every synth target's output is produced at,
	// needed to build the constant terms EvalConcrete checks the
	// constraint against (§4.2's concrete pre-check).
	Width uint

	// NumTargets is the number of synth functions the constraint applies,
	// matching len(cegis.Host.Targets).
	NumTargets int

	// RelevantVars are every free variable the oracle's counter-example
	// points must cover — the universally quantified variables of
	// CheckSymbolicValidity's antecedent, per §4.3.
	RelevantVars []string

	// Build assembles the ground validity formula given one chosen term
	// per synth target, ordered by SynthTarget.Position. It is the
	// rewritten counterpart of CEGSolver::CheckSymbolicValidity: the
	// original constraint with every synth-function application already
	// specialized to its (single) call site's actual arguments.
	Build func(eb *theory.ExprBuilder, targets []*theory.BVExprPtr) (*theory.BoolExprPtr, error)

	// ConstRelevantVars and Examples describe a PBE-shaped constraint
	// (§4.6): a conjunction of point-specific antecedents, each pinning
	// every relevant variable to a constant and the consequent to a
	// single expected output. A host detects this shape while parsing the
	// original constraint (this module has no constraint parser of its
	// own) and reports it here instead of leaving it for Do to
	// re-derive.
	ConstRelevantVars []string
	Examples          []cegis.PBEExampleSpec
}

// Rewritten is the result of Do: exactly one of Constraint or Examples is
// meaningful, selected by IsPBE, mirroring CEGSolverMode::CEG vs
// CEGSolverMode::PBE.
type Rewritten struct {
	IsPBE bool

	// Constraint is ready for cegis.Host.Constraint when !IsPBE.
	Constraint *oracle.Constraint

	// ConcreteJudge is ready for cegis.Host.ConcreteJudge when !IsPBE: it
	// evaluates Constraint itself, concretely, via Constraint.EvalConcrete,
	// so the CEG loop's pre-oracle pruning pass actually implements §4.2's
	// "valid iff the constraint holds on every point" instead of trivially
	// accepting every defined candidate.
	ConcreteJudge cegis.Judge

	// Examples is ready for cegis.PBEHost.Examples when IsPBE.
	Examples []cegis.PBEExampleSpec

	// AppMaps is the per-target application-site table (§3). With the
	// single-call-site restriction this module carries, it is always the
	// identity map target position -> {0: 0} — kept so a future
	// multi-call-site Do has somewhere to grow into without
	// changing Rewritten's shape.
	AppMaps []map[int]int
}

// Do rewrites spec into ground collaborators, choosing PBE mode when the
// set of variables the examples pin down accounts for every relevant
// variable and there is at least one example; each example stands for one
// relevant-variable assignment the constraint names.
func Do(spec Spec) (*Rewritten, error) {
	appMaps := make([]map[int]int, spec.NumTargets)
	for i := range appMaps {
		appMaps[i] = map[int]int{0: 0}
	}

	isPBE := len(spec.ConstRelevantVars) == len(spec.RelevantVars) &&
		len(spec.Examples) > 0

	r := &Rewritten{IsPBE: isPBE, AppMaps: appMaps}
	if isPBE {
		r.Examples = spec.Examples
		return r, nil
	}

	assemble := func(bound []*theory.BVExprPtr) (*theory.BoolExprPtr, error) {
		return spec.Build(spec.EB, bound)
	}
	r.Constraint = oracle.NewConstraint(assemble)

	numTargets := spec.NumTargets
	width := spec.Width
	eb := spec.EB
	constraint := r.Constraint
	r.ConcreteJudge = func(p cegis.Point, outputs map[int]int64) (bool, bool) {
		vals := make([]int64, numTargets)
		for i := 0; i < numTargets; i++ {
			v, ok := outputs[i]
			if !ok {
				return false, false
			}
			vals[i] = v
		}
		return constraint.EvalConcrete(eb, width, vals, p)
	}
	return r, nil
}
