package rewrite

import (
	"github.com/cockroachdb/errors"

	"github.com/esolver/cegis"
)

// ErrSpecShape mirrors cegis.ErrSpecShape for the pre-flight failures
// CheckLetBindings reports, the counterpart of CEGSolver::Solve running
// LetBindingChecker::Do(Constraint) before constructing its enumerator.
var ErrSpecShape = errors.New("unsupported specification shape")

// CheckLetBindings is a narrowed structural counterpart of the original's
// LetBindingChecker: this module has no let-expression grammar of its own
// (SynthTarget.NumLetVars is reported by the host's grammar, not parsed
// here), so the check that survives is the one this package can verify
// without a constraint parser — every target's reported arity is
// non-negative and every target has a stable, unique position.
func CheckLetBindings(targets []*cegis.SynthTarget) error {
	seen := make(map[int]bool, len(targets))
	for _, t := range targets {
		if t.NumParams < 0 || t.NumLetVars < 0 {
			return errors.WithMessagef(ErrSpecShape, "synth target %q has a negative arity (params=%d, letvars=%d)", t.Name, t.NumParams, t.NumLetVars)
		}
		if seen[t.Position()] {
			return errors.WithMessagef(ErrSpecShape, "synth target %q repeats position %d", t.Name, t.Position())
		}
		seen[t.Position()] = true
	}
	return nil
}
