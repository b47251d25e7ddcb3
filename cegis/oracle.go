package cegis

// Verdict is the outcome of an OracleClient validity query (§4.3).
type Verdict int

const (
	Valid Verdict = iota
	Invalid
	Unknown
)

// Constraint is the rewritten antecedent/consequent constraint, opaque to
// the core except that it can be instantiated with a concrete choice of
// candidates for its synth targets. Implementations live in the host's
// spec-rewriting collaborator (package rewrite in this module).
type Constraint interface {
	// Instantiate substitutes exprs (ordered by SynthTarget position) for
	// the constraint's unknown functions and returns a ground constraint
	// ready for the oracle.
	Instantiate(exprs []Candidate) Constraint
}

// OracleClient abstracts the symbolic validity check (§4.3). On failure it
// returns a counter-example point.
type OracleClient interface {
	CheckValidity(constraint Constraint) (Verdict, Point, error)
}
