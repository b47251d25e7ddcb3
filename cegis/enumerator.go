package cegis

// ExprCallback is invoked for every full candidate the enumerator produces
// at a given cost.
type ExprCallback func(expr Candidate) CallbackStatus

// SubExprCallback is invoked for every sub-expression the enumerator visits
// while building candidates at a given cost (used by PBE predicate search
// and general sub-expression pruning).
type SubExprCallback func(expr Candidate) CallbackStatus

// TupleCallback is the multi-function variant of ExprCallback: one
// candidate per SynthTarget, delivered together since multi-function
// concrete validity is evaluated jointly (§4.5 "Multi-function variant").
type TupleCallback func(exprs []Candidate) CallbackStatus

// EnumeratorDriver walks a grammar by increasing cost (§4.4). The core
// drives it; it never inspects how candidates are produced.
type EnumeratorDriver interface {
	// EnumerateOfCost produces every grammar-legal expression of cost
	// exactly k, invoking exprCb for full candidates and subCb for
	// sub-expressions. It returns early if either callback returns
	// StatusStopEnumeration, or if the host's resource probe aborts the
	// walk.
	EnumerateOfCost(cost int, exprCb ExprCallback, subCb SubExprCallback) error

	// Reset discards internal caches invalidated by a restart.
	Reset()
}

// TupleEnumeratorDriver is the multi-function counterpart of
// EnumeratorDriver, used when more than one SynthTarget is being
// synthesized jointly.
type TupleEnumeratorDriver interface {
	EnumerateTuplesOfCost(cost int, cb TupleCallback) error
	Reset()
}
