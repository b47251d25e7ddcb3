package theory

// ExprPtr is the common handle shared by bitvector and boolean expressions,
// used by code that walks a term generically (substitution, evaluation,
// symbol collection) without caring about its concrete sort.
type ExprPtr interface {
	getInternal() internalExpr
}

func (bv *BVExprPtr) getInternal() internalExpr {
	return bv.e
}

func (e *BoolExprPtr) getInternal() internalExpr {
	return e.e
}
