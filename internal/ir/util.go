package ir

// IsConst reports whether e is an integer constant, returning its value.
func IsConst(e Expr) (int64, bool) {
	if c, ok := e.(*Const); ok {
		return c.Value, true
	}
	return 0, false
}

// IsZero reports whether e is the constant zero.
func IsZero(e Expr) bool {
	v, ok := IsConst(e)
	return ok && v == 0
}

// IsOne reports whether e is the constant one.
func IsOne(e Expr) bool {
	v, ok := IsConst(e)
	return ok && v == 1
}

// UsesVar reports whether e contains a variable for which pred returns true.
// It mirrors tir::UsesVar from the original. Neither the sanity check nor
// the predicate splitter calls it: both work from constant bounds alone.
func UsesVar(e Expr, pred func(*Var) bool) bool {
	switch t := e.(type) {
	case *Var:
		return pred(t)
	case *Const:
		return false
	case *Add:
		return UsesVar(t.A, pred) || UsesVar(t.B, pred)
	case *Sub:
		return UsesVar(t.A, pred) || UsesVar(t.B, pred)
	case *Mul:
		return UsesVar(t.A, pred) || UsesVar(t.B, pred)
	case *FloorDiv:
		return UsesVar(t.A, pred) || UsesVar(t.B, pred)
	case *FloorMod:
		return UsesVar(t.A, pred) || UsesVar(t.B, pred)
	default:
		return false
	}
}

// NodeCount returns the number of nodes in e, used to rank bound constraints
// by complexity before rewriting them (§4.1).
func NodeCount(e Expr) int {
	switch t := e.(type) {
	case *Var, *Const:
		return 1
	case *Add:
		return 1 + NodeCount(t.A) + NodeCount(t.B)
	case *Sub:
		return 1 + NodeCount(t.A) + NodeCount(t.B)
	case *Mul:
		return 1 + NodeCount(t.A) + NodeCount(t.B)
	case *FloorDiv:
		return 1 + NodeCount(t.A) + NodeCount(t.B)
	case *FloorMod:
		return 1 + NodeCount(t.A) + NodeCount(t.B)
	default:
		return 1
	}
}

// ExprEqual performs deep structural equality (pointer identity for
// variables, value equality for constants, recursive for operators). It is
// the host-level building block the detector's own structural-hash maps are
// built on top of.
func ExprEqual(a, b Expr) bool {
	if a == b {
		return true
	}

	switch x := a.(type) {
	case *Var:
		y, ok := b.(*Var)
		return ok && x == y
	case *Const:
		y, ok := b.(*Const)
		return ok && x.Value == y.Value
	case *Add:
		y, ok := b.(*Add)
		return ok && ExprEqual(x.A, y.A) && ExprEqual(x.B, y.B)
	case *Sub:
		y, ok := b.(*Sub)
		return ok && ExprEqual(x.A, y.A) && ExprEqual(x.B, y.B)
	case *Mul:
		y, ok := b.(*Mul)
		return ok && ExprEqual(x.A, y.A) && ExprEqual(x.B, y.B)
	case *FloorDiv:
		y, ok := b.(*FloorDiv)
		return ok && ExprEqual(x.A, y.A) && ExprEqual(x.B, y.B)
	case *FloorMod:
		y, ok := b.(*FloorMod)
		return ok && ExprEqual(x.A, y.A) && ExprEqual(x.B, y.B)
	default:
		return false
	}
}
