package ir

import (
	"modernc.org/mathutil"
)

// Analyzer is the symbolic-reasoning collaborator spec.md's component C1
// assumes the host system supplies: bound-aware proof of comparisons,
// equality and divisibility. It is sound but incomplete — CanProve and
// CanProveEqual only ever return true when the claim is actually provable
// from the bounds on hand, never on a guess.
type Analyzer interface {
	// Bind records that v ranges over iv, so later proofs can use it.
	Bind(v *Var, iv Interval)
	// ConstBound returns a conservative interval containing every value e
	// can take, and false if no bound could be derived at all.
	ConstBound(e Expr) (Interval, bool)
	// CanProve reports whether e is provably true given the current
	// variable bounds.
	CanProve(e BoolExpr) bool
	// CanProveEqual reports whether a and b are provably the same value.
	CanProveEqual(a, b Expr) bool
	// CanProveDivisible reports whether e is provably divisible by
	// divisor for every value e can take.
	CanProveDivisible(e Expr, divisor int64) bool
	// Simplify folds constant subexpressions of e, returning a new Expr.
	Simplify(e Expr) Expr
}

// DefaultAnalyzer is the module's concrete Analyzer: a constant folder
// layered with interval bound propagation, grounded on the bound-tracking
// shape of the teacher's own Interval type, generalized from TVM's
// ConstIntBound pass. Unlike that pass it only ever works with finite
// intervals, since every bound this module reasons about is finite by
// construction (spec §3).
type DefaultAnalyzer struct {
	bounds map[*Var]Interval
}

// NewDefaultAnalyzer constructs an analyzer with no bindings.
func NewDefaultAnalyzer() *DefaultAnalyzer {
	return &DefaultAnalyzer{bounds: make(map[*Var]Interval)}
}

func (a *DefaultAnalyzer) Bind(v *Var, iv Interval) {
	a.bounds[v] = iv
}

func (a *DefaultAnalyzer) ConstBound(e Expr) (Interval, bool) {
	switch t := e.(type) {
	case *Const:
		return Interval{Min: t.Value, Extent: 1}, true
	case *Var:
		if iv, ok := a.bounds[t]; ok {
			return iv, true
		}
		return Interval{}, false
	case *Add:
		lb, ok1 := a.ConstBound(t.A)
		rb, ok2 := a.ConstBound(t.B)
		if !ok1 || !ok2 {
			return Interval{}, false
		}
		return lb.Add(rb), true
	case *Sub:
		lb, ok1 := a.ConstBound(t.A)
		rb, ok2 := a.ConstBound(t.B)
		if !ok1 || !ok2 {
			return Interval{}, false
		}
		return lb.Add(Interval{Min: -rb.Max(), Extent: rb.Extent}), true
	case *Mul:
		if k, ok := IsConst(t.B); ok && k >= 0 {
			lb, ok1 := a.ConstBound(t.A)
			if !ok1 {
				return Interval{}, false
			}
			return lb.MulConst(k), true
		}
		if k, ok := IsConst(t.A); ok && k >= 0 {
			rb, ok2 := a.ConstBound(t.B)
			if !ok2 {
				return Interval{}, false
			}
			return rb.MulConst(k), true
		}
		return Interval{}, false
	case *FloorDiv:
		if k, ok := IsConst(t.B); ok && k > 0 {
			lb, ok1 := a.ConstBound(t.A)
			if !ok1 {
				return Interval{}, false
			}
			return Interval{
				Min:    floorDiv(lb.Min, k),
				Extent: floorDiv(lb.Max(), k) - floorDiv(lb.Min, k) + 1,
			}, true
		}
		return Interval{}, false
	case *FloorMod:
		if k, ok := IsConst(t.B); ok && k > 0 {
			lb, ok1 := a.ConstBound(t.A)
			if ok1 && lb.Extent <= k && floorDiv(lb.Min, k) == floorDiv(lb.Max(), k) {
				return Interval{Min: floorMod(lb.Min, k), Extent: lb.Extent}, true
			}
			return Interval{Min: 0, Extent: k}, true
		}
		return Interval{}, false
	default:
		return Interval{}, false
	}
}

func (a *DefaultAnalyzer) CanProve(e BoolExpr) bool {
	switch t := e.(type) {
	case boolConst:
		return bool(t)
	case *And:
		for _, arg := range t.Args {
			if !a.CanProve(arg) {
				return false
			}
		}
		return true
	case *Cmp:
		return a.canProveCmp(t.Op, t.A, t.B)
	default:
		return false
	}
}

func (a *DefaultAnalyzer) canProveCmp(op CmpOp, lhs, rhs Expr) bool {
	if op == EQ {
		return a.CanProveEqual(lhs, rhs)
	}
	if op == NE {
		lb, ok1 := a.ConstBound(lhs)
		rb, ok2 := a.ConstBound(rhs)
		return ok1 && ok2 && (lb.Max() < rb.Min || rb.Max() < lb.Min)
	}

	lb, ok1 := a.ConstBound(lhs)
	rb, ok2 := a.ConstBound(rhs)
	if !ok1 || !ok2 {
		return false
	}

	switch op {
	case LT:
		return lb.Max() < rb.Min
	case LE:
		return lb.Max() <= rb.Min
	case GT:
		return lb.Min > rb.Max()
	case GE:
		return lb.Min >= rb.Max()
	default:
		return false
	}
}

func (a *DefaultAnalyzer) CanProveEqual(lhs, rhs Expr) bool {
	if ExprEqual(lhs, rhs) {
		return true
	}
	diff := a.Simplify(NewSub(lhs, rhs))
	if v, ok := IsConst(diff); ok {
		return v == 0
	}
	lb, ok1 := a.ConstBound(lhs)
	rb, ok2 := a.ConstBound(rhs)
	return ok1 && ok2 && lb.Extent == 1 && rb.Extent == 1 && lb.Min == rb.Min
}

func (a *DefaultAnalyzer) CanProveDivisible(e Expr, divisor int64) bool {
	if divisor == 0 {
		return false
	}
	if v, ok := IsConst(e); ok {
		return v%divisor == 0
	}
	switch t := e.(type) {
	case *Mul:
		if k, ok := IsConst(t.B); ok {
			return gcd64(k, divisor) == abs64(divisor) || a.CanProveDivisible(t.A, divisor/gcd64(k, divisor))
		}
		if k, ok := IsConst(t.A); ok {
			return gcd64(k, divisor) == abs64(divisor) || a.CanProveDivisible(t.B, divisor/gcd64(k, divisor))
		}
	case *Add:
		return a.CanProveDivisible(t.A, divisor) && a.CanProveDivisible(t.B, divisor)
	}
	if iv, ok := a.ConstBound(e); ok && iv.Extent == 1 {
		return iv.Min%divisor == 0
	}
	return false
}

func (a *DefaultAnalyzer) Simplify(e Expr) Expr {
	switch t := e.(type) {
	case *Var, *Const:
		return e
	case *Add:
		la, ra := a.Simplify(t.A), a.Simplify(t.B)
		if lv, ok := IsConst(la); ok {
			if rv, ok := IsConst(ra); ok {
				return NewConst(lv + rv)
			}
			if lv == 0 {
				return ra
			}
		}
		if rv, ok := IsConst(ra); ok && rv == 0 {
			return la
		}
		return NewAdd(la, ra)
	case *Sub:
		la, ra := a.Simplify(t.A), a.Simplify(t.B)
		if lv, ok := IsConst(la); ok {
			if rv, ok := IsConst(ra); ok {
				return NewConst(lv - rv)
			}
		}
		if rv, ok := IsConst(ra); ok && rv == 0 {
			return la
		}
		return NewSub(la, ra)
	case *Mul:
		la, ra := a.Simplify(t.A), a.Simplify(t.B)
		if lv, ok := IsConst(la); ok {
			if rv, ok := IsConst(ra); ok {
				return NewConst(lv * rv)
			}
			if lv == 1 {
				return ra
			}
			if lv == 0 {
				return NewConst(0)
			}
		}
		if rv, ok := IsConst(ra); ok {
			if rv == 1 {
				return la
			}
			if rv == 0 {
				return NewConst(0)
			}
		}
		return NewMul(la, ra)
	case *FloorDiv:
		la, ra := a.Simplify(t.A), a.Simplify(t.B)
		if lv, ok := IsConst(la); ok {
			if rv, ok := IsConst(ra); ok && rv != 0 {
				return NewConst(floorDiv(lv, rv))
			}
		}
		if rv, ok := IsConst(ra); ok && rv == 1 {
			return la
		}
		return NewFloorDiv(la, ra)
	case *FloorMod:
		la, ra := a.Simplify(t.A), a.Simplify(t.B)
		if lv, ok := IsConst(la); ok {
			if rv, ok := IsConst(ra); ok && rv != 0 {
				return NewConst(floorMod(lv, rv))
			}
		}
		if rv, ok := IsConst(ra); ok && rv == 1 {
			return NewConst(0)
		}
		return NewFloorMod(la, ra)
	default:
		return e
	}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func gcd64(a, b int64) int64 {
	g := int64(mathutil.GCDUint64(uint64(abs64(a)), uint64(abs64(b))))
	if g == 0 {
		return 1
	}
	return g
}
