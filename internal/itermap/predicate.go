package itermap

import (
	"sort"

	"github.com/loopmap/itermap/internal/ir"
)

// iterConstraint is a bound derived from one predicate conjunct, once its
// iterator-dependent side has been rewritten into a Sum: the value of that
// sum's splits (the sum less its constant base) lies in
// [Lower, Lower+Extent). When Splits names more than one
// not-yet-fused split, the fuser consults this to override the natural
// product-of-extents fused extent with the (possibly smaller) extent the
// predicate actually proves, mirroring constrained_iters_flattened_ in the
// original rewriter. Complexity is the node count of the bound's original
// host expression, which splitPredicate uses to sort constraints ascending
// so shorter sub-expressions are rewritten before the enclosing expressions
// that contain them (§4.1).
type iterConstraint struct {
	Splits     []*Split
	Lower      int64
	Extent     int64
	Complexity int
}

// openExtent is the sentinel extent boundToRange returns for a one-sided
// bound (">=" or ">"): an upper bound wide enough that it is never itself
// the binding constraint, only ever narrowed by a second conjunct.
const openExtent = int64(1) << 62

// boundSides splits a comparison into (iteratorSide, constSide, op) with op
// normalized so the iterator-dependent expression is always on the left,
// e.g. "5 <= x" becomes "x >= 5". Returns ok=false if neither side is a
// plain constant.
func boundSides(c *ir.Cmp) (lhs ir.Expr, k int64, op ir.CmpOp, ok bool) {
	if v, isConst := ir.IsConst(c.B); isConst {
		return c.A, v, c.Op, true
	}
	if v, isConst := ir.IsConst(c.A); isConst {
		return c.B, v, c.Op.Swap(), true
	}
	return nil, 0, 0, false
}

// splitPredicate decomposes pred's top-level conjuncts into bound
// constraints on the rewritten iterator expressions, appending each to
// r.constraints. It returns false (after recording a BadPredicate
// diagnostic) the first time a conjunct is not a single comparison against
// a constant, per spec §4.1 — the predicate splitter only ever recognizes
// a conjunction of such comparisons.
func (r *rewriter) splitPredicate(pred ir.BoolExpr) bool {
	start := len(r.constraints)

	for idx, conjunct := range ir.Conjuncts(pred) {
		cmp, ok := conjunct.(*ir.Cmp)
		if !ok {
			r.sess.Fail(BadPredicate, idx, "predicate conjunct %s is not a comparison", conjunct)
			return false
		}

		lhs, k, op, ok := boundSides(cmp)
		if !ok {
			r.sess.Fail(BadPredicate, idx, "predicate conjunct %s has no constant bound", cmp)
			return false
		}

		sum, ok := r.mutate(lhs)
		if !ok {
			r.sess.Fail(BadPredicate, idx, "could not canonicalize bound expression %s", lhs)
			return false
		}
		if sum.Extra != nil {
			r.sess.Fail(BadPredicate, idx, "bound expression %s depends on an unregistered free variable", lhs)
			return false
		}

		lower, extent, ok := boundToRange(op, k)
		if !ok {
			r.sess.Fail(BadPredicate, idx, "comparison operator %s does not bound a range", op)
			return false
		}

		newLower, newExtent := lower-sum.Base, extent

		// A lower-bound conjunct ("x >= k") and an upper-bound conjunct on
		// the same split set, such as the two halves of "1 <= j*2+k < 9",
		// are one range constraint split across two comparisons: combine
		// them into the one-sided bound's actual range rather than record
		// both, so checkConstraintsConsistent sees a single bound per
		// group. Two bounds that are already both closed, such as
		// "x < 44" and "x < 40" on the same group, are left as independent
		// constraints for checkConstraintsConsistent to arbitrate, since
		// they are not two halves of one range but two separately asserted
		// facts that may simply disagree.
		merged := false
		key := fuseKey(sum.Args)
		for _, existing := range r.constraints[start:] {
			if fuseKey(existing.Splits) != key {
				continue
			}
			if (existing.Extent == openExtent) == (newExtent == openExtent) {
				continue
			}
			lo := existing.Lower
			if newLower > lo {
				lo = newLower
			}
			hi := existing.Lower + existing.Extent
			if newHi := newLower + newExtent; newHi < hi {
				hi = newHi
			}
			if hi <= lo {
				r.sess.Fail(BadPredicate, idx, "bounds on %s leave no valid value", lhs)
				return false
			}
			existing.Lower = lo
			existing.Extent = hi - lo
			if c := ir.NodeCount(lhs); c > existing.Complexity {
				existing.Complexity = c
			}
			merged = true
			break
		}
		if !merged {
			r.constraints = append(r.constraints, &iterConstraint{
				Splits:     sum.Args,
				Lower:      newLower,
				Extent:     newExtent,
				Complexity: ir.NodeCount(lhs),
			})
		}
	}

	fresh := r.constraints[start:]
	sort.SliceStable(fresh, func(i, j int) bool { return fresh[i].Complexity < fresh[j].Complexity })

	return true
}

// boundToRange turns "lhs OP k" into the half-open range lhs must lie in.
// A one-sided lower bound (">=" or ">") gets the openExtent sentinel as its
// extent; "x != k" returns ok=false.
func boundToRange(op ir.CmpOp, k int64) (lower, extent int64, ok bool) {
	switch op {
	case ir.LT:
		return 0, k, true
	case ir.LE:
		return 0, k + 1, true
	case ir.GE:
		return k, openExtent, true
	case ir.GT:
		return k + 1, openExtent, true
	case ir.EQ:
		return k, 1, true
	default:
		return 0, 0, false
	}
}
