package itermap

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/loopmap/itermap/internal/ir"
)

// rewriter turns host expressions over a fixed set of loop variables into
// Sums of Splits over per-variable leaf Marks, the way IterMapRewriter
// does in the original — one instance is built per detect_iter_map call
// and shared across every index and predicate conjunct so fusion and
// constraint state accumulate across all of them.
type rewriter struct {
	analyzer    ir.Analyzer
	sess        *Session
	varMap      map[*ir.Var]*Sum
	inputMarks  []*Mark
	constraints []*iterConstraint

	// fuseMarks caches the fused Mark built for a given group signature,
	// so the same physical combination of iterators always fuses to the
	// same Mark pointer no matter how many indices reference it.
	fuseMarks map[string]*Mark

	// usedConstraints tracks which predicate-derived bounds have already
	// been consumed by a fuse match, lazily sized once len(constraints)
	// is known.
	usedConstraints *bitset.BitSet
}

func newRewriter(analyzer ir.Analyzer, sess *Session) *rewriter {
	return &rewriter{
		analyzer:  analyzer,
		sess:      sess,
		varMap:    make(map[*ir.Var]*Sum),
		fuseMarks: make(map[string]*Mark),
	}
}

// registerVar builds the leaf Sum a loop variable rewrites to, following
// the three cases of the original's var_map_ construction: a singleton
// range collapses to a pure constant, a zero-based range becomes a plain
// mark, and anything else becomes a mark over the shifted variable plus
// the range's minimum as a base offset.
func (r *rewriter) registerVar(v *ir.Var, rng ir.Interval) {
	if rng.Extent == 1 {
		r.varMap[v] = NewSum(nil, rng.Min)
		return
	}
	if rng.Min == 0 {
		mark := NewMark(v, rng.Extent)
		r.inputMarks = append(r.inputMarks, mark)
		r.varMap[v] = NewSum([]*Split{NewSplitFull(mark)}, 0)
		return
	}
	shifted := ir.NewSub(v, ir.NewConst(rng.Min))
	mark := NewMark(shifted, rng.Extent)
	r.inputMarks = append(r.inputMarks, mark)
	r.varMap[v] = NewSum([]*Split{NewSplitFull(mark)}, rng.Min)
}

// mutate is the canonicalizer (C3): it rewrites a host expression into a
// Sum of Splits, or reports false (after recording a diagnostic) when the
// expression is not affine in the registered variables.
func (r *rewriter) mutate(e ir.Expr) (*Sum, bool) {
	switch t := e.(type) {
	case *ir.Var:
		s, ok := r.varMap[t]
		if !ok {
			// A free parameter outside the registered iterators: left
			// untouched as a symbolic remainder rather than rejected,
			// mirroring VisitExpr_(const VarNode*) returning an absent
			// Var unchanged in the original.
			return &Sum{Extra: t}, true
		}
		return s, true

	case *ir.Const:
		return NewSum(nil, t.Value), true

	case *Sum:
		return t, true

	case *Split:
		return NewSum([]*Split{t}, 0), true

	case *ir.Add:
		a, ok1 := r.mutate(t.A)
		b, ok2 := r.mutate(t.B)
		if !ok1 || !ok2 {
			return nil, false
		}
		res := a.Clone()
		for _, arg := range b.Args {
			res.AddToLhs(arg, 1)
		}
		res.AddBase(b.Base)
		res.AddExtra(b.Extra, 1)
		return res, true

	case *ir.Sub:
		a, ok1 := r.mutate(t.A)
		b, ok2 := r.mutate(t.B)
		if !ok1 || !ok2 {
			return nil, false
		}
		res := a.Clone()
		for _, arg := range b.Args {
			res.AddToLhs(arg, -1)
		}
		res.AddBase(-b.Base)
		res.AddExtra(b.Extra, -1)
		return res, true

	case *ir.Mul:
		if k, isConst := ir.IsConst(t.B); isConst {
			a, ok := r.mutate(t.A)
			if !ok {
				return nil, false
			}
			res := a.Clone()
			res.MulToLhs(k)
			return res, true
		}
		if k, isConst := ir.IsConst(t.A); isConst {
			b, ok := r.mutate(t.B)
			if !ok {
				return nil, false
			}
			res := b.Clone()
			res.MulToLhs(k)
			return res, true
		}
		r.sess.Fail(NonAffine, -1, "multiplication %s has no constant side", t)
		return nil, false

	case *ir.FloorDiv:
		k, isConst := ir.IsConst(t.B)
		if !isConst || k <= 0 {
			r.sess.Fail(NonAffine, -1, "floordiv %s has a non-constant or non-positive divisor", t)
			return nil, false
		}
		a, ok := r.mutate(t.A)
		if !ok {
			return nil, false
		}
		a = r.fuseSum(a)
		if a.Extra != nil {
			r.sess.Fail(NotDivisible, -1, "%s has a non-iterator remainder and cannot be divided", t)
			return nil, false
		}
		if len(a.Args) > 1 {
			r.sess.Fail(NotDivisible, -1, "%s is not expressible as an affine split", t)
			return nil, false
		}
		if len(a.Args) == 1 && a.Base != 0 {
			r.sess.Fail(CannotDivSumWithBase, -1, "%s has a nonzero base after fusing its terms and cannot be divided", t)
			return nil, false
		}
		res, ok := splitFloorDivConst(a, k)
		if !ok {
			r.sess.Fail(NotDivisible, -1, "%s is not expressible as an affine split", t)
			return nil, false
		}
		return res, true

	case *ir.FloorMod:
		k, isConst := ir.IsConst(t.B)
		if !isConst || k <= 0 {
			r.sess.Fail(NonAffine, -1, "floormod %s has a non-constant or non-positive divisor", t)
			return nil, false
		}
		a, ok := r.mutate(t.A)
		if !ok {
			return nil, false
		}
		a = r.fuseSum(a)
		if a.Extra != nil {
			r.sess.Fail(NotDivisible, -1, "%s has a non-iterator remainder and cannot be divided", t)
			return nil, false
		}
		if len(a.Args) > 1 {
			r.sess.Fail(NotDivisible, -1, "%s is not expressible as an affine split", t)
			return nil, false
		}
		if len(a.Args) == 1 && a.Base != 0 {
			r.sess.Fail(CannotDivSumWithBase, -1, "%s has a nonzero base after fusing its terms and cannot be divided", t)
			return nil, false
		}
		res, ok := splitFloorModConst(a, k)
		if !ok {
			r.sess.Fail(NotDivisible, -1, "%s is not expressible as an affine split", t)
			return nil, false
		}
		return res, true

	default:
		r.sess.Fail(NonAffine, -1, "unsupported expression node %T", e)
		return nil, false
	}
}

// splitFloorDivConst computes floordiv(sum, divisor) when sum is a single
// split or a pure constant. The caller fuses a multi-term sum down to a
// single split before calling this (spec §4.2/§4.3), so by the time sum
// reaches here len(sum.Args) > 1 means the terms genuinely did not fuse;
// a split whose scale/extent do not divide divisor evenly is reported as
// not divisible, matching CannotDivideByIterator/NotDivisible from spec §7.
func splitFloorDivConst(sum *Sum, divisor int64) (*Sum, bool) {
	if divisor == 1 {
		return sum, true
	}
	if len(sum.Args) == 0 {
		return NewSum(nil, floorDivInt(sum.Base, divisor)), true
	}
	if len(sum.Args) != 1 || sum.Base != 0 {
		return nil, false
	}

	arg := sum.Args[0]
	if arg.Scale%divisor == 0 {
		cp := arg.Clone()
		cp.Scale /= divisor
		return NewSum([]*Split{cp}, 0), true
	}
	if divisor%arg.Scale == 0 {
		d2 := divisor / arg.Scale
		if arg.Extent%d2 == 0 {
			newArg := NewSplitScaled(arg.Source, arg.LowerFactor*d2, arg.Extent/d2, 1)
			return NewSum([]*Split{newArg}, 0), true
		}
	}
	return nil, false
}

// splitFloorModConst computes floormod(sum, divisor) under the same
// pre-fused restrictions as splitFloorDivConst.
func splitFloorModConst(sum *Sum, divisor int64) (*Sum, bool) {
	if divisor == 1 {
		return NewSum(nil, 0), true
	}
	if len(sum.Args) == 0 {
		return NewSum(nil, floorModInt(sum.Base, divisor)), true
	}
	if len(sum.Args) != 1 || sum.Base != 0 {
		return nil, false
	}

	arg := sum.Args[0]
	if arg.Scale%divisor == 0 {
		return NewSum(nil, 0), true
	}
	if divisor%arg.Scale == 0 {
		d2 := divisor / arg.Scale
		if arg.Extent%d2 == 0 {
			newArg := NewSplitScaled(arg.Source, arg.LowerFactor, d2, arg.Scale)
			return NewSum([]*Split{newArg}, 0), true
		}
	}
	return nil, false
}

func floorDivInt(a, b int64) int64 {
	q := a / b
	if a%b != 0 && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorModInt(a, b int64) int64 {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}
