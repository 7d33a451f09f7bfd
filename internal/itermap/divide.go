package itermap

import (
	"sort"

	"github.com/loopmap/itermap/internal/ir"
)

// DivisionResult is one index split into an outer*InnerExtent+Inner+Base
// form, where Outer only depends on iterators the caller marked "outer"
// and Inner only on iterators marked "inner" (spec §4.8, C8).
type DivisionResult struct {
	Outer       ir.Expr
	Inner       ir.Expr
	OuterExtent int64
	InnerExtent int64
	Base        int64
	// Extra is the index's non-iterator symbolic remainder, if any — it
	// belongs to neither the inner nor the outer subspace, so it is
	// carried through unsplit, the same way Base is.
	Extra ir.Expr
}

// Expr reconstructs the original indexed value from the division.
func (d *DivisionResult) Expr() ir.Expr {
	outer := d.Outer
	if d.InnerExtent != 1 {
		outer = ir.NewMul(outer, ir.NewConst(d.InnerExtent))
	}
	result := ir.NewAdd(outer, d.Inner)
	if d.Base != 0 {
		result = ir.NewAdd(result, ir.NewConst(d.Base))
	}
	if d.Extra != nil {
		result = ir.NewAdd(result, d.Extra)
	}
	return result
}

func leafVarsOfMark(m *Mark) []*ir.Var {
	switch t := m.Source.(type) {
	case *ir.Var:
		return []*ir.Var{t}
	case *ir.Sub:
		if v, ok := t.A.(*ir.Var); ok {
			return []*ir.Var{v}
		}
		return nil
	case *Sum:
		var vars []*ir.Var
		for _, sp := range t.Args {
			vars = append(vars, leafVarsOfMark(sp.Source)...)
		}
		return vars
	default:
		return nil
	}
}

// flattenSplits expands any split that is a full-range wrap of a fused
// mark (the shape TryFuseIters always produces) into the leaf-level splits
// underneath it, rescaling each by the wrapping split's own scale. Subspace
// division needs to classify at leaf granularity, since a prior global
// fuse pass may have merged an inner and an outer iterator into a single
// mark before the caller ever asked to divide the space between them.
func flattenSplits(args []*Split) []*Split {
	var out []*Split
	for _, sp := range args {
		if inner, ok := sp.Source.Source.(*Sum); ok && sp.LowerFactor == 1 && sp.Extent == sp.Source.Extent {
			for _, n := range flattenSplits(inner.Args) {
				cp := n.Clone()
				cp.Scale *= sp.Scale
				out = append(out, cp)
			}
			continue
		}
		out = append(out, sp)
	}
	return out
}

// classify reports whether every leaf variable reachable from m belongs to
// the inner subspace, the outer subspace, or a mix of both.
func classify(m *Mark, isInner func(*ir.Var) bool) (inner, outer bool) {
	for _, v := range leafVarsOfMark(m) {
		if isInner(v) {
			inner = true
		} else {
			outer = true
		}
	}
	return inner, outer
}

// divideSum divides one index's normalized Sum into outer and inner parts.
// It requires sum's args to already form one contiguous row-major system
// (the usual case for a DetectIterMap result) and the inner/outer
// classification to split that system into a low contiguous block (inner)
// and a high contiguous block (outer) with no interleaving — the same
// positional contiguity TryFuseIters itself requires, applied to a
// bipartition instead of a full fuse.
func divideSum(sum *Sum, isInner func(*ir.Var) bool, sess *Session, idx int) (*DivisionResult, bool) {
	if len(sum.Args) == 0 {
		return &DivisionResult{
			Outer: ir.NewConst(0), Inner: ir.NewConst(0),
			OuterExtent: 1, InnerExtent: 1, Base: sum.Base, Extra: sum.Extra,
		}, true
	}

	sortedAll := flattenSplits(sum.Args)
	sort.Slice(sortedAll, func(i, j int) bool { return sortedAll[i].Scale < sortedAll[j].Scale })

	if !isRowMajor(sortedAll) {
		sess.Fail(CannotDivideByIterator, idx, "index %d is not a contiguous positional system and cannot be subspace-divided", idx)
		return nil, false
	}

	boundary := len(sortedAll)
	seenOuter := false
	for i, sp := range sortedAll {
		in, out := classify(sp.Source, isInner)
		if in && out {
			sess.Fail(NotIndependent, idx, "split %s mixes inner and outer iterators", sp)
			return nil, false
		}
		if out {
			if !seenOuter {
				boundary = i
				seenOuter = true
			}
			continue
		}
		if seenOuter {
			sess.Fail(CannotDivideByIterator, idx, "index %d interleaves inner and outer iterators", idx)
			return nil, false
		}
	}

	innerGroup := sortedAll[:boundary]
	outerGroup := sortedAll[boundary:]

	innerExtent := int64(1)
	if len(innerGroup) > 0 {
		innerExtent = rowMajorExtent(innerGroup)
	}

	outerExtent := int64(1)
	var rescaledOuter []*Split
	for _, sp := range outerGroup {
		cp := sp.Clone()
		cp.Scale /= innerExtent
		rescaledOuter = append(rescaledOuter, cp)
		outerExtent *= sp.Extent
	}

	innerSum := NewSum(innerGroup, 0)
	outerSum := NewSum(rescaledOuter, 0)

	return &DivisionResult{
		Outer:       NormalizeIterMapToExpr(outerSum),
		Inner:       NormalizeIterMapToExpr(innerSum),
		OuterExtent: outerExtent,
		InnerExtent: innerExtent,
		Base:        sum.Base,
		Extra:       sum.Extra,
	}, true
}

// SubspaceDivide divides every index's result into outer and inner parts
// per divideSum, and returns the bound predicates that hold on each part
// by construction (the original's outer_preds_/inner_preds_).
func SubspaceDivide(sums []*Sum, isInner func(*ir.Var) bool, sess *Session) ([]*DivisionResult, []ir.BoolExpr, []ir.BoolExpr, bool) {
	results := make([]*DivisionResult, len(sums))
	var outerPreds, innerPreds []ir.BoolExpr

	for i, sum := range sums {
		dr, ok := divideSum(sum, isInner, sess, i)
		if !ok {
			return nil, nil, nil, false
		}
		results[i] = dr
		outerPreds = append(outerPreds, ir.NewCmp(ir.LT, dr.Outer, ir.NewConst(dr.OuterExtent)))
		innerPreds = append(innerPreds, ir.NewCmp(ir.LT, dr.Inner, ir.NewConst(dr.InnerExtent)))
	}

	return results, outerPreds, innerPreds, true
}
