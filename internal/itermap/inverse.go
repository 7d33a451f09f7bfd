package itermap

import (
	"sort"

	"github.com/loopmap/itermap/internal/ir"
)

// markVar reports the original loop variable a leaf mark denotes, and the
// constant offset (spec §3's shifted-variable case) that must be added
// back to the mark's recovered value to obtain the variable's own value.
func markVar(m *Mark) (*ir.Var, int64, bool) {
	switch t := m.Source.(type) {
	case *ir.Var:
		return t, 0, true
	case *ir.Sub:
		if v, ok := t.A.(*ir.Var); ok {
			if k, ok2 := ir.IsConst(t.B); ok2 {
				return v, k, true
			}
		}
	}
	return nil, 0, false
}

// splitInverse returns the expression that recovers a split's own
// positional value from the value of the sum it was a term of:
// floormod(floordiv(remaining, Scale), Extent) * LowerFactor.
func splitInverse(sp *Split, remaining ir.Expr) ir.Expr {
	v := remaining
	if sp.Scale != 1 {
		v = ir.NewFloorDiv(v, ir.NewConst(sp.Scale))
	}
	v = ir.NewFloorMod(v, ir.NewConst(sp.Extent))
	if sp.LowerFactor != 1 {
		v = ir.NewMul(v, ir.NewConst(sp.LowerFactor))
	}
	return v
}

// decomposeSum recovers, for each mark referenced by sum's top-level args,
// the expression (in terms of val) that is that mark's contribution to
// sum. It requires the args to form a row-major, fuse-compatible group
// whenever there is more than one of them — CheckFusePattern's role in
// the original: a sum of splits that was never actually fusible cannot be
// inverted component-wise from one scalar value.
func decomposeSum(sum *Sum, val ir.Expr, sess *Session) (map[*Mark]ir.Expr, bool) {
	remaining := val
	if sum.Base != 0 {
		remaining = ir.NewSub(remaining, ir.NewConst(sum.Base))
	}
	if sum.Extra != nil {
		remaining = ir.NewSub(remaining, sum.Extra)
	}

	result := make(map[*Mark]ir.Expr, len(sum.Args))

	if len(sum.Args) == 0 {
		return result, true
	}
	if len(sum.Args) == 1 {
		sp := sum.Args[0]
		result[sp.Source] = splitInverse(sp, remaining)
		return result, true
	}

	sorted := append([]*Split(nil), sum.Args...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Scale < sorted[j].Scale })
	if !isRowMajor(sorted) {
		sess.Fail(NotIndependent, -1, "sum %s is not a fuse-compatible combination of independent splits", sum)
		return nil, false
	}

	for _, sp := range sorted {
		result[sp.Source] = splitInverse(sp, remaining)
	}
	return result, true
}

func sumExprs(es []ir.Expr) ir.Expr {
	if len(es) == 0 {
		return ir.NewConst(0)
	}
	r := es[0]
	for _, e := range es[1:] {
		r = ir.NewAdd(r, e)
	}
	return r
}

// InverseAffineIterMap builds, for every original loop variable, the
// expression that recovers its value from outputs — one expression per
// entry of sums, in the same order — back-propagating through the
// sum/split DAG in dependency order (spec §4.7, C7). It fails with
// NotIndependent if any mark's contributing splits do not form an
// invertible, fuse-compatible group.
func InverseAffineIterMap(sums []*Sum, outputs []ir.Expr, sess *Session) (map[*ir.Var]ir.Expr, bool) {
	if len(sums) != len(outputs) {
		sess.Fail(NotIndependent, -1, "inverse requires one output expression per index")
		return nil, false
	}

	terms := make(map[*Mark][]ir.Expr)
	queued := make(map[*Mark]bool)
	var level []*Mark

	for i, sum := range sums {
		contribs, ok := decomposeSum(sum, outputs[i], sess)
		if !ok {
			return nil, false
		}
		for m, v := range contribs {
			terms[m] = append(terms[m], v)
			if !queued[m] {
				queued[m] = true
				level = append(level, m)
			}
		}
	}

	result := make(map[*ir.Var]ir.Expr)

	for len(level) > 0 {
		var next []*Mark
		nextQueued := make(map[*Mark]bool)

		for _, m := range level {
			value := sumExprs(terms[m])

			if inner, ok := m.Source.(*Sum); ok {
				contribs, ok2 := decomposeSum(inner, value, sess)
				if !ok2 {
					return nil, false
				}
				for child, v := range contribs {
					terms[child] = append(terms[child], v)
					if !nextQueued[child] {
						nextQueued[child] = true
						next = append(next, child)
					}
				}
				continue
			}

			v, offset, ok := markVar(m)
			if !ok {
				sess.Fail(NotIndependent, -1, "mark %s has no recoverable source variable", m)
				return nil, false
			}
			if offset != 0 {
				value = ir.NewAdd(value, ir.NewConst(offset))
			}
			result[v] = value
		}

		level = next
	}

	return result, true
}
