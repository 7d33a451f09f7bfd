package itermap

import (
	"github.com/loopmap/itermap/internal/ir"
)

// Range is the domain a loop variable ranges over: [Min, Min+Extent). It is
// exactly ir.Interval, named here to match spec.md's vocabulary at the
// package boundary callers use.
type Range = ir.Interval

// IterRangeSanityCheck validates that rng is a well-formed, finite,
// positive-extent range before it is registered with the rewriter,
// the one check every entry point performs up front (spec §6's "sanity
// check" step, SanityFailed on violation).
func IterRangeSanityCheck(v *ir.Var, rng Range, sess *Session) bool {
	if rng.Extent <= 0 {
		sess.Fail(SanityFailed, -1, "variable %s has non-positive extent %d", v, rng.Extent)
		return false
	}
	return true
}

// DetectIterMap is the top-level entry point (spec §6): it canonicalizes
// every index in indices into a Sum over fused iteration marks, checks
// that the splits of every mark the indices use tile it consistently and,
// if bijective is true, that every input iterator is covered exactly once
// (with bijective false an input iterator no index uses is accepted), and
// returns the per-index results in the same order as indices. On any failure it returns
// (nil, false) with the reason recorded in sess.
func DetectIterMap(
	indices []ir.Expr,
	inputRanges map[*ir.Var]Range,
	predicate ir.BoolExpr,
	bijective bool,
	analyzer ir.Analyzer,
	sess *Session,
) ([]*Sum, bool) {
	r := newRewriter(analyzer, sess)

	for v, rng := range inputRanges {
		if !IterRangeSanityCheck(v, rng, sess) {
			return nil, false
		}
		if analyzer != nil {
			analyzer.Bind(v, rng)
		}
		r.registerVar(v, rng)
	}

	if predicate != nil && !ir.IsTrue(predicate) {
		if !r.splitPredicate(predicate) {
			return nil, false
		}
		if !checkConstraintsConsistent(r.constraints, sess) {
			return nil, false
		}
	}

	results := make([]*Sum, len(indices))
	for i, idx := range indices {
		before := sess.mark()
		sum, ok := r.mutate(idx)
		if !ok {
			sess.patchIndex(before, i)
			return nil, false
		}
		results[i] = r.fuseSum(sum)
	}

	if !checkPartition(collectMarks(results), bijective, sess) {
		return nil, false
	}

	if bijective && !checkFullCoverage(results, r.inputMarks, sess) {
		return nil, false
	}

	return results, true
}

// IterMapSimplify always succeeds: it runs DetectIterMap and, on success,
// normalizes every result back into a host expression; on failure it
// returns the original indices unchanged rather than propagating the
// failure, matching IterMapSimplify in the original and spec §6's
// interface table (SPEC_FULL "iter_map_simplify as a distinct,
// always-succeeding entry point").
func IterMapSimplify(
	indices []ir.Expr,
	inputRanges map[*ir.Var]Range,
	predicate ir.BoolExpr,
	bijective bool,
	analyzer ir.Analyzer,
) []ir.Expr {
	scratch := NewSession(nil)

	sums, ok := DetectIterMap(indices, inputRanges, predicate, bijective, analyzer, scratch)
	if !ok {
		return indices
	}

	out := make([]ir.Expr, len(sums))
	for i, s := range sums {
		out[i] = NormalizeIterMapToExpr(s)
	}
	return out
}
