package itermap

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// fuseKey returns a canonical signature for a set of splits that
// identifies the positional system they would form if fused, ignoring
// scale — two calls to fuseIters with the same underlying marks and
// lower factors, in any order, must hit the same sumFuseMap entry, the
// way sum_fuse_map_ is keyed in the original.
func fuseKey(splits []*Split) string {
	keys := make([]string, len(splits))
	for i, s := range splits {
		keys[i] = fmt.Sprintf("%p:%d:%d", s.Source, s.LowerFactor, s.Extent)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

// matchConstraint looks for a recorded predicate bound whose split set is
// exactly splits (the sorted-by-scale row-major group fuseIters is about
// to collapse), consuming it so it cannot be reused by a second, unrelated
// fuse attempt. It mirrors constrained_iters_flattened_ in the original:
// a predicate like "x*6 + y < 44" overrides the natural product extent of
// the fused (x, y) pair with 44 rather than 48.
func (r *rewriter) matchConstraint(splits []*Split) (*iterConstraint, bool) {
	if r.usedConstraints == nil {
		r.usedConstraints = bitset.New(uint(len(r.constraints)))
	}
	key := fuseKey(splits)
	for i, c := range r.constraints {
		if r.usedConstraints.Test(uint(i)) {
			continue
		}
		if fuseKey(c.Splits) == key {
			r.usedConstraints.Set(uint(i))
			return c, true
		}
	}
	return nil, false
}

// isRowMajor reports whether sorted (already ordered by ascending Scale)
// forms a contiguous positional system: every split's LowerFactor is 1 and
// its Scale equals the first split's Scale times the product of the extents
// of the splits before it, i.e. each successive split picks up exactly
// where the previous one's range ends.
func isRowMajor(sorted []*Split) bool {
	running := sorted[0].Scale
	for _, s := range sorted {
		if s.LowerFactor != 1 || s.Scale != running {
			return false
		}
		running *= s.Extent
	}
	return true
}

// rowMajorExtent returns the combined extent of a row-major group: the
// product of every split's own extent.
func rowMajorExtent(sorted []*Split) int64 {
	extent := int64(1)
	for _, s := range sorted {
		extent *= s.Extent
	}
	return extent
}

// fuseIters attempts to collapse splits into a single split over one fused
// Mark: C4, "detect a contiguous positional system and collapse it to one
// mark" per spec §4.4. splits must all be splits of distinct marks that
// have not yet been combined with anything else. Ordering them by
// ascending scale and requiring each one's scale equal the running product
// of the extents seen so far is the row-major contiguity check; any gap
// means the combination is not affine-fusible and the caller must keep the
// splits separate.
//
// On success it also returns the offset the caller must add to its own
// sum's base: C5 (spec §4.4) lets a predicate-derived constraint on the
// fused group tighten the natural extent to iter_min = max(0, c.Lower),
// iter_max = min(naturalExtent, c.Lower+c.Extent), with iter_min folded
// into the fused mark itself (so the mark represents [0, iter_max-iter_min)
// rather than [0, naturalExtent)) and handed back here so the caller can
// fold it into its own base and reconstruct the original value exactly.
func (r *rewriter) fuseIters(splits []*Split) (*Split, int64, bool) {
	if len(splits) == 0 {
		return nil, 0, false
	}
	if len(splits) == 1 {
		return splits[0], 0, true
	}

	sorted := append([]*Split(nil), splits...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Scale < sorted[j].Scale })

	seen := make(map[*Mark]bool, len(sorted))
	for _, s := range sorted {
		if seen[s.Source] {
			r.sess.Fail(FuseFailed, -1, "mark %s used more than once in the same sum", s.Source)
			return nil, 0, false
		}
		seen[s.Source] = true
	}

	if !isRowMajor(sorted) {
		return nil, 0, false
	}
	baseScale := sorted[0].Scale
	naturalExtent := rowMajorExtent(sorted)

	fusedExtent := naturalExtent
	fusedBase := int64(0)
	var offset int64
	if c, ok := r.matchConstraint(sorted); ok {
		iterMin := int64(0)
		if c.Lower > iterMin {
			iterMin = c.Lower
		}
		iterMax := naturalExtent
		if c.Lower+c.Extent < iterMax {
			iterMax = c.Lower + c.Extent
		}
		if iterMin >= iterMax {
			r.sess.Fail(InconsistentOffset, -1, "constraint [%d, %d) leaves no valid value for %s", c.Lower, c.Lower+c.Extent, fuseKey(sorted))
			return nil, 0, false
		}
		fusedExtent = iterMax - iterMin
		fusedBase = -iterMin
		offset = iterMin * baseScale
	}

	key := fuseKey(sorted)
	if mark, ok := r.fuseMarks[key]; ok {
		return NewSplitScaled(mark, 1, fusedExtent, baseScale), offset, true
	}

	// The fused sum stores its args outermost (largest scale) first.
	sumArgs := make([]*Split, len(sorted))
	for i, s := range sorted {
		sumArgs[len(sorted)-1-i] = NewSplitScaled(s.Source, s.LowerFactor, s.Extent, s.Scale/baseScale)
	}
	fusedSum := NewSum(sumArgs, fusedBase)

	mark := NewMark(fusedSum, fusedExtent)
	r.fuseMarks[key] = mark
	return NewSplitScaled(mark, 1, fusedExtent, baseScale), offset, true
}

// fuseSum rewrites sum's own top-level args into a single fused split
// whenever they form a contiguous positional system; if they do not, it
// returns sum unchanged rather than failing, since an unfused sum of
// several independent splits is itself a perfectly valid normalized form
// (spec §3's IterSumExpr does not require every sum to collapse to one
// split).
func (r *rewriter) fuseSum(sum *Sum) *Sum {
	if len(sum.Args) < 2 {
		return sum
	}
	fused, offset, ok := r.fuseIters(sum.Args)
	if !ok {
		return sum
	}
	out := NewSum([]*Split{fused}, sum.Base+offset)
	out.Extra = sum.Extra
	return out
}
