package itermap

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

// collectMarks walks every index's normalized Sum and groups the Splits
// that reference each Mark together, recursing into a fused mark's own
// wrapped Sum so a split of a split-of-a-fusion is still attributed to the
// leaf marks underneath it. This is IterMarkSplitCollector generalized to
// recurse (SPEC_FULL "IterMarkSplitCollector's recursive mark collection"),
// needed by both the coverage checker and the subspace divider.
func collectMarks(sums []*Sum) map[*Mark][]*Split {
	result := make(map[*Mark][]*Split)
	visited := make(map[*Sum]bool)

	var visit func(s *Sum)
	visit = func(s *Sum) {
		if s == nil || visited[s] {
			return
		}
		visited[s] = true
		for _, sp := range s.Args {
			result[sp.Source] = append(result[sp.Source], sp)
			if inner, ok := sp.Source.Source.(*Sum); ok {
				visit(inner)
			}
		}
	}

	for _, s := range sums {
		visit(s)
	}
	return result
}

// checkPartition verifies, for every mark touched by any index, that the
// splits used of it are consistent with tiling [0, mark.Extent) in
// ascending LowerFactor order (TryNormalizeSplits / CheckMapping in the
// original, spec §4.5-§4.6).
//
// In bijective mode each split's LowerFactor must equal the running
// "expected" factor exactly (no gap, no overlap) and the last split's
// UpperFactor must equal the mark's own extent — every value the mark can
// take is used by exactly one combination of splits.
//
// In non-bijective mode the tiling may skip over a middle range that no
// split ever references (spec §4.5 point 3's `y ∈ [0,24)` example: `y/6`
// and `y%2` alone are valid without `(y/2)%3`), so each split's
// LowerFactor is only required to divide evenly by the running expected
// factor rather than equal it, and the final expected factor is only
// required to divide the mark's extent rather than equal it.
func checkPartition(marks map[*Mark][]*Split, bijective bool, sess *Session) bool {
	ok := true

	for mark, splits := range marks {
		sorted := append([]*Split(nil), splits...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].LowerFactor < sorted[j].LowerFactor })

		expected := int64(1)
		gap := false
		for _, sp := range sorted {
			if bijective {
				if sp.LowerFactor != expected {
					sess.Fail(IncompleteSplit, -1, "splits of %s leave a gap before lower factor %d", mark, sp.LowerFactor)
					gap = true
					break
				}
			} else if sp.LowerFactor%expected != 0 {
				sess.Fail(IncompleteSplit, -1, "splits of %s are inconsistent: lower factor %d does not divide evenly into %d", mark, sp.LowerFactor, expected)
				gap = true
				break
			}
			expected = sp.UpperFactor()
		}
		if gap {
			ok = false
			continue
		}

		if bijective {
			if expected != mark.Extent {
				sess.Fail(UncoveredMark, -1, "splits of %s cover only %d of %d", mark, expected, mark.Extent)
				ok = false
			}
		} else if mark.Extent%expected != 0 {
			sess.Fail(UncoveredMark, -1, "splits of %s cover %d, which does not evenly divide its extent %d", mark, expected, mark.Extent)
			ok = false
		}
	}

	return ok
}

// checkFullCoverage verifies that every leaf mark the rewriter registered
// for an input variable is reachable, directly or through a chain of
// fusions, from at least one of the final per-index sums. A leaf mark left
// untouched means some loop variable never influences any index, which
// bijective detection must reject (spec §4.6, §6 bijective mode).
func checkFullCoverage(topSums []*Sum, leaves []*Mark, sess *Session) bool {
	need := make(map[*Mark]bool, len(leaves))
	for _, m := range leaves {
		need[m] = true
	}

	var remove func(m *Mark)
	remove = func(m *Mark) {
		if sum, ok := m.Source.(*Sum); ok {
			for _, sp := range sum.Args {
				remove(sp.Source)
			}
			return
		}
		delete(need, m)
	}

	for _, s := range topSums {
		for _, sp := range s.Args {
			remove(sp.Source)
		}
	}

	if len(need) > 0 {
		names := lo.Map(lo.Keys(need), func(m *Mark, _ int) string { return m.String() })
		sort.Strings(names)
		sess.Fail(UncoveredMark, -1, "%d input iterator(s) are not covered by any index: %s", len(need), strings.Join(names, ", "))
		return false
	}
	return true
}
