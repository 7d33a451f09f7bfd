package itermap

import "fmt"

// splitIdentityKey is a split's structural identity (mark, lower factor,
// extent) ignoring scale, used to compare the split sets two predicate
// constraints were flattened from.
func splitIdentityKey(sp *Split) string {
	return fmt.Sprintf("%p:%d:%d", sp.Source, sp.LowerFactor, sp.Extent)
}

func splitIdentitySet(splits []*Split) map[string]bool {
	set := make(map[string]bool, len(splits))
	for _, sp := range splits {
		set[splitIdentityKey(sp)] = true
	}
	return set
}

// relateSplitSets classifies how two split sets overlap: equal (the same
// splits), disjoint (none shared), included (one is a subset of the
// other), or neither, a "mixed" partial overlap that shares some but not
// all splits.
func relateSplitSets(a, b map[string]bool) (equal, disjoint, included bool) {
	shared := 0
	for k := range a {
		if b[k] {
			shared++
		}
	}
	switch {
	case shared == 0:
		return false, true, false
	case shared == len(a) && shared == len(b):
		return true, false, true
	case shared == len(a) || shared == len(b):
		return false, false, true
	default:
		return false, false, false
	}
}

// checkConstraintsConsistent verifies, for every pair of predicate-derived
// bounds, that their split sets are either disjoint, related by
// inclusion, or identical (spec §4.4's check_constraints). A "mixed"
// partial overlap, where the two bounds share some but not all of the
// splits they were flattened from, can never be expressed as a single
// affine bound and is rejected. Two bounds over the identical split set
// must additionally agree on both the lower offset and the extent,
// otherwise the predicate is unsatisfiable as an affine bound (spec §7's
// OverlappingConstraints).
func checkConstraintsConsistent(constraints []*iterConstraint, sess *Session) bool {
	ok := true

	for i := 0; i < len(constraints); i++ {
		for j := i + 1; j < len(constraints); j++ {
			a, b := constraints[i], constraints[j]
			setA, setB := splitIdentitySet(a.Splits), splitIdentitySet(b.Splits)
			equal, disjoint, included := relateSplitSets(setA, setB)

			if !equal && !disjoint && !included {
				sess.Fail(OverlappingConstraints, -1,
					"predicate bounds on %s and %s partially overlap", fuseKey(a.Splits), fuseKey(b.Splits))
				ok = false
				continue
			}
			if equal && (a.Lower != b.Lower || a.Extent != b.Extent) {
				sess.Fail(OverlappingConstraints, -1,
					"conflicting bounds on the same iterator group: [%d, %d) vs [%d, %d)",
					a.Lower, a.Lower+a.Extent, b.Lower, b.Lower+b.Extent)
				ok = false
			}
		}
	}

	return ok
}
