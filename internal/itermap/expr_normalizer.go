package itermap

import "github.com/loopmap/itermap/internal/ir"

// NormalizeIterMapToExpr converts a normalized Sum back into a host
// expression tree, the inverse direction of the rewriter (spec §6's
// normalize_iter_map_to_expr). Each split is printed with the smallest
// expression that still denotes it: the three-way degenerate rule from
// the original's IterMapToExprNormalizer::ConvertIterSplitExpr
// (SPEC_FULL "three-way split-to-expr rule").
func NormalizeIterMapToExpr(s *Sum) ir.Expr {
	var result ir.Expr

	for _, sp := range s.Args {
		term := splitToExpr(sp)
		if result == nil {
			result = term
		} else {
			result = ir.NewAdd(result, term)
		}
	}

	if result == nil && s.Base == 0 {
		if s.Extra != nil {
			return s.Extra
		}
		return ir.NewConst(0)
	}
	if result == nil {
		result = ir.NewConst(s.Base)
	} else if s.Base != 0 {
		result = ir.NewAdd(result, ir.NewConst(s.Base))
	}
	if s.Extra != nil {
		result = ir.NewAdd(result, s.Extra)
	}
	return result
}

func splitToExpr(sp *Split) ir.Expr {
	source := markToExpr(sp.Source)
	srcExtent := sp.Source.Extent

	switch {
	case sp.Extent == srcExtent && sp.LowerFactor == 1:
		// The split covers the whole of its source mark: no floordiv or
		// floormod is needed at all.
		return scaleExpr(source, sp.Scale)
	case srcExtent == sp.LowerFactor*sp.Extent:
		// The split runs to the top of its source mark: the floormod that
		// would clip it to Extent is a no-op.
		return scaleExpr(floordivExpr(source, sp.LowerFactor), sp.Scale)
	default:
		return scaleExpr(floormodExpr(floordivExpr(source, sp.LowerFactor), sp.Extent), sp.Scale)
	}
}

func markToExpr(m *Mark) ir.Expr {
	if sum, ok := m.Source.(*Sum); ok {
		return NormalizeIterMapToExpr(sum)
	}
	return m.Source
}

func scaleExpr(e ir.Expr, scale int64) ir.Expr {
	if scale == 1 {
		return e
	}
	return ir.NewMul(e, ir.NewConst(scale))
}

func floordivExpr(e ir.Expr, factor int64) ir.Expr {
	if factor == 1 {
		return e
	}
	return ir.NewFloorDiv(e, ir.NewConst(factor))
}

func floormodExpr(e ir.Expr, extent int64) ir.Expr {
	return ir.NewFloorMod(e, ir.NewConst(extent))
}
