package itermap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loopmap/itermap/internal/ir"
)

func TestDetectIterMapFusesRowMajorIndex(t *testing.T) {
	x := ir.NewVar("x")
	y := ir.NewVar("y")
	index := ir.NewAdd(ir.NewMul(x, ir.NewConst(6)), y)

	ranges := map[*ir.Var]Range{
		x: {Min: 0, Extent: 8},
		y: {Min: 0, Extent: 6},
	}
	sess := NewSession(nil)

	sums, ok := DetectIterMap([]ir.Expr{index}, ranges, nil, true, ir.NewDefaultAnalyzer(), sess)
	require.True(t, ok, "diagnostics: %v", sess.Diagnostics())
	require.Len(t, sums, 1)
	require.Len(t, sums[0].Args, 1, "x and y should fuse into a single split")
	require.Equal(t, int64(48), sums[0].Args[0].Source.Extent)
	require.Equal(t, int64(0), sums[0].Base)
}

func TestDetectIterMapUncoveredVariableFailsBijective(t *testing.T) {
	x := ir.NewVar("x")
	y := ir.NewVar("y")
	index := x

	ranges := map[*ir.Var]Range{
		x: {Min: 0, Extent: 8},
		y: {Min: 0, Extent: 6},
	}
	sess := NewSession(nil)

	_, ok := DetectIterMap([]ir.Expr{index}, ranges, nil, true, ir.NewDefaultAnalyzer(), sess)
	require.False(t, ok)
	require.NotEmpty(t, sess.Diagnostics())
	require.Equal(t, UncoveredMark, sess.Diagnostics()[0].Kind)
}

func TestDetectIterMapUncoveredVariableOkWhenNotBijective(t *testing.T) {
	x := ir.NewVar("x")
	y := ir.NewVar("y")
	index := x

	ranges := map[*ir.Var]Range{
		x: {Min: 0, Extent: 8},
		y: {Min: 0, Extent: 6},
	}
	sess := NewSession(nil)

	_, ok := DetectIterMap([]ir.Expr{index}, ranges, nil, false, ir.NewDefaultAnalyzer(), sess)
	require.True(t, ok, "diagnostics: %v", sess.Diagnostics())
}

func TestDetectIterMapNonAffineVarTimesVarFails(t *testing.T) {
	x := ir.NewVar("x")
	y := ir.NewVar("y")
	index := ir.NewMul(x, y)

	ranges := map[*ir.Var]Range{
		x: {Min: 0, Extent: 8},
		y: {Min: 0, Extent: 6},
	}
	sess := NewSession(nil)

	_, ok := DetectIterMap([]ir.Expr{index}, ranges, nil, false, ir.NewDefaultAnalyzer(), sess)
	require.False(t, ok)
	require.Equal(t, NonAffine, sess.Diagnostics()[0].Kind)
}

func TestDetectIterMapPredicateOverridesFusedExtent(t *testing.T) {
	x := ir.NewVar("x")
	y := ir.NewVar("y")
	index := ir.NewAdd(ir.NewMul(x, ir.NewConst(8)), y)

	ranges := map[*ir.Var]Range{
		x: {Min: 0, Extent: 8},
		y: {Min: 0, Extent: 8},
	}
	predicate := ir.NewCmp(ir.LT, index, ir.NewConst(44))
	sess := NewSession(nil)

	sums, ok := DetectIterMap([]ir.Expr{index}, ranges, predicate, false, ir.NewDefaultAnalyzer(), sess)
	require.True(t, ok, "diagnostics: %v", sess.Diagnostics())
	require.Len(t, sums[0].Args, 1)
	require.Equal(t, int64(44), sums[0].Args[0].Source.Extent)
}

func TestDetectIterMapConflictingConstraintsFails(t *testing.T) {
	x := ir.NewVar("x")
	y := ir.NewVar("y")
	index := ir.NewAdd(ir.NewMul(x, ir.NewConst(8)), y)

	ranges := map[*ir.Var]Range{
		x: {Min: 0, Extent: 8},
		y: {Min: 0, Extent: 8},
	}
	predicate := ir.NewAnd(
		ir.NewCmp(ir.LT, index, ir.NewConst(44)),
		ir.NewCmp(ir.LT, index, ir.NewConst(40)),
	)
	sess := NewSession(nil)

	_, ok := DetectIterMap([]ir.Expr{index}, ranges, predicate, false, ir.NewDefaultAnalyzer(), sess)
	require.False(t, ok)
	require.Equal(t, OverlappingConstraints, sess.Diagnostics()[0].Kind)
}

func TestIterMapSimplifyFallsBackOnFailure(t *testing.T) {
	x := ir.NewVar("x")
	y := ir.NewVar("y")
	index := ir.NewMul(x, y)

	ranges := map[*ir.Var]Range{
		x: {Min: 0, Extent: 8},
		y: {Min: 0, Extent: 6},
	}

	out := IterMapSimplify([]ir.Expr{index}, ranges, nil, false, ir.NewDefaultAnalyzer())
	require.Len(t, out, 1)
	require.Same(t, index, out[0])
}

func TestIterMapSimplifyNormalizesOnSuccess(t *testing.T) {
	x := ir.NewVar("x")
	y := ir.NewVar("y")
	index := ir.NewAdd(ir.NewMul(x, ir.NewConst(6)), y)

	ranges := map[*ir.Var]Range{
		x: {Min: 0, Extent: 8},
		y: {Min: 0, Extent: 6},
	}

	out := IterMapSimplify([]ir.Expr{index}, ranges, nil, true, ir.NewDefaultAnalyzer())
	require.Len(t, out, 1)
	require.Equal(t, "((x * 6) + y)", out[0].String())
}

func TestDetectIterMapSkipsMiddleRangeWhenNotBijective(t *testing.T) {
	y := ir.NewVar("y")
	index0 := ir.NewFloorDiv(y, ir.NewConst(6))
	index1 := ir.NewFloorMod(y, ir.NewConst(2))

	ranges := map[*ir.Var]Range{
		y: {Min: 0, Extent: 24},
	}
	sess := NewSession(nil)

	_, ok := DetectIterMap([]ir.Expr{index0, index1}, ranges, nil, false, ir.NewDefaultAnalyzer(), sess)
	require.True(t, ok, "diagnostics: %v", sess.Diagnostics())
}

func TestDetectIterMapDividesSumByFusingFirst(t *testing.T) {
	i := ir.NewVar("i")
	j := ir.NewVar("j")
	numerator := ir.NewAdd(ir.NewMul(i, ir.NewConst(9)), j)
	index := ir.NewFloorDiv(numerator, ir.NewConst(9))

	ranges := map[*ir.Var]Range{
		i: {Min: 0, Extent: 4},
		j: {Min: 0, Extent: 9},
	}
	sess := NewSession(nil)

	sums, ok := DetectIterMap([]ir.Expr{index}, ranges, nil, false, ir.NewDefaultAnalyzer(), sess)
	require.True(t, ok, "diagnostics: %v", sess.Diagnostics())
	require.Len(t, sums[0].Args, 1)
	require.Equal(t, int64(4), sums[0].Args[0].Extent)
}

func TestDetectIterMapMixedOverlappingConstraintsFails(t *testing.T) {
	x := ir.NewVar("x")
	y := ir.NewVar("y")
	z := ir.NewVar("z")
	indexXY := ir.NewAdd(ir.NewMul(x, ir.NewConst(8)), y)
	indexYZ := ir.NewAdd(ir.NewMul(y, ir.NewConst(8)), z)

	ranges := map[*ir.Var]Range{
		x: {Min: 0, Extent: 8},
		y: {Min: 0, Extent: 8},
		z: {Min: 0, Extent: 8},
	}
	predicate := ir.NewAnd(
		ir.NewCmp(ir.LT, indexXY, ir.NewConst(44)),
		ir.NewCmp(ir.LT, indexYZ, ir.NewConst(40)),
	)
	sess := NewSession(nil)

	_, ok := DetectIterMap([]ir.Expr{x}, ranges, predicate, false, ir.NewDefaultAnalyzer(), sess)
	require.False(t, ok)
	require.Equal(t, OverlappingConstraints, sess.Diagnostics()[0].Kind)
}

func TestDetectIterMapLeavesUnboundVariableUntouched(t *testing.T) {
	i := ir.NewVar("i")
	n := ir.NewVar("n")
	index := ir.NewAdd(i, n)

	ranges := map[*ir.Var]Range{
		i: {Min: 0, Extent: 8},
	}
	sess := NewSession(nil)

	sums, ok := DetectIterMap([]ir.Expr{index}, ranges, nil, false, ir.NewDefaultAnalyzer(), sess)
	require.True(t, ok, "diagnostics: %v", sess.Diagnostics())
	require.Len(t, sums, 1)
	require.NotNil(t, sums[0].Extra)
	require.Same(t, n, sums[0].Extra)
	require.Equal(t, "(i + n)", NormalizeIterMapToExpr(sums[0]).String())
}

func TestDetectIterMapPredicateOffsetTightensExtentAndFoldsBase(t *testing.T) {
	j := ir.NewVar("j")
	k := ir.NewVar("k")
	index := ir.NewAdd(ir.NewMul(j, ir.NewConst(2)), k)

	ranges := map[*ir.Var]Range{
		j: {Min: 0, Extent: 5},
		k: {Min: 0, Extent: 2},
	}
	predicate := ir.NewAnd(
		ir.NewCmp(ir.GE, index, ir.NewConst(1)),
		ir.NewCmp(ir.LT, index, ir.NewConst(9)),
	)
	sess := NewSession(nil)

	sums, ok := DetectIterMap([]ir.Expr{index}, ranges, predicate, false, ir.NewDefaultAnalyzer(), sess)
	require.True(t, ok, "diagnostics: %v", sess.Diagnostics())
	require.Len(t, sums[0].Args, 1)
	require.Equal(t, int64(8), sums[0].Args[0].Source.Extent)
	require.Equal(t, int64(1), sums[0].Base)
}

func TestDetectIterMapPredicateEmptyIntersectionFails(t *testing.T) {
	x := ir.NewVar("x")

	ranges := map[*ir.Var]Range{
		x: {Min: 0, Extent: 8},
	}
	predicate := ir.NewAnd(
		ir.NewCmp(ir.GE, x, ir.NewConst(5)),
		ir.NewCmp(ir.LT, x, ir.NewConst(3)),
	)
	sess := NewSession(nil)

	_, ok := DetectIterMap([]ir.Expr{x}, ranges, predicate, false, ir.NewDefaultAnalyzer(), sess)
	require.False(t, ok)
	require.Equal(t, BadPredicate, sess.Diagnostics()[0].Kind)
}

func TestIterRangeSanityCheckRejectsEmptyRange(t *testing.T) {
	x := ir.NewVar("x")
	sess := NewSession(nil)
	ok := IterRangeSanityCheck(x, Range{Min: 0, Extent: 0}, sess)
	require.False(t, ok)
	require.Equal(t, SanityFailed, sess.Diagnostics()[0].Kind)
}
