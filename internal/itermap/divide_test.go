package itermap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loopmap/itermap/internal/ir"
)

func TestSubspaceDivideSplitsFusedIndex(t *testing.T) {
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

	isInner := func(v *ir.Var) bool { return v == y }
	results, outerPreds, innerPreds, ok := SubspaceDivide(sums, isInner, sess)
	require.True(t, ok, "diagnostics: %v", sess.Diagnostics())
	require.Len(t, results, 1)

	dr := results[0]
	require.Equal(t, "x", dr.Outer.String())
	require.Equal(t, "y", dr.Inner.String())
	require.Equal(t, int64(8), dr.OuterExtent)
	require.Equal(t, int64(6), dr.InnerExtent)
	require.Equal(t, "((x * 6) + y)", dr.Expr().String())

	require.Len(t, outerPreds, 1)
	require.Len(t, innerPreds, 1)
}

func TestSubspaceDivideRejectsInterleavedIterators(t *testing.T) {
	x := ir.NewVar("x")
	y := ir.NewVar("y")
	// y occupies the high bits, x the low bits: dividing with x outer and
	// y inner would require the inner (low) block to be the one classified
	// inner, which it is not here.
	index := ir.NewAdd(ir.NewMul(y, ir.NewConst(8)), x)

	ranges := map[*ir.Var]Range{
		x: {Min: 0, Extent: 8},
		y: {Min: 0, Extent: 6},
	}
	sess := NewSession(nil)
	sums, ok := DetectIterMap([]ir.Expr{index}, ranges, nil, true, ir.NewDefaultAnalyzer(), sess)
	require.True(t, ok, "diagnostics: %v", sess.Diagnostics())

	isInner := func(v *ir.Var) bool { return v == y }
	_, _, _, ok = SubspaceDivide(sums, isInner, sess)
	require.False(t, ok)
}
