package itermap

import (
	"testing"

	"github.com/loopmap/itermap/internal/ir"
)

func TestFuseItersCollapsesRowMajorGroup(t *testing.T) {
	markX := NewMark(ir.NewVar("x"), 8)
	markY := NewMark(ir.NewVar("y"), 6)
	r := newRewriter(ir.NewDefaultAnalyzer(), NewSession(nil))

	fused, offset, ok := r.fuseIters([]*Split{
		NewSplitScaled(markX, 1, 8, 6),
		NewSplitScaled(markY, 1, 6, 1),
	})
	if !ok {
		t.Fatalf("expected a row-major group to fuse")
	}
	if fused.Source.Extent != 48 {
		t.Errorf("fused extent == %d, want 48", fused.Source.Extent)
	}
	if fused.Scale != 1 {
		t.Errorf("fused scale == %d, want 1", fused.Scale)
	}
	if offset != 0 {
		t.Errorf("offset == %d, want 0 with no matching constraint", offset)
	}
}

func TestFuseItersRejectsGap(t *testing.T) {
	markX := NewMark(ir.NewVar("x"), 8)
	markY := NewMark(ir.NewVar("y"), 6)
	r := newRewriter(ir.NewDefaultAnalyzer(), NewSession(nil))

	// scale 10 leaves a gap between the two splits (6*1 != 10).
	_, _, ok := r.fuseIters([]*Split{
		NewSplitScaled(markX, 1, 8, 10),
		NewSplitScaled(markY, 1, 6, 1),
	})
	if ok {
		t.Errorf("expected a non-contiguous group to fail to fuse")
	}
}

func TestFuseItersCachesRepeatedGroups(t *testing.T) {
	markX := NewMark(ir.NewVar("x"), 8)
	markY := NewMark(ir.NewVar("y"), 6)
	r := newRewriter(ir.NewDefaultAnalyzer(), NewSession(nil))

	first, _, ok1 := r.fuseIters([]*Split{
		NewSplitScaled(markX, 1, 8, 6),
		NewSplitScaled(markY, 1, 6, 1),
	})
	second, _, ok2 := r.fuseIters([]*Split{
		NewSplitScaled(markY, 1, 6, 1),
		NewSplitScaled(markX, 1, 8, 6),
	})
	if !ok1 || !ok2 {
		t.Fatalf("expected both fuse attempts to succeed")
	}
	if first.Source != second.Source {
		t.Errorf("fusing the same group twice should reuse the same mark")
	}
}

func TestFuseItersTightensOffsetConstraint(t *testing.T) {
	markJ := NewMark(ir.NewVar("j"), 5)
	markK := NewMark(ir.NewVar("k"), 2)
	r := newRewriter(ir.NewDefaultAnalyzer(), NewSession(nil))

	splits := []*Split{
		NewSplitScaled(markJ, 1, 5, 2),
		NewSplitScaled(markK, 1, 2, 1),
	}
	r.constraints = []*iterConstraint{
		{Splits: splits, Lower: 1, Extent: 8},
	}

	fused, offset, ok := r.fuseIters(splits)
	if !ok {
		t.Fatalf("expected the constrained group to fuse")
	}
	if fused.Source.Extent != 8 {
		t.Errorf("fused extent == %d, want 8", fused.Source.Extent)
	}
	if offset != 1 {
		t.Errorf("offset == %d, want 1", offset)
	}
}

func TestFuseItersRejectsEmptyConstraintRange(t *testing.T) {
	markJ := NewMark(ir.NewVar("j"), 5)
	markK := NewMark(ir.NewVar("k"), 2)
	r := newRewriter(ir.NewDefaultAnalyzer(), NewSession(nil))

	splits := []*Split{
		NewSplitScaled(markJ, 1, 5, 2),
		NewSplitScaled(markK, 1, 2, 1),
	}
	r.constraints = []*iterConstraint{
		{Splits: splits, Lower: 10, Extent: 1},
	}

	_, _, ok := r.fuseIters(splits)
	if ok {
		t.Errorf("expected a constraint entirely outside the natural extent to fail")
	}
}
