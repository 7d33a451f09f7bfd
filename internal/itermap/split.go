package itermap

import (
	"fmt"

	"github.com/loopmap/itermap/internal/ir"
)

// Split is a scaled, contiguous sub-range of a Mark:
//
//	floormod(floordiv(source, LowerFactor), Extent) * Scale
//
// It implements ir.Expr so the rewriter can dispatch over it alongside the
// host arithmetic nodes, the way IterSplitExprNode derives from
// IterMapExprNode in the original.
type Split struct {
	Source      *Mark
	LowerFactor int64
	Extent      int64
	Scale       int64
}

// NewSplitFull constructs the trivial split covering the whole of source
// with unit scale: floormod(floordiv(source, 1), source.Extent) * 1.
func NewSplitFull(source *Mark) *Split {
	return &Split{Source: source, LowerFactor: 1, Extent: source.Extent, Scale: 1}
}

// NewSplit constructs a split with an explicit lower factor and extent,
// unit scale.
func NewSplit(source *Mark, lowerFactor, extent int64) *Split {
	return &Split{Source: source, LowerFactor: lowerFactor, Extent: extent, Scale: 1}
}

// NewSplitScaled constructs a fully specified split.
func NewSplitScaled(source *Mark, lowerFactor, extent, scale int64) *Split {
	return &Split{Source: source, LowerFactor: lowerFactor, Extent: extent, Scale: scale}
}

// Clone returns a shallow copy of s, since the copy-on-write rewriting
// passes never mutate a Mark in place but do mutate a Split's own fields
// (scale, extent) after copying.
func (s *Split) Clone() *Split {
	c := *s
	return &c
}

// UpperFactor returns LowerFactor*Extent, the divisor at which this split's
// positional range ends within its source mark.
func (s *Split) UpperFactor() int64 {
	return s.LowerFactor * s.Extent
}

func (s *Split) Type() ir.DType { return ir.Int64 }
func (s *Split) IsExpr()        {}

func (s *Split) String() string {
	return fmt.Sprintf("split(%s, lower=%d, extent=%d, scale=%d)", s.Source, s.LowerFactor, s.Extent, s.Scale)
}

// splitStructEqual reports whether two splits are over the same mark and
// positional sub-range, ignoring scale — the equality Sum.AddToLhs uses to
// merge like terms, since a split reused with a different scale is still
// "the same split" whose scales add.
func splitStructEqual(a, b *Split) bool {
	return a.Source == b.Source && a.LowerFactor == b.LowerFactor && a.Extent == b.Extent
}
