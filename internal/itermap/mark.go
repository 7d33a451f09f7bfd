package itermap

import (
	"fmt"

	"github.com/loopmap/itermap/internal/ir"
)

// Mark is an opaque handle over an iteration domain: either a single loop
// variable (a leaf mark) or a previously normalized Sum (a fused mark). Two marks are the same iterator if and only if they are the same
// pointer — identity, not structure, is what distinguishes one iteration
// space from another, exactly as IterMarkNode's identity matters in the
// original rather than its contents.
type Mark struct {
	// Source is an *ir.Var (leaf), an *ir.Sub of a variable minus its
	// range minimum (leaf of a range not starting at 0), or a *Sum (fused).
	Source ir.Expr
	Extent int64
}

// NewMark constructs a mark over source with the given extent.
func NewMark(source ir.Expr, extent int64) *Mark {
	return &Mark{Source: source, Extent: extent}
}

// IsLeaf reports whether the mark wraps a plain host variable. It is false
// both for a fused sum and for a shifted variable (*ir.Sub source).
func (m *Mark) IsLeaf() bool {
	_, ok := m.Source.(*ir.Var)
	return ok
}

func (m *Mark) String() string {
	return fmt.Sprintf("mark(%s, extent=%d)", m.Source, m.Extent)
}
