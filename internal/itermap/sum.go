package itermap

import (
	"fmt"
	"sort"
	"strings"

	"github.com/loopmap/itermap/internal/ir"
)

// Sum is a normalized affine combination of splits plus a constant base
// and, possibly, a symbolic remainder: sum(Args) + Base + Extra. Extra
// carries whatever of the original host expression is not affine in any
// registered iterator — a free parameter the caller never declared a
// range for, left untouched rather than rejected (spec §3's base is "an
// integer expression", §4.2's "leave an unbound variable as-is", mirroring
// the original's VisitExpr_(const VarNode*) returning a bare, absent Var
// unchanged). Extra is nil whenever the sum is purely affine in the
// iterators, the common case. Sum implements ir.Expr, and is itself the
// Source an IterMark can wrap once a set of iterators has been fused into
// one.
type Sum struct {
	Args  []*Split
	Base  int64
	Extra ir.Expr
}

// NewSum constructs a sum over args with the given base, copying args so
// later in-place mutation by the rewriter does not alias the caller's
// slice (the copy-on-write discipline the original's IterSumExprNode
// construction follows).
func NewSum(args []*Split, base int64) *Sum {
	cp := make([]*Split, len(args))
	copy(cp, args)
	return &Sum{Args: cp, Base: base}
}

// Clone returns a deep-enough copy: a fresh Args slice holding a
// Split.Clone of every arg, so the in-place AddToLhs/MulToLhs updates made
// to the copy never reach a Split shared with s.
func (s *Sum) Clone() *Sum {
	c := NewSum(s.Args, s.Base)
	for i, a := range c.Args {
		c.Args[i] = a.Clone()
	}
	c.Extra = s.Extra
	return c
}

func (s *Sum) Type() ir.DType { return ir.Int64 }
func (s *Sum) IsExpr()        {}

func (s *Sum) String() string {
	var b strings.Builder
	b.WriteString("sum(")
	for i, a := range s.Args {
		if i > 0 {
			b.WriteString(" + ")
		}
		b.WriteString(a.String())
	}
	fmt.Fprintf(&b, ", base=%d", s.Base)
	if s.Extra != nil {
		fmt.Fprintf(&b, ", extra=%s", s.Extra)
	}
	b.WriteString(")")
	return b.String()
}

// AddToLhs folds other (scaled by sign) into s in place, appending a new
// arg when no existing arg shares other's mark and positional range, or
// bumping that arg's scale when one does. This mirrors AddToLhs from the
// original rewriter, used whenever two sums are combined under Add/Sub.
func (s *Sum) AddToLhs(other *Split, sign int64) {
	for _, arg := range s.Args {
		if splitStructEqual(arg, other) {
			arg.Scale += sign * other.Scale
			return
		}
	}
	cp := other.Clone()
	cp.Scale *= sign
	s.Args = append(s.Args, cp)
}

// AddBase folds a constant offset into s in place.
func (s *Sum) AddBase(base int64) {
	s.Base += base
}

// AddExtra folds e, a host expression that is not affine in any
// registered iterator, into s's symbolic remainder in place, negating it
// first when sign is -1. This is the Sub/Add counterpart of AddBase for
// the part of a sum that cannot be reduced to splits plus a constant.
func (s *Sum) AddExtra(e ir.Expr, sign int64) {
	if e == nil {
		return
	}
	if sign < 0 {
		e = ir.NewMul(e, ir.NewConst(-1))
	}
	if s.Extra == nil {
		s.Extra = e
		return
	}
	s.Extra = ir.NewAdd(s.Extra, e)
}

// MulToLhs scales every arg, the base, and the symbolic remainder of s in
// place by k.
func (s *Sum) MulToLhs(k int64) {
	for _, arg := range s.Args {
		arg.Scale *= k
	}
	s.Base *= k
	if s.Extra != nil {
		s.Extra = ir.NewMul(s.Extra, ir.NewConst(k))
	}
}

// sumKey returns a canonical string key for s that two structurally equal
// sums (same marks, same positional ranges and base, any order, any scale)
// are guaranteed to share. Go has no custom hash/equal functor for map
// keys the way the original's IterSumHash/IterSumEqual do, so sum_fuse_map
// and flattened_map (package-internal lookup tables keyed by "a sum modulo
// scale") would be built on top of this string instead. No table in this
// package is keyed by it: the fuser's fuseMarks cache uses fuseKey, which
// ignores the base.
func sumKey(s *Sum) string {
	keys := make([]string, len(s.Args))
	for i, a := range s.Args {
		keys[i] = fmt.Sprintf("%p:%d:%d", a.Source, a.LowerFactor, a.Extent)
	}
	sort.Strings(keys)
	return fmt.Sprintf("base=%d|%s", s.Base, strings.Join(keys, ","))
}
