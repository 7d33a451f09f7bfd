package ir

// Interval is a finite, closed-open bound [Min, Min+Extent) on the value of
// an expression. Every iterator this module ever analyzes has a finite
// range by construction (loop extents are concrete, non-negative
// constants), so unlike the signed-infinity interval arithmetic the
// original analyzer carries for general PrimExpr bounds, a plain int64 pair
// is enough here.
type Interval struct {
	Min    int64
	Extent int64
}

// Max returns the largest value the interval contains (Min+Extent-1), or
// Min-1 if the interval is empty.
func (iv Interval) Max() int64 { return iv.Min + iv.Extent - 1 }

// Empty reports whether the interval contains no values.
func (iv Interval) Empty() bool { return iv.Extent <= 0 }

// Contains reports whether v lies within the interval.
func (iv Interval) Contains(v int64) bool {
	return !iv.Empty() && v >= iv.Min && v <= iv.Max()
}

// Add returns the interval of a+b for a in iv, b in other.
func (iv Interval) Add(other Interval) Interval {
	if iv.Empty() || other.Empty() {
		return Interval{}
	}
	return Interval{Min: iv.Min + other.Min, Extent: iv.Extent + other.Extent - 1}
}

// MulConst returns the interval of k*a for a in iv, k a non-negative
// constant. It does not handle sign flips: a negative k does not yield the
// interval of k*a.
func (iv Interval) MulConst(k int64) Interval {
	if iv.Empty() || k == 0 {
		return Interval{Min: 0, Extent: 1}
	}
	return Interval{Min: iv.Min * k, Extent: (iv.Extent-1)*k + 1}
}

// Intersect returns the overlap of iv and other, which may be empty.
func (iv Interval) Intersect(other Interval) Interval {
	if iv.Empty() || other.Empty() {
		return Interval{}
	}
	lo := iv.Min
	if other.Min > lo {
		lo = other.Min
	}
	hi := iv.Max()
	if other.Max() < hi {
		hi = other.Max()
	}
	if hi < lo {
		return Interval{}
	}
	return Interval{Min: lo, Extent: hi - lo + 1}
}
