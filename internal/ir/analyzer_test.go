package ir

import "testing"

func TestAnalyzerConstBoundVar(t *testing.T) {
	a := NewDefaultAnalyzer()
	x := NewVar("x")
	a.Bind(x, Interval{Min: 0, Extent: 8})

	iv, ok := a.ConstBound(x)
	if !ok || iv.Min != 0 || iv.Extent != 8 {
		t.Fatalf("ConstBound(x) == %+v, %v", iv, ok)
	}
}

func TestAnalyzerCanProveComparison(t *testing.T) {
	a := NewDefaultAnalyzer()
	x := NewVar("x")
	a.Bind(x, Interval{Min: 0, Extent: 8})

	if !a.CanProve(NewCmp(LT, x, NewConst(8))) {
		t.Errorf("expected to prove x < 8")
	}
	if a.CanProve(NewCmp(LT, x, NewConst(7))) {
		t.Errorf("should not be able to prove x < 7")
	}
	if !a.CanProve(NewCmp(GE, x, NewConst(0))) {
		t.Errorf("expected to prove x >= 0")
	}
}

func TestAnalyzerSimplifyConstantFolds(t *testing.T) {
	a := NewDefaultAnalyzer()
	e := NewAdd(NewMul(NewConst(2), NewConst(3)), NewConst(1))
	s := a.Simplify(e)
	v, ok := IsConst(s)
	if !ok || v != 7 {
		t.Fatalf("Simplify(2*3+1) == %v, %v, want 7", v, ok)
	}
}

func TestAnalyzerSimplifyDropsIdentities(t *testing.T) {
	a := NewDefaultAnalyzer()
	x := NewVar("x")
	s := a.Simplify(NewAdd(x, NewConst(0)))
	if s != x {
		t.Errorf("Simplify(x + 0) should return x unchanged, got %s", s)
	}

	s2 := a.Simplify(NewMul(x, NewConst(1)))
	if s2 != x {
		t.Errorf("Simplify(x * 1) should return x unchanged, got %s", s2)
	}
}

func TestAnalyzerCanProveEqual(t *testing.T) {
	a := NewDefaultAnalyzer()
	x := NewVar("x")
	lhs := NewAdd(x, NewConst(3))
	rhs := NewAdd(NewConst(1), NewAdd(x, NewConst(2)))
	if !a.CanProveEqual(lhs, rhs) {
		t.Errorf("expected x+3 to be provably equal to 1+(x+2)")
	}
}

func TestAnalyzerCanProveDivisible(t *testing.T) {
	a := NewDefaultAnalyzer()
	x := NewVar("x")
	e := NewMul(x, NewConst(6))
	if !a.CanProveDivisible(e, 3) {
		t.Errorf("expected x*6 to be provably divisible by 3")
	}
	if !a.CanProveDivisible(e, 6) {
		t.Errorf("expected x*6 to be provably divisible by 6")
	}
}
