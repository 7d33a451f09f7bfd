package ir

import "testing"

func TestConjunctsFlattenNested(t *testing.T) {
	x := NewVar("x")
	a := NewCmp(LT, x, NewConst(8))
	b := NewCmp(GE, x, NewConst(0))
	and := NewAnd(a, NewAnd(b, True))

	conj := Conjuncts(and)
	if len(conj) != 2 {
		t.Fatalf("expected 2 conjuncts, got %d", len(conj))
	}
}

func TestAndOfTrueIsTrue(t *testing.T) {
	if !IsTrue(NewAnd(True, True)) {
		t.Errorf("And(True, True) should be True")
	}
}

func TestAndSingleArgCollapses(t *testing.T) {
	x := NewVar("x")
	c := NewCmp(LT, x, NewConst(8))
	if NewAnd(c, True) != c {
		t.Errorf("And(c, True) should collapse to c itself")
	}
}

func TestCmpOpSwap(t *testing.T) {
	if LT.Swap() != GT {
		t.Errorf("LT.Swap() == %s, want >", LT.Swap())
	}
	if GE.Swap() != LE {
		t.Errorf("GE.Swap() == %s, want <=", GE.Swap())
	}
}
