package ir

import "testing"

func TestConstString(t *testing.T) {
	if s := NewConst(7).String(); s != "7" {
		t.Errorf("NewConst(7).String() == %q, want %q", s, "7")
	}
}

func TestAddString(t *testing.T) {
	x := NewVar("x")
	e := NewAdd(x, NewConst(3))
	if s := e.String(); s != "(x + 3)" {
		t.Errorf("got %q, want %q", s, "(x + 3)")
	}
}

func TestFloorDivModString(t *testing.T) {
	x := NewVar("x")
	if s := NewFloorDiv(x, NewConst(6)).String(); s != "floordiv(x, 6)" {
		t.Errorf("got %q", s)
	}
	if s := NewFloorMod(x, NewConst(6)).String(); s != "floormod(x, 6)" {
		t.Errorf("got %q", s)
	}
}

func TestVarIdentity(t *testing.T) {
	x := NewVar("x")
	y := NewVar("x")
	if ExprEqual(x, y) {
		t.Errorf("two distinct *Var with the same name should not be equal")
	}
	if !ExprEqual(x, x) {
		t.Errorf("a var should equal itself")
	}
}

func TestExprEqualRecursive(t *testing.T) {
	x := NewVar("x")
	a := NewAdd(x, NewConst(1))
	b := NewAdd(x, NewConst(1))
	c := NewAdd(x, NewConst(2))
	if !ExprEqual(a, b) {
		t.Errorf("structurally identical expressions should be equal")
	}
	if ExprEqual(a, c) {
		t.Errorf("expressions differing in a constant should not be equal")
	}
}

func TestNodeCount(t *testing.T) {
	x, y := NewVar("x"), NewVar("y")
	e := NewAdd(NewMul(x, NewConst(6)), y)
	if n := NodeCount(e); n != 5 {
		t.Errorf("NodeCount == %d, want 5", n)
	}
}
