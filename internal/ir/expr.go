// Package ir provides the small host integer-expression language that the
// iteration-map detector rewrites. It plays the role that tvm::PrimExpr and
// friends play in the original system: variables, integer constants and the
// arithmetic operators the detector knows how to canonicalize.
package ir

import "fmt"

// DType records the width and signedness of an integer expression, the way
// every node in the host IR is expected to carry one (spec.md §3).
type DType struct {
	Bits   uint8
	Signed bool
}

// Int64 is the default element type used when none is specified.
var Int64 = DType{Bits: 64, Signed: true}

// Expr is a node in the host integer-expression tree. Sum and Split
// (package itermap) also implement this interface so the
// rewriter can dispatch over a single closed set of node kinds, exactly as
// IterMapExprNode derives from PrimExprNode in the original.
type Expr interface {
	fmt.Stringer
	Type() DType
	IsExpr()
}

// Var is a named, pointer-identity variable. Two distinct *Var values are
// always distinct variables, even if they share a name; callers obtain a Var
// once and reuse the pointer.
type Var struct {
	Name  string
	dtype DType
}

// NewVar constructs a fresh variable of the default element type.
func NewVar(name string) *Var { return &Var{Name: name, dtype: Int64} }

func (v *Var) Type() DType  { return v.dtype }
func (v *Var) String() string { return v.Name }
func (v *Var) IsExpr()      {}

// Const is a signed integer literal.
type Const struct {
	Value int64
	dtype DType
}

// NewConst constructs an integer constant of the default element type.
func NewConst(value int64) *Const { return &Const{Value: value, dtype: Int64} }

func (c *Const) Type() DType    { return c.dtype }
func (c *Const) String() string { return fmt.Sprintf("%d", c.Value) }
func (c *Const) IsExpr()        {}

// binOp is the shared shape of the four arithmetic binary operators.
type binOp struct {
	A, B Expr
}

func (b binOp) Type() DType {
	if b.A.Type().Bits >= b.B.Type().Bits {
		return b.A.Type()
	}
	return b.B.Type()
}

// Add represents A + B.
type Add struct{ binOp }

// NewAdd constructs an Add node.
func NewAdd(a, b Expr) *Add { return &Add{binOp{a, b}} }

func (a *Add) String() string { return fmt.Sprintf("(%s + %s)", a.A, a.B) }
func (a *Add) IsExpr()        {}

// Sub represents A - B.
type Sub struct{ binOp }

// NewSub constructs a Sub node.
func NewSub(a, b Expr) *Sub { return &Sub{binOp{a, b}} }

func (s *Sub) String() string { return fmt.Sprintf("(%s - %s)", s.A, s.B) }
func (s *Sub) IsExpr()        {}

// Mul represents A * B.
type Mul struct{ binOp }

// NewMul constructs a Mul node.
func NewMul(a, b Expr) *Mul { return &Mul{binOp{a, b}} }

func (m *Mul) String() string { return fmt.Sprintf("(%s * %s)", m.A, m.B) }
func (m *Mul) IsExpr()        {}

// FloorDiv represents floordiv(A, B).
type FloorDiv struct{ binOp }

// NewFloorDiv constructs a FloorDiv node.
func NewFloorDiv(a, b Expr) *FloorDiv { return &FloorDiv{binOp{a, b}} }

func (f *FloorDiv) String() string { return fmt.Sprintf("floordiv(%s, %s)", f.A, f.B) }
func (f *FloorDiv) IsExpr()        {}

// FloorMod represents floormod(A, B).
type FloorMod struct{ binOp }

// NewFloorMod constructs a FloorMod node.
func NewFloorMod(a, b Expr) *FloorMod { return &FloorMod{binOp{a, b}} }

func (f *FloorMod) String() string { return fmt.Sprintf("floormod(%s, %s)", f.A, f.B) }
func (f *FloorMod) IsExpr()        {}
