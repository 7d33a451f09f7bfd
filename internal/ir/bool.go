package ir

import "fmt"

// BoolExpr is a boolean-valued node: a comparison between two integer
// expressions, or a conjunction of such comparisons. The detector's
// predicate splitter (C2) only ever needs to decompose a BoolExpr that is
// either a literal true or a conjunction of comparisons.
type BoolExpr interface {
	fmt.Stringer
	isBool()
}

// CmpOp identifies which relation a Cmp node tests.
type CmpOp int

// The six comparison operators the predicate splitter recognizes.
const (
	LT CmpOp = iota
	LE
	GT
	GE
	EQ
	NE
)

func (op CmpOp) String() string {
	switch op {
	case LT:
		return "<"
	case LE:
		return "<="
	case GT:
		return ">"
	case GE:
		return ">="
	case EQ:
		return "=="
	case NE:
		return "!="
	default:
		return "?"
	}
}

// Swap returns the operator obtained by swapping the two operands, e.g.
// Swap(LT) is GT.
func (op CmpOp) Swap() CmpOp {
	switch op {
	case LT:
		return GT
	case LE:
		return GE
	case GT:
		return LT
	case GE:
		return LE
	default:
		return op
	}
}

// Cmp compares two integer expressions.
type Cmp struct {
	Op   CmpOp
	A, B Expr
}

// NewCmp constructs a Cmp node.
func NewCmp(op CmpOp, a, b Expr) *Cmp { return &Cmp{Op: op, A: a, B: b} }

func (c *Cmp) String() string { return fmt.Sprintf("(%s %s %s)", c.A, c.Op, c.B) }
func (c *Cmp) isBool()        {}

// And is an n-ary conjunction.
type And struct{ Args []BoolExpr }

// NewAnd constructs a conjunction, flattening any nested And arguments so
// the predicate splitter always sees a flat list of conjuncts.
func NewAnd(args ...BoolExpr) BoolExpr {
	var flat []BoolExpr

	for _, a := range args {
		if inner, ok := a.(*And); ok {
			flat = append(flat, inner.Args...)
		} else if _, ok := a.(boolConst); !ok || !bool(a.(boolConst)) {
			flat = append(flat, a)
		}
	}

	if len(flat) == 0 {
		return True
	} else if len(flat) == 1 {
		return flat[0]
	}

	return &And{Args: flat}
}

func (a *And) String() string {
	s := "(and"
	for _, arg := range a.Args {
		s += " " + arg.String()
	}
	return s + ")"
}
func (a *And) isBool() {}

type boolConst bool

func (b boolConst) String() string {
	if bool(b) {
		return "true"
	}
	return "false"
}
func (b boolConst) isBool() {}

// True is the literal predicate "no constraint".
var True BoolExpr = boolConst(true)

// False is the unsatisfiable predicate.
var False BoolExpr = boolConst(false)

// IsTrue reports whether e is the literal True predicate.
func IsTrue(e BoolExpr) bool {
	b, ok := e.(boolConst)
	return ok && bool(b)
}

// Conjuncts flattens a BoolExpr into its top-level conjuncts. True yields an
// empty slice.
func Conjuncts(e BoolExpr) []BoolExpr {
	switch t := e.(type) {
	case *And:
		return t.Args
	case boolConst:
		if bool(t) {
			return nil
		}
		return []BoolExpr{t}
	default:
		return []BoolExpr{e}
	}
}
