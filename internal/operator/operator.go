// Package operator implements the Ash Operator Model (spec §4.3): the
// enumerated binary/unary operators, their precedence table, and their
// classification by operand-type applicability.
package operator

import "ashc/internal/types"

// Binary enumerates the closed set of binary operators.
type Binary int

const (
	Assign Binary = iota
	AddAssign
	SubAssign
	MulAssign
	DivAssign
	RemAssign
	AndAssign
	OrAssign
	XorAssign

	Add
	Sub
	Mul
	Div
	Rem

	Less
	LessEq
	Greater
	GreaterEq
	Equal
	NotEqual

	LogicalAnd
	LogicalOr

	BitAnd
	BitOr
	BitXor
	Shl
	Shr

	ModuleScope // '::'
)

var binaryNames = map[Binary]string{
	Assign: "=", AddAssign: "+=", SubAssign: "-=", MulAssign: "*=", DivAssign: "/=",
	RemAssign: "%=", AndAssign: "&=", OrAssign: "|=", XorAssign: "^=",
	Add: "+", Sub: "-", Mul: "*", Div: "/", Rem: "%",
	Less: "<", LessEq: "<=", Greater: ">", GreaterEq: ">=", Equal: "==", NotEqual: "!=",
	LogicalAnd: "&&", LogicalOr: "||",
	BitAnd: "&", BitOr: "|", BitXor: "^", Shl: "<<", Shr: ">>",
	ModuleScope: "::",
}

// String renders the operator's source-level spelling. Unlike the teacher's
// known bug (LessThan and GreaterThan both printed "LessThan"), every
// operator here renders its own distinct name (spec §9 Open Questions).
func (b Binary) String() string {
	if s, ok := binaryNames[b]; ok {
		return s
	}
	return "?"
}

// IsCompoundAssign reports whether b is one of the `op=` family (excluding
// plain `=`).
func (b Binary) IsCompoundAssign() bool {
	switch b {
	case AddAssign, SubAssign, MulAssign, DivAssign, RemAssign, AndAssign, OrAssign, XorAssign:
		return true
	default:
		return false
	}
}

// AssignBase returns the non-assignment arithmetic/bitwise operator
// underlying a compound assignment, e.g. AddAssign -> Add. Used by the
// desugaring rule in spec §9 Open Questions ("lhs = lhs op rhs").
func (b Binary) AssignBase() Binary {
	switch b {
	case AddAssign:
		return Add
	case SubAssign:
		return Sub
	case MulAssign:
		return Mul
	case DivAssign:
		return Div
	case RemAssign:
		return Rem
	case AndAssign:
		return BitAnd
	case OrAssign:
		return BitOr
	case XorAssign:
		return BitXor
	default:
		return b
	}
}

// IsAssignment reports whether b is in the assignment family (`=` or any
// compound form).
func (b Binary) IsAssignment() bool {
	return b == Assign || b.IsCompoundAssign()
}

// Precedence levels, spec §4.3: assignment(2) < comparisons(10) < additive(20) < multiplicative(40).
const (
	PrecNone         = 0
	PrecAssignment   = 2
	PrecLogical      = 5
	PrecComparison   = 10
	PrecBitwise      = 15
	PrecAdditive     = 20
	PrecShift        = 30
	PrecMultiplicative = 40
)

// Precedence returns the binding power of b, or PrecNone if b has no
// infix precedence (ModuleScope is parsed structurally, not by the
// Pratt-climbing loop).
func Precedence(b Binary) int {
	switch b {
	case Assign, AddAssign, SubAssign, MulAssign, DivAssign, RemAssign, AndAssign, OrAssign, XorAssign:
		return PrecAssignment
	case LogicalAnd, LogicalOr:
		return PrecLogical
	case Less, LessEq, Greater, GreaterEq, Equal, NotEqual:
		return PrecComparison
	case BitAnd, BitOr, BitXor:
		return PrecBitwise
	case Add, Sub:
		return PrecAdditive
	case Shl, Shr:
		return PrecShift
	case Mul, Div, Rem:
		return PrecMultiplicative
	default:
		return PrecNone
	}
}

// RightAssociative reports whether b binds right-to-left. Only assignment is
// right-associative in Ash.
func RightAssociative(b Binary) bool {
	return b.IsAssignment()
}

// Unary enumerates the closed set of unary operators.
type Unary int

const (
	UnaryPlus Unary = iota
	UnaryMinus
	LogicalNot
	BitwiseNot
)

func (u Unary) String() string {
	switch u {
	case UnaryPlus:
		return "+"
	case UnaryMinus:
		return "-"
	case LogicalNot:
		return "!"
	case BitwiseNot:
		return "~"
	default:
		return "?"
	}
}

// SupportsOperands reports whether binary operator b may be applied to two
// operands of type t (spec §4.3):
//   - comparisons:           Bool, Char, Int, Float
//   - ==, !=:                Int, Bool, Char, Float
//   - logical &&, ||:        Int, Bool (Bool is lowered as i1, so both
//     are integer values to the logical operators)
//   - bitwise / shift:       Int only
//   - arithmetic, assignment: numeric types (Int, Float, Bool, Char)
func SupportsOperands(b Binary, t types.Type) bool {
	switch b {
	case Less, LessEq, Greater, GreaterEq:
		switch t.Kind {
		case types.Bool, types.Char, types.Int, types.Float:
			return true
		default:
			return false
		}
	case Equal, NotEqual:
		switch t.Kind {
		case types.Int, types.Bool, types.Char, types.Float:
			return true
		default:
			return false
		}
	case LogicalAnd, LogicalOr:
		return t.Kind == types.Int || t.Kind == types.Bool
	case BitAnd, BitOr, BitXor, Shl, Shr:
		return t.Kind == types.Int
	case ModuleScope:
		return false
	default:
		// arithmetic and assignment family
		return t.IsNumeric()
	}
}

// Result returns the result type of applying b to two operands of type t.
// Comparisons and logical operators always produce Bool; everything else
// preserves the operand type.
func Result(b Binary, t types.Type) types.Type {
	switch b {
	case Less, LessEq, Greater, GreaterEq, Equal, NotEqual, LogicalAnd, LogicalOr:
		return types.DefaultBool
	default:
		return t
	}
}
