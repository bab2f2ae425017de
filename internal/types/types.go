// Package types implements the Ash Type Model (spec §4.2): a closed set of
// primitive types with size and signedness, literal parsing, range checks,
// and cast legality.
package types

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind enumerates the closed set of primitive type kinds.
type Kind int

const (
	None Kind = iota
	Int
	Float
	Void
	Bool
	Char
)

func (k Kind) String() string {
	switch k {
	case None:
		return "None"
	case Int:
		return "Int"
	case Float:
		return "Float"
	case Void:
		return "Void"
	case Bool:
		return "Bool"
	case Char:
		return "Char"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Type is a kind plus its bit width and signedness, held as the separate
// Size and IsSigned fields rather than one packed data word.
type Type struct {
	Kind     Kind
	Size     int  // bit width: 8/16/32/64 for Int, 32/64 for Float, 1 for Bool, 8 for Char.
	IsSigned bool
}

// Defaults, per spec §3.
var (
	DefaultInt   = Type{Kind: Int, Size: 32, IsSigned: true}
	DefaultFloat = Type{Kind: Float, Size: 32, IsSigned: true}
	DefaultBool  = Type{Kind: Bool, Size: 1, IsSigned: false}
	DefaultChar  = Type{Kind: Char, Size: 8, IsSigned: true}
	VoidType     = Type{Kind: Void}
	NoneType     = Type{Kind: None}
)

// Equal reports structural equality.
func (t Type) Equal(o Type) bool {
	return t.Kind == o.Kind && t.Size == o.Size && t.IsSigned == o.IsSigned
}

// IsNumeric reports whether t participates in numeric operators/casts:
// Int, Bool, Char, and Float are all numeric per the original's is_numeric.
func (t Type) IsNumeric() bool {
	switch t.Kind {
	case Int, Bool, Char, Float:
		return true
	default:
		return false
	}
}

// String renders the canonical type name, e.g. "i32", "u8", "f64", "Bool",
// "Char", "Void", "None".
func (t Type) String() string {
	switch t.Kind {
	case None:
		return "None"
	case Void:
		return "Void"
	case Bool:
		return "Bool"
	case Char:
		return "Char"
	case Int:
		if t.IsSigned {
			return fmt.Sprintf("i%d", t.Size)
		}
		return fmt.Sprintf("u%d", t.Size)
	case Float:
		return fmt.Sprintf("f%d", t.Size)
	default:
		return "None"
	}
}

var sizeTok = regexp.MustCompile(`^[iu](8|16|32|64)$`)
var fsizeTok = regexp.MustCompile(`^f(32|64)$`)

// FromToken parses a declared-type keyword token into a Type: "int",
// "float", "bool", "char", "void", or the regular expressions [iu](8|16|32|64)
// and f(32|64).
func FromToken(tok string) (Type, error) {
	switch tok {
	case "int":
		return DefaultInt, nil
	case "float":
		return DefaultFloat, nil
	case "bool":
		return DefaultBool, nil
	case "char":
		return DefaultChar, nil
	case "void":
		return VoidType, nil
	}
	if sizeTok.MatchString(tok) {
		size, _ := strconv.Atoi(tok[1:])
		return Type{Kind: Int, Size: size, IsSigned: tok[0] == 'i'}, nil
	}
	if fsizeTok.MatchString(tok) {
		size, _ := strconv.Atoi(tok[1:])
		return Type{Kind: Float, Size: size, IsSigned: true}, nil
	}
	return NoneType, fmt.Errorf("types: %q is not a valid type token", tok)
}

// Literal kinds recognized by the lexer/parser (spec §4.2).
var (
	intLiteralRe  = regexp.MustCompile(`^[0-9]+([iu](8|16|32|64)?)?$`)
	floatLiteralRe = regexp.MustCompile(`^[0-9]+\.[0-9]+(f(32|64)?)?$`)
	boolLiteralRe = regexp.MustCompile(`^(true|false)$`)
	charLiteralRe = regexp.MustCompile(`^'([^']|\\.)'$`)
)

// ClassifyLiteral reports which literal kind (if any) the token matches.
func ClassifyLiteral(tok string) Kind {
	switch {
	case intLiteralRe.MatchString(tok):
		return Int
	case floatLiteralRe.MatchString(tok):
		return Float
	case boolLiteralRe.MatchString(tok):
		return Bool
	case charLiteralRe.MatchString(tok):
		return Char
	default:
		return None
	}
}

// SuffixOf scans an integer or float literal token from the right for its
// type suffix (the last i/u for ints, f for floats, that is neither the
// first nor the last character), returning the declared Type. Absence of a
// suffix yields the kind's default width/signedness. Grounded on
// original_source/stage-0-compiler/source/ast/types.cpp get_literal_data.
func SuffixOf(tok string, kind Kind) (Type, error) {
	var c1, c2 byte
	switch kind {
	case Float:
		c1, c2 = 'f', 'f'
	case Int:
		c1, c2 = 'i', 'u'
	default:
		return Type{}, fmt.Errorf("types: SuffixOf only applies to Int or Float literals")
	}

	i := len(tok) - 1
	for i > 0 && tok[i] != c1 && tok[i] != c2 {
		i--
	}
	if i == 0 || i == len(tok)-1 {
		if kind == Int {
			return DefaultInt, nil
		}
		return DefaultFloat, nil
	}

	size, err := strconv.Atoi(tok[i+1:])
	if err != nil {
		return Type{}, fmt.Errorf("types: malformed literal suffix in %q: %w", tok, err)
	}
	return Type{Kind: kind, Size: size, IsSigned: tok[i] != 'u'}, nil
}

// maxUnsigned returns the maximum representable magnitude for an unsigned
// integer of the given bit width.
func maxUnsigned(size int) uint64 {
	if size >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(size)) - 1
}

// maxSignedMagnitude returns the maximum representable magnitude for a
// signed integer of the given bit width, accounting for two's complement
// asymmetry (the digit string carries no sign, so this is the bound used
// for both positive values and the literal preceding a unary minus).
func maxSignedMagnitude(size int) uint64 {
	if size >= 64 {
		return uint64(1) << 63
	}
	return uint64(1) << uint(size-1)
}

// CheckIntRange rejects decimal digit strings (after leading-zero strip)
// that exceed the maximum magnitude representable for the declared
// width/signedness.
func CheckIntRange(digits string, t Type) error {
	s := strings.TrimLeft(digits, "0")
	if s == "" {
		s = "0"
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("types: integer literal %q does not fit in 64 bits", digits)
	}
	var max uint64
	if t.IsSigned {
		max = maxSignedMagnitude(t.Size)
	} else {
		max = maxUnsigned(t.Size)
	}
	if v > max {
		return fmt.Errorf("types: integer literal %q exceeds range of %s", digits, t.String())
	}
	return nil
}

// CastLegal implements the cast legality table of spec §4.2 verbatim from
// original_source/stage-0-compiler/source/ast/types.cpp is_cast_valid.
func CastLegal(from, to Type) bool {
	switch from.Kind {
	case Int:
		switch to.Kind {
		case Bool, Char, Float:
			return true
		case Int:
			signDiff := from.IsSigned != to.IsSigned
			sizeDiff := from.Size != to.Size
			// Only allow either a size change or a signedness change, not both.
			return !(signDiff && sizeDiff)
		default:
			return false
		}
	case Float:
		if to.Kind == Bool {
			return false
		}
		return to.IsNumeric()
	case Bool, Char:
		return to.IsNumeric()
	default:
		return false
	}
}
