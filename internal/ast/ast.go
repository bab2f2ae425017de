// Package ast implements the Ash abstract syntax tree (spec §3): the tagged
// expression tree, function prototypes and definitions, and the Body
// container that owns scope information.
//
// Ash rewrites the teacher's virtual-dispatch Node hierarchy as a single
// closed sum type. Every Expr carries a Kind tag; callers switch on Kind
// instead of calling virtual methods.
package ast

import (
	"fmt"

	"ashc/internal/intern"
	"ashc/internal/operator"
	"ashc/internal/types"
)

// ConstStatus is the three-valued constant-folding classification attached
// to every expression by the Constant Checker (spec §4.8).
type ConstStatus int

const (
	Unknown ConstStatus = iota
	Constant
	Variable
)

func (c ConstStatus) String() string {
	switch c {
	case Unknown:
		return "Unknown"
	case Constant:
		return "Constant"
	case Variable:
		return "Variable"
	default:
		return "?"
	}
}

// Kind tags the variant a given Expr represents.
type Kind int

const (
	KLiteral Kind = iota
	KBody
	KVariableDeclaration
	KVariableReference
	KBinary
	KUnary
	KCast
	KCall
	KIf
	KFor
	KWhile
	KComment
	KReturn
	KContinue
	KBreak
	KSwitch
	KCase
)

var kindNames = [...]string{
	"Literal", "Body", "VariableDeclaration", "VariableReference", "Binary",
	"Unary", "Cast", "Call", "If", "For", "While", "Comment", "Return",
	"Continue", "Break", "Switch", "Case",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// BodyType classifies what kind of lexical block a Body represents.
type BodyType int

const (
	Global BodyType = iota
	Function
	Conditional
	Loop
)

func (b BodyType) String() string {
	switch b {
	case Global:
		return "Global"
	case Function:
		return "Function"
	case Conditional:
		return "Conditional"
	case Loop:
		return "Loop"
	default:
		return "?"
	}
}

// ScopeKind differentiates the kind of name a scope entry registers.
type ScopeKind int

const (
	KindVariable ScopeKind = iota
	KindFunction
)

// ScopeEntry is one entry in a Body's ordered in-scope registry, used to
// enforce declaration order and detect shadowing (spec §3).
type ScopeEntry struct {
	NameID intern.ID
	Kind   ScopeKind
}

// LineInfo carries diagnostic position info for an expression (spec §3).
type LineInfo struct {
	StartLine, StartCol int
	EndLine, EndCol     int
	RawLine             string
}

// FunctionPrototype is a function's signature without its body (spec §3).
// Prototypes are allocated at the Body that declares them; ownership is the
// declaring Body, and other bodies refer to them by pointer.
type FunctionPrototype struct {
	NameID        intern.ID
	MangledNameID intern.ID // valid once the Mangler has run.
	ReturnType    types.Type
	ParamTypes    []types.Type
	ParamNameIDs  []intern.ID
	IsExtern      bool
	Line          LineInfo
}

// FunctionDefinition owns a prototype and its body.
type FunctionDefinition struct {
	Prototype *FunctionPrototype
	Body      *Expr // Kind == KBody
}

// Expr is the single closed sum type for every AST node, including Body.
// Only the fields relevant to Kind are meaningful; see the per-Kind
// constructors below for which fields each variant populates.
type Expr struct {
	Kind   Kind
	Parent *Expr // enclosing Body; nil only for the global Body of a file.

	ResultType   types.Type // None sentinel = not yet computed.
	resultTypeSet bool
	Status       ConstStatus
	Line         LineInfo
	IsMangled    bool // valid only on Call/prototype-reference variants.

	// --- Literal ---
	LitType  types.Type
	IntVal   uint64
	FloatVal float64
	CharVal  byte
	BoolVal  bool

	// --- Body ---
	Children       []*Expr
	Functions      []*FunctionDefinition
	Prototypes     map[intern.ID][]*FunctionPrototype // overload set per name, spec §8 scenario 5
	Locals         map[intern.ID]types.Type
	InScope        []ScopeEntry
	BodyType       BodyType
	ParentFunction *FunctionPrototype // nil for the Global body.
	ModuleID       intern.ID          // valid on a file's top-level Global body.
	Imports        []intern.ID        // module ids `using`-imported by this file.

	// --- VariableDeclaration ---
	DeclType types.Type
	NameID   intern.ID
	Init     *Expr // optional.

	// --- VariableReference ---
	RefNameID intern.ID

	// --- Binary ---
	Op  operator.Binary
	Lhs *Expr
	Rhs *Expr

	// --- Unary ---
	UOp     operator.Unary
	Operand *Expr

	// --- Cast ---
	TargetType types.Type
	CastExpr   *Expr

	// --- Call ---
	CalleeID intern.ID
	IsExtern bool
	Args     []*Expr

	// --- If ---
	Cond              *Expr
	Then              *Expr // Kind == KBody
	Else              *Expr // Kind == KBody, optional
	ShouldReturnValue bool

	// --- For ---
	ForVarType types.Type
	ForNameID  intern.ID
	ForStart   *Expr
	ForEnd     *Expr
	ForStep    *Expr // optional
	ForBody    *Expr // Kind == KBody

	// --- While ---
	WhileCond *Expr
	WhileBody *Expr // Kind == KBody

	// --- Return ---
	RetExpr *Expr // optional

	// --- Switch ---
	SwitchValue *Expr
	Cases       []*Expr // Kind == KCase

	// --- Case ---
	CaseValue   *Expr // optional; nil means default case.
	CaseBody    *Expr // Kind == KBody
	IsDefault   bool
}

// SetResultType sets the cached result type exactly once; subsequent calls
// are no-ops, matching the invariant in spec §3 ("Cached result_type is set
// at most once with a non-None value").
func (e *Expr) SetResultType(t types.Type) {
	if e.resultTypeSet || t.Kind == types.None {
		return
	}
	e.ResultType = t
	e.resultTypeSet = true
}

// HasResultType reports whether SetResultType has been called.
func (e *Expr) HasResultType() bool {
	return e.resultTypeSet
}

// NewBody allocates an empty Body-kind Expr.
func NewBody(bodyType BodyType, parent *Expr, parentFunc *FunctionPrototype) *Expr {
	return &Expr{
		Kind:           KBody,
		Parent:         parent,
		BodyType:       bodyType,
		ParentFunction: parentFunc,
		Prototypes:     make(map[intern.ID][]*FunctionPrototype),
		Locals:         make(map[intern.ID]types.Type),
		ModuleID:       intern.NoModule,
	}
}

// DeclareLocal registers name with type t in this Body's locals map and
// in-scope registry. Body must have Kind == KBody.
func (e *Expr) DeclareLocal(name intern.ID, t types.Type) {
	e.Locals[name] = t
	e.InScope = append(e.InScope, ScopeEntry{NameID: name, Kind: KindVariable})
}

// DeclarePrototype adds proto to this Body's overload set for its name
// (spec §4.6/§8 scenario 5: distinct parameter types are distinct
// overloads, mangled to distinct ids). Returns false if an overload with
// an identical parameter-type signature already exists.
func (e *Expr) DeclarePrototype(proto *FunctionPrototype) bool {
	for _, existing := range e.Prototypes[proto.NameID] {
		if SameSignature(existing.ParamTypes, proto.ParamTypes) {
			return false
		}
	}
	e.Prototypes[proto.NameID] = append(e.Prototypes[proto.NameID], proto)
	e.InScope = append(e.InScope, ScopeEntry{NameID: proto.NameID, Kind: KindFunction})
	return true
}

// SameSignature reports whether two parameter-type lists are identical,
// the criterion for "already declared" under spec §4.6's mangling-by-
// parameter-types overload model.
func SameSignature(a, b []types.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// ResolveOverload picks the prototype in this Body's overload set for
// name whose parameter types exactly match argTypes (spec §8 scenario 5).
func (e *Expr) ResolveOverload(name intern.ID, argTypes []types.Type) (*FunctionPrototype, bool) {
	for _, proto := range e.Prototypes[name] {
		if SameSignature(proto.ParamTypes, argTypes) {
			return proto, true
		}
	}
	return nil, false
}
