package ast

import (
	"fmt"

	"ashc/internal/types"
)

// String renders a single-line, print-friendly summary of e, used by
// Print's tree dump. Exhaustively switches on Kind
// instead of the teacher's virtual to_string methods.
func (e *Expr) String() string {
	if e == nil {
		return "---> [NIL POINTER]"
	}
	switch e.Kind {
	case KLiteral:
		return fmt.Sprintf("Literal [%s]", e.literalString())
	case KBody:
		return fmt.Sprintf("Body [%s]", e.BodyType)
	case KVariableDeclaration:
		return fmt.Sprintf("VariableDeclaration [%s]", e.DeclType)
	case KVariableReference:
		return "VariableReference"
	case KBinary:
		return fmt.Sprintf("Binary [%s]", e.Op)
	case KUnary:
		return fmt.Sprintf("Unary [%s]", e.UOp)
	case KCast:
		return fmt.Sprintf("Cast [%s]", e.TargetType)
	case KCall:
		return "Call"
	case KIf:
		return "If"
	case KFor:
		return "For"
	case KWhile:
		return "While"
	case KComment:
		return "Comment"
	case KReturn:
		return "Return"
	case KContinue:
		return "Continue"
	case KBreak:
		return "Break"
	case KSwitch:
		return "Switch"
	case KCase:
		if e.IsDefault {
			return "Case [default]"
		}
		return "Case"
	default:
		return fmt.Sprintf("---> MISCONFIGURED NODE [Kind=%d]", e.Kind)
	}
}

func (e *Expr) literalString() string {
	switch e.LitType.Kind {
	case types.Int:
		return fmt.Sprintf("%s %d", e.LitType, e.IntVal)
	case types.Float:
		return fmt.Sprintf("%s %g", e.LitType, e.FloatVal)
	case types.Bool:
		return fmt.Sprintf("%s %t", e.LitType, e.BoolVal)
	case types.Char:
		return fmt.Sprintf("%s %q", e.LitType, e.CharVal)
	default:
		return e.LitType.String()
	}
}

// children returns e's direct structural children for tree printing,
// exhaustively per Kind.
func (e *Expr) children() []*Expr {
	switch e.Kind {
	case KBody:
		return e.Children
	case KVariableDeclaration:
		if e.Init != nil {
			return []*Expr{e.Init}
		}
	case KBinary:
		return []*Expr{e.Lhs, e.Rhs}
	case KUnary:
		return []*Expr{e.Operand}
	case KCast:
		return []*Expr{e.CastExpr}
	case KCall:
		return e.Args
	case KIf:
		kids := []*Expr{e.Cond, e.Then}
		if e.Else != nil {
			kids = append(kids, e.Else)
		}
		return kids
	case KFor:
		kids := []*Expr{e.ForStart, e.ForEnd}
		if e.ForStep != nil {
			kids = append(kids, e.ForStep)
		}
		return append(kids, e.ForBody)
	case KWhile:
		return []*Expr{e.WhileCond, e.WhileBody}
	case KReturn:
		if e.RetExpr != nil {
			return []*Expr{e.RetExpr}
		}
	case KSwitch:
		kids := []*Expr{e.SwitchValue}
		return append(kids, e.Cases...)
	case KCase:
		kids := []*Expr{}
		if e.CaseValue != nil {
			kids = append(kids, e.CaseValue)
		}
		return append(kids, e.CaseBody)
	}
	return nil
}

// Print recursively prints e and its children, indenting for each
// recursive call, the way the teacher's Node.Print does.
func (e *Expr) Print(depth int) {
	if depth < 0 {
		depth = 0
	}
	if e == nil {
		fmt.Printf("%*c%s\n", depth<<1, ' ', "---> NIL")
		return
	}
	fmt.Printf("%*c%s\n", depth<<1, ' ', e.String())
	for _, c := range e.children() {
		c.Print(depth + 1)
	}
}
