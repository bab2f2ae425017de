// Package constcheck implements the Constant Checker (spec §4.8): a
// post-order traversal that classifies every expression as Constant or
// Variable (ast.Unknown is never observed once this pass completes).
// Grounded on the constant-propagation checks scattered through
// original_source/stage-0-compiler/source/ast/builder.cpp's expr->is_constant()
// call sites, consolidated here into a single explicit bottom-up pass
// instead of being computed inline during tree construction.
package constcheck

import (
	"ashc/internal/ast"
	"ashc/internal/operator"
)

// Check classifies every node under root, writing ast.Constant or
// ast.Variable into each node's Status field, and returns root's own
// status.
func Check(root *ast.Expr) ast.ConstStatus {
	if root == nil {
		return ast.Constant
	}
	switch root.Kind {
	case ast.KLiteral:
		root.Status = ast.Constant
	case ast.KVariableReference:
		root.Status = ast.Variable
	case ast.KVariableDeclaration:
		if root.Init != nil {
			root.Status = Check(root.Init)
		} else {
			root.Status = ast.Constant
		}
	case ast.KBinary:
		rhs := Check(root.Rhs)
		if root.Op == operator.ModuleScope {
			// The module-scope operator inherits from its right operand
			// only: the left side names a module, not a value.
			root.Status = rhs
		} else {
			lhs := Check(root.Lhs)
			if lhs == ast.Constant && rhs == ast.Constant {
				root.Status = ast.Constant
			} else {
				root.Status = ast.Variable
			}
		}
	case ast.KUnary:
		root.Status = Check(root.Operand)
	case ast.KCast:
		root.Status = Check(root.CastExpr)
	case ast.KCall:
		for _, a := range root.Args {
			Check(a)
		}
		// A call's result always depends on runtime state (even a call to a
		// function that happens to always return the same value), so it is
		// never folded.
		root.Status = ast.Variable
	case ast.KIf:
		cond := Check(root.Cond)
		then := Check(root.Then)
		els := ast.Constant
		if root.Else != nil {
			els = Check(root.Else)
		}
		if cond == ast.Constant && then == ast.Constant && els == ast.Constant {
			root.Status = ast.Constant
		} else {
			root.Status = ast.Variable
		}
	case ast.KFor:
		Check(root.ForStart)
		Check(root.ForEnd)
		if root.ForStep != nil {
			Check(root.ForStep)
		}
		Check(root.ForBody)
		root.Status = ast.Variable
	case ast.KWhile:
		Check(root.WhileCond)
		Check(root.WhileBody)
		root.Status = ast.Variable
	case ast.KReturn:
		if root.RetExpr != nil {
			root.Status = Check(root.RetExpr)
		} else {
			root.Status = ast.Constant
		}
	case ast.KSwitch:
		Check(root.SwitchValue)
		for _, c := range root.Cases {
			Check(c)
		}
		root.Status = ast.Variable
	case ast.KCase:
		if root.CaseValue != nil {
			Check(root.CaseValue)
		}
		Check(root.CaseBody)
		root.Status = ast.Variable
	case ast.KBody:
		allConstant := true
		for _, fn := range root.Functions {
			if Check(fn.Body) != ast.Constant {
				allConstant = false
			}
		}
		for _, c := range root.Children {
			if Check(c) != ast.Constant {
				allConstant = false
			}
		}
		if allConstant {
			root.Status = ast.Constant
		} else {
			root.Status = ast.Variable
		}
	default:
		root.Status = ast.Constant
	}
	return root.Status
}
