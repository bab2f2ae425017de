// Package scope implements the Scope Checker (spec §4.7): resolving a call
// or variable reference to the Body that declares it by walking the Parent
// chain, and checking whether a name is in scope at a given point. Grounded
// directly on
// original_source/stage-0-compiler/source/ast/scope_checker.cpp.
package scope

import (
	"ashc/internal/ast"
	"ashc/internal/intern"
	"ashc/internal/module"
)

// GetCallScope walks call's enclosing Body chain looking for a Body whose
// Prototypes map contains callee, stopping at the first match. If no
// enclosing Body declares it, the Module Manager's cross-module search is
// consulted (the function lives in a `using`-imported module). Mirrors
// get_scope(CallExpr*).
func GetCallScope(mm *module.Manager, file string, call *ast.Expr) (*ast.Expr, bool) {
	body := call.Parent
	for body != nil {
		if _, ok := body.Prototypes[call.CalleeID]; ok {
			return body, true
		}
		body = body.Parent
	}
	for _, owner := range mm.GetMatchingFunctionLocations(file, call.CalleeID) {
		if b, ok := mm.FindBody(owner, call.CalleeID); ok {
			return b, true
		}
	}
	return nil, false
}

// GetVariableScope walks ref's enclosing Body chain looking for a Body whose
// Locals map contains ref's name, stopping at the first match (no
// cross-module fallback: variables are never exported). Mirrors
// get_scope(VariableReferenceExpr*).
func GetVariableScope(ref *ast.Expr) (*ast.Expr, bool) {
	body := ref.Parent
	for body != nil {
		if _, ok := body.Locals[ref.RefNameID]; ok {
			return body, true
		}
		body = body.Parent
	}
	return nil, false
}

// IsVariableDefined reports whether nameID of the given ScopeKind is
// reachable from expr's enclosing Body chain, via each Body's ordered
// InScope registry. A Variable lookup stops climbing past the first
// Function-type Body it reaches (locals don't leak into an enclosing
// function); a Function lookup keeps climbing all the way to the file's
// Global body. Mirrors is_variable_defined.
func IsVariableDefined(expr *ast.Expr, nameID intern.ID, kind ast.ScopeKind) bool {
	body := bodyOf(expr)
	if body == nil {
		return false
	}
	for body != nil {
		for _, e := range body.InScope {
			if e.NameID == nameID && e.Kind == kind {
				return true
			}
		}
		if kind != ast.KindFunction && body.BodyType == ast.Function {
			return false
		}
		body = body.Parent
	}
	return false
}

// FindExternFunction reports whether nameID resolves to an extern
// prototype reachable from expr's enclosing Body chain. Mirrors
// find_extern_function.
func FindExternFunction(expr *ast.Expr, nameID intern.ID) bool {
	body := bodyOf(expr)
	for body != nil {
		for _, proto := range body.Prototypes[nameID] {
			if proto.IsExtern {
				return true
			}
		}
		body = body.Parent
	}
	return false
}

// bodyOf returns expr itself if it is already a Body, otherwise its
// enclosing Body (Parent).
func bodyOf(expr *ast.Expr) *ast.Expr {
	if expr.Kind == ast.KBody {
		return expr
	}
	return expr.Parent
}
