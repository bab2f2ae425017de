// Package typecheck implements the Type Checker (spec §4.9): a two-pass
// check across files in build order. The prototype pass re-checks the
// overload sets the parser already registered for duplicate signatures; the
// body pass walks
// each file's tree, validating declarations, references, calls, operator
// applicability, branch/loop typing and return-type conformance. Grounded
// directly on
// original_source/stage-0-compiler/source/ast/type_checker.cpp.
package typecheck

import (
	"fmt"

	"ashc/internal/ast"
	"ashc/internal/diag"
	"ashc/internal/intern"
	"ashc/internal/module"
	"ashc/internal/operator"
	"ashc/internal/scope"
	"ashc/internal/types"
)

// Checker carries the state needed across a single check_types run: the
// module manager (for cross-module lookups) and the file currently under
// inspection.
type Checker struct {
	mm   *module.Manager
	reg  *intern.Registry
	file string
}

// New returns a Checker bound to mm and reg. Call SetFile before checking
// each file's body, mirroring set_module in the original.
func New(mm *module.Manager, reg *intern.Registry) *Checker {
	return &Checker{mm: mm, reg: reg}
}

// SetFile selects which file's cross-module lookups apply to subsequent
// Check calls.
func (c *Checker) SetFile(file string) {
	c.file = file
}

// CheckBuild runs both passes over every file in files, in order. Callers
// are expected to have already obtained files via
// module.Manager.GetBuildFilesOrder.
func (c *Checker) CheckBuild(files []string) error {
	for _, f := range files {
		body, ok := c.mm.GetAST(f)
		if !ok {
			continue
		}
		c.SetFile(f)
		if err := c.checkPrototypes(body); err != nil {
			return err
		}
	}
	for _, f := range files {
		body, ok := c.mm.GetAST(f)
		if !ok {
			continue
		}
		c.SetFile(f)
		if err := c.Check(body); err != nil {
			return err
		}
	}
	return nil
}

// checkPrototypes validates every overload set the parser already
// registered in body (the parser declares prototypes as it parses, so
// forward references resolve within the same file). Mirrors the
// prototype-pass half of check_expression<BodyExpr>: by the time this runs,
// ast.Expr.DeclarePrototype has already rejected any two prototypes sharing
// a name and an identical parameter-type signature (spec §8 scenario 5); this
// pass only re-confirms that invariant rather than re-registering names that
// would otherwise look "already defined" against the very entries the parser
// just added.
func (c *Checker) checkPrototypes(body *ast.Expr) error {
	for nameID, overloads := range body.Prototypes {
		for i := 0; i < len(overloads); i++ {
			for j := i + 1; j < len(overloads); j++ {
				if ast.SameSignature(overloads[i].ParamTypes, overloads[j].ParamTypes) {
					return c.errf(body, "function %q is already defined with this parameter signature", c.name(nameID))
				}
			}
		}
	}
	return nil
}

// Check dispatches on root's Kind, mirroring check_expression_dispatch.
// Returns the first diagnostic encountered; there is no error recovery.
func (c *Checker) Check(root *ast.Expr) error {
	if root == nil {
		return nil
	}
	switch root.Kind {
	case ast.KLiteral:
		return c.checkLiteral(root)
	case ast.KBody:
		return c.checkBody(root)
	case ast.KVariableDeclaration:
		return c.checkVarDecl(root)
	case ast.KVariableReference:
		return c.checkVarRef(root)
	case ast.KBinary:
		return c.checkBinary(root)
	case ast.KUnary:
		return c.checkUnary(root)
	case ast.KCast:
		return c.checkCast(root)
	case ast.KCall:
		return c.checkCall(root)
	case ast.KIf:
		return c.checkIf(root)
	case ast.KFor:
		return c.checkFor(root)
	case ast.KWhile:
		return c.checkWhile(root)
	case ast.KReturn:
		return c.checkReturn(root)
	case ast.KSwitch:
		return c.checkSwitch(root)
	case ast.KCase:
		return c.checkCase(root)
	case ast.KComment, ast.KContinue, ast.KBreak:
		return nil
	default:
		return c.errf(root, "unhandled expression kind %s in type checker", root.Kind)
	}
}

func (c *Checker) checkLiteral(e *ast.Expr) error {
	e.SetResultType(e.LitType)
	return nil
}

func (c *Checker) checkBody(body *ast.Expr) error {
	for _, fn := range body.Functions {
		if err := c.checkFunction(fn); err != nil {
			return err
		}
	}
	for _, child := range body.Children {
		if err := c.Check(child); err != nil {
			return err
		}
	}
	body.SetResultType(types.VoidType)
	return nil
}

// checkFunction adds the function's parameters to its body's scope, checks
// the body, then verifies the body's result type matches the prototype's
// declared return type (Void functions are exempt). Mirrors check_function.
func (c *Checker) checkFunction(fn *ast.FunctionDefinition) error {
	for i, nameID := range fn.Prototype.ParamNameIDs {
		fn.Body.DeclareLocal(nameID, fn.Prototype.ParamTypes[i])
	}

	if err := c.Check(fn.Body); err != nil {
		return err
	}

	if fn.Prototype.ReturnType.Kind == types.Void {
		return nil
	}
	last := lastResultType(fn.Body)
	if !last.Equal(fn.Prototype.ReturnType) {
		return c.errf(fn.Body, "function %q declares return type %s but body yields %s",
			c.name(fn.Prototype.NameID), fn.Prototype.ReturnType, last)
	}
	return nil
}

// lastResultType returns the result type of a body's last expression, or
// Void if the body is empty.
func lastResultType(body *ast.Expr) types.Type {
	if len(body.Children) == 0 {
		return types.VoidType
	}
	return body.Children[len(body.Children)-1].ResultType
}

func (c *Checker) checkVarDecl(e *ast.Expr) error {
	for _, entry := range c.bodyOf(e).InScope {
		if entry.Kind == ast.KindVariable && entry.NameID == e.NameID {
			return c.errf(e, "variable %q has already been defined", c.name(e.NameID))
		}
	}
	c.bodyOf(e).DeclareLocal(e.NameID, e.DeclType)

	if e.Init != nil {
		if err := c.Check(e.Init); err != nil {
			return err
		}
		if !e.DeclType.Equal(e.Init.ResultType) {
			return c.errf(e, "variable declaration for %q expected type %s but got %s instead",
				c.name(e.NameID), e.DeclType, e.Init.ResultType)
		}
	}
	e.SetResultType(e.DeclType)
	return nil
}

func (c *Checker) checkVarRef(e *ast.Expr) error {
	if !scope.IsVariableDefined(e, e.RefNameID, ast.KindVariable) {
		return c.errf(e, "variable reference to %q is not in scope (not defined)", c.name(e.RefNameID))
	}
	declaringBody, ok := scope.GetVariableScope(e)
	if !ok {
		return c.errf(e, "variable reference to %q is not in scope", c.name(e.RefNameID))
	}
	e.SetResultType(declaringBody.Locals[e.RefNameID])
	return nil
}

func (c *Checker) checkBinary(e *ast.Expr) error {
	if err := c.Check(e.Rhs); err != nil {
		return err
	}
	if e.Op == operator.ModuleScope {
		e.SetResultType(e.Rhs.ResultType)
		return nil
	}
	if err := c.Check(e.Lhs); err != nil {
		return err
	}

	if e.Op.IsAssignment() {
		if !e.Lhs.ResultType.Equal(e.Rhs.ResultType) {
			return c.errf(e, "assignment operator %s has incompatible types: %s and %s given",
				e.Op, e.Lhs.ResultType, e.Rhs.ResultType)
		}
		e.SetResultType(e.Lhs.ResultType)
		return nil
	}

	if !e.Lhs.ResultType.Equal(e.Rhs.ResultType) {
		return c.errf(e, "binary operator %s has incompatible types: %s and %s given",
			e.Op, e.Lhs.ResultType, e.Rhs.ResultType)
	}
	if !operator.SupportsOperands(e.Op, e.Lhs.ResultType) {
		return c.errf(e, "binary operator %s does not support the given type: %s", e.Op, e.Lhs.ResultType)
	}
	e.SetResultType(operator.Result(e.Op, e.Lhs.ResultType))
	return nil
}

func (c *Checker) checkUnary(e *ast.Expr) error {
	if err := c.Check(e.Operand); err != nil {
		return err
	}
	e.SetResultType(e.Operand.ResultType)
	return nil
}

func (c *Checker) checkCast(e *ast.Expr) error {
	if err := c.Check(e.CastExpr); err != nil {
		return err
	}
	if !types.CastLegal(e.CastExpr.ResultType, e.TargetType) {
		return c.errf(e, "cannot cast %s to %s", e.CastExpr.ResultType, e.TargetType)
	}
	e.SetResultType(e.TargetType)
	return nil
}

func (c *Checker) checkCall(e *ast.Expr) error {
	if !scope.IsVariableDefined(e, e.CalleeID, ast.KindFunction) && !scope.FindExternFunction(e, e.CalleeID) &&
		len(c.mm.GetMatchingFunctionLocations(c.file, e.CalleeID)) == 0 {
		return c.errf(e, "function call to %q is not in scope (not defined)", c.name(e.CalleeID))
	}
	if _, ok := scope.GetCallScope(c.mm, c.file, e); !ok {
		return c.errf(e, "function call to %q is not in scope", c.name(e.CalleeID))
	}

	argTypes := make([]types.Type, len(e.Args))
	for i, arg := range e.Args {
		if err := c.Check(arg); err != nil {
			return err
		}
		argTypes[i] = arg.ResultType
	}

	// spec §8 scenario 5: overloads of the same name are distinguished by
	// exact parameter-type match, not arity-then-coerce.
	proto, ok := c.mm.FindFunction(c.file, e.CalleeID, argTypes)
	if !ok {
		return c.errf(e, "call to %q has no overload matching argument types %v", c.name(e.CalleeID), argTypes)
	}
	e.SetResultType(proto.ReturnType)
	return nil
}

func (c *Checker) checkIf(e *ast.Expr) error {
	if err := c.Check(e.Cond); err != nil {
		return err
	}
	if !e.Cond.ResultType.Equal(types.DefaultBool) {
		return c.errf(e, "if condition must have type bool")
	}
	if err := c.Check(e.Then); err != nil {
		return err
	}
	if e.Else != nil {
		if err := c.Check(e.Else); err != nil {
			return err
		}
	}

	if !e.ShouldReturnValue {
		e.SetResultType(types.VoidType)
		return nil
	}
	thenType := lastResultType(e.Then)
	var elseType types.Type
	if e.Else != nil {
		elseType = lastResultType(e.Else)
	}
	if !thenType.Equal(elseType) {
		return c.errf(e, "if statement has incompatible result types: %s and %s given", thenType, elseType)
	}
	e.SetResultType(thenType)
	return nil
}

func (c *Checker) checkFor(e *ast.Expr) error {
	e.ForBody.DeclareLocal(e.ForNameID, e.ForVarType)

	if err := c.Check(e.ForStart); err != nil {
		return err
	}
	if !e.ForVarType.Equal(e.ForStart.ResultType) {
		return c.errf(e, "for start expression has invalid type, expected %s but got %s instead",
			e.ForVarType, e.ForStart.ResultType)
	}

	if err := c.Check(e.ForEnd); err != nil {
		return err
	}
	if !e.ForEnd.ResultType.Equal(types.DefaultBool) {
		return c.errf(e, "for end condition must have type bool")
	}

	if e.ForStep != nil {
		if err := c.Check(e.ForStep); err != nil {
			return err
		}
	}
	if err := c.Check(e.ForBody); err != nil {
		return err
	}
	e.SetResultType(types.VoidType)
	return nil
}

func (c *Checker) checkWhile(e *ast.Expr) error {
	if err := c.Check(e.WhileCond); err != nil {
		return err
	}
	if !e.WhileCond.ResultType.Equal(types.DefaultBool) {
		return c.errf(e, "while condition must have type bool")
	}
	if err := c.Check(e.WhileBody); err != nil {
		return err
	}
	e.SetResultType(types.VoidType)
	return nil
}

func (c *Checker) checkReturn(e *ast.Expr) error {
	if e.RetExpr != nil {
		if err := c.Check(e.RetExpr); err != nil {
			return err
		}
		e.SetResultType(e.RetExpr.ResultType)
	} else {
		e.SetResultType(types.VoidType)
	}
	return nil
}

func (c *Checker) checkSwitch(e *ast.Expr) error {
	if err := c.Check(e.SwitchValue); err != nil {
		return err
	}
	for _, cs := range e.Cases {
		if cs.CaseValue != nil {
			if err := c.Check(cs.CaseValue); err != nil {
				return err
			}
			if !cs.CaseValue.ResultType.Equal(e.SwitchValue.ResultType) {
				return c.errf(cs, "case value has type %s but switch scrutinee has type %s",
					cs.CaseValue.ResultType, e.SwitchValue.ResultType)
			}
		}
		if err := c.Check(cs.CaseBody); err != nil {
			return err
		}
	}
	e.SetResultType(types.VoidType)
	return nil
}

func (c *Checker) checkCase(e *ast.Expr) error {
	if e.CaseValue != nil {
		if err := c.Check(e.CaseValue); err != nil {
			return err
		}
	}
	if err := c.Check(e.CaseBody); err != nil {
		return err
	}
	e.SetResultType(types.VoidType)
	return nil
}

func (c *Checker) bodyOf(e *ast.Expr) *ast.Expr {
	if e.Kind == ast.KBody {
		return e
	}
	return e.Parent
}

func (c *Checker) name(id intern.ID) string {
	return c.reg.MustGetString(id)
}

func (c *Checker) errf(e *ast.Expr, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	d := diag.New(diag.TypeError, c.file, e.Line.StartLine, e.Line.StartCol, e.Line.RawLine, "%s", msg)
	return d
}
