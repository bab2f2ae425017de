package frontend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ashc/internal/ast"
	"ashc/internal/intern"
	"ashc/internal/operator"
)

func parseSrc(t *testing.T, src string) ParseResult {
	t.Helper()
	reg := intern.New()
	res, err := Parse(reg, "test.ash", src)
	require.NoError(t, err)
	return res
}

func TestParseFunctionDefinition(t *testing.T) {
	res := parseSrc(t, "function int add(int a, int b) { return a + b; }")
	require.Len(t, res.Body.Functions, 1)
	fn := res.Body.Functions[0]
	assert.Equal(t, 2, len(fn.Prototype.ParamTypes))
	assert.False(t, fn.Prototype.IsExtern)
	require.Len(t, fn.Body.Children, 1)
	ret := fn.Body.Children[0]
	assert.Equal(t, ast.KReturn, ret.Kind)
	assert.Equal(t, ast.KBinary, ret.RetExpr.Kind)
	assert.Equal(t, operator.Add, ret.RetExpr.Op)
}

func TestParseExternDecl(t *testing.T) {
	res := parseSrc(t, "extern int puts(char c);")
	assert.Len(t, res.Body.Functions, 0)
	assert.Len(t, res.Body.Prototypes, 1)
	for _, overloads := range res.Body.Prototypes {
		for _, proto := range overloads {
			assert.True(t, proto.IsExtern)
		}
	}
}

func TestParseModuleAndUsing(t *testing.T) {
	res := parseSrc(t, "module mymod::sub; using other::mod; function void f() {}")
	assert.NotEqual(t, intern.NoModule, res.Module)
	require.Len(t, res.Imports, 1)
}

func TestOperatorPrecedence(t *testing.T) {
	// 1 + 2 * 3 should parse as 1 + (2 * 3).
	res := parseSrc(t, "function int f() { return 1 + 2 * 3; }")
	ret := res.Body.Functions[0].Body.Children[0]
	top := ret.RetExpr
	require.Equal(t, ast.KBinary, top.Kind)
	assert.Equal(t, operator.Add, top.Op)
	assert.Equal(t, ast.KLiteral, top.Lhs.Kind)
	require.Equal(t, ast.KBinary, top.Rhs.Kind)
	assert.Equal(t, operator.Mul, top.Rhs.Op)
}

func TestAssignmentRightAssociative(t *testing.T) {
	// x = y = 5 should parse as x = (y = 5).
	res := parseSrc(t, "function void f() { int x; int y; x = y = 5; }")
	body := res.Body.Functions[0].Body
	assignStmt := body.Children[2]
	require.Equal(t, ast.KBinary, assignStmt.Kind)
	assert.Equal(t, operator.Assign, assignStmt.Op)
	require.Equal(t, ast.KBinary, assignStmt.Rhs.Kind)
	assert.Equal(t, operator.Assign, assignStmt.Rhs.Op)
}

func TestIfElseIfChain(t *testing.T) {
	src := `function int f(int x) {
		if x == 1 { return 1; } else if x == 2 { return 2; } else { return 0; }
	}`
	res := parseSrc(t, src)
	stmt := res.Body.Functions[0].Body.Children[0]
	require.Equal(t, ast.KIf, stmt.Kind)
	require.NotNil(t, stmt.Else)
	require.Len(t, stmt.Else.Children, 1)
	assert.Equal(t, ast.KIf, stmt.Else.Children[0].Kind)
}

func TestForLoop(t *testing.T) {
	src := `function void f() {
		for int i = 0; i < 10; i += 1 {
			continue;
		}
	}`
	res := parseSrc(t, src)
	stmt := res.Body.Functions[0].Body.Children[0]
	require.Equal(t, ast.KFor, stmt.Kind)
	assert.NotNil(t, stmt.ForStart)
	assert.NotNil(t, stmt.ForEnd)
	assert.NotNil(t, stmt.ForStep)
	require.Len(t, stmt.ForBody.Children, 1)
	assert.Equal(t, ast.KContinue, stmt.ForBody.Children[0].Kind)
}

func TestCastExpression(t *testing.T) {
	res := parseSrc(t, "function int f() { return (int) 3.5; }")
	ret := res.Body.Functions[0].Body.Children[0]
	require.Equal(t, ast.KCast, ret.RetExpr.Kind)
	assert.Equal(t, ast.KLiteral, ret.RetExpr.CastExpr.Kind)
}

func TestModuleScopedCall(t *testing.T) {
	res := parseSrc(t, "function void f() { mymod::helper(1); }")
	stmt := res.Body.Functions[0].Body.Children[0]
	require.Equal(t, ast.KBinary, stmt.Kind)
	assert.Equal(t, operator.ModuleScope, stmt.Op)
	assert.Equal(t, ast.KCall, stmt.Rhs.Kind)
}

func TestParseErrorOnMissingSemicolon(t *testing.T) {
	reg := intern.New()
	_, err := Parse(reg, "test.ash", "function void f() { int x }")
	require.Error(t, err)
}
