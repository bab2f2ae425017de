package constcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ashc/internal/ast"
	"ashc/internal/frontend"
	"ashc/internal/intern"
)

func TestConstantFolding(t *testing.T) {
	reg := intern.New()
	res, err := frontend.Parse(reg, "t.ash", "function int f() { return 1 + 2; }")
	require.NoError(t, err)

	ret := res.Body.Functions[0].Body.Children[0]
	status := Check(ret)
	// Return is Constant iff its inner expression is Constant.
	assert.Equal(t, ast.Constant, status)
	assert.Equal(t, ast.Constant, ret.RetExpr.Status)
}

func TestVariableReferenceIsNeverConstant(t *testing.T) {
	reg := intern.New()
	res, err := frontend.Parse(reg, "t.ash", "function int f(int x) { return x + 1; }")
	require.NoError(t, err)

	ret := res.Body.Functions[0].Body.Children[0]
	status := Check(ret)
	assert.Equal(t, ast.Variable, ret.RetExpr.Status)
	assert.Equal(t, ast.Variable, status)
}

func TestReturnWithoutExpressionIsConstant(t *testing.T) {
	reg := intern.New()
	res, err := frontend.Parse(reg, "t.ash", "function void f() { return; }")
	require.NoError(t, err)

	ret := res.Body.Functions[0].Body.Children[0]
	assert.Equal(t, ast.Constant, Check(ret))
}

func TestVariableDeclarationInheritsFromInitializer(t *testing.T) {
	reg := intern.New()
	res, err := frontend.Parse(reg, "t.ash", `function void f(int x) {
		int a = 1 + 2;
		int b = x + 1;
		int c;
	}`)
	require.NoError(t, err)

	body := res.Body.Functions[0].Body
	assert.Equal(t, ast.Constant, Check(body.Children[0]))
	assert.Equal(t, ast.Variable, Check(body.Children[1]))
	assert.Equal(t, ast.Constant, Check(body.Children[2]))
}

func TestIfIsConstantOnlyWhenConditionAndBothBranchesAre(t *testing.T) {
	reg := intern.New()
	res, err := frontend.Parse(reg, "t.ash", `function void f(int x) {
		if 1 == 1 { int a = 1; } else { int b = 2; }
		if x == 1 { int a = 1; }
	}`)
	require.NoError(t, err)

	body := res.Body.Functions[0].Body
	assert.Equal(t, ast.Constant, Check(body.Children[0]))
	assert.Equal(t, ast.Variable, Check(body.Children[1]))
}

func TestBodyIsConstantOnlyWhenEveryChildAndFunctionBodyAre(t *testing.T) {
	reg := intern.New()
	res, err := frontend.Parse(reg, "t.ash", `function void f(int x) {
		int a = 1;
		int b = x;
	}`)
	require.NoError(t, err)

	body := res.Body.Functions[0].Body
	assert.Equal(t, ast.Variable, Check(body))

	reg2 := intern.New()
	res2, err := frontend.Parse(reg2, "t.ash", `function void f() {
		int a = 1;
		int b = 2;
	}`)
	require.NoError(t, err)

	body2 := res2.Body.Functions[0].Body
	assert.Equal(t, ast.Constant, Check(body2))
}
