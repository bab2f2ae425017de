package typecheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ashc/internal/ast"
	"ashc/internal/frontend"
	"ashc/internal/intern"
	"ashc/internal/module"
	"ashc/internal/types"
)

func checkSingleFile(t *testing.T, src string) (*module.Manager, *intern.Registry, string, error) {
	t.Helper()
	reg := intern.New()
	mm := module.NewManager(reg)

	res, err := frontend.Parse(reg, "t.ash", src)
	require.NoError(t, err)
	require.NoError(t, mm.AddFile("t.ash", res.Module, res.Imports, res.Body))

	files, cycles := mm.GetBuildFilesOrder()
	require.Nil(t, cycles)

	c := New(mm, reg)
	err = c.CheckBuild(files)
	return mm, reg, "t.ash", err
}

func TestCheckFunctionReturnTypeMatches(t *testing.T) {
	_, _, _, err := checkSingleFile(t, `function int f() { return 1 + 2; }`)
	assert.NoError(t, err)
}

func TestCheckFunctionReturnTypeMismatch(t *testing.T) {
	_, _, _, err := checkSingleFile(t, `function int f() { return true; }`)
	assert.Error(t, err)
}

func TestCheckVariableDeclarationTypeMismatch(t *testing.T) {
	_, _, _, err := checkSingleFile(t, `function void f() { int x = true; }`)
	assert.Error(t, err)
}

func TestCheckVariableRedeclarationRejected(t *testing.T) {
	_, _, _, err := checkSingleFile(t, `function void f() { int x = 1; int x = 2; }`)
	assert.Error(t, err)
}

func TestCheckUndefinedVariableReference(t *testing.T) {
	_, _, _, err := checkSingleFile(t, `function int f() { return y; }`)
	assert.Error(t, err)
}

func TestCheckCallArityMismatch(t *testing.T) {
	_, _, _, err := checkSingleFile(t, `
		function int helper(int x) { return x; }
		function int f() { return helper(1, 2); }
	`)
	assert.Error(t, err)
}

func TestCheckCallArgumentTypeMismatch(t *testing.T) {
	_, _, _, err := checkSingleFile(t, `
		function int helper(int x) { return x; }
		function int f() { return helper(true); }
	`)
	assert.Error(t, err)
}

func TestCheckIfConditionMustBeBool(t *testing.T) {
	_, _, _, err := checkSingleFile(t, `function void f() { if 1 { } }`)
	assert.Error(t, err)
}

func TestCheckForLoopVariableTypeMismatch(t *testing.T) {
	_, _, _, err := checkSingleFile(t, `function void f() { for int i = true; i < 10; i += 1 { } }`)
	assert.Error(t, err)
}

func TestCheckBinaryOperatorTypeMismatch(t *testing.T) {
	_, _, _, err := checkSingleFile(t, `function int f() { return 1 + true; }`)
	assert.Error(t, err)
}

func TestCheckCallResolvesOverloadByArgumentType(t *testing.T) {
	_, _, _, err := checkSingleFile(t, `
		function int f(int x) { return x; }
		function int f(float x) { return 1; }
		function int main() { return f(1) + f(1.0); }
	`)
	assert.NoError(t, err)
}

func TestCheckCallNoMatchingOverloadIsError(t *testing.T) {
	_, _, _, err := checkSingleFile(t, `
		function int f(int x) { return x; }
		function int f(float x) { return 1; }
		function int main() { return f(true); }
	`)
	assert.Error(t, err)
}

func TestDuplicateOverloadSignatureRejectedAtParse(t *testing.T) {
	reg := intern.New()
	_, err := frontend.Parse(reg, "t.ash", `
		function int f(int x) { return x; }
		function int f(int y) { return y; }
	`)
	assert.Error(t, err)
}

func TestCheckCastLegality(t *testing.T) {
	_, _, _, err := checkSingleFile(t, `
		function void f() {
			float x = 1.0;
			int y = (int) 3.5;
			bool b = (bool) 1;
		}
	`)
	assert.NoError(t, err)
}

func TestCheckFloatToBoolCastRejected(t *testing.T) {
	_, _, _, err := checkSingleFile(t, `function void f() { bool c = (bool) 1.0; }`)
	assert.Error(t, err)
}

func TestLiteralResultTypeIsSet(t *testing.T) {
	reg := intern.New()
	res, err := frontend.Parse(reg, "t.ash", `function int f() { return 1; }`)
	require.NoError(t, err)

	mm := module.NewManager(reg)
	require.NoError(t, mm.AddFile("t.ash", res.Module, res.Imports, res.Body))

	c := New(mm, reg)
	require.NoError(t, c.CheckBuild([]string{"t.ash"}))

	ret := res.Body.Functions[0].Body.Children[0]
	require.Equal(t, ast.KReturn, ret.Kind)
	assert.Equal(t, types.DefaultInt, ret.RetExpr.ResultType)
}
