package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ashc/internal/ast"
	"ashc/internal/frontend"
	"ashc/internal/intern"
	"ashc/internal/module"
)

func TestGetVariableScopeFindsDeclaringBlock(t *testing.T) {
	reg := intern.New()
	res, err := frontend.Parse(reg, "t.ash", `function int f() {
		int x = 1;
		if x == 1 { return x; }
	}`)
	require.NoError(t, err)

	fn := res.Body.Functions[0]
	ifStmt := fn.Body.Children[1]
	ret := ifStmt.Then.Children[0]
	ref := ret.RetExpr
	fn.Body.DeclareLocal(reg.MustGetID("x"), fn.Body.Children[0].DeclType)

	// x is declared in fn.Body, referenced from inside the if-then block.
	declaringBody, ok := GetVariableScope(ref)
	require.True(t, ok)
	assert.Same(t, fn.Body, declaringBody)
}

func TestIsVariableDefinedStopsAtFunctionBoundary(t *testing.T) {
	reg := intern.New()
	res, err := frontend.Parse(reg, "t.ash", `function int f() {
		int x = 1;
	}`)
	require.NoError(t, err)
	fn := res.Body.Functions[0]
	nameID := reg.MustGetID("x")
	fn.Body.DeclareLocal(nameID, fn.Body.Children[0].DeclType)

	assert.True(t, IsVariableDefined(fn.Body, nameID, ast.KindVariable))
	assert.False(t, IsVariableDefined(res.Body, nameID, ast.KindVariable))
}

func TestGetCallScopeCrossModule(t *testing.T) {
	reg := intern.New()
	mm := module.NewManager(reg)

	libRes, err := frontend.Parse(reg, "lib.ash", `module lib; function int helper() { return 1; }`)
	require.NoError(t, err)
	require.NoError(t, mm.AddFile("lib.ash", libRes.Module, libRes.Imports, libRes.Body))

	mainRes, err := frontend.Parse(reg, "main.ash", `using lib; function int main() { return helper(); }`)
	require.NoError(t, err)
	require.NoError(t, mm.AddFile("main.ash", mainRes.Module, mainRes.Imports, mainRes.Body))

	call := mainRes.Body.Functions[0].Body.Children[0].RetExpr
	require.Equal(t, ast.KCall, call.Kind)

	_, ok := GetCallScope(mm, "main.ash", call)
	assert.True(t, ok)
}
