package module

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ashc/internal/ast"
	"ashc/internal/intern"
)

func body(reg *intern.Registry) *ast.Expr {
	return ast.NewBody(ast.Global, nil, nil)
}

func TestModuleOrderLinear(t *testing.T) {
	reg := intern.New()
	m := NewManager(reg)

	a := reg.MustGetID("a")
	b := reg.MustGetID("b")
	c := reg.MustGetID("c")

	require.NoError(t, m.AddFile("a.ash", a, nil, body(reg)))
	require.NoError(t, m.AddFile("b.ash", b, []intern.ID{a}, body(reg)))
	require.NoError(t, m.AddFile("c.ash", c, []intern.ID{b}, body(reg)))

	order, cycles := m.GetModuleOrder()
	require.Nil(t, cycles)
	assert.Equal(t, []intern.ID{a, b, c}, order)
}

func TestModuleOrderDetectsCycle(t *testing.T) {
	reg := intern.New()
	m := NewManager(reg)

	a := reg.MustGetID("a")
	b := reg.MustGetID("b")

	require.NoError(t, m.AddFile("a.ash", a, []intern.ID{b}, body(reg)))
	require.NoError(t, m.AddFile("b.ash", b, []intern.ID{a}, body(reg)))

	order, cycles := m.GetModuleOrder()
	assert.Nil(t, order)
	assert.NotEmpty(t, cycles)
}

func TestCheckModulesRejectsUnknownUsing(t *testing.T) {
	reg := intern.New()
	m := NewManager(reg)

	a := reg.MustGetID("a")
	ghost := reg.MustGetID("ghost")

	require.NoError(t, m.AddFile("a.ash", a, []intern.ID{ghost}, body(reg)))
	assert.Error(t, m.CheckModules())
}

func TestFindFunctionFindsOwnModuleFunction(t *testing.T) {
	reg := intern.New()
	m := NewManager(reg)

	a := reg.MustGetID("a")
	fnName := reg.MustGetID("helper")

	own := ast.NewBody(ast.Global, nil, nil)
	own.DeclarePrototype(&ast.FunctionPrototype{NameID: fnName})
	require.NoError(t, m.AddFile("a.ash", a, nil, own))

	proto, ok := m.FindFunction("a.ash", fnName, nil)
	require.True(t, ok)
	assert.Equal(t, fnName, proto.NameID)
}
