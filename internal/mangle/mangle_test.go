package mangle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ashc/internal/ast"
	"ashc/internal/intern"
	"ashc/internal/types"
)

func TestPrototypeRoundTripsThroughExtractModule(t *testing.T) {
	reg := intern.New()
	m := New(reg)

	rawModule := reg.MustGetID("mymod::sub")
	moduleID := m.ModulePath(rawModule)

	proto := &ast.FunctionPrototype{
		NameID:     reg.MustGetID("add"),
		ParamTypes: []types.Type{types.DefaultInt, types.DefaultInt},
	}
	mangled := m.Prototype(moduleID, proto)

	extracted, err := ExtractModule(reg, mangled)
	require.NoError(t, err)
	assert.Equal(t, moduleID, extracted)
	assert.Equal(t, "mymod::sub", PrettyModules(reg, extracted))
}

func TestPrototypeNoModule(t *testing.T) {
	reg := intern.New()
	m := New(reg)

	proto := &ast.FunctionPrototype{NameID: reg.MustGetID("main"), ParamTypes: nil}
	mangled := m.Prototype(intern.NoModule, proto)

	name := reg.MustGetString(mangled)
	assert.Equal(t, "_AS_F4mainP0", name)
}

func TestMangleUsingChain(t *testing.T) {
	reg := intern.New()
	m := New(reg)

	// A pure module-path scope chain "a::b", as it appears on the left
	// spine of a qualified reference before the trailing function/variable
	// name; MangleUsing never sees the call itself (spec §4.6).
	a := &ast.Expr{Kind: ast.KVariableReference, RefNameID: reg.MustGetID("a")}
	b := &ast.Expr{Kind: ast.KVariableReference, RefNameID: reg.MustGetID("b")}
	outer := &ast.Expr{Kind: ast.KBinary, Lhs: a, Rhs: b}

	id, err := m.MangleUsing(outer)
	require.NoError(t, err)
	assert.Equal(t, "M1aM1b", reg.MustGetString(id))
}
