package ast

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ashc/internal/intern"
	"ashc/internal/types"
)

func TestDeclarePrototypeAllowsDistinctOverloads(t *testing.T) {
	reg := intern.New()
	name := reg.MustGetID("f")
	body := NewBody(Global, nil, nil)

	intProto := &FunctionPrototype{NameID: name, ParamTypes: []types.Type{types.DefaultInt}}
	floatProto := &FunctionPrototype{NameID: name, ParamTypes: []types.Type{types.DefaultFloat}}

	assert.True(t, body.DeclarePrototype(intProto))
	assert.True(t, body.DeclarePrototype(floatProto))
	assert.Len(t, body.Prototypes[name], 2)
}

func TestDeclarePrototypeRejectsIdenticalSignature(t *testing.T) {
	reg := intern.New()
	name := reg.MustGetID("f")
	body := NewBody(Global, nil, nil)

	first := &FunctionPrototype{NameID: name, ParamTypes: []types.Type{types.DefaultInt}}
	second := &FunctionPrototype{NameID: name, ParamTypes: []types.Type{types.DefaultInt}}

	require.True(t, body.DeclarePrototype(first))
	assert.False(t, body.DeclarePrototype(second))
	assert.Len(t, body.Prototypes[name], 1)
}

func TestResolveOverloadPicksMatchingSignature(t *testing.T) {
	reg := intern.New()
	name := reg.MustGetID("f")
	body := NewBody(Global, nil, nil)

	intProto := &FunctionPrototype{NameID: name, ParamTypes: []types.Type{types.DefaultInt}}
	floatProto := &FunctionPrototype{NameID: name, ParamTypes: []types.Type{types.DefaultFloat}}
	require.True(t, body.DeclarePrototype(intProto))
	require.True(t, body.DeclarePrototype(floatProto))

	got, ok := body.ResolveOverload(name, []types.Type{types.DefaultFloat})
	require.True(t, ok)
	assert.Same(t, floatProto, got)
}

func TestResolveOverloadNoMatchReturnsFalse(t *testing.T) {
	reg := intern.New()
	name := reg.MustGetID("f")
	body := NewBody(Global, nil, nil)
	require.True(t, body.DeclarePrototype(&FunctionPrototype{
		NameID:     name,
		ParamTypes: []types.Type{types.DefaultInt},
	}))

	_, ok := body.ResolveOverload(name, []types.Type{types.DefaultBool})
	assert.False(t, ok)
}

func TestDeclarePrototypeBuildsExpectedOverloadSet(t *testing.T) {
	reg := intern.New()
	name := reg.MustGetID("f")
	x := reg.MustGetID("x")
	body := NewBody(Global, nil, nil)

	intProto := &FunctionPrototype{
		NameID:       name,
		ReturnType:   types.DefaultInt,
		ParamTypes:   []types.Type{types.DefaultInt},
		ParamNameIDs: []intern.ID{x},
	}
	floatProto := &FunctionPrototype{
		NameID:       name,
		ReturnType:   types.DefaultInt,
		ParamTypes:   []types.Type{types.DefaultFloat},
		ParamNameIDs: []intern.ID{x},
	}
	require.True(t, body.DeclarePrototype(intProto))
	require.True(t, body.DeclarePrototype(floatProto))

	want := []*FunctionPrototype{intProto, floatProto}
	if diff := cmp.Diff(want, body.Prototypes[name]); diff != "" {
		t.Errorf("overload set mismatch (-want +got):\n%s", diff)
	}
}

func TestSameSignature(t *testing.T) {
	assert.True(t, SameSignature(
		[]types.Type{types.DefaultInt, types.DefaultBool},
		[]types.Type{types.DefaultInt, types.DefaultBool},
	))
	assert.False(t, SameSignature(
		[]types.Type{types.DefaultInt},
		[]types.Type{types.DefaultInt, types.DefaultBool},
	))
	assert.False(t, SameSignature(
		[]types.Type{types.DefaultInt},
		[]types.Type{types.DefaultFloat},
	))
}
