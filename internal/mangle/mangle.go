// Package mangle implements the V2 name mangling scheme (spec §4.6),
// grounded directly on
// original_source/stage-0-compiler/source/ast/mangler/ManglerV2.cpp:
//
//	_AS_            preamble
//	M<len><chars>   one module path segment (repeated for nested modules)
//	F<len><chars>   function name
//	P<n>            parameter count
//	V<len><chars>   one parameter type segment (repeated n times)
//
// V1 is kept only as a documented, deprecated encoding (spec §4.6 Open
// Questions); nothing in this compiler emits it.
package mangle

import (
	"fmt"
	"strconv"
	"strings"

	"ashc/internal/ast"
	"ashc/internal/intern"
	"ashc/internal/types"
)

const preamble = "_AS_"

// Mangler interns every mangled name it produces through reg, so mangled
// names are themselves valid intern.IDs usable as map keys alongside plain
// identifiers.
type Mangler struct {
	reg *intern.Registry
}

// New returns a Mangler backed by reg.
func New(reg *intern.Registry) *Mangler {
	return &Mangler{reg: reg}
}

func (m *Mangler) nameOrStart(id intern.ID) string {
	if id == intern.NoModule {
		return preamble
	}
	return m.reg.MustGetString(id)
}

func mangleType(t types.Type) string {
	s := t.String()
	return fmt.Sprintf("V%d%s", len(s), s)
}

func mangleFunction(reg *intern.Registry, nameID intern.ID, paramTypes []types.Type) string {
	name := reg.MustGetString(nameID)
	var sb strings.Builder
	sb.WriteString("F")
	sb.WriteString(strconv.Itoa(len(name)))
	sb.WriteString(name)
	sb.WriteString("P")
	sb.WriteString(strconv.Itoa(len(paramTypes)))
	for _, t := range paramTypes {
		sb.WriteString(mangleType(t))
	}
	return sb.String()
}

// ModulePath mangles a raw "a::b::c" dotted module path (as parser.go
// interns it from `module`/`using` declarations) into its "_AS_M<len>a..."
// mangled prefix, starting from the NoModule preamble. This is the
// currentModuleID every other method in this package expects to receive.
func (m *Mangler) ModulePath(rawModuleID intern.ID) intern.ID {
	if rawModuleID == intern.NoModule {
		return intern.NoModule
	}
	cur := intern.NoModule
	for _, p := range strings.Split(m.reg.MustGetString(rawModuleID), "::") {
		segID := m.reg.MustGetID(p)
		cur = m.AddModule(cur, segID)
	}
	return cur
}

// Prototype mangles a function prototype's name under currentModuleID (a
// value already produced by ModulePath), mirroring
// manglerV2::mangle(module_id, FunctionPrototype*).
func (m *Mangler) Prototype(currentModuleID intern.ID, proto *ast.FunctionPrototype) intern.ID {
	name := m.nameOrStart(currentModuleID)
	name += mangleFunction(m.reg, proto.NameID, proto.ParamTypes)
	return m.reg.MustGetID(name)
}

// Call mangles a call-site signature under currentModuleID, mirroring
// manglerV2::mangle(module_id, CallExpr*) via mangle_call.
func (m *Mangler) Call(currentModuleID intern.ID, calleeID intern.ID, argTypes []types.Type) intern.ID {
	name := m.nameOrStart(currentModuleID)
	name += mangleFunction(m.reg, calleeID, argTypes)
	return m.reg.MustGetID(name)
}

// AddModule appends other's module-path segment onto currentModuleID's
// mangled prefix, mirroring manglerV2::add_module.
func (m *Mangler) AddModule(currentModuleID intern.ID, otherModuleID intern.ID) intern.ID {
	name := m.nameOrStart(currentModuleID)
	modName := m.reg.MustGetString(otherModuleID)
	name += fmt.Sprintf("M%d%s", len(modName), modName)
	return m.reg.MustGetID(name)
}

// AddMangledName concatenates an already-mangled name onto
// currentModuleID's prefix, mirroring manglerV2::add_mangled_name.
func (m *Mangler) AddMangledName(currentModuleID intern.ID, mangledNameID intern.ID) intern.ID {
	name := m.nameOrStart(currentModuleID) + m.reg.MustGetString(mangledNameID)
	return m.reg.MustGetID(name)
}

// MangleUsing walks a "::"-chained module-scope Binary expression tree whose
// every leaf is a VariableReference (a pure module path, such as the left
// spine of a qualified reference with the trailing function/variable name
// peeled off by the caller), encoding each segment. Mirrors
// manglerV2::mangle_using, which likewise assumes both operands resolve to
// module names, not a Call.
func (m *Mangler) MangleUsing(expr *ast.Expr) (intern.ID, error) {
	var sb strings.Builder
	cur := expr
	for cur.Kind == ast.KBinary {
		lhsName, err := m.segmentName(cur.Lhs)
		if err != nil {
			return 0, err
		}
		sb.WriteString(fmt.Sprintf("M%d%s", len(lhsName), lhsName))
		if cur.Rhs.Kind != ast.KBinary {
			rhsName, err := m.segmentName(cur.Rhs)
			if err != nil {
				return 0, err
			}
			sb.WriteString(fmt.Sprintf("M%d%s", len(rhsName), rhsName))
			break
		}
		cur = cur.Rhs
	}
	return m.reg.MustGetID(sb.String()), nil
}

func (m *Mangler) segmentName(e *ast.Expr) (string, error) {
	if e.Kind != ast.KVariableReference {
		return "", fmt.Errorf("mangle: module-scope operand is not a variable reference (kind %s)", e.Kind)
	}
	return m.reg.MustGetString(e.RefNameID), nil
}

// ExtractModule decodes the leading run of "M<len><chars>" segments from a
// mangled name, returning the interned "_AS_"-prefixed module-path string.
// Mirrors manglerV2::extract_module.
func ExtractModule(reg *intern.Registry, mangledNameID intern.ID) (intern.ID, error) {
	s := reg.MustGetString(mangledNameID)
	i := len(preamble)
	var sb strings.Builder
	sb.WriteString(preamble)

	for i < len(s) && s[i] == 'M' {
		start := i
		i++
		digitStart := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i >= len(s) {
			return 0, fmt.Errorf("mangle: ExtractModule: out of range reading segment length in %q", s)
		}
		count, err := strconv.Atoi(s[digitStart:i])
		if err != nil {
			return 0, fmt.Errorf("mangle: ExtractModule: malformed segment length in %q: %w", s, err)
		}
		if i+count > len(s) {
			return 0, fmt.Errorf("mangle: ExtractModule: out of range reading segment chars in %q", s)
		}
		i += count
		sb.WriteString(s[start:i])
	}
	return reg.MustGetID(sb.String()), nil
}

// PrettyModules renders a mangled module-path id back into its "a::b::c"
// source form. Mirrors manglerV2::pretty_modules.
func PrettyModules(reg *intern.Registry, moduleID intern.ID) string {
	if moduleID == intern.NoModule {
		return ""
	}
	s := reg.MustGetString(moduleID)
	if !strings.HasPrefix(s, preamble) {
		return ""
	}
	s = s[len(preamble):]

	var sb strings.Builder
	i := 0
	for i < len(s) && s[i] == 'M' {
		i++
		digitStart := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		count, err := strconv.Atoi(s[digitStart:i])
		if err != nil {
			return sb.String()
		}
		if i+count > len(s) {
			return sb.String()
		}
		sb.WriteString(s[i : i+count])
		i += count
		if i < len(s) && s[i] == 'M' {
			sb.WriteString("::")
		}
	}
	return sb.String()
}
