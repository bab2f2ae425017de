// Package module implements the Module Manager (spec §4.5): the registry of
// parsed files, their declared modules and `using` imports, a topological
// build order over the module dependency graph, and cross-module function
// lookup. Grounded directly on
// original_source/stage-0-compiler/source/ast/module_manager.cpp, reworked
// from its global std::unordered_map tables into an instance-owned Go type.
package module

import (
	"fmt"
	"sort"

	"ashc/internal/ast"
	"ashc/internal/intern"
	"ashc/internal/types"
)

// Manager owns every parsed file in a build and the module graph they form.
type Manager struct {
	reg *intern.Registry

	fileModule   map[string]intern.ID      // file path -> declared module id
	fileAST      map[string]*ast.Expr      // file path -> global Body
	fileUsings   map[string][]intern.ID    // file path -> using list
	moduleFiles  map[intern.ID][]string    // module id -> file paths
	moduleUsings map[intern.ID]map[intern.ID]bool // module id -> using set
}

// NewManager returns an empty Manager.
func NewManager(reg *intern.Registry) *Manager {
	return &Manager{
		reg:          reg,
		fileModule:   make(map[string]intern.ID),
		fileAST:      make(map[string]*ast.Expr),
		fileUsings:   make(map[string][]intern.ID),
		moduleFiles:  make(map[intern.ID][]string),
		moduleUsings: make(map[intern.ID]map[intern.ID]bool),
	}
}

// AddFile registers a successfully parsed file's AST, declared module (or
// a synthetic per-file module if the file declared none), and its `using`
// imports.
func (m *Manager) AddFile(file string, moduleID intern.ID, usings []intern.ID, body *ast.Expr) error {
	if moduleID == intern.NoModule {
		id, err := m.reg.GetID("file::" + file)
		if err != nil {
			return err
		}
		moduleID = id
	}

	m.fileModule[file] = moduleID
	m.fileAST[file] = body
	m.fileUsings[file] = usings
	m.moduleFiles[moduleID] = append(m.moduleFiles[moduleID], file)

	if m.moduleUsings[moduleID] == nil {
		m.moduleUsings[moduleID] = make(map[intern.ID]bool)
	}
	for _, u := range usings {
		if u != moduleID {
			m.moduleUsings[moduleID][u] = true
		}
	}
	return nil
}

// GetAST returns the global Body parsed from file.
func (m *Manager) GetAST(file string) (*ast.Expr, bool) {
	b, ok := m.fileAST[file]
	return b, ok
}

// GetModule returns the module id a file belongs to.
func (m *Manager) GetModule(file string) (intern.ID, bool) {
	id, ok := m.fileModule[file]
	return id, ok
}

// CheckModules verifies every `using` target names a module that some file
// actually declares. Mirrors check_modules.
func (m *Manager) CheckModules() error {
	declared := make(map[intern.ID]bool, len(m.moduleFiles))
	for id := range m.moduleFiles {
		declared[id] = true
	}
	for file, usings := range m.fileUsings {
		for _, u := range usings {
			if !declared[u] {
				name := m.reg.MustGetString(u)
				return fmt.Errorf("module: using module %q does not exist (in file %q)", name, file)
			}
		}
	}
	return nil
}

// usingModules returns every module that directly imports moduleID
// (the reverse edge of moduleUsings), mirroring find_using_modules.
func (m *Manager) usingModules(moduleID intern.ID) []intern.ID {
	var out []intern.ID
	for mod, uses := range m.moduleUsings {
		if uses[moduleID] {
			out = append(out, mod)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CircularDependency names one edge that participates in a cycle.
type CircularDependency struct {
	From, To intern.ID
}

// GetModuleOrder runs Kahn's algorithm over the module-uses graph and
// returns a topological build order, module-id granularity. Mirrors
// get_module_order.
func (m *Manager) GetModuleOrder() ([]intern.ID, []CircularDependency) {
	indegree := make(map[intern.ID]int)
	for mod, uses := range m.moduleUsings {
		indegree[mod] = len(uses)
	}
	// Modules that are only ever depended on (never themselves declare a
	// `using`) still need a zero entry so they appear in the queue.
	for mod := range m.moduleFiles {
		if _, ok := indegree[mod]; !ok {
			indegree[mod] = 0
		}
	}

	var queue []intern.ID
	for mod, deg := range indegree {
		if deg == 0 {
			queue = append(queue, mod)
		}
	}
	sort.Slice(queue, func(i, j int) bool { return queue[i] < queue[j] })

	var order []intern.ID
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		var unblocked []intern.ID
		for _, dependent := range m.usingModules(node) {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				unblocked = append(unblocked, dependent)
			}
		}
		sort.Slice(unblocked, func(i, j int) bool { return unblocked[i] < unblocked[j] })
		queue = append(queue, unblocked...)
	}

	var remaining []intern.ID
	for mod, deg := range indegree {
		if deg > 0 {
			remaining = append(remaining, mod)
		}
	}
	if len(remaining) > 0 {
		return nil, m.findCycles(remaining)
	}
	return order, nil
}

// findCycles runs the DFS discovered/finished cycle-edge search, restricted
// to the modules Kahn's algorithm could not place. Mirrors
// get_circular_dependencies.
func (m *Manager) findCycles(candidates []intern.ID) []CircularDependency {
	discovered := make(map[intern.ID]bool)
	finished := make(map[intern.ID]bool)
	var cycles []CircularDependency

	var visit func(u intern.ID)
	visit = func(u intern.ID) {
		discovered[u] = true
		for uses := range m.moduleUsings[u] {
			if discovered[uses] {
				cycles = append(cycles, CircularDependency{From: u, To: uses})
				continue
			}
			if !finished[uses] {
				visit(uses)
			}
		}
		delete(discovered, u)
		finished[u] = true
	}

	for _, c := range candidates {
		if !finished[c] {
			visit(c)
		}
	}
	return cycles
}

// GetBuildFilesOrder expands the module build order into a file-level
// order, each module's files grouped together. Mirrors
// get_build_files_order.
func (m *Manager) GetBuildFilesOrder() ([]string, []CircularDependency) {
	order, cycles := m.GetModuleOrder()
	if cycles != nil {
		return nil, cycles
	}
	var files []string
	for _, mod := range order {
		fs := append([]string(nil), m.moduleFiles[mod]...)
		sort.Strings(fs)
		files = append(files, fs...)
	}
	return files, nil
}

// FindFunction looks up the function prototype reachable from file whose
// parameter types exactly match argTypes: first among file's own module's
// overload set for nameID, then every `using`-imported module, matching
// spec §4.5's declared shadowing order (own module wins ties) and §8
// scenario 5's overload-by-parameter-type resolution.
func (m *Manager) FindFunction(file string, nameID intern.ID, argTypes []types.Type) (*ast.FunctionPrototype, bool) {
	body, ok := m.fileAST[file]
	if !ok {
		return nil, false
	}
	if proto, ok := body.ResolveOverload(nameID, argTypes); ok {
		return proto, true
	}
	for _, f := range m.moduleFiles[m.fileModule[file]] {
		if b, ok := m.fileAST[f]; ok && f != file {
			if proto, ok := b.ResolveOverload(nameID, argTypes); ok {
				return proto, true
			}
		}
	}
	for _, u := range m.fileUsings[file] {
		for _, f := range m.moduleFiles[u] {
			if b, ok := m.fileAST[f]; ok {
				if proto, ok := b.ResolveOverload(nameID, argTypes); ok {
					return proto, true
				}
			}
		}
	}
	return nil, false
}

// GetMatchingFunctionLocations returns every imported module that declares
// nameID, used by the Scope Checker and the Type Checker to locate a
// function declared in an imported module.
// Mirrors get_matching_function_locations.
func (m *Manager) GetMatchingFunctionLocations(file string, nameID intern.ID) []intern.ID {
	var mods []intern.ID
	for _, u := range m.fileUsings[file] {
		for _, f := range m.moduleFiles[u] {
			if b, ok := m.fileAST[f]; ok {
				if _, ok := b.Prototypes[nameID]; ok {
					mods = append(mods, u)
					break
				}
			}
		}
	}
	return mods
}

// FindBody returns the Body (Global scope) of the file that declares the
// given function prototype in moduleID, mirroring find_body's use of the
// Mangler's module-extraction step.
func (m *Manager) FindBody(moduleID intern.ID, nameID intern.ID) (*ast.Expr, bool) {
	for _, f := range m.moduleFiles[moduleID] {
		b, ok := m.fileAST[f]
		if !ok {
			continue
		}
		if _, ok := b.Prototypes[nameID]; ok {
			return b, true
		}
	}
	return nil, false
}
