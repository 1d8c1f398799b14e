package object

import (
	"log/slog"
)

// Environment is one link of the chained variable-scope record. Lookups and
// assignments walk outward through Outer until a binding is found; Define
// always binds in this scope. The Outer pointer is shared, not owned: every
// closure captured under the same enclosing scope sees the same bindings,
// and the chain stays reachable for as long as any closure references it.
type Environment struct {
	bindings map[string]Object
	outer    *Environment
}

func NewEnvironment() *Environment {
	return &Environment{bindings: make(map[string]Object)}
}

// NewEnclosedEnvironment pushes one child scope onto outer. Entering a block
// or a function call creates one of these; leaving drops the reference.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	return env
}

// Get returns the nearest enclosing binding for name.
func (e *Environment) Get(name string) (Object, bool) {
	if val, ok := e.bindings[name]; ok {
		return val, true
	}
	if e.outer != nil {
		return e.outer.Get(name)
	}
	return nil, false
}

// Define unconditionally binds name in this scope. Redeclaration is legal
// and overwrites; shadowing an outer binding is not a conflict.
func (e *Environment) Define(name string, val Object) {
	slog.Debug("define binding", slog.String("name", name), slog.String("type", string(val.Type())))
	e.bindings[name] = val
}

// Assign overwrites the nearest enclosing binding for name and reports
// whether one existed. It never creates a binding, not even at the root.
func (e *Environment) Assign(name string, val Object) bool {
	if _, ok := e.bindings[name]; ok {
		slog.Debug("assign binding", slog.String("name", name), slog.String("type", string(val.Type())))
		e.bindings[name] = val
		return true
	}
	if e.outer != nil {
		return e.outer.Assign(name, val)
	}
	return false
}
