// Package semantic implements the single recursive type-inference walker
// over internal/ast (spec.md §4.D): environment/scoping, per-node
// inference rules, and the builtin/prelude registry.
package semantic

import "github.com/fluxscript/flux/internal/types"

// Environment is a lexical scope: a chain of name -> Polytype bindings.
// Each function body, block, and test introduces a child scope (spec.md
// §4.D "Block").
type Environment struct {
	parent *Environment
	vars   map[string]types.Polytype
	order  []string // insertion order of names Defined directly in this scope
}

// NewEnvironment returns a scope chained onto parent (nil for the root).
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{parent: parent, vars: map[string]types.Polytype{}}
}

// Define binds name to scheme in this scope, shadowing any outer binding
// of the same name.
func (e *Environment) Define(name string, scheme types.Polytype) {
	if _, exists := e.vars[name]; !exists {
		e.order = append(e.order, name)
	}
	e.vars[name] = scheme
}

// Own returns the names Defined directly in this scope (not ancestors),
// in the order they were first bound. Used to build a package's export
// record from its top-level scope.
func (e *Environment) Own() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Get returns the scheme bound to name directly in this scope.
func (e *Environment) Get(name string) (types.Polytype, bool) {
	p, ok := e.vars[name]
	return p, ok
}

// Lookup searches this scope and its ancestors for name.
func (e *Environment) Lookup(name string) (types.Polytype, bool) {
	for s := e; s != nil; s = s.parent {
		if p, ok := s.vars[name]; ok {
			return p, true
		}
	}
	return types.Polytype{}, false
}

// freeVars returns the set of type variables free anywhere in env (after
// resolving through subst), used by Generalize to decide which variables
// a let-binding's type may quantify over (spec.md §4.D "Variable
// assignment" — only variables not already pinned by an enclosing scope
// are generalized).
func freeVars(subst *types.Subst, env *Environment) map[types.Tvar]bool {
	out := map[types.Tvar]bool{}
	for s := env; s != nil; s = s.parent {
		for _, poly := range s.vars {
			quantified := map[types.Tvar]bool{}
			for _, v := range poly.Vars {
				quantified[v] = true
			}
			for _, v := range types.FreeVars(subst.Apply(poly.Expr)) {
				if !quantified[v] {
					out[v] = true
				}
			}
		}
	}
	return out
}
