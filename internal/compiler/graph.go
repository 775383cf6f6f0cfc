package compiler

import (
	"fmt"
	"sort"

	"github.com/fluxscript/flux/internal/diagnostics"
	"github.com/fluxscript/flux/internal/token"
)

// topoSort orders pkgs so that every package appears after all of its
// imports. Ties (packages with no remaining dependency relationship to
// each other) are broken lexicographically by import path, so the same
// input graph always produces the same compile order (spec.md §4.E).
func topoSort(pkgs map[string]*Package) ([]string, error) {
	deps := map[string][]string{}
	for path, pkg := range pkgs {
		aliasMap := pkg.dependencyAliases()
		var imports []string
		for _, dep := range aliasMap {
			if _, ok := pkgs[dep]; ok {
				imports = append(imports, dep)
			}
		}
		sort.Strings(imports)
		deps[path] = imports
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[string]int{}
	var order []string
	var stack []string

	var names []string
	for path := range pkgs {
		names = append(names, path)
	}
	sort.Strings(names)

	var visit func(path string) error
	visit = func(path string) error {
		switch color[path] {
		case black:
			return nil
		case gray:
			cycle := append(append([]string{}, stack...), path)
			return &diagnostics.Diagnostic{
				File:    path,
				Start:   token.Pos{},
				End:     token.Pos{},
				Code:    diagnostics.ImportCycle,
				Message: fmt.Sprintf("import cycle: %v", cycle),
			}
		}
		color[path] = gray
		stack = append(stack, path)
		for _, dep := range deps[path] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		color[path] = black
		order = append(order, path)
		return nil
	}

	for _, path := range names {
		if err := visit(path); err != nil {
			return nil, err
		}
	}
	return order, nil
}
