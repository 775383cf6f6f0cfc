package compiler

import (
	"strings"
	"testing"
)

func TestCompileSinglePackage(t *testing.T) {
	c := New()
	pkgs := map[string]*Package{
		"main": {
			ImportPath: "main",
			Files: []File{
				{Path: "main.flux", Source: `
x = 1
f = (a) => a + x
`},
			},
		},
	}
	compiled, err := c.CompileGraph(pkgs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cp := compiled["main"]
	if len(cp.Errors) != 0 {
		t.Fatalf("unexpected diagnostics: %v", cp.Errors)
	}
	if !strings.Contains(cp.Export.Expr.String(), "x") || !strings.Contains(cp.Export.Expr.String(), "f") {
		t.Fatalf("expected export record to contain both x and f, got %s", cp.Export.Expr)
	}
}

func TestCompileGraphResolvesImports(t *testing.T) {
	c := New()
	pkgs := map[string]*Package{
		"mathutil": {
			ImportPath: "mathutil",
			Files: []File{
				{Path: "mathutil.flux", Source: `double = (x) => x + x`},
			},
		},
		"main": {
			ImportPath: "main",
			Files: []File{
				{Path: "main.flux", Source: `
import "mathutil"
y = mathutil.double(x: 2)
`},
			},
		},
	}
	compiled, err := c.CompileGraph(pkgs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	main := compiled["main"]
	if len(main.Errors) != 0 {
		t.Fatalf("unexpected diagnostics: %v", main.Errors)
	}
}

func TestCompileGraphDetectsImportCycle(t *testing.T) {
	c := New()
	pkgs := map[string]*Package{
		"a": {ImportPath: "a", Files: []File{{Path: "a.flux", Source: `import "b"`}}},
		"b": {ImportPath: "b", Files: []File{{Path: "b.flux", Source: `import "a"`}}},
	}
	_, err := c.CompileGraph(pkgs)
	if err == nil {
		t.Fatalf("expected an import cycle error")
	}
}

func TestCompileGraphOrderIsDeterministic(t *testing.T) {
	pkgs := map[string]*Package{
		"z": {ImportPath: "z", Files: []File{{Path: "z.flux", Source: `v = 1`}}},
		"a": {ImportPath: "a", Files: []File{{Path: "a.flux", Source: `v = 1`}}},
		"m": {ImportPath: "m", Files: []File{{Path: "m.flux", Source: `v = 1`}}},
	}
	order1, err := topoSort(pkgs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	order2, err := topoSort(pkgs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(order1, ",") != strings.Join(order2, ",") {
		t.Fatalf("expected deterministic ordering, got %v then %v", order1, order2)
	}
}

func TestExportCacheKeyStableAndSensitiveToContent(t *testing.T) {
	f1 := []File{{Path: "a.flux", Source: "x = 1"}}
	f2 := []File{{Path: "a.flux", Source: "x = 2"}}
	k1 := ExportCacheKey("pkg", f1)
	k1again := ExportCacheKey("pkg", f1)
	k2 := ExportCacheKey("pkg", f2)
	if k1 != k1again {
		t.Fatalf("expected stable cache key for identical input")
	}
	if k1 == k2 {
		t.Fatalf("expected cache key to change when file content changes")
	}
}
