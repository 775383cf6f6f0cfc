// Package compiler orchestrates inference across a package's files and
// across a dependency graph of packages (spec.md §4.E): it resolves
// imports, detects cycles, runs internal/semantic over each package's
// files in a shared scope, and builds the exported record type each
// package presents to its importers.
package compiler

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"

	"github.com/fluxscript/flux/internal/ast"
	"github.com/fluxscript/flux/internal/cache"
	"github.com/fluxscript/flux/internal/diagnostics"
	"github.com/fluxscript/flux/internal/parser"
	"github.com/fluxscript/flux/internal/semantic"
	"github.com/fluxscript/flux/internal/types"
)

// File is a single source file to be compiled as part of a package.
type File struct {
	Path   string
	Source string
}

// Package is one importable unit: a set of files sharing a single
// top-level scope (spec.md §4.E — Flux packages, like Go packages, pool
// every file's top-level bindings into one namespace).
type Package struct {
	ImportPath string
	Files      []File
}

// CompiledPackage is the result of type-checking one Package.
type CompiledPackage struct {
	ImportPath string
	Export     types.Polytype
	Errors     []*diagnostics.Diagnostic
}

// Compiler runs a whole dependency graph of packages through inference.
// Fresh is shared across every package in the graph, which is stronger
// than spec.md's minimum requirement (one Fresher per package group) but
// guarantees no two packages can ever mint colliding variable ids even
// if their export records are later combined.
type Compiler struct {
	Fresh    *types.Fresher
	prelude  *semantic.Environment
	compiled map[string]*CompiledPackage
	cache    *cache.Cache
}

// New returns a Compiler with a fresh variable source and the builtin
// prelude seeded (spec.md §10 supplemented feature: bootstrap grammar
// prelude, grounded in libflux's bootstrap.rs).
func New() *Compiler {
	fresh := types.NewFresher()
	return &Compiler{
		Fresh:    fresh,
		prelude:  semantic.BuildPrelude(fresh),
		compiled: map[string]*CompiledPackage{},
	}
}

// WithCache attaches a package-export cache (spec.md §4.H). A cache hit
// still returns a usable CompiledPackage, but skipping the cache
// entirely never changes behavior — only speed.
func (c *Compiler) WithCache(ch *cache.Cache) *Compiler {
	c.cache = ch
	return c
}

// CompileGraph type-checks every package in pkgs, resolving imports
// between them. Packages are processed in dependency (topological) order;
// an import cycle produces a single diagnostics.ImportCycle error and
// aborts (there is no well-defined order to check a cyclic graph in).
func (c *Compiler) CompileGraph(pkgs map[string]*Package) (map[string]*CompiledPackage, error) {
	order, err := topoSort(pkgs)
	if err != nil {
		return nil, err
	}
	for _, importPath := range order {
		pkg := pkgs[importPath]
		compiled := c.compilePackage(pkg)
		c.compiled[importPath] = compiled
	}
	return c.compiled, nil
}

// compilePackage parses every file of pkg, infers all of them against one
// shared scope and substitution, and generalizes the package's top-level
// bindings into its export record (spec.md §4.E).
func (c *Compiler) compilePackage(pkg *Package) *CompiledPackage {
	cacheKey := ExportCacheKey(pkg.ImportPath, pkg.Files)
	if c.cache != nil {
		if encoded, ok := c.cache.Get(cacheKey); ok {
			if poly, err := types.Decode(c.Fresh, encoded); err == nil {
				return &CompiledPackage{ImportPath: pkg.ImportPath, Export: poly}
			}
		}
	}

	subst := types.NewSubst()
	errs := &diagnostics.List{}

	pkgEnv := semantic.NewEnvironment(c.prelude)
	for alias, dep := range pkg.dependencyAliases() {
		depPkg, ok := c.compiled[dep]
		if !ok {
			continue
		}
		pkgEnv.Define(alias, depPkg.Export)
	}

	for _, f := range pkg.Files {
		prog := parseSource(f.Path, f.Source)
		ctx := semantic.NewContext(f.Path, c.Fresh, subst)
		ctx.Errors = errs
		for _, stmt := range prog.Statements {
			ctx.InferStatement(pkgEnv, stmt)
		}
	}

	exportMono := buildExportRecord(pkgEnv, subst)
	exportPoly := types.Generalize(subst, map[types.Tvar]bool{}, exportMono)

	if c.cache != nil && errs.Len() == 0 {
		c.cache.Put(cacheKey, types.Encode(exportPoly), time.Now().Unix())
	}

	return &CompiledPackage{
		ImportPath: pkg.ImportPath,
		Export:     exportPoly,
		Errors:     errs.Items(),
	}
}

// dependencyAliases re-parses each file's import declarations to recover
// the alias each import path is bound under (default: the path's final
// segment).
func (pkg *Package) dependencyAliases() map[string]string {
	out := map[string]string{}
	for _, f := range pkg.Files {
		prog := parseSource(f.Path, f.Source)
		for _, imp := range prog.Imports {
			alias := imp.Alias
			if alias == "" {
				alias = lastSegment(imp.Path)
			}
			out[alias] = imp.Path
		}
	}
	return out
}

func lastSegment(path string) string {
	last := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			last = path[i+1:]
			break
		}
	}
	return last
}

func parseSource(file, src string) *ast.Program {
	p := parser.New(src)
	return p.ParseProgram(file)
}

// buildExportRecord chains every name a package defines at its top level
// into one Record, innermost (last-defined) first, outermost last — the
// same right-to-left construction internal/semantic uses for record
// literals.
func buildExportRecord(pkgEnv *semantic.Environment, subst *types.Subst) types.Monotype {
	names := pkgEnv.Own()
	var out types.Monotype = types.EmptyRecord()
	for i := len(names) - 1; i >= 0; i-- {
		scheme, _ := pkgEnv.Get(names[i])
		out = types.Record{Label: names[i], Value: subst.Apply(scheme.Expr), Tail: out}
	}
	return out
}

// ExportCacheKey derives a stable cache key for a package's compiled
// export from its import path and the content of its files (spec.md §4.H
// — internal/cache keys package-export memoization on exactly this).
func ExportCacheKey(importPath string, files []File) string {
	h := sha256.New()
	h.Write([]byte(importPath))
	sorted := make([]File, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })
	for _, f := range sorted {
		h.Write([]byte(f.Path))
		h.Write([]byte{0})
		h.Write([]byte(f.Source))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
