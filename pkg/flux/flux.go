// Package flux is the embeddable API for type-checking Flux source:
// build a package graph from a directory tree and run inference over it
// without going through the fluxc CLI (spec.md §6).
package flux

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fluxscript/flux/internal/cache"
	"github.com/fluxscript/flux/internal/compiler"
	"github.com/fluxscript/flux/internal/config"
	"github.com/fluxscript/flux/internal/diagnostics"
	"github.com/fluxscript/flux/internal/types"
)

// Result is one package's inference outcome.
type Result struct {
	ImportPath string
	Export     types.Polytype
	Errors     []*diagnostics.Diagnostic
}

// CheckDir walks root, treats every directory containing at least one
// .flux file as a package (import path = its slash-separated path
// relative to root; no flux.yaml file is read), and type-checks the whole
// tree as one dependency graph.
func CheckDir(root string) (map[string]*Result, error) {
	pkgs, err := discoverPackages(root)
	if err != nil {
		return nil, err
	}
	c := compiler.New()
	compiled, err := c.CompileGraph(pkgs)
	if err != nil {
		if diag, ok := err.(*diagnostics.Diagnostic); ok {
			return nil, diag
		}
		return nil, err
	}
	out := map[string]*Result{}
	for path, cp := range compiled {
		out[path] = &Result{ImportPath: cp.ImportPath, Export: cp.Export, Errors: cp.Errors}
	}
	return out, nil
}

// CheckDirCached is CheckDir with a package-export cache attached
// (spec.md §4.H).
func CheckDirCached(root string, ch *cache.Cache) (map[string]*Result, error) {
	pkgs, err := discoverPackages(root)
	if err != nil {
		return nil, err
	}
	c := compiler.New().WithCache(ch)
	compiled, err := c.CompileGraph(pkgs)
	if err != nil {
		if diag, ok := err.(*diagnostics.Diagnostic); ok {
			return nil, diag
		}
		return nil, err
	}
	out := map[string]*Result{}
	for path, cp := range compiled {
		out[path] = &Result{ImportPath: cp.ImportPath, Export: cp.Export, Errors: cp.Errors}
	}
	return out, nil
}

func discoverPackages(root string) (map[string]*compiler.Package, error) {
	pkgs := map[string]*compiler.Package{}
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !config.HasSourceExt(path) {
			return nil
		}
		dir := filepath.Dir(path)
		importPath := importPathFor(root, dir)
		pkg, ok := pkgs[importPath]
		if !ok {
			pkg = &compiler.Package{ImportPath: importPath}
			pkgs[importPath] = pkg
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		pkg.Files = append(pkg.Files, compiler.File{Path: path, Source: string(src)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("flux: walking %s: %w", root, err)
	}
	for _, pkg := range pkgs {
		sort.Slice(pkg.Files, func(i, j int) bool { return pkg.Files[i].Path < pkg.Files[j].Path })
	}
	return pkgs, nil
}

func importPathFor(root, dir string) string {
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." {
		return filepath.Base(root)
	}
	return filepath.ToSlash(rel)
}

// FormatPath turns an absolute file path into a tidy display path
// relative to the working directory. fluxc itself does not call it.
func FormatPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
