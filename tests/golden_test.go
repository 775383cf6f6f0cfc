// Package tests runs the end-to-end golden suite: each testdata/*.txtar
// archive holds one or more Flux source files plus a want.txt describing
// the expected outcome, and is checked against pkg/flux's public API.
package tests

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/fluxscript/flux/internal/diagnostics"
	"github.com/fluxscript/flux/internal/types"
	"github.com/fluxscript/flux/pkg/flux"
)

// TestGolden walks testdata/*.txtar, materializes each archive's files
// into a temp directory tree, type-checks it with flux.CheckDir, and
// verifies every directive in its want.txt file.
func TestGolden(t *testing.T) {
	archives, err := filepath.Glob("testdata/*.txtar")
	if err != nil {
		t.Fatalf("glob testdata: %v", err)
	}
	if len(archives) == 0 {
		t.Fatal("no golden fixtures found")
	}

	for _, path := range archives {
		path := path
		name := strings.TrimSuffix(filepath.Base(path), ".txtar")
		t.Run(name, func(t *testing.T) {
			ar, err := txtar.ParseFile(path)
			if err != nil {
				t.Fatalf("parse archive: %v", err)
			}

			root := t.TempDir()
			var want string
			for _, f := range ar.Files {
				if f.Name == "want.txt" {
					want = string(f.Data)
					continue
				}
				dest := filepath.Join(root, filepath.FromSlash(f.Name))
				if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
					t.Fatalf("mkdir: %v", err)
				}
				if err := os.WriteFile(dest, f.Data, 0o644); err != nil {
					t.Fatalf("write %s: %v", f.Name, err)
				}
			}
			if want == "" {
				t.Fatalf("%s: archive has no want.txt", path)
			}

			results, checkErr := flux.CheckDir(root)
			checkDirectives(t, want, results, checkErr)
		})
	}
}

// checkDirectives interprets each non-blank line of want.txt:
//
//	type <package> <binding> <canonical type>   - the package exports
//	                                               <binding> at exactly
//	                                               this canonical type
//	error <code>                                - some diagnostic (from
//	                                               a package's own Errors
//	                                               or from the graph-level
//	                                               error) carries this code
func checkDirectives(t *testing.T, want string, results map[string]*flux.Result, checkErr error) {
	t.Helper()
	for _, line := range strings.Split(want, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "type":
			if len(fields) < 4 {
				t.Fatalf("malformed type directive: %q", line)
			}
			checkType(t, results, fields[1], fields[2], strings.Join(fields[3:], " "))
		case "error":
			if len(fields) != 2 {
				t.Fatalf("malformed error directive: %q", line)
			}
			checkError(t, results, checkErr, diagnostics.Code(fields[1]))
		default:
			t.Fatalf("unknown directive: %q", line)
		}
	}
}

func checkType(t *testing.T, results map[string]*flux.Result, pkg, binding, wantType string) {
	t.Helper()
	res, ok := results[pkg]
	if !ok {
		t.Fatalf("no such package %q in results (have %v)", pkg, resultKeys(results))
	}
	for _, d := range res.Errors {
		t.Errorf("package %s: unexpected diagnostic %s: %s", pkg, d.Code, d.Message)
	}
	field, ok := lookupExportField(res.Export, binding)
	if !ok {
		t.Fatalf("package %s does not export %q", pkg, binding)
	}
	got := canonicalFieldString(res.Export, field)
	if got != wantType {
		t.Errorf("package %s, binding %s: got %q, want %q", pkg, binding, got, wantType)
	}
}

func checkError(t *testing.T, results map[string]*flux.Result, checkErr error, code diagnostics.Code) {
	t.Helper()
	if checkErr != nil {
		if diag, ok := checkErr.(*diagnostics.Diagnostic); ok && diag.Code == code {
			return
		}
	}
	for pkg, res := range results {
		for _, d := range res.Errors {
			if d.Code == code {
				return
			}
		}
		_ = pkg
	}
	t.Errorf("expected a diagnostic with code %s, got CheckDir error %v and no matching package diagnostic", code, checkErr)
}

func resultKeys(results map[string]*flux.Result) []string {
	var out []string
	for k := range results {
		out = append(out, k)
	}
	return out
}

// lookupExportField walks the record chain an export Polytype wraps and
// returns the first field matching name (leftmost-shadowing, same as
// member access during inference).
func lookupExportField(export types.Polytype, name string) (types.Monotype, bool) {
	cur := export.Expr
	for {
		rec, ok := cur.(types.Record)
		if !ok || rec.IsEmpty() {
			return nil, false
		}
		if rec.Label == name {
			return rec.Value, true
		}
		cur = rec.Tail
		if cur == nil {
			return nil, false
		}
	}
}

// canonicalFieldString renders one export field the way CanonicalString
// renders a whole Polytype, carrying over only the kind constraints that
// apply to variables actually free in the field's type.
func canonicalFieldString(export types.Polytype, field types.Monotype) string {
	vars := types.FreeVars(field)
	kinds := map[types.Tvar][]types.Kind{}
	for _, v := range vars {
		if ks, ok := export.Kinds[v]; ok {
			kinds[v] = ks
		}
	}
	return types.CanonicalString(types.Polytype{Vars: vars, Kinds: kinds, Expr: field})
}
