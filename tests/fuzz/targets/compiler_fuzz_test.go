package targets

import (
	"testing"
	"time"

	"github.com/fluxscript/flux/internal/compiler"
)

// FuzzCompiler drives the full package-graph compiler (import resolution,
// topological ordering, cache-key derivation, export-record generalization)
// on a single synthetic package built from fuzz input, with a timeout
// against a graph-level hang.
func FuzzCompiler(f *testing.F) {
	f.Add("f = (x) => x")
	f.Add("plusOne = (r) => r + 1")
	f.Add("import \"nonexistent\"\nx = 1")

	f.Fuzz(func(t *testing.T, src string) {
		if len(src) > 2000 {
			return
		}
		pkgs := map[string]*compiler.Package{
			"main": {
				ImportPath: "main",
				Files:      []compiler.File{{Path: "fuzz.flux", Source: src}},
			},
		}

		done := make(chan bool, 1)
		go func() {
			c := compiler.New()
			_, _ = c.CompileGraph(pkgs)
			done <- true
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("CompileGraph timed out\ninput:\n%s", src)
		}
	})
}
