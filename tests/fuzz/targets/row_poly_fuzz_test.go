package targets

import (
	"testing"
	"time"

	"github.com/fluxscript/flux/internal/parser"
	"github.com/fluxscript/flux/internal/semantic"
	"github.com/fluxscript/flux/internal/types"
)

// FuzzRowPolymorphism targets record construction, extension, and member
// access: chained extensions, shadowed labels, and nested row variables
// are all legal inputs that must resolve (or fail with a located
// diagnostic) without the unifier looping forever.
func FuzzRowPolymorphism(f *testing.F) {
	seeds := []string{
		"r = {a: 1, b: 2}\nx = r.a",
		"r = {a: 1 | {a: 2 | {}}}\nx = r.a",
		"f = (r) => r.a\ny = f(r: {a: 1, b: 2})",
		"f = (r) => {a: 1 | r}\ng = (r) => f(r: r).a",
		"f = (r) => r.a\ny = f(r: {b: 1})",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, src string) {
		if len(src) > 2000 {
			return
		}
		p := parser.New(src)
		prog := p.ParseProgram("fuzz.flux")
		if prog == nil || len(p.Errors()) > 0 {
			return
		}

		fresh := types.NewFresher()
		env := semantic.NewEnvironment(semantic.BuildPrelude(fresh))
		ctx := semantic.NewContext("fuzz.flux", fresh, types.NewSubst())

		done := make(chan bool, 1)
		go func() {
			for _, stmt := range prog.Statements {
				ctx.InferStatement(env, stmt)
			}
			done <- true
		}()

		select {
		case <-done:
		case <-time.After(500 * time.Millisecond):
			t.Fatalf("row unification timed out (possible infinite loop)\ninput:\n%s", src)
		}
	})
}
