package targets

import (
	"testing"

	"github.com/fluxscript/flux/internal/parser"
)

// FuzzParser feeds arbitrary text through the lexer/parser pipeline and
// asserts it never panics, regardless of how malformed the input is.
func FuzzParser(f *testing.F) {
	f.Add("f = (x) => x")
	f.Add("x = 1 + 2")
	f.Add("if true then 1 else 2")
	f.Add("r = {a: 1, b: 2 | rest}")
	f.Add("y = 1 |> add(b: 2)")
	f.Add("builtin x : (a: A, ?b: B, <-c: C) => A where A: Addable")

	f.Fuzz(func(t *testing.T, src string) {
		p := parser.New(src)
		_ = p.ParseProgram("fuzz.flux")
		_ = p.Errors()
	})
}
