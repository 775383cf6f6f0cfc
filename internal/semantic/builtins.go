package semantic

import (
	"fmt"

	"github.com/fluxscript/flux/internal/parser"
	"github.com/fluxscript/flux/internal/types"
)

// preludeSignatures mirrors a small slice of libflux's bootstrap.rs
// universe block (original_source/, supplemented per SPEC_FULL §10): a
// handful of generic, kind-constrained functions available to every
// package without an explicit import, expressed in the bootstrap
// polytype grammar (spec.md §6).
var preludeSignatures = map[string]string{
	"today":    "() => time",
	"duration": "(v: int) => duration",
	"string":   "(v: A) => string where A: Stringable",
}

// BuildPrelude parses preludeSignatures and returns a root Environment
// with each bound. A parse failure here is a bug in the prelude table
// itself, not a user error, so it panics rather than threading a
// diagnostics.List through package construction for code that never
// varies at runtime.
func BuildPrelude(fresh *types.Fresher) *Environment {
	root := NewEnvironment(nil)
	for name, sig := range preludeSignatures {
		pe, err := parser.ParseTypeExpr(sig)
		if err != nil {
			panic(fmt.Sprintf("semantic: invalid prelude signature for %q: %v", name, err))
		}
		root.Define(name, ConvertPolytype(fresh, pe))
	}
	return root
}
