package semantic

import (
	"testing"

	"github.com/fluxscript/flux/internal/parser"
	"github.com/fluxscript/flux/internal/types"
)

func infer(t *testing.T, src string) (*Environment, *Context) {
	t.Helper()
	fresh := types.NewFresher()
	subst := types.NewSubst()
	env := NewEnvironment(BuildPrelude(fresh))
	ctx := NewContext("test.flux", fresh, subst)
	prog := parser.New(src).ParseProgram("test.flux")
	for _, stmt := range prog.Statements {
		ctx.InferStatement(env, stmt)
	}
	return env, ctx
}

func TestInferIdentityFunctionGeneralizes(t *testing.T) {
	env, ctx := infer(t, `f = (x) => x`)
	if ctx.Errors.Len() != 0 {
		t.Fatalf("unexpected errors: %v", ctx.Errors.Items())
	}
	scheme, ok := env.Lookup("f")
	if !ok {
		t.Fatalf("expected f to be defined")
	}
	if len(scheme.Vars) != 1 {
		t.Fatalf("expected identity function to generalize over exactly one variable, got %d (%s)",
			len(scheme.Vars), scheme.Expr)
	}
}

func TestInferPlusOneRequiresAddable(t *testing.T) {
	env, ctx := infer(t, `plusOne = (x) => x + 1`)
	if ctx.Errors.Len() != 0 {
		t.Fatalf("unexpected errors: %v", ctx.Errors.Items())
	}
	scheme, _ := env.Lookup("plusOne")
	fn := ctx.Subst.Apply(scheme.Expr).(types.Function)
	argType := fn.Args[0].Type
	if v, ok := argType.(types.Var); ok {
		ks := scheme.Kinds[v.V]
		if !types.HasKind(ks, types.Addable) {
			t.Fatalf("expected plusOne's argument to carry Addable, got %v", ks)
		}
	}
}

func TestInferSubtractableOnMinus(t *testing.T) {
	_, ctx := infer(t, `f = (x) => x - 1`)
	if ctx.Errors.Len() != 0 {
		t.Fatalf("unexpected errors: %v", ctx.Errors.Items())
	}
}

func TestInferCannotUnifyIntPlusString(t *testing.T) {
	_, ctx := infer(t, `x = 1 + "1"`)
	if ctx.Errors.Len() == 0 {
		t.Fatalf("expected a CannotUnify-family error for 1 + \"1\"")
	}
}

func TestInferMemberAccessMissingLabel(t *testing.T) {
	_, ctx := infer(t, `
r = {a: 1}
y = r.b
`)
	if ctx.Errors.Len() == 0 {
		t.Fatalf("expected a MissingLabel error for r.b")
	}
}

func TestInferMemberAccessShadowingPicksLeftmost(t *testing.T) {
	env, ctx := infer(t, `
r = {a: 1, a: "two"}
y = r.a
`)
	if ctx.Errors.Len() != 0 {
		t.Fatalf("unexpected errors: %v", ctx.Errors.Items())
	}
	scheme, ok := env.Lookup("y")
	if !ok {
		t.Fatalf("expected y to be defined")
	}
	if scheme.Expr.String() != "int" {
		t.Fatalf("expected leftmost duplicate label to win (int), got %s", scheme.Expr)
	}
}

func TestInferPipeCallEndToEnd(t *testing.T) {
	env, ctx := infer(t, `
builtin addOne : (<-x: A) => A where A: Addable
f = (x) => x |> addOne()
`)
	if ctx.Errors.Len() != 0 {
		t.Fatalf("unexpected errors: %v", ctx.Errors.Items())
	}
	scheme, ok := env.Lookup("f")
	if !ok {
		t.Fatalf("expected f to be defined")
	}
	if len(scheme.Vars) != 1 {
		t.Fatalf("expected f to generalize over one variable, got %d (%s)", len(scheme.Vars), scheme.Expr)
	}
}

func TestInferRecordWithExtension(t *testing.T) {
	env, ctx := infer(t, `
base = {a: 1}
ext = {base with b: "x"}
`)
	if ctx.Errors.Len() != 0 {
		t.Fatalf("unexpected errors: %v", ctx.Errors.Items())
	}
	scheme, ok := env.Lookup("ext")
	if !ok {
		t.Fatalf("expected ext to be defined")
	}
	rec := ctx.Subst.Apply(scheme.Expr)
	if _, ok := rec.(types.Record); !ok {
		t.Fatalf("expected ext to be a Record, got %T", rec)
	}
}

func TestInferDefaultArgumentSealing(t *testing.T) {
	env, ctx := infer(t, `f = (x, y=1) => x + y`)
	if ctx.Errors.Len() != 0 {
		t.Fatalf("unexpected errors: %v", ctx.Errors.Items())
	}
	scheme, ok := env.Get("f")
	if !ok {
		t.Fatalf("f not bound")
	}
	got := types.CanonicalString(scheme)
	want := "(x: A, y: A) => A where A: Addable"
	if got != want {
		t.Fatalf("defaulted parameter monomorphized the signature: got %q, want %q (a concrete default must not pin x/y to int)", got, want)
	}
}

func TestInferDefaultArgumentRejectsIncompatibleDefault(t *testing.T) {
	_, ctx := infer(t, `f = (x, y="s") => x + y + 1`)
	if ctx.Errors.Len() == 0 {
		t.Fatalf("expected a diagnostic: default value's type is incompatible with how its parameter is used")
	}
}

func TestInferConditionalBranchesMustUnify(t *testing.T) {
	_, ctx := infer(t, `x = if true then 1 else "two"`)
	if ctx.Errors.Len() == 0 {
		t.Fatalf("expected a CannotUnify error when branches disagree")
	}
}

func TestInferUndefinedIdentifierSharesPlaceholder(t *testing.T) {
	_, ctx := infer(t, `
a = undefinedThing
b = undefinedThing
`)
	errs := ctx.Errors.Items()
	count := 0
	for _, e := range errs {
		if e.Message == `undefined identifier "undefinedThing"` {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one UndefinedIdentifier diagnostic shared across repeated uses, got %d", count)
	}
}

func TestInferEmptyArrayLiteralGeneralizes(t *testing.T) {
	env, ctx := infer(t, `xs = []`)
	if ctx.Errors.Len() != 0 {
		t.Fatalf("unexpected errors: %v", ctx.Errors.Items())
	}
	scheme, ok := env.Get("xs")
	if !ok {
		t.Fatalf("xs not bound")
	}
	arr, ok := ctx.Subst.Apply(scheme.Expr).(types.Array)
	if !ok {
		t.Fatalf("expected xs : [_], got %T", scheme.Expr)
	}
	if _, ok := arr.Elem.(types.Var); !ok {
		t.Fatalf("expected an empty array literal's element type to stay an unresolved variable, got %T", arr.Elem)
	}
	if len(scheme.Vars) == 0 {
		t.Fatalf("expected the empty array's element variable to be generalized into xs's scheme")
	}
}

func TestRecordFieldOrderDoesNotAffectUnification(t *testing.T) {
	fresh := types.NewFresher()
	subst := types.NewSubst()

	tailA := types.Var{V: fresh.Fresh()}
	ab := types.ExtendRecord("a", types.Int{}, types.ExtendRecord("b", types.String_{}, tailA))

	tailB := types.Var{V: fresh.Fresh()}
	ba := types.ExtendRecord("b", types.String_{}, types.ExtendRecord("a", types.Int{}, tailB))

	if err := types.Unify(subst, ab, ba); err != nil {
		t.Fatalf("expected same-fields-different-order records to unify, got %v", err)
	}
	if subst.Apply(tailA).(types.Var).V != subst.Apply(tailB).(types.Var).V {
		t.Fatalf("expected the two row variables to resolve to the same variable after unification")
	}
}
