package types

import "testing"

func TestEncodeDecodeRoundTripPrimitive(t *testing.T) {
	poly := Polytype{Expr: Int{}}
	encoded := Encode(poly)
	f := NewFresher()
	decoded, err := Decode(f, encoded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.Expr.String() != "int" {
		t.Fatalf("expected int, got %s", decoded.Expr)
	}
}

func TestEncodeDecodeRoundTripFunctionWithKinds(t *testing.T) {
	fr := NewFresher()
	v := fr.Fresh()
	poly := Polytype{
		Vars:  []Tvar{v},
		Kinds: map[Tvar][]Kind{v: {Addable, Comparable}},
		Expr: Function{
			Args: []Argument{
				{Name: "tables", Type: Var{V: v}, Pipe: true},
				{Name: "n", Type: Int{}, Optional: true},
			},
			Retn: Var{V: v},
		},
	}
	encoded := Encode(poly)

	f := NewFresher()
	decoded, err := Decode(f, encoded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(decoded.Vars) != 1 {
		t.Fatalf("expected 1 quantified variable, got %d", len(decoded.Vars))
	}
	fn, ok := decoded.Expr.(Function)
	if !ok {
		t.Fatalf("expected Function, got %T", decoded.Expr)
	}
	if len(fn.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(fn.Args))
	}
	if !fn.Args[0].Pipe || fn.Args[0].Name != "tables" {
		t.Fatalf("expected first arg to be pipe 'tables', got %+v", fn.Args[0])
	}
	if !fn.Args[1].Optional || fn.Args[1].Name != "n" {
		t.Fatalf("expected second arg to be optional 'n', got %+v", fn.Args[1])
	}
	ks := decoded.Kinds[decoded.Vars[0]]
	if !HasKind(ks, Addable) || !HasKind(ks, Comparable) {
		t.Fatalf("expected decoded kinds to include Addable and Comparable, got %v", ks)
	}
}

func TestEncodeDecodeRoundTripRecord(t *testing.T) {
	poly := Polytype{Expr: ExtendRecord("x", Int{}, ExtendRecord("y", String_{}, EmptyRecord()))}
	encoded := Encode(poly)
	f := NewFresher()
	decoded, err := Decode(f, encoded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	rec, ok := decoded.Expr.(Record)
	if !ok {
		t.Fatalf("expected Record, got %T", decoded.Expr)
	}
	if rec.Label != "x" {
		t.Fatalf("expected first label 'x', got %q", rec.Label)
	}
}

func TestEncodeDistinctVariablesGetDistinctIds(t *testing.T) {
	fr := NewFresher()
	a, b := fr.Fresh(), fr.Fresh()
	poly := Polytype{
		Vars: []Tvar{a, b},
		Expr: Function{
			Args: []Argument{{Name: "a", Type: Var{V: a}}, {Name: "b", Type: Var{V: b}}},
			Retn: Var{V: a},
		},
	}
	encoded := Encode(poly)
	f := NewFresher()
	decoded, err := Decode(f, encoded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	fn := decoded.Expr.(Function)
	va := fn.Args[0].Type.(Var).V
	vb := fn.Args[1].Type.(Var).V
	if va == vb {
		t.Fatalf("expected distinct decoded variables for a and b")
	}
	if fn.Retn.(Var).V != va {
		t.Fatalf("expected return type to reference the same variable as argument a")
	}
}
