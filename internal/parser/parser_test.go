package parser

import (
	"testing"

	"github.com/fluxscript/flux/internal/ast"
)

func TestParseVariableAssignment(t *testing.T) {
	prog := New(`x = 5`).ParseProgram("t.flux")
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	assign, ok := prog.Statements[0].(*ast.VariableAssignment)
	if !ok {
		t.Fatalf("expected *ast.VariableAssignment, got %T", prog.Statements[0])
	}
	if assign.Name.Name != "x" {
		t.Fatalf("expected name x, got %s", assign.Name.Name)
	}
	if _, ok := assign.Value.(*ast.IntegerLiteral); !ok {
		t.Fatalf("expected integer literal value, got %T", assign.Value)
	}
}

func TestParseBinaryPrecedence(t *testing.T) {
	prog := New(`x = 1 + 2 * 3`).ParseProgram("t.flux")
	assign := prog.Statements[0].(*ast.VariableAssignment)
	bin, ok := assign.Value.(*ast.BinaryExpression)
	if !ok {
		t.Fatalf("expected top-level binary expression, got %T", assign.Value)
	}
	if bin.Operator != "+" {
		t.Fatalf("expected top-level operator '+', got %s", bin.Operator)
	}
	if _, ok := bin.Right.(*ast.BinaryExpression); !ok {
		t.Fatalf("expected '*' to bind tighter, got %T on the right of '+'", bin.Right)
	}
}

func TestParseFunctionExpression(t *testing.T) {
	prog := New(`f = (a, b=1, c=<-) => a + b`).ParseProgram("t.flux")
	assign := prog.Statements[0].(*ast.VariableAssignment)
	fn, ok := assign.Value.(*ast.FunctionExpression)
	if !ok {
		t.Fatalf("expected function expression, got %T", assign.Value)
	}
	if len(fn.Params) != 3 {
		t.Fatalf("expected 3 params, got %d", len(fn.Params))
	}
	if fn.Params[1].Default == nil {
		t.Fatalf("expected second param to have a default")
	}
	if !fn.Params[2].IsPipe {
		t.Fatalf("expected third param to be the pipe parameter")
	}
}

func TestParsePipeRewritesIntoCall(t *testing.T) {
	prog := New(`y = x |> f(a: 1)`).ParseProgram("t.flux")
	assign := prog.Statements[0].(*ast.VariableAssignment)
	call, ok := assign.Value.(*ast.CallExpression)
	if !ok {
		t.Fatalf("expected pipe to rewrite into a call expression, got %T", assign.Value)
	}
	if call.Pipe == nil {
		t.Fatalf("expected call.Pipe to be set by the pipe rewrite")
	}
	if ident, ok := call.Pipe.(*ast.Identifier); !ok || ident.Name != "x" {
		t.Fatalf("expected piped value to be identifier x, got %#v", call.Pipe)
	}
}

func TestParseRecordWithExtension(t *testing.T) {
	prog := New(`r = {base with a: 1, b: "two"}`).ParseProgram("t.flux")
	assign := prog.Statements[0].(*ast.VariableAssignment)
	rec, ok := assign.Value.(*ast.RecordExpression)
	if !ok {
		t.Fatalf("expected record expression, got %T", assign.Value)
	}
	if rec.With == nil {
		t.Fatalf("expected With to be set for {base with ...}")
	}
	if len(rec.Properties) != 2 {
		t.Fatalf("expected 2 properties, got %d", len(rec.Properties))
	}
}

func TestParseRecordPreservesDuplicateLabels(t *testing.T) {
	prog := New(`r = {a: 1, a: "two"}`).ParseProgram("t.flux")
	assign := prog.Statements[0].(*ast.VariableAssignment)
	rec := assign.Value.(*ast.RecordExpression)
	if len(rec.Properties) != 2 {
		t.Fatalf("expected duplicate labels to both survive parsing, got %d properties", len(rec.Properties))
	}
	if rec.Properties[0].Key.Name != "a" || rec.Properties[1].Key.Name != "a" {
		t.Fatalf("expected both properties labeled 'a', got %q and %q",
			rec.Properties[0].Key.Name, rec.Properties[1].Key.Name)
	}
}

func TestParseImportWithAlias(t *testing.T) {
	prog := New(`import m "math"`).ParseProgram("t.flux")
	if len(prog.Imports) != 1 {
		t.Fatalf("expected 1 import, got %d", len(prog.Imports))
	}
	if prog.Imports[0].Alias != "m" || prog.Imports[0].Path != "math" {
		t.Fatalf("expected alias m and path math, got alias=%q path=%q",
			prog.Imports[0].Alias, prog.Imports[0].Path)
	}
}

func TestParseBuiltinStatementWithConstraint(t *testing.T) {
	prog := New(`builtin add : (<-a: A, b: A) => A where A: Addable`).ParseProgram("t.flux")
	b, ok := prog.Statements[0].(*ast.BuiltinStatement)
	if !ok {
		t.Fatalf("expected builtin statement, got %T", prog.Statements[0])
	}
	if b.Name.Name != "add" {
		t.Fatalf("expected builtin name 'add', got %s", b.Name.Name)
	}
	if len(b.Type.Constraints) != 1 || b.Type.Constraints[0].Var != "A" {
		t.Fatalf("expected one constraint on A, got %+v", b.Type.Constraints)
	}
}

func TestParseConditionalExpression(t *testing.T) {
	prog := New(`x = if true then 1 else 2`).ParseProgram("t.flux")
	assign := prog.Statements[0].(*ast.VariableAssignment)
	if _, ok := assign.Value.(*ast.ConditionalExpression); !ok {
		t.Fatalf("expected conditional expression, got %T", assign.Value)
	}
}

func TestParseMemberAndIndexExpressions(t *testing.T) {
	prog := New(`y = r.field`).ParseProgram("t.flux")
	assign := prog.Statements[0].(*ast.VariableAssignment)
	mem, ok := assign.Value.(*ast.MemberExpression)
	if !ok {
		t.Fatalf("expected member expression, got %T", assign.Value)
	}
	if mem.Property != "field" {
		t.Fatalf("expected property 'field', got %s", mem.Property)
	}

	prog2 := New(`y = arr[0]`).ParseProgram("t.flux")
	assign2 := prog2.Statements[0].(*ast.VariableAssignment)
	if _, ok := assign2.Value.(*ast.IndexExpression); !ok {
		t.Fatalf("expected index expression, got %T", assign2.Value)
	}
}
