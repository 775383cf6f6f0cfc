package semantic

import (
	"github.com/fluxscript/flux/internal/ast"
	"github.com/fluxscript/flux/internal/diagnostics"
	"github.com/fluxscript/flux/internal/types"
)

// InferStatement dispatches on the dynamic type of stmt, updating env and
// c's accumulated diagnostics. It returns nothing: statements are
// checked for effect, not for a resulting type (spec.md §4.D).
func (c *Context) InferStatement(env *Environment, stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		c.InferExpression(env, s.Expression)
	case *ast.VariableAssignment:
		c.inferVariableAssignment(env, s)
	case *ast.MemberAssignment:
		c.inferMemberAssignment(env, s)
	case *ast.OptionStatement:
		c.InferStatement(env, s.Assignment)
	case *ast.BuiltinStatement:
		c.inferBuiltinStatement(env, s)
	case *ast.TestStatement:
		c.inferTestStatement(env, s)
	case *ast.ReturnStatement:
		c.inferReturnStatement(env, s)
	case *ast.ImportDeclaration:
		// Import resolution is the package orchestrator's job
		// (internal/compiler); by the time a file reaches Context the
		// import's exported record has already been bound into env under
		// its alias.
	default:
		c.bug(stmt.Tok(), "unhandled statement node %T", stmt)
	}
}

// inferVariableAssignment implements let-polymorphism: the bound name's
// scheme quantifies over every variable free in its inferred type but not
// already pinned by an enclosing scope (spec.md §4.D "Variable
// assignment").
func (c *Context) inferVariableAssignment(env *Environment, v *ast.VariableAssignment) {
	t := c.InferExpression(env, v.Value)
	scheme := types.Generalize(c.Subst, freeVars(c.Subst, env), t)
	env.Define(v.Name.Name, scheme)
}

func (c *Context) inferMemberAssignment(env *Environment, m *ast.MemberAssignment) {
	objT := c.InferExpression(env, m.Object)
	valT := c.InferExpression(env, m.Value)
	mem, ok := m.Object.(*ast.MemberExpression)
	if !ok {
		c.bug(m.Token, "option member assignment target is not a member expression")
		return
	}
	rowVar := c.fresh()
	skeleton := types.Record{Label: mem.Property, Value: valT, Tail: rowVar}
	c.unify(m.Token, diagnostics.MissingLabel, objT, skeleton)
}

func (c *Context) inferBuiltinStatement(env *Environment, b *ast.BuiltinStatement) {
	scheme := ConvertPolytype(c.Fresh, b.Type)
	env.Define(b.Name.Name, scheme)
}

func (c *Context) inferTestStatement(env *Environment, t *ast.TestStatement) {
	testEnv := NewEnvironment(env)
	c.inferFunction(testEnv, t.Body)
}

func (c *Context) inferReturnStatement(env *Environment, r *ast.ReturnStatement) {
	t := c.InferExpression(env, r.Argument)
	expected, ok := c.currentReturn()
	if !ok {
		c.Errors.Add(diagnostics.New(c.File, r.Token, diagnostics.InvalidReturn,
			"return statement outside of a function body"))
		return
	}
	c.unify(r.Token, diagnostics.CannotUnifyReturn, expected, t)
}
