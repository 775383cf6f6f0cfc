package semantic

import (
	"github.com/fluxscript/flux/internal/ast"
	"github.com/fluxscript/flux/internal/diagnostics"
	"github.com/fluxscript/flux/internal/token"
	"github.com/fluxscript/flux/internal/types"
)

// InferExpression dispatches on the dynamic type of expr and returns its
// inferred monotype (not yet fully resolved through c.Subst — callers
// that need the final shape should apply c.Subst themselves, as the
// package orchestrator does once a file's pass completes).
func (c *Context) InferExpression(env *Environment, expr ast.Expression) types.Monotype {
	switch e := expr.(type) {
	case *ast.Identifier:
		return c.inferIdentifier(env, e)
	case *ast.IntegerLiteral:
		return types.Int{}
	case *ast.UnsignedIntegerLiteral:
		return types.Uint{}
	case *ast.FloatLiteral:
		return types.Float{}
	case *ast.BooleanLiteral:
		return types.Bool{}
	case *ast.StringLiteral:
		return types.String_{}
	case *ast.RegexpLiteral:
		return types.Regexp{}
	case *ast.DurationLiteral:
		return types.Duration{}
	case *ast.DateTimeLiteral:
		return types.Time{}
	case *ast.LabelLiteral:
		return types.Label{Name: e.Value}
	case *ast.StringExpression:
		return c.inferStringExpression(env, e)
	case *ast.ArrayExpression:
		return c.inferArray(env, e)
	case *ast.DictExpression:
		return c.inferDict(env, e)
	case *ast.RecordExpression:
		return c.inferRecord(env, e)
	case *ast.MemberExpression:
		return c.inferMember(env, e)
	case *ast.IndexExpression:
		return c.inferIndex(env, e)
	case *ast.UnaryExpression:
		return c.inferUnary(env, e)
	case *ast.BinaryExpression:
		return c.inferBinary(env, e)
	case *ast.LogicalExpression:
		return c.inferLogical(env, e)
	case *ast.ConditionalExpression:
		return c.inferConditional(env, e)
	case *ast.FunctionExpression:
		return c.inferFunction(env, e)
	case *ast.CallExpression:
		return c.inferCall(env, e)
	case *ast.PipeExpression:
		return c.inferPipe(env, e)
	default:
		c.bug(expr.Tok(), "unhandled expression node %T", expr)
		return types.Err{}
	}
}

func (c *Context) bug(tok token.Token, format string, args ...interface{}) {
	c.Errors.Add(diagnostics.New(c.File, tok, diagnostics.Bug, format, args...))
}

func (c *Context) unify(tok token.Token, code diagnostics.Code, a, b types.Monotype) bool {
	if err := types.Unify(c.Subst, a, b); err != nil {
		c.reportUnifyErr(tok, code, err)
		return false
	}
	return true
}

func (c *Context) reportUnifyErr(tok token.Token, fallback diagnostics.Code, err error) {
	code := fallback
	if ue, ok := err.(*types.UnifyError); ok && ue.Kind != "" {
		code = diagnostics.Code(ue.Kind)
	}
	if _, ok := err.(*types.OccursError); ok {
		code = diagnostics.OccursCheck
	}
	c.Errors.Add(diagnostics.New(c.File, tok, code, "%s", err.Error()))
}

func (c *Context) inferIdentifier(env *Environment, id *ast.Identifier) types.Monotype {
	if poly, ok := env.Lookup(id.Name); ok {
		return types.Instantiate(c.Fresh, c.Subst, poly)
	}
	if t, ok := c.undefined[id.Name]; ok {
		return t
	}
	c.Errors.Add(diagnostics.New(c.File, id.Token, diagnostics.UndefinedIdentifier,
		"undefined identifier %q", id.Name))
	fresh := c.fresh()
	c.undefined[id.Name] = fresh
	return fresh
}

func (c *Context) inferStringExpression(env *Environment, se *ast.StringExpression) types.Monotype {
	for _, part := range se.Parts {
		if part.Expr == nil {
			continue
		}
		t := c.InferExpression(env, part.Expr)
		if tv, ok := c.Subst.Apply(t).(types.Var); ok {
			c.Subst.Constrain(tv.V, types.Stringable)
		} else if !types.Satisfies(c.Subst.Apply(t), types.Stringable) {
			c.Errors.Add(diagnostics.New(c.File, se.Token, diagnostics.CannotConstrain,
				"interpolated value does not satisfy Stringable"))
		}
	}
	return types.String_{}
}

func (c *Context) inferArray(env *Environment, a *ast.ArrayExpression) types.Monotype {
	if len(a.Elements) == 0 {
		return types.Array{Elem: c.fresh()}
	}
	elem := c.InferExpression(env, a.Elements[0])
	for _, e := range a.Elements[1:] {
		t := c.InferExpression(env, e)
		c.unify(e.Tok(), diagnostics.CannotUnify, elem, t)
	}
	return types.Array{Elem: elem}
}

func (c *Context) inferDict(env *Environment, d *ast.DictExpression) types.Monotype {
	if len(d.Items) == 0 {
		return types.Dict{Key: c.fresh(), Val: c.fresh()}
	}
	key := c.InferExpression(env, d.Items[0].Key)
	val := c.InferExpression(env, d.Items[0].Val)
	for _, item := range d.Items[1:] {
		k := c.InferExpression(env, item.Key)
		v := c.InferExpression(env, item.Val)
		c.unify(item.Key.Tok(), diagnostics.CannotUnify, key, k)
		c.unify(item.Val.Tok(), diagnostics.CannotUnify, val, v)
	}
	if tv, ok := c.Subst.Apply(key).(types.Var); ok {
		c.Subst.Constrain(tv.V, types.Comparable)
	}
	return types.Dict{Key: key, Val: val}
}

// inferRecord builds a Record monotype by extending (in reverse) onto the
// base's type if this is `{base with ...}`, otherwise onto an empty row.
// Properties are never deduplicated: two fields with the same label both
// appear in the chain (spec.md §4.C.2).
func (c *Context) inferRecord(env *Environment, r *ast.RecordExpression) types.Monotype {
	var tail types.Monotype = types.EmptyRecord()
	if r.With != nil {
		tail = c.InferExpression(env, r.With)
		if tv, ok := c.Subst.Apply(tail).(types.Var); ok {
			c.Subst.Constrain(tv.V, types.KRecord)
		}
	}
	out := tail
	for i := len(r.Properties) - 1; i >= 0; i-- {
		p := r.Properties[i]
		vt := c.InferExpression(env, p.Value)
		out = types.Record{Label: p.Key.Name, Value: vt, Tail: out}
	}
	return out
}

// inferMember infers object.Property by structurally unifying the
// object's type against an extension row whose head is Property,
// returning the field's fresh type. Row unification naturally resolves
// shadowing (a duplicate label written earlier/inner wins) because the
// rewrite search stops at the first occurrence (spec.md §4.C.2, §4.D
// "Member access").
func (c *Context) inferMember(env *Environment, m *ast.MemberExpression) types.Monotype {
	objT := c.InferExpression(env, m.Object)
	fieldT := c.fresh()
	rowVar := c.fresh()
	skeleton := types.Record{Label: m.Property, Value: fieldT, Tail: rowVar}
	if !c.unify(m.Token, diagnostics.MissingLabel, objT, skeleton) {
		return types.Err{}
	}
	return c.Subst.Apply(fieldT)
}

func (c *Context) inferIndex(env *Environment, ix *ast.IndexExpression) types.Monotype {
	arrT := c.InferExpression(env, ix.Array)
	resolved := c.Subst.Apply(arrT)
	switch v := resolved.(type) {
	case types.Dict:
		idxT := c.InferExpression(env, ix.Index)
		c.unify(ix.Token, diagnostics.CannotUnify, v.Key, idxT)
		return v.Val
	case types.Array:
		idxT := c.InferExpression(env, ix.Index)
		c.unify(ix.Token, diagnostics.CannotUnify, types.Int{}, idxT)
		return v.Elem
	default:
		elem := c.fresh()
		c.unify(ix.Token, diagnostics.CannotUnify, arrT, types.Array{Elem: elem})
		idxT := c.InferExpression(env, ix.Index)
		c.unify(ix.Token, diagnostics.CannotUnify, types.Int{}, idxT)
		return elem
	}
}

func (c *Context) inferUnary(env *Environment, u *ast.UnaryExpression) types.Monotype {
	operand := c.InferExpression(env, u.Operand)
	switch u.Operator {
	case "not":
		c.unify(u.Token, diagnostics.InvalidUnaryOp, types.Bool{}, operand)
		return types.Bool{}
	case "exists":
		c.requireKind(u.Token, operand, types.Nullable)
		return types.Bool{}
	case "-":
		c.requireKind(u.Token, operand, types.Negatable)
		return operand
	case "+":
		c.requireKind(u.Token, operand, types.Numeric)
		return operand
	default:
		c.bug(u.Token, "unknown unary operator %q", u.Operator)
		return types.Err{}
	}
}

func (c *Context) requireKind(tok token.Token, t types.Monotype, k types.Kind) {
	resolved := c.Subst.Apply(t)
	if tv, ok := resolved.(types.Var); ok {
		c.Subst.Constrain(tv.V, k)
		return
	}
	if !types.Satisfies(resolved, k) {
		c.Errors.Add(diagnostics.New(c.File, tok, diagnostics.CannotConstrain,
			"%s does not satisfy %s", resolved, k))
	}
}

func (c *Context) inferBinary(env *Environment, b *ast.BinaryExpression) types.Monotype {
	left := c.InferExpression(env, b.Left)
	right := c.InferExpression(env, b.Right)

	switch b.Operator {
	case "+":
		c.unify(b.Token, diagnostics.InvalidBinOp, left, right)
		c.requireKind(b.Token, left, types.Addable)
		return c.Subst.Apply(left)
	case "-":
		c.unify(b.Token, diagnostics.InvalidBinOp, left, right)
		c.requireKind(b.Token, left, types.Subtractable)
		return c.Subst.Apply(left)
	case "/":
		c.unify(b.Token, diagnostics.InvalidBinOp, left, right)
		c.requireKind(b.Token, left, types.Divisible)
		return c.Subst.Apply(left)
	case "*", "%", "^":
		c.unify(b.Token, diagnostics.InvalidBinOp, left, right)
		c.requireKind(b.Token, left, types.Numeric)
		return c.Subst.Apply(left)
	case "<", ">", "<=", ">=":
		c.requireKind(b.Token, left, types.Comparable)
		c.requireKind(b.Token, right, types.Comparable)
		return types.Bool{}
	case "==", "!=":
		c.unify(b.Token, diagnostics.InvalidBinOp, left, right)
		c.requireKind(b.Token, left, types.Equatable)
		return types.Bool{}
	case "=~", "!~":
		c.unify(b.Token, diagnostics.InvalidBinOp, types.String_{}, left)
		c.unify(b.Token, diagnostics.InvalidBinOp, types.Regexp{}, right)
		return types.Bool{}
	default:
		c.bug(b.Token, "unknown binary operator %q", b.Operator)
		return types.Err{}
	}
}

func (c *Context) inferLogical(env *Environment, l *ast.LogicalExpression) types.Monotype {
	left := c.InferExpression(env, l.Left)
	right := c.InferExpression(env, l.Right)
	c.unify(l.Token, diagnostics.InvalidBinOp, types.Bool{}, left)
	c.unify(l.Token, diagnostics.InvalidBinOp, types.Bool{}, right)
	return types.Bool{}
}

func (c *Context) inferConditional(env *Environment, cx *ast.ConditionalExpression) types.Monotype {
	test := c.InferExpression(env, cx.Test)
	c.unify(cx.Token, diagnostics.InvalidBinOp, types.Bool{}, test)
	cons := c.InferExpression(env, cx.Consequent)
	alt := c.InferExpression(env, cx.Alternative)
	c.unify(cx.Token, diagnostics.CannotUnify, cons, alt)
	return c.Subst.Apply(cons)
}

func (c *Context) inferPipe(env *Environment, p *ast.PipeExpression) types.Monotype {
	if p.Call != nil {
		// The parser already folds PipeExpression into CallExpression.Pipe
		// whenever possible; this path only runs if that rewrite couldn't
		// apply.
		return c.inferCall(env, p.Call)
	}
	c.InferExpression(env, p.Value)
	c.bug(p.Token, "pipe target is not a call expression")
	return types.Err{}
}

func (c *Context) inferCall(env *Environment, call *ast.CallExpression) types.Monotype {
	calleeType := c.InferExpression(env, call.Callee)

	var args []types.Argument
	pipeCount := 0
	for _, a := range call.Arguments {
		if a.Name == "<-" {
			pipeCount++
			t := c.InferExpression(env, a.Value)
			args = append(args, types.Argument{Type: t, Pipe: true})
			continue
		}
		t := c.InferExpression(env, a.Value)
		args = append(args, types.Argument{Name: a.Name, Type: t})
	}
	if call.Pipe != nil {
		pipeCount++
		t := c.InferExpression(env, call.Pipe)
		args = append(args, types.Argument{Type: t, Pipe: true})
	}
	if pipeCount > 1 {
		c.Errors.Add(diagnostics.New(c.File, call.Token, diagnostics.MultiplePipeArguments,
			"call supplies more than one pipe argument"))
	}

	retn := c.fresh()
	callSite := types.Function{Args: args, Retn: retn}
	if err := types.Unify(c.Subst, calleeType, callSite); err != nil {
		c.reportUnifyErr(call.Token, diagnostics.CannotUnify, err)
		return types.Err{}
	}
	return c.Subst.Apply(retn)
}

// defaultCheck defers a defaulted parameter's default-value compatibility
// check until after the body has been inferred, so the check can run in a
// throwaway substitution instead of the real one (see inferFunction).
type defaultCheck struct {
	tok   token.Token
	param types.Monotype
	def   ast.Expression
}

func (c *Context) inferFunction(env *Environment, fn *ast.FunctionExpression) types.Monotype {
	fnEnv := NewEnvironment(env)
	var args []types.Argument
	var checks []defaultCheck

	for _, p := range fn.Params {
		// A defaulted parameter's body-facing type is always a fresh,
		// unconstrained variable — never the default value's own type.
		// Otherwise a concrete default (e.g. `b=1`) would monomorphize an
		// otherwise-polymorphic signature (spec.md §4.D "Function
		// expression", the default-argument sealing testable property,
		// §8). The default is checked for compatibility separately, below,
		// once the body has told us what the parameter is really used as.
		paramType := c.fresh()
		if p.Default != nil {
			checks = append(checks, defaultCheck{tok: p.Default.Tok(), param: paramType, def: p.Default})
		}
		fnEnv.Define(p.Name.Name, types.Polytype{Expr: paramType})
		args = append(args, types.Argument{
			Name:     p.Name.Name,
			Type:     paramType,
			Optional: p.Default != nil,
			Pipe:     p.IsPipe,
		})
	}

	var bodyType types.Monotype
	if fn.Block != nil {
		retVar := c.fresh()
		c.pushReturn(retVar)
		c.inferBlock(fnEnv, fn.Block)
		c.popReturn()
		bodyType = c.Subst.Apply(retVar)
	} else if fn.Body != nil {
		bodyType = c.InferExpression(fnEnv, fn.Body)
	} else {
		bodyType = types.Err{}
	}

	// Sealing pass: verify every default expression's type is compatible
	// with how its parameter was actually used, in a scratch substitution
	// cloned off the real one. Any bindings this unification would make
	// are discarded afterward — they must never narrow the parameter's
	// type in the signature returned below.
	for _, chk := range checks {
		defT := c.InferExpression(env, chk.def)
		scratch := c.Subst.Clone()
		sealed := types.TemporaryGeneralize(scratch, defT)
		instantiated := types.Instantiate(c.Fresh, scratch, sealed)
		if err := types.Unify(scratch, chk.param, instantiated); err != nil {
			c.reportUnifyErr(chk.tok, diagnostics.CannotUnify, err)
		}
	}

	resolvedArgs := make([]types.Argument, len(args))
	for i, a := range args {
		resolvedArgs[i] = types.Argument{
			Name: a.Name, Type: c.Subst.Apply(a.Type), Optional: a.Optional, Pipe: a.Pipe,
		}
	}
	return types.Function{Args: resolvedArgs, Retn: bodyType}
}

func (c *Context) inferBlock(env *Environment, block *ast.Block) {
	local := NewEnvironment(env)
	for _, stmt := range block.Body {
		c.InferStatement(local, stmt)
	}
}
