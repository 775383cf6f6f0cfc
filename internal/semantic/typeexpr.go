package semantic

import (
	"sort"

	"github.com/fluxscript/flux/internal/ast"
	"github.com/fluxscript/flux/internal/types"
)

// ConvertPolytype turns a bootstrap-grammar PolytypeExpr (spec.md §6),
// parsed from a builtin statement's textual type, into a types.Polytype.
// Every distinct type-variable name in the expression and its constraint
// clauses maps to exactly one fresh Tvar.
func ConvertPolytype(fresh *types.Fresher, pe *ast.PolytypeExpr) types.Polytype {
	vars := map[string]types.Tvar{}
	mono := convertTypeExpr(fresh, pe.Expr, vars)

	kinds := map[types.Tvar][]types.Kind{}
	for _, con := range pe.Constraints {
		tv, ok := vars[con.Var]
		if !ok {
			tv = fresh.Fresh()
			vars[con.Var] = tv
		}
		for _, name := range con.Kinds {
			if k, ok := types.KindByName(name); ok {
				kinds[tv] = append(kinds[tv], k)
			}
		}
	}

	var quantified []types.Tvar
	for _, v := range vars {
		quantified = append(quantified, v)
	}
	sort.Slice(quantified, func(i, j int) bool { return quantified[i] < quantified[j] })

	return types.Polytype{Vars: quantified, Kinds: kinds, Expr: mono}
}

func convertTypeExpr(fresh *types.Fresher, te ast.TypeExpr, vars map[string]types.Tvar) types.Monotype {
	switch t := te.(type) {
	case ast.VarTypeExpr:
		tv, ok := vars[t.Name]
		if !ok {
			tv = fresh.Fresh()
			vars[t.Name] = tv
		}
		return types.Var{V: tv}
	case ast.NamedTypeExpr:
		return namedMonotype(t.Name)
	case ast.ArrayTypeExpr:
		return types.Array{Elem: convertTypeExpr(fresh, t.Elem, vars)}
	case ast.DictTypeExpr:
		return types.Dict{Key: convertTypeExpr(fresh, t.Key, vars), Val: convertTypeExpr(fresh, t.Val, vars)}
	case ast.RecordTypeExpr:
		var tail types.Monotype = types.EmptyRecord()
		if t.With != "" {
			tv, ok := vars[t.With]
			if !ok {
				tv = fresh.Fresh()
				vars[t.With] = tv
			}
			tail = types.Var{V: tv}
		}
		out := tail
		for i := len(t.Fields) - 1; i >= 0; i-- {
			f := t.Fields[i]
			out = types.Record{Label: f.Name, Value: convertTypeExpr(fresh, f.Type, vars), Tail: out}
		}
		return out
	case ast.FunctionTypeExpr:
		args := make([]types.Argument, len(t.Params))
		for i, p := range t.Params {
			args[i] = types.Argument{
				Name:     p.Name,
				Type:     convertTypeExpr(fresh, p.Type, vars),
				Optional: p.Optional,
				Pipe:     p.Pipe,
			}
		}
		return types.Function{Args: args, Retn: convertTypeExpr(fresh, t.Ret, vars)}
	default:
		return types.Err{}
	}
}

func namedMonotype(name string) types.Monotype {
	switch name {
	case "bool":
		return types.Bool{}
	case "int":
		return types.Int{}
	case "uint":
		return types.Uint{}
	case "float":
		return types.Float{}
	case "string":
		return types.String_{}
	case "duration":
		return types.Duration{}
	case "time":
		return types.Time{}
	case "regexp":
		return types.Regexp{}
	case "bytes":
		return types.Bytes{}
	case "dynamic":
		return types.Dynamic{}
	default:
		return types.Dynamic{}
	}
}
