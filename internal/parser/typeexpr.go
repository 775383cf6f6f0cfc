package parser

import (
	"strings"

	"github.com/fluxscript/flux/internal/ast"
	"github.com/fluxscript/flux/internal/token"
)

// ParseTypeExpr parses the bootstrap polytype textual grammar (spec.md §6)
// used to seed builtin and prelude signatures, e.g.:
//
//	(a: A, ?b: B, <-c: C) => A where A: Addable + Comparable, B: Equatable
//
// It is never invoked on real Flux source; the main Flux grammar has no
// surface syntax for writing types directly.
func ParseTypeExpr(src string) (*ast.PolytypeExpr, error) {
	p := New(src)
	expr := p.parseTypeExprTop()
	var cons []ast.ConstraintExpr
	if p.curIs(token.WHERE) {
		p.nextToken()
		cons = p.parseConstraintList()
	}
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	return &ast.PolytypeExpr{Expr: expr, Constraints: cons}, nil
}

// parseTypeExprTop parses a single type expression: a named type, type
// variable, array, dict, record, or function type.
func (p *Parser) parseTypeExprTop() ast.TypeExpr {
	switch {
	case p.curIs(token.LPAREN):
		return p.parseFunctionTypeExpr()
	case p.curIs(token.LBRACKET):
		return p.parseArrayOrDictTypeExpr()
	case p.curIs(token.LBRACE):
		return p.parseRecordTypeExpr()
	case p.curIs(token.IDENT):
		name := p.curToken.Literal
		p.nextToken()
		if isTypeVarName(name) {
			return ast.VarTypeExpr{Name: name}
		}
		return ast.NamedTypeExpr{Name: name}
	default:
		p.errorf(p.curToken, "unexpected token in type expression: %q", p.curToken.Literal)
		return nil
	}
}

// isTypeVarName reports whether an identifier used in type-expression
// position denotes a type variable rather than a named type, by the
// bootstrap grammar's convention: a single uppercase letter (optionally
// followed by digits), e.g. A, B, T1.
func isTypeVarName(s string) bool {
	if s == "" {
		return false
	}
	if s[0] < 'A' || s[0] > 'Z' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (p *Parser) parseArrayOrDictTypeExpr() ast.TypeExpr {
	p.nextToken() // consume [
	if p.curIs(token.IDENT) && p.peekIs(token.COLON) {
		key := p.parseTypeExprTop()
		p.nextToken() // consume :
		val := p.parseTypeExprTop()
		if !p.curIs(token.RBRACKET) {
			p.errorf(p.curToken, "expected ']' closing dict type")
		} else {
			p.nextToken()
		}
		return ast.DictTypeExpr{Key: key, Val: val}
	}
	elem := p.parseTypeExprTop()
	if !p.curIs(token.RBRACKET) {
		p.errorf(p.curToken, "expected ']' closing array type")
	} else {
		p.nextToken()
	}
	return ast.ArrayTypeExpr{Elem: elem}
}

func (p *Parser) parseRecordTypeExpr() ast.TypeExpr {
	p.nextToken() // consume {
	rec := ast.RecordTypeExpr{}
	if p.curIs(token.IDENT) && p.peekIs(token.WITH) {
		rec.With = p.curToken.Literal
		p.nextToken() // ident
		p.nextToken() // with
	}
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		name := p.curToken.Literal
		p.nextToken()
		if !p.curIs(token.COLON) {
			p.errorf(p.curToken, "expected ':' in record type field")
			break
		}
		p.nextToken()
		fieldType := p.parseTypeExprTop()
		rec.Fields = append(rec.Fields, ast.RecordFieldExpr{Name: name, Type: fieldType})
		if p.curIs(token.COMMA) {
			p.nextToken()
		}
	}
	if p.curIs(token.RBRACE) {
		p.nextToken()
	}
	return rec
}

func (p *Parser) parseFunctionTypeExpr() ast.TypeExpr {
	p.nextToken() // consume (
	var params []ast.ParamTypeExpr
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		var param ast.ParamTypeExpr
		if p.curIs(token.PIPE_RCV) {
			param.Pipe = true
			p.nextToken()
		}
		if p.curToken.Literal == "?" {
			param.Optional = true
			p.nextToken()
		}
		param.Name = p.curToken.Literal
		p.nextToken()
		if !p.curIs(token.COLON) {
			p.errorf(p.curToken, "expected ':' in function type parameter")
			break
		}
		p.nextToken()
		param.Type = p.parseTypeExprTop()
		params = append(params, param)
		if p.curIs(token.COMMA) {
			p.nextToken()
		}
	}
	if p.curIs(token.RPAREN) {
		p.nextToken()
	}
	if !p.curIs(token.ARROW) {
		p.errorf(p.curToken, "expected '=>' in function type")
	} else {
		p.nextToken()
	}
	ret := p.parseTypeExprTop()
	return ast.FunctionTypeExpr{Params: params, Ret: ret}
}

// parseConstraintList parses `A: K1 + K2, B: K3` following `where`.
func (p *Parser) parseConstraintList() []ast.ConstraintExpr {
	var out []ast.ConstraintExpr
	for {
		if !p.curIs(token.IDENT) {
			break
		}
		v := p.curToken.Literal
		p.nextToken()
		if !p.curIs(token.COLON) {
			p.errorf(p.curToken, "expected ':' in constraint clause")
			break
		}
		p.nextToken()
		var kinds []string
		for {
			kinds = append(kinds, strings.TrimSpace(p.curToken.Literal))
			p.nextToken()
			if p.curToken.Literal == "+" {
				p.nextToken()
				continue
			}
			break
		}
		out = append(out, ast.ConstraintExpr{Var: v, Kinds: kinds})
		if p.curIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	return out
}
