// Package parser implements a recursive-descent / Pratt expression parser
// that turns a token stream into the internal/ast semantic graph consumed
// by internal/semantic.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fluxscript/flux/internal/ast"
	"github.com/fluxscript/flux/internal/lexer"
	"github.com/fluxscript/flux/internal/token"
)

// precedence levels, low to high.
const (
	_ int = iota
	LOWEST
	PIPE
	LOGIC_OR
	LOGIC_AND
	EQUALITY
	COMPARISON
	SUM
	PRODUCT
	UNARY
	CALL
	INDEX
)

var precedences = map[token.Kind]int{
	token.PIPE_FWD: PIPE,
	token.OR:       LOGIC_OR,
	token.AND:      LOGIC_AND,
	token.EQ:       EQUALITY,
	token.NEQ:      EQUALITY,
	token.RE_EQ:    EQUALITY,
	token.RE_NEQ:   EQUALITY,
	token.LT:       COMPARISON,
	token.GT:       COMPARISON,
	token.LTE:      COMPARISON,
	token.GTE:      COMPARISON,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.ASTERISK: PRODUCT,
	token.SLASH:    PRODUCT,
	token.PERCENT:  PRODUCT,
	token.CARET:    PRODUCT,
	token.LPAREN:   CALL,
	token.DOT:      INDEX,
	token.LBRACKET: INDEX,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser consumes a token stream and produces an *ast.Program.
type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token

	errors []error

	prefixFns map[token.Kind]prefixParseFn
	infixFns  map[token.Kind]infixParseFn
}

// New constructs a Parser over the given source text.
func New(input string) *Parser {
	p := &Parser{l: lexer.New(input)}
	p.nextToken()
	p.nextToken()

	p.prefixFns = map[token.Kind]prefixParseFn{
		token.IDENT:      p.parseIdentifier,
		token.INT:        p.parseIntegerLiteral,
		token.FLOAT:      p.parseFloatLiteral,
		token.STRING:     p.parseStringLiteral,
		token.BOOL_TRUE:  p.parseBooleanLiteral,
		token.BOOL_FALSE: p.parseBooleanLiteral,
		token.DURATION:   p.parseDurationLiteral,
		token.TIME:       p.parseTimeLiteral,
		token.LPAREN:     p.parseParenOrFunction,
		token.LBRACE:     p.parseRecordExpression,
		token.LBRACKET:   p.parseArrayOrDictExpression,
		token.MINUS:      p.parseUnaryExpression,
		token.PLUS:       p.parseUnaryExpression,
		token.NOT:        p.parseUnaryExpression,
		token.EXISTS:     p.parseUnaryExpression,
		token.IF:         p.parseConditionalExpression,
		token.SLASH:      p.parseRegexpLiteral,
		token.PIPE_RCV:   p.parsePipeLiteral,
	}

	p.infixFns = map[token.Kind]infixParseFn{
		token.PLUS:     p.parseBinaryExpression,
		token.MINUS:    p.parseBinaryExpression,
		token.ASTERISK: p.parseBinaryExpression,
		token.SLASH:    p.parseBinaryExpression,
		token.PERCENT:  p.parseBinaryExpression,
		token.CARET:    p.parseBinaryExpression,
		token.LT:       p.parseBinaryExpression,
		token.GT:       p.parseBinaryExpression,
		token.LTE:      p.parseBinaryExpression,
		token.GTE:      p.parseBinaryExpression,
		token.EQ:       p.parseBinaryExpression,
		token.NEQ:      p.parseBinaryExpression,
		token.RE_EQ:    p.parseBinaryExpression,
		token.RE_NEQ:   p.parseBinaryExpression,
		token.AND:      p.parseLogicalExpression,
		token.OR:       p.parseLogicalExpression,
		token.LPAREN:   p.parseCallExpression,
		token.DOT:      p.parseMemberExpression,
		token.LBRACKET: p.parseIndexExpression,
		token.PIPE_FWD: p.parsePipeExpression,
	}

	return p
}

// Errors returns every parse error collected so far.
func (p *Parser) Errors() []error { return p.errors }

func (p *Parser) errorf(tok token.Token, format string, args ...interface{}) {
	p.errors = append(p.errors, fmt.Errorf("%s: %s", tok.Start, fmt.Sprintf(format, args...)))
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curIs(k token.Kind) bool  { return p.curToken.Kind == k }
func (p *Parser) peekIs(k token.Kind) bool { return p.peekToken.Kind == k }

func (p *Parser) expect(k token.Kind) bool {
	if p.peekIs(k) {
		p.nextToken()
		return true
	}
	p.errorf(p.peekToken, "expected next token to be %v, got %v (%q)", k, p.peekToken.Kind, p.peekToken.Literal)
	return false
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Kind]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Kind]; ok {
		return pr
	}
	return LOWEST
}

// ParseProgram parses an entire file.
func (p *Parser) ParseProgram(file string) *ast.Program {
	prog := &ast.Program{File: file}

	if p.curIs(token.PACKAGE) {
		tok := p.curToken
		if !p.expect(token.IDENT) {
			return prog
		}
		prog.Package = &ast.PackageClause{Token: tok, Name: p.curToken.Literal}
		p.nextToken()
	}

	for p.curIs(token.IMPORT) {
		imp := p.parseImportDeclaration()
		if imp != nil {
			prog.Imports = append(prog.Imports, imp)
		}
	}

	for !p.curIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		if _, ok := stmt.(*ast.BuiltinStatement); ok {
			// The type grammar already leaves curToken past the statement.
			continue
		}
		p.nextToken()
	}
	return prog
}

func (p *Parser) parseImportDeclaration() *ast.ImportDeclaration {
	tok := p.curToken
	imp := &ast.ImportDeclaration{Token: tok}
	if p.peekIs(token.IDENT) {
		p.nextToken()
		imp.Alias = p.curToken.Literal
	}
	if !p.expect(token.STRING) {
		return nil
	}
	imp.Path = p.curToken.Literal
	p.nextToken()
	return imp
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Kind {
	case token.OPTION:
		return p.parseOptionStatement()
	case token.BUILTIN:
		return p.parseBuiltinStatement()
	case token.TEST:
		return p.parseTestStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.IDENT:
		if p.peekIs(token.ASSIGN) {
			return p.parseVariableAssignment()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseVariableAssignment() ast.Statement {
	tok := p.curToken
	name := &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal}
	if !p.expect(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	val := p.parseExpression(LOWEST)
	return &ast.VariableAssignment{Token: tok, Name: name, Value: val}
}

func (p *Parser) parseOptionStatement() ast.Statement {
	tok := p.curToken
	p.nextToken()
	var assignment ast.Statement
	if p.curIs(token.IDENT) && p.peekIs(token.DOT) {
		objTok := p.curToken
		var obj ast.Expression = &ast.Identifier{Token: objTok, Name: p.curToken.Literal}
		for p.peekIs(token.DOT) {
			p.nextToken()
			p.expect(token.IDENT)
			obj = &ast.MemberExpression{Token: objTok, Object: obj, Property: p.curToken.Literal}
		}
		if !p.expect(token.ASSIGN) {
			return nil
		}
		p.nextToken()
		val := p.parseExpression(LOWEST)
		assignment = &ast.MemberAssignment{Token: objTok, Object: obj, Value: val}
	} else {
		assignment = p.parseVariableAssignment()
	}
	return &ast.OptionStatement{Token: tok, Assignment: assignment}
}

func (p *Parser) parseBuiltinStatement() ast.Statement {
	tok := p.curToken
	if !p.expect(token.IDENT) {
		return nil
	}
	name := &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal}
	if !p.expect(token.COLON) {
		return nil
	}
	p.nextToken()
	expr := p.parseTypeExprTop()
	var cons []ast.ConstraintExpr
	if p.curIs(token.WHERE) {
		p.nextToken()
		cons = p.parseConstraintList()
	}
	return &ast.BuiltinStatement{Token: tok, Name: name, Type: &ast.PolytypeExpr{Expr: expr, Constraints: cons}}
}

func (p *Parser) parseTestStatement() ast.Statement {
	tok := p.curToken
	if !p.expect(token.IDENT) {
		return nil
	}
	name := &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal}
	if !p.expect(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	body := p.parseExpression(LOWEST)
	fn, ok := body.(*ast.FunctionExpression)
	if !ok {
		p.errorf(tok, "test body must be a function expression")
		return nil
	}
	return &ast.TestStatement{Token: tok, Name: name, Body: fn}
}

func (p *Parser) parseReturnStatement() ast.Statement {
	tok := p.curToken
	p.nextToken()
	arg := p.parseExpression(LOWEST)
	return &ast.ReturnStatement{Token: tok, Argument: arg}
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	tok := p.curToken
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	return &ast.ExpressionStatement{Token: tok, Expression: expr}
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixFns[p.curToken.Kind]
	if prefix == nil {
		p.errorf(p.curToken, "no prefix parse function for %v (%q)", p.curToken.Kind, p.curToken.Literal)
		return nil
	}
	left := prefix()

	for precedence < p.peekPrecedence() {
		infix := p.infixFns[p.peekToken.Kind]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	tok := p.curToken
	v, err := strconv.ParseInt(tok.Literal, 10, 64)
	if err != nil {
		p.errorf(tok, "invalid integer literal %q", tok.Literal)
		return nil
	}
	return &ast.IntegerLiteral{Token: tok, Value: v}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	tok := p.curToken
	v, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		p.errorf(tok, "invalid float literal %q", tok.Literal)
		return nil
	}
	return &ast.FloatLiteral{Token: tok, Value: v}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curToken.Kind == token.BOOL_TRUE}
}

func (p *Parser) parseDurationLiteral() ast.Expression {
	return &ast.DurationLiteral{Token: p.curToken, Text: p.curToken.Literal}
}

func (p *Parser) parseTimeLiteral() ast.Expression {
	return &ast.DateTimeLiteral{Token: p.curToken, Text: p.curToken.Literal}
}

func (p *Parser) parseRegexpLiteral() ast.Expression {
	tok := p.l.ReadRegexp()
	// The pre-fetched peek token is now stale (lexer has moved past it via
	// ReadRegexp); resynchronize by treating tok as curToken directly.
	p.curToken = tok
	p.peekToken = p.l.NextToken()
	return &ast.RegexpLiteral{Token: tok, Value: tok.Literal}
}

// parseStringLiteral splits the lexer's raw string literal (which still
// contains `${...}` spans) into a plain StringLiteral or, if it contains
// interpolation, a StringExpression of literal/expr parts.
func (p *Parser) parseStringLiteral() ast.Expression {
	tok := p.curToken
	raw := tok.Literal

	if tok.Kind == token.STRING && strings.HasPrefix(raw, "#") {
		return &ast.LabelLiteral{Token: tok, Value: raw[1:]}
	}

	if !strings.Contains(raw, "${") {
		return &ast.StringLiteral{Token: tok, Value: unescape(raw)}
	}

	var parts []ast.StringPart
	i := 0
	for i < len(raw) {
		idx := strings.Index(raw[i:], "${")
		if idx < 0 {
			parts = append(parts, ast.StringPart{Text: unescape(raw[i:])})
			break
		}
		if idx > 0 {
			parts = append(parts, ast.StringPart{Text: unescape(raw[i : i+idx])})
		}
		start := i + idx + 2
		depth := 1
		j := start
		for j < len(raw) && depth > 0 {
			if raw[j] == '{' {
				depth++
			} else if raw[j] == '}' {
				depth--
				if depth == 0 {
					break
				}
			}
			j++
		}
		sub := raw[start:j]
		subParser := New(sub)
		expr := subParser.parseExpression(LOWEST)
		parts = append(parts, ast.StringPart{Expr: expr})
		i = j + 1
	}
	return &ast.StringExpression{Token: tok, Parts: parts}
}

func unescape(s string) string {
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\t`, "\t")
	s = strings.ReplaceAll(s, `\\`, `\`)
	return s
}

func (p *Parser) parseUnaryExpression() ast.Expression {
	tok := p.curToken
	op := tok.Literal
	if tok.Kind == token.NOT {
		op = "not"
	} else if tok.Kind == token.EXISTS {
		op = "exists"
	}
	p.nextToken()
	operand := p.parseExpression(UNARY)
	return &ast.UnaryExpression{Token: tok, Operator: op, Operand: operand}
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	op := tok.Literal
	prec := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(prec)
	return &ast.BinaryExpression{Token: tok, Operator: op, Left: left, Right: right}
}

func (p *Parser) parseLogicalExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	op := "and"
	if tok.Kind == token.OR {
		op = "or"
	}
	prec := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(prec)
	return &ast.LogicalExpression{Token: tok, Operator: op, Left: left, Right: right}
}

func (p *Parser) parseConditionalExpression() ast.Expression {
	tok := p.curToken
	p.nextToken()
	test := p.parseExpression(LOWEST)
	if !p.expect(token.THEN) {
		return nil
	}
	p.nextToken()
	cons := p.parseExpression(LOWEST)
	if !p.expect(token.ELSE) {
		return nil
	}
	p.nextToken()
	alt := p.parseExpression(LOWEST)
	return &ast.ConditionalExpression{Token: tok, Test: test, Consequent: cons, Alternative: alt}
}

func (p *Parser) parseMemberExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	if !p.expect(token.IDENT) {
		return nil
	}
	return &ast.MemberExpression{Token: tok, Object: left, Property: p.curToken.Literal}
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	idx := p.parseExpression(LOWEST)
	if !p.expect(token.RBRACKET) {
		return nil
	}
	return &ast.IndexExpression{Token: tok, Array: left, Index: idx}
}

func (p *Parser) parseArrayOrDictExpression() ast.Expression {
	tok := p.curToken
	if p.peekIs(token.RBRACKET) {
		p.nextToken()
		return &ast.ArrayExpression{Token: tok}
	}
	if p.peekIs(token.COLON) {
		// [:] empty dict
		p.nextToken()
		if !p.expect(token.RBRACKET) {
			return nil
		}
		return &ast.DictExpression{Token: tok}
	}

	p.nextToken()
	first := p.parseExpression(LOWEST)

	if p.peekIs(token.COLON) {
		// Dict literal.
		p.nextToken()
		p.nextToken()
		val := p.parseExpression(LOWEST)
		items := []ast.DictItem{{Key: first, Val: val}}
		for p.peekIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			k := p.parseExpression(LOWEST)
			if !p.expect(token.COLON) {
				return nil
			}
			p.nextToken()
			v := p.parseExpression(LOWEST)
			items = append(items, ast.DictItem{Key: k, Val: v})
		}
		if !p.expect(token.RBRACKET) {
			return nil
		}
		return &ast.DictExpression{Token: tok, Items: items}
	}

	elems := []ast.Expression{first}
	for p.peekIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		elems = append(elems, p.parseExpression(LOWEST))
	}
	if !p.expect(token.RBRACKET) {
		return nil
	}
	return &ast.ArrayExpression{Token: tok, Elements: elems}
}

func (p *Parser) parseRecordExpression() ast.Expression {
	tok := p.curToken
	rec := &ast.RecordExpression{Token: tok}

	if p.peekIs(token.RBRACE) {
		p.nextToken()
		return rec
	}

	// {base with a: 1, b: 2}
	if p.peekIs(token.IDENT) {
		savedCur, savedPeek := p.curToken, p.peekToken
		savedLex := *p.l
		p.nextToken()
		ident := p.curToken
		if p.peekIs(token.WITH) {
			p.nextToken()
			p.nextToken()
			rec.With = &ast.Identifier{Token: ident, Name: ident.Literal}
			rec.Properties = p.parseRecordProperties()
			if !p.expect(token.RBRACE) {
				return nil
			}
			return rec
		}
		p.curToken, p.peekToken = savedCur, savedPeek
		*p.l = savedLex
	}

	p.nextToken()
	rec.Properties = p.parseRecordProperties()
	if !p.expect(token.RBRACE) {
		return nil
	}
	return rec
}

// parseRecordProperties parses `k: v, k: v, ...` with curToken already on
// the first key. Order is preserved exactly as written — duplicate labels
// are legal and meaningful (spec.md §3).
func (p *Parser) parseRecordProperties() []ast.Property {
	var props []ast.Property
	for {
		keyTok := p.curToken
		key := &ast.Identifier{Token: keyTok, Name: keyTok.Literal}
		if !p.expect(token.COLON) {
			return props
		}
		p.nextToken()
		val := p.parseExpression(LOWEST)
		props = append(props, ast.Property{Key: key, Value: val})
		if !p.peekIs(token.COMMA) {
			break
		}
		p.nextToken()
		p.nextToken()
	}
	return props
}

// parseParenOrFunction disambiguates `(expr)` from a function expression
// `(p1, p2=d2, p3=<-) => body` by scanning ahead for `=>` after the matching
// close-paren.
func (p *Parser) parseParenOrFunction() ast.Expression {
	if p.looksLikeFunctionParams() {
		return p.parseFunctionExpression()
	}
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if !p.expect(token.RPAREN) {
		return nil
	}
	return expr
}

func (p *Parser) looksLikeFunctionParams() bool {
	// Cheap lookahead: track paren depth from curToken (LPAREN) until the
	// matching RPAREN, then check if the following token is ARROW.
	save := *p
	lexSave := *p.l
	depth := 0
	for {
		if p.curIs(token.LPAREN) {
			depth++
		} else if p.curIs(token.RPAREN) {
			depth--
			if depth == 0 {
				isFn := p.peekIs(token.ARROW)
				*p = save
				*p.l = lexSave
				return isFn
			}
		} else if p.curIs(token.EOF) {
			*p = save
			*p.l = lexSave
			return false
		}
		p.nextToken()
	}
}

func (p *Parser) parseFunctionExpression() ast.Expression {
	tok := p.curToken // LPAREN
	p.nextToken()

	var params []ast.Param
	if !p.curIs(token.RPAREN) {
		for {
			params = append(params, p.parseParam())
			if !p.peekIs(token.COMMA) {
				break
			}
			p.nextToken()
			p.nextToken()
		}
	}
	if !p.expect(token.RPAREN) {
		return nil
	}
	if !p.expect(token.ARROW) {
		return nil
	}
	p.nextToken()

	fn := &ast.FunctionExpression{Token: tok, Params: params}
	if p.curIs(token.LBRACE) {
		fn.Block = p.parseBlock()
	} else {
		fn.Body = p.parseExpression(LOWEST)
	}
	return fn
}

func (p *Parser) parseParam() ast.Param {
	var param ast.Param
	name := &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal}
	param.Name = name
	if p.peekIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		value := p.parseExpression(LOWEST)
		if _, ok := value.(*ast.PipeLiteral); ok {
			param.IsPipe = true
		} else {
			param.Default = value
		}
	}
	return param
}

// parsePipeLiteral recognizes the `<-` marker that appears in a
// parameter's default slot (`name=<-`) to declare it the function's pipe
// argument, e.g. `add = (a=<-, b) => a + b`.
func (p *Parser) parsePipeLiteral() ast.Expression {
	return &ast.PipeLiteral{Token: p.curToken}
}

func (p *Parser) parseBlock() *ast.Block {
	tok := p.curToken // LBRACE
	p.nextToken()
	block := &ast.Block{Token: tok}
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Body = append(block.Body, stmt)
		}
		p.nextToken()
	}
	return block
}

func (p *Parser) parseCallExpression(callee ast.Expression) ast.Expression {
	tok := p.curToken // LPAREN
	args := p.parseCallArguments()
	return &ast.CallExpression{Token: tok, Callee: callee, Arguments: args}
}

func (p *Parser) parseCallArguments() []ast.Argument {
	var args []ast.Argument
	if p.peekIs(token.RPAREN) {
		p.nextToken()
		return args
	}
	p.nextToken()
	args = append(args, p.parseCallArgument())
	for p.peekIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		args = append(args, p.parseCallArgument())
	}
	if !p.expect(token.RPAREN) {
		return args
	}
	return args
}

func (p *Parser) parseCallArgument() ast.Argument {
	if p.curIs(token.PIPE_RCV) {
		// <-value : explicit pipe argument at the call site.
		p.nextToken()
		return ast.Argument{Name: "<-", Value: p.parseExpression(LOWEST)}
	}
	if p.curIs(token.IDENT) && p.peekIs(token.COLON) {
		name := p.curToken.Literal
		p.nextToken()
		p.nextToken()
		return ast.Argument{Name: name, Value: p.parseExpression(LOWEST)}
	}
	// Positional argument; the semantic pass rejects these outside of
	// piping (Flux call arguments are named, spec.md §4.D).
	return ast.Argument{Value: p.parseExpression(LOWEST)}
}

// parsePipeExpression rewrites `value |> call(...)` directly into
// call.Pipe = value so the rest of the pipeline only ever sees
// CallExpression nodes with an optional Pipe field (spec.md §4.D).
func (p *Parser) parsePipeExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	right := p.parseExpression(PIPE)
	if call, ok := right.(*ast.CallExpression); ok {
		call.Pipe = left
		return call
	}
	return &ast.PipeExpression{Token: tok, Value: left, Call: nil}
}
