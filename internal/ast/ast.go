// Package ast defines the semantic-graph node types produced by the parser
// and consumed by internal/semantic. Every node carries the token it
// starts at, for diagnostic location reporting.
package ast

import "github.com/fluxscript/flux/internal/token"

// Node is the base interface implemented by every AST node.
type Node interface {
	Tok() token.Token
}

// Statement is a top-level or block-level statement.
type Statement interface {
	Node
	stmtNode()
}

// Expression is anything that produces a value (and therefore a type).
type Expression interface {
	Node
	exprNode()
}

// Program is the root of a single parsed file.
type Program struct {
	File       string
	Package    *PackageClause // nil for unnamed/main-less files
	Imports    []*ImportDeclaration
	Statements []Statement
}

func (p *Program) Tok() token.Token { return token.Token{} }

// PackageClause names the package a file belongs to.
type PackageClause struct {
	Token token.Token
	Name  string
}

func (p *PackageClause) Tok() token.Token { return p.Token }

// ImportDeclaration binds a local alias to an import path.
// import "influxdata/math"
// import m "influxdata/math"
type ImportDeclaration struct {
	Token token.Token
	Alias string // "" if no explicit alias; default is last path segment
	Path  string
}

func (i *ImportDeclaration) Tok() token.Token { return i.Token }
func (i *ImportDeclaration) stmtNode()        {}

// ExpressionStatement wraps a bare expression used as a statement.
type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
}

func (e *ExpressionStatement) Tok() token.Token { return e.Token }
func (e *ExpressionStatement) stmtNode()        {}

// VariableAssignment is a let-binding: `name = expr`.
type VariableAssignment struct {
	Token token.Token
	Name  *Identifier
	Value Expression
}

func (v *VariableAssignment) Tok() token.Token { return v.Token }
func (v *VariableAssignment) stmtNode()        {}

// MemberAssignment assigns into an option's member: `option x.y = expr`.
type MemberAssignment struct {
	Token  token.Token
	Object Expression // MemberExpression being assigned to
	Value  Expression
}

func (m *MemberAssignment) Tok() token.Token { return m.Token }
func (m *MemberAssignment) stmtNode()        {}

// OptionStatement declares or overrides a named option.
// option x = expr
type OptionStatement struct {
	Token      token.Token
	Assignment Statement // *VariableAssignment or *MemberAssignment
}

func (o *OptionStatement) Tok() token.Token { return o.Token }
func (o *OptionStatement) stmtNode()        {}

// BuiltinStatement declares an external builtin's type.
// builtin now : () => time
// builtin add : (<-a: A, b: A) => A where A: Addable
type BuiltinStatement struct {
	Token token.Token
	Name  *Identifier
	Type  *PolytypeExpr
}

func (b *BuiltinStatement) Tok() token.Token { return b.Token }
func (b *BuiltinStatement) stmtNode()        {}

// TestStatement introduces a nested scope used only for type-checking
// assertions; it has no runtime meaning in this front end.
// test my_test = () => { ... }
type TestStatement struct {
	Token token.Token
	Name  *Identifier
	Body  *FunctionExpression
}

func (t *TestStatement) Tok() token.Token { return t.Token }
func (t *TestStatement) stmtNode()        {}

// ReturnStatement appears inside a function body block.
type ReturnStatement struct {
	Token    token.Token
	Argument Expression
}

func (r *ReturnStatement) Tok() token.Token { return r.Token }
func (r *ReturnStatement) stmtNode()        {}

// Block is a function body: a sequence of statements with an implicit or
// explicit return.
type Block struct {
	Token token.Token
	Body  []Statement
}

func (b *Block) Tok() token.Token { return b.Token }

// ---- Expressions ----

type Identifier struct {
	Token token.Token
	Name  string
}

func (i *Identifier) Tok() token.Token { return i.Token }
func (i *Identifier) exprNode()        {}

type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (l *IntegerLiteral) Tok() token.Token { return l.Token }
func (l *IntegerLiteral) exprNode()        {}

type UnsignedIntegerLiteral struct {
	Token token.Token
	Value uint64
}

func (l *UnsignedIntegerLiteral) Tok() token.Token { return l.Token }
func (l *UnsignedIntegerLiteral) exprNode()        {}

type FloatLiteral struct {
	Token token.Token
	Value float64
}

func (l *FloatLiteral) Tok() token.Token { return l.Token }
func (l *FloatLiteral) exprNode()        {}

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (l *BooleanLiteral) Tok() token.Token { return l.Token }
func (l *BooleanLiteral) exprNode()        {}

type StringLiteral struct {
	Token token.Token
	Value string
}

func (l *StringLiteral) Tok() token.Token { return l.Token }
func (l *StringLiteral) exprNode()        {}

type RegexpLiteral struct {
	Token token.Token
	Value string
}

func (l *RegexpLiteral) Tok() token.Token { return l.Token }
func (l *RegexpLiteral) exprNode()        {}

type DurationLiteral struct {
	Token token.Token
	Text  string // e.g. "5m30s"
}

func (l *DurationLiteral) Tok() token.Token { return l.Token }
func (l *DurationLiteral) exprNode()        {}

type DateTimeLiteral struct {
	Token token.Token
	Text  string
}

func (l *DateTimeLiteral) Tok() token.Token { return l.Token }
func (l *DateTimeLiteral) exprNode()        {}

// LabelLiteral is a singleton-typed string, as used for column/field
// names in group/pivot-style function arguments: `"_value"`.
// In source text it is syntactically identical to a StringLiteral; the
// parser only distinguishes it via a `#` prefix: `#_value`.
type LabelLiteral struct {
	Token token.Token
	Value string
}

func (l *LabelLiteral) Tok() token.Token { return l.Token }
func (l *LabelLiteral) exprNode()        {}

// ArrayExpression is `[e1, e2, ...]`.
type ArrayExpression struct {
	Token    token.Token
	Elements []Expression
}

func (a *ArrayExpression) Tok() token.Token { return a.Token }
func (a *ArrayExpression) exprNode()        {}

// DictItem is a single `key: value` entry of a DictExpression.
type DictItem struct {
	Key Expression
	Val Expression
}

// DictExpression is `[k1: v1, k2: v2]`.
type DictExpression struct {
	Token token.Token
	Items []DictItem
}

func (d *DictExpression) Tok() token.Token { return d.Token }
func (d *DictExpression) exprNode()        {}

// Property is a single `key: value` entry of a RecordExpression.
type Property struct {
	Key   *Identifier
	Value Expression
}

// RecordExpression is `{k1: v1, k2: v2}` or `{base with k1: v1}`.
type RecordExpression struct {
	Token      token.Token
	With       Expression // nil unless `{base with ...}`
	Properties []Property
}

func (r *RecordExpression) Tok() token.Token { return r.Token }
func (r *RecordExpression) exprNode()        {}

// MemberExpression is `object.property`.
type MemberExpression struct {
	Token    token.Token
	Object   Expression
	Property string
}

func (m *MemberExpression) Tok() token.Token { return m.Token }
func (m *MemberExpression) exprNode()        {}

// IndexExpression is `array[index]`.
type IndexExpression struct {
	Token token.Token
	Array Expression
	Index Expression
}

func (i *IndexExpression) Tok() token.Token { return i.Token }
func (i *IndexExpression) exprNode()        {}

// UnaryExpression is `not x`, `exists x`, `-x`, `+x`.
type UnaryExpression struct {
	Token    token.Token
	Operator string
	Operand  Expression
}

func (u *UnaryExpression) Tok() token.Token { return u.Token }
func (u *UnaryExpression) exprNode()        {}

// BinaryExpression covers arithmetic, comparison, equality and regex-match
// operators.
type BinaryExpression struct {
	Token    token.Token
	Operator string
	Left     Expression
	Right    Expression
}

func (b *BinaryExpression) Tok() token.Token { return b.Token }
func (b *BinaryExpression) exprNode()        {}

// LogicalExpression is `and`/`or`.
type LogicalExpression struct {
	Token    token.Token
	Operator string
	Left     Expression
	Right    Expression
}

func (l *LogicalExpression) Tok() token.Token { return l.Token }
func (l *LogicalExpression) exprNode()        {}

// ConditionalExpression is `if c then t else f`.
type ConditionalExpression struct {
	Token       token.Token
	Test        Expression
	Consequent  Expression
	Alternative Expression
}

func (c *ConditionalExpression) Tok() token.Token { return c.Token }
func (c *ConditionalExpression) exprNode()        {}

// StringExpression is an interpolated string: a sequence of literal text
// parts and embedded expression parts, `"a ${b} c"`.
type StringExpression struct {
	Token token.Token
	Parts []StringPart
}

func (s *StringExpression) Tok() token.Token { return s.Token }
func (s *StringExpression) exprNode()        {}

// StringPart is either a literal text fragment or an interpolated
// expression; exactly one of the two fields is non-nil/non-empty.
type StringPart struct {
	Text string
	Expr Expression
}

// Argument is a single `name: value` call argument.
type Argument struct {
	Name  string
	Value Expression
}

// CallExpression is `callee(arg1: v1, arg2: v2)` optionally preceded by a
// pipe-forwarded value recorded separately by the parser as a
// PipeExpression wrapping this call.
type CallExpression struct {
	Token     token.Token
	Callee    Expression
	Arguments []Argument
	Pipe      Expression // non-nil if this call received a piped argument
}

func (c *CallExpression) Tok() token.Token { return c.Token }
func (c *CallExpression) exprNode()        {}

// PipeExpression is `value |> call`. The parser rewrites this directly
// into call.Pipe = value and returns the CallExpression, but the node
// type is kept for cases the rewrite can't perform (pipe to a non-call
// expression, e.g. `x |> f` where `f` is bound to a function value).
type PipeExpression struct {
	Token token.Token
	Value Expression
	Call  *CallExpression
}

func (p *PipeExpression) Tok() token.Token { return p.Token }
func (p *PipeExpression) exprNode()        {}

// PipeLiteral is the `<-` marker that appears in a parameter's default
// slot to declare it the function's pipe argument (`name=<-`). It is only
// ever produced while parsing a parameter list and consumed immediately
// by parseParam; it never survives into a function body.
type PipeLiteral struct {
	Token token.Token
}

func (p *PipeLiteral) Tok() token.Token { return p.Token }
func (p *PipeLiteral) exprNode()        {}

// Param is a single function-expression parameter.
type Param struct {
	Name    *Identifier
	Default Expression // nil if no default
	IsPipe  bool        // true if declared with the pipe marker `name=<-`
}

// FunctionExpression is `(p1, p2=d2, p3=<-) => body` where body is either a
// single Expression (Body set, Block nil) or a Block (Block set, Body nil).
type FunctionExpression struct {
	Token  token.Token
	Params []Param
	Body   Expression
	Block  *Block
}

func (f *FunctionExpression) Tok() token.Token { return f.Token }
func (f *FunctionExpression) exprNode()        {}

// TypeExpr is the minimal AST produced by the bootstrap polytype grammar
// (spec.md §6); it is never produced by the main Flux parser and is only
// consumed to seed builtin signatures. See internal/parser/typeexpr.go.
type TypeExpr interface {
	typeExprNode()
}

type NamedTypeExpr struct{ Name string }
type VarTypeExpr struct{ Name string }
type ArrayTypeExpr struct{ Elem TypeExpr }
type DictTypeExpr struct{ Key, Val TypeExpr }
type RecordFieldExpr struct {
	Name string
	Type TypeExpr
}
type RecordTypeExpr struct {
	With   string // "" if closed, else row-variable name after `with`
	Fields []RecordFieldExpr
}
type ParamTypeExpr struct {
	Name     string
	Type     TypeExpr
	Optional bool
	Pipe     bool
}
type FunctionTypeExpr struct {
	Params []ParamTypeExpr
	Ret    TypeExpr
}
type ConstraintExpr struct {
	Var   string
	Kinds []string
}
type PolytypeExpr struct {
	Expr        TypeExpr
	Constraints []ConstraintExpr
}

func (NamedTypeExpr) typeExprNode()    {}
func (VarTypeExpr) typeExprNode()      {}
func (ArrayTypeExpr) typeExprNode()    {}
func (DictTypeExpr) typeExprNode()     {}
func (RecordTypeExpr) typeExprNode()   {}
func (FunctionTypeExpr) typeExprNode() {}
func (PolytypeExpr) typeExprNode()     {}
