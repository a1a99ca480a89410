// Package ast defines the abstract syntax tree the parser produces and
// the code generator consumes.
//
// Following the interface-based sum-type idiom used for Makefile ASTs in
// google/kati (golang/kati/ast.go: `type ast interface{...}` with an
// embedded position struct on every variant), every node type here
// embeds a source.Span instead of kati's srcpos. The tree owns its
// children exclusively; there is no sharing and no back-edges (spec §9).
package ast

import (
	"github.com/zedlang/zedc/ops"
	"github.com/zedlang/zedc/source"
)

// Node is implemented by every AST variant; it exposes the span the
// variant occupies in its source unit, for diagnostics.
type Node interface {
	Span() source.Span
}

// Program is the top-level item sequence for one translation unit,
// after include splicing.
type Program struct {
	Items []Item
}

// Item is a top-level construct: a function predeclaration, a function
// definition, or a bare statement appearing outside any function.
type Item interface {
	Node
	itemNode()
}

// FuncDecl is a function predeclaration: `fn name(params);` — no body,
// permitting forward reference and mutual recursion.
type FuncDecl struct {
	SourceSpan source.Span
	Name       string
	Params     []string
}

func (d *FuncDecl) Span() source.Span { return d.SourceSpan }
func (*FuncDecl) itemNode()           {}

// FuncDef is a function definition: `fn name(params) { body }`.
type FuncDef struct {
	SourceSpan source.Span
	Name       string
	Params     []string
	Body       *Block
}

func (d *FuncDef) Span() source.Span { return d.SourceSpan }
func (*FuncDef) itemNode()           {}

// TopStmt wraps a Statement appearing directly at the top level (only
// legal in the main unit — spec §4.6).
type TopStmt struct {
	Stmt Statement
}

func (t *TopStmt) Span() source.Span { return t.Stmt.Span() }
func (*TopStmt) itemNode()           {}

// Statement is implemented by every statement variant.
type Statement interface {
	Node
	stmtNode()
}

// Assign is `name = expr;`.
type Assign struct {
	SourceSpan source.Span
	Name       string
	Value      Expression
}

func (a *Assign) Span() source.Span { return a.SourceSpan }
func (*Assign) stmtNode()           {}

// IndexAssign is `name[index] = expr;`.
type IndexAssign struct {
	SourceSpan source.Span
	Name       string
	Index      Expression
	Value      Expression
}

func (a *IndexAssign) Span() source.Span { return a.SourceSpan }
func (*IndexAssign) stmtNode()           {}

// ExprStmt is an expression evaluated for its side effect, typically a
// call: `f(x);`.
type ExprStmt struct {
	SourceSpan source.Span
	Expr       Expression
}

func (s *ExprStmt) Span() source.Span { return s.SourceSpan }
func (*ExprStmt) stmtNode()           {}

// Block is `{ stmts }`, introducing a new lexical scope.
type Block struct {
	SourceSpan source.Span
	Stmts      []Statement
}

func (b *Block) Span() source.Span { return b.SourceSpan }
func (*Block) stmtNode()           {}

// If is `if (cond) then [else else_]`.
type If struct {
	SourceSpan source.Span
	Cond       Expression
	Then       Statement
	Else       Statement // nil if there is no else clause
}

func (s *If) Span() source.Span { return s.SourceSpan }
func (*If) stmtNode()           {}

// While is `while (cond) body`.
type While struct {
	SourceSpan source.Span
	Cond       Expression
	Body       Statement
}

func (s *While) Span() source.Span { return s.SourceSpan }
func (*While) stmtNode()           {}

// Return is `return [expr];`. Value is nil for a bare `return;`.
type Return struct {
	SourceSpan source.Span
	Value      Expression
}

func (s *Return) Span() source.Span { return s.SourceSpan }
func (*Return) stmtNode()           {}

// AsmOutput is one entry of an inline-asm output clause:
// `"constraint"[ident]`.
type AsmOutput struct {
	Constraint string
	Ident      string
}

// AsmInput is one entry of an inline-asm input clause:
// `"constraint"[expr]`.
type AsmInput struct {
	Constraint string
	Expr       Expression
}

// AsmBlock is `asm "template" : outputs : inputs : clobbers;`. Any of
// the three clauses may be empty. The template is passed through to the
// emitted assembly verbatim; constraint strings are kept as written, are
// never validated, and are only used by the code generator to pick the
// register a value is moved through.
type AsmBlock struct {
	SourceSpan source.Span
	Template   string
	Outputs    []AsmOutput
	Inputs     []AsmInput
	Clobbers   []string
}

func (s *AsmBlock) Span() source.Span { return s.SourceSpan }
func (*AsmBlock) stmtNode()           {}

// Expression is implemented by every expression variant.
type Expression interface {
	Node
	exprNode()
}

// IntLit is an integer literal. Value is the decoded 64-bit value; the
// parser has already decoded the lexer's decimal or hex literal text.
type IntLit struct {
	SourceSpan source.Span
	Value      int64
}

func (e *IntLit) Span() source.Span { return e.SourceSpan }
func (*IntLit) exprNode()           {}

// StrLit is a string literal. Value holds the unescaped bytes (no
// trailing NUL — the code generator appends the terminator at emission
// time, spec §9).
type StrLit struct {
	SourceSpan source.Span
	Value      string
}

func (e *StrLit) Span() source.Span { return e.SourceSpan }
func (*StrLit) exprNode()           {}

// Ident is a bare variable read.
type Ident struct {
	SourceSpan source.Span
	Name       string
}

func (e *Ident) Span() source.Span { return e.SourceSpan }
func (*Ident) exprNode()           {}

// Index is `name[index]`, a byte-indexed read (spec §9: arrays are byte
// arrays throughout).
type Index struct {
	SourceSpan source.Span
	Name       string
	IndexExpr  Expression
}

func (e *Index) Span() source.Span { return e.SourceSpan }
func (*Index) exprNode()           {}

// Call is `name(args)`.
type Call struct {
	SourceSpan source.Span
	Name       string
	Args       []Expression
}

func (e *Call) Span() source.Span { return e.SourceSpan }
func (*Call) exprNode()           {}

// Unary is a prefix operator applied to one operand (only `-` exists in
// the grammar, spec §4.4).
type Unary struct {
	SourceSpan source.Span
	Op         ops.Kind // always ops.Neg
	Operand    Expression
}

func (e *Unary) Span() source.Span { return e.SourceSpan }
func (*Unary) exprNode()           {}

// Binary is a left-associative binary operator application.
type Binary struct {
	SourceSpan source.Span
	Op         ops.Kind
	Left       Expression
	Right      Expression
}

func (e *Binary) Span() source.Span { return e.SourceSpan }
func (*Binary) exprNode()           {}
