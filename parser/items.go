package parser

import (
	"github.com/golang/glog"

	"github.com/zedlang/zedc/ast"
	"github.com/zedlang/zedc/lexer"
	"github.com/zedlang/zedc/source"
	"github.com/zedlang/zedc/token"
)

// fileState is the token cursor for one source unit being parsed. The
// registry (declared/defined) and include graph (loading/loaded) live on
// the shared *Parser, since they span every unit spliced into one
// translation unit; fileState only holds per-unit lexical position.
type fileState struct {
	p    *Parser
	unit *source.Unit
	lex  *lexer.Lexer
	dir  string

	cur, peek token.Token
}

// advance shifts peek into cur and lexes a new peek token.
func (fs *fileState) advance() error {
	fs.cur = fs.peek
	tok, diag := fs.lex.NextToken()
	if diag != nil {
		return diag
	}
	fs.peek = tok
	return nil
}

// expect checks that cur has kind k, then advances past it. On mismatch
// it returns an "unexpected token" diagnostic.
func (fs *fileState) expect(k token.Kind) error {
	if fs.cur.Kind != k {
		return source.NewDiagnostic(fs.cur.Span, "unexpected token %q, expected %q", fs.cur.Kind, k)
	}
	return fs.advance()
}

// parseInclude handles `@include <path>;` / `@include "path";` at the
// point the outer item loop sees an INCLUDE token. It resolves, checks
// the include graph, and (for a first-time include) recursively parses
// the target unit, splicing its items into *items at this point in
// source order (spec §4.3).
func (fs *fileState) parseInclude(items *[]ast.Item) error {
	includeSpan := fs.cur.Span
	if err := fs.advance(); err != nil { // consume @include
		return err
	}

	var target string
	switch fs.cur.Kind {
	case token.STR:
		target = fs.p.resolveQuoted(fs.dir, fs.cur.Literal)
	case token.SYSPATH:
		target = fs.p.resolveSystem(fs.cur.Literal)
	default:
		return source.NewDiagnostic(fs.cur.Span, "expected an include path, got %q", fs.cur.Kind)
	}
	if err := fs.advance(); err != nil { // consume the path token
		return err
	}
	if err := fs.expect(token.SEMI); err != nil {
		return err
	}

	canonical, err := source.Canonical(target)
	if err != nil {
		return err
	}

	if fs.p.loaded[canonical] {
		glog.V(1).Infof("parser: %s already loaded, include is a no-op", canonical)
		return nil // spec §4.3: already-loaded include is a no-op
	}
	if fs.p.loading[canonical] {
		return source.NewDiagnostic(includeSpan, "circular include of %s", target)
	}

	glog.V(1).Infof("parser: entering loading set: %s", canonical)
	fs.p.loading[canonical] = true
	if err := fs.p.parseUnit(canonical, items); err != nil {
		return err
	}
	delete(fs.p.loading, canonical)
	fs.p.loaded[canonical] = true
	glog.V(1).Infof("parser: leaving loading set: %s", canonical)
	return nil
}

// parseItem parses one top-level item: a function predeclaration, a
// function definition, or a bare statement (spec §4.4).
func (fs *fileState) parseItem() (ast.Item, error) {
	if fs.cur.Kind == token.FN {
		return fs.parseFunc()
	}
	stmt, err := fs.parseStmt()
	if err != nil {
		return nil, err
	}
	return &ast.TopStmt{Stmt: stmt}, nil
}

// parseFunc parses `fn name(params);` or `fn name(params) { body }`.
func (fs *fileState) parseFunc() (ast.Item, error) {
	start := fs.cur.Span
	if err := fs.advance(); err != nil { // consume 'fn'
		return nil, err
	}

	if fs.cur.Kind != token.IDENT {
		return nil, source.NewDiagnostic(fs.cur.Span, "expected a function name, got %q", fs.cur.Kind)
	}
	name := fs.cur.Literal
	if err := fs.advance(); err != nil {
		return nil, err
	}

	if err := fs.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var params []string
	for fs.cur.Kind != token.RPAREN {
		if fs.cur.Kind != token.IDENT {
			return nil, source.NewDiagnostic(fs.cur.Span, "expected a parameter name, got %q", fs.cur.Kind)
		}
		params = append(params, fs.cur.Literal)
		if err := fs.advance(); err != nil {
			return nil, err
		}
		if fs.cur.Kind == token.COMMA {
			if err := fs.advance(); err != nil {
				return nil, err
			}
		}
	}
	if err := fs.advance(); err != nil { // consume ')'
		return nil, err
	}

	if fs.cur.Kind == token.SEMI {
		if fs.p.defined[name] {
			// A predeclaration after the body is fine; only a second
			// body is an error. Nothing further to record.
		} else if !fs.p.declared[name] {
			fs.p.declSpan[name] = start
		}
		fs.p.declared[name] = true
		if err := fs.advance(); err != nil {
			return nil, err
		}
		return &ast.FuncDecl{SourceSpan: start, Name: name, Params: params}, nil
	}

	if fs.p.defined[name] {
		return nil, source.NewDiagnostic(start, "function %q already defined", name)
	}

	body, err := fs.parseBlock()
	if err != nil {
		return nil, err
	}

	fs.p.declared[name] = true
	fs.p.defined[name] = true

	def := &ast.FuncDef{SourceSpan: start, Name: name, Params: params, Body: body}
	return def, nil
}
