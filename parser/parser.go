// Package parser turns a token stream into an AST, splicing in included
// units as it goes, and tracks the function-predeclaration bookkeeping
// spec §4.4 requires.
//
// The staged, single-pass-over-tokens shape is grounded on the teacher's
// compiler package (skx-math-compiler/compiler/compiler.go's tokenize/
// makeinternalform split), generalized from a flat RPN token scan into a
// real recursive descent because the Zed grammar (functions, blocks,
// control flow, expressions with precedence) needs one. Include-cycle
// bookkeeping (a "loading" set checked before "loaded") is grounded on
// db47h-ngaro/asm/parser.go's error-accumulation pattern, adapted from
// a multi-error list to first-error-aborts per spec §4.4/§7.
package parser

import (
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/zedlang/zedc/ast"
	"github.com/zedlang/zedc/lexer"
	"github.com/zedlang/zedc/source"
	"github.com/zedlang/zedc/token"
)

// Parser holds the state shared across an entire translation unit: the
// function registry and the include graph's loading/loaded sets. A new
// Parser is constructed per translation unit (spec §3: the include
// graph's sets are per compilation).
type Parser struct {
	mgr        *source.Manager
	stdlibRoot string

	declared map[string]bool
	defined  map[string]bool
	declSpan map[string]source.Span

	loading map[string]bool
	loaded  map[string]bool
}

// New returns a Parser for one translation unit. stdlibRoot resolves
// angle-form `@include <path>;` directives; it may be empty if the unit
// under compilation never uses them.
func New(mgr *source.Manager, stdlibRoot string) *Parser {
	return &Parser{
		mgr:        mgr,
		stdlibRoot: stdlibRoot,
		declared:   make(map[string]bool),
		defined:    make(map[string]bool),
		declSpan:   make(map[string]source.Span),
		loading:    make(map[string]bool),
		loaded:     make(map[string]bool),
	}
}

// ParseMain loads mainPath, parses it (flattening any @include directives
// it transitively reaches), and validates the function registry. It
// returns a *source.Diagnostic (never wrapped) for any lex/parse/
// validation failure, per spec §7's "first error aborts" policy.
func (p *Parser) ParseMain(mainPath string) (*ast.Program, error) {
	var items []ast.Item
	if err := p.parseUnit(mainPath, &items); err != nil {
		return nil, err
	}
	if diag := p.validateRegistry(); diag != nil {
		return nil, diag
	}
	return &ast.Program{Items: items}, nil
}

// validateRegistry enforces spec §3: every declared name must also be
// defined by end-of-parse.
func (p *Parser) validateRegistry() *source.Diagnostic {
	for name := range p.declared {
		if !p.defined[name] {
			span := p.declSpan[name]
			return source.NewDiagnostic(span, "function %q declared but not defined", name)
		}
	}
	return nil
}

// parseUnit loads and parses one source unit, appending its top-level
// items (after recursively splicing any includes it reaches) to *items
// in source order.
func (p *Parser) parseUnit(path string, items *[]ast.Item) error {
	canonical, err := source.Canonical(path)
	if err != nil {
		return errors.Wrapf(err, "resolving %s", path)
	}

	unit, err := p.mgr.Load(canonical)
	if err != nil {
		return err
	}

	fs := &fileState{p: p, unit: unit, lex: lexer.New(unit), dir: filepath.Dir(canonical)}
	if err := fs.advance(); err != nil {
		return err
	}
	if err := fs.advance(); err != nil {
		return err
	}

	for fs.cur.Kind != token.EOF {
		if fs.cur.Kind == token.INCLUDE {
			if err := fs.parseInclude(items); err != nil {
				return err
			}
			continue
		}
		item, err := fs.parseItem()
		if err != nil {
			return err
		}
		*items = append(*items, item)
	}
	return nil
}

// resolveQuoted resolves `@include "path";` relative to the including
// unit's directory.
func (p *Parser) resolveQuoted(fromDir, rel string) string {
	return filepath.Join(fromDir, rel)
}

// resolveSystem resolves `@include <path>;` against the configured
// standard-library root.
func (p *Parser) resolveSystem(rel string) string {
	return filepath.Join(p.stdlibRoot, rel)
}
