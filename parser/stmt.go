package parser

import (
	"github.com/zedlang/zedc/ast"
	"github.com/zedlang/zedc/source"
	"github.com/zedlang/zedc/token"
)

// parseStmt parses one statement (spec §4.5).
func (fs *fileState) parseStmt() (ast.Statement, error) {
	switch fs.cur.Kind {
	case token.LBRACE:
		return fs.parseBlock()
	case token.IF:
		return fs.parseIf()
	case token.WHILE:
		return fs.parseWhile()
	case token.RETURN:
		return fs.parseReturn()
	case token.ASM:
		return fs.parseAsm()
	case token.IDENT:
		return fs.parseIdentStmt()
	default:
		return nil, source.NewDiagnostic(fs.cur.Span, "unexpected token %q at start of statement", fs.cur.Kind)
	}
}

func (fs *fileState) parseBlock() (*ast.Block, error) {
	start := fs.cur.Span
	if err := fs.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var stmts []ast.Statement
	for fs.cur.Kind != token.RBRACE {
		if fs.cur.Kind == token.EOF {
			return nil, source.NewDiagnostic(start, "unterminated block")
		}
		stmt, err := fs.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if err := fs.advance(); err != nil { // consume '}'
		return nil, err
	}
	return &ast.Block{SourceSpan: start, Stmts: stmts}, nil
}

func (fs *fileState) parseIf() (ast.Statement, error) {
	start := fs.cur.Span
	if err := fs.advance(); err != nil { // consume 'if'
		return nil, err
	}
	if err := fs.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := fs.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if err := fs.expect(token.RPAREN); err != nil {
		return nil, err
	}
	then, err := fs.parseStmt()
	if err != nil {
		return nil, err
	}
	var elseStmt ast.Statement
	if fs.cur.Kind == token.ELSE {
		if err := fs.advance(); err != nil {
			return nil, err
		}
		elseStmt, err = fs.parseStmt()
		if err != nil {
			return nil, err
		}
	}
	return &ast.If{SourceSpan: start, Cond: cond, Then: then, Else: elseStmt}, nil
}

func (fs *fileState) parseWhile() (ast.Statement, error) {
	start := fs.cur.Span
	if err := fs.advance(); err != nil { // consume 'while'
		return nil, err
	}
	if err := fs.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := fs.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if err := fs.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := fs.parseStmt()
	if err != nil {
		return nil, err
	}
	return &ast.While{SourceSpan: start, Cond: cond, Body: body}, nil
}

func (fs *fileState) parseReturn() (ast.Statement, error) {
	start := fs.cur.Span
	if err := fs.advance(); err != nil { // consume 'return'
		return nil, err
	}
	if fs.cur.Kind == token.SEMI {
		if err := fs.advance(); err != nil {
			return nil, err
		}
		return &ast.Return{SourceSpan: start}, nil
	}
	val, err := fs.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if err := fs.expect(token.SEMI); err != nil {
		return nil, err
	}
	return &ast.Return{SourceSpan: start, Value: val}, nil
}

// parseIdentStmt disambiguates the three statement forms that start with
// an identifier: `name = expr;`, `name[idx] = expr;`, and a bare
// expression statement such as a call (spec §4.5).
func (fs *fileState) parseIdentStmt() (ast.Statement, error) {
	start := fs.cur.Span
	name := fs.cur.Literal
	if err := fs.advance(); err != nil {
		return nil, err
	}

	if fs.cur.Kind == token.ASSIGN {
		if err := fs.advance(); err != nil {
			return nil, err
		}
		val, err := fs.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if err := fs.expect(token.SEMI); err != nil {
			return nil, err
		}
		return &ast.Assign{SourceSpan: start, Name: name, Value: val}, nil
	}

	if fs.cur.Kind == token.LBRACKET {
		if err := fs.advance(); err != nil {
			return nil, err
		}
		idx, err := fs.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if err := fs.expect(token.RBRACKET); err != nil {
			return nil, err
		}
		if err := fs.expect(token.ASSIGN); err != nil {
			return nil, err
		}
		val, err := fs.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if err := fs.expect(token.SEMI); err != nil {
			return nil, err
		}
		return &ast.IndexAssign{SourceSpan: start, Name: name, Index: idx, Value: val}, nil
	}

	expr, err := fs.parseIdentTail(start, name)
	if err != nil {
		return nil, err
	}
	if err := fs.expect(token.SEMI); err != nil {
		return nil, err
	}
	return &ast.ExprStmt{SourceSpan: start, Expr: expr}, nil
}

// parseAsm parses `asm "template" : outputs : inputs : clobbers;`
// (spec §4.6). Any of the three colon-separated clauses may be empty,
// but all three colons are required so the clause boundaries are
// unambiguous.
func (fs *fileState) parseAsm() (ast.Statement, error) {
	start := fs.cur.Span
	if err := fs.advance(); err != nil { // consume 'asm'
		return nil, err
	}
	if fs.cur.Kind != token.STR {
		return nil, source.NewDiagnostic(fs.cur.Span, "expected an assembly template string, got %q", fs.cur.Kind)
	}
	template := fs.cur.Literal
	if err := fs.advance(); err != nil {
		return nil, err
	}

	if err := fs.expect(token.COLON); err != nil {
		return nil, err
	}
	outputs, err := fs.parseAsmOutputs()
	if err != nil {
		return nil, err
	}

	if err := fs.expect(token.COLON); err != nil {
		return nil, err
	}
	inputs, err := fs.parseAsmInputs()
	if err != nil {
		return nil, err
	}

	if err := fs.expect(token.COLON); err != nil {
		return nil, err
	}
	clobbers, err := fs.parseAsmClobbers()
	if err != nil {
		return nil, err
	}

	if err := fs.expect(token.SEMI); err != nil {
		return nil, err
	}

	return &ast.AsmBlock{
		SourceSpan: start,
		Template:   template,
		Outputs:    outputs,
		Inputs:     inputs,
		Clobbers:   clobbers,
	}, nil
}

func (fs *fileState) parseAsmOutputs() ([]ast.AsmOutput, error) {
	var outs []ast.AsmOutput
	for fs.cur.Kind == token.STR {
		constraint := fs.cur.Literal
		if err := fs.advance(); err != nil {
			return nil, err
		}
		if err := fs.expect(token.LBRACKET); err != nil {
			return nil, err
		}
		if fs.cur.Kind != token.IDENT {
			return nil, source.NewDiagnostic(fs.cur.Span, "expected a variable name in asm output, got %q", fs.cur.Kind)
		}
		ident := fs.cur.Literal
		if err := fs.advance(); err != nil {
			return nil, err
		}
		if err := fs.expect(token.RBRACKET); err != nil {
			return nil, err
		}
		outs = append(outs, ast.AsmOutput{Constraint: constraint, Ident: ident})
		if fs.cur.Kind == token.COMMA {
			if err := fs.advance(); err != nil {
				return nil, err
			}
		}
	}
	return outs, nil
}

func (fs *fileState) parseAsmInputs() ([]ast.AsmInput, error) {
	var ins []ast.AsmInput
	for fs.cur.Kind == token.STR {
		constraint := fs.cur.Literal
		if err := fs.advance(); err != nil {
			return nil, err
		}
		if err := fs.expect(token.LBRACKET); err != nil {
			return nil, err
		}
		expr, err := fs.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if err := fs.expect(token.RBRACKET); err != nil {
			return nil, err
		}
		ins = append(ins, ast.AsmInput{Constraint: constraint, Expr: expr})
		if fs.cur.Kind == token.COMMA {
			if err := fs.advance(); err != nil {
				return nil, err
			}
		}
	}
	return ins, nil
}

func (fs *fileState) parseAsmClobbers() ([]string, error) {
	var regs []string
	for fs.cur.Kind == token.STR {
		regs = append(regs, fs.cur.Literal)
		if err := fs.advance(); err != nil {
			return nil, err
		}
		if fs.cur.Kind == token.COMMA {
			if err := fs.advance(); err != nil {
				return nil, err
			}
		}
	}
	return regs, nil
}
