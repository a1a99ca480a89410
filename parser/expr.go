package parser

import (
	"strconv"

	"github.com/zedlang/zedc/ast"
	"github.com/zedlang/zedc/ops"
	"github.com/zedlang/zedc/source"
	"github.com/zedlang/zedc/token"
)

// binOps maps a binary operator token to its ops.Kind.
var binOps = map[token.Kind]ops.Kind{
	token.PLUS:  ops.Add,
	token.MINUS: ops.Sub,
	token.STAR:  ops.Mul,
	token.SLASH: ops.Div,
	token.EQ:    ops.Eq,
	token.NE:    ops.Ne,
	token.LT:    ops.Lt,
	token.GT:    ops.Gt,
	token.LE:    ops.Le,
	token.GE:    ops.Ge,
	token.AND:   ops.LAnd,
	token.OR:    ops.LOr,
}

// parseExpr parses an expression using precedence climbing, stopping at
// the first operator whose binding power is below minPrec (spec §4.4's
// precedence table, low to high: || ; && ; == != ; < > <= >= ; + - ; * /).
func (fs *fileState) parseExpr(minPrec int) (ast.Expression, error) {
	left, err := fs.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		op, ok := binOps[fs.cur.Kind]
		if !ok {
			return left, nil
		}
		prec := ops.Precedence(op)
		if prec < minPrec {
			return left, nil
		}
		if err := fs.advance(); err != nil { // consume the operator
			return nil, err
		}
		// Every binary operator here is left-associative, so the
		// right-hand recursive call requires one more than this
		// operator's own precedence.
		right, err := fs.parseExpr(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{SourceSpan: left.Span(), Op: op, Left: left, Right: right}
	}
}

// parseUnary handles the grammar's single prefix operator: negation.
func (fs *fileState) parseUnary() (ast.Expression, error) {
	if fs.cur.Kind == token.MINUS {
		start := fs.cur.Span
		if err := fs.advance(); err != nil {
			return nil, err
		}
		operand, err := fs.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{SourceSpan: start, Op: ops.Neg, Operand: operand}, nil
	}
	return fs.parsePrimary()
}

// parsePrimary parses an integer/string literal, an identifier form
// (bare read, indexed read, or call), or a parenthesized expression.
func (fs *fileState) parsePrimary() (ast.Expression, error) {
	switch fs.cur.Kind {
	case token.INT:
		start := fs.cur.Span
		lit, base := fs.cur.Literal, 10
		if len(lit) > 2 && (lit[1] == 'x' || lit[1] == 'X') {
			lit, base = lit[2:], 16
		}
		val, err := strconv.ParseInt(lit, base, 64)
		if err != nil {
			return nil, source.NewDiagnostic(start, "invalid integer literal %q", fs.cur.Literal)
		}
		if err := fs.advance(); err != nil {
			return nil, err
		}
		return &ast.IntLit{SourceSpan: start, Value: val}, nil

	case token.STR:
		start := fs.cur.Span
		val := fs.cur.Literal
		if err := fs.advance(); err != nil {
			return nil, err
		}
		return &ast.StrLit{SourceSpan: start, Value: val}, nil

	case token.IDENT:
		start := fs.cur.Span
		name := fs.cur.Literal
		if err := fs.advance(); err != nil {
			return nil, err
		}
		return fs.parseIdentTail(start, name)

	case token.LPAREN:
		if err := fs.advance(); err != nil {
			return nil, err
		}
		expr, err := fs.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if err := fs.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil

	default:
		return nil, source.NewDiagnostic(fs.cur.Span, "unexpected token %q in expression", fs.cur.Kind)
	}
}

// parseIdentTail parses what follows a bare identifier already consumed
// at start: a call's argument list, an index expression, or neither (a
// plain variable read).
func (fs *fileState) parseIdentTail(start source.Span, name string) (ast.Expression, error) {
	switch fs.cur.Kind {
	case token.LPAREN:
		if err := fs.advance(); err != nil {
			return nil, err
		}
		var args []ast.Expression
		for fs.cur.Kind != token.RPAREN {
			arg, err := fs.parseExpr(0)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if fs.cur.Kind == token.COMMA {
				if err := fs.advance(); err != nil {
					return nil, err
				}
			}
		}
		if len(args) > 255 {
			return nil, source.NewDiagnostic(start, "call to %q passes %d arguments, over the 255 limit", name, len(args))
		}
		if err := fs.advance(); err != nil { // consume ')'
			return nil, err
		}
		return &ast.Call{SourceSpan: start, Name: name, Args: args}, nil

	case token.LBRACKET:
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
		return &ast.Index{SourceSpan: start, Name: name, IndexExpr: idx}, nil

	default:
		return &ast.Ident{SourceSpan: start, Name: name}, nil
	}
}
