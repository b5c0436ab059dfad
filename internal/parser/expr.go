package parser

import (
	"balsa/internal/ast"
	"balsa/internal/diag"
	"balsa/internal/source"
	"balsa/internal/token"
)

func binaryPrec(k token.Kind) int {
	switch k {
	case token.OrOr:
		return 1
	case token.AndAnd:
		return 2
	case token.EqEq, token.BangEq:
		return 3
	case token.Lt, token.Gt, token.LtEq, token.GtEq:
		return 4
	case token.Plus, token.Minus:
		return 5
	case token.Star, token.Slash, token.Percent:
		return 6
	}
	return 0
}

func (p *Parser) parseExpr() ast.ExprID {
	return p.parseBinary(1)
}

func (p *Parser) parseBinary(minPrec int) ast.ExprID {
	left := p.parseUnary()
	for {
		op := p.peek()
		prec := binaryPrec(op.Kind)
		if prec == 0 || prec < minPrec {
			return left
		}
		p.bump()
		right := p.parseBinary(prec + 1)
		sp := p.exprSpan(left).Cover(p.exprSpan(right))
		left = p.b.Exprs.New(ast.Expr{Kind: ast.ExprBinary, Span: sp, Op: op.Kind, X: left, Y: right})
	}
}

func (p *Parser) parseUnary() ast.ExprID {
	if p.at(token.Minus, token.Plus, token.Bang) {
		op := p.bump()
		x := p.parseUnary()
		return p.b.Exprs.New(ast.Expr{Kind: ast.ExprUnary, Span: op.Span.Cover(p.exprSpan(x)), Op: op.Kind, X: x})
	}
	return p.parsePostfix(p.parsePrimary())
}

func (p *Parser) parsePostfix(x ast.ExprID) ast.ExprID {
	for {
		switch p.peek().Kind {
		case token.LParen:
			p.bump()
			var args []ast.ExprID
			for !p.at(token.RParen, token.EOF) {
				args = append(args, p.parseExpr())
				if _, ok := p.eat(token.Comma); !ok {
					break
				}
			}
			p.expect(token.RParen, diag.SynUnclosedDelimiter, "')'")
			x = p.b.Exprs.New(ast.Expr{Kind: ast.ExprCall, Span: p.spanFrom(p.exprSpan(x)), X: x, Args: args})
		case token.Dot:
			p.bump()
			name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "field name")
			if !ok {
				return x
			}
			x = p.b.Exprs.New(ast.Expr{
				Kind: ast.ExprField, Span: p.spanFrom(p.exprSpan(x)), X: x,
				Name: p.intern(name), NameSpan: name.Span,
			})
		default:
			return x
		}
	}
}

func (p *Parser) parsePrimary() ast.ExprID {
	tok := p.peek()
	switch tok.Kind {
	case token.IntLit:
		p.bump()
		return p.b.Exprs.New(ast.Expr{Kind: ast.ExprIntLit, Span: tok.Span, Text: tok.Text})
	case token.FloatLit:
		p.bump()
		return p.b.Exprs.New(ast.Expr{Kind: ast.ExprFloatLit, Span: tok.Span, Text: tok.Text})
	case token.StringLit:
		p.bump()
		return p.b.Exprs.New(ast.Expr{Kind: ast.ExprStringLit, Span: tok.Span, Text: tok.Value})
	case token.KwTrue, token.KwFalse:
		p.bump()
		return p.b.Exprs.New(ast.Expr{Kind: ast.ExprBoolLit, Span: tok.Span, Text: tok.Text})
	case token.LParen:
		p.bump()
		if close, ok := p.eat(token.RParen); ok {
			return p.b.Exprs.New(ast.Expr{Kind: ast.ExprNilLit, Span: tok.Span.Cover(close.Span)})
		}
		inner := p.parseExpr()
		p.expect(token.RParen, diag.SynUnclosedDelimiter, "')'")
		return p.b.Exprs.New(ast.Expr{Kind: ast.ExprGroup, Span: p.spanFrom(tok.Span), X: inner})
	case token.LBrace:
		return p.parseMapping()
	case token.Ident:
		p.bump()
		x := ast.Expr{Kind: ast.ExprIdent, Name: p.intern(tok), NameSpan: tok.Span}
		if p.at(token.Colon) && p.peekN(1).Kind == token.Ident {
			p.bump()
			name := p.bump()
			x.Module = x.Name
			x.Name, x.NameSpan = p.intern(name), name.Span
		}
		x.Span = p.spanFrom(tok.Span)
		return p.b.Exprs.New(x)
	}
	p.errorf(diag.SynExpectExpression, tok.Span, "expected expression, found %s", describe(tok))
	return p.b.Exprs.New(ast.Expr{Kind: ast.ExprInvalid, Span: tok.Span})
}

// parseMapping parses `{key: value, "key": value}`.
func (p *Parser) parseMapping() ast.ExprID {
	open, _ := p.expect(token.LBrace, diag.SynUnexpectedToken, "'{'")
	x := ast.Expr{Kind: ast.ExprMapping}
fields:
	for !p.at(token.RBrace, token.EOF) {
		key := p.peek()
		var field ast.MappingField
		switch key.Kind {
		case token.Ident, token.StringLit:
			field.Key = key.Value
		default:
			p.errorf(diag.SynExpectIdentifier, key.Span, "expected field name, found %s", describe(key))
			p.skipMappingField()
			if _, ok := p.eat(token.Comma); !ok {
				break fields
			}
			continue
		}
		p.bump()
		field.KeySpan = key.Span
		if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "':'"); ok {
			field.Value = p.parseExpr()
		}
		x.Fields = append(x.Fields, field)
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}
	p.expect(token.RBrace, diag.SynUnclosedDelimiter, "'}'")
	x.Span = p.spanFrom(open.Span)
	return p.b.Exprs.New(x)
}

func (p *Parser) skipMappingField() {
	depth := 0
	for !p.at(token.EOF) {
		switch p.peek().Kind {
		case token.LBrace, token.LParen:
			depth++
		case token.RBrace, token.RParen:
			if depth == 0 {
				return
			}
			depth--
		case token.Comma:
			if depth == 0 {
				return
			}
		}
		p.bump()
	}
}

func (p *Parser) exprSpan(id ast.ExprID) (sp source.Span) {
	if x := p.b.Exprs.Get(id); x != nil {
		sp = x.Span
	}
	return sp
}
