package parser

import (
	"balsa/internal/ast"
	"balsa/internal/diag"
	"balsa/internal/source"
	"balsa/internal/token"
)

func (p *Parser) canStartType() bool {
	tok := p.peek()
	if tok.Kind.IsBuiltinType() {
		return true
	}
	switch tok.Kind {
	case token.Ident, token.KwMap, token.KwRecord, token.KwFunction, token.KwIsolated, token.LParen,
		token.IntLit, token.FloatLit, token.StringLit, token.KwTrue, token.KwFalse, token.Minus:
		return true
	}
	return false
}

// parseType: union < intersection < postfix '?' < primary.
func (p *Parser) parseType() ast.TypeExprID {
	first := p.parseIntersectionType()
	if !p.at(token.Pipe) {
		return first
	}
	members := []ast.TypeExprID{first}
	for {
		if _, ok := p.eat(token.Pipe); !ok {
			break
		}
		members = append(members, p.parseIntersectionType())
	}
	return p.b.Types.New(ast.TypeExpr{Kind: ast.TypeExprUnion, Span: p.typeSpan(members), Members: members})
}

func (p *Parser) parseIntersectionType() ast.TypeExprID {
	first := p.parsePostfixType()
	if !p.at(token.Amp) {
		return first
	}
	members := []ast.TypeExprID{first}
	for {
		if _, ok := p.eat(token.Amp); !ok {
			break
		}
		members = append(members, p.parsePostfixType())
	}
	return p.b.Types.New(ast.TypeExpr{Kind: ast.TypeExprIntersection, Span: p.typeSpan(members), Members: members})
}

func (p *Parser) typeSpan(members []ast.TypeExprID) (sp source.Span) {
	for i, m := range members {
		te := p.b.Types.Get(m)
		if te == nil {
			continue
		}
		if i == 0 {
			sp = te.Span
			continue
		}
		sp = sp.Cover(te.Span)
	}
	return sp
}

func (p *Parser) parsePostfixType() ast.TypeExprID {
	id := p.parsePrimaryType()
	for p.at(token.Question) {
		q := p.bump()
		start := q.Span
		if te := p.b.Types.Get(id); te != nil {
			start = te.Span
		}
		id = p.b.Types.New(ast.TypeExpr{Kind: ast.TypeExprOptional, Span: start.Cover(q.Span), Elem: id})
	}
	return id
}

func (p *Parser) parsePrimaryType() ast.TypeExprID {
	tok := p.peek()
	switch {
	case tok.Kind.IsBuiltinType():
		p.bump()
		return p.b.Types.New(ast.TypeExpr{Kind: ast.TypeExprBuiltin, Span: tok.Span, Builtin: tok.Text})
	case tok.Is(token.IntLit, token.FloatLit, token.StringLit, token.KwTrue, token.KwFalse, token.Minus):
		lit := p.parseUnary()
		sp := p.b.Exprs.Get(lit).Span
		return p.b.Types.New(ast.TypeExpr{Kind: ast.TypeExprSingleton, Span: sp, Literal: lit})
	}
	switch tok.Kind {
	case token.LParen:
		p.bump()
		if close, ok := p.eat(token.RParen); ok {
			return p.b.Types.New(ast.TypeExpr{Kind: ast.TypeExprNil, Span: tok.Span.Cover(close.Span)})
		}
		inner := p.parseType()
		p.expect(token.RParen, diag.SynUnclosedDelimiter, "')'")
		return p.b.Types.New(ast.TypeExpr{Kind: ast.TypeExprGroup, Span: p.spanFrom(tok.Span), Elem: inner})
	case token.KwMap:
		p.bump()
		p.expect(token.Lt, diag.SynUnexpectedToken, "'<'")
		elem := p.parseType()
		p.expect(token.Gt, diag.SynUnclosedDelimiter, "'>'")
		return p.b.Types.New(ast.TypeExpr{Kind: ast.TypeExprMap, Span: p.spanFrom(tok.Span), Elem: elem})
	case token.KwRecord:
		return p.parseRecordType()
	case token.KwFunction, token.KwIsolated:
		return p.parseFunctionType()
	case token.Ident:
		p.bump()
		te := ast.TypeExpr{Kind: ast.TypeExprName, Name: p.intern(tok), NameSpan: tok.Span}
		if p.at(token.Colon) && p.peekN(1).Kind == token.Ident {
			p.bump()
			name := p.bump()
			te.Module = te.Name
			te.Name, te.NameSpan = p.intern(name), name.Span
		}
		te.Span = p.spanFrom(tok.Span)
		return p.b.Types.New(te)
	}
	p.errorf(diag.SynExpectType, tok.Span, "expected type descriptor, found %s", describe(tok))
	return p.b.Types.New(ast.TypeExpr{Kind: ast.TypeExprInvalid, Span: tok.Span})
}

func (p *Parser) parseRecordType() ast.TypeExprID {
	kw := p.bump()
	te := ast.TypeExpr{Kind: ast.TypeExprRecord}
	closing := token.RBrace
	switch {
	case p.at(token.LBracePipe):
		te.Closed = true
		closing = token.PipeRBrace
	case p.at(token.LBrace):
	default:
		p.errorf(diag.SynUnexpectedToken, p.peek().Span, "expected '{' or '{|' after 'record', found %s", describe(p.peek()))
		te.Span = kw.Span
		return p.b.Types.New(te)
	}
	p.bump()
	for !p.at(closing, token.EOF) {
		before := p.pos
		typ := p.parseType()
		if _, ok := p.eat(token.Ellipsis); ok {
			te.Rest = typ
			p.expectSemi()
			continue
		}
		name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "field name")
		if !ok {
			if p.pos == before {
				p.bump()
			}
			continue
		}
		field := ast.RecordFieldExpr{Name: p.intern(name), NameSpan: name.Span, Type: typ}
		if _, ok := p.eat(token.Question); ok {
			field.Optional = true
		}
		te.Fields = append(te.Fields, field)
		p.expectSemi()
	}
	p.expect(closing, diag.SynUnclosedDelimiter, "'"+closing.String()+"'")
	te.Span = p.spanFrom(kw.Span)
	return p.b.Types.New(te)
}

// parseFunctionType: `function`, `isolated function`, `function (int, string) returns T`.
func (p *Parser) parseFunctionType() ast.TypeExprID {
	start := p.peek().Span
	te := ast.TypeExpr{Kind: ast.TypeExprFunction}
	if _, ok := p.eat(token.KwIsolated); ok {
		te.Isolated = true
	}
	if _, ok := p.expect(token.KwFunction, diag.SynExpectType, "'function'"); !ok {
		te.Span = start
		return p.b.Types.New(te)
	}
	if !p.at(token.LParen) {
		te.AnyFunction = true
		te.Span = p.spanFrom(start)
		return p.b.Types.New(te)
	}
	p.bump()
	for !p.at(token.RParen, token.EOF) {
		te.Params = append(te.Params, p.parseType())
		p.eat(token.Ident) // parameter names are optional in type position
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}
	p.expect(token.RParen, diag.SynUnclosedDelimiter, "')'")
	if _, ok := p.eat(token.KwReturns); ok {
		te.Result = p.parseType()
	}
	te.Span = p.spanFrom(start)
	return p.b.Types.New(te)
}
