package parser

import (
	"balsa/internal/ast"
	"balsa/internal/diag"
	"balsa/internal/token"
)

func (p *Parser) parseBlock() ast.StmtID {
	open, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "'{'")
	if !ok {
		p.syncItem()
		return ast.NoStmtID
	}
	st := ast.Stmt{Kind: ast.StmtBlock}
	for !p.at(token.RBrace, token.EOF) {
		before := p.pos
		if id := p.parseStmt(); id.IsValid() {
			st.Stmts = append(st.Stmts, id)
		}
		if p.pos == before {
			p.unexpected("statement")
			p.bump()
		}
	}
	p.expect(token.RBrace, diag.SynUnclosedDelimiter, "'}'")
	st.Span = p.spanFrom(open.Span)
	return p.b.Stmts.New(st)
}

func (p *Parser) parseStmt() ast.StmtID {
	tok := p.peek()
	switch tok.Kind {
	case token.LBrace:
		return p.parseBlock()
	case token.KwIf:
		return p.parseIf()
	case token.KwReturn:
		p.bump()
		st := ast.Stmt{Kind: ast.StmtReturn}
		if !p.at(token.Semicolon, token.RBrace) {
			st.Value = p.parseExpr()
		}
		p.expectSemi()
		st.Span = p.spanFrom(tok.Span)
		return p.b.Stmts.New(st)
	case token.KwVar, token.KwFinal:
		return p.parseVarStmt()
	}

	var decl ast.StmtID
	if p.canStartType() && p.speculate(func() bool {
		decl = p.parseVarStmt()
		return decl.IsValid()
	}) {
		return decl
	}

	x := p.parseExpr()
	st := ast.Stmt{Kind: ast.StmtExpr, Value: x}
	if _, ok := p.eat(token.Assign); ok {
		st.Kind, st.Target = ast.StmtAssign, x
		st.Value = p.parseExpr()
	}
	p.expectSemi()
	st.Span = p.spanFrom(tok.Span)
	return p.b.Stmts.New(st)
}

// parseVarStmt: `var x = e;`, `[final] T x [= e];`.
func (p *Parser) parseVarStmt() ast.StmtID {
	start := p.peek().Span
	st := ast.Stmt{Kind: ast.StmtVar}
	if _, ok := p.eat(token.KwFinal); ok {
		st.Final = true
	}
	if _, ok := p.eat(token.KwVar); !ok {
		st.Type = p.parseType()
	}
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "variable name")
	if !ok {
		return ast.NoStmtID
	}
	st.Name, st.NameSpan = p.intern(name), name.Span
	if !p.at(token.Assign, token.Semicolon) {
		p.errorf(diag.SynUnexpectedToken, p.peek().Span, "expected '=' or ';', found %s", describe(p.peek()))
		return ast.NoStmtID
	}
	if _, ok := p.eat(token.Assign); ok {
		st.Value = p.parseExpr()
	} else if !st.Type.IsValid() {
		p.errorf(diag.SynExpectExpression, name.Span, "'var' declaration of '%s' needs an initializer", name.Value)
	}
	p.expectSemi()
	st.Span = p.spanFrom(start)
	return p.b.Stmts.New(st)
}

func (p *Parser) parseIf() ast.StmtID {
	kw := p.bump()
	st := ast.Stmt{Kind: ast.StmtIf, Value: p.parseExpr()}
	st.Then = p.parseBlock()
	if _, ok := p.eat(token.KwElse); ok {
		if p.at(token.KwIf) {
			st.Else = p.parseIf()
		} else {
			st.Else = p.parseBlock()
		}
	}
	st.Span = p.spanFrom(kw.Span)
	return p.b.Stmts.New(st)
}
