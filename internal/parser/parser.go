package parser

import (
	"context"
	"fmt"

	"balsa/internal/ast"
	"balsa/internal/diag"
	"balsa/internal/lexer"
	"balsa/internal/source"
	"balsa/internal/token"
)

type Options struct {
	Reporter diag.Reporter
}

type Result struct {
	File ast.FileID
}

type Parser struct {
	toks   []token.Token
	pos    int
	b      *ast.Builder
	file   *source.File
	opts   Options
	mute   int // >0 while speculating
	errors int
}

// ParseFile parses one unit. The returned file is always valid; malformed
// items are skipped after a diagnostic.
func ParseFile(ctx context.Context, lx *lexer.Lexer, b *ast.Builder, opts Options) Result {
	p := &Parser{toks: lx.All(), b: b, file: lx.File(), opts: opts}
	fileSpan := source.Span{File: p.file.ID, Start: 0, End: p.file.Len()}
	fileID := b.NewFile(p.file.ID, fileSpan)
	for !p.at(token.EOF) {
		if ctx.Err() != nil {
			break
		}
		start := p.pos
		if item, ok := p.parseItem(); ok {
			b.PushItem(fileID, item)
		}
		if p.pos == start {
			p.unexpected("declaration")
			p.bump()
		}
	}
	return Result{File: fileID}
}

func (p *Parser) peek() token.Token { return p.toks[p.pos] }

func (p *Parser) peekN(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *Parser) at(kinds ...token.Kind) bool { return p.peek().Is(kinds...) }

func (p *Parser) bump() token.Token {
	tok := p.toks[p.pos]
	if tok.Kind != token.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) eat(k token.Kind) (token.Token, bool) {
	if p.at(k) {
		return p.bump(), true
	}
	return token.Token{}, false
}

// expect consumes k or reports what was found instead.
func (p *Parser) expect(k token.Kind, code diag.Code, what string) (token.Token, bool) {
	if tok, ok := p.eat(k); ok {
		return tok, true
	}
	p.errorf(code, p.peek().Span, "expected %s, found %s", what, describe(p.peek()))
	return token.Token{}, false
}

func (p *Parser) expectSemi() {
	if _, ok := p.eat(token.Semicolon); ok {
		return
	}
	// позиция сразу после предыдущего токена читается лучше
	sp := p.peek().Span
	if p.pos > 0 {
		prev := p.toks[p.pos-1].Span
		sp = source.Span{File: prev.File, Start: prev.End, End: prev.End}
	}
	p.errorf(diag.SynExpectSemicolon, sp, "missing ';'")
}

func (p *Parser) unexpected(what string) {
	p.errorf(diag.SynUnexpectedToken, p.peek().Span, "unexpected %s, expected %s", describe(p.peek()), what)
}

func (p *Parser) errorf(code diag.Code, sp source.Span, format string, args ...any) {
	p.errors++
	if p.mute > 0 || p.opts.Reporter == nil {
		return
	}
	diag.ReportError(p.opts.Reporter, code, sp, fmt.Sprintf(format, args...)).Emit()
}

// speculate runs fn silently and rewinds when it reports errors or returns false.
func (p *Parser) speculate(fn func() bool) bool {
	mark, errs := p.pos, p.errors
	p.mute++
	ok := fn()
	p.mute--
	if !ok || p.errors != errs {
		p.pos, p.errors = mark, errs
		return false
	}
	return true
}

func (p *Parser) spanFrom(start source.Span) source.Span {
	if p.pos == 0 {
		return start
	}
	return start.Cover(p.toks[p.pos-1].Span)
}

func (p *Parser) intern(tok token.Token) source.StringID {
	return p.b.Strings.Intern(tok.Value)
}

// syncItem skips to a plausible declaration boundary.
func (p *Parser) syncItem() {
	depth := 0
	for !p.at(token.EOF) {
		switch p.peek().Kind {
		case token.LBrace, token.LBracePipe, token.LParen:
			depth++
		case token.RBrace, token.PipeRBrace, token.RParen:
			if depth > 0 {
				depth--
			}
			if depth == 0 {
				p.bump()
				p.eat(token.Semicolon)
				return
			}
		case token.Semicolon:
			if depth == 0 {
				p.bump()
				return
			}
		}
		p.bump()
	}
}

func describe(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of file"
	case token.Ident, token.IntLit, token.FloatLit, token.StringLit:
		return fmt.Sprintf("'%s'", tok.Text)
	}
	return fmt.Sprintf("'%s'", tok.Kind)
}
