package lexer

import "balsa/internal/token"

func (lx *Lexer) scanPunct() token.Token {
	c := &lx.cursor
	start := c.Off
	ch := c.Bump()
	kind := token.Invalid
	switch ch {
	case '(':
		kind = token.LParen
	case ')':
		kind = token.RParen
	case '{':
		kind = token.LBrace
		if c.Eat('|') {
			kind = token.LBracePipe
		}
	case '}':
		kind = token.RBrace
	case '[':
		kind = token.LBracket
	case ']':
		kind = token.RBracket
	case ';':
		kind = token.Semicolon
	case ',':
		kind = token.Comma
	case ':':
		kind = token.Colon
	case '.':
		kind = token.Dot
		if c.Peek() == '.' && c.PeekAt(1) == '.' {
			c.Bump()
			c.Bump()
			kind = token.Ellipsis
		}
	case '@':
		kind = token.At
	case '?':
		kind = token.Question
	case '|':
		switch {
		case c.Eat('}'):
			kind = token.PipeRBrace
		case c.Eat('|'):
			kind = token.OrOr
		default:
			kind = token.Pipe
		}
	case '&':
		kind = token.Amp
		if c.Eat('&') {
			kind = token.AndAnd
		}
	case '<':
		kind = token.Lt
		if c.Eat('=') {
			kind = token.LtEq
		}
	case '>':
		kind = token.Gt
		if c.Eat('=') {
			kind = token.GtEq
		}
	case '=':
		kind = token.Assign
		if c.Eat('=') {
			kind = token.EqEq
		}
	case '!':
		kind = token.Bang
		if c.Eat('=') {
			kind = token.BangEq
		}
	case '+':
		kind = token.Plus
	case '-':
		kind = token.Minus
	case '*':
		kind = token.Star
	case '/':
		kind = token.Slash
	case '%':
		kind = token.Percent
	}
	if kind == token.Invalid {
		return lx.invalid(start, "unknown character")
	}
	sp := c.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}
