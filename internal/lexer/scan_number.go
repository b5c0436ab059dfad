package lexer

import (
	"balsa/internal/diag"
	"balsa/internal/token"
)

// scanNumber handles 123, 0x1F, 12.3, 1e9 and 1.5E-3.
func (lx *Lexer) scanNumber() token.Token {
	c := &lx.cursor
	start := c.Off
	kind := token.IntLit
	if c.Peek() == '0' && (c.PeekAt(1) == 'x' || c.PeekAt(1) == 'X') {
		c.Bump()
		c.Bump()
		digits := 0
		for isHexDigit(c.Peek()) && !c.EOF() {
			c.Bump()
			digits++
		}
		sp := c.SpanFrom(start)
		if digits == 0 {
			lx.report(diag.LexBadNumber, sp, "hexadecimal literal has no digits")
		}
		return lx.numberToken(kind, start)
	}
	for isDigit(c.Peek()) && !c.EOF() {
		c.Bump()
	}
	if c.Peek() == '.' && isDigit(c.PeekAt(1)) {
		kind = token.FloatLit
		c.Bump()
		for isDigit(c.Peek()) && !c.EOF() {
			c.Bump()
		}
	}
	if e := c.Peek(); e == 'e' || e == 'E' {
		next := c.PeekAt(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(c.PeekAt(2))) {
			kind = token.FloatLit
			c.Bump()
			if next == '+' || next == '-' {
				c.Bump()
			}
			for isDigit(c.Peek()) && !c.EOF() {
				c.Bump()
			}
		}
	}
	if isIdentStart(c.Peek()) {
		for isIdentContinue(c.Peek()) && !c.EOF() {
			c.Bump()
		}
		lx.report(diag.LexBadNumber, c.SpanFrom(start), "malformed number literal")
	}
	return lx.numberToken(kind, start)
}

func (lx *Lexer) numberToken(kind token.Kind, start uint32) token.Token {
	sp := lx.cursor.SpanFrom(start)
	text := string(lx.file.Content[sp.Start:sp.End])
	return token.Token{Kind: kind, Span: sp, Text: text, Value: text}
}
