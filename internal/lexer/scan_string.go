package lexer

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"balsa/internal/diag"
	"balsa/internal/token"
)


// scanString reads a double-quoted literal and decodes its escapes.
func (lx *Lexer) scanString() token.Token {
	c := &lx.cursor
	start := c.Off
	c.Bump()
	var sb strings.Builder
	closed := false
	for !c.EOF() {
		ch := c.Peek()
		if ch == '"' {
			c.Bump()
			closed = true
			break
		}
		if ch == '\n' {
			break
		}
		if ch != '\\' {
			if ch >= utf8.RuneSelf {
				r, n := utf8.DecodeRune(lx.file.Content[c.Off:])
				sb.WriteRune(r)
				c.Off += uint32(n) // #nosec G115
				continue
			}
			sb.WriteByte(c.Bump())
			continue
		}
		escStart := c.Off
		c.Bump()
		switch esc := c.Bump(); esc {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '"', '\\':
			sb.WriteByte(esc)
		case 'u':
			if !lx.scanUnicodeEscape(&sb) {
				lx.report(diag.LexBadEscape, c.SpanFrom(escStart), "invalid unicode escape")
			}
		default:
			lx.report(diag.LexBadEscape, c.SpanFrom(escStart), "invalid escape sequence")
		}
	}
	sp := c.SpanFrom(start)
	if !closed {
		lx.report(diag.LexUnterminatedString, sp, "unterminated string literal")
	}
	return token.Token{Kind: token.StringLit, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End]), Value: sb.String()}
}

// scanUnicodeEscape handles \u{1F600} after the 'u' was consumed.
func (lx *Lexer) scanUnicodeEscape(sb *strings.Builder) bool {
	c := &lx.cursor
	if !c.Eat('{') {
		return false
	}
	start := c.Off
	for isHexDigit(c.Peek()) && !c.EOF() {
		c.Bump()
	}
	digits := string(lx.file.Content[start:c.Off])
	if !c.Eat('}') || digits == "" {
		return false
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil || !utf8.ValidRune(rune(v)) {
		return false
	}
	sb.WriteRune(rune(v))
	return true
}
