package lexer

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"balsa/internal/diag"
	"balsa/internal/source"
	"balsa/internal/token"
)

type Options struct {
	Reporter diag.Reporter
}

type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	hold   []token.Trivia
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{file: file, cursor: NewCursor(file), opts: opts}
}

// All scans the whole file. The last token is always EOF.
func (lx *Lexer) All() []token.Token {
	out := make([]token.Token, 0, lx.file.Len()/4+1)
	for {
		tok := lx.Next()
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out
		}
	}
}

// Next returns the next significant token with its leading trivia.
func (lx *Lexer) Next() token.Token {
	lx.collectTrivia()
	leading := lx.hold
	lx.hold = nil
	if lx.cursor.EOF() {
		sp := lx.cursor.SpanFrom(lx.cursor.Off)
		return token.Token{Kind: token.EOF, Span: sp, Leading: leading}
	}

	start := lx.cursor.Off
	ch := lx.cursor.Peek()
	var tok token.Token
	switch {
	case isIdentStart(ch):
		tok = lx.scanIdent()
	case ch >= utf8.RuneSelf:
		r, _ := utf8.DecodeRune(lx.file.Content[start:])
		if unicode.IsLetter(r) {
			tok = lx.scanIdent()
		} else {
			lx.skipRune()
			tok = lx.invalid(start, "unknown character")
		}
	case isDigit(ch):
		tok = lx.scanNumber()
	case ch == '"':
		tok = lx.scanString()
	default:
		tok = lx.scanPunct()
	}
	tok.Leading = leading
	return tok
}

func (lx *Lexer) collectTrivia() {
	for !lx.cursor.EOF() {
		start := lx.cursor.Off
		ch := lx.cursor.Peek()
		switch {
		case ch == '\n':
			lx.cursor.Bump()
			lx.push(token.TriviaNewline, start)
		case ch == ' ' || ch == '\t' || ch == '\r':
			for c := lx.cursor.Peek(); (c == ' ' || c == '\t' || c == '\r') && !lx.cursor.EOF(); c = lx.cursor.Peek() {
				lx.cursor.Bump()
			}
			lx.push(token.TriviaSpace, start)
		case ch == '/' && lx.cursor.PeekAt(1) == '/':
			lx.skipLine()
			lx.push(token.TriviaLineComment, start)
		case ch == '#':
			lx.skipLine()
			lx.push(token.TriviaDocComment, start)
		default:
			return
		}
	}
}

func (lx *Lexer) push(kind token.TriviaKind, start uint32) {
	sp := lx.cursor.SpanFrom(start)
	lx.hold = append(lx.hold, token.Trivia{Kind: kind, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])})
}

func (lx *Lexer) skipLine() {
	for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
		lx.cursor.Bump()
	}
}

func (lx *Lexer) skipRune() {
	_, n := utf8.DecodeRune(lx.file.Content[lx.cursor.Off:])
	lx.cursor.Off += uint32(n) // #nosec G115 -- n <= 4
}

func (lx *Lexer) scanIdent() token.Token {
	start := lx.cursor.Off
	ascii := true
	for !lx.cursor.EOF() {
		ch := lx.cursor.Peek()
		if isIdentContinue(ch) {
			lx.cursor.Bump()
			continue
		}
		if ch < utf8.RuneSelf {
			break
		}
		r, _ := utf8.DecodeRune(lx.file.Content[lx.cursor.Off:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.Is(unicode.Mn, r) {
			break
		}
		ascii = false
		lx.skipRune()
	}
	sp := lx.cursor.SpanFrom(start)
	text := string(lx.file.Content[sp.Start:sp.End])
	if kw, ok := token.LookupKeyword(text); ok {
		return token.Token{Kind: kw, Span: sp, Text: text, Value: text}
	}
	value := text
	if !ascii {
		// один и тот же идентификатор может прийти в разных нормальных формах
		value = norm.NFC.String(text)
	}
	return token.Token{Kind: token.Ident, Span: sp, Text: text, Value: value}
}

func (lx *Lexer) invalid(start uint32, msg string) token.Token {
	sp := lx.cursor.SpanFrom(start)
	lx.report(diag.LexUnknownChar, sp, msg)
	return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

func (lx *Lexer) report(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter == nil {
		return
	}
	diag.ReportError(lx.opts.Reporter, code, sp, msg).Emit()
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentContinue(b byte) bool { return isIdentStart(b) || isDigit(b) }

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func (lx *Lexer) File() *source.File { return lx.file }
