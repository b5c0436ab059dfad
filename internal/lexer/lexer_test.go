package lexer

import (
	"testing"

	"balsa/internal/diag"
	"balsa/internal/source"
	"balsa/internal/token"
)

func lex(t *testing.T, src string) ([]token.Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("test.bal", []byte(src)))
	bag := diag.NewBag(0)
	return New(f, Options{Reporter: diag.BagReporter{Bag: bag}}).All(), bag
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestLexConstDecl(t *testing.T) {
	toks, bag := lex(t, `public const map<string> m = {foo: "Value"};`)
	want := []token.Kind{
		token.KwPublic, token.KwConst, token.KwMap, token.Lt, token.KwString, token.Gt,
		token.Ident, token.Assign, token.LBrace, token.Ident, token.Colon, token.StringLit,
		token.RBrace, token.Semicolon, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("kinds = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
	if toks[11].Value != "Value" || toks[11].Text != `"Value"` {
		t.Fatalf("string token = %+v", toks[11])
	}
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
}

func TestLexRecordDelimiters(t *testing.T) {
	toks, _ := lex(t, `record {| int a; string...; |} x || y`)
	got := kinds(toks)
	want := []token.Kind{
		token.KwRecord, token.LBracePipe, token.KwInt, token.Ident, token.Semicolon,
		token.KwString, token.Ellipsis, token.Semicolon, token.PipeRBrace,
		token.Ident, token.OrOr, token.Ident, token.EOF,
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v (all %v)", i, got[i], want[i], got)
		}
	}
}

func TestLexNumbers(t *testing.T) {
	toks, bag := lex(t, `1000 12.3 0xFF 1e3 7`)
	want := []token.Kind{token.IntLit, token.FloatLit, token.IntLit, token.FloatLit, token.IntLit}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Fatalf("token %d (%s): got %v", i, toks[i].Text, toks[i].Kind)
		}
	}
	if bag.Len() != 0 {
		t.Fatalf("diagnostics: %v", bag.Items())
	}
	_, bag = lex(t, `12abc`)
	if bag.Len() != 1 || bag.Items()[0].Code != diag.LexBadNumber {
		t.Fatalf("expected malformed number, got %v", bag.Items())
	}
}

func TestLexDocTrivia(t *testing.T) {
	toks, _ := lex(t, "const a = 1;\n# Int\n// plain\n@constDecl\npublic const int b = 2;")
	var at token.Token
	for _, tok := range toks {
		if tok.Kind == token.At {
			at = tok
		}
	}
	lines := at.DocLines()
	if len(lines) != 1 || lines[0] != "Int" {
		t.Fatalf("doc lines = %q", lines)
	}
}

func TestLexStringEscapesAndErrors(t *testing.T) {
	toks, bag := lex(t, `"a\n\"b\u{48}"`)
	if toks[0].Value != "a\n\"bH" {
		t.Fatalf("value = %q", toks[0].Value)
	}
	if bag.Len() != 0 {
		t.Fatalf("diagnostics: %v", bag.Items())
	}
	_, bag = lex(t, "\"open\nconst")
	if bag.Len() != 1 || bag.Items()[0].Code != diag.LexUnterminatedString {
		t.Fatalf("expected unterminated string, got %v", bag.Items())
	}
	_, bag = lex(t, "$")
	if bag.Len() != 1 || bag.Items()[0].Code != diag.LexUnknownChar {
		t.Fatalf("expected unknown char, got %v", bag.Items())
	}
}

func TestLexNormalizesIdentifiers(t *testing.T) {
	// "é" as e + combining acute vs. precomposed
	toks, _ := lex(t, "cafe\u0301 caf\u00e9")
	if toks[0].Value != toks[1].Value {
		t.Fatalf("identifiers not normalized: %q vs %q", toks[0].Value, toks[1].Value)
	}
	if toks[0].Text == toks[1].Text {
		t.Fatalf("raw text must be preserved")
	}
}
