package token

import "balsa/internal/source"

// TriviaKind classifies non-significant text attached to tokens.
type TriviaKind uint8

const (
	TriviaSpace TriviaKind = iota
	TriviaNewline
	TriviaLineComment // // ...
	TriviaDocComment  // # ...
)

type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string
}

type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string // raw source text
	Value   string // decoded value of string literals, NFC text of identifiers
	Leading []Trivia
}

func (t Token) Is(kinds ...Kind) bool {
	for _, k := range kinds {
		if t.Kind == k {
			return true
		}
	}
	return false
}

// DocLines returns the text of leading '#' comments with the marker removed.
func (t Token) DocLines() []string {
	var out []string
	for _, tr := range t.Leading {
		if tr.Kind != TriviaDocComment {
			continue
		}
		line := tr.Text[1:]
		if len(line) > 0 && line[0] == ' ' {
			line = line[1:]
		}
		out = append(out, line)
	}
	return out
}
