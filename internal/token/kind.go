package token

// Kind is the category of a token.
type Kind uint8

const (
	Invalid Kind = iota
	EOF

	Ident
	IntLit
	FloatLit
	StringLit

	// keywords
	KwImport
	KwAs
	KwPublic
	KwPrivate
	KwIsolated
	KwFinal
	KwConst
	KwType
	KwAnnotation
	KwOn
	KwFunction
	KwReturns
	KwReturn
	KwRecord
	KwMap
	KwReadonly
	KwVar
	KwIf
	KwElse
	KwTrue
	KwFalse
	KwInt
	KwFloat
	KwString
	KwBoolean
	KwByte
	KwAny
	KwNever

	// punctuation
	LParen
	RParen
	LBrace
	RBrace
	LBracePipe // {|
	PipeRBrace // |}
	LBracket
	RBracket
	Lt
	Gt
	LtEq
	GtEq
	Semicolon
	Comma
	Colon
	Dot
	Ellipsis
	At
	Question
	Pipe
	Amp
	AndAnd
	OrOr
	Assign
	EqEq
	BangEq
	Plus
	Minus
	Star
	Slash
	Percent
	Bang
)

var kindNames = [...]string{
	Invalid: "invalid", EOF: "end of file",
	Ident: "identifier", IntLit: "integer literal", FloatLit: "float literal", StringLit: "string literal",
	KwImport: "import", KwAs: "as", KwPublic: "public", KwPrivate: "private", KwIsolated: "isolated", KwFinal: "final",
	KwConst: "const", KwType: "type", KwAnnotation: "annotation", KwOn: "on", KwFunction: "function",
	KwReturns: "returns", KwReturn: "return", KwRecord: "record", KwMap: "map", KwReadonly: "readonly",
	KwVar: "var", KwIf: "if", KwElse: "else", KwTrue: "true", KwFalse: "false",
	KwInt: "int", KwFloat: "float", KwString: "string", KwBoolean: "boolean", KwByte: "byte",
	KwAny: "any", KwNever: "never",
	LParen: "(", RParen: ")", LBrace: "{", RBrace: "}", LBracePipe: "{|", PipeRBrace: "|}",
	LBracket: "[", RBracket: "]", Lt: "<", Gt: ">", LtEq: "<=", GtEq: ">=",
	Semicolon: ";", Comma: ",", Colon: ":", Dot: ".", Ellipsis: "...", At: "@", Question: "?",
	Pipe: "|", Amp: "&", AndAnd: "&&", OrOr: "||", Assign: "=", EqEq: "==", BangEq: "!=",
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%", Bang: "!",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool { return k >= KwImport && k <= KwNever }

// IsBuiltinType reports keywords naming a builtin type descriptor.
func (k Kind) IsBuiltinType() bool {
	switch k {
	case KwInt, KwFloat, KwString, KwBoolean, KwByte, KwAny, KwNever, KwReadonly:
		return true
	}
	return false
}
