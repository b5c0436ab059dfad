package token

var keywords = map[string]Kind{
	"import": KwImport, "as": KwAs, "public": KwPublic, "private": KwPrivate, "isolated": KwIsolated, "final": KwFinal,
	"const": KwConst, "type": KwType, "annotation": KwAnnotation, "on": KwOn,
	"function": KwFunction, "returns": KwReturns, "return": KwReturn, "record": KwRecord,
	"map": KwMap, "readonly": KwReadonly, "var": KwVar, "if": KwIf, "else": KwElse,
	"true": KwTrue, "false": KwFalse, "int": KwInt, "float": KwFloat, "string": KwString,
	"boolean": KwBoolean, "byte": KwByte, "any": KwAny, "never": KwNever,
}

// LookupKeyword maps identifier text to a keyword kind.
func LookupKeyword(s string) (Kind, bool) {
	k, ok := keywords[s]
	return k, ok
}
