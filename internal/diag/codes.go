package diag

import "fmt"

// Code is a stable numeric identifier. Ranges: 1xxx lexer, 2xxx parser,
// 3xxx semantic analysis, 4xxx project graph.
type Code uint16

const (
	UnknownCode Code = 0

	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexBadNumber          Code = 1003
	LexBadEscape          Code = 1004

	SynUnexpectedToken    Code = 2001
	SynExpectSemicolon    Code = 2002
	SynExpectIdentifier   Code = 2003
	SynExpectType         Code = 2004
	SynExpectExpression   Code = 2005
	SynUnclosedDelimiter  Code = 2006
	SynMissingConstInit   Code = 2007
	SynModifierNotAllowed Code = 2008

	SemaRedeclared        Code = 3001
	SemaUndefinedSymbol   Code = 3002
	SemaIncompatibleTypes Code = 3003
	SemaUnknownType       Code = 3004
	SemaNotConstant       Code = 3005
	SemaConstCycle        Code = 3006
	SemaConstFold         Code = 3007
	SemaIntersectConflict Code = 3008
	SemaFnPointerCall     Code = 3009
	SemaNotCallable       Code = 3010
	SemaArgCount          Code = 3011
	SemaUndefinedField    Code = 3012
	SemaNotAnnotation     Code = 3013
	SemaAttachPoint       Code = 3014
	SemaDuplicateKey      Code = 3015
	SemaNotPublic         Code = 3016
	SemaTypeCycle         Code = 3017
	SemaInvalidOperands   Code = 3018
	SemaAssignFinal       Code = 3019
	SemaNotAValue         Code = 3020
	SemaUnknownUnit       Code = 3021

	ProjDuplicateUnit    Code = 4001
	ProjMissingUnit      Code = 4002
	ProjSelfImport       Code = 4003
	ProjImportCycle      Code = 4004
	ProjDependencyFailed Code = 4005
)

var codeTitles = map[Code]string{
	UnknownCode:           "unknown",
	LexUnknownChar:        "unknown character",
	LexUnterminatedString: "unterminated string literal",
	LexBadNumber:          "malformed number literal",
	LexBadEscape:          "invalid escape sequence",

	SynUnexpectedToken:    "unexpected token",
	SynExpectSemicolon:    "missing ';'",
	SynExpectIdentifier:   "expected identifier",
	SynExpectType:         "expected type descriptor",
	SynExpectExpression:   "expected expression",
	SynUnclosedDelimiter:  "unclosed delimiter",
	SynMissingConstInit:   "missing constant initializer",
	SynModifierNotAllowed: "modifier not allowed here",

	SemaRedeclared:        "redeclared symbol",
	SemaUndefinedSymbol:   "undefined symbol",
	SemaIncompatibleTypes: "incompatible types",
	SemaUnknownType:       "unknown type",
	SemaNotConstant:       "not a constant expression",
	SemaConstCycle:        "cyclic constant initializer",
	SemaConstFold:         "constant evaluation failed",
	SemaIntersectConflict: "invalid intersection",
	SemaFnPointerCall:     "uncallable function pointer",
	SemaNotCallable:       "not a function",
	SemaArgCount:          "argument count mismatch",
	SemaUndefinedField:    "undefined field",
	SemaNotAnnotation:     "undefined annotation",
	SemaAttachPoint:       "annotation not allowed here",
	SemaDuplicateKey:      "duplicate key",
	SemaNotPublic:         "symbol is not public",
	SemaTypeCycle:         "cyclic type reference",
	SemaInvalidOperands:   "invalid operands",
	SemaAssignFinal:       "assignment to final",
	SemaNotAValue:         "not a value",
	SemaUnknownUnit:       "unknown unit",

	ProjDuplicateUnit:    "duplicate unit",
	ProjMissingUnit:      "missing unit",
	ProjSelfImport:       "unit imports itself",
	ProjImportCycle:      "import cycle",
	ProjDependencyFailed: "dependency failed",
}

// ID returns the short code such as SEM3003.
func (c Code) ID() string {
	switch {
	case c >= 1000 && c < 2000:
		return fmt.Sprintf("LEX%04d", uint16(c))
	case c >= 2000 && c < 3000:
		return fmt.Sprintf("SYN%04d", uint16(c))
	case c >= 3000 && c < 4000:
		return fmt.Sprintf("SEM%04d", uint16(c))
	case c >= 4000 && c < 5000:
		return fmt.Sprintf("PRJ%04d", uint16(c))
	}
	return fmt.Sprintf("E%04d", uint16(c))
}

func (c Code) String() string {
	if t, ok := codeTitles[c]; ok {
		return t
	}
	return c.ID()
}
