package symbols

import (
	"balsa/internal/ast"
	"balsa/internal/consts"
	"balsa/internal/source"
	"balsa/internal/types"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolModule
	SymbolFunction
	SymbolVariable
	SymbolConstant
	SymbolTypeDef
	SymbolAnnotation
	SymbolParameter
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolModule:
		return "MODULE"
	case SymbolFunction:
		return "FUNCTION"
	case SymbolVariable:
		return "VARIABLE"
	case SymbolConstant:
		return "CONSTANT"
	case SymbolTypeDef:
		return "TYPE_DEFINITION"
	case SymbolAnnotation:
		return "ANNOTATION"
	case SymbolParameter:
		return "PARAMETER"
	default:
		return "INVALID"
	}
}

// Qualifiers is the set of declaration qualifiers.
type Qualifiers uint16

const (
	QualPublic Qualifiers = 1 << iota
	QualPrivate
	QualIsolated
	QualReadonly
	QualFinal
	QualConst
)

func (q Qualifiers) Has(x Qualifiers) bool { return q&x == x }

// Strings returns the qualifier keywords in canonical order.
func (q Qualifiers) Strings() []string {
	if q == 0 {
		return nil
	}
	names := [...]struct {
		q    Qualifiers
		name string
	}{
		{QualPublic, "PUBLIC"},
		{QualPrivate, "PRIVATE"},
		{QualIsolated, "ISOLATED"},
		{QualReadonly, "READONLY"},
		{QualFinal, "FINAL"},
		{QualConst, "CONSTANT"},
	}
	out := make([]string, 0, 2)
	for _, n := range names {
		if q&n.q != 0 {
			out = append(out, n.name)
		}
	}
	return out
}

// SymbolDecl points at the syntax a symbol came from.
type SymbolDecl struct {
	File  source.FileID
	Item  ast.ItemID
	Stmt  ast.StmtID
	Param int // index into the function's parameters, -1 otherwise
}

// Attachment is one `@annot value?` on a declaration.
type Attachment struct {
	Annotation Ref // invalid when the name did not resolve
	Name       string
	Value      *consts.Value
	IsConst    bool
	Span       source.Span
}

// ConstInfo holds the folded value of a constant. Value is nil when the
// initializer is missing or could not be folded.
type ConstInfo struct {
	Value    *consts.Value
	Declared types.TypeID
}

// Resolved returns the source form of the folded value.
func (c *ConstInfo) Resolved() (string, bool) {
	if c == nil || c.Value == nil {
		return "", false
	}
	return c.Value.String(), true
}

// AnnotInfo describes an annotation declaration.
type AnnotInfo struct {
	Type   types.TypeID // NoTypeID for annotations without a value
	Points []string
}

// Symbol is a tagged union over declaration kinds: the common block is shared
// and Const/Annot/Import carry the kind-specific payload.
type Symbol struct {
	Name        source.StringID
	Kind        SymbolKind
	Scope       ScopeID
	Span        source.Span // the name
	DeclSpan    source.Span // whole declaration
	Quals       Qualifiers
	Doc         Documentation
	Attachments []Attachment
	Type        types.TypeID
	Decl        SymbolDecl

	Const  *ConstInfo
	Annot  *AnnotInfo
	Import string // target unit of a MODULE symbol

	// Invalid marks redeclarations. They stay in the arena for queries but
	// are not visible to lookups.
	Invalid bool
}
