package symbols

import (
	"balsa/internal/ast"
	"balsa/internal/source"
)

type ScopeKind uint8

const (
	ScopeInvalid  ScopeKind = iota
	ScopeModule             // top-level declarations of a unit
	ScopeFunction           // parameters
	ScopeBlock              // `{ ... }` inside a function
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeModule:
		return "module"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	default:
		return "invalid"
	}
}

// ScopeOwner points at the syntax that opened a scope.
type ScopeOwner struct {
	Item ast.ItemID
	Stmt ast.StmtID
}

// Scope is a node of the scope tree. Parent is a plain index, so the tree has
// no ownership cycles.
type Scope struct {
	Kind      ScopeKind
	Parent    ScopeID
	Owner     ScopeOwner
	Span      source.Span
	NameIndex map[source.StringID]SymbolID
	Symbols   []SymbolID
	Children  []ScopeID
}
