package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"balsa/internal/source"
)

// Hints provide optional capacity suggestions for the arenas.
type Hints struct{ Scopes, Symbols uint }

// Reference records a resolved use of a name, for position queries.
type Reference struct {
	Span   source.Span
	Target Ref
}

// Table is the scope tree of one unit together with its symbols.
type Table struct {
	Scopes  *Scopes
	Symbols *Symbols
	Strings *source.Interner
	Root    ScopeID
	Refs    []Reference
}

// NewTable builds a table with an empty module scope as root.
func NewTable(h Hints, strings *source.Interner, span source.Span) *Table {
	scopeCap, err := safecast.Conv[uint32](h.Scopes)
	if err != nil {
		panic(fmt.Errorf("scope capacity overflow: %w", err))
	}
	symCap, err := safecast.Conv[uint32](h.Symbols)
	if err != nil {
		panic(fmt.Errorf("symbol capacity overflow: %w", err))
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	t := &Table{
		Scopes:  NewScopes(scopeCap),
		Symbols: NewSymbols(symCap),
		Strings: strings,
	}
	t.Root = t.Scopes.New(ScopeModule, NoScopeID, ScopeOwner{}, span)
	return t
}

// Name returns the text of a symbol name.
func (t *Table) Name(id SymbolID) string {
	sym := t.Symbols.Get(id)
	if sym == nil {
		return ""
	}
	s, _ := t.Strings.Lookup(sym.Name)
	return s
}

// AddRef records that span refers to target.
func (t *Table) AddRef(span source.Span, target Ref) {
	if span.IsZero() || !target.IsValid() {
		return
	}
	t.Refs = append(t.Refs, Reference{Span: span, Target: target})
}

// LookupIn finds a live symbol declared directly in scope.
func (t *Table) LookupIn(scope ScopeID, name source.StringID) (SymbolID, bool) {
	s := t.Scopes.Get(scope)
	if s == nil {
		return NoSymbolID, false
	}
	id, ok := s.NameIndex[name]
	return id, ok
}

// LookupFrom walks outward from scope.
func (t *Table) LookupFrom(scope ScopeID, name source.StringID) (SymbolID, bool) {
	for scope.IsValid() {
		if id, ok := t.LookupIn(scope, name); ok {
			return id, true
		}
		scope = t.Scopes.Get(scope).Parent
	}
	return NoSymbolID, false
}

// LookupName resolves a top-level name by its text.
func (t *Table) LookupName(name string) (SymbolID, bool) {
	id, ok := t.Strings.Find(name)
	if !ok {
		return NoSymbolID, false
	}
	return t.LookupIn(t.Root, id)
}

// ScopeAt returns the innermost scope whose span covers off in file.
func (t *Table) ScopeAt(file source.FileID, off uint32) ScopeID {
	cur := t.Root
	for {
		next := NoScopeID
		for _, child := range t.Scopes.Get(cur).Children {
			sp := t.Scopes.Get(child).Span
			if sp.File == file && sp.Start <= off && off <= sp.End {
				next = child
				break
			}
		}
		if !next.IsValid() {
			return cur
		}
		cur = next
	}
}

// Visible lists the live symbols visible from scope, innermost first. Inner
// declarations hide outer ones with the same name.
func (t *Table) Visible(scope ScopeID) []SymbolID {
	seen := make(map[source.StringID]struct{})
	var out []SymbolID
	for scope.IsValid() {
		s := t.Scopes.Get(scope)
		for _, id := range s.Symbols {
			sym := t.Symbols.Get(id)
			if sym.Invalid {
				continue
			}
			if _, hidden := seen[sym.Name]; hidden {
				continue
			}
			seen[sym.Name] = struct{}{}
			out = append(out, id)
		}
		scope = s.Parent
	}
	return out
}
