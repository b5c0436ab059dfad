package symbols

import (
	"balsa/internal/diag"
	"balsa/internal/source"
)

type ResolverOptions struct {
	Reporter diag.Reporter
}

// Resolver drives scope entry and exit and declares symbols into the
// current scope.
type Resolver struct {
	table    *Table
	reporter diag.Reporter
	stack    []ScopeID
}

// NewResolver starts with root as the current scope.
func NewResolver(table *Table, root ScopeID, opts ResolverOptions) *Resolver {
	r := &Resolver{
		table:    table,
		reporter: opts.Reporter,
		stack:    make([]ScopeID, 0, 8),
	}
	if root.IsValid() {
		r.stack = append(r.stack, root)
	}
	return r
}

func (r *Resolver) Table() *Table { return r.table }

func (r *Resolver) CurrentScope() ScopeID {
	if len(r.stack) == 0 {
		return NoScopeID
	}
	return r.stack[len(r.stack)-1]
}

// Enter creates a child scope of the current one and makes it current.
func (r *Resolver) Enter(kind ScopeKind, owner ScopeOwner, span source.Span) ScopeID {
	scope := r.table.Scopes.New(kind, r.CurrentScope(), owner, span)
	r.stack = append(r.stack, scope)
	return scope
}

// Leave pops the current scope. Unbalanced calls are a programming error.
func (r *Resolver) Leave(expected ScopeID) {
	if len(r.stack) == 0 {
		return
	}
	if top := r.stack[len(r.stack)-1]; expected.IsValid() && top != expected {
		panic("symbols: scope stack mismatch")
	}
	r.stack = r.stack[:len(r.stack)-1]
}

// Declare installs a symbol into the current scope. On a name clash the
// symbol is still allocated, flagged Invalid, left out of the name index and
// reported; ok is false then.
func (r *Resolver) Declare(sym Symbol) (SymbolID, bool) {
	scopeID := r.CurrentScope()
	scope := r.table.Scopes.Get(scopeID)
	if scope == nil {
		return NoSymbolID, false
	}
	sym.Scope = scopeID
	prev, clash := scope.NameIndex[sym.Name]
	if clash {
		sym.Invalid = true
	}
	id := r.table.Symbols.New(&sym)
	scope.Symbols = append(scope.Symbols, id)
	if clash {
		r.reportRedeclared(sym.Name, sym.Span, prev)
		return id, false
	}
	scope.NameIndex[sym.Name] = id
	return id, true
}

// Lookup walks the scope chain from the current scope.
func (r *Resolver) Lookup(name source.StringID) (SymbolID, bool) {
	return r.table.LookupFrom(r.CurrentScope(), name)
}

func (r *Resolver) reportRedeclared(name source.StringID, span source.Span, prev SymbolID) {
	if r.reporter == nil {
		return
	}
	b := diag.ReportError(r.reporter, diag.SemaRedeclared, span, "redeclared symbol '%s'", r.table.Strings.MustLookup(name))
	if p := r.table.Symbols.Get(prev); p != nil && !p.Span.IsZero() {
		b.WithNote(p.Span, "previous declaration here")
	}
	b.Emit()
}
