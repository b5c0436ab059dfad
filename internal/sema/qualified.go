package sema

import (
	"balsa/internal/diag"
	"balsa/internal/source"
	"balsa/internal/symbols"
)

// resolveQualified looks up `prefix:name` in the published table of an
// imported unit. Only public symbols are visible from other units.
func (tc *typeChecker) resolveQualified(prefix, name source.StringID, sp source.Span) (symbols.Ref, *Result, bool) {
	modID, ok := tc.table.LookupIn(tc.table.Root, prefix)
	if !ok || tc.sym(modID).Kind != symbols.SymbolModule {
		tc.errorf(diag.SemaUnknownUnit, sp, "undefined module '%s'", tc.name(prefix))
		return symbols.Ref{}, nil, false
	}
	mod := tc.sym(modID)
	dep := tc.opts.Deps[mod.Import]
	if dep == nil {
		// already reported at the import
		return symbols.Ref{}, nil, false
	}
	text := tc.name(name)
	target, ok := dep.Table.LookupName(text)
	if !ok {
		tc.errorf(diag.SemaUndefinedSymbol, sp, "undefined symbol '%s:%s'", tc.name(prefix), text)
		return symbols.Ref{}, nil, false
	}
	ref := symbols.Ref{Unit: dep.Unit, Sym: target}
	tc.table.AddRef(sp, ref)
	if !dep.Table.Symbols.Get(target).Quals.Has(symbols.QualPublic) {
		tc.errorf(diag.SemaNotPublic, sp, "attempt to refer to non-accessible symbol '%s:%s'", tc.name(prefix), text)
		return symbols.Ref{}, nil, false
	}
	return ref, dep, true
}
