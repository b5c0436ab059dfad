package sema

import (
	"balsa/internal/ast"
	"balsa/internal/diag"
	"balsa/internal/symbols"
)

// collect declares every top-level name before anything is resolved, so
// declarations may refer to each other in any order.
func (tc *typeChecker) collect() {
	items := tc.builder.Items
	for _, itemID := range tc.file.Items {
		item := items.Get(itemID)
		if item == nil {
			continue
		}
		if item.Kind == ast.ItemImport {
			tc.collectImport(itemID, item)
			continue
		}
		decl := items.DeclOf(itemID)
		if decl == nil || decl.Name == 0 {
			continue
		}
		sym := symbols.Symbol{
			Name:     decl.Name,
			Span:     decl.NameSpan,
			DeclSpan: item.Span,
			Quals:    qualifiers(decl.Mods),
			Doc:      symbols.ParseDocumentation(decl.Doc),
			Decl:     symbols.SymbolDecl{File: tc.file.Source, Item: itemID, Param: -1},
		}
		switch item.Kind {
		case ast.ItemConst:
			sym.Kind = symbols.SymbolConstant
			sym.Const = &symbols.ConstInfo{}
		case ast.ItemTypeDef:
			sym.Kind = symbols.SymbolTypeDef
		case ast.ItemAnnotation:
			sym.Kind = symbols.SymbolAnnotation
			sym.Annot = &symbols.AnnotInfo{}
		case ast.ItemFunction:
			sym.Kind = symbols.SymbolFunction
		case ast.ItemVar:
			sym.Kind = symbols.SymbolVariable
		default:
			continue
		}
		id, _ := tc.resolver.Declare(sym)
		if sym.Kind == symbols.SymbolTypeDef {
			ref := tc.types.Reference("", tc.name(decl.Name))
			tc.typeRefs[id] = ref
			tc.sym(id).Type = ref
		}
	}
}

func qualifiers(mods ast.Modifiers) symbols.Qualifiers {
	var q symbols.Qualifiers
	if mods.Has(ast.ModPublic) {
		q |= symbols.QualPublic
	}
	if mods.Has(ast.ModPrivate) {
		q |= symbols.QualPrivate
	}
	if mods.Has(ast.ModIsolated) {
		q |= symbols.QualIsolated
	}
	if mods.Has(ast.ModReadonly) {
		q |= symbols.QualReadonly
	}
	if mods.Has(ast.ModFinal) {
		q |= symbols.QualFinal
	}
	if mods.Has(ast.ModConst) {
		q |= symbols.QualConst
	}
	return q
}

func (tc *typeChecker) collectImport(itemID ast.ItemID, item *ast.Item) {
	imp, _ := tc.builder.Items.Import(itemID)
	if _, ok := tc.opts.Deps[imp.Unit]; !ok && !tc.opts.ImportsResolved {
		tc.errorf(diag.SemaUnknownUnit, imp.UnitSpan, "cannot resolve module '%s'", imp.Unit)
	}
	tc.resolver.Declare(symbols.Symbol{
		Name:     imp.Prefix,
		Kind:     symbols.SymbolModule,
		Span:     imp.PrefixSpan,
		DeclSpan: item.Span,
		Decl:     symbols.SymbolDecl{File: tc.file.Source, Item: itemID, Param: -1},
		Import:   imp.Unit,
	})
}

// itemSymbols lists the top-level symbols of one kind in source order.
// Redeclarations are included: lookups never reach them, but queries on
// their spans still expect a type and a value.
func (tc *typeChecker) itemSymbols(kind symbols.SymbolKind) []symbols.SymbolID {
	var out []symbols.SymbolID
	for _, id := range tc.table.Scopes.Get(tc.table.Root).Symbols {
		if s := tc.sym(id); s.Kind == kind {
			out = append(out, id)
		}
	}
	return out
}
