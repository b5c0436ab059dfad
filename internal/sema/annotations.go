package sema

import (
	"balsa/internal/symbols"
	"balsa/internal/types"
)

func (tc *typeChecker) resolveAnnotations() {
	for _, id := range tc.itemSymbols(symbols.SymbolAnnotation) {
		sym := tc.sym(id)
		an, _ := tc.builder.Items.Annotation(sym.Decl.Item)
		info := sym.Annot
		info.Type = types.NoTypeID
		if an.Type.IsValid() {
			info.Type = tc.resolveType(an.Type)
			sym.Type = info.Type
		}
		info.Points = make([]string, 0, len(an.Points))
		for _, p := range an.Points {
			info.Points = append(info.Points, p.Name)
		}
	}
}
