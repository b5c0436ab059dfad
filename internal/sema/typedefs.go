package sema

import (
	"strings"

	"balsa/internal/ast"
	"balsa/internal/diag"
	"balsa/internal/source"
	"balsa/internal/symbols"
	"balsa/internal/types"
)

func (tc *typeChecker) resolveTypeDefs() {
	for _, id := range tc.itemSymbols(symbols.SymbolTypeDef) {
		tc.ensureTypeDef(id)
	}
}

// ensureTypeDef binds the TYPE_REFERENCE of a definition to its body. Bodies
// that name each other directly form a cycle; references nested inside
// records, maps, unions or functions are recursive types and are fine.
func (tc *typeChecker) ensureTypeDef(id symbols.SymbolID) {
	switch tc.typeState[id] {
	case stateDone:
		return
	case stateVisiting:
		tc.reportCycle(id, tc.typeStack, diag.SemaTypeCycle, "invalid cyclic type reference")
		return
	}
	tc.typeState[id] = stateVisiting
	tc.typeStack = append(tc.typeStack, id)

	sym := tc.sym(id)
	td, _ := tc.builder.Items.TypeDef(sym.Decl.Item)
	body := tc.resolveTypeExpr(td.Type, true)
	if tc.cyclic[id] {
		body = tc.builtins.Error
	}
	tc.types.SetReferenceTarget(tc.typeRefs[id], body)

	tc.typeStack = tc.typeStack[:len(tc.typeStack)-1]
	tc.typeState[id] = stateDone
}

// reportCycle reports the cycle that closes at id once, at the declaration
// that started it, and marks every member.
func (tc *typeChecker) reportCycle(id symbols.SymbolID, stack []symbols.SymbolID, code diag.Code, what string) {
	start := -1
	for i, s := range stack {
		if s == id {
			start = i
			break
		}
	}
	if start < 0 || tc.cyclic[id] {
		return
	}
	members := stack[start:]
	names := make([]string, 0, len(members)+1)
	for _, m := range members {
		tc.cyclic[m] = true
		names = append(names, tc.table.Name(m))
	}
	names = append(names, tc.table.Name(id))
	tc.errorf(code, tc.sym(id).Span, "%s: %s", what, strings.Join(names, " -> "))
}

func (tc *typeChecker) resolveType(id ast.TypeExprID) types.TypeID {
	return tc.resolveTypeExpr(id, false)
}

// resolveTypeExpr converts a written type descriptor. direct is true while
// the descriptor is an alias position whose referenced definitions must be
// resolved first.
func (tc *typeChecker) resolveTypeExpr(id ast.TypeExprID, direct bool) types.TypeID {
	te := tc.builder.Types.Get(id)
	if te == nil {
		return tc.builtins.Error
	}
	switch te.Kind {
	case ast.TypeExprBuiltin:
		return tc.builtinType(te.Builtin)
	case ast.TypeExprNil:
		return tc.builtins.Nil
	case ast.TypeExprName:
		return tc.namedType(te, direct)
	case ast.TypeExprSingleton:
		v, ok := tc.foldConst(te.Literal, types.NoTypeID)
		if !ok {
			return tc.builtins.Error
		}
		return tc.valueSymbolType(v)
	case ast.TypeExprRecord:
		return tc.recordType(te)
	case ast.TypeExprMap:
		return tc.types.Map(tc.resolveType(te.Elem))
	case ast.TypeExprUnion:
		members := make([]types.TypeID, 0, len(te.Members))
		for _, m := range te.Members {
			members = append(members, tc.resolveType(m))
		}
		return tc.types.UnionOf(members...)
	case ast.TypeExprIntersection:
		return tc.intersectionType(te)
	case ast.TypeExprOptional:
		return tc.types.Union(tc.resolveType(te.Elem), tc.builtins.Nil)
	case ast.TypeExprFunction:
		sig := types.FnInfo{Isolated: te.Isolated, Any: te.AnyFunction}
		for _, p := range te.Params {
			sig.Params = append(sig.Params, tc.resolveType(p))
		}
		if te.Result.IsValid() {
			sig.Result = tc.resolveType(te.Result)
		}
		return tc.types.Function(sig)
	case ast.TypeExprGroup:
		return tc.resolveTypeExpr(te.Elem, direct)
	}
	return tc.builtins.Error
}

func (tc *typeChecker) builtinType(name string) types.TypeID {
	b := tc.builtins
	switch name {
	case "int":
		return b.Int
	case "float":
		return b.Float
	case "string":
		return b.String
	case "boolean":
		return b.Boolean
	case "byte":
		return b.Byte
	case "any":
		return b.Any
	case "never":
		return b.Never
	case "readonly":
		return b.Readonly
	}
	return b.Error
}

func (tc *typeChecker) namedType(te *ast.TypeExpr, direct bool) types.TypeID {
	name := tc.name(te.Name)
	if te.Module != 0 {
		target, dep, ok := tc.resolveQualified(te.Module, te.Name, te.NameSpan)
		if !ok {
			return tc.builtins.Error
		}
		sym := dep.Table.Symbols.Get(target.Sym)
		if sym.Kind != symbols.SymbolTypeDef {
			tc.errorf(diag.SemaUnknownType, te.NameSpan, "unknown type '%s:%s'", tc.name(te.Module), name)
			return tc.builtins.Error
		}
		t := tc.types.Import(dep.Types, sym.Type)
		if info, ok := tc.types.RefInfo(t); ok && info.Module == "" {
			info.Module = tc.name(te.Module)
		}
		return t
	}

	id, ok := tc.table.LookupFrom(tc.scope, te.Name)
	if !ok {
		tc.errorf(diag.SemaUnknownType, te.NameSpan, "unknown type '%s'", name)
		return tc.builtins.Error
	}
	tc.table.AddRef(te.NameSpan, symbols.Ref{Sym: id})
	if tc.sym(id).Kind != symbols.SymbolTypeDef {
		tc.errorf(diag.SemaUnknownType, te.NameSpan, "'%s' is not a type", name)
		return tc.builtins.Error
	}
	if direct {
		tc.ensureTypeDef(id)
		if tc.cyclic[id] {
			return tc.builtins.Error
		}
	}
	return tc.typeRefs[id]
}

func (tc *typeChecker) recordType(te *ast.TypeExpr) types.TypeID {
	fields := make([]types.Field, 0, len(te.Fields))
	seen := make(map[source.StringID]source.Span, len(te.Fields))
	for _, f := range te.Fields {
		if prev, dup := seen[f.Name]; dup {
			diag.ReportError(tc.reporter, diag.SemaRedeclared, f.NameSpan, "redeclared symbol '%s'", tc.name(f.Name)).
				WithNote(prev, "previous declaration here").Emit()
			continue
		}
		seen[f.Name] = f.NameSpan
		fields = append(fields, types.Field{Name: tc.name(f.Name), Type: tc.resolveType(f.Type), Optional: f.Optional})
	}
	rest := types.NoTypeID
	if te.Rest.IsValid() {
		rest = tc.resolveType(te.Rest)
	}
	return tc.types.Record(fields, te.Closed, rest)
}

func (tc *typeChecker) intersectionType(te *ast.TypeExpr) types.TypeID {
	var acc types.TypeID
	for i, m := range te.Members {
		// operands must be resolved to intersect them
		t := tc.resolveTypeExpr(m, true)
		if i == 0 {
			acc = t
			continue
		}
		next, conflict := tc.types.Intersect(acc, t)
		if conflict != nil {
			if conflict.Field != "" {
				tc.errorf(diag.SemaIntersectConflict, te.Span, "invalid intersection: field '%s' has incompatible types", conflict.Field)
			} else {
				tc.errorf(diag.SemaIntersectConflict, te.Span, "invalid intersection: '%s' and '%s' have no common values",
					types.Label(tc.types, acc), types.Label(tc.types, t))
			}
		}
		acc = next
	}
	return acc
}
