package sema

import (
	"balsa/internal/diag"
	"balsa/internal/symbols"
	"balsa/internal/types"
)

// resolveSignatures gives functions and module variables their types so that
// bodies and initializers can refer to them in any order.
func (tc *typeChecker) resolveSignatures() {
	for _, id := range tc.itemSymbols(symbols.SymbolFunction) {
		sym := tc.sym(id)
		fn, _ := tc.builder.Items.Func(sym.Decl.Item)
		sig := types.FnInfo{Isolated: sym.Quals.Has(symbols.QualIsolated)}
		for _, p := range fn.Params {
			sig.Params = append(sig.Params, tc.resolveType(p.Type))
		}
		if fn.Result.IsValid() {
			sig.Result = tc.resolveType(fn.Result)
		}
		sym.Type = tc.types.Function(sig)
	}

	vars := tc.itemSymbols(symbols.SymbolVariable)
	for _, id := range vars {
		sym := tc.sym(id)
		v, _ := tc.builder.Items.Var(sym.Decl.Item)
		if v.Type.IsValid() {
			sym.Type = tc.resolveType(v.Type)
		}
	}
	for _, id := range vars {
		tc.ensureVar(id)
	}
}

// ensureVar checks a module variable initializer. Variables declared with
// `var` take the widened type of their initializer.
func (tc *typeChecker) ensureVar(id symbols.SymbolID) types.TypeID {
	sym := tc.sym(id)
	switch tc.varState[id] {
	case stateDone:
		return sym.Type
	case stateVisiting:
		if !sym.Type.IsValid() {
			tc.errorf(diag.SemaConstCycle, sym.Span, "variable '%s' is used in its own initializer", tc.name(sym.Name))
			return tc.builtins.Error
		}
		return sym.Type
	}
	tc.varState[id] = stateVisiting
	defer func() { tc.varState[id] = stateDone }()

	v, _ := tc.builder.Items.Var(sym.Decl.Item)
	declared := sym.Type
	if !v.Value.IsValid() {
		if !declared.IsValid() {
			sym.Type = tc.builtins.Error
		}
		return sym.Type
	}

	saved, savedResult := tc.scope, tc.fnResult
	tc.scope, tc.fnResult = tc.table.Root, types.NoTypeID
	t := tc.exprType(v.Value, declared)
	tc.scope, tc.fnResult = saved, savedResult

	if declared.IsValid() {
		tc.checkAssignable(t, declared, tc.exprSpan(v.Value))
		return declared
	}
	sym.Type = tc.widen(t)
	return sym.Type
}

// widen drops literal types: `var x = 1;` is an int.
func (tc *typeChecker) widen(t types.TypeID) types.TypeID {
	if !t.IsValid() {
		return tc.builtins.Error
	}
	return tc.types.BaseOf(t)
}
