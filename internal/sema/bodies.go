package sema

import (
	"balsa/internal/ast"
	"balsa/internal/diag"
	"balsa/internal/source"
	"balsa/internal/symbols"
	"balsa/internal/types"
)

// checkBodies opens a function scope with the parameters for every function
// and checks its body in a nested block scope.
func (tc *typeChecker) checkBodies() {
	for _, id := range tc.itemSymbols(symbols.SymbolFunction) {
		if tc.ctx.Err() != nil {
			return
		}
		tc.checkFunction(id)
	}
}

func (tc *typeChecker) checkFunction(id symbols.SymbolID) {
	sym := tc.sym(id)
	fn, _ := tc.builder.Items.Func(sym.Decl.Item)
	item := tc.builder.Items.Get(sym.Decl.Item)
	info, _ := tc.types.FnInfo(sym.Type)

	scope := tc.enterScope(symbols.ScopeFunction, symbols.ScopeOwner{Item: sym.Decl.Item}, item.Span)
	defer tc.leaveScope(scope)

	for i, p := range fn.Params {
		if p.Name == 0 {
			continue
		}
		t := tc.builtins.Error
		if info != nil && i < len(info.Params) {
			t = info.Params[i]
		}
		tc.resolver.Declare(symbols.Symbol{
			Name:     p.Name,
			Kind:     symbols.SymbolParameter,
			Span:     p.NameSpan,
			DeclSpan: p.Span,
			Type:     t,
			Decl:     symbols.SymbolDecl{File: tc.file.Source, Item: sym.Decl.Item, Param: i},
		})
	}

	tc.fnResult = tc.builtins.Nil
	if info != nil && info.Result.IsValid() {
		tc.fnResult = info.Result
	}
	if fn.Body.IsValid() {
		tc.checkStmt(fn.Body)
	}
	tc.fnResult = types.NoTypeID
}

func (tc *typeChecker) enterScope(kind symbols.ScopeKind, owner symbols.ScopeOwner, sp source.Span) symbols.ScopeID {
	scope := tc.resolver.Enter(kind, owner, sp)
	tc.scope = scope
	return scope
}

func (tc *typeChecker) leaveScope(scope symbols.ScopeID) {
	tc.resolver.Leave(scope)
	tc.scope = tc.resolver.CurrentScope()
}

func (tc *typeChecker) checkStmt(id ast.StmtID) {
	st := tc.builder.Stmts.Get(id)
	if st == nil {
		return
	}
	switch st.Kind {
	case ast.StmtBlock:
		scope := tc.enterScope(symbols.ScopeBlock, symbols.ScopeOwner{Stmt: id}, st.Span)
		for _, s := range st.Stmts {
			tc.checkStmt(s)
		}
		tc.leaveScope(scope)
	case ast.StmtVar:
		tc.checkVarStmt(id, st)
	case ast.StmtAssign:
		tc.checkAssign(st)
	case ast.StmtExpr:
		tc.exprType(st.Value, types.NoTypeID)
	case ast.StmtReturn:
		if !st.Value.IsValid() {
			tc.checkAssignable(tc.builtins.Nil, tc.fnResult, st.Span)
			return
		}
		t := tc.exprType(st.Value, tc.fnResult)
		tc.checkAssignable(t, tc.fnResult, tc.exprSpan(st.Value))
	case ast.StmtIf:
		cond := tc.exprType(st.Value, tc.builtins.Boolean)
		tc.checkAssignable(cond, tc.builtins.Boolean, tc.exprSpan(st.Value))
		tc.checkStmt(st.Then)
		if st.Else.IsValid() {
			tc.checkStmt(st.Else)
		}
	}
}

// checkVarStmt types the initializer before declaring the name, so `int x = x;`
// refers to an outer x.
func (tc *typeChecker) checkVarStmt(id ast.StmtID, st *ast.Stmt) {
	declared := types.NoTypeID
	if st.Type.IsValid() {
		declared = tc.resolveType(st.Type)
	}
	t := declared
	if st.Value.IsValid() {
		init := tc.exprType(st.Value, declared)
		if declared.IsValid() {
			tc.checkAssignable(init, declared, tc.exprSpan(st.Value))
		} else {
			t = tc.widen(init)
		}
	}
	if !t.IsValid() {
		t = tc.builtins.Error
	}
	var quals symbols.Qualifiers
	if st.Final {
		quals |= symbols.QualFinal
	}
	tc.resolver.Declare(symbols.Symbol{
		Name:     st.Name,
		Kind:     symbols.SymbolVariable,
		Span:     st.NameSpan,
		DeclSpan: st.Span,
		Quals:    quals,
		Type:     t,
		Decl:     symbols.SymbolDecl{File: tc.file.Source, Stmt: id, Param: -1},
	})
}

func (tc *typeChecker) checkAssign(st *ast.Stmt) {
	target := tc.builder.Exprs.Get(tc.builder.Exprs.Unparen(st.Target))
	dst := tc.exprType(st.Target, types.NoTypeID)
	if target != nil && target.Kind == ast.ExprIdent && target.Module == 0 {
		if id, ok := tc.table.LookupFrom(tc.scope, target.Name); ok {
			sym := tc.sym(id)
			switch {
			case sym.Kind == symbols.SymbolConstant:
				tc.errorf(diag.SemaAssignFinal, target.Span, "cannot update constant value")
				dst = tc.builtins.Error
			case sym.Kind == symbols.SymbolParameter:
				tc.errorf(diag.SemaAssignFinal, target.Span, "cannot assign a value to function argument '%s'", tc.name(sym.Name))
				dst = tc.builtins.Error
			case sym.Quals.Has(symbols.QualFinal):
				tc.errorf(diag.SemaAssignFinal, target.Span, "cannot assign a value to final '%s'", tc.name(sym.Name))
				dst = tc.builtins.Error
			}
		}
	}
	src := tc.exprType(st.Value, dst)
	tc.checkAssignable(src, dst, tc.exprSpan(st.Value))
}
