package sema

import (
	"balsa/internal/ast"
	"balsa/internal/diag"
	"balsa/internal/symbols"
	"balsa/internal/token"
	"balsa/internal/types"
)

// exprTypeAt types an expression as if it were written in scope.
func (tc *typeChecker) exprTypeAt(scope symbols.ScopeID, id ast.ExprID, expected types.TypeID) types.TypeID {
	saved := tc.scope
	tc.scope = scope
	defer func() { tc.scope = saved }()
	return tc.exprType(id, expected)
}

// exprType computes the static type of an expression. expected is the
// contextual type, or NoTypeID; int literals use it to become byte or float.
// Failed expressions get the COMPILATION_ERROR type, which is assignable
// everywhere, so a mistake is reported once.
func (tc *typeChecker) exprType(id ast.ExprID, expected types.TypeID) types.TypeID {
	x := tc.builder.Exprs.Get(id)
	if x == nil {
		return tc.builtins.Error
	}
	t := tc.exprTypeOf(id, x, expected)
	tc.recordExprType(x.Span, t)
	return t
}

func (tc *typeChecker) exprTypeOf(id ast.ExprID, x *ast.Expr, expected types.TypeID) types.TypeID {
	switch x.Kind {
	case ast.ExprIntLit, ast.ExprFloatLit, ast.ExprStringLit, ast.ExprBoolLit:
		v, ok := tc.fold(id, expected)
		if !ok {
			return tc.builtins.Error
		}
		v = tc.coerce(v, expected)
		tc.typeValue(v)
		return tc.valueSymbolType(v)
	case ast.ExprNilLit:
		return tc.builtins.Nil
	case ast.ExprGroup:
		return tc.exprType(x.X, expected)
	case ast.ExprUnary:
		return tc.unaryType(x)
	case ast.ExprBinary:
		return tc.binaryType(x)
	case ast.ExprIdent:
		return tc.identType(x)
	case ast.ExprMapping:
		return tc.mappingType(x, expected)
	case ast.ExprCall:
		return tc.callType(x)
	case ast.ExprField:
		return tc.fieldType(x)
	}
	return tc.builtins.Error
}

func (tc *typeChecker) isError(t types.TypeID) bool {
	return tc.types.KindOf(tc.types.Effective(t)) == types.KindError
}

// operand widens an operand type to the basic kind operators work on.
func (tc *typeChecker) operand(t types.TypeID) types.Kind {
	return tc.types.KindOf(tc.types.Effective(tc.types.BaseOf(tc.types.Effective(t))))
}

func (tc *typeChecker) unaryType(x *ast.Expr) types.TypeID {
	t := tc.exprType(x.X, types.NoTypeID)
	if tc.isError(t) {
		return tc.builtins.Error
	}
	k := tc.operand(t)
	switch {
	case x.Op == token.Bang && k == types.KindBoolean:
		return tc.builtins.Boolean
	case (x.Op == token.Minus || x.Op == token.Plus) && (k == types.KindInt || k == types.KindByte):
		return tc.builtins.Int
	case (x.Op == token.Minus || x.Op == token.Plus) && k == types.KindFloat:
		return tc.builtins.Float
	}
	tc.errorf(diag.SemaInvalidOperands, x.Span, "operator '%s' not defined for '%s'", x.Op, tc.label(t))
	return tc.builtins.Error
}

func (tc *typeChecker) binaryType(x *ast.Expr) types.TypeID {
	lt := tc.exprType(x.X, types.NoTypeID)
	rt := tc.exprType(x.Y, types.NoTypeID)
	if tc.isError(lt) || tc.isError(rt) {
		return tc.builtins.Error
	}
	b := tc.builtins
	l, r := tc.operand(lt), tc.operand(rt)
	integer := func(k types.Kind) bool { return k == types.KindInt || k == types.KindByte }
	switch x.Op {
	case token.Plus:
		if l == types.KindString && r == types.KindString {
			return b.String
		}
		fallthrough
	case token.Minus, token.Star, token.Slash, token.Percent:
		if integer(l) && integer(r) {
			return b.Int
		}
		if l == types.KindFloat && r == types.KindFloat {
			return b.Float
		}
	case token.Lt, token.Gt, token.LtEq, token.GtEq:
		if (integer(l) && integer(r)) || (l == r && (l == types.KindFloat || l == types.KindString)) {
			return b.Boolean
		}
	case token.EqEq, token.BangEq:
		return b.Boolean
	case token.AndAnd, token.OrOr:
		if l == types.KindBoolean && r == types.KindBoolean {
			return b.Boolean
		}
	}
	tc.errorf(diag.SemaInvalidOperands, x.Span, "operator '%s' not defined for '%s' and '%s'", x.Op, tc.label(lt), tc.label(rt))
	return b.Error
}

func (tc *typeChecker) identType(x *ast.Expr) types.TypeID {
	if x.Module != 0 {
		ref, dep, ok := tc.resolveQualified(x.Module, x.Name, x.NameSpan)
		if !ok {
			return tc.builtins.Error
		}
		sym := dep.Table.Symbols.Get(ref.Sym)
		switch sym.Kind {
		case symbols.SymbolConstant, symbols.SymbolVariable, symbols.SymbolFunction:
			if !sym.Type.IsValid() {
				return tc.builtins.Error
			}
			return tc.types.Import(dep.Types, sym.Type)
		}
		tc.errorf(diag.SemaNotAValue, x.NameSpan, "'%s:%s' is not a value", tc.name(x.Module), tc.name(x.Name))
		return tc.builtins.Error
	}

	id, ok := tc.table.LookupFrom(tc.scope, x.Name)
	if !ok {
		tc.errorf(diag.SemaUndefinedSymbol, x.NameSpan, "undefined symbol '%s'", tc.name(x.Name))
		return tc.builtins.Error
	}
	tc.table.AddRef(x.NameSpan, symbols.Ref{Sym: id})
	sym := tc.sym(id)
	switch sym.Kind {
	case symbols.SymbolConstant:
		tc.ensureConstEvaluated(id)
	case symbols.SymbolVariable:
		if !sym.Type.IsValid() && sym.Scope == tc.table.Root {
			tc.ensureVar(id)
		}
	case symbols.SymbolParameter, symbols.SymbolFunction:
	default:
		tc.errorf(diag.SemaNotAValue, x.NameSpan, "'%s' is not a value", tc.name(x.Name))
		return tc.builtins.Error
	}
	if !sym.Type.IsValid() {
		return tc.builtins.Error
	}
	return sym.Type
}

// mappingType types `{k: v}` as a closed record. Without a contextual field
// type the values are widened: `{a: 1}` is `record {| int a; |}`.
func (tc *typeChecker) mappingType(x *ast.Expr, expected types.TypeID) types.TypeID {
	fields := make([]types.Field, 0, len(x.Fields))
	seen := make(map[string]bool, len(x.Fields))
	for _, f := range x.Fields {
		want := tc.fieldExpectation(expected, f.Key)
		t := tc.exprType(f.Value, want)
		if seen[f.Key] {
			tc.errorf(diag.SemaDuplicateKey, f.KeySpan, "duplicate key '%s'", f.Key)
			continue
		}
		seen[f.Key] = true
		if !want.IsValid() {
			t = tc.widen(t)
		}
		fields = append(fields, types.Field{Name: f.Key, Type: t})
	}
	return tc.types.Record(fields, true, types.NoTypeID)
}

func (tc *typeChecker) callType(x *ast.Expr) types.TypeID {
	callee := tc.exprType(x.X, types.NoTypeID)
	name := tc.calleeName(x.X, callee)
	eff := tc.types.Effective(callee)

	typeArgs := func() {
		for _, a := range x.Args {
			tc.exprType(a, types.NoTypeID)
		}
	}
	if tc.isError(callee) {
		typeArgs()
		return tc.builtins.Error
	}
	info, ok := tc.types.FnInfo(eff)
	if !ok {
		tc.errorf(diag.SemaNotCallable, tc.exprSpan(x.X), "'%s' is not a function", name)
		typeArgs()
		return tc.builtins.Error
	}
	if info.Any {
		tc.errorf(diag.SemaFnPointerCall, x.Span, "cannot call function pointer of type '%s'", types.Label(tc.types, callee))
		typeArgs()
		return tc.builtins.Error
	}

	for i, a := range x.Args {
		if i >= len(info.Params) {
			tc.exprType(a, types.NoTypeID)
			continue
		}
		at := tc.exprType(a, info.Params[i])
		tc.checkAssignable(at, info.Params[i], tc.exprSpan(a))
	}
	switch {
	case len(x.Args) > len(info.Params):
		tc.errorf(diag.SemaArgCount, x.Span, "too many arguments in call to '%s'", name)
	case len(x.Args) < len(info.Params):
		tc.errorf(diag.SemaArgCount, x.Span, "not enough arguments in call to '%s'", name)
	}
	if !info.Result.IsValid() {
		return tc.builtins.Nil
	}
	return info.Result
}

// calleeName is the name used in call diagnostics: the written name when the
// callee is one, otherwise its type.
func (tc *typeChecker) calleeName(id ast.ExprID, t types.TypeID) string {
	x := tc.builder.Exprs.Get(tc.builder.Exprs.Unparen(id))
	if x != nil && x.Kind == ast.ExprIdent {
		if x.Module != 0 {
			return tc.name(x.Module) + ":" + tc.name(x.Name)
		}
		return tc.name(x.Name)
	}
	return tc.label(t)
}

func (tc *typeChecker) fieldType(x *ast.Expr) types.TypeID {
	base := tc.exprType(x.X, types.NoTypeID)
	if tc.isError(base) {
		return tc.builtins.Error
	}
	name := tc.name(x.Name)
	eff := tc.types.Effective(base)
	if rec, ok := tc.types.RecordInfo(eff); ok {
		if f, found := rec.Field(name); found {
			if f.Optional {
				return tc.types.Union(f.Type, tc.builtins.Nil)
			}
			return f.Type
		}
		if rec.Rest.IsValid() {
			return tc.types.Union(rec.Rest, tc.builtins.Nil)
		}
	}
	if tc.types.KindOf(eff) == types.KindMap {
		return tc.types.Union(tc.types.MustLookup(eff).Elem, tc.builtins.Nil)
	}
	tc.errorf(diag.SemaUndefinedField, x.NameSpan, "undefined field '%s' in record '%s'", name, types.Label(tc.types, base))
	return tc.builtins.Error
}
