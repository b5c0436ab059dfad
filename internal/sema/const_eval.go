package sema

import (
	"errors"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"balsa/internal/ast"
	"balsa/internal/consts"
	"balsa/internal/diag"
	"balsa/internal/source"
	"balsa/internal/symbols"
	"balsa/internal/types"
)

func (tc *typeChecker) evalConsts() {
	for _, id := range tc.itemSymbols(symbols.SymbolConstant) {
		tc.ensureConstEvaluated(id)
	}
}

// ensureConstEvaluated folds one constant after the constants it refers to.
// A constant that is part of a cycle stays unresolved.
func (tc *typeChecker) ensureConstEvaluated(id symbols.SymbolID) *consts.Value {
	sym := tc.sym(id)
	switch tc.constState[id] {
	case stateDone:
		return sym.Const.Value
	case stateVisiting:
		tc.reportCycle(id, tc.constStack, diag.SemaConstCycle, "cyclic constant initializer")
		return nil
	}
	tc.constState[id] = stateVisiting
	tc.constStack = append(tc.constStack, id)
	defer func() {
		tc.constStack = tc.constStack[:len(tc.constStack)-1]
		tc.constState[id] = stateDone
	}()

	item, _ := tc.builder.Items.Const(sym.Decl.Item)
	declared := types.NoTypeID
	if item.Type.IsValid() {
		declared = tc.resolveType(item.Type)
		sym.Const.Declared = declared
	}
	sym.Type = tc.builtins.Error
	if declared.IsValid() {
		sym.Type = declared
	}
	if !item.Value.IsValid() {
		return nil
	}

	saved := tc.scope
	tc.scope = tc.table.Root
	v, ok := tc.foldConst(item.Value, declared)
	tc.scope = saved
	if !ok || tc.cyclic[id] {
		return nil
	}

	symType := tc.valueSymbolType(v)
	if declared.IsValid() && !tc.assignable(symType, declared) {
		tc.errorf(diag.SemaIncompatibleTypes, tc.exprSpan(item.Value), "incompatible types: expected '%s', found '%s'",
			types.Label(tc.types, declared), types.Label(tc.types, v.Type))
	}
	sym.Type = symType
	sym.Const.Value = v
	return v
}

// valueSymbolType is the type a constant of value v has: the singleton of a
// scalar, the readonly record type of a record.
func (tc *typeChecker) valueSymbolType(v *consts.Value) types.TypeID {
	if lit, ok := v.Literal(); ok {
		return tc.types.Singleton(lit)
	}
	return v.Type
}

func (tc *typeChecker) exprSpan(id ast.ExprID) (sp source.Span) {
	if x := tc.builder.Exprs.Get(id); x != nil {
		sp = x.Span
	}
	return sp
}

// foldConst evaluates a constant expression. expected, when valid, types
// literals contextually (int literals become byte or float). Failures are
// reported here; callers only propagate ok=false.
func (tc *typeChecker) foldConst(id ast.ExprID, expected types.TypeID) (*consts.Value, bool) {
	v, ok := tc.fold(id, expected)
	if !ok {
		return nil, false
	}
	v = tc.coerce(v, expected)
	tc.typeValue(v)
	tc.recordExprType(tc.exprSpan(id), tc.valueSymbolType(v))
	return v, true
}

func (tc *typeChecker) fold(id ast.ExprID, expected types.TypeID) (*consts.Value, bool) {
	x := tc.builder.Exprs.Get(id)
	if x == nil {
		return nil, false
	}
	switch x.Kind {
	case ast.ExprIntLit:
		n, err := parseIntLiteral(x.Text)
		if err != nil {
			tc.errorf(diag.SemaConstFold, x.Span, "integer literal '%s' is out of range", x.Text)
			return nil, false
		}
		return consts.Int(n), true
	case ast.ExprFloatLit:
		f, err := strconv.ParseFloat(strings.TrimRight(x.Text, "fFdD"), 64)
		if err != nil {
			tc.errorf(diag.SemaConstFold, x.Span, "invalid float literal '%s'", x.Text)
			return nil, false
		}
		return consts.Float(f), true
	case ast.ExprStringLit:
		return consts.String(x.Text), true
	case ast.ExprBoolLit:
		return consts.Boolean(x.Text == "true"), true
	case ast.ExprNilLit:
		return consts.Nil(), true
	case ast.ExprGroup:
		return tc.fold(x.X, expected)
	case ast.ExprUnary:
		operand, ok := tc.fold(x.X, expected)
		if !ok {
			return nil, false
		}
		out, err := consts.Unary(x.Op, operand)
		return tc.foldResult(out, err, x)
	case ast.ExprBinary:
		left, lok := tc.fold(x.X, types.NoTypeID)
		right, rok := tc.fold(x.Y, types.NoTypeID)
		if !lok || !rok {
			return nil, false
		}
		out, err := consts.Binary(x.Op, left, right)
		return tc.foldResult(out, err, x)
	case ast.ExprIdent:
		return tc.foldReference(x)
	case ast.ExprMapping:
		return tc.foldMapping(x, expected)
	case ast.ExprField:
		base, ok := tc.fold(x.X, types.NoTypeID)
		if !ok {
			return nil, false
		}
		if f, found := base.Field(tc.name(x.Name)); found {
			return f, true
		}
		tc.errorf(diag.SemaUndefinedField, x.NameSpan, "undefined field '%s' in record '%s'", tc.name(x.Name), base)
		return nil, false
	}
	tc.errorf(diag.SemaNotConstant, x.Span, "expression is not a constant expression")
	return nil, false
}

func (tc *typeChecker) foldResult(v *consts.Value, err error, x *ast.Expr) (*consts.Value, bool) {
	if err == nil {
		return v, true
	}
	var opErr *consts.OperandError
	switch {
	case errors.As(err, &opErr):
		tc.errorf(diag.SemaInvalidOperands, x.Span, "%s", opErr.Error())
	default:
		tc.errorf(diag.SemaConstFold, x.Span, "constant evaluation failed: %s", err)
	}
	return nil, false
}

func (tc *typeChecker) foldReference(x *ast.Expr) (*consts.Value, bool) {
	if x.Module != 0 {
		ref, dep, ok := tc.resolveQualified(x.Module, x.Name, x.NameSpan)
		if !ok {
			return nil, false
		}
		sym := dep.Table.Symbols.Get(ref.Sym)
		if sym.Kind != symbols.SymbolConstant {
			tc.errorf(diag.SemaNotConstant, x.Span, "expression is not a constant expression")
			return nil, false
		}
		if sym.Const.Value == nil {
			return nil, false
		}
		return sym.Const.Value.Import(tc.types, dep.Types), true
	}

	id, ok := tc.table.LookupFrom(tc.scope, x.Name)
	if !ok {
		tc.errorf(diag.SemaUndefinedSymbol, x.NameSpan, "undefined symbol '%s'", tc.name(x.Name))
		return nil, false
	}
	tc.table.AddRef(x.NameSpan, symbols.Ref{Sym: id})
	if tc.sym(id).Kind != symbols.SymbolConstant {
		tc.errorf(diag.SemaNotConstant, x.Span, "expression is not a constant expression")
		return nil, false
	}
	v := tc.ensureConstEvaluated(id)
	if v == nil {
		// the constant's own diagnostics explain why
		return nil, false
	}
	// the referenced constant has already published v
	return v.Clone(), true
}

func (tc *typeChecker) foldMapping(x *ast.Expr, expected types.TypeID) (*consts.Value, bool) {
	fields := make([]consts.Field, 0, len(x.Fields))
	seen := make(map[string]bool, len(x.Fields))
	ok := true
	for _, f := range x.Fields {
		if seen[f.Key] {
			tc.errorf(diag.SemaDuplicateKey, f.KeySpan, "duplicate key '%s'", f.Key)
			ok = false
			continue
		}
		seen[f.Key] = true
		fieldExpected := tc.fieldExpectation(expected, f.Key)
		v, fok := tc.fold(f.Value, fieldExpected)
		if !fok {
			ok = false
			continue
		}
		fields = append(fields, consts.Field{Name: f.Key, Value: tc.coerce(v, fieldExpected)})
	}
	if !ok {
		return nil, false
	}
	return consts.Record(fields), true
}

// fieldExpectation is the declared type of a mapping entry, if known.
func (tc *typeChecker) fieldExpectation(expected types.TypeID, key string) types.TypeID {
	if !expected.IsValid() {
		return types.NoTypeID
	}
	eff := tc.types.Effective(expected)
	switch tc.types.KindOf(eff) {
	case types.KindRecord:
		rec, _ := tc.types.RecordInfo(eff)
		if f, ok := rec.Field(key); ok {
			return f.Type
		}
		return rec.Rest
	case types.KindMap:
		return tc.types.MustLookup(eff).Elem
	}
	return types.NoTypeID
}

// coerce applies contextual typing of int literals: `byte b = 2`, `float f = 1`.
func (tc *typeChecker) coerce(v *consts.Value, expected types.TypeID) *consts.Value {
	if v == nil || v.Kind != consts.KindInt || !expected.IsValid() {
		return v
	}
	b := tc.builtins
	if tc.assignable(b.Int, expected) {
		return v
	}
	if tc.assignable(b.Byte, expected) {
		if n, err := safecast.Conv[uint8](v.Int); err == nil {
			return consts.Byte(n)
		}
	}
	if tc.assignable(b.Float, expected) {
		return consts.Float(float64(v.Int))
	}
	return v
}

// typeValue assigns types bottom-up: base kinds for scalars, and
// INTERSECTION(closed RECORD, READONLY) for records.
func (tc *typeChecker) typeValue(v *consts.Value) {
	b := tc.builtins
	switch v.Kind {
	case consts.KindInt:
		v.Type = b.Int
	case consts.KindFloat:
		v.Type = b.Float
	case consts.KindString:
		v.Type = b.String
	case consts.KindBoolean:
		v.Type = b.Boolean
	case consts.KindByte:
		v.Type = b.Byte
	case consts.KindNil:
		v.Type = b.Nil
	case consts.KindRecord:
		fields := make([]types.Field, len(v.Fields))
		for i, f := range v.Fields {
			tc.typeValue(f.Value)
			fields[i] = types.Field{Name: f.Name, Type: tc.valueSymbolType(f.Value)}
		}
		rec := tc.types.Record(fields, true, types.NoTypeID)
		v.Type, _ = tc.types.Intersect(rec, b.Readonly)
	}
}

func parseIntLiteral(text string) (int64, error) {
	text = strings.ReplaceAll(text, "_", "")
	if rest, ok := strings.CutPrefix(strings.ToLower(text), "0x"); ok {
		return strconv.ParseInt(rest, 16, 64)
	}
	return strconv.ParseInt(text, 10, 64)
}
