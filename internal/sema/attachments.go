package sema

import (
	"slices"
	"strings"

	"balsa/internal/ast"
	"balsa/internal/diag"
	"balsa/internal/source"
	"balsa/internal/symbols"
	"balsa/internal/types"
)

// resolveAttachments binds `@annot value?` on every top-level declaration.
func (tc *typeChecker) resolveAttachments() {
	items := tc.builder.Items
	for _, id := range tc.table.Scopes.Get(tc.table.Root).Symbols {
		sym := tc.sym(id)
		if sym.Kind == symbols.SymbolModule || !sym.Decl.Item.IsValid() {
			continue
		}
		decl := items.DeclOf(sym.Decl.Item)
		if decl == nil || len(decl.Attrs) == 0 {
			continue
		}
		kind := items.Get(sym.Decl.Item).Kind
		sym.Attachments = make([]symbols.Attachment, 0, len(decl.Attrs))
		for i := range decl.Attrs {
			sym.Attachments = append(sym.Attachments, tc.attachment(&decl.Attrs[i], kind))
		}
	}
}

func (tc *typeChecker) attachment(attr *ast.Attachment, target ast.ItemKind) symbols.Attachment {
	out := symbols.Attachment{Name: tc.name(attr.Name), Span: attr.Span}
	if attr.Module != 0 {
		out.Name = tc.name(attr.Module) + ":" + out.Name
	}

	annot, ok, reported := tc.lookupAnnotation(attr)
	if !ok {
		if !reported {
			tc.errorf(diag.SemaNotAnnotation, attr.NameSpan, "undefined annotation '%s'", out.Name)
		}
		// still type the value for queries
		if attr.Value.IsValid() {
			tc.exprTypeAt(tc.table.Root, attr.Value, types.NoTypeID)
		}
		return out
	}
	out.Annotation = annot.ref

	if len(annot.info.Points) > 0 && !attachAllowed(annot.info.Points, target) {
		tc.errorf(diag.SemaAttachPoint, attr.NameSpan, "annotation '%s' is not allowed on %s", out.Name, target)
	}

	if !attr.Value.IsValid() {
		out.IsConst = true
		return out
	}
	expected := annot.info.Type
	if !expected.IsValid() {
		tc.errorf(diag.SemaIncompatibleTypes, tc.exprSpan(attr.Value), "annotation '%s' does not accept a value", out.Name)
		return out
	}
	if annot.isConst || tc.isConstExpr(attr.Value) {
		v, folded := tc.foldConst(attr.Value, expected)
		if folded {
			out.Value = v
			out.IsConst = true
			tc.checkAssignable(tc.valueSymbolType(v), expected, tc.exprSpan(attr.Value))
		}
		return out
	}
	t := tc.exprTypeAt(tc.table.Root, attr.Value, expected)
	tc.checkAssignable(t, expected, tc.exprSpan(attr.Value))
	return out
}

type annotationRef struct {
	ref     symbols.Ref
	info    symbols.AnnotInfo
	isConst bool
}

// lookupAnnotation resolves the annotation name; reported is set when the
// failure was already diagnosed.
func (tc *typeChecker) lookupAnnotation(attr *ast.Attachment) (annot annotationRef, ok, reported bool) {
	if attr.Module != 0 {
		ref, dep, found := tc.resolveQualified(attr.Module, attr.Name, attr.NameSpan)
		if !found {
			return annotationRef{}, false, true
		}
		sym := dep.Table.Symbols.Get(ref.Sym)
		if sym.Kind != symbols.SymbolAnnotation || sym.Annot == nil {
			return annotationRef{}, false, false
		}
		info := *sym.Annot
		if info.Type.IsValid() {
			info.Type = tc.types.Import(dep.Types, info.Type)
		}
		return annotationRef{ref: ref, info: info, isConst: sym.Quals.Has(symbols.QualConst)}, true, false
	}
	id, found := tc.table.LookupIn(tc.table.Root, attr.Name)
	if !found {
		return annotationRef{}, false, false
	}
	tc.table.AddRef(attr.NameSpan, symbols.Ref{Sym: id})
	sym := tc.sym(id)
	if sym.Kind != symbols.SymbolAnnotation || sym.Annot == nil {
		return annotationRef{}, false, false
	}
	return annotationRef{ref: symbols.Ref{Sym: id}, info: *sym.Annot, isConst: sym.Quals.Has(symbols.QualConst)}, true, false
}

// attachAllowed matches declared attach points against the declaration kind.
// `source` points behave like plain ones here.
func attachAllowed(points []string, target ast.ItemKind) bool {
	want := target.String()
	return slices.ContainsFunc(points, func(p string) bool {
		p = stripSource(p)
		return p == want
	})
}

func stripSource(p string) string {
	if rest, ok := strings.CutPrefix(p, "source "); ok {
		return rest
	}
	return p
}

// isConstExpr reports whether id is built only from literals, operators,
// mappings and references to constants.
func (tc *typeChecker) isConstExpr(id ast.ExprID) bool {
	x := tc.builder.Exprs.Get(id)
	if x == nil {
		return false
	}
	switch x.Kind {
	case ast.ExprIntLit, ast.ExprFloatLit, ast.ExprStringLit, ast.ExprBoolLit, ast.ExprNilLit:
		return true
	case ast.ExprGroup, ast.ExprUnary:
		return tc.isConstExpr(x.X)
	case ast.ExprBinary:
		return tc.isConstExpr(x.X) && tc.isConstExpr(x.Y)
	case ast.ExprField:
		return tc.isConstExpr(x.X)
	case ast.ExprMapping:
		for _, f := range x.Fields {
			if !tc.isConstExpr(f.Value) {
				return false
			}
		}
		return true
	case ast.ExprIdent:
		return tc.refersToConst(x.Module, x.Name)
	}
	return false
}

func (tc *typeChecker) refersToConst(module, name source.StringID) bool {
	if module != 0 {
		modID, ok := tc.table.LookupIn(tc.table.Root, module)
		if !ok {
			return false
		}
		dep := tc.opts.Deps[tc.sym(modID).Import]
		if dep == nil {
			return false
		}
		target, ok := dep.Table.LookupName(tc.name(name))
		return ok && dep.Table.Symbols.Get(target).Kind == symbols.SymbolConstant
	}
	id, ok := tc.table.LookupFrom(tc.table.Root, name)
	return ok && tc.sym(id).Kind == symbols.SymbolConstant
}
