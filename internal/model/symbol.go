package model

import (
	"balsa/internal/sema"
	"balsa/internal/source"
	"balsa/internal/symbols"
)

// Symbol is a handle on one declared entity. The zero Symbol is invalid.
type Symbol struct {
	m   *Model
	res *sema.Result
	id  symbols.SymbolID
	sym *symbols.Symbol
}

func (s Symbol) IsValid() bool { return s.sym != nil }

func (s Symbol) Kind() symbols.SymbolKind {
	if s.sym == nil {
		return symbols.SymbolInvalid
	}
	return s.sym.Kind
}

func (s Symbol) Name() string {
	if s.sym == nil {
		return ""
	}
	return s.res.Table.Name(s.id)
}

// Unit names the unit that declares the symbol.
func (s Symbol) Unit() string {
	if s.res == nil {
		return ""
	}
	return s.res.Unit
}

// Span is the name of the declaration, in the declaring unit's file.
func (s Symbol) Span() source.Span {
	if s.sym == nil {
		return source.Span{}
	}
	return s.sym.Span
}

func (s Symbol) Qualifiers() symbols.Qualifiers {
	if s.sym == nil {
		return 0
	}
	return s.sym.Quals
}

// Documentation is empty rather than absent for undocumented symbols.
func (s Symbol) Documentation() symbols.Documentation {
	if s.sym == nil {
		return symbols.Documentation{}
	}
	return s.sym.Doc
}

// IsRedeclaration reports a declaration that clashed with an earlier one.
func (s Symbol) IsRedeclaration() bool { return s.sym != nil && s.sym.Invalid }

func (s Symbol) TypeDescriptor() TypeDescriptor {
	if s.sym == nil || !s.sym.Type.IsValid() {
		return TypeDescriptor{}
	}
	t := s.sym.Type
	if s.sym.Kind == symbols.SymbolTypeDef {
		t = s.res.Types.Resolve(t)
	}
	return newTypeDescriptor(s.res.Types, t)
}

// AnnotAttachments lists the `@annot` attachments in source order.
func (s Symbol) AnnotAttachments() []AnnotAttachment {
	if s.sym == nil {
		return nil
	}
	out := make([]AnnotAttachment, 0, len(s.sym.Attachments))
	for i := range s.sym.Attachments {
		out = append(out, AnnotAttachment{owner: s, att: &s.sym.Attachments[i]})
	}
	return out
}

// Annotations returns the annotation symbols attached, skipping names that
// did not resolve.
func (s Symbol) Annotations() []Symbol {
	var out []Symbol
	for _, a := range s.AnnotAttachments() {
		if annot, ok := a.Annotation(); ok {
			out = append(out, annot)
		}
	}
	return out
}

// ResolvedValue is the source form of a folded constant.
func (s Symbol) ResolvedValue() (string, bool) {
	if s.sym == nil || s.sym.Kind != symbols.SymbolConstant {
		return "", false
	}
	return s.sym.Const.Resolved()
}

func (s Symbol) ConstValue() (ConstantValue, bool) {
	if s.sym == nil || s.sym.Kind != symbols.SymbolConstant || s.sym.Const.Value == nil {
		return ConstantValue{}, false
	}
	return ConstantValue{in: s.res.Types, v: s.sym.Const.Value}, true
}

// AnnotationPoints lists the declared attach points of an annotation symbol.
func (s Symbol) AnnotationPoints() []string {
	if s.sym == nil || s.sym.Annot == nil {
		return nil
	}
	return append([]string(nil), s.sym.Annot.Points...)
}

// ImportedUnit is the unit a MODULE symbol stands for.
func (s Symbol) ImportedUnit() string {
	if s.sym == nil {
		return ""
	}
	return s.sym.Import
}

// AnnotAttachment is one `@name value?` on a declaration.
type AnnotAttachment struct {
	owner Symbol
	att   *symbols.Attachment
}

func (a AnnotAttachment) Name() string { return a.att.Name }

func (a AnnotAttachment) Span() source.Span { return a.att.Span }

// Annotation resolves the attached annotation, local or imported.
func (a AnnotAttachment) Annotation() (Symbol, bool) {
	ref := a.att.Annotation
	if !ref.IsValid() {
		return Symbol{}, false
	}
	res := a.owner.res
	if !ref.IsLocal() {
		if a.owner.m == nil {
			return Symbol{}, false
		}
		if res = a.owner.m.deps[ref.Unit]; res == nil {
			return Symbol{}, false
		}
	}
	return Symbol{m: a.owner.m, res: res, id: ref.Sym, sym: res.Table.Symbols.Get(ref.Sym)}, true
}

// IsConstAnnotation is true when the value folded at compile time, or there
// is no value.
func (a AnnotAttachment) IsConstAnnotation() bool { return a.att.IsConst }

func (a AnnotAttachment) AttachmentValue() (ConstantValue, bool) {
	if a.att.Value == nil {
		return ConstantValue{}, false
	}
	return ConstantValue{in: a.owner.res.Types, v: a.att.Value}, true
}
