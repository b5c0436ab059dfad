package ast

import "balsa/internal/source"

type ItemKind uint8

const (
	ItemInvalid ItemKind = iota
	ItemImport
	ItemConst
	ItemTypeDef
	ItemAnnotation
	ItemFunction
	ItemVar
)

func (k ItemKind) String() string {
	switch k {
	case ItemImport:
		return "import"
	case ItemConst:
		return "const"
	case ItemTypeDef:
		return "type"
	case ItemAnnotation:
		return "annotation"
	case ItemFunction:
		return "function"
	case ItemVar:
		return "var"
	}
	return "invalid"
}

// Modifiers are the qualifier keywords written before a declaration.
type Modifiers uint8

const (
	ModPublic Modifiers = 1 << iota
	ModPrivate
	ModIsolated
	ModFinal
	ModReadonly
	ModConst // const annotation
)

func (m Modifiers) Has(x Modifiers) bool { return m&x != 0 }

type Item struct {
	Kind    ItemKind
	Span    source.Span
	Payload uint32
}

// Decl is the part every named declaration shares.
type Decl struct {
	Name     source.StringID
	NameSpan source.Span
	Mods     Modifiers
	Doc      []string
	DocSpan  source.Span
	Attrs    []Attachment
}

// Attachment is `@name value?` or `@unit:name value?`.
type Attachment struct {
	Module     source.StringID
	ModuleSpan source.Span
	Name       source.StringID
	NameSpan   source.Span
	Value      ExprID
	Span       source.Span
}

type ImportItem struct {
	Unit       string // "foo" or "org/foo"
	UnitSpan   source.Span
	Prefix     source.StringID
	PrefixSpan source.Span
}

type ConstItem struct {
	Decl
	Type  TypeExprID
	Value ExprID
}

type TypeDefItem struct {
	Decl
	Type TypeExprID
}

type AttachPoint struct {
	Name string
	Span source.Span
}

type AnnotationItem struct {
	Decl
	Type   TypeExprID
	Points []AttachPoint
}

type Param struct {
	Name     source.StringID
	NameSpan source.Span
	Type     TypeExprID
	Span     source.Span
}

type FuncItem struct {
	Decl
	Params []Param
	Result TypeExprID
	Body   StmtID
}

type VarItem struct {
	Decl
	Type  TypeExprID // NoTypeExprID for `var`
	Value ExprID
}

// Items keeps item headers plus one arena per payload kind.
type Items struct {
	arena   *Arena[Item]
	imports *Arena[ImportItem]
	consts  *Arena[ConstItem]
	typeDef *Arena[TypeDefItem]
	annots  *Arena[AnnotationItem]
	funcs   *Arena[FuncItem]
	vars    *Arena[VarItem]
}

func newItems() *Items {
	return &Items{
		arena:   NewArena[Item](32),
		imports: NewArena[ImportItem](4),
		consts:  NewArena[ConstItem](16),
		typeDef: NewArena[TypeDefItem](8),
		annots:  NewArena[AnnotationItem](4),
		funcs:   NewArena[FuncItem](8),
		vars:    NewArena[VarItem](8),
	}
}

func (it *Items) Get(id ItemID) *Item { return it.arena.Get(uint32(id)) }

func (it *Items) Len() int { return it.arena.Len() }

func (it *Items) new(kind ItemKind, span source.Span, payload uint32) ItemID {
	return ItemID(it.arena.Allocate(Item{Kind: kind, Span: span, Payload: payload}))
}

func (it *Items) NewImport(span source.Span, imp ImportItem) ItemID {
	return it.new(ItemImport, span, it.imports.Allocate(imp))
}

func (it *Items) NewConst(span source.Span, c ConstItem) ItemID {
	return it.new(ItemConst, span, it.consts.Allocate(c))
}

func (it *Items) NewTypeDef(span source.Span, td TypeDefItem) ItemID {
	return it.new(ItemTypeDef, span, it.typeDef.Allocate(td))
}

func (it *Items) NewAnnotation(span source.Span, an AnnotationItem) ItemID {
	return it.new(ItemAnnotation, span, it.annots.Allocate(an))
}

func (it *Items) NewFunc(span source.Span, fn FuncItem) ItemID {
	return it.new(ItemFunction, span, it.funcs.Allocate(fn))
}

func (it *Items) NewVar(span source.Span, v VarItem) ItemID {
	return it.new(ItemVar, span, it.vars.Allocate(v))
}

func (it *Items) Import(id ItemID) (*ImportItem, bool) {
	if item := it.Get(id); item != nil && item.Kind == ItemImport {
		return it.imports.Get(item.Payload), true
	}
	return nil, false
}

func (it *Items) Const(id ItemID) (*ConstItem, bool) {
	if item := it.Get(id); item != nil && item.Kind == ItemConst {
		return it.consts.Get(item.Payload), true
	}
	return nil, false
}

func (it *Items) TypeDef(id ItemID) (*TypeDefItem, bool) {
	if item := it.Get(id); item != nil && item.Kind == ItemTypeDef {
		return it.typeDef.Get(item.Payload), true
	}
	return nil, false
}

func (it *Items) Annotation(id ItemID) (*AnnotationItem, bool) {
	if item := it.Get(id); item != nil && item.Kind == ItemAnnotation {
		return it.annots.Get(item.Payload), true
	}
	return nil, false
}

func (it *Items) Func(id ItemID) (*FuncItem, bool) {
	if item := it.Get(id); item != nil && item.Kind == ItemFunction {
		return it.funcs.Get(item.Payload), true
	}
	return nil, false
}

func (it *Items) Var(id ItemID) (*VarItem, bool) {
	if item := it.Get(id); item != nil && item.Kind == ItemVar {
		return it.vars.Get(item.Payload), true
	}
	return nil, false
}

// DeclOf returns the shared declaration header, nil for imports.
func (it *Items) DeclOf(id ItemID) *Decl {
	if c, ok := it.Const(id); ok {
		return &c.Decl
	}
	if td, ok := it.TypeDef(id); ok {
		return &td.Decl
	}
	if an, ok := it.Annotation(id); ok {
		return &an.Decl
	}
	if fn, ok := it.Func(id); ok {
		return &fn.Decl
	}
	if v, ok := it.Var(id); ok {
		return &v.Decl
	}
	return nil
}
