package ast

import "balsa/internal/source"

// File is the root of one parsed unit.
type File struct {
	Source source.FileID
	Span   source.Span
	Items  []ItemID
}

// Builder owns every arena of one parse. Parsers append; analysis reads.
type Builder struct {
	Files   *Arena[File]
	Items   *Items
	Exprs   *Exprs
	Types   *TypeExprs
	Stmts   *Stmts
	Strings *source.Interner
}

func NewBuilder(strings *source.Interner) *Builder {
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Builder{
		Files:   NewArena[File](1),
		Items:   newItems(),
		Exprs:   &Exprs{arena: NewArena[Expr](64)},
		Types:   &TypeExprs{arena: NewArena[TypeExpr](32)},
		Stmts:   &Stmts{arena: NewArena[Stmt](32)},
		Strings: strings,
	}
}

func (b *Builder) NewFile(src source.FileID, span source.Span) FileID {
	return FileID(b.Files.Allocate(File{Source: src, Span: span}))
}

func (b *Builder) File(id FileID) *File { return b.Files.Get(uint32(id)) }

func (b *Builder) PushItem(file FileID, item ItemID) {
	if f := b.File(file); f != nil {
		f.Items = append(f.Items, item)
	}
}

// Name resolves an interned identifier.
func (b *Builder) Name(id source.StringID) string {
	s, _ := b.Strings.Lookup(id)
	return s
}

// Imports lists the import items of a file in source order.
func (b *Builder) Imports(file FileID) []*ImportItem {
	f := b.File(file)
	if f == nil {
		return nil
	}
	var out []*ImportItem
	for _, id := range f.Items {
		if imp, ok := b.Items.Import(id); ok {
			out = append(out, imp)
		}
	}
	return out
}
