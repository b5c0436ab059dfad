package ast

import (
	"testing"

	"balsa/internal/source"
)

func TestArenaReservesZero(t *testing.T) {
	a := NewArena[int](0)
	if a.Get(0) != nil || a.Get(1) != nil {
		t.Fatalf("empty arena must not return nodes")
	}
	id := a.Allocate(7)
	if id != 1 || *a.Get(id) != 7 {
		t.Fatalf("Allocate returned %d", id)
	}
}

func TestItemPayloadAccessors(t *testing.T) {
	b := NewBuilder(nil)
	name := b.Strings.Intern("c")
	id := b.Items.NewConst(source.Span{End: 10}, ConstItem{Decl: Decl{Name: name, Mods: ModPublic}})
	c, ok := b.Items.Const(id)
	if !ok || c.Name != name || !c.Mods.Has(ModPublic) {
		t.Fatalf("const payload = %+v, %v", c, ok)
	}
	if _, ok := b.Items.Func(id); ok {
		t.Fatalf("const item reported as function")
	}
	if d := b.Items.DeclOf(id); d == nil || b.Name(d.Name) != "c" {
		t.Fatalf("DeclOf = %+v", d)
	}
}

func TestUnparen(t *testing.T) {
	b := NewBuilder(nil)
	inner := b.Exprs.New(Expr{Kind: ExprIntLit, Text: "1"})
	outer := b.Exprs.New(Expr{Kind: ExprGroup, X: b.Exprs.New(Expr{Kind: ExprGroup, X: inner})})
	if got := b.Exprs.Unparen(outer); got != inner {
		t.Fatalf("Unparen = %d, want %d", got, inner)
	}
}
