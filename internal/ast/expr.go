package ast

import (
	"balsa/internal/source"
	"balsa/internal/token"
)

type ExprKind uint8

const (
	ExprInvalid ExprKind = iota
	ExprIntLit
	ExprFloatLit
	ExprStringLit
	ExprBoolLit
	ExprNilLit
	ExprIdent   // name or unit:name
	ExprMapping // {k: v, ...}
	ExprUnary
	ExprBinary
	ExprCall
	ExprField // x.f
	ExprGroup // (x)
)

// MappingField is one `key: value` entry. String keys are allowed.
type MappingField struct {
	Key     string
	KeySpan source.Span
	Value   ExprID
}

type Expr struct {
	Kind     ExprKind
	Span     source.Span
	Text     string // literal text; decoded value for strings
	Module   source.StringID
	Name     source.StringID
	NameSpan source.Span
	Op       token.Kind
	X        ExprID
	Y        ExprID
	Args     []ExprID
	Fields   []MappingField
}

type Exprs struct {
	arena *Arena[Expr]
}

func (e *Exprs) New(x Expr) ExprID { return ExprID(e.arena.Allocate(x)) }

func (e *Exprs) Get(id ExprID) *Expr { return e.arena.Get(uint32(id)) }

// Unparen strips grouping parentheses.
func (e *Exprs) Unparen(id ExprID) ExprID {
	for {
		x := e.Get(id)
		if x == nil || x.Kind != ExprGroup {
			return id
		}
		id = x.X
	}
}
