package ast

import "balsa/internal/source"

type TypeExprKind uint8

const (
	TypeExprInvalid TypeExprKind = iota
	TypeExprBuiltin              // int, string, readonly, any, ...
	TypeExprNil                  // ()
	TypeExprName                 // Foo or unit:Foo
	TypeExprSingleton            // 1, "a", true, -2
	TypeExprRecord
	TypeExprMap
	TypeExprUnion
	TypeExprIntersection
	TypeExprOptional // T?
	TypeExprFunction
	TypeExprGroup // (T)
)

// RecordFieldExpr is one `T name?;` entry of a record type descriptor.
type RecordFieldExpr struct {
	Name     source.StringID
	NameSpan source.Span
	Type     TypeExprID
	Optional bool
}

// TypeExpr is a type descriptor as written. Only the fields relevant to Kind
// are set.
type TypeExpr struct {
	Kind        TypeExprKind
	Span        source.Span
	Builtin     string          // builtin keyword text
	Module      source.StringID // qualifier for TypeExprName
	Name        source.StringID
	NameSpan    source.Span
	Literal     ExprID       // TypeExprSingleton
	Members     []TypeExprID // union / intersection operands
	Elem        TypeExprID   // map<T>, T?, (T)
	Fields      []RecordFieldExpr
	Closed      bool       // {| |}
	Rest        TypeExprID // T...;
	Params      []TypeExprID
	Result      TypeExprID
	Isolated    bool
	AnyFunction bool // bare `function`
}

type TypeExprs struct {
	arena *Arena[TypeExpr]
}

func (t *TypeExprs) New(te TypeExpr) TypeExprID { return TypeExprID(t.arena.Allocate(te)) }

func (t *TypeExprs) Get(id TypeExprID) *TypeExpr { return t.arena.Get(uint32(id)) }
