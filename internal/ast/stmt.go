package ast

import "balsa/internal/source"

type StmtKind uint8

const (
	StmtInvalid StmtKind = iota
	StmtBlock
	StmtVar    // T x = e; / var x = e; / final T x = e;
	StmtAssign // x = e;
	StmtExpr
	StmtReturn
	StmtIf
)

type Stmt struct {
	Kind     StmtKind
	Span     source.Span
	Stmts    []StmtID // StmtBlock
	Name     source.StringID
	NameSpan source.Span
	Type     TypeExprID // StmtVar, NoTypeExprID for var
	Final    bool
	Target   ExprID // StmtAssign
	Value    ExprID // initializer, assigned value, expression, return value, condition
	Then     StmtID
	Else     StmtID
}

type Stmts struct {
	arena *Arena[Stmt]
}

func (s *Stmts) New(st Stmt) StmtID { return StmtID(s.arena.Allocate(st)) }

func (s *Stmts) Get(id StmtID) *Stmt { return s.arena.Get(uint32(id)) }
