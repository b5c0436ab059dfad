// Package model is the read-only query surface over one analyzed unit.
//
// A Model is built once from a finished semantic pass and never changes;
// any number of goroutines may query it. Nothing here reports errors for
// missing things: lookups return ok=false.
package model

import (
	"balsa/internal/diag"
	"balsa/internal/sema"
	"balsa/internal/source"
	"balsa/internal/symbols"
)

// Diagnostic is a diagnostic resolved to a 1-based line and column.
type Diagnostic struct {
	Message  string
	Severity diag.Severity
	Code     diag.Code
	Line     uint32
	Column   uint32
}

type Model struct {
	unit  string
	res   *sema.Result
	file  *source.File
	deps  map[string]*sema.Result
	diags []Diagnostic
}

// New wraps a finished result. deps are the published results of the units
// res imports; cross-unit references resolve through them.
func New(res *sema.Result, file *source.File, diags []*diag.Diagnostic, fs *source.FileSet, deps map[string]*sema.Result) *Model {
	m := &Model{unit: res.Unit, res: res, file: file, deps: deps}
	for _, d := range diag.Locate(diags, fs) {
		m.diags = append(m.diags, Diagnostic{
			Message:  d.Message,
			Severity: d.Severity,
			Code:     d.Code,
			Line:     d.Line,
			Column:   d.Column,
		})
	}
	return m
}

func (m *Model) Unit() string { return m.unit }

// File is the analyzed source text.
func (m *Model) File() *source.File { return m.file }

// Result exposes the underlying semantic result for tools that need the raw
// arenas.
func (m *Model) Result() *sema.Result { return m.res }

func (m *Model) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), m.diags...)
}

// HasErrors reports whether any diagnostic is an error.
func (m *Model) HasErrors() bool {
	for _, d := range m.diags {
		if d.Severity >= diag.SevError {
			return true
		}
	}
	return false
}

// Symbols lists the live module-level declarations in source order.
func (m *Model) Symbols() []Symbol {
	root := m.res.Table.Scopes.Get(m.res.Table.Root)
	out := make([]Symbol, 0, len(root.Symbols))
	for _, id := range root.Symbols {
		if sym := m.res.Table.Symbols.Get(id); !sym.Invalid {
			out = append(out, m.symbol(m.res, id))
		}
	}
	return out
}

// Lookup finds a module-level symbol by name.
func (m *Model) Lookup(name string) (Symbol, bool) {
	id, ok := m.res.Table.LookupName(name)
	if !ok {
		return Symbol{}, false
	}
	return m.symbol(m.res, id), true
}

// SymbolAt returns the symbol whose declaration name or reference covers
// pos (0-based). When spans nest the innermost wins.
func (m *Model) SymbolAt(pos source.LinePosition) (Symbol, bool) {
	off, ok := m.offset(pos)
	if !ok {
		return Symbol{}, false
	}
	return m.SymbolAtOffset(off)
}

func (m *Model) SymbolAtOffset(off uint32) (Symbol, bool) {
	table := m.res.Table
	var (
		best     source.Span
		bestRes  *sema.Result
		bestID   symbols.SymbolID
		found    bool
		consider = func(sp source.Span, res *sema.Result, id symbols.SymbolID) {
			if !covers(sp, m.file.ID, off) {
				return
			}
			if found && sp.Len() >= best.Len() {
				return
			}
			best, bestRes, bestID, found = sp, res, id, true
		}
	)
	for _, id := range table.Symbols.IDs() {
		consider(table.Symbols.Get(id).Span, m.res, id)
	}
	for _, ref := range table.Refs {
		res := m.res
		if !ref.Target.IsLocal() {
			res = m.deps[ref.Target.Unit]
			if res == nil {
				continue
			}
		}
		consider(ref.Span, res, ref.Target.Sym)
	}
	if !found {
		return Symbol{}, false
	}
	return m.symbol(bestRes, bestID), true
}

// VisibleSymbols lists what an unqualified name at pos could refer to,
// innermost scope first.
func (m *Model) VisibleSymbols(pos source.LinePosition) []Symbol {
	off, ok := m.offset(pos)
	if !ok {
		return nil
	}
	table := m.res.Table
	ids := table.Visible(table.ScopeAt(m.file.ID, off))
	out := make([]Symbol, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.symbol(m.res, id))
	}
	return out
}

// TypeAt returns the type of the innermost typed expression covering pos.
func (m *Model) TypeAt(pos source.LinePosition) (TypeDescriptor, bool) {
	off, ok := m.offset(pos)
	if !ok {
		return TypeDescriptor{}, false
	}
	var (
		best  source.Span
		found bool
		td    TypeDescriptor
	)
	for _, et := range m.res.ExprTypes {
		if !covers(et.Span, m.file.ID, off) || (found && et.Span.Len() >= best.Len()) {
			continue
		}
		best, found = et.Span, true
		td = newTypeDescriptor(m.res.Types, et.Type)
	}
	return td, found
}

func (m *Model) offset(pos source.LinePosition) (uint32, bool) {
	if m.file == nil {
		return 0, false
	}
	return m.file.Offset(pos)
}

// covers treats the end as inclusive so a cursor right after a name still
// selects it.
func covers(sp source.Span, file source.FileID, off uint32) bool {
	return !sp.IsZero() && sp.File == file && sp.Start <= off && off <= sp.End
}

func (m *Model) symbol(res *sema.Result, id symbols.SymbolID) Symbol {
	return Symbol{m: m, res: res, id: id, sym: res.Table.Symbols.Get(id)}
}
