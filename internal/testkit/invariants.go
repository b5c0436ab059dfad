// Package testkit checks structural invariants of parsed and analyzed units.
// Tests and fuzz harnesses call it after a clean parse.
package testkit

import (
	"fmt"

	"balsa/internal/ast"
	"balsa/internal/sema"
	"balsa/internal/source"
)

// CheckSpanInvariants verifies a parsed file:
//   - file.Span belongs to sf and stays within its content
//   - every item span is non-empty and inside file.Span
func CheckSpanInvariants(b *ast.Builder, fileID ast.FileID, sf *source.File) error {
	if b == nil || sf == nil {
		return fmt.Errorf("nil builder or file")
	}
	f := b.File(fileID)
	if f == nil {
		return fmt.Errorf("file node not found")
	}
	if f.Span.File != sf.ID {
		return fmt.Errorf("file span points to different file id: got=%d want=%d", f.Span.File, sf.ID)
	}
	if f.Span.End < f.Span.Start || f.Span.End > sf.Len() {
		return fmt.Errorf("file span %v outside content of length %d", f.Span, sf.Len())
	}
	for _, it := range f.Items {
		item := b.Items.Get(it)
		if item == nil {
			return fmt.Errorf("nil item for id=%d", it)
		}
		if err := within(item.Span, f.Span, "item"); err != nil {
			return err
		}
		if item.Span.End == item.Span.Start {
			return fmt.Errorf("empty item span: %v", item.Span)
		}
		if d := b.Items.DeclOf(it); d != nil && !d.NameSpan.IsZero() {
			if err := within(d.NameSpan, item.Span, "name"); err != nil {
				return err
			}
		}
	}
	return nil
}

// CheckSymbolInvariants verifies an analyzed unit: declaration names and
// references lie inside the unit's file, and every reference to a local
// symbol names one that exists.
func CheckSymbolInvariants(res *sema.Result, sf *source.File) error {
	if res == nil || res.Table == nil || sf == nil {
		return fmt.Errorf("nil result or file")
	}
	whole := source.Span{File: sf.ID, Start: 0, End: sf.Len()}
	table := res.Table
	for _, id := range table.Symbols.IDs() {
		sym := table.Symbols.Get(id)
		if sym.Span.IsZero() {
			continue
		}
		if err := within(sym.Span, whole, "symbol "+fmt.Sprint(id)); err != nil {
			return err
		}
	}
	for _, ref := range table.Refs {
		if err := within(ref.Span, whole, "reference"); err != nil {
			return err
		}
		if ref.Target.IsLocal() && table.Symbols.Get(ref.Target.Sym) == nil {
			return fmt.Errorf("reference at %v targets missing symbol %d", ref.Span, ref.Target.Sym)
		}
	}
	return nil
}

func within(inner, outer source.Span, what string) error {
	if inner.File != outer.File {
		return fmt.Errorf("%s span file mismatch: got=%d want=%d", what, inner.File, outer.File)
	}
	if inner.Start < outer.Start || inner.End > outer.End || inner.End < inner.Start {
		return fmt.Errorf("%s span %v is outside %v", what, inner, outer)
	}
	return nil
}
