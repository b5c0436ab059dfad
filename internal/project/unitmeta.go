package project

import (
	"balsa/internal/ast"
	"balsa/internal/source"
)

type ImportMeta struct {
	Unit string
	Span source.Span
}

// UnitMeta is what the unit graph needs to know about one parsed unit.
type UnitMeta struct {
	Name        string
	Path        string
	Span        source.Span // the whole file
	Imports     []ImportMeta
	ContentHash Digest
	// UnitHash folds in the hashes of every dependency; zero until
	// the graph has been ordered.
	UnitHash Digest
}

// CollectUnitMeta reads the import items of a parsed unit. Units are
// referenced by the names written in import statements.
func CollectUnitMeta(name string, b *ast.Builder, fileID ast.FileID, src *source.File) UnitMeta {
	meta := UnitMeta{Name: name}
	if src != nil {
		meta.Path = src.Path
		meta.ContentHash = Digest(src.Hash)
	}
	file := b.File(fileID)
	if file == nil {
		return meta
	}
	meta.Span = file.Span
	for _, id := range file.Items {
		imp, ok := b.Items.Import(id)
		if !ok || imp.Unit == "" {
			continue
		}
		meta.Imports = append(meta.Imports, ImportMeta{Unit: imp.Unit, Span: imp.UnitSpan})
	}
	return meta
}
