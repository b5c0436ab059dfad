package source

import (
	"fmt"

	"fortio.org/safecast"
)

type (
	// FileID identifies a file inside a FileSet.
	FileID uint32
	// FileFlags records how the content was obtained.
	FileFlags uint8
)

const (
	// FileVirtual marks content that did not come from disk (tests, editors, stdin).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File is one analyzed compilation unit text. Content is immutable once added.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of '\n'
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a 1-based position used for rendering.
type LineCol struct {
	Line uint32
	Col  uint32
}

// LinePosition is a 0-based position used by queries.
type LinePosition struct {
	Line uint32
	Col  uint32
}

func (p LinePosition) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Len returns the content length as uint32.
func (f *File) Len() uint32 {
	n, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("file %s too large: %w", f.Path, err))
	}
	return n
}

// Position converts a byte offset into a 0-based line/column pair.
func (f *File) Position(off uint32) LinePosition {
	lc := toLineCol(f.LineIdx, off)
	return LinePosition{Line: lc.Line - 1, Col: lc.Col - 1}
}

// Offset converts a 0-based line/column pair back into a byte offset.
// Columns past the end of the line are clamped to the line end.
func (f *File) Offset(pos LinePosition) (uint32, bool) {
	lines := uint32(len(f.LineIdx)) + 1
	if pos.Line >= lines {
		return 0, false
	}
	start := uint32(0)
	if pos.Line > 0 {
		start = f.LineIdx[pos.Line-1] + 1
	}
	end := f.Len()
	if pos.Line < uint32(len(f.LineIdx)) {
		end = f.LineIdx[pos.Line]
	}
	off := start + pos.Col
	if off > end {
		off = end
	}
	return off, true
}

// Line returns the text of a 1-based line without the trailing newline.
func (f *File) Line(n uint32) string {
	if n == 0 || n > uint32(len(f.LineIdx))+1 {
		return ""
	}
	start := uint32(0)
	if n > 1 {
		start = f.LineIdx[n-2] + 1
	}
	end := f.Len()
	if n-1 < uint32(len(f.LineIdx)) {
		end = f.LineIdx[n-1]
	}
	if start > end {
		return ""
	}
	return string(f.Content[start:end])
}
