package source

import "testing"

func TestFileSetLatestWins(t *testing.T) {
	fs := NewFileSet()
	first := fs.AddVirtual("main.bal", []byte("const a = 1;"))
	second := fs.AddVirtual("main.bal", []byte("const a = 2;"))
	if first == second {
		t.Fatalf("expected distinct ids, got %d twice", first)
	}
	f, ok := fs.Lookup("main.bal")
	if !ok || f.ID != second {
		t.Fatalf("Lookup returned %v, %v; want id %d", f, ok, second)
	}
	if string(fs.Get(first).Content) != "const a = 1;" {
		t.Fatalf("older version must stay readable")
	}
}

func TestAddVirtualNormalizes(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("x.bal", []byte{0xEF, 0xBB, 0xBF, 'a', '\r', '\n', 'b'})
	f := fs.Get(id)
	if string(f.Content) != "a\nb" {
		t.Fatalf("content = %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 || f.Flags&FileVirtual == 0 {
		t.Fatalf("flags = %b", f.Flags)
	}
	if len(f.LineIdx) != 1 || f.LineIdx[0] != 1 {
		t.Fatalf("LineIdx = %v", f.LineIdx)
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("x.bal", []byte("ab\ncd\n\nef"))
	cases := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{2, LineCol{1, 3}},
		{3, LineCol{2, 1}},
		{4, LineCol{2, 2}},
		{6, LineCol{3, 1}},
		{7, LineCol{4, 1}},
		{9, LineCol{4, 3}},
	}
	for _, tc := range cases {
		start, _ := fs.Resolve(Span{File: id, Start: tc.off, End: tc.off})
		if start != tc.want {
			t.Errorf("offset %d: got %+v, want %+v", tc.off, start, tc.want)
		}
	}
}

func TestOffsetRoundTripsPosition(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("x.bal", []byte("const a = 1;\npublic const int b = 2;\n")))
	off, ok := f.Offset(LinePosition{Line: 1, Col: 17})
	if !ok {
		t.Fatalf("offset not found")
	}
	if got := string(f.Content[off : off+1]); got != "b" {
		t.Fatalf("offset points at %q", got)
	}
	if pos := f.Position(off); pos != (LinePosition{Line: 1, Col: 17}) {
		t.Fatalf("Position = %v", pos)
	}
	if _, ok := f.Offset(LinePosition{Line: 9}); ok {
		t.Fatalf("line past EOF must not resolve")
	}
	off, _ = f.Offset(LinePosition{Line: 0, Col: 400})
	if off != 12 {
		t.Fatalf("column clamp: got %d, want 12", off)
	}
}

func TestLineText(t *testing.T) {
	f := NewFileSet()
	file := f.Get(f.AddVirtual("x.bal", []byte("one\ntwo")))
	if file.Line(1) != "one" || file.Line(2) != "two" || file.Line(3) != "" {
		t.Fatalf("lines: %q %q %q", file.Line(1), file.Line(2), file.Line(3))
	}
}

func TestSpanContainsAndCover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 8}
	b := Span{File: 1, Start: 2, End: 5}
	if got := a.Cover(b); got.Start != 2 || got.End != 8 {
		t.Fatalf("Cover = %v", got)
	}
	if !a.Contains(8) || a.Contains(3) {
		t.Fatalf("Contains boundary handling is off")
	}
}
