package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"balsa/internal/diag"
	"balsa/internal/source"
)

// Pretty renders each diagnostic with the source line it points at:
//
//	ERROR SEM3003: incompatible types: expected 'int', found '"s"'
//	  --> bad.bal:1:15
//	   |
//	 1 | const int x = "s";
//	   |               ^~~
//
// Files are looked up in fs by path; a diagnostic whose file is not there
// is printed without an excerpt.
func Pretty(w io.Writer, diags []diag.Located, fs *source.FileSet, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	var b strings.Builder
	for i, d := range diags {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s\n", p.severity(d.Severity).Sprintf("%s %s:", d.Severity, d.Code.ID()), d.Message)
		fmt.Fprintf(&b, "  %s %s:%d:%d\n", p.gutter.Sprint("-->"), formatPath(d.Path, opts.PathMode, opts.BaseDir), d.Line, d.Column)
		if f := lookup(fs, d.Path); f != nil && d.Line > 0 {
			writeExcerpt(&b, f, d, opts.Context, p)
		}
		if opts.ShowNotes {
			for _, n := range d.Notes {
				fmt.Fprintf(&b, "  %s %s (%s:%d:%d)\n", p.note.Sprint("= note:"), n.Message,
					formatPath(n.Path, opts.PathMode, opts.BaseDir), n.Line, n.Column)
			}
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func lookup(fs *source.FileSet, path string) *source.File {
	if fs == nil || path == "" {
		return nil
	}
	f, ok := fs.Lookup(path)
	if !ok {
		return nil
	}
	return f
}

func writeExcerpt(b *strings.Builder, f *source.File, d diag.Located, context int, p palette) {
	first := d.Line
	if context > 0 {
		first = max(1, d.Line-uint32(min(context, int(d.Line-1)))) // #nosec G115 -- bounded by d.Line
	}
	width := len(strconv.FormatUint(uint64(d.Line), 10))
	gutter := func(label string) string {
		return p.gutter.Sprintf(" %*s |", width, label)
	}

	fmt.Fprintf(b, "%s\n", gutter(""))
	for n := first; n <= d.Line; n++ {
		fmt.Fprintf(b, "%s %s\n", gutter(strconv.FormatUint(uint64(n), 10)), f.Line(n))
	}
	text := f.Line(d.Line)
	pad, marks := underline(text, d)
	fmt.Fprintf(b, "%s %s%s\n", gutter(""), pad, p.severity(d.Severity).Sprint(marks))
}

// underline returns the indentation and the ^~~ marker for d on line text.
// Columns are byte based; widths are measured in terminal cells, and tabs in
// the prefix are kept so the marker lines up.
func underline(text string, d diag.Located) (string, string) {
	start := min(int(d.Column-1), len(text))
	end := len(text)
	if d.EndLine == d.Line && d.EndColumn > d.Column {
		end = min(int(d.EndColumn-1), len(text))
	}
	if d.EndLine == 0 {
		end = start
	}

	var pad strings.Builder
	for _, r := range text[:start] {
		if r == '\t' {
			pad.WriteByte('\t')
			continue
		}
		pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	n := max(runewidth.StringWidth(text[start:end]), 1)
	return pad.String(), "^" + strings.Repeat("~", n-1)
}
