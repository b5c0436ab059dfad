package diag

import (
	"fmt"
	"slices"
	"strings"

	"balsa/internal/source"
)

// Located is a diagnostic resolved to a path and a 1-based position. The
// end position is exclusive and zero when unknown.
type Located struct {
	Severity  Severity
	Code      Code
	Path      string
	Line      uint32
	Column    uint32
	EndLine   uint32
	EndColumn uint32
	Message   string
	Notes     []Located
}

// Locate resolves diagnostics against fs and sorts them by path and position.
func Locate(diags []*Diagnostic, fs *source.FileSet) []Located {
	out := make([]Located, 0, len(diags))
	for _, d := range diags {
		out = append(out, locateOne(d.Severity, d.Code, d.Primary, d.Message, fs, d.Notes))
	}
	slices.SortStableFunc(out, func(a, b Located) int {
		if c := strings.Compare(a.Path, b.Path); c != 0 {
			return c
		}
		if a.Line != b.Line {
			return int(a.Line) - int(b.Line)
		}
		if a.Column != b.Column {
			return int(a.Column) - int(b.Column)
		}
		return int(a.Code) - int(b.Code)
	})
	return out
}

func locateOne(sev Severity, code Code, sp source.Span, msg string, fs *source.FileSet, notes []Note) Located {
	loc := Located{Severity: sev, Code: code, Message: msg}
	if fs != nil {
		if f := fs.Get(sp.File); f != nil {
			start, end := fs.Resolve(sp)
			loc.Path, loc.Line, loc.Column = f.Path, start.Line, start.Col
			loc.EndLine, loc.EndColumn = end.Line, end.Col
		}
	}
	for _, n := range notes {
		loc.Notes = append(loc.Notes, locateOne(SevInfo, code, n.Span, n.Msg, fs, nil))
	}
	return loc
}

// FormatShortDiagnostics renders one line per diagnostic:
//
//	path:line:col: ERROR SEM3003: incompatible types: expected 'int', found 'string'
func FormatShortDiagnostics(diags []*Diagnostic, fs *source.FileSet, includeNotes bool) string {
	var b strings.Builder
	for i, d := range Locate(diags, fs) {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s:%d:%d: %s %s: %s", d.Path, d.Line, d.Column, d.Severity, d.Code.ID(), d.Message)
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(&b, "\n  %s:%d:%d: note: %s", n.Path, n.Line, n.Column, n.Message)
		}
	}
	return b.String()
}
