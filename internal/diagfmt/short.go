package diagfmt

import (
	"fmt"
	"io"

	"balsa/internal/diag"
)

// Short writes one line per diagnostic:
//
//	path:line:col: ERROR SEM3003: incompatible types: expected 'int', found 'string'
//
// Notes follow on indented lines when showNotes is set.
func Short(w io.Writer, diags []diag.Located, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	for _, d := range diags {
		loc := p.path.Sprintf("%s:%d:%d:", formatPath(d.Path, opts.PathMode, opts.BaseDir), d.Line, d.Column)
		if _, err := fmt.Fprintf(w, "%s %s %s: %s\n", loc, p.severity(d.Severity).Sprint(d.Severity.String()), d.Code.ID(), d.Message); err != nil {
			return err
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			if _, err := fmt.Fprintf(w, "  %s:%d:%d: %s %s\n", formatPath(n.Path, opts.PathMode, opts.BaseDir), n.Line, n.Column, p.note.Sprint("note:"), n.Message); err != nil {
				return err
			}
		}
	}
	return nil
}
