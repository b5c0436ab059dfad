package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"balsa/internal/diag"
	"balsa/internal/source"
)

func sample(t *testing.T) (*source.FileSet, []diag.Located) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("/home/user/project/src/bad.bal", []byte("const int a = 1;\nconst int x = \"s\";\n"))
	d := diag.New(diag.SevError, diag.SemaIncompatibleTypes, source.Span{File: id, Start: 31, End: 34},
		"incompatible types: expected 'int', found '\"s\"'").
		WithNote(source.Span{File: id, Start: 6, End: 9}, "declared here")
	return fs, diag.Locate([]*diag.Diagnostic{d}, fs)
}

func TestLocateEnd(t *testing.T) {
	_, diags := sample(t)
	d := diags[0]
	if d.Line != 2 || d.Column != 15 || d.EndLine != 2 || d.EndColumn != 18 {
		t.Fatalf("location = %d:%d-%d:%d", d.Line, d.Column, d.EndLine, d.EndColumn)
	}
}

func TestPathModes(t *testing.T) {
	_, diags := sample(t)
	cases := []struct {
		mode PathMode
		want string
	}{
		{PathModeAbsolute, "/home/user/project/src/bad.bal:2:15:"},
		{PathModeRelative, "src/bad.bal:2:15:"},
		{PathModeBasename, "bad.bal:2:15:"},
		{PathModeAuto, "src/bad.bal:2:15:"},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		if err := Short(&buf, diags, PrettyOpts{PathMode: tc.mode, BaseDir: "/home/user/project"}); err != nil {
			t.Fatalf("Short: %v", err)
		}
		if !strings.HasPrefix(buf.String(), tc.want) {
			t.Fatalf("mode %d: got %q, want prefix %q", tc.mode, buf.String(), tc.want)
		}
	}
	if got := formatPath("/elsewhere/x.bal", PathModeAuto, "/home/user/project"); got != "/elsewhere/x.bal" {
		t.Fatalf("auto outside base = %q", got)
	}
}

func TestShortWithNotes(t *testing.T) {
	_, diags := sample(t)
	var buf bytes.Buffer
	if err := Short(&buf, diags, PrettyOpts{PathMode: PathModeBasename, ShowNotes: true}); err != nil {
		t.Fatalf("Short: %v", err)
	}
	want := "bad.bal:2:15: ERROR SEM3003: incompatible types: expected 'int', found '\"s\"'\n" +
		"  bad.bal:1:7: note: declared here\n"
	if buf.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestPrettyExcerpt(t *testing.T) {
	fs, diags := sample(t)
	var buf bytes.Buffer
	if err := Pretty(&buf, diags, fs, PrettyOpts{Context: 1, PathMode: PathModeBasename, ShowNotes: true}); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"ERROR SEM3003: incompatible types",
		"--> bad.bal:2:15",
		" 1 | const int a = 1;",
		" 2 | const int x = \"s\";",
		"   |               ^~~\n",
		"= note: declared here (bad.bal:1:7)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestUnderlineWideRunes(t *testing.T) {
	d := diag.Located{Line: 1, Column: 5, EndLine: 1, EndColumn: 7}
	pad, marks := underline("\t界 x = 1", d)
	if pad != "\t  " || marks != "^~" {
		t.Fatalf("pad %q marks %q", pad, marks)
	}
	pad, marks = underline("abc", diag.Located{Line: 1, Column: 2})
	if pad != " " || marks != "^" {
		t.Fatalf("no end: pad %q marks %q", pad, marks)
	}
}

func TestJSONOutput(t *testing.T) {
	_, diags := sample(t)
	var buf bytes.Buffer
	if err := JSON(&buf, diags, JSONOpts{PathMode: PathModeBasename, IncludeNotes: true}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 1 || out.Diagnostics[0].Code != "SEM3003" || out.Diagnostics[0].Location.File != "bad.bal" {
		t.Fatalf("output = %+v", out)
	}
	if len(out.Diagnostics[0].Notes) != 1 {
		t.Fatalf("notes = %+v", out.Diagnostics[0].Notes)
	}
	if got := BuildDiagnosticsOutput(append(diags, diags...), JSONOpts{Max: 1}); got.Count != 1 {
		t.Fatalf("max ignored: %d", got.Count)
	}
}

func TestSarifOutput(t *testing.T) {
	_, diags := sample(t)
	var buf bytes.Buffer
	meta := SarifRunMeta{ToolName: "balsa", ToolVersion: "0.3.0", InvocationArgs: []string{"check"}, PathMode: PathModeBasename}
	if err := Sarif(&buf, diags, meta); err != nil {
		t.Fatalf("Sarif: %v", err)
	}
	var log struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Name  string `json:"name"`
					Rules []struct {
						ID string `json:"id"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Invocations []struct {
				ExecutionSuccessful bool `json:"executionSuccessful"`
			} `json:"invocations"`
			Results []struct {
				RuleID string `json:"ruleId"`
				Level  string `json:"level"`
			} `json:"results"`
		} `json:"runs"`
	}
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("log = %+v", log)
	}
	run := log.Runs[0]
	if run.Tool.Driver.Name != "balsa" || len(run.Tool.Driver.Rules) != 1 || run.Tool.Driver.Rules[0].ID != "SEM3003" {
		t.Fatalf("driver = %+v", run.Tool.Driver)
	}
	if len(run.Results) != 1 || run.Results[0].Level != "error" {
		t.Fatalf("results = %+v", run.Results)
	}
	if len(run.Invocations) != 1 || run.Invocations[0].ExecutionSuccessful {
		t.Fatalf("invocations = %+v", run.Invocations)
	}
}
