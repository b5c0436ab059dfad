package project

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"balsa/internal/ast"
	"balsa/internal/lexer"
	"balsa/internal/parser"
	"balsa/internal/source"
	"balsa/internal/types"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestLoadManifestExplicitUnits(t *testing.T) {
	dir := writeTree(t, map[string]string{
		ManifestName: `[project]
name = "demo"

[analysis]
records = "open"
jobs = 2
max-diagnostics = 10

[units]
"lib/math" = "src/math.bal"
app = "app.bal"
`,
	})
	m, err := LoadManifest(filepath.Join(dir, ManifestName))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Name != "demo" || m.Root != dir {
		t.Fatalf("manifest = %+v", m)
	}
	if m.Analysis.Records != types.RecordsOpen || m.Analysis.Jobs != 2 || m.Analysis.MaxDiagnostics != 10 {
		t.Fatalf("analysis = %+v", m.Analysis)
	}
	if len(m.Units) != 2 || m.Units[0].Name != "app" || m.Units[1].Name != "lib/math" {
		t.Fatalf("units = %+v", m.Units)
	}
	if want := filepath.Join(dir, "src", "math.bal"); m.Units[1].File != want {
		t.Fatalf("file = %q, want %q", m.Units[1].File, want)
	}
}

func TestLoadManifestDiscoversUnits(t *testing.T) {
	dir := writeTree(t, map[string]string{
		ManifestName:       "[project]\nname = \"demo\"\n",
		"app.bal":          "",
		"lib/strings.bal":  "",
		".hidden/skip.bal": "",
		"notes.txt":        "",
	})
	m, err := LoadManifest(filepath.Join(dir, ManifestName))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	var names []string
	for _, u := range m.Units {
		names = append(names, u.Name)
	}
	if got := strings.Join(names, ","); got != "app,lib/strings" {
		t.Fatalf("units = %s", got)
	}
}

func TestLoadManifestErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
		is      error
	}{
		{"no project", "[analysis]\njobs = 1\n", "", ErrProjectSectionMissing},
		{"no name", "[project]\nname = \"  \"\n", "", ErrProjectNameMissing},
		{"unknown key", "[project]\nname = \"x\"\nedition = 2\n", "unknown key", nil},
		{"bad records", "[project]\nname = \"x\"\n[analysis]\nrecords = \"loose\"\n", "records", nil},
		{"negative jobs", "[project]\nname = \"x\"\n[analysis]\njobs = -1\n", "jobs", nil},
		{"bad unit", "[project]\nname = \"x\"\n[units]\n\"a/../b\" = \"b.bal\"\n", "invalid unit name", nil},
		{"bad toml", "[project\n", "failed to parse TOML", nil},
	}
	for _, tc := range cases {
		dir := writeTree(t, map[string]string{ManifestName: tc.content})
		_, err := LoadManifest(filepath.Join(dir, ManifestName))
		if err == nil {
			t.Fatalf("%s: expected an error", tc.name)
		}
		if tc.is != nil && !errors.Is(err, tc.is) {
			t.Fatalf("%s: error %v is not %v", tc.name, err, tc.is)
		}
		if tc.want != "" && !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: error %q lacks %q", tc.name, err, tc.want)
		}
	}
}

func TestFindManifestWalksUp(t *testing.T) {
	dir := writeTree(t, map[string]string{
		ManifestName:   "[project]\nname = \"demo\"\n",
		"deep/x/y.bal": "",
	})
	path, ok, err := FindManifest(filepath.Join(dir, "deep", "x"))
	if err != nil || !ok {
		t.Fatalf("FindManifest: ok=%v err=%v", ok, err)
	}
	if path != filepath.Join(dir, ManifestName) {
		t.Fatalf("path = %q", path)
	}
}

func TestNormalizeUnitName(t *testing.T) {
	good := map[string]string{
		"app.bal":       "app",
		"lib\\math.bal": "lib/math",
		"/lib/strings":  "lib/strings",
	}
	for in, want := range good {
		got, err := NormalizeUnitName(in)
		if err != nil || got != want {
			t.Fatalf("NormalizeUnitName(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	for _, in := range []string{"", ".bal", "a//b", "a/./b", "../a"} {
		if _, err := NormalizeUnitName(in); err == nil {
			t.Fatalf("NormalizeUnitName(%q) should fail", in)
		}
	}
}

func TestCollectUnitMeta(t *testing.T) {
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("app.bal", []byte("import lib;\nimport util;\n\nconst int x = lib:LIMIT;\n")))
	b := ast.NewBuilder(nil)
	parsed := parser.ParseFile(context.Background(), lexer.New(f, lexer.Options{}), b, parser.Options{})

	meta := CollectUnitMeta("app", b, parsed.File, f)
	if meta.Name != "app" || meta.Path != "app.bal" {
		t.Fatalf("meta = %+v", meta)
	}
	if len(meta.Imports) != 2 || meta.Imports[0].Unit != "lib" || meta.Imports[1].Unit != "util" {
		t.Fatalf("imports = %+v", meta.Imports)
	}
	if meta.ContentHash.IsZero() || !meta.UnitHash.IsZero() {
		t.Fatalf("hashes: content %x unit %x", meta.ContentHash, meta.UnitHash)
	}
}

func TestCombineDependsOnOrder(t *testing.T) {
	a := Digest{1}
	b := Digest{2}
	c := Digest{3}
	if Combine(a, b, c) == Combine(a, c, b) {
		t.Fatal("dependency order should change the hash")
	}
	if Combine(a) == a || Combine(a).IsZero() {
		t.Fatal("Combine should rehash the content")
	}
}
