package driver

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"balsa/internal/diag"
	"balsa/internal/source"
)

const (
	libSrc  = "public const int LIMIT = 5;\npublic type Point record {| int x; int y; |};\n"
	appSrc  = "import lib;\n\nconst int twice = lib:LIMIT * 2;\nlib:Point origin = {x: 0, y: 0};\n"
	utilSrc = "const string name = \"util\";\n"
)

func newProject(units ...string) *Project {
	p := NewProject("test")
	for i := 0; i+1 < len(units); i += 2 {
		p.AddSource(units[i], []byte(units[i+1]))
	}
	return p
}

func analyze(t *testing.T, p *Project, opts Options) *ProjectResult {
	t.Helper()
	res, err := AnalyzeProject(context.Background(), p, opts)
	if err != nil {
		t.Fatalf("AnalyzeProject: %v", err)
	}
	return res
}

func unitOf(t *testing.T, res *ProjectResult, name string) *UnitResult {
	t.Helper()
	u, ok := res.Unit(name)
	if !ok {
		t.Fatalf("unit %s missing", name)
	}
	return u
}

func messages(u *UnitResult) []string {
	out := make([]string, 0, len(u.Diagnostics))
	for _, d := range u.Diagnostics {
		out = append(out, d.Message)
	}
	return out
}

func TestAnalyzeProjectOrdersUnits(t *testing.T) {
	res := analyze(t, newProject("app", appSrc, "lib", libSrc, "util", utilSrc), Options{Jobs: 2, Timings: true})
	if res.HasErrors() {
		t.Fatalf("diagnostics: %v", res.Diagnostics())
	}
	want := [][]string{{"lib", "util"}, {"app"}}
	if len(res.Batches) != len(want) {
		t.Fatalf("batches = %v", res.Batches)
	}
	for i := range want {
		if !slices.Equal(res.Batches[i], want[i]) {
			t.Fatalf("batches = %v", res.Batches)
		}
	}
	if names := []string{res.Units[0].Name, res.Units[1].Name, res.Units[2].Name}; !slices.Equal(names, []string{"app", "lib", "util"}) {
		t.Fatalf("units = %v", names)
	}

	app := unitOf(t, res, "app")
	twice, ok := app.Model.Lookup("twice")
	if !ok {
		t.Fatalf("twice missing")
	}
	if v, _ := twice.ResolvedValue(); v != "10" {
		t.Fatalf("twice = %q", v)
	}
	origin, _ := app.Model.Lookup("origin")
	if got := origin.TypeDescriptor().Label(); got != "lib:Point" {
		t.Fatalf("origin type = %s", got)
	}
	if app.Meta.UnitHash.IsZero() || app.Meta.UnitHash == app.Meta.ContentHash {
		t.Fatalf("unit hash not combined")
	}
	if len(app.Timings.Phases) != 2 || len(res.Timings.Phases) != 2 {
		t.Fatalf("timings = %+v / %+v", app.Timings, res.Timings)
	}
}

func TestAnalyzeProjectCycle(t *testing.T) {
	res := analyze(t, newProject(
		"a", "import b;\nconst x = 1;\n",
		"b", "import a;\nconst y = 2;\n",
		"c", "import a;\nconst z = 3;\n",
		"d", "const w = 4;\n",
	), Options{})

	for _, name := range []string{"a", "b"} {
		u := unitOf(t, res, name)
		if !u.Skipped || u.Model != nil {
			t.Fatalf("%s should be skipped", name)
		}
		if len(u.Diagnostics) != 1 || u.Diagnostics[0].Code != diag.ProjImportCycle {
			t.Fatalf("%s diagnostics = %v", name, messages(u))
		}
	}
	if got := unitOf(t, res, "a").Diagnostics[0].Message; got != "cyclic unit dependency: a -> b -> a" {
		t.Fatalf("a message = %q", got)
	}
	c := unitOf(t, res, "c")
	if !c.Skipped || !slices.Equal(messages(c), []string{"dependency unit 'a' failed"}) {
		t.Fatalf("c = skipped %v, %v", c.Skipped, messages(c))
	}
	d := unitOf(t, res, "d")
	if d.Skipped || d.Model == nil || d.HasErrors() {
		t.Fatalf("d should be analyzed cleanly: %v", messages(d))
	}
}

func TestAnalyzeProjectMissingUnit(t *testing.T) {
	res := analyze(t, newProject("app", "import nowhere;\nconst int x = nowhere:y;\n"), Options{})
	app := unitOf(t, res, "app")
	if !slices.Equal(messages(app), []string{"cannot resolve module 'nowhere'"}) {
		t.Fatalf("diagnostics = %v", messages(app))
	}
	if app.Diagnostics[0].Code != diag.ProjMissingUnit || app.Diagnostics[0].Line != 1 {
		t.Fatalf("diagnostic = %+v", app.Diagnostics[0])
	}
	if app.Model == nil {
		t.Fatalf("a unit with a missing import is still analyzed")
	}
}

func TestAnalyzeProjectDuplicateUnit(t *testing.T) {
	res := analyze(t, newProject("a", "const x = 1;\n", "a", "const x = 2;\n"), Options{})
	var dup int
	for _, u := range res.Units {
		for _, d := range u.Diagnostics {
			if d.Code == diag.ProjDuplicateUnit {
				dup++
			}
		}
	}
	if dup != 1 {
		t.Fatalf("duplicate diagnostics = %d", dup)
	}
}

func TestAnalyzeProjectCache(t *testing.T) {
	cache, err := NewDiskCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskCache: %v", err)
	}
	opts := Options{Cache: cache}
	broken := "import lib;\nconst int bad = \"text\";\n"

	first := analyze(t, newProject("app", broken, "lib", libSrc, "util", utilSrc), opts)
	for _, u := range first.Units {
		if u.Cached {
			t.Fatalf("%s cached on the first run", u.Name)
		}
	}
	want := messages(unitOf(t, first, "app"))
	if len(want) != 1 {
		t.Fatalf("app diagnostics = %v", want)
	}

	second := analyze(t, newProject("app", broken, "lib", libSrc, "util", utilSrc), opts)
	for _, u := range second.Units {
		if !u.Cached || u.Model != nil {
			t.Fatalf("%s not replayed from the cache", u.Name)
		}
	}
	if got := messages(unitOf(t, second, "app")); !slices.Equal(got, want) {
		t.Fatalf("replayed diagnostics = %v, want %v", got, want)
	}

	third := analyze(t, newProject("app", appSrc, "lib", libSrc, "util", utilSrc), opts)
	if unitOf(t, third, "app").Cached || unitOf(t, third, "lib").Cached {
		t.Fatalf("app and lib must be analyzed again")
	}
	if !unitOf(t, third, "util").Cached {
		t.Fatalf("util should come from the cache")
	}
	if third.HasErrors() {
		t.Fatalf("diagnostics: %v", third.Diagnostics())
	}
}

func TestAnalyzeProjectCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := AnalyzeProject(ctx, newProject("lib", libSrc), Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestAnalyzeProjectProgress(t *testing.T) {
	ch := make(chan Event, 64)
	analyze(t, newProject("app", appSrc, "lib", libSrc), Options{Progress: ChannelSink{Ch: ch}})
	close(ch)
	published := make(map[string]Status)
	var last Event
	for ev := range ch {
		if ev.Stage == StagePublish {
			published[ev.Unit] = ev.Status
		}
		last = ev
	}
	if published["app"] != StatusDone || published["lib"] != StatusDone {
		t.Fatalf("published = %v", published)
	}
	if last.Unit != "" || last.Status != StatusDone {
		t.Fatalf("last event = %+v", last)
	}
}

func TestAnalyzeUnit(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("solo.bal", []byte("const int x = 1;\nconst y = x + z;\n"))
	r, err := AnalyzeUnit(context.Background(), fs, id, "solo", nil, Options{})
	if err != nil {
		t.Fatalf("AnalyzeUnit: %v", err)
	}
	if got := messages(r); len(got) != 1 || !strings.Contains(got[0], "undefined symbol 'z'") {
		t.Fatalf("diagnostics = %v", got)
	}
	if r.Diagnostics[0].Line != 2 || r.Diagnostics[0].Path != "solo.bal" {
		t.Fatalf("location = %+v", r.Diagnostics[0])
	}
	if _, err := AnalyzeUnit(context.Background(), fs, 99, "none", nil, Options{}); err == nil {
		t.Fatalf("expected an error for an unknown file")
	}
}
