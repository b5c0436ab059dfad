package dag

import (
	"slices"
	"testing"

	"balsa/internal/diag"
	"balsa/internal/project"
	"balsa/internal/source"
)

func unit(name string, imports ...string) project.UnitMeta {
	meta := project.UnitMeta{Name: name, Span: source.Span{File: 1, Start: 0, End: 1}}
	for i, imp := range imports {
		meta.Imports = append(meta.Imports, project.ImportMeta{
			Unit: imp,
			Span: source.Span{File: 1, Start: uint32(i + 1), End: uint32(i + 2)},
		})
	}
	return meta
}

type fixture struct {
	idx   UnitIndex
	graph Graph
	slots []UnitSlot
	bags  map[string]*diag.Bag
}

func build(metas ...project.UnitMeta) fixture {
	f := fixture{bags: make(map[string]*diag.Bag)}
	nodes := make([]UnitNode, 0, len(metas))
	for _, meta := range metas {
		bag, ok := f.bags[meta.Name]
		if !ok {
			bag = diag.NewBag(10)
			f.bags[meta.Name] = bag
		}
		nodes = append(nodes, UnitNode{Meta: meta, Reporter: &diag.BagReporter{Bag: bag}})
	}
	f.idx = BuildIndex(metas)
	f.graph, f.slots = BuildGraph(f.idx, nodes)
	return f
}

func (f fixture) codes(name string) []diag.Code {
	var out []diag.Code
	for _, d := range f.bags[name].Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestBuildIndexIncludesImports(t *testing.T) {
	idx := BuildIndex([]project.UnitMeta{unit("core/main", "lib/math", "lib/util"), unit("lib/util")})
	want := []string{"core/main", "lib/math", "lib/util"}
	if !slices.Equal(idx.IDToName, want) {
		t.Fatalf("names = %v, want %v", idx.IDToName, want)
	}
	for i, name := range want {
		if id := idx.NameToID[name]; int(id) != i {
			t.Fatalf("NameToID[%q] = %d, want %d", name, id, i)
		}
	}
}

func TestBuildGraphReportsMissingUnits(t *testing.T) {
	f := build(unit("app", "core", "util"), unit("core", "util"))
	app, core := f.idx.NameToID["app"], f.idx.NameToID["core"]

	if deps := f.graph.Deps[app]; !slices.Equal(deps, []UnitID{core}) {
		t.Fatalf("app deps = %v", deps)
	}
	if users := f.graph.Users[core]; !slices.Equal(users, []UnitID{app}) {
		t.Fatalf("core users = %v", users)
	}
	if f.graph.Present[f.idx.NameToID["util"]] {
		t.Fatalf("util should not be present")
	}
	if got := f.codes("app"); !slices.Equal(got, []diag.Code{diag.ProjMissingUnit}) {
		t.Fatalf("app codes = %v", got)
	}
	if msg := f.bags["core"].Items()[0].Message; msg != "cannot resolve module 'util'" {
		t.Fatalf("core message = %q", msg)
	}
}

func TestBuildGraphDuplicateUnits(t *testing.T) {
	first := unit("dup")
	second := unit("dup")
	second.Span = source.Span{File: 2, Start: 0, End: 5}
	f := build(first, second)

	bag := f.bags["dup"]
	if bag.Len() != 1 || bag.Items()[0].Code != diag.ProjDuplicateUnit {
		t.Fatalf("diagnostics = %v", f.codes("dup"))
	}
	if d := bag.Items()[0]; d.Primary != second.Span || len(d.Notes) != 1 {
		t.Fatalf("duplicate reported at %v with %d notes", d.Primary, len(d.Notes))
	}
	if slot := f.slots[f.idx.NameToID["dup"]]; slot.Meta.Span != first.Span {
		t.Fatalf("slot keeps %v, want the first declaration", slot.Meta.Span)
	}
}

func TestSelfImport(t *testing.T) {
	f := build(unit("a", "a"))
	if got := f.codes("a"); !slices.Equal(got, []diag.Code{diag.ProjSelfImport}) {
		t.Fatalf("codes = %v", got)
	}
	if topo := ToposortKahn(f.graph); topo.Cyclic || len(topo.Order) != 1 {
		t.Fatalf("topo = %+v", topo)
	}
}

func TestToposortKahnBatches(t *testing.T) {
	f := build(unit("b", "c"), unit("a"), unit("c"), unit("d", "a", "b"))
	topo := ToposortKahn(f.graph)
	if topo.Cyclic {
		t.Fatalf("unexpected cycle")
	}
	if got := f.idx.Names(topo.Order); !slices.Equal(got, []string{"a", "c", "b", "d"}) {
		t.Fatalf("order = %v", got)
	}
	want := [][]string{{"a", "c"}, {"b"}, {"d"}}
	if len(topo.Batches) != len(want) {
		t.Fatalf("batches = %d", len(topo.Batches))
	}
	for i := range want {
		if got := f.idx.Names(topo.Batches[i]); !slices.Equal(got, want[i]) {
			t.Fatalf("batch %d = %v, want %v", i, got, want[i])
		}
	}
}

func TestCyclesAndBlockedUnits(t *testing.T) {
	f := build(
		unit("a", "b"),
		unit("b", "c"),
		unit("c", "a"),
		unit("user", "b"),
		unit("top", "user"),
		unit("free"),
	)
	topo := ToposortKahn(f.graph)
	if !topo.Cyclic || len(topo.Cycles) != 1 {
		t.Fatalf("cycles = %v", topo.Cycles)
	}
	if got := f.idx.Names(topo.Cycles[0]); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("cycle = %v", got)
	}
	if got := f.idx.Names(topo.Blocked); !slices.Equal(got, []string{"user", "top"}) {
		t.Fatalf("blocked = %v", got)
	}
	if got := f.idx.Names(topo.Order); !slices.Equal(got, []string{"free"}) {
		t.Fatalf("order = %v", got)
	}

	ReportCycles(f.idx, f.slots, topo)
	for _, name := range []string{"a", "b", "c"} {
		bag := f.bags[name]
		if bag.Len() != 1 || bag.Items()[0].Code != diag.ProjImportCycle {
			t.Fatalf("%s codes = %v", name, f.codes(name))
		}
	}
	if msg := f.bags["b"].Items()[0].Message; msg != "cyclic unit dependency: b -> c -> a -> b" {
		t.Fatalf("b message = %q", msg)
	}

	for _, id := range topo.Blocked {
		if !ReportBrokenDeps(f.idx, f.slots, id) {
			t.Fatalf("%s not reported", f.idx.Name(id))
		}
	}
	if msg := f.bags["top"].Items()[0].Message; msg != "dependency unit 'user' failed" {
		t.Fatalf("top message = %q", msg)
	}
	if d := f.bags["user"].Items()[0]; len(d.Notes) != 1 {
		t.Fatalf("user notes = %d", len(d.Notes))
	}
	if f.bags["free"].Len() != 0 {
		t.Fatalf("free codes = %v", f.codes("free"))
	}
}
