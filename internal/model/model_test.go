package model

import (
	"context"
	"strings"
	"testing"

	"balsa/internal/ast"
	"balsa/internal/diag"
	"balsa/internal/lexer"
	"balsa/internal/parser"
	"balsa/internal/sema"
	"balsa/internal/source"
	"balsa/internal/symbols"
	"balsa/internal/types"
)

func build(t *testing.T, unit, src string, deps map[string]*sema.Result) *Model {
	t.Helper()
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual(unit+".bal", []byte(src)))
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	b := ast.NewBuilder(nil)
	lx := lexer.New(f, lexer.Options{Reporter: rep})
	parsed := parser.ParseFile(context.Background(), lx, b, parser.Options{Reporter: rep})
	res, err := sema.Check(context.Background(), b, parsed.File, sema.Options{Unit: unit, Reporter: rep, Deps: deps})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	return New(res, f, bag.Items(), fs, deps)
}

// at returns the position of the nth occurrence of needle, plus shift columns.
func at(t *testing.T, m *Model, needle string, nth int, shift uint32) source.LinePosition {
	t.Helper()
	text := string(m.File().Content)
	base := 0
	for i := 0; ; i++ {
		idx := strings.Index(text[base:], needle)
		if idx < 0 {
			t.Fatalf("%q occurrence %d not found", needle, nth)
		}
		if i == nth {
			off := uint32(base+idx) + shift
			return m.File().Position(off)
		}
		base += idx + len(needle)
	}
}

func expectNoErrors(t *testing.T, m *Model) {
	t.Helper()
	if m.HasErrors() {
		var msgs []string
		for _, d := range m.Diagnostics() {
			msgs = append(msgs, d.Message)
		}
		t.Fatalf("unexpected diagnostics:\n%s", strings.Join(msgs, "\n"))
	}
}

const annotated = `# Tags a constant.
public const annotation record {| string id; |} tag on source const;

# An integer
@tag {id: "one"}
public const int intConst = 10;

const nested = {foo: {a: 10, b: 100}};

function twice() returns int {
    return intConst * 2;
}
`

func TestSymbolAtDeclaration(t *testing.T) {
	m := build(t, "annotated", annotated, nil)
	expectNoErrors(t, m)

	sym, ok := m.SymbolAt(at(t, m, "intConst", 0, 3))
	if !ok {
		t.Fatalf("no symbol at intConst")
	}
	if sym.Kind() != symbols.SymbolConstant || sym.Name() != "intConst" {
		t.Fatalf("symbol = %s %s", sym.Kind(), sym.Name())
	}
	if !sym.Qualifiers().Has(symbols.QualPublic) {
		t.Fatalf("qualifiers = %v", sym.Qualifiers().Strings())
	}
	if doc := sym.Documentation(); doc.Description != "An integer" {
		t.Fatalf("doc = %+v", doc)
	}
	if v, ok := sym.ResolvedValue(); !ok || v != "10" {
		t.Fatalf("resolved = %q, %v", v, ok)
	}
	if k := sym.TypeDescriptor().TypeKind(); k != types.KindSingleton {
		t.Fatalf("type kind = %v", k)
	}
	cv, ok := sym.ConstValue()
	if !ok || cv.Value() != int64(10) || cv.ValueType().TypeKind() != types.KindInt {
		t.Fatalf("const value = %v", cv)
	}

	annots := sym.Annotations()
	if len(annots) != 1 || annots[0].Name() != "tag" || annots[0].Kind() != symbols.SymbolAnnotation {
		t.Fatalf("annotations = %d", len(annots))
	}
	if doc := annots[0].Documentation(); doc.Description != "Tags a constant." {
		t.Fatalf("annotation doc = %+v", doc)
	}
	atts := sym.AnnotAttachments()
	if len(atts) != 1 || !atts[0].IsConstAnnotation() {
		t.Fatalf("attachments = %d", len(atts))
	}
	val, ok := atts[0].AttachmentValue()
	if !ok || val.String() != `{id: "one"}` {
		t.Fatalf("attachment value = %q", val.String())
	}
	if id, ok := val.Field("id"); !ok || id.Value() != "one" {
		t.Fatalf("id field = %v", id.Value())
	}
}

func TestSymbolAtReference(t *testing.T) {
	m := build(t, "annotated", annotated, nil)

	decl, ok := m.SymbolAt(at(t, m, "intConst", 0, 0))
	if !ok {
		t.Fatalf("no declaration")
	}
	ref, ok := m.SymbolAt(at(t, m, "intConst", 1, 2))
	if !ok {
		t.Fatalf("no symbol at the reference")
	}
	if ref.Name() != "intConst" || ref.Span() != decl.Span() {
		t.Fatalf("reference resolved to %s at %v", ref.Name(), ref.Span())
	}

	annot, ok := m.SymbolAt(at(t, m, "@tag", 0, 1))
	if !ok || annot.Kind() != symbols.SymbolAnnotation {
		t.Fatalf("annotation reference = %v", annot.Kind())
	}
	if pts := annot.AnnotationPoints(); len(pts) != 1 || pts[0] != "source const" {
		t.Fatalf("points = %v", pts)
	}

	td, ok := m.TypeAt(at(t, m, "* 2", 0, 2))
	if !ok || td.TypeKind() != types.KindSingleton || td.Label() != "2" {
		t.Fatalf("type at literal = %s", td.Label())
	}
	if lit, ok := td.Literal(); !ok || lit.Int != 2 {
		t.Fatalf("literal = %+v", lit)
	}

	if _, ok := m.SymbolAt(source.LinePosition{Line: 999}); ok {
		t.Fatalf("symbol found past the end of the file")
	}
	if _, ok := m.SymbolAt(at(t, m, "returns", 0, 1)); ok {
		t.Fatalf("symbol found on a keyword")
	}
}

func TestNestedRecordConstant(t *testing.T) {
	m := build(t, "annotated", annotated, nil)
	sym, ok := m.Lookup("nested")
	if !ok {
		t.Fatalf("nested not found")
	}
	cv, ok := sym.ConstValue()
	if !ok {
		t.Fatalf("nested has no value")
	}
	vt := cv.ValueType()
	if vt.TypeKind() != types.KindIntersection {
		t.Fatalf("value type = %s", vt.Label())
	}
	members := vt.MemberTypeDescriptors()
	if len(members) != 2 || members[0].TypeKind() != types.KindRecord || members[1].TypeKind() != types.KindReadonly {
		t.Fatalf("members = %d", len(members))
	}
	if got := members[0].Signature(); got != "record {|record {|10 a; 100 b;|} foo;|}" {
		t.Fatalf("signature = %s", got)
	}
	if !vt.IsReadonly() {
		t.Fatalf("%s is not readonly", vt.Label())
	}
	fields := vt.FieldDescriptors()
	if len(fields) != 1 || fields[0].Name != "foo" {
		t.Fatalf("fields = %+v", fields)
	}

	foo, ok := cv.Value().(map[string]ConstantValue)["foo"]
	if !ok {
		t.Fatalf("foo missing")
	}
	inner := foo.Fields()
	if len(inner) != 2 || inner[0].Name != "a" || inner[1].Value.Value() != int64(100) {
		t.Fatalf("inner = %+v", inner)
	}
}

func TestMissingInitializer(t *testing.T) {
	m := build(t, "missing", "const int x = ;\n", nil)
	if !m.HasErrors() {
		t.Fatalf("expected a parse error")
	}
	sym, ok := m.SymbolAt(source.LinePosition{Line: 0, Col: 10})
	if !ok || sym.Name() != "x" {
		t.Fatalf("symbol = %v", sym.Name())
	}
	if _, ok := sym.ResolvedValue(); ok {
		t.Fatalf("resolved without an initializer")
	}
	if _, ok := sym.ConstValue(); ok {
		t.Fatalf("const value without an initializer")
	}
	if got := sym.TypeDescriptor().Label(); got != "int" {
		t.Fatalf("type = %s", got)
	}
	diags := m.Diagnostics()
	if len(diags) == 0 || diags[0].Line != 1 {
		t.Fatalf("diagnostics = %+v", diags)
	}
}

func TestCrossUnitSymbol(t *testing.T) {
	lib := build(t, "lib", "# The limit.\npublic const int LIMIT = 5;\n", nil)
	expectNoErrors(t, lib)
	deps := map[string]*sema.Result{"lib": lib.Result()}
	app := build(t, "app", "import lib;\n\nconst int twice = lib:LIMIT * 2;\n", deps)
	expectNoErrors(t, app)

	sym, ok := app.SymbolAt(at(t, app, "LIMIT", 0, 1))
	if !ok {
		t.Fatalf("no symbol at lib:LIMIT")
	}
	if sym.Unit() != "lib" || sym.Name() != "LIMIT" {
		t.Fatalf("symbol = %s:%s", sym.Unit(), sym.Name())
	}
	if v, _ := sym.ResolvedValue(); v != "5" {
		t.Fatalf("LIMIT = %q", v)
	}
	if doc := sym.Documentation(); doc.Description != "The limit." {
		t.Fatalf("doc = %+v", doc)
	}

	twice, _ := app.Lookup("twice")
	if v, _ := twice.ResolvedValue(); v != "10" {
		t.Fatalf("twice = %q", v)
	}
}

func TestVisibleSymbols(t *testing.T) {
	m := build(t, "scopes", `
const int top = 1;

function f(int a) {
    int b = a;
}
`, nil)
	expectNoErrors(t, m)
	vis := m.VisibleSymbols(at(t, m, "b = a", 0, 4))
	names := make(map[string]bool)
	for _, s := range vis {
		names[s.Name()] = true
	}
	for _, want := range []string{"a", "top", "f"} {
		if !names[want] {
			t.Fatalf("%s not visible; got %v", want, names)
		}
	}
}

func TestDeclarationQualifiers(t *testing.T) {
	m := build(t, "quals", `
type Point record {| int x; |};

public readonly int limit = 5;
readonly Point origin = {x: 0};
private function helper() returns int {
    return 1;
}
readonly plain = 3;
`, nil)
	expectNoErrors(t, m)

	cases := []struct {
		name string
		want []string
	}{
		{"limit", []string{"PUBLIC", "READONLY"}},
		{"origin", []string{"READONLY"}},
		{"helper", []string{"PRIVATE"}},
		{"plain", nil},
	}
	for _, tc := range cases {
		sym, ok := m.Lookup(tc.name)
		if !ok {
			t.Fatalf("%s not found", tc.name)
		}
		if got := sym.Qualifiers().Strings(); strings.Join(got, ",") != strings.Join(tc.want, ",") {
			t.Fatalf("%s qualifiers = %v, want %v", tc.name, got, tc.want)
		}
	}
	plain, _ := m.Lookup("plain")
	if got := plain.TypeDescriptor().TypeKind().String(); got != "READONLY" {
		t.Fatalf("plain type kind = %s", got)
	}
}

func TestPublicPrivateConflict(t *testing.T) {
	m := build(t, "conflict", "public private const int x = 1;\n", nil)
	if !m.HasErrors() {
		t.Fatal("public private should be rejected")
	}
	sym, ok := m.Lookup("x")
	if !ok || sym.Qualifiers().Has(symbols.QualPrivate) || !sym.Qualifiers().Has(symbols.QualPublic) {
		t.Fatalf("x qualifiers = %v", sym.Qualifiers().Strings())
	}
}
