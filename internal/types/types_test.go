package types

import "testing"

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if !b.Int.IsValid() || !b.AnyFunction.IsValid() {
		t.Fatalf("builtins not initialized")
	}
	if got := in.KindOf(b.Error); got != KindError {
		t.Fatalf("error builtin kind = %v", got)
	}
	if got := KindError.String(); got != "COMPILATION_ERROR" {
		t.Fatalf("KindError = %q", got)
	}
	if got := KindReference.String(); got != "TYPE_REFERENCE" {
		t.Fatalf("KindReference = %q", got)
	}
}

func TestSingletonsAreInterned(t *testing.T) {
	in := NewInterner()
	a := in.Singleton(IntLiteral(1))
	b := in.Singleton(IntLiteral(1))
	if a != b {
		t.Fatalf("singleton 1 interned twice: %d vs %d", a, b)
	}
	if in.Singleton(FloatLiteral(1)) == a {
		t.Fatalf("int and float singletons must differ")
	}
	if got := in.BaseOf(a); got != in.Builtins().Int {
		t.Fatalf("base of 1 = %s", Label(in, got))
	}
}

func TestUnionIdentityAndFlattening(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if got := in.Union(b.Int, b.Int); got != b.Int {
		t.Fatalf("int|int = %s", Label(in, got))
	}
	is := in.Union(b.Int, b.String)
	if in.KindOf(is) != KindUnion {
		t.Fatalf("int|string kind = %v", in.KindOf(is))
	}
	isb := in.Union(is, in.Union(b.String, b.Boolean))
	if got := Label(in, isb); got != "int|string|boolean" {
		t.Fatalf("flattened label = %q", got)
	}
	if got := in.Union(is, is); got != is {
		t.Fatalf("a|a must return a")
	}
	if got := Label(in, in.Union(b.String, b.Nil)); got != "string?" {
		t.Fatalf("optional label = %q", got)
	}
}

func TestIntersectReadonly(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	rec := in.Record([]Field{{Name: "id", Type: in.Singleton(IntLiteral(1))}}, true, NoTypeID)
	x, c := in.Intersect(rec, b.Readonly)
	if c != nil {
		t.Fatalf("unexpected conflict: %+v", c)
	}
	if in.KindOf(x) != KindIntersection {
		t.Fatalf("kind = %v", in.KindOf(x))
	}
	members := in.Members(x)
	if len(members) != 2 || in.KindOf(members[0]) != KindRecord || in.KindOf(members[1]) != KindReadonly {
		t.Fatalf("members = %v", members)
	}
	eff := in.Effective(x)
	if tt := in.MustLookup(eff); tt.Kind != KindRecord || !tt.Readonly {
		t.Fatalf("effective = %+v", tt)
	}
	if !in.IsImmutable(x) || in.IsImmutable(rec) {
		t.Fatalf("immutability: x=%v rec=%v", in.IsImmutable(x), in.IsImmutable(rec))
	}
	if got := Signature(in, rec); got != "record {|1 id;|}" {
		t.Fatalf("signature = %q", got)
	}

	// scalars are already immutable
	s, _ := in.Intersect(b.Int, b.Readonly)
	if in.Effective(s) != b.Int {
		t.Fatalf("int & readonly effective = %s", Label(in, in.Effective(s)))
	}
}

func TestIntersectRecordsAndConflicts(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	r1 := in.Record([]Field{{Name: "a", Type: b.Int}, {Name: "b", Type: b.String}}, false, NoTypeID)
	r2 := in.Record([]Field{{Name: "a", Type: in.Singleton(IntLiteral(3))}, {Name: "c", Type: b.Boolean}}, false, NoTypeID)
	x, c := in.Intersect(r1, r2)
	if c != nil {
		t.Fatalf("unexpected conflict %+v", c)
	}
	merged, ok := in.RecordInfo(in.Effective(x))
	if !ok || len(merged.Fields) != 3 {
		t.Fatalf("merged = %+v", merged)
	}
	if f, _ := merged.Field("a"); Label(in, f.Type) != "3" {
		t.Fatalf("field a = %s", Label(in, f.Type))
	}

	r3 := in.Record([]Field{{Name: "a", Type: b.String}}, false, NoTypeID)
	x, c = in.Intersect(r1, r3)
	if c == nil || c.Field != "a" {
		t.Fatalf("conflict = %+v", c)
	}
	if in.KindOf(x) != KindError || Label(in, x) != "$CompilationError$" {
		t.Fatalf("conflicting record intersection = %s", Label(in, x))
	}

	if x, c = in.Intersect(b.Int, b.String); c == nil || x != b.Never {
		t.Fatalf("int & string = %s, %+v", Label(in, x), c)
	}
	one := in.Singleton(IntLiteral(1))
	if x, c = in.Intersect(one, b.Int); c != nil || x != one {
		t.Fatalf("1 & int = %s", Label(in, x))
	}
	u := in.UnionOf(b.Int, b.String, b.Boolean)
	if x, c = in.Intersect(u, in.UnionOf(b.String, b.Float)); c != nil || x != b.String {
		t.Fatalf("(int|string|boolean) & (string|float) = %s", Label(in, x))
	}
}

func TestAssignableScalars(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	var opts Options
	cases := []struct {
		src, dst TypeID
		want     bool
	}{
		{in.Singleton(IntLiteral(10)), b.Int, true},
		{in.Singleton(IntLiteral(10)), b.Byte, true},
		{in.Singleton(IntLiteral(300)), b.Byte, false},
		{b.Byte, b.Int, true},
		{b.Int, b.Byte, false},
		{b.Int, in.Singleton(IntLiteral(10)), false},
		{b.String, b.Any, true},
		{b.Error, b.Int, true},
		{b.Never, b.String, true},
		{in.UnionOf(b.Int, b.String), b.Int, false},
		{in.UnionOf(b.Int, b.Byte), b.Int, true},
		{b.Int, in.UnionOf(b.String, b.Int), true},
		{b.Float, b.Readonly, true},
		{in.Singleton(StringLiteral("a")), in.UnionOf(in.Singleton(StringLiteral("a")), b.Nil), true},
	}
	for i, tc := range cases {
		if got := in.Assignable(tc.src, tc.dst, opts); got != tc.want {
			t.Fatalf("case %d: %s -> %s = %v, want %v", i, Label(in, tc.src), Label(in, tc.dst), got, tc.want)
		}
	}
}

func TestAssignableRecordsFollowPolicy(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	src := in.Record([]Field{{Name: "id", Type: b.Int}, {Name: "name", Type: b.String}}, true, NoTypeID)
	open := in.Record([]Field{{Name: "id", Type: b.Int}}, false, NoTypeID)
	closed := in.Record([]Field{{Name: "id", Type: b.Int}}, true, NoTypeID)
	optional := in.Record([]Field{{Name: "id", Type: b.Int}, {Name: "tag", Type: b.String, Optional: true}}, true, NoTypeID)

	declared := Options{}
	if !in.Assignable(src, open, declared) {
		t.Fatalf("extra field rejected by open record")
	}
	if in.Assignable(src, closed, declared) {
		t.Fatalf("extra field accepted by closed record")
	}
	if !in.Assignable(src, closed, Options{RecordPolicy: RecordsOpen}) {
		t.Fatalf("open policy must accept extra fields")
	}
	if in.Assignable(src, open, Options{RecordPolicy: RecordsClosed}) {
		t.Fatalf("closed policy must reject extra fields")
	}
	if !in.Assignable(closed, optional, declared) {
		t.Fatalf("missing optional field rejected")
	}
	if in.Assignable(optional, closed, declared) {
		t.Fatalf("optional source field accepted by closed target without it")
	}

	ints := in.Record([]Field{{Name: "a", Type: in.Singleton(IntLiteral(1))}}, true, NoTypeID)
	if !in.Assignable(ints, in.Map(b.Int), declared) {
		t.Fatalf("record of ints not assignable to map<int>")
	}
	if in.Assignable(src, in.Map(b.Int), declared) {
		t.Fatalf("record with string field assignable to map<int>")
	}
	ro, _ := in.Intersect(ints, b.Readonly)
	if !in.Assignable(ro, b.Readonly, declared) || in.Assignable(ints, b.Readonly, declared) {
		t.Fatalf("readonly target check failed")
	}
}

func TestAssignableFunctions(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	anyFn := b.AnyFunction
	isoAny := in.Function(FnInfo{Any: true, Isolated: true})
	strInt := in.Function(FnInfo{Params: []TypeID{b.String, b.Int}, Result: b.String})
	returnsFn := in.Function(FnInfo{Result: strInt})
	intToStr := in.Function(FnInfo{Params: []TypeID{b.Int}, Result: b.String})
	byteToStr := in.Function(FnInfo{Params: []TypeID{b.Byte}, Result: in.Singleton(StringLiteral("x"))})
	var opts Options

	if !in.Assignable(returnsFn, anyFn, opts) {
		t.Fatalf("function not assignable to 'function'")
	}
	if in.Assignable(returnsFn, isoAny, opts) {
		t.Fatalf("non-isolated function assignable to 'isolated function'")
	}
	if in.Assignable(anyFn, intToStr, opts) {
		t.Fatalf("'function' assignable to a concrete signature")
	}
	if in.Assignable(b.String, anyFn, opts) {
		t.Fatalf("string assignable to 'function'")
	}
	// params are contravariant, results covariant
	if in.Assignable(byteToStr, intToStr, opts) {
		t.Fatalf("function (byte) accepted for function (int)")
	}
	wide := in.Function(FnInfo{Params: []TypeID{b.Int}, Result: in.Singleton(StringLiteral("x"))})
	if !in.Assignable(wide, intToStr, opts) {
		t.Fatalf("covariant result rejected")
	}

	if got := Label(in, returnsFn); got != "function () returns (function (string,int) returns (string))" {
		t.Fatalf("label = %q", got)
	}
	if got := Label(in, isoAny); got != "isolated function" {
		t.Fatalf("label = %q", got)
	}
	if got := Label(in, in.Function(FnInfo{Params: []TypeID{b.Int}})); got != "function (int)" {
		t.Fatalf("label = %q", got)
	}
}

func TestReferencesAndImport(t *testing.T) {
	src := NewInterner()
	b := src.Builtins()
	ref := src.Reference("", "Node")
	node := src.Record([]Field{
		{Name: "value", Type: b.Int},
		{Name: "next", Type: src.Union(ref, b.Nil)},
	}, false, NoTypeID)
	src.SetReferenceTarget(ref, node)

	if src.Effective(ref) != node {
		t.Fatalf("reference does not resolve to its record")
	}
	if got := Label(src, ref); got != "Node" {
		t.Fatalf("label = %q", got)
	}
	if got := Signature(src, node); got != "record { int value; Node? next; }" {
		t.Fatalf("signature = %q", got)
	}

	dst := NewInterner()
	imported := dst.Import(src, ref)
	if dst.KindOf(imported) != KindReference {
		t.Fatalf("imported kind = %v", dst.KindOf(imported))
	}
	rec, ok := dst.RecordInfo(dst.Effective(imported))
	if !ok || len(rec.Fields) != 2 {
		t.Fatalf("imported record = %+v", rec)
	}
	if again := dst.Import(src, ref); again != imported {
		t.Fatalf("import not memoized")
	}
	if !dst.Assignable(imported, imported, Options{}) {
		t.Fatalf("recursive type not assignable to itself")
	}

	dangling := src.Reference("", "Missing")
	if src.Resolve(dangling) != b.Error {
		t.Fatalf("unbound reference must resolve to the error type")
	}
}

func TestFormatFloat(t *testing.T) {
	for in, want := range map[float64]string{12.3: "12.3", 12: "12.0", 1e21: "1e+21", -0.5: "-0.5"} {
		if got := FormatFloat(in); got != want {
			t.Fatalf("FormatFloat(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestAssignableRetriesFailedPairs(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	src := in.Record([]Field{{Name: "a", Type: b.String}, {Name: "b", Type: b.String}}, true, NoTypeID)
	r1 := in.Record([]Field{{Name: "a", Type: b.Int}}, true, NoTypeID)
	r2 := in.Record([]Field{{Name: "a", Type: b.Int}, {Name: "b", Type: b.String}}, true, NoTypeID)
	if in.Assignable(src, r1, Options{}) || in.Assignable(src, r2, Options{}) {
		t.Fatalf("record with string a fits a record with int a")
	}
	if u := in.UnionOf(r1, r2); in.Assignable(src, u, Options{}) {
		t.Fatalf("%s assignable to %s", Label(in, src), Label(in, u))
	}
	if in.Assignable(in.UnionOf(b.String, b.Int), in.UnionOf(b.Int, b.Boolean), Options{}) {
		t.Fatalf("string|int assignable to int|boolean")
	}
}

func TestUnionMemberOrderIsNotIdentity(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	a := in.UnionOf(b.Int, b.String)
	c := in.UnionOf(b.String, b.Int)
	if !in.Identical(a, c) {
		t.Fatalf("%s and %s should be identical", Label(in, a), Label(in, c))
	}
	if got := in.Union(a, c); got != a {
		t.Fatalf("Union(a, c) = %s, want a", Label(in, got))
	}
	if in.Identical(a, in.UnionOf(b.Int, b.Boolean)) {
		t.Fatalf("int|string identical to int|boolean")
	}
	// duplicates in one list must not pair twice
	x := in.UnionOf(in.Singleton(IntLiteral(1)), b.Int)
	y := in.UnionOf(b.Int, in.Singleton(IntLiteral(2)))
	if in.Identical(x, y) {
		t.Fatalf("%s identical to %s", Label(in, x), Label(in, y))
	}
}
