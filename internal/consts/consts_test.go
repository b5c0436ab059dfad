package consts

import (
	"errors"
	"testing"

	"balsa/internal/token"
	"balsa/internal/types"
)

func TestValueString(t *testing.T) {
	nested := Record([]Field{
		{Name: "foo", Value: Record([]Field{{Name: "a", Value: Int(10)}, {Name: "b", Value: Int(100)}})},
	})
	cases := []struct {
		v    *Value
		want string
	}{
		{Int(1000), "1000"},
		{Float(12.3), "12.3"},
		{Float(4), "4.0"},
		{String("Value"), `"Value"`},
		{Boolean(true), "true"},
		{Byte(2), "2"},
		{Nil(), "()"},
		{Record([]Field{{Name: "foo", Value: String("Value")}, {Name: "bar", Value: String("BAR")}}), `{foo: "Value", bar: "BAR"}`},
		{nested, "{foo: {a: 10, b: 100}}"},
	}
	for _, tc := range cases {
		if got := tc.v.String(); got != tc.want {
			t.Fatalf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestFoldArithmetic(t *testing.T) {
	sum, err := Binary(token.Plus, Int(10), Int(1000))
	if err != nil || sum.Int != 1010 || sum.Kind != KindInt {
		t.Fatalf("10 + 1000 = %v, %v", sum, err)
	}
	cat, err := Binary(token.Plus, String("a"), String("b"))
	if err != nil || cat.Str != "ab" {
		t.Fatalf("concat = %v, %v", cat, err)
	}
	if _, err := Binary(token.Slash, Int(1), Int(0)); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("1/0 err = %v", err)
	}
	if _, err := Binary(token.Star, Int(1<<62), Int(4)); !errors.Is(err, ErrOverflow) {
		t.Fatalf("overflow err = %v", err)
	}
	var opErr *OperandError
	if _, err := Binary(token.Plus, Int(1), Float(2)); !errors.As(err, &opErr) {
		t.Fatalf("int + float err = %v", err)
	}
	if b, err := Binary(token.Plus, Byte(200), Byte(100)); err != nil || b.Kind != KindInt || b.Int != 300 {
		t.Fatalf("byte + byte = %v, %v", b, err)
	}
}

func TestFoldLogicAndComparison(t *testing.T) {
	if v, _ := Binary(token.Lt, Int(1), Int(2)); !v.Bool {
		t.Fatalf("1 < 2 folded to false")
	}
	if v, _ := Binary(token.EqEq, Byte(3), Int(3)); !v.Bool {
		t.Fatalf("byte 3 == int 3 folded to false")
	}
	if v, _ := Binary(token.AndAnd, Boolean(true), Boolean(false)); v.Bool {
		t.Fatalf("true && false folded to true")
	}
	if v, _ := Unary(token.Bang, Boolean(false)); !v.Bool {
		t.Fatalf("!false folded to false")
	}
	if v, _ := Unary(token.Minus, Float(1.5)); v.Float != -1.5 {
		t.Fatalf("-1.5 = %v", v.Float)
	}
	if _, err := Unary(token.Minus, String("x")); err == nil {
		t.Fatalf("-\"x\" folded")
	}
}

func TestImportMovesTypes(t *testing.T) {
	src := types.NewInterner()
	lit, _ := Int(10).Literal()
	v := Record([]Field{{Name: "a", Value: &Value{Kind: KindInt, Int: 10, Type: src.Singleton(lit)}}})
	v.Type = src.Record([]types.Field{{Name: "a", Type: v.Fields[0].Value.Type}}, true, types.NoTypeID)

	dst := types.NewInterner()
	dst.Singleton(types.StringLiteral("shift ids"))
	got := v.Import(dst, src)
	if !got.Equal(v) {
		t.Fatalf("imported value differs: %s", got)
	}
	if l := types.Label(dst, got.Fields[0].Value.Type); l != "10" {
		t.Fatalf("imported field type = %q", l)
	}
	if s := types.Signature(dst, got.Type); s != "record {|10 a;|}" {
		t.Fatalf("imported record = %q", s)
	}
}

func TestRecordEqualityIgnoresFieldOrder(t *testing.T) {
	ab := Record([]Field{{Name: "a", Value: Int(1)}, {Name: "b", Value: Int(2)}})
	ba := Record([]Field{{Name: "b", Value: Int(2)}, {Name: "a", Value: Int(1)}})
	if v, err := Binary(token.EqEq, ab, ba); err != nil || !v.Bool {
		t.Fatalf("{a: 1, b: 2} == {b: 2, a: 1} = %v, %v", v, err)
	}
	ac := Record([]Field{{Name: "a", Value: Int(1)}, {Name: "c", Value: Int(2)}})
	if ab.Equal(ac) {
		t.Fatalf("{a: 1, b: 2} equal to {a: 1, c: 2}")
	}
	if ab.Equal(Record([]Field{{Name: "a", Value: Int(1)}})) {
		t.Fatalf("records of different size compare equal")
	}
}

func TestCloneIsDeep(t *testing.T) {
	inner := Record([]Field{{Name: "x", Value: Int(1)}})
	v := Record([]Field{{Name: "p", Value: inner}})
	c := v.Clone()
	if !c.Equal(v) {
		t.Fatalf("clone differs: %s vs %s", c, v)
	}
	p, _ := c.Field("p")
	p.Type = 7
	if inner.Type != 0 || p == inner {
		t.Fatalf("clone shares nested values")
	}
	if (*Value)(nil).Clone() != nil {
		t.Fatalf("nil clone")
	}
}
