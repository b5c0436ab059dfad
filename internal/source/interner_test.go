package source

import "testing"

func TestInternerDedups(t *testing.T) {
	in := NewInterner()
	a := in.Intern("intConst")
	b := in.Intern("intConst")
	if a != b || a == NoStringID {
		t.Fatalf("ids %d %d", a, b)
	}
	if s := in.MustLookup(a); s != "intConst" {
		t.Fatalf("lookup = %q", s)
	}
	if _, ok := in.Find("missing"); ok {
		t.Fatalf("Find must not intern")
	}
	if in.Len() != 2 {
		t.Fatalf("len = %d", in.Len())
	}
}
