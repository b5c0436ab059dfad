package testkit

import (
	"context"
	"testing"

	"balsa/internal/ast"
	"balsa/internal/diag"
	"balsa/internal/lexer"
	"balsa/internal/parser"
	"balsa/internal/sema"
	"balsa/internal/source"
)

const unit = `
# Limit
public const int LIMIT = 10;
const map<int> limits = {low: 1, high: LIMIT};

function twice(int n) returns int {
    int m = n * 2;
    return m;
}
`

func TestInvariantsHoldForCleanUnit(t *testing.T) {
	fs := source.NewFileSet()
	sf := fs.Get(fs.AddVirtual("unit.bal", []byte(unit)))
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	b := ast.NewBuilder(nil)
	file := parser.ParseFile(context.Background(), lexer.New(sf, lexer.Options{Reporter: rep}), b, parser.Options{Reporter: rep}).File
	if err := CheckSpanInvariants(b, file, sf); err != nil {
		t.Fatalf("span invariants: %v", err)
	}
	res, err := sema.Check(context.Background(), b, file, sema.Options{Unit: "unit", Reporter: rep})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %d", bag.Len())
	}
	if err := CheckSymbolInvariants(res, sf); err != nil {
		t.Fatalf("symbol invariants: %v", err)
	}
}

func TestSpanInvariantsRejectForeignFile(t *testing.T) {
	fs := source.NewFileSet()
	a := fs.Get(fs.AddVirtual("a.bal", []byte("const int x = 1;\n")))
	other := fs.Get(fs.AddVirtual("b.bal", []byte("const int y = 2;\n")))
	b := ast.NewBuilder(nil)
	file := parser.ParseFile(context.Background(), lexer.New(a, lexer.Options{}), b, parser.Options{}).File
	if err := CheckSpanInvariants(b, file, other); err == nil {
		t.Fatal("expected a file mismatch")
	}
	if err := CheckSpanInvariants(nil, file, a); err == nil {
		t.Fatal("expected an error for a nil builder")
	}
}
