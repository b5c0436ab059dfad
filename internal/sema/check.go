package sema

import (
	"context"
	"fmt"

	"balsa/internal/ast"
	"balsa/internal/diag"
	"balsa/internal/source"
	"balsa/internal/symbols"
	"balsa/internal/trace"
	"balsa/internal/types"
)

// Options configure a semantic pass over one unit.
type Options struct {
	Unit     string
	Reporter diag.Reporter
	// Deps maps imported unit names to their published results.
	Deps map[string]*Result
	// ImportsResolved is set when the unit graph has already reported
	// imports of unknown units.
	ImportsResolved bool
	Types           types.Options
}

// ExprType remembers the type computed for an expression.
type ExprType struct {
	Span source.Span
	Type types.TypeID
}

// Result stores what a semantic pass produced. It is read-only once Check
// returns.
type Result struct {
	Unit      string
	File      ast.FileID
	Source    source.FileID
	Table     *symbols.Table
	Types     *types.Interner
	ExprTypes []ExprType
}

// Check builds the scope tree of a parsed unit, resolves types, evaluates
// constants and checks function bodies. Diagnostics go to opts.Reporter; the
// result is complete even when the unit has errors. Only cancellation makes it
// return an error.
func Check(ctx context.Context, builder *ast.Builder, fileID ast.FileID, opts Options) (*Result, error) {
	file := builder.File(fileID)
	if file == nil {
		return nil, fmt.Errorf("sema: unknown file %d", fileID)
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	in := types.NewInterner()
	table := symbols.NewTable(symbols.Hints{Symbols: uint(len(file.Items)) * 2}, builder.Strings, file.Span)
	res := &Result{Unit: opts.Unit, File: fileID, Source: file.Source, Table: table, Types: in}

	tc := &typeChecker{
		ctx:        ctx,
		builder:    builder,
		file:       file,
		opts:       opts,
		reporter:   reporter,
		table:      table,
		resolver:   symbols.NewResolver(table, table.Root, symbols.ResolverOptions{Reporter: reporter}),
		types:      in,
		builtins:   in.Builtins(),
		result:     res,
		scope:      table.Root,
		typeRefs:   make(map[symbols.SymbolID]types.TypeID),
		typeState:  make(map[symbols.SymbolID]evalState),
		constState: make(map[symbols.SymbolID]evalState),
		varState:   make(map[symbols.SymbolID]evalState),
		cyclic:     make(map[symbols.SymbolID]bool),
	}
	if err := tc.run(); err != nil {
		return nil, err
	}
	return res, nil
}

type evalState uint8

const (
	stateUnvisited evalState = iota
	stateVisiting
	stateDone
)

type typeChecker struct {
	ctx      context.Context
	builder  *ast.Builder
	file     *ast.File
	opts     Options
	reporter diag.Reporter
	table    *symbols.Table
	resolver *symbols.Resolver
	types    *types.Interner
	builtins types.Builtins
	result   *Result

	// scope is where unqualified names are looked up.
	scope symbols.ScopeID

	typeRefs   map[symbols.SymbolID]types.TypeID // type definition -> its TYPE_REFERENCE
	typeState  map[symbols.SymbolID]evalState
	typeStack  []symbols.SymbolID
	constState map[symbols.SymbolID]evalState
	constStack []symbols.SymbolID
	varState   map[symbols.SymbolID]evalState
	cyclic     map[symbols.SymbolID]bool

	fnResult types.TypeID // result type of the function being checked
}

type pass struct {
	name string
	run  func()
}

func (tc *typeChecker) run() error {
	tracer := trace.FromContext(tc.ctx)
	parent := trace.CurrentSpan(tc.ctx).SpanID
	passes := []pass{
		{"sema.collect", tc.collect},
		{"sema.types", tc.resolveTypeDefs},
		{"sema.annotations", tc.resolveAnnotations},
		{"sema.signatures", tc.resolveSignatures},
		{"sema.consts", tc.evalConsts},
		{"sema.attachments", tc.resolveAttachments},
		{"sema.bodies", tc.checkBodies},
	}
	for _, p := range passes {
		if err := tc.ctx.Err(); err != nil {
			return fmt.Errorf("sema %s: %w", tc.opts.Unit, err)
		}
		span := trace.Begin(tracer, trace.ScopePass, p.name, parent).WithExtra("unit", tc.opts.Unit)
		p.run()
		span.End("")
	}
	return tc.ctx.Err()
}

func (tc *typeChecker) errorf(code diag.Code, sp source.Span, format string, args ...any) {
	diag.ReportError(tc.reporter, code, sp, format, args...).Emit()
}

func (tc *typeChecker) name(id source.StringID) string {
	s, _ := tc.table.Strings.Lookup(id)
	return s
}

func (tc *typeChecker) sym(id symbols.SymbolID) *symbols.Symbol {
	return tc.table.Symbols.Get(id)
}

// label renders a type for messages; literal types show their base type.
func (tc *typeChecker) label(id types.TypeID) string {
	return types.Label(tc.types, tc.types.BaseOf(id))
}

func (tc *typeChecker) assignable(src, dst types.TypeID) bool {
	return tc.types.Assignable(src, dst, tc.opts.Types)
}

// checkAssignable reports `incompatible types` when src does not fit dst.
func (tc *typeChecker) checkAssignable(src, dst types.TypeID, sp source.Span) bool {
	if !src.IsValid() || !dst.IsValid() || tc.assignable(src, dst) {
		return true
	}
	tc.errorf(diag.SemaIncompatibleTypes, sp, "incompatible types: expected '%s', found '%s'",
		types.Label(tc.types, dst), tc.label(src))
	return false
}

func (tc *typeChecker) recordExprType(sp source.Span, t types.TypeID) {
	if t.IsValid() && !sp.IsZero() {
		tc.result.ExprTypes = append(tc.result.ExprTypes, ExprType{Span: sp, Type: t})
	}
}
