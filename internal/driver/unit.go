package driver

import (
	"context"
	"fmt"
	"time"

	"balsa/internal/ast"
	"balsa/internal/diag"
	"balsa/internal/lexer"
	"balsa/internal/model"
	"balsa/internal/observ"
	"balsa/internal/parser"
	"balsa/internal/project"
	"balsa/internal/sema"
	"balsa/internal/source"
	"balsa/internal/trace"
	"balsa/internal/types"
)

// Options configure unit and project analysis.
type Options struct {
	// Jobs bounds parallel units; 0 means GOMAXPROCS.
	Jobs           int
	MaxDiagnostics int
	Types          types.Options
	Timings        bool
	Progress       ProgressSink
	// Cache, when set, lets AnalyzeProject skip units whose unit hash was
	// seen before and that no re-analyzed unit depends on.
	Cache *DiskCache
}

// UnitResult is everything one unit's analysis produced.
type UnitResult struct {
	Name    string
	File    *source.File
	Meta    project.UnitMeta
	Bag     *diag.Bag
	Result  *sema.Result // nil for skipped and cached units
	Model   *model.Model
	Timings observ.Report
	Skipped bool
	Cached  bool
	// Diagnostics are sorted and located; cached units have them too.
	Diagnostics []diag.Located

	builder *ast.Builder
	astFile ast.FileID
	timer   *observ.Timer
}

func (r *UnitResult) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity >= diag.SevError {
			return true
		}
	}
	return false
}

// parseUnit lexes and parses one file into a fresh builder.
func parseUnit(ctx context.Context, name string, file *source.File, opts Options) *UnitResult {
	r := &UnitResult{Name: name, File: file, Bag: diag.NewBag(opts.MaxDiagnostics)}
	if opts.Timings {
		r.timer = observ.NewTimer()
	}
	idx := r.timer.Begin(string(StageParse))
	rep := &diag.BagReporter{Bag: r.Bag}
	r.builder = ast.NewBuilder(nil)
	lx := lexer.New(file, lexer.Options{Reporter: rep})
	r.astFile = parser.ParseFile(ctx, lx, r.builder, parser.Options{Reporter: rep}).File
	r.Meta = project.CollectUnitMeta(name, r.builder, r.astFile, file)
	r.timer.End(idx, fmt.Sprintf("imports=%d", len(r.Meta.Imports)))
	return r
}

// check runs the semantic pass and freezes the unit.
func (r *UnitResult) check(ctx context.Context, fs *source.FileSet, deps map[string]*sema.Result, opts Options, projectMode bool) error {
	idx := r.timer.Begin(string(StageCheck))
	res, err := sema.Check(ctx, r.builder, r.astFile, sema.Options{
		Unit:            r.Name,
		Reporter:        &diag.BagReporter{Bag: r.Bag},
		Deps:            deps,
		ImportsResolved: projectMode,
		Types:           opts.Types,
	})
	r.timer.End(idx, "")
	if err != nil {
		return err
	}
	r.Result = res
	r.finish(fs, deps)
	return nil
}

// finish sorts the bag, builds the model and releases the syntax tree.
func (r *UnitResult) finish(fs *source.FileSet, deps map[string]*sema.Result) {
	r.Bag.Sort()
	r.Diagnostics = diag.Locate(r.Bag.Items(), fs)
	if r.Result != nil {
		r.Model = model.New(r.Result, r.File, r.Bag.Items(), fs, deps)
	}
	r.Timings = r.timer.Report()
	r.Timings.Unit = r.Name
	r.builder = nil
}

// AnalyzeUnit parses and checks a single file. deps are the published
// results of the units it imports; imports missing from deps are reported.
func AnalyzeUnit(ctx context.Context, fs *source.FileSet, fileID source.FileID, name string, deps map[string]*sema.Result, opts Options) (*UnitResult, error) {
	file := fs.Get(fileID)
	if file == nil {
		return nil, fmt.Errorf("driver: unknown file %d", fileID)
	}
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeUnit, "analyze_unit", trace.CurrentSpan(ctx).SpanID).WithExtra("unit", name)
	ctx = trace.WithSpan(ctx, span)
	start := time.Now()

	emit(opts.Progress, Event{Unit: name, Stage: StageParse, Status: StatusWorking})
	r := parseUnit(ctx, name, file, opts)
	emit(opts.Progress, Event{Unit: name, Stage: StageCheck, Status: StatusWorking})
	if err := r.check(ctx, fs, deps, opts, false); err != nil {
		span.End("cancelled")
		return nil, err
	}
	status := unitStatus(r)
	emit(opts.Progress, Event{Unit: name, Stage: StagePublish, Status: status, Elapsed: time.Since(start)})
	span.WithExtra("diags", fmt.Sprint(len(r.Diagnostics))).End(string(status))
	return r, nil
}

func unitStatus(r *UnitResult) Status {
	switch {
	case r.Skipped:
		return StatusSkipped
	case r.Cached:
		return StatusCached
	case r.HasErrors():
		return StatusError
	}
	return StatusDone
}
