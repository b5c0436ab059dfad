package driver

import (
	"context"
	"crypto/sha256"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"balsa/internal/diag"
	"balsa/internal/observ"
	"balsa/internal/project"
	"balsa/internal/project/dag"
	"balsa/internal/sema"
	"balsa/internal/source"
	"balsa/internal/trace"
)

// Project is a set of named units loaded into one FileSet. The FileSet is
// not modified once analysis starts.
type Project struct {
	Name    string
	Root    string
	FileSet *source.FileSet
	Units   []ProjectUnit
}

type ProjectUnit struct {
	Name string
	File source.FileID
}

func NewProject(name string) *Project {
	return &Project{Name: name, FileSet: source.NewFileSet()}
}

// LoadProject reads every unit the manifest lists.
func LoadProject(m *project.Manifest) (*Project, error) {
	p := NewProject(m.Name)
	p.Root = m.Root
	for _, u := range m.Units {
		id, err := p.FileSet.Load(u.File)
		if err != nil {
			return nil, fmt.Errorf("unit %s: %w", u.Name, err)
		}
		p.Units = append(p.Units, ProjectUnit{Name: u.Name, File: id})
	}
	return p, nil
}

// AddSource adds an in-memory unit.
func (p *Project) AddSource(unit string, text []byte) source.FileID {
	id := p.FileSet.AddVirtual(unit+project.SourceExt, text)
	p.Units = append(p.Units, ProjectUnit{Name: unit, File: id})
	return id
}

// ProjectResult holds every unit's outcome, sorted by unit name.
type ProjectResult struct {
	FileSet *source.FileSet
	Units   []*UnitResult
	// Batches are the analysis waves, dependencies first.
	Batches [][]string
	Timings observ.Report
}

func (r *ProjectResult) Unit(name string) (*UnitResult, bool) {
	i, ok := slices.BinarySearchFunc(r.Units, name, func(u *UnitResult, n string) int { return strings.Compare(u.Name, n) })
	if !ok {
		return nil, false
	}
	return r.Units[i], true
}

func (r *ProjectResult) HasErrors() bool {
	return slices.ContainsFunc(r.Units, (*UnitResult).HasErrors)
}

// Diagnostics lists every unit's diagnostics, unit by unit.
func (r *ProjectResult) Diagnostics() []diag.Located {
	var out []diag.Located
	for _, u := range r.Units {
		out = append(out, u.Diagnostics...)
	}
	return out
}

// AnalyzeProject analyzes every unit of p. Units run in parallel once the
// units they import have published; a unit on an import cycle, or one that
// imports such a unit, is reported and skipped. Errors are returned only for
// cancellation and cache failures.
func AnalyzeProject(ctx context.Context, p *Project, opts Options) (*ProjectResult, error) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "analyze_project", trace.CurrentSpan(ctx).SpanID).
		WithExtra("units", fmt.Sprint(len(p.Units)))
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results, err := parseUnits(ctx, p, opts, jobs)
	if err != nil {
		return nil, err
	}

	// first declaration of each name wins; later ones are duplicates
	byName := make(map[string]int, len(results))
	nodes := make([]dag.UnitNode, 0, len(results))
	metas := make([]project.UnitMeta, 0, len(results))
	for i, r := range results {
		if _, dup := byName[r.Name]; !dup {
			byName[r.Name] = i
		} else {
			r.Skipped = true
		}
		nodes = append(nodes, dag.UnitNode{Meta: r.Meta, Reporter: &diag.BagReporter{Bag: r.Bag}})
		metas = append(metas, r.Meta)
	}
	idx := dag.BuildIndex(metas)
	graph, slots := dag.BuildGraph(idx, nodes)
	topo := dag.ToposortKahn(graph)
	dag.ReportCycles(idx, slots, topo)
	for _, id := range topo.Blocked {
		dag.ReportBrokenDeps(idx, slots, id)
	}
	resultOf := func(id dag.UnitID) *UnitResult { return results[byName[idx.Name(id)]] }
	for i := range slots {
		if slots[i].Present && slots[i].Broken {
			resultOf(dag.UnitID(i)).Skipped = true
		}
	}
	trace.Point(trace.FromContext(ctx), trace.ScopeDriver, "unit_graph", span.ID(),
		fmt.Sprintf("units=%d batches=%d cycles=%d", len(topo.Order), len(topo.Batches), len(topo.Cycles)))

	// unit hashes, dependencies first
	for _, id := range topo.Order {
		r := resultOf(id)
		deps := make([]project.Digest, 0, len(graph.Deps[id]))
		for _, dep := range graph.Deps[id] {
			deps = append(deps, resultOf(dep).Meta.UnitHash)
		}
		r.Meta.UnitHash = project.Combine(r.Meta.ContentHash, deps...)
	}

	needed, err := replayCache(topo, graph, resultOf, opts)
	if err != nil {
		return nil, err
	}

	done := make([]chan struct{}, len(slots))
	for i := range done {
		done[i] = make(chan struct{})
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for _, id := range topo.Order {
		r := resultOf(id)
		if !needed[id] {
			close(done[id])
			continue
		}
		g.Go(func() error {
			defer close(done[id])
			deps := make(map[string]*sema.Result, len(graph.Deps[id]))
			for _, dep := range graph.Deps[id] {
				select {
				case <-done[dep]:
				case <-gctx.Done():
					return gctx.Err()
				}
				deps[idx.Name(dep)] = resultOf(dep).Result
			}
			return analyzeScheduled(gctx, p.FileSet, r, deps, opts)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &ProjectResult{FileSet: p.FileSet, Units: results}
	for _, r := range results {
		if r.Skipped {
			r.finish(p.FileSet, nil)
			emit(opts.Progress, Event{Unit: r.Name, Stage: StagePublish, Status: StatusSkipped})
		}
	}
	reports := make([]observ.Report, 0, len(results))
	for _, id := range topo.Order {
		r := resultOf(id)
		reports = append(reports, r.Timings)
		if opts.Cache == nil || r.Cached {
			continue
		}
		err := opts.Cache.Put(cacheKey(r.Meta.UnitHash, opts), &CachedUnit{
			Name:        r.Name,
			Path:        r.Meta.Path,
			ContentHash: r.Meta.ContentHash,
			UnitHash:    r.Meta.UnitHash,
			Diagnostics: cacheDiagnostics(r.Diagnostics),
		})
		if err != nil {
			return nil, err
		}
	}
	for _, batch := range topo.Batches {
		out.Batches = append(out.Batches, idx.Names(batch))
	}
	out.Timings = observ.Merge(reports...)
	slices.SortStableFunc(out.Units, func(a, b *UnitResult) int { return strings.Compare(a.Name, b.Name) })
	emit(opts.Progress, Event{Status: StatusDone})
	return out, nil
}

func parseUnits(ctx context.Context, p *Project, opts Options, jobs int) ([]*UnitResult, error) {
	results := make([]*UnitResult, len(p.Units))
	for _, u := range p.Units {
		emit(opts.Progress, Event{Unit: u.Name, Stage: StageParse, Status: StatusQueued})
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, u := range p.Units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			file := p.FileSet.Get(u.File)
			if file == nil {
				return fmt.Errorf("driver: unit %s has no file", u.Name)
			}
			emit(opts.Progress, Event{Unit: u.Name, Stage: StageParse, Status: StatusWorking})
			results[i] = parseUnit(gctx, u.Name, file, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func analyzeScheduled(ctx context.Context, fs *source.FileSet, r *UnitResult, deps map[string]*sema.Result, opts Options) error {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeUnit, "analyze_unit", trace.CurrentSpan(ctx).SpanID).WithExtra("unit", r.Name)
	ctx = trace.WithSpan(ctx, span)
	start := time.Now()
	emit(opts.Progress, Event{Unit: r.Name, Stage: StageCheck, Status: StatusWorking})
	if err := r.check(ctx, fs, deps, opts, true); err != nil {
		span.End("cancelled")
		return err
	}
	status := unitStatus(r)
	emit(opts.Progress, Event{Unit: r.Name, Stage: StagePublish, Status: status, Elapsed: time.Since(start)})
	span.WithExtra("diags", fmt.Sprint(len(r.Diagnostics))).End(string(status))
	return nil
}

// replayCache fills cached units and reports which units still need a
// semantic pass: a cache miss, or a unit some needed unit imports.
func replayCache(topo *dag.Topo, graph dag.Graph, resultOf func(dag.UnitID) *UnitResult, opts Options) ([]bool, error) {
	needed := make([]bool, len(graph.Deps))
	if opts.Cache == nil {
		for _, id := range topo.Order {
			needed[id] = true
		}
		return needed, nil
	}
	hits := make(map[dag.UnitID]*CachedUnit)
	for _, id := range topo.Order {
		hit, ok, err := opts.Cache.Get(cacheKey(resultOf(id).Meta.UnitHash, opts))
		if err != nil {
			return nil, err
		}
		if ok {
			hits[id] = hit
		}
	}
	for i := len(topo.Order) - 1; i >= 0; i-- {
		id := topo.Order[i]
		if hits[id] == nil {
			needed[id] = true
			continue
		}
		for _, user := range graph.Users[id] {
			if needed[user] {
				needed[id] = true
				break
			}
		}
	}
	for id, hit := range hits {
		if needed[id] {
			continue
		}
		r := resultOf(id)
		r.Cached = true
		r.Diagnostics = restoreDiagnostics(hit.Diagnostics)
		r.builder = nil
		r.Timings = r.timer.Report()
		r.Timings.Unit = r.Name
		emit(opts.Progress, Event{Unit: r.Name, Stage: StagePublish, Status: StatusCached})
	}
	return needed, nil
}

// cacheKey folds the options that change diagnostics into the unit hash.
func cacheKey(unitHash project.Digest, opts Options) project.Digest {
	salt := sha256.Sum256(fmt.Appendf(nil, "schema=%d;records=%s;max=%d", diskCacheSchema, opts.Types.RecordPolicy, opts.MaxDiagnostics))
	return project.Combine(unitHash, salt)
}
