package driver

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"balsa/internal/diag"
	"balsa/internal/model"
	"balsa/internal/project"
	"balsa/internal/sema"
	"balsa/internal/source"
	"balsa/internal/trace"
)

// ErrSuperseded is returned by Update when a newer Update for the same unit
// started before this one could publish.
var ErrSuperseded = errors.New("analysis superseded by a newer request")

// Snapshot is one published, immutable analysis of a unit.
type Snapshot struct {
	ID          uuid.UUID
	Unit        string
	Seq         uint64
	Hash        project.Digest
	FileSet     *source.FileSet
	Model       *model.Model
	Diagnostics []diag.Located
}

// Workspace keeps the latest published snapshot of every unit. Readers never
// block writers: Snapshot is a single atomic load. Update for a unit cancels
// the analysis it replaces, and only the most recent request publishes.
type Workspace struct {
	opts Options

	mu    sync.Mutex
	units map[string]*unitState
}

type unitState struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	snap   atomic.Pointer[Snapshot]
}

func NewWorkspace(opts Options) *Workspace {
	return &Workspace{opts: opts, units: make(map[string]*unitState)}
}

func (w *Workspace) state(unit string) *unitState {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, ok := w.units[unit]
	if !ok {
		st = &unitState{}
		w.units[unit] = st
	}
	return st
}

// Snapshot returns the latest published analysis of unit, or nil.
func (w *Workspace) Snapshot(unit string) *Snapshot {
	w.mu.Lock()
	st := w.units[unit]
	w.mu.Unlock()
	if st == nil {
		return nil
	}
	return st.snap.Load()
}

// Units lists units with a published snapshot, sorted.
func (w *Workspace) Units() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.units))
	for name, st := range w.units {
		if st.snap.Load() != nil {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// Load analyzes a whole project and publishes every unit that got a model.
// Load counts as a request for each of its units: it cancels their in-flight
// Updates, and a unit updated while Load runs keeps the newer snapshot.
func (w *Workspace) Load(ctx context.Context, p *Project) (*ProjectResult, error) {
	claimed := make(map[string]uint64, len(p.Units))
	for _, u := range p.Units {
		st := w.state(u.Name)
		st.mu.Lock()
		st.seq++
		claimed[u.Name] = st.seq
		if st.cancel != nil {
			st.cancel()
			st.cancel = nil
		}
		st.mu.Unlock()
	}

	res, err := AnalyzeProject(ctx, p, w.opts)
	if err != nil {
		return nil, err
	}
	for _, r := range res.Units {
		seq, ok := claimed[r.Name]
		if r.Model == nil || !ok {
			continue
		}
		st := w.state(r.Name)
		st.mu.Lock()
		if st.seq == seq {
			st.snap.Store(w.snapshot(ctx, r, seq, p.FileSet))
		}
		st.mu.Unlock()
	}
	return res, nil
}

// Update re-analyzes unit from text against the published snapshots of the
// units it imports. The unit's scope tree is rebuilt from scratch. If a newer
// Update for the same unit starts meanwhile, this one is cancelled and
// returns ErrSuperseded without publishing.
func (w *Workspace) Update(ctx context.Context, unit string, text []byte) (*Snapshot, error) {
	st := w.state(unit)
	st.mu.Lock()
	st.seq++
	seq := st.seq
	if st.cancel != nil {
		st.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	st.cancel = cancel
	st.mu.Unlock()
	defer cancel()

	fs := source.NewFileSet()
	fileID := fs.AddVirtual(unit+project.SourceExt, text)
	r := parseUnit(ctx, unit, fs.Get(fileID), w.opts)
	deps := make(map[string]*sema.Result, len(r.Meta.Imports))
	depHashes := make([]project.Digest, 0, len(r.Meta.Imports))
	for _, imp := range r.Meta.Imports {
		if snap := w.Snapshot(imp.Unit); snap != nil && imp.Unit != unit {
			deps[imp.Unit] = snap.Model.Result()
			depHashes = append(depHashes, snap.Hash)
		}
	}
	r.Meta.UnitHash = project.Combine(r.Meta.ContentHash, depHashes...)

	if prev := st.snap.Load(); prev != nil && prev.Hash == r.Meta.UnitHash {
		if superseded(st, seq) {
			return nil, ErrSuperseded
		}
		return prev, nil
	}

	err := r.check(ctx, fs, deps, w.opts, false)
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.seq != seq {
		return nil, ErrSuperseded
	}
	st.cancel = nil
	if err != nil {
		return nil, err
	}
	snap := w.snapshot(ctx, r, seq, fs)
	st.snap.Store(snap)
	return snap, nil
}

// Close cancels every in-flight Update.
func (w *Workspace) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, st := range w.units {
		st.mu.Lock()
		if st.cancel != nil {
			st.cancel()
			st.cancel = nil
		}
		st.mu.Unlock()
	}
}

func superseded(st *unitState, seq uint64) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.seq != seq
}

func (w *Workspace) snapshot(ctx context.Context, r *UnitResult, seq uint64, fs *source.FileSet) *Snapshot {
	snap := &Snapshot{
		ID:          uuid.New(),
		Unit:        r.Name,
		Seq:         seq,
		Hash:        r.Meta.UnitHash,
		FileSet:     fs,
		Model:       r.Model,
		Diagnostics: r.Diagnostics,
	}
	trace.Point(trace.FromContext(ctx), trace.ScopeUnit, "publish", trace.CurrentSpan(ctx).SpanID,
		r.Name+" "+snap.ID.String())
	return snap
}
