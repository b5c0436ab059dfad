package driver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestWorkspaceUpdate(t *testing.T) {
	ctx := context.Background()
	w := NewWorkspace(Options{})
	defer w.Close()

	lib, err := w.Update(ctx, "lib", []byte(libSrc))
	if err != nil {
		t.Fatalf("Update lib: %v", err)
	}
	app, err := w.Update(ctx, "app", []byte(appSrc))
	if err != nil {
		t.Fatalf("Update app: %v", err)
	}
	if len(app.Diagnostics) != 0 {
		t.Fatalf("app diagnostics = %v", app.Diagnostics)
	}
	twice, _ := app.Model.Lookup("twice")
	if v, _ := twice.ResolvedValue(); v != "10" {
		t.Fatalf("twice = %q", v)
	}
	if w.Snapshot("lib") != lib || w.Snapshot("missing") != nil {
		t.Fatalf("snapshot lookup broken")
	}

	again, err := w.Update(ctx, "app", []byte(appSrc))
	if err != nil || again.ID != app.ID {
		t.Fatalf("unchanged text should keep the snapshot: %v", err)
	}

	// a new lib makes app's hash differ even with the same text
	if _, err := w.Update(ctx, "lib", []byte("public const int LIMIT = 7;\npublic type Point record {| int x; int y; |};\n")); err != nil {
		t.Fatalf("Update lib: %v", err)
	}
	rebuilt, err := w.Update(ctx, "app", []byte(appSrc))
	if err != nil || rebuilt.ID == app.ID {
		t.Fatalf("app should be rebuilt: %v", err)
	}
	twice, _ = rebuilt.Model.Lookup("twice")
	if v, _ := twice.ResolvedValue(); v != "14" {
		t.Fatalf("twice = %q", v)
	}
	// the old snapshot is untouched
	twice, _ = app.Model.Lookup("twice")
	if v, _ := twice.ResolvedValue(); v != "10" {
		t.Fatalf("old twice = %q", v)
	}
	if units := w.Units(); len(units) != 2 || units[0] != "app" {
		t.Fatalf("units = %v", units)
	}
}

func TestWorkspaceLastRequestWins(t *testing.T) {
	ctx := context.Background()
	w := NewWorkspace(Options{})

	const n = 16
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		maxOK uint64
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := w.Update(ctx, "u", fmt.Appendf(nil, "const int v = %d;\n", i))
			if err != nil {
				if !errors.Is(err, ErrSuperseded) {
					t.Errorf("Update %d: %v", i, err)
				}
				return
			}
			mu.Lock()
			maxOK = max(maxOK, snap.Seq)
			mu.Unlock()
		}()
	}
	wg.Wait()

	got := w.Snapshot("u")
	if got == nil {
		t.Fatalf("nothing published")
	}
	if got.Seq != maxOK {
		t.Fatalf("published seq %d, newest successful %d", got.Seq, maxOK)
	}
}

func TestWorkspaceLoad(t *testing.T) {
	w := NewWorkspace(Options{})
	res, err := w.Load(context.Background(), newProject("app", appSrc, "lib", libSrc, "a", "import a;\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.HasErrors() == false {
		t.Fatalf("self import should be reported")
	}
	for _, name := range []string{"app", "lib", "a"} {
		if w.Snapshot(name) == nil {
			t.Fatalf("%s not published", name)
		}
	}
	snap, err := w.Update(context.Background(), "app", []byte(appSrc+"const int more = lib:LIMIT;\n"))
	if err != nil || len(snap.Diagnostics) != 0 {
		t.Fatalf("update after load: %v %v", err, snap)
	}
}

// gateSink parks the first check of unit until release is closed.
type gateSink struct {
	unit    string
	once    sync.Once
	reached chan struct{}
	release chan struct{}
}

func (s *gateSink) OnEvent(ev Event) {
	if ev.Unit != s.unit || ev.Stage != StageCheck || ev.Status != StatusWorking {
		return
	}
	s.once.Do(func() {
		close(s.reached)
		<-s.release
	})
}

func TestWorkspaceLoadKeepsNewerUpdate(t *testing.T) {
	ctx := context.Background()
	gate := &gateSink{unit: "lib", reached: make(chan struct{}), release: make(chan struct{})}
	w := NewWorkspace(Options{Progress: gate})
	defer w.Close()

	type loaded struct {
		res *ProjectResult
		err error
	}
	done := make(chan loaded, 1)
	go func() {
		res, err := w.Load(ctx, newProject("app", appSrc, "lib", libSrc))
		done <- loaded{res, err}
	}()

	<-gate.reached
	newer, err := w.Update(ctx, "lib", []byte("public const int LIMIT = 9;\n"))
	if err != nil {
		t.Fatalf("Update during Load: %v", err)
	}
	close(gate.release)
	out := <-done
	if out.err != nil {
		t.Fatalf("Load: %v", out.err)
	}

	if got := w.Snapshot("lib"); got != newer {
		t.Fatalf("Load overwrote the newer lib snapshot (seq %d, want %d)", got.Seq, newer.Seq)
	}
	limit, _ := w.Snapshot("lib").Model.Lookup("LIMIT")
	if v, _ := limit.ResolvedValue(); v != "9" {
		t.Fatalf("LIMIT = %q", v)
	}
	// app was not touched by the update, so Load publishes it
	app := w.Snapshot("app")
	if app == nil {
		t.Fatalf("app not published")
	}
	twice, _ := app.Model.Lookup("twice")
	if v, _ := twice.ResolvedValue(); v != "10" {
		t.Fatalf("twice = %q", v)
	}
}

func TestWorkspaceLoadSupersedesPendingRequests(t *testing.T) {
	w := NewWorkspace(Options{})
	before, err := w.Update(context.Background(), "lib", []byte("public const int LIMIT = 1;\n"))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := w.Load(context.Background(), newProject("lib", libSrc)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	after := w.Snapshot("lib")
	if after == before || after.Seq <= before.Seq {
		t.Fatalf("Load should publish a newer lib: before seq %d, after seq %d", before.Seq, after.Seq)
	}
}
