package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "ERROR", "Phase", "detail", "debug"} {
		if _, err := ParseLevel(s); err != nil {
			t.Fatalf("ParseLevel(%q): %v", s, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("ParseLevel accepted an unknown level")
	}
	if LevelPhase.ShouldEmit(ScopeUnit) || !LevelDetail.ShouldEmit(ScopeUnit) || LevelDetail.ShouldEmit(ScopeNode) {
		t.Fatalf("level filtering is wrong")
	}
}

func TestSpansStream(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)
	root := Begin(tr, ScopeDriver, "analyze", 0)
	unit := Begin(tr, ScopeUnit, "unit:app", root.ID()).WithExtra("diags", "2").WithExtra("cached", "false")
	if node := Begin(tr, ScopeNode, "const:x", unit.ID()); node.ID() != 0 {
		t.Fatalf("node span emitted at detail level")
	}
	unit.End("ok")
	root.End("")
	if err := tr.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "> analyze") {
		t.Fatalf("begin line = %q", lines[0])
	}
	if !strings.Contains(lines[2], "< unit:app") || !strings.HasSuffix(lines[2], "(ok) {cached=false, diags=2}") {
		t.Fatalf("end line = %q", lines[2])
	}
}

func TestNDJSONAndMulti(t *testing.T) {
	var buf bytes.Buffer
	ring := NewRingTracer(2, LevelDebug)
	tr := NewMultiTracer(LevelDebug, NewStreamTracer(&buf, LevelDebug, FormatNDJSON), ring)
	for _, name := range []string{"a", "b", "c"} {
		Point(tr, ScopeNode, name, 0, "")
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var names []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var ev struct {
			Kind string `json:"kind"`
			Name string `json:"name"`
		}
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("bad json %q: %v", line, err)
		}
		if ev.Kind != "point" {
			t.Fatalf("kind = %s", ev.Kind)
		}
		names = append(names, ev.Name)
	}
	if strings.Join(names, ",") != "a,b,c" {
		t.Fatalf("streamed = %v", names)
	}

	snap := ring.Snapshot()
	if len(snap) != 2 || snap[0].Name != "b" || snap[1].Name != "c" {
		t.Fatalf("ring kept %+v", snap)
	}
	if tr.Ring() != ring {
		t.Fatalf("Ring() did not find the ring tracer")
	}
}

func TestRingAtErrorLevelKeepsPasses(t *testing.T) {
	ring := NewRingTracer(8, LevelError)
	Begin(ring, ScopePass, "sema.consts", 0).End("")
	Begin(ring, ScopeUnit, "unit:x", 0).End("")
	if got := len(ring.Snapshot()); got != 0 {
		// LevelError spans are inert: Begin checks the level first
		t.Fatalf("events = %d", got)
	}
	ring.Emit(&Event{Kind: KindSpanBegin, Scope: ScopePass, Name: "parse"})
	ring.Emit(&Event{Kind: KindSpanBegin, Scope: ScopeUnit, Name: "unit:x"})
	if snap := ring.Snapshot(); len(snap) != 1 || snap[0].Name != "parse" {
		t.Fatalf("ring = %+v", snap)
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("empty context should give Nop")
	}
	ring := NewRingTracer(4, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	span := Begin(FromContext(ctx), ScopeDriver, "run", 0)
	ctx = WithSpan(ctx, span)
	if CurrentSpan(ctx).SpanID != span.ID() || span.ID() == 0 {
		t.Fatalf("span context not propagated")
	}
}

func TestNewConfig(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("LevelOff tracer = %v, %v", tr, err)
	}
	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := tr.(*MultiTracer); !ok {
		t.Fatalf("ModeBoth built %T", tr)
	}
	if formatForPath("trace.ndjson") != FormatNDJSON || formatForPath("-") != FormatText {
		t.Fatalf("format detection is wrong")
	}
	if _, err := ParseMode("disk"); err == nil {
		t.Fatalf("ParseMode accepted an unknown mode")
	}
}

func TestHeartbeat(t *testing.T) {
	ring := NewRingTracer(16, LevelPhase)
	hb := StartHeartbeat(ring, time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for len(ring.Snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	hb.Stop()
	hb.Stop()
	if len(ring.Snapshot()) == 0 {
		t.Fatalf("no heartbeat recorded")
	}
	if StartHeartbeat(Nop, time.Millisecond) != nil {
		t.Fatalf("heartbeat started for Nop")
	}
}
