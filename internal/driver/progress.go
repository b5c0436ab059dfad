package driver

import "time"

// Stage is a step of one unit's analysis.
type Stage string

const (
	StageParse   Stage = "parse"
	StageCheck   Stage = "check"
	StagePublish Stage = "publish"
)

type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"   // finished with error diagnostics
	StatusSkipped Status = "skipped" // cycle or failed dependency
	StatusCached  Status = "cached"
)

// Event reports progress for a unit, or for the whole run when Unit is
// empty.
type Event struct {
	Unit    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent use.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(ev Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- ev
}

func emit(sink ProgressSink, ev Event) {
	if sink != nil {
		sink.OnEvent(ev)
	}
}
