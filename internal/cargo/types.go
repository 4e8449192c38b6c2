package cargo

import "time"

// Stage is the step a package is in.
type Stage string

const (
	// StageCompile is set while cargo builds a dependency.
	StageCompile Stage = "compile"
	// StageCheck is set while clippy checks a package.
	StageCheck Stage = "check"
	// StageDecode is the decoding of the JSON stream.
	StageDecode Stage = "decode"
)

// Status captures progress state within a stage.
type Status string

const (
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for a package (or for the whole run when Package is
// empty).
type Event struct {
	Package  string
	Stage    Stage
	Status   Status
	Messages int // diagnostics decoded so far
	Err      error
	Elapsed  time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events to a channel.
type ChannelSink struct {
	Ch chan<- Event
}

// OnEvent implements ProgressSink.
func (s ChannelSink) OnEvent(ev Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- ev
}

func emit(sink ProgressSink, ev Event) {
	if sink == nil {
		return
	}
	sink.OnEvent(ev)
}
