package trace

import "time"

// Kind is the type of a trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

var kindNames = [...]string{
	KindSpanBegin: "begin",
	KindSpanEnd:   "end",
	KindPoint:     "point",
}

func (k Kind) String() string {
	if k == 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Scope is the granularity of an event; coarser scopes have lower values.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // the CLI invocation
	ScopePhase                   // cargo, decode, aggregate, render
	ScopeFile                    // per-file work
	ScopeNode                    // single messages and spans
)

var scopeNames = [...]string{
	ScopeDriver: "driver",
	ScopePhase:  "phase",
	ScopeFile:   "file",
	ScopeNode:   "node",
}

func (s Scope) String() string {
	if s == 0 || int(s) >= len(scopeNames) {
		return "unknown"
	}
	return scopeNames[s]
}

// Event is one trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // assigned by the tracer, in emission order
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for root spans and points
	Name     string
	Detail   string
	Duration time.Duration // set on KindSpanEnd
	Extra    map[string]string
}
