package trace

import (
	"sync/atomic"
	"time"
)

var spanIDs atomic.Uint64

// Span tracks one begin/end pair. A nil or disabled span is safe to use.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	started time.Time
	attrs   map[string]string
	muted   bool // scope filtered out by the level
}

// Begin starts a root span on t.
func Begin(t Tracer, scope Scope, name string) *Span {
	return begin(t, scope, name, 0)
}

// Child starts a span nested under s, on the same tracer.
func (s *Span) Child(scope Scope, name string) *Span {
	if s == nil {
		return nil
	}
	return begin(s.tracer, scope, name, s.id)
}

func begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil {
		t = Nop
	}
	if !t.Enabled() || !t.Level().ShouldEmit(scope) {
		// родитель сохраняется, чтобы вложенные спаны не теряли связь
		return &Span{tracer: t, id: parent, muted: true}
	}
	s := &Span{
		tracer:  t,
		id:      spanIDs.Add(1),
		parent:  parent,
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	t.Emit(&Event{
		Time:     s.started,
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   s.id,
		ParentID: parent,
		Name:     name,
	})
	return s
}

// Set attaches a key/value pair reported with the end event.
func (s *Span) Set(key, value string) *Span {
	if s == nil || s.muted {
		return s
	}
	if s.attrs == nil {
		s.attrs = make(map[string]string)
	}
	s.attrs[key] = value
	return s
}

// End emits the end event and returns the span duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.muted {
		return 0
	}
	now := time.Now()
	dur := now.Sub(s.started)
	s.tracer.Emit(&Event{
		Time:     now,
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Name:     s.name,
		Detail:   detail,
		Duration: dur,
		Extra:    s.attrs,
	})
	return dur
}

// ID returns the span identifier, 0 for spans that were never emitted.
func (s *Span) ID() uint64 {
	if s == nil || s.muted {
		return 0
	}
	return s.id
}

// Point emits an instant event.
func Point(t Tracer, scope Scope, name, detail string, extra map[string]string) {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(&Event{
		Time:   time.Now(),
		Kind:   KindPoint,
		Scope:  scope,
		Name:   name,
		Detail: detail,
		Extra:  extra,
	})
}
