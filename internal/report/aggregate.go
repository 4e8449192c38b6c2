package report

import (
	"errors"
	"fmt"
	"strconv"

	"docgap/internal/diag"
	"docgap/internal/filter"
	"docgap/internal/trace"
	"docgap/internal/window"
)

// ErrSpanWithoutMessage reports a span that passed the path gate while no
// message was pending. The input tree is malformed.
var ErrSpanWithoutMessage = errors.New("span without a preceding message")

type state uint8

const (
	stateIdle       state = iota // nothing pending
	statePending                 // an accepted message waits for its span
	stateSuppressed              // the last message was rejected
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case statePending:
		return "pending"
	case stateSuppressed:
		return "suppressed"
	}
	return "unknown"
}

// Options configures an Aggregator.
type Options struct {
	Filter *filter.Filter // nil accepts every documentation lint and every path
	Tracer trace.Tracer   // nil means trace.Nop
}

// Aggregator is the correlation state machine. It is not safe for concurrent
// use.
type Aggregator struct {
	filter  *filter.Filter
	tracer  trace.Tracer
	state   state
	pending string
	index   *Index
}

// NewAggregator returns an Aggregator in the idle state.
func NewAggregator(opts Options) *Aggregator {
	t := opts.Tracer
	if t == nil {
		t = trace.Nop
	}
	f := opts.Filter
	if f == nil {
		f = &filter.Filter{}
	}
	return &Aggregator{filter: f, tracer: t, index: NewIndex()}
}

// Visit feeds one node of the pre-order walk.
func (a *Aggregator) Visit(n diag.Node) error {
	switch n := n.(type) {
	case *diag.Message:
		a.message(n)
	case *diag.Span:
		return a.span(n)
	case *diag.Text:
		// consumed together with its span
	}
	return nil
}

// Index returns the entries collected so far.
func (a *Aggregator) Index() *Index {
	return a.index
}

func (a *Aggregator) message(m *diag.Message) {
	if a.filter.AcceptMessage(m.CodeString(), m.Text) {
		a.state = statePending
		a.pending = m.Text
		a.point("message", "accepted", m.Text)
		return
	}
	a.state = stateSuppressed
	a.pending = ""
	a.point("message", "rejected", m.Text)
}

func (a *Aggregator) span(sp *diag.Span) error {
	if !a.filter.AcceptPath(sp.File) {
		if a.state == statePending {
			a.state = stateIdle
			a.pending = ""
		}
		a.point("span", "path rejected", sp.File)
		return nil
	}

	switch a.state {
	case stateSuppressed:
		a.point("span", "skipped", sp.File)
		return nil
	case stateIdle:
		return fmt.Errorf("%s:%d:%d: %w", sp.File, sp.Row, sp.Col, ErrSpanWithoutMessage)
	}

	e := Entry{
		Text: a.pending,
		Row:  sp.Row,
		Col:  sp.Col,
	}
	if len(sp.Text) > 0 {
		e.Highlights = make([]window.Fragment, len(sp.Text))
		for i, t := range sp.Text {
			e.Highlights[i] = window.Fragment{Data: t.Data, Start: t.Start, End: t.End}
		}
		e.Pieces = window.Partition(e.Highlights)
	}
	a.index.Add(sp.File, e)
	a.state = stateIdle
	a.pending = ""

	if a.tracer.Enabled() {
		trace.Point(a.tracer, trace.ScopeNode, "entry", sp.File, map[string]string{
			"row": strconv.FormatUint(uint64(sp.Row), 10),
			"col": strconv.FormatUint(uint64(sp.Col), 10),
		})
	}
	return nil
}

func (a *Aggregator) point(name, detail, subject string) {
	if !a.tracer.Enabled() {
		return
	}
	trace.Point(a.tracer, trace.ScopeNode, name, detail, map[string]string{
		"subject": subject,
		"state":   a.state.String(),
	})
}

// Walk visits the whole tree and returns the resulting Index.
func Walk(tree *diag.Tree, opts Options) (*Index, error) {
	t := opts.Tracer
	if t == nil {
		t = trace.Nop
	}
	span := trace.Begin(t, trace.ScopePhase, "aggregate")

	agg := NewAggregator(opts)
	if err := tree.Walk(agg.Visit); err != nil {
		span.End("failed")
		return nil, err
	}
	idx := agg.Index()
	span.Set("entries", strconv.Itoa(idx.Len())).
		Set("files", strconv.Itoa(idx.FileCount())).
		End("")
	return idx, nil
}
