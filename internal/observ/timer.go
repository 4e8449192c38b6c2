// Package observ measures the phases of a run for --timings.
package observ

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"
	"time"
)

// Phase is one measured step of a run.
type Phase struct {
	Name    string
	Elapsed time.Duration
	Note    string
	open    bool
}

// Timer collects phases in the order they were started. Safe for concurrent
// use; a nil Timer measures nothing.
type Timer struct {
	mu     sync.Mutex
	phases []Phase
}

// NewTimer returns an empty Timer.
func NewTimer() *Timer { return &Timer{} }

// Start opens a phase. The returned stop closes it; calling stop more than
// once keeps the first result.
func (t *Timer) Start(name string) (stop func(note string)) {
	if t == nil {
		return func(string) {}
	}
	started := time.Now()
	t.mu.Lock()
	idx := len(t.phases)
	t.phases = append(t.phases, Phase{Name: name, open: true})
	t.mu.Unlock()

	return func(note string) {
		t.mu.Lock()
		defer t.mu.Unlock()
		p := &t.phases[idx]
		if !p.open {
			return
		}
		p.open = false
		p.Elapsed = time.Since(started)
		p.Note = note
	}
}

// Measure runs fn as a phase. A failing fn is noted as "failed" and its
// error is returned unchanged.
func (t *Timer) Measure(name string, fn func() error) error {
	stop := t.Start(name)
	err := fn()
	if err != nil {
		stop("failed")
	} else {
		stop("")
	}
	return err
}

// Phases returns a copy of the closed phases.
func (t *Timer) Phases() []Phase {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Phase, 0, len(t.phases))
	for _, p := range t.phases {
		if !p.open {
			out = append(out, p)
		}
	}
	return out
}

// Total is the sum of the closed phases.
func (t *Timer) Total() time.Duration {
	var total time.Duration
	for _, p := range t.Phases() {
		total += p.Elapsed
	}
	return total
}

// WriteSummary prints one aligned row per phase and a total row:
//
//	clippy     812.40 ms  97.1%
//	aggregate    0.52 ms   0.1%
//	total      836.70 ms
func (t *Timer) WriteSummary(w io.Writer) error {
	phases := t.Phases()
	total := t.Total()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, p := range phases {
		share := 0.0
		if total > 0 {
			share = 100 * float64(p.Elapsed) / float64(total)
		}
		note := ""
		if p.Note != "" {
			note = " (" + p.Note + ")"
		}
		fmt.Fprintf(tw, "%s\t%.2f ms\t%.1f%%\t%s\n", p.Name, millis(p.Elapsed), share, note)
	}
	fmt.Fprintf(tw, "total\t%.2f ms\t\t\n", millis(total))
	return tw.Flush()
}

// Summary is WriteSummary into a string.
func (t *Timer) Summary() string {
	var b strings.Builder
	_ = t.WriteSummary(&b)
	return b.String()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
