package trace

import (
	"bufio"
	"io"
	"sync"
)

// StreamTracer writes every event as soon as it is emitted. Output is
// buffered; Flush or Close push it to the writer.
type StreamTracer struct {
	mu     sync.Mutex
	dst    io.Writer
	buf    *bufio.Writer
	level  Level
	format Format
	seq    uint64
}

// NewStreamTracer creates a tracer writing to w. FormatAuto means text.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	if format == FormatAuto {
		format = FormatText
	}
	return &StreamTracer{dst: w, buf: bufio.NewWriter(w), level: level, format: format}
}

// Emit numbers ev and writes it when its scope passes the level.
func (t *StreamTracer) Emit(ev *Event) {
	if ev == nil || !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	ev.Seq = t.seq
	// ошибки записи трассы не должны ронять запуск
	_, _ = t.buf.Write(FormatEvent(ev, t.format))
}

// Flush writes buffered events.
func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.Flush()
}

// Close flushes and closes the writer when it is an io.Closer.
func (t *StreamTracer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.buf.Flush(); err != nil {
		return err
	}
	if c, ok := t.dst.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Level returns the configured level.
func (t *StreamTracer) Level() Level { return t.level }

// Enabled reports whether anything can be emitted.
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
