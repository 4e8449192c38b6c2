package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"off", LevelOff, false},
		{"PHASE", LevelPhase, false},
		{"detail", LevelDetail, false},
		{"debug", LevelDebug, false},
		{"loud", LevelOff, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseLevel(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestShouldEmit(t *testing.T) {
	if LevelPhase.ShouldEmit(ScopeFile) {
		t.Fatal("phase level must not emit file scope")
	}
	if !LevelDetail.ShouldEmit(ScopeFile) || LevelDetail.ShouldEmit(ScopeNode) {
		t.Fatal("detail level covers files but not nodes")
	}
	if !LevelDebug.ShouldEmit(ScopeNode) {
		t.Fatal("debug level emits everything")
	}
	if LevelOff.ShouldEmit(ScopeDriver) {
		t.Fatal("off emits nothing")
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)

	span := Begin(tr, ScopePhase, "aggregate")
	Point(tr, ScopeNode, "span", "skipped", nil)
	span.Set("entries", "3").Set("files", "2").End("ok")
	if buf.Len() != 0 {
		t.Fatal("output must stay buffered until Flush")
	}
	if err := tr.Flush(); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected begin and end lines, got %q", buf.String())
	}
	if !strings.Contains(lines[0], "phase  > aggregate") {
		t.Fatalf("begin line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "< aggregate ok ") || !strings.HasSuffix(lines[1], "ms entries=3 files=2") {
		t.Fatalf("end line = %q", lines[1])
	}
}

func TestChildSpans(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatNDJSON)

	root := Begin(tr, ScopeDriver, "docgap")
	hidden := root.Child(ScopeNode, "message")
	file := hidden.Child(ScopeFile, "src/lib.rs")
	file.End("")
	hidden.End("")
	root.End("")
	if err := tr.Flush(); err != nil {
		t.Fatal(err)
	}

	if hidden.ID() != 0 {
		t.Fatal("span below the level must not get an ID")
	}
	var events []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var ev map[string]any
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("invalid ndjson %q: %v", line, err)
		}
		events = append(events, ev)
	}
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d: %s", len(events), buf.String())
	}
	// файл привязан к корню через скрытый спан
	if events[1]["name"] != "src/lib.rs" || events[1]["parent"] != float64(root.ID()) {
		t.Fatalf("file span = %v", events[1])
	}
	for i, ev := range events {
		if ev["seq"] != float64(i+1) {
			t.Fatalf("event %d seq = %v", i, ev["seq"])
		}
	}
}

func TestStartSpanNests(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)
	ctx := WithTracer(context.Background(), tr)

	ctx, outer := StartSpan(ctx, ScopeDriver, "docgap")
	_, inner := StartSpan(ctx, ScopePhase, "cargo")
	if SpanFromContext(ctx) != outer {
		t.Fatal("context must carry the outer span")
	}
	inner.End("")
	outer.End("")
	if err := tr.Flush(); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 || !strings.Contains(lines[1], "phase    > cargo") {
		t.Fatalf("nested span should be indented:\n%s", buf.String())
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(tr, ScopeFile, "file:src/lib.rs", "", map[string]string{"entries": "2"})
	if err := tr.Flush(); err != nil {
		t.Fatal(err)
	}

	var ev map[string]any
	if err := json.Unmarshal(buf.Bytes(), &ev); err != nil {
		t.Fatalf("invalid ndjson %q: %v", buf.String(), err)
	}
	if ev["kind"] != "point" || ev["scope"] != "file" || ev["name"] != "file:src/lib.rs" {
		t.Fatalf("unexpected event %v", ev)
	}
}

func TestNewOff(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatal(err)
	}
	if tr.Enabled() {
		t.Fatal("off tracer must be disabled")
	}
	if span := Begin(tr, ScopeDriver, "run"); span.ID() != 0 {
		t.Fatal("disabled tracer must not allocate span IDs")
	}
}

func TestNewFormatFromExtension(t *testing.T) {
	path := t.TempDir() + "/run.ndjson"
	tr, err := New(Config{Level: LevelPhase, OutputPath: path})
	if err != nil {
		t.Fatal(err)
	}
	st, ok := tr.(*StreamTracer)
	if !ok {
		t.Fatalf("expected *StreamTracer, got %T", tr)
	}
	if st.format != FormatNDJSON {
		t.Fatalf("format = %v, want ndjson", st.format)
	}
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestContext(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatal("missing tracer must fall back to Nop")
	}
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)
	ctx := WithTracer(context.Background(), tr)
	if FromContext(ctx) != Tracer(tr) {
		t.Fatal("tracer not propagated")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatAuto, false},
		{"auto", FormatAuto, false},
		{"text", FormatText, false},
		{"NDJSON", FormatNDJSON, false},
		{"jsonl", FormatNDJSON, false},
		{"xml", FormatAuto, true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Fatalf("ParseFormat(%q) = %v, %v", tt.in, got, err)
		}
	}
	for path, want := range map[string]Format{
		"run.ndjson": FormatNDJSON,
		"run.JSONL":  FormatNDJSON,
		"run.json":   FormatNDJSON,
		"run.txt":    FormatText,
		"-":          FormatText,
	} {
		if got := formatForPath(path); got != want {
			t.Fatalf("formatForPath(%q) = %v, want %v", path, got, want)
		}
	}
}
