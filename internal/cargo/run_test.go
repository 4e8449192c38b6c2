package cargo

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"
)

type recordSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordSink) OnEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

const fakeMessage = `{"reason":"compiler-message","package_id":"demo 0.1.0","message":{"message":"missing documentation for a function","code":{"code":"missing_docs","explanation":null},"level":"warning","spans":[{"file_name":"src/lib.rs","line_start":3,"column_start":1,"is_primary":true,"text":[{"text":"pub fn f() {}","highlight_start":1,"highlight_end":14}]}],"children":[]}}`

// fakeCargo writes a script that prints a canned clippy run and exits with
// status code.
func fakeCargo(t *testing.T, stdout string, code int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake cargo is a shell script")
	}
	dir := t.TempDir()
	data := filepath.Join(dir, "out.json")
	if err := os.WriteFile(data, []byte(stdout), 0o644); err != nil {
		t.Fatal(err)
	}
	script := "#!/bin/sh\n" +
		"echo '   Compiling serde v1.0.0' >&2\n" +
		"echo '    Checking demo v0.1.0 (/tmp/demo)' >&2\n" +
		"cat '" + data + "'\n" +
		"echo '    Finished dev [unoptimized] target(s)' >&2\n" +
		"exit " + string(rune('0'+code)) + "\n"
	bin := filepath.Join(dir, "cargo")
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return bin
}

func testManifest(t *testing.T) string {
	t.Helper()
	manifest := filepath.Join(t.TempDir(), ManifestName)
	writeFile(t, manifest, "[package]\nname = \"demo\"\n")
	return manifest
}

func TestRunDecodesStream(t *testing.T) {
	stream := fakeMessage + "\n" + `{"reason":"build-finished","success":true}` + "\n"
	sink := &recordSink{}
	r := &Runner{Binary: fakeCargo(t, stream, 0), Progress: sink}

	res, err := r.Run(context.Background(), &Command{Manifest: testManifest(t)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Tree.Len() != 1 || !res.Success || res.ExitCode != 0 {
		t.Fatalf("result = %+v", res)
	}
	if got := res.Tree.Messages[0].Spans[0].File; got != "src/lib.rs" {
		t.Fatalf("file = %q", got)
	}

	var packages []string
	for _, ev := range sink.events {
		if ev.Package != "" {
			packages = append(packages, string(ev.Stage)+":"+ev.Package)
		}
	}
	if strings.Join(packages, ",") != "compile:serde,check:demo" {
		t.Fatalf("progress = %v", packages)
	}
	last := sink.events[len(sink.events)-1]
	if last.Status != StatusDone || last.Messages != 1 {
		t.Fatalf("last event = %+v", last)
	}
}

func TestRunFailureWithoutMessages(t *testing.T) {
	r := &Runner{Binary: fakeCargo(t, "", 1)}
	_, err := r.Run(context.Background(), &Command{Manifest: testManifest(t)})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "Checking demo") {
		t.Fatalf("error must carry stderr: %v", err)
	}
}

func TestRunFailureWithMessages(t *testing.T) {
	r := &Runner{Binary: fakeCargo(t, fakeMessage+"\n", 1)}
	res, err := r.Run(context.Background(), &Command{Manifest: testManifest(t)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ExitCode != 1 || res.Tree.Len() != 1 {
		t.Fatalf("result = %+v", res)
	}
}

func TestRunLongStderrLineDoesNotBlock(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake cargo is a shell script")
	}
	dir := t.TempDir()
	data := filepath.Join(dir, "out.json")
	const messages = 4000
	stream := strings.Repeat(fakeMessage+"\n", messages) + `{"reason":"build-finished","success":true}` + "\n"
	if err := os.WriteFile(data, []byte(stream), 0o644); err != nil {
		t.Fatal(err)
	}
	script := "#!/bin/sh\n" +
		"head -c 200000 /dev/zero | tr '\\000' x >&2\n" +
		"echo >&2\n" +
		"cat '" + data + "'\n" +
		"echo '    Checking demo v0.1.0 (/tmp/demo)' >&2\n" +
		"exit 0\n"
	bin := filepath.Join(dir, "cargo")
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	type outcome struct {
		res *Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := (&Runner{Binary: bin}).Run(ctx, &Command{Manifest: testManifest(t)})
		done <- outcome{res, err}
	}()

	var got outcome
	select {
	case got = <-done:
	case <-time.After(20 * time.Second):
		t.Fatal("Run did not return")
	}
	if got.err != nil {
		t.Fatalf("Run: %v", got.err)
	}
	if got.res.Tree.Len() != messages || !got.res.Success {
		t.Fatalf("messages = %d, success = %v", got.res.Tree.Len(), got.res.Success)
	}
	if len(got.res.Stderr) != 2 {
		t.Fatalf("stderr tail = %d lines", len(got.res.Stderr))
	}
	if n := len(got.res.Stderr[0]); n != maxStderrLine {
		t.Fatalf("long line kept %d bytes, want %d", n, maxStderrLine)
	}
}

func TestReadLine(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  []string
	}{
		{"a\nbb\n", 10, []string{"a", "bb"}},
		{"tail", 10, []string{"tail"}},
		{"abcdef\ngh\n", 3, []string{"abc", "gh"}},
		{"\n\n", 4, []string{"", ""}},
	}
	for _, tt := range tests {
		br := bufio.NewReaderSize(strings.NewReader(tt.in), 16)
		var got []string
		for {
			line, err := readLine(br, tt.limit)
			if err != nil {
				break
			}
			got = append(got, line)
		}
		if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
			t.Fatalf("readLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseProgress(t *testing.T) {
	tests := []struct {
		line string
		ok   bool
		pkg  string
	}{
		{"   Compiling libc v0.2.150", true, "libc"},
		{"    Checking demo v0.1.0 (/tmp/demo)", true, "demo"},
		{"warning: unused import", false, ""},
		{"", false, ""},
	}
	for _, tt := range tests {
		ev, ok := parseProgress(tt.line)
		if ok != tt.ok || ev.Package != tt.pkg {
			t.Fatalf("parseProgress(%q) = %+v, %v", tt.line, ev, ok)
		}
	}
}
