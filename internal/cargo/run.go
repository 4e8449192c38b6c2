package cargo

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"docgap/internal/diag"
	"docgap/internal/trace"
)

// stderrTail is how many stderr lines are kept for error reports.
const stderrTail = 20

// maxStderrLine caps a kept stderr line; the rest of the line is dropped.
const maxStderrLine = 4096

// Runner executes clippy.
type Runner struct {
	// Binary is the cargo executable. Empty means $CARGO, then "cargo".
	Binary   string
	Progress ProgressSink
	Tracer   trace.Tracer
}

// Result is the outcome of one run.
type Result struct {
	Tree     *diag.Tree
	Success  bool // build-finished success flag, false when missing
	ExitCode int
	Stderr   []string // last lines of stderr
}

func (r *Runner) binary() string {
	if r.Binary != "" {
		return r.Binary
	}
	if env := os.Getenv("CARGO"); env != "" {
		return env
	}
	return "cargo"
}

// Run spawns clippy for cmd and decodes its output. A non-zero exit without
// any decoded message is an error carrying the tail of stderr.
func (r *Runner) Run(ctx context.Context, cmd *Command) (*Result, error) {
	args, err := cmd.Args()
	if err != nil {
		return nil, err
	}
	tracer := r.Tracer
	var span *trace.Span
	if tracer != nil {
		span = trace.Begin(tracer, trace.ScopePhase, "cargo")
	} else {
		tracer = trace.FromContext(ctx)
		ctx, span = trace.StartSpan(ctx, trace.ScopePhase, "cargo")
	}
	started := time.Now()

	proc := exec.CommandContext(ctx, r.binary(), args...)
	proc.Dir = filepath.Dir(cmd.Manifest)
	stdout, err := proc.StdoutPipe()
	if err != nil {
		span.End("failed")
		return nil, fmt.Errorf("failed to open stdout: %w", err)
	}
	stderr, err := proc.StderrPipe()
	if err != nil {
		span.End("failed")
		return nil, fmt.Errorf("failed to open stderr: %w", err)
	}
	if err := proc.Start(); err != nil {
		span.End("failed")
		return nil, fmt.Errorf("failed to start %s: %w", r.binary(), err)
	}
	trace.Point(tracer, trace.ScopePhase, "spawn", strings.Join(proc.Args, " "), nil)

	res, readErr := r.read(ctx, stdout, stderr)
	waitErr := proc.Wait()

	if readErr != nil {
		emit(r.Progress, Event{Stage: StageDecode, Status: StatusError, Err: readErr, Elapsed: time.Since(started)})
		span.End("failed")
		return nil, readErr
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			span.End("failed")
			return nil, fmt.Errorf("%s clippy: %w", r.binary(), waitErr)
		}
		res.ExitCode = exitErr.ExitCode()
		if res.Tree.Len() == 0 {
			emit(r.Progress, Event{Status: StatusError, Err: waitErr, Elapsed: time.Since(started)})
			span.End("failed")
			return nil, fmt.Errorf("%s clippy exited with status %d:\n%s",
				r.binary(), res.ExitCode, strings.Join(res.Stderr, "\n"))
		}
	}

	emit(r.Progress, Event{Status: StatusDone, Messages: res.Tree.Len(), Elapsed: time.Since(started)})
	span.Set("messages", strconv.Itoa(res.Tree.Len())).
		Set("exit", strconv.Itoa(res.ExitCode)).
		End("")
	return res, nil
}

// read drains stdout and stderr concurrently.
func (r *Runner) read(ctx context.Context, stdout, stderr io.Reader) (*Result, error) {
	res := &Result{Tree: &diag.Tree{}}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dec := diag.NewDecoder(stdout)
		for {
			rec, err := dec.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				// keep the pipe drained so the child can exit
				_, _ = io.Copy(io.Discard, stdout) //nolint:errcheck
				return err
			}
			switch {
			case rec.Message != nil:
				mu.Lock()
				res.Tree.Append(*rec.Message)
				n := res.Tree.Len()
				mu.Unlock()
				emit(r.Progress, Event{Stage: StageDecode, Status: StatusWorking, Messages: n})
			case rec.Reason == diag.ReasonBuildFinished && rec.Success != nil:
				mu.Lock()
				res.Success = *rec.Success
				mu.Unlock()
			}
			if gctx.Err() != nil {
				_, _ = io.Copy(io.Discard, stdout) //nolint:errcheck
				return gctx.Err()
			}
		}
	})
	g.Go(func() error {
		br := bufio.NewReader(stderr)
		var tail []string
		var readErr error
		for {
			line, err := readLine(br, maxStderrLine)
			if err != nil {
				if !errors.Is(err, io.EOF) {
					readErr = err
				}
				break
			}
			tail = append(tail, line)
			if len(tail) > stderrTail {
				tail = tail[1:]
			}
			if ev, ok := parseProgress(line); ok {
				emit(r.Progress, ev)
			}
		}
		_, _ = io.Copy(io.Discard, stderr) //nolint:errcheck
		mu.Lock()
		res.Stderr = tail
		mu.Unlock()
		return readErr
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to read clippy output: %w", err)
	}
	return res, nil
}

// readLine returns the next line without its terminator. Bytes past limit
// are consumed and dropped. A final line without a newline is returned
// before io.EOF.
func readLine(br *bufio.Reader, limit int) (string, error) {
	var buf []byte
	read := false
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			if read && errors.Is(err, io.EOF) {
				return string(buf), nil
			}
			return "", err
		}
		read = true
		if room := limit - len(buf); room > 0 {
			buf = append(buf, chunk[:min(room, len(chunk))]...)
		}
		if !isPrefix {
			return string(buf), nil
		}
	}
}

// parseProgress recognises cargo status lines such as
// "   Compiling serde v1.0.0" and "    Checking demo v0.1.0 (/tmp/demo)".
func parseProgress(line string) (Event, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Event{}, false
	}
	switch fields[0] {
	case "Compiling":
		return Event{Package: fields[1], Stage: StageCompile, Status: StatusWorking}, true
	case "Checking":
		return Event{Package: fields[1], Stage: StageCheck, Status: StatusWorking}, true
	case "Finished":
		return Event{Stage: StageCheck, Status: StatusDone}, true
	}
	return Event{}, false
}
