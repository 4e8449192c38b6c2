package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // driver events only, enough to see a failing run
	LevelPhase
	LevelDetail // per-file events
	LevelDebug  // every diagnostic node
)

// levels maps each level to its name and the finest scope it lets through.
var levels = [...]struct {
	name     string
	maxScope Scope
}{
	LevelOff:    {"off", 0},
	LevelError:  {"error", ScopeDriver},
	LevelPhase:  {"phase", ScopePhase},
	LevelDetail: {"detail", ScopeFile},
	LevelDebug:  {"debug", ScopeNode},
}

func (l Level) String() string {
	if int(l) >= len(levels) {
		return "unknown"
	}
	return levels[l].name
}

// ParseLevel converts a flag value to a Level, ignoring case.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for l, entry := range levels {
		if entry.name == s {
			return Level(l), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|phase|detail|debug)", s)
}

// ShouldEmit reports whether events of scope are written at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	if int(l) >= len(levels) || scope == 0 {
		return false
	}
	return scope <= levels[l].maxScope
}
