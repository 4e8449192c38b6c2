package diag

import "strings"

// Level is the severity rustc attached to a message.
type Level uint8

const (
	LevelUnknown Level = iota
	LevelHelp
	LevelNote
	LevelWarning
	LevelError
	// LevelICE is an internal compiler error.
	LevelICE
	LevelFailureNote
)

func (l Level) String() string {
	switch l {
	case LevelHelp:
		return "help"
	case LevelNote:
		return "note"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelICE:
		return "error: internal compiler error"
	case LevelFailureNote:
		return "failure-note"
	}
	return "unknown"
}

// ParseLevel maps the rustc level string; unrecognised values give LevelUnknown.
func ParseLevel(s string) Level {
	switch strings.TrimSpace(s) {
	case "help":
		return LevelHelp
	case "note":
		return LevelNote
	case "warning":
		return LevelWarning
	case "error":
		return LevelError
	case "error: internal compiler error":
		return LevelICE
	case "failure-note":
		return LevelFailureNote
	}
	return LevelUnknown
}
