// Package window cuts the highlighted part out of the source lines attached to
// a lint span.
//
// A span carries one or more source fragments, each with a raw interval
// [Start, End) as reported by the lint tool (1-based columns). Partition
// strips the common indentation, converts the interval into offsets inside
// the de-indented line and snaps them outward to character boundaries, so the
// three returned pieces never split a multi-byte character.
package window

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Fragment is an owned copy of one source fragment and its raw interval.
type Fragment struct {
	Data  string
	Start int
	End   int
}

// Piece is a de-indented fragment split around its highlighted range.
// Prefix+Highlight+Suffix is the fragment text after the shared left pad.
type Piece struct {
	Prefix    string
	Highlight string
	Suffix    string
}

// Text returns the de-indented fragment text.
func (p Piece) Text() string {
	return p.Prefix + p.Highlight + p.Suffix
}

// Windower carries the left pad shared by all fragments of one span.
type Windower struct {
	leftPad int
	padSet  bool
}

// LeftPad returns the shared pad and whether it has been fixed yet.
func (w *Windower) LeftPad() (int, bool) {
	return w.leftPad, w.padSet
}

// Window splits one fragment. first marks the first fragment of the span: the
// shared left pad is taken from it, even when that fragment turns out blank.
// Blank fragments yield ok == false.
func (w *Windower) Window(f Fragment, first bool) (Piece, bool) {
	trimmed := strings.TrimLeftFunc(f.Data, unicode.IsSpace)
	if first && !w.padSet {
		w.leftPad = len(f.Data) - len(trimmed)
		w.padSet = true
	}
	if trimmed == "" {
		return Piece{}, false
	}

	pad := w.leftPad
	start := saturatingSub(f.Start, pad+1)
	end := saturatingSub(f.End, pad+1)

	// Byte offsets into the untrimmed line become character counts, which are
	// then used as byte offsets into the trimmed line. Only exact for ASCII
	// before the offset; kept for compatibility with existing reports.
	start = charsBefore(f.Data, start)
	end = charsBefore(f.Data, end)

	text := f.Data[alignPad(f.Data, pad):]
	start = FloorBoundary(text, start)
	end = CeilBoundary(text, end)
	if end < start {
		end = start
	}

	return Piece{
		Prefix:    text[:start],
		Highlight: text[start:end],
		Suffix:    text[end:],
	}, true
}

// Partition windows every fragment of one span in order, skipping blank ones.
func Partition(fragments []Fragment) []Piece {
	var w Windower
	out := make([]Piece, 0, len(fragments))
	for i, f := range fragments {
		if p, ok := w.Window(f, i == 0); ok {
			out = append(out, p)
		}
	}
	return out
}

// FloorBoundary returns the largest character boundary <= index, looking at
// most 3 bytes back. Indexes past the end clamp to len(s).
func FloorBoundary(s string, index int) int {
	if index >= len(s) {
		return len(s)
	}
	if index < 0 {
		return 0
	}
	lo := max(index-3, 0)
	for i := index; i >= lo; i-- {
		if utf8.RuneStart(s[i]) {
			return i
		}
	}
	return lo
}

// CeilBoundary returns the smallest character boundary >= index, looking at
// most 4 bytes forward and falling back to the end of that window.
func CeilBoundary(s string, index int) int {
	if index > len(s) {
		return len(s)
	}
	if index < 0 {
		return 0
	}
	hi := min(index+4, len(s))
	for i := index; i < hi; i++ {
		if utf8.RuneStart(s[i]) {
			return i
		}
	}
	return hi
}

// charsBefore counts the characters that end at or before byte offset idx.
// An offset in the middle of a character does not count that character.
func charsBefore(s string, idx int) int {
	n := 0
	for i := 0; i < len(s); {
		_, size := utf8.DecodeRuneInString(s[i:])
		if i+size > idx {
			break
		}
		i += size
		n++
	}
	return n
}

// alignPad clamps pad to s and moves it forward onto a character boundary.
func alignPad(s string, pad int) int {
	if pad >= len(s) {
		return len(s)
	}
	for pad < len(s) && !utf8.RuneStart(s[pad]) {
		pad++
	}
	return pad
}

func saturatingSub(a, b int) int {
	if a <= b {
		return 0
	}
	return a - b
}
