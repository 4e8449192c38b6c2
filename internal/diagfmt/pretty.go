package diagfmt

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"docgap/internal/classify"
	"docgap/internal/itemkind"
	"docgap/internal/report"
	"docgap/internal/window"
)

// Pretty печатает отчёт, сгруппированный по файлам:
//
//	in src/lib.rs
//	  src/lib.rs:4:5   missing documentation for a struct field
//	    pub x: u8,
//
// Locations are padded so that the messages of all files line up.
func Pretty(w io.Writer, idx *report.Index, theme *Theme, opts PrettyOpts) error {
	if theme == nil {
		theme = NewTheme(w, nil, ColorOff)
	}
	bw := bufio.NewWriter(w)
	padding := padLocations(idx, opts)

	i := 0
	err := idx.Each(func(g *report.FileGroup) error {
		if i > 0 {
			bw.WriteString("\n")
		}
		i++
		file := formatPath(g.Path, opts.PathMode, opts.Root)
		fmt.Fprintf(bw, "in %s\n", paint(theme.FileHeader, file))

		for _, e := range g.Entries {
			msg := e.Text
			if opts.Compact {
				msg = classify.Shorten(msg)
			}
			row, col := fmt.Sprint(e.Row), fmt.Sprint(e.Col)
			location := paint(theme.FileName, file) + ":" + paint(theme.Location, row+":"+col)
			used := runewidth.StringWidth(file) + 2 + len(row) + len(col)
			sp := strings.Repeat(" ", max(padding-used, 0))

			fmt.Fprintf(bw, "  %s %s %s\n", location, sp, styleMessage(theme, msg))

			// the crate span covers the whole crate root
			if opts.ShowItem && !itemkind.HasSuffix(msg, itemkind.Crate) {
				for _, p := range e.Pieces {
					p = trimNewline(p)
					fmt.Fprintf(bw, "    %s%s%s\n",
						paint(theme.Code, p.Prefix),
						paint(theme.HighlightCode, p.Highlight),
						paint(theme.Code, p.Suffix))
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}

func styleMessage(theme *Theme, msg string) string {
	c := classify.Classify(msg)
	if c.Matched {
		if kind, ok := theme.Kind(c.Kind); ok {
			return paint(theme.Message, c.Head) + paint(kind, c.Tail)
		}
	}
	return paint(theme.Message, msg)
}

// padLocations returns the width of the widest "file:row:col" of the index.
func padLocations(idx *report.Index, opts PrettyOpts) int {
	widest := 1
	_ = idx.Each(func(g *report.FileGroup) error {
		digits := 1
		for _, e := range g.Entries {
			digits = max(digits, countDigits(e.Row)+countDigits(e.Col))
		}
		file := formatPath(g.Path, opts.PathMode, opts.Root)
		widest = max(widest, runewidth.StringWidth(file)+2+digits)
		return nil
	})
	return widest
}

func countDigits(n uint32) int {
	d := 1
	for n >= 10 {
		n /= 10
		d++
	}
	return d
}

// trimNewline drops the line terminator the lint tool keeps on the last
// piece of a fragment.
func trimNewline(p window.Piece) window.Piece {
	switch {
	case p.Suffix != "":
		p.Suffix = strings.TrimRight(p.Suffix, "\r\n")
	case p.Highlight != "":
		p.Highlight = strings.TrimRight(p.Highlight, "\r\n")
	default:
		p.Prefix = strings.TrimRight(p.Prefix, "\r\n")
	}
	return p
}
