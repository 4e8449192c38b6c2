package diagfmt

import (
	"bufio"
	"fmt"
	"io"

	"docgap/internal/classify"
	"docgap/internal/report"
)

// Short печатает одну строку на запись: <path>:<row>:<col>: <message>.
// Output is never colored, so it is stable for grep and editors.
func Short(w io.Writer, idx *report.Index, opts ShortOpts) error {
	bw := bufio.NewWriter(w)
	err := idx.Each(func(g *report.FileGroup) error {
		file := formatPath(g.Path, opts.PathMode, opts.Root)
		for _, e := range g.Entries {
			msg := e.Text
			if opts.Compact {
				msg = classify.Shorten(msg)
			}
			if _, err := fmt.Fprintf(bw, "%s:%d:%d: %s\n", file, e.Row, e.Col, msg); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}
