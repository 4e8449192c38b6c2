package diagfmt

import (
	"encoding/json"
	"io"

	"docgap/internal/classify"
	"docgap/internal/report"
)

// PieceJSON is one windowed source fragment.
type PieceJSON struct {
	Prefix    string `json:"prefix"`
	Highlight string `json:"highlight"`
	Suffix    string `json:"suffix"`
}

// EntryJSON представляет одну запись отчёта.
type EntryJSON struct {
	Row     uint32      `json:"row"`
	Col     uint32      `json:"col"`
	Message string      `json:"message"`
	Kind    string      `json:"kind,omitempty"` // item kind key, empty when unclassified
	Item    string      `json:"item,omitempty"` // classified tail of the message
	Source  []PieceJSON `json:"source,omitempty"`
}

// FileJSON groups the entries of one file.
type FileJSON struct {
	Path    string      `json:"path"`
	Entries []EntryJSON `json:"entries"`
}

// ReportOutput is the root of the JSON output.
type ReportOutput struct {
	Files []FileJSON `json:"files"`
	Count int        `json:"count"`
}

// BuildReportOutput формирует структуру JSON-вывода без сериализации.
func BuildReportOutput(idx *report.Index, opts JSONOpts) ReportOutput {
	out := ReportOutput{Files: make([]FileJSON, 0, idx.FileCount())}
	_ = idx.Each(func(g *report.FileGroup) error {
		if opts.Max > 0 && out.Count >= opts.Max {
			return nil
		}
		f := FileJSON{
			Path:    formatPath(g.Path, opts.PathMode, opts.Root),
			Entries: make([]EntryJSON, 0, len(g.Entries)),
		}
		for _, e := range g.Entries {
			if opts.Max > 0 && out.Count >= opts.Max {
				break
			}
			msg := e.Text
			if opts.Compact {
				msg = classify.Shorten(msg)
			}
			ej := EntryJSON{Row: e.Row, Col: e.Col, Message: msg}
			if c := classify.Classify(msg); c.Matched {
				ej.Kind = c.Kind.Key()
				ej.Item = c.Tail
			}
			if opts.IncludeHighlights && len(e.Pieces) > 0 {
				ej.Source = make([]PieceJSON, len(e.Pieces))
				for i, p := range e.Pieces {
					p = trimNewline(p)
					ej.Source[i] = PieceJSON{Prefix: p.Prefix, Highlight: p.Highlight, Suffix: p.Suffix}
				}
			}
			f.Entries = append(f.Entries, ej)
			out.Count++
		}
		out.Files = append(out.Files, f)
		return nil
	})
	return out
}

// JSON форматирует отчёт в JSON.
func JSON(w io.Writer, idx *report.Index, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildReportOutput(idx, opts))
}
