package diag

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"fortio.org/safecast"
)

// maxLineSize bounds one JSON record; rendered diagnostics of macro-heavy
// crates can be large.
const maxLineSize = 64 << 20

// Reason values of cargo JSON records.
const (
	ReasonCompilerMessage  = "compiler-message"
	ReasonCompilerArtifact = "compiler-artifact"
	ReasonBuildScript      = "build-script-executed"
	ReasonBuildFinished    = "build-finished"
)

// Record is one decoded cargo JSON line.
type Record struct {
	Reason    string
	PackageID string
	Target    string   // target name, when present
	Message   *Message // set for compiler-message
	Success   *bool    // set for build-finished
}

type cargoRecord struct {
	Reason    string        `json:"reason"`
	PackageID string        `json:"package_id"`
	Target    *cargoTarget  `json:"target"`
	Message   *rustcMessage `json:"message"`
	Success   *bool         `json:"success"`
}

type cargoTarget struct {
	Name string   `json:"name"`
	Kind []string `json:"kind"`
}

type rustcMessage struct {
	Message  string         `json:"message"`
	Code     *rustcCode     `json:"code"`
	Level    string         `json:"level"`
	Spans    []rustcSpan    `json:"spans"`
	Children []rustcMessage `json:"children"`
	Rendered *string        `json:"rendered"`
}

type rustcCode struct {
	Code        string  `json:"code"`
	Explanation *string `json:"explanation"`
}

type rustcSpan struct {
	FileName    string      `json:"file_name"`
	ByteStart   int         `json:"byte_start"`
	ByteEnd     int         `json:"byte_end"`
	LineStart   int         `json:"line_start"`
	LineEnd     int         `json:"line_end"`
	ColumnStart int         `json:"column_start"`
	ColumnEnd   int         `json:"column_end"`
	IsPrimary   bool        `json:"is_primary"`
	Text        []rustcText `json:"text"`
	Label       *string     `json:"label"`
}

type rustcText struct {
	Text           string `json:"text"`
	HighlightStart int    `json:"highlight_start"`
	HighlightEnd   int    `json:"highlight_end"`
}

// Decoder reads cargo JSON records line by line.
type Decoder struct {
	sc   *bufio.Scanner
	line int
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Decoder{sc: sc}
}

// Line returns the number of lines consumed so far.
func (d *Decoder) Line() int {
	return d.line
}

// Next returns the next record, or io.EOF when the stream is exhausted.
func (d *Decoder) Next() (Record, error) {
	for d.sc.Scan() {
		d.line++
		raw := bytes.TrimSpace(d.sc.Bytes())
		if len(raw) == 0 || raw[0] != '{' {
			continue
		}
		var rec cargoRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return Record{}, fmt.Errorf("line %d: invalid JSON record: %w", d.line, err)
		}
		out := Record{
			Reason:    rec.Reason,
			PackageID: rec.PackageID,
			Success:   rec.Success,
		}
		if rec.Target != nil {
			out.Target = rec.Target.Name
		}
		if rec.Reason == ReasonCompilerMessage && rec.Message != nil {
			msg, err := convertMessage(rec.Message)
			if err != nil {
				return Record{}, fmt.Errorf("line %d: %w", d.line, err)
			}
			out.Message = &msg
		}
		return out, nil
	}
	if err := d.sc.Err(); err != nil {
		return Record{}, fmt.Errorf("read diagnostics: %w", err)
	}
	return Record{}, io.EOF
}

// ReadTree decodes a whole stream and keeps the compiler messages in order.
func ReadTree(r io.Reader) (*Tree, error) {
	dec := NewDecoder(r)
	tree := &Tree{}
	for {
		rec, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return tree, nil
		}
		if err != nil {
			return nil, err
		}
		if rec.Message != nil {
			tree.Append(*rec.Message)
		}
	}
}

func convertMessage(rm *rustcMessage) (Message, error) {
	m := Message{
		Level: ParseLevel(rm.Level),
		Text:  rm.Message,
	}
	if rm.Code != nil && rm.Code.Code != "" {
		m.Code = &Code{Code: rm.Code.Code}
		if rm.Code.Explanation != nil {
			m.Code.Explanation = *rm.Code.Explanation
		}
	}
	if len(rm.Spans) > 0 {
		m.Spans = make([]Span, 0, len(rm.Spans))
		for i := range rm.Spans {
			sp, err := convertSpan(&rm.Spans[i])
			if err != nil {
				return Message{}, err
			}
			m.Spans = append(m.Spans, sp)
		}
	}
	if len(rm.Children) > 0 {
		m.Children = make([]Message, 0, len(rm.Children))
		for i := range rm.Children {
			child, err := convertMessage(&rm.Children[i])
			if err != nil {
				return Message{}, err
			}
			m.Children = append(m.Children, child)
		}
	}
	return m, nil
}

func convertSpan(rs *rustcSpan) (Span, error) {
	row, err := safecast.Conv[uint32](rs.LineStart)
	if err != nil {
		return Span{}, fmt.Errorf("span %s: line %d out of range: %w", rs.FileName, rs.LineStart, err)
	}
	col, err := safecast.Conv[uint32](rs.ColumnStart)
	if err != nil {
		return Span{}, fmt.Errorf("span %s: column %d out of range: %w", rs.FileName, rs.ColumnStart, err)
	}
	sp := Span{
		File:    normalizeFileName(rs.FileName),
		Row:     row,
		Col:     col,
		Primary: rs.IsPrimary,
	}
	if rs.Label != nil {
		sp.Label = *rs.Label
	}
	if len(rs.Text) > 0 {
		sp.Text = make([]Text, 0, len(rs.Text))
		for _, t := range rs.Text {
			sp.Text = append(sp.Text, Text{
				Data:  t.Text,
				Start: t.HighlightStart,
				End:   t.HighlightEnd,
			})
		}
	}
	return sp, nil
}

// normalizeFileName converts Windows separators reported by rustc.
func normalizeFileName(name string) string {
	return strings.ReplaceAll(name, "\\", "/")
}
