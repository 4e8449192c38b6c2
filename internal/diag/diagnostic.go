package diag

// Code identifies the lint that produced a message, e.g. "missing_docs" or
// "clippy::missing-errors-doc".
type Code struct {
	Code        string
	Explanation string
}

// Node is one of *Message, *Span or *Text.
type Node interface {
	isNode()
}

type Message struct {
	Code     *Code
	Level    Level
	Text     string
	Spans    []Span
	Children []Message
}

type Span struct {
	File    string // slash-separated, relative to the workspace root
	Row     uint32 // 1-based
	Col     uint32 // 1-based
	Primary bool
	Label   string
	Text    []Text
}

// Text is one source line of a span. Start and End delimit the highlighted
// range inside Data as reported by the tool.
type Text struct {
	Data  string
	Start int
	End   int
}

func (*Message) isNode() {}
func (*Span) isNode()    {}
func (*Text) isNode()    {}

// CodeString returns the lint code, or "" when the message has none.
func (m *Message) CodeString() string {
	if m == nil || m.Code == nil {
		return ""
	}
	return m.Code.Code
}

// Tree is the ordered forest of top-level messages of one run.
type Tree struct {
	Messages []Message
}

// Len returns the number of top-level messages.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Messages)
}

// Append adds a top-level message.
func (t *Tree) Append(m Message) {
	t.Messages = append(t.Messages, m)
}

// Walk calls fn for every node in pre-order and stops at the first error.
func (t *Tree) Walk(fn func(Node) error) error {
	if t == nil {
		return nil
	}
	for i := range t.Messages {
		if err := walkMessage(&t.Messages[i], fn); err != nil {
			return err
		}
	}
	return nil
}

func walkMessage(m *Message, fn func(Node) error) error {
	if err := fn(m); err != nil {
		return err
	}
	for i := range m.Spans {
		sp := &m.Spans[i]
		if err := fn(sp); err != nil {
			return err
		}
		for j := range sp.Text {
			if err := fn(&sp.Text[j]); err != nil {
				return err
			}
		}
	}
	for i := range m.Children {
		if err := walkMessage(&m.Children[i], fn); err != nil {
			return err
		}
	}
	return nil
}

// NewMessage builds a message with a lint code; an empty code leaves Code nil.
func NewMessage(level Level, code, text string) Message {
	m := Message{Level: level, Text: text}
	if code != "" {
		m.Code = &Code{Code: code}
	}
	return m
}

// WithSpan appends a span and returns the message.
func (m Message) WithSpan(file string, row, col uint32, text ...Text) Message {
	m.Spans = append(m.Spans, Span{File: file, Row: row, Col: col, Primary: true, Text: text})
	return m
}

// WithChild appends a child message and returns the message.
func (m Message) WithChild(child Message) Message {
	m.Children = append(m.Children, child)
	return m
}
