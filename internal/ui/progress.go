package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"docgap/internal/cargo"
)

// maxVisible bounds the package list; older packages scroll away.
const maxVisible = 8

type progressModel struct {
	title      string
	events     <-chan cargo.Event
	spinner    spinner.Model
	items      []pkgItem
	index      map[string]int
	stageLabel string
	messages   int
	width      int
	done       bool
	failed     bool
	canceled   bool
}

type pkgItem struct {
	name   string
	status string
}

type eventMsg cargo.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders lint progress.
// The model quits when events is closed.
func NewProgressModel(title string, events <-chan cargo.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		index:   make(map[string]int),
		width:   80,
	}
}

// Canceled reports whether the user quit the progress model before the run
// finished.
func Canceled(model tea.Model) bool {
	m, ok := model.(*progressModel)
	return ok && m.canceled
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		m.applyEvent(cargo.Event(msg))
		return m, m.listenForEvent()
	case doneMsg:
		m.done = true
		for i := range m.items {
			if m.items[i].status != "error" {
				m.items[i].status = "done"
			}
		}
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.canceled = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *progressModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.header()))
	b.WriteString("\n\n")

	const statusWidth = 10
	nameWidth := max(m.width-statusWidth-4, 20)

	visible := m.items
	if len(visible) > maxVisible {
		visible = visible[len(visible)-maxVisible:]
	}
	for _, item := range visible {
		status := styleStatus(item.status).Render(fmt.Sprintf("%*s", statusWidth, item.status))
		fmt.Fprintf(&b, "  %s %s\n", status, truncate(item.name, nameWidth))
	}
	if hidden := len(m.items) - len(visible); hidden > 0 {
		fmt.Fprintf(&b, "  %*s and %d more\n", statusWidth, "", hidden)
	}

	fmt.Fprintf(&b, "\n  %d packages, %d diagnostics\n", len(m.items), m.messages)
	return b.String()
}

func (m *progressModel) header() string {
	h := m.title
	if m.stageLabel != "" {
		h += " (" + m.stageLabel + ")"
	}
	switch {
	case m.failed:
		return "failed: " + h
	case m.done:
		return "done: " + h
	}
	return m.spinner.View() + " " + h
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev cargo.Event) {
	if ev.Messages > m.messages {
		m.messages = ev.Messages
	}
	label := statusLabel(ev.Stage, ev.Status)
	if ev.Package == "" {
		if ev.Status == cargo.StatusError {
			m.failed = true
		}
		if label != "" {
			m.stageLabel = label
		}
		return
	}
	idx, ok := m.index[ev.Package]
	if !ok {
		idx = len(m.items)
		m.index[ev.Package] = idx
		m.items = append(m.items, pkgItem{name: ev.Package})
	}
	if label != "" {
		m.items[idx].status = label
	}
}

func statusLabel(stage cargo.Stage, status cargo.Status) string {
	switch status {
	case cargo.StatusDone:
		return "done"
	case cargo.StatusError:
		return "error"
	case cargo.StatusWorking:
		return stageLabel(stage)
	default:
		return ""
	}
}

func stageLabel(stage cargo.Stage) string {
	switch stage {
	case cargo.StageCompile:
		return "compiling"
	case cargo.StageCheck:
		return "checking"
	case cargo.StageDecode:
		return "decoding"
	default:
		return ""
	}
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	statusStyles = map[string]lipgloss.Style{
		"done":      lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"error":     lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		"compiling": lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		"checking":  lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		"decoding":  lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	}
)

func styleStatus(status string) lipgloss.Style {
	if st, ok := statusStyles[status]; ok {
		return st
	}
	return titleStyle.UnsetBold()
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
