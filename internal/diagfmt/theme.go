package diagfmt

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"docgap/internal/config"
	"docgap/internal/itemkind"
)

// ColorMode selects when escape sequences are written.
type ColorMode uint8

const (
	ColorAuto ColorMode = iota
	ColorOn
	ColorOff
)

// ParseColorMode converts a flag value to a ColorMode.
func ParseColorMode(s string) (ColorMode, bool) {
	switch s {
	case "", "auto":
		return ColorAuto, true
	case "on", "always":
		return ColorOn, true
	case "off", "never":
		return ColorOff, true
	}
	return ColorAuto, false
}

// Theme holds the resolved lipgloss styles of the pretty report.
type Theme struct {
	FileHeader    lipgloss.Style
	FileName      lipgloss.Style
	Location      lipgloss.Style
	Message       lipgloss.Style
	HighlightCode lipgloss.Style
	Code          lipgloss.Style

	kinds map[itemkind.Kind]lipgloss.Style
}

// NewTheme resolves cfg against a renderer writing to w. A nil cfg gives an
// unstyled theme.
func NewTheme(w io.Writer, cfg *config.Theme, mode ColorMode) *Theme {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case ColorOn:
		r.SetColorProfile(termenv.TrueColor)
	case ColorOff:
		r.SetColorProfile(termenv.Ascii)
	}

	th := &Theme{kinds: make(map[itemkind.Kind]lipgloss.Style)}
	var src config.Theme
	if cfg != nil {
		src = *cfg
	}
	th.FileHeader = style(r, src.FileHeader)
	th.FileName = style(r, src.FileName)
	th.Location = style(r, src.Location)
	th.Message = style(r, src.Message)
	th.HighlightCode = style(r, src.HighlightCode)
	th.Code = style(r, src.Code)
	if cfg != nil {
		for _, k := range itemkind.All() {
			if s, ok := cfg.Kind(k); ok {
				th.kinds[k] = style(r, &s)
			}
		}
	}
	return th
}

// Kind returns the style of k; ok is false when the theme has none.
func (t *Theme) Kind(k itemkind.Kind) (lipgloss.Style, bool) {
	s, ok := t.kinds[k]
	return s, ok
}

func style(r *lipgloss.Renderer, s *config.Style) lipgloss.Style {
	st := r.NewStyle().TabWidth(lipgloss.NoTabConversion)
	if s == nil {
		return st
	}
	if s.Color != nil {
		st = st.Foreground(lipgloss.Color(s.Color.String()))
	}
	return st.
		Bold(s.Bold).
		Italic(s.Italic).
		Underline(s.Underline).
		Faint(s.Dimmed)
}

// paint renders text, leaving empty strings untouched.
func paint(s lipgloss.Style, text string) string {
	if text == "" {
		return ""
	}
	return s.Render(text)
}
