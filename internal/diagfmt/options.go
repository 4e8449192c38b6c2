package diagfmt

import "path/filepath"

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeRelative prints paths as the lint tool reported them.
	PathModeRelative PathMode = iota
	// PathModeAbsolute joins paths with the package root.
	PathModeAbsolute
	PathModeBasename
)

// ParsePathMode converts a flag value to a PathMode.
func ParsePathMode(s string) (PathMode, bool) {
	switch s {
	case "", "relative":
		return PathModeRelative, true
	case "absolute":
		return PathModeAbsolute, true
	case "basename":
		return PathModeBasename, true
	}
	return PathModeRelative, false
}

func formatPath(path string, mode PathMode, root string) string {
	switch mode {
	case PathModeAbsolute:
		if root != "" && !filepath.IsAbs(path) {
			return filepath.ToSlash(filepath.Join(root, filepath.FromSlash(path)))
		}
	case PathModeBasename:
		return filepath.Base(filepath.FromSlash(path))
	}
	return path
}

// PrettyOpts configures the themed report.
type PrettyOpts struct {
	Compact  bool // strip the "missing documentation for a" prefixes
	ShowItem bool // print the highlighted source lines
	PathMode PathMode
	Root     string // package root, for PathModeAbsolute
}

// ShortOpts configures the one-line-per-entry report.
type ShortOpts struct {
	Compact  bool
	PathMode PathMode
	Root     string
}

// JSONOpts configures JSON output of a report.
type JSONOpts struct {
	Compact           bool
	IncludeHighlights bool // добавить фрагменты исходника
	PathMode          PathMode
	Root              string
	Max               int // обрезка вывода по числу записей, 0 - без ограничений
}
