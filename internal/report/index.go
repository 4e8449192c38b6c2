package report

import (
	"slices"

	"docgap/internal/window"
)

// Entry is one reported location.
type Entry struct {
	Text       string // message text of the lint
	Row        uint32
	Col        uint32
	Highlights []window.Fragment // copies of the span's source fragments
	Pieces     []window.Piece    // Highlights after windowing, blank ones dropped
}

// FileGroup holds the entries of one file in visitation order.
type FileGroup struct {
	Path    string
	Entries []Entry
}

// Index maps file paths to their entries.
type Index struct {
	groups map[string]*FileGroup
	total  int
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	return &Index{groups: make(map[string]*FileGroup)}
}

// Add appends e to the group of path.
func (x *Index) Add(path string, e Entry) {
	g, ok := x.groups[path]
	if !ok {
		g = &FileGroup{Path: path}
		x.groups[path] = g
	}
	g.Entries = append(g.Entries, e)
	x.total++
}

// Files returns the paths in lexicographic order.
func (x *Index) Files() []string {
	if x == nil {
		return nil
	}
	files := make([]string, 0, len(x.groups))
	for p := range x.groups {
		files = append(files, p)
	}
	slices.Sort(files)
	return files
}

// Group returns the entries of path, or nil.
func (x *Index) Group(path string) *FileGroup {
	if x == nil {
		return nil
	}
	return x.groups[path]
}

// Each calls fn for every group in path order and stops at the first error.
func (x *Index) Each(fn func(*FileGroup) error) error {
	for _, p := range x.Files() {
		if err := fn(x.groups[p]); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of entries over all files.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return x.total
}

// FileCount returns the number of files with at least one entry.
func (x *Index) FileCount() int {
	if x == nil {
		return 0
	}
	return len(x.groups)
}
