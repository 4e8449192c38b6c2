// Package filter decides which lint messages and which source spans take part
// in a report.
//
// Three gates are applied:
//
//   - code gate: the message's lint code must be one of the documentation lints;
//   - kind gate: optional include / exclude sets of item kinds, matched against
//     the suffix of the message text;
//   - path gate: optional allow-set of file paths, checked per span.
//
// Empty include, exclude and path sets impose no filtering.
package filter

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"docgap/internal/itemkind"
)

// Codes lists the lint codes accepted by the code gate.
var Codes = [...]string{
	"missing_docs",
	"clippy::empty_docs",
	"clippy::suspicious_doc_comments",
	"clippy::missing-errors-doc",
	"clippy::missing-panics-doc",
	"clippy::missing-safety-doc",
	"clippy::unnecessary_safety_doc",
	"clippy::undocumented_unsafe_blocks",
}

// AllowedCode reports whether code is exactly one of Codes.
func AllowedCode(code string) bool {
	for _, c := range Codes {
		if c == code {
			return true
		}
	}
	return false
}

// Filter holds the configured gates. The zero value accepts every message with
// an allowed code and every path.
type Filter struct {
	// Include and Exclude are meant to be mutually exclusive; when both are
	// set, Include wins and Exclude is ignored.
	Include []itemkind.Kind
	Exclude []itemkind.Kind

	paths map[string]struct{}
}

// New builds a Filter. paths is the allow-set for the path gate.
func New(include, exclude []itemkind.Kind, paths []string) *Filter {
	f := &Filter{Include: include, Exclude: exclude}
	f.SetPaths(paths)
	return f
}

// SetPaths replaces the path allow-set.
func (f *Filter) SetPaths(paths []string) {
	if len(paths) == 0 {
		f.paths = nil
		return
	}
	f.paths = make(map[string]struct{}, len(paths))
	for _, p := range paths {
		f.paths[NormalizePath(p)] = struct{}{}
	}
}

// AcceptMessage applies the code gate and the kind gate. An empty code means
// the message had none.
func (f *Filter) AcceptMessage(code, text string) bool {
	if code == "" || !AllowedCode(code) {
		return false
	}
	return f.AcceptKind(text)
}

// AcceptKind applies the kind gate alone.
func (f *Filter) AcceptKind(text string) bool {
	if f == nil {
		return true
	}
	if len(f.Include) > 0 {
		return endsWithAny(text, f.Include)
	}
	if len(f.Exclude) > 0 {
		return !endsWithAny(text, f.Exclude)
	}
	return true
}

// AcceptPath applies the path gate.
func (f *Filter) AcceptPath(path string) bool {
	if f == nil || len(f.paths) == 0 {
		return true
	}
	_, ok := f.paths[NormalizePath(path)]
	return ok
}

// PathCount returns the size of the path allow-set.
func (f *Filter) PathCount() int {
	if f == nil {
		return 0
	}
	return len(f.paths)
}

func endsWithAny(text string, kinds []itemkind.Kind) bool {
	for _, k := range kinds {
		if itemkind.HasSuffix(text, k) {
			return true
		}
	}
	return false
}

// NormalizePath turns path into the form the lint tool reports: forward
// slashes, no leading "./", NFC-composed.
func NormalizePath(path string) string {
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return norm.NFC.String(p)
}
