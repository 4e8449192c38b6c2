package cargo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// GlobFilters expands patterns relative to root and returns the matches as
// slash-separated paths relative to root. Matches under target/ are skipped.
// A "**" segment matches any number of directories.
func GlobFilters(root string, patterns []string) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	fsys := os.DirFS(root)

	for _, pattern := range patterns {
		pattern = strings.TrimPrefix(filepath.ToSlash(strings.TrimSpace(pattern)), "./")
		if pattern == "" {
			continue
		}
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid glob %q: %w", pattern, doublestar.ErrBadPattern)
		}
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to expand %q: %w", pattern, err)
		}
		for _, rel := range matches {
			if rel == "target" || strings.HasPrefix(rel, "target/") {
				continue
			}
			if _, dup := seen[rel]; dup {
				continue
			}
			seen[rel] = struct{}{}
			out = append(out, rel)
		}
	}
	return out, nil
}
