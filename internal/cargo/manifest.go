package cargo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestName is the file name of a package manifest.
const ManifestName = "Cargo.toml"

// ErrManifestNotFound is returned when no manifest exists in the directory or
// any of its parents.
var ErrManifestNotFound = errors.New("could not find " + ManifestName)

// LocateManifest resolves path to an absolute manifest path. path may name a
// manifest file or a directory; directories are searched upward.
func LocateManifest(path string) (string, error) {
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", abs, err)
	}
	if !info.IsDir() {
		if filepath.Base(abs) != ManifestName {
			return "", fmt.Errorf("%s is not a %s", abs, ManifestName)
		}
		return abs, nil
	}

	dir := abs
	for {
		candidate := filepath.Join(dir, ManifestName)
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w in %s or any parent directory", ErrManifestNotFound, abs)
		}
		dir = parent
	}
}
