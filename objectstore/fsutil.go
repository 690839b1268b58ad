package objectstore

import (
	"os"
	"path/filepath"
)

// resolveSymlinks requires path to exist.
func resolveSymlinks(path string) (string, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(path)
}

// resolveSymlinksBestEffort resolves as much of path's ancestry as exists,
// then joins the remaining (not-yet-created) components literally. This
// lets the containment check in resolvePath run before the destination
// file itself is created.
func resolveSymlinksBestEffort(path string) (string, error) {
	dir, base := filepath.Split(path)
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	resolvedDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedDir, base), nil
}
