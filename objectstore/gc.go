package objectstore

import (
	"os"
	"path/filepath"
	"time"

	"github.com/karrick/godirwalk"
)

// GCTempFiles removes abandoned resumable-upload temp files under
// <storageRoot>/tmp older than maxAge, run once at startup (spec §5's
// temp-then-rename write pattern implies crashed uploads leave orphans
// behind). Walked with godirwalk rather than filepath.Walk since the tmp
// directory is flat and godirwalk avoids the extra per-entry os.Lstat
// filepath.Walk performs.
func (s *Store) GCTempFiles(maxAge time.Duration) (int, error) {
	tmpRoot := filepath.Join(s.storageRoot, "tmp")
	if _, err := os.Stat(tmpRoot); os.IsNotExist(err) {
		return 0, nil
	}
	cutoff := s.now().Add(-maxAge)
	removed := 0
	err := godirwalk.Walk(tmpRoot, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				return nil
			}
			info, err := os.Stat(path)
			if err != nil {
				return nil
			}
			if info.ModTime().Before(cutoff) {
				if err := os.Remove(path); err == nil {
					removed++
				}
			}
			return nil
		},
		ErrorCallback: func(string, error) godirwalk.ErrorAction {
			return godirwalk.SkipNode
		},
	})
	return removed, err
}
