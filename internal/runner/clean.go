package runner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// CleanPartials removes parked partial downloads and orphaned temp files
// under destRoot, returning how many were deleted. Final artifacts are
// never touched.
func CleanPartials(destRoot string) (int, error) {
	count := 0
	err := filepath.WalkDir(destRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.HasSuffix(name, ".partial") || strings.Contains(name, ".tmp-") {
			if os.Remove(path) == nil {
				count++
			}
		}
		return nil
	})
	if os.IsNotExist(err) {
		return count, nil
	}
	return count, err
}
