package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cleanup removes journal files whose last write is older than
// retentionDays. The currently open journal file is never that old, so a
// running process can prune its own directory safely.
func Cleanup(dir string, retentionDays int) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	files, err := filepath.Glob(filepath.Join(dir, "guardian-*.journal"))
	if err != nil {
		return 0, fmt.Errorf("failed to list journal files: %w", err)
	}

	removed := 0
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(file); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", file, err)
		}
		removed++
	}
	return removed, nil
}
