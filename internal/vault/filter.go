package vault

import (
	"path"

	"github.com/bmatcuk/doublestar/v4"
)

// Excluded reports whether relPath matches any exclude pattern. Directories
// also match patterns that only cover their contents, so "drafts/**" skips
// the drafts folder without listing it.
func Excluded(relPath string, isDir bool, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	candidates := []string{relPath, path.Base(relPath)}
	if isDir {
		candidates = append(candidates, relPath+"/_")
	}
	for _, pattern := range patterns {
		for _, c := range candidates {
			if matched, err := doublestar.Match(pattern, c); err == nil && matched {
				return true
			}
		}
	}
	return false
}
