package extractor

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// matchesAny checks if relPath matches any of the given glob patterns.
// Patterns support ** via doublestar; a pattern may also match just the
// filename so "*.pdf" works at any depth.
func matchesAny(relPath string, patterns []string) bool {
	normalized := filepath.ToSlash(relPath)

	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)

		if matched, err := doublestar.PathMatch(pattern, normalized); err == nil && matched {
			return true
		}

		base := filepath.Base(normalized)
		if matched, err := doublestar.PathMatch(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}
