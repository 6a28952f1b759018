package watch

import (
	"path/filepath"
)

// EditorTempPatterns match the swap and backup files editors write next to
// the file being edited.
var EditorTempPatterns = []string{"*.swp", "*.swx", "*~", ".#*", "#*#", "4913"}

// PatternFilter filters file paths based on include/exclude glob patterns.
// Patterns are matched against the base name and the full path.
type PatternFilter struct {
	Include []string
	Exclude []string
}

// NewPatternFilter creates a new pattern filter.
func NewPatternFilter(include, exclude []string) *PatternFilter {
	return &PatternFilter{
		Include: include,
		Exclude: exclude,
	}
}

// Matches reports whether path passes the filter: no exclude pattern may
// match, and when include patterns are set at least one must.
func (f *PatternFilter) Matches(path string) bool {
	if matchAny(f.Exclude, path) {
		return false
	}
	return len(f.Include) == 0 || matchAny(f.Include, path)
}

func matchAny(patterns []string, path string) bool {
	base := filepath.Base(path)
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, path); ok {
			return true
		}
	}
	return false
}
