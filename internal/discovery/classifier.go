package discovery

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Matcher decides by base name which files are SQL scripts
type Matcher struct {
	patterns []string
}

// NewMatcher validates patterns and returns a Matcher. Matching ignores case.
func NewMatcher(patterns []string) (*Matcher, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	m := &Matcher{}
	for _, p := range patterns {
		p = strings.ToLower(p)
		if _, err := filepath.Match(p, ""); err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		m.patterns = append(m.patterns, p)
	}
	return m, nil
}

// MatchFile reports whether a file name matches any pattern
func (m *Matcher) MatchFile(filename string) bool {
	lower := strings.ToLower(filename)
	for _, p := range m.patterns {
		if ok, _ := filepath.Match(p, lower); ok {
			return true
		}
	}
	return false
}

// MatchPath determines the match from a full path
func (m *Matcher) MatchPath(path string) bool {
	return m.MatchFile(filepath.Base(path))
}
