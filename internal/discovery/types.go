package discovery

import "time"

// DiscoveredFile represents a SQL file discovered during filesystem traversal
type DiscoveredFile struct {
	Path         string    // Absolute path to file
	RelativePath string    // Path relative to search root
	Encoding     string    // Character encoding of the content, "" for UTF-8
	ModTime      time.Time // Last modification time
}

// Options controls which files are discovered and how they are read
type Options struct {
	Patterns []string // base name patterns, filepath.Match syntax
	Encoding string   // WHATWG encoding label, e.g. "latin1" or "windows-1252"
}

// DefaultPatterns are used when Options.Patterns is empty
var DefaultPatterns = []string{"*.sql"}
