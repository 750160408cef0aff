package results

import (
	"slices"
	"time"
)

// SchemaVersion is written into every stored run
const SchemaVersion = "1.0"

// Run represents the diagnostics of one check or verify invocation
type Run struct {
	Version   string                 `json:"version" yaml:"version"`     // Schema version
	Timestamp time.Time              `json:"timestamp" yaml:"timestamp"` // When the run finished
	Settings  Settings               `json:"settings" yaml:"settings"`
	Files     map[string]*FileResult `json:"files" yaml:"files"` // Key: relative file path
}

// Settings records the scanner configuration the run was made with
type Settings struct {
	StandardConformingStrings bool   `json:"standard_conforming_strings" yaml:"standard_conforming_strings"`
	BackslashQuote            string `json:"backslash_quote" yaml:"backslash_quote"`
	Verified                  bool   `json:"verified" yaml:"verified"` // statements were cross-checked on a server
}

// FileResult holds per-file counters and diagnostics
type FileResult struct {
	Path        string       `json:"path" yaml:"path"`
	Statements  int          `json:"statements" yaml:"statements"`
	Parsed      int          `json:"parsed" yaml:"parsed"`
	Skipped     int          `json:"skipped" yaml:"skipped"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// Severity classifies a diagnostic
type Severity string

const (
	SeverityError    Severity = "ERROR"
	SeverityWarning  Severity = "WARNING"
	SeverityNotice   Severity = "NOTICE"
	SeverityMismatch Severity = "MISMATCH"
)

// Diagnostic is a single located message. Line and Col are 1-based; a zero
// Line means the diagnostic applies to the whole file. Position is the
// 1-based character offset PostgreSQL reports.
type Diagnostic struct {
	Severity Severity `json:"severity" yaml:"severity"`
	SQLState string   `json:"sqlstate,omitempty" yaml:"sqlstate,omitempty"`
	Message  string   `json:"message" yaml:"message"`
	Hint     string   `json:"hint,omitempty" yaml:"hint,omitempty"`
	Detail   string   `json:"detail,omitempty" yaml:"detail,omitempty"`
	Line     int      `json:"line" yaml:"line"`
	Col      int      `json:"col" yaml:"col"`
	Position int      `json:"position,omitempty" yaml:"position,omitempty"`
}

// NewRun creates an empty Run
func NewRun() *Run {
	return &Run{
		Version:   SchemaVersion,
		Timestamp: time.Now(),
		Files:     make(map[string]*FileResult),
	}
}

// File returns the result for path, creating it if needed
func (r *Run) File(path string) *FileResult {
	if r.Files == nil {
		r.Files = make(map[string]*FileResult)
	}
	fr, ok := r.Files[path]
	if !ok {
		fr = &FileResult{Path: path}
		r.Files[path] = fr
	}
	return fr
}

// Paths returns the file paths in sorted order
func (r *Run) Paths() []string {
	paths := make([]string, 0, len(r.Files))
	for path := range r.Files {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	return paths
}

// Count returns the number of diagnostics with the given severity
func (fr *FileResult) Count(sev Severity) int {
	n := 0
	for _, d := range fr.Diagnostics {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// Failed reports whether the file has errors or mismatches
func (fr *FileResult) Failed() bool {
	return fr.Count(SeverityError) > 0 || fr.Count(SeverityMismatch) > 0
}

// Sort orders diagnostics by position in the file
func (fr *FileResult) Sort() {
	slices.SortStableFunc(fr.Diagnostics, func(a, b Diagnostic) int {
		if a.Line != b.Line {
			return a.Line - b.Line
		}
		return a.Col - b.Col
	})
}

// Totals aggregates counters over all files
type Totals struct {
	Files       int `json:"files" yaml:"files"`
	FailedFiles int `json:"failed_files" yaml:"failed_files"`
	Statements  int `json:"statements" yaml:"statements"`
	Parsed      int `json:"parsed" yaml:"parsed"`
	Skipped     int `json:"skipped" yaml:"skipped"`
	Errors      int `json:"errors" yaml:"errors"`
	Warnings    int `json:"warnings" yaml:"warnings"`
	Mismatches  int `json:"mismatches" yaml:"mismatches"`
}

// Totals computes run-wide counters
func (r *Run) Totals() Totals {
	var t Totals
	for _, fr := range r.Files {
		t.Files++
		if fr.Failed() {
			t.FailedFiles++
		}
		t.Statements += fr.Statements
		t.Parsed += fr.Parsed
		t.Skipped += fr.Skipped
		t.Errors += fr.Count(SeverityError)
		t.Warnings += fr.Count(SeverityWarning) + fr.Count(SeverityNotice)
		t.Mismatches += fr.Count(SeverityMismatch)
	}
	return t
}
