package types

import "time"

// Config holds runtime configuration combining the config file, environment
// variables, flags and defaults
type Config struct {
	// Scanner settings, named after the server parameters they mirror
	StandardConformingStrings bool   `json:"standard_conforming_strings"`
	BackslashQuote            string `json:"backslash_quote"` // on, off or safe_encoding

	// Input
	Encoding string   `json:"encoding"` // encoding of the SQL files, "" for UTF-8
	Patterns []string `json:"patterns"` // file name patterns for directory walks

	// Execution
	Parallelism int           `json:"parallelism"` // Max concurrent files (1 = sequential)
	Timeout     time.Duration `json:"-"`           // Per-statement timeout for server verification

	// Server cross-check
	ConnectionString string `json:"connection"`
	ScratchDatabase  bool   `json:"scratch_database"` // verify inside a throw-away database

	// Output
	ResultsFile string `json:"results_file"` // Results data output path
	Format      string `json:"format"`       // text, json, yaml or html
	OutputPath  string `json:"output"`       // "" or "-" for stdout
	Color       string `json:"color"`        // auto, always or never
	Verbose     bool   `json:"verbose"`      // Enable debug logging
	Quiet       bool   `json:"quiet"`        // Suppress informational messages
}
