package cli

import (
	"fmt"

	"github.com/cybertec-postgresql/pgparse/internal/report"
	"github.com/cybertec-postgresql/pgparse/internal/results"
)

// Report renders previously stored results
func Report(config *Config) error {
	// Step 1: Load results
	store := results.NewStore(config.ResultsFile)
	if !store.Exists() {
		return fmt.Errorf("results file not found: %s (run 'pgparse check' first)", config.ResultsFile)
	}

	run, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}

	// Step 2: Validate format
	if !report.ValidFormat(config.Format) {
		return fmt.Errorf("unsupported format: %s (supported: %v)", config.Format, report.SupportedFormats())
	}

	// Step 3: Format and output
	return writeReport(run, config)
}
