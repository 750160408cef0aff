package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cybertec-postgresql/pgparse/internal/results"
)

// JSONReporter formats results as JSON
type JSONReporter struct{}

// NewJSONReporter creates a new JSON reporter
func NewJSONReporter() *JSONReporter {
	return &JSONReporter{}
}

// jsonReport is the run plus precomputed totals
type jsonReport struct {
	*results.Run
	Totals results.Totals `json:"totals"`
}

// Format formats a run as JSON and writes to the writer
func (r *JSONReporter) Format(run *results.Run, writer io.Writer) error {
	enc := json.NewEncoder(writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jsonReport{Run: run, Totals: run.Totals()}); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	return nil
}

// FormatString returns a run as a JSON string
func (r *JSONReporter) FormatString(run *results.Run) (string, error) {
	return formatString(r, run)
}

// Name returns the name of this reporter
func (r *JSONReporter) Name() string {
	return "json"
}
