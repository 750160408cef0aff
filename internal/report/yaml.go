package report

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/cybertec-postgresql/pgparse/internal/results"
)

// YAMLReporter formats results as YAML
type YAMLReporter struct{}

// NewYAMLReporter creates a new YAML reporter
func NewYAMLReporter() *YAMLReporter {
	return &YAMLReporter{}
}

type yamlReport struct {
	Run    results.Run    `yaml:",inline"`
	Totals results.Totals `yaml:"totals"`
}

// Format formats a run as YAML and writes to the writer
func (r *YAMLReporter) Format(run *results.Run, writer io.Writer) error {
	enc := yaml.NewEncoder(writer)
	enc.SetIndent(2)
	if err := enc.Encode(yamlReport{Run: *run, Totals: run.Totals()}); err != nil {
		return fmt.Errorf("failed to write YAML output: %w", err)
	}
	return enc.Close()
}

// FormatString returns a run as a YAML string
func (r *YAMLReporter) FormatString(run *results.Run) (string, error) {
	return formatString(r, run)
}

// Name returns the name of this reporter
func (r *YAMLReporter) Name() string {
	return "yaml"
}
