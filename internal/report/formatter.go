package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/cybertec-postgresql/pgparse/internal/results"
)

// Formatter is an interface for result report formatters
type Formatter interface {
	// Format formats a run and writes it to the writer
	Format(run *results.Run, writer io.Writer) error

	// FormatString returns the formatted run as a string
	FormatString(run *results.Run) (string, error)

	// Name returns the name of this formatter
	Name() string
}

// FormatType represents supported report formats
type FormatType string

const (
	FormatText FormatType = "text"
	FormatJSON FormatType = "json"
	FormatYAML FormatType = "yaml"
	FormatHTML FormatType = "html"
)

// Options tune formatter output
type Options struct {
	Color bool // ANSI colors, text format only
}

// GetFormatter returns a formatter for the specified format type
func GetFormatter(format FormatType, opts Options) (Formatter, error) {
	switch format {
	case FormatText:
		return NewTextReporter(opts.Color), nil
	case FormatJSON:
		return NewJSONReporter(), nil
	case FormatYAML:
		return NewYAMLReporter(), nil
	case FormatHTML:
		return NewHTMLReporter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: %s)", format, strings.Join(SupportedFormats(), ", "))
	}
}

// FormatToWriter formats a run to a writer using the specified format
func FormatToWriter(run *results.Run, format FormatType, opts Options, writer io.Writer) error {
	formatter, err := GetFormatter(format, opts)
	if err != nil {
		return err
	}
	return formatter.Format(run, writer)
}

// ValidFormat checks if a format string is valid
func ValidFormat(format string) bool {
	switch FormatType(format) {
	case FormatText, FormatJSON, FormatYAML, FormatHTML:
		return true
	default:
		return false
	}
}

// SupportedFormats returns a list of supported format names
func SupportedFormats() []string {
	return []string{string(FormatText), string(FormatJSON), string(FormatYAML), string(FormatHTML)}
}

// ColorEnabled resolves a color mode (auto, always or never) for w. In auto
// mode colors are used only when w is a terminal and NO_COLOR is unset.
func ColorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func formatString(f Formatter, run *results.Run) (string, error) {
	var sb strings.Builder
	if err := f.Format(run, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}
