package report

import (
	"fmt"
	"io"

	"github.com/cybertec-postgresql/pgparse/internal/results"
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
	ansiPurple = "\x1b[35m"
)

// TextReporter writes compiler-style diagnostics:
//
//	queries/a.sql:2:8: ERROR: syntax error at or near "form" [42601]
type TextReporter struct {
	color bool
}

// NewTextReporter creates a new text reporter
func NewTextReporter(color bool) *TextReporter {
	return &TextReporter{color: color}
}

// Format writes every diagnostic followed by a one-line summary
func (r *TextReporter) Format(run *results.Run, writer io.Writer) error {
	for _, path := range run.Paths() {
		for _, d := range run.Files[path].Diagnostics {
			if err := r.writeDiagnostic(writer, path, d); err != nil {
				return err
			}
		}
	}

	t := run.Totals()
	_, err := fmt.Fprintf(writer, "%s: %d parsed, %d skipped, %s, %s, %s\n",
		r.paint(ansiBold, fmt.Sprintf("%d files, %d statements", t.Files, t.Statements)),
		t.Parsed, t.Skipped,
		r.count(ansiRed, t.Errors, "error"),
		r.count(ansiYellow, t.Warnings, "warning"),
		r.count(ansiPurple, t.Mismatches, "mismatch"))
	return err
}

func (r *TextReporter) writeDiagnostic(w io.Writer, path string, d results.Diagnostic) error {
	where := path
	if d.Line > 0 {
		where = fmt.Sprintf("%s:%d:%d", path, d.Line, d.Col)
	}
	msg := d.Message
	if d.SQLState != "" {
		msg += " [" + d.SQLState + "]"
	}
	if _, err := fmt.Fprintf(w, "%s: %s: %s\n", r.paint(ansiBold, where), r.paint(severityColor(d.Severity), string(d.Severity)), msg); err != nil {
		return err
	}
	if d.Detail != "" {
		if _, err := fmt.Fprintf(w, "    %s: %s\n", r.paint(ansiCyan, "DETAIL"), d.Detail); err != nil {
			return err
		}
	}
	if d.Hint != "" {
		if _, err := fmt.Fprintf(w, "    %s: %s\n", r.paint(ansiCyan, "HINT"), d.Hint); err != nil {
			return err
		}
	}
	return nil
}

func severityColor(s results.Severity) string {
	switch s {
	case results.SeverityError:
		return ansiRed
	case results.SeverityMismatch:
		return ansiPurple
	default:
		return ansiYellow
	}
}

func (r *TextReporter) paint(code, s string) string {
	if !r.color {
		return s
	}
	return code + s + ansiReset
}

func (r *TextReporter) count(code string, n int, noun string) string {
	s := fmt.Sprintf("%d %s", n, noun)
	if n != 1 {
		if noun == "mismatch" {
			s += "es"
		} else {
			s += "s"
		}
	}
	if n == 0 {
		return s
	}
	return r.paint(code, s)
}

// FormatString returns a run as text
func (r *TextReporter) FormatString(run *results.Run) (string, error) {
	return formatString(r, run)
}

// Name returns the name of this reporter
func (r *TextReporter) Name() string {
	return "text"
}
