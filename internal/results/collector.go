package results

import (
	"errors"
	"fmt"

	perrors "github.com/cybertec-postgresql/pgparse/internal/errors"
	"github.com/cybertec-postgresql/pgparse/internal/runner"
)

// Collector aggregates file checks into a Run
type Collector struct {
	run *Run
}

// NewCollector creates a new results collector
func NewCollector(settings Settings) *Collector {
	run := NewRun()
	run.Settings = settings
	return &Collector{run: run}
}

// CollectFromCheck records the outcome of a single file check
func (c *Collector) CollectFromCheck(fc *runner.FileCheck) {
	if fc == nil || fc.File == nil {
		return
	}
	fr := c.run.File(fc.File.RelativePath)

	if fc.Error != nil {
		fr.Diagnostics = append(fr.Diagnostics, fileDiagnostic(fc.Error))
	}

	for _, sc := range fc.Statements {
		fr.Statements++
		switch {
		case sc.Skipped:
			fr.Skipped++
		case sc.Err == nil:
			fr.Parsed++
		default:
			fr.Diagnostics = append(fr.Diagnostics, ErrorDiagnostic(sc.Err, fc.Source))
		}
		for _, w := range sc.Warnings {
			fr.Diagnostics = append(fr.Diagnostics, WarningDiagnostic(w))
		}
		if sc.Mismatch != nil {
			fr.Diagnostics = append(fr.Diagnostics, MismatchDiagnostic(sc.Mismatch, sc.Statement.StartCol))
		}
	}
	fr.Sort()
}

// CollectFromChecks records the outcome of multiple file checks
func (c *Collector) CollectFromChecks(checks []*runner.FileCheck) {
	for _, fc := range checks {
		c.CollectFromCheck(fc)
	}
}

// Run returns the aggregated run
func (c *Collector) Run() *Run {
	return c.run
}

// ErrorDiagnostic converts a located parse error
func ErrorDiagnostic(e *perrors.Error, source string) Diagnostic {
	pg := e.PgError(source)
	return Diagnostic{
		Severity: SeverityError,
		SQLState: pg.Code,
		Message:  pg.Message,
		Hint:     pg.Hint,
		Detail:   pg.Detail,
		Line:     e.Location.Line,
		Col:      e.Location.Col,
		Position: int(pg.Position),
	}
}

// WarningDiagnostic converts a parser warning
func WarningDiagnostic(w perrors.Warning) Diagnostic {
	n := w.Notice()
	return Diagnostic{
		Severity: Severity(n.Severity),
		SQLState: n.Code,
		Message:  n.Message,
		Hint:     n.Hint,
		Line:     w.Location.Line,
		Col:      w.Location.Col,
		Position: int(n.Position),
	}
}

// MismatchDiagnostic converts a disagreement with the server. col is the
// column the statement starts at.
func MismatchDiagnostic(m *perrors.MismatchError, col int) Diagnostic {
	d := Diagnostic{
		Severity: SeverityMismatch,
		Line:     m.Line,
		Col:      col,
	}
	switch {
	case m.Local != nil && m.ServerErr == nil:
		d.SQLState = m.Local.SQLState()
		d.Message = fmt.Sprintf("rejected locally (%s) but accepted by the server", m.Local.Message)
	case m.ServerErr != nil && m.Local == nil:
		d.SQLState = m.ServerErr.Code
		d.Message = fmt.Sprintf("parsed locally but rejected by the server: %s", m.ServerErr.Message)
		d.Hint = m.ServerErr.Hint
	case m.ServerErr != nil:
		d.SQLState = m.ServerErr.Code
		d.Message = fmt.Sprintf("local error [%s] %s differs from server error [%s] %s",
			m.Local.SQLState(), m.Local.Message, m.ServerErr.Code, m.ServerErr.Message)
	default:
		d.Message = "local and server verdicts differ"
	}
	return d
}

func fileDiagnostic(err error) Diagnostic {
	var pe *perrors.ParseError
	if errors.As(err, &pe) {
		return ErrorDiagnostic(pe.Err, pe.Source)
	}
	return Diagnostic{
		Severity: SeverityError,
		Message:  err.Error(),
	}
}
