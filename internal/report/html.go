package report

import (
	"fmt"
	"html"
	"io"
	"time"

	"github.com/cybertec-postgresql/pgparse/internal/results"
)

// HTMLReporter formats results as a standalone HTML page
type HTMLReporter struct{}

// NewHTMLReporter creates a new HTML reporter
func NewHTMLReporter() *HTMLReporter {
	return &HTMLReporter{}
}

// Format formats a run as HTML and writes to the writer
func (r *HTMLReporter) Format(run *results.Run, writer io.Writer) error {
	files := run.Paths()

	if err := r.writeHeader(run, writer); err != nil {
		return err
	}

	if err := r.writeSummary(run, writer); err != nil {
		return err
	}

	for _, file := range files {
		if err := r.writeFileDetail(run.Files[file], writer); err != nil {
			return err
		}
	}

	return r.writeFooter(writer)
}

// writeHeader writes the HTML document header with CSS
func (r *HTMLReporter) writeHeader(run *results.Run, writer io.Writer) error {
	timestamp := time.Now().Format(time.RFC1123)
	if !run.Timestamp.IsZero() {
		timestamp = run.Timestamp.Format(time.RFC1123)
	}

	_, err := fmt.Fprintf(writer, `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>pgparse Report</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Arial, sans-serif; background: #f5f5f5; color: #333; }
        .container { max-width: 1200px; margin: 0 auto; padding: 20px; }
        header { background: #2c3e50; color: white; padding: 30px 0; margin-bottom: 30px; }
        header h1 { font-size: 2.2em; margin-bottom: 10px; }
        header .meta { opacity: 0.8; font-size: 0.9em; }
        section { background: white; border-radius: 8px; padding: 25px; margin-bottom: 30px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h2, h3 { margin-bottom: 15px; color: #2c3e50; }
        h3 { font-family: 'Courier New', monospace; }
        .summary-stats { display: grid; grid-template-columns: repeat(auto-fit, minmax(160px, 1fr)); gap: 20px; }
        .stat-card { background: #f8f9fa; padding: 20px; border-radius: 6px; border-left: 4px solid #3498db; }
        .stat-card.error { border-left-color: #e74c3c; }
        .stat-card.warning { border-left-color: #f39c12; }
        .stat-card.mismatch { border-left-color: #8e44ad; }
        .stat-card .label { font-size: 0.85em; color: #7f8c8d; text-transform: uppercase; margin-bottom: 8px; }
        .stat-card .value { font-size: 2em; font-weight: bold; color: #2c3e50; }
        .counts { font-size: 0.9em; color: #7f8c8d; margin-bottom: 10px; }
        table { width: 100%%; border-collapse: collapse; font-size: 0.9em; }
        th, td { text-align: left; padding: 6px 10px; border-bottom: 1px solid #ecf0f1; vertical-align: top; }
        td.pos { font-family: 'Courier New', monospace; white-space: nowrap; }
        .sev { font-weight: bold; padding: 2px 8px; border-radius: 4px; }
        .sev.ERROR { background: #f8d7da; color: #721c24; }
        .sev.WARNING, .sev.NOTICE { background: #fff3cd; color: #856404; }
        .sev.MISMATCH { background: #e8daef; color: #4a235a; }
        .hint { color: #7f8c8d; font-style: italic; }
        .clean { color: #155724; }
        footer { text-align: center; padding: 30px 0; color: #7f8c8d; font-size: 0.9em; }
    </style>
</head>
<body>
    <header>
        <div class="container">
            <h1>pgparse Report</h1>
            <div class="meta">Generated: %s | Version: %s | standard_conforming_strings: %s | backslash_quote: %s</div>
        </div>
    </header>
    <div class="container">
`, timestamp, html.EscapeString(run.Version), onOff(run.Settings.StandardConformingStrings), html.EscapeString(run.Settings.BackslashQuote))
	return err
}

// writeSummary writes the run totals
func (r *HTMLReporter) writeSummary(run *results.Run, writer io.Writer) error {
	t := run.Totals()
	_, err := fmt.Fprintf(writer, `        <section class="summary">
            <h2>Summary</h2>
            <div class="summary-stats">
                <div class="stat-card"><div class="label">Files</div><div class="value">%d</div></div>
                <div class="stat-card"><div class="label">Statements</div><div class="value">%d</div></div>
                <div class="stat-card"><div class="label">Parsed</div><div class="value">%d</div></div>
                <div class="stat-card error"><div class="label">Errors</div><div class="value">%d</div></div>
                <div class="stat-card warning"><div class="label">Warnings</div><div class="value">%d</div></div>
                <div class="stat-card mismatch"><div class="label">Mismatches</div><div class="value">%d</div></div>
            </div>
        </section>

`, t.Files, t.Statements, t.Parsed, t.Errors, t.Warnings, t.Mismatches)
	return err
}

// writeFileDetail writes the diagnostics table of a single file
func (r *HTMLReporter) writeFileDetail(fr *results.FileResult, writer io.Writer) error {
	_, err := fmt.Fprintf(writer, `        <section class="file-detail">
            <h3>%s</h3>
            <div class="counts">%d statements, %d parsed, %d skipped</div>
`, html.EscapeString(fr.Path), fr.Statements, fr.Parsed, fr.Skipped)
	if err != nil {
		return err
	}

	if len(fr.Diagnostics) == 0 {
		_, err = io.WriteString(writer, `            <p class="clean">No diagnostics</p>
        </section>

`)
		return err
	}

	if _, err := io.WriteString(writer, `            <table>
                <tr><th>Position</th><th>Severity</th><th>SQLSTATE</th><th>Message</th></tr>
`); err != nil {
		return err
	}
	for _, d := range fr.Diagnostics {
		pos := "-"
		if d.Line > 0 {
			pos = fmt.Sprintf("%d:%d", d.Line, d.Col)
		}
		msg := html.EscapeString(d.Message)
		if d.Hint != "" {
			msg += `<br><span class="hint">` + html.EscapeString(d.Hint) + `</span>`
		}
		_, err := fmt.Fprintf(writer, `                <tr><td class="pos">%s</td><td><span class="sev %s">%s</span></td><td>%s</td><td>%s</td></tr>
`, pos, d.Severity, d.Severity, html.EscapeString(d.SQLState), msg)
		if err != nil {
			return err
		}
	}

	_, err = io.WriteString(writer, `            </table>
        </section>

`)
	return err
}

// writeFooter writes the HTML document footer
func (r *HTMLReporter) writeFooter(writer io.Writer) error {
	_, err := io.WriteString(writer, `        <footer>
            Generated by <strong>pgparse</strong> - PostgreSQL SQL parser
        </footer>
    </div>
</body>
</html>
`)
	return err
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// FormatString returns a run as an HTML string
func (r *HTMLReporter) FormatString(run *results.Run) (string, error) {
	return formatString(r, run)
}

// Name returns the name of this reporter
func (r *HTMLReporter) Name() string {
	return "html"
}
