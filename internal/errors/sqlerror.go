package errors

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cybertec-postgresql/pgparse/internal/buffer"
)

// Error is a located parse failure. The scanner, the string decoders and the
// grammar all report through it.
type Error struct {
	Kind     Kind
	Location buffer.Location
	Message  string
	Hint     string
	Detail   string
}

// New creates an Error of kind at loc. args fill the kind's message format.
func New(kind Kind, loc buffer.Location, args ...any) *Error {
	return &Error{
		Kind:     kind,
		Location: loc,
		Message:  kind.message(args...),
		Hint:     kind.Hint(),
		Detail:   kind.Detail(),
	}
}

// NewSyntax creates the generic "syntax error" at loc.
func NewSyntax(loc buffer.Location) *Error {
	return New(Syntax, loc)
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Location.Line, e.Location.Col, e.Message)
}

// SQLState returns the SQLSTATE code of the error.
func (e *Error) SQLState() string { return e.Kind.SQLState() }

// WithHint returns a copy of e with hint replaced.
func (e *Error) WithHint(hint string) *Error {
	c := *e
	c.Hint = hint
	return &c
}

// At returns a copy of e relocated to loc.
func (e *Error) At(loc buffer.Location) *Error {
	c := *e
	c.Location = loc
	return &c
}

// AtEnd reports whether the error was raised at the end of the input.
func (e *Error) AtEnd() bool { return e.Location.IsEmpty() }

// Describe returns the message as PostgreSQL prints it, including the
// offending token for scanner and syntax errors.
func (e *Error) Describe(source string) string {
	if !e.Kind.scannerReported() {
		return e.Message
	}
	if e.AtEnd() {
		return e.Message + " at end of input"
	}
	return fmt.Sprintf("%s at or near %q", e.Message, e.Location.Text(source))
}

// Report renders the error for a terminal:
//
//	[42601] ERROR:  syntax error at or near "form"
//	Position: 10
func (e *Error) Report(source string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] ERROR:  %s\n", e.SQLState(), e.Describe(source))
	if e.Detail != "" {
		fmt.Fprintf(&sb, "DETAIL:  %s\n", e.Detail)
	}
	if e.Hint != "" {
		fmt.Fprintf(&sb, "HINT:  %s\n", e.Hint)
	}
	fmt.Fprintf(&sb, "Position: %d", e.Location.Position())
	return sb.String()
}

// PgError converts e to the error type pgx returns for server errors, so
// local and server diagnostics can be handled alike.
func (e *Error) PgError(source string) *pgconn.PgError {
	return &pgconn.PgError{
		Severity:            "ERROR",
		SeverityUnlocalized: "ERROR",
		Code:                e.SQLState(),
		Message:             e.Describe(source),
		Detail:              e.Detail,
		Hint:                e.Hint,
		Position:            int32(e.Location.Position()),
	}
}
