package errors

import (
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cybertec-postgresql/pgparse/internal/buffer"
)

// WarningKind identifies a non-fatal diagnostic.
type WarningKind uint8

const (
	NonstandardEscape WarningKind = iota + 1
	NonstandardQuoteEscape
	NonstandardBackslashEscape
	IdentifierTruncated
)

func (k WarningKind) String() string {
	switch k {
	case NonstandardEscape:
		return "NonstandardEscape"
	case NonstandardQuoteEscape:
		return "NonstandardQuoteEscape"
	case NonstandardBackslashEscape:
		return "NonstandardBackslashEscape"
	case IdentifierTruncated:
		return "IdentifierTruncated"
	default:
		return fmt.Sprintf("WarningKind(%d)", k)
	}
}

// Warning is a diagnostic that does not stop the parse.
type Warning struct {
	Kind     WarningKind
	Location buffer.Location
	Message  string
	Hint     string
}

// NewWarning creates a warning of kind at loc.
func NewWarning(kind WarningKind, loc buffer.Location) Warning {
	w := Warning{Kind: kind, Location: loc}
	switch kind {
	case NonstandardEscape:
		w.Message = "nonstandard use of escape in a string literal"
		w.Hint = `Use the escape string syntax for escapes, e.g., E'\r\n'.`
	case NonstandardQuoteEscape:
		w.Message = `nonstandard use of \' in a string literal`
		w.Hint = `Use '' to write quotes in strings, or use the escape string syntax (E'...').`
	case NonstandardBackslashEscape:
		w.Message = `nonstandard use of \\ in a string literal`
		w.Hint = `Use the escape string syntax for backslashes, e.g., E'\\'.`
	}
	return w
}

// NewTruncationWarning reports an identifier shortened to the maximum name
// length.
func NewTruncationWarning(loc buffer.Location, ident, truncated string) Warning {
	return Warning{
		Kind:     IdentifierTruncated,
		Location: loc,
		Message:  fmt.Sprintf("identifier %q will be truncated to %q", ident, truncated),
	}
}

// SQLState returns the SQLSTATE code of the warning.
func (w Warning) SQLState() string {
	if w.Kind == IdentifierTruncated {
		return pgerrcode.NameTooLong
	}
	return pgerrcode.NonstandardUseOfEscapeCharacter
}

// Severity returns the level PostgreSQL would send the warning with.
func (w Warning) Severity() string {
	if w.Kind == IdentifierTruncated {
		return "NOTICE"
	}
	return "WARNING"
}

func (w Warning) String() string {
	return fmt.Sprintf("%d:%d: %s", w.Location.Line, w.Location.Col, w.Message)
}

// Notice converts w to the notice type pgx delivers for server warnings.
func (w Warning) Notice() *pgconn.Notice {
	return &pgconn.Notice{
		Severity:            w.Severity(),
		SeverityUnlocalized: w.Severity(),
		Code:                w.SQLState(),
		Message:             w.Message,
		Hint:                w.Hint,
		Position:            int32(w.Location.Position()),
	}
}
