// Package decoder turns the body of quoted SQL literals into their values.
//
// Every decoder receives the literal with its delimiters already removed.
// Errors report the byte index inside that body where the bad escape
// starts; callers turn it into a source location.
package decoder

import (
	"fmt"

	"github.com/cybertec-postgresql/pgparse/internal/buffer"
	perrors "github.com/cybertec-postgresql/pgparse/internal/errors"
)

// BackslashQuote mirrors the backslash_quote setting.
type BackslashQuote uint8

const (
	// SafeEncoding allows \' only in client encodings where it cannot be
	// mistaken for part of a multibyte character. The decoder does not know
	// the client encoding and treats it like Off.
	SafeEncoding BackslashQuote = iota
	On
	Off
)

func (b BackslashQuote) String() string {
	switch b {
	case SafeEncoding:
		return "safe_encoding"
	case On:
		return "on"
	case Off:
		return "off"
	default:
		return fmt.Sprintf("BackslashQuote(%d)", b)
	}
}

// ParseBackslashQuote parses a backslash_quote setting value.
func ParseBackslashQuote(s string) (BackslashQuote, error) {
	switch s {
	case "safe_encoding", "":
		return SafeEncoding, nil
	case "on", "true", "yes", "1":
		return On, nil
	case "off", "false", "no", "0":
		return Off, nil
	}
	return SafeEncoding, fmt.Errorf("invalid value for backslash_quote: %q", s)
}

// Error is a decoding failure at a byte index of the literal body.
type Error struct {
	Kind  perrors.Kind
	Index int
	Hint  string
	args  []any
}

func newError(kind perrors.Kind, index int, args ...any) *Error {
	return &Error{Kind: kind, Index: index, args: args}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v at index %d", e.Kind, e.Index)
}

// Located converts e into a parse error at loc.
func (e *Error) Located(loc buffer.Location) *perrors.Error {
	err := perrors.New(e.Kind, loc, e.args...)
	if e.Hint != "" {
		err = err.WithHint(e.Hint)
	}
	return err
}

// Basic removes the doubling of quote.
func Basic(s string, quote byte) string {
	b := buffer.New(s)
	out := make([]byte, 0, len(s))
	for {
		c, ok := b.ConsumeOne()
		if !ok {
			return string(out)
		}
		if c == quote {
			b.ConsumeByte(quote)
		}
		out = append(out, c)
	}
}

// Dollar returns the body of a complete dollar-quoted literal such as
// $tag$body$tag$.
func Dollar(s string) string {
	if len(s) < 2 || s[0] != '$' {
		return s
	}
	end := 1
	for end < len(s) && s[end] != '$' {
		end++
	}
	delim := end + 1
	if len(s) < 2*delim {
		return ""
	}
	return s[delim : len(s)-delim]
}

// ValidUescape returns the escape character named by a UESCAPE clause.
// It must be a single character that is not a hex digit, '+', a quote or
// white space.
func ValidUescape(s string) (byte, bool) {
	if len(s) != 1 {
		return 0, false
	}
	c := s[0]
	switch {
	case buffer.IsHexDigit(c), c == '+', c == '\'', c == '"',
		c == ' ', c == '\t', c == '\n', c == '\r', c == '\f', c == '\v':
		return 0, false
	}
	return c, true
}
