package decoder

import (
	"errors"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/cybertec-postgresql/pgparse/internal/buffer"
	perrors "github.com/cybertec-postgresql/pgparse/internal/errors"
)

// DefaultEscape is the escape character of U& literals without UESCAPE.
const DefaultEscape = '\\'

// Unicode decodes the body of a U&'...' string or U&"..." identifier.
// quote is the literal's delimiter, which is doubled inside the body, and
// escape the character chosen by UESCAPE.
//
// Escapes are escape followed by four hex digits, escape '+' followed by
// six, or a doubled escape standing for itself.
func Unicode(s string, escape, quote byte) (string, error) {
	b := buffer.New(s)
	out := make([]byte, 0, len(s))
	for {
		c, ok := b.ConsumeOne()
		if !ok {
			return string(out), nil
		}
		if c == quote {
			b.ConsumeByte(quote)
			out = append(out, c)
			continue
		}
		if c != escape {
			out = append(out, c)
			continue
		}
		start := b.Index() - 1
		if b.ConsumeByte(escape) {
			out = append(out, escape)
			continue
		}
		first, err := unicodeEscape(b, start)
		if err != nil {
			return "", err
		}
		switch first.Kind {
		case buffer.TrailSurrogate:
			return "", newError(perrors.InvalidUnicodeSurrogatePair, start)
		case buffer.LeadSurrogate:
			if !b.ConsumeByte(escape) {
				return "", newError(perrors.InvalidUnicodeSurrogatePair, start)
			}
			second, err := unicodeEscape(b, start)
			if err != nil {
				return "", err
			}
			if second.Kind != buffer.TrailSurrogate {
				return "", newError(perrors.InvalidUnicodeSurrogatePair, start)
			}
			out = utf8.AppendRune(out, utf16.DecodeRune(first.Value, second.Value))
		default:
			out = utf8.AppendRune(out, first.Value)
		}
	}
}

// unicodeEscape reads XXXX or +XXXXXX after an escape character.
func unicodeEscape(b *buffer.Buffer, start int) (buffer.UnicodeChar, error) {
	n := 4
	if b.ConsumeByte('+') {
		n = 6
	}
	uc, err := b.ConsumeUnicodeChar(n)
	switch {
	case errors.Is(err, buffer.ErrEscapeTooShort):
		return uc, newError(perrors.InvalidUnicodeEscape, start)
	case err != nil:
		return uc, newError(perrors.InvalidUnicodeValue, start)
	}
	return uc, nil
}
