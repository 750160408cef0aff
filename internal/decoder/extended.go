package decoder

import (
	"bytes"
	"errors"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/cybertec-postgresql/pgparse/internal/buffer"
	perrors "github.com/cybertec-postgresql/pgparse/internal/errors"
)

const extendedEscapeHint = `Unicode escapes must be \uXXXX or \UXXXXXXXX.`

// Extended decodes the body of an escape string (E'...', or '...' with
// standard_conforming_strings off).
//
// The returned warning kind is that of the first backslash escape found,
// or zero. PostgreSQL only reports it for strings without the E prefix.
func Extended(s string, bq BackslashQuote) (string, perrors.WarningKind, error) {
	d := extended{b: buffer.New(s), bq: bq, out: make([]byte, 0, len(s))}
	if err := d.run(); err != nil {
		return "", 0, err
	}
	if !utf8.Valid(d.out) || bytes.IndexByte(d.out, 0) >= 0 {
		return "", 0, newError(perrors.InvalidUTF8, 0)
	}
	return string(d.out), d.warning, nil
}

type extended struct {
	b       *buffer.Buffer
	bq      BackslashQuote
	out     []byte
	warning perrors.WarningKind
}

func (d *extended) warn(kind perrors.WarningKind) {
	if d.warning == 0 {
		d.warning = kind
	}
}

func (d *extended) run() error {
	for {
		c, ok := d.b.ConsumeOne()
		if !ok {
			return nil
		}
		switch c {
		case '\'':
			d.b.ConsumeByte('\'')
			d.out = append(d.out, '\'')
		case '\\':
			if err := d.escape(d.b.Index() - 1); err != nil {
				return err
			}
		default:
			d.out = append(d.out, c)
		}
	}
}

func (d *extended) escape(start int) error {
	c, ok := d.b.ConsumeOne()
	if !ok {
		d.out = append(d.out, '\\')
		return nil
	}
	switch c {
	case 'b':
		d.out = append(d.out, '\b')
	case 'f':
		d.out = append(d.out, '\f')
	case 'n':
		d.out = append(d.out, '\n')
	case 'r':
		d.out = append(d.out, '\r')
	case 't':
		d.out = append(d.out, '\t')
	case 'v':
		d.out = append(d.out, '\v')
	case '\\':
		d.warn(perrors.NonstandardBackslashEscape)
		d.out = append(d.out, '\\')
		return nil
	case '\'':
		if d.bq != On {
			return newError(perrors.NonstandardUseOfBackslashQuote, start)
		}
		d.warn(perrors.NonstandardQuoteEscape)
		d.out = append(d.out, '\'')
		return nil
	case '0', '1', '2', '3', '4', '5', '6', '7':
		v := c - '0'
		for range 2 {
			o, ok := d.b.ConsumeIf(isOctalDigit)
			if !ok {
				break
			}
			v = v<<3 | (o - '0')
		}
		d.out = append(d.out, v)
	case 'x':
		h, ok := d.b.ConsumeIf(buffer.IsHexDigit)
		if !ok {
			d.out = append(d.out, 'x')
			break
		}
		v := buffer.HexValue(h)
		if h, ok := d.b.ConsumeIf(buffer.IsHexDigit); ok {
			v = v<<4 | buffer.HexValue(h)
		}
		d.out = append(d.out, v)
	case 'u', 'U':
		if err := d.unicode(start, c); err != nil {
			return err
		}
	default:
		d.out = append(d.out, c)
	}
	d.warn(perrors.NonstandardEscape)
	return nil
}

// unicode decodes \uXXXX or \UXXXXXXXX. A leading surrogate must be
// followed directly by another escape holding the trailing surrogate.
func (d *extended) unicode(start int, form byte) error {
	first, err := d.codePoint(start, form)
	if err != nil {
		return err
	}
	switch first.Kind {
	case buffer.TrailSurrogate:
		return newError(perrors.InvalidUnicodeSurrogatePair, start)
	case buffer.LeadSurrogate:
		if !d.b.ConsumeByte('\\') {
			return newError(perrors.InvalidUnicodeSurrogatePair, start)
		}
		form, ok := d.b.ConsumeIf(func(c byte) bool { return c == 'u' || c == 'U' })
		if !ok {
			return newError(perrors.InvalidUnicodeSurrogatePair, start)
		}
		second, err := d.codePoint(start, form)
		if err != nil {
			return err
		}
		if second.Kind != buffer.TrailSurrogate {
			return newError(perrors.InvalidUnicodeSurrogatePair, start)
		}
		d.out = utf8.AppendRune(d.out, utf16.DecodeRune(first.Value, second.Value))
		return nil
	}
	d.out = utf8.AppendRune(d.out, first.Value)
	return nil
}

func (d *extended) codePoint(start int, form byte) (buffer.UnicodeChar, error) {
	n := 4
	if form == 'U' {
		n = 8
	}
	uc, err := d.b.ConsumeUnicodeChar(n)
	switch {
	case errors.Is(err, buffer.ErrEscapeTooShort):
		e := newError(perrors.InvalidUnicodeEscape, start)
		e.Hint = extendedEscapeHint
		return uc, e
	case err != nil:
		return uc, newError(perrors.InvalidUnicodeValue, start)
	}
	return uc, nil
}

func isOctalDigit(c byte) bool { return '0' <= c && c <= '7' }
