package stream

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cybertec-postgresql/pgparse/internal/buffer"
	"github.com/cybertec-postgresql/pgparse/internal/decoder"
	perrors "github.com/cybertec-postgresql/pgparse/internal/errors"
	"github.com/cybertec-postgresql/pgparse/internal/keywords"
	"github.com/cybertec-postgresql/pgparse/internal/lexer"
	"github.com/cybertec-postgresql/pgparse/internal/result"
)

// rawToken is one lexer outcome. End of input and errors are sticky: they
// are never consumed.
type rawToken struct {
	tok lexer.Token
	err *perrors.Error
	eof bool
}

func (s *TokenStream) rawPeek() *rawToken {
	if s.raw == nil {
		tok, err := s.lex.Next()
		switch {
		case err != nil:
			var pe *perrors.Error
			if !errors.As(err, &pe) {
				pe = perrors.NewSyntax(s.lex.Buffer().CurrentLocation())
			}
			s.raw = &rawToken{err: pe}
		case tok.Kind == lexer.EOF:
			s.raw = &rawToken{tok: tok, eof: true}
		default:
			s.raw = &rawToken{tok: tok}
		}
	}
	return s.raw
}

func (s *TokenStream) rawNext() rawToken {
	raw := s.rawPeek()
	if raw.err == nil && !raw.eof {
		s.raw = nil
	}
	return *raw
}

// lexNext reads and decodes the next token.
func (s *TokenStream) lexNext() result.Result[*Token] {
	raw := s.rawNext()
	switch {
	case raw.err != nil:
		return result.Err[*Token](raw.err)
	case raw.eof:
		return result.EofAt[*Token](raw.tok.Loc)
	}

	tok := raw.tok
	out := &Token{Kind: tok.Kind, Loc: tok.Loc}
	var err *perrors.Error
	switch tok.Kind {
	case lexer.Operator:
		out.Op = tok.Op
	case lexer.Keyword:
		out.Keyword = tok.Keyword
	case lexer.Param:
		out.Param = tok.Param
	case lexer.UserOperator:
		out.Text = tok.Text
	case lexer.Number:
		out.Number = parseNumber(tok.Text, tok.Radix)
	case lexer.BitString:
		out.Bit = tok.Bit
		out.Text, out.Loc = s.concatenate(tok.Text[2:len(tok.Text)-1], tok.Loc)
	case lexer.Identifier:
		out.Text, err = s.identifier(tok)
	case lexer.String:
		out.Str = tok.Str
		out.Text, out.Loc, err = s.decodeString(tok)
	}
	if err != nil {
		return result.Err[*Token](err)
	}
	return result.OfAt(out, out.Loc)
}

// parseNumber strips digit separators and reads an int4 when the literal
// is an integer that fits. Anything else stays text, the way PostgreSQL
// turns out-of-range integers into numeric constants.
func parseNumber(text string, radix lexer.NumberRadix) Number {
	text = strings.ReplaceAll(text, "_", "")
	n := Number{Radix: radix, Text: text}
	digits := text
	if radix != lexer.Decimal {
		digits = text[2:]
	}
	if v, err := strconv.ParseInt(digits, int(radix), 32); err == nil {
		n.Int, n.IsInt = int32(v), true
	}
	return n
}

/*
 * identifier normalizes an identifier the way the server does:
 *
 *	ident          folded to lower case (ASCII only, as downcase_identifier
 *	               does for UTF-8 databases)
 *	"ident"        doubled quotes undone, case kept
 *	U&"ident"      Unicode escapes decoded, honouring a UESCAPE clause
 *
 * and truncates the result to NAMEDATALEN-1 bytes.
 */
func (s *TokenStream) identifier(tok lexer.Token) (string, *perrors.Error) {
	var ident string
	switch tok.Ident {
	case lexer.BasicIdentifier:
		ident = keywords.ToLower(tok.Text)
	case lexer.QuotedIdentifier:
		ident = decoder.Basic(tok.Text[1:len(tok.Text)-1], '"')
	case lexer.UnicodeIdentifier:
		escape, err := s.uescape()
		if err != nil {
			return "", err
		}
		decoded, derr := decoder.Unicode(tok.Text[3:len(tok.Text)-1], escape, '"')
		if derr != nil {
			return "", located(derr, tok.Loc)
		}
		ident = decoded
	}
	if truncated, ok := truncate(ident); ok {
		s.warn(perrors.NewTruncationWarning(tok.Loc, ident, truncated))
		ident = truncated
	}
	return ident, nil
}

// truncate shortens ident to fewer than NAMEDATALEN bytes without splitting
// a character.
func truncate(ident string) (string, bool) {
	limit := lexer.NameDataLen - 1
	if len(ident) <= limit {
		return ident, false
	}
	for limit > 0 && !utf8.RuneStart(ident[limit]) {
		limit--
	}
	return ident[:limit], true
}

/*
 * decodeString decodes a string literal, including any continuation lines.
 *
 *	  'String' ( SCONST )*
 *	| E'String' ( SCONST )*
 *	| N'String' ( SCONST )*
 *	| U&'String' ( SCONST )* ( UESCAPE ( SCONST )+ )?
 *	| $tag$String$tag$
 *
 * Decoding errors are reported at the location of the whole literal.
 */
func (s *TokenStream) decodeString(tok lexer.Token) (string, buffer.Location, *perrors.Error) {
	if tok.Str == lexer.DollarString {
		return decoder.Dollar(tok.Text), tok.Loc, nil
	}

	body, loc := s.concatenate(stringBody(tok), tok.Loc)

	kind := tok.Str
	if kind == lexer.NationalString {
		kind = lexer.ExtendedString
		if s.cfg.StandardConformingStrings {
			kind = lexer.BasicString
		}
	}

	switch kind {
	case lexer.BasicString:
		return decoder.Basic(body, '\''), loc, nil

	case lexer.ExtendedString:
		value, warning, err := decoder.Extended(body, s.cfg.BackslashQuote)
		if err != nil {
			return "", loc, located(err, loc)
		}
		// Only strings without the E prefix are warned about.
		if warning != 0 && !isEPrefixed(tok.Text) {
			s.warn(perrors.NewWarning(warning, loc))
		}
		return value, loc, nil

	case lexer.UnicodeString:
		escape, err := s.uescape()
		if err != nil {
			return "", loc, err
		}
		value, derr := decoder.Unicode(body, escape, '\'')
		if derr != nil {
			return "", loc, located(derr, loc)
		}
		return value, loc, nil
	}
	return body, loc, nil
}

/*
 * uescape reads an optional UESCAPE clause.
 *
 *	( UESCAPE ( SCONST )+ )?
 *
 * The delimiter is taken from the raw string body: it must be a single
 * character that is not a hex digit, "+", a quote or white space.
 */
func (s *TokenStream) uescape() (byte, *perrors.Error) {
	if raw := s.rawPeek(); raw.err != nil || raw.eof || !raw.tok.IsKeyword(keywords.Uescape) {
		return decoder.DefaultEscape, nil
	}
	s.rawNext()

	raw := s.rawPeek()
	switch {
	case raw.err != nil:
		return 0, raw.err
	case raw.eof || raw.tok.Kind != lexer.String ||
		raw.tok.Str != lexer.BasicString && raw.tok.Str != lexer.ExtendedString:
		return 0, perrors.New(perrors.UescapeDelimiterMissing, raw.tok.Loc)
	}
	tok := s.rawNext().tok

	body, loc := s.concatenate(stringBody(tok), tok.Loc)
	escape, ok := decoder.ValidUescape(body)
	if !ok {
		return 0, perrors.New(perrors.InvalidUescapeDelimiter, loc)
	}
	return escape, nil
}

// concatenate appends the bodies of the string literals that continue the
// current one and returns the joined body and its location.
func (s *TokenStream) concatenate(body string, loc buffer.Location) (string, buffer.Location) {
	var sb *strings.Builder
	for {
		raw := s.rawPeek()
		if raw.err != nil || raw.eof || raw.tok.Kind != lexer.String || !raw.tok.Concatenable {
			break
		}
		tok := s.rawNext().tok
		if sb == nil {
			sb = &strings.Builder{}
			sb.WriteString(body)
		}
		sb.WriteString(stringBody(tok))
		loc = loc.Extend(tok.Loc)
	}
	if sb == nil {
		return body, loc
	}
	return sb.String(), loc
}

// stringBody strips the prefix and quotes of a quoted string literal.
func stringBody(tok lexer.Token) string {
	text := tok.Text
	switch {
	case tok.Str == lexer.UnicodeString:
		return text[3 : len(text)-1]
	case isEPrefixed(text):
		return text[2 : len(text)-1]
	}
	return text[1 : len(text)-1]
}

func isEPrefixed(text string) bool {
	return text != "" && (text[0] == 'e' || text[0] == 'E')
}

func located(err error, loc buffer.Location) *perrors.Error {
	var de *decoder.Error
	if errors.As(err, &de) {
		return de.Located(loc)
	}
	return perrors.NewSyntax(loc)
}
