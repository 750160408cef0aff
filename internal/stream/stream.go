// Package stream turns lexer tokens into decoded values and offers the
// bounded lookahead the grammar is written against.
//
// At most two decoded tokens are buffered. Behind them sits a single raw
// lexer token, which is needed to join string literals that continue on the
// next line and to find a trailing UESCAPE clause.
package stream

import (
	"github.com/cybertec-postgresql/pgparse/internal/buffer"
	"github.com/cybertec-postgresql/pgparse/internal/decoder"
	perrors "github.com/cybertec-postgresql/pgparse/internal/errors"
	"github.com/cybertec-postgresql/pgparse/internal/lexer"
	"github.com/cybertec-postgresql/pgparse/internal/result"
)

// Config holds the server settings that change how literals are read.
type Config struct {
	// StandardConformingStrings makes backslashes ordinary characters in
	// '...' literals. PostgreSQL has defaulted to on since 9.1.
	StandardConformingStrings bool
	// BackslashQuote controls whether \' may stand for a quote.
	BackslashQuote decoder.BackslashQuote
}

// DefaultConfig returns PostgreSQL's default settings.
func DefaultConfig() Config {
	return Config{StandardConformingStrings: true, BackslashQuote: decoder.SafeEncoding}
}

// TokenStream is a cursor over the decoded tokens of one source text. It is
// owned by a single parse and is not safe for concurrent use.
type TokenStream struct {
	lex *lexer.Lexer
	cfg Config

	buf []result.Result[*Token] // len 0 to 2
	raw *rawToken

	warnings []perrors.Warning
}

// New returns a stream over source.
func New(source string, cfg Config) *TokenStream {
	return &TokenStream{
		lex: lexer.New(source, cfg.StandardConformingStrings),
		cfg: cfg,
		buf: make([]result.Result[*Token], 0, 2),
	}
}

// Source returns the text being parsed.
func (s *TokenStream) Source() string { return s.lex.Source() }

// Config returns the settings the stream was created with.
func (s *TokenStream) Config() Config { return s.cfg }

// Peek returns the current token without consuming it. The result is Eof
// at the end of input and Fatal when the token could not be read; both are
// returned again on every call.
func (s *TokenStream) Peek() result.Result[*Token] {
	s.fill()
	return s.buf[0]
}

// Peek2 returns the current and the following token.
func (s *TokenStream) Peek2() (first, second result.Result[*Token]) {
	s.fill()
	return s.buf[0], s.buf[1]
}

// Eof reports whether the input is exhausted.
func (s *TokenStream) Eof() bool { return s.Peek().IsEof() }

// Next consumes the current token. At the end of input, or after an error,
// it has no effect.
func (s *TokenStream) Next() {
	s.fill()
	if !s.buf[0].IsMatched() {
		return
	}
	s.buf[0] = s.buf[1]
	s.buf = s.buf[:1]
}

// Skip consumes n tokens.
func (s *TokenStream) Skip(n int) {
	for range n {
		s.Next()
	}
}

// CurrentLocation returns the location of the current token, the empty
// location at the end of input, or the location of a pending error.
func (s *TokenStream) CurrentLocation() buffer.Location {
	return s.Peek().Loc
}

// Slice returns the source text of the current token.
func (s *TokenStream) Slice() (string, bool) {
	r := s.Peek()
	if !r.IsMatched() {
		return "", false
	}
	return r.Loc.Text(s.Source()), true
}

// ConsumeIf consumes the current token when pred accepts it.
func (s *TokenStream) ConsumeIf(pred func(*Token) bool) result.Result[*Token] {
	return Consume(s, func(tok *Token) (*Token, bool) {
		return tok, pred(tok)
	})
}

// Warnings returns the warnings collected so far.
func (s *TokenStream) Warnings() []perrors.Warning { return s.warnings }

// TakeWarnings returns the collected warnings and forgets them.
func (s *TokenStream) TakeWarnings() []perrors.Warning {
	w := s.warnings
	s.warnings = nil
	return w
}

func (s *TokenStream) warn(w perrors.Warning) {
	s.warnings = append(s.warnings, w)
}

/*
 * Consume maps the current token and consumes it when mapper accepts it.
 *
 * When mapper rejects the token, the result is NoMatch at the token and
 * nothing is consumed. Eof and pending errors are passed through.
 */
func Consume[T any](s *TokenStream, mapper func(*Token) (T, bool)) result.Result[T] {
	return ConsumeWith(s, func(tok *Token) (T, bool, *perrors.Error) {
		v, ok := mapper(tok)
		return v, ok, nil
	})
}

// ConsumeWith is Consume for mappers that can reject a token outright, for
// example a keyword that is recognized but not allowed at this point. The
// token is not consumed when mapper returns an error.
func ConsumeWith[T any](s *TokenStream, mapper func(*Token) (T, bool, *perrors.Error)) result.Result[T] {
	cur := s.Peek()
	if !cur.IsMatched() {
		return result.Into[T](cur)
	}
	v, ok, err := mapper(cur.Value)
	switch {
	case err != nil:
		return result.Err[T](err)
	case !ok:
		return result.NoMatchAt[T](cur.Loc)
	}
	s.Next()
	return result.OfAt(v, cur.Loc)
}

func (s *TokenStream) fill() {
	for len(s.buf) < 2 {
		s.buf = append(s.buf, s.lexNext())
	}
}
