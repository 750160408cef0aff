package combinator

import (
	perrors "github.com/cybertec-postgresql/pgparse/internal/errors"
	"github.com/cybertec-postgresql/pgparse/internal/stream"
)

// Parse runs rule over the whole of source. Input left over after the rule
// is a syntax error at the first unread token. On failure the value is the
// zero T; warnings collected up to the failure are returned either way.
func Parse[T any](source string, cfg stream.Config, rule Parser[T]) (T, []perrors.Warning, error) {
	s := stream.New(source, cfg)
	v, err := Run(s, rule)
	if err != nil {
		var zero T
		return zero, s.Warnings(), err
	}
	return v, s.Warnings(), nil
}

// Run applies rule to s and requires it to consume all of the input.
func Run[T any](s *stream.TokenStream, rule Parser[T]) (T, *perrors.Error) {
	r := rule(s).Required()
	if !r.IsMatched() {
		var zero T
		return zero, r.Err
	}
	if end := Eof()(s).Required(); !end.IsMatched() {
		var zero T
		return zero, end.Err
	}
	return r.Value, nil
}
