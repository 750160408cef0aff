// Package combinator builds grammar rules out of small parsers over a
// token stream.
//
// A rule either matches and consumes its tokens, or reports NoMatch or Eof
// without consuming anything, or fails. Sequences require every element
// after the first, so once a rule has committed to a production a missing
// element is a syntax error at that point instead of a silent backtrack.
package combinator

import (
	perrors "github.com/cybertec-postgresql/pgparse/internal/errors"
	"github.com/cybertec-postgresql/pgparse/internal/lexer"
	"github.com/cybertec-postgresql/pgparse/internal/result"
	"github.com/cybertec-postgresql/pgparse/internal/stream"
)

// Parser is a grammar rule producing a T.
type Parser[T any] func(*stream.TokenStream) result.Result[T]

// Pair is the value of a two element sequence.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Lazy defers building a rule until it is first run, which lets rules refer
// to themselves.
func Lazy[T any](build func() Parser[T]) Parser[T] {
	var p Parser[T]
	return func(s *stream.TokenStream) result.Result[T] {
		if p == nil {
			p = build()
		}
		return p(s)
	}
}

// Alt tries each alternative in order and returns the first one that
// matched or failed. Eof counts as NoMatch while choosing, so a later
// alternative may still match at the end of input. When none applies the
// result is Eof if any alternative reported it, NoMatch at the current
// token otherwise.
func Alt[T any](alternatives ...Parser[T]) Parser[T] {
	return func(s *stream.TokenStream) result.Result[T] {
		var eof *result.Result[T]
		for _, p := range alternatives {
			r := p(s)
			switch {
			case r.IsMatched(), r.IsFatal():
				return r
			case r.IsEof() && eof == nil:
				eof = &r
			}
		}
		if eof != nil {
			return *eof
		}
		return result.NoMatchAt[T](s.CurrentLocation())
	}
}

// Or is a two way choice in which the right side is also tried when the
// left side ran out of input.
func Or[T any](left, right Parser[T]) Parser[T] {
	return func(s *stream.TokenStream) result.Result[T] {
		r := left(s)
		if r.Missing() {
			return right(s)
		}
		return r
	}
}

// And runs a then b. b is required once a matched.
func And[A, B any](a Parser[A], b Parser[B]) Parser[Pair[A, B]] {
	return func(s *stream.TokenStream) result.Result[Pair[A, B]] {
		ra := a(s)
		if !ra.IsMatched() {
			return result.Into[Pair[A, B]](ra)
		}
		rb := b(s).Required()
		if !rb.IsMatched() {
			return result.Into[Pair[A, B]](rb)
		}
		return result.OfAt(Pair[A, B]{ra.Value, rb.Value}, ra.Loc)
	}
}

// AndThen runs a then b and combines both values with f.
func AndThen[A, B, O any](a Parser[A], b Parser[B], f func(A, B) O) Parser[O] {
	return Map(And(a, b), func(p Pair[A, B]) O { return f(p.First, p.Second) })
}

// AndLeft runs a then b and keeps the value of a.
func AndLeft[A, B any](a Parser[A], b Parser[B]) Parser[A] {
	return Map(And(a, b), func(p Pair[A, B]) A { return p.First })
}

// AndRight runs a then b and keeps the value of b.
func AndRight[A, B any](a Parser[A], b Parser[B]) Parser[B] {
	return Map(And(a, b), func(p Pair[A, B]) B { return p.Second })
}

// Between parses open p close and keeps the value of p.
func Between[O, T, C any](open Parser[O], p Parser[T], close Parser[C]) Parser[T] {
	return AndLeft(AndRight(open, p), close)
}

// Parens parses ( p ).
func Parens[T any](p Parser[T]) Parser[T] {
	return Between(Operator(lexer.OpenParenthesis), p, Operator(lexer.CloseParenthesis))
}

// Brackets parses [ p ].
func Brackets[T any](p Parser[T]) Parser[T] {
	return Between(Operator(lexer.OpenBracket), p, Operator(lexer.CloseBracket))
}

// Many parses p one or more times.
func Many[T any](p Parser[T]) Parser[[]T] {
	return ManyPre(p, p)
}

// ManyPre parses first followed by any number of follow.
func ManyPre[T any](first, follow Parser[T]) Parser[[]T] {
	return func(s *stream.TokenStream) result.Result[[]T] {
		r := first(s)
		if !r.IsMatched() {
			return result.Into[[]T](r)
		}
		elements := []T{r.Value}
		for {
			next := result.Optional(follow(s))
			if !next.IsMatched() {
				return result.Into[[]T](next)
			}
			if next.Value == nil {
				return result.OfAt(elements, r.Loc)
			}
			elements = append(elements, *next.Value)
		}
	}
}

// ManySep parses p ( sep p )*. An element is required after every
// separator.
func ManySep[T, S any](p Parser[T], sep Parser[S]) Parser[[]T] {
	return func(s *stream.TokenStream) result.Result[[]T] {
		r := p(s)
		if !r.IsMatched() {
			return result.Into[[]T](r)
		}
		elements := []T{r.Value}
		for {
			rs := result.Optional(sep(s))
			if !rs.IsMatched() {
				return result.Into[[]T](rs)
			}
			if rs.Value == nil {
				return result.OfAt(elements, r.Loc)
			}
			next := p(s).Required()
			if !next.IsMatched() {
				return result.Into[[]T](next)
			}
			elements = append(elements, next.Value)
		}
	}
}

// Optional matches nil when p does not apply.
func Optional[T any](p Parser[T]) Parser[*T] {
	return func(s *stream.TokenStream) result.Result[*T] { return result.Optional(p(s)) }
}

// Required turns NoMatch and Eof of p into a syntax error.
func Required[T any](p Parser[T]) Parser[T] {
	return func(s *stream.TokenStream) result.Result[T] { return p(s).Required() }
}

// TryMatch matches nil when p does not apply to the current token, and
// fails at the end of input.
func TryMatch[T any](p Parser[T]) Parser[*T] {
	return func(s *stream.TokenStream) result.Result[*T] { return result.TryMatch(p(s)) }
}

// MaybeMatch matches nil when p does not apply to the current token, and
// passes Eof through.
func MaybeMatch[T any](p Parser[T]) Parser[*T] {
	return func(s *stream.TokenStream) result.Result[*T] { return result.MaybeMatch(p(s)) }
}

// Default matches v when p does not apply.
func Default[T any](p Parser[T], v T) Parser[T] {
	return Map(Optional(p), func(r *T) T {
		if r == nil {
			return v
		}
		return *r
	})
}

// Map transforms the value of p.
func Map[T, U any](p Parser[T], f func(T) U) Parser[U] {
	return func(s *stream.TokenStream) result.Result[U] { return result.Map(p(s), f) }
}

// Value replaces the value of p with v.
func Value[T, U any](p Parser[T], v U) Parser[U] {
	return Map(p, func(T) U { return v })
}

// Skip discards the value of p.
func Skip[T any](p Parser[T]) Parser[struct{}] {
	return Value(p, struct{}{})
}

// MapResult transforms the whole outcome of p.
func MapResult[T, U any](p Parser[T], f func(result.Result[T]) result.Result[U]) Parser[U] {
	return func(s *stream.TokenStream) result.Result[U] { return f(p(s)) }
}

// MapErr rewrites the error of a failed p.
func MapErr[T any](p Parser[T], f func(*perrors.Error) *perrors.Error) Parser[T] {
	return func(s *stream.TokenStream) result.Result[T] {
		r := p(s)
		if r.IsFatal() {
			return result.Err[T](f(r.Err))
		}
		return r
	}
}

// Chain continues a match of p with f, which may read further tokens.
func Chain[T, U any](p Parser[T], f func(T, *stream.TokenStream) result.Result[U]) Parser[U] {
	return func(s *stream.TokenStream) result.Result[U] {
		r := p(s)
		if !r.IsMatched() {
			return result.Into[U](r)
		}
		return f(r.Value, s)
	}
}

// ChainResult hands the whole outcome of p to f together with the stream.
func ChainResult[T, U any](p Parser[T], f func(result.Result[T], *stream.TokenStream) result.Result[U]) Parser[U] {
	return func(s *stream.TokenStream) result.Result[U] { return f(p(s), s) }
}

// ChainErr gives f a chance to recover when p did not match.
func ChainErr[T any](p Parser[T], f func(result.Result[T], *stream.TokenStream) result.Result[T]) Parser[T] {
	return func(s *stream.TokenStream) result.Result[T] {
		r := p(s)
		if r.IsMatched() {
			return r
		}
		return f(r, s)
	}
}

// When runs p only if the current token satisfies pred.
func When[T any](pred func(*stream.Token) bool, p Parser[T]) Parser[T] {
	return func(s *stream.TokenStream) result.Result[T] {
		cur := s.Peek()
		if !cur.IsMatched() {
			return result.Into[T](cur)
		}
		if !pred(cur.Value) {
			return result.NoMatchAt[T](cur.Loc)
		}
		return p(s)
	}
}

// Peek2When runs p only if the current and the following token satisfy
// pred. The second token is nil at the end of input.
func Peek2When[T any](pred func(first, second *stream.Token) bool, p Parser[T]) Parser[T] {
	return func(s *stream.TokenStream) result.Result[T] {
		first, second := s.Peek2()
		if !first.IsMatched() {
			return result.Into[T](first)
		}
		var next *stream.Token
		switch {
		case second.IsMatched():
			next = second.Value
		case second.IsFatal():
			return result.Into[T](second)
		}
		if !pred(first.Value, next) {
			return result.NoMatchAt[T](first.Loc)
		}
		return p(s)
	}
}
