package combinator

import (
	"slices"

	perrors "github.com/cybertec-postgresql/pgparse/internal/errors"
	"github.com/cybertec-postgresql/pgparse/internal/keywords"
	"github.com/cybertec-postgresql/pgparse/internal/lexer"
	"github.com/cybertec-postgresql/pgparse/internal/result"
	"github.com/cybertec-postgresql/pgparse/internal/stream"
)

// Keyword matches the keyword kw.
func Keyword(kw keywords.Keyword) Parser[keywords.Keyword] {
	return KeywordIf(func(k keywords.Keyword) bool { return k == kw })
}

// KeywordIn matches any of the listed keywords.
func KeywordIn(kws ...keywords.Keyword) Parser[keywords.Keyword] {
	return KeywordIf(func(k keywords.Keyword) bool { return slices.Contains(kws, k) })
}

// KeywordCategory matches any keyword of category c.
func KeywordCategory(c keywords.Category) Parser[keywords.Keyword] {
	return KeywordIf(func(k keywords.Keyword) bool { return k.Category() == c })
}

// AnyKeyword matches any keyword.
func AnyKeyword() Parser[keywords.Keyword] {
	return KeywordIf(func(keywords.Keyword) bool { return true })
}

// KeywordIf matches a keyword accepted by pred.
func KeywordIf(pred func(keywords.Keyword) bool) Parser[keywords.Keyword] {
	return KeywordWhen(func(k keywords.Keyword) (keywords.Keyword, bool) { return k, pred(k) })
}

// KeywordWhen matches a keyword that f maps to a value.
func KeywordWhen[T any](f func(keywords.Keyword) (T, bool)) Parser[T] {
	return func(s *stream.TokenStream) result.Result[T] {
		return stream.Consume(s, func(tok *stream.Token) (v T, ok bool) {
			if tok.Kind != lexer.Keyword {
				return v, false
			}
			return f(tok.Keyword)
		})
	}
}

// KeywordResult matches a keyword that f maps to a value. f may also reject
// the keyword with an error, in which case nothing is consumed.
func KeywordResult[T any](f func(keywords.Keyword) (T, bool, *perrors.Error)) Parser[T] {
	return func(s *stream.TokenStream) result.Result[T] {
		return stream.ConsumeWith(s, func(tok *stream.Token) (v T, ok bool, err *perrors.Error) {
			if tok.Kind != lexer.Keyword {
				return v, false, nil
			}
			return f(tok.Keyword)
		})
	}
}

// Operator matches the operator op.
func Operator(op lexer.OperatorKind) Parser[lexer.OperatorKind] {
	return OperatorIf(func(o lexer.OperatorKind) bool { return o == op })
}

// OperatorIf matches an operator accepted by pred.
func OperatorIf(pred func(lexer.OperatorKind) bool) Parser[lexer.OperatorKind] {
	return OperatorWhen(func(o lexer.OperatorKind) (lexer.OperatorKind, bool) { return o, pred(o) })
}

// OperatorWhen matches an operator that f maps to a value.
func OperatorWhen[T any](f func(lexer.OperatorKind) (T, bool)) Parser[T] {
	return func(s *stream.TokenStream) result.Result[T] {
		return stream.Consume(s, func(tok *stream.Token) (v T, ok bool) {
			if tok.Kind != lexer.Operator {
				return v, false
			}
			return f(tok.Op)
		})
	}
}

// UserOperator matches an operator that has no fixed kind and returns its
// spelling.
func UserOperator() Parser[string] {
	return text(lexer.UserOperator)
}

// Identifier matches an identifier and returns its normalized name.
func Identifier() Parser[string] {
	return text(lexer.Identifier)
}

// String matches a string literal and returns its decoded value.
func String() Parser[string] {
	return text(lexer.String)
}

// BitString matches a bit string literal. The digits are not validated.
func BitString() Parser[*stream.Token] {
	return token(lexer.BitString)
}

// Number matches a numeric literal.
func Number() Parser[stream.Number] {
	return func(s *stream.TokenStream) result.Result[stream.Number] {
		return stream.Consume(s, func(tok *stream.Token) (stream.Number, bool) {
			return tok.Number, tok.Kind == lexer.Number
		})
	}
}

// Integer matches a numeric literal that is an int4.
func Integer() Parser[int32] {
	return func(s *stream.TokenStream) result.Result[int32] {
		return stream.Consume(s, func(tok *stream.Token) (int32, bool) {
			return tok.Number.Int, tok.Kind == lexer.Number && tok.Number.IsInt
		})
	}
}

// Param matches a positional parameter and returns its number.
func Param() Parser[int32] {
	return func(s *stream.TokenStream) result.Result[int32] {
		return stream.Consume(s, func(tok *stream.Token) (int32, bool) {
			return tok.Param, tok.Kind == lexer.Param
		})
	}
}

// Eof matches the end of input.
func Eof() Parser[struct{}] {
	return func(s *stream.TokenStream) result.Result[struct{}] {
		switch r := s.Peek(); r.State {
		case result.Eof:
			return result.OfAt(struct{}{}, r.Loc)
		case result.Matched:
			return result.NoMatchAt[struct{}](r.Loc)
		default:
			return result.Into[struct{}](r)
		}
	}
}

func text(kind lexer.Kind) Parser[string] {
	return func(s *stream.TokenStream) result.Result[string] {
		return stream.Consume(s, func(tok *stream.Token) (string, bool) {
			return tok.Text, tok.Kind == kind
		})
	}
}

func token(kind lexer.Kind) Parser[*stream.Token] {
	return func(s *stream.TokenStream) result.Result[*stream.Token] {
		return s.ConsumeIf(func(tok *stream.Token) bool { return tok.Kind == kind })
	}
}
