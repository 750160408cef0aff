// Package result defines the outcome of one grammar step.
//
// A step either matched a value, did not apply at this position (NoMatch),
// ran into the end of the input (Eof), or found invalid input (Fatal).
// NoMatch and Eof never consume tokens, so callers may try another
// alternative; Fatal ends the parse.
package result

import (
	"fmt"

	"github.com/cybertec-postgresql/pgparse/internal/buffer"
	perrors "github.com/cybertec-postgresql/pgparse/internal/errors"
)

// State is the outcome of a step.
type State uint8

const (
	Matched State = iota
	NoMatch
	Eof
	Fatal
)

func (s State) String() string {
	switch s {
	case Matched:
		return "Matched"
	case NoMatch:
		return "NoMatch"
	case Eof:
		return "Eof"
	case Fatal:
		return "Fatal"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Result is the outcome of a step producing a T.
//
// Value is only meaningful when State is Matched, Err only when it is Fatal.
// Loc is where the step stopped: the matched token for stream lookups, the
// offending token for NoMatch and the end of input for Eof.
type Result[T any] struct {
	State State
	Value T
	Loc   buffer.Location
	Err   *perrors.Error
}

// Of returns a matched result.
func Of[T any](v T) Result[T] {
	return Result[T]{State: Matched, Value: v}
}

// OfAt returns a matched result that remembers where the value came from.
func OfAt[T any](v T, loc buffer.Location) Result[T] {
	return Result[T]{State: Matched, Value: v, Loc: loc}
}

// NoMatchAt returns a NoMatch located at loc.
func NoMatchAt[T any](loc buffer.Location) Result[T] {
	return Result[T]{State: NoMatch, Loc: loc}
}

// EofAt returns an Eof located at loc.
func EofAt[T any](loc buffer.Location) Result[T] {
	return Result[T]{State: Eof, Loc: loc}
}

// Err returns a Fatal result carrying err.
func Err[T any](err *perrors.Error) Result[T] {
	return Result[T]{State: Fatal, Loc: err.Location, Err: err}
}

// Into re-types a result that did not match. It panics when r matched,
// since the value cannot be converted.
func Into[U, T any](r Result[T]) Result[U] {
	if r.State == Matched {
		panic("result: Into called on a matched result")
	}
	return Result[U]{State: r.State, Loc: r.Loc, Err: r.Err}
}

// Map applies f to the value of a matched result.
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	if r.State != Matched {
		return Into[U](r)
	}
	return Result[U]{State: Matched, Value: f(r.Value), Loc: r.Loc}
}

func (r Result[T]) IsMatched() bool { return r.State == Matched }
func (r Result[T]) IsNoMatch() bool { return r.State == NoMatch }
func (r Result[T]) IsEof() bool     { return r.State == Eof }
func (r Result[T]) IsFatal() bool   { return r.State == Fatal }

// Missing reports whether the step did not apply, either because the token
// was wrong or because there was none.
func (r Result[T]) Missing() bool { return r.State == NoMatch || r.State == Eof }

// Required turns NoMatch and Eof into a syntax error at the location they
// carry. Matched and Fatal results pass through unchanged.
func (r Result[T]) Required() Result[T] {
	if r.Missing() {
		return Err[T](perrors.NewSyntax(r.Loc))
	}
	return r
}

// Optional turns NoMatch and Eof into a match of nil.
func Optional[T any](r Result[T]) Result[*T] {
	switch r.State {
	case Matched:
		return OfAt(&r.Value, r.Loc)
	case NoMatch, Eof:
		return OfAt[*T](nil, r.Loc)
	}
	return Into[*T](r)
}

// TryMatch turns NoMatch into a match of nil. Running out of input is a
// syntax error, because the caller needs more tokens either way.
func TryMatch[T any](r Result[T]) Result[*T] {
	switch r.State {
	case Matched:
		return OfAt(&r.Value, r.Loc)
	case NoMatch:
		return OfAt[*T](nil, r.Loc)
	case Eof:
		return Err[*T](perrors.NewSyntax(r.Loc))
	}
	return Into[*T](r)
}

// MaybeMatch turns NoMatch into a match of nil and keeps Eof, so the caller
// can still tell the two apart.
func MaybeMatch[T any](r Result[T]) Result[*T] {
	switch r.State {
	case Matched:
		return OfAt(&r.Value, r.Loc)
	case NoMatch:
		return OfAt[*T](nil, r.Loc)
	}
	return Into[*T](r)
}

// Get returns the value, or the error a caller that requires the value
// would report.
func (r Result[T]) Get() (T, *perrors.Error) {
	r = r.Required()
	return r.Value, r.Err
}

func (r Result[T]) String() string {
	switch r.State {
	case Matched:
		return fmt.Sprintf("Matched(%v)", r.Value)
	case Fatal:
		return fmt.Sprintf("Fatal(%v: %s)", r.Err.Kind, r.Err.Message)
	}
	return fmt.Sprintf("%v(%v)", r.State, r.Loc)
}
