// Package grammar is a slice of the PostgreSQL grammar written with the
// combinators: transaction control, a handful of utility statements and a
// simple SELECT with a primary expression subset.
//
// Rule names follow gram.y (stmtmulti, ColId, a_expr, Typename and so on) so
// that behavior can be compared against the server's grammar rule by rule.
package grammar

import (
	"errors"

	"github.com/cybertec-postgresql/pgparse/internal/ast"
	"github.com/cybertec-postgresql/pgparse/internal/buffer"
	pc "github.com/cybertec-postgresql/pgparse/internal/combinator"
	"github.com/cybertec-postgresql/pgparse/internal/decoder"
	perrors "github.com/cybertec-postgresql/pgparse/internal/errors"
	"github.com/cybertec-postgresql/pgparse/internal/lexer"
	"github.com/cybertec-postgresql/pgparse/internal/result"
)

// The rules refer to each other, so they are assigned in init in dependency
// order. Recursive references go through pc.Lazy.
func init() {
	initNames()
	initExpr()
	initTypes()
	initStmts()
}

// StmtMulti parses a script: statements separated by semicolons. Empty
// statements are dropped.
func StmtMulti() pc.Parser[[]ast.Stmt] { return stmtMulti }

// Stmt parses one statement.
func Stmt() pc.Parser[ast.Stmt] { return stmt }

// AExpr parses a value expression.
func AExpr() pc.Parser[ast.Expr] { return aExpr }

// Typename parses a type reference.
func Typename() pc.Parser[*ast.TypeName] { return typename }

// ColId parses a name usable as a column or table name.
func ColId() pc.Parser[string] { return colId }

// ColLabel parses a name usable as a column label after AS.
func ColLabel() pc.Parser[string] { return colLabel }

// BareColLabel parses a name usable as a column label without AS.
func BareColLabel() pc.Parser[string] { return bareColLabel }

// TypeFunctionName parses a name usable as a type or function name.
func TypeFunctionName() pc.Parser[string] { return typeFunctionName }

// QualifiedName parses catalog.schema.relation with optional qualifiers.
func QualifiedName() pc.Parser[*ast.RangeVar] { return qualifiedName }

// check runs f on the value of p. An error from f fails the rule.
func check[T, U any](p pc.Parser[T], f func(T, buffer.Location) (U, *perrors.Error)) pc.Parser[U] {
	return pc.MapResult(p, func(r result.Result[T]) result.Result[U] {
		if !r.IsMatched() {
			return result.Into[U](r)
		}
		v, err := f(r.Value, r.Loc)
		if err != nil {
			return result.Err[U](err)
		}
		return result.OfAt(v, r.Loc)
	})
}

// withLoc pairs the value of p with the location it was read from.
func withLoc[T, U any](p pc.Parser[T], f func(T, buffer.Location) U) pc.Parser[U] {
	return check(p, func(v T, loc buffer.Location) (U, *perrors.Error) {
		return f(v, loc), nil
	})
}

func comma() pc.Parser[lexer.OperatorKind] { return pc.Operator(lexer.Comma) }

func dot() pc.Parser[lexer.OperatorKind] { return pc.Operator(lexer.Dot) }

// located places a decoder error at loc.
func located(err error, loc buffer.Location) *perrors.Error {
	var de *decoder.Error
	if errors.As(err, &de) {
		return de.Located(loc)
	}
	return perrors.NewSyntax(loc)
}
