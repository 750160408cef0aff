package grammar

import (
	"slices"

	"github.com/cybertec-postgresql/pgparse/internal/ast"
	"github.com/cybertec-postgresql/pgparse/internal/buffer"
	pc "github.com/cybertec-postgresql/pgparse/internal/combinator"
	"github.com/cybertec-postgresql/pgparse/internal/decoder"
	perrors "github.com/cybertec-postgresql/pgparse/internal/errors"
	"github.com/cybertec-postgresql/pgparse/internal/keywords"
	"github.com/cybertec-postgresql/pgparse/internal/lexer"
	"github.com/cybertec-postgresql/pgparse/internal/result"
	"github.com/cybertec-postgresql/pgparse/internal/stream"
)

var (
	aExpr    pc.Parser[ast.Expr]
	exprList pc.Parser[[]ast.Expr]
)

/*
 * a_expr, from the loosest to the tightest binding operator:
 *
 *	OR
 *	AND
 *	NOT                      right
 *	< > = <= >= <>           non-associative
 *	user-defined operators
 *	+ -
 *	* / %
 *	^
 *	unary + -                right
 *	::
 *
 * Binary operators of one level associate to the left.
 */
func initExpr() {
	var notExpr pc.Parser[ast.Expr]
	var unaryExpr pc.Parser[ast.Expr]

	cast := pc.AndThen(primary(), pc.Optional(pc.Many(pc.AndRight(
		pc.Operator(lexer.Typecast),
		pc.Lazy(func() pc.Parser[*ast.TypeName] { return typename }),
	))), func(arg ast.Expr, types *[]*ast.TypeName) ast.Expr {
		if types != nil {
			for _, t := range *types {
				arg = &ast.TypeCast{Arg: arg, Type: t}
			}
		}
		return arg
	})

	unaryExpr = pc.Alt(
		pc.AndThen(operatorIn(lexer.Plus, lexer.Minus), pc.Lazy(func() pc.Parser[ast.Expr] { return unaryExpr }), negate),
		cast,
	)
	power := binaryLevel(unaryExpr, operatorIn(lexer.Circumflex))
	product := binaryLevel(power, operatorIn(lexer.Mul, lexer.Div, lexer.Percent))
	sum := binaryLevel(product, operatorIn(lexer.Plus, lexer.Minus))
	userOp := binaryLevel(sum, pc.UserOperator())

	comparison := pc.AndThen(userOp, pc.Optional(pc.And(
		operatorIn(lexer.Less, lexer.Greater, lexer.Equals, lexer.LessEquals, lexer.GreaterEquals, lexer.NotEquals),
		userOp,
	)), func(left ast.Expr, right *pc.Pair[string, ast.Expr]) ast.Expr {
		if right == nil {
			return left
		}
		return &ast.BinaryExpr{Op: right.First, Left: left, Right: right.Second}
	})

	notExpr = pc.Alt(
		pc.Map(pc.AndRight(pc.Keyword(keywords.Not), pc.Lazy(func() pc.Parser[ast.Expr] { return notExpr })),
			func(arg ast.Expr) ast.Expr { return &ast.UnaryExpr{Op: "NOT", Arg: arg} }),
		comparison,
	)
	and := binaryLevel(notExpr, pc.Value(pc.Keyword(keywords.And), "AND"))
	aExpr = binaryLevel(and, pc.Value(pc.Keyword(keywords.Or), "OR"))

	exprList = pc.ManySep(aExpr, comma())
}

func binaryLevel(operand pc.Parser[ast.Expr], op pc.Parser[string]) pc.Parser[ast.Expr] {
	rest := pc.Optional(pc.Many(pc.And(op, operand)))
	return pc.AndThen(operand, rest, func(left ast.Expr, rest *[]pc.Pair[string, ast.Expr]) ast.Expr {
		if rest != nil {
			for _, r := range *rest {
				left = &ast.BinaryExpr{Op: r.First, Left: left, Right: r.Second}
			}
		}
		return left
	})
}

func operatorIn(ops ...lexer.OperatorKind) pc.Parser[string] {
	return pc.OperatorWhen(func(op lexer.OperatorKind) (string, bool) {
		return op.String(), slices.Contains(ops, op)
	})
}

// negate folds a minus sign into a numeric constant, as doNegate does.
func negate(op string, arg ast.Expr) ast.Expr {
	if op == "-" {
		switch c := arg.(type) {
		case *ast.IntegerConst:
			return &ast.IntegerConst{Value: -c.Value}
		case *ast.NumericConst:
			if c.Text[0] == '-' {
				return &ast.NumericConst{Text: c.Text[1:]}
			}
			return &ast.NumericConst{Text: "-" + c.Text}
		}
	}
	return &ast.UnaryExpr{Op: op, Arg: arg}
}

/*
 * primary covers c_expr without subqueries:
 *
 *	AexprConst
 *	PARAM
 *	'(' a_expr ')'
 *	func_name '(' [ '*' | expr_list ] ')'
 *	columnref
 *
 * A function name and a column reference start alike. A simple name is a
 * function call when the next token is '('; a qualified one is decided
 * after the dotted name has been read.
 */
func primary() pc.Parser[ast.Expr] {
	call := pc.Peek2When(func(first, second *stream.Token) bool {
		return isName(first) && second != nil && second.IsOperator(lexer.OpenParenthesis)
	}, pc.AndThen(typeFunctionName, funcArgs(), func(name string, args funcArgList) ast.Expr {
		return &ast.FuncCall{Name: []string{name}, Args: args.args, Star: args.star}
	}))

	return pc.Alt(
		constant(),
		pc.Map(pc.Param(), func(n int32) ast.Expr { return &ast.ParamRef{Number: n} }),
		pc.Parens(pc.Lazy(func() pc.Parser[ast.Expr] { return aExpr })),
		typedLiteral(),
		call,
		columnRefOrCall(),
	)
}

// constant parses the literal forms of AexprConst.
func constant() pc.Parser[ast.Expr] {
	number := pc.Map(pc.Number(), func(n stream.Number) ast.Expr {
		if n.IsInt {
			return &ast.IntegerConst{Value: n.Int}
		}
		return &ast.NumericConst{Text: n.Text}
	})
	str := pc.Map(pc.String(), func(s string) ast.Expr { return &ast.StringConst{Value: s} })
	bits := check(pc.BitString(), func(tok *stream.Token, loc buffer.Location) (ast.Expr, *perrors.Error) {
		validate, value := decoder.ValidateBinary, tok.Text
		if tok.Bit == lexer.HexBitString {
			validate = decoder.ValidateHex
		}
		if err := validate(tok.Text); err != nil {
			return nil, located(err, loc)
		}
		if tok.Bit == lexer.HexBitString {
			value = decoder.HexToBinary(value)
		}
		return &ast.BitStringConst{Kind: tok.Bit, Value: value}, nil
	})
	words := pc.KeywordWhen(func(k keywords.Keyword) (ast.Expr, bool) {
		switch k {
		case keywords.True:
			return &ast.BoolConst{Value: true}, true
		case keywords.False:
			return &ast.BoolConst{Value: false}, true
		case keywords.Null:
			return &ast.NullConst{}, true
		}
		return nil, false
	})
	return pc.Alt(number, str, bits, words)
}

// typedLiteral parses a string preceded by its type:
//
//	ConstTypename Sconst
//	func_name Sconst
func typedLiteral() pc.Parser[ast.Expr] {
	literal := func(types pc.Parser[*ast.TypeName]) pc.Parser[ast.Expr] {
		return pc.AndThen(types, pc.String(), func(t *ast.TypeName, s string) ast.Expr {
			return &ast.TypeCast{Arg: &ast.StringConst{Value: s}, Type: t}
		})
	}
	generic := pc.Map(typeFunctionName, func(name string) *ast.TypeName {
		return &ast.TypeName{Names: []string{name}}
	})
	return pc.Alt(
		pc.Peek2When(startsConstTypename, literal(pc.Lazy(func() pc.Parser[*ast.TypeName] { return constTypename }))),
		pc.Peek2When(func(first, second *stream.Token) bool {
			return isName(first) && second != nil && second.Kind == lexer.String
		}, literal(generic)),
	)
}

// startsConstTypename decides whether a built-in type name begins here. The
// type keywords double as column names, so the following token is needed.
func startsConstTypename(first, second *stream.Token) bool {
	if first.Kind != lexer.Keyword || second == nil {
		return false
	}
	switch first.Keyword {
	case keywords.Double:
		return second.IsKeyword(keywords.Precision)
	case keywords.Timestamp, keywords.Time:
		if second.IsKeyword(keywords.With) || second.IsKeyword(keywords.Without) {
			return true
		}
	case keywords.Bit, keywords.Character, keywords.Char, keywords.Nchar:
		if second.IsKeyword(keywords.Varying) {
			return true
		}
	case keywords.Int, keywords.Integer, keywords.Smallint, keywords.Bigint, keywords.Real,
		keywords.Float, keywords.Decimal, keywords.Dec, keywords.Numeric, keywords.Boolean,
		keywords.Varchar, keywords.Interval:
	default:
		return false
	}
	return second.Kind == lexer.String || second.IsOperator(lexer.OpenParenthesis)
}

type funcArgList struct {
	args []ast.Expr
	star bool
}

func funcArgs() pc.Parser[funcArgList] {
	return pc.Parens(pc.Default(pc.Alt(
		pc.Value(pc.Operator(lexer.Mul), funcArgList{star: true}),
		pc.Map(pc.Lazy(func() pc.Parser[[]ast.Expr] { return exprList }), func(args []ast.Expr) funcArgList {
			return funcArgList{args: args}
		}),
	), funcArgList{}))
}

type field struct {
	name string
	star bool
	loc  buffer.Location
}

/*
 * columnref: ColId ( '.' ( ColLabel | '*' ) )*
 *
 * A star may only come last. A dotted name followed by '(' is a qualified
 * function name instead.
 */
func columnRefOrCall() pc.Parser[ast.Expr] {
	name := withLoc(colId, func(s string, loc buffer.Location) field { return field{name: s, loc: loc} })
	label := withLoc(colLabel, func(s string, loc buffer.Location) field { return field{name: s, loc: loc} })
	star := withLoc(pc.Operator(lexer.Mul), func(_ lexer.OperatorKind, loc buffer.Location) field {
		return field{star: true, loc: loc}
	})
	ref := check(pc.ManyPre(name, pc.AndRight(dot(), pc.Alt(label, star))), makeColumnRef)

	return pc.ChainResult(ref, func(r result.Result[*ast.ColumnRef], s *stream.TokenStream) result.Result[ast.Expr] {
		if !r.IsMatched() {
			return result.Into[ast.Expr](r)
		}
		cur := s.Peek()
		if r.Value.Star || !cur.IsMatched() || !cur.Value.IsOperator(lexer.OpenParenthesis) {
			return result.OfAt[ast.Expr](r.Value, r.Loc)
		}
		return pc.Map(funcArgs(), func(args funcArgList) ast.Expr {
			return &ast.FuncCall{Name: r.Value.Fields, Args: args.args, Star: args.star}
		})(s)
	})
}

func makeColumnRef(fields []field, _ buffer.Location) (*ast.ColumnRef, *perrors.Error) {
	ref := &ast.ColumnRef{}
	for i, f := range fields {
		if f.star {
			if i != len(fields)-1 {
				return nil, perrors.New(perrors.ImproperUseOfStar, f.loc)
			}
			ref.Star = true
			continue
		}
		ref.Fields = append(ref.Fields, f.name)
	}
	return ref, nil
}
