package grammar

import (
	"github.com/cybertec-postgresql/pgparse/internal/ast"
	"github.com/cybertec-postgresql/pgparse/internal/buffer"
	pc "github.com/cybertec-postgresql/pgparse/internal/combinator"
	perrors "github.com/cybertec-postgresql/pgparse/internal/errors"
	"github.com/cybertec-postgresql/pgparse/internal/keywords"
	"github.com/cybertec-postgresql/pgparse/internal/lexer"
	"github.com/cybertec-postgresql/pgparse/internal/stream"
)

var (
	typename      pc.Parser[*ast.TypeName]
	constTypename pc.Parser[*ast.TypeName]
)

/*
 * Typename:      SimpleTypename opt_array_bounds
 * SimpleTypename: Numeric | Bit | Character | ConstDatetime | GenericType
 * ConstTypename:  Numeric | ConstBit | ConstCharacter | ConstDatetime
 *
 * The Const forms precede a string literal. Without an explicit length they
 * leave the length unrestricted, where a plain CHAR or BIT means length 1.
 */
func initTypes() {
	typeModifiers := pc.Parens(exprList)

	// GenericType: type_function_name attrs? opt_type_modifiers
	generic := pc.AndThen(
		pc.ManyPre(typeFunctionName, pc.AndRight(dot(), colLabel)),
		pc.Optional(typeModifiers),
		func(names []string, mods *[]ast.Expr) *ast.TypeName {
			t := &ast.TypeName{Names: names}
			if mods != nil {
				t.Modifiers = *mods
			}
			return t
		})

	bound := pc.Between(pc.Operator(lexer.OpenBracket), pc.Default(pc.Integer(), -1), pc.Operator(lexer.CloseBracket))

	typename = pc.AndThen(
		pc.Alt(numericType(), bitType(false), characterType(false), datetimeType(), generic),
		pc.Optional(pc.Many(bound)),
		func(t *ast.TypeName, bounds *[]int32) *ast.TypeName {
			if bounds != nil {
				t.ArrayBounds = *bounds
			}
			return t
		})
	constTypename = pc.Alt(numericType(), bitType(true), characterType(true), datetimeType())
}

func numericType() pc.Parser[*ast.TypeName] {
	simple := pc.KeywordWhen(func(k keywords.Keyword) (*ast.TypeName, bool) {
		switch k {
		case keywords.Int, keywords.Integer:
			return ast.SystemType("int4"), true
		case keywords.Smallint:
			return ast.SystemType("int2"), true
		case keywords.Bigint:
			return ast.SystemType("int8"), true
		case keywords.Real:
			return ast.SystemType("float4"), true
		case keywords.Boolean:
			return ast.SystemType("bool"), true
		}
		return nil, false
	})

	// FLOAT [ '(' Iconst ')' ]
	precision := check(pc.Integer(), func(p int32, loc buffer.Location) (*ast.TypeName, *perrors.Error) {
		switch {
		case p < 1:
			return nil, perrors.New(perrors.FloatPrecisionUnderflow, loc)
		case p <= 24:
			return ast.SystemType("float4"), nil
		case p <= 53:
			return ast.SystemType("float8"), nil
		}
		return nil, perrors.New(perrors.FloatPrecisionOverflow, loc)
	})
	float := pc.AndRight(pc.Keyword(keywords.Float), pc.Map(pc.Optional(pc.Parens(precision)),
		func(t **ast.TypeName) *ast.TypeName {
			if t == nil {
				return ast.SystemType("float8")
			}
			return *t
		}))

	double := pc.Peek2When(func(first, second *stream.Token) bool {
		return first.IsKeyword(keywords.Double) && second != nil && second.IsKeyword(keywords.Precision)
	}, pc.Map(pc.And(pc.Keyword(keywords.Double), pc.Keyword(keywords.Precision)),
		func(pc.Pair[keywords.Keyword, keywords.Keyword]) *ast.TypeName { return ast.SystemType("float8") }))

	decimal := pc.AndThen(
		pc.KeywordIn(keywords.Decimal, keywords.Dec, keywords.Numeric),
		pc.Optional(pc.Parens(exprList)),
		func(_ keywords.Keyword, mods *[]ast.Expr) *ast.TypeName {
			t := ast.SystemType("numeric")
			if mods != nil {
				t.Modifiers = *mods
			}
			return t
		})

	return pc.Alt(simple, float, double, decimal)
}

// BIT [ VARYING ] [ '(' expr_list ')' ]
func bitType(constant bool) pc.Parser[*ast.TypeName] {
	varying := pc.AndThen(pc.Keyword(keywords.Bit), pc.Optional(pc.Keyword(keywords.Varying)),
		func(_ keywords.Keyword, v *keywords.Keyword) bool { return v != nil })

	return pc.AndThen(varying, pc.Optional(pc.Parens(exprList)), func(varying bool, mods *[]ast.Expr) *ast.TypeName {
		t := ast.SystemType("bit")
		if varying {
			t = ast.SystemType("varbit")
		}
		switch {
		case mods != nil:
			t.Modifiers = *mods
		case !varying && !constant:
			t.Modifiers = []ast.Expr{&ast.IntegerConst{Value: 1}}
		}
		return t
	})
}

type length struct {
	n   int32
	loc buffer.Location
}

/*
 * Character:
 *	  ( CHARACTER | CHAR | NCHAR ) [ VARYING ] [ '(' Iconst ')' ]
 *	| VARCHAR [ '(' Iconst ')' ]
 */
func characterType(constant bool) pc.Parser[*ast.TypeName] {
	varying := pc.Alt(
		pc.AndThen(pc.KeywordIn(keywords.Character, keywords.Char, keywords.Nchar), pc.Optional(pc.Keyword(keywords.Varying)),
			func(_ keywords.Keyword, v *keywords.Keyword) bool { return v != nil }),
		pc.Value(pc.Keyword(keywords.Varchar), true),
	)
	size := pc.Parens(withLoc(pc.Integer(), func(n int32, loc buffer.Location) length { return length{n, loc} }))

	return check(pc.And(varying, pc.Optional(size)),
		func(p pc.Pair[bool, *length], _ buffer.Location) (*ast.TypeName, *perrors.Error) {
			name, display := "bpchar", "char"
			if p.First {
				name, display = "varchar", "varchar"
			}
			t := ast.SystemType(name)
			switch n := p.Second; {
			case n != nil && n.n < 1:
				return nil, perrors.New(perrors.InvalidTypeModifier, n.loc,
					"length for type "+display+" must be at least 1")
			case n != nil:
				t.Modifiers = []ast.Expr{&ast.IntegerConst{Value: n.n}}
			case !p.First && !constant:
				t.Modifiers = []ast.Expr{&ast.IntegerConst{Value: 1}}
			}
			return t, nil
		})
}

/*
 * ConstDatetime:
 *	  ( TIMESTAMP | TIME ) [ '(' Iconst ')' ] [ WITH TIME ZONE | WITHOUT TIME ZONE ]
 *	| INTERVAL [ '(' Iconst ')' ]
 */
func datetimeType() pc.Parser[*ast.TypeName] {
	precision := pc.Optional(pc.Parens(pc.Integer()))
	timeZone := pc.Default(pc.Alt(
		pc.Value(pc.And(pc.Keyword(keywords.With), pc.And(pc.Keyword(keywords.Time), pc.Keyword(keywords.Zone))), true),
		pc.Value(pc.And(pc.Keyword(keywords.Without), pc.And(pc.Keyword(keywords.Time), pc.Keyword(keywords.Zone))), false),
	), false)

	withPrecision := func(name string, p *int32) *ast.TypeName {
		t := ast.SystemType(name)
		if p != nil {
			t.Modifiers = []ast.Expr{&ast.IntegerConst{Value: *p}}
		}
		return t
	}

	clock := pc.AndThen(
		pc.And(pc.KeywordIn(keywords.Timestamp, keywords.Time), precision),
		timeZone,
		func(head pc.Pair[keywords.Keyword, *int32], tz bool) *ast.TypeName {
			name := "time"
			if head.First == keywords.Timestamp {
				name = "timestamp"
			}
			if tz {
				name += "tz"
			}
			return withPrecision(name, head.Second)
		})
	interval := pc.AndThen(pc.Keyword(keywords.Interval), precision, func(_ keywords.Keyword, p *int32) *ast.TypeName {
		return withPrecision("interval", p)
	})
	return pc.Alt(clock, interval)
}
