package stream

import (
	"fmt"

	"github.com/cybertec-postgresql/pgparse/internal/buffer"
	"github.com/cybertec-postgresql/pgparse/internal/keywords"
	"github.com/cybertec-postgresql/pgparse/internal/lexer"
)

// Number is the value of an unsigned numeric literal.
type Number struct {
	Radix lexer.NumberRadix
	// Text is the literal with digit separators removed, radix prefix kept.
	Text string
	// Int holds the value when IsInt is set: the literal is an integer and
	// fits an int4. Otherwise the literal is a NumericConst.
	Int   int32
	IsInt bool
}

func (n Number) String() string {
	if n.IsInt {
		return fmt.Sprintf("%d", n.Int)
	}
	return n.Text
}

// Token is a lexer token with its value decoded.
//
// Text depends on Kind: the normalized name of an identifier, the decoded
// value of a string, the digits of a bit string, the spelling of a user
// operator. Keywords, operators, parameters and numbers use their own fields.
type Token struct {
	Kind    lexer.Kind
	Op      lexer.OperatorKind
	Keyword keywords.Keyword
	Param   int32
	Number  Number
	Bit     lexer.BitStringKind
	Str     lexer.StringKind
	Text    string
	Loc     buffer.Location
}

// IsKeyword reports whether t is the keyword kw.
func (t *Token) IsKeyword(kw keywords.Keyword) bool {
	return t.Kind == lexer.Keyword && t.Keyword == kw
}

// IsOperator reports whether t is the operator op.
func (t *Token) IsOperator(op lexer.OperatorKind) bool {
	return t.Kind == lexer.Operator && t.Op == op
}

func (t *Token) String() string {
	switch t.Kind {
	case lexer.Operator:
		return t.Op.String()
	case lexer.Keyword:
		return t.Keyword.String()
	case lexer.Param:
		return fmt.Sprintf("$%d", t.Param)
	case lexer.Number:
		return t.Number.String()
	case lexer.String, lexer.BitString:
		return fmt.Sprintf("%q", t.Text)
	}
	return t.Text
}
