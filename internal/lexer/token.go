package lexer

import (
	"fmt"

	"github.com/cybertec-postgresql/pgparse/internal/buffer"
	"github.com/cybertec-postgresql/pgparse/internal/keywords"
)

// NameDataLen mirrors PostgreSQL's NAMEDATALEN: names are at most
// NameDataLen-1 bytes long.
const NameDataLen = 64

/*
 * Kind is the lexical category of a token.
 *
 * Unlike the bison token numbers of gram.y, a single Kind covers a whole
 * family of tokens; the sub-kind fields of Token say which member it is.
 */
type Kind uint8

const (
	// EOF is returned once the input is exhausted. Its location is empty.
	EOF Kind = iota

	/*
	 * Operator – punctuation and the SQL standard operators.
	 *
	 * Covers the {self} characters of scan.l that the grammar refers to
	 * directly plus the two-character tokens TYPECAST, DOT_DOT,
	 * COLON_EQUALS, EQUALS_GREATER, LESS_EQUALS, GREATER_EQUALS and
	 * NOT_EQUALS. Token.Op holds the member.
	 */
	Operator

	// Keyword – an unquoted identifier found in the keyword table.
	Keyword

	/*
	 * Identifier – IDENT and UIDENT.
	 *
	 * Token.Ident says whether it was bare, "double quoted" or U&"…".
	 * The token keeps the raw text; the token stream normalizes it.
	 */
	Identifier

	// Param – positional parameter $n. Token.Param holds n.
	Param

	// UserOperator – Op in scan.l: any operator without a dedicated token.
	UserOperator

	/*
	 * Number – ICONST or FCONST.
	 *
	 * Token.Radix is the base of the literal. Decimal literals may carry a
	 * fraction and an exponent; whether the value fits an integer is
	 * decided by the token stream.
	 */
	Number

	// BitString – BCONST (B'…') or XCONST (X'…'). Token.Bit says which.
	BitString

	/*
	 * String – SCONST in all its spellings.
	 *
	 * Token.Str is the quoting style. Token.Concatenable is set on plain
	 * '…' strings that were separated from the previous token by white
	 * space containing a newline (and no block comment): such a string
	 * continues the preceding string literal. A continuation of an
	 * extended or national string is lexed with the escape rules of the
	 * string it continues and carries its kind.
	 */
	String
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Operator:
		return "Operator"
	case Keyword:
		return "Keyword"
	case Identifier:
		return "Identifier"
	case Param:
		return "Param"
	case UserOperator:
		return "UserOperator"
	case Number:
		return "Number"
	case BitString:
		return "BitString"
	case String:
		return "String"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// OperatorKind identifies a punctuation token or a fixed operator.
type OperatorKind uint8

const (
	OpenParenthesis OperatorKind = iota + 1
	CloseParenthesis
	Comma
	Semicolon
	OpenBracket
	CloseBracket
	Dot
	DotDot
	Colon
	Typecast
	ColonEquals
	Percent
	Mul
	Plus
	Minus
	Div
	Less
	Equals
	Greater
	Circumflex
	EqualsGreater
	LessEquals
	GreaterEquals
	NotEquals
)

var operatorText = [...]string{
	OpenParenthesis:  "(",
	CloseParenthesis: ")",
	Comma:            ",",
	Semicolon:        ";",
	OpenBracket:      "[",
	CloseBracket:     "]",
	Dot:              ".",
	DotDot:           "..",
	Colon:            ":",
	Typecast:         "::",
	ColonEquals:      ":=",
	Percent:          "%",
	Mul:              "*",
	Plus:             "+",
	Minus:            "-",
	Div:              "/",
	Less:             "<",
	Equals:           "=",
	Greater:          ">",
	Circumflex:       "^",
	EqualsGreater:    "=>",
	LessEquals:       "<=",
	GreaterEquals:    ">=",
	NotEquals:        "<>",
}

func (o OperatorKind) String() string {
	if int(o) < len(operatorText) && operatorText[o] != "" {
		return operatorText[o]
	}
	return fmt.Sprintf("OperatorKind(%d)", o)
}

// IdentifierKind is the spelling of an identifier.
type IdentifierKind uint8

const (
	BasicIdentifier   IdentifierKind = iota // foo
	QuotedIdentifier                        // "foo"
	UnicodeIdentifier                       // U&"foo"
)

func (k IdentifierKind) String() string {
	switch k {
	case BasicIdentifier:
		return "basic"
	case QuotedIdentifier:
		return "quoted"
	case UnicodeIdentifier:
		return "unicode"
	default:
		return fmt.Sprintf("IdentifierKind(%d)", k)
	}
}

// StringKind is the quoting style of a string literal.
type StringKind uint8

const (
	BasicString    StringKind = iota // '…' with standard_conforming_strings on
	ExtendedString                   // E'…', or '…' with standard_conforming_strings off
	NationalString                   // the '…' of N'…', preceded by an NCHAR keyword token
	UnicodeString                    // U&'…'
	DollarString                     // $tag$…$tag$
)

func (k StringKind) String() string {
	switch k {
	case BasicString:
		return "basic"
	case ExtendedString:
		return "extended"
	case NationalString:
		return "national"
	case UnicodeString:
		return "unicode"
	case DollarString:
		return "dollar"
	default:
		return fmt.Sprintf("StringKind(%d)", k)
	}
}

// BitStringKind is the base of a bit string literal.
type BitStringKind uint8

const (
	BinaryBitString BitStringKind = iota // B'…'
	HexBitString                         // X'…'
)

func (k BitStringKind) String() string {
	if k == HexBitString {
		return "hex"
	}
	return "binary"
}

// NumberRadix is the base of a numeric literal.
type NumberRadix uint8

const (
	Binary  NumberRadix = 2
	Octal   NumberRadix = 8
	Decimal NumberRadix = 10
	Hex     NumberRadix = 16
)

func (r NumberRadix) String() string {
	switch r {
	case Binary:
		return "binary"
	case Octal:
		return "octal"
	case Decimal:
		return "decimal"
	case Hex:
		return "hexadecimal"
	default:
		return fmt.Sprintf("NumberRadix(%d)", r)
	}
}

// Token is one lexical token. Only the sub-kind field matching Kind is set.
type Token struct {
	Kind         Kind
	Op           OperatorKind
	Keyword      keywords.Keyword
	Ident        IdentifierKind
	Param        int32
	Radix        NumberRadix
	Bit          BitStringKind
	Str          StringKind
	Concatenable bool
	Loc          buffer.Location
	Text         string // exact source text
}

// IsKeyword reports whether t is the keyword kw.
func (t Token) IsKeyword(kw keywords.Keyword) bool {
	return t.Kind == Keyword && t.Keyword == kw
}

// IsOperator reports whether t is the operator op.
func (t Token) IsOperator(op OperatorKind) bool {
	return t.Kind == Operator && t.Op == op
}

func (t Token) String() string {
	switch t.Kind {
	case Operator:
		return fmt.Sprintf("Operator(%v) %v", t.Op, t.Loc)
	case Keyword:
		return fmt.Sprintf("Keyword(%v) %v", t.Keyword, t.Loc)
	case Identifier:
		return fmt.Sprintf("Identifier(%v %q) %v", t.Ident, t.Text, t.Loc)
	case Param:
		return fmt.Sprintf("Param(%d) %v", t.Param, t.Loc)
	case Number:
		return fmt.Sprintf("Number(%v %q) %v", t.Radix, t.Text, t.Loc)
	case BitString:
		return fmt.Sprintf("BitString(%v %q) %v", t.Bit, t.Text, t.Loc)
	case String:
		return fmt.Sprintf("String(%v %q concat=%t) %v", t.Str, t.Text, t.Concatenable, t.Loc)
	case UserOperator:
		return fmt.Sprintf("UserOperator(%q) %v", t.Text, t.Loc)
	}
	return fmt.Sprintf("%v %v", t.Kind, t.Loc)
}
