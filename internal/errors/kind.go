package errors

import (
	"fmt"

	"github.com/jackc/pgerrcode"
)

// Kind identifies a parse failure. Every kind maps to a PostgreSQL message,
// SQLSTATE and optional hint and detail.
type Kind uint16

// Scanner errors.
const (
	UnexpectedChar Kind = iota + 1
	UnterminatedBlockComment
	OperatorTooLong
	ParameterNumberTooLarge
	TrailingJunkAfterParameter
	InvalidInteger
	TrailingJunkAfterNumericLiteral
	UnterminatedBitString
	UnterminatedHexString
	UnterminatedQuotedString
	UnterminatedDollarQuotedString
	EmptyDelimitedIdentifier
	UnterminatedQuotedIdentifier
	UnsafeUnicodeString
)

// String decoder errors.
const (
	InvalidUTF8 Kind = iota + 100
	InvalidUnicodeValue
	InvalidUnicodeSurrogatePair
	InvalidUnicodeEscape
	NonstandardUseOfBackslashQuote
	InvalidBinaryDigit
	InvalidHexDigit
)

// Grammar errors.
const (
	Syntax Kind = iota + 200
	UescapeDelimiterMissing
	InvalidUescapeDelimiter
	FloatPrecisionUnderflow
	FloatPrecisionOverflow
	ImproperQualifiedName
	ImproperUseOfStar
	InvalidTypeModifier
)

type entry struct {
	name   string
	state  string
	format string
	hint   string
	detail string
}

var catalog = map[Kind]entry{
	UnexpectedChar:                  {"UnexpectedChar", pgerrcode.SyntaxError, "unexpected character %q", "", ""},
	UnterminatedBlockComment:        {"UnterminatedBlockComment", pgerrcode.SyntaxError, "unterminated /* comment", "", ""},
	OperatorTooLong:                 {"OperatorTooLong", pgerrcode.SyntaxError, "operator too long", "", ""},
	ParameterNumberTooLarge:         {"ParameterNumberTooLarge", pgerrcode.SyntaxError, "parameter number too large", "", ""},
	TrailingJunkAfterParameter:      {"TrailingJunkAfterParameter", pgerrcode.SyntaxError, "trailing junk after parameter", "", ""},
	InvalidInteger:                  {"InvalidInteger", pgerrcode.SyntaxError, "invalid %s integer", "", ""},
	TrailingJunkAfterNumericLiteral: {"TrailingJunkAfterNumericLiteral", pgerrcode.SyntaxError, "trailing junk after numeric literal", "", ""},
	UnterminatedBitString:           {"UnterminatedBitString", pgerrcode.SyntaxError, "unterminated bit string literal", "", ""},
	UnterminatedHexString:           {"UnterminatedHexString", pgerrcode.SyntaxError, "unterminated hexadecimal string literal", "", ""},
	UnterminatedQuotedString:        {"UnterminatedQuotedString", pgerrcode.SyntaxError, "unterminated quoted string", "", ""},
	UnterminatedDollarQuotedString:  {"UnterminatedDollarQuotedString", pgerrcode.SyntaxError, "unterminated dollar-quoted string", "", ""},
	EmptyDelimitedIdentifier:        {"EmptyDelimitedIdentifier", pgerrcode.SyntaxError, "zero-length delimited identifier", "", ""},
	UnterminatedQuotedIdentifier:    {"UnterminatedQuotedIdentifier", pgerrcode.SyntaxError, "unterminated quoted identifier", "", ""},
	UnsafeUnicodeString: {"UnsafeUnicodeString", pgerrcode.FeatureNotSupported,
		"unsafe use of string constant with Unicode escapes", "",
		`String constants with Unicode escapes cannot be used when "standard_conforming_strings" is off.`},

	InvalidUTF8:                 {"InvalidUTF8", pgerrcode.CharacterNotInRepertoire, `invalid byte sequence for encoding "UTF8"`, "", ""},
	InvalidUnicodeValue:         {"InvalidUnicodeValue", pgerrcode.SyntaxError, "invalid Unicode escape value", "", ""},
	InvalidUnicodeSurrogatePair: {"InvalidUnicodeSurrogatePair", pgerrcode.SyntaxError, "invalid Unicode surrogate pair", "", ""},
	InvalidUnicodeEscape: {"InvalidUnicodeEscape", pgerrcode.InvalidEscapeSequence,
		"invalid Unicode escape", `Unicode escapes must be \XXXX or \+XXXXXX.`, ""},
	NonstandardUseOfBackslashQuote: {"NonstandardUseOfBackslashQuote", pgerrcode.NonstandardUseOfEscapeCharacter,
		`unsafe use of \' in a string literal`, `Use '' to write quotes in strings. \' is insecure in client-only encodings.`, ""},
	InvalidBinaryDigit: {"InvalidBinaryDigit", pgerrcode.InvalidTextRepresentation, `"%c" is not a valid binary digit`, "", ""},
	InvalidHexDigit:    {"InvalidHexDigit", pgerrcode.InvalidTextRepresentation, `"%c" is not a valid hexadecimal digit`, "", ""},

	Syntax:                  {"Syntax", pgerrcode.SyntaxError, "syntax error", "", ""},
	UescapeDelimiterMissing: {"UescapeDelimiterMissing", pgerrcode.SyntaxError, "UESCAPE must be followed by a simple string literal", "", ""},
	InvalidUescapeDelimiter: {"InvalidUescapeDelimiter", pgerrcode.SyntaxError, "invalid Unicode escape character", "", ""},
	FloatPrecisionUnderflow: {"FloatPrecisionUnderflow", pgerrcode.InvalidParameterValue, "precision for type float must be at least 1 bit", "", ""},
	FloatPrecisionOverflow:  {"FloatPrecisionOverflow", pgerrcode.InvalidParameterValue, "precision for type float must be less than 54 bits", "", ""},
	ImproperQualifiedName:   {"ImproperQualifiedName", pgerrcode.SyntaxError, "improper qualified name (too many dotted names): %s", "", ""},
	ImproperUseOfStar:       {"ImproperUseOfStar", pgerrcode.SyntaxError, `improper use of "*"`, "", ""},
	InvalidTypeModifier:     {"InvalidTypeModifier", pgerrcode.InvalidParameterValue, "%s", "", ""},
}

// SQLState returns the SQLSTATE code of k.
func (k Kind) SQLState() string { return catalog[k].state }

// Hint returns the default hint of k, if any.
func (k Kind) Hint() string { return catalog[k].hint }

// Detail returns the default detail of k, if any.
func (k Kind) Detail() string { return catalog[k].detail }

// message formats the message of k with args.
func (k Kind) message(args ...any) string {
	e, ok := catalog[k]
	if !ok {
		return k.String()
	}
	if len(args) == 0 {
		return e.format
	}
	return fmt.Sprintf(e.format, args...)
}

// scannerReported reports whether PostgreSQL appends the offending token
// ("at or near ...") to messages of this kind.
func (k Kind) scannerReported() bool {
	return k < InvalidUTF8 || k == Syntax
}

func (k Kind) String() string {
	if e, ok := catalog[k]; ok {
		return e.name
	}
	return fmt.Sprintf("Kind(%d)", k)
}
