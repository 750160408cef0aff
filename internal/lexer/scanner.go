/*
 * Package lexer turns SQL source text into tokens.
 *
 * The rules follow the core PostgreSQL scanner, src/backend/parser/scan.l.
 * Flex picks the longest match and, between equally long matches, the rule
 * that comes first in the file. The Go code gets the same effect by ordering
 * the cases of Next() the way scan.l orders its rules:
 *
 *	white space → comments → punctuation → "." ":" "$" → quoted strings →
 *	prefixed strings (B'…' X'…' E'…' N'…' U&'…' U&"…") → numbers →
 *	operators → identifiers and keywords
 *
 * The lexer does not decode literals. It reports the raw text of every token
 * together with its sub-kind; unescaping, string continuation and identifier
 * normalization happen one layer up, in the token stream.
 *
 * Usage:
 *
 *	lx := lexer.New(src, true)
 *	for {
 *	    tok, err := lx.Next()
 *	    if err != nil { … }
 *	    if tok.Kind == lexer.EOF { break }
 *	}
 */
package lexer

import (
	"strconv"
	"strings"

	"github.com/cybertec-postgresql/pgparse/internal/buffer"
	perrors "github.com/cybertec-postgresql/pgparse/internal/errors"
	"github.com/cybertec-postgresql/pgparse/internal/keywords"
)

// Lexer produces tokens from a source buffer on demand.
type Lexer struct {
	buf *buffer.Buffer

	// standard_conforming_strings: decides whether '…' is a basic or an
	// extended string, and whether U&'…' is allowed at all.
	scs bool

	// national is set after the N of N'…' has been returned as NCHAR.
	national bool

	// afterString is set while the last token returned was a string
	// literal of kind lastString.
	afterString bool
	lastString  StringKind
}

// New returns a lexer over src.
func New(src string, standardConformingStrings bool) *Lexer {
	return &Lexer{buf: buffer.New(src), scs: standardConformingStrings}
}

// Buffer exposes the underlying buffer, mainly for location lookups.
func (l *Lexer) Buffer() *buffer.Buffer { return l.buf }

// Source returns the text being scanned.
func (l *Lexer) Source() string { return l.buf.Source() }

// StandardConformingStrings reports the setting the lexer was created with.
func (l *Lexer) StandardConformingStrings() bool { return l.scs }

/*
 * Next returns the next token.
 *
 * At the end of input it returns a token of kind EOF with an empty location
 * at the end of the source; calling Next again keeps returning it. Errors are
 * always *errors.Error. After an error the lexer is positioned past the bad
 * input and can be asked for more tokens, although callers normally stop.
 */
func (l *Lexer) Next() (Token, error) {
	tok, err := l.scan()
	l.afterString = err == nil && tok.Kind == String
	l.lastString = tok.Str
	return tok, err
}

func (l *Lexer) scan() (Token, error) {
	concatenable, err := l.skipTrivia()
	if err != nil {
		return Token{}, err
	}

	b := l.buf
	start := b.Index()
	national := l.national
	l.national = false

	c, ok := b.ConsumeOne()
	if !ok {
		return Token{Kind: EOF, Loc: b.CurrentLocation()}, nil
	}

	switch c {
	// ---------------------------------------------------------------------
	// Punctuation: the {self} characters the grammar names directly.
	// ---------------------------------------------------------------------
	case '(':
		return l.operator(start, OpenParenthesis), nil
	case ')':
		return l.operator(start, CloseParenthesis), nil
	case ',':
		return l.operator(start, Comma), nil
	case ';':
		return l.operator(start, Semicolon), nil
	case '[':
		return l.operator(start, OpenBracket), nil
	case ']':
		return l.operator(start, CloseBracket), nil

	/*
	 * "." – DOT_DOT (scan.l line 843) or the start of a {numeric} such as
	 * .5 (line 1011). A lone "." is self.
	 */
	case '.':
		if b.ConsumeByte('.') {
			return l.operator(start, DotDot), nil
		}
		if next, ok := b.Peek(); ok && isDigit(next) {
			return l.fraction(start)
		}
		return l.operator(start, Dot), nil

	// "::" TYPECAST, ":=" COLON_EQUALS, otherwise self.
	case ':':
		switch {
		case b.ConsumeByte(':'):
			return l.operator(start, Typecast), nil
		case b.ConsumeByte('='):
			return l.operator(start, ColonEquals), nil
		}
		return l.operator(start, Colon), nil

	/*
	 * "$" – {param} (scan.l line 987) when followed by a digit, otherwise
	 * the start of a dollar-quoted string {dolqdelim} (line 783).
	 */
	case '$':
		next, ok := b.Peek()
		switch {
		case ok && isDigit(next):
			return l.param(start)
		case ok && (next == '$' || isIdentStart(next)):
			return l.dollarString(start)
		}
		return Token{}, l.errorFrom(perrors.UnexpectedChar, start, rune('$'))

	/*
	 * {xqstart} – a plain quoted string. Its flavour depends on
	 * standard_conforming_strings (scan.l line 607), and a string directly
	 * after N is the body of a national character literal. A continuation
	 * line goes back to the state of the string it continues ({xqs}), so
	 * it keeps the escape rules of an extended or national string.
	 */
	case '\'':
		kind := ExtendedString
		switch {
		case national:
			kind = NationalString
			concatenable = false
		case concatenable && l.afterString &&
			(l.lastString == ExtendedString || l.lastString == NationalString):
			kind = l.lastString
		case l.scs:
			kind = BasicString
		}
		return l.quotedString(start, kind, concatenable)

	// {xdstart} – "quoted identifier".
	case '"':
		return l.quotedIdent(start, QuotedIdentifier)

	// {xbstart} B'…' and {xhstart} X'…'.
	case 'b', 'B':
		if b.ConsumeByte('\'') {
			return l.bitString(start, BinaryBitString)
		}
	case 'x', 'X':
		if b.ConsumeByte('\'') {
			return l.bitString(start, HexBitString)
		}

	// {xestart} E'…' – never continues a previous string.
	case 'e', 'E':
		if b.ConsumeByte('\'') {
			return l.extendedString(start)
		}

	/*
	 * {xnstart} – N'…'. Like scan.l (line 570) only the N is consumed and
	 * returned as the NCHAR keyword; the quote is lexed on the next call.
	 */
	case 'n', 'N':
		if next, ok := b.Peek(); ok && next == '\'' {
			l.national = true
			return Token{
				Kind:    Keyword,
				Keyword: keywords.Nchar,
				Loc:     b.LocationFrom(start),
				Text:    b.Slice(start),
			}, nil
		}

	/*
	 * {xusstart} U&'…' and {xuistart} U&"…". When neither quote follows,
	 * the "&" is pushed back and U is an ordinary identifier.
	 */
	case 'u', 'U':
		if b.ConsumeByte('&') {
			next, ok := b.Peek()
			switch {
			case ok && next == '\'':
				b.ConsumeOne()
				tok, err := l.quotedString(start, UnicodeString, false)
				if err == nil && !l.scs {
					return Token{}, l.errorFrom(perrors.UnsafeUnicodeString, start)
				}
				return tok, err
			case ok && next == '"':
				b.ConsumeOne()
				return l.quotedIdent(start, UnicodeIdentifier)
			}
			b.PushBack()
		}
	}

	switch {
	case isDigit(c):
		return l.number(start, c)
	case isOpChar(c):
		return l.userOperator(start)
	case isIdentStart(c):
		return l.identifier(start), nil
	}
	return Token{}, l.errorFrom(perrors.UnexpectedChar, start, rune(c))
}

// All scans the remaining input and returns every token before EOF.
func (l *Lexer) All() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return tokens, err
		}
		if tok.Kind == EOF {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

// Tokenize scans src completely.
func Tokenize(src string, standardConformingStrings bool) ([]Token, error) {
	return New(src, standardConformingStrings).All()
}

// ---------------------------------------------------------------------------
// Trivia
// ---------------------------------------------------------------------------

/*
 * skipTrivia consumes white space and comments.
 *
 * It reports whether what it skipped may separate two parts of one string
 * literal. scan.l only accepts {whitespace_with_newline}: at least one
 * newline, line comments allowed, block comments not (lines 235–250).
 */
func (l *Lexer) skipTrivia() (concatenable bool, err error) {
	b := l.buf
	sawNewline, sawBlock := false, false
	for {
		c, ok := b.Peek()
		if !ok {
			break
		}
		switch {
		case isSpace(c):
			b.ConsumeOne()
			if is(c, classNewline) {
				sawNewline = true
			}
		case c == '-' && l.peekIs(1, '-'):
			// {comment}: up to, not including, the end of the line.
			b.ConsumeWhile(func(c byte) bool { return !is(c, classNewline) })
		case c == '/' && l.peekIs(1, '*'):
			if err := l.blockComment(); err != nil {
				return false, err
			}
			sawBlock = true
		default:
			return sawNewline && !sawBlock, nil
		}
	}
	return sawNewline && !sawBlock, nil
}

/*
 * blockComment consumes a possibly nested C-style comment.
 *
 * scan.l tracks the depth in xcdepth (lines 468–497); an unterminated
 * comment is reported from its opening "/*" to the end of input.
 */
func (l *Lexer) blockComment() error {
	b := l.buf
	start := b.Index()
	b.Advance(2)
	depth := 1
	for depth > 0 {
		switch {
		case b.ConsumeString("/*"):
			depth++
		case b.ConsumeString("*/"):
			depth--
		default:
			if _, ok := b.ConsumeOne(); !ok {
				return l.errorFrom(perrors.UnterminatedBlockComment, start)
			}
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Strings and identifiers
// ---------------------------------------------------------------------------

/*
 * quotedString consumes the body of a '…' literal whose opening quote has
 * been read. A doubled quote stands for one quote. In extended strings a
 * backslash protects the next byte, so \' does not end the literal.
 */
func (l *Lexer) quotedString(start int, kind StringKind, concatenable bool) (Token, error) {
	escapes := kind == ExtendedString || kind == NationalString && !l.scs
	if !l.skipQuoted('\'', escapes) {
		return Token{}, l.errorFrom(perrors.UnterminatedQuotedString, start)
	}
	return l.token(start, Token{Kind: String, Str: kind, Concatenable: concatenable}), nil
}

func (l *Lexer) extendedString(start int) (Token, error) {
	if !l.skipQuoted('\'', true) {
		return Token{}, l.errorFrom(perrors.UnterminatedQuotedString, start)
	}
	return l.token(start, Token{Kind: String, Str: ExtendedString}), nil
}

// bitString consumes B'…' or X'…'. The digits are checked later.
func (l *Lexer) bitString(start int, kind BitStringKind) (Token, error) {
	if !l.skipQuoted('\'', false) {
		if kind == HexBitString {
			return Token{}, l.errorFrom(perrors.UnterminatedHexString, start)
		}
		return Token{}, l.errorFrom(perrors.UnterminatedBitString, start)
	}
	return l.token(start, Token{Kind: BitString, Bit: kind}), nil
}

/*
 * quotedIdent consumes "…" or U&"…" after the opening quote. scan.l rejects
 * an empty body (line 734, "zero-length delimited identifier").
 */
func (l *Lexer) quotedIdent(start int, kind IdentifierKind) (Token, error) {
	bodyStart := l.buf.Index()
	if !l.skipQuoted('"', false) {
		return Token{}, l.errorFrom(perrors.UnterminatedQuotedIdentifier, start)
	}
	if l.buf.Index()-bodyStart == 1 {
		return Token{}, l.errorFrom(perrors.EmptyDelimitedIdentifier, start)
	}
	return l.token(start, Token{Kind: Identifier, Ident: kind}), nil
}

// skipQuoted consumes up to and including the closing quote. It returns
// false when the input ends first.
func (l *Lexer) skipQuoted(quote byte, backslashEscapes bool) bool {
	b := l.buf
	for {
		c, ok := b.ConsumeOne()
		switch {
		case !ok:
			return false
		case c == quote:
			if !b.ConsumeByte(quote) {
				return true
			}
		case c == '\\' && backslashEscapes:
			b.ConsumeOne()
		}
	}
}

/*
 * dollarString consumes $tag$…$tag$.
 *
 * The tag follows the identifier rules minus "$" ({dolq_start}
 * {dolq_cont}*). When the "$" does not open a valid tag, scan.l's
 * {dolqfailed} rule returns the "$" alone; since no grammar rule accepts it,
 * it is reported as an unexpected character and scanning resumes right after
 * it.
 */
func (l *Lexer) dollarString(start int) (Token, error) {
	b := l.buf
	if !b.ConsumeByte('$') {
		b.ConsumeOne()
		b.ConsumeWhile(isDolqCont)
		if !b.ConsumeByte('$') {
			b.Seek(start + 1)
			return Token{}, l.errorFrom(perrors.UnexpectedChar, start, rune('$'))
		}
	}
	delim := b.Slice(start)
	end := strings.Index(b.Remainder(), delim)
	if end < 0 {
		b.Advance(len(b.Remainder()))
		return Token{}, l.errorFrom(perrors.UnterminatedDollarQuotedString, start)
	}
	b.Advance(end + len(delim))
	return l.token(start, Token{Kind: String, Str: DollarString}), nil
}

/*
 * identifier consumes {identifier} and looks it up in the keyword table.
 * Case folding and truncation to NAMEDATALEN are left to the token stream,
 * which also has to apply them to quoted identifiers.
 */
func (l *Lexer) identifier(start int) Token {
	l.buf.ConsumeWhile(isIdentCont)
	text := l.buf.Slice(start)
	if kw, ok := keywords.LookupFold(text); ok {
		return l.token(start, Token{Kind: Keyword, Keyword: kw})
	}
	return l.token(start, Token{Kind: Identifier, Ident: BasicIdentifier})
}

// ---------------------------------------------------------------------------
// Numbers and parameters
// ---------------------------------------------------------------------------

/*
 * param consumes $n. {param_junk} (scan.l line 1000) rejects identifier
 * characters glued to the number, and n has to fit an int4.
 */
func (l *Lexer) param(start int) (Token, error) {
	b := l.buf
	b.ConsumeWhile(isDigit)
	digits := b.Slice(start + 1)
	if next, ok := b.Peek(); ok && isIdentStart(next) {
		b.ConsumeWhile(isIdentCont)
		return Token{}, l.errorFrom(perrors.TrailingJunkAfterParameter, start)
	}
	n, err := strconv.ParseInt(digits, 10, 32)
	if err != nil {
		return Token{}, l.errorFrom(perrors.ParameterNumberTooLarge, start)
	}
	return l.token(start, Token{Kind: Param, Param: int32(n)}), nil
}

/*
 * number consumes {decinteger}, {numeric} and {real}, or one of the
 * prefixed integer forms 0x…, 0o…, 0b… (scan.l lines 1005–1070).
 *
 * Underscores may separate digits but neither start nor end a digit run.
 * A run like "1..10" is lexed as 1 followed by DOT_DOT, as {numericfail}
 * does.
 */
func (l *Lexer) number(start int, first byte) (Token, error) {
	b := l.buf
	if first == '0' {
		next, _ := b.Peek()
		switch next {
		case 'x', 'X':
			b.ConsumeOne()
			return l.prefixedInteger(start, Hex, isHexDigit)
		case 'o', 'O':
			b.ConsumeOne()
			return l.prefixedInteger(start, Octal, isOctDigit)
		case 'b', 'B':
			b.ConsumeOne()
			return l.prefixedInteger(start, Binary, isBinDigit)
		}
	}

	l.digitRun(isDigit)
	if next, ok := b.Peek(); ok && next == '.' && !l.peekIs(1, '.') {
		b.ConsumeOne()
		if next, ok := b.Peek(); ok && isDigit(next) {
			b.ConsumeOne()
			l.digitRun(isDigit)
		}
	}
	return l.exponent(start)
}

// fraction continues a number that started with "." and a digit.
func (l *Lexer) fraction(start int) (Token, error) {
	l.buf.ConsumeOne()
	l.digitRun(isDigit)
	return l.exponent(start)
}

/*
 * exponent consumes an optional [Ee][-+]?digits and finishes the number.
 *
 * {realfail} (scan.l line 1050) makes a sign without digits an error. An
 * "e" without digits is put back and then caught by the junk check, like
 * {integer_junk}.
 */
func (l *Lexer) exponent(start int) (Token, error) {
	b := l.buf
	if next, ok := b.Peek(); ok && (next == 'e' || next == 'E') {
		mark := b.Index()
		b.ConsumeOne()
		signed := b.ConsumeByte('+') || b.ConsumeByte('-')
		if next, ok := b.Peek(); ok && isDigit(next) {
			b.ConsumeOne()
			l.digitRun(isDigit)
		} else if signed {
			return Token{}, l.errorFrom(perrors.TrailingJunkAfterNumericLiteral, start)
		} else {
			b.Seek(mark)
		}
	}
	if err := l.junk(start); err != nil {
		return Token{}, err
	}
	return l.token(start, Token{Kind: Number, Radix: Decimal}), nil
}

// prefixedInteger consumes the digits of a 0x, 0o or 0b literal.
func (l *Lexer) prefixedInteger(start int, radix NumberRadix, digit func(byte) bool) (Token, error) {
	l.buf.ConsumeByte('_')
	if !l.peekWith(0, digit) {
		// {hexfail}, {octfail}, {binfail}
		return Token{}, l.errorFrom(perrors.InvalidInteger, start, radix.String())
	}
	l.digitRun(digit)
	if err := l.junk(start); err != nil {
		return Token{}, err
	}
	return l.token(start, Token{Kind: Number, Radix: radix}), nil
}

// digitRun consumes digits and single underscores between digits.
func (l *Lexer) digitRun(digit func(byte) bool) {
	b := l.buf
	for {
		next, ok := b.Peek()
		switch {
		case ok && digit(next):
			b.ConsumeOne()
		case ok && next == '_' && l.peekWith(1, digit):
			b.Advance(2)
		default:
			return
		}
	}
}

// junk rejects identifier characters glued to a numeric literal.
func (l *Lexer) junk(start int) error {
	if next, ok := l.buf.Peek(); ok && isIdentStart(next) {
		l.buf.ConsumeWhile(isIdentCont)
		return l.errorFrom(perrors.TrailingJunkAfterNumericLiteral, start)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Operators
// ---------------------------------------------------------------------------

/*
 * userOperator implements the {operator} rule (scan.l lines 880–970).
 *
 * The run of op_chars stops before an embedded comment start. Unless it
 * contains one of ~ ! @ # ^ & | ` ? %, trailing "+" and "-" are stripped
 * so that "a=-1" lexes as a = -1. What remains is either one of the
 * operators the grammar knows by name, or a user-defined operator.
 */
func (l *Lexer) userOperator(start int) (Token, error) {
	b := l.buf
	for {
		next, ok := b.Peek()
		if !ok || !isOpChar(next) {
			break
		}
		if next == '-' && l.peekIs(1, '-') || next == '/' && l.peekIs(1, '*') {
			break
		}
		b.ConsumeOne()
	}

	text := b.Slice(start)
	n := len(text)
	if n > 1 && (text[n-1] == '+' || text[n-1] == '-') && !strings.ContainsAny(text, pgOpChars) {
		for n > 1 && (text[n-1] == '+' || text[n-1] == '-') {
			n--
		}
		b.Seek(start + n)
		text = text[:n]
	}

	if op, ok := fixedOperator(text); ok {
		return l.operator(start, op), nil
	}
	if n >= NameDataLen {
		return Token{}, l.errorFrom(perrors.OperatorTooLong, start)
	}
	return l.token(start, Token{Kind: UserOperator}), nil
}

// pgOpChars keep trailing "+" and "-" on an operator.
const pgOpChars = "~!@#^&|`?%"

func fixedOperator(text string) (OperatorKind, bool) {
	switch text {
	case "%":
		return Percent, true
	case "*":
		return Mul, true
	case "+":
		return Plus, true
	case "-":
		return Minus, true
	case "/":
		return Div, true
	case "<":
		return Less, true
	case "=":
		return Equals, true
	case ">":
		return Greater, true
	case "^":
		return Circumflex, true
	case "=>":
		return EqualsGreater, true
	case "<=":
		return LessEquals, true
	case ">=":
		return GreaterEquals, true
	case "!=", "<>":
		return NotEquals, true
	}
	return 0, false
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (l *Lexer) operator(start int, op OperatorKind) Token {
	return l.token(start, Token{Kind: Operator, Op: op})
}

// token fills in the location and text of everything consumed since start.
func (l *Lexer) token(start int, tok Token) Token {
	tok.Loc = l.buf.LocationFrom(start)
	tok.Text = l.buf.Slice(start)
	return tok
}

func (l *Lexer) errorFrom(kind perrors.Kind, start int, args ...any) *perrors.Error {
	return perrors.New(kind, l.buf.LocationFrom(start), args...)
}

func (l *Lexer) peekIs(n int, c byte) bool {
	next, ok := l.buf.PeekAt(n)
	return ok && next == c
}

func (l *Lexer) peekWith(n int, pred func(byte) bool) bool {
	next, ok := l.buf.PeekAt(n)
	return ok && pred(next)
}
