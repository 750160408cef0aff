package lexer

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cybertec-postgresql/pgparse/internal/buffer"
	perrors "github.com/cybertec-postgresql/pgparse/internal/errors"
	"github.com/cybertec-postgresql/pgparse/internal/keywords"
)

// ── helpers ──────────────────────────────────────────────────────────────────

// brief is the part of a token most tests care about.
type brief struct {
	Kind  Kind
	Text  string
	Start int
	End   int
}

func briefs(tokens []Token) []brief {
	out := make([]brief, len(tokens))
	for i, t := range tokens {
		out[i] = brief{t.Kind, t.Text, t.Loc.Start, t.Loc.End}
	}
	return out
}

// scan tokenizes src with standard_conforming_strings on and fails the test
// on error.
func scan(t *testing.T, src string) []Token {
	t.Helper()
	tokens, err := Tokenize(src, true)
	if err != nil {
		t.Fatalf("src=%q: %v", src, err)
	}
	return tokens
}

// first returns the first token of src.
func first(t *testing.T, src string) Token {
	t.Helper()
	tokens := scan(t, src)
	if len(tokens) == 0 {
		t.Fatalf("src=%q: no tokens", src)
	}
	return tokens[0]
}

// scanError returns the error produced while scanning src.
func scanError(t *testing.T, src string, scs bool) *perrors.Error {
	t.Helper()
	_, err := Tokenize(src, scs)
	var pe *perrors.Error
	if !errors.As(err, &pe) {
		t.Fatalf("src=%q: expected a scan error, got %v", src, err)
	}
	return pe
}

func assertBriefs(t *testing.T, src string, want ...brief) {
	t.Helper()
	if diff := cmp.Diff(want, briefs(scan(t, src))); diff != "" {
		t.Errorf("src=%q (-want +got):\n%s", src, diff)
	}
}

// ── basic tokens ─────────────────────────────────────────────────────────────

func TestKeywordLocation(t *testing.T) {
	tok := first(t, "select")
	want := Token{
		Kind:    Keyword,
		Keyword: keywords.Select,
		Loc:     buffer.Location{Start: 0, End: 6, Line: 1, Col: 1},
		Text:    "select",
	}
	if diff := cmp.Diff(want, tok); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestKeywordsAreCaseInsensitive(t *testing.T) {
	for _, src := range []string{"SELECT", "Select", "sElEcT"} {
		if tok := first(t, src); !tok.IsKeyword(keywords.Select) {
			t.Errorf("%q: got %v", src, tok)
		}
	}
}

func TestIdentifiers(t *testing.T) {
	assertBriefs(t, "foo _bar baz$1 café",
		brief{Identifier, "foo", 0, 3},
		brief{Identifier, "_bar", 4, 8},
		brief{Identifier, "baz$1", 9, 14},
		brief{Identifier, "café", 15, 20},
	)
}

func TestPrefixLettersAsIdentifiers(t *testing.T) {
	assertBriefs(t, "bar xyz efg nun ube foo u&x",
		brief{Identifier, "bar", 0, 3},
		brief{Identifier, "xyz", 4, 7},
		brief{Identifier, "efg", 8, 11},
		brief{Identifier, "nun", 12, 15},
		brief{Identifier, "ube", 16, 19},
		brief{Identifier, "foo", 20, 23},
		brief{Identifier, "u", 24, 25},
		brief{UserOperator, "&", 25, 26},
		brief{Identifier, "x", 26, 27},
	)
}

func TestPunctuation(t *testing.T) {
	tokens := scan(t, "( ) , ; [ ] . .. : :: :=")
	want := []OperatorKind{
		OpenParenthesis, CloseParenthesis, Comma, Semicolon, OpenBracket,
		CloseBracket, Dot, DotDot, Colon, Typecast, ColonEquals,
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(want))
	}
	for i, op := range want {
		if !tokens[i].IsOperator(op) {
			t.Errorf("token[%d] = %v, want %v", i, tokens[i], op)
		}
	}
}

func TestEOF(t *testing.T) {
	lx := New("  ", true)
	for range 2 {
		tok, err := lx.Next()
		if err != nil {
			t.Fatal(err)
		}
		if tok.Kind != EOF || tok.Loc.Start != 2 || !tok.Loc.IsEmpty() {
			t.Errorf("got %v", tok)
		}
	}
}

func TestLineAndColumn(t *testing.T) {
	tokens := scan(t, "select\n  1,\r\n\tfoo")
	want := [][2]int{{1, 1}, {2, 3}, {2, 4}, {3, 2}}
	for i, pos := range want {
		if tokens[i].Loc.Line != pos[0] || tokens[i].Loc.Col != pos[1] {
			t.Errorf("token[%d] %v: want line %d col %d", i, tokens[i], pos[0], pos[1])
		}
	}
}

// ── comments ─────────────────────────────────────────────────────────────────

func TestComments(t *testing.T) {
	src := "-- leading\nselect /* a /* nested */ still */ 1 -- trailing"
	assertBriefs(t, src,
		brief{Keyword, "select", 11, 17},
		brief{Number, "1", strings.Index(src, " 1") + 1, strings.Index(src, " 1") + 2},
	)
}

func TestUnterminatedBlockComment(t *testing.T) {
	err := scanError(t, "select /* a /* b */", true)
	if err.Kind != perrors.UnterminatedBlockComment || err.Location.Start != 7 || err.Location.End != 19 {
		t.Errorf("got %v %v", err.Kind, err.Location)
	}
}

// ── operators ────────────────────────────────────────────────────────────────

func TestOperators(t *testing.T) {
	assertBriefs(t, "//=-\n-@-\n",
		brief{UserOperator, "//=", 0, 3},
		brief{Operator, "-", 3, 4},
		brief{UserOperator, "-@-", 5, 8},
	)
	if tok := scan(t, "//=-\n-@-\n")[2]; tok.Loc.Line != 2 || tok.Loc.Col != 1 {
		t.Errorf("-@- at %v", tok.Loc)
	}
}

func TestFixedOperators(t *testing.T) {
	tests := map[string]OperatorKind{
		"%": Percent, "*": Mul, "+": Plus, "-": Minus, "/": Div, "<": Less,
		"=": Equals, ">": Greater, "^": Circumflex, "=>": EqualsGreater,
		"<=": LessEquals, ">=": GreaterEquals, "!=": NotEquals, "<>": NotEquals,
	}
	for src, op := range tests {
		if tok := first(t, src); !tok.IsOperator(op) || tok.Text != src {
			t.Errorf("%q: got %v, want %v", src, tok, op)
		}
	}
}

func TestOperatorTrailingSign(t *testing.T) {
	assertBriefs(t, "a=-1",
		brief{Identifier, "a", 0, 1},
		brief{Operator, "=", 1, 2},
		brief{Operator, "-", 2, 3},
		brief{Number, "1", 3, 4},
	)
	// A qualifying character keeps the sign attached.
	assertBriefs(t, "a@-1",
		brief{Identifier, "a", 0, 1},
		brief{UserOperator, "@-", 1, 3},
		brief{Number, "1", 3, 4},
	)
	assertBriefs(t, "a<--b",
		brief{Identifier, "a", 0, 1},
		brief{Operator, "<", 1, 2},
	)
}

func TestOperatorTooLong(t *testing.T) {
	if tok := first(t, strings.Repeat("@", NameDataLen-1)); tok.Kind != UserOperator {
		t.Errorf("got %v", tok)
	}
	err := scanError(t, strings.Repeat("@", NameDataLen), true)
	if err.Kind != perrors.OperatorTooLong {
		t.Errorf("got %v", err.Kind)
	}
}

// ── numbers and parameters ───────────────────────────────────────────────────

func TestNumbers(t *testing.T) {
	tests := []struct {
		src   string
		radix NumberRadix
	}{
		{"42", Decimal},
		{"1_000_000", Decimal},
		{"1.5", Decimal},
		{".5", Decimal},
		{"1.", Decimal},
		{"1.5e-3", Decimal},
		{"1E+10", Decimal},
		{"1.e5", Decimal},
		{"0x1F", Hex},
		{"0X_ff_ff", Hex},
		{"0o17", Octal},
		{"0b1010", Binary},
	}
	for _, tt := range tests {
		tokens := scan(t, tt.src)
		if len(tokens) != 1 || tokens[0].Kind != Number || tokens[0].Radix != tt.radix || tokens[0].Text != tt.src {
			t.Errorf("%q: got %v", tt.src, tokens)
		}
	}
}

func TestNumberFollowedByDotDot(t *testing.T) {
	assertBriefs(t, "184..",
		brief{Number, "184", 0, 3},
		brief{Operator, "..", 3, 5},
	)
}

func TestNumberErrors(t *testing.T) {
	tests := []struct {
		src     string
		kind    perrors.Kind
		message string
		end     int
	}{
		{"123abc", perrors.TrailingJunkAfterNumericLiteral, "trailing junk after numeric literal", 6},
		{"1e", perrors.TrailingJunkAfterNumericLiteral, "trailing junk after numeric literal", 2},
		{"1e+", perrors.TrailingJunkAfterNumericLiteral, "trailing junk after numeric literal", 3},
		{"1_", perrors.TrailingJunkAfterNumericLiteral, "trailing junk after numeric literal", 2},
		{"0x", perrors.InvalidInteger, "invalid hexadecimal integer", 2},
		{"0o_", perrors.InvalidInteger, "invalid octal integer", 3},
		{"0b2", perrors.InvalidInteger, "invalid binary integer", 2},
		{"0x1g", perrors.TrailingJunkAfterNumericLiteral, "trailing junk after numeric literal", 4},
	}
	for _, tt := range tests {
		err := scanError(t, tt.src, true)
		if err.Kind != tt.kind || err.Message != tt.message || err.Location.Start != 0 || err.Location.End != tt.end {
			t.Errorf("%q: got %v %q %v", tt.src, err.Kind, err.Message, err.Location)
		}
	}
}

func TestParams(t *testing.T) {
	tok := first(t, "$0123")
	if tok.Kind != Param || tok.Param != 123 || tok.Loc.Start != 0 || tok.Loc.End != 5 {
		t.Errorf("got %v", tok)
	}
	if err := scanError(t, "$1abc", true); err.Kind != perrors.TrailingJunkAfterParameter {
		t.Errorf("got %v", err.Kind)
	}
	if err := scanError(t, "$2147483648", true); err.Kind != perrors.ParameterNumberTooLarge {
		t.Errorf("got %v", err.Kind)
	}
	if tok := first(t, "$2147483647"); tok.Param != 2147483647 {
		t.Errorf("got %v", tok)
	}
}

// ── strings ──────────────────────────────────────────────────────────────────

func TestStringKinds(t *testing.T) {
	tests := []struct {
		src  string
		scs  bool
		kind StringKind
	}{
		{"'abc'", true, BasicString},
		{"'abc'", false, ExtendedString},
		{`'a\'b'`, false, ExtendedString},
		{`E'a\'b'`, true, ExtendedString},
		{"U&'abc'", true, UnicodeString},
		{"$$abc$$", true, DollarString},
		{"$tag$a $ b $$ c$tag$", true, DollarString},
	}
	for _, tt := range tests {
		tokens, err := Tokenize(tt.src, tt.scs)
		if err != nil {
			t.Errorf("%q: %v", tt.src, err)
			continue
		}
		if len(tokens) != 1 || tokens[0].Kind != String || tokens[0].Str != tt.kind || tokens[0].Text != tt.src {
			t.Errorf("%q: got %v", tt.src, tokens)
		}
	}
}

func TestNationalString(t *testing.T) {
	tokens := scan(t, "N'abc'")
	if len(tokens) != 2 {
		t.Fatalf("got %v", tokens)
	}
	if !tokens[0].IsKeyword(keywords.Nchar) || tokens[0].Loc.End != 1 {
		t.Errorf("got %v", tokens[0])
	}
	if tokens[1].Str != NationalString || tokens[1].Text != "'abc'" || tokens[1].Concatenable {
		t.Errorf("got %v", tokens[1])
	}
}

func TestBitStrings(t *testing.T) {
	tokens := scan(t, "b'0101' X'1aF'")
	if tokens[0].Kind != BitString || tokens[0].Bit != BinaryBitString || tokens[0].Text != "b'0101'" {
		t.Errorf("got %v", tokens[0])
	}
	if tokens[1].Kind != BitString || tokens[1].Bit != HexBitString || tokens[1].Text != "X'1aF'" {
		t.Errorf("got %v", tokens[1])
	}
}

func TestConcatenable(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"'a'\n'b'", true},
		{"'a'  \r\n  'b'", true},
		{"'a' -- comment\n'b'", true},
		{"'a' 'b'", false},
		{"'a' /* c */\n'b'", false},
		{"'a'\n/* c */ 'b'", false},
		{"'a'\nE'b'", false},
	}
	for _, tt := range tests {
		tokens := scan(t, tt.src)
		if len(tokens) != 2 {
			t.Fatalf("%q: got %v", tt.src, tokens)
		}
		if tokens[1].Concatenable != tt.want {
			t.Errorf("%q: concatenable = %t", tt.src, tokens[1].Concatenable)
		}
	}
}

func TestContinuationKeepsEscapeRules(t *testing.T) {
	tests := []struct {
		src    string
		tokens int
		kind   StringKind
		text   string // of the last token
	}{
		{"E'a'\n'b\\'c'", 2, ExtendedString, `'b\'c'`},
		{"e'a'\n'b'\n'c\\'d'", 3, ExtendedString, `'c\'d'`},
		{"N'a'\n'b'", 3, NationalString, "'b'"},
		{"'a'\n'b\\'", 2, BasicString, `'b\'`},
		{"E'a' 'b'", 2, BasicString, "'b'"},
		{"E'a'\n/* c */ 'b'", 2, BasicString, "'b'"},
		{"E'a';\n'b'", 3, BasicString, "'b'"},
	}
	for _, tt := range tests {
		tokens := scan(t, tt.src)
		if len(tokens) != tt.tokens {
			t.Fatalf("%q: got %v", tt.src, tokens)
		}
		last := tokens[len(tokens)-1]
		if last.Kind != String || last.Str != tt.kind || last.Text != tt.text {
			t.Errorf("%q: got %v", tt.src, last)
		}
	}
}

func TestStringErrors(t *testing.T) {
	tests := []struct {
		src  string
		scs  bool
		kind perrors.Kind
		end  int
	}{
		{"'abc", true, perrors.UnterminatedQuotedString, 4},
		{`'abc\'`, false, perrors.UnterminatedQuotedString, 6},
		{`e'abc\'`, true, perrors.UnterminatedQuotedString, 7},
		{"b'01", true, perrors.UnterminatedBitString, 4},
		{"x'01", true, perrors.UnterminatedHexString, 4},
		{"$$abc", true, perrors.UnterminatedDollarQuotedString, 5},
		{"$a$abc$b$", true, perrors.UnterminatedDollarQuotedString, 9},
		{"U&'abc'", false, perrors.UnsafeUnicodeString, 7},
		{`"abc`, true, perrors.UnterminatedQuotedIdentifier, 4},
		{"\\", true, perrors.UnexpectedChar, 1},
	}
	for _, tt := range tests {
		err := scanError(t, tt.src, tt.scs)
		if err.Kind != tt.kind || err.Location.Start != 0 || err.Location.End != tt.end {
			t.Errorf("%q: got %v at %v", tt.src, err.Kind, err.Location)
		}
	}
}

func TestUnterminatedStringReportsOpeningQuote(t *testing.T) {
	err := scanError(t, "select\n  'abc", true)
	if err.Location.Start != 9 || err.Location.Line != 2 || err.Location.Col != 3 {
		t.Errorf("got %v", err.Location)
	}
	if got := err.Describe("select\n  'abc"); got != `unterminated quoted string at or near "'abc"` {
		t.Errorf("Describe = %q", got)
	}
}

// ── identifiers and recovery ─────────────────────────────────────────────────

// collect scans src to the end, recording errors in place of tokens.
func collect(src string) []brief {
	lx := New(src, true)
	var out []brief
	for {
		tok, err := lx.Next()
		if err != nil {
			var pe *perrors.Error
			errors.As(err, &pe)
			out = append(out, brief{EOF, "error:" + pe.Kind.String(), pe.Location.Start, pe.Location.End})
			continue
		}
		if tok.Kind == EOF {
			return out
		}
		out = append(out, briefs([]Token{tok})...)
	}
}

func TestQuotedIdentifiers(t *testing.T) {
	want := []brief{
		{EOF, "error:EmptyDelimitedIdentifier", 0, 2},
		{Identifier, `"""escaped"`, 3, 14},
		{Identifier, `u&"uni""code"`, 15, 28},
	}
	if diff := cmp.Diff(want, collect(`"" """escaped" u&"uni""code"`)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	tokens := scan(t, `"a" U&"b"`)
	if tokens[0].Ident != QuotedIdentifier || tokens[1].Ident != UnicodeIdentifier {
		t.Errorf("got %v", tokens)
	}
}

func TestFailedDollarQuote(t *testing.T) {
	want := []brief{
		{EOF, "error:UnexpectedChar", 0, 1},
		{Keyword, "not", 1, 4},
		{Identifier, "a", 5, 6},
		{Keyword, "string", 7, 13},
	}
	if diff := cmp.Diff(want, collect("$not a string")); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
