package stream

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cybertec-postgresql/pgparse/internal/buffer"
	"github.com/cybertec-postgresql/pgparse/internal/decoder"
	perrors "github.com/cybertec-postgresql/pgparse/internal/errors"
	"github.com/cybertec-postgresql/pgparse/internal/keywords"
	"github.com/cybertec-postgresql/pgparse/internal/lexer"
	"github.com/cybertec-postgresql/pgparse/internal/result"
)

func loc(start, end, line, col int) buffer.Location {
	return buffer.Location{Start: start, End: end, Line: line, Col: col}
}

// first returns the first decoded token of src or fails the test.
func first(t *testing.T, src string) *Token {
	t.Helper()
	r := New(src, DefaultConfig()).Peek()
	if !r.IsMatched() {
		t.Fatalf("src=%q: %v", src, r)
	}
	return r.Value
}

// ── cursor ───────────────────────────────────────────────────────────────────

func TestEof(t *testing.T) {
	s := New("", DefaultConfig())
	if !s.Eof() {
		t.Fatal("empty input is not at eof")
	}
	s.Next()
	if !s.Eof() || s.CurrentLocation() != loc(0, 0, 1, 1) {
		t.Errorf("after Next: %v", s.CurrentLocation())
	}
}

func TestNextPeekAndCurrentLocation(t *testing.T) {
	s := New("two identifiers", DefaultConfig())

	if r := s.Peek(); !r.IsMatched() || r.Value.Text != "two" {
		t.Fatalf("got %v", r)
	}
	if diff := cmp.Diff(loc(0, 3, 1, 1), s.CurrentLocation()); diff != "" {
		t.Error(diff)
	}

	s.Next()
	if r := s.Peek(); !r.IsMatched() {
		t.Fatalf("got %v", r)
	}
	if diff := cmp.Diff(loc(4, 15, 1, 5), s.CurrentLocation()); diff != "" {
		t.Error(diff)
	}

	s.Next()
	if r := s.Peek(); !r.IsEof() {
		t.Fatalf("got %v", r)
	}
	if diff := cmp.Diff(loc(15, 15, 1, 16), s.CurrentLocation()); diff != "" {
		t.Error(diff)
	}
}

func TestPeek2(t *testing.T) {
	s := New("three identifiers innit", DefaultConfig())
	steps := []struct {
		first, second result.State
		at            buffer.Location
	}{
		{result.Matched, result.Matched, loc(0, 5, 1, 1)},
		{result.Matched, result.Matched, loc(6, 17, 1, 7)},
		{result.Matched, result.Eof, loc(18, 23, 1, 19)},
		{result.Eof, result.Eof, loc(23, 23, 1, 24)},
	}
	for i, step := range steps {
		a, b := s.Peek2()
		if a.State != step.first || b.State != step.second {
			t.Errorf("step %d: got %v, %v", i, a.State, b.State)
		}
		if diff := cmp.Diff(step.at, s.CurrentLocation()); diff != "" {
			t.Errorf("step %d: %s", i, diff)
		}
		s.Next()
	}
}

func TestSkip(t *testing.T) {
	s := New("a b c d", DefaultConfig())
	s.Skip(3)
	if r := s.Peek(); r.Value.Text != "d" {
		t.Errorf("got %v", r)
	}
	s.Skip(5)
	if !s.Eof() {
		t.Error("not at eof")
	}
}

// ── consume ──────────────────────────────────────────────────────────────────

func TestConsumeReturningError(t *testing.T) {
	s := New("two identifiers", DefaultConfig())
	r := ConsumeWith(s, func(*Token) (struct{}, bool, *perrors.Error) {
		return struct{}{}, false, perrors.NewSyntax(loc(0, 0, 0, 0))
	})
	if !r.IsFatal() || r.Err.Kind != perrors.Syntax {
		t.Errorf("got %v", r)
	}
	if s.CurrentLocation() != loc(0, 3, 1, 1) {
		t.Errorf("consumed on error: %v", s.CurrentLocation())
	}
}

func TestConsume(t *testing.T) {
	s := New("two identifiers", DefaultConfig())

	r := Consume(s, func(tok *Token) (string, bool) { return "", false })
	if !r.IsNoMatch() || r.Loc != loc(0, 3, 1, 1) {
		t.Errorf("no match: %v", r)
	}
	if s.CurrentLocation() != loc(0, 3, 1, 1) {
		t.Errorf("consumed on no match")
	}

	r = Consume(s, func(tok *Token) (string, bool) { return tok.Text, true })
	if !r.IsMatched() || r.Value != "two" {
		t.Errorf("match: %v", r)
	}
	if s.CurrentLocation() != loc(4, 15, 1, 5) {
		t.Errorf("not consumed: %v", s.CurrentLocation())
	}
}

func TestConsumeIf(t *testing.T) {
	s := New("two identifiers", DefaultConfig())
	if r := s.ConsumeIf(func(*Token) bool { return false }); !r.IsNoMatch() {
		t.Errorf("got %v", r)
	}
	if r := s.ConsumeIf(func(*Token) bool { return true }); !r.IsMatched() || r.Value.Kind != lexer.Identifier {
		t.Errorf("got %v", r)
	}
	if s.CurrentLocation() != loc(4, 15, 1, 5) {
		t.Errorf("got %v", s.CurrentLocation())
	}
}

func TestConsumeAtEof(t *testing.T) {
	s := New("   ", DefaultConfig())
	if r := s.ConsumeIf(func(*Token) bool { return true }); !r.IsEof() || r.Loc != loc(3, 3, 1, 4) {
		t.Errorf("got %v", r)
	}
}

// ── values ───────────────────────────────────────────────────────────────────

func TestKeywordToken(t *testing.T) {
	tok := first(t, "select")
	if !tok.IsKeyword(keywords.Select) || tok.Loc != loc(0, 6, 1, 1) {
		t.Errorf("got %v at %v", tok, tok.Loc)
	}
}

func TestIdentifiers(t *testing.T) {
	s := New(`Foo "Bar" "a""b" u&"d\0061ta" U&"d!0061t!+000061" UESCAPE '!' ÀB`, DefaultConfig())
	var got []string
	for !s.Eof() {
		r := s.Peek()
		if !r.IsMatched() {
			t.Fatalf("got %v", r)
		}
		got = append(got, r.Value.Text)
		s.Next()
	}
	want := []string{"foo", "Bar", `a"b`, "data", "data", "Àb"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestNonASCIIIdentifiersAreNotKeywords(t *testing.T) {
	// U+0130 and U+212A only become i and k under Unicode case folding
	for _, src := range []string{"\u0130n", "\u212Aey", "\u0130N"} {
		tok := first(t, src)
		if tok.Kind != lexer.Identifier || tok.Text != keywords.ToLower(src) {
			t.Errorf("%q: got %v (%v)", src, tok, tok.Kind)
		}
	}
}

func TestIdentifierTruncation(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{strings.Repeat("a", 63), strings.Repeat("a", 63)},
		{strings.Repeat("a", 70), strings.Repeat("a", 63)},
		{`"` + strings.Repeat("é", 40) + `"`, strings.Repeat("é", 31)},
	}
	for _, tt := range tests {
		s := New(tt.src, DefaultConfig())
		r := s.Peek()
		if r.Value.Text != tt.want {
			t.Errorf("len %d: got %d bytes", len(tt.src), len(r.Value.Text))
		}
		truncated := len(tt.want) < len(strings.Trim(tt.src, `"`))
		if w := s.Warnings(); truncated != (len(w) == 1) || truncated && w[0].Kind != perrors.IdentifierTruncated {
			t.Errorf("len %d: warnings %v", len(tt.src), w)
		}
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		src  string
		want Number
	}{
		{"42", Number{Radix: lexer.Decimal, Text: "42", Int: 42, IsInt: true}},
		{"1_000", Number{Radix: lexer.Decimal, Text: "1000", Int: 1000, IsInt: true}},
		{"2147483647", Number{Radix: lexer.Decimal, Text: "2147483647", Int: 2147483647, IsInt: true}},
		{"2147483648", Number{Radix: lexer.Decimal, Text: "2147483648"}},
		{"1.5", Number{Radix: lexer.Decimal, Text: "1.5"}},
		{"1e3", Number{Radix: lexer.Decimal, Text: "1e3"}},
		{"0x1F", Number{Radix: lexer.Hex, Text: "0x1F", Int: 31, IsInt: true}},
		{"0o1_7", Number{Radix: lexer.Octal, Text: "0o17", Int: 15, IsInt: true}},
		{"0b101", Number{Radix: lexer.Binary, Text: "0b101", Int: 5, IsInt: true}},
		{"0xFFFFFFFF", Number{Radix: lexer.Hex, Text: "0xFFFFFFFF"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, first(t, tt.src).Number); diff != "" {
			t.Errorf("%q (-want +got):\n%s", tt.src, diff)
		}
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"$dollar$a $ string$dollar$", "a $ string"},
		{"'basic string'", "basic string"},
		{"'it''s'", "it's"},
		{"'basic ''string'''\n' concatenation'", "basic 'string' concatenation"},
		{`e'an extended string'`, "an extended string"},
		{"e'extended string'\n' concatenation'", "extended string concatenation"},
		{`u&'\0061n unicode string'`, "an unicode string"},
		{"u&'!0061n escaped unicode string!0021' UESCAPE '!'", "an escaped unicode string!"},
		{"u&'unicode string'\n' concatenation'", "unicode string concatenation"},
		{"u&'*002a extended unicode *002a' UESCAPE e'*'", "* extended unicode *"},
		{"u&'unicode esc!0061pe concatenation' UESCAPE ''\n''\n'!'", "unicode escape concatenation"},
		{"n'national'", "national"},
	}
	for _, tt := range tests {
		s := New(tt.src, DefaultConfig())
		if tt.src[0] == 'n' {
			s.Next()
		}
		r := s.Peek()
		if !r.IsMatched() || r.Value.Kind != lexer.String {
			t.Errorf("%q: got %v", tt.src, r)
			continue
		}
		if r.Value.Text != tt.want {
			t.Errorf("%q: got %q, want %q", tt.src, r.Value.Text, tt.want)
		}
		s.Next()
		if !s.Eof() {
			t.Errorf("%q: trailing %v", tt.src, s.Peek())
		}
	}
}

func TestConcatenationExtendsLocation(t *testing.T) {
	s := New("'a'\n'b' x", DefaultConfig())
	r := s.Peek()
	if r.Value.Text != "ab" || r.Loc.Start != 0 || r.Loc.End != 7 || r.Loc.Line != 1 {
		t.Errorf("got %v at %v", r.Value, r.Loc)
	}
	s.Next()
	if r := s.Peek(); r.Value.Text != "x" {
		t.Errorf("got %v", r)
	}
}

func TestBitStrings(t *testing.T) {
	tests := []struct {
		src  string
		kind lexer.BitStringKind
		want string
	}{
		{"x'1af'", lexer.HexBitString, "1af"},
		{"b'0110'\n'1010'\n'0101'", lexer.BinaryBitString, "011010100101"},
		{"x'abcd'\n'4321'\n'f765'", lexer.HexBitString, "abcd4321f765"},
	}
	for _, tt := range tests {
		tok := first(t, tt.src)
		if tok.Kind != lexer.BitString || tok.Bit != tt.kind || tok.Text != tt.want || tok.Loc.End != len(tt.src) {
			t.Errorf("%q: got %v %v %q %v", tt.src, tok.Kind, tok.Bit, tok.Text, tok.Loc)
		}
	}
}

// ── errors and warnings ──────────────────────────────────────────────────────

func TestUnterminatedLiteral(t *testing.T) {
	s := New("'abc", DefaultConfig())
	r := s.Peek()
	if !r.IsFatal() || r.Err.Kind != perrors.UnterminatedQuotedString || r.Err.Location.Start != 0 {
		t.Fatalf("got %v", r)
	}
	s.Next()
	if again := s.Peek(); !again.IsFatal() || again.Err != r.Err {
		t.Errorf("Next moved past an error: %v", again)
	}
}

func TestDecodeErrorLocation(t *testing.T) {
	s := New(`select e'\u12'`, DefaultConfig())
	s.Next()
	got := s.Peek()
	if !got.IsFatal() || got.Err.Kind != perrors.InvalidUnicodeEscape {
		t.Fatalf("got %v", got)
	}
	if got.Err.Location != loc(7, 14, 1, 8) || got.Err.Hint == "" {
		t.Errorf("got %v, hint %q", got.Err.Location, got.Err.Hint)
	}
}

func TestUescapeErrors(t *testing.T) {
	tests := []struct {
		src  string
		kind perrors.Kind
	}{
		{"u&'x' UESCAPE 1", perrors.UescapeDelimiterMissing},
		{"u&'x' UESCAPE", perrors.UescapeDelimiterMissing},
		{"u&'x' UESCAPE $$!$$", perrors.UescapeDelimiterMissing},
		{"u&'x' UESCAPE 'ab'", perrors.InvalidUescapeDelimiter},
		{"u&'x' UESCAPE '+'", perrors.InvalidUescapeDelimiter},
		{`u&"x" UESCAPE 'a'`, perrors.InvalidUescapeDelimiter},
		{"u&'!00zz' UESCAPE '!'", perrors.InvalidUnicodeEscape},
	}
	for _, tt := range tests {
		r := New(tt.src, DefaultConfig()).Peek()
		if !r.IsFatal() || r.Err.Kind != tt.kind {
			t.Errorf("%q: got %v", tt.src, r)
		}
	}
}

func TestEscapeWarnings(t *testing.T) {
	cfg := Config{StandardConformingStrings: false, BackslashQuote: decoder.SafeEncoding}

	s := New(`'a\nb'`, cfg)
	if r := s.Peek(); r.Value.Text != "a\nb" {
		t.Errorf("got %v", r)
	}
	w := s.TakeWarnings()
	if len(w) != 1 || w[0].Kind != perrors.NonstandardEscape || w[0].Location != loc(0, 6, 1, 1) {
		t.Errorf("warnings %v", w)
	}
	if len(s.Warnings()) != 0 {
		t.Error("TakeWarnings did not drain")
	}

	s = New(`E'a\nb'`, cfg)
	s.Peek()
	if w := s.Warnings(); len(w) != 0 {
		t.Errorf("E'' string warned: %v", w)
	}

	s = New(`'a\nb'`, DefaultConfig())
	if r := s.Peek(); r.Value.Text != `a\nb` || len(s.Warnings()) != 0 {
		t.Errorf("standard string: %v %v", r, s.Warnings())
	}
}

func TestBackslashQuote(t *testing.T) {
	cfg := Config{StandardConformingStrings: true, BackslashQuote: decoder.Off}
	if r := New(`e'\''`, cfg).Peek(); !r.IsFatal() || r.Err.Kind != perrors.NonstandardUseOfBackslashQuote {
		t.Errorf("off: %v", r)
	}
	cfg.BackslashQuote = decoder.On
	if r := New(`e'\''`, cfg).Peek(); !r.IsMatched() || r.Value.Text != "'" {
		t.Errorf("on: %v", r)
	}
	// the continuation line keeps the escape rules of the E'' literal
	s := New("E'a'\n'b\\'c'", cfg)
	if r := s.Peek(); !r.IsMatched() || r.Value.Text != "ab'c" {
		t.Errorf("continued: %v", r)
	}
	s.Next()
	if !s.Eof() {
		t.Errorf("continued: trailing %v", s.Peek())
	}
}
