package parser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cybertec-postgresql/pgparse/internal/ast"
	"github.com/cybertec-postgresql/pgparse/internal/buffer"
	"github.com/cybertec-postgresql/pgparse/internal/discovery"
	perrors "github.com/cybertec-postgresql/pgparse/internal/errors"
	"github.com/cybertec-postgresql/pgparse/internal/stream"
)

func writeFile(t *testing.T, name, sql string) *discovery.DiscoveredFile {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(tmpFile, []byte(sql), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return &discovery.DiscoveredFile{Path: tmpFile, RelativePath: name}
}

func TestParse_ValidSQL(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		wantStmt int
	}{
		{
			name:     "single SELECT",
			sql:      "SELECT 1;",
			wantStmt: 1,
		},
		{
			name:     "multi statement",
			sql:      "SELECT 1; SELECT 2;",
			wantStmt: 2,
		},
		{
			name:     "transaction",
			sql:      "BEGIN ISOLATION LEVEL SERIALIZABLE; SELECT * FROM accounts WHERE id = $1; COMMIT;",
			wantStmt: 3,
		},
		{
			name:     "settings",
			sql:      "SET search_path TO public, extensions;\nSHOW search_path;\nRESET ALL",
			wantStmt: 3,
		},
		{
			name:     "empty",
			sql:      "",
			wantStmt: 0,
		},
		{
			name:     "comments only",
			sql:      "-- This is a comment\n/* Block comment */;",
			wantStmt: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Parse(tt.sql, stream.DefaultConfig())
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}

			if len(result.Statements) != tt.wantStmt {
				t.Errorf("Parse() got %d statements, want %d", len(result.Statements), tt.wantStmt)
			}
		})
	}
}

func TestParse_SyntaxError(t *testing.T) {
	tests := []struct {
		name string
		sql  string
	}{
		{
			name: "invalid SELECT",
			sql:  "SELECT FROM;",
		},
		{
			name: "unclosed parenthesis",
			sql:  "SELECT * FROM users WHERE (id = 1;",
		},
		{
			name: "unsupported statement",
			sql:  "CREATE TABLE t ();",
		},
		{
			name: "lexical error",
			sql:  "SELECT 'abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Parse(tt.sql, stream.DefaultConfig())
			if err == nil {
				t.Fatalf("Parse() expected error, got nil")
			}

			if result != nil {
				t.Errorf("Parse() expected nil result on error, got %v", result)
			}

			var parseErr *perrors.Error
			if !errors.As(err, &parseErr) {
				t.Errorf("Parse() error type = %T, want *errors.Error", err)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	file := writeFile(t, "test.sql", "SELECT 42;\nNOTIFY jobs, 'ready';")

	parsed, err := ParseFile(file, stream.DefaultConfig())
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}

	if len(parsed.Statements) != 2 {
		t.Errorf("ParseFile() got %d statements, want 2", len(parsed.Statements))
	}
	if _, ok := parsed.Statements[1].(*ast.NotifyStmt); !ok {
		t.Errorf("ParseFile() statement 2 is %T, want *ast.NotifyStmt", parsed.Statements[1])
	}
	if parsed.Source != "SELECT 42;\nNOTIFY jobs, 'ready';" {
		t.Errorf("ParseFile() source = %q", parsed.Source)
	}
}

func TestParseFile_SyntaxError(t *testing.T) {
	file := writeFile(t, "broken.sql", "SELECT 1;\nSELECT FROM;")

	parsed, err := ParseFile(file, stream.DefaultConfig())
	if parsed != nil {
		t.Errorf("ParseFile() expected nil result, got %v", parsed)
	}

	var parseErr *perrors.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("ParseFile() error type = %T, want *errors.ParseError", err)
	}
	if parseErr.File != file.Path {
		t.Errorf("ParseError.File = %q, want %q", parseErr.File, file.Path)
	}
	if want := `:2:12: syntax error at or near ";"`; !strings.HasSuffix(err.Error(), want) {
		t.Errorf("ParseError = %q, want suffix %q", err.Error(), want)
	}
}

func TestParseFile_FileNotFound(t *testing.T) {
	file := &discovery.DiscoveredFile{Path: "/nonexistent/file.sql"}

	parsed, err := ParseFile(file, stream.DefaultConfig())
	if err == nil {
		t.Errorf("ParseFile() expected error for nonexistent file, got nil")
	}

	if parsed != nil {
		t.Errorf("ParseFile() expected nil result, got %v", parsed)
	}
}

func TestSplitStatements(t *testing.T) {
	sql := `-- setup
BEGIN;
SELECT 'a;b', "c;d" /* ; */ FROM t;

CREATE TABLE x (
  id int
);
;
DO $$ begin; end $$;
commit`

	stmts, err := SplitStatements(sql, stream.DefaultConfig())
	if err != nil {
		t.Fatalf("SplitStatements() error = %v", err)
	}

	want := []struct {
		raw       string
		startLine int
		endLine   int
		typ       StatementType
	}{
		{"BEGIN", 2, 2, StmtTransaction},
		{`SELECT 'a;b', "c;d" /* ; */ FROM t`, 3, 3, StmtSelect},
		{"CREATE TABLE x (\n  id int\n)", 5, 7, StmtOther},
		{"DO $$ begin; end $$", 9, 9, StmtOther},
		{"commit", 10, 10, StmtTransaction},
	}
	if len(stmts) != len(want) {
		t.Fatalf("SplitStatements() got %d statements, want %d", len(stmts), len(want))
	}
	for i, w := range want {
		got := stmts[i]
		if got.RawSQL != w.raw || got.StartLine != w.startLine || got.EndLine != w.endLine || got.Type != w.typ {
			t.Errorf("statement %d = {%q %d-%d %v}, want {%q %d-%d %v}",
				i, got.RawSQL, got.StartLine, got.EndLine, got.Type, w.raw, w.startLine, w.endLine, w.typ)
		}
		if sql[got.Start:got.End] != got.RawSQL {
			t.Errorf("statement %d: byte range %d..%d does not match RawSQL", i, got.Start, got.End)
		}
	}
}

func TestSplitStatements_LexicalError(t *testing.T) {
	stmts, err := SplitStatements("select 1; select 'abc", stream.DefaultConfig())

	var lexErr *perrors.Error
	if !errors.As(err, &lexErr) {
		t.Fatalf("SplitStatements() error type = %T, want *errors.Error", err)
	}
	if len(stmts) != 1 {
		t.Errorf("SplitStatements() got %d statements before the error, want 1", len(stmts))
	}
}

func TestSplitStatements_LineEndings(t *testing.T) {
	stmts, err := SplitStatements("select\r\n1;\rselect\r2", stream.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	// CRLF ends line 1, each lone CR ends one more line
	if len(stmts) != 2 || stmts[0].StartLine != 1 || stmts[0].EndLine != 2 ||
		stmts[1].StartLine != 3 || stmts[1].EndLine != 4 || stmts[1].StartCol != 1 {
		for _, s := range stmts {
			t.Logf("%q %d-%d", s.RawSQL, s.StartLine, s.EndLine)
		}
		t.Error("unexpected line numbers")
	}
}

func TestClassifyStatements(t *testing.T) {
	tests := []struct {
		sql  string
		want StatementType
	}{
		{"start transaction", StmtTransaction},
		{"end", StmtTransaction},
		{"prepare transaction 'x'", StmtTransaction},
		{"prepare p as select 1", StmtOther},
		{"select 1", StmtSelect},
		{"show all", StmtUtility},
		{"listen jobs", StmtUtility},
		{"insert into t values (1)", StmtOther},
		{"values (1)", StmtOther},
		{`"select"`, StmtOther},
	}
	for _, tt := range tests {
		stmts, err := SplitStatements(tt.sql, stream.DefaultConfig())
		if err != nil || len(stmts) != 1 {
			t.Fatalf("%q: %v, %d statements", tt.sql, err, len(stmts))
		}
		if stmts[0].Type != tt.want {
			t.Errorf("%q classified as %v, want %v", tt.sql, stmts[0].Type, tt.want)
		}
	}
}

func TestParseStatement(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		kind perrors.Kind
		at   buffer.Location
	}{
		{
			name: "same line",
			sql:  "select 1;\n  select a.*.b;",
			kind: perrors.ImproperUseOfStar,
			at:   buffer.Location{Start: 21, End: 22, Line: 2, Col: 12},
		},
		{
			name: "later line",
			sql:  "begin;\nselect\n  x::float(0)",
			kind: perrors.FloatPrecisionUnderflow,
			at:   buffer.Location{Start: 25, End: 26, Line: 3, Col: 12},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts, err := SplitStatements(tt.sql, stream.DefaultConfig())
			if err != nil {
				t.Fatal(err)
			}
			if _, _, perr := ParseStatement(stmts[0], stream.DefaultConfig()); perr != nil {
				t.Fatalf("first statement: %v", perr)
			}

			node, _, perr := ParseStatement(stmts[1], stream.DefaultConfig())
			if node != nil || perr == nil {
				t.Fatalf("ParseStatement() = %v, %v", node, perr)
			}
			if perr.Kind != tt.kind || perr.Location != tt.at {
				t.Errorf("ParseStatement() error = %v at %+v, want %v at %+v", perr.Kind, perr.Location, tt.kind, tt.at)
			}
		})
	}
}

func TestParseStatement_Warnings(t *testing.T) {
	cfg := stream.DefaultConfig()
	cfg.StandardConformingStrings = false

	stmts, err := SplitStatements("select 1;\nselect 'a\\nb'", cfg)
	if err != nil {
		t.Fatal(err)
	}
	_, warnings, perr := ParseStatement(stmts[1], cfg)
	if perr != nil {
		t.Fatal(perr)
	}
	if len(warnings) != 1 || warnings[0].Location.Line != 2 || warnings[0].Location.Start < 10 {
		t.Errorf("ParseStatement() warnings = %+v", warnings)
	}
}

func TestTokens(t *testing.T) {
	tokens, _, err := Tokens(`select x'1f', u&"d\0061ta"`, stream.DefaultConfig())
	if err != nil {
		t.Fatalf("Tokens() error = %v", err)
	}
	if len(tokens) != 4 {
		t.Fatalf("Tokens() got %d tokens, want 4", len(tokens))
	}
	if tokens[1].Text != "1f" || tokens[3].Text != "data" {
		t.Errorf("Tokens() values = %q, %q", tokens[1].Text, tokens[3].Text)
	}

	tokens, _, err = Tokens("select 'abc", stream.DefaultConfig())
	if err == nil || len(tokens) != 1 {
		t.Errorf("Tokens() = %d tokens, %v; want 1 token and an error", len(tokens), err)
	}
}

func TestStatementsByType(t *testing.T) {
	stmts, err := SplitStatements("begin; select 1; select 2; commit", stream.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if got := StatementsByType(stmts, StmtSelect); len(got) != 2 {
		t.Errorf("StatementsByType(select) got %d, want 2", len(got))
	}
	if got := StatementsByType(stmts, StmtUtility); len(got) != 0 {
		t.Errorf("StatementsByType(utility) got %d, want 0", len(got))
	}
}

func TestStatementAtLine(t *testing.T) {
	stmts, err := SplitStatements("begin;\nselect\n  1;\ncommit", stream.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if s := StatementAtLine(stmts, 3); s == nil || s.Type != StmtSelect {
		t.Errorf("StatementAtLine(3) = %v", s)
	}
	if s := StatementAtLine(stmts, 5); s != nil {
		t.Errorf("StatementAtLine(5) = %v, want nil", s)
	}
}

func TestParseStatementType(t *testing.T) {
	for _, st := range []StatementType{StmtTransaction, StmtSelect, StmtUtility, StmtOther} {
		got, err := ParseStatementType(st.String())
		if err != nil || got != st {
			t.Errorf("ParseStatementType(%q) = %v, %v", st.String(), got, err)
		}
	}
	if _, err := ParseStatementType("function"); err == nil {
		t.Error("ParseStatementType(function) expected error")
	}
}
