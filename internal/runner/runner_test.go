package runner_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cybertec-postgresql/pgparse/internal/discovery"
	perrors "github.com/cybertec-postgresql/pgparse/internal/errors"
	"github.com/cybertec-postgresql/pgparse/internal/parser"
	"github.com/cybertec-postgresql/pgparse/internal/runner"
	"github.com/cybertec-postgresql/pgparse/internal/stream"
)

func writeFiles(t *testing.T, contents map[string]string) []discovery.DiscoveredFile {
	t.Helper()
	dir := t.TempDir()
	for name, sql := range contents {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(sql), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	files, err := discovery.Discover(dir, discovery.Options{})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	return files
}

var fixtures = map[string]string{
	"a_good.sql":  "begin;\nselect 1;\ncommit;\ncreate table t (a int);\n",
	"b_bad.sql":   "select 1;\nselect a.*.b;\n",
	"c_lexer.sql": "select 1;\nselect 'unterminated",
}

func TestChecker_Check(t *testing.T) {
	files := writeFiles(t, fixtures)
	checker := runner.NewChecker(stream.DefaultConfig(), nil, 0)
	ctx := context.Background()

	good, err := checker.Check(ctx, &files[0])
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if good.Status != runner.CheckPassed {
		t.Errorf("good file status = %v, want passed", good.Status)
	}
	if len(good.Statements) != 4 {
		t.Fatalf("good file has %d statements, want 4", len(good.Statements))
	}
	if !good.Statements[3].Skipped {
		t.Errorf("CREATE TABLE should be skipped")
	}
	if good.Statements[1].Node == nil {
		t.Errorf("SELECT 1 produced no node")
	}

	bad, err := checker.Check(ctx, &files[1])
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if bad.Status != runner.CheckFailed {
		t.Errorf("bad file status = %v, want failed", bad.Status)
	}
	stmtErr := bad.Statements[1].Err
	if stmtErr == nil {
		t.Fatal("expected an error on the second statement")
	}
	if stmtErr.Location.Line != 2 || stmtErr.Kind != perrors.ImproperUseOfStar {
		t.Errorf("error = %v (kind %v), want improper use of \"*\" on line 2", stmtErr, stmtErr.Kind)
	}

	lex, err := checker.Check(ctx, &files[2])
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	var pe *perrors.ParseError
	if !errors.As(lex.Error, &pe) {
		t.Fatalf("lexer failure error = %T, want *errors.ParseError", lex.Error)
	}
	if pe.Err.Kind != perrors.UnterminatedQuotedString {
		t.Errorf("lexer failure kind = %v", pe.Err.Kind)
	}
	if len(lex.Statements) != 1 || lex.Status != runner.CheckFailed {
		t.Errorf("lexer failure: %d statements, status %v", len(lex.Statements), lex.Status)
	}
}

func TestChecker_MissingFile(t *testing.T) {
	checker := runner.NewChecker(stream.DefaultConfig(), nil, 0)
	fc, err := checker.Check(context.Background(), &discovery.DiscoveredFile{Path: "/nonexistent/x.sql", RelativePath: "x.sql"})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if fc.Status != runner.CheckFailed || fc.Error == nil {
		t.Errorf("status = %v, error = %v", fc.Status, fc.Error)
	}
}

func TestSummarizeChecks(t *testing.T) {
	files := writeFiles(t, fixtures)
	checker := runner.NewChecker(stream.DefaultConfig(), nil, 0)

	checks, err := checker.CheckBatch(context.Background(), files)
	if err != nil {
		t.Fatalf("CheckBatch() error = %v", err)
	}

	s := runner.SummarizeChecks(checks)
	if s.TotalFiles != 3 || s.PassedFiles != 1 || s.FailedFiles != 2 {
		t.Errorf("files: total %d passed %d failed %d", s.TotalFiles, s.PassedFiles, s.FailedFiles)
	}
	if s.Statements != 7 || s.Parsed != 5 || s.Skipped != 1 || s.Errors != 2 {
		t.Errorf("statements %d parsed %d skipped %d errors %d", s.Statements, s.Parsed, s.Skipped, s.Errors)
	}
	if s.ExitCode() != 1 {
		t.Errorf("ExitCode() = %d, want 1", s.ExitCode())
	}

	clean := runner.SummarizeChecks(checks[:1])
	if !clean.AllPassed() || clean.ExitCode() != 0 {
		t.Errorf("a clean run should pass: %+v", clean)
	}
}

func TestSummarizeChecks_Warnings(t *testing.T) {
	files := writeFiles(t, map[string]string{"w.sql": `select 'a\nb', 'c\td';`})
	cfg := stream.DefaultConfig()
	cfg.StandardConformingStrings = false
	checks, err := runner.NewChecker(cfg, nil, 0).CheckBatch(context.Background(), files)
	if err != nil {
		t.Fatalf("CheckBatch() error = %v", err)
	}
	s := runner.SummarizeChecks(checks)
	if s.Warnings != 2 || !s.AllPassed() {
		t.Errorf("warnings = %d, passed = %v", s.Warnings, s.AllPassed())
	}
}

type verifierFunc func(ctx context.Context, file string, stmt *parser.Statement, local *perrors.Error) (*perrors.MismatchError, error)

func (f verifierFunc) Compare(ctx context.Context, file string, stmt *parser.Statement, local *perrors.Error, _ []perrors.Warning) (*perrors.MismatchError, error) {
	return f(ctx, file, stmt, local)
}

func TestWorkerPool_CheckAll(t *testing.T) {
	contents := map[string]string{}
	for _, name := range []string{"1.sql", "2.sql", "3.sql", "4.sql", "5.sql", "6.sql"} {
		contents[name] = "select 1;\nselect 2;\n"
	}
	files := writeFiles(t, contents)

	var mu sync.Mutex
	seen := map[string]int{}
	verifier := verifierFunc(func(ctx context.Context, file string, stmt *parser.Statement, local *perrors.Error) (*perrors.MismatchError, error) {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("verifier called without a deadline")
		}
		mu.Lock()
		seen[file]++
		mu.Unlock()
		if file == "3.sql" && stmt.StartLine == 2 {
			return perrors.NewMismatchError(file, stmt.StartLine, local, &pgconn.PgError{Code: "42601", Message: "syntax error"}), nil
		}
		return nil, nil
	})

	pool := runner.NewWorkerPool(runner.NewChecker(stream.DefaultConfig(), verifier, time.Second), 3)
	checks, err := pool.CheckAll(context.Background(), files)
	if err != nil {
		t.Fatalf("CheckAll() error = %v", err)
	}
	if len(checks) != len(files) {
		t.Fatalf("got %d checks, want %d", len(checks), len(files))
	}
	for i, fc := range checks {
		if fc.File.RelativePath != files[i].RelativePath {
			t.Errorf("check %d is for %s, want %s", i, fc.File.RelativePath, files[i].RelativePath)
		}
		if seen[fc.File.RelativePath] != 2 {
			t.Errorf("%s verified %d statements, want 2", fc.File.RelativePath, seen[fc.File.RelativePath])
		}
	}

	s := runner.SummarizeChecks(checks)
	if s.Mismatches != 1 || s.FailedFiles != 1 || s.PassedFiles != 5 {
		t.Errorf("mismatches %d failed %d passed %d", s.Mismatches, s.FailedFiles, s.PassedFiles)
	}
}

func TestWorkerPool_VerifierFailure(t *testing.T) {
	files := writeFiles(t, map[string]string{"1.sql": "select 1;", "2.sql": "select 2;"})
	boom := errors.New("connection reset")
	verifier := verifierFunc(func(context.Context, string, *parser.Statement, *perrors.Error) (*perrors.MismatchError, error) {
		return nil, boom
	})

	pool := runner.NewWorkerPool(runner.NewChecker(stream.DefaultConfig(), verifier, time.Second), 2)
	_, err := pool.CheckAll(context.Background(), files)
	if !errors.Is(err, boom) {
		t.Fatalf("CheckAll() error = %v, want %v", err, boom)
	}
	if !strings.Contains(err.Error(), "failed to verify") {
		t.Errorf("error %q lacks context", err)
	}
}

func TestWorkerPool_Cancelled(t *testing.T) {
	files := writeFiles(t, map[string]string{"1.sql": "select 1;", "2.sql": "select 2;", "3.sql": "select 3;"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 2} {
		pool := runner.NewWorkerPool(runner.NewChecker(stream.DefaultConfig(), nil, 0), workers)
		checks, err := pool.CheckAll(ctx, files)
		if err != nil {
			t.Fatalf("workers=%d: CheckAll() error = %v", workers, err)
		}
		s := runner.SummarizeChecks(checks)
		if s.CancelledFiles == 0 || s.AllPassed() {
			t.Errorf("workers=%d: cancelled files = %d", workers, s.CancelledFiles)
		}
	}
}

func TestCheckStatus_String(t *testing.T) {
	tests := map[runner.CheckStatus]string{
		runner.CheckPending:   "pending",
		runner.CheckRunning:   "running",
		runner.CheckPassed:    "passed",
		runner.CheckFailed:    "failed",
		runner.CheckCancelled: "cancelled",
		runner.CheckStatus(42): "unknown",
	}
	for status, want := range tests {
		if got := status.String(); got != want {
			t.Errorf("CheckStatus(%d).String() = %q, want %q", int(status), got, want)
		}
	}
}
