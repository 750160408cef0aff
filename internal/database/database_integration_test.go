package database

import (
	"context"
	"testing"
	"time"

	"github.com/cybertec-postgresql/pgparse/internal/parser"
	"github.com/cybertec-postgresql/pgparse/internal/stream"
	"github.com/cybertec-postgresql/pgparse/internal/testutil"
	"github.com/cybertec-postgresql/pgparse/pkg/types"
)

func newTestPool(t *testing.T, scs bool) *Pool {
	t.Helper()
	config := &types.Config{
		ConnectionString:          testutil.SetupPostgresContainer(t),
		StandardConformingStrings: scs,
		BackslashQuote:            "safe_encoding",
		Parallelism:               2,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := NewPool(ctx, config)
	if err != nil {
		t.Fatalf("NewPool() error = %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func TestVerifier_Integration(t *testing.T) {
	pool := newTestPool(t, true)
	ctx := context.Background()

	if pool.ServerVersion() < minServerVersion {
		t.Fatalf("ServerVersion() = %d", pool.ServerVersion())
	}

	scratch, err := CreateScratchDatabase(ctx, pool)
	if err != nil {
		t.Fatalf("CreateScratchDatabase() error = %v", err)
	}
	defer func() {
		if err := DestroyScratchDatabase(ctx, pool, scratch); err != nil {
			t.Errorf("DestroyScratchDatabase() error = %v", err)
		}
	}()

	cfg := stream.DefaultConfig()
	source := "select 1 + 2 as three;\nselect x::float(0);\nselect * from missing_table;\nbegin isolation level serializable;\nselect a.*.b from t"
	stmts, err := parser.SplitStatements(source, cfg)
	if err != nil {
		t.Fatalf("SplitStatements() error = %v", err)
	}

	verifier := NewVerifier(scratch)
	for _, stmt := range stmts {
		_, warnings, local := parser.ParseStatement(stmt, cfg)
		mismatch, err := verifier.Compare(ctx, "it.sql", stmt, local, warnings)
		if err != nil {
			t.Fatalf("Compare(%q) error = %v", stmt.RawSQL, err)
		}
		if mismatch != nil {
			t.Errorf("Compare(%q) = %v", stmt.RawSQL, mismatch)
		}
	}

	verdict, err := verifier.Verdict(ctx, "select from from")
	if err != nil {
		t.Fatalf("Verdict() error = %v", err)
	}
	if verdict.Err == nil || verdict.Err.Code != "42601" {
		t.Errorf("Verdict() = %+v, want a syntax error", verdict.Err)
	}
}

func TestVerifier_EscapeWarnings(t *testing.T) {
	pool := newTestPool(t, false)
	ctx := context.Background()

	cfg := stream.Config{StandardConformingStrings: false}
	stmts, err := parser.SplitStatements(`select 'a\nb'`, cfg)
	if err != nil {
		t.Fatalf("SplitStatements() error = %v", err)
	}
	_, warnings, local := parser.ParseStatement(stmts[0], cfg)
	if local != nil {
		t.Fatalf("ParseStatement() error = %v", local)
	}

	verdict, err := NewVerifier(pool).Verdict(ctx, stmts[0].RawSQL)
	if err != nil {
		t.Fatalf("Verdict() error = %v", err)
	}
	if verdict.Err != nil {
		t.Fatalf("server rejected %q: %v", stmts[0].RawSQL, verdict.Err)
	}
	if !WarningsAgree(warnings, verdict.Notices) {
		t.Errorf("local warnings %v, server notices %v", warningCodes(warnings), noticeCodes(verdict.Notices))
	}
}
