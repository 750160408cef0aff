package integration_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cybertec-postgresql/pgparse/internal/cli"
	"github.com/cybertec-postgresql/pgparse/internal/results"
	"github.com/cybertec-postgresql/pgparse/internal/testutil"
)

// TestVerifyEndToEnd runs the verify workflow against a PostgreSQL
// container: discovery, per-statement parsing, server cross-check, result
// storage and the JSON report.
func TestVerifyEndToEnd(t *testing.T) {
	connString := testutil.SetupPostgresContainer(t)

	dir := t.TempDir()
	files := map[string]string{
		"tx.sql": `begin isolation level repeatable read, read only;
savepoint s1;
release savepoint s1;
commit and no chain;
`,
		"queries.sql": `select 1 + 2 * 3 as seven, 'text'::varchar(10), b'1010';
select distinct relname from pg_class where relkind = 'r';
select x'ff', u&'d\0061ta', now()::timestamptz(3);
show search_path;
set local statement_timeout to 1000;
`,
		"broken.sql": `select 1;
select x::float(54);
select from where;
`,
	}
	for name, sql := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(sql), 0644); err != nil {
			t.Fatal(err)
		}
	}

	config := cli.NewConfig()
	config.ConnectionString = connString
	config.ResultsFile = filepath.Join(dir, ".pgparse", "results.json")
	config.OutputPath = filepath.Join(dir, "report.json")
	config.Format = "json"
	config.Parallelism = 2
	config.Quiet = true
	if err := cli.Validate(config); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	exitCode, err := cli.Verify(context.Background(), config, []string{dir})
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if exitCode != 1 {
		t.Errorf("Verify() exit code = %d, want 1 (broken.sql has errors)", exitCode)
	}

	run, err := results.NewStore(config.ResultsFile).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !run.Settings.Verified {
		t.Error("run is not marked as verified")
	}

	totals := run.Totals()
	if totals.Mismatches != 0 {
		for _, path := range run.Paths() {
			for _, d := range run.Files[path].Diagnostics {
				if d.Severity == results.SeverityMismatch {
					t.Errorf("%s:%d: %s", path, d.Line, d.Message)
				}
			}
		}
	}
	if totals.Errors != 2 {
		t.Errorf("errors = %d, want 2", totals.Errors)
	}
	if totals.Statements != 12 {
		t.Errorf("statements = %d, want 12", totals.Statements)
	}
	if broken := run.Files["broken.sql"]; broken == nil || !broken.Failed() {
		t.Errorf("broken.sql should fail: %+v", broken)
	}
	if _, err := os.Stat(config.OutputPath); err != nil {
		t.Errorf("report not written: %v", err)
	}
}
