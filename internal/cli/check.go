package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cybertec-postgresql/pgparse/internal/database"
	"github.com/cybertec-postgresql/pgparse/internal/discovery"
	perrors "github.com/cybertec-postgresql/pgparse/internal/errors"
	"github.com/cybertec-postgresql/pgparse/internal/logger"
	"github.com/cybertec-postgresql/pgparse/internal/report"
	"github.com/cybertec-postgresql/pgparse/internal/results"
	"github.com/cybertec-postgresql/pgparse/internal/runner"
)

// Check parses every SQL file under paths, stores the results and prints a
// report. It returns the process exit code.
func Check(ctx context.Context, config *Config, paths []string) (int, error) {
	return run(ctx, config, paths, nil)
}

// Verify is Check with every statement also sent to the server configured
// by config.ConnectionString. Statements are prepared, never executed.
func Verify(ctx context.Context, config *Config, paths []string) (int, error) {
	if config.ConnectionString == "" {
		return 1, perrors.NewConfigError("connection", "a connection string is required to verify statements")
	}

	// Step 1: Connect to PostgreSQL
	pool, err := database.NewPool(ctx, config)
	if err != nil {
		return 1, fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()
	logger.Debug("connected to PostgreSQL %d", pool.ServerVersion())

	// Step 2: Create the scratch database
	target := pool
	if config.ScratchDatabase {
		scratch, err := database.CreateScratchDatabase(ctx, pool)
		if err != nil {
			return 1, err
		}
		defer func() {
			cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := database.DestroyScratchDatabase(cleanupCtx, pool, scratch); err != nil {
				logger.Warn("failed to drop scratch database: %v", err)
			}
		}()
		target = scratch
	}

	return run(ctx, config, paths, database.NewVerifier(target))
}

func run(ctx context.Context, config *Config, paths []string, verifier runner.Verifier) (int, error) {
	startTime := time.Now()

	parserCfg, err := ParserConfig(config)
	if err != nil {
		return 1, err
	}

	// Step 1: Discover SQL files
	logger.Debug("discovering SQL files in %v", paths)
	files, err := discovery.DiscoverPaths(paths, discovery.Options{
		Patterns: config.Patterns,
		Encoding: config.Encoding,
	})
	if err != nil {
		return 1, fmt.Errorf("failed to discover files: %w", err)
	}
	if len(files) == 0 {
		logger.Info("No SQL files found (%v)", config.Patterns)
		return 0, nil
	}
	logger.Debug("found %d file(s)", len(files))

	// Step 2: Check files (parallel or sequential based on config)
	checker := runner.NewChecker(parserCfg, verifier, config.Timeout)
	checks, err := runner.NewWorkerPool(checker, config.Parallelism).CheckAll(ctx, files)
	if err != nil {
		return 1, fmt.Errorf("check failed: %w", err)
	}

	// Step 3: Collect results
	collector := results.NewCollector(results.Settings{
		StandardConformingStrings: config.StandardConformingStrings,
		BackslashQuote:            parserCfg.BackslashQuote.String(),
		Verified:                  verifier != nil,
	})
	collector.CollectFromChecks(checks)

	// Step 4: Save results
	store := results.NewStore(config.ResultsFile)
	if err := store.Save(collector.Run()); err != nil {
		return 1, fmt.Errorf("failed to save results: %w", err)
	}

	// Step 5: Print report
	if err := writeReport(collector.Run(), config); err != nil {
		return 1, err
	}

	summary := runner.SummarizeChecks(checks)
	logger.Info("Checked %d file(s) in %v, results written to %s",
		summary.TotalFiles, time.Since(startTime).Round(time.Millisecond), config.ResultsFile)

	return summary.ExitCode(), nil
}

// writeReport renders run in config.Format to config.OutputPath
func writeReport(run *results.Run, config *Config) error {
	var writer io.Writer = os.Stdout
	if config.OutputPath != "" && config.OutputPath != "-" {
		f, err := os.Create(config.OutputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		writer = f
	}

	opts := report.Options{Color: report.ColorEnabled(config.Color, writer)}
	if err := report.FormatToWriter(run, report.FormatType(config.Format), opts, writer); err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	if config.OutputPath != "" && config.OutputPath != "-" {
		logger.Info("Report written to %s", config.OutputPath)
	}
	return nil
}
