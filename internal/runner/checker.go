package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cybertec-postgresql/pgparse/internal/discovery"
	perrors "github.com/cybertec-postgresql/pgparse/internal/errors"
	"github.com/cybertec-postgresql/pgparse/internal/logger"
	"github.com/cybertec-postgresql/pgparse/internal/parser"
	"github.com/cybertec-postgresql/pgparse/internal/stream"
)

// Verifier compares the local verdict on a statement with a server's.
// It returns nil when both agree.
type Verifier interface {
	Compare(ctx context.Context, file string, stmt *parser.Statement, local *perrors.Error, warnings []perrors.Warning) (*perrors.MismatchError, error)
}

// Checker parses files statement by statement
type Checker struct {
	cfg      stream.Config
	verifier Verifier
	timeout  time.Duration
}

// NewChecker creates a checker. verifier may be nil, in which case only the
// local parser is consulted and timeout is unused.
func NewChecker(cfg stream.Config, verifier Verifier, timeout time.Duration) *Checker {
	return &Checker{
		cfg:      cfg,
		verifier: verifier,
		timeout:  timeout,
	}
}

// Check reads, splits and parses a single file. Problems with the file
// itself are recorded in the FileCheck; the returned error is reserved for
// failures of the verifier, which abort the whole run.
func (c *Checker) Check(ctx context.Context, file *discovery.DiscoveredFile) (*FileCheck, error) {
	fc := &FileCheck{
		File:      file,
		StartTime: time.Now(),
		Status:    CheckRunning,
	}
	defer func() { fc.EndTime = time.Now() }()

	if err := ctx.Err(); err != nil {
		fc.Status = CheckCancelled
		fc.Error = err
		return fc, nil
	}

	source, err := discovery.ReadFile(file)
	if err != nil {
		fc.Status = CheckFailed
		fc.Error = fmt.Errorf("failed to read file: %w", err)
		return fc, nil
	}
	fc.Source = source

	statements, err := parser.SplitStatements(source, c.cfg)
	if err != nil {
		var pe *perrors.Error
		if errors.As(err, &pe) {
			err = perrors.NewParseError(file.RelativePath, source, pe)
		}
		fc.Error = err
	}
	logger.Debug("%s: %d statement(s)", file.RelativePath, len(statements))

	for _, stmt := range statements {
		if err := ctx.Err(); err != nil {
			fc.Status = CheckCancelled
			fc.Error = err
			return fc, nil
		}
		sc, err := c.checkStatement(ctx, file, stmt)
		if err != nil {
			fc.Status = CheckFailed
			return fc, err
		}
		fc.Statements = append(fc.Statements, sc)
	}

	fc.Status = CheckPassed
	if fc.Error != nil {
		fc.Status = CheckFailed
	}
	for _, sc := range fc.Statements {
		if sc.Failed() {
			fc.Status = CheckFailed
			break
		}
	}
	return fc, nil
}

func (c *Checker) checkStatement(ctx context.Context, file *discovery.DiscoveredFile, stmt *parser.Statement) (*StatementCheck, error) {
	sc := &StatementCheck{Statement: stmt}
	if !stmt.Type.Supported() {
		sc.Skipped = true
		return sc, nil
	}

	sc.Node, sc.Warnings, sc.Err = parser.ParseStatement(stmt, c.cfg)
	if c.verifier == nil {
		return sc, nil
	}

	vctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	mismatch, err := c.verifier.Compare(vctx, file.RelativePath, stmt, sc.Err, sc.Warnings)
	if err != nil {
		return nil, fmt.Errorf("failed to verify %s:%d: %w", file.RelativePath, stmt.StartLine, err)
	}
	sc.Mismatch = mismatch
	return sc, nil
}

// CheckBatch checks files sequentially, stopping early when ctx is cancelled
func (c *Checker) CheckBatch(ctx context.Context, files []discovery.DiscoveredFile) ([]*FileCheck, error) {
	var checks []*FileCheck

	for i := range files {
		logger.Debug("checking %s", files[i].RelativePath)

		fc, err := c.Check(ctx, &files[i])
		checks = append(checks, fc)
		if err != nil {
			return checks, err
		}
		if ctx.Err() != nil {
			break
		}
	}

	return checks, nil
}

// SummarizeChecks creates a summary of file check results
func SummarizeChecks(checks []*FileCheck) *CheckSummary {
	summary := &CheckSummary{}

	for _, fc := range checks {
		if fc == nil {
			continue
		}
		summary.TotalFiles++
		summary.TotalDuration += fc.Duration()

		switch fc.Status {
		case CheckPassed:
			summary.PassedFiles++
		case CheckFailed:
			summary.FailedFiles++
		case CheckCancelled:
			summary.CancelledFiles++
		}

		var pe *perrors.ParseError
		if errors.As(fc.Error, &pe) {
			summary.Errors++
		}

		for _, sc := range fc.Statements {
			summary.Statements++
			summary.Warnings += len(sc.Warnings)
			switch {
			case sc.Skipped:
				summary.Skipped++
			case sc.Err != nil:
				summary.Errors++
			default:
				summary.Parsed++
			}
			if sc.Mismatch != nil {
				summary.Mismatches++
			}
		}
	}

	return summary
}
