package runner

import (
	"time"

	"github.com/cybertec-postgresql/pgparse/internal/ast"
	"github.com/cybertec-postgresql/pgparse/internal/discovery"
	perrors "github.com/cybertec-postgresql/pgparse/internal/errors"
	"github.com/cybertec-postgresql/pgparse/internal/parser"
)

// FileCheck represents the check of a single SQL file
type FileCheck struct {
	File       *discovery.DiscoveredFile
	Source     string
	StartTime  time.Time
	EndTime    time.Time
	Status     CheckStatus
	Error      error // file could not be read or scanned to the end
	Statements []*StatementCheck
}

// StatementCheck is the verdict on one statement of a file
type StatementCheck struct {
	Statement *parser.Statement
	Node      ast.Stmt // nil when skipped or rejected
	Skipped   bool     // statement kind is outside the grammar
	Err       *perrors.Error
	Warnings  []perrors.Warning
	Mismatch  *perrors.MismatchError // set only by server verification
}

// Failed reports whether the statement was rejected locally or disagrees
// with the server
func (sc *StatementCheck) Failed() bool {
	return sc.Err != nil || sc.Mismatch != nil
}

// CheckStatus represents the current state of a file check
type CheckStatus int

const (
	CheckPending CheckStatus = iota
	CheckRunning
	CheckPassed
	CheckFailed
	CheckCancelled
)

// String returns a string representation of CheckStatus
func (cs CheckStatus) String() string {
	switch cs {
	case CheckPending:
		return "pending"
	case CheckRunning:
		return "running"
	case CheckPassed:
		return "passed"
	case CheckFailed:
		return "failed"
	case CheckCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Duration returns the check duration
func (fc *FileCheck) Duration() time.Duration {
	if fc.EndTime.IsZero() {
		return time.Since(fc.StartTime)
	}
	return fc.EndTime.Sub(fc.StartTime)
}

// CheckSummary summarizes all file checks
type CheckSummary struct {
	TotalFiles     int
	PassedFiles    int
	FailedFiles    int
	CancelledFiles int

	Statements int
	Parsed     int
	Skipped    int
	Errors     int
	Warnings   int
	Mismatches int

	TotalDuration time.Duration
}

// AllPassed returns true if every file was checked without errors
func (s *CheckSummary) AllPassed() bool {
	return s.FailedFiles == 0 && s.CancelledFiles == 0
}

// ExitCode returns the appropriate exit code based on check results
func (s *CheckSummary) ExitCode() int {
	if s.AllPassed() {
		return 0
	}
	return 1
}
