package runner

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cybertec-postgresql/pgparse/internal/discovery"
	"github.com/cybertec-postgresql/pgparse/internal/logger"
)

// WorkerPool checks files concurrently with a bounded number of workers
type WorkerPool struct {
	checker    *Checker
	maxWorkers int
}

// NewWorkerPool creates a new worker pool for parallel file checks
func NewWorkerPool(checker *Checker, maxWorkers int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{
		checker:    checker,
		maxWorkers: maxWorkers,
	}
}

// CheckAll checks every file and returns the results in input order. Files
// not started before ctx is cancelled are reported as cancelled. The first
// verifier failure stops the remaining workers and is returned.
func (wp *WorkerPool) CheckAll(ctx context.Context, files []discovery.DiscoveredFile) ([]*FileCheck, error) {
	if len(files) == 0 {
		return nil, nil
	}

	// If only one worker or one file, fall back to sequential checks
	if wp.maxWorkers == 1 || len(files) == 1 {
		return wp.checker.CheckBatch(ctx, files)
	}

	logger.Debug("starting %d workers for %d files", wp.maxWorkers, len(files))

	checks := make([]*FileCheck, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(wp.maxWorkers)

	for i := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				checks[i] = cancelled(&files[i], err)
				return nil
			}
			fc, err := wp.checker.Check(gctx, &files[i])
			checks[i] = fc
			if err != nil {
				return err
			}
			logger.Debug("[%s] %s", fc.Status, fc.File.RelativePath)
			return nil
		})
	}

	return checks, g.Wait()
}

func cancelled(file *discovery.DiscoveredFile, err error) *FileCheck {
	now := time.Now()
	return &FileCheck{
		File:      file,
		StartTime: now,
		EndTime:   now,
		Status:    CheckCancelled,
		Error:     err,
	}
}
