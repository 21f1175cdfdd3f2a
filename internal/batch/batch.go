// Package batch runs a per-file operation across a set of input files with
// a bounded worker pool and collects the outcomes in a fixed order.
package batch

import (
	"context"
	stderrors "errors"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/mcncl/mapdata/internal/logging"
	"github.com/mcncl/mapdata/internal/progress"
)

// Options controls a Run.
type Options struct {
	// Workers bounds concurrent calls. Zero or less means runtime.NumCPU().
	Workers int
	// Abort stops the run at the first failure instead of skipping the file.
	Abort bool
	// Progress, if set, is advanced once per finished file.
	Progress *progress.Bar
}

// Result is the outcome for one file.
type Result[T any] struct {
	Path  string
	Value T
	Err   error
	// Ran is false for files never started because the run was cancelled.
	Ran bool
}

// Failure names a file that could not be processed.
type Failure struct {
	Path string
	Err  error
}

// Summary holds the outcome of a Run with results in input order.
type Summary[T any] struct {
	Results  []Result[T]
	Failures []Failure
}

// Succeeded returns the successful results in input order.
func (s *Summary[T]) Succeeded() []Result[T] {
	out := make([]Result[T], 0, len(s.Results))
	for _, r := range s.Results {
		if r.Ran && r.Err == nil {
			out = append(out, r)
		}
	}
	return out
}

// Run calls fn for every path. Results are stored at the index of their
// path, so callers that fold them in order get the same answer regardless of
// scheduling. With Abort set, the first failure cancels outstanding work and
// is returned as the error; otherwise failures are logged and listed in the
// summary.
func Run[T any](ctx context.Context, opts Options, paths []string, fn func(ctx context.Context, path string) (T, error)) (*Summary[T], error) {
	logger := logging.FromContext(ctx)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]Result[T], len(paths))
	for i, path := range paths {
		results[i].Path = path
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return nil
			}
			value, err := fn(gctx, path)
			results[i] = Result[T]{Path: path, Value: value, Err: err, Ran: true}
			opts.Progress.Increment()
			if err == nil {
				logger.Debug("processed file", "file", path)
				return nil
			}
			logger.Warn("failed to process file", "file", path, "error", err)
			if opts.Abort {
				return err
			}
			return nil
		})
	}

	waitErr := g.Wait()

	summary := &Summary[T]{Results: results}
	for _, r := range results {
		if !r.Ran || r.Err == nil {
			continue
		}
		// Work interrupted by an abort is not a failure of its own.
		if waitErr != nil && r.Err != waitErr && stderrors.Is(r.Err, context.Canceled) {
			continue
		}
		summary.Failures = append(summary.Failures, Failure{Path: r.Path, Err: r.Err})
	}

	if waitErr != nil {
		return summary, waitErr
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}
