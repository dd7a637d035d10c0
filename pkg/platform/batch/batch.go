// Package batch runs per-item units of work with bounded concurrency.
//
// A failure on one item never aborts the rest: errors are collected into a
// capped list alongside a success count, and only context cancellation
// stops the run early. Cancellation is cooperative, checked between items,
// never mid-item.
package batch

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultConcurrency bounds in-flight items. Small and fixed: enough to
	// overlap collaborator I/O, few enough to respect vendor rate limits.
	DefaultConcurrency = 8
	// DefaultMaxErrors caps the retained error list so a pathological batch
	// cannot blow up memory.
	DefaultMaxErrors = 25
)

// ItemError records one failed item.
type ItemError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// Result summarizes a batch run.
type Result struct {
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Errors    []ItemError `json:"errors,omitempty"`
	// ErrorsTruncated is set when more items failed than the error cap
	// retains; Failed still counts every failure.
	ErrorsTruncated bool `json:"errors_truncated,omitempty"`
}

// Runner executes batches with fixed concurrency and a capped error list.
// The zero value is not usable; construct with New.
type Runner struct {
	concurrency int
	maxErrors   int
}

// Option configures a Runner.
type Option func(*Runner)

// WithConcurrency sets the number of in-flight items.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithMaxErrors sets the error list cap.
func WithMaxErrors(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxErrors = n
		}
	}
}

func New(opts ...Option) *Runner {
	r := &Runner{concurrency: DefaultConcurrency, maxErrors: DefaultMaxErrors}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes items [0,n) through fn. It returns when every dispatched
// item has finished. The returned error is non-nil only when the context
// was cancelled; per-item failures live in the Result.
func (r *Runner) Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) (Result, error) {
	var (
		mu     sync.Mutex
		result Result
	)

	g := &errgroup.Group{}
	g.SetLimit(r.concurrency)

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			// Re-check after waiting for a worker slot.
			if err := ctx.Err(); err != nil {
				return nil
			}
			err := fn(ctx, i)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				if len(result.Errors) < r.maxErrors {
					result.Errors = append(result.Errors, ItemError{Index: i, Message: err.Error()})
				} else {
					result.ErrorsTruncated = true
				}
				return nil
			}
			result.Succeeded++
			return nil
		})
	}

	_ = g.Wait()
	return result, ctx.Err()
}
