// Package worker runs indexed batch tasks on a bounded set of goroutines.
package worker

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/jayant1554/credit-score-defi/pkg/logger"
)

// Task processes the item at index i. Tasks must write only to state owned
// by index i so the outcome does not depend on scheduling.
type Task = func(ctx context.Context, i int) error

// Pool bounds the number of tasks running at once.
type Pool struct {
	size   int
	name   string
	logger logger.Logger
}

// NewPool creates a pool running at most size tasks concurrently. A size
// below 1 defaults to runtime.NumCPU().
func NewPool(size int, opts ...Option) *Pool {
	if size < 1 {
		size = runtime.NumCPU()
	}

	p := &Pool{
		size: size,
		name: "worker-pool",
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named(p.name)
	}
	return p
}

// Size returns the concurrency bound.
func (p *Pool) Size() int { return p.size }

// Run calls task for every index in [0, n) and waits for all of them. The
// first error cancels the context passed to the remaining tasks and is
// returned.
func (p *Pool) Run(ctx context.Context, n int, task Task) error {
	if n <= 0 {
		return nil
	}

	// a single slot needs no goroutines
	if p.size == 1 || n == 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := task(ctx, i); err != nil {
				return fmt.Errorf("task %d: %w", i, err)
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.size)
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := task(gctx, i); err != nil {
				return fmt.Errorf("task %d: %w", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.logger.Debug(ctx, "pool run failed", logger.Int("tasks", n), logger.Error(err))
		return err
	}
	return ctx.Err()
}
