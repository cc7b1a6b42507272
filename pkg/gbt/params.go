package gbt

import (
	"context"
	"fmt"
	"math"
)

// Params are the boosting hyperparameters.
type Params struct {
	// NEstimators is the number of boosting rounds. Every round is trained;
	// there is no early stopping.
	NEstimators int

	// LearningRate shrinks each tree's contribution.
	LearningRate float64

	// MaxDepth bounds tree depth; a depth-1 tree is a single split.
	MaxDepth int

	// ColsampleByTree is the fraction of features sampled for each tree.
	ColsampleByTree float64

	// Lambda is the L2 regularization on leaf weights.
	Lambda float64

	// MinChildWeight is the minimum hessian sum allowed in a child.
	MinChildWeight float64

	// Seed drives feature subsampling.
	Seed int64
}

// DefaultParams returns 200 rounds of depth-3 trees at learning rate 0.2
// with every feature available to every tree.
func DefaultParams() Params {
	return Params{
		NEstimators:     200,
		LearningRate:    0.2,
		MaxDepth:        3,
		ColsampleByTree: 1.0,
		Lambda:          1.0,
		MinChildWeight:  1.0,
		Seed:            42,
	}
}

// Validate checks the parameter ranges.
func (p Params) Validate() error {
	switch {
	case p.NEstimators < 1:
		return fmt.Errorf("%w: n_estimators must be >= 1, got %d", ErrInvalidParams, p.NEstimators)
	case p.LearningRate <= 0 || math.IsNaN(p.LearningRate):
		return fmt.Errorf("%w: learning_rate must be > 0, got %g", ErrInvalidParams, p.LearningRate)
	case p.MaxDepth < 1:
		return fmt.Errorf("%w: max_depth must be >= 1, got %d", ErrInvalidParams, p.MaxDepth)
	case p.ColsampleByTree <= 0 || p.ColsampleByTree > 1:
		return fmt.Errorf("%w: colsample_bytree must be in (0,1], got %g", ErrInvalidParams, p.ColsampleByTree)
	case p.Lambda < 0:
		return fmt.Errorf("%w: lambda must be >= 0, got %g", ErrInvalidParams, p.Lambda)
	case p.MinChildWeight < 0:
		return fmt.Errorf("%w: min_child_weight must be >= 0, got %g", ErrInvalidParams, p.MinChildWeight)
	}
	return nil
}

// Runner executes n indexed tasks, possibly in parallel. Tasks write only to
// their own slot, so any Runner yields the same model.
type Runner interface {
	Run(ctx context.Context, n int, task func(ctx context.Context, i int) error) error
}

// serialRunner runs tasks one after another.
type serialRunner struct{}

func (serialRunner) Run(ctx context.Context, n int, task func(ctx context.Context, i int) error) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := task(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

// FitOption configures a Fit call.
type FitOption func(*fitConfig)

type fitConfig struct {
	runner Runner
	evalX  [][]float64
	evalY  []float64
}

// WithRunner sets the Runner used for per-feature split search.
func WithRunner(r Runner) FitOption {
	return func(c *fitConfig) {
		if r != nil {
			c.runner = r
		}
	}
}

// WithEvalSet adds a monitoring set evaluated after every round. It never
// influences training.
func WithEvalSet(x [][]float64, y []float64) FitOption {
	return func(c *fitConfig) {
		c.evalX = x
		c.evalY = y
	}
}
