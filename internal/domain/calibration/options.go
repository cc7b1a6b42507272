package calibration

import (
	"github.com/jayant1554/credit-score-defi/pkg/gbt"
	"github.com/jayant1554/credit-score-defi/pkg/logger"
)

// Option applies a configuration option to the Regressor.
type Option func(*Regressor)

// WithParams sets the boosting hyperparameters. The seed is taken from
// WithSeed.
func WithParams(p gbt.Params) Option {
	return func(r *Regressor) {
		r.params = p
	}
}

// WithSeed sets the seed of the train/held-out split and feature sampling.
func WithSeed(seed int64) Option {
	return func(r *Regressor) {
		r.seed = seed
	}
}

// WithTestFraction sets the held-out share. Values outside (0,1) are ignored.
func WithTestFraction(f float64) Option {
	return func(r *Regressor) {
		if f > 0 && f < 1 {
			r.testFraction = f
		}
	}
}

// WithRunner sets the runner used for parallel split search.
func WithRunner(runner gbt.Runner) Option {
	return func(r *Regressor) {
		if runner != nil {
			r.runner = runner
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Regressor) {
		if l != nil {
			r.logger = l
		}
	}
}
