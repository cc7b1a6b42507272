package features

import (
	"github.com/jayant1554/credit-score-defi/internal/worker"
	"github.com/jayant1554/credit-score-defi/pkg/logger"
)

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithPool sets the pool used to reduce wallet partitions.
func WithPool(p *worker.Pool) Option {
	return func(a *Aggregator) {
		if p != nil {
			a.pool = p
		}
	}
}

// WithActions overrides the action strings matched per aggregate.
func WithActions(actions Actions) Option {
	return func(a *Aggregator) {
		a.actions = actions
	}
}

// WithEpsilon sets the ratio denominator guard. Non-positive values are ignored.
func WithEpsilon(eps float64) Option {
	return func(a *Aggregator) {
		if eps > 0 {
			a.epsilon = eps
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}
