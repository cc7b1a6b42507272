package service

import (
	"github.com/jayant1554/credit-score-defi/internal/config"
	"github.com/jayant1554/credit-score-defi/internal/domain/features"
	"github.com/jayant1554/credit-score-defi/internal/domain/scoring"
	"github.com/jayant1554/credit-score-defi/pkg/gbt"
	"github.com/jayant1554/credit-score-defi/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSeed sets the seed of the train/held-out split.
func WithSeed(seed int64) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithWorkerCount sets the number of goroutines used within a stage.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithEpsilon sets the ratio denominator guard.
func WithEpsilon(eps float64) Option {
	return func(s *Service) {
		if eps > 0 {
			s.epsilon = eps
		}
	}
}

// WithTestFraction sets the held-out share of wallets.
func WithTestFraction(f float64) Option {
	return func(s *Service) {
		if f > 0 && f < 1 {
			s.testFraction = f
		}
	}
}

// WithWeights sets the rule-based sub-score weights.
func WithWeights(w scoring.Weights) Option {
	return func(s *Service) {
		s.weights = w
	}
}

// WithActions sets the action names matched by the aggregator.
func WithActions(a features.Actions) Option {
	return func(s *Service) {
		s.actions = a
	}
}

// WithModelParams sets the calibration model hyperparameters.
func WithModelParams(p gbt.Params) Option {
	return func(s *Service) {
		s.params = p
	}
}

// WithTopN sets how many top-ranked wallets the run summary carries.
func WithTopN(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.topN = n
		}
	}
}

// FromConfig maps a loaded Config onto service options.
func FromConfig(cfg *config.Config) []Option {
	return []Option{
		WithSeed(cfg.Seed),
		WithWorkerCount(cfg.WorkerCount),
		WithEpsilon(cfg.Epsilon),
		WithTestFraction(cfg.TestFraction),
		WithWeights(scoring.Weights{
			scoring.RAS: cfg.Weights.RAS,
			scoring.RBS: cfg.Weights.RBS,
			scoring.CSS: cfg.Weights.CSS,
			scoring.PES: cfg.Weights.PES,
		}),
		WithActions(features.Actions{
			Deposit:     cfg.Actions.Deposit,
			Borrow:      cfg.Actions.Borrow,
			Repay:       cfg.Actions.Repay,
			Liquidation: cfg.Actions.Liquidation,
		}),
		WithModelParams(gbt.Params{
			NEstimators:     cfg.Model.NEstimators,
			LearningRate:    cfg.Model.LearningRate,
			MaxDepth:        cfg.Model.MaxDepth,
			ColsampleByTree: cfg.Model.ColsampleByTree,
			Lambda:          cfg.Model.Lambda,
			MinChildWeight:  cfg.Model.MinChildWeight,
			Seed:            cfg.Seed,
		}),
		WithTopN(cfg.Report.TopN),
	}
}
