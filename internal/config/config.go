// Package config defines run configuration structures and loading hooks.
//
// Conventions:
//   - New() returns a Config holding every default; Load layers file and env on top.
//   - Validation errors wrap ErrInvalidConfig, loading errors wrap ErrLoadConfig.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Seed drives the train/held-out split and any column subsampling.
	Seed int64 `koanf:"seed"`

	// WorkerCount bounds parallel feature reduction and split search.
	WorkerCount int `koanf:"worker_count"`

	// Epsilon guards the ratio denominators.
	Epsilon float64 `koanf:"epsilon"`

	// TestFraction is the held-out share of wallets.
	TestFraction float64 `koanf:"test_fraction"`

	Weights Weights `koanf:"weights"`
	Actions Actions `koanf:"actions"`
	Model   Model   `koanf:"model"`
	Output  Output  `koanf:"output"`
	Metrics Metrics `koanf:"metrics"`
	Report  Report  `koanf:"report"`
}

// Weights are the rule-based sub-score weights.
type Weights struct {
	RAS float64 `koanf:"ras"`
	RBS float64 `koanf:"rbs"`
	CSS float64 `koanf:"css"`
	PES float64 `koanf:"pes"`
}

// Actions maps the upstream action strings onto the kinds the aggregator sums.
type Actions struct {
	Deposit     string `koanf:"deposit"`
	Borrow      string `koanf:"borrow"`
	Repay       string `koanf:"repay"`
	Liquidation string `koanf:"liquidation"`
}

// Model holds the calibration ensemble hyperparameters.
type Model struct {
	NEstimators     int     `koanf:"n_estimators"`
	LearningRate    float64 `koanf:"learning_rate"`
	MaxDepth        int     `koanf:"max_depth"`
	ColsampleByTree float64 `koanf:"colsample_bytree"`
	Lambda          float64 `koanf:"lambda"`
	MinChildWeight  float64 `koanf:"min_child_weight"`
}

// Output controls where and how score records are written.
type Output struct {
	Path   string `koanf:"path"`
	Format string `koanf:"format"`
}

// Metrics controls batch metric export. Both sinks are optional.
type Metrics struct {
	Textfile       string `koanf:"textfile"`
	PushgatewayURL string `koanf:"pushgateway_url"`
	Job            string `koanf:"job"`
}

// Report controls the end-of-run summary.
type Report struct {
	TopN int `koanf:"top_n"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		LogFormat:    "text",
		Seed:         42,
		WorkerCount:  runtime.NumCPU(),
		Epsilon:      1e-6,
		TestFraction: 0.2,
		Weights: Weights{
			RAS: 0.40,
			RBS: 0.30,
			CSS: 0.20,
			PES: 0.10,
		},
		Actions: Actions{
			Deposit:     "deposit",
			Borrow:      "borrow",
			Repay:       "repay",
			Liquidation: "liquidationcall",
		},
		Model: Model{
			NEstimators:     200,
			LearningRate:    0.2,
			MaxDepth:        3,
			ColsampleByTree: 1.0,
			Lambda:          1.0,
			MinChildWeight:  1.0,
		},
		Output: Output{
			Path:   "wallet_credit_scores.json",
			Format: "json",
		},
		Metrics: Metrics{
			Job: "creditscore",
		},
		Report: Report{
			TopN: 10,
		},
	}
}

// Validate checks the invariants the pipeline relies on.
func (c *Config) Validate() error {
	switch {
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be >= 1, got %d", ErrInvalidConfig, c.WorkerCount)
	case c.Epsilon <= 0:
		return fmt.Errorf("%w: epsilon must be > 0, got %g", ErrInvalidConfig, c.Epsilon)
	case c.TestFraction <= 0 || c.TestFraction >= 1:
		return fmt.Errorf("%w: test_fraction must be in (0,1), got %g", ErrInvalidConfig, c.TestFraction)
	}

	w := c.Weights
	if w.RAS < 0 || w.RBS < 0 || w.CSS < 0 || w.PES < 0 {
		return fmt.Errorf("%w: weights must be non-negative", ErrInvalidConfig)
	}
	if w.RAS+w.RBS+w.CSS+w.PES <= 0 {
		return fmt.Errorf("%w: weights must not all be zero", ErrInvalidConfig)
	}

	a := c.Actions
	if a.Deposit == "" || a.Borrow == "" || a.Repay == "" || a.Liquidation == "" {
		return fmt.Errorf("%w: action names must not be empty", ErrInvalidConfig)
	}

	m := c.Model
	switch {
	case m.NEstimators < 1:
		return fmt.Errorf("%w: model.n_estimators must be >= 1", ErrInvalidConfig)
	case m.LearningRate <= 0:
		return fmt.Errorf("%w: model.learning_rate must be > 0", ErrInvalidConfig)
	case m.MaxDepth < 1:
		return fmt.Errorf("%w: model.max_depth must be >= 1", ErrInvalidConfig)
	case m.ColsampleByTree <= 0 || m.ColsampleByTree > 1:
		return fmt.Errorf("%w: model.colsample_bytree must be in (0,1]", ErrInvalidConfig)
	case m.Lambda < 0 || m.MinChildWeight < 0:
		return fmt.Errorf("%w: model.lambda and model.min_child_weight must be >= 0", ErrInvalidConfig)
	}

	switch strings.ToLower(c.Output.Format) {
	case "json", "csv":
	default:
		return fmt.Errorf("%w: output.format must be json or csv, got %q", ErrInvalidConfig, c.Output.Format)
	}

	if c.Report.TopN < 0 {
		return fmt.Errorf("%w: report.top_n must be >= 0", ErrInvalidConfig)
	}
	return nil
}
