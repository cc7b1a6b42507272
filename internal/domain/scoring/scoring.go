// Package scoring computes the rule-based pseudo-label score of each wallet
// from four weighted sub-scores.
package scoring

import (
	"context"
	"fmt"
	"math"

	"github.com/jayant1554/credit-score-defi/internal/domain/minmax"
	"github.com/jayant1554/credit-score-defi/internal/domain/model"
	"github.com/jayant1554/credit-score-defi/pkg/logger"
	"github.com/jayant1554/credit-score-defi/pkg/metrics"
)

// Score bounds.
const (
	MinScore = 0
	MaxScore = 1000
)

// SubScore names one component of the rule-based score.
type SubScore string

// Sub-scores.
const (
	RAS SubScore = "ras" // risk adjustment
	RBS SubScore = "rbs" // repayment behavior
	CSS SubScore = "css" // capital and stability
	PES SubScore = "pes" // payment engagement
)

// Order is the order in which weighted sub-scores are summed.
var Order = []SubScore{RAS, RBS, CSS, PES}

// Weights maps each sub-score to its share of the final score.
type Weights map[SubScore]float64

// DefaultWeights returns the 40/30/20/10 weighting.
func DefaultWeights() Weights {
	return Weights{RAS: 0.40, RBS: 0.30, CSS: 0.20, PES: 0.10}
}

// Validate checks that every sub-score has a finite non-negative weight.
func (w Weights) Validate() error {
	total := 0.0
	for _, s := range Order {
		v, ok := w[s]
		if !ok {
			return fmt.Errorf("%w: missing weight for %s", ErrInvalidWeights, s)
		}
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: weight for %s is %g", ErrInvalidWeights, s, v)
		}
		total += v
	}
	if total == 0 {
		return fmt.Errorf("%w: all weights are zero", ErrInvalidWeights)
	}
	return nil
}

// Result holds the sub-scores and the integer score of one wallet.
type Result struct {
	Wallet string
	RAS    float64
	RBS    float64
	CSS    float64
	PES    float64
	Score  int
}

// Sub returns the value of sub-score s.
func (r *Result) Sub(s SubScore) float64 {
	switch s {
	case RAS:
		return r.RAS
	case RBS:
		return r.RBS
	case CSS:
		return r.CSS
	case PES:
		return r.PES
	}
	return 0
}

// Scorer computes rule-based scores for a wallet population.
type Scorer interface {
	Score(ctx context.Context, fs []model.WalletFeatures) ([]Result, error)
}

// Scaler rescales one feature column onto [0, 1] across the batch.
type Scaler func(feature string, values []float64) []float64

// UnitScaler is the plain min-max Scaler.
func UnitScaler(_ string, values []float64) []float64 {
	out, _ := minmax.Unit(values)
	return out
}

// Option applies a configuration option to the RuleScorer.
type Option func(*RuleScorer)

// WithWeights sets the sub-score weights.
func WithWeights(w Weights) Option {
	return func(s *RuleScorer) {
		s.weights = make(Weights, len(w))
		for k, v := range w {
			s.weights[k] = v
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *RuleScorer) {
		if l != nil {
			s.logger = l
		}
	}
}

// RuleScorer implements Scorer with batch-relative min-max sub-scores.
type RuleScorer struct {
	weights Weights
	logger  logger.Logger
}

// NewRuleScorer creates a RuleScorer.
func NewRuleScorer(opts ...Option) (*RuleScorer, error) {
	s := &RuleScorer{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.weights.Validate(); err != nil {
		return nil, err
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("scoring")
	}
	return s, nil
}

// Score computes every wallet's sub-scores and its score
// int(1000 * (ras*w_ras + rbs*w_rbs + css*w_css + pes*w_pes)), truncated
// toward zero and clamped to [0, 1000]. Sub-scores are relative to the batch.
// A single-wallet batch has zero range on every scaled feature, so css, rbs,
// and pes are 0 and the score is 1000*w_ras or 0.
func (s *RuleScorer) Score(ctx context.Context, fs []model.WalletFeatures) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scale := s.scaler(ctx)
	subs := map[SubScore][]float64{
		RAS: RiskAdjustment(fs),
		RBS: RepaymentBehavior(fs, scale),
		CSS: CapitalStability(fs, scale),
		PES: PaymentEngagement(fs, scale),
	}

	out := make([]Result, len(fs))
	for i := range fs {
		r := Result{
			Wallet: fs[i].Wallet,
			RAS:    subs[RAS][i],
			RBS:    subs[RBS][i],
			CSS:    subs[CSS][i],
			PES:    subs[PES][i],
		}
		total := 0.0
		for _, sub := range Order {
			total += r.Sub(sub) * s.weights[sub]
		}
		r.Score = ToScore(total)
		out[i] = r
	}
	return out, nil
}

// scaler wraps UnitScaler to report zero-range columns.
func (s *RuleScorer) scaler(ctx context.Context) Scaler {
	return func(feature string, values []float64) []float64 {
		out, zero := minmax.Unit(values)
		if zero && len(values) > 0 {
			metrics.RecordZeroRangeFeature(feature)
			s.logger.Debug(ctx, "feature has zero range", logger.String("feature", feature))
		}
		return out
	}
}

// ToScore converts a weighted sum in [0, 1] to an integer score.
func ToScore(total float64) int {
	v := total * MaxScore
	if math.IsNaN(v) || v <= MinScore {
		return MinScore
	}
	if v >= MaxScore {
		return MaxScore
	}
	return int(v)
}
