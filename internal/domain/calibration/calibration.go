// Package calibration fits a gradient-boosted regressor to the rule-based
// scores and turns its predictions into the final credit score.
package calibration

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/jayant1554/credit-score-defi/internal/domain/minmax"
	"github.com/jayant1554/credit-score-defi/internal/domain/model"
	"github.com/jayant1554/credit-score-defi/pkg/gbt"
	"github.com/jayant1554/credit-score-defi/pkg/logger"
	"github.com/jayant1554/credit-score-defi/pkg/metrics"
)

const (
	defaultSeed         = 42
	defaultTestFraction = 0.2
	maxScore            = 1000
)

// Report describes a calibration fit.
type Report struct {
	NTrain      int
	NTest       int
	Trees       int
	TrainRMSE   float64
	HoldoutRMSE float64
	History     gbt.History
	// Importance is the total split gain per feature name.
	Importance map[string]float64
}

// Regressor calibrates rule-based scores with a tree ensemble.
type Regressor struct {
	params       gbt.Params
	seed         int64
	testFraction float64
	runner       gbt.Runner
	logger       logger.Logger
}

// New creates a Regressor with 200 depth-3 trees at learning rate 0.2, an
// 80/20 split, and seed 42 unless overridden.
func New(opts ...Option) *Regressor {
	r := &Regressor{
		params:       gbt.DefaultParams(),
		seed:         defaultSeed,
		testFraction: defaultTestFraction,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("calibration")
	}
	return r
}

// Calibrate splits the population into training and held-out rows, fits on
// the training rows while monitoring the held-out rows, predicts every
// wallet, and min-max rescales the predictions to integers in [0, 1000].
// Fewer than two wallets fail with ErrInsufficientPopulation.
func (r *Regressor) Calibrate(ctx context.Context, fs []model.WalletFeatures, targets []int) ([]int, Report, error) {
	if len(fs) < 2 {
		return nil, Report{}, fmt.Errorf("%w: got %d wallets, need at least 2", ErrInsufficientPopulation, len(fs))
	}
	if len(targets) != len(fs) {
		return nil, Report{}, fmt.Errorf("%w: %d targets for %d wallets", ErrTargetMismatch, len(targets), len(fs))
	}

	x := model.Matrix(fs)
	y := make([]float64, len(targets))
	for i, t := range targets {
		y[i] = float64(t)
	}

	train, test := Split(len(fs), r.testFraction, r.seed)
	xTrain, yTrain := rows(x, y, train)
	xTest, yTest := rows(x, y, test)

	params := r.params
	params.Seed = r.seed
	opts := []gbt.FitOption{gbt.WithEvalSet(xTest, yTest)}
	if r.runner != nil {
		opts = append(opts, gbt.WithRunner(r.runner))
	}
	m, err := gbt.Fit(ctx, xTrain, yTrain, params, opts...)
	if err != nil {
		return nil, Report{}, fmt.Errorf("fit calibration model: %w", err)
	}

	pred, err := m.Predict(x)
	if err != nil {
		return nil, Report{}, fmt.Errorf("predict: %w", err)
	}

	scores := Rescale(pred)
	rep := report(m, len(train), len(test))
	r.logger.Debug(ctx, "calibration model fitted",
		logger.Int("train", rep.NTrain),
		logger.Int("test", rep.NTest),
		logger.Float64("train_rmse", rep.TrainRMSE),
		logger.Float64("holdout_rmse", rep.HoldoutRMSE),
	)
	return scores, rep, nil
}

// Split returns a seeded random partition of [0, n) into training and
// held-out indices, holding out ceil(testFraction*n) rows while keeping at
// least one row on each side for n >= 2.
func Split(n int, testFraction float64, seed int64) (train, test []int) {
	perm := rand.New(rand.NewSource(seed)).Perm(n) //nolint:gosec // reproducible split, not security
	nTest := int(math.Ceil(testFraction * float64(n)))
	if nTest < 1 {
		nTest = 1
	}
	if nTest > n-1 {
		nTest = n - 1
	}
	return perm[nTest:], perm[:nTest]
}

// Rescale maps predictions onto [0, 1000] and truncates to integers. Equal
// predictions all map to 0.
func Rescale(pred []float64) []int {
	scaled, zero := minmax.Scale(pred, 0, maxScore)
	if zero && len(pred) > 0 {
		metrics.RecordZeroRangeFeature("prediction")
	}
	out := make([]int, len(scaled))
	for i, v := range scaled {
		out[i] = int(v)
	}
	return out
}

func rows(x [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	xs := make([][]float64, len(idx))
	ys := make([]float64, len(idx))
	for i, j := range idx {
		xs[i] = x[j]
		ys[i] = y[j]
	}
	return xs, ys
}

func report(m *gbt.Model, nTrain, nTest int) Report {
	rep := Report{
		NTrain:     nTrain,
		NTest:      nTest,
		Trees:      len(m.Trees),
		History:    m.History,
		Importance: make(map[string]float64, m.NFeatures),
	}
	if h := m.History.TrainRMSE; len(h) > 0 {
		rep.TrainRMSE = h[len(h)-1]
	}
	if h := m.History.EvalRMSE; len(h) > 0 {
		rep.HoldoutRMSE = h[len(h)-1]
	}
	names := model.FeatureNames()
	for i, v := range m.Importance() {
		if i < len(names) {
			rep.Importance[names[i]] = v
		}
	}
	return rep
}
