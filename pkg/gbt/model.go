// Package gbt implements gradient-boosted regression trees with a
// squared-error objective, exact greedy split search, and L2-regularized
// leaf weights.
//
// Training is deterministic: for fixed data, parameters, and seed the
// fitted model is identical regardless of the Runner used to parallelize
// split search.
package gbt

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// History records the root mean squared error after every round.
type History struct {
	TrainRMSE []float64 `json:"train_rmse"`
	EvalRMSE  []float64 `json:"eval_rmse,omitempty"`
}

// Model is a fitted tree ensemble.
type Model struct {
	BaseScore float64 `json:"base_score"`
	NFeatures int     `json:"n_features"`
	Params    Params  `json:"params"`
	Trees     []Tree  `json:"trees"`
	History   History `json:"history"`
}

// Fit trains a model on rows x with targets y for p.NEstimators rounds. The
// base score is the mean target.
func Fit(ctx context.Context, x [][]float64, y []float64, p Params, opts ...FitOption) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	cfg := fitConfig{runner: serialRunner{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	nFeatures, err := checkMatrix(x, y)
	if err != nil {
		return nil, err
	}
	if cfg.evalX != nil || cfg.evalY != nil {
		if len(cfg.evalX) == 0 {
			return nil, fmt.Errorf("%w: empty eval set", ErrShape)
		}
		ef, err := checkMatrix(cfg.evalX, cfg.evalY)
		if err != nil {
			return nil, fmt.Errorf("eval set: %w", err)
		}
		if ef != nFeatures {
			return nil, fmt.Errorf("%w: eval set has %d features, training has %d", ErrShape, ef, nFeatures)
		}
	}

	n := len(x)
	m := &Model{
		BaseScore: mean(y),
		NFeatures: nFeatures,
		Params:    p,
		Trees:     make([]Tree, 0, p.NEstimators),
	}

	b := &builder{params: p, x: x, runner: cfg.runner}
	b.sorted, err = presort(ctx, cfg.runner, x, nFeatures)
	if err != nil {
		return nil, err
	}

	pred := filled(n, m.BaseScore)
	evalPred := filled(len(cfg.evalX), m.BaseScore)
	grad := make([]float64, n)
	hess := make([]float64, n)
	rng := rand.New(rand.NewSource(p.Seed)) //nolint:gosec // reproducible sampling, not security

	for round := 0; round < p.NEstimators; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for i := range grad {
			grad[i] = pred[i] - y[i]
			hess[i] = 1
		}

		tree, err := b.build(ctx, grad, hess, sampleFeatures(rng, nFeatures, p.ColsampleByTree))
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", round, err)
		}
		m.Trees = append(m.Trees, tree)

		for i := range pred {
			pred[i] += tree.Predict(x[i])
		}
		m.History.TrainRMSE = append(m.History.TrainRMSE, rmse(pred, y))

		if len(cfg.evalX) > 0 {
			for i := range evalPred {
				evalPred[i] += tree.Predict(cfg.evalX[i])
			}
			m.History.EvalRMSE = append(m.History.EvalRMSE, rmse(evalPred, cfg.evalY))
		}
	}
	return m, nil
}

// PredictRow returns the model output for one row.
func (m *Model) PredictRow(row []float64) float64 {
	out := m.BaseScore
	for i := range m.Trees {
		out += m.Trees[i].Predict(row)
	}
	return out
}

// Predict returns the model output for every row of x.
func (m *Model) Predict(x [][]float64) ([]float64, error) {
	out := make([]float64, len(x))
	for i, row := range x {
		if len(row) != m.NFeatures {
			return nil, fmt.Errorf("%w: row %d has %d features, model has %d", ErrShape, i, len(row), m.NFeatures)
		}
		out[i] = m.PredictRow(row)
	}
	return out, nil
}

// Importance returns the total split gain attributed to each feature.
func (m *Model) Importance() []float64 {
	imp := make([]float64, m.NFeatures)
	for i := range m.Trees {
		for _, n := range m.Trees[i].Nodes {
			if !n.Leaf {
				imp[n.Feature] += n.Gain
			}
		}
	}
	return imp
}

func checkMatrix(x [][]float64, y []float64) (int, error) {
	if len(x) == 0 {
		return 0, ErrEmptyData
	}
	if len(x) != len(y) {
		return 0, fmt.Errorf("%w: %d rows, %d targets", ErrShape, len(x), len(y))
	}
	nf := len(x[0])
	if nf == 0 {
		return 0, fmt.Errorf("%w: rows have no features", ErrShape)
	}
	for i, row := range x {
		if len(row) != nf {
			return 0, fmt.Errorf("%w: row %d has %d features, want %d", ErrShape, i, len(row), nf)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, fmt.Errorf("%w: non-finite value at row %d feature %d", ErrShape, i, j)
			}
		}
		if math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			return 0, fmt.Errorf("%w: non-finite target at row %d", ErrShape, i)
		}
	}
	return nf, nil
}

// presort orders row indices by value for every feature; ties keep row order.
func presort(ctx context.Context, r Runner, x [][]float64, nFeatures int) ([][]int, error) {
	sorted := make([][]int, nFeatures)
	err := r.Run(ctx, nFeatures, func(_ context.Context, f int) error {
		idx := make([]int, len(x))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]][f] < x[idx[b]][f] })
		sorted[f] = idx
		return nil
	})
	return sorted, err
}

// sampleFeatures picks round(frac*n) features, at least one, in ascending
// order. The full set is returned without consuming randomness.
func sampleFeatures(rng *rand.Rand, n int, frac float64) []int {
	k := int(math.Round(frac * float64(n)))
	if k < 1 {
		k = 1
	}
	if k >= n {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}
	picked := rng.Perm(n)[:k]
	sort.Ints(picked)
	return picked
}

func mean(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x
	}
	return s / float64(len(v))
}

func filled(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func rmse(pred, y []float64) float64 {
	s := 0.0
	for i := range pred {
		d := pred[i] - y[i]
		s += d * d
	}
	return math.Sqrt(s / float64(len(pred)))
}
