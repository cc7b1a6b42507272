package gbt_test

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayant1554/credit-score-defi/pkg/gbt"
)

// goroutineRunner runs every task on its own goroutine.
type goroutineRunner struct{}

func (goroutineRunner) Run(ctx context.Context, n int, task func(ctx context.Context, i int) error) error {
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = task(ctx, i)
		}()
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func syntheticData(n int, seed int64) ([][]float64, []float64) {
	rng := rand.New(rand.NewSource(seed))
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := range x {
		a, b, c := rng.Float64()*10, rng.Float64()*5, float64(rng.Intn(3))
		x[i] = []float64{a, b, c}
		y[i] = 3*a + b*b - 20*c
	}
	return x, y
}

func TestFitSingleSplit(t *testing.T) {
	p := gbt.Params{NEstimators: 1, LearningRate: 1, MaxDepth: 1, ColsampleByTree: 1, Lambda: 0, MinChildWeight: 0}
	m, err := gbt.Fit(context.Background(), [][]float64{{1}, {2}}, []float64{0, 10}, p)
	require.NoError(t, err)

	assert.Equal(t, 5.0, m.BaseScore)
	require.Len(t, m.Trees, 1)
	root := m.Trees[0].Nodes[0]
	assert.False(t, root.Leaf)
	assert.Equal(t, 0, root.Feature)
	assert.Equal(t, 1.5, root.Threshold)

	pred, err := m.Predict([][]float64{{1}, {2}, {0}, {100}})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 10, 0, 10}, pred)
}

func TestFitLearnsSignal(t *testing.T) {
	x, y := syntheticData(300, 1)
	m, err := gbt.Fit(context.Background(), x, y, gbt.DefaultParams())
	require.NoError(t, err)

	require.Len(t, m.Trees, 200)
	require.Len(t, m.History.TrainRMSE, 200)
	assert.Empty(t, m.History.EvalRMSE)

	first, last := m.History.TrainRMSE[0], m.History.TrainRMSE[199]
	assert.Less(t, last, first/5)
	for i := 1; i < len(m.History.TrainRMSE); i++ {
		assert.LessOrEqual(t, m.History.TrainRMSE[i], m.History.TrainRMSE[i-1]+1e-9, "round %d", i)
	}

	for _, tree := range m.Trees {
		assert.LessOrEqual(t, tree.Depth(), 3)
	}

	imp := m.Importance()
	require.Len(t, imp, 3)
	for _, v := range imp {
		assert.Greater(t, v, 0.0)
	}
}

func TestFitDeterministicAcrossRunners(t *testing.T) {
	x, y := syntheticData(200, 7)
	p := gbt.DefaultParams()
	p.NEstimators = 50

	serial, err := gbt.Fit(context.Background(), x, y, p)
	require.NoError(t, err)
	parallel, err := gbt.Fit(context.Background(), x, y, p, gbt.WithRunner(goroutineRunner{}))
	require.NoError(t, err)

	assert.Equal(t, serial, parallel)
}

func TestFitEvalSetOnlyMonitors(t *testing.T) {
	x, y := syntheticData(250, 3)
	p := gbt.DefaultParams()
	p.NEstimators = 30

	plain, err := gbt.Fit(context.Background(), x[:200], y[:200], p)
	require.NoError(t, err)
	monitored, err := gbt.Fit(context.Background(), x[:200], y[:200], p, gbt.WithEvalSet(x[200:], y[200:]))
	require.NoError(t, err)

	assert.Equal(t, plain.Trees, monitored.Trees)
	assert.Len(t, monitored.History.EvalRMSE, 30)
	for _, v := range monitored.History.EvalRMSE {
		assert.False(t, math.IsNaN(v))
	}
}

func TestFitConstantTarget(t *testing.T) {
	x := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	m, err := gbt.Fit(context.Background(), x, []float64{7, 7, 7}, gbt.DefaultParams())
	require.NoError(t, err)

	for _, tree := range m.Trees {
		require.Len(t, tree.Nodes, 1)
		assert.True(t, tree.Nodes[0].Leaf)
	}
	pred, err := m.Predict(x)
	require.NoError(t, err)
	for _, v := range pred {
		assert.InDelta(t, 7, v, 1e-9)
	}
}

func TestFitColumnSubsample(t *testing.T) {
	x, y := syntheticData(120, 11)
	p := gbt.DefaultParams()
	p.NEstimators = 20
	p.ColsampleByTree = 0.34

	a, err := gbt.Fit(context.Background(), x, y, p)
	require.NoError(t, err)
	b, err := gbt.Fit(context.Background(), x, y, p)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	for _, tree := range a.Trees {
		used := map[int]bool{}
		for _, n := range tree.Nodes {
			if !n.Leaf {
				used[n.Feature] = true
			}
		}
		assert.LessOrEqual(t, len(used), 1)
	}
}

func TestFitErrors(t *testing.T) {
	ctx := context.Background()
	ok := gbt.DefaultParams()

	bad := ok
	bad.MaxDepth = 0
	_, err := gbt.Fit(ctx, [][]float64{{1}}, []float64{1}, bad)
	assert.ErrorIs(t, err, gbt.ErrInvalidParams)

	_, err = gbt.Fit(ctx, nil, nil, ok)
	assert.ErrorIs(t, err, gbt.ErrEmptyData)

	_, err = gbt.Fit(ctx, [][]float64{{1}, {2}}, []float64{1}, ok)
	assert.ErrorIs(t, err, gbt.ErrShape)

	_, err = gbt.Fit(ctx, [][]float64{{1}, {2, 3}}, []float64{1, 2}, ok)
	assert.ErrorIs(t, err, gbt.ErrShape)

	_, err = gbt.Fit(ctx, [][]float64{{math.NaN()}}, []float64{1}, ok)
	assert.ErrorIs(t, err, gbt.ErrShape)

	_, err = gbt.Fit(ctx, [][]float64{{1}}, []float64{1}, ok, gbt.WithEvalSet([][]float64{{1, 2}}, []float64{1}))
	assert.ErrorIs(t, err, gbt.ErrShape)

	m, err := gbt.Fit(ctx, [][]float64{{1}, {2}}, []float64{1, 2}, ok)
	require.NoError(t, err)
	_, err = m.Predict([][]float64{{1, 2}})
	assert.ErrorIs(t, err, gbt.ErrShape)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = gbt.Fit(cctx, [][]float64{{1}, {2}}, []float64{1, 2}, ok)
	assert.ErrorIs(t, err, context.Canceled)
}
