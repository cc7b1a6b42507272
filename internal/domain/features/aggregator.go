// Package features reduces normalized events into per-wallet feature vectors.
package features

import (
	"context"
	"math"
	"sort"

	"github.com/jayant1554/credit-score-defi/internal/domain/dedupe"
	"github.com/jayant1554/credit-score-defi/internal/domain/model"
	"github.com/jayant1554/credit-score-defi/internal/worker"
	"github.com/jayant1554/credit-score-defi/pkg/logger"
)

const (
	secondsPerDay  = 60 * 60 * 24
	defaultEpsilon = 1e-6
)

// Actions names the action kinds that feed the per-action aggregates.
// Events with any other action still count toward age and tx_count.
type Actions struct {
	Deposit     string
	Borrow      string
	Repay       string
	Liquidation string
}

// DefaultActions returns the Aave V2 action names.
func DefaultActions() Actions {
	return Actions{
		Deposit:     "deposit",
		Borrow:      "borrow",
		Repay:       "repay",
		Liquidation: "liquidationcall",
	}
}

// Aggregator groups events by wallet and computes WalletFeatures.
type Aggregator struct {
	pool    *worker.Pool
	actions Actions
	epsilon float64
	logger  logger.Logger
}

// New creates an Aggregator.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		actions: DefaultActions(),
		epsilon: defaultEpsilon,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.Get().Named("features")
	}
	if a.pool == nil {
		a.pool = worker.NewPool(0, worker.WithLogger(a.logger))
	}
	return a
}

// Aggregate partitions events by wallet and reduces each partition. The
// output is sorted by wallet ascending. An empty input fails with
// ErrEmptyResult.
func (a *Aggregator) Aggregate(ctx context.Context, events []model.Event) ([]model.WalletFeatures, error) {
	if len(events) == 0 {
		return nil, ErrEmptyResult
	}

	groups := make(map[string][]int)
	for i := range events {
		w := events[i].Wallet
		groups[w] = append(groups[w], i)
	}
	wallets := make([]string, 0, len(groups))
	for w := range groups {
		wallets = append(wallets, w)
	}
	sort.Strings(wallets)

	out := make([]model.WalletFeatures, len(wallets))
	err := a.pool.Run(ctx, len(wallets), func(_ context.Context, i int) error {
		out[i] = a.reduce(wallets[i], events, groups[wallets[i]])
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.logger.Debug(ctx, "aggregated wallets",
		logger.Int("events", len(events)),
		logger.Int("wallets", len(out)),
	)
	return out, nil
}

// reduce computes the features of one wallet from the events at idx.
func (a *Aggregator) reduce(wallet string, events []model.Event, idx []int) model.WalletFeatures {
	f := model.WalletFeatures{Wallet: wallet}

	minTS, maxTS := math.Inf(1), math.Inf(-1)
	hashes := make([]string, 0, len(idx))
	for _, i := range idx {
		ev := &events[i]
		minTS = math.Min(minTS, ev.Timestamp)
		maxTS = math.Max(maxTS, ev.Timestamp)
		hashes = append(hashes, ev.TxHash)

		switch ev.Action {
		case a.actions.Deposit:
			f.TotalDepositedUSD += ev.AmountUSD
		case a.actions.Borrow:
			f.TotalBorrowedUSD += ev.AmountUSD
		case a.actions.Repay:
			f.TotalRepaidUSD += ev.AmountUSD
		case a.actions.Liquidation:
			f.LiquidationCount++
		}
	}

	f.WalletAgeDays = finite((maxTS - minTS) / secondsPerDay)
	f.TxCount = dedupe.CountDistinct(hashes)
	f.TxFrequency = finite(float64(f.TxCount) / (f.WalletAgeDays + 1))
	f.BorrowToDepositRatio = finite(f.TotalBorrowedUSD / (f.TotalDepositedUSD + a.epsilon))
	f.RepaymentRatio = finite(f.TotalRepaidUSD / (f.TotalBorrowedUSD + a.epsilon))
	f.TotalDepositedUSD = finite(f.TotalDepositedUSD)
	f.TotalBorrowedUSD = finite(f.TotalBorrowedUSD)
	f.TotalRepaidUSD = finite(f.TotalRepaidUSD)
	return f
}

// finite maps undefined values to 0.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
