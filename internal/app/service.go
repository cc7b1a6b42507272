// Package service runs the credit scoring pipeline: normalize events,
// aggregate wallet features, compute rule-based scores, and calibrate them
// with a tree ensemble.
package service

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/jayant1554/credit-score-defi/internal/domain/calibration"
	"github.com/jayant1554/credit-score-defi/internal/domain/features"
	"github.com/jayant1554/credit-score-defi/internal/domain/model"
	"github.com/jayant1554/credit-score-defi/internal/domain/normalize"
	"github.com/jayant1554/credit-score-defi/internal/domain/scoring"
	"github.com/jayant1554/credit-score-defi/internal/ranking"
	"github.com/jayant1554/credit-score-defi/internal/worker"
	"github.com/jayant1554/credit-score-defi/pkg/gbt"
	"github.com/jayant1554/credit-score-defi/pkg/logger"
	"github.com/jayant1554/credit-score-defi/pkg/metrics"
)

// Stage names used in logs, metrics, and Summary.Durations.
const (
	StageNormalize = "normalize"
	StageAggregate = "aggregate"
	StageScore     = "score"
	StageCalibrate = "calibrate"
	StageRank      = "rank"
)

// Score kinds for the score histogram.
const (
	scoreKindRule   = "rule"
	scoreKindCredit = "credit"
)

// Summary describes a completed run.
type Summary struct {
	RunID       string
	EventsRead  int
	EventsKept  int
	Dropped     map[string]int
	Wallets     int
	Calibration calibration.Report
	Top         []ranking.Entry
	Ranking     ranking.Store // every scored wallet; nil when the run failed
	Durations   map[string]time.Duration
}

// Service wires the pipeline stages.
type Service struct {
	// Configuration
	seed         int64
	workerCount  int
	epsilon      float64
	testFraction float64
	weights      scoring.Weights
	actions      features.Actions
	params       gbt.Params
	topN         int

	// Stages
	pool       *worker.Pool
	normalizer *normalize.Normalizer
	aggregator *features.Aggregator
	scorer     scoring.Scorer
	regressor  *calibration.Regressor

	// Logging
	logger logger.Logger
}

// New constructs a Service. Defaults reproduce the reference pipeline:
// seed 42, weights 40/30/20/10, 200 trees at depth 3 and learning rate 0.2.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		seed:         42,
		workerCount:  runtime.NumCPU(),
		epsilon:      1e-6,
		testFraction: 0.2,
		weights:      scoring.DefaultWeights(),
		actions:      features.DefaultActions(),
		params:       gbt.DefaultParams(),
		topN:         10,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("pipeline")
	}

	s.pool = worker.NewPool(s.workerCount, worker.WithLogger(s.logger.Named("pool")))
	s.normalizer = normalize.New(normalize.WithLogger(s.logger.Named(StageNormalize)))
	s.aggregator = features.New(
		features.WithPool(s.pool),
		features.WithActions(s.actions),
		features.WithEpsilon(s.epsilon),
		features.WithLogger(s.logger.Named(StageAggregate)),
	)
	scorer, err := scoring.NewRuleScorer(
		scoring.WithWeights(s.weights),
		scoring.WithLogger(s.logger.Named(StageScore)),
	)
	if err != nil {
		return nil, fmt.Errorf("build rule scorer: %w", err)
	}
	s.scorer = scorer
	s.regressor = calibration.New(
		calibration.WithParams(s.params),
		calibration.WithSeed(s.seed),
		calibration.WithTestFraction(s.testFraction),
		calibration.WithRunner(s.pool),
		calibration.WithLogger(s.logger.Named(StageCalibrate)),
	)
	return s, nil
}

// Run scores every wallet with valid events. It returns either a complete
// record set, sorted by wallet, or an error and no records.
func (s *Service) Run(ctx context.Context, raw []model.RawEvent) ([]model.ScoreRecord, Summary, error) {
	sum := Summary{
		RunID:     uuid.NewString(),
		Durations: make(map[string]time.Duration, 5),
	}
	log := s.logger.With(logger.String("run_id", sum.RunID))

	recs, err := s.run(ctx, log, raw, &sum)
	if err != nil {
		kind := FailureKind(err)
		metrics.RecordRunFailure(kind)
		log.Error(ctx, "scoring run failed", logger.String("kind", kind), logger.Error(err))
		return nil, sum, err
	}

	metrics.MarkRunSucceeded()
	log.Info(ctx, "scoring run complete",
		logger.Int("events_read", sum.EventsRead),
		logger.Int("events_kept", sum.EventsKept),
		logger.Int("wallets", sum.Wallets),
		logger.Float64("holdout_rmse", sum.Calibration.HoldoutRMSE),
	)
	return recs, sum, nil
}

func (s *Service) run(ctx context.Context, log logger.Logger, raw []model.RawEvent, sum *Summary) ([]model.ScoreRecord, error) {
	log.Info(ctx, "loaded records", logger.Int("records", len(raw)))

	var norm normalize.Result
	err := s.stage(ctx, log, sum, StageNormalize, func() (err error) {
		norm, err = s.normalizer.Normalize(ctx, raw)
		return err
	})
	if err != nil {
		return nil, err
	}
	sum.EventsRead, sum.EventsKept, sum.Dropped = norm.Read, len(norm.Events), norm.Dropped
	metrics.RecordEventsRead(norm.Read)
	metrics.RecordEventsKept(len(norm.Events))
	for reason, n := range norm.Dropped {
		metrics.RecordEventsDropped(reason, n)
	}

	var fs []model.WalletFeatures
	err = s.stage(ctx, log, sum, StageAggregate, func() (err error) {
		fs, err = s.aggregator.Aggregate(ctx, norm.Events)
		return err
	})
	if err != nil {
		return nil, err
	}
	sum.Wallets = len(fs)
	log.Info(ctx, "engineered features", logger.Int("wallets", len(fs)))

	var rule []scoring.Result
	err = s.stage(ctx, log, sum, StageScore, func() (err error) {
		rule, err = s.scorer.Score(ctx, fs)
		return err
	})
	if err != nil {
		return nil, err
	}
	targets := make([]int, len(rule))
	for i := range rule {
		targets[i] = rule[i].Score
	}

	var credit []int
	err = s.stage(ctx, log, sum, StageCalibrate, func() (err error) {
		credit, sum.Calibration, err = s.regressor.Calibrate(ctx, fs, targets)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.UpdateModelFit(sum.Calibration.TrainRMSE, sum.Calibration.HoldoutRMSE, sum.Calibration.Trees)

	recs := make([]model.ScoreRecord, len(fs))
	for i := range fs {
		recs[i] = model.ScoreRecord{
			UserWallet:     fs[i].Wallet,
			RuleBasedScore: targets[i],
			CreditScore:    credit[i],
		}
		metrics.ObserveScore(scoreKindRule, targets[i])
		metrics.ObserveScore(scoreKindCredit, credit[i])
	}
	metrics.UpdateWalletsScored(len(recs))

	err = s.stage(ctx, log, sum, StageRank, func() (err error) {
		sum.Ranking, sum.Top, err = rank(ctx, recs, s.topN)
		return err
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// stage runs fn, timing it and checking ctx first.
func (s *Service) stage(ctx context.Context, log logger.Logger, sum *Summary, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := fn()
	took := time.Since(start)
	sum.Durations[name] = took
	metrics.ObserveStageDuration(name, took.Seconds())
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	log.Debug(ctx, "stage complete", logger.String("stage", name), logger.Duration("took", took))
	return nil
}

// rank loads records into a ranked store and returns it with the top n
// entries. n == 0 skips the top-n query.
func rank(ctx context.Context, recs []model.ScoreRecord, n int) (ranking.Store, []ranking.Entry, error) {
	store := ranking.NewTreapStore()
	for _, r := range recs {
		if err := store.Put(ctx, r); err != nil {
			return nil, nil, err
		}
	}
	if n == 0 {
		return store, nil, nil
	}
	top, err := store.TopN(ctx, n)
	if err != nil {
		return nil, nil, err
	}
	return store, top, nil
}
