package eventgen

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jayant1554/credit-score-defi/internal/domain/dedupe"
	"github.com/jayant1554/credit-score-defi/internal/worker"
	"github.com/jayant1554/credit-score-defi/pkg/logger"
)

const (
	secondsPerDay = 86400
	baseUnitExp   = 18
	addressBytes  = 20
	priceJitter   = 0.02

	// walletSeedStride separates the random streams of adjacent wallets.
	walletSeedStride = 1_000_003
)

// Generate builds an export of cfg.Wallets wallets. Output depends only on
// cfg, never on cfg.Workers: every wallet draws from its own seeded stream
// and results are joined in wallet order.
func Generate(ctx context.Context, cfg Config) ([]Record, Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, Stats{}, err
	}
	log := logger.Get().Named("eventgen")
	log.Info(ctx, "generating events", logger.Int("wallets", cfg.Wallets), logger.Any("seed", cfg.Seed))

	perWallet := make([][]Record, cfg.Wallets)
	profiles := make([]Profile, cfg.Wallets)

	pool := worker.NewPool(cfg.Workers, worker.WithName("eventgen"), worker.WithLogger(log))
	err := pool.Run(ctx, cfg.Wallets, func(_ context.Context, i int) error {
		r := rand.New(rand.NewSource(cfg.Seed + int64(i)*walletSeedStride)) //nolint:gosec // reproducible synthetic data
		recs, p, err := generateWallet(r, &cfg)
		if err != nil {
			return err
		}
		perWallet[i], profiles[i] = recs, p
		return nil
	})
	if err != nil {
		return nil, Stats{}, fmt.Errorf("generate wallets: %w", err)
	}

	stats := Stats{
		Wallets:   cfg.Wallets,
		ByProfile: make(map[string]int, len(Profiles)),
		ByAction:  make(map[string]int),
	}
	total := 0
	for _, recs := range perWallet {
		total += len(recs)
	}

	// Hash collisions are redrawn from a separate seeded stream.
	fallback := rand.New(rand.NewSource(cfg.Seed - 1)) //nolint:gosec // reproducible synthetic data
	hashes := dedupe.NewInMemoryDeduper(dedupe.WithCapacity(total))
	out := make([]Record, 0, total)
	for i, recs := range perWallet {
		stats.ByProfile[profiles[i].String()]++
		for _, rec := range recs {
			for hashes.SeenAndRecord(rec.TxHash) {
				if rec.TxHash, err = txHash(fallback); err != nil {
					return nil, Stats{}, err
				}
			}
			stats.ByAction[rec.Action]++
			out = append(out, rec)
		}
	}
	stats.Events = len(out)

	log.Info(ctx, "generated events successfully",
		logger.Int("events", stats.Events),
		logger.Any("profiles", stats.ByProfile),
	)
	return out, stats, nil
}

// generateWallet draws a profile and renders its plan as records.
func generateWallet(r *rand.Rand, cfg *Config) ([]Record, Profile, error) {
	wallet := address(r)
	p := drawProfile(r)
	steps := plan(r, p, cfg.SpanDays)

	start := cfg.Start.Unix()
	recs := make([]Record, 0, len(steps))
	for _, s := range steps {
		hash, err := txHash(r)
		if err != nil {
			return nil, p, err
		}
		a := assets[r.Intn(len(assets))]
		price := a.Price * (1 - priceJitter + 2*priceJitter*r.Float64())

		recs = append(recs, Record{
			UserWallet: wallet,
			Network:    cfg.Network,
			Protocol:   cfg.Protocol,
			TxHash:     hash,
			Timestamp:  start + int64(s.Day*secondsPerDay),
			Action:     s.Action,
			ActionData: ActionData{
				Type:          actionType(s.Action),
				Amount:        baseUnits(s.USD, price),
				AssetSymbol:   a.Symbol,
				AssetPriceUSD: decimal.NewFromFloat(price).String(),
			},
		})
	}
	return recs, p, nil
}

// address returns a random 0x-prefixed 20-byte hex address.
func address(r *rand.Rand) string {
	b := make([]byte, addressBytes)
	_, _ = r.Read(b)
	return "0x" + hex.EncodeToString(b)
}

// txHash returns a 0x-prefixed 32-byte hex hash built from two UUIDs.
func txHash(r *rand.Rand) (string, error) {
	var sb strings.Builder
	sb.WriteString("0x")
	for i := 0; i < 2; i++ {
		id, err := uuid.NewRandomFromReader(r)
		if err != nil {
			return "", fmt.Errorf("draw tx hash: %w", err)
		}
		sb.WriteString(strings.ReplaceAll(id.String(), "-", ""))
	}
	return sb.String(), nil
}

// baseUnits converts a USD value at price into an 18-decimal token amount.
func baseUnits(usd, price float64) string {
	if usd <= 0 || price <= 0 {
		return "0"
	}
	return decimal.NewFromFloat(usd / price).Shift(baseUnitExp).Truncate(0).String()
}

// actionType returns the capitalized event type, e.g. "Deposit".
func actionType(action string) string {
	switch action {
	case ActionRedeem:
		return "RedeemUnderlying"
	case ActionLiquidation:
		return "LiquidationCall"
	case "":
		return ""
	default:
		return strings.ToUpper(action[:1]) + action[1:]
	}
}
