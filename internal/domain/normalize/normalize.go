// Package normalize validates raw lending events and derives their USD value.
package normalize

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jayant1554/credit-score-defi/internal/domain/model"
	"github.com/jayant1554/credit-score-defi/pkg/logger"
)

// Drop reasons.
const (
	ReasonInvalidAmount    = "invalid_amount"
	ReasonInvalidPrice     = "invalid_price"
	ReasonInvalidTimestamp = "invalid_timestamp"
	ReasonMissingWallet    = "missing_wallet"
)

// Reasons lists every drop reason in reporting order.
var Reasons = []string{ReasonInvalidAmount, ReasonInvalidPrice, ReasonInvalidTimestamp, ReasonMissingWallet}

// baseUnitExp is the decimal exponent of the raw token amount (wei-style).
const baseUnitExp = 18

// Result is the filtered view of a raw event collection.
type Result struct {
	Events  []model.Event
	Read    int
	Dropped map[string]int
}

// DroppedTotal returns the number of dropped events.
func (r *Result) DroppedTotal() int {
	n := 0
	for _, c := range r.Dropped {
		n += c
	}
	return n
}

// Normalizer turns raw events into normalized events.
type Normalizer struct {
	logger logger.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.logger = l
		}
	}
}

// New creates a Normalizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{}
	for _, opt := range opts {
		opt(n)
	}
	if n.logger == nil {
		n.logger = logger.Get().Named("normalize")
	}
	return n
}

// Normalize derives amount_usd = amount / 1e18 * assetPriceUSD and a numeric
// timestamp for every event. Events whose amount, price, timestamp, or wallet
// cannot be used are dropped and counted by reason. An input where a required
// key is absent from every record fails with ErrMalformedInput. An empty
// output is not an error.
func (n *Normalizer) Normalize(ctx context.Context, raw []model.RawEvent) (Result, error) {
	res := Result{
		Read:    len(raw),
		Dropped: make(map[string]int, len(Reasons)),
	}
	if err := checkSchema(raw); err != nil {
		return Result{}, err
	}

	res.Events = make([]model.Event, 0, len(raw))
	for i := range raw {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}
		ev, reason := normalizeOne(&raw[i])
		if reason != "" {
			res.Dropped[reason]++
			continue
		}
		res.Events = append(res.Events, ev)
	}

	for _, reason := range Reasons {
		if c := res.Dropped[reason]; c > 0 {
			n.logger.Warn(ctx, "dropped events", logger.String("reason", reason), logger.Int("count", c))
		}
	}
	n.logger.Debug(ctx, "normalized events",
		logger.Int("read", res.Read),
		logger.Int("kept", len(res.Events)),
	)
	return res, nil
}

// checkSchema fails when a required key is absent from every record.
func checkSchema(raw []model.RawEvent) error {
	if len(raw) == 0 {
		return nil
	}
	for _, key := range model.RequiredKeys {
		seen := false
		for i := range raw {
			if !raw[i].Missing.Has(key) {
				seen = true
				break
			}
		}
		if !seen {
			return fmt.Errorf("%w: required key %q absent from all %d records", ErrMalformedInput, key, len(raw))
		}
	}
	return nil
}

func normalizeOne(e *model.RawEvent) (model.Event, string) {
	if strings.TrimSpace(e.UserWallet) == "" {
		return model.Event{}, ReasonMissingWallet
	}

	amount, err := parseDecimal(e.ActionData.Amount)
	if err != nil {
		return model.Event{}, ReasonInvalidAmount
	}
	price, err := parseDecimal(e.ActionData.AssetPriceUSD)
	if err != nil {
		return model.Event{}, ReasonInvalidPrice
	}
	usd, _ := amount.Shift(-baseUnitExp).Mul(price).Float64()
	if math.IsNaN(usd) || math.IsInf(usd, 0) {
		return model.Event{}, ReasonInvalidAmount
	}

	ts, err := parseFloat(e.Timestamp)
	if err != nil {
		return model.Event{}, ReasonInvalidTimestamp
	}

	return model.Event{
		Wallet:    e.UserWallet,
		TxHash:    e.TxHash,
		Action:    e.Action,
		AmountUSD: usd,
		Timestamp: ts,
	}, ""
}

func parseDecimal(s model.Scalar) (decimal.Decimal, error) {
	text := s.String()
	if text == "" {
		return decimal.Decimal{}, strconv.ErrSyntax
	}
	return decimal.NewFromString(text)
}

func parseFloat(s model.Scalar) (float64, error) {
	f, err := strconv.ParseFloat(s.String(), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, strconv.ErrRange
	}
	return f, nil
}
