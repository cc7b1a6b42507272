// Package eventgen generates synthetic lending-protocol event exports with a
// controlled mix of wallet behaviors.
package eventgen

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned when a generator Config fails validation.
var ErrInvalidConfig = errors.New("invalid generator config")

// Config holds configuration for one generated export.
type Config struct {
	Wallets  int       // Number of wallets to generate
	Seed     int64     // Seed for every random choice
	Start    time.Time // Earliest event timestamp
	SpanDays int       // Window the events are spread over
	Workers  int       // Number of concurrent generators
	Network  string    // Network label written on every record
	Protocol string    // Protocol label written on every record
}

// DefaultConfig returns a Config for a small demo export.
func DefaultConfig() Config {
	return Config{
		Wallets:  100,
		Seed:     42,
		Start:    time.Date(2021, time.March, 1, 0, 0, 0, 0, time.UTC),
		SpanDays: 180,
		Workers:  1,
		Network:  "polygon",
		Protocol: "aave_v2",
	}
}

// Validate checks that the config can produce an export.
func (c *Config) Validate() error {
	switch {
	case c.Wallets < 1:
		return fmt.Errorf("%w: wallets must be >= 1, got %d", ErrInvalidConfig, c.Wallets)
	case c.SpanDays < 1:
		return fmt.Errorf("%w: span_days must be >= 1, got %d", ErrInvalidConfig, c.SpanDays)
	case c.Start.IsZero():
		return fmt.Errorf("%w: start time is required", ErrInvalidConfig)
	}
	return nil
}

// Record is one event in the upstream export shape.
type Record struct {
	UserWallet string     `json:"userWallet"`
	Network    string     `json:"network"`
	Protocol   string     `json:"protocol"`
	TxHash     string     `json:"txHash"`
	Timestamp  int64      `json:"timestamp"`
	Action     string     `json:"action"`
	ActionData ActionData `json:"actionData"`
}

// ActionData is the nested payload of a Record. Amount is in 18-decimal
// base units and the price is the asset's USD price, both as strings.
type ActionData struct {
	Type          string `json:"type"`
	Amount        string `json:"amount"`
	AssetSymbol   string `json:"assetSymbol"`
	AssetPriceUSD string `json:"assetPriceUSD"`
}

// Stats summarizes a generated export.
type Stats struct {
	Wallets   int
	Events    int
	ByProfile map[string]int
	ByAction  map[string]int
}
