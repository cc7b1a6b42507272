// Package ranking orders scored wallets by credit score.
package ranking

import (
	"context"

	"github.com/jayant1554/credit-score-defi/internal/domain/model"
)

// Entry is a ranked score record. Wallets with equal credit scores share a
// rank and the next rank skips accordingly (1, 1, 3).
type Entry struct {
	Rank           int    `json:"rank"`
	Wallet         string `json:"userWallet"`
	CreditScore    int    `json:"credit_score"`
	RuleBasedScore int    `json:"rule_based_score"`
}

// Store provides read/write access to the ranking state.
type Store interface {
	// Put inserts the record of a wallet.
	// Returns ErrDuplicate if the wallet is already ranked.
	Put(ctx context.Context, rec model.ScoreRecord) error

	// Rank returns the current rank of a wallet.
	// Returns ErrNotFound if the wallet is unknown.
	Rank(ctx context.Context, wallet string) (Entry, error)

	// TopN returns the top-N entries ordered by credit score desc, wallet asc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of wallets tracked.
	Count(ctx context.Context) int
}
