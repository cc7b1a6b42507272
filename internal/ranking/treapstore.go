package ranking

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/jayant1554/credit-score-defi/internal/domain/model"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: credit score DESC, then wallet ASC. "less" means ranks earlier,
// so in-order traversal yields the ranking from best to worst. Subtree sizes
// give O(log n) expected rank queries.

type node struct {
	wallet string
	score  int
	prio   uint64
	left   *node
	right  *node
	size   int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aScore, aWallet) ranks before (bScore, bWallet).
func less(aScore int, aWallet string, bScore int, bWallet string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aWallet < bWallet
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, wallet string, score int, prio uint64) *node {
	if n == nil {
		return &node{wallet: wallet, score: score, prio: prio, size: 1}
	}
	if less(score, wallet, n.score, n.wallet) {
		n.left = insert(n.left, wallet, score, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, wallet, score, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

// countAbove returns how many nodes have a score strictly greater than score.
func countAbove(n *node, score int) int {
	count := 0
	for n != nil {
		if n.score > score {
			count += 1 + nsize(n.left)
			n = n.right
		} else {
			n = n.left
		}
	}
	return count
}

// collectTopN appends up to limit nodes in rank order.
func collectTopN(n *node, limit int, out *[]*node) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n)
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

// TreapStore is a Store safe for concurrent use.
type TreapStore struct {
	mu       sync.RWMutex
	root     *node
	byWallet map[string]model.ScoreRecord
	seed     int64
	rng      *rand.Rand
}

// NewTreapStore constructs a treap store with configuration options.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{
		byWallet: make(map[string]model.ScoreRecord),
		seed:     1,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rng = rand.New(rand.NewSource(s.seed)) //nolint:gosec // tree balance only
	return s
}

// Put implements Store.Put with O(log n) expected time.
func (s *TreapStore) Put(_ context.Context, rec model.ScoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byWallet[rec.UserWallet]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, rec.UserWallet)
	}
	s.byWallet[rec.UserWallet] = rec
	s.root = insert(s.root, rec.UserWallet, rec.CreditScore, s.rng.Uint64())
	return nil
}

// Rank returns the competition rank of a wallet in O(log n) expected time.
func (s *TreapStore) Rank(_ context.Context, wallet string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byWallet[wallet]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return entry(rec, 1+countAbove(s.root, rec.CreditScore)), nil
}

// TopN returns the top n entries ordered by credit score desc.
func (s *TreapStore) TopN(_ context.Context, n int) ([]Entry, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]*node, 0, min(n, len(s.byWallet)))
	collectTopN(s.root, n, &nodes)

	out := make([]Entry, len(nodes))
	for i, nd := range nodes {
		rank := i + 1
		if i > 0 && nd.score == nodes[i-1].score {
			rank = out[i-1].Rank
		}
		out[i] = entry(s.byWallet[nd.wallet], rank)
	}
	return out, nil
}

// Count returns the total number of wallets.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byWallet)
}

func entry(rec model.ScoreRecord, rank int) Entry {
	return Entry{
		Rank:           rank,
		Wallet:         rec.UserWallet,
		CreditScore:    rec.CreditScore,
		RuleBasedScore: rec.RuleBasedScore,
	}
}
