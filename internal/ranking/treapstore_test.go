package ranking

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/jayant1554/credit-score-defi/internal/domain/model"
)

func rec(wallet string, credit int) model.ScoreRecord {
	return model.ScoreRecord{UserWallet: wallet, CreditScore: credit, RuleBasedScore: credit / 2}
}

func TestTreapStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}

	if err := store.Put(ctx, rec("w1", 850)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count := store.Count(ctx); count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}

	entry, err := store.Rank(ctx, "w1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Rank != 1 || entry.CreditScore != 850 || entry.RuleBasedScore != 425 {
		t.Errorf("unexpected entry %+v", entry)
	}

	entries, err := store.TopN(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].Wallet != "w1" {
		t.Errorf("unexpected top entries %+v", entries)
	}
}

func TestTreapStore_Duplicate(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	_ = store.Put(ctx, rec("a", 100))
	_ = store.Put(ctx, rec("b", 200))
	if err := store.Put(ctx, rec("a", 300)); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	if count := store.Count(ctx); count != 2 {
		t.Errorf("expected count 2, got %d", count)
	}
	entry, _ := store.Rank(ctx, "a")
	if entry.Rank != 2 || entry.CreditScore != 100 {
		t.Errorf("expected a at rank 2 with 100, got %+v", entry)
	}
}

func TestTreapStore_Ties(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	for _, r := range []model.ScoreRecord{rec("c", 900), rec("a", 900), rec("d", 700), rec("b", 1000), rec("e", 700)} {
		_ = store.Put(ctx, r)
	}

	entries, err := store.TopN(ctx, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantWallets := []string{"b", "a", "c", "d", "e"}
	wantRanks := []int{1, 2, 2, 4, 4}
	for i, e := range entries {
		if e.Wallet != wantWallets[i] || e.Rank != wantRanks[i] {
			t.Errorf("position %d: got %s rank %d, want %s rank %d", i, e.Wallet, e.Rank, wantWallets[i], wantRanks[i])
		}
	}

	for i, w := range wantWallets {
		entry, err := store.Rank(ctx, w)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if entry.Rank != wantRanks[i] {
			t.Errorf("Rank(%s) = %d, want %d", w, entry.Rank, wantRanks[i])
		}
	}

	top2, _ := store.TopN(ctx, 2)
	if len(top2) != 2 || top2[1].Rank != 2 {
		t.Errorf("unexpected truncated top %+v", top2)
	}
}

func TestTreapStore_Errors(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	if _, err := store.Rank(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.TopN(ctx, 0); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
	entries, err := store.TopN(ctx, 3)
	if err != nil || len(entries) != 0 {
		t.Errorf("expected empty top from empty store, got %v %v", entries, err)
	}
}

func TestTreapStore_MatchesSort(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore(WithSeed(7))
	rng := rand.New(rand.NewSource(3))

	want := map[string]int{}
	for i := 0; i < 2000; i++ {
		w := fmt.Sprintf("0x%03d", rng.Intn(600))
		score := rng.Intn(1001)
		if _, ok := want[w]; ok {
			continue
		}
		want[w] = score
		_ = store.Put(ctx, rec(w, score))
	}

	type kv struct {
		wallet string
		score  int
	}
	all := make([]kv, 0, len(want))
	for w, s := range want {
		all = append(all, kv{w, s})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].wallet < all[j].wallet
	})

	if store.Count(ctx) != len(all) {
		t.Fatalf("count %d, want %d", store.Count(ctx), len(all))
	}
	if got := nsize(store.root); got != len(all) {
		t.Fatalf("tree size %d, want %d", got, len(all))
	}

	entries, err := store.TopN(ctx, len(all))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, e := range entries {
		if e.Wallet != all[i].wallet || e.CreditScore != all[i].score {
			t.Fatalf("position %d: got %s/%d, want %s/%d", i, e.Wallet, e.CreditScore, all[i].wallet, all[i].score)
		}
		wantRank := 1
		for _, o := range all {
			if o.score > e.CreditScore {
				wantRank++
			}
		}
		if e.Rank != wantRank {
			t.Fatalf("%s: rank %d, want %d", e.Wallet, e.Rank, wantRank)
		}
		r, _ := store.Rank(ctx, e.Wallet)
		if r.Rank != wantRank {
			t.Fatalf("Rank(%s) = %d, want %d", e.Wallet, r.Rank, wantRank)
		}
	}
}

func TestTreapStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				w := fmt.Sprintf("g%d-%d", g, i)
				_ = store.Put(ctx, rec(w, (g*31+i)%1001))
				_, _ = store.Rank(ctx, w)
				_, _ = store.TopN(ctx, 5)
			}
		}()
	}
	wg.Wait()

	if count := store.Count(ctx); count != 1600 {
		t.Errorf("expected 1600 wallets, got %d", count)
	}
}
