package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/okian/sportlife/internal/domain/model"
)

func ranked(points ...int) []*model.Competitor {
	pool := make([]*model.Competitor, len(points))
	for i, p := range points {
		pool[i] = &model.Competitor{ID: fmt.Sprintf("c%03d", i), Name: fmt.Sprintf("Player %d", i), Points: p}
	}
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].Points > pool[j].Points })
	for i, c := range pool {
		c.Ranking = i + 1
	}
	return pool
}

func TestTreapStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}
	if top, err := store.TopN(ctx, 5); err != nil || len(top) != 0 {
		t.Errorf("expected empty top, got %v %v", top, err)
	}

	if err := store.Publish(ctx, ranked(50, 90, 70)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if count := store.Count(ctx); count != 3 {
		t.Errorf("expected count 3, got %d", count)
	}

	entry, err := store.Rank(ctx, "c001")
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if entry.Rank != 1 || entry.Points != 90 {
		t.Errorf("expected rank 1 with 90 points, got %+v", entry)
	}

	top, err := store.TopN(ctx, 10)
	if err != nil {
		t.Fatalf("topN: %v", err)
	}
	want := []string{"c001", "c002", "c000"}
	if len(top) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(top))
	}
	for i, id := range want {
		if top[i].ID != id || top[i].Rank != i+1 {
			t.Errorf("position %d: expected %s, got %+v", i+1, id, top[i])
		}
	}
}

func TestTreapStore_Errors(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	if _, err := store.Rank(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.TopN(ctx, 0); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := store.Publish(cancelled, ranked(1)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestTreapStore_TiesFollowSimulationRanking(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	pool := ranked(10, 10, 10, 10)
	// Reverse the official order among equal points.
	for i, c := range pool {
		c.Ranking = len(pool) - i
	}
	if err := store.Publish(ctx, pool); err != nil {
		t.Fatalf("publish: %v", err)
	}

	for _, c := range pool {
		entry, err := store.Rank(ctx, c.ID)
		if err != nil {
			t.Fatalf("rank: %v", err)
		}
		if entry.Rank != c.Ranking {
			t.Errorf("%s: expected rank %d, got %d", c.ID, c.Ranking, entry.Rank)
		}
	}
}

func TestTreapStore_RepublishMovesAndDrops(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore(WithTopCacheSize(2))

	pool := ranked(30, 20, 10)
	if err := store.Publish(ctx, pool); err != nil {
		t.Fatalf("publish: %v", err)
	}

	// The last competitor retires and is replaced by a new identity, and the
	// former leader drops to the bottom.
	pool[2].ID = "rookie"
	pool[2].Points = 25
	pool[0].Points = 5
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].Points > pool[j].Points })
	for i, c := range pool {
		c.Ranking = i + 1
	}
	if err := store.Publish(ctx, pool); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if store.Count(ctx) != 3 {
		t.Errorf("expected 3 entries, got %d", store.Count(ctx))
	}
	if _, err := store.Rank(ctx, "c002"); !errors.Is(err, ErrNotFound) {
		t.Errorf("retired competitor should be gone, got %v", err)
	}

	// Served from the snapshot cache.
	top, _ := store.TopN(ctx, 2)
	if top[0].ID != "rookie" || top[1].ID != "c001" {
		t.Errorf("unexpected cached top: %+v", top)
	}
	// Served from the tree.
	all, _ := store.TopN(ctx, 3)
	if all[2].ID != "c000" || all[2].Rank != 3 {
		t.Errorf("unexpected tail: %+v", all[2])
	}

	snap := store.Snapshot()
	if snap.RankByID["c000"] != 3 || len(snap.TopCache) != 2 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestTreapStore_RankCorrectnessAtScale(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()
	rng := rand.New(rand.NewSource(11))

	for round := 0; round < 20; round++ {
		points := make([]int, 256)
		for i := range points {
			points[i] = rng.Intn(400)
		}
		pool := ranked(points...)
		if err := store.Publish(ctx, pool); err != nil {
			t.Fatalf("publish: %v", err)
		}
		for _, c := range pool {
			entry, err := store.Rank(ctx, c.ID)
			if err != nil {
				t.Fatalf("rank: %v", err)
			}
			if entry.Rank != c.Ranking {
				t.Fatalf("round %d %s: expected %d, got %d", round, c.ID, c.Ranking, entry.Rank)
			}
		}
	}
}

func TestTreapStore_ConcurrentReaders(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()
	pool := ranked(make([]int, 64)...)
	_ = store.Publish(ctx, pool)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, err := store.TopN(ctx, 40); err != nil {
					t.Errorf("topN: %v", err)
				}
				if _, err := store.Rank(ctx, "c010"); err != nil {
					t.Errorf("rank: %v", err)
				}
			}
		}()
	}
	for j := 0; j < 20; j++ {
		_ = store.Publish(ctx, pool)
	}
	wg.Wait()
}

func BenchmarkTreapStore_Publish(b *testing.B) {
	ctx := context.Background()
	store := NewTreapStore()
	rng := rand.New(rand.NewSource(1))
	points := make([]int, 512)
	for i := range points {
		points[i] = rng.Intn(1000)
	}
	pool := ranked(points...)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = store.Publish(ctx, pool)
	}
}
