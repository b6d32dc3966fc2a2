package leaderboard

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"testing"
)

func TestBoard_BasicOperations(t *testing.T) {
	b := NewBoard()

	if n := b.Len(); n != 0 {
		t.Errorf("expected empty board, got %d", n)
	}

	if !b.Upsert("alice", 85) {
		t.Error("expected first upsert to change the board")
	}
	if b.Upsert("alice", 85) {
		t.Error("expected identical upsert to be a no-op")
	}

	entry, err := b.Rank("alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Rank != 1 || entry.Score != 85 {
		t.Errorf("expected rank 1 score 85, got %+v", entry)
	}

	entries, err := b.TopN(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].ContributorID != "alice" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestBoard_UpsertReplacesScore(t *testing.T) {
	b := NewBoard()
	b.Upsert("alice", 50)
	b.Upsert("bob", 40)

	// Latest score wins even when it is lower.
	b.Upsert("alice", 30)

	entries, err := b.TopN(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entries[0].ContributorID != "bob" || entries[1].ContributorID != "alice" {
		t.Errorf("expected bob before alice, got %+v", entries)
	}
	if entries[1].Score != 30 {
		t.Errorf("expected alice score 30, got %d", entries[1].Score)
	}
	if b.Len() != 2 {
		t.Errorf("expected 2 members, got %d", b.Len())
	}
}

func TestBoard_Ordering(t *testing.T) {
	b := NewBoard()
	members := []struct {
		id    string
		score uint32
	}{
		{"c1", 85},
		{"c2", 95},
		{"c3", 75},
		{"c4", 100},
		{"c5", 80},
	}
	for _, m := range members {
		b.Upsert(m.id, m.score)
	}

	entries, err := b.TopN(5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"c4", "c2", "c1", "c5", "c3"}
	for i, id := range want {
		if entries[i].ContributorID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, entries[i].ContributorID)
		}
		if entries[i].Rank != i+1 {
			t.Errorf("position %d: expected rank %d, got %d", i, i+1, entries[i].Rank)
		}
	}
}

func TestBoard_TieBreaking(t *testing.T) {
	b := NewBoard()
	b.Upsert("zed", 100)
	b.Upsert("amy", 100)
	b.Upsert("max", 100)
	b.Upsert("low", 10)

	entries, err := b.TopN(4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Entry{
		{Rank: 1, ContributorID: "amy", Score: 100},
		{Rank: 1, ContributorID: "max", Score: 100},
		{Rank: 1, ContributorID: "zed", Score: 100},
		{Rank: 2, ContributorID: "low", Score: 10},
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("position %d: expected %+v, got %+v", i, want[i], entries[i])
		}
	}

	e, err := b.Rank("low")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Rank != 2 {
		t.Errorf("expected dense rank 2, got %d", e.Rank)
	}
}

func TestBoard_Limits(t *testing.T) {
	b := NewBoard()
	for i := 0; i < 3; i++ {
		b.Upsert(fmt.Sprintf("c%d", i), uint32(i))
	}

	entries, err := b.TopN(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("expected empty non-nil slice for limit 0, got %v", entries)
	}

	entries, err = b.TopN(100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("expected full membership, got %d", len(entries))
	}

	if _, err := b.TopN(-1); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}

	if _, err := b.Rank("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestBoard_LoadAndMembers(t *testing.T) {
	b := NewBoard()
	b.Upsert("stale", 1)
	b.Load(map[string]uint32{"a": 10, "b": 20, "c": 20})

	if _, ok := b.Score("stale"); ok {
		t.Error("expected Load to replace previous content")
	}
	entries, _ := b.TopN(3)
	if entries[0].ContributorID != "b" || entries[1].ContributorID != "c" || entries[2].ContributorID != "a" {
		t.Errorf("unexpected order after load: %+v", entries)
	}

	m := b.Members()
	m["a"] = 999
	if s, _ := b.Score("a"); s != 10 {
		t.Errorf("Members must return a copy, got score %d", s)
	}
}

func TestBoard_RankCorrectnessUnderRandomUpdates(t *testing.T) {
	b := NewBoard()
	rng := rand.New(rand.NewSource(42)) //nolint:gosec // deterministic test data
	truth := make(map[string]uint32)

	for i := 0; i < 2000; i++ {
		id := fmt.Sprintf("c%03d", rng.Intn(200))
		score := uint32(rng.Intn(50))
		b.Upsert(id, score)
		truth[id] = score
	}

	type pair struct {
		id    string
		score uint32
	}
	want := make([]pair, 0, len(truth))
	for id, s := range truth {
		want = append(want, pair{id, s})
	}
	sort.Slice(want, func(i, j int) bool {
		if want[i].score != want[j].score {
			return want[i].score > want[j].score
		}
		return want[i].id < want[j].id
	})

	got, err := b.TopN(len(want))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	seen := make(map[string]bool)
	for i := range want {
		if got[i].ContributorID != want[i].id || got[i].Score != want[i].score {
			t.Fatalf("position %d: expected %+v, got %+v", i, want[i], got[i])
		}
		if seen[got[i].ContributorID] {
			t.Fatalf("duplicate entry %s", got[i].ContributorID)
		}
		seen[got[i].ContributorID] = true

		r, err := b.Rank(want[i].id)
		if err != nil {
			t.Fatalf("rank %s: %v", want[i].id, err)
		}
		if r.Rank != got[i].Rank {
			t.Fatalf("rank mismatch for %s: Rank=%d TopN=%d", want[i].id, r.Rank, got[i].Rank)
		}
	}
}

func TestBoard_ConcurrentAccess(t *testing.T) {
	b := NewBoard()
	var wg sync.WaitGroup

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				b.Upsert(fmt.Sprintf("w%d-%d", w, i%20), uint32(i))
			}
		}(w)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				entries, err := b.TopN(10)
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				seen := make(map[string]bool, len(entries))
				for _, e := range entries {
					if seen[e.ContributorID] {
						t.Errorf("duplicate entry %s", e.ContributorID)
						return
					}
					seen[e.ContributorID] = true
				}
			}
		}()
	}
	wg.Wait()

	if b.Len() != 160 {
		t.Errorf("expected 160 members, got %d", b.Len())
	}
}

func TestRegistry_GetOrLoad(t *testing.T) {
	r := NewRegistry()
	calls := 0
	load := func() (map[string]uint32, error) {
		calls++
		return map[string]uint32{"a": 5}, nil
	}

	b1, err := r.GetOrLoad("g1", load)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b2, err := r.GetOrLoad("g1", load)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b1 != b2 || calls != 1 {
		t.Errorf("expected single load and shared board, calls=%d", calls)
	}
	if s, ok := b1.Score("a"); !ok || s != 5 {
		t.Errorf("expected loaded member, got %d %v", s, ok)
	}

	boom := errors.New("boom")
	if _, err := r.GetOrLoad("g2", func() (map[string]uint32, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Errorf("expected load error, got %v", err)
	}
	if _, ok := r.Get("g2"); ok {
		t.Error("failed load must not register the group")
	}
	if r.Groups() != 1 {
		t.Errorf("expected 1 group, got %d", r.Groups())
	}
}
