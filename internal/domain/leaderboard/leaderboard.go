// Package leaderboard keeps a per-group ordered index of contributor
// scores. Each group is a treap updated incrementally on every upsert, so
// top-N reads never re-sort the membership.
package leaderboard

import (
	"fmt"
	"sort"
	"sync"
)

// Entry is one leaderboard row. Equal scores share a rank.
type Entry struct {
	Rank          int    `json:"rank"`
	ContributorID string `json:"contributor_id"`
	Score         uint32 `json:"score"`
}

// Board is the ordered membership of one group.
type Board struct {
	mu     sync.RWMutex
	root   *node
	scores map[string]uint32
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{scores: make(map[string]uint32)}
}

// Upsert records the latest score of id. It reports whether the board
// changed (new member or different score).
func (b *Board) Upsert(id string, score uint32) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if old, ok := b.scores[id]; ok {
		if old == score {
			return false
		}
		b.root = deleteNode(b.root, id, old)
	}
	b.scores[id] = score
	b.root = insert(b.root, id, score, priority(id))
	return true
}

// Score returns the recorded score of id.
func (b *Board) Score(id string) (uint32, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.scores[id]
	return s, ok
}

// TopN returns at most limit entries ordered by score desc, then id asc.
// A zero limit yields an empty slice.
func (b *Board) TopN(limit int) ([]Entry, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	if limit == 0 {
		return []Entry{}, nil
	}
	b.mu.RLock()
	if limit > len(b.scores) {
		limit = len(b.scores)
	}
	out := make([]Entry, 0, limit)
	collect(b.root, limit, &out)
	b.mu.RUnlock()

	assignRanksWithTies(out)
	return out, nil
}

// Rank returns the entry of id with its dense rank.
func (b *Board) Rank(id string) (Entry, error) {
	b.mu.RLock()
	score, ok := b.scores[id]
	if !ok {
		b.mu.RUnlock()
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	// Every entry at or above id's position is needed to count distinct
	// scores ahead of it.
	pos := position(b.root, id, score)
	out := make([]Entry, 0, pos+1)
	collect(b.root, pos+1, &out)
	b.mu.RUnlock()

	assignRanksWithTies(out)
	return out[len(out)-1], nil
}

// Len returns the number of members.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.scores)
}

// Members returns a copy of the membership with last-known scores.
func (b *Board) Members() map[string]uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]uint32, len(b.scores))
	for id, s := range b.scores {
		out[id] = s
	}
	return out
}

// Load replaces the board content with members. Used to rebuild the
// index from persisted membership.
func (b *Board) Load(members map[string]uint32) {
	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.root = nil
	b.scores = make(map[string]uint32, len(members))
	for _, id := range ids {
		s := members[id]
		b.scores[id] = s
		b.root = insert(b.root, id, s, priority(id))
	}
}

// Registry holds one board per group.
type Registry struct {
	mu     sync.RWMutex
	boards map[string]*Board
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{boards: make(map[string]*Board)}
}

// Get returns the board of group if it has been loaded.
func (r *Registry) Get(group string) (*Board, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.boards[group]
	return b, ok
}

// GetOrLoad returns the board of group, calling load exactly once to
// populate it the first time the group is seen. A failing load leaves
// the group unloaded.
func (r *Registry) GetOrLoad(group string, load func() (map[string]uint32, error)) (*Board, error) {
	if b, ok := r.Get(group); ok {
		return b, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.boards[group]; ok {
		return b, nil
	}
	members, err := load()
	if err != nil {
		return nil, err
	}
	b := NewBoard()
	b.Load(members)
	r.boards[group] = b
	return b, nil
}

// Groups returns the number of loaded groups.
func (r *Registry) Groups() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.boards)
}

// assignRanksWithTies assigns dense ranks: equal scores share a rank and
// the next distinct score takes the next rank.
func assignRanksWithTies(entries []Entry) {
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].Score != entries[i-1].Score {
			rank++
		}
		entries[i].Rank = rank
	}
}
