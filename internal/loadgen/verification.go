package loadgen

import (
	"fmt"
	"sort"

	"github.com/okian/repute/internal/domain/leaderboard"
	"github.com/okian/repute/internal/domain/model"
	"github.com/okian/repute/internal/domain/scoring"
)

// Expected replays events through a local engine and returns the top n
// entries the server should report. The replay happens at a single
// instant, so it assumes the run is far shorter than the decay period.
func Expected(events map[string][]Event, n int) []leaderboard.Entry {
	engine := scoring.NewEngine()
	out := make([]leaderboard.Entry, 0, len(events))
	for id, evs := range events {
		p := model.NewProfile(id, 0)
		for _, e := range evs {
			res, err := engine.Apply(p, e.Kind, e.Value, 0)
			if err != nil {
				continue
			}
			p = res.Profile
		}
		out = append(out, leaderboard.Entry{ContributorID: id, Score: p.Score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ContributorID < out[j].ContributorID
	})
	if len(out) > n {
		out = out[:n]
	}

	rank := 0
	for i := range out {
		if i == 0 || out[i].Score != out[i-1].Score {
			rank++
		}
		out[i].Rank = rank
	}
	return out
}

// Verify compares the server leaderboard with the expected entries.
func Verify(want, got []leaderboard.Entry) error {
	if len(want) != len(got) {
		return fmt.Errorf("%w: want %d entries, got %d", ErrMismatch, len(want), len(got))
	}
	for i := range want {
		if want[i] != got[i] {
			return fmt.Errorf("%w: position %d: want %+v, got %+v", ErrMismatch, i, want[i], got[i])
		}
	}
	return nil
}
