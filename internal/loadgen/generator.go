package loadgen

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/okian/repute/internal/domain/model"
)

// kindWeights skews the stream towards completed tasks the way real
// contributor activity does.
var kindWeights = []struct {
	kind   model.EventKind
	weight int
}{
	{model.EventTaskCompleted, 60},
	{model.EventTaskFailed, 15},
	{model.EventMilestoneAchieved, 10},
	{model.EventDisputeWon, 10},
	{model.EventDisputeLost, 5},
}

// contributorID names the i-th generated contributor.
func contributorID(i int) string {
	return fmt.Sprintf("contributor-%04d", i)
}

// Generate returns cfg.Events events per contributor, grouped by
// contributor in submission order.
func Generate(cfg Config) map[string][]Event {
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // reproducible load, not security
	total := 0
	for _, w := range kindWeights {
		total += w.weight
	}

	out := make(map[string][]Event, cfg.Contributors)
	for c := 0; c < cfg.Contributors; c++ {
		id := contributorID(c)
		events := make([]Event, 0, cfg.Events)
		for e := 0; e < cfg.Events; e++ {
			events = append(events, Event{
				ContributorID: id,
				EventID:       uuid.NewString(),
				Kind:          pickKind(rng, total),
				Value:         uint32(1 + rng.Intn(5)),
				Resend:        rng.Intn(100) < cfg.DuplicatePct,
			})
		}
		out[id] = events
	}
	return out
}

func pickKind(rng *rand.Rand, total int) model.EventKind {
	n := rng.Intn(total)
	for _, w := range kindWeights {
		if n < w.weight {
			return w.kind
		}
		n -= w.weight
	}
	return model.EventTaskCompleted
}
