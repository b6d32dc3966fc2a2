package achievement

import (
	"fmt"

	"github.com/okian/repute/internal/domain/model"
	"github.com/okian/repute/internal/domain/scoring"
)

// CheckEligibility reports whether p may receive a. A held achievement is
// never eligible again.
func CheckEligibility(p model.Profile, a model.Achievement) bool {
	if p.HasAchievement(a.ID) {
		return false
	}
	return p.TasksCompleted >= a.MinTasks && p.SuccessRate >= a.MinSuccessRate
}

// Award adds a to p and credits its points. Task and dispute counters are
// left alone. The returned profile is a copy; p is not modified.
func Award(p model.Profile, a model.Achievement) (model.Profile, scoring.Transition, error) {
	if p.HasAchievement(a.ID) {
		return p, scoring.Transition{}, fmt.Errorf("%w: %d", ErrAlreadyAwarded, a.ID)
	}
	if !CheckEligibility(p, a) {
		return p, scoring.Transition{}, fmt.Errorf("%w: %d", ErrNotEligible, a.ID)
	}
	out := p.Clone()
	tr := scoring.Transition{Old: out.Tier}
	out.Achievements = append(out.Achievements, a.ID)
	out.Score = scoring.AddPoints(out.Score, a.Points)
	out.Tier = scoring.DeriveTier(out.Score)
	tr.New = out.Tier
	return out, tr, nil
}
