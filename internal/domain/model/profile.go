package model

import "slices"

// Profile is the durable reputation record of one contributor.
// Timestamps are unix seconds.
type Profile struct {
	ContributorID       string   `json:"contributor_id"`
	Score               uint32   `json:"score"`
	Tier                Tier     `json:"tier"`
	TasksCompleted      uint32   `json:"tasks_completed"`
	TasksFailed         uint32   `json:"tasks_failed"`
	SuccessRate         uint32   `json:"success_rate"` // percent, 0-100
	Achievements        []uint64 `json:"achievements"`
	LastActivity        int64    `json:"last_activity"`
	CreatedAt           int64    `json:"created_at"`
	DisputesWon         uint32   `json:"disputes_won"`
	DisputesLost        uint32   `json:"disputes_lost"`
	MilestonesCompleted uint32   `json:"milestones_completed"`
}

// NewProfile returns a fresh Bronze profile created at now.
func NewProfile(contributorID string, now int64) Profile {
	return Profile{
		ContributorID: contributorID,
		Tier:          TierBronze,
		SuccessRate:   100,
		Achievements:  []uint64{},
		LastActivity:  now,
		CreatedAt:     now,
	}
}

// HasAchievement reports whether the achievement id was already awarded.
func (p *Profile) HasAchievement(id uint64) bool {
	return slices.Contains(p.Achievements, id)
}

// Clone returns a deep copy so callers can mutate it freely.
func (p Profile) Clone() Profile {
	p.Achievements = slices.Clone(p.Achievements)
	if p.Achievements == nil {
		p.Achievements = []uint64{}
	}
	return p
}
