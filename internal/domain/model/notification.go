package model

import "github.com/google/uuid"

// NotificationKind names the domain events published to observers.
type NotificationKind string

// Notification kinds.
const (
	NotifyProfileInitialized NotificationKind = "profile_initialized"
	NotifyReputationUpdated  NotificationKind = "reputation_updated"
	NotifyTierUpgraded       NotificationKind = "tier_upgraded"
	NotifyTierDowngraded     NotificationKind = "tier_downgraded"
	NotifyAchievementAwarded NotificationKind = "achievement_awarded"
)

// Notification is a fire-and-forget domain event. OldTier/NewTier are
// only set when the tier changed; Event is only set for reputation updates.
type Notification struct {
	ID            string           `json:"id"`
	Kind          NotificationKind `json:"kind"`
	ContributorID string           `json:"contributor_id"`
	Event         EventKind        `json:"event,omitempty"`
	Value         uint32           `json:"value,omitempty"`
	OldScore      uint32           `json:"old_score"`
	NewScore      uint32           `json:"new_score"`
	OldTier       *Tier            `json:"old_tier,omitempty"`
	NewTier       *Tier            `json:"new_tier,omitempty"`
	AchievementID uint64           `json:"achievement_id,omitempty"`
	Points        uint32           `json:"points,omitempty"`
	Timestamp     int64            `json:"timestamp"`
}

// NewNotification stamps a notification with a fresh random id.
func NewNotification(kind NotificationKind, contributorID string, ts int64) Notification {
	return Notification{
		ID:            uuid.NewString(),
		Kind:          kind,
		ContributorID: contributorID,
		Timestamp:     ts,
	}
}

// WithTiers records a tier transition on the notification.
func (n Notification) WithTiers(oldTier, newTier Tier) Notification {
	n.OldTier = &oldTier
	n.NewTier = &newTier
	return n
}
