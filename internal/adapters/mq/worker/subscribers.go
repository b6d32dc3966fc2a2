package worker

import (
	"context"
	"strconv"

	"github.com/okian/repute/internal/domain/model"
	"github.com/okian/repute/pkg/logger"
	"github.com/okian/repute/pkg/metrics"
)

// LogSubscriber writes every notification to a logger.
type LogSubscriber struct {
	Logger logger.Logger
}

// Handle logs n at info level. Tier changes and awards carry their
// details as fields.
func (s LogSubscriber) Handle(ctx context.Context, n Notification) error { //nolint:gocritic // hugeParam
	fields := []logger.Field{
		logger.String("id", n.ID),
		logger.String("contributor", n.ContributorID),
		logger.Uint64("old_score", uint64(n.OldScore)),
		logger.Uint64("new_score", uint64(n.NewScore)),
	}
	if n.Event != 0 {
		fields = append(fields, logger.String("event", n.Event.String()), logger.Uint64("value", uint64(n.Value)))
	}
	if n.OldTier != nil && n.NewTier != nil {
		fields = append(fields, logger.String("old_tier", n.OldTier.String()), logger.String("new_tier", n.NewTier.String()))
	}
	if n.AchievementID != 0 {
		fields = append(fields, logger.Uint64("achievement", n.AchievementID), logger.Uint64("points", uint64(n.Points)))
	}
	s.Logger.Info(ctx, string(n.Kind), fields...)
	return nil
}

// MetricsSubscriber turns notifications into Prometheus counters.
type MetricsSubscriber struct{}

// Handle records n.
func (MetricsSubscriber) Handle(_ context.Context, n Notification) error { //nolint:gocritic // hugeParam
	switch n.Kind {
	case model.NotifyProfileInitialized:
		metrics.RecordProfileInitialized()
	case model.NotifyReputationUpdated:
		metrics.RecordEvent(n.Event.String())
	case model.NotifyTierUpgraded:
		metrics.RecordTierTransition("up")
	case model.NotifyTierDowngraded:
		metrics.RecordTierTransition("down")
	case model.NotifyAchievementAwarded:
		metrics.RecordAchievementAwarded(strconv.FormatUint(n.AchievementID, 10))
	}
	return nil
}
