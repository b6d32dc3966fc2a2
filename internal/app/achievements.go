package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/okian/repute/internal/adapters/repository"
	"github.com/okian/repute/internal/domain/achievement"
	"github.com/okian/repute/internal/domain/model"
	"github.com/okian/repute/internal/domain/scoring"
	"github.com/okian/repute/pkg/logger"
	"github.com/okian/repute/pkg/metrics"
)

var achievementCounterKey = repository.Key{Kind: repository.KindCounter, ID: "achievement"}

func achievementKey(id uint64) repository.Key {
	return repository.Key{Kind: repository.KindAchievement, ID: strconv.FormatUint(id, 10)}
}

// loadCatalog restores issued achievements from the store, then issues
// ids to configured definitions that are not in the catalog yet.
func (s *Service) loadCatalog(ctx context.Context) error {
	var next uint64
	err := repository.GetJSON(ctx, s.store, achievementCounterKey, &next)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("load achievement counter: %w", err)
	}

	var restored []model.Achievement
	for id := uint64(1); id < next; id++ {
		var a model.Achievement
		err := repository.GetJSON(ctx, s.store, achievementKey(id), &a)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("load achievement %d: %w", id, err)
		}
		restored = append(restored, a)
	}
	s.catalog.Restore(restored, next)

	issued, err := s.catalog.Bootstrap(s.definitions)
	if err != nil {
		return fmt.Errorf("bootstrap catalog: %w", err)
	}
	for _, a := range issued {
		if err := repository.SetJSON(ctx, s.store, achievementKey(a.ID), a); err != nil {
			return fmt.Errorf("persist achievement %d: %w", a.ID, err)
		}
		s.logger.Info(ctx, "achievement issued",
			logger.Uint64("id", a.ID),
			logger.String("name", a.Name),
		)
	}
	if err := repository.SetJSON(ctx, s.store, achievementCounterKey, s.catalog.NextID()); err != nil {
		return fmt.Errorf("persist achievement counter: %w", err)
	}
	return nil
}

// Catalog returns every issued achievement ordered by id.
func (s *Service) Catalog() []model.Achievement {
	return s.catalog.List()
}

// AwardAchievement grants aid to id. It returns false without error when
// the contributor already holds it or is not eligible; an unknown aid is
// ErrAchievementNotFound.
func (s *Service) AwardAchievement(ctx context.Context, id string, aid uint64) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	if err := validID(id); err != nil {
		return false, err
	}
	a, err := s.catalog.Get(aid)
	if err != nil {
		return false, err
	}

	unlock := s.profileLocks.lock(id)
	defer unlock()

	p, err := s.loadLocked(ctx, id)
	if err != nil {
		return false, err
	}
	now := s.clock.Now()
	// Report against the stored values so a demotion by decay is not lost.
	oldScore, oldTier := p.Score, p.Tier
	p, decayed := s.engine.Decay(p, now)

	awarded, _, err := achievement.Award(p, a)
	if errors.Is(err, achievement.ErrAlreadyAwarded) || errors.Is(err, achievement.ErrNotEligible) {
		s.logger.Debug(ctx, "achievement not awarded",
			logger.String("contributor", id),
			logger.Uint64("achievement", aid),
			logger.Error(err),
		)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := repository.SetJSON(ctx, s.store, profileKey(id), awarded); err != nil {
		return false, fmt.Errorf("award %d to %s: %w", aid, id, err)
	}
	if decayed > 0 {
		metrics.RecordDecay(decayed)
	}
	tr := scoring.Transition{Old: oldTier, New: awarded.Tier}

	n := model.NewNotification(model.NotifyAchievementAwarded, id, now)
	n.AchievementID = aid
	n.Points = a.Points
	n.OldScore = oldScore
	n.NewScore = awarded.Score
	if tr.Changed() {
		n = n.WithTiers(tr.Old, tr.New)
	}
	s.publish(ctx, n)
	s.publishTierChange(ctx, id, oldScore, awarded.Score, tr, now)
	return true, nil
}

// CheckEligible reports whether id may receive aid right now.
func (s *Service) CheckEligible(ctx context.Context, id string, aid uint64) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	a, err := s.catalog.Get(aid)
	if err != nil {
		return false, err
	}
	p, err := s.view(ctx, id)
	if err != nil {
		return false, err
	}
	return achievement.CheckEligibility(p, a), nil
}

// Achievements returns the catalog entries id holds, in award order.
func (s *Service) Achievements(ctx context.Context, id string) ([]model.Achievement, error) {
	p, err := s.view(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]model.Achievement, 0, len(p.Achievements))
	for _, aid := range p.Achievements {
		a, err := s.catalog.Get(aid)
		if err != nil {
			// Held ids always come from this catalog; keep the id visible.
			a = model.Achievement{ID: aid}
		}
		out = append(out, a)
	}
	return out, nil
}
