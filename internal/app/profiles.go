package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/repute/internal/adapters/repository"
	"github.com/okian/repute/internal/domain/model"
	"github.com/okian/repute/internal/domain/scoring"
	"github.com/okian/repute/pkg/logger"
	"github.com/okian/repute/pkg/metrics"
)

func profileKey(id string) repository.Key {
	return repository.Key{Kind: repository.KindProfile, ID: id}
}

func validID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidContributor
	}
	return nil
}

// Initialize creates the profile of id. It fails with
// ErrProfileAlreadyExists when the profile is already there.
func (s *Service) Initialize(ctx context.Context, id string) (model.Profile, error) {
	if err := s.ready(); err != nil {
		return model.Profile{}, err
	}
	if err := validID(id); err != nil {
		return model.Profile{}, err
	}
	unlock := s.profileLocks.lock(id)
	defer unlock()

	ok, err := s.store.Has(ctx, profileKey(id))
	if err != nil {
		return model.Profile{}, fmt.Errorf("initialize %s: %w", id, err)
	}
	if ok {
		return model.Profile{}, fmt.Errorf("%w: %s", ErrProfileAlreadyExists, id)
	}
	return s.createLocked(ctx, id)
}

// createLocked persists a fresh profile. The caller holds id's lock.
func (s *Service) createLocked(ctx context.Context, id string) (model.Profile, error) {
	now := s.clock.Now()
	p := model.NewProfile(id, now)
	if err := repository.SetJSON(ctx, s.store, profileKey(id), p); err != nil {
		return model.Profile{}, fmt.Errorf("initialize %s: %w", id, err)
	}
	s.logger.Debug(ctx, "profile initialized", logger.String("contributor", id))

	n := model.NewNotification(model.NotifyProfileInitialized, id, now)
	n.NewTier = &p.Tier
	s.publish(ctx, n)
	return p, nil
}

// loadLocked reads id's profile, creating it when auto-initialisation is
// on. The caller holds id's lock.
func (s *Service) loadLocked(ctx context.Context, id string) (model.Profile, error) {
	var p model.Profile
	err := repository.GetJSON(ctx, s.store, profileKey(id), &p)
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, repository.ErrNotFound):
		if s.autoInitialize {
			return s.createLocked(ctx, id)
		}
		return model.Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, id)
	default:
		return model.Profile{}, fmt.Errorf("load %s: %w", id, err)
	}
}

// view returns id's profile with decay applied for the current time. The
// decayed copy is not persisted, so repeated reads never compound decay.
func (s *Service) view(ctx context.Context, id string) (model.Profile, error) {
	if err := s.ready(); err != nil {
		return model.Profile{}, err
	}
	if err := validID(id); err != nil {
		return model.Profile{}, err
	}
	var p model.Profile
	err := repository.GetJSON(ctx, s.store, profileKey(id), &p)
	if errors.Is(err, repository.ErrNotFound) && s.autoInitialize {
		unlock := s.profileLocks.lock(id)
		p, err = s.loadLocked(ctx, id)
		unlock()
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, id)
		}
		return model.Profile{}, fmt.Errorf("load %s: %w", id, err)
	}
	p, _ = s.engine.Decay(p, s.clock.Now())
	return p.Clone(), nil
}

// RecordEvent applies decay and then the event to id's profile and
// returns the new score. It is not idempotent: every call is a distinct
// event.
func (s *Service) RecordEvent(ctx context.Context, id string, kind model.EventKind, value uint32) (uint32, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	if err := validID(id); err != nil {
		return 0, err
	}
	if !kind.Valid() {
		return 0, fmt.Errorf("%w: %s", scoring.ErrInvalidEvent, kind)
	}

	unlock := s.profileLocks.lock(id)
	defer unlock()

	p, err := s.loadLocked(ctx, id)
	if err != nil {
		return 0, err
	}
	now := s.clock.Now()
	res, err := s.engine.Apply(p, kind, value, now)
	if err != nil {
		return 0, err
	}
	if err := repository.SetJSON(ctx, s.store, profileKey(id), res.Profile); err != nil {
		return 0, fmt.Errorf("record event %s: %w", id, err)
	}

	if res.Decayed > 0 {
		metrics.RecordDecay(res.Decayed)
	}
	s.logger.Debug(ctx, "reputation updated",
		logger.String("contributor", id),
		logger.String("event", kind.String()),
		logger.Uint64("value", uint64(value)),
		logger.Uint64("old_score", uint64(res.OldScore)),
		logger.Uint64("new_score", uint64(res.NewScore)),
		logger.Uint64("decayed", uint64(res.Decayed)),
	)

	n := model.NewNotification(model.NotifyReputationUpdated, id, now)
	n.Event = kind
	n.Value = value
	n.OldScore = res.OldScore
	n.NewScore = res.NewScore
	if res.Tier.Changed() {
		n = n.WithTiers(res.Tier.Old, res.Tier.New)
	}
	s.publish(ctx, n)
	s.publishTierChange(ctx, id, res.OldScore, res.NewScore, res.Tier, now)

	return res.NewScore, nil
}

func (s *Service) publishTierChange(ctx context.Context, id string, oldScore, newScore uint32, tr scoring.Transition, now int64) {
	if !tr.Changed() {
		return
	}
	kind := model.NotifyTierDowngraded
	if tr.Upgrade() {
		kind = model.NotifyTierUpgraded
	}
	n := model.NewNotification(kind, id, now).WithTiers(tr.Old, tr.New)
	n.OldScore = oldScore
	n.NewScore = newScore
	s.publish(ctx, n)
}

// GetProfile returns id's profile with decay applied for the current time.
func (s *Service) GetProfile(ctx context.Context, id string) (model.Profile, error) {
	return s.view(ctx, id)
}

// GetTier returns id's current tier.
func (s *Service) GetTier(ctx context.Context, id string) (model.Tier, error) {
	p, err := s.view(ctx, id)
	if err != nil {
		return 0, err
	}
	return p.Tier, nil
}

// GetMultiplier returns id's incentive multiplier in basis points.
func (s *Service) GetMultiplier(ctx context.Context, id string) (uint32, error) {
	p, err := s.view(ctx, id)
	if err != nil {
		return 0, err
	}
	return scoring.Multiplier(p.Tier), nil
}
