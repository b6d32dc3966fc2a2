package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/repute/internal/adapters/repository"
	"github.com/okian/repute/internal/domain/leaderboard"
	"github.com/okian/repute/pkg/metrics"
)

func groupKey(group string) repository.Key {
	return repository.Key{Kind: repository.KindLeaderboard, ID: group}
}

// board returns the group's index, rebuilding it from the persisted
// membership the first time the group is touched.
func (s *Service) board(ctx context.Context, group string) (*leaderboard.Board, error) {
	b, err := s.boards.GetOrLoad(group, func() (map[string]uint32, error) {
		members := map[string]uint32{}
		err := repository.GetJSON(ctx, s.store, groupKey(group), &members)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("load leaderboard %s: %w", group, err)
		}
		return members, nil
	})
	if err != nil {
		return nil, err
	}
	metrics.UpdateLeaderboardGroups(s.boards.Groups())
	return b, nil
}

// RecordOnLeaderboard upserts id's current score into group. The profile
// is read and the board written while id's lock is held, so a concurrent
// RecordEvent cannot slip between them and leave an older score behind.
// Locks are always taken profile first, then group.
func (s *Service) RecordOnLeaderboard(ctx context.Context, group, id string) error {
	if strings.TrimSpace(group) == "" {
		return ErrInvalidGroup
	}
	if err := s.ready(); err != nil {
		return err
	}
	if err := validID(id); err != nil {
		return err
	}

	unlockProfile := s.profileLocks.lock(id)
	defer unlockProfile()
	p, err := s.loadLocked(ctx, id)
	if err != nil {
		return err
	}
	p, _ = s.engine.Decay(p, s.clock.Now())

	unlock := s.groupLocks.lock(group)
	defer unlock()

	b, err := s.board(ctx, group)
	if err != nil {
		return err
	}
	if !b.Upsert(id, p.Score) {
		return nil
	}
	if err := repository.SetJSON(ctx, s.store, groupKey(group), b.Members()); err != nil {
		return fmt.Errorf("record %s on %s: %w", id, group, err)
	}
	metrics.RecordLeaderboardUpdate()
	return nil
}

// TopContributors returns at most limit entries of group ordered by score
// desc, then contributor id asc. Limits above the configured maximum are
// clamped. An unknown group is empty.
func (s *Service) TopContributors(ctx context.Context, group string, limit int) ([]leaderboard.Entry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(group) == "" {
		return nil, ErrInvalidGroup
	}
	if limit > s.maxLeaderboardLimit {
		limit = s.maxLeaderboardLimit
	}
	b, err := s.board(ctx, group)
	if err != nil {
		return nil, err
	}
	metrics.RecordLeaderboardQuery()
	return b.TopN(limit)
}

// ContributorRank returns id's entry in group.
func (s *Service) ContributorRank(ctx context.Context, group, id string) (leaderboard.Entry, error) {
	if err := s.ready(); err != nil {
		return leaderboard.Entry{}, err
	}
	if strings.TrimSpace(group) == "" {
		return leaderboard.Entry{}, ErrInvalidGroup
	}
	b, err := s.board(ctx, group)
	if err != nil {
		return leaderboard.Entry{}, err
	}
	return b.Rank(id)
}
