package service

import (
	"errors"

	"github.com/okian/repute/internal/domain/achievement"
	"github.com/okian/repute/internal/domain/leaderboard"
)

// Sentinel kinds for facade errors.
var (
	ErrNotStarted           = errors.New("service not started")
	ErrStopped              = errors.New("service stopped")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileAlreadyExists = errors.New("profile already exists")
	ErrInvalidContributor   = errors.New("invalid contributor id")
	ErrInvalidGroup         = errors.New("invalid group id")
	ErrNotOnLeaderboard     = leaderboard.ErrNotFound
	ErrInvalidLimit         = leaderboard.ErrInvalidLimit
	ErrAchievementNotFound  = achievement.ErrAchievementNotFound
	ErrAlreadyAwarded       = achievement.ErrAlreadyAwarded
	ErrNotEligible          = achievement.ErrNotEligible
)
