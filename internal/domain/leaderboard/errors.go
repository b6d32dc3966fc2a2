package leaderboard

import "errors"

// Sentinel kinds for leaderboard errors.
var (
	ErrNotFound     = errors.New("contributor not on leaderboard")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
)
