package loadgen

import "errors"

// Sentinel kinds for load run failures.
var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrMismatch         = errors.New("leaderboard mismatch")
	ErrInvalidConfig    = errors.New("invalid loadgen config")
)
