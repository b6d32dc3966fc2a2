package achievement

import "errors"

// Sentinel kinds for achievement errors.
var (
	ErrAchievementNotFound = errors.New("achievement not found")
	ErrAlreadyAwarded      = errors.New("achievement already awarded")
	ErrNotEligible         = errors.New("contributor not eligible for achievement")
	ErrInvalidDefinition   = errors.New("invalid achievement definition")
)
