package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	ErrInvalidEvent = errors.New("invalid reputation event")
)
