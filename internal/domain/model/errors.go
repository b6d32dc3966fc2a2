package model

import "errors"

// Sentinel kinds for model parsing errors.
var (
	ErrUnknownTier      = errors.New("unknown tier")
	ErrUnknownEventKind = errors.New("unknown event kind")
)
