package repository

import "errors"

// Sentinel kinds for persistence errors.
var (
	ErrNotFound = errors.New("record not found")
	ErrCorrupt  = errors.New("corrupt record")
	ErrClosed   = errors.New("store closed")
	ErrEmptyKey = errors.New("empty record key")
)
