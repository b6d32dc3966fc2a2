// Package repository provides the key-value persistence adapter used by
// the reputation facade. Records are opaque byte slices keyed by
// (entity kind, entity id).
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Kind names a family of persisted entities.
type Kind string

// Entity kinds.
const (
	KindProfile     Kind = "profile"
	KindAchievement Kind = "achievement"
	KindLeaderboard Kind = "leaderboard"
	KindCounter     Kind = "counter"
)

// Key addresses one record.
type Key struct {
	Kind Kind
	ID   string
}

func (k Key) String() string { return string(k.Kind) + "/" + k.ID }

// Store provides read/write access to persisted records.
type Store interface {
	// Get returns the value stored under key or ErrNotFound.
	Get(ctx context.Context, key Key) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key Key, value []byte) error
	// Has reports whether key holds a value.
	Has(ctx context.Context, key Key) (bool, error)
	// Count returns the number of records of a kind.
	Count(ctx context.Context, kind Kind) (int, error)
	// Close releases the underlying resources.
	Close() error
}

// GetJSON loads key and decodes it into v.
func GetJSON(ctx context.Context, s Store, key Key, v any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, errors.Join(ErrCorrupt, err))
	}
	return nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Store, key Key, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}
