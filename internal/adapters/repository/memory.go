package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// MemoryStore keeps records in a map. Values are copied on the way in and
// out so callers never share backing arrays with the store.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[Key][]byte
	closed bool
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[Key][]byte)}
}

// Get returns a copy of the value stored under key or ErrNotFound.
func (m *MemoryStore) Get(_ context.Context, key Key) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	v, ok := m.data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return slices.Clone(v), nil
}

// Set stores a copy of value under key.
func (m *MemoryStore) Set(_ context.Context, key Key, value []byte) error {
	if key.Kind == "" || key.ID == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.data[key] = slices.Clone(value)
	return nil
}

// Has reports whether key holds a value.
func (m *MemoryStore) Has(_ context.Context, key Key) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return false, ErrClosed
	}
	_, ok := m.data[key]
	return ok, nil
}

// Count returns the number of records of kind.
func (m *MemoryStore) Count(_ context.Context, kind Kind) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, ErrClosed
	}
	n := 0
	for k := range m.data {
		if k.Kind == kind {
			n++
		}
	}
	return n, nil
}

// Close marks the store closed. Further calls return ErrClosed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
