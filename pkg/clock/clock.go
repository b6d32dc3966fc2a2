// Package clock supplies the time source used for decay and timestamps.
package clock

import (
	"sync"
	"time"
)

// Clock returns the current time in unix seconds.
type Clock interface {
	Now() int64
}

// System reads the wall clock. It never reports a value lower than one
// it already returned, so decay math sees a non-decreasing source even
// if the host clock steps backwards.
type System struct {
	mu   sync.Mutex
	last int64
}

// NewSystem returns a wall clock.
func NewSystem() *System { return &System{} }

func (s *System) Now() int64 {
	now := time.Now().Unix()
	s.mu.Lock()
	defer s.mu.Unlock()
	if now < s.last {
		return s.last
	}
	s.last = now
	return now
}

// Manual is a settable clock for tests.
type Manual struct {
	mu  sync.Mutex
	now int64
}

// NewManual returns a clock frozen at start.
func NewManual(start int64) *Manual { return &Manual{now: start} }

func (m *Manual) Now() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d seconds. Negative values are ignored.
func (m *Manual) Advance(d int64) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	m.now += d
	m.mu.Unlock()
}

// Set moves the clock to t if t is not in the past.
func (m *Manual) Set(t int64) {
	m.mu.Lock()
	if t > m.now {
		m.now = t
	}
	m.mu.Unlock()
}
