// Package loadgen drives a running repute server over HTTP with a seeded
// stream of reputation events and verifies the resulting leaderboard
// against scores computed locally with the same scoring engine.
package loadgen

import (
	"time"

	"github.com/okian/repute/internal/domain/model"
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Contributors int           // Number of distinct contributors
	Events       int           // Events per contributor
	Workers      int           // Concurrent submitters
	Group        string        // Leaderboard group the contributors join
	TopN         int           // Leaderboard entries fetched for verification
	DuplicatePct int           // Share of events resent with the same event_id, 0-100
	Seed         int64         // Generator seed; equal seeds produce equal runs
	Timeout      time.Duration // HTTP request timeout
}

// DefaultConfig returns a small run against a local server.
func DefaultConfig() Config {
	return Config{
		BaseURL:      "http://localhost:9080",
		Contributors: 50,
		Events:       20,
		Workers:      8,
		Group:        "loadgen",
		TopN:         10,
		DuplicatePct: 5,
		Seed:         1,
		Timeout:      10 * time.Second,
	}
}

// Event is one submission. Resend marks an event that is posted twice.
type Event struct {
	ContributorID string          `json:"-"`
	EventID       string          `json:"event_id"`
	Kind          model.EventKind `json:"kind"`
	Value         uint32          `json:"value"`
	Resend        bool            `json:"-"`
}

// Stats holds run statistics.
type Stats struct {
	EventsGenerated int
	EventsApplied   int
	EventsDuplicate int
	EventsFailed    int
	EntriesVerified int
	StartTime       time.Time
	Duration        time.Duration
}
