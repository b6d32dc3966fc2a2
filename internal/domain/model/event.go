package model

import (
	"fmt"
	"strings"
)

// EventKind enumerates the lifecycle events that move a reputation score.
type EventKind uint8

// Event kinds accepted by the scoring engine.
const (
	EventTaskCompleted EventKind = iota + 1
	EventTaskFailed
	EventMilestoneAchieved
	EventDisputeWon
	EventDisputeLost
)

var eventKindNames = map[EventKind]string{
	EventTaskCompleted:     "task_completed",
	EventTaskFailed:        "task_failed",
	EventMilestoneAchieved: "milestone_achieved",
	EventDisputeWon:        "dispute_won",
	EventDisputeLost:       "dispute_lost",
}

// EventKinds lists every valid kind in declaration order.
func EventKinds() []EventKind {
	return []EventKind{
		EventTaskCompleted,
		EventTaskFailed,
		EventMilestoneAchieved,
		EventDisputeWon,
		EventDisputeLost,
	}
}

// String returns the snake_case name used on the wire and in metrics.
func (k EventKind) String() string {
	if n, ok := eventKindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("event(%d)", uint8(k))
}

// Valid reports whether k is a declared event kind.
func (k EventKind) Valid() bool {
	_, ok := eventKindNames[k]
	return ok
}

// IsTask reports whether the kind affects the success rate.
func (k EventKind) IsTask() bool {
	return k == EventTaskCompleted || k == EventTaskFailed
}

// ParseEventKind resolves a kind name. Both snake_case and CamelCase
// spellings are accepted ("task_completed", "TaskCompleted").
func ParseEventKind(s string) (EventKind, error) {
	norm := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
	for k, n := range eventKindNames {
		if strings.ReplaceAll(n, "_", "") == norm {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEventKind, s)
}

// MarshalText implements encoding.TextMarshaler.
func (k EventKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownEventKind, uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *EventKind) UnmarshalText(b []byte) error {
	parsed, err := ParseEventKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
