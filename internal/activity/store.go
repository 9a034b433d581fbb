package activity

import (
	"context"
	"encoding/json"
	"time"
)

// Entry is one recorded domain event, indexed by the ruleset it concerns.
type Entry struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Ruleset    string          `json:"ruleset,omitempty"`
	Summary    string          `json:"summary"`
	Category   string          `json:"category"`
	Weight     string          `json:"weight"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// Store is the interface for reading and writing activity entries.
type Store interface {
	// WriteEntries records one or more entries.
	WriteEntries(ctx context.Context, entries []Entry) error

	// Query returns entries newest first.
	Query(ctx context.Context, opts QueryOptions) (entries []Entry, nextCursor string, totalCount int, err error)
}
