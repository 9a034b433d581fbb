package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DomainEvent carries the canonical shape of every domain event.
type DomainEvent struct {
	ID         string
	EventType  string
	OccurredAt time.Time
	Ruleset    string
	Summary    string
	Category   string // "ruleset", "reimport", "session"
	Weight     string // "critical", "major", "minor", "info"
	Payload    json.RawMessage
}

// Event types.
const (
	TypeRulesetLoaded     = "ruleset_loaded"
	TypeRulesetLoadFailed = "ruleset_load_failed"
	TypeRulesetRemoved    = "ruleset_removed"
	TypeMetadataReimport  = "metadata_reimported"
	TypeSessionOpened     = "session_opened"
	TypeSessionClosed     = "session_closed"
)

func newID() string { return uuid.New().String() }

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

// ── Ruleset events ───────────────────────────────────────────────────────────

// RulesetLoadedPayload describes a successfully (re)loaded ruleset.
type RulesetLoadedPayload struct {
	Ruleset   string `json:"ruleset"`
	Path      string `json:"path"`
	Keys      int    `json:"keys"`
	Divisions int    `json:"divisions"`
	Reload    bool   `json:"reload"`
}

func NewRulesetLoaded(p RulesetLoadedPayload) DomainEvent {
	verb := "loaded"
	if p.Reload {
		verb = "reloaded"
	}
	return DomainEvent{
		ID:         newID(),
		EventType:  TypeRulesetLoaded,
		OccurredAt: time.Now(),
		Ruleset:    p.Ruleset,
		Summary:    fmt.Sprintf("Ruleset %s %s with %d keys and %d divisions", p.Ruleset, verb, p.Keys, p.Divisions),
		Category:   "ruleset",
		Weight:     "info",
		Payload:    mustJSON(p),
	}
}

// RulesetLoadFailedPayload describes a ruleset that could not be loaded.
// A previously loaded version stays in service.
type RulesetLoadFailedPayload struct {
	Ruleset string `json:"ruleset"`
	Path    string `json:"path"`
	Error   string `json:"error"`
	Kept    bool   `json:"kept_previous"`
}

func NewRulesetLoadFailed(p RulesetLoadFailedPayload) DomainEvent {
	weight := "critical"
	if p.Kept {
		weight = "major"
	}
	return DomainEvent{
		ID:         newID(),
		EventType:  TypeRulesetLoadFailed,
		OccurredAt: time.Now(),
		Ruleset:    p.Ruleset,
		Summary:    fmt.Sprintf("Ruleset %s failed to load: %s", p.Ruleset, p.Error),
		Category:   "ruleset",
		Weight:     weight,
		Payload:    mustJSON(p),
	}
}

// RulesetRemovedPayload describes a ruleset whose file disappeared.
type RulesetRemovedPayload struct {
	Ruleset string `json:"ruleset"`
	Path    string `json:"path"`
}

func NewRulesetRemoved(p RulesetRemovedPayload) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		EventType:  TypeRulesetRemoved,
		OccurredAt: time.Now(),
		Ruleset:    p.Ruleset,
		Summary:    fmt.Sprintf("Ruleset %s removed", p.Ruleset),
		Category:   "ruleset",
		Weight:     "minor",
		Payload:    mustJSON(p),
	}
}

// ── Reimport events ──────────────────────────────────────────────────────────

// MetadataReimportedPayload summarizes one reimport merge.
type MetadataReimportedPayload struct {
	Ruleset  string `json:"ruleset"`
	Division string `json:"division"`
	Stage    string `json:"stage,omitempty"`
	Before   int    `json:"before"`
	After    int    `json:"after"`
}

func NewMetadataReimported(p MetadataReimportedPayload) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		EventType:  TypeMetadataReimport,
		OccurredAt: time.Now(),
		Ruleset:    p.Ruleset,
		Summary:    fmt.Sprintf("Reimport into %s changed %d entries to %d", p.Division, p.Before, p.After),
		Category:   "reimport",
		Weight:     "minor",
		Payload:    mustJSON(p),
	}
}

// ── Session events ───────────────────────────────────────────────────────────

// SessionPayload identifies a live editing session.
type SessionPayload struct {
	SessionID string `json:"session_id"`
	Ruleset   string `json:"ruleset"`
	Division  string `json:"division,omitempty"`
}

func NewSessionOpened(p SessionPayload) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		EventType:  TypeSessionOpened,
		OccurredAt: time.Now(),
		Ruleset:    p.Ruleset,
		Summary:    fmt.Sprintf("Editing session %s opened", short(p.SessionID)),
		Category:   "session",
		Weight:     "info",
		Payload:    mustJSON(p),
	}
}

func NewSessionClosed(p SessionPayload) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		EventType:  TypeSessionClosed,
		OccurredAt: time.Now(),
		Ruleset:    p.Ruleset,
		Summary:    fmt.Sprintf("Editing session %s closed", short(p.SessionID)),
		Category:   "session",
		Weight:     "info",
		Payload:    mustJSON(p),
	}
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
