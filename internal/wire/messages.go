// Package wire defines the WebSocket protocol for live editing sessions.
package wire

import (
	"encoding/json"

	"github.com/matthewbaird/rulesetview/internal/form"
	"github.com/matthewbaird/rulesetview/internal/metadata"
)

// ── Client → Server messages ────────────────────────────────────────────────

// ClientMessage is the envelope for all client-to-server WebSocket messages.
type ClientMessage struct {
	Type string          `json:"type"` // "open", "set", "add_field", "validate", "view", "ping"
	ID   string          `json:"id"`   // Client-assigned request ID
	Data json.RawMessage `json:"data,omitempty"`
}

// OpenData is the payload for "open" messages.
type OpenData struct {
	Division string `json:"division"`
	Stage    string `json:"stage,omitempty"`
	Lang     string `json:"lang,omitempty"` // Accept-Language syntax
}

// SetData is the payload for "set" messages. It replaces all values.
type SetData struct {
	Metadata []metadata.Metadata `json:"metadata"`
}

// AddFieldData is the payload for "add_field" messages.
type AddFieldData struct {
	Key string `json:"key"`
}

// ValidateData is the payload for "validate" messages.
type ValidateData struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ── Server → Client messages ────────────────────────────────────────────────

// ServerMessage is the envelope for all server-to-client WebSocket messages.
type ServerMessage struct {
	Type      string `json:"type"`                 // "session", "view", "validation", "error", "pong"
	RequestID string `json:"request_id,omitempty"` // Echoes client ID
	Data      any    `json:"data,omitempty"`
}

// SessionData carries session information.
type SessionData struct {
	SessionID string `json:"session_id"`
	Ruleset   string `json:"ruleset"`
}

// ViewData is the rendered mask of the session's division.
type ViewData struct {
	Division     string        `json:"division"`
	Label        string        `json:"label"`
	Stage        string        `json:"stage,omitempty"`
	Rows         []form.Row    `json:"rows"`
	Addable      []form.Field  `json:"addable"`
	Subdivisions []form.Option `json:"subdivisions"`
}

// ValidationData answers a "validate" message.
type ValidationData struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Valid bool   `json:"valid"`
}

// ErrorData carries an error message.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
