// Package session manages live editing session lifecycle.
package session

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matthewbaird/rulesetview/internal/label"
	"github.com/matthewbaird/rulesetview/internal/metadata"
)

// Session holds the state of one editing mask: the division being edited,
// its entered values and the keys a field was requested for.
type Session struct {
	ID        string
	Ruleset   string
	CreatedAt time.Time

	mu           sync.Mutex
	lastActiveAt time.Time
	state        State
}

// State is a snapshot of a session's mask.
type State struct {
	Division   string
	Stage      string
	Priority   label.PriorityList
	Metadata   []metadata.Metadata
	Additional []string
}

// IsOpen reports whether a division has been opened.
func (s State) IsOpen() bool { return s.Division != "" }

// NewSession creates a session for the named ruleset.
func NewSession(ruleset string) *Session {
	now := time.Now()
	return &Session{
		ID:           uuid.New().String(),
		Ruleset:      ruleset,
		CreatedAt:    now,
		lastActiveAt: now,
	}
}

// Open starts editing a division, discarding previous values.
func (s *Session) Open(division, stage string, priority label.PriorityList) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{Division: division, Stage: stage, Priority: priority}
	s.lastActiveAt = time.Now()
}

// SetMetadata replaces the entered values. Requested fields that now hold
// a value are no longer extra.
func (s *Session) SetMetadata(entries []metadata.Metadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Metadata = slices.Clone(entries)
	s.state.Additional = slices.DeleteFunc(s.state.Additional, func(key string) bool {
		return slices.ContainsFunc(entries, func(m metadata.Metadata) bool { return m.Key == key })
	})
	s.lastActiveAt = time.Now()
}

// AddField requests an empty field for key.
func (s *Session) AddField(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.state.Additional, key) {
		s.state.Additional = append(s.state.Additional, key)
	}
	s.lastActiveAt = time.Now()
}

// State returns a copy of the session's mask state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Metadata = slices.Clone(st.Metadata)
	st.Additional = slices.Clone(st.Additional)
	return st
}

// Touch updates the last activity timestamp.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActiveAt = time.Now()
	s.mu.Unlock()
}

// IsExpired returns true if the session has exceeded the given max age.
func (s *Session) IsExpired(maxAge time.Duration) bool {
	return time.Since(s.CreatedAt) > maxAge
}

// IsIdle returns true if the session has been idle longer than the timeout.
func (s *Session) IsIdle(timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.lastActiveAt) > timeout
}

// Manager handles session creation, lookup, and cleanup.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	maxAge      time.Duration
	idleTimeout time.Duration
}

// NewManager creates a session manager with the given timeouts.
func NewManager(maxAge, idleTimeout time.Duration) *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		maxAge:      maxAge,
		idleTimeout: idleTimeout,
	}
}

// Create creates a new session and returns it.
func (m *Manager) Create(ruleset string) *Session {
	s := NewSession(ruleset)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get retrieves a session by ID. Returns nil if not found or expired.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	if m.stale(s) {
		m.Remove(id)
		return nil
	}
	return s
}

// Remove deletes a session.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Cleanup removes all expired and idle sessions and returns them.
func (m *Manager) Cleanup() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed []*Session
	for id, s := range m.sessions {
		if m.stale(s) {
			delete(m.sessions, id)
			removed = append(removed, s)
		}
	}
	return removed
}

// Run calls Cleanup every interval until ctx is done. onRemove is called
// for every removed session.
func (m *Manager) Run(ctx context.Context, interval time.Duration, onRemove func(*Session)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, s := range m.Cleanup() {
				if onRemove != nil {
					onRemove(s)
				}
			}
		}
	}
}

func (m *Manager) stale(s *Session) bool {
	return s.IsExpired(m.maxAge) || s.IsIdle(m.idleTimeout)
}
