package activity

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store using an in-memory ring of the most recent
// entries.
type MemoryStore struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
}

// NewMemoryStore creates a store keeping at most capacity entries. A
// capacity below one keeps 1000.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity < 1 {
		capacity = 1000
	}
	return &MemoryStore{capacity: capacity}
}

func (s *MemoryStore) WriteEntries(_ context.Context, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entries...)
	if over := len(s.entries) - s.capacity; over > 0 {
		s.entries = slices.Clone(s.entries[over:])
	}
	return nil
}

func (s *MemoryStore) Query(_ context.Context, opts QueryOptions) ([]Entry, string, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cursor *time.Time
	if opts.Cursor != "" {
		if t, err := time.Parse(time.RFC3339Nano, opts.Cursor); err == nil {
			cursor = &t
		}
	}

	var matched []Entry
	for _, e := range s.entries {
		if opts.Ruleset != "" && e.Ruleset != opts.Ruleset {
			continue
		}
		if opts.Since != nil && e.OccurredAt.Before(*opts.Since) {
			continue
		}
		if opts.Until != nil && e.OccurredAt.After(*opts.Until) {
			continue
		}
		if len(opts.Categories) > 0 && !slices.Contains(opts.Categories, e.Category) {
			continue
		}
		if opts.MinWeight != "" && !IsAtLeastWeight(e.Weight, opts.MinWeight) {
			continue
		}
		if cursor != nil && !e.OccurredAt.Before(*cursor) {
			continue
		}
		matched = append(matched, e)
	}

	// Newest first.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].OccurredAt.After(matched[j].OccurredAt)
	})

	totalCount := len(matched)
	limit := opts.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var nextCursor string
	if len(matched) > limit {
		matched = matched[:limit]
		nextCursor = matched[len(matched)-1].OccurredAt.Format(time.RFC3339Nano)
	}

	return matched, nextCursor, totalCount, nil
}
