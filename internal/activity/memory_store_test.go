package activity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testEntry(ruleset, category, weight, summary string, minutes int) Entry {
	return Entry{
		EventID:    "test-" + summary,
		EventType:  "test_event",
		OccurredAt: base.Add(time.Duration(minutes) * time.Minute),
		Ruleset:    ruleset,
		Summary:    summary,
		Category:   category,
		Weight:     weight,
	}
}

func TestMemoryStore_WriteAndQuery(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	require.NoError(t, store.WriteEntries(ctx, []Entry{
		testEntry("newspaper", "ruleset", "info", "loaded", 1),
		testEntry("newspaper", "reimport", "minor", "reimported", 2),
		testEntry("monograph", "ruleset", "info", "loaded", 3),
	}))

	opts := DefaultQueryOptions()
	opts.Ruleset = "newspaper"
	results, cursor, total, err := store.Query(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Empty(t, cursor)
	require.Len(t, results, 2)
	assert.Equal(t, "reimported", results[0].Summary, "newest first")
}

func TestMemoryStore_Filters(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	require.NoError(t, store.WriteEntries(ctx, []Entry{
		testEntry("a", "ruleset", "info", "loaded", 1),
		testEntry("a", "ruleset", "major", "failed", 2),
		testEntry("a", "session", "info", "opened", 3),
	}))

	opts := DefaultQueryOptions()
	opts.Categories = []string{"ruleset"}
	results, _, _, err := store.Query(ctx, opts)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	opts = DefaultQueryOptions()
	opts.MinWeight = "major"
	results, _, _, err = store.Query(ctx, opts)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "failed", results[0].Summary)

	since := base.Add(2 * time.Minute)
	opts = DefaultQueryOptions()
	opts.Since = &since
	_, _, total, err := store.Query(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestMemoryStore_Pagination(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.WriteEntries(ctx, []Entry{testEntry("a", "ruleset", "info", fmt.Sprint(i), i)}))
	}

	opts := DefaultQueryOptions()
	opts.Limit = 2
	page, cursor, total, err := store.Query(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Equal(t, "4", page[0].Summary)
	require.NotEmpty(t, cursor)

	opts.Cursor = cursor
	page, _, _, err = store.Query(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, "2", page[0].Summary)
}

func TestMemoryStore_Capacity(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(3)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.WriteEntries(ctx, []Entry{testEntry("a", "ruleset", "info", fmt.Sprint(i), i)}))
	}
	results, _, total, err := store.Query(ctx, DefaultQueryOptions())
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, "2", results[2].Summary, "oldest entries are dropped")
}

func TestIsAtLeastWeight(t *testing.T) {
	assert.True(t, IsAtLeastWeight("critical", "major"))
	assert.True(t, IsAtLeastWeight("major", "major"))
	assert.False(t, IsAtLeastWeight("minor", "major"))
	assert.False(t, IsAtLeastWeight("unknown", "minor"))
}
