package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/rulesetview/internal/label"
	"github.com/matthewbaird/rulesetview/internal/metadata"
)

func TestSessionState(t *testing.T) {
	s := NewSession("newspaper")
	assert.False(t, s.State().IsOpen())

	s.Open("issue", "edit", label.MustParse("de"))
	s.AddField("title")
	s.AddField("note")
	s.AddField("title")
	assert.Equal(t, []string{"title", "note"}, s.State().Additional)

	s.SetMetadata([]metadata.Metadata{metadata.Entry("title", "Morgenblatt")})
	st := s.State()
	assert.True(t, st.IsOpen())
	assert.Equal(t, "issue", st.Division)
	assert.Equal(t, "edit", st.Stage)
	assert.Equal(t, []string{"note"}, st.Additional, "a field with a value is no longer extra")

	st.Metadata[0].Value = "changed"
	assert.Equal(t, "Morgenblatt", s.State().Metadata[0].Value, "state is a copy")

	s.Open("year", "", nil)
	assert.Empty(t, s.State().Metadata)
}

func TestManager(t *testing.T) {
	m := NewManager(time.Hour, time.Hour)
	s := m.Create("monograph")
	assert.Equal(t, "monograph", s.Ruleset)
	assert.Same(t, s, m.Get(s.ID))
	assert.Equal(t, 1, m.Len())

	m.Remove(s.ID)
	assert.Nil(t, m.Get(s.ID))
	assert.Nil(t, m.Get("unknown"))
}

func TestManagerExpiresIdleSessions(t *testing.T) {
	m := NewManager(time.Hour, time.Millisecond)
	s := m.Create("monograph")
	time.Sleep(5 * time.Millisecond)

	removed := m.Cleanup()
	require.Len(t, removed, 1)
	assert.Equal(t, s.ID, removed[0].ID)
	assert.Zero(t, m.Len())
}

func TestManagerGetDropsExpired(t *testing.T) {
	m := NewManager(time.Millisecond, time.Hour)
	s := m.Create("monograph")
	time.Sleep(5 * time.Millisecond)
	assert.Nil(t, m.Get(s.ID))
	assert.Zero(t, m.Len())
}

func TestManagerRun(t *testing.T) {
	m := NewManager(time.Hour, time.Millisecond)
	m.Create("monograph")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	removed := make(chan *Session, 1)
	go m.Run(ctx, 5*time.Millisecond, func(s *Session) { removed <- s })

	select {
	case s := <-removed:
		assert.Equal(t, "monograph", s.Ruleset)
	case <-time.After(2 * time.Second):
		t.Fatal("session was not cleaned up")
	}
}
