package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTrackerAt(start time.Time) (*PresenceTracker, *time.Time) {
	p := NewPresenceTracker()
	current := start
	p.now = func() time.Time { return current }
	return p, &current
}

func TestMarkOnlineAndTouch(t *testing.T) {
	p, clock := newTrackerAt(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))

	p.MarkOnline("alice")
	assert.True(t, p.IsOnline("alice"))
	assert.True(t, p.Touch("alice"))

	// heartbeat from someone who never logged in fails explicitly
	assert.False(t, p.Touch("bob"))
	assert.False(t, p.IsOnline("bob"))

	// re-login resets timestamps rather than erroring
	*clock = clock.Add(time.Hour)
	p.MarkOnline("alice")
	assert.Empty(t, p.SweepExpired(time.Minute))
}

func TestMarkOffline(t *testing.T) {
	p, _ := newTrackerAt(time.Now())

	p.MarkOnline("alice")
	assert.True(t, p.MarkOffline("alice"))
	assert.False(t, p.IsOnline("alice"))
	assert.False(t, p.Touch("alice"))

	// absent user is not an error
	assert.False(t, p.MarkOffline("alice"))
}

func TestListOnlineRefreshesEveryone(t *testing.T) {
	p, clock := newTrackerAt(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))

	p.MarkOnline("alice")
	p.MarkOnline("bob")

	// both idle long past the timeout, then one client lists the room
	*clock = clock.Add(20 * time.Minute)
	assert.Equal(t, []string{"alice", "bob"}, p.ListOnline())

	// the listing counted as activity for everyone
	assert.Empty(t, p.SweepExpired(10*time.Minute))
}

func TestSweepExpiredBoundary(t *testing.T) {
	p, clock := newTrackerAt(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))

	p.MarkOnline("stale")
	*clock = clock.Add(2 * time.Second)
	p.MarkOnline("fresh")

	// stale is 601s idle, fresh is 599s idle
	*clock = clock.Add(599 * time.Second)

	evicted := p.SweepExpired(600 * time.Second)
	require.Equal(t, []string{"stale"}, evicted)
	assert.False(t, p.IsOnline("stale"))
	assert.True(t, p.IsOnline("fresh"))
}

func TestSweepAnnouncesDisconnects(t *testing.T) {
	p, clock := newTrackerAt(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	messages := NewMessageStore()

	p.MarkOnline("alice")
	*clock = clock.Add(11 * time.Minute)

	sweepOnce(p, messages, 10*time.Minute)

	view, err := messages.FilteredView("bob")
	require.NoError(t, err)
	require.Len(t, view, 1)
	assert.Equal(t, "alice disconnected", view[0].Body)
	assert.Equal(t, SystemSender, view[0].Sender)
}
