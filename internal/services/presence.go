package services

import (
	"sort"
	"sync"
	"time"

	"github.com/Nandeesh-nh/lan-chat/internal/models"
)

// PresenceTracker tracks which users are online. An entry exists iff the
// user is considered online. Guarded by its own mutex, independent of the
// message log.
type PresenceTracker struct {
	mu     sync.Mutex
	online map[string]*models.PresenceEntry
	now    func() time.Time
}

// NewPresenceTracker creates an empty tracker. The clock defaults to
// time.Now and is only overridden in tests.
func NewPresenceTracker() *PresenceTracker {
	return &PresenceTracker{
		online: make(map[string]*models.PresenceEntry),
		now:    time.Now,
	}
}

// MarkOnline inserts or resets the user's presence entry. Idempotent; a
// re-login resets both timestamps.
func (p *PresenceTracker) MarkOnline(username string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	p.online[username] = &models.PresenceEntry{
		Username:   username,
		JoinedAt:   now,
		LastSeenAt: now,
	}
}

// Touch refreshes the user's last-seen time and reports whether the user was
// tracked at all. A heartbeat from a logged-out session must fail explicitly
// rather than silently resurrect the entry.
func (p *PresenceTracker) Touch(username string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.online[username]
	if !ok {
		return false
	}
	e.LastSeenAt = p.now()
	return true
}

// MarkOffline removes the user's entry unconditionally and reports whether
// the user was tracked, so the caller can decide about a departure
// announcement.
func (p *PresenceTracker) MarkOffline(username string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.online[username]
	delete(p.online, username)
	return ok
}

// IsOnline reports whether the user currently has a presence entry.
func (p *PresenceTracker) IsOnline(username string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.online[username]
	return ok
}

// ListOnline returns a sorted snapshot of online usernames. Listing counts
// as activity for every online user, not just the requester: each entry's
// last-seen time is refreshed as a side effect (inherited policy; any
// polling client keeps the whole room alive).
func (p *PresenceTracker) ListOnline() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	users := make([]string, 0, len(p.online))
	for name, e := range p.online {
		e.LastSeenAt = now
		users = append(users, name)
	}
	sort.Strings(users)
	return users
}

// SweepExpired removes every entry whose last-seen time is older than
// timeout and returns the evicted usernames so the caller may emit system
// messages. Pure in terms of the injected clock; tests call it directly.
func (p *PresenceTracker) SweepExpired(timeout time.Duration) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	var evicted []string
	for name, e := range p.online {
		if now.Sub(e.LastSeenAt) > timeout {
			evicted = append(evicted, name)
		}
	}
	for _, name := range evicted {
		delete(p.online, name)
	}
	sort.Strings(evicted)
	return evicted
}
