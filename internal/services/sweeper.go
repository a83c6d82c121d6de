package services

import (
	"log"
	"time"
)

const (
	// DefaultSweepInterval is how often the background sweep runs.
	DefaultSweepInterval = 5 * time.Minute
	// DefaultPresenceTimeout is how long a user may stay idle before the
	// sweep considers them gone.
	DefaultPresenceTimeout = 10 * time.Minute
)

// StartPresenceSweeper launches the background goroutine that evicts stale
// presence entries and announces each eviction with a system message. The
// presence lock is released before any message append so the two locks are
// never held together. Runs until process shutdown.
func StartPresenceSweeper(presence *PresenceTracker, messages *MessageStore, interval, timeout time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if timeout <= 0 {
		timeout = DefaultPresenceTimeout
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			sweepOnce(presence, messages, timeout)
		}
	}()
}

// sweepOnce runs a single sweep cycle. A panic here must not take down the
// sweeper goroutine; it is logged and the next tick proceeds normally.
func sweepOnce(presence *PresenceTracker, messages *MessageStore, timeout time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("presence sweep failed: %v", r)
		}
	}()

	evicted := presence.SweepExpired(timeout)
	for _, username := range evicted {
		messages.AppendSystem(username + " disconnected")
	}
	if len(evicted) > 0 {
		log.Printf("presence sweep evicted %d inactive user(s)", len(evicted))
	}
}
