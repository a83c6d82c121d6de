package models

import "time"

// PresenceEntry exists iff the user is considered online.
type PresenceEntry struct {
	Username   string    `json:"username"`
	JoinedAt   time.Time `json:"joined_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}
