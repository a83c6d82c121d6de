package models

import "time"

// User is a registered account. Only credentials persist across restarts;
// everything else in the system is in-memory.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// StoredUser is the on-disk shape of a credential record (users.json).
// Unlike User, the hash is serialized here.
type StoredUser struct {
	PasswordHash string    `json:"password"`
	CreatedAt    time.Time `json:"created"`
}
