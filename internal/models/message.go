package models

import "time"

// MessageKind discriminates the chat event variants.
// Valid values: "broadcast", "private", "file", "system".
type MessageKind string

const (
	KindBroadcast MessageKind = "broadcast"
	KindPrivate   MessageKind = "private"
	KindFile      MessageKind = "file"
	KindSystem    MessageKind = "system"
)

// Message is a single entry in the in-memory chat log.
// TargetUser is set only for private messages and files sent to a specific
// recipient; broadcast and system messages never carry it.
type Message struct {
	ID         string      `json:"id"`
	Kind       MessageKind `json:"kind"`
	Sender     string      `json:"sender"`
	Body       string      `json:"body"`
	TargetUser string      `json:"target_user,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	EditedAt   *time.Time  `json:"edited_at,omitempty"`
	Delivered  bool        `json:"delivered"`

	// File fields, set only when Kind == KindFile.
	OriginalFilename string `json:"original_filename,omitempty"`
	StorageRef       string `json:"storage_ref,omitempty"`
	SizeBytes        int64  `json:"size_bytes,omitempty"`
}
