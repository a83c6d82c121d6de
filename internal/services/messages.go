package services

import (
	"strconv"
	"sync"
	"time"

	"github.com/Nandeesh-nh/lan-chat/internal/models"
)

// HistoryLimit caps the in-memory log at the most recent messages.
// Oldest entries are evicted first when the cap is exceeded.
const HistoryLimit = 100

// SystemSender is the sender recorded on system messages.
const SystemSender = "System"

// MessageStore is the process-wide bounded log of chat events. All methods
// are safe for concurrent use; each operation is a single critical section.
type MessageStore struct {
	mu       sync.Mutex
	log      []models.Message
	lastNano int64
	now      func() time.Time
}

// NewMessageStore creates an empty store. The clock defaults to time.Now and
// is only overridden in tests.
func NewMessageStore() *MessageStore {
	return &MessageStore{now: time.Now}
}

// nextID derives a unique id from the creation time and sender. Must be
// called with s.mu held; the nanosecond component is bumped past the last
// issued one so ids stay unique even on a coarse clock.
func (s *MessageStore) nextID(createdAt time.Time, sender string) string {
	nano := createdAt.UnixNano()
	if nano <= s.lastNano {
		nano = s.lastNano + 1
	}
	s.lastNano = nano
	return strconv.FormatInt(nano, 10) + "_" + sender
}

// Append stores a new broadcast or private message and returns the stored
// copy. Kind defaults to private when targetUser is non-empty, else
// broadcast.
func (s *MessageStore) Append(sender, body, targetUser string) models.Message {
	kind := models.KindBroadcast
	if targetUser != "" {
		kind = models.KindPrivate
	}
	return s.append(models.Message{
		Kind:       kind,
		Sender:     sender,
		Body:       body,
		TargetUser: targetUser,
	})
}

// AppendFile stores a file-kind message with the synthesized caption the
// clients render. targetUser may be empty for a broadcast file.
func (s *MessageStore) AppendFile(sender, targetUser, originalFilename, storageRef string, sizeBytes int64) models.Message {
	return s.append(models.Message{
		Kind:             models.KindFile,
		Sender:           sender,
		Body:             "Sent file: " + originalFilename,
		TargetUser:       targetUser,
		OriginalFilename: originalFilename,
		StorageRef:       storageRef,
		SizeBytes:        sizeBytes,
	})
}

// AppendSystem stores a system message. Trusted internal callers only (login,
// logout, presence sweep); bypasses the public validation path.
func (s *MessageStore) AppendSystem(body string) models.Message {
	return s.append(models.Message{
		Kind:   models.KindSystem,
		Sender: SystemSender,
		Body:   body,
	})
}

func (s *MessageStore) append(m models.Message) models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.CreatedAt = s.now()
	m.ID = s.nextID(m.CreatedAt, m.Sender)

	s.log = append(s.log, m)
	if len(s.log) > HistoryLimit {
		s.log = s.log[len(s.log)-HistoryLimit:]
	}
	return m
}

// FilteredView returns, in insertion order, every message visible to
// requestingUser: system and broadcast messages always, private messages
// only when the user is the sender or the target. File messages follow the
// same rule, except a file with no target is a broadcast visible to all.
// There is no anonymous view; an empty user is an error.
func (s *MessageStore) FilteredView(requestingUser string) ([]models.Message, error) {
	if requestingUser == "" {
		return nil, ErrMissingUser
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Message, 0, len(s.log))
	for _, m := range s.log {
		switch m.Kind {
		case models.KindSystem, models.KindBroadcast:
			out = append(out, m)
		case models.KindPrivate:
			if m.Sender == requestingUser || m.TargetUser == requestingUser {
				out = append(out, m)
			}
		case models.KindFile:
			if m.TargetUser == "" || m.Sender == requestingUser || m.TargetUser == requestingUser {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

// Edit replaces the body of the message with the given id and stamps
// EditedAt. Only the original sender may edit; a false return does not
// distinguish "no such id" from "not yours".
func (s *MessageStore) Edit(id, newBody, requestingUser string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.log {
		if s.log[i].ID == id {
			if s.log[i].Sender != requestingUser {
				return false
			}
			edited := s.now()
			s.log[i].Body = newBody
			s.log[i].EditedAt = &edited
			return true
		}
	}
	return false
}

// Delete removes the message with the given id under the same sender-only
// rule as Edit.
func (s *MessageStore) Delete(id, requestingUser string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.log {
		if s.log[i].ID == id {
			if s.log[i].Sender != requestingUser {
				return false
			}
			s.log = append(s.log[:i], s.log[i+1:]...)
			return true
		}
	}
	return false
}

// MarkDelivered flips undelivered messages to delivered and returns how many
// were newly marked. With an empty targetUser it covers every broadcast not
// sent by requestingUser (the user has seen the public feed); with a target
// it covers private messages exchanged between the two users in either
// direction. Delivery is one-way: already-delivered messages are never
// touched again.
func (s *MessageStore) MarkDelivered(requestingUser, targetUser string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	marked := 0
	for i := range s.log {
		m := &s.log[i]
		if m.Delivered {
			continue
		}
		if targetUser == "" {
			if m.Kind == models.KindBroadcast && m.Sender != requestingUser {
				m.Delivered = true
				marked++
			}
			continue
		}
		if m.Kind != models.KindPrivate {
			continue
		}
		between := (m.Sender == requestingUser && m.TargetUser == targetUser) ||
			(m.Sender == targetUser && m.TargetUser == requestingUser)
		if between {
			m.Delivered = true
			marked++
		}
	}
	return marked
}

// Len reports the current log length.
func (s *MessageStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.log)
}
