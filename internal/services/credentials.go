package services

import (
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/Nandeesh-nh/lan-chat/internal/models"
	"github.com/Nandeesh-nh/lan-chat/pkg/utils"
)

// MinPasswordLength is the registration policy for passwords. Username rules
// live in pkg/utils.
const MinPasswordLength = 6

// CredentialStore persists username -> password-hash records. Implementations
// own their storage; the rest of the system never sees a hash.
type CredentialStore interface {
	// Register creates a new account. Fails with a validation error when the
	// username is malformed, the password is too short, or the name is taken.
	Register(username, password string) (*models.User, error)
	// Verify checks a login attempt and returns the account on success.
	Verify(username, password string) (*models.User, error)
}

// FileCredentialStore keeps accounts in a JSON file, rewritten in full on
// every registration. This is the default backend; registrations are
// serialized by the store's own mutex.
type FileCredentialStore struct {
	mu    sync.Mutex
	fs    afero.Fs
	path  string
	users map[string]models.StoredUser
}

// NewFileCredentialStore loads existing accounts from path if the file is
// present. An unreadable or corrupt file starts the store empty, matching
// the original behavior of treating a bad users file as no users.
func NewFileCredentialStore(fs afero.Fs, path string) *FileCredentialStore {
	s := &FileCredentialStore{
		fs:    fs,
		path:  path,
		users: make(map[string]models.StoredUser),
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return s
	}
	if err := json.Unmarshal(data, &s.users); err != nil {
		log.Printf("credential file %s is unreadable, starting empty: %v", path, err)
		s.users = make(map[string]models.StoredUser)
	}
	return s
}

func validateRegistration(username, password string) error {
	if username == "" || password == "" {
		return ErrMissingCredentials
	}
	if err := utils.ValidateUsername(username); err != nil {
		return err
	}
	if strings.EqualFold(username, SystemSender) {
		return ErrUsernameReserved
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

func (s *FileCredentialStore) Register(username, password string) (*models.User, error) {
	username = utils.NormalizeUsername(username)
	if err := validateRegistration(username, password); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[username]; exists {
		return nil, ErrUsernameTaken
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	record := models.StoredUser{PasswordHash: hash, CreatedAt: time.Now()}
	s.users[username] = record
	if err := s.save(); err != nil {
		delete(s.users, username)
		return nil, err
	}

	return &models.User{Username: username, CreatedAt: record.CreatedAt}, nil
}

func (s *FileCredentialStore) Verify(username, password string) (*models.User, error) {
	username = utils.NormalizeUsername(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	s.mu.Lock()
	record, exists := s.users[username]
	s.mu.Unlock()

	if !exists {
		return nil, ErrUnknownUser
	}

	ok, err := utils.VerifyPassword(password, record.PasswordHash)
	if err != nil {
		// Not a bad login: the stored hash itself is unreadable.
		log.Printf("stored password hash for %s is unreadable: %v", username, err)
		return nil, err
	}
	if !ok {
		return nil, ErrWrongPassword
	}

	return &models.User{Username: username, CreatedAt: record.CreatedAt}, nil
}

// save rewrites the whole credential file. Must be called with s.mu held.
func (s *FileCredentialStore) save() error {
	data, err := json.MarshalIndent(s.users, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(s.fs, s.path, data, 0o644)
}
