package services

import (
	"database/sql"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Nandeesh-nh/lan-chat/internal/models"
	"github.com/Nandeesh-nh/lan-chat/pkg/utils"
)

// PostgresCredentialStore keeps accounts in the users table. Selected when
// POSTGRES_URI is set; the table is created by database.ConnectPostgres.
type PostgresCredentialStore struct {
	db *sql.DB
}

func NewPostgresCredentialStore(db *sql.DB) *PostgresCredentialStore {
	return &PostgresCredentialStore{db: db}
}

func (s *PostgresCredentialStore) Register(username, password string) (*models.User, error) {
	username = utils.NormalizeUsername(username)
	if err := validateRegistration(username, password); err != nil {
		return nil, err
	}

	var existing string
	err := s.db.QueryRow(`SELECT username FROM users WHERE username = $1`, username).Scan(&existing)
	if err == nil {
		return nil, ErrUsernameTaken
	} else if err != sql.ErrNoRows {
		return nil, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	_, err = s.db.Exec(`
		INSERT INTO users (id, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`, uuid.New(), username, hash, now)
	if err != nil {
		return nil, err
	}

	return &models.User{Username: username, CreatedAt: now}, nil
}

func (s *PostgresCredentialStore) Verify(username, password string) (*models.User, error) {
	username = utils.NormalizeUsername(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	var hash string
	var createdAt time.Time
	err := s.db.QueryRow(`
		SELECT password_hash, created_at FROM users WHERE username = $1
	`, username).Scan(&hash, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUnknownUser
		}
		return nil, err
	}

	ok, err := utils.VerifyPassword(password, hash)
	if err != nil {
		// Not a bad login: the stored hash itself is unreadable.
		log.Printf("stored password hash for %s is unreadable: %v", username, err)
		return nil, err
	}
	if !ok {
		return nil, ErrWrongPassword
	}

	return &models.User{Username: username, CreatedAt: createdAt}, nil
}
