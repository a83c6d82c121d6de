package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Nandeesh-nh/lan-chat/internal/services"
	"github.com/Nandeesh-nh/lan-chat/pkg/utils"
)

// Handler carries every dependency the API layer needs. Constructed once in
// main and shared by all requests; the stores guard their own state.
type Handler struct {
	Credentials services.CredentialStore
	Presence    *services.PresenceTracker
	Messages    *services.MessageStore
	Files       *services.FileStore
}

func New(creds services.CredentialStore, presence *services.PresenceTracker, messages *services.MessageStore, files *services.FileStore) *Handler {
	return &Handler{
		Credentials: creds,
		Presence:    presence,
		Messages:    messages,
		Files:       files,
	}
}

// Response is the common JSON envelope.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	User    interface{} `json:"user,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// fail writes a success=false envelope. Validation failures use HTTP 200;
// the client reads the message, not the status.
func fail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: false, Message: message})
}

// isValidationError reports whether err belongs to the validation taxonomy
// (reported to the client with 200) rather than a storage failure (500).
func isValidationError(err error) bool {
	var ve *utils.ValidationError
	if errors.As(err, &ve) {
		return true
	}
	switch {
	case errors.Is(err, services.ErrMissingCredentials),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrUsernameReserved),
		errors.Is(err, services.ErrUnknownUser),
		errors.Is(err, services.ErrWrongPassword):
		return true
	}
	return false
}
