package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loggedInUser struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Register handles POST /auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if _, err := h.Credentials.Register(req.Username, req.Password); err != nil {
		if isValidationError(err) {
			fail(w, http.StatusOK, err.Error())
			return
		}
		log.Printf("registration failed for %q: %v", req.Username, err)
		fail(w, http.StatusInternalServerError, "Failed to save user")
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Registration successful!"})
}

// Login handles POST /auth/login. A successful login marks the user online
// and announces the join to the room.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.Credentials.Verify(req.Username, req.Password)
	if err != nil {
		if isValidationError(err) {
			fail(w, http.StatusOK, err.Error())
			return
		}
		log.Printf("login failed for %q: %v", req.Username, err)
		fail(w, http.StatusInternalServerError, "Failed to verify credentials")
		return
	}

	h.Presence.MarkOnline(user.Username)
	h.Messages.AppendSystem(user.Username + " joined the chat")

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		User:    loggedInUser{Username: user.Username, CreatedAt: user.CreatedAt},
	})
}
