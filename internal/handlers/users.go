package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

type usernameRequest struct {
	Username string `json:"username"`
}

// GetOnlineUsers handles GET /users. Returns the online usernames as a plain
// array; listing refreshes every online user's last-seen time.
func (h *Handler) GetOnlineUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Presence.ListOnline())
}

// Heartbeat handles POST /heartbeat. A heartbeat from a user without a
// presence entry is a 404, never a silent re-login.
func (h *Handler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	var req usernameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	username := strings.TrimSpace(req.Username)
	if !h.Presence.Touch(username) {
		fail(w, http.StatusNotFound, "User is not online")
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true})
}

// Logout handles POST /logout. Succeeds whether or not the user was online;
// the departure announcement only goes out when someone actually left.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req usernameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	username := strings.TrimSpace(req.Username)
	if h.Presence.MarkOffline(username) {
		h.Messages.AppendSystem(username + " left the chat")
	}
	writeJSON(w, http.StatusOK, Response{Success: true})
}
