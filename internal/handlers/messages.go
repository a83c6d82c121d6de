package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type sendMessageRequest struct {
	Sender     string `json:"sender"`
	Message    string `json:"message"`
	TargetUser string `json:"target_user,omitempty"`
}

type editMessageRequest struct {
	Message string `json:"message"`
	User    string `json:"user"`
}

type deleteMessageRequest struct {
	User string `json:"user"`
}

type markDeliveredRequest struct {
	User       string `json:"user"`
	TargetUser string `json:"target_user,omitempty"`
}

type markDeliveredResponse struct {
	Success     bool `json:"success"`
	MarkedCount int  `json:"marked_count"`
}

// GetMessages handles GET /messages?user=X. There is no anonymous view; a
// missing user parameter is a 400.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	user := strings.TrimSpace(r.URL.Query().Get("user"))

	view, err := h.Messages.FilteredView(user)
	if err != nil {
		fail(w, http.StatusBadRequest, "user is required")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SendMessage handles POST /messages. The stored kind is private when
// target_user is set, broadcast otherwise.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sender := strings.TrimSpace(req.Sender)
	body := strings.TrimSpace(req.Message)
	target := strings.TrimSpace(req.TargetUser)

	if sender == "" || body == "" {
		fail(w, http.StatusOK, "Invalid message")
		return
	}

	h.Messages.Append(sender, body, target)
	writeJSON(w, http.StatusOK, Response{Success: true})
}

// EditMessage handles PUT /messages/{id}. A 404 covers both an unknown id
// and someone else's message; the two are indistinguishable on purpose.
func (h *Handler) EditMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req editMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	body := strings.TrimSpace(req.Message)
	user := strings.TrimSpace(req.User)
	if body == "" || user == "" {
		fail(w, http.StatusOK, "Invalid message")
		return
	}

	if !h.Messages.Edit(id, body, user) {
		fail(w, http.StatusNotFound, "Message not found")
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true})
}

// DeleteMessage handles DELETE /messages/{id} under the same sender-only
// rule as EditMessage.
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req deleteMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user := strings.TrimSpace(req.User)
	if user == "" {
		fail(w, http.StatusOK, "Invalid message")
		return
	}

	if !h.Messages.Delete(id, user) {
		fail(w, http.StatusNotFound, "Message not found")
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true})
}

// MarkDelivered handles POST /messages/mark-delivered. Without target_user
// it acknowledges the public feed; with it, the private thread between the
// two users.
func (h *Handler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	var req markDeliveredRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user := strings.TrimSpace(req.User)
	if user == "" {
		fail(w, http.StatusOK, "user is required")
		return
	}

	count := h.Messages.MarkDelivered(user, strings.TrimSpace(req.TargetUser))
	writeJSON(w, http.StatusOK, markDeliveredResponse{Success: true, MarkedCount: count})
}
