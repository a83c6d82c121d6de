package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/Nandeesh-nh/lan-chat/internal/handlers"
)

func SetupRoutes(r *chi.Mux, h *handlers.Handler) {
	// Auth routes
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)

	// Presence routes
	r.Get("/users", h.GetOnlineUsers)
	r.Post("/heartbeat", h.Heartbeat)
	r.Post("/logout", h.Logout)

	// Message routes
	r.Get("/messages", h.GetMessages)
	r.Post("/messages", h.SendMessage)
	r.Put("/messages/{id}", h.EditMessage)
	r.Delete("/messages/{id}", h.DeleteMessage)
	r.Post("/messages/mark-delivered", h.MarkDelivered)

	// File routes
	r.Post("/upload", h.Upload)
	r.Get("/download/{storageRef}", h.Download)
}
