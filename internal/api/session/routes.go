package session

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers session routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Get("/{id}", h.GetSession)
		r.Delete("/{id}", h.DeleteSession)
		r.Post("/{id}/document", h.UploadDocument)
		r.Post("/{id}/chat", h.Chat)
		r.Get("/{id}/conversation", h.GetConversation)
		r.Delete("/{id}/conversation", h.ClearConversation)
		r.Post("/{id}/proposal", h.GenerateProposal)
		r.Get("/{id}/proposal", h.GetProposal)
		r.Get("/{id}/proposal/download", h.DownloadProposal)
	})
}
