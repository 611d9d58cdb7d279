package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the request/response sector routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sectors/clusters", h.HandleGetClusters)
	r.Get("/sectors/clusters/summary", h.HandleGetClusterSummary)
	r.Get("/sectors/rotation", h.HandleGetRotation)
	r.Get("/sectors/rotations", h.HandleGetRotations)
	r.Get("/sectors/snapshot", h.HandleGetSnapshot)
	r.Post("/sectors/refresh", h.HandleRefresh)
}

// RegisterStreamRoutes registers the long-lived websocket route. It is kept apart
// so callers can mount it outside request timeouts.
func (h *Handler) RegisterStreamRoutes(r chi.Router) {
	if h.bus != nil {
		r.Get("/sectors/stream", h.HandleStream)
	}
}
