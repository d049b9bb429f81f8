package handler

import (
	"net/http"

	"github.com/luckynine/backend/internal/api/middleware"
	"github.com/luckynine/backend/internal/sse"
)

// EventsHandler streams lifecycle events over SSE
type EventsHandler struct {
	hub *sse.Hub
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(hub *sse.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Stream handles GET /api/v1/events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	sse.ServeSSE(w, r, h.hub, user.ID)
}
