package sse

import (
	"encoding/json"
	"log/slog"

	"github.com/luckynine/backend/internal/model"
	"github.com/luckynine/backend/internal/services/session"
)

// Notifier bridges session lifecycle events onto the SSE hub
type Notifier struct {
	hub    *Hub
	logger *slog.Logger
}

// Ensure Notifier can be plugged into the session controller
var _ session.Emitter = (*Notifier)(nil)

// NewNotifier creates a Notifier broadcasting on the given hub
func NewNotifier(hub *Hub, logger *slog.Logger) *Notifier {
	return &Notifier{
		hub:    hub,
		logger: logger.With(slog.String("component", "sse-notifier")),
	}
}

// Emit broadcasts a lifecycle event to all connected clients. Delivery is
// best-effort; a marshal failure or full buffer drops the event.
func (n *Notifier) Emit(event model.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("failed to marshal event",
			slog.String("event_type", string(event.Type)),
			slog.Any("error", err))
		return
	}
	n.hub.BroadcastEvent(string(event.Type), string(data))
}
