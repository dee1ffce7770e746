package handlers

import (
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/codebuildervaibhav/meeting-recorder/internal/session"
)

// ProgressHandler streams session progress events over a websocket, one
// JSON event per message.
type ProgressHandler struct {
	broker *session.Broker
	log    zerolog.Logger
}

// NewProgressHandler creates a progress stream handler.
func NewProgressHandler(b *session.Broker, log zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{
		broker: b,
		log:    log.With().Str("component", "progress").Logger(),
	}
}

// Handle subscribes the connection to the progress broker until the client
// disconnects.
func (h *ProgressHandler) Handle(c *websocket.Conn) {
	id, events := h.broker.Subscribe()
	defer h.broker.Unsubscribe(id)
	h.log.Debug().Str("subscriber", id).Msg("progress subscriber connected")

	// Reader goroutine: we never expect client messages, but reading is
	// the only way to notice a closed connection.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := c.WriteJSON(ev); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
