package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"nhooyr.io/websocket"

	"github.com/aristath/sectorflow/internal/events"
)

const (
	streamBuffer       = 32
	streamWriteTimeout = 5 * time.Second
	streamPingInterval = 30 * time.Second
)

// streamMessage is one frame sent to a stream client
type streamMessage struct {
	Type      string      `json:"type"`
	Module    string      `json:"module,omitempty"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// HandleStream handles GET /api/sectors/stream (websocket).
// The client receives the current snapshot meta on connect, then every bus event.
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to accept stream connection")
		return
	}
	closeStatus, closeReason := websocket.StatusInternalError, "stream error"
	defer func() {
		conn.Close(closeStatus, closeReason)
	}()

	eventChan := make(chan *events.Event, streamBuffer)
	handler := func(event *events.Event) {
		select {
		case eventChan <- event:
		default:
			h.log.Warn().
				Str("event_type", string(event.Type)).
				Msg("Stream channel full, dropping event")
		}
	}

	// subscribe before sending the initial snapshot so no cycle is missed in between
	ids := make(map[events.EventType]events.SubscriptionID, len(events.AllTypes))
	for _, t := range events.AllTypes {
		ids[t] = h.bus.Subscribe(t, handler)
	}
	defer func() {
		for t, id := range ids {
			h.bus.Unsubscribe(t, id)
		}
	}()

	// the client only listens; reads are discarded and a close frame cancels ctx
	ctx := conn.CloseRead(r.Context())

	h.log.Info().Str("remote", r.RemoteAddr).Msg("Client connected to sector stream")

	snap := h.service.Current()
	if err := h.send(ctx, conn, streamMessage{
		Type:      "snapshot",
		Module:    "dashboard",
		Timestamp: time.Now().Format(time.RFC3339),
		Data:      snap.Meta(),
	}); err != nil {
		h.log.Debug().Err(err).Msg("Failed to send initial snapshot")
		return
	}

	ping := time.NewTicker(streamPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			if r.Context().Err() != nil {
				closeStatus, closeReason = websocket.StatusGoingAway, "server shutting down"
			} else {
				closeStatus, closeReason = websocket.StatusNormalClosure, ""
			}
			h.log.Info().Msg("Client disconnected from sector stream")
			return

		case event := <-eventChan:
			msg := streamMessage{
				Type:      string(event.Type),
				Module:    event.Module,
				Timestamp: event.Timestamp.Format(time.RFC3339),
				Data:      event.Data,
			}
			if err := h.send(ctx, conn, msg); err != nil {
				h.log.Debug().Err(err).Msg("Failed to send stream event")
				return
			}

		case <-ping.C:
			pingCtx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				h.log.Debug().Err(err).Msg("Stream ping failed")
				return
			}
		}
	}
}

func (h *Handler) send(ctx context.Context, conn *websocket.Conn, msg streamMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}
