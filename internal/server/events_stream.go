package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/sectorflow/internal/events"
	"github.com/aristath/sectorflow/internal/modules/dashboard"
	"github.com/aristath/sectorflow/internal/utils"
)

// EventsStreamHandler streams bus events as Server-Sent Events, for clients that
// cannot hold a websocket.
type EventsStreamHandler struct {
	eventBus  *events.Bus
	dashboard *dashboard.Service
	log       zerolog.Logger
	heartbeat time.Duration
}

// NewEventsStreamHandler creates a new events stream handler.
func NewEventsStreamHandler(eventBus *events.Bus, service *dashboard.Service, log zerolog.Logger) *EventsStreamHandler {
	return &EventsStreamHandler{
		eventBus:  eventBus,
		dashboard: service,
		log:       log.With().Str("component", "events_stream").Logger(),
		heartbeat: 30 * time.Second,
	}
}

// ServeHTTP handles GET /api/events/stream requests (SSE).
// ?types=SNAPSHOT_UPDATED,SECTOR_ROTATED limits the stream to those event types.
func (h *EventsStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	eventTypes := events.AllTypes
	if filter := r.URL.Query().Get("types"); filter != "" {
		known := make(map[events.EventType]bool, len(events.AllTypes))
		for _, t := range events.AllTypes {
			known[t] = true
		}
		eventTypes = nil
		for _, t := range utils.ParseCSV(filter) {
			et := events.EventType(t)
			if !known[et] {
				http.Error(w, fmt.Sprintf("unknown event type %q", et), http.StatusBadRequest)
				return
			}
			eventTypes = append(eventTypes, et)
		}
		if len(eventTypes) == 0 {
			http.Error(w, "no event types requested", http.StatusBadRequest)
			return
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	eventChan := make(chan *events.Event, 100)
	handler := func(event *events.Event) {
		// Non-blocking send (drop if channel full)
		select {
		case eventChan <- event:
		default:
			h.log.Warn().
				Str("event_type", string(event.Type)).
				Msg("Event channel full, dropping event")
		}
	}

	ids := make(map[events.EventType]events.SubscriptionID, len(eventTypes))
	for _, t := range eventTypes {
		ids[t] = h.eventBus.Subscribe(t, handler)
	}
	defer func() {
		for t, id := range ids {
			h.eventBus.Unsubscribe(t, id)
		}
	}()

	h.log.Info().Int("types", len(eventTypes)).Msg("Client connected to event stream")

	connected := map[string]interface{}{
		"type":    "connected",
		"message": "Connected to sector event stream",
	}
	if h.dashboard != nil {
		connected["snapshot"] = h.dashboard.Current().Meta()
	}
	fmt.Fprintf(w, "data: %s\n\n", h.encodeEvent(connected))
	flusher.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	done := r.Context().Done()
	for {
		select {
		case <-done:
			h.log.Info().Msg("Client disconnected from event stream")
			return

		case event := <-eventChan:
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, h.encodeEvent(map[string]interface{}{
				"type":      string(event.Type),
				"module":    event.Module,
				"timestamp": event.Timestamp.Format(time.RFC3339),
				"data":      event.Data,
			}))
			flusher.Flush()

		case <-heartbeat.C:
			fmt.Fprintf(w, ": heartbeat %s\n\n", time.Now().Format(time.RFC3339))
			flusher.Flush()
		}
	}
}

// encodeEvent encodes an event map to JSON string.
func (h *EventsStreamHandler) encodeEvent(event map[string]interface{}) string {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to marshal event")
		return `{"error":"failed to encode event"}`
	}
	return string(data)
}
