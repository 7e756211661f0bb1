package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/devilmonastery/blackhole/internal/infrastructure/realtime"
)

// StreamEvents pushes database change events to the client as
// server-sent events. Query parameters narrow the subscription: table,
// event (insert, update, delete) and community.
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming unsupported"})
		return
	}

	q := r.URL.Query()
	events, cancel := h.feed.Subscribe(q.Get("table"), realtime.EventType(q.Get("event")), q.Get("community"))
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				h.logger.Warn("failed to encode event", "error", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
