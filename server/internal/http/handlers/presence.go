package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

type trackPresenceRequest struct {
	Key      string            `json:"key"`
	Metadata map[string]string `json:"metadata"`
}

// TrackPresence registers a session in a room.
func (h *Handler) TrackPresence(w http.ResponseWriter, r *http.Request) {
	var req trackPresenceRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	if req.Key == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "key is required"})
		return
	}

	h.presence.Track(mux.Vars(r)["room"], req.Key, req.Metadata)
	w.WriteHeader(http.StatusNoContent)
}

// UntrackPresence removes a session from a room.
func (h *Handler) UntrackPresence(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "key is required"})
		return
	}

	h.presence.Untrack(mux.Vars(r)["room"], key)
	w.WriteHeader(http.StatusNoContent)
}

// ObservePresence lists the sessions currently in a room.
func (h *Handler) ObservePresence(w http.ResponseWriter, r *http.Request) {
	room := mux.Vars(r)["room"]
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"room":  room,
		"count": h.presence.Count(room),
		"keys":  h.presence.Observe(room),
	})
}
