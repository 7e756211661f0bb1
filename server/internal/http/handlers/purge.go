package handlers

import (
	"net/http"
	"time"

	"github.com/devilmonastery/blackhole/internal/pkg/timeutil"
)

type purgeCountdownResponse struct {
	NextBoundary     time.Time `json:"next_boundary"`
	SecondsRemaining int64     `json:"seconds_remaining"`
}

// PurgeCountdown reports when the next global purge fires. Every client
// shows the same countdown regardless of its own timezone.
func (h *Handler) PurgeCountdown(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	h.writeJSON(w, http.StatusOK, purgeCountdownResponse{
		NextBoundary:     timeutil.NextBoundary(now),
		SecondsRemaining: int64(timeutil.UntilNextBoundary(now).Seconds()),
	})
}

type triggerSweepRequest struct {
	Communities []string `json:"communities"`
}

// TriggerSweep runs a lifecycle sweep on demand. The sweeps are
// idempotent, so hitting this between cron ticks is always safe.
func (h *Handler) TriggerSweep(w http.ResponseWriter, r *http.Request) {
	var req triggerSweepRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	if len(req.Communities) == 0 {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "communities is required"})
		return
	}

	h.purge.SweepAll(r.Context(), req.Communities)
	w.WriteHeader(http.StatusNoContent)
}
