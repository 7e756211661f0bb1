// Package handlers exposes the engine over a JSON HTTP API.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/devilmonastery/blackhole/internal/domain/repositories"
	"github.com/devilmonastery/blackhole/internal/domain/services"
	"github.com/devilmonastery/blackhole/internal/infrastructure/realtime"
)

// Handler wires the engine services into HTTP routes.
type Handler struct {
	messages  *services.MessageService
	groups    *services.GroupService
	reactions *services.ReactionService
	purge     *services.PurgeService
	identity  *services.IdentityService
	presence  *services.PresenceService
	profiles  repositories.ProfileRepository
	feed      *realtime.Hub
	now       func() time.Time
	logger    *slog.Logger
}

// NewHandler creates the HTTP handler set.
func NewHandler(
	messages *services.MessageService,
	groups *services.GroupService,
	reactions *services.ReactionService,
	purge *services.PurgeService,
	identity *services.IdentityService,
	presence *services.PresenceService,
	profiles repositories.ProfileRepository,
	feed *realtime.Hub,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		messages:  messages,
		groups:    groups,
		reactions: reactions,
		purge:     purge,
		identity:  identity,
		presence:  presence,
		profiles:  profiles,
		feed:      feed,
		now:       time.Now,
		logger:    logger.With("component", "http"),
	}
}

// Routes registers every endpoint on the router.
func (h *Handler) Routes(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/messages", h.PostMessage).Methods(http.MethodPost)
	api.HandleFunc("/messages", h.ListMessages).Methods(http.MethodGet)
	api.HandleFunc("/messages/top", h.TopMessages).Methods(http.MethodGet)
	api.HandleFunc("/messages/{id}/reactions", h.ToggleReaction).Methods(http.MethodPost)
	api.HandleFunc("/messages/{id}/reports", h.SubmitReport).Methods(http.MethodPost)

	api.HandleFunc("/groups", h.CreateGroup).Methods(http.MethodPost)
	api.HandleFunc("/groups", h.TopGroups).Methods(http.MethodGet)

	api.HandleFunc("/confessions/remaining", h.RemainingConfessions).Methods(http.MethodGet)
	api.HandleFunc("/profiles/top", h.TopKarma).Methods(http.MethodGet)
	api.HandleFunc("/profiles/{id}", h.UpsertProfile).Methods(http.MethodPut)
	api.HandleFunc("/identity", h.MintIdentity).Methods(http.MethodPost)

	api.HandleFunc("/presence/{room}", h.TrackPresence).Methods(http.MethodPost)
	api.HandleFunc("/presence/{room}", h.UntrackPresence).Methods(http.MethodDelete)
	api.HandleFunc("/presence/{room}", h.ObservePresence).Methods(http.MethodGet)

	api.HandleFunc("/purge", h.PurgeCountdown).Methods(http.MethodGet)
	api.HandleFunc("/purge/sweep", h.TriggerSweep).Methods(http.MethodPost)
	api.HandleFunc("/events", h.StreamEvents).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps engine errors onto HTTP status codes. Typed rejections
// become 4xx; anything else is a store failure and stays opaque.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidTag), errors.Is(err, services.ErrUnknownReaction):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, repositories.ErrDuplicateGroup), services.IsRejection(err):
		// Remaining rejections are state conflicts: quota spent, a group
		// already owned, a tag already taken.
		h.writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, repositories.ErrMessageNotFound),
		errors.Is(err, repositories.ErrGroupNotFound),
		errors.Is(err, repositories.ErrProfileNotFound):
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		h.logger.Error("request failed", "error", err)
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
