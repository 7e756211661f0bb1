package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/devilmonastery/blackhole/internal/domain/entities"
)

type upsertProfileRequest struct {
	Community    string `json:"community"`
	DisplayName  string `json:"display_name"`
	DisplayColor string `json:"display_color"`
}

// UpsertProfile mirrors a user's anonymous identity into the server.
// Karma is never touched here.
func (h *Handler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	var req upsertProfileRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	profile := &entities.Profile{
		ID:           mux.Vars(r)["id"],
		Community:    req.Community,
		DisplayName:  req.DisplayName,
		DisplayColor: req.DisplayColor,
	}
	if err := h.profiles.Upsert(r.Context(), profile); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TopKarma returns the community's karma leaderboard.
func (h *Handler) TopKarma(w http.ResponseWriter, r *http.Request) {
	community := r.URL.Query().Get("community")
	if community == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "community is required"})
		return
	}

	profiles, err := h.profiles.TopKarma(r.Context(), community, queryLimit(r, 10))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, profiles)
}

// MintIdentity hands out a fresh random identity from the pools.
func (h *Handler) MintIdentity(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.identity.Mint())
}
