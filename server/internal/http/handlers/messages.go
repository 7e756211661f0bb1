package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/devilmonastery/blackhole/internal/domain/entities"
	"github.com/devilmonastery/blackhole/internal/domain/services"
)

type postMessageRequest struct {
	Community      string `json:"community"`
	Content        string `json:"content"`
	AuthorID       string `json:"author_id"`
	DisplayName    string `json:"display_name"`
	DisplayColor   string `json:"display_color"`
	ConfessionMode bool   `json:"confession_mode"`
	ActiveFilter   string `json:"active_filter"`
	ReplyToID      string `json:"reply_to_id"`
}

// PostMessage files a new message through the router.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req postMessageRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	if req.Community == "" || req.Content == "" || req.AuthorID == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "community, content and author_id are required"})
		return
	}

	msg, err := h.messages.Post(r.Context(), services.PostRequest{
		Community:      req.Community,
		Content:        req.Content,
		AuthorID:       req.AuthorID,
		Identity:       entities.Identity{DisplayName: req.DisplayName, DisplayColor: req.DisplayColor},
		ConfessionMode: req.ConfessionMode,
		ActiveFilter:   req.ActiveFilter,
		ReplyToID:      req.ReplyToID,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, msg)
}

// ListMessages returns the messages visible under a filter.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	community := r.URL.Query().Get("community")
	if community == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "community is required"})
		return
	}
	filter := r.URL.Query().Get("filter")

	msgs, err := h.messages.ListMessages(r.Context(), community, filter, queryLimit(r, 200))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, msgs)
}

// TopMessages returns the community's most-reacted messages.
func (h *Handler) TopMessages(w http.ResponseWriter, r *http.Request) {
	community := r.URL.Query().Get("community")
	if community == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "community is required"})
		return
	}

	msgs, err := h.messages.TopMessages(r.Context(), community, queryLimit(r, 3))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, msgs)
}

type toggleReactionRequest struct {
	AuthorID string `json:"author_id"`
	Kind     string `json:"kind"`
}

// ToggleReaction moves or clears the author's reaction on a message.
func (h *Handler) ToggleReaction(w http.ResponseWriter, r *http.Request) {
	var req toggleReactionRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	if req.AuthorID == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "author_id is required"})
		return
	}

	reactions, err := h.reactions.ToggleReaction(r.Context(), mux.Vars(r)["id"], req.AuthorID, entities.ReactionKind(req.Kind))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, reactions)
}

type submitReportRequest struct {
	ReporterID string `json:"reporter_id"`
	Reason     string `json:"reason"`
}

// SubmitReport records a report; crossing the threshold removes the
// message before this call returns.
func (h *Handler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	var req submitReportRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	if req.ReporterID == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "reporter_id is required"})
		return
	}

	if err := h.reactions.SubmitReport(r.Context(), mux.Vars(r)["id"], req.ReporterID, req.Reason); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemainingConfessions reports how many confessions the author has left
// before the next purge boundary.
func (h *Handler) RemainingConfessions(w http.ResponseWriter, r *http.Request) {
	authorID := r.URL.Query().Get("author_id")
	if authorID == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "author_id is required"})
		return
	}

	remaining, err := h.messages.RemainingConfessions(r.Context(), authorID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"remaining": remaining})
}

func queryLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return fallback
	}
	return limit
}
