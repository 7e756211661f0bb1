package handlers

import (
	"net/http"
)

type createGroupRequest struct {
	Community string `json:"community"`
	Tag       string `json:"tag"`
	OwnerID   string `json:"owner_id"`
}

// CreateGroup creates a user-owned hashtag room. A user may hold at
// most one active room at a time.
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	if req.Community == "" || req.OwnerID == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "community and owner_id are required"})
		return
	}

	group, err := h.groups.CreateOwnedGroup(r.Context(), req.Community, req.Tag, req.OwnerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, group)
}

// TopGroups lists the community's trending hashtag rooms.
func (h *Handler) TopGroups(w http.ResponseWriter, r *http.Request) {
	community := r.URL.Query().Get("community")
	if community == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "community is required"})
		return
	}

	groups, err := h.groups.TopGroups(r.Context(), community, queryLimit(r, 10))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, groups)
}
