package handler

import (
	"encoding/json"
	"net/http"

	"campusfeed/internal/httputil"
	"campusfeed/internal/model"
	"campusfeed/internal/transport/http/middleware"
)

type PollHandler struct {
	backend Backend
}

func NewPollHandler(backend Backend) *PollHandler {
	return &PollHandler{backend: backend}
}

// Vote handles POST /polls/:id/vote
// Returns the poll tally after the vote.
func (h *PollHandler) Vote(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	pollID, ok := httputil.ParseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid poll ID")
		return
	}

	var req model.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	res, err := h.backend.Vote(r.Context(), userID, pollID, req.OptionIndices)
	if err != nil {
		writeBackendError(w, "vote", userID, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, res)
}
