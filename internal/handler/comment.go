package handler

import (
	"encoding/json"
	"net/http"

	"campusfeed/internal/httputil"
	"campusfeed/internal/model"
	"campusfeed/internal/transport/http/middleware"
)

// CommentHandler serves comment routes. Like and edit share their
// implementation with PostHandler.
type CommentHandler struct {
	*PostHandler
}

func NewCommentHandler(backend Backend) *CommentHandler {
	return &CommentHandler{PostHandler: NewPostHandler(backend)}
}

// List handles GET /posts/:id/comments
// Returns the flat comment list; clients build the tree.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	postID, ok := httputil.ParseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	viewerID, _ := middleware.GetUserIDFromContext(r.Context())

	comments, err := h.backend.ListComments(r.Context(), viewerID, postID)
	if err != nil {
		writeBackendError(w, "list comments", viewerID, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.CommentListResponse{Comments: comments})
}

// Create handles POST /posts/:id/comments
// Creates a comment or a reply for the acting user.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	postID, ok := httputil.ParseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	var req model.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	comment, err := h.backend.CreateComment(r.Context(), userID, postID, req)
	if err != nil {
		writeBackendError(w, "create comment", userID, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, comment)
}

// Delete handles DELETE /comments/:id
// Soft-deletes a comment with replies, hard-deletes a leaf.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	commentID, ok := httputil.ParseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid comment ID")
		return
	}

	res, err := h.backend.DeleteComment(r.Context(), userID, commentID)
	if err != nil {
		writeBackendError(w, "delete comment", userID, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, res)
}

// Like handles POST /comments/:id/like
func (h *CommentHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, model.KindComment)
}

// Edit handles PATCH /comments/:id
func (h *CommentHandler) Edit(w http.ResponseWriter, r *http.Request) {
	h.edit(w, r, model.KindComment)
}
