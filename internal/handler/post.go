package handler

import (
	"encoding/json"
	"net/http"

	"campusfeed/internal/httputil"
	"campusfeed/internal/model"
	"campusfeed/internal/transport/http/middleware"
)

type PostHandler struct {
	backend Backend
}

func NewPostHandler(backend Backend) *PostHandler {
	return &PostHandler{
		backend: backend,
	}
}

// Feed handles GET /posts/feed
// Returns every post, newest first, as seen by the viewer.
func (h *PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := middleware.GetUserIDFromContext(r.Context())

	posts, err := h.backend.ListPosts(r.Context(), viewerID)
	if err != nil {
		writeBackendError(w, "list posts", viewerID, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.PostListResponse{Posts: posts})
}

// GetByID handles GET /posts/:id
// Returns a single post and counts a view.
func (h *PostHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	postID, ok := httputil.ParseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	viewerID, _ := middleware.GetUserIDFromContext(r.Context())

	post, err := h.backend.GetPost(r.Context(), viewerID, postID)
	if err != nil {
		writeBackendError(w, "get post", viewerID, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, post)
}

// GetUserPosts handles GET /users/:id/posts
func (h *PostHandler) GetUserPosts(w http.ResponseWriter, r *http.Request) {
	authorID, ok := httputil.ParseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	viewerID, _ := middleware.GetUserIDFromContext(r.Context())

	posts, err := h.backend.ListUserPosts(r.Context(), viewerID, authorID)
	if err != nil {
		writeBackendError(w, "list user posts", viewerID, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.PostListResponse{Posts: posts})
}

// Like handles POST /posts/:id/like
// Toggles the viewer's like and returns the exact new counter.
func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, model.KindPost)
}

// Edit handles PATCH /posts/:id
func (h *PostHandler) Edit(w http.ResponseWriter, r *http.Request) {
	h.edit(w, r, model.KindPost)
}

func (h *PostHandler) toggleLike(w http.ResponseWriter, r *http.Request, kind model.Kind) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	id, ok := httputil.ParseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid "+string(kind)+" ID")
		return
	}

	res, err := h.backend.ToggleLike(r.Context(), userID, kind, id)
	if err != nil {
		writeBackendError(w, "toggle like", userID, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *PostHandler) edit(w http.ResponseWriter, r *http.Request, kind model.Kind) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	id, ok := httputil.ParseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid "+string(kind)+" ID")
		return
	}

	var req model.EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	res, err := h.backend.Edit(r.Context(), userID, kind, id, req.Body)
	if err != nil {
		writeBackendError(w, "edit", userID, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, res)
}
