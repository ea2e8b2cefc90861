package handler

import (
	"net/http"

	"campusfeed/internal/httputil"
	"campusfeed/internal/model"
	"campusfeed/internal/transport/http/middleware"
)

type ListingHandler struct {
	backend Backend
}

func NewListingHandler(backend Backend) *ListingHandler {
	return &ListingHandler{backend: backend}
}

// List handles GET /listings
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := middleware.GetUserIDFromContext(r.Context())

	listings, err := h.backend.ListListings(r.Context(), viewerID)
	if err != nil {
		writeBackendError(w, "list listings", viewerID, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.ListingListResponse{Listings: listings})
}

// GetByID handles GET /listings/:id
func (h *ListingHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	listingID, ok := httputil.ParseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid listing ID")
		return
	}

	viewerID, _ := middleware.GetUserIDFromContext(r.Context())

	listing, err := h.backend.GetListing(r.Context(), viewerID, listingID)
	if err != nil {
		writeBackendError(w, "get listing", viewerID, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, listing)
}

// Favorite handles POST /listings/:id/favorite
// Toggles the viewer's favorite and returns the exact new counter.
func (h *ListingHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	listingID, ok := httputil.ParseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid listing ID")
		return
	}

	res, err := h.backend.ToggleFavorite(r.Context(), userID, listingID)
	if err != nil {
		writeBackendError(w, "toggle favorite", userID, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, res)
}
