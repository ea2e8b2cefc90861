package model

import (
	"errors"
	"time"
)

// Listing is a campus market item. Its favorite flag and counter live in the
// cache as the entity's like pair (is_liked, likes_count).
type Listing struct {
	ID             int64     `json:"id"`
	SellerID       int64     `json:"seller_id"`
	Title          string    `json:"title"`
	Price          int64     `json:"price"`
	FavoritesCount int       `json:"favorites_count"`
	CreatedAt      time.Time `json:"created_at"`

	// Viewer-relative
	IsFavorited bool `json:"is_favorited"`
}

// Key returns the cache key of the listing.
func (l Listing) Key() Key { return ListingKey(l.ID) }

// ListingListResponse is the market list response.
type ListingListResponse struct {
	Listings []Listing `json:"listings"`
}

// FavoriteResult is the authoritative answer to a favorite toggle.
type FavoriteResult struct {
	IsFavorited    bool `json:"is_favorited"`
	FavoritesCount int  `json:"favorites_count"`
}

// Update converts the result into a cache update.
func (r FavoriteResult) Update() LikeUpdate {
	return LikeUpdate{IsLiked: r.IsFavorited, LikesCount: r.FavoritesCount}
}

// ListingPatch is the full patch for a listing as returned by the server.
func ListingPatch(l Listing) Patch {
	return Patch{IsLiked: ptr(l.IsFavorited), LikesCount: ptr(l.FavoritesCount)}
}

// Listing errors
var (
	ErrListingNotFound = errors.New("listing not found")
)
