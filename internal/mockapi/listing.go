package mockapi

import (
	"cmp"
	"context"
	"log"
	"slices"

	"campusfeed/internal/model"
)

// AddListing stores a market listing as-is.
func (b *Backend) AddListing(l model.Listing) model.Listing {
	b.mu.Lock()
	defer b.mu.Unlock()

	if l.CreatedAt.IsZero() {
		l.CreatedAt = b.now()
	}
	l.IsFavorited = false
	b.listings[l.ID] = &l
	return l
}

// ToggleFavorite flips the user's favorite on a listing. The counter never
// goes below zero.
func (b *Backend) ToggleFavorite(_ context.Context, userID, listingID int64) (model.FavoriteResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failure != nil {
		return model.FavoriteResult{}, b.failure
	}

	l, ok := b.listings[listingID]
	if !ok {
		return model.FavoriteResult{}, model.ErrListingNotFound
	}
	if b.favorites[listingID] == nil {
		b.favorites[listingID] = make(map[int64]bool)
	}

	var favorited bool
	if b.favorites[listingID][userID] {
		delete(b.favorites[listingID], userID)
		l.FavoritesCount = max(0, l.FavoritesCount-1)
	} else {
		b.favorites[listingID][userID] = true
		l.FavoritesCount++
		favorited = true
	}

	log.Printf("[MockAPI] ToggleFavorite OK: user=%d listing=%d favorited=%t favorites=%d",
		userID, listingID, favorited, l.FavoritesCount)
	return model.FavoriteResult{IsFavorited: favorited, FavoritesCount: l.FavoritesCount}, nil
}

// GetListing returns one listing as seen by the user.
func (b *Backend) GetListing(_ context.Context, userID, listingID int64) (model.Listing, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	l, ok := b.listings[listingID]
	if !ok {
		return model.Listing{}, model.ErrListingNotFound
	}
	return b.listingView(l, userID), nil
}

// ListListings returns every listing, newest first.
func (b *Backend) ListListings(_ context.Context, userID int64) ([]model.Listing, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]model.Listing, 0, len(b.listings))
	for _, l := range b.listings {
		out = append(out, b.listingView(l, userID))
	}
	slices.SortFunc(out, func(x, y model.Listing) int {
		if c := y.CreatedAt.Compare(x.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(y.ID, x.ID)
	})
	return out, nil
}

// listingView copies l with the viewer's favorite flag. Caller holds mu.
func (b *Backend) listingView(l *model.Listing, userID int64) model.Listing {
	out := *l
	out.IsFavorited = b.favorites[l.ID][userID]
	return out
}
