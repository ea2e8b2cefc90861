// Package api is the network collaborator of the sync core: the calls the
// optimistic mutator and the views make against the feed server.
package api

import (
	"context"

	"campusfeed/internal/model"
)

// Client is the feed server API.
type Client interface {
	ToggleLike(ctx context.Context, kind model.Kind, id int64) (model.LikeResult, error)
	SubmitVote(ctx context.Context, pollID int64, indices []int) (model.PollResult, error)
	SubmitEdit(ctx context.Context, kind model.Kind, id int64, body string) (model.EditResult, error)
	SubmitComment(ctx context.Context, postID int64, body string, parentID *int64) (model.Comment, error)
	DeleteComment(ctx context.Context, commentID int64) (model.DeleteResult, error)
	ToggleFavorite(ctx context.Context, listingID int64) (model.FavoriteResult, error)

	GetPost(ctx context.Context, postID int64) (model.Post, error)
	ListPosts(ctx context.Context) ([]model.Post, error)
	ListUserPosts(ctx context.Context, userID int64) ([]model.Post, error)
	ListComments(ctx context.Context, postID int64) ([]model.Comment, error)
	GetListing(ctx context.Context, listingID int64) (model.Listing, error)
	ListListings(ctx context.Context) ([]model.Listing, error)
}
