package api

import (
	"context"

	"campusfeed/internal/mockapi"
	"campusfeed/internal/model"
)

// LocalClient calls an in-process mockapi.Backend as one user, skipping HTTP.
type LocalClient struct {
	backend *mockapi.Backend
	userID  int64
}

// NewLocalClient creates a Client bound to backend and userID.
func NewLocalClient(backend *mockapi.Backend, userID int64) *LocalClient {
	return &LocalClient{backend: backend, userID: userID}
}

func (c *LocalClient) ToggleLike(ctx context.Context, kind model.Kind, id int64) (model.LikeResult, error) {
	return c.backend.ToggleLike(ctx, c.userID, kind, id)
}

func (c *LocalClient) SubmitVote(ctx context.Context, pollID int64, indices []int) (model.PollResult, error) {
	return c.backend.Vote(ctx, c.userID, pollID, indices)
}

func (c *LocalClient) SubmitEdit(ctx context.Context, kind model.Kind, id int64, body string) (model.EditResult, error) {
	return c.backend.Edit(ctx, c.userID, kind, id, body)
}

func (c *LocalClient) SubmitComment(ctx context.Context, postID int64, body string, parentID *int64) (model.Comment, error) {
	return c.backend.CreateComment(ctx, c.userID, postID, model.CreateCommentRequest{Body: body, ParentID: parentID})
}

func (c *LocalClient) DeleteComment(ctx context.Context, commentID int64) (model.DeleteResult, error) {
	return c.backend.DeleteComment(ctx, c.userID, commentID)
}

func (c *LocalClient) ToggleFavorite(ctx context.Context, listingID int64) (model.FavoriteResult, error) {
	return c.backend.ToggleFavorite(ctx, c.userID, listingID)
}

func (c *LocalClient) GetPost(ctx context.Context, postID int64) (model.Post, error) {
	return c.backend.GetPost(ctx, c.userID, postID)
}

func (c *LocalClient) ListPosts(ctx context.Context) ([]model.Post, error) {
	return c.backend.ListPosts(ctx, c.userID)
}

func (c *LocalClient) ListUserPosts(ctx context.Context, userID int64) ([]model.Post, error) {
	return c.backend.ListUserPosts(ctx, c.userID, userID)
}

func (c *LocalClient) ListComments(ctx context.Context, postID int64) ([]model.Comment, error) {
	return c.backend.ListComments(ctx, c.userID, postID)
}

func (c *LocalClient) GetListing(ctx context.Context, listingID int64) (model.Listing, error) {
	return c.backend.GetListing(ctx, c.userID, listingID)
}

func (c *LocalClient) ListListings(ctx context.Context) ([]model.Listing, error) {
	return c.backend.ListListings(ctx, c.userID)
}

var (
	_ Client = (*HTTPClient)(nil)
	_ Client = (*LocalClient)(nil)
)
