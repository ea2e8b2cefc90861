package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"campusfeed/internal/httputil"
	"campusfeed/internal/mockapi"
	"campusfeed/internal/model"
)

// Backend is the data source the feed API handlers serve.
// *mockapi.Backend implements it.
type Backend interface {
	ToggleLike(ctx context.Context, userID int64, kind model.Kind, id int64) (model.LikeResult, error)
	Vote(ctx context.Context, userID, pollID int64, indices []int) (model.PollResult, error)
	Edit(ctx context.Context, userID int64, kind model.Kind, id int64, body string) (model.EditResult, error)
	CreateComment(ctx context.Context, userID, postID int64, req model.CreateCommentRequest) (model.Comment, error)
	DeleteComment(ctx context.Context, userID, commentID int64) (model.DeleteResult, error)
	GetPost(ctx context.Context, userID, postID int64) (model.Post, error)
	ListPosts(ctx context.Context, userID int64) ([]model.Post, error)
	ListUserPosts(ctx context.Context, userID, authorID int64) ([]model.Post, error)
	ListComments(ctx context.Context, userID, postID int64) ([]model.Comment, error)
	ToggleFavorite(ctx context.Context, userID, listingID int64) (model.FavoriteResult, error)
	GetListing(ctx context.Context, userID, listingID int64) (model.Listing, error)
	ListListings(ctx context.Context, userID int64) ([]model.Listing, error)
}

// writeBackendError maps backend sentinel errors to the API error envelope.
func writeBackendError(w http.ResponseWriter, op string, userID int64, err error) {
	switch {
	case errors.Is(err, model.ErrPostNotFound):
		httputil.WriteNotFound(w, "Post not found")
	case errors.Is(err, model.ErrCommentNotFound):
		httputil.WriteNotFound(w, "Comment not found")
	case errors.Is(err, model.ErrPollNotFound):
		httputil.WriteNotFound(w, "Poll not found")
	case errors.Is(err, model.ErrListingNotFound):
		httputil.WriteNotFound(w, "Listing not found")
	case errors.Is(err, model.ErrNotPostOwner):
		httputil.WriteForbidden(w, "You can only edit your own posts")
	case errors.Is(err, model.ErrNotCommentOwner):
		httputil.WriteForbidden(w, "You can only change your own comments")
	case errors.Is(err, model.ErrBodyRequired):
		httputil.WriteBadRequestWithCode(w, httputil.ErrCodeBodyRequired, "Body is required")
	case errors.Is(err, model.ErrBodyTooLong):
		httputil.WriteBadRequestWithCode(w, httputil.ErrCodeBodyTooLong, "Body too long")
	case errors.Is(err, model.ErrParentMismatch):
		httputil.WriteBadRequest(w, "Parent comment belongs to another post")
	case errors.Is(err, model.ErrNotLikeable), errors.Is(err, model.ErrUnknownKind):
		httputil.WriteBadRequest(w, "Entity cannot be changed this way")
	case errors.Is(err, model.ErrCommentDeleted):
		httputil.WriteConflictWithCode(w, httputil.ErrCodeCommentDeleted, "Comment is deleted")
	case errors.Is(err, model.ErrPollClosed):
		httputil.WriteConflictWithCode(w, httputil.ErrCodePollClosed, "Poll is closed")
	case errors.Is(err, model.ErrAlreadyVoted):
		httputil.WriteConflictWithCode(w, httputil.ErrCodeAlreadyVoted, "Already voted")
	case errors.Is(err, model.ErrNoPollSelection):
		httputil.WriteBadRequestWithCode(w, httputil.ErrCodeInvalidOption, "Select at least one option")
	case errors.Is(err, model.ErrMultipleNotAllowed), errors.Is(err, model.ErrInvalidOption):
		httputil.WriteBadRequestWithCode(w, httputil.ErrCodeInvalidOption, err.Error())
	case errors.Is(err, mockapi.ErrUnavailable):
		httputil.WriteError(w, http.StatusServiceUnavailable, httputil.ErrCodeInternal, "Service unavailable")
	default:
		log.Printf("[ERROR] %s handler: user=%d err=%v", op, userID, err)
		httputil.WriteInternalError(w, "Failed to "+op)
	}
}
