package model

import (
	"errors"
	"time"
)

// Post represents a feed post with its interactive counters.
type Post struct {
	ID            int64     `json:"id"`
	AuthorID      int64     `json:"author_id"`
	Body          string    `json:"body"`
	IsAnonymous   bool      `json:"is_anonymous"`
	LikesCount    int       `json:"likes_count"`
	CommentsCount int       `json:"comments_count"`
	ViewsCount    int       `json:"views_count"`
	IsEdited      bool      `json:"is_edited"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Viewer-relative / joined fields
	IsLiked bool  `json:"is_liked"`
	Poll    *Poll `json:"poll,omitempty"`
}

// Key returns the cache key of the post.
func (p Post) Key() Key { return PostKey(p.ID) }

// PostListResponse is the post list response (feed and profile).
type PostListResponse struct {
	Posts []Post `json:"posts"`
}

// LikeResult is the authoritative answer to a like toggle.
type LikeResult struct {
	IsLiked    bool `json:"is_liked"`
	LikesCount int  `json:"likes_count"`
}

// Update converts the result into a cache update.
func (r LikeResult) Update() LikeUpdate {
	return LikeUpdate{IsLiked: r.IsLiked, LikesCount: r.LikesCount}
}

// EditRequest is the request body for editing a post or comment.
type EditRequest struct {
	Body string `json:"body"`
}

// EditResult is the authoritative answer to an edit.
type EditResult struct {
	Body      string    `json:"body"`
	IsEdited  bool      `json:"is_edited"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Update converts the result into a cache update.
func (r EditResult) Update() EditUpdate {
	return EditUpdate{Body: r.Body, IsEdited: r.IsEdited, UpdatedAt: r.UpdatedAt}
}

// Post constraints
const (
	MaxPostBodyLength = 5000
)

// Post errors
var (
	ErrPostNotFound = errors.New("post not found")
	ErrNotPostOwner = errors.New("not the owner of this post")
	ErrBodyRequired = errors.New("body is required")
	ErrBodyTooLong  = errors.New("body too long")
)
