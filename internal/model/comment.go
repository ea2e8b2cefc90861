package model

import (
	"errors"
	"time"
)

// Comment represents a comment on a post. ParentID points at another comment
// of the same post for replies.
type Comment struct {
	ID          int64     `json:"id"`
	PostID      int64     `json:"post_id"`
	ParentID    *int64    `json:"parent_id,omitempty"`
	AuthorID    int64     `json:"author_id"`
	Body        string    `json:"body"`
	IsAnonymous bool      `json:"is_anonymous"`
	IsDeleted   bool      `json:"is_deleted"`
	IsEdited    bool      `json:"is_edited"`
	IsLiked     bool      `json:"is_liked"`
	LikesCount  int       `json:"likes_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Key returns the cache key of the comment.
func (c Comment) Key() Key { return CommentKey(c.ID) }

// CreateCommentRequest is the request body for creating a comment.
type CreateCommentRequest struct {
	Body     string `json:"body"`
	ParentID *int64 `json:"parent_id,omitempty"`
}

// CommentListResponse is the flat comment list of a post.
type CommentListResponse struct {
	Comments []Comment `json:"comments"`
}

// DeleteType tells the client how a comment disappeared.
type DeleteType string

const (
	// SoftDelete keeps the comment in the list with a placeholder body because
	// replies still hang off it.
	SoftDelete DeleteType = "soft_delete"
	// HardDelete removes the comment entirely.
	HardDelete DeleteType = "hard_delete"
)

// DeleteResult is the authoritative answer to a comment deletion.
type DeleteResult struct {
	Type DeleteType `json:"type"`
}

// Comment constraints
const (
	MaxCommentLength   = 2200
	DeletedPlaceholder = "Comment deleted"
)

// Comment errors
var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotCommentOwner = errors.New("not the owner of this comment")
	ErrCommentDeleted  = errors.New("comment is deleted")
	ErrParentMismatch  = errors.New("parent comment does not belong to this post")
)
