package model

import (
	"errors"
	"fmt"
	"time"
)

// Kind identifies which family of entity a key refers to.
type Kind string

const (
	KindPost    Kind = "post"
	KindComment Kind = "comment"
	KindPoll    Kind = "poll"
	KindListing Kind = "listing"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindPost, KindComment, KindPoll, KindListing:
		return true
	}
	return false
}

// Likeable reports whether entities of this kind carry a like flag.
func (k Kind) Likeable() bool {
	return k == KindPost || k == KindComment
}

// Key addresses a single entity in the cache and the mailbox.
type Key struct {
	Kind Kind  `json:"kind"`
	ID   int64 `json:"id"`
}

func PostKey(id int64) Key    { return Key{Kind: KindPost, ID: id} }
func CommentKey(id int64) Key { return Key{Kind: KindComment, ID: id} }
func PollKey(id int64) Key    { return Key{Kind: KindPoll, ID: id} }
func ListingKey(id int64) Key { return Key{Kind: KindListing, ID: id} }

// String renders the key as "kind:id", the format used in logs and Redis keys.
func (k Key) String() string {
	return fmt.Sprintf("%s:%d", k.Kind, k.ID)
}

// Snapshot is the last-known state of an entity's mutable fields.
// It may be authoritative (reconciled) or optimistic (tentative).
type Snapshot struct {
	Key           Key        `json:"key"`
	IsLiked       bool       `json:"is_liked"`
	LikesCount    int        `json:"likes_count"`
	Body          string     `json:"body"`
	IsEdited      bool       `json:"is_edited"`
	UpdatedAt     time.Time  `json:"updated_at"`
	CommentsCount int        `json:"comments_count"`
	ViewsCount    int        `json:"views_count"`
	IsDeleted     bool       `json:"is_deleted"`
	Poll          *PollTally `json:"poll,omitempty"`
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	if s.Poll != nil {
		t := s.Poll.Clone()
		s.Poll = &t
	}
	return s
}

// Flag names a boolean interactive field that can be toggled on its own.
type Flag int

const (
	FlagLiked Flag = iota
	FlagEdited
	FlagDeleted
)

func (f Flag) String() string {
	switch f {
	case FlagLiked:
		return "is_liked"
	case FlagEdited:
		return "is_edited"
	case FlagDeleted:
		return "is_deleted"
	}
	return fmt.Sprintf("flag(%d)", int(f))
}

// Entity errors
var (
	ErrUnknownKind     = errors.New("unknown entity kind")
	ErrNotLikeable     = errors.New("entity kind cannot be liked")
	ErrEntityNotCached = errors.New("entity not present in cache")
)
