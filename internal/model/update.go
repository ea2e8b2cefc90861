package model

import "time"

// Update is a tagged partial update. Every variant converts to a Patch through
// AsPatch; the interface is sealed so the conversion below is exhaustive.
type Update interface {
	isUpdate()
}

// LikeUpdate carries a like flag together with its exact counter.
type LikeUpdate struct {
	IsLiked    bool
	LikesCount int
}

// EditUpdate is the result of editing a body.
type EditUpdate struct {
	Body      string
	IsEdited  bool
	UpdatedAt time.Time
}

// CountersUpdate refreshes a post's counters after a reload.
type CountersUpdate struct {
	CommentsCount int
	LikesCount    int
	ViewsCount    int
	IsLiked       *bool
}

// DeleteUpdate marks a comment as soft-deleted and swaps its body for a placeholder.
type DeleteUpdate struct {
	Placeholder string
}

// PollUpdate replaces a poll's tally.
type PollUpdate struct {
	Tally PollTally
}

func (LikeUpdate) isUpdate()     {}
func (EditUpdate) isUpdate()     {}
func (CountersUpdate) isUpdate() {}
func (DeleteUpdate) isUpdate()   {}
func (PollUpdate) isUpdate()     {}
func (Patch) isUpdate()          {}

// AsPatch converts any update variant to its field patch.
func AsPatch(u Update) Patch {
	switch u := u.(type) {
	case nil:
		return Patch{}
	case Patch:
		return u
	case LikeUpdate:
		return Patch{IsLiked: ptr(u.IsLiked), LikesCount: ptr(u.LikesCount)}
	case EditUpdate:
		p := Patch{Body: ptr(u.Body), IsEdited: ptr(u.IsEdited)}
		if !u.UpdatedAt.IsZero() {
			p.UpdatedAt = ptr(u.UpdatedAt)
		}
		return p
	case CountersUpdate:
		return Patch{
			CommentsCount: ptr(u.CommentsCount),
			LikesCount:    ptr(u.LikesCount),
			ViewsCount:    ptr(u.ViewsCount),
			IsLiked:       u.IsLiked,
		}
	case DeleteUpdate:
		return Patch{Body: ptr(u.Placeholder), IsDeleted: ptr(true)}
	case PollUpdate:
		t := u.Tally.Clone()
		return Patch{Poll: &t}
	}
	panic("model: unhandled update variant")
}

// PostPatch is the full patch for a post as returned by the server.
func PostPatch(p Post) Patch {
	patch := Patch{
		IsLiked:       ptr(p.IsLiked),
		LikesCount:    ptr(p.LikesCount),
		Body:          ptr(p.Body),
		IsEdited:      ptr(p.IsEdited),
		UpdatedAt:     ptr(p.UpdatedAt),
		CommentsCount: ptr(p.CommentsCount),
		ViewsCount:    ptr(p.ViewsCount),
	}
	return patch
}

// CommentPatch is the full patch for a comment as returned by the server.
func CommentPatch(c Comment) Patch {
	return Patch{
		IsLiked:    ptr(c.IsLiked),
		LikesCount: ptr(c.LikesCount),
		Body:       ptr(c.Body),
		IsEdited:   ptr(c.IsEdited),
		UpdatedAt:  ptr(c.UpdatedAt),
		IsDeleted:  ptr(c.IsDeleted),
	}
}
