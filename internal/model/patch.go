package model

import "time"

// Patch is a field-wise partial update. A nil field is absent and must be
// left untouched by a merge.
type Patch struct {
	IsLiked       *bool      `json:"is_liked,omitempty"`
	LikesCount    *int       `json:"likes_count,omitempty"`
	Body          *string    `json:"body,omitempty"`
	IsEdited      *bool      `json:"is_edited,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	CommentsCount *int       `json:"comments_count,omitempty"`
	ViewsCount    *int       `json:"views_count,omitempty"`
	IsDeleted     *bool      `json:"is_deleted,omitempty"`
	Poll          *PollTally `json:"poll,omitempty"`
}

// IsEmpty reports whether p carries no fields.
func (p Patch) IsEmpty() bool {
	return p.IsLiked == nil && p.LikesCount == nil && p.Body == nil &&
		p.IsEdited == nil && p.UpdatedAt == nil && p.CommentsCount == nil &&
		p.ViewsCount == nil && p.IsDeleted == nil && p.Poll == nil
}

// Fields returns the JSON names of the present fields, in declaration order.
func (p Patch) Fields() []string {
	var out []string
	if p.IsLiked != nil {
		out = append(out, "is_liked")
	}
	if p.LikesCount != nil {
		out = append(out, "likes_count")
	}
	if p.Body != nil {
		out = append(out, "body")
	}
	if p.IsEdited != nil {
		out = append(out, "is_edited")
	}
	if p.UpdatedAt != nil {
		out = append(out, "updated_at")
	}
	if p.CommentsCount != nil {
		out = append(out, "comments_count")
	}
	if p.ViewsCount != nil {
		out = append(out, "views_count")
	}
	if p.IsDeleted != nil {
		out = append(out, "is_deleted")
	}
	if p.Poll != nil {
		out = append(out, "poll")
	}
	return out
}

// ApplyTo returns s with every present field of p written over it.
func (p Patch) ApplyTo(s Snapshot) Snapshot {
	s = s.Clone()
	if p.IsLiked != nil {
		s.IsLiked = *p.IsLiked
	}
	if p.LikesCount != nil {
		s.LikesCount = *p.LikesCount
	}
	if p.Body != nil {
		s.Body = *p.Body
	}
	if p.IsEdited != nil {
		s.IsEdited = *p.IsEdited
	}
	if p.UpdatedAt != nil {
		s.UpdatedAt = *p.UpdatedAt
	}
	if p.CommentsCount != nil {
		s.CommentsCount = *p.CommentsCount
	}
	if p.ViewsCount != nil {
		s.ViewsCount = *p.ViewsCount
	}
	if p.IsDeleted != nil {
		s.IsDeleted = *p.IsDeleted
	}
	if p.Poll != nil {
		t := p.Poll.Clone()
		s.Poll = &t
	}
	return s
}

// Overlay returns a patch holding the fields of p, replaced by q wherever q
// has a value.
func (p Patch) Overlay(q Patch) Patch {
	if q.IsLiked != nil {
		p.IsLiked = q.IsLiked
	}
	if q.LikesCount != nil {
		p.LikesCount = q.LikesCount
	}
	if q.Body != nil {
		p.Body = q.Body
	}
	if q.IsEdited != nil {
		p.IsEdited = q.IsEdited
	}
	if q.UpdatedAt != nil {
		p.UpdatedAt = q.UpdatedAt
	}
	if q.CommentsCount != nil {
		p.CommentsCount = q.CommentsCount
	}
	if q.ViewsCount != nil {
		p.ViewsCount = q.ViewsCount
	}
	if q.IsDeleted != nil {
		p.IsDeleted = q.IsDeleted
	}
	if q.Poll != nil {
		p.Poll = q.Poll
	}
	return p
}

// Capture returns the current values in s of exactly the fields present in p.
// It is the pre-mutation snapshot of an optimistic change.
func (s Snapshot) Capture(p Patch) Patch {
	var out Patch
	if p.IsLiked != nil {
		out.IsLiked = ptr(s.IsLiked)
	}
	if p.LikesCount != nil {
		out.LikesCount = ptr(s.LikesCount)
	}
	if p.Body != nil {
		out.Body = ptr(s.Body)
	}
	if p.IsEdited != nil {
		out.IsEdited = ptr(s.IsEdited)
	}
	if p.UpdatedAt != nil {
		out.UpdatedAt = ptr(s.UpdatedAt)
	}
	if p.CommentsCount != nil {
		out.CommentsCount = ptr(s.CommentsCount)
	}
	if p.ViewsCount != nil {
		out.ViewsCount = ptr(s.ViewsCount)
	}
	if p.IsDeleted != nil {
		out.IsDeleted = ptr(s.IsDeleted)
	}
	if p.Poll != nil {
		var t PollTally
		if s.Poll != nil {
			t = s.Poll.Clone()
		}
		out.Poll = &t
	}
	return out
}

// Holds reports whether every field present in p has the same value in s.
func (s Snapshot) Holds(p Patch) bool {
	if p.IsLiked != nil && s.IsLiked != *p.IsLiked {
		return false
	}
	if p.LikesCount != nil && s.LikesCount != *p.LikesCount {
		return false
	}
	if p.Body != nil && s.Body != *p.Body {
		return false
	}
	if p.IsEdited != nil && s.IsEdited != *p.IsEdited {
		return false
	}
	if p.UpdatedAt != nil && !s.UpdatedAt.Equal(*p.UpdatedAt) {
		return false
	}
	if p.CommentsCount != nil && s.CommentsCount != *p.CommentsCount {
		return false
	}
	if p.ViewsCount != nil && s.ViewsCount != *p.ViewsCount {
		return false
	}
	if p.IsDeleted != nil && s.IsDeleted != *p.IsDeleted {
		return false
	}
	if p.Poll != nil && (s.Poll == nil || !s.Poll.Equal(*p.Poll)) {
		return false
	}
	return true
}

// RestoreIf writes previous back into s, but only when s still holds every
// field of expected. If any of them changed since expected was written, s is
// left alone and the returned patch is empty. Otherwise the restored fields
// are returned.
func (s *Snapshot) RestoreIf(expected, previous Patch) Patch {
	if expected.IsEmpty() || !s.Holds(expected) {
		return Patch{}
	}
	restored := expected.restrict(previous)
	*s = restored.ApplyTo(*s)
	return restored
}

// restrict returns the fields of q that are also present in p.
func (p Patch) restrict(q Patch) Patch {
	var out Patch
	if p.IsLiked != nil {
		out.IsLiked = q.IsLiked
	}
	if p.LikesCount != nil {
		out.LikesCount = q.LikesCount
	}
	if p.Body != nil {
		out.Body = q.Body
	}
	if p.IsEdited != nil {
		out.IsEdited = q.IsEdited
	}
	if p.UpdatedAt != nil {
		out.UpdatedAt = q.UpdatedAt
	}
	if p.CommentsCount != nil {
		out.CommentsCount = q.CommentsCount
	}
	if p.ViewsCount != nil {
		out.ViewsCount = q.ViewsCount
	}
	if p.IsDeleted != nil {
		out.IsDeleted = q.IsDeleted
	}
	if p.Poll != nil {
		out.Poll = q.Poll
	}
	return out
}

// ApplyToPost copies the present fields of p onto a render-local post.
func (p Patch) ApplyToPost(post *Post) {
	if p.IsLiked != nil {
		post.IsLiked = *p.IsLiked
	}
	if p.LikesCount != nil {
		post.LikesCount = *p.LikesCount
	}
	if p.Body != nil {
		post.Body = *p.Body
	}
	if p.IsEdited != nil {
		post.IsEdited = *p.IsEdited
	}
	if p.UpdatedAt != nil {
		post.UpdatedAt = *p.UpdatedAt
	}
	if p.CommentsCount != nil {
		post.CommentsCount = *p.CommentsCount
	}
	if p.ViewsCount != nil {
		post.ViewsCount = *p.ViewsCount
	}
	if p.Poll != nil && post.Poll != nil {
		post.Poll.PollTally = p.Poll.Clone()
	}
}

// ApplyToComment copies the present fields of p onto a comment.
func (p Patch) ApplyToComment(c *Comment) {
	if p.IsLiked != nil {
		c.IsLiked = *p.IsLiked
	}
	if p.LikesCount != nil {
		c.LikesCount = *p.LikesCount
	}
	if p.Body != nil {
		c.Body = *p.Body
	}
	if p.IsEdited != nil {
		c.IsEdited = *p.IsEdited
	}
	if p.UpdatedAt != nil {
		c.UpdatedAt = *p.UpdatedAt
	}
	if p.IsDeleted != nil {
		c.IsDeleted = *p.IsDeleted
	}
}

func ptr[T any](v T) *T { return &v }
