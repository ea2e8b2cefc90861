// Package mockapi is an in-memory data source that answers the feed API the
// way the real server does. It backs cmd/server, the feedctl demo and the HTTP
// client tests.
package mockapi

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"campusfeed/internal/model"
)

// ErrUnavailable is returned by every mutating call while a failure is injected.
var ErrUnavailable = errors.New("service unavailable")

type pollState struct {
	poll  model.Poll
	votes map[int64][]int // userID -> option indices
}

// Backend holds posts, comments, polls, market listings and per-user likes
// and favorites.
type Backend struct {
	mu sync.Mutex

	posts        map[int64]*model.Post
	comments     map[int64]*model.Comment
	polls        map[int64]*pollState
	postLikes    map[int64]map[int64]bool
	commentLikes map[int64]map[int64]bool
	listings     map[int64]*model.Listing
	favorites    map[int64]map[int64]bool

	nextPostID    int64
	nextCommentID int64

	failure error
	now     func() time.Time
}

// NewBackend creates an empty backend.
func NewBackend() *Backend {
	return &Backend{
		posts:         make(map[int64]*model.Post),
		comments:      make(map[int64]*model.Comment),
		polls:         make(map[int64]*pollState),
		postLikes:     make(map[int64]map[int64]bool),
		commentLikes:  make(map[int64]map[int64]bool),
		listings:      make(map[int64]*model.Listing),
		favorites:     make(map[int64]map[int64]bool),
		nextPostID:    1,
		nextCommentID: 1,
		now:           time.Now,
	}
}

// SetClock replaces the time source.
func (b *Backend) SetClock(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
}

// InjectFailure makes every mutating call fail with err until cleared with nil.
func (b *Backend) InjectFailure(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failure = err
}

// AddPost stores a post. A zero ID is assigned. The poll, if any, is indexed too.
func (b *Backend) AddPost(p model.Post) model.Post {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p.ID == 0 {
		p.ID = b.nextPostID
	}
	if p.ID >= b.nextPostID {
		b.nextPostID = p.ID + 1
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = b.now()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	if p.Poll != nil {
		poll := *p.Poll
		poll.PostID = p.ID
		poll.PollTally = poll.PollTally.Clone()
		poll.UserVotes = nil
		poll.Recompute()
		b.polls[poll.ID] = &pollState{poll: poll, votes: make(map[int64][]int)}
		p.Poll = nil
	}
	p.IsLiked = false
	b.posts[p.ID] = &p
	return b.postView(&p, 0)
}

// AddComment stores a comment as-is. A zero ID is assigned. The post's
// comments_count is not touched.
func (b *Backend) AddComment(c model.Comment) model.Comment {
	b.mu.Lock()
	defer b.mu.Unlock()

	if c.ID == 0 {
		c.ID = b.nextCommentID
	}
	if c.ID >= b.nextCommentID {
		b.nextCommentID = c.ID + 1
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = b.now()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	c.IsLiked = false
	b.comments[c.ID] = &c
	return c
}

// LikePost records a like without going through the toggle, for seeding.
func (b *Backend) LikePost(userID, postID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.posts[postID]; !ok {
		return
	}
	if b.postLikes[postID] == nil {
		b.postLikes[postID] = make(map[int64]bool)
	}
	b.postLikes[postID][userID] = true
}

// ToggleLike flips the user's like on a post or comment. The counter never
// goes below zero.
func (b *Backend) ToggleLike(_ context.Context, userID int64, kind model.Kind, id int64) (model.LikeResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failure != nil {
		return model.LikeResult{}, b.failure
	}

	var (
		likes   map[int64]map[int64]bool
		counter *int
	)
	switch kind {
	case model.KindPost:
		p, ok := b.posts[id]
		if !ok {
			return model.LikeResult{}, model.ErrPostNotFound
		}
		likes, counter = b.postLikes, &p.LikesCount
	case model.KindComment:
		c, ok := b.comments[id]
		if !ok {
			return model.LikeResult{}, model.ErrCommentNotFound
		}
		likes, counter = b.commentLikes, &c.LikesCount
	default:
		return model.LikeResult{}, model.ErrNotLikeable
	}

	if likes[id] == nil {
		likes[id] = make(map[int64]bool)
	}

	var liked bool
	if likes[id][userID] {
		delete(likes[id], userID)
		*counter = max(0, *counter-1)
	} else {
		likes[id][userID] = true
		*counter++
		liked = true
	}

	log.Printf("[MockAPI] ToggleLike OK: user=%d %s:%d liked=%t likes=%d", userID, kind, id, liked, *counter)
	return model.LikeResult{IsLiked: liked, LikesCount: *counter}, nil
}

// Vote records the user's poll vote.
func (b *Backend) Vote(_ context.Context, userID, pollID int64, indices []int) (model.PollResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failure != nil {
		return model.PollResult{}, b.failure
	}

	st, ok := b.polls[pollID]
	if !ok {
		return model.PollResult{}, model.ErrPollNotFound
	}

	indices = model.NormalizeSelection(indices)
	tally := b.tallyFor(st, userID)
	if err := tally.Validate(indices, b.now()); err != nil {
		return model.PollResult{}, err
	}

	for _, idx := range indices {
		st.poll.Options[idx].Votes++
	}
	st.poll.TotalVotes++
	st.poll.Recompute()
	st.votes[userID] = slices.Clone(indices)

	log.Printf("[MockAPI] Vote OK: user=%d poll=%d indices=%v total=%d", userID, pollID, indices, st.poll.TotalVotes)
	return model.PollResult{PollID: pollID, PollTally: b.tallyFor(st, userID)}, nil
}

// Edit changes the body of a post or comment owned by the user.
func (b *Backend) Edit(_ context.Context, userID int64, kind model.Kind, id int64, body string) (model.EditResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failure != nil {
		return model.EditResult{}, b.failure
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return model.EditResult{}, model.ErrBodyRequired
	}

	now := b.now()
	switch kind {
	case model.KindPost:
		p, ok := b.posts[id]
		if !ok {
			return model.EditResult{}, model.ErrPostNotFound
		}
		if p.AuthorID != userID {
			return model.EditResult{}, model.ErrNotPostOwner
		}
		if utf8.RuneCountInString(body) > model.MaxPostBodyLength {
			return model.EditResult{}, model.ErrBodyTooLong
		}
		p.Body, p.IsEdited, p.UpdatedAt = body, true, now
	case model.KindComment:
		c, ok := b.comments[id]
		if !ok {
			return model.EditResult{}, model.ErrCommentNotFound
		}
		if c.AuthorID != userID {
			return model.EditResult{}, model.ErrNotCommentOwner
		}
		if c.IsDeleted {
			return model.EditResult{}, model.ErrCommentDeleted
		}
		if utf8.RuneCountInString(body) > model.MaxCommentLength {
			return model.EditResult{}, model.ErrBodyTooLong
		}
		c.Body, c.IsEdited, c.UpdatedAt = body, true, now
	default:
		return model.EditResult{}, fmt.Errorf("edit %s: %w", kind, model.ErrUnknownKind)
	}

	log.Printf("[MockAPI] Edit OK: user=%d %s:%d", userID, kind, id)
	return model.EditResult{Body: body, IsEdited: true, UpdatedAt: now}, nil
}

// CreateComment adds a comment or reply and bumps the post's comments_count.
func (b *Backend) CreateComment(_ context.Context, userID, postID int64, req model.CreateCommentRequest) (model.Comment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failure != nil {
		return model.Comment{}, b.failure
	}

	p, ok := b.posts[postID]
	if !ok {
		return model.Comment{}, model.ErrPostNotFound
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		return model.Comment{}, model.ErrBodyRequired
	}
	if utf8.RuneCountInString(body) > model.MaxCommentLength {
		return model.Comment{}, model.ErrBodyTooLong
	}

	if req.ParentID != nil {
		parent, ok := b.comments[*req.ParentID]
		if !ok {
			return model.Comment{}, model.ErrCommentNotFound
		}
		if parent.PostID != postID {
			return model.Comment{}, model.ErrParentMismatch
		}
	}

	now := b.now()
	c := &model.Comment{
		ID:        b.nextCommentID,
		PostID:    postID,
		ParentID:  req.ParentID,
		AuthorID:  userID,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.nextCommentID++
	b.comments[c.ID] = c
	p.CommentsCount++

	log.Printf("[MockAPI] CreateComment OK: user=%d post=%d comment=%d", userID, postID, c.ID)
	return *c, nil
}

// DeleteComment soft-deletes a comment that has replies and hard-deletes a
// leaf. Only a hard delete decrements the post's comments_count.
func (b *Backend) DeleteComment(_ context.Context, userID, commentID int64) (model.DeleteResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failure != nil {
		return model.DeleteResult{}, b.failure
	}

	c, ok := b.comments[commentID]
	if !ok {
		return model.DeleteResult{}, model.ErrCommentNotFound
	}
	if c.AuthorID != userID {
		return model.DeleteResult{}, model.ErrNotCommentOwner
	}

	hasReplies := false
	for _, other := range b.comments {
		if other.ParentID != nil && *other.ParentID == commentID {
			hasReplies = true
			break
		}
	}

	if hasReplies {
		c.IsDeleted = true
		c.Body = model.DeletedPlaceholder
		log.Printf("[MockAPI] DeleteComment OK: user=%d comment=%d type=%s", userID, commentID, model.SoftDelete)
		return model.DeleteResult{Type: model.SoftDelete}, nil
	}

	delete(b.comments, commentID)
	delete(b.commentLikes, commentID)
	if p, ok := b.posts[c.PostID]; ok {
		p.CommentsCount = max(0, p.CommentsCount-1)
	}
	log.Printf("[MockAPI] DeleteComment OK: user=%d comment=%d type=%s", userID, commentID, model.HardDelete)
	return model.DeleteResult{Type: model.HardDelete}, nil
}

// GetPost returns one post as seen by the user and counts a view.
func (b *Backend) GetPost(_ context.Context, userID, postID int64) (model.Post, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.posts[postID]
	if !ok {
		return model.Post{}, model.ErrPostNotFound
	}
	p.ViewsCount++
	return b.postView(p, userID), nil
}

// ListPosts returns every post, newest first.
func (b *Backend) ListPosts(_ context.Context, userID int64) ([]model.Post, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listPosts(userID, func(*model.Post) bool { return true }), nil
}

// ListUserPosts returns the posts of authorID, newest first.
func (b *Backend) ListUserPosts(_ context.Context, userID, authorID int64) ([]model.Post, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listPosts(userID, func(p *model.Post) bool { return p.AuthorID == authorID }), nil
}

// ListComments returns the flat comment list of a post ordered by creation.
func (b *Backend) ListComments(_ context.Context, userID, postID int64) ([]model.Comment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.posts[postID]; !ok {
		return nil, model.ErrPostNotFound
	}

	out := make([]model.Comment, 0)
	for _, c := range b.comments {
		if c.PostID != postID {
			continue
		}
		cc := *c
		cc.IsLiked = b.commentLikes[c.ID][userID]
		out = append(out, cc)
	}
	slices.SortFunc(out, func(x, y model.Comment) int {
		if c := x.CreatedAt.Compare(y.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(x.ID, y.ID)
	})
	return out, nil
}

func (b *Backend) listPosts(userID int64, keep func(*model.Post) bool) []model.Post {
	out := make([]model.Post, 0, len(b.posts))
	for _, p := range b.posts {
		if keep(p) {
			out = append(out, b.postView(p, userID))
		}
	}
	slices.SortFunc(out, func(x, y model.Post) int {
		if c := y.CreatedAt.Compare(x.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(y.ID, x.ID)
	})
	return out
}

// postView copies p with the viewer-relative fields filled in. Caller holds mu.
func (b *Backend) postView(p *model.Post, userID int64) model.Post {
	out := *p
	out.IsLiked = b.postLikes[p.ID][userID]
	for _, st := range b.polls {
		if st.poll.PostID == p.ID {
			poll := st.poll
			poll.PollTally = b.tallyFor(st, userID)
			out.Poll = &poll
			break
		}
	}
	return out
}

// tallyFor returns the poll tally with the user's own votes. Caller holds mu.
func (b *Backend) tallyFor(st *pollState, userID int64) model.PollTally {
	t := st.poll.PollTally.Clone()
	t.UserVotes = slices.Clone(st.votes[userID])
	return t
}
