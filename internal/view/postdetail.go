package view

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"

	"campusfeed/internal/commenttree"
	"campusfeed/internal/model"
	"campusfeed/internal/optimistic"
)

// PostDetail shows one post with its comment thread. It keeps only the
// static parts of the post and comments; every interactive field is read
// from the shared cache on demand.
type PostDetail struct {
	deps   Deps
	postID int64

	mu       sync.Mutex
	post     model.Post
	comments []model.Comment
	poll     *PollWidget
	mounted  bool
}

var _ View = (*PostDetail)(nil)

func NewPostDetail(deps Deps, postID int64) *PostDetail {
	return &PostDetail{deps: deps, postID: postID}
}

// ThreadEntry is one rendered comment row.
type ThreadEntry struct {
	Comment  model.Comment
	Depth    int
	CanReply bool
}

func (d *PostDetail) Mount(ctx context.Context) error {
	post, err := d.deps.Client.GetPost(ctx, d.postID)
	if err != nil {
		d.deps.notify("load", model.PostKey(d.postID), "Could not load post", err)
		log.Printf("[PostDetail] Mount FAILED: post=%d err=%v", d.postID, err)
		return fmt.Errorf("get post: %w", err)
	}
	seedPost(d.deps.Store, post)

	comments, err := d.loadComments(ctx)
	if err != nil {
		return err
	}

	var poll *PollWidget
	if post.Poll != nil {
		poll = NewPollWidget(d.deps, *post.Poll)
		if err := poll.Mount(ctx); err != nil {
			return err
		}
	}

	d.mu.Lock()
	d.post = post
	d.comments = comments
	d.poll = poll
	d.mounted = true
	d.mu.Unlock()

	log.Printf("[PostDetail] Mount OK: post=%d comments=%d", d.postID, len(comments))
	return nil
}

func (d *PostDetail) loadComments(ctx context.Context) ([]model.Comment, error) {
	comments, err := d.deps.Client.ListComments(ctx, d.postID)
	if err != nil {
		d.deps.notify("load", model.PostKey(d.postID), "Could not load comments", err)
		log.Printf("[PostDetail] ListComments FAILED: post=%d err=%v", d.postID, err)
		return nil, fmt.Errorf("list comments: %w", err)
	}
	for _, c := range comments {
		d.deps.Store.Seed(c.Key(), model.CommentPatch(c))
	}
	return comments, nil
}

// Resume only checks the view is mounted: PostDetail has no local copy to
// catch up.
func (d *PostDetail) Resume(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.mounted {
		return ErrNotMounted
	}
	return nil
}

func (d *PostDetail) Unmount() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.poll != nil {
		d.poll.Unmount()
	}
	d.mounted = false
}

// Post returns the post with the current cached interactive state.
func (d *PostDetail) Post() model.Post {
	d.mu.Lock()
	post := d.post
	d.mu.Unlock()

	if s, ok := d.deps.Store.Get(post.Key()); ok {
		s.Capture(model.PostPatch(post)).ApplyToPost(&post)
	}
	if post.Poll != nil {
		poll := *post.Poll
		if s, ok := d.deps.Store.Get(poll.Key()); ok && s.Poll != nil {
			poll.PollTally = *s.Poll
		}
		post.Poll = &poll
	}
	return post
}

// Poll returns the poll widget, or nil when the post has no poll.
func (d *PostDetail) Poll() *PollWidget {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.poll
}

// Comments returns the flat comment list with cached interactive state.
func (d *PostDetail) Comments() []model.Comment {
	d.mu.Lock()
	out := slices.Clone(d.comments)
	d.mu.Unlock()

	for i := range out {
		if s, ok := d.deps.Store.Get(out[i].Key()); ok {
			s.Capture(model.CommentPatch(out[i])).ApplyToComment(&out[i])
		}
	}
	return out
}

// Forest returns the comment tree.
func (d *PostDetail) Forest() []*commenttree.Node {
	return commenttree.Build(d.Comments())
}

// Thread returns the comment rows in display order with their reply
// affordance.
func (d *PostDetail) Thread() []ThreadEntry {
	var out []ThreadEntry
	commenttree.Walk(d.Forest(), func(n *commenttree.Node) {
		out = append(out, ThreadEntry{
			Comment:  n.Comment,
			Depth:    n.Depth,
			CanReply: commenttree.CanReply(n.Depth, d.deps.MaxReplyDepth),
		})
	})
	return out
}

func (d *PostDetail) hasComment(id int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.ContainsFunc(d.comments, func(c model.Comment) bool { return c.ID == id })
}

func (d *PostDetail) LikePost(ctx context.Context) (*optimistic.Pending, error) {
	return d.deps.Mutator.ToggleLike(ctx, model.PostKey(d.postID))
}

func (d *PostDetail) EditPost(ctx context.Context, body string) (*optimistic.Pending, error) {
	return d.deps.Mutator.ApplyEdit(ctx, model.PostKey(d.postID), body)
}

func (d *PostDetail) LikeComment(ctx context.Context, commentID int64) (*optimistic.Pending, error) {
	if !d.hasComment(commentID) {
		return nil, model.ErrCommentNotFound
	}
	return d.deps.Mutator.ToggleLike(ctx, model.CommentKey(commentID))
}

func (d *PostDetail) EditComment(ctx context.Context, commentID int64, body string) (*optimistic.Pending, error) {
	if !d.hasComment(commentID) {
		return nil, model.ErrCommentNotFound
	}
	return d.deps.Mutator.ApplyEdit(ctx, model.CommentKey(commentID), body)
}

// SendComment posts a comment, or a reply when parentID is set. Replies
// below the depth limit are refused before any call.
func (d *PostDetail) SendComment(ctx context.Context, body string, parentID *int64) (model.Comment, error) {
	if parentID != nil {
		if err := d.checkReply(*parentID); err != nil {
			return model.Comment{}, err
		}
	}

	c, err := d.deps.Mutator.SubmitComment(ctx, d.postID, body, parentID)
	if err != nil {
		return model.Comment{}, err
	}

	d.mu.Lock()
	d.comments = append(d.comments, c)
	d.mu.Unlock()
	return c, nil
}

func (d *PostDetail) checkReply(parentID int64) error {
	for _, e := range d.Thread() {
		if e.Comment.ID != parentID {
			continue
		}
		if e.Comment.IsDeleted {
			return model.ErrCommentDeleted
		}
		if !e.CanReply {
			return ErrReplyTooDeep
		}
		return nil
	}
	return model.ErrCommentNotFound
}

// DeleteComment deletes one of the viewer's comments. A comment with replies
// stays in the thread as a placeholder; otherwise it disappears.
func (d *PostDetail) DeleteComment(ctx context.Context, commentID int64) (model.DeleteResult, error) {
	if !d.hasComment(commentID) {
		return model.DeleteResult{}, model.ErrCommentNotFound
	}

	res, err := d.deps.Mutator.DeleteComment(ctx, d.postID, commentID)
	if err != nil {
		return model.DeleteResult{}, err
	}

	d.mu.Lock()
	d.comments = commenttree.ApplyDeleteResult(d.comments, commentID, res)
	d.mu.Unlock()
	return res, nil
}

// Refresh reloads the post counters, handing them to detached views, and the
// comment list.
func (d *PostDetail) Refresh(ctx context.Context) error {
	post, err := d.deps.Mutator.RefreshPost(ctx, d.postID)
	if err != nil {
		d.deps.notify(optimistic.OpRefresh, model.PostKey(d.postID), "Could not refresh post", err)
		return err
	}
	comments, err := d.loadComments(ctx)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.post.CommentsCount = post.CommentsCount
	d.post.LikesCount = post.LikesCount
	d.post.ViewsCount = post.ViewsCount
	d.comments = comments
	d.mu.Unlock()
	return nil
}
