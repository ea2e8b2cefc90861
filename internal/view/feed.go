package view

import (
	"context"
	"fmt"
	"log"

	"campusfeed/internal/model"
	"campusfeed/internal/optimistic"
)

// Feed is the home list. It renders its own copy of every post and catches up
// with changes made elsewhere when it is resumed.
type Feed struct {
	deps Deps
	list *postList
}

var _ View = (*Feed)(nil)

func NewFeed(deps Deps) *Feed {
	return &Feed{
		deps: deps,
		list: &postList{name: "Feed", st: deps.Store},
	}
}

// Mount loads the feed and tracks every displayed post.
func (f *Feed) Mount(ctx context.Context) error {
	posts, err := f.deps.Client.ListPosts(ctx)
	if err != nil {
		f.deps.notify("load", model.Key{}, "Could not load feed", err)
		log.Printf("[Feed] Mount FAILED: err=%v", err)
		return fmt.Errorf("list posts: %w", err)
	}

	f.list.load(posts)
	log.Printf("[Feed] Mount OK: posts=%d", len(posts))
	return nil
}

// Resume merges the pending updates of every displayed post.
func (f *Feed) Resume(ctx context.Context) error {
	if !f.list.isMounted() {
		return ErrNotMounted
	}
	f.list.drain(ctx)
	return nil
}

// Unmount waits for the feed's own mutations and stops tracking its posts.
func (f *Feed) Unmount() {
	f.list.release()
}

// Posts returns the rendered posts.
func (f *Feed) Posts() []model.Post {
	return f.list.snapshot()
}

// ToggleLike likes or unlikes a post from its feed row.
func (f *Feed) ToggleLike(ctx context.Context, postID int64) (*optimistic.Pending, error) {
	key := model.PostKey(postID)
	if !f.list.has(key) {
		return nil, ErrPostNotShown
	}

	p, err := f.deps.Mutator.ToggleLike(ctx, key)
	if err != nil {
		return nil, err
	}
	f.list.follow(p)
	return p, nil
}

// Settle blocks until the rows touched by the feed's own mutations show
// their final state.
func (f *Feed) Settle() {
	f.list.inflight.Wait()
}
