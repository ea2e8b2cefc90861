package view

import (
	"context"
	"fmt"
	"log"

	"campusfeed/internal/model"
	"campusfeed/internal/optimistic"
)

// UserPosts lists the posts of one author, e.g. the viewer's profile.
type UserPosts struct {
	deps   Deps
	userID int64
	list   *postList
}

var _ View = (*UserPosts)(nil)

func NewUserPosts(deps Deps, userID int64) *UserPosts {
	return &UserPosts{
		deps:   deps,
		userID: userID,
		list:   &postList{name: "UserPosts", st: deps.Store},
	}
}

func (u *UserPosts) Mount(ctx context.Context) error {
	posts, err := u.deps.Client.ListUserPosts(ctx, u.userID)
	if err != nil {
		u.deps.notify("load", model.Key{}, "Could not load posts", err)
		log.Printf("[UserPosts] Mount FAILED: user=%d err=%v", u.userID, err)
		return fmt.Errorf("list user posts: %w", err)
	}

	u.list.load(posts)
	log.Printf("[UserPosts] Mount OK: user=%d posts=%d", u.userID, len(posts))
	return nil
}

func (u *UserPosts) Resume(ctx context.Context) error {
	if !u.list.isMounted() {
		return ErrNotMounted
	}
	u.list.drain(ctx)
	return nil
}

func (u *UserPosts) Unmount() {
	u.list.release()
}

// Posts returns the rendered posts.
func (u *UserPosts) Posts() []model.Post {
	return u.list.snapshot()
}

// ApplyUpdate merges an update produced by another screen of the same session
// straight into the list, e.g. the result of editing a post opened from here.
func (u *UserPosts) ApplyUpdate(key model.Key, upd model.Update) bool {
	return u.list.apply(key, model.AsPatch(upd))
}

// EditPost edits one of the listed posts.
func (u *UserPosts) EditPost(ctx context.Context, postID int64, body string) (*optimistic.Pending, error) {
	key := model.PostKey(postID)
	if !u.list.has(key) {
		return nil, ErrPostNotShown
	}

	p, err := u.deps.Mutator.ApplyEdit(ctx, key, body)
	if err != nil {
		return nil, err
	}
	u.list.follow(p)
	return p, nil
}

// Settle blocks until the list reflects the outcome of its own mutations.
func (u *UserPosts) Settle() {
	u.list.inflight.Wait()
}
