package store_test

import (
	"context"
	"testing"

	"campusfeed/internal/model"
	"campusfeed/internal/store"
)

func TestTrackUntrack_RefCounts(t *testing.T) {
	s := store.New()
	key := model.PostKey(1)

	s.Track(key)
	s.Track(key)
	s.Untrack(key)

	if !s.IsTracked(key) {
		t.Fatal("expected key still tracked after one release")
	}

	s.Untrack(key)
	if s.IsTracked(key) {
		t.Error("expected key untracked after last release")
	}

	// Releasing more than tracked is harmless.
	s.Untrack(key)
	if s.IsTracked(key) {
		t.Error("over-release re-tracked the key")
	}
}

func TestPropagate_OnlyWhenTracked(t *testing.T) {
	ctx := context.Background()
	mb := store.NewMemoryMailbox()
	s := store.New(store.WithMailbox(mb))
	tracked := model.PostKey(1)
	untracked := model.PostKey(2)
	s.Track(tracked)

	u := model.LikeUpdate{IsLiked: true, LikesCount: 3}
	if !s.Propagate(ctx, tracked, u) {
		t.Error("expected propagate for tracked key")
	}
	if s.Propagate(ctx, untracked, u) {
		t.Error("expected no propagate for untracked key")
	}
	if mb.Pending() != 1 {
		t.Errorf("expected 1 pending entry, got %d", mb.Pending())
	}
}

func TestDrain(t *testing.T) {
	ctx := context.Background()
	s := store.New()
	a, b := model.PostKey(1), model.PostKey(2)
	s.Mailbox().Post(ctx, a, model.AsPatch(model.LikeUpdate{IsLiked: true, LikesCount: 1}))

	got := s.Drain(ctx, []model.Key{a, b})

	if len(got) != 1 {
		t.Fatalf("expected 1 drained entry, got %d", len(got))
	}
	if _, ok := got[a]; !ok {
		t.Error("missing entry for a")
	}
	if again := s.Drain(ctx, []model.Key{a}); len(again) != 0 {
		t.Error("drain is not destructive")
	}
}

func TestSeed(t *testing.T) {
	s := store.New()
	post := model.Post{ID: 4, Body: "hi", LikesCount: 2, CommentsCount: 1}

	s.Seed(post.Key(), model.PostPatch(post))

	snap, ok := s.Get(post.Key())
	if !ok || snap.Body != "hi" || snap.LikesCount != 2 || snap.CommentsCount != 1 {
		t.Errorf("unexpected snapshot: ok=%t %+v", ok, snap)
	}
}
