package store_test

import (
	"context"
	"testing"

	"campusfeed/internal/model"
	"campusfeed/internal/store"
)

func TestMemoryMailbox_SingleSlot(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemoryMailbox()
	key := model.PostKey(1)

	m.Post(ctx, key, model.AsPatch(model.LikeUpdate{IsLiked: true, LikesCount: 1}))
	m.Post(ctx, key, model.AsPatch(model.LikeUpdate{IsLiked: false, LikesCount: 0}))

	if m.Pending() != 1 {
		t.Fatalf("expected 1 pending, got %d", m.Pending())
	}

	p, ok, err := m.Take(ctx, key)
	if err != nil || !ok {
		t.Fatalf("expected entry, ok=%t err=%v", ok, err)
	}
	if *p.IsLiked || *p.LikesCount != 0 {
		t.Errorf("expected last post to win, got liked=%t likes=%d", *p.IsLiked, *p.LikesCount)
	}

	_, ok, _ = m.Take(ctx, key)
	if ok {
		t.Error("take did not clear the slot")
	}
}

func TestMemoryMailbox_TakeMissing(t *testing.T) {
	m := store.NewMemoryMailbox()

	_, ok, err := m.Take(context.Background(), model.CommentKey(3))

	if err != nil || ok {
		t.Errorf("expected empty result, ok=%t err=%v", ok, err)
	}
}
