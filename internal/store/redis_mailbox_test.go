package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"campusfeed/internal/model"
	"campusfeed/internal/store"
)

func setupTestRedis(t *testing.T) *redis.Client {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("Failed to parse Redis URL: %v", err)
	}

	// Use DB 1 for testing to avoid conflicts with dev data
	opts.DB = 1

	client := redis.NewClient(opts)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available, skipping test: %v", err)
	}

	client.FlushDB(ctx)
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func TestRedisMailbox_PostTake(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	m := store.NewRedisMailbox(client, "user:1", time.Minute)
	key := model.PostKey(42)

	if err := m.Post(ctx, key, model.AsPatch(model.LikeUpdate{IsLiked: true, LikesCount: 5})); err != nil {
		t.Fatalf("post: %v", err)
	}
	if err := m.Post(ctx, key, model.AsPatch(model.CountersUpdate{CommentsCount: 2, LikesCount: 6})); err != nil {
		t.Fatalf("post: %v", err)
	}

	p, ok, err := m.Take(ctx, key)
	if err != nil || !ok {
		t.Fatalf("take: ok=%t err=%v", ok, err)
	}
	if p.CommentsCount == nil || *p.CommentsCount != 2 {
		t.Errorf("expected overwritten entry, got %+v", p)
	}
	if p.IsLiked != nil {
		t.Error("first post leaked into the slot")
	}

	if _, ok, _ := m.Take(ctx, key); ok {
		t.Error("take did not delete the entry")
	}
}

func TestRedisMailbox_NamespacesAreIsolated(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	a := store.NewRedisMailbox(client, "user:1", 0)
	b := store.NewRedisMailbox(client, "user:2", 0)
	key := model.CommentKey(1)

	a.Post(ctx, key, model.AsPatch(model.DeleteUpdate{Placeholder: model.DeletedPlaceholder}))

	if _, ok, _ := b.Take(ctx, key); ok {
		t.Error("entry visible from another namespace")
	}
	if _, ok, _ := a.Take(ctx, key); !ok {
		t.Error("entry missing from its own namespace")
	}
}
