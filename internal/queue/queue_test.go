package queue_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"campusfeed/internal/model"
	"campusfeed/internal/queue"
)

func TestParseReconcileEvent(t *testing.T) {
	liked := true
	event := queue.NewReconciledEvent("proc-a", model.PostKey(1), model.Patch{IsLiked: &liked})
	values, err := event.ToMap()
	if err != nil {
		t.Fatalf("ToMap: %v", err)
	}

	parsed, err := queue.ParseReconcileEvent(values)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Origin != "proc-a" || parsed.Key != model.PostKey(1) || parsed.Patch.IsLiked == nil || !*parsed.Patch.IsLiked {
		t.Errorf("unexpected event: %+v", parsed)
	}
}

func TestParseReconcileEvent_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]interface{}
	}{
		{"missing data", map[string]interface{}{"type": "reconciled"}},
		{"bad json", map[string]interface{}{"data": "{"}},
		{"unknown kind", map[string]interface{}{"data": `{"type":"reconciled","key":{"kind":"user","id":1}}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := queue.ParseReconcileEvent(tt.values); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func setupTestRedis(t *testing.T) *redis.Client {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("Failed to parse Redis URL: %v", err)
	}
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

func TestPublishConsume_EveryGroupSeesEveryEvent(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	pub := queue.NewPublisher(client)
	con := queue.NewConsumer(client)

	groupA, groupB := queue.ConsumerGroup("a"), queue.ConsumerGroup("b")
	for _, g := range []string{groupA, groupB} {
		if err := con.EnsureGroup(ctx, queue.StreamReconcile, g); err != nil {
			t.Fatalf("ensure group %s: %v", g, err)
		}
	}
	// Second call is a no-op.
	if err := con.EnsureGroup(ctx, queue.StreamReconcile, groupA); err != nil {
		t.Fatalf("ensure group twice: %v", err)
	}

	if err := pub.PublishReconcile(ctx, queue.NewCommentRemovedEvent("a", 5)); err != nil {
		t.Fatalf("publish: %v", err)
	}

	for _, g := range []string{groupA, groupB} {
		msgs, err := con.Read(ctx, queue.StreamReconcile, g, "worker-0", 10, 100*time.Millisecond)
		if err != nil {
			t.Fatalf("read %s: %v", g, err)
		}
		if len(msgs) != 1 || msgs[0].Event.Key != model.CommentKey(5) {
			t.Fatalf("group %s: unexpected messages %+v", g, msgs)
		}
		if err := con.Ack(ctx, queue.StreamReconcile, g, msgs[0].ID); err != nil {
			t.Fatalf("ack: %v", err)
		}
		if n, _ := con.Pending(ctx, queue.StreamReconcile, g); n != 0 {
			t.Errorf("group %s: expected 0 pending, got %d", g, n)
		}
	}
}
