package worker_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"campusfeed/internal/model"
	"campusfeed/internal/queue"
	"campusfeed/internal/store"
	"campusfeed/internal/worker"
)

// =============================================================================
// Mock Implementations
// =============================================================================

// MockConsumer serves canned batches and records acks.
type MockConsumer struct {
	batches [][]queue.Message
	acked   chan string
	groups  []string
}

func NewMockConsumer(batches ...[]queue.Message) *MockConsumer {
	return &MockConsumer{batches: batches, acked: make(chan string, 64)}
}

func (m *MockConsumer) EnsureGroup(ctx context.Context, stream, group string) error {
	m.groups = append(m.groups, group)
	return nil
}

func (m *MockConsumer) Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]queue.Message, error) {
	if len(m.batches) == 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(block):
			return nil, nil
		}
	}
	batch := m.batches[0]
	m.batches = m.batches[1:]
	return batch, nil
}

func (m *MockConsumer) Ack(ctx context.Context, stream, group string, messageIDs ...string) error {
	for _, id := range messageIDs {
		m.acked <- id
	}
	return nil
}

func (m *MockConsumer) Pending(ctx context.Context, stream, group string) (int64, error) {
	return 0, nil
}

// =============================================================================
// Test Helpers
// =============================================================================

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
	return client
}

func cleanupTestRedis(client *redis.Client) {
	ctx := context.Background()
	client.FlushDB(ctx)
	client.Close()
}

func ptr[T any](v T) *T { return &v }

func likePatch(liked bool, count int) model.Patch {
	return model.Patch{IsLiked: &liked, LikesCount: &count}
}

// =============================================================================
// Handler Tests
// =============================================================================

func TestHandleEvent_MergesForeignReconcile(t *testing.T) {
	ctx := context.Background()
	st := store.New()
	key := model.PostKey(1)
	st.Seed(key, likePatch(false, 10))
	st.Track(key)
	handler := worker.NewHandler(st, "proc-b")

	event := queue.NewReconciledEvent("proc-a", key, likePatch(true, 11))
	if err := handler.HandleEvent(ctx, event); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}

	s, _ := st.Get(key)
	if !s.IsLiked || s.LikesCount != 11 {
		t.Errorf("cache not updated: {%t %d}", s.IsLiked, s.LikesCount)
	}
	patch, ok, _ := st.Mailbox().Take(ctx, key)
	if !ok || *patch.LikesCount != 11 {
		t.Errorf("mailbox not updated: ok=%t %+v", ok, patch)
	}
}

func TestHandleEvent_SkipsOwnEvents(t *testing.T) {
	st := store.New()
	key := model.PostKey(1)
	st.Seed(key, likePatch(false, 10))
	handler := worker.NewHandler(st, "proc-a")

	event := queue.NewReconciledEvent("proc-a", key, likePatch(true, 11))
	if err := handler.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}

	if s, _ := st.Get(key); s.IsLiked {
		t.Error("own event was applied")
	}
}

func TestHandleEvent_CountersRefreshedUntracked(t *testing.T) {
	ctx := context.Background()
	st := store.New()
	key := model.PostKey(2)
	st.Seed(key, model.Patch{CommentsCount: ptr(3), LikesCount: ptr(5)})
	handler := worker.NewHandler(st, "proc-b")

	event := queue.NewCountersRefreshedEvent("proc-a", 2, model.Patch{CommentsCount: ptr(7)})
	if err := handler.HandleEvent(ctx, event); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}

	if s, ok := st.Get(key); !ok || s.CommentsCount != 7 || s.LikesCount != 5 {
		t.Errorf("counters not merged: ok=%t %+v", ok, s)
	}
	if _, ok, _ := st.Mailbox().Take(ctx, key); ok {
		t.Error("untracked key received a mailbox entry")
	}
}

func TestHandleEvent_UncachedKeyIsNotCreated(t *testing.T) {
	ctx := context.Background()
	st := store.New()
	handler := worker.NewHandler(st, "proc-b")

	// Never loaded here at all.
	event := queue.NewReconciledEvent("proc-a", model.PostKey(5), model.Patch{LikesCount: ptr(4)})
	if err := handler.HandleEvent(ctx, event); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if _, ok := st.Get(model.PostKey(5)); ok {
		t.Error("merge created a cache entry for an uncached key")
	}

	// Held by a render-local view but not in the cache: only the mailbox gets it.
	key := model.PostKey(6)
	st.Track(key)
	event = queue.NewReconciledEvent("proc-a", key, likePatch(true, 4))
	if err := handler.HandleEvent(ctx, event); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if _, ok := st.Get(key); ok {
		t.Error("merge created a cache entry for a tracked but uncached key")
	}
	patch, ok, _ := st.Mailbox().Take(ctx, key)
	if !ok || patch.LikesCount == nil || *patch.LikesCount != 4 {
		t.Errorf("expected mailbox entry, got ok=%t %+v", ok, patch)
	}
}

func TestHandleEvent_RolledBackLeavesCache(t *testing.T) {
	st := store.New()
	key := model.PostKey(1)
	st.Seed(key, likePatch(true, 11))
	handler := worker.NewHandler(st, "proc-b")

	event := queue.NewRolledBackEvent("proc-a", key, likePatch(false, 10))
	if err := handler.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}

	if s, _ := st.Get(key); !s.IsLiked || s.LikesCount != 11 {
		t.Errorf("rollback of a foreign mutation changed the cache: %+v", s)
	}
}

func TestHandleEvent_CommentRemoved(t *testing.T) {
	st := store.New()
	st.Seed(model.CommentKey(4), model.EditUpdate{Body: "bye"})
	handler := worker.NewHandler(st, "proc-b")

	if err := handler.HandleEvent(context.Background(), queue.NewCommentRemovedEvent("proc-a", 4)); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}

	if _, ok := st.Get(model.CommentKey(4)); ok {
		t.Error("comment still cached")
	}
}

func TestHandleEvent_Errors(t *testing.T) {
	handler := worker.NewHandler(store.New(), "proc-b")

	tests := []struct {
		name  string
		event queue.ReconcileEvent
	}{
		{"unknown type", queue.ReconcileEvent{Type: "post_created", Origin: "proc-a", Key: model.PostKey(1)}},
		{"empty patch", queue.ReconcileEvent{Type: queue.EventReconciled, Origin: "proc-a", Key: model.PostKey(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := handler.HandleEvent(context.Background(), tt.event); err == nil {
				t.Error("expected error")
			}
		})
	}
}

// =============================================================================
// Manager Tests
// =============================================================================

func TestManager_ProcessesAndAcks(t *testing.T) {
	st := store.New()
	key := model.PostKey(1)
	st.Seed(key, likePatch(false, 2))
	handler := worker.NewHandler(st, "proc-b")

	consumer := NewMockConsumer([]queue.Message{
		{ID: "1-0", Event: queue.NewReconciledEvent("proc-a", key, likePatch(true, 3))},
		{ID: "2-0", Event: queue.ReconcileEvent{Type: "bogus", Origin: "proc-a", Key: key}},
	})

	mgr := worker.NewManager(consumer, handler, worker.ManagerConfig{
		WorkerCount:  1,
		BlockTimeout: 10 * time.Millisecond,
	})
	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	for _, want := range []string{"1-0", "2-0"} {
		select {
		case got := <-consumer.acked:
			if got != want {
				t.Errorf("acked %s, want %s", got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("message %s never acked", want)
		}
	}
	mgr.Stop()

	if len(consumer.groups) != 1 || consumer.groups[0] != queue.ConsumerGroup("proc-b") {
		t.Errorf("unexpected consumer group: %v", consumer.groups)
	}
	if s, _ := st.Get(key); !s.IsLiked || s.LikesCount != 3 {
		t.Errorf("event not applied: %+v", s)
	}
}

// =============================================================================
// Integration Tests
// =============================================================================

// TestReconcileAcrossProcesses publishes from one process and checks that
// another process's workers merge the change into its store.
func TestReconcileAcrossProcesses(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	ctx := context.Background()
	key := model.PostKey(1)

	// Process B mounts a view of post 1.
	st := store.New()
	st.Seed(key, likePatch(false, 10))
	st.Track(key)

	mgr := worker.NewManager(queue.NewConsumer(client), worker.NewHandler(st, "proc-b"), worker.ManagerConfig{
		WorkerCount:  2,
		BlockTimeout: 100 * time.Millisecond,
	})
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer mgr.Stop()

	// Process A likes the post.
	pub := queue.NewPublisher(client)
	if err := pub.PublishReconcile(ctx, queue.NewReconciledEvent("proc-a", key, likePatch(true, 11))); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		if s, _ := st.Get(key); s.IsLiked && s.LikesCount == 11 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("event not applied in time")
		}
		time.Sleep(20 * time.Millisecond)
	}

	patch, ok, _ := st.Mailbox().Take(ctx, key)
	if !ok || !*patch.IsLiked {
		t.Errorf("mailbox not updated: ok=%t %+v", ok, patch)
	}

	t.Log("✓ Reconcile event crosses processes")
}
