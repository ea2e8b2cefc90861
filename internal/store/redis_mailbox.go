package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"campusfeed/internal/model"
)

const (
	// MailboxKeyPrefix is the key prefix for pending mailbox entries
	MailboxKeyPrefix = "mailbox:"

	// DefaultMailboxTTL bounds how long an undrained entry survives (1 day)
	DefaultMailboxTTL = 24 * time.Hour
)

// RedisMailbox implements Mailbox with one string key per entity, so several
// client processes of the same user share pending updates.
// Single-slot semantics come from SET (overwrite) and GETDEL (atomic take).
type RedisMailbox struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

// NewRedisMailbox creates a Mailbox backed by Redis. namespace separates
// mailboxes of different users sharing one Redis.
func NewRedisMailbox(client *redis.Client, namespace string, ttl time.Duration) *RedisMailbox {
	if ttl <= 0 {
		ttl = DefaultMailboxTTL
	}
	return &RedisMailbox{client: client, namespace: namespace, ttl: ttl}
}

// mailboxKey returns the Redis key for an entity's pending entry.
func (m *RedisMailbox) mailboxKey(key model.Key) string {
	if m.namespace == "" {
		return MailboxKeyPrefix + key.String()
	}
	return fmt.Sprintf("%s%s:%s", MailboxKeyPrefix, m.namespace, key.String())
}

// Post overwrites the pending entry and refreshes its TTL.
func (m *RedisMailbox) Post(ctx context.Context, key model.Key, patch model.Patch) error {
	data, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("marshal patch: %w", err)
	}

	if err := m.client.Set(ctx, m.mailboxKey(key), data, m.ttl).Err(); err != nil {
		log.Printf("[Mailbox] Post FAILED: key=%s err=%v", key, err)
		return fmt.Errorf("post mailbox entry: %w", err)
	}

	log.Printf("[Mailbox] Post OK: key=%s", key)
	return nil
}

// Take reads and deletes the pending entry with GETDEL.
func (m *RedisMailbox) Take(ctx context.Context, key model.Key) (model.Patch, bool, error) {
	data, err := m.client.GetDel(ctx, m.mailboxKey(key)).Bytes()
	if err == redis.Nil {
		return model.Patch{}, false, nil
	}
	if err != nil {
		log.Printf("[Mailbox] Take FAILED: key=%s err=%v", key, err)
		return model.Patch{}, false, fmt.Errorf("take mailbox entry: %w", err)
	}

	var patch model.Patch
	if err := json.Unmarshal(data, &patch); err != nil {
		log.Printf("[Mailbox] Take parse error: key=%s err=%v", key, err)
		return model.Patch{}, false, fmt.Errorf("unmarshal patch: %w", err)
	}

	log.Printf("[Mailbox] Take OK: key=%s", key)
	return patch, true, nil
}
