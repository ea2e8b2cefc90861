package scratch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"campusfeed/internal/model"
)

const (
	// ScratchKeyPrefix is the key prefix for scratch hashes
	ScratchKeyPrefix = "scratch:"

	// ScratchTTL is the TTL of a scratch hash, refreshed on every write (30 days)
	ScratchTTL = 30 * 24 * time.Hour
)

// RedisScratch implements Scratch with two Redis hashes per namespace:
// one for like flags (field "kind:id") and one for poll votes (field poll id).
type RedisScratch struct {
	client    *redis.Client
	namespace string
}

// NewRedisScratch creates a Scratch backed by Redis.
func NewRedisScratch(client *redis.Client, namespace string) *RedisScratch {
	return &RedisScratch{client: client, namespace: namespace}
}

func (s *RedisScratch) likedKey() string {
	return fmt.Sprintf("%s%s:liked", ScratchKeyPrefix, s.namespace)
}

func (s *RedisScratch) votesKey() string {
	return fmt.Sprintf("%s%s:poll_votes", ScratchKeyPrefix, s.namespace)
}

// SetLiked stores the flag with a pipeline: HSET + EXPIRE (refresh TTL).
func (s *RedisScratch) SetLiked(ctx context.Context, key model.Key, liked bool) error {
	hash := s.likedKey()

	pipe := s.client.Pipeline()
	pipe.HSet(ctx, hash, key.String(), strconv.FormatBool(liked))
	pipe.Expire(ctx, hash, ScratchTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[Scratch] SetLiked FAILED: key=%s err=%v", key, err)
		return fmt.Errorf("set liked: %w", err)
	}

	log.Printf("[Scratch] SetLiked OK: key=%s liked=%t", key, liked)
	return nil
}

// Liked reads a flag with HGET.
func (s *RedisScratch) Liked(ctx context.Context, key model.Key) (bool, bool, error) {
	val, err := s.client.HGet(ctx, s.likedKey(), key.String()).Result()
	if err == redis.Nil {
		return false, false, nil
	}
	if err != nil {
		log.Printf("[Scratch] Liked FAILED: key=%s err=%v", key, err)
		return false, false, fmt.Errorf("get liked: %w", err)
	}

	liked, err := strconv.ParseBool(val)
	if err != nil {
		return false, false, fmt.Errorf("parse liked flag: %w", err)
	}
	return liked, true, nil
}

// SetPollVotes stores the selection as JSON: HSET + EXPIRE.
func (s *RedisScratch) SetPollVotes(ctx context.Context, pollID int64, indices []int) error {
	data, err := json.Marshal(indices)
	if err != nil {
		return fmt.Errorf("marshal poll votes: %w", err)
	}

	hash := s.votesKey()
	pipe := s.client.Pipeline()
	pipe.HSet(ctx, hash, strconv.FormatInt(pollID, 10), string(data))
	pipe.Expire(ctx, hash, ScratchTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[Scratch] SetPollVotes FAILED: poll=%d err=%v", pollID, err)
		return fmt.Errorf("set poll votes: %w", err)
	}

	log.Printf("[Scratch] SetPollVotes OK: poll=%d indices=%v", pollID, indices)
	return nil
}

// PollVotes reads a selection with HGET.
func (s *RedisScratch) PollVotes(ctx context.Context, pollID int64) ([]int, bool, error) {
	val, err := s.client.HGet(ctx, s.votesKey(), strconv.FormatInt(pollID, 10)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		log.Printf("[Scratch] PollVotes FAILED: poll=%d err=%v", pollID, err)
		return nil, false, fmt.Errorf("get poll votes: %w", err)
	}

	var indices []int
	if err := json.Unmarshal([]byte(val), &indices); err != nil {
		return nil, false, fmt.Errorf("unmarshal poll votes: %w", err)
	}
	return indices, true, nil
}
