package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"campusfeed/internal/model"
)

// Event types for the reconcile stream
const (
	EventReconciled        = "reconciled"
	EventRolledBack        = "rolled_back"
	EventCountersRefreshed = "counters_refreshed"
	EventCommentRemoved    = "comment_removed"
)

// Stream names
const (
	StreamReconcile = "stream:reconcile"
)

// ConsumerGroupPrefix prefixes the per-process consumer group. Each client
// process reads the whole stream through its own group.
const (
	ConsumerGroupPrefix = "sync:"
)

// ConsumerGroup returns the consumer group name of a client process.
func ConsumerGroup(origin string) string {
	return ConsumerGroupPrefix + origin
}

// ReconcileEvent carries an authoritative entity change from the process that
// observed it to every other client process of the same user.
type ReconcileEvent struct {
	Type      string      `json:"type"`      // EventReconciled, EventRolledBack, ...
	Origin    string      `json:"origin"`    // Publishing process; consumers skip their own events
	Timestamp int64       `json:"timestamp"` // Unix timestamp when event occurred
	Key       model.Key   `json:"key"`
	Patch     model.Patch `json:"patch"`
}

// NewReconciledEvent creates an event for a mutation the server confirmed.
func NewReconciledEvent(origin string, key model.Key, patch model.Patch) ReconcileEvent {
	return ReconcileEvent{
		Type:      EventReconciled,
		Origin:    origin,
		Timestamp: time.Now().Unix(),
		Key:       key,
		Patch:     patch,
	}
}

// NewRolledBackEvent creates an event carrying the fields restored after a
// failed mutation.
func NewRolledBackEvent(origin string, key model.Key, restored model.Patch) ReconcileEvent {
	return ReconcileEvent{
		Type:      EventRolledBack,
		Origin:    origin,
		Timestamp: time.Now().Unix(),
		Key:       key,
		Patch:     restored,
	}
}

// NewCountersRefreshedEvent creates an event for refreshed post counters.
func NewCountersRefreshedEvent(origin string, postID int64, patch model.Patch) ReconcileEvent {
	return ReconcileEvent{
		Type:      EventCountersRefreshed,
		Origin:    origin,
		Timestamp: time.Now().Unix(),
		Key:       model.PostKey(postID),
		Patch:     patch,
	}
}

// NewCommentRemovedEvent creates an event for a hard-deleted comment.
func NewCommentRemovedEvent(origin string, commentID int64) ReconcileEvent {
	return ReconcileEvent{
		Type:      EventCommentRemoved,
		Origin:    origin,
		Timestamp: time.Now().Unix(),
		Key:       model.CommentKey(commentID),
	}
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so we serialize to JSON in a "data" field.
func (e ReconcileEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseReconcileEvent parses a ReconcileEvent from Redis stream message values.
func ParseReconcileEvent(values map[string]interface{}) (ReconcileEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return ReconcileEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event ReconcileEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return ReconcileEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	if !event.Key.Kind.Valid() {
		return ReconcileEvent{}, fmt.Errorf("event key %s: %w", event.Key, model.ErrUnknownKind)
	}
	return event, nil
}
