package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"campusfeed/internal/queue"
	"campusfeed/internal/store"
)

// Handler applies reconcile events published by other client processes of
// the same user to this process's store.
type Handler struct {
	store  *store.Store
	origin string
}

// NewHandler creates a handler for the process identified by origin. Events
// carrying the same origin are skipped.
func NewHandler(st *store.Store, origin string) *Handler {
	return &Handler{
		store:  st,
		origin: origin,
	}
}

// Origin returns the process id events are compared against.
func (h *Handler) Origin() string { return h.origin }

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.ReconcileEvent) error {
	startTime := time.Now()

	if event.Origin == h.origin {
		log.Printf("[Worker] HandleEvent SKIP: own event type=%s key=%s", event.Type, event.Key)
		return nil
	}

	var err error
	switch event.Type {
	case queue.EventReconciled, queue.EventCountersRefreshed:
		err = h.handleMerge(ctx, event)
	case queue.EventRolledBack:
		err = h.handleRolledBack(ctx, event)
	case queue.EventCommentRemoved:
		err = h.handleCommentRemoved(ctx, event)
	default:
		log.Printf("[Worker] Unknown event type: %s", event.Type)
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		log.Printf("[Worker] HandleEvent FAILED: type=%s key=%s duration=%v err=%v",
			event.Type, event.Key, time.Since(startTime), err)
		return err
	}

	log.Printf("[Worker] HandleEvent OK: type=%s key=%s duration=%v", event.Type, event.Key, time.Since(startTime))
	return nil
}

// handleMerge writes server-confirmed fields into the cache and hands them to
// detached views. Keys this process never loaded are not created in the cache;
// a partial patch would leave the other fields at zero.
func (h *Handler) handleMerge(ctx context.Context, event queue.ReconcileEvent) error {
	if event.Patch.IsEmpty() {
		return fmt.Errorf("event %s for %s carries no fields", event.Type, event.Key)
	}

	_, cached := h.store.Get(event.Key)
	if cached {
		h.store.Cache().Merge(event.Key, event.Patch)
	}
	posted := h.store.Propagate(ctx, event.Key, event.Patch)

	log.Printf("[Worker] Merge DONE: key=%s fields=%v cached=%t mailbox=%t",
		event.Key, event.Patch.Fields(), cached, posted)
	return nil
}

// handleRolledBack only logs: the tentative values of a foreign mutation never
// reached this process's cache, so there is nothing to undo here.
func (h *Handler) handleRolledBack(_ context.Context, event queue.ReconcileEvent) error {
	log.Printf("[Worker] RolledBack: key=%s fields=%v origin=%s", event.Key, event.Patch.Fields(), event.Origin)
	return nil
}

// handleCommentRemoved drops a hard-deleted comment from the cache.
func (h *Handler) handleCommentRemoved(_ context.Context, event queue.ReconcileEvent) error {
	h.store.Cache().Delete(event.Key)
	log.Printf("[Worker] CommentRemoved DONE: key=%s", event.Key)
	return nil
}
