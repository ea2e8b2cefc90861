package store

import (
	"context"
	"sync"

	"campusfeed/internal/model"
)

// Mailbox hands a pending partial update from the view that produced it to a
// view that only re-reads its data when it becomes active again.
//
// Contract: at most one entry per key. Post overwrites whatever is pending for
// the key; Take reads and removes it atomically. A consumer view calls Take
// for every entity it displays when it resumes, and merges what it gets into
// its render-local copy.
type Mailbox interface {
	// Post stores patch as the pending update for key, replacing any previous one.
	Post(ctx context.Context, key model.Key, patch model.Patch) error

	// Take returns and clears the pending update for key.
	// found is false when nothing is pending.
	Take(ctx context.Context, key model.Key) (patch model.Patch, found bool, err error)
}

// MemoryMailbox is the in-process Mailbox.
type MemoryMailbox struct {
	mu    sync.Mutex
	slots map[model.Key]model.Patch
}

// NewMemoryMailbox creates an empty in-process mailbox.
func NewMemoryMailbox() *MemoryMailbox {
	return &MemoryMailbox{slots: make(map[model.Key]model.Patch)}
}

func (m *MemoryMailbox) Post(_ context.Context, key model.Key, patch model.Patch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[key] = patch
	return nil
}

func (m *MemoryMailbox) Take(_ context.Context, key model.Key) (model.Patch, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.slots[key]
	if ok {
		delete(m.slots, key)
	}
	return p, ok, nil
}

// Pending returns the number of undrained entries.
func (m *MemoryMailbox) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.slots)
}
