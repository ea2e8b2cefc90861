// Package scratch is a small key-value cache for viewer-local interactive
// state that should outlive a single view: which entities the viewer liked and
// which poll options they voted for. It is a hint store, never the source of
// truth; the server answer always wins when both are known.
package scratch

import (
	"context"
	"slices"
	"sync"

	"campusfeed/internal/model"
)

// Scratch defines the scratch cache operations.
type Scratch interface {
	// SetLiked remembers the viewer's like flag for an entity.
	SetLiked(ctx context.Context, key model.Key, liked bool) error

	// Liked returns the remembered like flag. found=false if never stored.
	Liked(ctx context.Context, key model.Key) (liked bool, found bool, err error)

	// SetPollVotes remembers the option indices the viewer voted for.
	SetPollVotes(ctx context.Context, pollID int64, indices []int) error

	// PollVotes returns the remembered selection. found=false if never stored.
	PollVotes(ctx context.Context, pollID int64) (indices []int, found bool, err error)
}

// Memory is an in-process Scratch. Contents are lost on exit.
type Memory struct {
	mu    sync.RWMutex
	liked map[model.Key]bool
	votes map[int64][]int
}

// NewMemory creates an empty in-process scratch cache.
func NewMemory() *Memory {
	return &Memory{
		liked: make(map[model.Key]bool),
		votes: make(map[int64][]int),
	}
}

func (m *Memory) SetLiked(_ context.Context, key model.Key, liked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.liked[key] = liked
	return nil
}

func (m *Memory) Liked(_ context.Context, key model.Key) (bool, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	liked, ok := m.liked[key]
	return liked, ok, nil
}

func (m *Memory) SetPollVotes(_ context.Context, pollID int64, indices []int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.votes[pollID] = slices.Clone(indices)
	return nil
}

func (m *Memory) PollVotes(_ context.Context, pollID int64) ([]int, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.votes[pollID]
	return slices.Clone(v), ok, nil
}
