// Package store owns the per-entity interactive state shared by every view:
// the EntityCache, the pending-update Mailbox and the scratch cache.
//
// A Store is created once at application start and passed by reference to
// each consumer. Views read snapshots from it; only the optimistic mutator
// writes interactive fields.
package store

import (
	"context"
	"log"
	"sync"

	"campusfeed/internal/model"
	"campusfeed/internal/scratch"
)

// Store bundles the cache with its side channels.
type Store struct {
	cache   *EntityCache
	mailbox Mailbox
	scratch scratch.Scratch

	mu      sync.Mutex
	holders map[model.Key]int
}

// Option configures a Store.
type Option func(*Store)

// WithMailbox replaces the default in-memory mailbox.
func WithMailbox(m Mailbox) Option {
	return func(s *Store) {
		s.mailbox = m
	}
}

// WithScratch replaces the default in-memory scratch cache.
func WithScratch(sc scratch.Scratch) Option {
	return func(s *Store) {
		s.scratch = sc
	}
}

// New creates a Store with in-memory backends unless overridden.
func New(opts ...Option) *Store {
	s := &Store{
		cache:   NewEntityCache(),
		mailbox: NewMemoryMailbox(),
		scratch: scratch.NewMemory(),
		holders: make(map[model.Key]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Cache() *EntityCache      { return s.cache }
func (s *Store) Mailbox() Mailbox         { return s.mailbox }
func (s *Store) Scratch() scratch.Scratch { return s.scratch }

// Get is a shortcut for Cache().Get.
func (s *Store) Get(key model.Key) (model.Snapshot, bool) {
	return s.cache.Get(key)
}

// Seed merges server-provided state into the cache. It is used when a view
// loads data, not for interactive mutations.
func (s *Store) Seed(key model.Key, u model.Update) model.Snapshot {
	return s.cache.Merge(key, u)
}

// Track records that a view holds a render-local copy of the given entities.
// Reconciled updates for tracked keys are also posted to the mailbox.
func (s *Store) Track(keys ...model.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		s.holders[k]++
	}
}

// Untrack releases keys previously passed to Track.
func (s *Store) Untrack(keys ...model.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		if s.holders[k] <= 1 {
			delete(s.holders, k)
			continue
		}
		s.holders[k]--
	}
}

// IsTracked reports whether some detached view holds key.
func (s *Store) IsTracked(key model.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.holders[key] > 0
}

// Propagate posts u to the mailbox when a detached view holds key.
// Failures are logged; a missed handoff only delays the view until its next reload.
func (s *Store) Propagate(ctx context.Context, key model.Key, u model.Update) bool {
	if !s.IsTracked(key) {
		return false
	}
	if err := s.mailbox.Post(ctx, key, model.AsPatch(u)); err != nil {
		log.Printf("[Store] Propagate FAILED: key=%s err=%v", key, err)
		return false
	}
	return true
}

// Drain takes the pending mailbox entries of keys. Entries that fail to read
// are skipped.
func (s *Store) Drain(ctx context.Context, keys []model.Key) map[model.Key]model.Patch {
	out := make(map[model.Key]model.Patch)
	for _, k := range keys {
		p, ok, err := s.mailbox.Take(ctx, k)
		if err != nil {
			log.Printf("[Store] Drain FAILED: key=%s err=%v", k, err)
			continue
		}
		if ok {
			out[k] = p
		}
	}
	return out
}
