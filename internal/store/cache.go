package store

import (
	"sync"

	"campusfeed/internal/model"
)

// EntityCache maps entity keys to their last-known snapshot.
// It performs no I/O and is safe for concurrent use; every method is atomic.
type EntityCache struct {
	mu      sync.RWMutex
	entries map[model.Key]model.Snapshot
}

// NewEntityCache creates an empty cache.
func NewEntityCache() *EntityCache {
	return &EntityCache{entries: make(map[model.Key]model.Snapshot)}
}

// Get returns a copy of the snapshot for key.
func (c *EntityCache) Get(key model.Key) (model.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.entries[key]
	if !ok {
		return model.Snapshot{}, false
	}
	return s.Clone(), true
}

// Merge overwrites the fields present in u and returns the new snapshot.
// An unknown key starts from a zero snapshot. Merge never fails.
func (c *EntityCache) Merge(key model.Key, u model.Update) model.Snapshot {
	patch := model.AsPatch(u)

	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.current(key)
	s = patch.ApplyTo(s)
	c.entries[key] = s
	return s.Clone()
}

// SetFlag sets a single boolean interactive field.
func (c *EntityCache) SetFlag(key model.Key, flag model.Flag, value bool) model.Snapshot {
	var p model.Patch
	switch flag {
	case model.FlagLiked:
		p.IsLiked = &value
	case model.FlagEdited:
		p.IsEdited = &value
	case model.FlagDeleted:
		p.IsDeleted = &value
	}
	return c.Merge(key, p)
}

// TransformFunc computes a tentative patch from the current snapshot. found is
// false when the key has never been written.
type TransformFunc func(current model.Snapshot, found bool) (model.Patch, error)

// Transform reads the current snapshot, computes a patch with fn and writes it,
// all under one lock. It returns the pre-transform values of the patched fields
// and the tentative patch itself. When fn fails nothing is written.
func (c *EntityCache) Transform(key model.Key, fn TransformFunc) (previous, tentative model.Patch, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, found := c.entries[key]
	if !found {
		s = model.Snapshot{Key: key}
	}

	tentative, err = fn(s.Clone(), found)
	if err != nil {
		return model.Patch{}, model.Patch{}, err
	}

	previous = s.Capture(tentative)
	c.entries[key] = tentative.ApplyTo(s)
	return previous, tentative, nil
}

// RestoreIf rolls the fields of expected back to previous when the cached
// entity still holds all of expected. Nothing is written when any of those
// fields changed since. It returns the restored subset and the resulting
// snapshot.
func (c *EntityCache) RestoreIf(key model.Key, expected, previous model.Patch) (model.Patch, model.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.entries[key]
	if !ok {
		return model.Patch{}, model.Snapshot{Key: key}
	}

	restored := s.RestoreIf(expected, previous)
	c.entries[key] = s
	return restored, s.Clone()
}

// Delete drops key from the cache.
func (c *EntityCache) Delete(key model.Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of cached entities.
func (c *EntityCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *EntityCache) current(key model.Key) model.Snapshot {
	if s, ok := c.entries[key]; ok {
		return s
	}
	return model.Snapshot{Key: key}
}
