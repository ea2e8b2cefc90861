// Package view holds the screens of the feed client: the feed, a post's detail
// page, a user's post list and the poll widget.
//
// Views that keep render-local copies (Feed, UserPosts) register their keys
// with the store while mounted and pull pending updates when they become
// active again: subscribe on Mount, drain on Resume, release on Unmount.
// PostDetail and PollWidget read the shared cache directly.
package view

import (
	"context"
	"errors"
	"log"
	"slices"
	"sync"
	"time"

	"campusfeed/internal/api"
	"campusfeed/internal/model"
	"campusfeed/internal/notice"
	"campusfeed/internal/optimistic"
	"campusfeed/internal/store"
)

// View errors
var (
	ErrNotMounted   = errors.New("view is not mounted")
	ErrReplyTooDeep = errors.New("reply depth limit reached")
	ErrPostNotShown = errors.New("post is not displayed in this view")
)

// View is the lifecycle every screen implements.
type View interface {
	// Mount loads the view's data and subscribes to updates.
	Mount(ctx context.Context) error
	// Resume is called when the view becomes active again.
	Resume(ctx context.Context) error
	// Unmount releases subscriptions.
	Unmount()
}

// Deps are the collaborators shared by all views.
type Deps struct {
	Store         *store.Store
	Mutator       *optimistic.Mutator
	Client        api.Client
	Notifier      notice.Notifier
	MaxReplyDepth int
}

func (d Deps) notify(op string, key model.Key, msg string, err error) {
	if d.Notifier == nil {
		return
	}
	d.Notifier.Notify(notice.Notice{
		Level:   notice.LevelError,
		Key:     key,
		Op:      op,
		Message: msg,
		Err:     err,
		At:      time.Now(),
	})
}

// seedPost writes a freshly loaded post, and its poll, into the cache.
func seedPost(st *store.Store, p model.Post) {
	st.Seed(p.Key(), model.PostPatch(p))
	if p.Poll != nil {
		st.Seed(p.Poll.Key(), model.PollUpdate{Tally: p.Poll.PollTally})
	}
}

// postList is a render-local list of posts whose keys are tracked in the
// store while the owning view is mounted.
type postList struct {
	name string
	st   *store.Store

	mu      sync.Mutex
	posts   []model.Post
	keys    []model.Key
	mounted bool

	inflight sync.WaitGroup
}

func (l *postList) load(posts []model.Post) {
	keys := make([]model.Key, len(posts))
	for i, p := range posts {
		keys[i] = p.Key()
		seedPost(l.st, p)
	}

	l.mu.Lock()
	old := l.keys
	wasMounted := l.mounted
	l.posts = posts
	l.keys = keys
	l.mounted = true
	l.mu.Unlock()

	if wasMounted {
		l.st.Untrack(old...)
	}
	l.st.Track(keys...)
}

func (l *postList) snapshot() []model.Post {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := slices.Clone(l.posts)
	for i := range out {
		if out[i].Poll != nil {
			poll := *out[i].Poll
			poll.PollTally = poll.PollTally.Clone()
			out[i].Poll = &poll
		}
	}
	return out
}

// apply merges patch into the local copy of key. It reports whether the post
// is displayed.
func (l *postList) apply(key model.Key, patch model.Patch) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.posts {
		if l.posts[i].Key() == key {
			patch.ApplyToPost(&l.posts[i])
			return true
		}
		if p := l.posts[i].Poll; p != nil && p.Key() == key {
			patch.ApplyToPost(&l.posts[i])
			return true
		}
	}
	return false
}

func (l *postList) has(key model.Key) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Contains(l.keys, key)
}

// drain takes every pending mailbox entry of the displayed posts.
func (l *postList) drain(ctx context.Context) int {
	l.mu.Lock()
	keys := slices.Clone(l.keys)
	l.mu.Unlock()

	pending := l.st.Drain(ctx, keys)
	for key, patch := range pending {
		l.apply(key, patch)
	}

	log.Printf("[%s] Resume OK: posts=%d applied=%d", l.name, len(keys), len(pending))
	return len(pending)
}

// follow applies the tentative state of p to the local copy now, and the
// cached outcome once the call resolves.
func (l *postList) follow(p *optimistic.Pending) {
	l.apply(p.Key, p.Tentative)

	l.inflight.Add(1)
	go func() {
		defer l.inflight.Done()
		<-p.Done()
		if s, ok := l.st.Get(p.Key); ok {
			l.apply(p.Key, s.Capture(p.Tentative))
		}
	}()
}

func (l *postList) release() {
	l.inflight.Wait()

	l.mu.Lock()
	keys := l.keys
	wasMounted := l.mounted
	l.mounted = false
	l.mu.Unlock()

	if wasMounted {
		l.st.Untrack(keys...)
	}
}

func (l *postList) isMounted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mounted
}
