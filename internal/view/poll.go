package view

import (
	"context"
	"log"
	"slices"
	"sync"
	"time"

	"campusfeed/internal/model"
	"campusfeed/internal/optimistic"
)

// PollWidget renders a poll and collects the viewer's selection. The tally is
// always read from the shared cache.
type PollWidget struct {
	deps Deps
	poll model.Poll
	now  func() time.Time

	mu       sync.Mutex
	selected []int
}

var _ View = (*PollWidget)(nil)

func NewPollWidget(deps Deps, poll model.Poll) *PollWidget {
	return &PollWidget{deps: deps, poll: poll, now: time.Now}
}

// Mount seeds the tally if nothing is cached yet. When the server does not
// report the viewer's votes, the selection remembered in the scratch cache
// is used.
func (w *PollWidget) Mount(ctx context.Context) error {
	st := w.deps.Store
	key := w.poll.Key()

	tally := w.poll.PollTally.Clone()
	if s, ok := st.Get(key); ok && s.Poll != nil {
		tally = s.Poll.Clone()
	} else {
		st.Seed(key, model.PollUpdate{Tally: tally})
	}

	if tally.HasVoted() {
		return nil
	}
	votes, found, err := st.Scratch().PollVotes(ctx, w.poll.ID)
	if err != nil {
		log.Printf("[PollWidget] scratch lookup FAILED: poll=%d err=%v", w.poll.ID, err)
		return nil
	}
	if found && len(votes) > 0 {
		tally.UserVotes = votes
		st.Seed(key, model.PollUpdate{Tally: tally})
		log.Printf("[PollWidget] has-voted restored from scratch: poll=%d votes=%v", w.poll.ID, votes)
	}
	return nil
}

// Resume is a no-op: the widget has no local copy.
func (w *PollWidget) Resume(context.Context) error { return nil }

func (w *PollWidget) Unmount() {}

// Question returns the poll question.
func (w *PollWidget) Question() string { return w.poll.Question }

// Tally returns the current tally.
func (w *PollWidget) Tally() model.PollTally {
	if s, ok := w.deps.Store.Get(w.poll.Key()); ok && s.Poll != nil {
		return *s.Poll
	}
	return w.poll.PollTally.Clone()
}

func (w *PollWidget) HasVoted() bool { return w.Tally().HasVoted() }

func (w *PollWidget) Closed() bool { return w.Tally().Closed(w.now()) }

// Toggle selects or deselects an option. On a single choice poll selecting
// an option replaces the previous selection.
func (w *PollWidget) Toggle(index int) error {
	t := w.Tally()
	switch {
	case t.Closed(w.now()):
		return model.ErrPollClosed
	case t.HasVoted():
		return model.ErrAlreadyVoted
	case index < 0 || index >= len(t.Options):
		return model.ErrInvalidOption
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if i := slices.Index(w.selected, index); i >= 0 {
		w.selected = slices.Delete(w.selected, i, i+1)
		return nil
	}
	if !t.AllowMultiple {
		w.selected = w.selected[:0]
	}
	w.selected = append(w.selected, index)
	return nil
}

// Selected returns the current selection in ascending order.
func (w *PollWidget) Selected() []int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return model.NormalizeSelection(w.selected)
}

// Vote submits the selection. At least one option must be selected.
func (w *PollWidget) Vote(ctx context.Context) (*optimistic.Pending, error) {
	sel := w.Selected()
	if len(sel) == 0 {
		return nil, model.ErrNoPollSelection
	}

	p, err := w.deps.Mutator.SubmitVote(ctx, w.poll.ID, sel)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.selected = nil
	w.mu.Unlock()
	return p, nil
}
