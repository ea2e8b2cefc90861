package model

import (
	"errors"
	"slices"
	"time"
)

// Poll is a poll attached to a post.
type Poll struct {
	ID       int64  `json:"id"`
	PostID   int64  `json:"post_id"`
	Question string `json:"question"`
	PollTally
}

// Key returns the cache key of the poll.
func (p Poll) Key() Key { return PollKey(p.ID) }

// PollOption is one answer of a poll.
type PollOption struct {
	Text       string  `json:"text"`
	Votes      int     `json:"votes"`
	Percentage float64 `json:"percentage"`
}

// PollTally is the mutable, vote-dependent part of a poll.
type PollTally struct {
	Options       []PollOption `json:"options"`
	TotalVotes    int          `json:"total_votes"`
	UserVotes     []int        `json:"user_votes,omitempty"`
	AllowMultiple bool         `json:"allow_multiple"`
	ClosesAt      *time.Time   `json:"closes_at,omitempty"`
}

// HasVoted reports whether the viewer already voted.
func (t PollTally) HasVoted() bool { return len(t.UserVotes) > 0 }

// Closed reports whether the poll stopped accepting votes at now.
func (t PollTally) Closed(now time.Time) bool {
	return t.ClosesAt != nil && t.ClosesAt.Before(now)
}

// Clone returns a deep copy of t.
func (t PollTally) Clone() PollTally {
	t.Options = slices.Clone(t.Options)
	t.UserVotes = slices.Clone(t.UserVotes)
	if t.ClosesAt != nil {
		c := *t.ClosesAt
		t.ClosesAt = &c
	}
	return t
}

// Equal compares two tallies field by field.
func (t PollTally) Equal(o PollTally) bool {
	if t.TotalVotes != o.TotalVotes || t.AllowMultiple != o.AllowMultiple {
		return false
	}
	if (t.ClosesAt == nil) != (o.ClosesAt == nil) {
		return false
	}
	if t.ClosesAt != nil && !t.ClosesAt.Equal(*o.ClosesAt) {
		return false
	}
	return slices.Equal(t.Options, o.Options) && slices.Equal(t.UserVotes, o.UserVotes)
}

// Validate checks a vote selection against the poll rules.
func (t PollTally) Validate(indices []int, now time.Time) error {
	if len(indices) == 0 {
		return ErrNoPollSelection
	}
	if t.Closed(now) {
		return ErrPollClosed
	}
	if t.HasVoted() {
		return ErrAlreadyVoted
	}
	if !t.AllowMultiple && len(indices) > 1 {
		return ErrMultipleNotAllowed
	}
	for _, idx := range indices {
		if idx < 0 || idx >= len(t.Options) {
			return ErrInvalidOption
		}
	}
	return nil
}

// WithVote returns the tally after the viewer votes for indices: one vote per
// selected option and one more voter in total.
func (t PollTally) WithVote(indices []int) PollTally {
	out := t.Clone()
	for _, idx := range indices {
		if idx >= 0 && idx < len(out.Options) {
			out.Options[idx].Votes++
		}
	}
	out.TotalVotes++
	out.UserVotes = slices.Clone(indices)
	out.Recompute()
	return out
}

// Recompute refreshes every option's percentage of all option votes.
func (t *PollTally) Recompute() {
	var sum int
	for _, o := range t.Options {
		sum += o.Votes
	}
	for i := range t.Options {
		if sum == 0 {
			t.Options[i].Percentage = 0
			continue
		}
		t.Options[i].Percentage = float64(t.Options[i].Votes) / float64(sum) * 100
	}
}

// NormalizeSelection sorts indices and drops duplicates.
func NormalizeSelection(indices []int) []int {
	out := slices.Clone(indices)
	slices.Sort(out)
	return slices.Compact(out)
}

// VoteRequest is the request body for voting in a poll.
type VoteRequest struct {
	OptionIndices []int `json:"option_indices"`
}

// PollResult is the authoritative tally after a vote.
type PollResult struct {
	PollID int64 `json:"poll_id"`
	PollTally
}

// Poll errors
var (
	ErrPollNotFound       = errors.New("poll not found")
	ErrNoPollSelection    = errors.New("at least one option must be selected")
	ErrPollClosed         = errors.New("poll is closed")
	ErrAlreadyVoted       = errors.New("already voted")
	ErrMultipleNotAllowed = errors.New("multiple choice not allowed")
	ErrInvalidOption      = errors.New("invalid option index")
)
