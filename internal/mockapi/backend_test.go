package mockapi

import (
	"context"
	"errors"
	"testing"
	"time"

	"campusfeed/internal/model"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b := NewBackend()
	b.SetClock(func() time.Time { return time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC) })
	SeedDemo(b)
	return b
}

func TestToggleLike_Roundtrip(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	// Alice already likes post 1 (10 likes).
	res, err := b.ToggleLike(ctx, DemoAlice, model.KindPost, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsLiked || res.LikesCount != 9 {
		t.Errorf("expected unlike to 9, got %+v", res)
	}

	res, _ = b.ToggleLike(ctx, DemoAlice, model.KindPost, 1)
	if !res.IsLiked || res.LikesCount != 10 {
		t.Errorf("expected like to 10, got %+v", res)
	}
}

func TestToggleLike_NeverNegative(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	b.LikePost(DemoBob, 3) // recorded like, counter still 0

	res, _ := b.ToggleLike(ctx, DemoBob, model.KindPost, 3)

	if res.LikesCount != 0 {
		t.Errorf("expected counter clamped at 0, got %d", res.LikesCount)
	}
}

func TestToggleLike_Errors(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	tests := []struct {
		name string
		kind model.Kind
		id   int64
		want error
	}{
		{"missing post", model.KindPost, 404, model.ErrPostNotFound},
		{"missing comment", model.KindComment, 404, model.ErrCommentNotFound},
		{"poll", model.KindPoll, 1, model.ErrNotLikeable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.ToggleLike(ctx, DemoAlice, tt.kind, tt.id)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestToggleFavorite(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	res, err := b.ToggleFavorite(ctx, DemoBob, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsFavorited || res.FavoritesCount != 3 {
		t.Errorf("expected {true 3}, got %+v", res)
	}

	l, _ := b.GetListing(ctx, DemoBob, 1)
	if !l.IsFavorited || l.FavoritesCount != 3 {
		t.Errorf("listing not updated: %+v", l)
	}
	if l, _ := b.GetListing(ctx, DemoAlice, 1); l.IsFavorited {
		t.Error("favorite leaked to another viewer")
	}

	res, _ = b.ToggleFavorite(ctx, DemoBob, 1)
	if res.IsFavorited || res.FavoritesCount != 2 {
		t.Errorf("expected {false 2}, got %+v", res)
	}

	b.ToggleFavorite(ctx, DemoBob, 2)
	res, _ = b.ToggleFavorite(ctx, DemoBob, 2)
	if res.FavoritesCount != 0 {
		t.Errorf("expected 0 favorites, got %d", res.FavoritesCount)
	}

	if _, err := b.ToggleFavorite(ctx, DemoBob, 99); !errors.Is(err, model.ErrListingNotFound) {
		t.Errorf("expected ErrListingNotFound, got %v", err)
	}

	listings, _ := b.ListListings(ctx, DemoBob)
	if len(listings) != 2 || listings[0].ID != 2 {
		t.Errorf("expected newest listing first, got %+v", listings)
	}
}

func TestVote(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	res, err := b.Vote(ctx, DemoCarol, 1, []int{1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalVotes != 7 || res.Options[1].Votes != 3 {
		t.Errorf("unexpected tally: %+v", res.PollTally)
	}
	if !res.HasVoted() {
		t.Error("expected has_voted")
	}

	if _, err := b.Vote(ctx, DemoCarol, 1, []int{0}); !errors.Is(err, model.ErrAlreadyVoted) {
		t.Errorf("expected ErrAlreadyVoted, got %v", err)
	}
	if _, err := b.Vote(ctx, DemoBob, 1, []int{0, 1}); !errors.Is(err, model.ErrMultipleNotAllowed) {
		t.Errorf("expected ErrMultipleNotAllowed, got %v", err)
	}
	if _, err := b.Vote(ctx, DemoBob, 1, []int{5}); !errors.Is(err, model.ErrInvalidOption) {
		t.Errorf("expected ErrInvalidOption, got %v", err)
	}
	if _, err := b.Vote(ctx, DemoBob, 9, []int{0}); !errors.Is(err, model.ErrPollNotFound) {
		t.Errorf("expected ErrPollNotFound, got %v", err)
	}
}

func TestVote_Closed(t *testing.T) {
	b := newTestBackend(t)
	closes := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	b.AddPost(model.Post{ID: 10, AuthorID: DemoBob, Body: "old poll", Poll: &model.Poll{
		ID: 2, PollTally: model.PollTally{Options: []model.PollOption{{Text: "yes"}, {Text: "no"}}, ClosesAt: &closes},
	}})

	_, err := b.Vote(context.Background(), DemoCarol, 2, []int{0})

	if !errors.Is(err, model.ErrPollClosed) {
		t.Errorf("expected ErrPollClosed, got %v", err)
	}
}

func TestEdit(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	res, err := b.Edit(ctx, DemoBob, model.KindComment, 1, "  Great news!  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Body != "Great news!" || !res.IsEdited {
		t.Errorf("unexpected result: %+v", res)
	}

	if _, err := b.Edit(ctx, DemoAlice, model.KindComment, 1, "x"); !errors.Is(err, model.ErrNotCommentOwner) {
		t.Errorf("expected ErrNotCommentOwner, got %v", err)
	}
	if _, err := b.Edit(ctx, DemoBob, model.KindComment, 1, "   "); !errors.Is(err, model.ErrBodyRequired) {
		t.Errorf("expected ErrBodyRequired, got %v", err)
	}
}

func TestEdit_DeletedComment(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	b.DeleteComment(ctx, DemoBob, 1) // has a reply, soft delete

	_, err := b.Edit(ctx, DemoBob, model.KindComment, 1, "back")

	if !errors.Is(err, model.ErrCommentDeleted) {
		t.Errorf("expected ErrCommentDeleted, got %v", err)
	}
}

func TestDeleteComment_SoftAndHard(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	res, err := b.DeleteComment(ctx, DemoBob, 1)
	if err != nil || res.Type != model.SoftDelete {
		t.Fatalf("expected soft delete, got %+v err=%v", res, err)
	}
	post, _ := b.GetPost(ctx, DemoBob, 1)
	if post.CommentsCount != 4 {
		t.Errorf("soft delete changed comments_count: %d", post.CommentsCount)
	}

	res, err = b.DeleteComment(ctx, DemoBob, 4)
	if err != nil || res.Type != model.HardDelete {
		t.Fatalf("expected hard delete, got %+v err=%v", res, err)
	}
	post, _ = b.GetPost(ctx, DemoBob, 1)
	if post.CommentsCount != 3 {
		t.Errorf("expected comments_count 3, got %d", post.CommentsCount)
	}

	comments, _ := b.ListComments(ctx, DemoBob, 1)
	for _, c := range comments {
		if c.ID == 4 {
			t.Error("hard-deleted comment still listed")
		}
		if c.ID == 1 && (!c.IsDeleted || c.Body != model.DeletedPlaceholder) {
			t.Errorf("soft-deleted comment not marked: %+v", c)
		}
	}
}

func TestCreateComment(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	parent := int64(1)

	c, err := b.CreateComment(ctx, DemoCarol, 1, model.CreateCommentRequest{Body: "me too", ParentID: &parent})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ID == 0 || c.ParentID == nil || *c.ParentID != 1 || c.AuthorID != DemoCarol {
		t.Errorf("unexpected comment: %+v", c)
	}

	post, _ := b.GetPost(ctx, DemoCarol, 1)
	if post.CommentsCount != 5 {
		t.Errorf("expected comments_count 5, got %d", post.CommentsCount)
	}

	if _, err := b.CreateComment(ctx, DemoCarol, 1, model.CreateCommentRequest{Body: ""}); !errors.Is(err, model.ErrBodyRequired) {
		t.Errorf("expected ErrBodyRequired, got %v", err)
	}
	other := int64(1)
	if _, err := b.CreateComment(ctx, DemoCarol, 2, model.CreateCommentRequest{Body: "x", ParentID: &other}); !errors.Is(err, model.ErrParentMismatch) {
		t.Errorf("expected ErrParentMismatch, got %v", err)
	}
}

func TestInjectFailure(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	b.InjectFailure(ErrUnavailable)

	if _, err := b.ToggleLike(ctx, DemoAlice, model.KindPost, 1); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}

	b.InjectFailure(nil)
	if _, err := b.ToggleLike(ctx, DemoAlice, model.KindPost, 1); err != nil {
		t.Errorf("unexpected error after clearing failure: %v", err)
	}
}

func TestListPosts_ViewerRelative(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	alice, _ := b.ListPosts(ctx, DemoAlice)
	bob, _ := b.ListPosts(ctx, DemoBob)

	if len(alice) != 3 || alice[0].ID != 3 {
		t.Fatalf("expected newest first, got %d posts first=%d", len(alice), alice[0].ID)
	}
	if !alice[2].IsLiked || bob[2].IsLiked {
		t.Errorf("is_liked not viewer relative: alice=%t bob=%t", alice[2].IsLiked, bob[2].IsLiked)
	}
	if alice[1].Poll == nil || alice[1].Poll.ID != 1 {
		t.Error("poll not attached to post 2")
	}

	mine, _ := b.ListUserPosts(ctx, DemoBob, DemoAlice)
	if len(mine) != 2 {
		t.Errorf("expected 2 posts by alice, got %d", len(mine))
	}
}
