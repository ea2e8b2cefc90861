package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"campusfeed/internal/api"
	"campusfeed/internal/mockapi"
	"campusfeed/internal/model"
	transport "campusfeed/internal/transport/http"
)

func newTestServer(t *testing.T) (*mockapi.Backend, *httptest.Server) {
	t.Helper()
	backend := mockapi.NewBackend()
	mockapi.SeedDemo(backend)
	srv := httptest.NewServer(transport.NewRouter(transport.RouterConfig{Backend: backend}))
	t.Cleanup(srv.Close)
	return backend, srv
}

func TestHTTPClient_ToggleLike(t *testing.T) {
	_, srv := newTestServer(t)
	c := api.NewHTTPClient(srv.URL, api.WithUserID(mockapi.DemoBob))

	res, err := c.ToggleLike(context.Background(), model.KindPost, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsLiked || res.LikesCount != 11 {
		t.Errorf("expected {true 11}, got %+v", res)
	}
}

func TestHTTPClient_CommentLikeAndEdit(t *testing.T) {
	_, srv := newTestServer(t)
	c := api.NewHTTPClient(srv.URL, api.WithUserID(mockapi.DemoBob))
	ctx := context.Background()

	like, err := c.ToggleLike(ctx, model.KindComment, 1)
	if err != nil || !like.IsLiked || like.LikesCount != 3 {
		t.Fatalf("unexpected like result %+v err=%v", like, err)
	}

	edit, err := c.SubmitEdit(ctx, model.KindComment, 1, "edited")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if edit.Body != "edited" || !edit.IsEdited || edit.UpdatedAt.IsZero() {
		t.Errorf("unexpected edit result: %+v", edit)
	}
}

func TestHTTPClient_RequiresUser(t *testing.T) {
	_, srv := newTestServer(t)
	c := api.NewHTTPClient(srv.URL)

	_, err := c.ToggleLike(context.Background(), model.KindPost, 1)

	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestHTTPClient_ErrorEnvelope(t *testing.T) {
	_, srv := newTestServer(t)
	c := api.NewHTTPClient(srv.URL, api.WithUserID(mockapi.DemoCarol))
	ctx := context.Background()

	if _, err := c.SubmitVote(ctx, 1, []int{0}); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}

	_, err := c.SubmitVote(ctx, 1, []int{1})
	if !errors.Is(err, model.ErrAlreadyVoted) {
		t.Errorf("expected ErrAlreadyVoted through the envelope, got %v", err)
	}
	if api.IsRetryable(err) {
		t.Error("a rejected vote is not retryable")
	}

	_, err = c.GetPost(ctx, 404)
	if !api.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestHTTPClient_Unavailable(t *testing.T) {
	backend, srv := newTestServer(t)
	backend.InjectFailure(mockapi.ErrUnavailable)
	c := api.NewHTTPClient(srv.URL, api.WithUserID(mockapi.DemoBob))

	_, err := c.ToggleLike(context.Background(), model.KindPost, 1)

	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %v", err)
	}
	if !api.IsRetryable(err) {
		t.Error("503 should be retryable")
	}
}

func TestHTTPClient_CommentsLifecycle(t *testing.T) {
	_, srv := newTestServer(t)
	c := api.NewHTTPClient(srv.URL, api.WithUserID(mockapi.DemoCarol))
	ctx := context.Background()

	created, err := c.SubmitComment(ctx, 3, "is it yours?", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.PostID != 3 || created.AuthorID != mockapi.DemoCarol {
		t.Errorf("unexpected comment: %+v", created)
	}

	comments, err := c.ListComments(ctx, 3)
	if err != nil || len(comments) != 1 {
		t.Fatalf("expected 1 comment, got %d err=%v", len(comments), err)
	}

	res, err := c.DeleteComment(ctx, created.ID)
	if err != nil || res.Type != model.HardDelete {
		t.Fatalf("expected hard delete, got %+v err=%v", res, err)
	}

	post, err := c.GetPost(ctx, 3)
	if err != nil || post.CommentsCount != 0 {
		t.Errorf("expected comments_count 0, got %d err=%v", post.CommentsCount, err)
	}
}

func TestHTTPClient_Lists(t *testing.T) {
	_, srv := newTestServer(t)
	c := api.NewHTTPClient(srv.URL, api.WithUserID(mockapi.DemoAlice))
	ctx := context.Background()

	feed, err := c.ListPosts(ctx)
	if err != nil || len(feed) != 3 {
		t.Fatalf("expected 3 posts, got %d err=%v", len(feed), err)
	}

	mine, err := c.ListUserPosts(ctx, mockapi.DemoBob)
	if err != nil || len(mine) != 1 || mine[0].Poll == nil {
		t.Fatalf("expected bob's poll post, got %+v err=%v", mine, err)
	}
}

func TestHTTPClient_EditEmptyBody(t *testing.T) {
	_, srv := newTestServer(t)
	c := api.NewHTTPClient(srv.URL, api.WithUserID(mockapi.DemoAlice))

	_, err := c.SubmitEdit(context.Background(), model.KindPost, 1, "   ")

	if !errors.Is(err, model.ErrBodyRequired) {
		t.Errorf("expected ErrBodyRequired, got %v", err)
	}
}

func TestHTTPClient_Favorite(t *testing.T) {
	_, srv := newTestServer(t)
	c := api.NewHTTPClient(srv.URL, api.WithUserID(mockapi.DemoAlice))
	ctx := context.Background()

	res, err := c.ToggleFavorite(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsFavorited || res.FavoritesCount != 3 {
		t.Errorf("expected {true 3}, got %+v", res)
	}

	listing, err := c.GetListing(ctx, 1)
	if err != nil || !listing.IsFavorited || listing.FavoritesCount != 3 {
		t.Errorf("unexpected listing %+v err=%v", listing, err)
	}

	listings, err := c.ListListings(ctx)
	if err != nil || len(listings) != 2 {
		t.Errorf("expected 2 listings, got %d err=%v", len(listings), err)
	}

	if _, err := c.ToggleFavorite(ctx, 99); !api.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}
