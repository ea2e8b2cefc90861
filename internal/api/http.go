package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"campusfeed/internal/httputil"
	"campusfeed/internal/model"
	"campusfeed/internal/transport/http/middleware"
)

// HTTPClient implements Client with JSON over HTTP.
type HTTPClient struct {
	baseURL string
	userID  int64
	client  *http.Client
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithUserID sets the acting user sent in X-User-ID.
func WithUserID(id int64) Option {
	return func(c *HTTPClient) {
		c.userID = id
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		c.client = hc
	}
}

// NewHTTPClient creates a client for the server at baseURL.
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) ToggleLike(ctx context.Context, kind model.Kind, id int64) (model.LikeResult, error) {
	var res model.LikeResult
	if !kind.Likeable() {
		return res, fmt.Errorf("toggle like %s: %w", kind, model.ErrNotLikeable)
	}
	path := fmt.Sprintf("/%ss/%d/like", kind, id)
	err := c.do(ctx, http.MethodPost, path, nil, &res)
	return res, err
}

func (c *HTTPClient) SubmitVote(ctx context.Context, pollID int64, indices []int) (model.PollResult, error) {
	var res model.PollResult
	path := fmt.Sprintf("/polls/%d/vote", pollID)
	err := c.do(ctx, http.MethodPost, path, model.VoteRequest{OptionIndices: indices}, &res)
	return res, err
}

func (c *HTTPClient) SubmitEdit(ctx context.Context, kind model.Kind, id int64, body string) (model.EditResult, error) {
	var res model.EditResult
	if !kind.Likeable() {
		return res, fmt.Errorf("edit %s: %w", kind, model.ErrUnknownKind)
	}
	path := fmt.Sprintf("/%ss/%d", kind, id)
	err := c.do(ctx, http.MethodPatch, path, model.EditRequest{Body: body}, &res)
	return res, err
}

func (c *HTTPClient) SubmitComment(ctx context.Context, postID int64, body string, parentID *int64) (model.Comment, error) {
	var res model.Comment
	path := fmt.Sprintf("/posts/%d/comments", postID)
	err := c.do(ctx, http.MethodPost, path, model.CreateCommentRequest{Body: body, ParentID: parentID}, &res)
	return res, err
}

func (c *HTTPClient) DeleteComment(ctx context.Context, commentID int64) (model.DeleteResult, error) {
	var res model.DeleteResult
	path := fmt.Sprintf("/comments/%d", commentID)
	err := c.do(ctx, http.MethodDelete, path, nil, &res)
	return res, err
}

func (c *HTTPClient) ToggleFavorite(ctx context.Context, listingID int64) (model.FavoriteResult, error) {
	var res model.FavoriteResult
	path := fmt.Sprintf("/listings/%d/favorite", listingID)
	err := c.do(ctx, http.MethodPost, path, nil, &res)
	return res, err
}

func (c *HTTPClient) GetPost(ctx context.Context, postID int64) (model.Post, error) {
	var res model.Post
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/posts/%d", postID), nil, &res)
	return res, err
}

func (c *HTTPClient) ListPosts(ctx context.Context) ([]model.Post, error) {
	var res model.PostListResponse
	err := c.do(ctx, http.MethodGet, "/posts/feed", nil, &res)
	return res.Posts, err
}

func (c *HTTPClient) ListUserPosts(ctx context.Context, userID int64) ([]model.Post, error) {
	var res model.PostListResponse
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d/posts", userID), nil, &res)
	return res.Posts, err
}

func (c *HTTPClient) ListComments(ctx context.Context, postID int64) ([]model.Comment, error) {
	var res model.CommentListResponse
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/posts/%d/comments", postID), nil, &res)
	return res.Comments, err
}

func (c *HTTPClient) GetListing(ctx context.Context, listingID int64) (model.Listing, error) {
	var res model.Listing
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/listings/%d", listingID), nil, &res)
	return res, err
}

func (c *HTTPClient) ListListings(ctx context.Context) ([]model.Listing, error) {
	var res model.ListingListResponse
	err := c.do(ctx, http.MethodGet, "/listings", nil, &res)
	return res.Listings, err
}

// do sends one request and decodes either out or the error envelope.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userID > 0 {
		req.Header.Set(middleware.UserIDHeader, strconv.FormatInt(c.userID, 10))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}

	var env httputil.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&env); err == nil && env.Error.Code != "" {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
		return apiErr
	}

	apiErr.Code = httputil.ErrCodeInternal
	apiErr.Message = http.StatusText(resp.StatusCode)
	return apiErr
}
