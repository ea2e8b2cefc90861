package optimistic

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"campusfeed/internal/model"
	"campusfeed/internal/notice"
	"campusfeed/internal/queue"
	"campusfeed/internal/store"
)

// Operation names used in logs, metrics and notices.
const (
	OpLike     = "like"
	OpFavorite = "favorite"
	OpEdit     = "edit"
	OpVote     = "vote"
	OpComment  = "comment"
	OpDelete   = "delete_comment"
	OpRefresh  = "refresh"
)

// ToggleLike flips the like flag of a post or comment and moves its counter by
// exactly one, never below zero.
func (m *Mutator) ToggleLike(ctx context.Context, key model.Key) (*Pending, error) {
	if !key.Kind.Likeable() {
		return nil, m.reject(OpLike, key, fmt.Errorf("toggle like %s: %w", key, model.ErrNotLikeable))
	}

	return m.apply(ctx, mutation{
		op:        OpLike,
		key:       key,
		transform: flipTransform("toggle like", key),
		call: func(ctx context.Context) (model.Update, error) {
			res, err := m.client.ToggleLike(ctx, key.Kind, key.ID)
			if err != nil {
				return nil, err
			}
			return res.Update(), nil
		},
		failMsg:   "Could not update like",
		onSuccess: m.rememberLiked(key),
	})
}

// ToggleFavorite adds a market listing to the viewer's favorites or removes
// it. It follows the like protocol on the listing's flag and counter.
func (m *Mutator) ToggleFavorite(ctx context.Context, listingID int64) (*Pending, error) {
	key := model.ListingKey(listingID)

	return m.apply(ctx, mutation{
		op:        OpFavorite,
		key:       key,
		transform: flipTransform("toggle favorite", key),
		call: func(ctx context.Context) (model.Update, error) {
			res, err := m.client.ToggleFavorite(ctx, listingID)
			if err != nil {
				return nil, err
			}
			return res.Update(), nil
		},
		failMsg:   "Could not update favorites",
		onSuccess: m.rememberLiked(key),
	})
}

// flipTransform toggles the flag of a cached entity and moves its counter by
// one, clamped at zero.
func flipTransform(op string, key model.Key) store.TransformFunc {
	return func(cur model.Snapshot, found bool) (model.Patch, error) {
		if !found {
			return model.Patch{}, fmt.Errorf("%s %s: %w", op, key, model.ErrEntityNotCached)
		}
		liked := !cur.IsLiked
		count := cur.LikesCount + 1
		if !liked {
			count = max(0, cur.LikesCount-1)
		}
		return model.AsPatch(model.LikeUpdate{IsLiked: liked, LikesCount: count}), nil
	}
}

// rememberLiked stores the confirmed flag in the scratch cache.
func (m *Mutator) rememberLiked(key model.Key) func(ctx context.Context, p model.Patch) {
	return func(ctx context.Context, p model.Patch) {
		if p.IsLiked == nil {
			return
		}
		if err := m.store.Scratch().SetLiked(ctx, key, *p.IsLiked); err != nil {
			log.Printf("[Mutator] scratch SetLiked FAILED: key=%s err=%v", key, err)
		}
	}
}

// ApplyEdit replaces the body of a post or comment. Empty bodies and deleted
// comments are rejected before anything is written.
func (m *Mutator) ApplyEdit(ctx context.Context, key model.Key, body string) (*Pending, error) {
	if !key.Kind.Likeable() {
		return nil, m.reject(OpEdit, key, fmt.Errorf("edit %s: %w", key, model.ErrUnknownKind))
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, m.reject(OpEdit, key, model.ErrBodyRequired)
	}
	limit := model.MaxPostBodyLength
	if key.Kind == model.KindComment {
		limit = model.MaxCommentLength
	}
	if utf8.RuneCountInString(body) > limit {
		return nil, m.reject(OpEdit, key, model.ErrBodyTooLong)
	}

	return m.apply(ctx, mutation{
		op:  OpEdit,
		key: key,
		transform: func(cur model.Snapshot, found bool) (model.Patch, error) {
			if !found {
				return model.Patch{}, fmt.Errorf("edit %s: %w", key, model.ErrEntityNotCached)
			}
			if cur.IsDeleted {
				return model.Patch{}, model.ErrCommentDeleted
			}
			return model.AsPatch(model.EditUpdate{Body: body, IsEdited: true}), nil
		},
		call: func(ctx context.Context) (model.Update, error) {
			res, err := m.client.SubmitEdit(ctx, key.Kind, key.ID, body)
			if err != nil {
				return nil, err
			}
			return res.Update(), nil
		},
		failMsg: "Could not save changes",
	})
}

// SubmitVote records the viewer's vote in a poll: one more vote on every
// selected option and one more voter in total.
func (m *Mutator) SubmitVote(ctx context.Context, pollID int64, indices []int) (*Pending, error) {
	key := model.PollKey(pollID)
	indices = model.NormalizeSelection(indices)

	return m.apply(ctx, mutation{
		op:  OpVote,
		key: key,
		transform: func(cur model.Snapshot, found bool) (model.Patch, error) {
			if !found || cur.Poll == nil {
				return model.Patch{}, fmt.Errorf("vote %s: %w", key, model.ErrPollNotFound)
			}
			if err := cur.Poll.Validate(indices, m.now()); err != nil {
				return model.Patch{}, err
			}
			return model.AsPatch(model.PollUpdate{Tally: cur.Poll.WithVote(indices)}), nil
		},
		call: func(ctx context.Context) (model.Update, error) {
			res, err := m.client.SubmitVote(ctx, pollID, indices)
			if err != nil {
				return nil, err
			}
			return model.PollUpdate{Tally: res.PollTally}, nil
		},
		failMsg: "Could not submit vote",
		onSuccess: func(ctx context.Context, p model.Patch) {
			if err := m.store.Scratch().SetPollVotes(ctx, pollID, indices); err != nil {
				log.Printf("[Mutator] scratch SetPollVotes FAILED: poll=%d err=%v", pollID, err)
			}
		},
	})
}

// SubmitComment creates a comment or reply. It is not optimistic: the comment
// only appears once the server assigned it an id. The post counters are
// refreshed afterwards.
func (m *Mutator) SubmitComment(ctx context.Context, postID int64, body string, parentID *int64) (model.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return model.Comment{}, m.reject(OpComment, model.PostKey(postID), model.ErrBodyRequired)
	}
	if utf8.RuneCountInString(body) > model.MaxCommentLength {
		return model.Comment{}, m.reject(OpComment, model.PostKey(postID), model.ErrBodyTooLong)
	}

	ctx, span := m.tracer.Start(ctx, "mutator."+OpComment)
	defer span.End()

	c, err := m.client.SubmitComment(ctx, postID, body, parentID)
	if err != nil {
		m.fail(OpComment, model.PostKey(postID), "Could not send comment", err)
		span.RecordError(err)
		return model.Comment{}, fmt.Errorf("submit comment: %w", err)
	}

	m.store.Seed(c.Key(), model.CommentPatch(c))
	m.metrics.mutations.WithLabelValues(OpComment, OutcomeReconciled).Inc()
	log.Printf("[Mutator] %s OK: post=%d comment=%d", OpComment, postID, c.ID)

	if _, err := m.RefreshPost(ctx, postID); err != nil {
		log.Printf("[Mutator] refresh after comment FAILED: post=%d err=%v", postID, err)
	}
	return c, nil
}

// DeleteComment removes a comment. The server decides between a soft delete
// (replies exist, placeholder body) and a hard delete (entry dropped).
func (m *Mutator) DeleteComment(ctx context.Context, postID, commentID int64) (model.DeleteResult, error) {
	key := model.CommentKey(commentID)

	ctx, span := m.tracer.Start(ctx, "mutator."+OpDelete)
	defer span.End()

	res, err := m.client.DeleteComment(ctx, commentID)
	if err != nil {
		m.fail(OpDelete, key, "Could not delete comment", err)
		span.RecordError(err)
		return model.DeleteResult{}, fmt.Errorf("delete comment: %w", err)
	}

	switch res.Type {
	case model.SoftDelete:
		u := model.DeleteUpdate{Placeholder: model.DeletedPlaceholder}
		m.store.Cache().Merge(key, u)
		m.store.Propagate(ctx, key, u)
		m.publish(ctx, queue.NewReconciledEvent(m.origin, key, model.AsPatch(u)))
	default:
		m.store.Cache().Delete(key)
		m.publish(ctx, queue.NewCommentRemovedEvent(m.origin, commentID))
	}

	m.metrics.mutations.WithLabelValues(OpDelete, OutcomeReconciled).Inc()
	log.Printf("[Mutator] %s OK: post=%d comment=%d type=%s", OpDelete, postID, commentID, res.Type)

	if _, err := m.RefreshPost(ctx, postID); err != nil {
		log.Printf("[Mutator] refresh after delete FAILED: post=%d err=%v", postID, err)
	}
	return res, nil
}

// RefreshPost reloads a post and writes its counters to the cache and to the
// mailbox of detached views.
func (m *Mutator) RefreshPost(ctx context.Context, postID int64) (model.Post, error) {
	post, err := m.client.GetPost(ctx, postID)
	if err != nil {
		return model.Post{}, fmt.Errorf("refresh post %d: %w", postID, err)
	}

	liked := post.IsLiked
	u := model.CountersUpdate{
		CommentsCount: post.CommentsCount,
		LikesCount:    post.LikesCount,
		ViewsCount:    post.ViewsCount,
		IsLiked:       &liked,
	}
	m.store.Cache().Merge(post.Key(), u)
	m.store.Propagate(ctx, post.Key(), u)
	m.publish(ctx, queue.NewCountersRefreshedEvent(m.origin, postID, model.AsPatch(u)))

	if post.Poll != nil {
		m.store.Cache().Merge(post.Poll.Key(), model.PollUpdate{Tally: post.Poll.PollTally})
	}

	log.Printf("[Mutator] %s OK: post=%d comments=%d likes=%d views=%d",
		OpRefresh, postID, post.CommentsCount, post.LikesCount, post.ViewsCount)
	return post, nil
}

// reject counts input refused before any cache write or network call.
func (m *Mutator) reject(op string, key model.Key, err error) error {
	m.metrics.mutations.WithLabelValues(op, OutcomeRejected).Inc()
	log.Printf("[Mutator] %s REJECTED: key=%s err=%v", op, key, err)
	return err
}

// fail reports a failed non-optimistic operation.
func (m *Mutator) fail(op string, key model.Key, msg string, err error) {
	m.metrics.mutations.WithLabelValues(op, OutcomeFailed).Inc()
	m.notifier.Notify(notice.Notice{
		Level:   notice.LevelError,
		Key:     key,
		Op:      op,
		Message: msg,
		Err:     err,
		At:      m.now(),
	})
	log.Printf("[Mutator] %s FAILED: key=%s err=%v", op, key, err)
}
