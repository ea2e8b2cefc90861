package store_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"campusfeed/internal/model"
	"campusfeed/internal/store"
)

func intp(v int) *int       { return &v }
func boolp(v bool) *bool    { return &v }
func strp(v string) *string { return &v }

func TestMerge_UnknownKeyStartsFromZero(t *testing.T) {
	c := store.NewEntityCache()
	key := model.PostKey(1)

	s := c.Merge(key, model.LikeUpdate{IsLiked: true, LikesCount: 4})

	if !s.IsLiked || s.LikesCount != 4 {
		t.Fatalf("expected liked=true likes=4, got liked=%t likes=%d", s.IsLiked, s.LikesCount)
	}
	if s.Key != key {
		t.Errorf("expected key %s, got %s", key, s.Key)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", c.Len())
	}
}

func TestMerge_Idempotent(t *testing.T) {
	c := store.NewEntityCache()
	key := model.CommentKey(7)
	u := model.EditUpdate{Body: "hello", IsEdited: true, UpdatedAt: time.Unix(100, 0)}

	first := c.Merge(key, u)
	second := c.Merge(key, u)

	if first.Body != second.Body || first.IsEdited != second.IsEdited || !first.UpdatedAt.Equal(second.UpdatedAt) {
		t.Errorf("merge not idempotent: %+v vs %+v", first, second)
	}
}

func TestMerge_LeavesAbsentFieldsUntouched(t *testing.T) {
	c := store.NewEntityCache()
	key := model.PostKey(2)
	c.Merge(key, model.Patch{Body: strp("original"), CommentsCount: intp(3)})

	s := c.Merge(key, model.LikeUpdate{IsLiked: true, LikesCount: 1})

	if s.Body != "original" {
		t.Errorf("body changed: %q", s.Body)
	}
	if s.CommentsCount != 3 {
		t.Errorf("comments_count changed: %d", s.CommentsCount)
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	c := store.NewEntityCache()
	key := model.PollKey(1)
	c.Merge(key, model.PollUpdate{Tally: model.PollTally{
		Options: []model.PollOption{{Text: "a", Votes: 1}},
	}})

	s, ok := c.Get(key)
	if !ok {
		t.Fatal("expected entry")
	}
	s.Poll.Options[0].Votes = 99

	again, _ := c.Get(key)
	if again.Poll.Options[0].Votes != 1 {
		t.Errorf("cache mutated through returned snapshot: %d", again.Poll.Options[0].Votes)
	}
}

func TestSetFlag(t *testing.T) {
	c := store.NewEntityCache()
	key := model.CommentKey(3)

	c.SetFlag(key, model.FlagLiked, true)
	s := c.SetFlag(key, model.FlagDeleted, true)

	if !s.IsLiked || !s.IsDeleted || s.IsEdited {
		t.Errorf("unexpected flags: liked=%t deleted=%t edited=%t", s.IsLiked, s.IsDeleted, s.IsEdited)
	}
}

func TestTransform_ErrorWritesNothing(t *testing.T) {
	c := store.NewEntityCache()
	key := model.PostKey(5)
	c.Merge(key, model.LikeUpdate{IsLiked: false, LikesCount: 2})
	sentinel := errors.New("nope")

	_, _, err := c.Transform(key, func(model.Snapshot, bool) (model.Patch, error) {
		return model.Patch{}, sentinel
	})

	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	s, _ := c.Get(key)
	if s.IsLiked || s.LikesCount != 2 {
		t.Errorf("state changed on failed transform: %+v", s)
	}
}

func TestTransform_ReturnsPreviousAndTentative(t *testing.T) {
	c := store.NewEntityCache()
	key := model.PostKey(5)
	c.Merge(key, model.LikeUpdate{IsLiked: false, LikesCount: 2})

	prev, tent, err := c.Transform(key, func(cur model.Snapshot, found bool) (model.Patch, error) {
		if !found {
			t.Error("expected found=true")
		}
		return model.AsPatch(model.LikeUpdate{IsLiked: !cur.IsLiked, LikesCount: cur.LikesCount + 1}), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if *prev.IsLiked || *prev.LikesCount != 2 {
		t.Errorf("unexpected previous: liked=%t likes=%d", *prev.IsLiked, *prev.LikesCount)
	}
	if !*tent.IsLiked || *tent.LikesCount != 3 {
		t.Errorf("unexpected tentative: liked=%t likes=%d", *tent.IsLiked, *tent.LikesCount)
	}
	if prev.Body != nil {
		t.Error("previous captured a field the transform did not touch")
	}
}

func TestRestoreIf_SkipsWhenAnyFieldWrittenSince(t *testing.T) {
	c := store.NewEntityCache()
	key := model.PostKey(9)
	c.Merge(key, model.LikeUpdate{IsLiked: false, LikesCount: 10})

	prev, tent, _ := c.Transform(key, func(cur model.Snapshot, _ bool) (model.Patch, error) {
		return model.AsPatch(model.LikeUpdate{IsLiked: true, LikesCount: 11}), nil
	})

	// Another writer moves the counter before the failure arrives.
	c.Merge(key, model.Patch{LikesCount: intp(15)})

	restored, s := c.RestoreIf(key, tent, prev)

	if !s.IsLiked || s.LikesCount != 15 {
		t.Errorf("expected {true 15} kept, got {%t %d}", s.IsLiked, s.LikesCount)
	}
	if !restored.IsEmpty() {
		t.Errorf("expected nothing restored, got %v", restored.Fields())
	}
}

func TestRestoreIf_RestoresWhenUntouched(t *testing.T) {
	c := store.NewEntityCache()
	key := model.PostKey(9)
	c.Merge(key, model.LikeUpdate{IsLiked: false, LikesCount: 10})
	c.Merge(key, model.EditUpdate{Body: "hello"})

	prev, tent, _ := c.Transform(key, func(cur model.Snapshot, _ bool) (model.Patch, error) {
		return model.AsPatch(model.LikeUpdate{IsLiked: true, LikesCount: 11}), nil
	})
	c.Merge(key, model.Patch{Body: strp("edited")})

	restored, s := c.RestoreIf(key, tent, prev)

	if s.IsLiked || s.LikesCount != 10 {
		t.Errorf("expected {false 10}, got {%t %d}", s.IsLiked, s.LikesCount)
	}
	if s.Body != "edited" {
		t.Errorf("body = %q, other field must be kept", s.Body)
	}
	if restored.IsLiked == nil || restored.LikesCount == nil || restored.Body != nil {
		t.Errorf("unexpected restored fields %v", restored.Fields())
	}
}

func TestRestoreIf_UnknownKey(t *testing.T) {
	c := store.NewEntityCache()

	restored, _ := c.RestoreIf(model.PostKey(1), model.Patch{IsLiked: boolp(true)}, model.Patch{IsLiked: boolp(false)})

	if !restored.IsEmpty() {
		t.Errorf("expected nothing restored, got %+v", restored)
	}
	if c.Len() != 0 {
		t.Error("restore created an entry")
	}
}

func TestConcurrentTransforms_NoLostUpdates(t *testing.T) {
	c := store.NewEntityCache()
	key := model.PostKey(1)
	c.Merge(key, model.Patch{ViewsCount: intp(0)})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Transform(key, func(cur model.Snapshot, _ bool) (model.Patch, error) {
				return model.Patch{ViewsCount: intp(cur.ViewsCount + 1)}, nil
			})
		}()
	}
	wg.Wait()

	s, _ := c.Get(key)
	if s.ViewsCount != 50 {
		t.Errorf("expected 50, got %d", s.ViewsCount)
	}
}
