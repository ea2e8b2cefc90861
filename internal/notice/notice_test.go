package notice_test

import (
	"errors"
	"strings"
	"testing"

	"campusfeed/internal/model"
	"campusfeed/internal/notice"
)

func TestQueue_DrainInOrder(t *testing.T) {
	q := notice.NewQueue()
	q.Notify(notice.Notice{Message: "first"})
	q.Notify(notice.Notice{Message: "second"})

	got := q.Drain()

	if len(got) != 2 || got[0].Message != "first" || got[1].Message != "second" {
		t.Fatalf("unexpected drain: %+v", got)
	}
	if q.Len() != 0 {
		t.Error("drain did not clear the queue")
	}
}

func TestMulti_FansOut(t *testing.T) {
	var calls int
	f := notice.NotifierFunc(func(notice.Notice) { calls++ })
	q := notice.NewQueue()

	notice.Multi{f, q, nil}.Notify(notice.Notice{Message: "x"})

	if calls != 1 || q.Len() != 1 {
		t.Errorf("calls=%d queued=%d", calls, q.Len())
	}
}

func TestNotice_String(t *testing.T) {
	n := notice.Notice{Op: "like", Key: model.PostKey(1), Message: "Could not like post", Err: errors.New("timeout")}

	s := n.String()

	if !strings.Contains(s, "Could not like post") || !strings.Contains(s, "post:1") || !strings.Contains(s, "timeout") {
		t.Errorf("unexpected string: %s", s)
	}
}
