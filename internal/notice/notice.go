// Package notice carries non-blocking user-facing messages from asynchronous
// mutations back to the view that started them.
package notice

import (
	"fmt"
	"log"
	"sync"
	"time"

	"campusfeed/internal/model"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notice is one message for the user, e.g. "Could not like post".
type Notice struct {
	Level   Level
	Key     model.Key
	Op      string
	Message string
	Err     error
	At      time.Time
}

func (n Notice) String() string {
	if n.Err != nil {
		return fmt.Sprintf("%s (%s %s: %v)", n.Message, n.Op, n.Key, n.Err)
	}
	return n.Message
}

// Notifier receives notices. Implementations must not block.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// LogNotifier writes notices to the standard logger.
type LogNotifier struct{}

func (LogNotifier) Notify(n Notice) {
	log.Printf("[Notice] %s: op=%s key=%s msg=%q err=%v", n.Level, n.Op, n.Key, n.Message, n.Err)
}

// Queue buffers notices until a view drains them.
type Queue struct {
	mu      sync.Mutex
	pending []Notice
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Notify(n Notice) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, n)
}

// Drain returns and clears all buffered notices in arrival order.
func (q *Queue) Drain() []Notice {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	return out
}

// Len returns the number of buffered notices.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Multi fans a notice out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(n Notice) {
	for _, nt := range m {
		if nt != nil {
			nt.Notify(n)
		}
	}
}
