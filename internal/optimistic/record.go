package optimistic

import (
	"context"
	"time"

	"github.com/google/uuid"

	"campusfeed/internal/model"
)

// Record describes one optimistic mutation while its network call is in flight.
type Record struct {
	ID        uuid.UUID
	Op        string
	Key       model.Key
	Previous  model.Patch // pre-mutation values of the changed fields
	Tentative model.Patch
	StartedAt time.Time
}

// Pending is the caller's handle on an in-flight mutation. The tentative state
// is already in the cache when the handle is returned.
type Pending struct {
	Record

	done     chan struct{}
	err      error
	result   model.Patch
	restored model.Patch
}

func newPending(rec Record) *Pending {
	return &Pending{Record: rec, done: make(chan struct{})}
}

func (p *Pending) resolve(result model.Patch) {
	p.result = result
	close(p.done)
}

func (p *Pending) fail(err error, restored model.Patch) {
	p.err = err
	p.restored = restored
	close(p.done)
}

// Done is closed when the mutation was reconciled or rolled back.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the mutation resolves or ctx ends. It returns the network
// error of a rolled back mutation.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the failure, or nil. Only meaningful after Done.
func (p *Pending) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Result returns the authoritative patch merged on success.
func (p *Pending) Result() model.Patch {
	<-p.done
	return p.result
}

// Restored returns the fields that were rolled back on failure. Fields written
// by someone else in the meantime are absent.
func (p *Pending) Restored() model.Patch {
	<-p.done
	return p.restored
}
