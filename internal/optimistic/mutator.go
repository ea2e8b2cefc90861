// Package optimistic applies interactive changes to the shared store before the
// server confirms them, then reconciles or rolls back when the call resolves.
//
// Every optimistic operation follows the same protocol:
//
//  1. read the current snapshot S0 and compute the tentative S1,
//  2. write S1 to the cache synchronously (under the cache lock),
//  3. return a Pending handle and call the server in a goroutine,
//  4. on success merge the server answer and hand it to detached views,
//  5. on failure restore S0, but only if the cache still holds all of S1,
//     and notify the user. There is no automatic retry.
package optimistic

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"campusfeed/internal/api"
	"campusfeed/internal/model"
	"campusfeed/internal/notice"
	"campusfeed/internal/queue"
	"campusfeed/internal/store"
)

const (
	// DefaultTimeout bounds a single network call of a mutation.
	DefaultTimeout = 10 * time.Second

	tracerName = "campusfeed/optimistic"
)

// ReconcilePublisher forwards authoritative changes to other client processes.
// *queue.RedisPublisher implements it.
type ReconcilePublisher interface {
	PublishReconcile(ctx context.Context, event queue.ReconcileEvent) error
}

// Mutator is the only writer of interactive fields in the store.
type Mutator struct {
	store     *store.Store
	client    api.Client
	notifier  notice.Notifier
	publisher ReconcilePublisher
	origin    string
	tracer    trace.Tracer
	metrics   *metrics
	timeout   time.Duration
	now       func() time.Time

	wg sync.WaitGroup
}

// Option configures a Mutator.
type Option func(*mutatorConfig)

type mutatorConfig struct {
	notifier  notice.Notifier
	publisher ReconcilePublisher
	origin    string
	tracer    trace.Tracer
	registry  prometheus.Registerer
	timeout   time.Duration
	now       func() time.Time
}

// WithNotifier sets where failure notices go. Defaults to the log.
func WithNotifier(n notice.Notifier) Option {
	return func(c *mutatorConfig) {
		c.notifier = n
	}
}

// WithPublisher publishes reconciled changes as coming from origin.
func WithPublisher(p ReconcilePublisher, origin string) Option {
	return func(c *mutatorConfig) {
		c.publisher = p
		c.origin = origin
	}
}

// WithTracer replaces the global otel tracer.
func WithTracer(t trace.Tracer) Option {
	return func(c *mutatorConfig) {
		c.tracer = t
	}
}

// WithRegisterer registers the mutator metrics on reg instead of a private registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *mutatorConfig) {
		c.registry = reg
	}
}

// WithTimeout bounds each network call.
func WithTimeout(d time.Duration) Option {
	return func(c *mutatorConfig) {
		c.timeout = d
	}
}

// WithClock replaces time.Now for poll closing checks and notices.
func WithClock(now func() time.Time) Option {
	return func(c *mutatorConfig) {
		c.now = now
	}
}

// New creates a Mutator writing to st and calling client.
func New(st *store.Store, client api.Client, opts ...Option) *Mutator {
	cfg := mutatorConfig{
		notifier: notice.LogNotifier{},
		timeout:  DefaultTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.tracer == nil {
		cfg.tracer = otel.Tracer(tracerName)
	}
	if cfg.registry == nil {
		cfg.registry = prometheus.NewRegistry()
	}
	if cfg.origin == "" {
		cfg.origin = uuid.NewString()
	}

	return &Mutator{
		store:     st,
		client:    client,
		notifier:  cfg.notifier,
		publisher: cfg.publisher,
		origin:    cfg.origin,
		tracer:    cfg.tracer,
		metrics:   newMetrics(cfg.registry),
		timeout:   cfg.timeout,
		now:       cfg.now,
	}
}

// Origin identifies this process on the reconcile stream.
func (m *Mutator) Origin() string { return m.origin }

// Close waits for every in-flight network call to resolve.
func (m *Mutator) Close() {
	m.wg.Wait()
}

// mutation is one optimistic change of one entity.
type mutation struct {
	op        string
	key       model.Key
	transform store.TransformFunc
	call      func(ctx context.Context) (model.Update, error)
	failMsg   string
	onSuccess func(ctx context.Context, authoritative model.Patch)
}

// apply writes the tentative state and starts the network call.
func (m *Mutator) apply(ctx context.Context, mu mutation) (*Pending, error) {
	ctx, span := m.tracer.Start(ctx, "mutator."+mu.op, trace.WithAttributes(
		attribute.String("mutation.op", mu.op),
		attribute.String("entity.key", mu.key.String()),
	))

	previous, tentative, err := m.store.Cache().Transform(mu.key, mu.transform)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rejected")
		span.End()
		return nil, m.reject(mu.op, mu.key, err)
	}

	p := newPending(Record{
		ID:        uuid.New(),
		Op:        mu.op,
		Key:       mu.key,
		Previous:  previous,
		Tentative: tentative,
		StartedAt: m.now(),
	})
	span.SetAttributes(attribute.String("mutation.id", p.ID.String()))
	log.Printf("[Mutator] %s tentative: id=%s key=%s fields=%v", mu.op, p.ID, mu.key, tentative.Fields())

	m.store.Propagate(ctx, mu.key, tentative)

	m.metrics.inflight.Inc()
	m.wg.Add(1)
	go m.resolve(context.WithoutCancel(ctx), span, mu, p, time.Now())

	return p, nil
}

func (m *Mutator) resolve(ctx context.Context, span trace.Span, mu mutation, p *Pending, start time.Time) {
	defer m.wg.Done()
	defer span.End()
	defer m.metrics.inflight.Dec()

	callCtx, cancel := context.WithTimeout(ctx, m.timeout)
	u, err := mu.call(callCtx)
	cancel()

	duration := time.Since(start)
	m.metrics.duration.WithLabelValues(mu.op).Observe(duration.Seconds())

	if err != nil {
		m.rollback(ctx, span, mu, p, err)
		return
	}

	authoritative := model.AsPatch(u)
	m.store.Cache().Merge(mu.key, authoritative)
	m.store.Propagate(ctx, mu.key, authoritative)
	m.publish(ctx, queue.NewReconciledEvent(m.origin, mu.key, authoritative))
	if mu.onSuccess != nil {
		mu.onSuccess(ctx, authoritative)
	}

	m.metrics.mutations.WithLabelValues(mu.op, OutcomeReconciled).Inc()
	span.SetStatus(codes.Ok, "")
	log.Printf("[Mutator] %s OK: id=%s key=%s duration=%v", mu.op, p.ID, mu.key, duration)
	p.resolve(authoritative)
}

func (m *Mutator) rollback(ctx context.Context, span trace.Span, mu mutation, p *Pending, cause error) {
	restored, current := m.store.Cache().RestoreIf(mu.key, p.Tentative, p.Previous)

	if restored.IsEmpty() {
		m.metrics.clobber.WithLabelValues(mu.op).Inc()
	}

	// Detached views may hold the tentative values; hand them what the cache has now.
	m.store.Propagate(ctx, mu.key, current.Capture(p.Tentative))
	if !restored.IsEmpty() {
		m.publish(ctx, queue.NewRolledBackEvent(m.origin, mu.key, restored))
	}

	m.notifier.Notify(notice.Notice{
		Level:   notice.LevelError,
		Key:     mu.key,
		Op:      mu.op,
		Message: mu.failMsg,
		Err:     cause,
		At:      m.now(),
	})

	m.metrics.mutations.WithLabelValues(mu.op, OutcomeRolledBack).Inc()
	span.RecordError(cause)
	span.SetStatus(codes.Error, "rolled back")
	log.Printf("[Mutator] %s FAILED: id=%s key=%s restored=%v err=%v", mu.op, p.ID, mu.key, restored.Fields(), cause)
	p.fail(cause, restored)
}

func (m *Mutator) publish(ctx context.Context, event queue.ReconcileEvent) {
	if m.publisher == nil {
		return
	}
	if err := m.publisher.PublishReconcile(ctx, event); err != nil {
		log.Printf("[Mutator] publish FAILED: type=%s key=%s err=%v", event.Type, event.Key, err)
	}
}
