package main

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"campusfeed/internal/api"
	"campusfeed/internal/config"
	"campusfeed/internal/mockapi"
	"campusfeed/internal/notice"
	"campusfeed/internal/optimistic"
	"campusfeed/internal/queue"
	"campusfeed/internal/redis"
	"campusfeed/internal/scratch"
	"campusfeed/internal/store"
	"campusfeed/internal/view"
	"campusfeed/internal/worker"
)

// session is one client process: a store, the mutator writing to it and the
// optional Redis side channels.
type session struct {
	cfg     *config.Config
	store   *store.Store
	mutator *optimistic.Mutator
	client  api.Client
	notices *notice.Queue

	backend *mockapi.Backend // nil in remote mode
	redis   *redis.Client
	workers *worker.Manager
}

func openSession(ctx context.Context, remote bool) (*session, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	s := &session{cfg: cfg, notices: notice.NewQueue()}

	if remote {
		s.client = api.NewHTTPClient(cfg.APIBaseURL, api.WithUserID(cfg.UserID))
	} else {
		s.backend = mockapi.NewBackend()
		mockapi.SeedDemo(s.backend)
		s.client = api.NewLocalClient(s.backend, cfg.UserID)
	}

	var (
		storeOpts []store.Option
		mutOpts   = []optimistic.Option{
			optimistic.WithNotifier(notice.Multi{s.notices, notice.LogNotifier{}}),
			optimistic.WithTimeout(cfg.MutationTimeout),
		}
		origin = uuid.NewString()
	)

	if cfg.RedisURL != "" {
		rc, err := redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		s.redis = rc

		ns := fmt.Sprintf("user:%d", cfg.UserID)
		storeOpts = append(storeOpts,
			store.WithMailbox(store.NewRedisMailbox(rc.Client, ns, cfg.MailboxTTL)),
			store.WithScratch(scratch.NewRedisScratch(rc.Client, ns)),
		)
		if cfg.SyncStreamEnabled {
			mutOpts = append(mutOpts, optimistic.WithPublisher(queue.NewPublisher(rc.Client), origin))
		}
	}

	s.store = store.New(storeOpts...)
	s.mutator = optimistic.New(s.store, s.client, mutOpts...)

	if s.redis != nil && cfg.SyncStreamEnabled {
		s.workers = worker.NewManager(
			queue.NewConsumer(s.redis.Client),
			worker.NewHandler(s.store, s.mutator.Origin()),
			worker.ManagerConfig{WorkerCount: cfg.WorkerCount},
		)
		if err := s.workers.Start(ctx); err != nil {
			s.close()
			return nil, fmt.Errorf("start workers: %w", err)
		}
	}

	log.Printf("[Session] Open OK: user=%d remote=%t redis=%t stream=%t origin=%s",
		cfg.UserID, remote, s.redis != nil, s.workers != nil, s.mutator.Origin())
	return s, nil
}

func (s *session) deps() view.Deps {
	return view.Deps{
		Store:         s.store,
		Mutator:       s.mutator,
		Client:        s.client,
		Notifier:      s.notices,
		MaxReplyDepth: s.cfg.MaxReplyDepth,
	}
}

// close waits for in-flight mutations before tearing down Redis.
func (s *session) close() {
	if s.mutator != nil {
		s.mutator.Close()
	}
	if s.workers != nil {
		s.workers.Stop()
	}
	if s.redis != nil {
		s.redis.Close()
	}
}

// withSession runs fn with an open session and closes it afterwards.
func withSession(ctx context.Context, remote bool, fn func(*session) error) error {
	s, err := openSession(ctx, remote)
	if err != nil {
		return err
	}
	defer s.close()
	return fn(s)
}

// settle waits for p and reports its outcome. A rollback is returned as an
// error.
func settle(ctx context.Context, p *optimistic.Pending) error {
	if err := p.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return err
		}
		fmt.Printf("  rolled back: restored %v\n", p.Restored().Fields())
		return fmt.Errorf("%s %s rolled back: %w", p.Op, p.Key, err)
	}
	fmt.Printf("  reconciled: %v\n", p.Result().Fields())
	return nil
}
