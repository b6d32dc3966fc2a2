// Package service is the reputation facade. It loads profiles from the
// store, runs them through the scoring engine and the achievement awarder,
// persists the result and publishes notifications. Mutations on the same
// contributor are serialised; different contributors proceed in parallel.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/okian/repute/internal/adapters/mq/queue"
	"github.com/okian/repute/internal/adapters/mq/worker"
	"github.com/okian/repute/internal/adapters/repository"
	"github.com/okian/repute/internal/domain/achievement"
	"github.com/okian/repute/internal/domain/dedupe"
	"github.com/okian/repute/internal/domain/leaderboard"
	"github.com/okian/repute/internal/domain/model"
	"github.com/okian/repute/internal/domain/scoring"
	"github.com/okian/repute/pkg/clock"
	"github.com/okian/repute/pkg/logger"
	"github.com/okian/repute/pkg/metrics"
)

const (
	defaultQueueSize           = 4096
	defaultWorkerCount         = 2
	defaultDedupeSize          = 50000
	defaultMaxLeaderboardLimit = 1000
	stopTimeout                = 10 * time.Second
)

// Publisher accepts notifications. Implementations must not block.
type Publisher interface {
	Publish(ctx context.Context, n model.Notification)
}

// Service implements the reputation facade.
type Service struct {
	mu sync.RWMutex

	store       repository.Store
	clock       clock.Clock
	engine      *scoring.Engine
	catalog     *achievement.Catalog
	definitions []achievement.Definition
	boards      *leaderboard.Registry
	deduper     dedupe.Deduper
	publisher   Publisher
	subscribers []worker.Subscriber
	queue       *queue.InMemoryQueue
	pool        *worker.Pool

	profileLocks stripes
	groupLocks   stripes

	autoInitialize      bool
	queueSize           int
	workerCount         int
	dedupeSize          int
	maxLeaderboardLimit int

	started bool
	stopped bool
	logger  logger.Logger
}

// New constructs a Service. Nothing touches the store until Start.
func New(opts ...Option) *Service {
	s := &Service{
		engine:              scoring.NewEngine(),
		catalog:             achievement.NewCatalog(),
		definitions:         achievement.DefaultDefinitions(),
		boards:              leaderboard.NewRegistry(),
		queueSize:           defaultQueueSize,
		workerCount:         defaultWorkerCount,
		dedupeSize:          defaultDedupeSize,
		maxLeaderboardLimit: defaultMaxLeaderboardLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start restores the achievement catalog and starts the notification
// pipeline. Calling it twice is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.stopped {
		return ErrStopped
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("reputation")
	}
	if s.store == nil {
		s.store = repository.Instrument(repository.NewMemoryStore())
		s.logger.Info(ctx, "using in-memory store")
	}
	if s.clock == nil {
		s.clock = clock.NewSystem()
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))

	if err := s.loadCatalog(ctx); err != nil {
		return err
	}

	if s.publisher == nil {
		s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
		subs := append([]worker.Subscriber{
			worker.LogSubscriber{Logger: s.logger.Named("notify")},
			worker.MetricsSubscriber{},
		}, s.subscribers...)
		s.pool = worker.NewPool(s.workerCount, s.queue, subs, worker.WithLogger(s.logger.Named("notify")))
		s.pool.Start(context.WithoutCancel(ctx))
		s.publisher = s.queue
	}

	s.started = true
	s.logger.Info(ctx, "reputation service started",
		logger.Int("achievements", s.catalog.Len()),
		logger.Bool("auto_initialize", s.autoInitialize),
		logger.Int("notify_workers", s.workerCount),
		logger.Int("notify_queue_size", s.queueSize),
	)
	return nil
}

// Stop drains pending notifications and closes the store. It is terminal:
// a stopped Service cannot be started again.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping reputation service...")
	if s.pool != nil {
		if err := s.pool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "notification pipeline did not drain", logger.Error(err))
		}
		s.publisher = nil
		s.pool = nil
		s.queue = nil
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error(ctx, "closing store", logger.Error(err))
	}
	s.started = false
	s.stopped = true
	s.logger.Info(ctx, "reputation service stopped")
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

func (s *Service) publish(ctx context.Context, n model.Notification) { //nolint:gocritic // hugeParam
	s.mu.RLock()
	p := s.publisher
	s.mu.RUnlock()
	if p != nil {
		p.Publish(ctx, n)
	}
}

// SeenAndRecord atomically checks if an idempotency key was seen and
// records it if not.
func (s *Service) SeenAndRecord(ctx context.Context, key string) bool {
	seen := s.deduper.SeenAndRecord(ctx, key)
	if seen {
		metrics.RecordEventDuplicate()
	}
	return seen
}

// Unrecord forgets an idempotency key so the request can be retried.
func (s *Service) Unrecord(ctx context.Context, key string) {
	s.deduper.Unrecord(ctx, key)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":         s.started,
		"autoInitialize":  s.autoInitialize,
		"decayPeriod":     s.engine.DecayPeriod(),
		"achievements":    s.catalog.Len(),
		"leaderboards":    s.boards.Groups(),
		"notifyWorkers":   s.workerCount,
		"notifyQueueSize": s.queueSize,
	}
	if !s.started {
		return stats
	}
	if n, err := s.store.Count(ctx, repository.KindProfile); err == nil {
		stats["profiles"] = n
	}
	if s.queue != nil {
		stats["notifyQueueLength"] = s.queue.Len(ctx)
	}
	stats["dedupeSize"] = s.deduper.Size()
	metrics.UpdateLeaderboardGroups(s.boards.Groups())
	return stats
}
