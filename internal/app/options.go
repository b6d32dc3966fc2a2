package service

import (
	"github.com/okian/repute/internal/adapters/mq/worker"
	"github.com/okian/repute/internal/adapters/repository"
	"github.com/okian/repute/internal/domain/achievement"
	"github.com/okian/repute/internal/domain/scoring"
	"github.com/okian/repute/pkg/clock"
	"github.com/okian/repute/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore sets the persistence adapter. The service closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithClock sets the time source.
func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithEngine sets the scoring engine.
func WithEngine(e *scoring.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithAchievements replaces the built-in catalog definitions.
func WithAchievements(defs []achievement.Definition) Option {
	return func(s *Service) {
		if len(defs) > 0 {
			s.definitions = defs
		}
	}
}

// WithAutoInitialize makes every operation create missing profiles
// instead of failing with ErrProfileNotFound.
func WithAutoInitialize(enabled bool) Option {
	return func(s *Service) {
		s.autoInitialize = enabled
	}
}

// WithPublisher replaces the built-in notification pipeline.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithSubscribers adds subscribers to the built-in notification pipeline.
// Ignored when WithPublisher is used.
func WithSubscribers(subs ...worker.Subscriber) Option {
	return func(s *Service) {
		s.subscribers = append(s.subscribers, subs...)
	}
}

// WithNotifyQueueSize sets the notification queue capacity.
func WithNotifyQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithNotifyWorkers sets the number of dispatcher workers.
func WithNotifyWorkers(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithDedupeSize sets the size of the idempotency key cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		s.dedupeSize = size
	}
}

// WithMaxLeaderboardLimit caps the limit accepted by TopContributors.
func WithMaxLeaderboardLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxLeaderboardLimit = limit
		}
	}
}
