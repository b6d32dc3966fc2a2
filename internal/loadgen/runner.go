package loadgen

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/repute/pkg/logger"
)

// Run executes a complete load run: health check, profile creation,
// concurrent event submission, leaderboard registration and verification.
// Events of one contributor are always sent in order by a single worker,
// so the final scores are deterministic for a given seed.
func Run(ctx context.Context, cfg Config, log logger.Logger) (Stats, error) {
	stats := Stats{StartTime: time.Now()}
	if cfg.Contributors <= 0 || cfg.Events < 0 || cfg.Workers <= 0 || cfg.TopN <= 0 || cfg.Group == "" {
		return stats, fmt.Errorf("%w: %+v", ErrInvalidConfig, cfg)
	}
	c := &client{http: &http.Client{Timeout: cfg.Timeout}, baseURL: cfg.BaseURL}

	log.Info(ctx, "starting load run",
		logger.String("base_url", cfg.BaseURL),
		logger.Int("contributors", cfg.Contributors),
		logger.Int("events", cfg.Events),
		logger.Int("workers", cfg.Workers),
		logger.Any("seed", cfg.Seed),
	)

	if err := c.health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	events := Generate(cfg)
	for _, evs := range events {
		stats.EventsGenerated += len(evs)
	}

	if err := submit(ctx, c, cfg, events, &stats); err != nil {
		return stats, err
	}
	log.Info(ctx, "events submitted",
		logger.Int("applied", stats.EventsApplied),
		logger.Int("duplicate", stats.EventsDuplicate),
		logger.Int("failed", stats.EventsFailed),
	)
	if stats.EventsFailed > 0 {
		return stats, fmt.Errorf("%w: %d events failed", ErrUnexpectedStatus, stats.EventsFailed)
	}

	got, err := c.leaderboard(ctx, cfg.Group, cfg.TopN)
	if err != nil {
		return stats, fmt.Errorf("leaderboard retrieval failed: %w", err)
	}
	want := Expected(events, cfg.TopN)
	if err := Verify(want, got); err != nil {
		return stats, err
	}
	stats.EntriesVerified = len(got)
	stats.Duration = time.Since(stats.StartTime)

	log.Info(ctx, "load run verified",
		logger.Int("entries", stats.EntriesVerified),
		logger.Any("duration", stats.Duration),
	)
	return stats, nil
}

// submit hands whole contributors to workers. Each worker initialises the
// profile, posts its events in order (resending flagged ones) and finally
// records the contributor on the group leaderboard.
func submit(ctx context.Context, c *client, cfg Config, events map[string][]Event, stats *Stats) error {
	ids := make([]string, 0, len(events))
	for id := range events {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var applied, duplicate, failed atomic.Int64
	var firstErr error
	var errOnce sync.Once

	work := make(chan string, cfg.Workers*2)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range work {
				if err := c.initialize(ctx, id); err != nil {
					errOnce.Do(func() { firstErr = err })
					failed.Add(int64(len(events[id])))
					continue
				}
				for _, e := range events[id] {
					sends := 1
					if e.Resend {
						sends = 2
					}
					for s := 0; s < sends; s++ {
						ack, err := c.postEvent(ctx, e)
						switch {
						case err != nil:
							failed.Add(1)
						case ack.Duplicate:
							duplicate.Add(1)
						default:
							applied.Add(1)
						}
					}
				}
				if err := c.join(ctx, cfg.Group, id); err != nil {
					errOnce.Do(func() { firstErr = err })
				}
			}
		}()
	}

	go func() {
		defer close(work)
		for _, id := range ids {
			select {
			case <-ctx.Done():
				return
			case work <- id:
			}
		}
	}()
	wg.Wait()

	stats.EventsApplied = int(applied.Load())
	stats.EventsDuplicate = int(duplicate.Load())
	stats.EventsFailed = int(failed.Load())

	if err := ctx.Err(); err != nil {
		return err
	}
	if firstErr != nil {
		return fmt.Errorf("event submission failed: %w", firstErr)
	}
	return nil
}
