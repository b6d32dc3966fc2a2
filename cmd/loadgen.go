package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/okian/repute/internal/loadgen"
	"github.com/okian/repute/pkg/logger"
	"github.com/spf13/cobra"
)

// newLoadgenCmd drives a running server with seeded events and verifies
// the resulting leaderboard.
func newLoadgenCmd() *cobra.Command {
	cfg := loadgen.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "loadgen",
		Short: "Send a seeded event stream to a running server and verify the leaderboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(); err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			stats, err := loadgen.Run(ctx, cfg, logger.Named("loadgen"))
			fmt.Fprintf(cmd.OutOrStdout(), "generated=%d applied=%d duplicate=%d failed=%d verified=%d duration=%s\n",
				stats.EventsGenerated, stats.EventsApplied, stats.EventsDuplicate,
				stats.EventsFailed, stats.EntriesVerified, stats.Duration)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "base URL of the repute server")
	f.IntVar(&cfg.Contributors, "contributors", cfg.Contributors, "number of contributors")
	f.IntVar(&cfg.Events, "events", cfg.Events, "events per contributor")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent submitters")
	f.StringVar(&cfg.Group, "group", cfg.Group, "leaderboard group")
	f.IntVar(&cfg.TopN, "top", cfg.TopN, "leaderboard entries to verify")
	f.IntVar(&cfg.DuplicatePct, "duplicates", cfg.DuplicatePct, "percent of events resent with the same event_id")
	f.Int64Var(&cfg.Seed, "seed", cfg.Seed, "generator seed")
	f.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP request timeout")
	return cmd
}
