package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/okian/repute/pkg/logger"
	"github.com/spf13/cobra"
)

// newCatalogCmd prints the achievement catalog as JSON. Configured
// definitions that are not in the store yet are issued ids first, so the
// command doubles as a way to seed a sqlite database.
func newCatalogCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the achievement catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.InitWithWriter(os.Stderr); err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}
			cfg, err := load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			_ = logger.SetLevelString("warn")

			ctx := cmd.Context()
			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			svc := buildService(cfg, store, logger.Named("catalog"))
			if err := svc.Start(ctx); err != nil {
				_ = store.Close()
				return fmt.Errorf("start service: %w", err)
			}
			defer svc.Stop()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(svc.Catalog())
		},
	}
}
